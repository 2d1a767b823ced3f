// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package catalog collects validated ideas for a run and persists runs to
// a local SQLite index for retrieval and export.
// See docs/ARCHITECTURE.md § Idea Catalog.
package catalog

import (
	"fmt"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// Catalog is the ordered set of validated ideas from one pipeline run.
// Ownership of an idea transfers here when it reaches validated status;
// consumers read it, nothing mutates it afterwards.
type Catalog struct {
	ideas []types.Idea
}

// New returns an empty catalog.
func New() *Catalog {
	return &Catalog{}
}

// Add appends a validated idea. Drafts and rejected ideas are refused so a
// partially validated run can never leak into the catalog.
func (c *Catalog) Add(idea types.Idea) error {
	if idea.Status != types.StatusValidated {
		return fmt.Errorf("catalog accepts only validated ideas, got status %q for %s", idea.Status, idea.ID)
	}
	c.ideas = append(c.ideas, idea)
	return nil
}

// Ideas returns the validated ideas in insertion order. The slice is a
// copy; the catalog's contents stay read-only.
func (c *Catalog) Ideas() []types.Idea {
	out := make([]types.Idea, len(c.ideas))
	copy(out, c.ideas)
	return out
}

// Len reports the number of validated ideas.
func (c *Catalog) Len() int {
	return len(c.ideas)
}
