// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package catalog

import (
	"testing"

	"github.com/pdiddy/idea-engine/pkg/types"
)

func TestCatalogAddRefusesNonValidated(t *testing.T) {
	c := New()

	tests := []struct {
		name   string
		status types.IdeaStatus
	}{
		{"draft", types.StatusDraft},
		{"rejected", types.StatusRejected},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := c.Add(types.Idea{ID: "x", Status: tt.status})
			if err == nil {
				t.Fatalf("Add accepted %s idea", tt.status)
			}
		})
	}
	if c.Len() != 0 {
		t.Errorf("catalog length = %d after refused adds", c.Len())
	}
}

func TestCatalogOrderAndCopy(t *testing.T) {
	c := New()
	for _, id := range []string{"a", "b", "c"} {
		if err := c.Add(types.Idea{ID: id, Status: types.StatusValidated}); err != nil {
			t.Fatal(err)
		}
	}

	ideas := c.Ideas()
	if len(ideas) != 3 || ideas[0].ID != "a" || ideas[2].ID != "c" {
		t.Fatalf("ideas = %+v, want insertion order a,b,c", ideas)
	}

	// Mutating the returned slice must not touch the catalog.
	ideas[0].ID = "mutated"
	if c.Ideas()[0].ID != "a" {
		t.Error("Ideas() returned a shared slice")
	}
}
