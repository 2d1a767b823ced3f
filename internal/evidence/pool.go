// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package evidence loads the ingested evidence pool and builds prioritized,
// size-bounded evidence contexts for synthesis.
// See docs/ARCHITECTURE.md § Evidence Context.
package evidence

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"go.yaml.in/yaml/v3"

	"github.com/pdiddy/idea-engine/pkg/types"
)

// poolFileSuffix marks per-source evidence artifact files: <source>-items.yaml.
const poolFileSuffix = "-items.yaml"

// LoadPool reads every per-source artifact file in dir and returns the
// combined evidence pool sorted by item ID. Items are read-only from here
// on; the pool order is stable across loads.
func LoadPool(dir string) ([]types.EvidenceItem, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("reading evidence directory %s: %w", dir, err)
	}

	var pool []types.EvidenceItem
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), poolFileSuffix) {
			continue
		}
		path := filepath.Join(dir, entry.Name())
		data, err := os.ReadFile(path)
		if err != nil {
			return nil, fmt.Errorf("reading %s: %w", entry.Name(), err)
		}
		var items []types.EvidenceItem
		if err := yaml.Unmarshal(data, &items); err != nil {
			return nil, fmt.Errorf("parsing %s: %w", entry.Name(), err)
		}
		pool = append(pool, items...)
	}

	sort.Slice(pool, func(i, j int) bool { return pool[i].ID < pool[j].ID })
	return pool, nil
}

// WriteSourceItems writes one source's items to dir/<sourceID>-items.yaml,
// replacing any previous artifact for that source.
func WriteSourceItems(dir, sourceID string, items []types.EvidenceItem) error {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return fmt.Errorf("creating evidence directory: %w", err)
	}
	data, err := yaml.Marshal(items)
	if err != nil {
		return fmt.Errorf("marshaling items for %s: %w", sourceID, err)
	}
	path := filepath.Join(dir, sourceID+poolFileSuffix)
	return os.WriteFile(path, data, 0o644)
}
