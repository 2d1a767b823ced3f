// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/pdiddy/idea-engine/pkg/types"
)

const arxivFixture = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <entry>
    <id>http://arxiv.org/abs/2601.01234v1</id>
    <title>Forecasting pandemic preparedness investments</title>
    <summary>We study funding allocation under deep uncertainty.</summary>
    <published>2026-01-10T00:00:00Z</published>
  </entry>
  <entry>
    <id></id>
    <title>Entry without ID is skipped</title>
  </entry>
</feed>`

func TestArxivSourceFetch(t *testing.T) {
	var gotQuery string
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotQuery = r.URL.RawQuery
		w.Write([]byte(arxivFixture))
	}))
	defer ts.Close()

	orig := arxivAPIBase
	arxivAPIBase = ts.URL
	defer func() { arxivAPIBase = orig }()

	src := NewArxivSource("pandemic preparedness")
	src.Client = ts.Client()

	items, err := src.Fetch(context.Background(), types.IngestConfig{MaxItemsPerSource: 5})
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1 (entry without ID dropped)", len(items))
	}

	item := items[0]
	if item.SourceID != "arxiv" || item.Tier != types.TierData {
		t.Errorf("item = %+v, want arxiv source at tier 2", item)
	}
	if item.URL != "http://arxiv.org/abs/2601.01234v1" {
		t.Errorf("url = %q", item.URL)
	}
	if item.PublishedAt.IsZero() {
		t.Error("published timestamp not parsed")
	}

	for _, want := range []string{"search_query=", "max_results=5", "sortBy=relevance"} {
		if !strings.Contains(gotQuery, want) {
			t.Errorf("query %q missing %q", gotQuery, want)
		}
	}
}

func TestArxivSourceEmptyTopics(t *testing.T) {
	src := NewArxivSource("  ,  ")
	if _, err := src.Fetch(context.Background(), types.IngestConfig{}); err == nil {
		t.Fatal("expected error for empty topics")
	}
}

func TestBuildArxivQuery(t *testing.T) {
	tests := []struct {
		topics string
		want   string
	}{
		{"malaria", "all:malaria"},
		{"malaria, cash transfers", "all:malaria+OR+all:cash+transfers"},
		{" , ", ""},
	}
	for _, tt := range tests {
		if got := buildArxivQuery(tt.topics); got != tt.want {
			t.Errorf("buildArxivQuery(%q) = %q, want %q", tt.topics, got, tt.want)
		}
	}
}
