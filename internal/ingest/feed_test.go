// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/pdiddy/idea-engine/internal/httputil"
	"github.com/pdiddy/idea-engine/pkg/types"
)

func init() {
	// Keep retry backoff out of feed tests.
	httputil.RetryBaseDelay = time.Millisecond
}

const rssFixture = `<?xml version="1.0"?>
<rss version="2.0">
  <channel>
    <title>Open Philanthropy</title>
    <item>
      <title>Malaria nets update</title>
      <link>https://example.org/posts/1</link>
      <description>Distribution results for the 2026 season.</description>
      <pubDate>Mon, 02 Mar 2026 10:00:00 +0000</pubDate>
    </item>
    <item>
      <title>Second post</title>
      <link>https://example.org/posts/2</link>
      <description>Another update.</description>
      <pubDate>Tue, 03 Mar 2026 10:00:00 +0000</pubDate>
    </item>
  </channel>
</rss>`

const atomFixture = `<?xml version="1.0"?>
<feed xmlns="http://www.w3.org/2005/Atom">
  <title>Asterisk Magazine</title>
  <entry>
    <title>On forecasting</title>
    <link rel="alternate" href="https://example.org/essays/forecasting"/>
    <summary>An essay about forecasting.</summary>
    <updated>2026-02-15T08:00:00Z</updated>
  </entry>
  <entry>
    <title>No link entry</title>
    <summary>Should be skipped.</summary>
    <updated>2026-02-16T08:00:00Z</updated>
  </entry>
</feed>`

func testFeedSource(t *testing.T, handler http.HandlerFunc) *FeedSource {
	t.Helper()
	ts := httptest.NewServer(handler)
	t.Cleanup(ts.Close)

	src := NewFeedSource(whitelistEntry{
		ID: "open-philanthropy", Name: "Open Philanthropy", Tier: types.TierPrimary,
	})
	src.Client = ts.Client()
	src.baseURL = ts.URL
	return src
}

func TestFeedSourceFetchRSS(t *testing.T) {
	src := testFeedSource(t, func(w http.ResponseWriter, r *http.Request) {
		if !strings.Contains(r.Header.Get("User-Agent"), "idea-engine") {
			t.Errorf("User-Agent = %q", r.Header.Get("User-Agent"))
		}
		w.Write([]byte(rssFixture))
	})

	cfg := types.IngestConfig{HTTPConfig: types.HTTPConfig{UserAgent: "idea-engine/test"}}
	items, err := src.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 2 {
		t.Fatalf("got %d items, want 2", len(items))
	}

	first := items[0]
	if first.Title != "Malaria nets update" {
		t.Errorf("title = %q", first.Title)
	}
	if first.URL != "https://example.org/posts/1" {
		t.Errorf("url = %q", first.URL)
	}
	if first.Tier != types.TierPrimary || first.SourceID != "open-philanthropy" {
		t.Errorf("source fields not inherited: %+v", first)
	}
	want := time.Date(2026, 3, 2, 10, 0, 0, 0, time.UTC)
	if !first.PublishedAt.Equal(want) {
		t.Errorf("published = %v, want %v", first.PublishedAt, want)
	}
}

func TestFeedSourceFetchAtom(t *testing.T) {
	src := testFeedSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(atomFixture))
	})

	items, err := src.Fetch(context.Background(), types.IngestConfig{})
	if err != nil {
		t.Fatal(err)
	}
	// The entry without a link is dropped.
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
	if items[0].Title != "On forecasting" || items[0].URL != "https://example.org/essays/forecasting" {
		t.Errorf("item = %+v", items[0])
	}
}

func TestFeedSourceHonorsMaxItems(t *testing.T) {
	src := testFeedSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.Write([]byte(rssFixture))
	})

	cfg := types.IngestConfig{MaxItemsPerSource: 1}
	items, err := src.Fetch(context.Background(), cfg)
	if err != nil {
		t.Fatal(err)
	}
	if len(items) != 1 {
		t.Fatalf("got %d items, want 1", len(items))
	}
}

func TestFeedSourceRetriesRateLimit(t *testing.T) {
	var calls int32
	src := testFeedSource(t, func(w http.ResponseWriter, _ *http.Request) {
		if atomic.AddInt32(&calls, 1) == 1 {
			w.WriteHeader(http.StatusTooManyRequests)
			return
		}
		w.Write([]byte(rssFixture))
	})

	items, err := src.Fetch(context.Background(), types.IngestConfig{})
	if err != nil {
		t.Fatal(err)
	}
	if atomic.LoadInt32(&calls) != 2 {
		t.Errorf("made %d requests, want 2", calls)
	}
	if len(items) != 2 {
		t.Errorf("got %d items after retry, want 2", len(items))
	}
}

func TestFeedSourceHTTPError(t *testing.T) {
	src := testFeedSource(t, func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusNotFound)
	})
	if _, err := src.Fetch(context.Background(), types.IngestConfig{}); err == nil {
		t.Fatal("expected error for HTTP 404")
	}
}

// --- decodeFeed ---

func TestDecodeFeedUnsupportedRoot(t *testing.T) {
	_, err := decodeFeed(strings.NewReader(`<?xml version="1.0"?><html></html>`))
	if err == nil || !strings.Contains(err.Error(), "unsupported feed root") {
		t.Fatalf("expected unsupported root error, got %v", err)
	}
}

func TestDecodeFeedGarbage(t *testing.T) {
	if _, err := decodeFeed(strings.NewReader("not xml at all")); err == nil {
		t.Fatal("expected error for non-XML input")
	}
}

func TestParseFeedTime(t *testing.T) {
	tests := []struct {
		in     string
		isZero bool
	}{
		{"Mon, 02 Mar 2026 10:00:00 +0000", false},
		{"Mon, 02 Mar 2026 10:00:00 GMT", false},
		{"2026-03-02T10:00:00Z", false},
		{"yesterday", true},
		{"", true},
	}
	for _, tt := range tests {
		got := parseFeedTime(tt.in)
		if got.IsZero() != tt.isZero {
			t.Errorf("parseFeedTime(%q).IsZero() = %v, want %v", tt.in, got.IsZero(), tt.isZero)
		}
	}
}
