// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package ingest

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"net/http"
	"time"

	"github.com/pdiddy/idea-engine/internal/httputil"
	"github.com/pdiddy/idea-engine/pkg/types"
)

// FeedSource fetches one RSS 2.0 or Atom feed from the whitelist.
type FeedSource struct {
	entry  whitelistEntry
	Client *http.Client

	// baseURL overrides the whitelist URL in tests.
	baseURL string
}

// NewFeedSource returns a feed adapter for a whitelist entry.
func NewFeedSource(e whitelistEntry) *FeedSource {
	return &FeedSource{entry: e}
}

func (f *FeedSource) ID() string               { return f.entry.ID }
func (f *FeedSource) Name() string             { return f.entry.Name }
func (f *FeedSource) Tier() types.PriorityTier { return f.entry.Tier }

// Fetch downloads the feed and returns up to MaxItemsPerSource items.
// Rate-limited responses are retried with backoff.
func (f *FeedSource) Fetch(ctx context.Context, cfg types.IngestConfig) ([]types.EvidenceItem, error) {
	url := f.entry.URL
	if f.baseURL != "" {
		url = f.baseURL
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, fmt.Errorf("creating request: %w", err)
	}
	req.Header.Set("User-Agent", cfg.UserAgent)

	client := f.Client
	if client == nil {
		client = &http.Client{Timeout: cfg.Timeout}
	}

	resp, err := httputil.DoWithRetry(ctx, client, req, 0)
	if err != nil {
		return nil, fmt.Errorf("fetching feed: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("feed returned HTTP %d", resp.StatusCode)
	}

	entries, err := decodeFeed(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("parsing feed: %w", err)
	}

	limit := cfg.MaxItemsPerSource
	if limit <= 0 {
		limit = 10
	}
	if len(entries) > limit {
		entries = entries[:limit]
	}

	items := make([]types.EvidenceItem, 0, len(entries))
	for _, e := range entries {
		if e.link == "" {
			continue
		}
		items = append(items, newItem(f, e.title, e.summary, e.link, e.published))
	}
	return items, nil
}

// feedEntry is a format-neutral feed item.
type feedEntry struct {
	title     string
	summary   string
	link      string
	published time.Time
}

// rssDoc covers RSS 2.0 feeds.
type rssDoc struct {
	XMLName xml.Name `xml:"rss"`
	Items   []struct {
		Title       string `xml:"title"`
		Link        string `xml:"link"`
		Description string `xml:"description"`
		PubDate     string `xml:"pubDate"`
	} `xml:"channel>item"`
}

// atomDoc covers Atom feeds.
type atomDoc struct {
	XMLName xml.Name `xml:"feed"`
	Entries []struct {
		Title   string `xml:"title"`
		Summary string `xml:"summary"`
		Content string `xml:"content"`
		Updated string `xml:"updated"`
		Links   []struct {
			Rel  string `xml:"rel,attr"`
			Href string `xml:"href,attr"`
		} `xml:"link"`
	} `xml:"entry"`
}

// decodeFeed sniffs the root element and decodes RSS 2.0 or Atom.
func decodeFeed(r io.Reader) ([]feedEntry, error) {
	dec := xml.NewDecoder(r)
	for {
		tok, err := dec.Token()
		if err != nil {
			return nil, fmt.Errorf("no recognizable feed root: %w", err)
		}
		start, ok := tok.(xml.StartElement)
		if !ok {
			continue
		}
		switch start.Name.Local {
		case "rss":
			var doc rssDoc
			if err := dec.DecodeElement(&doc, &start); err != nil {
				return nil, err
			}
			return fromRSS(doc), nil
		case "feed":
			var doc atomDoc
			if err := dec.DecodeElement(&doc, &start); err != nil {
				return nil, err
			}
			return fromAtom(doc), nil
		default:
			return nil, fmt.Errorf("unsupported feed root element %q", start.Name.Local)
		}
	}
}

func fromRSS(doc rssDoc) []feedEntry {
	entries := make([]feedEntry, 0, len(doc.Items))
	for _, it := range doc.Items {
		entries = append(entries, feedEntry{
			title:     it.Title,
			summary:   it.Description,
			link:      it.Link,
			published: parseFeedTime(it.PubDate),
		})
	}
	return entries
}

func fromAtom(doc atomDoc) []feedEntry {
	entries := make([]feedEntry, 0, len(doc.Entries))
	for _, e := range doc.Entries {
		summary := e.Summary
		if summary == "" {
			summary = e.Content
		}
		link := ""
		for _, l := range e.Links {
			if l.Rel == "" || l.Rel == "alternate" {
				link = l.Href
				break
			}
		}
		entries = append(entries, feedEntry{
			title:     e.Title,
			summary:   summary,
			link:      link,
			published: parseFeedTime(e.Updated),
		})
	}
	return entries
}

// feedTimeFormats lists the timestamp layouts seen across whitelist feeds.
var feedTimeFormats = []string{
	time.RFC1123Z,
	time.RFC1123,
	time.RFC3339,
	"2006-01-02T15:04:05Z",
}

func parseFeedTime(s string) time.Time {
	for _, layout := range feedTimeFormats {
		if t, err := time.Parse(layout, s); err == nil {
			return t
		}
	}
	return time.Time{}
}
