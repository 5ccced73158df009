package articles

import (
	"context"
	"encoding/xml"
	"fmt"
	"io"
	"log"
	"net/http"
	"sort"
	"strings"
	"time"

	"github.com/PuerkitoBio/goquery"
	"github.com/google/uuid"
)

const (
	userAgent      = "Techronicle News Aggregator 1.0"
	maxFeedBody    = 4 << 20
	defaultPerFeed = 2
	defaultMaxAge  = 7 * 24 * time.Hour
)

// FeedCollector pulls candidate stories from RSS and Atom feeds. A
// failing feed is logged and skipped; the collector only errors when
// every feed fails.
type FeedCollector struct {
	feeds   []string
	client  *http.Client
	perFeed int
	maxAge  time.Duration
}

// NewFeedCollector builds a collector over the given feed URLs. A nil
// client gets a 10 second timeout, matching how long a slow feed is
// worth waiting for.
func NewFeedCollector(feeds []string, client *http.Client) *FeedCollector {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &FeedCollector{
		feeds:   feeds,
		client:  client,
		perFeed: defaultPerFeed,
		maxAge:  defaultMaxAge,
	}
}

// Collect fetches every feed, keeps at most two fresh entries per feed,
// scores relevance, and returns the newest maxItems stories.
func (c *FeedCollector) Collect(ctx context.Context, maxItems int) ([]Item, error) {
	var all []Item
	var failed int
	for _, url := range c.feeds {
		items, err := c.fetchFeed(ctx, url)
		if err != nil {
			failed++
			log.Printf("articles: feed %s: %v", url, err)
			continue
		}
		all = append(all, items...)
	}
	if len(c.feeds) > 0 && failed == len(c.feeds) {
		return nil, fmt.Errorf("articles: all %d feeds failed", failed)
	}
	sort.SliceStable(all, func(i, j int) bool {
		return all[i].PublishedAt.After(all[j].PublishedAt)
	})
	if maxItems > 0 && len(all) > maxItems {
		all = all[:maxItems]
	}
	return all, nil
}

func (c *FeedCollector) fetchFeed(ctx context.Context, url string) ([]Item, error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, err
	}
	req.Header.Set("User-Agent", userAgent)
	resp, err := c.client.Do(req)
	if err != nil {
		return nil, err
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("status %d", resp.StatusCode)
	}
	body, err := io.ReadAll(io.LimitReader(resp.Body, maxFeedBody))
	if err != nil {
		return nil, err
	}
	entries, source, err := parseFeed(body)
	if err != nil {
		return nil, err
	}

	cutoff := time.Now().Add(-c.maxAge)
	var items []Item
	for _, e := range entries {
		if len(items) >= c.perFeed {
			break
		}
		title := strings.TrimSpace(e.Title)
		if title == "" || e.Link == "" {
			continue
		}
		published := e.publishedTime()
		if !published.IsZero() && published.Before(cutoff) {
			continue
		}
		summary := CleanHTML(e.Summary)
		items = append(items, Item{
			ID:          uuid.NewString(),
			Title:       title,
			Summary:     summary,
			Source:      source,
			Link:        e.Link,
			PublishedAt: published,
			Relevance:   Relevance(title, summary),
		})
	}
	return items, nil
}

// CleanHTML strips markup and collapses whitespace, turning feed
// summaries into plain text.
func CleanHTML(s string) string {
	if s == "" {
		return ""
	}
	doc, err := goquery.NewDocumentFromReader(strings.NewReader(s))
	if err != nil {
		return strings.TrimSpace(s)
	}
	doc.Find("script,style").Remove()
	return strings.Join(strings.Fields(doc.Text()), " ")
}

type feedEntry struct {
	Title     string
	Link      string
	Summary   string
	Published string
}

func (e feedEntry) publishedTime() time.Time {
	for _, layout := range []string{
		time.RFC1123Z, time.RFC1123, time.RFC822Z, time.RFC822, time.RFC3339,
		"Mon, 2 Jan 2006 15:04:05 -0700",
	} {
		if t, err := time.Parse(layout, strings.TrimSpace(e.Published)); err == nil {
			return t
		}
	}
	return time.Time{}
}

type rssDocument struct {
	Channel struct {
		Title string `xml:"title"`
		Items []struct {
			Title       string `xml:"title"`
			Link        string `xml:"link"`
			Description string `xml:"description"`
			PubDate     string `xml:"pubDate"`
		} `xml:"item"`
	} `xml:"channel"`
}

type atomDocument struct {
	Title   string `xml:"title"`
	Entries []struct {
		Title string `xml:"title"`
		Link  struct {
			Href string `xml:"href,attr"`
		} `xml:"link"`
		Summary string `xml:"summary"`
		Content string `xml:"content"`
		Updated string `xml:"updated"`
	} `xml:"entry"`
}

func parseFeed(body []byte) ([]feedEntry, string, error) {
	var rss rssDocument
	if err := xml.Unmarshal(body, &rss); err == nil && len(rss.Channel.Items) > 0 {
		entries := make([]feedEntry, 0, len(rss.Channel.Items))
		for _, it := range rss.Channel.Items {
			entries = append(entries, feedEntry{
				Title:     it.Title,
				Link:      it.Link,
				Summary:   it.Description,
				Published: it.PubDate,
			})
		}
		source := strings.TrimSpace(rss.Channel.Title)
		if source == "" {
			source = "Unknown Source"
		}
		return entries, source, nil
	}

	var atom atomDocument
	if err := xml.Unmarshal(body, &atom); err == nil && len(atom.Entries) > 0 {
		entries := make([]feedEntry, 0, len(atom.Entries))
		for _, e := range atom.Entries {
			summary := e.Summary
			if summary == "" {
				summary = e.Content
			}
			entries = append(entries, feedEntry{
				Title:     e.Title,
				Link:      e.Link.Href,
				Summary:   summary,
				Published: e.Updated,
			})
		}
		source := strings.TrimSpace(atom.Title)
		if source == "" {
			source = "Unknown Source"
		}
		return entries, source, nil
	}

	return nil, "", fmt.Errorf("unrecognized feed format")
}

// DefaultFeeds is the crypto desk's standing feed list, used when no
// feeds are configured.
func DefaultFeeds() []string {
	return []string{
		"https://cointelegraph.com/rss",
		"https://decrypt.co/feed",
		"https://www.coindesk.com/arc/outboundfeeds/rss/",
		"https://cryptonews.com/news/feed/",
		"https://www.crypto-news-flash.com/feed/",
	}
}
