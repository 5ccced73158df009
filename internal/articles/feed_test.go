package articles

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"
)

func rssFixture(now time.Time) string {
	recent := now.Add(-3 * time.Hour).Format(time.RFC1123Z)
	stale := now.Add(-10 * 24 * time.Hour).Format(time.RFC1123Z)
	return fmt.Sprintf(`<?xml version="1.0"?>
<rss version="2.0"><channel>
  <title>Test Crypto Wire</title>
  <item>
    <title>Bitcoin breaks resistance as ETF volume climbs</title>
    <link>https://example.com/a</link>
    <description>&lt;p&gt;Spot &lt;b&gt;bitcoin&lt;/b&gt; trading volume on the exchange hit a quarterly high.&lt;/p&gt;</description>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>Old story about ethereum</title>
    <link>https://example.com/old</link>
    <description>stale</description>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>Solana wallet activity doubles</title>
    <link>https://example.com/b</link>
    <description>On-chain wallet counts for solana doubled this month.</description>
    <pubDate>%s</pubDate>
  </item>
  <item>
    <title>Fourth item beyond the per-feed cap</title>
    <link>https://example.com/c</link>
    <description>crypto crypto crypto</description>
    <pubDate>%s</pubDate>
  </item>
</channel></rss>`, recent, stale, recent, recent)
}

func TestFeedCollectorParsesAndFilters(t *testing.T) {
	now := time.Now()
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/rss+xml")
		fmt.Fprint(w, rssFixture(now))
	}))
	defer srv.Close()

	c := NewFeedCollector([]string{srv.URL}, srv.Client())
	items, err := c.Collect(context.Background(), 10)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Collect() returned %d items, want 2 (stale dropped, per-feed cap)", len(items))
	}
	first := items[0]
	if first.Source != "Test Crypto Wire" {
		t.Fatalf("Source = %q, want Test Crypto Wire", first.Source)
	}
	for _, it := range items {
		if it.Title == "Old story about ethereum" {
			t.Fatal("stale entry survived the age filter")
		}
		if it.ID == "" {
			t.Fatal("item without ID")
		}
	}
	if got := items[0].Summary; got != "Spot bitcoin trading volume on the exchange hit a quarterly high." {
		t.Fatalf("Summary = %q, markup not stripped", got)
	}
	if items[0].Relevance <= 0 {
		t.Fatalf("Relevance = %v, want > 0", items[0].Relevance)
	}
}

func TestFeedCollectorAllFeedsFailing(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewFeedCollector([]string{srv.URL}, srv.Client())
	if _, err := c.Collect(context.Background(), 5); err == nil {
		t.Fatal("Collect() should fail when every feed fails")
	}
}

func TestRelevanceCapsAtOne(t *testing.T) {
	score := Relevance("Bitcoin ethereum solana defi nft", "crypto blockchain wallet exchange")
	if score != 1.0 {
		t.Fatalf("Relevance = %v, want 1.0", score)
	}
	if got := Relevance("Local bakery opens", "fresh bread daily"); got != 0 {
		t.Fatalf("Relevance = %v, want 0", got)
	}
	// One keyword scores a third.
	if got := Relevance("Bitcoin only", "nothing else here"); got <= 0.3 || got >= 0.4 {
		t.Fatalf("Relevance = %v, want 1/3", got)
	}
}

func TestStaticSupplierLimits(t *testing.T) {
	s := NewStaticSupplier(SampleItems())
	items, err := s.Collect(context.Background(), 2)
	if err != nil {
		t.Fatalf("Collect() error = %v", err)
	}
	if len(items) != 2 {
		t.Fatalf("Collect(2) returned %d items", len(items))
	}
}
