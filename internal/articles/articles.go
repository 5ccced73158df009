// Package articles models the news items an editorial session argues
// about and the suppliers that produce them.
package articles

import (
	"context"
	"strings"
	"time"
)

// Item is one candidate story put in front of the desk.
type Item struct {
	ID          string    `json:"id"`
	Title       string    `json:"title"`
	Summary     string    `json:"summary"`
	Source      string    `json:"source"`
	Link        string    `json:"link"`
	PublishedAt time.Time `json:"published_at"`
	Relevance   float64   `json:"relevance"`
}

// Supplier produces the items for a session. Implementations include
// the RSS FeedCollector and the StaticSupplier used by tests and the
// CLI sample mode.
type Supplier interface {
	Collect(ctx context.Context, maxItems int) ([]Item, error)
}

var cryptoKeywords = []string{
	"bitcoin", "btc", "ethereum", "eth", "cryptocurrency", "crypto",
	"blockchain", "defi", "nft", "web3", "dao", "altcoin", "stablecoin",
	"mining", "wallet", "exchange", "trading", "hodl", "satoshi",
	"coinbase", "binance", "solana", "cardano", "polkadot", "avalanche",
}

// Relevance scores how on-beat a story is for a crypto desk, from 0 to
// 1. Three distinct keyword hits across title and summary saturate the
// score.
func Relevance(title, summary string) float64 {
	text := strings.ToLower(title + " " + summary)
	matches := 0
	for _, kw := range cryptoKeywords {
		if strings.Contains(text, kw) {
			matches++
		}
	}
	score := float64(matches) / 3.0
	if score > 1.0 {
		score = 1.0
	}
	return score
}

// StaticSupplier serves a fixed slate of items.
type StaticSupplier struct {
	items []Item
}

// NewStaticSupplier copies the given items into a supplier.
func NewStaticSupplier(items []Item) *StaticSupplier {
	cp := make([]Item, len(items))
	copy(cp, items)
	return &StaticSupplier{items: cp}
}

func (s *StaticSupplier) Collect(_ context.Context, maxItems int) ([]Item, error) {
	n := len(s.items)
	if maxItems > 0 && maxItems < n {
		n = maxItems
	}
	out := make([]Item, n)
	copy(out, s.items[:n])
	return out, nil
}

// SampleItems returns a fixed slate useful for demos and the CLI
// sample mode.
func SampleItems() []Item {
	now := time.Now().UTC()
	mk := func(id, title, summary, source string, age time.Duration) Item {
		return Item{
			ID:          id,
			Title:       title,
			Summary:     summary,
			Source:      source,
			Link:        "https://example.com/" + id,
			PublishedAt: now.Add(-age),
			Relevance:   Relevance(title, summary),
		}
	}
	return []Item{
		mk("sample-1",
			"Bitcoin ETF inflows hit record high as institutions pile in",
			"Spot bitcoin ETFs recorded their largest single-day inflow, with institutional wallets accumulating through the exchange dip.",
			"Sample Wire", 2*time.Hour),
		mk("sample-2",
			"Ethereum staking withdrawals surge after protocol upgrade",
			"Validators moved record amounts of eth out of staking contracts, raising questions about defi yield sustainability.",
			"Sample Wire", 5*time.Hour),
		mk("sample-3",
			"Regional bank pilots blockchain settlement for corporate clients",
			"The pilot uses a permissioned blockchain to settle corporate payments, with a stablecoin leg planned for next year.",
			"Sample Wire", 26*time.Hour),
	}
}
