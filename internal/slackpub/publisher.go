// Package slackpub delivers approved articles to a Slack channel
// through an incoming webhook.
package slackpub

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"time"

	"github.com/techronicle/newsroom/internal/articles"
	"github.com/techronicle/newsroom/internal/transcript"
)

// Outcome reports one delivery attempt.
type Outcome struct {
	Success bool   `json:"success"`
	Detail  string `json:"detail,omitempty"`
}

// Publisher posts article cards to a Slack webhook. Deliveries are best
// effort: a failed post is logged and reported, never retried.
type Publisher struct {
	webhookURL string
	client     *http.Client
}

// New builds a publisher. A nil client gets a 10 second timeout.
func New(webhookURL string, client *http.Client) *Publisher {
	if client == nil {
		client = &http.Client{Timeout: 10 * time.Second}
	}
	return &Publisher{webhookURL: webhookURL, client: client}
}

// Enabled reports whether a webhook is configured.
func (p *Publisher) Enabled() bool { return p.webhookURL != "" }

// Publish posts one card per approved item. It satisfies the service's
// publication sink and returns an error only when nothing could be
// delivered.
func (p *Publisher) Publish(ctx context.Context, selected []articles.Item, summary transcript.Summary) error {
	if !p.Enabled() {
		return fmt.Errorf("slackpub: no webhook URL configured")
	}
	delivered := 0
	for _, item := range selected {
		outcome := p.deliver(ctx, articlePayload(item, summary))
		if outcome.Success {
			delivered++
			log.Printf("slackpub: published %q for session %s", item.Title, summary.SessionID)
		} else {
			log.Printf("slackpub: publish %q failed: %s", item.Title, outcome.Detail)
		}
	}
	if delivered == 0 && len(selected) > 0 {
		return fmt.Errorf("slackpub: all %d deliveries failed", len(selected))
	}
	if outcome := p.deliver(ctx, sessionPayload(selected, summary)); !outcome.Success {
		log.Printf("slackpub: session summary for %s failed: %s", summary.SessionID, outcome.Detail)
	}
	return nil
}

func (p *Publisher) deliver(ctx context.Context, payload map[string]any) Outcome {
	body, err := json.Marshal(payload)
	if err != nil {
		return Outcome{Detail: err.Error()}
	}
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, p.webhookURL, bytes.NewReader(body))
	if err != nil {
		return Outcome{Detail: err.Error()}
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := p.client.Do(req)
	if err != nil {
		return Outcome{Detail: err.Error()}
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		raw, _ := io.ReadAll(io.LimitReader(resp.Body, 1024))
		return Outcome{Detail: fmt.Sprintf("webhook status %d: %s", resp.StatusCode, raw)}
	}
	return Outcome{Success: true}
}

func articlePayload(item articles.Item, summary transcript.Summary) map[string]any {
	attachment := map[string]any{
		"color":      relevanceColor(item.Relevance),
		"title":      item.Title,
		"title_link": item.Link,
		"text":       preview(item.Summary, 300),
		"fields": []map[string]any{
			{"title": "Source", "value": item.Source, "short": true},
			{"title": "Crypto Relevance", "value": fmt.Sprintf("%.0f%%", item.Relevance*100), "short": true},
			{"title": "Approved By", "value": approver(summary), "short": true},
		},
		"footer": fmt.Sprintf("Techronicle Newsroom | Session: %s", summary.SessionID),
	}
	return map[string]any{
		"text":        "*New Article Published* by Techronicle Newsroom",
		"username":    "Techronicle Bot",
		"icon_emoji":  ":newspaper:",
		"attachments": []map[string]any{attachment},
	}
}

func sessionPayload(selected []articles.Item, summary transcript.Summary) map[string]any {
	decision := "Organic editorial decision"
	if summary.Forced {
		decision = "Editorial override (deadline pressure)"
	}
	attachment := map[string]any{
		"color": "#4a90d9",
		"title": fmt.Sprintf("Editorial Meeting Wrap: %d article(s) published", len(selected)),
		"fields": []map[string]any{
			{"title": "Turns", "value": fmt.Sprintf("%d", len(summary.Turns)), "short": true},
			{"title": "Decision", "value": decision, "short": true},
		},
		"footer": fmt.Sprintf("Techronicle Newsroom | Session: %s", summary.SessionID),
	}
	return map[string]any{
		"text":        "*Editorial Meeting Complete*",
		"username":    "Techronicle Bot",
		"icon_emoji":  ":newspaper:",
		"attachments": []map[string]any{attachment},
	}
}

func relevanceColor(relevance float64) string {
	switch {
	case relevance >= 0.8:
		return "#36a64f"
	case relevance >= 0.6:
		return "#ffcc02"
	case relevance >= 0.4:
		return "#ff9500"
	default:
		return "#ff4444"
	}
}

func approver(summary transcript.Summary) string {
	for _, d := range summary.Decisions {
		if d.Forced {
			return d.DecisionMaker + " (editorial override)"
		}
		return d.DecisionMaker
	}
	return "Editorial Desk"
}

func preview(s string, max int) string {
	if s == "" {
		return "_No content preview available_"
	}
	if len(s) <= max {
		return s
	}
	return s[:max] + "..."
}
