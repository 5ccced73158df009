package slackpub

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/techronicle/newsroom/internal/articles"
	"github.com/techronicle/newsroom/internal/transcript"
)

func testSummary() transcript.Summary {
	return transcript.Summary{
		SessionID: "sess-1",
		Decisions: []transcript.Decision{
			{DecisionMaker: "Jerin", ItemIDs: []string{"a"}},
		},
	}
}

func TestPublishPostsACardPerItem(t *testing.T) {
	var payloads []map[string]any
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var p map[string]any
		if err := json.Unmarshal(body, &p); err != nil {
			t.Errorf("bad payload: %v", err)
		}
		payloads = append(payloads, p)
	}))
	defer srv.Close()

	p := New(srv.URL, srv.Client())
	items := []articles.Item{
		{ID: "a", Title: "Bitcoin ETF inflows", Source: "Wire", Link: "https://example.com/a", Relevance: 0.9},
		{ID: "b", Title: "Ethereum upgrade", Source: "Wire", Link: "https://example.com/b", Relevance: 0.5},
	}
	if err := p.Publish(context.Background(), items, testSummary()); err != nil {
		t.Fatalf("Publish() error = %v", err)
	}
	// Two article cards plus the wrap-up message.
	if len(payloads) != 3 {
		t.Fatalf("webhook received %d payloads, want 3", len(payloads))
	}

	attachments := payloads[0]["attachments"].([]any)
	att := attachments[0].(map[string]any)
	if att["title"] != "Bitcoin ETF inflows" {
		t.Fatalf("attachment title = %v", att["title"])
	}
	if att["color"] != "#36a64f" {
		t.Fatalf("high-relevance color = %v, want green", att["color"])
	}
	footer := att["footer"].(string)
	if !strings.Contains(footer, "sess-1") {
		t.Fatalf("footer %q missing session id", footer)
	}

	wrap := payloads[2]
	if wrap["text"] != "*Editorial Meeting Complete*" {
		t.Fatalf("wrap-up text = %v", wrap["text"])
	}
	wrapAtt := wrap["attachments"].([]any)[0].(map[string]any)
	if !strings.Contains(wrapAtt["title"].(string), "2 article(s)") {
		t.Fatalf("wrap-up title = %v", wrapAtt["title"])
	}
}

func TestPublishReportsTotalFailure(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "no_service", http.StatusServiceUnavailable)
	}))
	defer srv.Close()

	p := New(srv.URL, srv.Client())
	items := []articles.Item{{ID: "a", Title: "T", Relevance: 0.9}}
	if err := p.Publish(context.Background(), items, testSummary()); err == nil {
		t.Fatal("Publish() should fail when every delivery fails")
	}
}

func TestPublishWithoutWebhook(t *testing.T) {
	p := New("", nil)
	if p.Enabled() {
		t.Fatal("Enabled() = true without webhook")
	}
	if err := p.Publish(context.Background(), []articles.Item{{ID: "a"}}, testSummary()); err == nil {
		t.Fatal("Publish() without webhook should fail")
	}
}

func TestRelevanceColorBands(t *testing.T) {
	cases := []struct {
		relevance float64
		want      string
	}{
		{0.9, "#36a64f"},
		{0.7, "#ffcc02"},
		{0.5, "#ff9500"},
		{0.1, "#ff4444"},
	}
	for _, tc := range cases {
		if got := relevanceColor(tc.relevance); got != tc.want {
			t.Fatalf("relevanceColor(%v) = %q, want %q", tc.relevance, got, tc.want)
		}
	}
}
