package httpapi

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/gorilla/websocket"

	"github.com/techronicle/newsroom/internal/articles"
	"github.com/techronicle/newsroom/internal/brain"
	"github.com/techronicle/newsroom/internal/config"
	"github.com/techronicle/newsroom/internal/newsroom"
	"github.com/techronicle/newsroom/internal/observability"
	"github.com/techronicle/newsroom/internal/persona"
	"github.com/techronicle/newsroom/internal/protocol"
	"github.com/techronicle/newsroom/internal/store"
	"github.com/techronicle/newsroom/internal/transcript"
)

func newTestServer(t *testing.T, supplier articles.Supplier) (*Server, *httptest.Server) {
	t.Helper()

	archive := store.NewInMemoryStore()
	metrics := observability.NewMetrics("httpapi_test")
	svc, err := newsroom.NewService(newsroom.ServiceConfig{
		Registry:    persona.DefaultNewsroom(),
		Adapter:     brain.NewMockAdapter(),
		Metrics:     metrics,
		Archive:     archive,
		TurnTimeout: 2 * time.Second,
		RetryBase:   time.Millisecond,
	})
	if err != nil {
		t.Fatalf("NewService() error = %v", err)
	}

	cfg := config.Config{MaxItems: 5, AllowAnyOrigin: true}
	srv := New(cfg, svc, supplier, archive, metrics)
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return srv, ts
}

func createSession(t *testing.T, ts *httptest.Server, body string) createSessionResponse {
	t.Helper()
	resp, err := http.Post(ts.URL+"/v1/sessions", "application/json", strings.NewReader(body))
	if err != nil {
		t.Fatalf("POST /v1/sessions error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("POST /v1/sessions status = %d", resp.StatusCode)
	}
	var created createSessionResponse
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode create response: %v", err)
	}
	return created
}

func waitFinalized(t *testing.T, ts *httptest.Server, id string) transcript.Summary {
	t.Helper()
	deadline := time.Now().Add(10 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(ts.URL + "/v1/sessions/" + id)
		if err != nil {
			t.Fatalf("GET session error = %v", err)
		}
		var sum transcript.Summary
		err = json.NewDecoder(resp.Body).Decode(&sum)
		resp.Body.Close()
		if err != nil {
			t.Fatalf("decode summary: %v", err)
		}
		if sum.Finalized {
			return sum
		}
		time.Sleep(20 * time.Millisecond)
	}
	t.Fatal("session did not finalize in time")
	return transcript.Summary{}
}

func TestCreateAndFetchSession(t *testing.T) {
	_, ts := newTestServer(t, nil)

	payload, err := json.Marshal(createSessionRequest{Items: articles.SampleItems()})
	if err != nil {
		t.Fatalf("marshal request: %v", err)
	}
	created := createSession(t, ts, string(payload))
	if created.SessionID == "" {
		t.Fatal("create response has empty session id")
	}
	if len(created.Items) != len(articles.SampleItems()) {
		t.Fatalf("create response items = %d", len(created.Items))
	}

	sum := waitFinalized(t, ts, created.SessionID)
	if sum.SessionID != created.SessionID {
		t.Fatalf("summary id = %q, want %q", sum.SessionID, created.SessionID)
	}
	if len(sum.Turns) == 0 || len(sum.Decisions) == 0 {
		t.Fatalf("summary turns = %d decisions = %d", len(sum.Turns), len(sum.Decisions))
	}
}

func TestCreateSessionUsesSupplier(t *testing.T) {
	supplier := articles.NewStaticSupplier(articles.SampleItems())
	_, ts := newTestServer(t, supplier)

	created := createSession(t, ts, `{"max_items":2}`)
	if len(created.Items) != 2 {
		t.Fatalf("collected items = %d, want 2", len(created.Items))
	}
	waitFinalized(t, ts, created.SessionID)
}

func TestCreateSessionWithoutItemsOrSupplier(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Post(ts.URL+"/v1/sessions", "application/json", strings.NewReader(`{}`))
	if err != nil {
		t.Fatalf("POST error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	var errResp errorResponse
	if err := json.NewDecoder(resp.Body).Decode(&errResp); err != nil {
		t.Fatalf("decode error response: %v", err)
	}
	if errResp.Code != "no_items" {
		t.Fatalf("error code = %q", errResp.Code)
	}
}

func TestGetUnknownSession(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/v1/sessions/nope")
	if err != nil {
		t.Fatalf("GET error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}

func TestListSessionsAfterArchive(t *testing.T) {
	payload, _ := json.Marshal(createSessionRequest{Items: articles.SampleItems()})
	_, ts := newTestServer(t, nil)
	created := createSession(t, ts, string(payload))
	waitFinalized(t, ts, created.SessionID)

	resp, err := http.Get(ts.URL + "/v1/sessions")
	if err != nil {
		t.Fatalf("GET /v1/sessions error = %v", err)
	}
	defer resp.Body.Close()
	var listed struct {
		Sessions []store.SessionHead `json:"sessions"`
	}
	if err := json.NewDecoder(resp.Body).Decode(&listed); err != nil {
		t.Fatalf("decode list: %v", err)
	}
	found := false
	for _, head := range listed.Sessions {
		if head.ID == created.SessionID {
			found = true
		}
	}
	if !found {
		t.Fatalf("session %s not listed in %+v", created.SessionID, listed.Sessions)
	}
}

func TestExportFormats(t *testing.T) {
	payload, _ := json.Marshal(createSessionRequest{Items: articles.SampleItems()})
	_, ts := newTestServer(t, nil)
	created := createSession(t, ts, string(payload))
	waitFinalized(t, ts, created.SessionID)

	resp, err := http.Get(ts.URL + "/v1/sessions/" + created.SessionID + "/export?format=markdown")
	if err != nil {
		t.Fatalf("GET export error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("export status = %d", resp.StatusCode)
	}
	if ct := resp.Header.Get("Content-Type"); !strings.Contains(ct, "text/markdown") {
		t.Fatalf("export content type = %q", ct)
	}
	var buf bytes.Buffer
	if _, err := buf.ReadFrom(resp.Body); err != nil {
		t.Fatalf("read export: %v", err)
	}
	if !strings.Contains(buf.String(), "Techronicle Newsroom Session") {
		t.Fatalf("markdown export missing header: %s", buf.String())
	}

	bad, err := http.Get(ts.URL + "/v1/sessions/" + created.SessionID + "/export?format=pdf")
	if err != nil {
		t.Fatalf("GET export error = %v", err)
	}
	defer bad.Body.Close()
	if bad.StatusCode != http.StatusBadRequest {
		t.Fatalf("bad format status = %d, want 400", bad.StatusCode)
	}
}

func TestWatchArchivedSessionSendsSnapshot(t *testing.T) {
	payload, _ := json.Marshal(createSessionRequest{Items: articles.SampleItems()})
	_, ts := newTestServer(t, nil)
	created := createSession(t, ts, string(payload))
	waitFinalized(t, ts, created.SessionID)

	wsURL := "ws" + strings.TrimPrefix(ts.URL, "http") + "/v1/sessions/" + created.SessionID + "/watch"
	conn, _, err := websocket.DefaultDialer.Dial(wsURL, nil)
	if err != nil {
		t.Fatalf("ws dial error = %v", err)
	}
	defer conn.Close()

	conn.SetReadDeadline(time.Now().Add(5 * time.Second))
	var snap protocol.Snapshot
	if err := conn.ReadJSON(&snap); err != nil {
		t.Fatalf("read snapshot: %v", err)
	}
	if snap.Type != protocol.TypeSnapshot {
		t.Fatalf("first message type = %q", snap.Type)
	}
	if !snap.Summary.Finalized {
		t.Fatal("archived snapshot should be finalized")
	}
	if snap.SessionID != created.SessionID {
		t.Fatalf("snapshot session id = %q", snap.SessionID)
	}
}

func TestWatchUnknownSession(t *testing.T) {
	_, ts := newTestServer(t, nil)

	resp, err := http.Get(ts.URL + "/v1/sessions/nope/watch")
	if err != nil {
		t.Fatalf("GET watch error = %v", err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusNotFound {
		t.Fatalf("status = %d, want 404", resp.StatusCode)
	}
}
