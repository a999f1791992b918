package gateway

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/tyhsieh/adabot/internal/adabot/line"
)

// recordingDispatcher hands received batches to a channel so tests can wait
// for the asynchronous dispatch.
type recordingDispatcher struct {
	batches chan []line.Event
}

func newRecordingDispatcher() *recordingDispatcher {
	return &recordingDispatcher{batches: make(chan []line.Event, 8)}
}

func (d *recordingDispatcher) HandleBatch(ctx context.Context, events []line.Event) {
	d.batches <- events
}

func (d *recordingDispatcher) wait(t *testing.T) []line.Event {
	t.Helper()
	select {
	case b := <-d.batches:
		return b
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for dispatch")
		return nil
	}
}

func (d *recordingDispatcher) expectNone(t *testing.T) {
	t.Helper()
	select {
	case b := <-d.batches:
		t.Fatalf("expected no dispatch, got %v", b)
	case <-time.After(100 * time.Millisecond):
	}
}

func TestRootProbe(t *testing.T) {
	srv := New(":0", newRecordingDispatcher())

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	if rr.Body.String() != "OK" {
		t.Errorf("expected body OK, got %q", rr.Body.String())
	}
}

func TestHealthz(t *testing.T) {
	srv := New(":0", newRecordingDispatcher())

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/healthz", nil))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}
	var resp healthResponse
	if err := json.Unmarshal(rr.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode body: %v", err)
	}
	if resp.Status != "ok" {
		t.Errorf("expected status ok, got %q", resp.Status)
	}
}

func TestWebhook_AcksAndDispatches(t *testing.T) {
	d := newRecordingDispatcher()
	srv := New(":0", d)

	body := `{"events":[{"type":"message","message":{"type":"text","text":"@gpt hi"},"source":{"type":"user","userId":"U1"},"replyToken":"tok-1"}]}`
	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(body)))

	if rr.Code != http.StatusOK {
		t.Fatalf("expected 200, got %d", rr.Code)
	}

	events := d.wait(t)
	if len(events) != 1 {
		t.Fatalf("expected 1 event, got %d", len(events))
	}
	if events[0].Message.Text != "@gpt hi" || events[0].ReplyToken != "tok-1" {
		t.Errorf("unexpected event %+v", events[0])
	}
}

func TestWebhook_MalformedBodyStillAcked(t *testing.T) {
	d := newRecordingDispatcher()
	srv := New(":0", d)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader("{not json")))

	// Non-2xx would make the platform redeliver the same broken body.
	if rr.Code != http.StatusOK {
		t.Errorf("expected 200 for malformed body, got %d", rr.Code)
	}
	d.expectNone(t)
}

func TestWebhook_EmptyBatchNotDispatched(t *testing.T) {
	d := newRecordingDispatcher()
	srv := New(":0", d)

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodPost, "/webhook", strings.NewReader(`{"events":[]}`)))

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
	d.expectNone(t)
}

func TestWebhook_GetNotAllowed(t *testing.T) {
	srv := New(":0", newRecordingDispatcher())

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/webhook", nil))

	if rr.Code != http.StatusMethodNotAllowed {
		t.Errorf("expected 405, got %d", rr.Code)
	}
}

func TestMetricsEndpointExists(t *testing.T) {
	srv := New(":0", newRecordingDispatcher())

	rr := httptest.NewRecorder()
	srv.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/metrics", nil))

	if rr.Code != http.StatusOK {
		t.Errorf("expected 200, got %d", rr.Code)
	}
}
