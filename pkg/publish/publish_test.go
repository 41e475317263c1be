package publish

import (
	"context"
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/ormasoftchile/actionspec/pkg/format"
)

const testCID = "QmPK1s3pNYLi9ERiq3BDxKa4XosgWwFRQUydHUtz4YgpqB"

func validDoc() map[string]any {
	return map[string]any{
		"title":       "Hello",
		"icon":        "https://example.com/icon.png",
		"description": "A greeting",
		"label":       "Open",
		"links": []any{
			map[string]any{"type": "link", "label": "Home", "href": "https://example.com"},
		},
	}
}

func newPinata(url string) *Pinata {
	return &Pinata{
		Endpoint:    url,
		APIKey:      "key",
		APISecret:   "secret",
		Timeout:     time.Second,
		MaxAttempts: 3,
		Backoff:     time.Millisecond,
	}
}

func TestPinata_Publish(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.Method != http.MethodPost {
			t.Errorf("method = %s", r.Method)
		}
		if r.Header.Get("pinata_api_key") != "key" || r.Header.Get("pinata_secret_api_key") != "secret" {
			t.Errorf("missing credentials: %v", r.Header)
		}
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Content  json.RawMessage `json:"pinataContent"`
			Metadata struct {
				Name string `json:"name"`
			} `json:"pinataMetadata"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if req.Metadata.Name != "Hello" {
			t.Errorf("metadata name = %q", req.Metadata.Name)
		}
		// Canonical form sorts keys.
		if !strings.HasPrefix(string(req.Content), `{"description":`) {
			t.Errorf("content not canonical: %s", req.Content)
		}
		w.Write([]byte(`{"IpfsHash":"` + testCID + `","PinSize":10}`))
	}))
	defer srv.Close()

	cid, err := newPinata(srv.URL).Publish(context.Background(), validDoc())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if cid != testCID {
		t.Errorf("cid = %q", cid)
	}
}

func TestPinata_PinsCanonicalBytes(t *testing.T) {
	doc := validDoc()
	doc["description"] = "Fees < 1% & no <script>"
	want, err := Canonical(doc)
	if err != nil {
		t.Fatal(err)
	}
	if !strings.Contains(string(want), "Fees < 1% & no <script>") {
		t.Fatalf("canonical form escaped HTML: %s", want)
	}

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		var req struct {
			Content json.RawMessage `json:"pinataContent"`
		}
		if err := json.Unmarshal(body, &req); err != nil {
			t.Errorf("bad request body: %v", err)
		}
		if string(req.Content) != string(want) {
			t.Errorf("pinned content = %s, want %s", req.Content, want)
		}
		w.Write([]byte(`{"IpfsHash":"` + testCID + `"}`))
	}))
	defer srv.Close()

	if _, err := newPinata(srv.URL).Publish(context.Background(), doc); err != nil {
		t.Fatalf("Publish: %v", err)
	}
}

func TestPinata_RetriesServerErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			http.Error(w, "unavailable", http.StatusServiceUnavailable)
			return
		}
		w.Write([]byte(`{"IpfsHash":"` + testCID + `"}`))
	}))
	defer srv.Close()

	cid, err := newPinata(srv.URL).Publish(context.Background(), validDoc())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if cid != testCID || calls.Load() != 3 {
		t.Errorf("cid = %q after %d calls", cid, calls.Load())
	}
}

func TestPinata_GivesUp(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "busy", http.StatusTooManyRequests)
	}))
	defer srv.Close()

	_, err := newPinata(srv.URL).Publish(context.Background(), validDoc())
	if err == nil || !strings.Contains(err.Error(), "giving up after 3 attempts") {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 3 {
		t.Errorf("calls = %d, want 3", calls.Load())
	}
}

func TestPinata_DoesNotRetryClientErrors(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		http.Error(w, "bad key", http.StatusUnauthorized)
	}))
	defer srv.Close()

	_, err := newPinata(srv.URL).Publish(context.Background(), validDoc())
	if err == nil || !strings.Contains(err.Error(), "401") {
		t.Fatalf("err = %v", err)
	}
	if calls.Load() != 1 {
		t.Errorf("calls = %d, want 1", calls.Load())
	}
}

func TestPinata_MalformedCID(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Write([]byte(`{"IpfsHash":"bafy"}`))
	}))
	defer srv.Close()

	_, err := newPinata(srv.URL).Publish(context.Background(), validDoc())
	if err == nil || !strings.Contains(err.Error(), "malformed cid") {
		t.Fatalf("err = %v", err)
	}
}

func TestPinata_AttemptTimeout(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) == 1 {
			<-r.Context().Done()
			return
		}
		w.Write([]byte(`{"IpfsHash":"` + testCID + `"}`))
	}))
	defer srv.Close()

	p := newPinata(srv.URL)
	p.Timeout = 50 * time.Millisecond
	cid, err := p.Publish(context.Background(), validDoc())
	if err != nil {
		t.Fatalf("Publish: %v", err)
	}
	if cid != testCID || calls.Load() != 2 {
		t.Errorf("cid = %q after %d calls", cid, calls.Load())
	}
}

func TestPinata_RejectsInvalidDocument(t *testing.T) {
	doc := validDoc()
	delete(doc, "title")
	_, err := newPinata("http://127.0.0.1:1").Publish(context.Background(), doc)
	if !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v, want ErrInvalidDocument", err)
	}
	if !strings.Contains(err.Error(), "must have required property 'title'") {
		t.Errorf("err = %v", err)
	}
}

func TestPinata_MissingCredentials(t *testing.T) {
	p := newPinata("http://127.0.0.1:1")
	p.APISecret = ""
	if _, err := p.Publish(context.Background(), validDoc()); !errors.Is(err, ErrMissingCredentials) {
		t.Fatalf("err = %v, want ErrMissingCredentials", err)
	}
}

func TestPinata_ContextCanceled(t *testing.T) {
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, "down", http.StatusBadGateway)
	}))
	defer srv.Close()

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	if _, err := newPinata(srv.URL).Publish(ctx, validDoc()); err == nil {
		t.Fatal("expected error for canceled context")
	}
}

func TestMemory_Deterministic(t *testing.T) {
	m := NewMemory()
	a, err := m.Publish(context.Background(), validDoc())
	if err != nil {
		t.Fatal(err)
	}
	if !format.CID(a) {
		t.Errorf("cid %q does not match the cid format", a)
	}

	// Same content built in a different order.
	b, err := m.Publish(context.Background(), map[string]any{
		"label":       "Open",
		"links":       validDoc()["links"],
		"description": "A greeting",
		"icon":        "https://example.com/icon.png",
		"title":       "Hello",
	})
	if err != nil {
		t.Fatal(err)
	}
	if a != b {
		t.Errorf("cids differ: %s vs %s", a, b)
	}
	if m.Len() != 1 {
		t.Errorf("Len() = %d, want 1", m.Len())
	}
	data, ok := m.Get(a)
	if !ok || !strings.HasPrefix(string(data), `{"description":"A greeting"`) {
		t.Errorf("Get(%s) = %s, %v", a, data, ok)
	}
}

func TestMemory_RejectsInvalid(t *testing.T) {
	var m Memory
	if _, err := m.Publish(context.Background(), map[string]any{}); !errors.Is(err, ErrInvalidDocument) {
		t.Fatalf("err = %v", err)
	}
}

func TestContentID_KnownVector(t *testing.T) {
	// sha2-256 multihash of the empty input.
	if got := ContentID(nil); got != "QmdfTbBqBPQ7VNxZEYEj14VmRuZBkqFbiwReogJgS1zR1n" {
		t.Errorf("ContentID(nil) = %s", got)
	}
}

var _ Publisher = (*Pinata)(nil)
var _ Publisher = (*Memory)(nil)
