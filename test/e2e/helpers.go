package e2e

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/floodworks/sesloc/internal/engine"
	"github.com/floodworks/sesloc/internal/queue"
	"github.com/floodworks/sesloc/internal/record"
	"github.com/floodworks/sesloc/internal/remote"
	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
)

const testToken = "e2e-token"

// backend is an in-memory stand-in for the remote store of record,
// implementing the GET-list / POST-append contract. Failure modes:
//   - offline: every request is dropped mid-flight (connection reset)
//   - rejectWith: POSTs answer 200 with {ok:false, error: reason}
//   - phantom: POSTs apply the write, then answer with a 500
type backend struct {
	mu         sync.Mutex
	items      []map[string]any
	offline    bool
	rejectWith string
	phantom    bool
}

func (b *backend) setOffline(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.offline = v
}

func (b *backend) setPhantom(v bool) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.phantom = v
}

func (b *backend) setRejectWith(reason string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.rejectWith = reason
}

func (b *backend) itemCount() int {
	b.mu.Lock()
	defer b.mu.Unlock()
	return len(b.items)
}

func (b *backend) clientIDs() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	var ids []string
	for _, item := range b.items {
		if id, ok := item["clientId"].(string); ok {
			ids = append(ids, id)
		}
	}
	return ids
}

func (b *backend) router() http.Handler {
	r := chi.NewRouter()
	r.Use(middleware.Recoverer)

	r.Get("/", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.offline {
			panic(http.ErrAbortHandler)
		}
		json.NewEncoder(w).Encode(map[string]any{"items": b.items})
	})

	r.Post("/", func(w http.ResponseWriter, req *http.Request) {
		b.mu.Lock()
		defer b.mu.Unlock()
		if b.offline {
			panic(http.ErrAbortHandler)
		}

		if req.URL.Query().Get("token") != testToken {
			w.WriteHeader(http.StatusForbidden)
			return
		}

		var payload map[string]any
		if err := json.NewDecoder(req.Body).Decode(&payload); err != nil {
			w.WriteHeader(http.StatusBadRequest)
			return
		}

		if b.rejectWith != "" {
			json.NewEncoder(w).Encode(map[string]any{"ok": false, "error": b.rejectWith})
			return
		}

		b.apply(payload)

		if b.phantom {
			// The write is durable, but the confirmation is lost.
			w.WriteHeader(http.StatusInternalServerError)
			return
		}

		json.NewEncoder(w).Encode(map[string]any{"ok": true, "item": payload})
	})

	return r
}

// apply stores the payload, deduplicating on clientId like a well-behaved
// backend.
func (b *backend) apply(payload map[string]any) {
	clientID, _ := payload["clientId"].(string)
	if clientID != "" {
		for _, existing := range b.items {
			if existing["clientId"] == clientID {
				return
			}
		}
	}
	b.items = append(b.items, payload)
}

// harness wires a full client stack (gateway, durable queue, engine) against
// a fake backend.
type harness struct {
	backend *backend
	server  *httptest.Server
	queue   *queue.Store
	engine  *engine.Engine
}

func newHarness(t *testing.T, token string) *harness {
	t.Helper()

	b := &backend{}
	srv := httptest.NewServer(b.router())
	t.Cleanup(srv.Close)

	q, err := queue.Open(filepath.Join(t.TempDir(), "queue.db"))
	if err != nil {
		t.Fatal(err)
	}
	t.Cleanup(func() { q.Close() })

	gw := remote.New(srv.URL, token, 2*time.Second)

	return &harness{
		backend: b,
		server:  srv,
		queue:   q,
		engine:  engine.New(gw, q),
	}
}

func (h *harness) pendingCount(t *testing.T) int {
	t.Helper()
	count, err := h.queue.Count()
	if err != nil {
		t.Fatal(err)
	}
	return count
}

func fieldRecord(t *testing.T, name string) record.Record {
	t.Helper()
	rec, err := record.New(record.Draft{
		Category:    record.CategoryDrain,
		Name:        name,
		Description: "e2e",
		Fix:         record.Fix{Lat: -28.809, Lng: 153.276, Source: record.SourceGPS},
	}, "e2e-crew")
	if err != nil {
		t.Fatal(err)
	}
	return rec
}
