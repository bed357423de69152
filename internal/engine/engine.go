// Package engine orchestrates record delivery: immediate submission,
// durable queueing on failure, phantom-failure detection and queue
// reconciliation against full reads of the remote store.
package engine

import (
	"context"
	"log/slog"
	"sort"
	"strings"
	"sync"

	"github.com/floodworks/sesloc/internal/queue"
	"github.com/floodworks/sesloc/internal/record"
	"github.com/floodworks/sesloc/internal/remote"
)

// Gateway is the narrow remote contract the engine drives.
type Gateway interface {
	ListAll(ctx context.Context) ([]record.Record, error)
	Append(ctx context.Context, rec record.Record) (record.Record, error)
}

// QueueStore is the durable pending-write store the engine owns entries in.
type QueueStore interface {
	Put(e queue.Entry) error
	GetAll() ([]queue.Entry, error)
	Delete(clientID string) error
	Count() (int, error)
}

// Status is the terminal state of a submit attempt from the client's
// perspective.
type Status string

const (
	// StatusConfirmed means the record is known present remotely.
	StatusConfirmed Status = "confirmed"
	// StatusQueued means the record is durably queued for a later sync.
	StatusQueued Status = "queued"
)

// SubmitResult reports the outcome of SubmitNew.
type SubmitResult struct {
	Status Status
	Record record.Record
}

// SyncResult aggregates a queue drain. Skipped is true when another sync was
// already in flight and this call was a no-op.
type SyncResult struct {
	Confirmed int
	Pending   int
	Skipped   bool
}

// Engine holds the mutable client state: the in-memory record view and the
// sync-in-progress flag. Construct one per process and pass it by reference;
// there are no package-level globals.
type Engine struct {
	gw Gateway
	q  QueueStore

	mu      sync.Mutex
	items   []record.Record
	syncing bool
}

// New creates an Engine over a gateway and a queue store.
func New(gw Gateway, q QueueStore) *Engine {
	return &Engine{gw: gw, q: q}
}

// SubmitNew attempts immediate delivery of a freshly captured record. On
// failure it checks whether the write landed anyway (phantom failure) before
// durably queueing. Configuration faults (missing token or backend URL) fail
// fast and are never queued.
func (e *Engine) SubmitNew(ctx context.Context, rec record.Record) (SubmitResult, error) {
	saved, err := e.gw.Append(ctx, rec)
	if err == nil {
		// Defensive cleanup: a previous attempt of this record may have
		// left a queue entry behind.
		e.deleteQueued(rec.ClientID)
		if saved.ClientID != "" && saved.ClientID != rec.ClientID {
			e.deleteQueued(saved.ClientID)
		}
		e.prepend(saved)
		return SubmitResult{Status: StatusConfirmed, Record: saved}, nil
	}

	if !remote.Retryable(err) {
		return SubmitResult{}, err
	}

	// Some backends apply the write but lose the confirmation. If the record
	// is already present remotely, do not queue it again.
	if e.appearsRemotely(ctx, rec) {
		e.deleteQueued(rec.ClientID)
		if _, refreshErr := e.Refresh(ctx); refreshErr != nil {
			slog.Warn("refresh after confirmed write failed", "error", refreshErr)
		}
		return SubmitResult{Status: StatusConfirmed, Record: rec}, nil
	}

	if putErr := e.q.Put(queue.NewEntry(rec)); putErr != nil {
		// Local persistence failed; surface it rather than silently losing
		// the record.
		return SubmitResult{}, putErr
	}

	slog.Info("record queued", "clientId", rec.ClientID, "cause", err)
	return SubmitResult{Status: StatusQueued, Record: rec}, nil
}

// Sync drains the queue, delivering each entry with its original clientId as
// idempotency key and running the phantom check before leaving an entry
// queued. It is non-reentrant: a call while another sync is in flight
// returns immediately with Skipped set. The drain always ends with a
// best-effort full-read refresh.
func (e *Engine) Sync(ctx context.Context) (SyncResult, error) {
	e.mu.Lock()
	if e.syncing {
		e.mu.Unlock()
		return SyncResult{Skipped: true}, nil
	}
	e.syncing = true
	e.mu.Unlock()

	defer func() {
		e.mu.Lock()
		e.syncing = false
		e.mu.Unlock()
	}()

	entries, err := e.q.GetAll()
	if err != nil {
		return SyncResult{}, err
	}
	if len(entries) == 0 {
		return SyncResult{}, nil
	}

	var result SyncResult
	for _, entry := range entries {
		rec := entry.Record
		// Reconstructed identically on every retry, even across restarts.
		rec.ClientID = entry.ClientID

		saved, err := e.gw.Append(ctx, rec)
		switch {
		case err == nil:
			e.deleteQueued(entry.ClientID)
			if saved.ClientID != "" && saved.ClientID != entry.ClientID {
				e.deleteQueued(saved.ClientID)
			}
			result.Confirmed++
		case !remote.Retryable(err):
			// Missing write capability is a configuration fault; abort the
			// drain rather than burning an attempt per entry.
			return result, err
		case e.appearsRemotely(ctx, rec):
			e.deleteQueued(entry.ClientID)
			result.Confirmed++
		default:
			result.Pending++
		}
	}

	slog.Info("sync finished", "confirmed", result.Confirmed, "pending", result.Pending)

	if _, err := e.Refresh(ctx); err != nil {
		slog.Warn("refresh after sync failed", "error", err)
	}

	return result, nil
}

// Refresh performs a full read, replaces the in-memory view (newest first)
// and prunes every queue entry whose clientId is now present remotely.
func (e *Engine) Refresh(ctx context.Context) ([]record.Record, error) {
	records, err := e.gw.ListAll(ctx)
	if err != nil {
		return nil, err
	}

	sort.SliceStable(records, func(i, j int) bool {
		return strings.Compare(records[j].CreatedAt, records[i].CreatedAt) < 0
	})

	e.mu.Lock()
	e.items = records
	e.mu.Unlock()

	e.reconcileAfterFullRead(records)

	return e.Items(), nil
}

// reconcileAfterFullRead deletes queue entries already reflected in a fresh
// read. This converges queued records to confirmed without any retry
// traffic when the user simply refreshes.
func (e *Engine) reconcileAfterFullRead(records []record.Record) {
	present := make(map[string]struct{})
	for _, rec := range records {
		if id := strings.TrimSpace(rec.ClientID); id != "" {
			present[id] = struct{}{}
		}
	}
	if len(present) == 0 {
		return
	}

	entries, err := e.q.GetAll()
	if err != nil {
		slog.Warn("queue read during reconciliation failed", "error", err)
		return
	}

	for _, entry := range entries {
		if _, ok := present[entry.ClientID]; ok {
			e.deleteQueued(entry.ClientID)
		}
	}
}

// Items returns a copy of the current in-memory record view.
func (e *Engine) Items() []record.Record {
	e.mu.Lock()
	defer e.mu.Unlock()
	items := make([]record.Record, len(e.items))
	copy(items, e.items)
	return items
}

// PendingCount returns the current durable queue size.
func (e *Engine) PendingCount() (int, error) {
	return e.q.Count()
}

// appearsRemotely reports whether the record is present in a fresh full
// read. A failed read counts as not present; the entry stays queued and the
// next sync re-checks.
func (e *Engine) appearsRemotely(ctx context.Context, rec record.Record) bool {
	records, err := e.gw.ListAll(ctx)
	if err != nil {
		return false
	}
	for _, r := range records {
		if record.Same(r, rec) {
			return true
		}
	}
	return false
}

// deleteQueued removes a queue entry, tolerating absence. Delete of an
// absent key is a no-op, so races between the submit and sync paths cannot
// corrupt state.
func (e *Engine) deleteQueued(clientID string) {
	if err := e.q.Delete(clientID); err != nil {
		slog.Warn("queue delete failed", "clientId", clientID, "error", err)
	}
}

func (e *Engine) prepend(rec record.Record) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.items = append([]record.Record{rec}, e.items...)
}
