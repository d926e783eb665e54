// Package driver defines the store interfaces every backend (in-memory,
// Postgres) implements: the content-addressed message store, the inline
// blob data store, the append-only event log, and the resumable task store.
// Every operation is tenant-scoped and accepts a context for cancellation.
package driver

import (
	"context"
	"io"
	"time"

	gocid "github.com/ipfs/go-cid"

	"github.com/hookdeck/dwn-go/internal/filter"
	"github.com/hookdeck/dwn-go/internal/message"
	"github.com/hookdeck/dwn-go/internal/value"
)

// Indexes is the flat map of sort/filter keys mirrored alongside a stored
// message or event log entry.
type Indexes map[string]value.Value

// Tags is the flat map of tenant-defined tag values, queried as tags.<name>.
type Tags map[string]value.Value

// MessageStore is the content-addressed, per-tenant message store (spec §4.1).
type MessageStore interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	// Put computes the message's CID, persists it, and mirrors indexes/tags.
	// Putting a message whose CID already exists for this tenant is a no-op.
	Put(ctx context.Context, tenant string, msg message.Message, indexes Indexes, tags Tags) (gocid.Cid, error)

	// Get loads a message by cid, scoped to tenant. Absence and a tenancy
	// mismatch are indistinguishable: both return ErrNotFound.
	Get(ctx context.Context, tenant string, cid gocid.Cid) (message.Message, error)

	// Query compiles filters+sort+pagination and returns a page of messages
	// plus a continuation cursor when more rows remain.
	Query(ctx context.Context, tenant string, filters filter.Set, sort filter.Sort, pagination filter.Pagination) ([]message.Message, *filter.Cursor, error)

	Delete(ctx context.Context, tenant string, cid gocid.Cid) error
	Clear(ctx context.Context) error
}

// DataStore is the thin streamed-blob store for inline record data (spec §4.3).
type DataStore interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	Put(ctx context.Context, tenant, recordID string, cid gocid.Cid, data io.Reader) (PutDataResult, error)
	Get(ctx context.Context, tenant, recordID string, cid gocid.Cid) (GetDataResult, error)
	Delete(ctx context.Context, tenant, recordID string, cid gocid.Cid) error
	Clear(ctx context.Context) error
}

type PutDataResult struct {
	Size int64
}

// GetDataResult's Stream is nil and Found is false when no blob exists at
// the requested key.
type GetDataResult struct {
	Found  bool
	Size   int64
	Stream io.ReadCloser
}

// EventLog is the append-only, watermark-ordered per-tenant log (spec §4.4).
type EventLog interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	Append(ctx context.Context, tenant string, cid gocid.Cid, indexes Indexes, tags Tags) error

	// GetEvents is query_events with an empty filter set.
	GetEvents(ctx context.Context, tenant string, cursor *filter.Cursor) ([]gocid.Cid, *filter.Cursor, error)
	QueryEvents(ctx context.Context, tenant string, filters filter.Set, cursor *filter.Cursor) ([]gocid.Cid, *filter.Cursor, error)

	Delete(ctx context.Context, tenant string, cids []gocid.Cid) error
	Clear(ctx context.Context) error
}

// ManagedTask is a resumable task wrapper: the caller's opaque task payload
// plus the scheduler's lease bookkeeping (spec §4.6).
type ManagedTask struct {
	ID      string
	Task    []byte
	Timeout time.Time
}

// ResumableTaskStore backs long-running recoverable operations with
// atomic grab/extend/delete semantics over leased tasks (spec §4.6).
type ResumableTaskStore interface {
	Open(ctx context.Context) error
	Close(ctx context.Context) error

	Register(ctx context.Context, task []byte, timeout time.Duration) (ManagedTask, error)

	// Grab atomically selects up to count available tasks (timeout <= now),
	// extends each one's lease by the fixed lease window, and returns them.
	// Two concurrent Grab calls over a disjoint-sized pool never overlap.
	Grab(ctx context.Context, count int) ([]ManagedTask, error)

	Read(ctx context.Context, id string) (*ManagedTask, error)
	Extend(ctx context.Context, id string, timeout time.Duration) error
	Delete(ctx context.Context, id string) error
	Clear(ctx context.Context) error
}

// LeaseWindow is the fixed extension Grab applies to a task's timeout.
const LeaseWindow = 60 * time.Second
