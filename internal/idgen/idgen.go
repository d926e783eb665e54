// Package idgen generates the ULIDs used as event-log watermarks and
// resumable-task ids. Both are process-wide mutable resources: a single
// mutex-guarded monotonic source backs every Generator, so that two
// concurrent callers never observe the same or an out-of-order id.
package idgen

import (
	"crypto/rand"
	"fmt"
	"sync"
	"time"

	"github.com/oklog/ulid/v2"
)

// Generator produces strictly monotonically increasing ULIDs, even across
// calls that land within the same millisecond. It is safe for concurrent use.
type Generator struct {
	mu      sync.Mutex
	entropy *ulid.MonotonicEntropy
	now     func() time.Time
}

// New creates a Generator. A nil now defaults to time.Now, overridden in
// tests that need deterministic clocks.
func New() *Generator {
	return &Generator{
		entropy: ulid.Monotonic(rand.Reader, 0),
		now:     time.Now,
	}
}

// Generate returns the next ULID, guaranteed greater than every ULID this
// Generator has previously produced.
func (g *Generator) Generate() (ulid.ULID, error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	id, err := ulid.New(ulid.Timestamp(g.now()), g.entropy)
	if err != nil {
		return ulid.ULID{}, fmt.Errorf("idgen: generate: %w", err)
	}
	return id, nil
}

// GenerateString is Generate rendered as its canonical string form.
func (g *Generator) GenerateString() (string, error) {
	id, err := g.Generate()
	if err != nil {
		return "", err
	}
	return id.String(), nil
}

// watermarks is the process-wide event-log watermark generator (spec §5:
// "the watermark/ULID generator is protected by a mutex; it is the only
// shared mutable state in the event log").
var watermarks = New()

// Watermark returns the next event-log watermark.
func Watermark() (string, error) { return watermarks.GenerateString() }

// tasks is the process-wide resumable-task id generator. It is a distinct
// instance from watermarks so that task-id and watermark sequences don't
// interleave and steal each other's monotonic guarantee.
var tasks = New()

// TaskID returns the next resumable-task id.
func TaskID() (string, error) { return tasks.GenerateString() }
