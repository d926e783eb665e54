// Package drivertest provides a conformance test suite shared by every
// driver.MessageStore/EventLog implementation, run against memstore directly
// and against pgstore through a Harness backed by a real Postgres instance.
package drivertest

import (
	"context"
	"testing"

	"github.com/hookdeck/dwn-go/internal/store/driver"
)

// Harness provides the test infrastructure for one store backend.
type Harness interface {
	MakeMessageStore(ctx context.Context) (driver.MessageStore, error)
	MakeEventLog(ctx context.Context) (driver.EventLog, error)
	Close()
}

// HarnessMaker creates a new Harness for each test.
type HarnessMaker func(ctx context.Context, t *testing.T) (Harness, error)

// RunConformanceTests exercises the full suite against a driver backend.
func RunConformanceTests(t *testing.T, newHarness HarnessMaker) {
	t.Helper()

	t.Run("MessageStoreCRUD", func(t *testing.T) {
		testMessageStoreCRUD(t, newHarness)
	})
	t.Run("MessageStorePagination", func(t *testing.T) {
		testMessageStorePagination(t, newHarness)
	})
	t.Run("EventLog", func(t *testing.T) {
		testEventLog(t, newHarness)
	})
}
