package pgstore_test

import (
	"context"
	"fmt"
	"sync/atomic"
	"testing"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hookdeck/dwn-go/internal/store/driver"
	"github.com/hookdeck/dwn-go/internal/store/drivertest"
	"github.com/hookdeck/dwn-go/internal/store/pgstore"
	"github.com/hookdeck/dwn-go/internal/store/pgstore/migrations"
	"github.com/hookdeck/dwn-go/internal/util/testinfra"
	"github.com/hookdeck/dwn-go/internal/util/testutil"
)

var schemaCounter int64

type harness struct {
	pool   *pgxpool.Pool
	schema string
}

func newHarness(ctx context.Context, t *testing.T) (drivertest.Harness, error) {
	testutil.Integration(t)

	baseURL := testinfra.EnsurePostgres()
	schema := fmt.Sprintf("dwn_conformance_%d", atomic.AddInt64(&schemaCounter, 1))

	bootstrap, err := pgstore.Open(ctx, baseURL)
	if err != nil {
		return nil, err
	}
	_, err = bootstrap.Exec(ctx, fmt.Sprintf("CREATE SCHEMA %s", schema))
	bootstrap.Close()
	if err != nil {
		return nil, err
	}

	schemaURL := testinfra.NewPostgresSchemaURL(baseURL, schema)

	m, err := migrations.New(schemaURL)
	if err != nil {
		return nil, err
	}
	defer m.Close()
	if err := m.Up(ctx); err != nil {
		return nil, err
	}

	pool, err := pgstore.Open(ctx, schemaURL)
	if err != nil {
		return nil, err
	}

	return &harness{pool: pool, schema: schema}, nil
}

func (h *harness) MakeMessageStore(context.Context) (driver.MessageStore, error) {
	return pgstore.NewMessageStore(h.pool), nil
}

func (h *harness) MakeEventLog(context.Context) (driver.EventLog, error) {
	return pgstore.NewEventLog(h.pool), nil
}

func (h *harness) Close() {
	ctx := context.Background()
	_, _ = h.pool.Exec(ctx, fmt.Sprintf("DROP SCHEMA IF EXISTS %s CASCADE", h.schema))
	h.pool.Close()
}

func TestPgstoreConformance(t *testing.T) {
	drivertest.RunConformanceTests(t, newHarness)
}
