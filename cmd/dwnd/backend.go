package main

import (
	"context"
	"fmt"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/hookdeck/dwn-go/internal/connstring"
	"github.com/hookdeck/dwn-go/internal/store/driver"
	"github.com/hookdeck/dwn-go/internal/store/memstore"
	"github.com/hookdeck/dwn-go/internal/store/pgstore"
	"github.com/hookdeck/dwn-go/internal/store/pgstore/migrations"
)

// stores bundles the four backends a dwnd process owns, plus every distinct
// Postgres pool those backends share (keyed by DSN, so two stores pointed at
// the same database share one pool while stores on different databases each
// get their own).
type stores struct {
	pools    map[string]*pgxpool.Pool
	messages driver.MessageStore
	data     driver.DataStore
	events   driver.EventLog
	tasks    driver.ResumableTaskStore
}

// openStores dispatches each connection string's scheme to a backend: "mem"
// opens the in-process store (no persistence across restarts, intended for
// local development and tests), "postgres"/"postgresql" opens (or reuses) a
// pgx pool for that DSN, applying embedded migrations once per pool, and
// builds the pgstore variant against it.
func openStores(ctx context.Context, messageURL, dataURL, eventURL, taskURL string) (*stores, error) {
	css, err := parseAll(messageURL, dataURL, eventURL, taskURL)
	if err != nil {
		return nil, err
	}

	s := &stores{pools: map[string]*pgxpool.Pool{}}

	pool := func(cs connstring.ConnString) (*pgxpool.Pool, error) {
		if !isPostgres(cs) {
			return nil, nil
		}
		return s.poolFor(ctx, cs)
	}

	messagePool, err := pool(css[0])
	if err != nil {
		return nil, err
	}
	dataPool, err := pool(css[1])
	if err != nil {
		return nil, err
	}
	eventPool, err := pool(css[2])
	if err != nil {
		return nil, err
	}
	taskPool, err := pool(css[3])
	if err != nil {
		return nil, err
	}

	if s.messages, err = openMessageStore(css[0], messagePool); err != nil {
		return nil, err
	}
	if s.data, err = openDataStore(css[1], dataPool); err != nil {
		return nil, err
	}
	if s.events, err = openEventLog(css[2], eventPool); err != nil {
		return nil, err
	}
	if s.tasks, err = openTaskStore(css[3], taskPool); err != nil {
		return nil, err
	}

	return s, nil
}

func parseAll(urls ...string) ([]connstring.ConnString, error) {
	css := make([]connstring.ConnString, len(urls))
	for i, u := range urls {
		cs, err := connstring.Parse(u)
		if err != nil {
			return nil, fmt.Errorf("backend: parse connection string %d: %w", i, err)
		}
		css[i] = cs
	}
	return css, nil
}

// poolFor returns the pool already open for cs's DSN, opening and migrating
// a new one on first use.
func (s *stores) poolFor(ctx context.Context, cs connstring.ConnString) (*pgxpool.Pool, error) {
	dsn := postgresDSN(cs)
	if pool, ok := s.pools[dsn]; ok {
		return pool, nil
	}

	m, err := migrations.New(dsn)
	if err != nil {
		return nil, fmt.Errorf("backend: migrations: %w", err)
	}
	defer m.Close()
	if err := m.Up(ctx); err != nil {
		return nil, fmt.Errorf("backend: migrations up: %w", err)
	}

	pool, err := pgstore.Open(ctx, dsn)
	if err != nil {
		return nil, fmt.Errorf("backend: open pool: %w", err)
	}
	s.pools[dsn] = pool
	return pool, nil
}

func isPostgres(cs connstring.ConnString) bool {
	return cs.Scheme == "postgres" || cs.Scheme == "postgresql"
}

// postgresDSN renders cs as a plain postgres:// DSN pgx understands,
// dropping the auth query parameter: that field selects a DWN credential
// scope, not a Postgres connection option.
func postgresDSN(cs connstring.ConnString) string {
	plain := cs
	plain.Auth = connstring.AuthRoot
	return plain.String()
}

func openMessageStore(cs connstring.ConnString, pool *pgxpool.Pool) (driver.MessageStore, error) {
	if isPostgres(cs) {
		return pgstore.NewMessageStore(pool), nil
	}
	if cs.Scheme == "mem" {
		return memstore.NewMessageStore(), nil
	}
	return nil, fmt.Errorf("backend: unsupported message store scheme %q", cs.Scheme)
}

func openDataStore(cs connstring.ConnString, pool *pgxpool.Pool) (driver.DataStore, error) {
	if isPostgres(cs) {
		return pgstore.NewDataStore(pool), nil
	}
	if cs.Scheme == "mem" {
		return memstore.NewDataStore(), nil
	}
	return nil, fmt.Errorf("backend: unsupported data store scheme %q", cs.Scheme)
}

func openEventLog(cs connstring.ConnString, pool *pgxpool.Pool) (driver.EventLog, error) {
	if isPostgres(cs) {
		return pgstore.NewEventLog(pool), nil
	}
	if cs.Scheme == "mem" {
		return memstore.NewEventLog(), nil
	}
	return nil, fmt.Errorf("backend: unsupported event log scheme %q", cs.Scheme)
}

func openTaskStore(cs connstring.ConnString, pool *pgxpool.Pool) (driver.ResumableTaskStore, error) {
	if isPostgres(cs) {
		return pgstore.NewTaskStore(pool), nil
	}
	if cs.Scheme == "mem" {
		return memstore.NewTaskStore(), nil
	}
	return nil, fmt.Errorf("backend: unsupported task store scheme %q", cs.Scheme)
}

func (s *stores) openAll(ctx context.Context) error {
	if err := s.messages.Open(ctx); err != nil {
		return fmt.Errorf("backend: open message store: %w", err)
	}
	if err := s.data.Open(ctx); err != nil {
		return fmt.Errorf("backend: open data store: %w", err)
	}
	if err := s.events.Open(ctx); err != nil {
		return fmt.Errorf("backend: open event log: %w", err)
	}
	if err := s.tasks.Open(ctx); err != nil {
		return fmt.Errorf("backend: open task store: %w", err)
	}
	return nil
}

func (s *stores) closeAll(ctx context.Context) {
	_ = s.messages.Close(ctx)
	_ = s.data.Close(ctx)
	_ = s.events.Close(ctx)
	_ = s.tasks.Close(ctx)
	for _, pool := range s.pools {
		pool.Close()
	}
}
