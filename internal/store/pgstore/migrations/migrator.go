// Package migrations embeds and applies the Postgres schema for the store
// package, adapted from the outpost migrator down to its single backend:
// one embedded SQL source, one golang-migrate instance, credentials
// sanitized out of any error that reaches a caller's logs.
package migrations

import (
	"context"
	"embed"
	"fmt"
	"net/url"
	"strings"

	"github.com/golang-migrate/migrate/v4"
	_ "github.com/golang-migrate/migrate/v4/database/postgres"
	"github.com/golang-migrate/migrate/v4/source/iofs"
)

//go:embed sql/*.sql
var sqlFiles embed.FS

// Migrator wraps a golang-migrate instance over the embedded schema.
type Migrator struct {
	migrate *migrate.Migrate
}

// New opens a Migrator against databaseURL, a standard postgres:// DSN.
func New(databaseURL string) (*Migrator, error) {
	if databaseURL == "" {
		return nil, fmt.Errorf("migrations: empty database url")
	}

	d, err := iofs.New(sqlFiles, "sql")
	if err != nil {
		return nil, fmt.Errorf("migrations: open embedded source: %w", err)
	}

	m, err := migrate.NewWithSourceInstance("iofs", d, databaseURL)
	if err != nil {
		return nil, sanitizeError(err, databaseURL)
	}

	return &Migrator{migrate: m}, nil
}

// Version reports the currently applied migration version, 0 if none.
func (m *Migrator) Version(context.Context) (int, error) {
	version, _, err := m.migrate.Version()
	if err != nil {
		if err == migrate.ErrNilVersion {
			return 0, nil
		}
		return 0, fmt.Errorf("migrations: version: %w", err)
	}
	return int(version), nil
}

// Up applies every pending migration.
func (m *Migrator) Up(context.Context) error {
	if err := m.migrate.Up(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrations: up: %w", err)
	}
	return nil
}

// Down rolls back every applied migration.
func (m *Migrator) Down(context.Context) error {
	if err := m.migrate.Down(); err != nil && err != migrate.ErrNoChange {
		return fmt.Errorf("migrations: down: %w", err)
	}
	return nil
}

func (m *Migrator) Close() error {
	srcErr, dbErr := m.migrate.Close()
	if srcErr != nil {
		return srcErr
	}
	return dbErr
}

// sanitizeError strips databaseURL (which carries the connection password)
// out of any error message golang-migrate returns, so a caller that logs the
// error verbatim never leaks credentials.
func sanitizeError(err error, databaseURL string) error {
	msg := err.Error()
	if strings.Contains(msg, databaseURL) {
		safe := databaseURL
		if u, perr := url.Parse(databaseURL); perr == nil && u.User != nil {
			if username := u.User.Username(); username != "" {
				safe = fmt.Sprintf("%s://%s:[REDACTED]@%s%s", u.Scheme, username, u.Host, u.Path)
			}
		}
		msg = strings.ReplaceAll(msg, databaseURL, safe)
	}
	return fmt.Errorf("migrations: new: %s", msg)
}
