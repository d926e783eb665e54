package testinfra

import (
	"context"
	"fmt"
	"log"
	"net/url"
	"sync"
	"time"

	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"github.com/testcontainers/testcontainers-go/wait"
)

var (
	postgresOnce sync.Once
	postgresURL  string
)

// EnsurePostgres starts a single shared Postgres container for the process
// and returns its connection URL, the same shape as EnsureRedis.
func EnsurePostgres() string {
	postgresOnce.Do(func() {
		ctx := context.Background()
		container, err := postgres.Run(ctx,
			"postgres:16-alpine",
			postgres.WithDatabase("dwn_test"),
			postgres.WithUsername("dwn"),
			postgres.WithPassword("dwn"),
			testcontainers.WithWaitStrategy(
				wait.ForLog("database system is ready to accept connections").
					WithOccurrence(2).
					WithStartupTimeout(30*time.Second)),
		)
		if err != nil {
			log.Fatalf("failed to start postgres container: %v", err)
		}

		connURL, err := container.ConnectionString(ctx, "sslmode=disable")
		if err != nil {
			log.Fatalf("failed to get postgres connection string: %v", err)
		}
		postgresURL = connURL
	})
	return postgresURL
}

// NewPostgresSchemaURL returns a connection URL scoped to schema within the
// shared container (via libpq's "options" startup parameter), so conformance
// suites run isolated from each other without paying a full container boot
// per test.
func NewPostgresSchemaURL(baseURL, schema string) string {
	options := url.QueryEscape(fmt.Sprintf("-c search_path=%s", schema))
	return fmt.Sprintf("%s&options=%s", baseURL, options)
}
