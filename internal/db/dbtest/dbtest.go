// Package dbtest connects repository tests to a disposable Postgres database.
package dbtest

import (
	"context"
	"os"
	"strings"
	"testing"

	"github.com/sarthaksaklani/enakart/internal/config"
	"github.com/sarthaksaklani/enakart/internal/db"
)

const EnvURL = "TEST_DATABASE_URL"

// Open connects to TEST_DATABASE_URL and applies migrations. The test is
// skipped when the variable is unset.
func Open(t *testing.T) *db.Postgres {
	t.Helper()

	url := os.Getenv(EnvURL)
	if url == "" {
		t.Skipf("%s not set, skipping repository test", EnvURL)
	}

	pg, err := db.New(context.Background(), config.PostgresConfig{URL: url, MaxConns: 4, MinConns: 1})
	if err != nil {
		t.Fatalf("Failed to connect to test database: %v", err)
	}
	if err := pg.Migrate(); err != nil {
		pg.Close()
		t.Fatalf("Failed to migrate test database: %v", err)
	}
	t.Cleanup(pg.Close)
	return pg
}

// Truncate empties tables before the test and again after it.
func Truncate(t *testing.T, pg *db.Postgres, tables ...string) {
	t.Helper()

	stmt := "TRUNCATE TABLE " + strings.Join(tables, ", ") + " RESTART IDENTITY CASCADE"
	if _, err := pg.Pool.Exec(context.Background(), stmt); err != nil {
		t.Fatalf("Failed to truncate tables: %v", err)
	}
	t.Cleanup(func() {
		if _, err := pg.Pool.Exec(context.Background(), stmt); err != nil {
			t.Errorf("Failed to truncate tables after test: %v", err)
		}
	})
}

// Exec runs a fixture statement, failing the test on error.
func Exec(t *testing.T, pg *db.Postgres, query string, args ...any) {
	t.Helper()
	if _, err := pg.Pool.Exec(context.Background(), query, args...); err != nil {
		t.Fatalf("fixture %q failed: %v", query, err)
	}
}
