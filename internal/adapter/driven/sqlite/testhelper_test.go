package sqlite

import (
	"context"
	"database/sql"
	"fmt"
	"net/url"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/ledgerdesk/ledgerdesk/internal/domain/model"
)

// setupTestDB creates a named shared in-memory SQLite database. Writer and
// reader share the same database via cache=shared; a name derived from
// t.Name() keeps parallel tests isolated from each other.
func setupTestDB(t *testing.T) *DB {
	t.Helper()

	// Percent-encode the test name so subtests with slashes stay a valid
	// SQLite URI filename component.
	safeName := url.PathEscape(t.Name())
	// In-memory databases cannot use WAL; omit the journal_mode pragma.
	dsn := fmt.Sprintf(
		"file:%s?mode=memory&cache=shared&_pragma=busy_timeout(5000)&_pragma=synchronous(NORMAL)&_pragma=foreign_keys(ON)&_pragma=cache_size(-64000)",
		safeName,
	)

	writer, err := sql.Open("sqlite", dsn)
	if err != nil {
		t.Fatalf("create test db writer: %v", err)
	}
	writer.SetMaxOpenConns(1)
	if err := writer.PingContext(context.Background()); err != nil {
		_ = writer.Close()
		t.Fatalf("ping test db writer: %v", err)
	}

	reader, err := sql.Open("sqlite", dsn)
	if err != nil {
		_ = writer.Close()
		t.Fatalf("create test db reader: %v", err)
	}
	reader.SetMaxOpenConns(4)
	if err := reader.PingContext(context.Background()); err != nil {
		_ = reader.Close()
		_ = writer.Close()
		t.Fatalf("ping test db reader: %v", err)
	}

	db := &DB{Writer: writer, Reader: reader, path: dsn}

	if err := RunMigrations(db.Writer); err != nil {
		_ = db.Close()
		t.Fatalf("run migrations: %v", err)
	}

	t.Cleanup(func() { _ = db.Close() })

	return db
}

// createTestCompany inserts a company row and returns it. Most repos hang off
// a company via foreign keys, so nearly every test starts here.
func createTestCompany(t *testing.T, db *DB, name, email string) *model.Company {
	t.Helper()

	repo := NewCompanyRepo(db)
	c := &model.Company{
		Name:         name,
		Email:        email,
		PasswordHash: "$2a$10$testhashtesthashtesthashtesthash",
	}
	require.NoError(t, repo.Create(context.Background(), c))
	return c
}

// nowISO returns today's calendar date in the format ledger dates use.
func nowISO() string {
	return time.Now().UTC().Format("2006-01-02")
}
