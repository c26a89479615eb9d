package postgres

import (
	"database/sql"
	"errors"
	"strings"
	"testing"
)

func TestNewStoreOpenError(t *testing.T) {
	restore := OverrideSQLOpen(func(driverName, dsn string) (*sql.DB, error) {
		if driverName != defaultDriver {
			t.Fatalf("expected driver %s, got %s", defaultDriver, driverName)
		}
		if dsn != defaultDSN {
			t.Fatalf("expected default DSN, got %s", dsn)
		}
		return nil, errors.New("boom")
	})
	defer restore()

	_, err := NewStore("", nil)
	if err == nil || !strings.Contains(err.Error(), "open postgres") {
		t.Fatalf("expected open error, got %v", err)
	}
}

func TestNewStorePingError(t *testing.T) {
	restore := OverrideSQLOpen(func(_, _ string) (*sql.DB, error) {
		// sql.Open with an unreachable DSN defers the failure to Ping.
		return sql.Open(defaultDriver, "postgres://127.0.0.1:1/doesnotexist?connect_timeout=1")
	})
	defer restore()

	_, err := NewStore("postgres://custom", nil)
	if err == nil || !strings.Contains(err.Error(), "ping postgres") {
		t.Fatalf("expected ping error, got %v", err)
	}
}
