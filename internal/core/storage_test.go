package core

import (
	"context"
	"path/filepath"
	"testing"

	"fleetcore/internal/infra/persistence/memory"
	"fleetcore/internal/infra/persistence/sqlite"
)

func TestOpenPersistentStoreMemory(t *testing.T) {
	t.Setenv("FLEETCORE_STORAGE_DRIVER", string(StorageMemory))
	store, err := OpenPersistentStore(DefaultRulesEngine())
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	if _, ok := store.(*memory.Store); !ok {
		t.Fatalf("expected memory store, got %T", store)
	}
}

func TestOpenPersistentStoreSQLiteDefault(t *testing.T) {
	t.Setenv("FLEETCORE_STORAGE_DRIVER", "")
	t.Setenv("FLEETCORE_SQLITE_PATH", filepath.Join(t.TempDir(), "fleet.db"))
	store, err := OpenPersistentStore(nil)
	if err != nil {
		t.Fatalf("open: %v", err)
	}
	s, ok := store.(*sqlite.Store)
	if !ok {
		t.Fatalf("expected sqlite store, got %T", store)
	}
	defer func() { _ = s.Close() }()

	svc := NewService(store)
	if _, _, err := svc.AddShip(context.Background(), validInput("SHIP001", "Ocean Star")); err != nil {
		t.Fatalf("add through sqlite store: %v", err)
	}
}

func TestOpenPersistentStoreUnknownDriver(t *testing.T) {
	t.Setenv("FLEETCORE_STORAGE_DRIVER", "etcd")
	if _, err := OpenPersistentStore(nil); err == nil {
		t.Fatalf("expected unknown driver error")
	}
}
