package domain

import "context"

// Transaction exposes the registry operations that a persistence
// implementation must support within an atomic scope.
type Transaction interface {
	Snapshot() TransactionView
	CreateShip(Ship) (Ship, error)
	UpdateShip(id string, mutator func(*Ship) error) (Ship, error)
	DeleteShip(id string) error
	FindShip(id string) (Ship, bool)
	CreatePort(Port) (Port, error)
	UpdatePort(id string, mutator func(*Port) error) (Port, error)
	DeletePort(id string) error
	FindPort(id string) (Port, bool)
}

// TransactionView provides read-only access to snapshot data for rules.
type TransactionView interface {
	ListShips() []Ship
	FindShip(id string) (Ship, bool)
	ListPorts() []Port
	FindPort(id string) (Port, bool)
}

// PersistentStore is a minimal abstraction over durable backends. It mirrors
// the subset of store capabilities used directly by higher layers.
type PersistentStore interface {
	RunInTransaction(ctx context.Context, fn func(Transaction) error) (Result, error)
	View(ctx context.Context, fn func(TransactionView) error) error
	GetShip(id string) (Ship, bool)
	ListShips() []Ship
	GetPort(id string) (Port, bool)
	ListPorts() []Port
}
