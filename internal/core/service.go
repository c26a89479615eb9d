package core

import (
	"context"
	"fmt"

	"fleetcore/internal/fleetcsv"
	"fleetcore/internal/infra/persistence/memory"
	"fleetcore/pkg/domain"
)

// Service exposes the registry operations consumed by the presentation
// layer: CRUD, tabular projection, delimited-text import/export, and
// sample-data seeding. Each session owns its own Service; the type holds
// no process-wide state.
type Service struct {
	store   domain.PersistentStore
	logger  Logger
	metrics MetricsRecorder
	tracer  Tracer
}

// NewService constructs a service backed by the supplied store.
func NewService(store domain.PersistentStore, opts ...Option) *Service {
	s := &Service{
		store:  store,
		logger: noopLogger{},
		tracer: noopTracer{},
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// NewInMemoryService creates a service and in-memory store with the given
// rules engine (nil selects the default registry rules).
func NewInMemoryService(engine *RulesEngine, opts ...Option) *Service {
	if engine == nil {
		engine = DefaultRulesEngine()
	}
	return NewService(memory.NewStore(engine), opts...)
}

// Store returns the underlying storage implementation.
func (s *Service) Store() domain.PersistentStore {
	return s.store
}

// ShipInput carries the raw creation-form fields for a new ship. Class and
// Status are optional and default to container/available.
type ShipInput struct {
	ID                string     `json:"id"`
	Name              string     `json:"name"`
	CapacityTEU       float64    `json:"capacity"`
	SpeedKnots        float64    `json:"speed"`
	FuelLitersPerHour float64    `json:"fuel_consumption"`
	Class             ShipClass  `json:"class,omitempty"`
	Status            ShipStatus `json:"status,omitempty"`
}

func (in ShipInput) ship() Ship {
	return Ship{
		Base:              Base{ID: in.ID},
		Name:              in.Name,
		CapacityTEU:       in.CapacityTEU,
		SpeedKnots:        in.SpeedKnots,
		FuelLitersPerHour: in.FuelLitersPerHour,
		Class:             in.Class,
		Status:            in.Status,
	}
}

// AddShip validates the input and appends a new record. It fails with a
// ValidationError or DuplicateIDError without mutating the registry.
func (s *Service) AddShip(ctx context.Context, input ShipInput) (Ship, Result, error) {
	var created Ship
	var res Result
	err := s.instrument(ctx, "add_ship", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreateShip(input.ship())
			return txErr
		})
		return err
	})
	return created, res, err
}

// GetShip retrieves a single ship by id.
func (s *Service) GetShip(id string) (Ship, bool) {
	return s.store.GetShip(id)
}

// ListShips returns the full ordered collection.
func (s *Service) ListShips() []Ship {
	return s.store.ListShips()
}

// RemoveShip deletes a ship record.
func (s *Service) RemoveShip(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "remove_ship", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeleteShip(id)
		})
		return err
	})
	return res, err
}

// UpdateShipStatus transitions a ship to the given operational status.
func (s *Service) UpdateShipStatus(ctx context.Context, id string, status ShipStatus) (Ship, Result, error) {
	var updated Ship
	var res Result
	err := s.instrument(ctx, "update_ship_status", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			updated, txErr = tx.UpdateShip(id, func(ship *Ship) error {
				ship.Status = status
				return nil
			})
			return txErr
		})
		return err
	})
	return updated, res, err
}

// ShipsByStatus filters the registry by operational status, preserving order.
func (s *Service) ShipsByStatus(status ShipStatus) []Ship {
	var out []Ship
	for _, ship := range s.store.ListShips() {
		if ship.Status == status {
			out = append(out, ship)
		}
	}
	return out
}

// TableRow is a single tabular projection of a ship record.
type TableRow struct {
	ID                string  `json:"id"`
	Name              string  `json:"name"`
	CapacityTEU       float64 `json:"capacity"`
	SpeedKnots        float64 `json:"speed"`
	FuelLitersPerHour float64 `json:"fuel_consumption"`
}

// TableColumns lists the projection columns in order.
var TableColumns = []string{"id", "name", "capacity", "speed", "fuel_consumption"}

// Table projects every ship into a row, preserving registry order. Callers
// derive aggregate statistics (count, sums, means) from the rows themselves.
func (s *Service) Table() []TableRow {
	ships := s.store.ListShips()
	rows := make([]TableRow, 0, len(ships))
	for _, ship := range ships {
		rows = append(rows, TableRow{
			ID:                ship.ID,
			Name:              ship.Name,
			CapacityTEU:       ship.CapacityTEU,
			SpeedKnots:        ship.SpeedKnots,
			FuelLitersPerHour: ship.FuelLitersPerHour,
		})
	}
	return rows
}

// RowFailure describes a rejected import row.
type RowFailure struct {
	Line   int    `json:"line"`
	ShipID string `json:"ship_id,omitempty"`
	Reason string `json:"reason"`
}

// ImportReport summarises a best-effort import: how many rows were applied
// and which rows were rejected and why.
type ImportReport struct {
	Applied  int          `json:"applied"`
	Failures []RowFailure `json:"failures,omitempty"`
}

// ImportText parses a delimited-text payload and adds every valid row in
// order. Rows are applied independently: a failing row is reported in the
// returned ImportReport and never discards rows already applied. A non-nil
// error is returned only when the payload itself cannot be decoded (missing
// or malformed header).
func (s *Service) ImportText(ctx context.Context, text string) (ImportReport, error) {
	var report ImportReport
	err := s.instrument(ctx, "import_text", func(ctx context.Context) error {
		rows, err := fleetcsv.Decode(text)
		if err != nil {
			return err
		}
		for _, row := range rows {
			if row.Err != nil {
				report.Failures = append(report.Failures, RowFailure{Line: row.Line, Reason: row.Err.Error()})
				continue
			}
			ship := row.Ship
			if _, err := s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
				_, txErr := tx.CreateShip(ship)
				return txErr
			}); err != nil {
				report.Failures = append(report.Failures, RowFailure{Line: row.Line, ShipID: ship.ID, Reason: err.Error()})
				continue
			}
			report.Applied++
		}
		if len(report.Failures) > 0 {
			s.logger.Info("import finished with rejected rows",
				"applied", report.Applied, "rejected", len(report.Failures))
		}
		return nil
	})
	if err != nil {
		return ImportReport{}, err
	}
	return report, nil
}

// ExportText serializes the registry to the five-column delimited format,
// header first, one row per ship in registry order. Importing the result
// into a fresh registry reproduces the same records in the same order.
func (s *Service) ExportText() (string, error) {
	return fleetcsv.Encode(s.store.ListShips())
}

// LoadSampleData populates the registry with the fixed demo fleet inside a
// single transaction. If any sample id collides with an existing record the
// whole seed fails with a DuplicateIDError and the registry is unchanged.
func (s *Service) LoadSampleData(ctx context.Context) (int, Result, error) {
	samples := SampleFleet()
	var res Result
	err := s.instrument(ctx, "load_sample_data", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			for _, ship := range samples {
				if _, txErr := tx.CreateShip(ship); txErr != nil {
					return fmt.Errorf("seed %s: %w", ship.ID, txErr)
				}
			}
			return nil
		})
		return err
	})
	if err != nil {
		return 0, res, err
	}
	return len(samples), res, nil
}
