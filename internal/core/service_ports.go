package core

import (
	"context"
	"fmt"

	"fleetcore/pkg/domain"
)

// PortInput carries the creation-form fields for a new port. When Berths is
// empty, BerthCount berths with default dimensions are generated.
type PortInput struct {
	ID         string  `json:"port_id"`
	Name       string  `json:"name"`
	Latitude   float64 `json:"latitude"`
	Longitude  float64 `json:"longitude"`
	BerthCount int     `json:"berth_count,omitempty"`
	Berths     []Berth `json:"berths,omitempty"`
}

func (in PortInput) port() Port {
	berths := in.Berths
	if len(berths) == 0 && in.BerthCount > 0 {
		berths = DefaultBerths(in.ID, in.BerthCount)
	}
	return Port{
		Base:      Base{ID: in.ID},
		Name:      in.Name,
		Latitude:  in.Latitude,
		Longitude: in.Longitude,
		Berths:    berths,
	}
}

// AddPort validates the input and registers a new port. It fails with a
// ValidationError or DuplicateIDError without mutating the registry.
func (s *Service) AddPort(ctx context.Context, input PortInput) (Port, Result, error) {
	var created Port
	var res Result
	err := s.instrument(ctx, "add_port", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			created, txErr = tx.CreatePort(input.port())
			return txErr
		})
		return err
	})
	return created, res, err
}

// GetPort retrieves a single port by id.
func (s *Service) GetPort(id string) (Port, bool) {
	return s.store.GetPort(id)
}

// ListPorts returns the full ordered port collection.
func (s *Service) ListPorts() []Port {
	return s.store.ListPorts()
}

// RemovePort deletes a port record.
func (s *Service) RemovePort(ctx context.Context, id string) (Result, error) {
	var res Result
	err := s.instrument(ctx, "remove_port", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			return tx.DeletePort(id)
		})
		return err
	})
	return res, err
}

// DockShip assigns the ship to the first available berth at the port and
// marks the ship as loading. Both mutations commit in one transaction; a
// fully occupied port fails with NoBerthAvailableError.
func (s *Service) DockShip(ctx context.Context, portID, shipID string) (Port, Result, error) {
	var docked Port
	var res Result
	err := s.instrument(ctx, "dock_ship", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			if _, ok := tx.FindShip(shipID); !ok {
				return domain.NotFoundError{ID: shipID}
			}
			var txErr error
			docked, txErr = tx.UpdatePort(portID, func(port *Port) error {
				for _, berth := range port.Berths {
					if berth.Occupied && berth.ShipID == shipID {
						return fmt.Errorf("ship %q already docked at %s", shipID, portID)
					}
				}
				idx, ok := port.AvailableBerth()
				if !ok {
					return domain.NoBerthAvailableError{PortID: portID}
				}
				port.Berths[idx].Occupied = true
				port.Berths[idx].ShipID = shipID
				return nil
			})
			if txErr != nil {
				return txErr
			}
			_, txErr = tx.UpdateShip(shipID, func(ship *Ship) error {
				ship.Status = StatusLoading
				return nil
			})
			return txErr
		})
		return err
	})
	return docked, res, err
}

// ReleaseShip frees the berth holding the ship and marks the ship available
// again. Releasing a ship that is not docked at the port is an error.
func (s *Service) ReleaseShip(ctx context.Context, portID, shipID string) (Port, Result, error) {
	var released Port
	var res Result
	err := s.instrument(ctx, "release_ship", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			var txErr error
			released, txErr = tx.UpdatePort(portID, func(port *Port) error {
				for i, berth := range port.Berths {
					if berth.Occupied && berth.ShipID == shipID {
						port.Berths[i].Occupied = false
						port.Berths[i].ShipID = ""
						return nil
					}
				}
				return fmt.Errorf("ship %q is not docked at %s", shipID, portID)
			})
			if txErr != nil {
				return txErr
			}
			if _, ok := tx.FindShip(shipID); ok {
				_, txErr = tx.UpdateShip(shipID, func(ship *Ship) error {
					ship.Status = StatusAvailable
					return nil
				})
			}
			return txErr
		})
		return err
	})
	return released, res, err
}

// PortDistanceKm computes the approximate distance between two registered
// ports in kilometres.
func (s *Service) PortDistanceKm(fromID, toID string) (float64, error) {
	from, ok := s.store.GetPort(fromID)
	if !ok {
		return 0, domain.NotFoundError{ID: fromID, Entity: domain.EntityPort}
	}
	to, ok := s.store.GetPort(toID)
	if !ok {
		return 0, domain.NotFoundError{ID: toID, Entity: domain.EntityPort}
	}
	return from.DistanceKm(to), nil
}

// LoadSampleRegistry seeds the demo fleet and the demo harbours in a single
// transaction. Any id collision rolls back the entire seed.
func (s *Service) LoadSampleRegistry(ctx context.Context) (int, int, Result, error) {
	ships := SampleFleet()
	ports := SamplePorts()
	var res Result
	err := s.instrument(ctx, "load_sample_registry", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			for _, ship := range ships {
				if _, txErr := tx.CreateShip(ship); txErr != nil {
					return fmt.Errorf("seed %s: %w", ship.ID, txErr)
				}
			}
			for _, port := range ports {
				if _, txErr := tx.CreatePort(port); txErr != nil {
					return fmt.Errorf("seed %s: %w", port.ID, txErr)
				}
			}
			return nil
		})
		return err
	})
	if err != nil {
		return 0, 0, res, err
	}
	return len(ships), len(ports), res, nil
}

// LoadSamplePorts populates the registry with the fixed demo harbours inside
// a single transaction. Any id collision fails the whole seed and leaves the
// port registry unchanged.
func (s *Service) LoadSamplePorts(ctx context.Context) (int, Result, error) {
	samples := SamplePorts()
	var res Result
	err := s.instrument(ctx, "load_sample_ports", func(ctx context.Context) error {
		var err error
		res, err = s.store.RunInTransaction(ctx, func(tx domain.Transaction) error {
			for _, port := range samples {
				if _, txErr := tx.CreatePort(port); txErr != nil {
					return fmt.Errorf("seed %s: %w", port.ID, txErr)
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
