// Package memory provides the in-memory transactional registry store that
// the durable backends wrap.
package memory

import (
	"context"
	"strings"
	"sync"
	"time"

	"fleetcore/pkg/domain"
)

type state struct {
	ships     map[string]domain.Ship
	order     []string
	ports     map[string]domain.Port
	portOrder []string
}

func newState() state {
	return state{
		ships: make(map[string]domain.Ship),
		ports: make(map[string]domain.Port),
	}
}

func (s state) clone() state {
	cloned := newState()
	for k, v := range s.ships {
		cloned.ships[k] = v
	}
	cloned.order = append([]string(nil), s.order...)
	// Ports carry a berth slice, so a shallow map copy would alias it.
	for k, v := range s.ports {
		cloned.ports[k] = v.Clone()
	}
	cloned.portOrder = append([]string(nil), s.portOrder...)
	return cloned
}

// Snapshot captures the full registry state in insertion order for
// durable backends and tests.
type Snapshot struct {
	Ships []domain.Ship `json:"ships"`
	Ports []domain.Port `json:"ports,omitempty"`
}

// Store provides an in-memory transactional store for the ship registry.
// Records are kept in insertion order.
type Store struct {
	mu     sync.RWMutex
	state  state
	engine *domain.RulesEngine
	nowFn  func() time.Time
}

// NewStore constructs an in-memory store backed by the provided rules engine.
func NewStore(engine *domain.RulesEngine) *Store {
	if engine == nil {
		engine = domain.NewRulesEngine()
	}
	return &Store{
		state:  newState(),
		engine: engine,
		nowFn:  func() time.Time { return time.Now().UTC() },
	}
}

// RulesEngine returns the engine evaluated on every transaction.
func (s *Store) RulesEngine() *domain.RulesEngine { return s.engine }

// NowFunc returns the clock used for record timestamps.
func (s *Store) NowFunc() func() time.Time { return s.nowFn }

// SetNowFunc overrides the record clock, primarily for tests.
func (s *Store) SetNowFunc(fn func() time.Time) {
	if fn != nil {
		s.nowFn = fn
	}
}

// Transaction represents a mutation set applied to the store state.
type Transaction struct {
	store   *Store
	state   state
	changes []domain.Change
	now     time.Time
}

type view struct {
	state *state
}

func (v view) ListShips() []domain.Ship {
	out := make([]domain.Ship, 0, len(v.state.order))
	for _, id := range v.state.order {
		out = append(out, v.state.ships[id])
	}
	return out
}

func (v view) FindShip(id string) (domain.Ship, bool) {
	ship, ok := v.state.ships[id]
	return ship, ok
}

func (v view) ListPorts() []domain.Port {
	out := make([]domain.Port, 0, len(v.state.portOrder))
	for _, id := range v.state.portOrder {
		out = append(out, v.state.ports[id].Clone())
	}
	return out
}

func (v view) FindPort(id string) (domain.Port, bool) {
	port, ok := v.state.ports[id]
	if !ok {
		return domain.Port{}, false
	}
	return port.Clone(), true
}

// Snapshot exposes a read-only view of the transactional state.
func (tx *Transaction) Snapshot() domain.TransactionView {
	return view{state: &tx.state}
}

// FindShip retrieves a ship by ID from the transaction state.
func (tx *Transaction) FindShip(id string) (domain.Ship, bool) {
	ship, ok := tx.state.ships[id]
	return ship, ok
}

func validateShip(ship domain.Ship) error {
	if strings.TrimSpace(ship.ID) == "" {
		return domain.ValidationError{Field: "id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(ship.Name) == "" {
		return domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if ship.CapacityTEU <= 0 {
		return domain.ValidationError{Field: "capacity", Reason: "must be positive"}
	}
	if ship.SpeedKnots <= 0 {
		return domain.ValidationError{Field: "speed", Reason: "must be positive"}
	}
	if ship.FuelLitersPerHour <= 0 {
		return domain.ValidationError{Field: "fuel_consumption", Reason: "must be positive"}
	}
	if ship.Status != "" && !domain.KnownStatus(ship.Status) {
		return domain.ValidationError{Field: "status", Reason: "unknown status"}
	}
	return nil
}

// CreateShip stores a new ship within the transaction. Field invariants are
// enforced here so a failed insert never mutates state.
func (tx *Transaction) CreateShip(ship domain.Ship) (domain.Ship, error) {
	if err := validateShip(ship); err != nil {
		return domain.Ship{}, err
	}
	if _, exists := tx.state.ships[ship.ID]; exists {
		return domain.Ship{}, domain.DuplicateIDError{ID: ship.ID}
	}
	if ship.Class == "" {
		ship.Class = domain.ClassContainer
	}
	if ship.Status == "" {
		ship.Status = domain.StatusAvailable
	}
	ship.CreatedAt = tx.now
	ship.UpdatedAt = tx.now
	tx.state.ships[ship.ID] = ship
	tx.state.order = append(tx.state.order, ship.ID)
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityShip, Action: domain.ActionCreate, After: ship})
	return ship, nil
}

// UpdateShip mutates a ship using the provided mutator function.
func (tx *Transaction) UpdateShip(id string, mutator func(*domain.Ship) error) (domain.Ship, error) {
	current, ok := tx.state.ships[id]
	if !ok {
		return domain.Ship{}, domain.NotFoundError{ID: id}
	}
	before := current
	if err := mutator(&current); err != nil {
		return domain.Ship{}, err
	}
	current.ID = id
	if err := validateShip(current); err != nil {
		return domain.Ship{}, err
	}
	current.CreatedAt = before.CreatedAt
	current.UpdatedAt = tx.now
	tx.state.ships[id] = current
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityShip, Action: domain.ActionUpdate, Before: before, After: current})
	return current, nil
}

// DeleteShip removes a ship from the transaction state.
func (tx *Transaction) DeleteShip(id string) error {
	current, ok := tx.state.ships[id]
	if !ok {
		return domain.NotFoundError{ID: id}
	}
	delete(tx.state.ships, id)
	for i, existing := range tx.state.order {
		if existing == id {
			tx.state.order = append(tx.state.order[:i], tx.state.order[i+1:]...)
			break
		}
	}
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityShip, Action: domain.ActionDelete, Before: current})
	return nil
}

func validatePort(port domain.Port) error {
	if strings.TrimSpace(port.ID) == "" {
		return domain.ValidationError{Field: "port_id", Reason: "must not be empty"}
	}
	if strings.TrimSpace(port.Name) == "" {
		return domain.ValidationError{Field: "name", Reason: "must not be empty"}
	}
	if port.Latitude < -90 || port.Latitude > 90 {
		return domain.ValidationError{Field: "latitude", Reason: "must be between -90 and 90"}
	}
	if port.Longitude < -180 || port.Longitude > 180 {
		return domain.ValidationError{Field: "longitude", Reason: "must be between -180 and 180"}
	}
	seen := make(map[string]struct{}, len(port.Berths))
	for _, berth := range port.Berths {
		if strings.TrimSpace(berth.ID) == "" {
			return domain.ValidationError{Field: "berth_id", Reason: "must not be empty"}
		}
		if _, dup := seen[berth.ID]; dup {
			return domain.ValidationError{Field: "berth_id", Reason: "duplicate berth " + berth.ID}
		}
		seen[berth.ID] = struct{}{}
		if berth.CapacityTEU <= 0 {
			return domain.ValidationError{Field: "berth_capacity", Reason: "must be positive"}
		}
		if berth.HandlingRateTEU <= 0 {
			return domain.ValidationError{Field: "berth_handling_rate", Reason: "must be positive"}
		}
	}
	return nil
}

// FindPort retrieves a port by ID from the transaction state.
func (tx *Transaction) FindPort(id string) (domain.Port, bool) {
	port, ok := tx.state.ports[id]
	if !ok {
		return domain.Port{}, false
	}
	return port.Clone(), true
}

// CreatePort stores a new port within the transaction.
func (tx *Transaction) CreatePort(port domain.Port) (domain.Port, error) {
	if err := validatePort(port); err != nil {
		return domain.Port{}, err
	}
	if _, exists := tx.state.ports[port.ID]; exists {
		return domain.Port{}, domain.DuplicateIDError{ID: port.ID, Entity: domain.EntityPort}
	}
	port = port.Clone()
	port.CreatedAt = tx.now
	port.UpdatedAt = tx.now
	tx.state.ports[port.ID] = port
	tx.state.portOrder = append(tx.state.portOrder, port.ID)
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityPort, Action: domain.ActionCreate, After: port})
	return port.Clone(), nil
}

// UpdatePort mutates a port using the provided mutator function.
func (tx *Transaction) UpdatePort(id string, mutator func(*domain.Port) error) (domain.Port, error) {
	current, ok := tx.state.ports[id]
	if !ok {
		return domain.Port{}, domain.NotFoundError{ID: id, Entity: domain.EntityPort}
	}
	before := current.Clone()
	next := current.Clone()
	if err := mutator(&next); err != nil {
		return domain.Port{}, err
	}
	next.ID = id
	if err := validatePort(next); err != nil {
		return domain.Port{}, err
	}
	next.CreatedAt = before.CreatedAt
	next.UpdatedAt = tx.now
	tx.state.ports[id] = next
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityPort, Action: domain.ActionUpdate, Before: before, After: next})
	return next.Clone(), nil
}

// DeletePort removes a port from the transaction state.
func (tx *Transaction) DeletePort(id string) error {
	current, ok := tx.state.ports[id]
	if !ok {
		return domain.NotFoundError{ID: id, Entity: domain.EntityPort}
	}
	delete(tx.state.ports, id)
	for i, existing := range tx.state.portOrder {
		if existing == id {
			tx.state.portOrder = append(tx.state.portOrder[:i], tx.state.portOrder[i+1:]...)
			break
		}
	}
	tx.changes = append(tx.changes, domain.Change{Entity: domain.EntityPort, Action: domain.ActionDelete, Before: current})
	return nil
}

// RunInTransaction executes fn within a transactional copy of the store state.
// Rules are evaluated against the proposed state; blocking violations roll
// the whole transaction back.
func (s *Store) RunInTransaction(ctx context.Context, fn func(domain.Transaction) error) (domain.Result, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx := &Transaction{
		store: s,
		state: s.state.clone(),
		now:   s.nowFn(),
	}

	if err := fn(tx); err != nil {
		return domain.Result{}, err
	}

	var result domain.Result
	if s.engine != nil {
		res, err := s.engine.Evaluate(ctx, view{state: &tx.state}, tx.changes)
		if err != nil {
			return domain.Result{}, err
		}
		result = res
		if res.HasBlocking() {
			return res, domain.RuleViolationError{Result: res}
		}
	}

	s.state = tx.state
	return result, nil
}

// View executes fn against a read-only snapshot of the store state.
func (s *Store) View(_ context.Context, fn func(domain.TransactionView) error) error {
	s.mu.RLock()
	defer s.mu.RUnlock()

	snapshot := s.state.clone()
	return fn(view{state: &snapshot})
}

// GetShip retrieves a ship by ID from committed state.
func (s *Store) GetShip(id string) (domain.Ship, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ship, ok := s.state.ships[id]
	return ship, ok
}

// ListShips returns all ships from committed state in insertion order.
func (s *Store) ListShips() []domain.Ship {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Ship, 0, len(s.state.order))
	for _, id := range s.state.order {
		out = append(out, s.state.ships[id])
	}
	return out
}

// GetPort retrieves a port by ID from committed state.
func (s *Store) GetPort(id string) (domain.Port, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()
	port, ok := s.state.ports[id]
	if !ok {
		return domain.Port{}, false
	}
	return port.Clone(), true
}

// ListPorts returns all ports from committed state in insertion order.
func (s *Store) ListPorts() []domain.Port {
	s.mu.RLock()
	defer s.mu.RUnlock()
	out := make([]domain.Port, 0, len(s.state.portOrder))
	for _, id := range s.state.portOrder {
		out = append(out, s.state.ports[id].Clone())
	}
	return out
}

// ExportState returns a snapshot of the committed state in insertion order.
func (s *Store) ExportState() Snapshot {
	s.mu.RLock()
	defer s.mu.RUnlock()
	ships := make([]domain.Ship, 0, len(s.state.order))
	for _, id := range s.state.order {
		ships = append(ships, s.state.ships[id])
	}
	ports := make([]domain.Port, 0, len(s.state.portOrder))
	for _, id := range s.state.portOrder {
		ports = append(ports, s.state.ports[id].Clone())
	}
	return Snapshot{Ships: ships, Ports: ports}
}

// ImportState replaces the committed state with the snapshot contents,
// preserving the snapshot ordering. Records are taken as-is; callers are
// responsible for having validated them on the way in.
func (s *Store) ImportState(snapshot Snapshot) {
	s.mu.Lock()
	defer s.mu.Unlock()
	next := newState()
	for _, ship := range snapshot.Ships {
		if _, exists := next.ships[ship.ID]; exists {
			continue
		}
		next.ships[ship.ID] = ship
		next.order = append(next.order, ship.ID)
	}
	for _, port := range snapshot.Ports {
		if _, exists := next.ports[port.ID]; exists {
			continue
		}
		next.ports[port.ID] = port.Clone()
		next.portOrder = append(next.portOrder, port.ID)
	}
	s.state = next
}
