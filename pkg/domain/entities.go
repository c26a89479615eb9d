// Package domain defines the ship registry entities, value types, and
// rule evaluation primitives used by fleetcore.
package domain

import (
	"math"
	"time"
)

// EntityType identifies the type of record stored in the registry.
type EntityType string

// Supported entity type identifiers used in Change records and persistence buckets.
const (
	// EntityShip identifies an individual ship record.
	EntityShip EntityType = "ship"
	// EntityPort identifies a port record.
	EntityPort EntityType = "port"
)

// ShipClass categorises the vessel. The registry tracks container fleets
// today but the field rides along in snapshots and the API.
type ShipClass string

// Canonical ship classes.
const (
	ClassContainer ShipClass = "container"
	ClassBulk      ShipClass = "bulk"
	ClassTanker    ShipClass = "tanker"
)

// ShipStatus represents the operational state of a vessel.
type ShipStatus string

// Canonical ship statuses used for fleet filtering.
const (
	StatusAvailable ShipStatus = "available"
	StatusInTransit ShipStatus = "in_transit"
	StatusLoading   ShipStatus = "loading"
	StatusUnloading ShipStatus = "unloading"
)

// KnownStatus reports whether s is one of the canonical ship statuses.
func KnownStatus(s ShipStatus) bool {
	switch s {
	case StatusAvailable, StatusInTransit, StatusLoading, StatusUnloading:
		return true
	}
	return false
}

// Base carries identity and audit timestamps shared by registry records.
type Base struct {
	ID        string    `json:"id"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// Ship represents a single vessel tracked by the registry.
//
// CapacityTEU, SpeedKnots and FuelLitersPerHour must be strictly positive;
// ID and Name must be non-empty. The registry enforces both at insertion.
type Ship struct {
	Base
	Name              string     `json:"name"`
	CapacityTEU       float64    `json:"capacity"`
	SpeedKnots        float64    `json:"speed"`
	FuelLitersPerHour float64    `json:"fuel_consumption"`
	Class             ShipClass  `json:"class"`
	Status            ShipStatus `json:"status"`
}

// Berth is a single loading slot at a port. HandlingRateTEU is the transfer
// throughput in TEU per hour. An occupied berth names the docked ship.
type Berth struct {
	ID              string  `json:"berth_id"`
	CapacityTEU     float64 `json:"capacity"`
	HandlingRateTEU float64 `json:"handling_rate"`
	Occupied        bool    `json:"is_occupied"`
	ShipID          string  `json:"current_ship,omitempty"`
}

// Port represents a harbour tracked by the registry. Latitude must lie in
// [-90, 90] and Longitude in [-180, 180]; ID and Name must be non-empty.
type Port struct {
	Base
	Name      string  `json:"name"`
	Latitude  float64 `json:"latitude"`
	Longitude float64 `json:"longitude"`
	Berths    []Berth `json:"berths"`
}

// Clone returns a deep copy; Berths never alias the receiver's slice.
func (p Port) Clone() Port {
	p.Berths = append([]Berth(nil), p.Berths...)
	return p
}

// AvailableBerth returns the index of the first unoccupied berth.
func (p Port) AvailableBerth() (int, bool) {
	for i, b := range p.Berths {
		if !b.Occupied {
			return i, true
		}
	}
	return 0, false
}

// TotalHandlingRateTEU sums the throughput of every berth in TEU per hour.
func (p Port) TotalHandlingRateTEU() float64 {
	var total float64
	for _, b := range p.Berths {
		total += b.HandlingRateTEU
	}
	return total
}

// DistanceKm approximates the distance to another port in kilometres using
// a flat-earth projection at one degree per 111 km.
func (p Port) DistanceKm(other Port) float64 {
	dLat := p.Latitude - other.Latitude
	dLon := p.Longitude - other.Longitude
	return math.Sqrt(dLat*dLat+dLon*dLon) * 111
}

// Severity captures rule outcomes.
type Severity string

// Rule evaluation severities determine commit behavior and logging.
const (
	// SeverityBlock blocks transaction commit.
	SeverityBlock Severity = "block"
	// SeverityWarn logs a warning but allows commit.
	SeverityWarn Severity = "warn"
	SeverityLog  Severity = "log"
)

// Change describes a mutation applied to an entity during a transaction.
type Change struct {
	Entity EntityType
	Action Action
	Before any
	After  any
}

// Action indicates the type of modification performed.
type Action string

// Change actions enumerate supported CRUD operations captured in the audit trail.
const (
	// ActionCreate indicates an entity was created.
	ActionCreate Action = "create"
	// ActionUpdate indicates an entity was updated.
	ActionUpdate Action = "update"
	ActionDelete Action = "delete"
)

// Violation reports a failed rule evaluation.
type Violation struct {
	Rule     string
	Severity Severity
	Message  string
	Entity   EntityType
	EntityID string
}

// Result aggregates violations from the rules engine.
type Result struct {
	Violations []Violation
}

// Merge appends violations from another result.
func (r *Result) Merge(other Result) {
	if len(other.Violations) == 0 {
		return
	}
	r.Violations = append(r.Violations, other.Violations...)
}

// HasBlocking returns true if the result contains blocking violations.
func (r Result) HasBlocking() bool {
	for _, v := range r.Violations {
		if v.Severity == SeverityBlock {
			return true
		}
	}
	return false
}

// RuleViolationError is returned when blocking violations are present.
type RuleViolationError struct {
	Result Result
}

func (e RuleViolationError) Error() string {
	return "transaction blocked by rules"
}
