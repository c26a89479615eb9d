package core

import (
	"context"
	"fmt"

	"fleetcore/pkg/domain"
)

// NewShipFieldsRule returns the default in-transaction rule enforcing ship
// record invariants across the whole registry: non-empty id/name and
// strictly positive capacity, speed and fuel consumption.
func NewShipFieldsRule() domain.Rule {
	return shipFieldsRule{}
}

type shipFieldsRule struct{}

func (shipFieldsRule) Name() string { return "ship_fields" }

func (shipFieldsRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, ship := range view.ListShips() {
		for _, bad := range fieldViolations(ship) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "ship_fields",
				Severity: domain.SeverityBlock,
				Message:  bad,
				Entity:   domain.EntityShip,
				EntityID: ship.ID,
			})
		}
	}
	return res, nil
}

func fieldViolations(ship domain.Ship) []string {
	var out []string
	if ship.ID == "" {
		out = append(out, "ship id must not be empty")
	}
	if ship.Name == "" {
		out = append(out, fmt.Sprintf("ship %s name must not be empty", ship.ID))
	}
	if ship.CapacityTEU <= 0 {
		out = append(out, fmt.Sprintf("ship %s capacity must be positive: %v", ship.ID, ship.CapacityTEU))
	}
	if ship.SpeedKnots <= 0 {
		out = append(out, fmt.Sprintf("ship %s speed must be positive: %v", ship.ID, ship.SpeedKnots))
	}
	if ship.FuelLitersPerHour <= 0 {
		out = append(out, fmt.Sprintf("ship %s fuel consumption must be positive: %v", ship.ID, ship.FuelLitersPerHour))
	}
	return out
}

// NewShipStatusRule returns a warning rule flagging ships whose status is
// outside the canonical set, e.g. after hydrating an old snapshot.
func NewShipStatusRule() domain.Rule {
	return shipStatusRule{}
}

type shipStatusRule struct{}

func (shipStatusRule) Name() string { return "ship_status" }

func (shipStatusRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, ship := range view.ListShips() {
		if ship.Status == "" || domain.KnownStatus(ship.Status) {
			continue
		}
		res.Violations = append(res.Violations, domain.Violation{
			Rule:     "ship_status",
			Severity: domain.SeverityWarn,
			Message:  fmt.Sprintf("ship %s has unknown status %q", ship.ID, ship.Status),
			Entity:   domain.EntityShip,
			EntityID: ship.ID,
		})
	}
	return res, nil
}

// DefaultRulesEngine constructs an engine with the standard registry rules.
func DefaultRulesEngine() *RulesEngine {
	engine := NewRulesEngine()
	engine.Register(NewShipFieldsRule())
	engine.Register(NewShipStatusRule())
	engine.Register(NewPortFieldsRule())
	engine.Register(NewBerthOccupancyRule())
	return engine
}
