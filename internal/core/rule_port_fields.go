package core

import (
	"context"
	"fmt"

	"fleetcore/pkg/domain"
)

// NewPortFieldsRule returns the in-transaction rule enforcing port record
// invariants: non-empty id/name and coordinates inside the valid ranges.
func NewPortFieldsRule() domain.Rule {
	return portFieldsRule{}
}

type portFieldsRule struct{}

func (portFieldsRule) Name() string { return "port_fields" }

func (portFieldsRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, port := range view.ListPorts() {
		for _, bad := range portViolations(port) {
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "port_fields",
				Severity: domain.SeverityBlock,
				Message:  bad,
				Entity:   domain.EntityPort,
				EntityID: port.ID,
			})
		}
	}
	return res, nil
}

func portViolations(port domain.Port) []string {
	var out []string
	if port.ID == "" {
		out = append(out, "port id must not be empty")
	}
	if port.Name == "" {
		out = append(out, fmt.Sprintf("port %s name must not be empty", port.ID))
	}
	if port.Latitude < -90 || port.Latitude > 90 {
		out = append(out, fmt.Sprintf("port %s latitude out of range: %v", port.ID, port.Latitude))
	}
	if port.Longitude < -180 || port.Longitude > 180 {
		out = append(out, fmt.Sprintf("port %s longitude out of range: %v", port.ID, port.Longitude))
	}
	return out
}

// NewBerthOccupancyRule returns a warning rule flagging occupied berths that
// reference ships missing from the registry, e.g. after a partial snapshot
// restore.
func NewBerthOccupancyRule() domain.Rule {
	return berthOccupancyRule{}
}

type berthOccupancyRule struct{}

func (berthOccupancyRule) Name() string { return "berth_occupancy" }

func (berthOccupancyRule) Evaluate(_ context.Context, view domain.RuleView, _ []domain.Change) (domain.Result, error) {
	res := domain.Result{}
	for _, port := range view.ListPorts() {
		for _, berth := range port.Berths {
			if !berth.Occupied || berth.ShipID == "" {
				continue
			}
			if _, ok := view.FindShip(berth.ShipID); ok {
				continue
			}
			res.Violations = append(res.Violations, domain.Violation{
				Rule:     "berth_occupancy",
				Severity: domain.SeverityWarn,
				Message:  fmt.Sprintf("berth %s at port %s holds unknown ship %q", berth.ID, port.ID, berth.ShipID),
				Entity:   domain.EntityPort,
				EntityID: port.ID,
			})
		}
	}
	return res, nil
}
