package core

import "fleetcore/pkg/domain"

type (
	EntityType         = domain.EntityType
	ShipClass          = domain.ShipClass
	ShipStatus         = domain.ShipStatus
	Severity           = domain.Severity
	Base               = domain.Base
	Ship               = domain.Ship
	Port               = domain.Port
	Berth              = domain.Berth
	Change             = domain.Change
	Action             = domain.Action
	Violation          = domain.Violation
	Result             = domain.Result
	RuleViolationError = domain.RuleViolationError
	RulesEngine        = domain.RulesEngine
)

const (
	EntityShip = domain.EntityShip
	EntityPort = domain.EntityPort
)

const (
	ClassContainer = domain.ClassContainer
	ClassBulk      = domain.ClassBulk
	ClassTanker    = domain.ClassTanker
)

const (
	StatusAvailable = domain.StatusAvailable
	StatusInTransit = domain.StatusInTransit
	StatusLoading   = domain.StatusLoading
	StatusUnloading = domain.StatusUnloading
)

const (
	SeverityBlock = domain.SeverityBlock
	SeverityWarn  = domain.SeverityWarn
	SeverityLog   = domain.SeverityLog
)

const (
	ActionCreate = domain.ActionCreate
	ActionUpdate = domain.ActionUpdate
	ActionDelete = domain.ActionDelete
)

// NewRulesEngine mirrors the domain constructor for callers wiring stores.
func NewRulesEngine() *RulesEngine { return domain.NewRulesEngine() }
