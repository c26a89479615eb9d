package domain

import "fmt"

// ValidationError reports a ship field violating a registry invariant.
type ValidationError struct {
	Field  string
	Reason string
}

func (e ValidationError) Error() string {
	return fmt.Sprintf("invalid %s: %s", e.Field, e.Reason)
}

// DuplicateIDError reports an insertion whose ID is already registered.
// Entity defaults to ship for callers predating the port registry.
type DuplicateIDError struct {
	ID     string
	Entity EntityType
}

func (e DuplicateIDError) Error() string {
	return fmt.Sprintf("%s %q already exists", e.entity(), e.ID)
}

func (e DuplicateIDError) entity() EntityType {
	if e.Entity == "" {
		return EntityShip
	}
	return e.Entity
}

// NotFoundError reports a lookup or mutation against an unknown record.
// Entity defaults to ship for callers predating the port registry.
type NotFoundError struct {
	ID     string
	Entity EntityType
}

func (e NotFoundError) Error() string {
	return fmt.Sprintf("%s %q not found", e.entity(), e.ID)
}

func (e NotFoundError) entity() EntityType {
	if e.Entity == "" {
		return EntityShip
	}
	return e.Entity
}

// NoBerthAvailableError reports a docking attempt against a fully occupied port.
type NoBerthAvailableError struct {
	PortID string
}

func (e NoBerthAvailableError) Error() string {
	return fmt.Sprintf("port %q has no available berth", e.PortID)
}

// ParseError reports a delimited-text row that could not be decoded.
// Line is 1-based and counts the header as line 1.
type ParseError struct {
	Line   int
	Reason string
}

func (e ParseError) Error() string {
	return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
}
