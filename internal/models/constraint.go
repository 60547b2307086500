package models

import (
	"errors"
	"fmt"
)

// ConstraintKind says whether a pair of guests must or must not share a table
type ConstraintKind string

const (
	MustSitTogether    ConstraintKind = "must_sit_together"
	MustNotSitTogether ConstraintKind = "must_not_sit_together"
)

// Valid reports whether k is a known constraint kind
func (k ConstraintKind) Valid() bool {
	return k == MustSitTogether || k == MustNotSitTogether
}

// ParseConstraintKind converts a raw string into a ConstraintKind
func ParseConstraintKind(raw string) (ConstraintKind, error) {
	k := ConstraintKind(raw)
	if !k.Valid() {
		return "", fmt.Errorf("unknown constraint kind %q", raw)
	}
	return k, nil
}

// Constraint is a hard seating rule over an unordered pair of guests
type Constraint struct {
	ID     string         `json:"id" yaml:"id"`
	Kind   ConstraintKind `json:"kind" yaml:"kind"`
	GuestA string         `json:"guest_a" yaml:"guest_a"`
	GuestB string         `json:"guest_b" yaml:"guest_b"`
	Reason string         `json:"reason,omitempty" yaml:"reason,omitempty"`
}

// ErrSameGuest is returned when a constraint names one guest twice
var ErrSameGuest = errors.New("constraint must reference two distinct guests")

// Validate checks the constraint is well formed
func (c Constraint) Validate() error {
	if !c.Kind.Valid() {
		return fmt.Errorf("constraint %s: unknown kind %q", c.ID, c.Kind)
	}
	if c.GuestA == "" || c.GuestB == "" {
		return fmt.Errorf("constraint %s: both guests are required", c.ID)
	}
	if c.GuestA == c.GuestB {
		return fmt.Errorf("constraint %s: %w", c.ID, ErrSameGuest)
	}
	return nil
}

// Other returns the endpoint of the pair that is not id
func (c Constraint) Other(id string) string {
	if c.GuestA == id {
		return c.GuestB
	}
	return c.GuestA
}
