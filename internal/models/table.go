package models

import "fmt"

// Shape is the physical form of a table
type Shape string

const (
	ShapeRound       Shape = "round"
	ShapeRectangular Shape = "rectangular"
	ShapeSquare      Shape = "square"
	ShapeHead        Shape = "head"
	ShapeSweetheart  Shape = "sweetheart"
	ShapeCocktail    Shape = "cocktail"
)

// Valid reports whether s is a known shape
func (s Shape) Valid() bool {
	switch s {
	case ShapeRound, ShapeRectangular, ShapeSquare, ShapeHead, ShapeSweetheart, ShapeCocktail:
		return true
	}
	return false
}

// ParseShape converts a raw string into a Shape
func ParseShape(raw string) (Shape, error) {
	s := Shape(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown table shape %q", raw)
	}
	return s, nil
}

// SeatingSide selects which long edges of a rectangular table carry seats
type SeatingSide string

const (
	SideBoth   SeatingSide = "both"
	SideTop    SeatingSide = "top"
	SideBottom SeatingSide = "bottom"
)

// Valid reports whether s is a known seating side
func (s SeatingSide) Valid() bool {
	return s == SideBoth || s == SideTop || s == SideBottom
}

// ParseSeatingSide converts a raw string into a SeatingSide; empty means both
func ParseSeatingSide(raw string) (SeatingSide, error) {
	if raw == "" {
		return SideBoth, nil
	}
	s := SeatingSide(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown seating side %q", raw)
	}
	return s, nil
}

// SweetheartSeats is the fixed size of a sweetheart table
const SweetheartSeats = 2

// Table is a physical table in the venue
type Table struct {
	ID               string      `json:"id" yaml:"id"`
	Name             string      `json:"name" yaml:"name"`
	Shape            Shape       `json:"shape" yaml:"shape"`
	Capacity         int         `json:"capacity" yaml:"capacity"`
	Width            float64     `json:"width" yaml:"width"`
	Height           float64     `json:"height" yaml:"height"`
	SeatingSide      SeatingSide `json:"seating_side,omitempty" yaml:"seating_side,omitempty"`
	IncludeEndSeats  bool        `json:"include_end_seats,omitempty" yaml:"include_end_seats,omitempty"`
	AssignedGuestIDs []string    `json:"assigned_guest_ids" yaml:"assigned_guest_ids,omitempty"`
}

// Normalize fills defaults and clamps values the seat model cannot represent
func (t *Table) Normalize() {
	if t.SeatingSide == "" {
		t.SeatingSide = SideBoth
	}
	if t.Capacity < 0 {
		t.Capacity = 0
	}
	if t.Shape == ShapeSweetheart && t.Capacity > SweetheartSeats {
		t.Capacity = SweetheartSeats
	}
}

// Validate checks the table is well formed
func (t Table) Validate() error {
	if t.ID == "" {
		return fmt.Errorf("table id is required")
	}
	if !t.Shape.Valid() {
		return fmt.Errorf("table %s: unknown shape %q", t.ID, t.Shape)
	}
	if t.SeatingSide != "" && !t.SeatingSide.Valid() {
		return fmt.Errorf("table %s: unknown seating side %q", t.ID, t.SeatingSide)
	}
	if t.Capacity < 0 {
		return fmt.Errorf("table %s: negative capacity %d", t.ID, t.Capacity)
	}
	if t.Width < 0 || t.Height < 0 {
		return fmt.Errorf("table %s: negative dimensions", t.ID)
	}
	return nil
}

// Remaining returns the number of free seats
func (t *Table) Remaining() int {
	return t.Capacity - len(t.AssignedGuestIDs)
}
