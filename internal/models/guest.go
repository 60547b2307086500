package models

import (
	"fmt"
	"time"
)

// Guest represents a wedding guest
type Guest struct {
	ID              string     `json:"id" yaml:"id"`
	Name            string     `json:"name" yaml:"name"`
	PhoneNumber     string     `json:"phone_number,omitempty" yaml:"phone_number,omitempty"`
	RSVPStatus      RSVPStatus `json:"rsvp_status" yaml:"rsvp_status"`
	RSVPDate        time.Time  `json:"rsvp_date,omitempty" yaml:"rsvp_date,omitempty"`
	HouseholdID     string     `json:"household_id,omitempty" yaml:"household_id,omitempty"`
	SocialCircleIDs []string   `json:"social_circle_ids,omitempty" yaml:"social_circle_ids,omitempty"`
	Seat            *SeatRef   `json:"seat,omitempty" yaml:"seat,omitempty"`
	Notes           string     `json:"notes,omitempty" yaml:"notes,omitempty"`
}

// SeatRef points a guest at one seat of one table.
// A guest either has both a table and a seat index or neither.
type SeatRef struct {
	TableID   string `json:"table_id" yaml:"table_id"`
	SeatIndex int    `json:"seat_index" yaml:"seat_index"`
}

// RSVPStatus represents the attendance confirmation status
type RSVPStatus string

const (
	RSVPConfirmed RSVPStatus = "confirmed"
	RSVPDeclined  RSVPStatus = "declined"
	RSVPPending   RSVPStatus = "pending"
	RSVPTentative RSVPStatus = "tentative"
)

// Valid reports whether s is one of the known statuses
func (s RSVPStatus) Valid() bool {
	switch s {
	case RSVPConfirmed, RSVPDeclined, RSVPPending, RSVPTentative:
		return true
	}
	return false
}

// ParseRSVPStatus converts a raw string into an RSVPStatus
func ParseRSVPStatus(raw string) (RSVPStatus, error) {
	s := RSVPStatus(raw)
	if !s.Valid() {
		return "", fmt.Errorf("unknown rsvp status %q", raw)
	}
	return s, nil
}

// Attending reports whether the status makes a guest eligible for a seat
func (s RSVPStatus) Attending() bool {
	return s == RSVPConfirmed || s == RSVPTentative
}

// IsSeated reports whether the guest currently holds a seat
func (g *Guest) IsSeated() bool {
	return g.Seat != nil
}

// TableID returns the guest's table, or "" when unseated
func (g *Guest) TableID() string {
	if g.Seat == nil {
		return ""
	}
	return g.Seat.TableID
}

// Assignable reports whether automatic placement may seat this guest
func (g *Guest) Assignable() bool {
	return g.Seat == nil && g.RSVPStatus.Attending()
}
