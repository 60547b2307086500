package models

// Event is a full snapshot of one seating plan
type Event struct {
	Name          string         `json:"name,omitempty" yaml:"name,omitempty"`
	Guests        []Guest        `json:"guests" yaml:"guests"`
	Households    []Household    `json:"households,omitempty" yaml:"households,omitempty"`
	SocialCircles []SocialCircle `json:"social_circles,omitempty" yaml:"social_circles,omitempty"`
	Tables        []Table        `json:"tables" yaml:"tables"`
	Constraints   []Constraint   `json:"constraints,omitempty" yaml:"constraints,omitempty"`
}

// Assignment places one guest at one seat
type Assignment struct {
	GuestID   string `json:"guest_id"`
	TableID   string `json:"table_id"`
	SeatIndex int    `json:"seat_index"`
}
