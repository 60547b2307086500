package models

// Household is a set of guests who live together and are seated together
type Household struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	MemberIDs []string `json:"member_ids" yaml:"member_ids"`
}

// SocialCircle groups guests who know each other.
// Circles only influence placement scores, they are never enforced.
type SocialCircle struct {
	ID        string   `json:"id" yaml:"id"`
	Name      string   `json:"name" yaml:"name"`
	Color     string   `json:"color,omitempty" yaml:"color,omitempty"`
	MemberIDs []string `json:"member_ids" yaml:"member_ids"`
}
