package seating

import "wedding-seating/internal/models"

// ConflictIndex answers "may these two guests share a table" in O(1)
type ConflictIndex map[string]map[string]struct{}

// NewConflictIndex builds a symmetric index from the must-not-sit-together constraints
func NewConflictIndex(constraints []models.Constraint) ConflictIndex {
	idx := make(ConflictIndex)
	for _, c := range constraints {
		if c.Kind != models.MustNotSitTogether || c.GuestA == c.GuestB {
			continue
		}
		idx.add(c.GuestA, c.GuestB)
		idx.add(c.GuestB, c.GuestA)
	}
	return idx
}

func (idx ConflictIndex) add(a, b string) {
	set, ok := idx[a]
	if !ok {
		set = make(map[string]struct{})
		idx[a] = set
	}
	set[b] = struct{}{}
}

// Conflicts reports whether a and b must not sit together
func (idx ConflictIndex) Conflicts(a, b string) bool {
	_, ok := idx[a][b]
	return ok
}

// ConflictsWithAny reports whether id conflicts with anyone in occupants
func (idx ConflictIndex) ConflictsWithAny(id string, occupants map[string]struct{}) bool {
	enemies := idx[id]
	if len(enemies) == 0 {
		return false
	}
	if len(enemies) < len(occupants) {
		for other := range enemies {
			if _, ok := occupants[other]; ok {
				return true
			}
		}
		return false
	}
	for other := range occupants {
		if _, ok := enemies[other]; ok {
			return true
		}
	}
	return false
}

// Internal reports whether two members of the group conflict with each other
func (idx ConflictIndex) Internal(group []string) bool {
	for i := range group {
		for j := i + 1; j < len(group); j++ {
			if idx.Conflicts(group[i], group[j]) {
				return true
			}
		}
	}
	return false
}
