package seating

import (
	"sort"

	"wedding-seating/internal/models"
)

// GroupGuests partitions the assignable guests into affinity groups.
//
// Household members and must-sit-together pairs end up in the same group. References
// to guests outside the assignable set are ignored. Groups are ordered largest first,
// ties keep the input order of each group's first member, and members keep input order.
func GroupGuests(assignable []models.Guest, households []models.Household, constraints []models.Constraint) [][]string {
	ids := make([]string, len(assignable))
	for i, g := range assignable {
		ids[i] = g.ID
	}
	ds := newDisjointSet(ids)

	for _, h := range households {
		var first string
		for _, member := range h.MemberIDs {
			if !ds.has(member) {
				continue
			}
			if first == "" {
				first = member
				continue
			}
			ds.union(first, member)
		}
	}
	for _, c := range constraints {
		if c.Kind == models.MustSitTogether {
			ds.union(c.GuestA, c.GuestB)
		}
	}

	index := make(map[string]int)
	var groups [][]string
	for _, id := range ids {
		root := ds.find(id)
		i, ok := index[root]
		if !ok {
			i = len(groups)
			index[root] = i
			groups = append(groups, nil)
		}
		groups[i] = append(groups[i], id)
	}

	sort.SliceStable(groups, func(i, j int) bool {
		return len(groups[i]) > len(groups[j])
	})
	return groups
}
