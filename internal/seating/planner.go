// Package seating is the constraint-aware seat assignment engine.
//
// Everything here works on a snapshot and performs no I/O. ComputeAutoAssignments
// proposes seats for unseated guests, Validate reports constraint breaches in any
// seating state, and Roster applies seat changes so that a guest's seat and the
// table's guest list always move together.
package seating

import "wedding-seating/internal/models"

const (
	// mateWeight outweighs any circle overlap: reuniting a split group comes first
	mateWeight = 100000
	// circleWeight outweighs any tightness difference
	circleWeight = 10000
)

// Result is the outcome of one auto-assign run
type Result struct {
	Assignments []models.Assignment `json:"assignments"`
	// Unplaced lists assignable guests for whom no table was valid
	Unplaced []string `json:"unplaced"`
}

// tableState tracks one table while a plan is being built
type tableState struct {
	id        string
	capacity  int
	remaining int
	occupants map[string]struct{}
	taken     map[int]struct{}
}

// reserve takes the n lowest free seat indices
func (ts *tableState) reserve(n int) []int {
	seats := make([]int, 0, n)
	for idx := 0; idx < ts.capacity && len(seats) < n; idx++ {
		if _, ok := ts.taken[idx]; ok {
			continue
		}
		ts.taken[idx] = struct{}{}
		seats = append(seats, idx)
	}
	return seats
}

// planner holds the indexes built once per run
type planner struct {
	tables    []*tableState
	conflicts ConflictIndex
	circles   map[string]map[string]struct{}
	result    Result
}

// ComputeAutoAssignments proposes seats for every unseated guest who is attending.
//
// Affinity groups are packed whole, largest first, onto the table with the best
// circle overlap and tightest fit. Groups that fit nowhere whole are placed one
// member at a time. Guests with no valid table are reported in Result.Unplaced.
// The event is not modified.
func ComputeAutoAssignments(event models.Event) Result {
	p := newPlanner(event)

	var assignable []models.Guest
	for _, g := range event.Guests {
		if g.Assignable() && !p.occupied(g.ID) {
			assignable = append(assignable, g)
		}
	}

	groups := GroupGuests(assignable, event.Households, event.Constraints)

	var leftovers [][]string
	for _, group := range groups {
		if !p.placeGroup(group) {
			leftovers = append(leftovers, group)
		}
	}
	for _, group := range leftovers {
		p.placeIndividually(group)
	}

	if p.result.Assignments == nil {
		p.result.Assignments = []models.Assignment{}
	}
	if p.result.Unplaced == nil {
		p.result.Unplaced = []string{}
	}
	return p.result
}

func newPlanner(event models.Event) *planner {
	p := &planner{
		conflicts: NewConflictIndex(event.Constraints),
		circles:   circleMembership(event.Guests, event.SocialCircles),
	}

	byID := make(map[string]*tableState, len(event.Tables))
	for _, t := range event.Tables {
		ts := &tableState{
			id:        t.ID,
			capacity:  max(t.Capacity, 0),
			occupants: make(map[string]struct{}),
			taken:     make(map[int]struct{}),
		}
		for _, id := range t.AssignedGuestIDs {
			ts.occupants[id] = struct{}{}
		}
		byID[t.ID] = ts
		p.tables = append(p.tables, ts)
	}

	for _, g := range event.Guests {
		if g.Seat == nil {
			continue
		}
		ts, ok := byID[g.Seat.TableID]
		if !ok {
			continue
		}
		ts.occupants[g.ID] = struct{}{}
		ts.taken[g.Seat.SeatIndex] = struct{}{}
	}

	for _, ts := range p.tables {
		inRange := 0
		for idx := range ts.taken {
			if idx >= 0 && idx < ts.capacity {
				inRange++
			}
		}
		ts.remaining = max(min(ts.capacity-len(ts.occupants), ts.capacity-inRange), 0)
	}
	return p
}

func (p *planner) occupied(id string) bool {
	for _, ts := range p.tables {
		if _, ok := ts.occupants[id]; ok {
			return true
		}
	}
	return false
}

// placeGroup seats the whole group at one table, or reports false
func (p *planner) placeGroup(group []string) bool {
	if p.conflicts.Internal(group) {
		return false
	}

	var best *tableState
	bestScore := 0
	for _, ts := range p.tables {
		if ts.remaining < len(group) || p.conflictsWithTable(group, ts) {
			continue
		}
		score := p.overlap(group, ts)*circleWeight + tightness(ts.remaining-len(group))
		if best == nil || score > bestScore {
			best, bestScore = ts, score
		}
	}
	if best == nil {
		return false
	}

	p.seat(best, group)
	return true
}

// placeIndividually seats members one by one, preferring tables where group-mates already sit
func (p *planner) placeIndividually(group []string) {
	for _, id := range group {
		member := []string{id}

		var best *tableState
		bestScore := 0
		for _, ts := range p.tables {
			if ts.remaining < 1 || p.conflicts.ConflictsWithAny(id, ts.occupants) {
				continue
			}
			mates := 0
			for _, other := range group {
				if _, ok := ts.occupants[other]; ok {
					mates++
				}
			}
			score := mates*mateWeight + p.overlap(member, ts)*circleWeight + tightness(ts.remaining-1)
			if best == nil || score > bestScore {
				best, bestScore = ts, score
			}
		}

		if best == nil {
			p.result.Unplaced = append(p.result.Unplaced, id)
			continue
		}
		p.seat(best, member)
	}
}

func (p *planner) seat(ts *tableState, guests []string) {
	seats := ts.reserve(len(guests))
	for i, id := range guests {
		ts.occupants[id] = struct{}{}
		p.result.Assignments = append(p.result.Assignments, models.Assignment{
			GuestID:   id,
			TableID:   ts.id,
			SeatIndex: seats[i],
		})
	}
	ts.remaining -= len(guests)
}

func (p *planner) conflictsWithTable(group []string, ts *tableState) bool {
	for _, id := range group {
		if p.conflicts.ConflictsWithAny(id, ts.occupants) {
			return true
		}
	}
	return false
}

// overlap counts, per group member, the occupants sharing at least one circle with them
func (p *planner) overlap(group []string, ts *tableState) int {
	n := 0
	for _, id := range group {
		mine := p.circles[id]
		if len(mine) == 0 {
			continue
		}
		for other := range ts.occupants {
			if sharesCircle(mine, p.circles[other]) {
				n++
			}
		}
	}
	return n
}

// tightness prefers the placement that leaves the fewest empty seats
func tightness(remainingAfter int) int {
	return -remainingAfter
}

func circleMembership(guests []models.Guest, circles []models.SocialCircle) map[string]map[string]struct{} {
	m := make(map[string]map[string]struct{})
	add := func(guestID, circleID string) {
		set, ok := m[guestID]
		if !ok {
			set = make(map[string]struct{})
			m[guestID] = set
		}
		set[circleID] = struct{}{}
	}
	for _, c := range circles {
		for _, id := range c.MemberIDs {
			add(id, c.ID)
		}
	}
	for _, g := range guests {
		for _, circleID := range g.SocialCircleIDs {
			add(g.ID, circleID)
		}
	}
	return m
}

func sharesCircle(a, b map[string]struct{}) bool {
	if len(a) > len(b) {
		a, b = b, a
	}
	for id := range a {
		if _, ok := b[id]; ok {
			return true
		}
	}
	return false
}
