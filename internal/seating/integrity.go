package seating

import (
	"fmt"
	"sort"

	"wedding-seating/internal/models"
)

// IntegrityIssue is a broken seating invariant, as opposed to a broken constraint
type IntegrityIssue struct {
	TableID string `json:"table_id,omitempty"`
	GuestID string `json:"guest_id,omitempty"`
	Message string `json:"message"`
}

// CheckIntegrity verifies capacity, seat ranges, seat uniqueness, and that guests and
// tables agree on who sits where
func CheckIntegrity(guests []models.Guest, tables []models.Table) []IntegrityIssue {
	issues := make([]IntegrityIssue, 0)

	byTable := make(map[string]*models.Table, len(tables))
	listed := make(map[string]map[string]struct{}, len(tables))
	for i := range tables {
		t := &tables[i]
		byTable[t.ID] = t
		set := make(map[string]struct{}, len(t.AssignedGuestIDs))
		for _, id := range t.AssignedGuestIDs {
			set[id] = struct{}{}
		}
		listed[t.ID] = set
		if len(t.AssignedGuestIDs) > t.Capacity {
			issues = append(issues, IntegrityIssue{
				TableID: t.ID,
				Message: fmt.Sprintf("table %s holds %d guests but seats %d", t.ID, len(t.AssignedGuestIDs), t.Capacity),
			})
		}
	}

	seatsUsed := make(map[string]map[int]string)
	seatedAt := make(map[string]string, len(guests))
	for _, g := range guests {
		if g.Seat == nil {
			continue
		}
		seatedAt[g.ID] = g.Seat.TableID
		t, ok := byTable[g.Seat.TableID]
		if !ok {
			issues = append(issues, IntegrityIssue{
				GuestID: g.ID,
				TableID: g.Seat.TableID,
				Message: fmt.Sprintf("guest %s is seated at unknown table %s", g.ID, g.Seat.TableID),
			})
			continue
		}
		if _, ok := listed[t.ID][g.ID]; !ok {
			issues = append(issues, IntegrityIssue{
				GuestID: g.ID,
				TableID: t.ID,
				Message: fmt.Sprintf("guest %s points at table %s which does not list them", g.ID, t.ID),
			})
		}
		if g.Seat.SeatIndex < 0 || g.Seat.SeatIndex >= t.Capacity {
			issues = append(issues, IntegrityIssue{
				GuestID: g.ID,
				TableID: t.ID,
				Message: fmt.Sprintf("guest %s has seat %d outside [0, %d)", g.ID, g.Seat.SeatIndex, t.Capacity),
			})
		}
		used, ok := seatsUsed[t.ID]
		if !ok {
			used = make(map[int]string)
			seatsUsed[t.ID] = used
		}
		if other, taken := used[g.Seat.SeatIndex]; taken {
			issues = append(issues, IntegrityIssue{
				GuestID: g.ID,
				TableID: t.ID,
				Message: fmt.Sprintf("guests %s and %s share seat %d", other, g.ID, g.Seat.SeatIndex),
			})
			continue
		}
		used[g.Seat.SeatIndex] = g.ID
	}

	tableIDs := make([]string, 0, len(listed))
	for id := range listed {
		tableIDs = append(tableIDs, id)
	}
	sort.Strings(tableIDs)
	for _, tableID := range tableIDs {
		for _, guestID := range byTable[tableID].AssignedGuestIDs {
			if seatedAt[guestID] != tableID {
				issues = append(issues, IntegrityIssue{
					GuestID: guestID,
					TableID: tableID,
					Message: fmt.Sprintf("table %s lists guest %s who is not seated there", tableID, guestID),
				})
			}
		}
	}
	return issues
}
