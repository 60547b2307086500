package seating

import (
	"fmt"

	"wedding-seating/internal/models"
)

// Violation is one broken constraint in the current seating
type Violation struct {
	ConstraintID string `json:"constraint_id"`
	TableID      string `json:"table_id"`
	Message      string `json:"message"`
}

// Validate reports every constraint the current seating breaks.
//
// It reads any state, however it was produced, and has no side effects. A
// must-sit-together pair with only one member seated is still open and not reported.
// Constraints naming unknown guests are skipped.
func Validate(constraints []models.Constraint, guests []models.Guest, tables []models.Table) []Violation {
	names := make(map[string]string, len(guests))
	tableOf := make(map[string]string, len(guests))
	for _, t := range tables {
		for _, id := range t.AssignedGuestIDs {
			tableOf[id] = t.ID
		}
	}
	for _, g := range guests {
		names[g.ID] = g.Name
		if g.Seat != nil {
			tableOf[g.ID] = g.Seat.TableID
		}
	}
	tableNames := make(map[string]string, len(tables))
	for _, t := range tables {
		tableNames[t.ID] = t.Name
	}

	label := func(m map[string]string, id string) string {
		if name := m[id]; name != "" {
			return name
		}
		return id
	}

	violations := make([]Violation, 0)
	for _, c := range constraints {
		_, knownA := names[c.GuestA]
		_, knownB := names[c.GuestB]
		if !knownA || !knownB {
			continue
		}
		tableA, tableB := tableOf[c.GuestA], tableOf[c.GuestB]
		if tableA == "" || tableB == "" {
			continue
		}

		switch c.Kind {
		case models.MustSitTogether:
			if tableA == tableB {
				continue
			}
			violations = append(violations, Violation{
				ConstraintID: c.ID,
				TableID:      tableA,
				Message: fmt.Sprintf("%s and %s must sit together but are at %s and %s",
					label(names, c.GuestA), label(names, c.GuestB),
					label(tableNames, tableA), label(tableNames, tableB)),
			})
		case models.MustNotSitTogether:
			if tableA != tableB {
				continue
			}
			violations = append(violations, Violation{
				ConstraintID: c.ID,
				TableID:      tableA,
				Message: fmt.Sprintf("%s and %s must not sit together but are both at %s",
					label(names, c.GuestA), label(names, c.GuestB), label(tableNames, tableA)),
			})
		}
	}
	return violations
}
