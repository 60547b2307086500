package seating

import "wedding-seating/internal/models"

type guestOption func(*models.Guest)

func newGuest(id string, opts ...guestOption) models.Guest {
	g := models.Guest{ID: id, Name: id, RSVPStatus: models.RSVPConfirmed}
	for _, opt := range opts {
		opt(&g)
	}
	return g
}

func seatedAt(tableID string, seat int) guestOption {
	return func(g *models.Guest) {
		g.Seat = &models.SeatRef{TableID: tableID, SeatIndex: seat}
	}
}

func withRSVP(status models.RSVPStatus) guestOption {
	return func(g *models.Guest) {
		g.RSVPStatus = status
	}
}

func inCircles(ids ...string) guestOption {
	return func(g *models.Guest) {
		g.SocialCircleIDs = ids
	}
}

func newTable(id string, capacity int) models.Table {
	return models.Table{
		ID:          id,
		Name:        "Table " + id,
		Shape:       models.ShapeRound,
		Capacity:    capacity,
		Width:       120,
		Height:      120,
		SeatingSide: models.SideBoth,
	}
}

func together(id, a, b string) models.Constraint {
	return models.Constraint{ID: id, Kind: models.MustSitTogether, GuestA: a, GuestB: b}
}

func apart(id, a, b string) models.Constraint {
	return models.Constraint{ID: id, Kind: models.MustNotSitTogether, GuestA: a, GuestB: b}
}

// consistent rebuilds every table's guest list from the guests' seats
func consistent(e models.Event) models.Event {
	return NewRoster(e.Guests, e.Tables).Event(e)
}

func byGuest(assignments []models.Assignment) map[string]models.Assignment {
	m := make(map[string]models.Assignment, len(assignments))
	for _, a := range assignments {
		m[a.GuestID] = a
	}
	return m
}
