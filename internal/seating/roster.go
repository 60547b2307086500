package seating

import (
	"fmt"
	"sort"

	"wedding-seating/internal/models"
)

// Roster is an id-indexed, mutable view of guests and tables.
//
// Every method that moves a guest updates the guest's seat and the table's guest list
// together, so readers never see one side without the other. A Roster is not safe
// for concurrent use; callers serialise access (storage does it inside a transaction).
type Roster struct {
	guests     map[string]*models.Guest
	tables     map[string]*models.Table
	guestOrder []string
	tableOrder []string
}

// NewRoster copies guests and tables into a roster.
// Guest seats are authoritative: each table's guest list is rebuilt from them.
func NewRoster(guests []models.Guest, tables []models.Table) *Roster {
	r := &Roster{
		guests: make(map[string]*models.Guest, len(guests)),
		tables: make(map[string]*models.Table, len(tables)),
	}
	for _, t := range tables {
		t.AssignedGuestIDs = nil
		r.tables[t.ID] = &t
		r.tableOrder = append(r.tableOrder, t.ID)
	}
	for _, g := range guests {
		cp := copyGuest(g)
		r.guests[g.ID] = &cp
		r.guestOrder = append(r.guestOrder, g.ID)
		if cp.Seat == nil {
			continue
		}
		if t, ok := r.tables[cp.Seat.TableID]; ok {
			t.AssignedGuestIDs = append(t.AssignedGuestIDs, cp.ID)
		}
	}
	for _, t := range r.tables {
		ids := t.AssignedGuestIDs
		sort.SliceStable(ids, func(i, j int) bool {
			return r.guests[ids[i]].Seat.SeatIndex < r.guests[ids[j]].Seat.SeatIndex
		})
	}
	return r
}

func copyGuest(g models.Guest) models.Guest {
	if g.Seat != nil {
		seat := *g.Seat
		g.Seat = &seat
	}
	if g.SocialCircleIDs != nil {
		g.SocialCircleIDs = append([]string(nil), g.SocialCircleIDs...)
	}
	return g
}

func copyTable(t models.Table) models.Table {
	t.AssignedGuestIDs = append([]string(nil), t.AssignedGuestIDs...)
	return t
}

// Guests returns copies of all guests in input order
func (r *Roster) Guests() []models.Guest {
	out := make([]models.Guest, 0, len(r.guestOrder))
	for _, id := range r.guestOrder {
		out = append(out, copyGuest(*r.guests[id]))
	}
	return out
}

// Tables returns copies of all tables in input order
func (r *Roster) Tables() []models.Table {
	out := make([]models.Table, 0, len(r.tableOrder))
	for _, id := range r.tableOrder {
		out = append(out, copyTable(*r.tables[id]))
	}
	return out
}

// Guest returns a copy of one guest
func (r *Roster) Guest(id string) (models.Guest, bool) {
	g, ok := r.guests[id]
	if !ok {
		return models.Guest{}, false
	}
	return copyGuest(*g), true
}

// Table returns a copy of one table
func (r *Roster) Table(id string) (models.Table, bool) {
	t, ok := r.tables[id]
	if !ok {
		return models.Table{}, false
	}
	return copyTable(*t), true
}

// OccupantAt returns the guest in a seat, if any
func (r *Roster) OccupantAt(tableID string, seatIndex int) (string, bool) {
	t, ok := r.tables[tableID]
	if !ok {
		return "", false
	}
	for _, id := range t.AssignedGuestIDs {
		if r.guests[id].Seat.SeatIndex == seatIndex {
			return id, true
		}
	}
	return "", false
}

// Assign puts a guest into an empty seat, moving them off any previous seat
func (r *Roster) Assign(guestID, tableID string, seatIndex int) error {
	g, ok := r.guests[guestID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGuestNotFound, guestID)
	}
	t, ok := r.tables[tableID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	if seatIndex < 0 || seatIndex >= t.Capacity {
		return fmt.Errorf("seat %d at table %s: %w", seatIndex, tableID, ErrSeatOutOfRange)
	}
	if occupant, taken := r.OccupantAt(tableID, seatIndex); taken {
		if occupant == guestID {
			return nil
		}
		return fmt.Errorf("seat %d at table %s: %w", seatIndex, tableID, ErrSeatTaken)
	}
	if g.TableID() != tableID && len(t.AssignedGuestIDs) >= t.Capacity {
		return fmt.Errorf("table %s: %w", tableID, ErrTableFull)
	}

	r.detach(g)
	r.attach(g, t, seatIndex)
	return nil
}

// Unassign frees the guest's seat
func (r *Roster) Unassign(guestID string) error {
	g, ok := r.guests[guestID]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGuestNotFound, guestID)
	}
	if g.Seat == nil {
		return fmt.Errorf("%s: %w", guestID, ErrGuestNotSeated)
	}
	r.detach(g)
	return nil
}

// Swap exchanges the seats of two seated guests in one step
func (r *Roster) Swap(guestA, guestB string) error {
	a, ok := r.guests[guestA]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGuestNotFound, guestA)
	}
	b, ok := r.guests[guestB]
	if !ok {
		return fmt.Errorf("%w: %s", ErrGuestNotFound, guestB)
	}
	if a.Seat == nil {
		return fmt.Errorf("%s: %w", guestA, ErrGuestNotSeated)
	}
	if b.Seat == nil {
		return fmt.Errorf("%s: %w", guestB, ErrGuestNotSeated)
	}
	if guestA == guestB {
		return nil
	}

	seatA, seatB := *a.Seat, *b.Seat
	if seatA.TableID != seatB.TableID {
		replaceID(r.tables[seatA.TableID], guestA, guestB)
		replaceID(r.tables[seatB.TableID], guestB, guestA)
	}
	a.Seat = &seatB
	b.Seat = &seatA
	return nil
}

// BulkAssign seats guests at one table in input order, each in the lowest free seat,
// and stops once the table is full. Guests already at the table are skipped.
func (r *Roster) BulkAssign(tableID string, guestIDs []string) ([]models.Assignment, error) {
	t, ok := r.tables[tableID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrTableNotFound, tableID)
	}
	for _, id := range guestIDs {
		if _, ok := r.guests[id]; !ok {
			return nil, fmt.Errorf("%w: %s", ErrGuestNotFound, id)
		}
	}

	applied := make([]models.Assignment, 0, len(guestIDs))
	for _, id := range guestIDs {
		g := r.guests[id]
		if g.TableID() == tableID {
			continue
		}
		if len(t.AssignedGuestIDs) >= t.Capacity {
			break
		}
		seat := r.freeSeat(t)
		if seat < 0 {
			break
		}
		r.detach(g)
		r.attach(g, t, seat)
		applied = append(applied, models.Assignment{GuestID: id, TableID: tableID, SeatIndex: seat})
	}
	return applied, nil
}

// Apply performs every assignment or, on the first failure, none of them
func (r *Roster) Apply(assignments []models.Assignment) error {
	next := r.clone()
	for _, a := range assignments {
		if err := next.Assign(a.GuestID, a.TableID, a.SeatIndex); err != nil {
			return fmt.Errorf("failed to apply assignment for %s: %w", a.GuestID, err)
		}
	}
	*r = *next
	return nil
}

// Event returns the roster's guests and tables inside a copy of base
func (r *Roster) Event(base models.Event) models.Event {
	base.Guests = r.Guests()
	base.Tables = r.Tables()
	return base
}

func (r *Roster) clone() *Roster {
	c := &Roster{
		guests:     make(map[string]*models.Guest, len(r.guests)),
		tables:     make(map[string]*models.Table, len(r.tables)),
		guestOrder: append([]string(nil), r.guestOrder...),
		tableOrder: append([]string(nil), r.tableOrder...),
	}
	for id, g := range r.guests {
		cp := copyGuest(*g)
		c.guests[id] = &cp
	}
	for id, t := range r.tables {
		cp := copyTable(*t)
		c.tables[id] = &cp
	}
	return c
}

func (r *Roster) freeSeat(t *models.Table) int {
	taken := make(map[int]struct{}, len(t.AssignedGuestIDs))
	for _, id := range t.AssignedGuestIDs {
		taken[r.guests[id].Seat.SeatIndex] = struct{}{}
	}
	for idx := 0; idx < t.Capacity; idx++ {
		if _, ok := taken[idx]; !ok {
			return idx
		}
	}
	return -1
}

func (r *Roster) detach(g *models.Guest) {
	if g.Seat == nil {
		return
	}
	if t, ok := r.tables[g.Seat.TableID]; ok {
		for i, id := range t.AssignedGuestIDs {
			if id == g.ID {
				t.AssignedGuestIDs = append(t.AssignedGuestIDs[:i], t.AssignedGuestIDs[i+1:]...)
				break
			}
		}
	}
	g.Seat = nil
}

func (r *Roster) attach(g *models.Guest, t *models.Table, seatIndex int) {
	g.Seat = &models.SeatRef{TableID: t.ID, SeatIndex: seatIndex}
	t.AssignedGuestIDs = append(t.AssignedGuestIDs, g.ID)
}

func replaceID(t *models.Table, from, to string) {
	if t == nil {
		return
	}
	for i, id := range t.AssignedGuestIDs {
		if id == from {
			t.AssignedGuestIDs[i] = to
			return
		}
	}
}
