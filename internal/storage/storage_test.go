package storage

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-seating/internal/models"
	"wedding-seating/internal/seating"
)

func newTestStorage(t *testing.T) *Storage {
	t.Helper()
	s, err := NewStorage(filepath.Join(t.TempDir(), "seating.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { s.Close() })
	return s
}

func sampleEvent() models.Event {
	return models.Event{
		Name: "Dana & Yoni",
		Guests: []models.Guest{
			{ID: "dana", Name: "Dana", PhoneNumber: "972501111111", RSVPStatus: models.RSVPConfirmed, Seat: &models.SeatRef{TableID: "head", SeatIndex: 0}},
			{ID: "yoni", Name: "Yoni", RSVPStatus: models.RSVPConfirmed, Seat: &models.SeatRef{TableID: "head", SeatIndex: 1}},
			{ID: "avi", Name: "Avi", PhoneNumber: "972502222222", RSVPStatus: models.RSVPConfirmed, SocialCircleIDs: []string{"army"}},
			{ID: "rina", Name: "Rina", RSVPStatus: models.RSVPTentative},
			{ID: "moshe", Name: "Moshe", RSVPStatus: models.RSVPPending},
		},
		Households: []models.Household{
			{ID: "levi", Name: "Levi family", MemberIDs: []string{"avi", "rina"}},
		},
		SocialCircles: []models.SocialCircle{
			{ID: "army", Name: "Army friends", Color: "#336699", MemberIDs: []string{"moshe"}},
		},
		Tables: []models.Table{
			{ID: "head", Name: "Sweetheart", Shape: models.ShapeSweetheart, Capacity: 2, Width: 120, Height: 60},
			{ID: "t1", Name: "Table 1", Shape: models.ShapeRound, Capacity: 4, Width: 120, Height: 120},
			{ID: "t2", Name: "Table 2", Shape: models.ShapeRectangular, Capacity: 8, Width: 140, Height: 60, IncludeEndSeats: true},
		},
		Constraints: []models.Constraint{
			{ID: "c1", Kind: models.MustNotSitTogether, GuestA: "avi", GuestB: "moshe", Reason: "old feud"},
		},
	}
}

func TestStorage_ImportAndLoadEvent(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	event, err := s.LoadEvent(ctx)
	require.NoError(t, err)

	require.Len(t, event.Guests, 5)
	assert.Equal(t, "dana", event.Guests[0].ID)
	assert.Equal(t, &models.SeatRef{TableID: "head", SeatIndex: 1}, event.Guests[1].Seat)
	assert.Equal(t, "levi", event.Guests[2].HouseholdID)
	assert.Equal(t, []string{"army"}, event.Guests[2].SocialCircleIDs)

	require.Len(t, event.Tables, 3)
	assert.Equal(t, []string{"dana", "yoni"}, event.Tables[0].AssignedGuestIDs)
	assert.Equal(t, models.SideBoth, event.Tables[2].SeatingSide)
	assert.True(t, event.Tables[2].IncludeEndSeats)

	require.Len(t, event.Households, 1)
	assert.Equal(t, []string{"avi", "rina"}, event.Households[0].MemberIDs)
	require.Len(t, event.SocialCircles, 1)
	assert.ElementsMatch(t, []string{"avi", "moshe"}, event.SocialCircles[0].MemberIDs)
	require.Len(t, event.Constraints, 1)
	assert.Equal(t, "old feud", event.Constraints[0].Reason)
}

func TestStorage_ImportRejectsInconsistentSeating(t *testing.T) {
	s := newTestStorage(t)
	event := sampleEvent()
	event.Guests[1].Seat = &models.SeatRef{TableID: "head", SeatIndex: 0}

	err := s.ImportEvent(context.Background(), event)
	require.Error(t, err)

	guests, err := s.GetAllGuests(context.Background())
	require.NoError(t, err)
	assert.Empty(t, guests)
}

func TestStorage_Guests(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)

	added, err := s.AddGuest(ctx, models.Guest{Name: "Noa", PhoneNumber: "972503333333"})
	require.NoError(t, err)
	assert.NotEmpty(t, added.ID)
	assert.Equal(t, models.RSVPPending, added.RSVPStatus)

	byPhone, err := s.GetGuestByPhone(ctx, "972503333333")
	require.NoError(t, err)
	assert.Equal(t, added.ID, byPhone.ID)

	_, err = s.GetGuest(ctx, "missing")
	assert.True(t, errors.Is(err, ErrNotFound))

	updated, err := s.UpdateRSVP(ctx, "972503333333", models.RSVPConfirmed, "vegetarian")
	require.NoError(t, err)
	assert.Equal(t, models.RSVPConfirmed, updated.RSVPStatus)
	assert.Equal(t, "vegetarian", updated.Notes)
	assert.False(t, updated.RSVPDate.IsZero())

	confirmed, err := s.GetGuestsByStatus(ctx, models.RSVPConfirmed)
	require.NoError(t, err)
	assert.Len(t, confirmed, 1)

	_, err = s.AddGuest(ctx, models.Guest{Name: "Bad", RSVPStatus: "accepted"})
	assert.Error(t, err)
}

func TestStorage_DecliningReleasesSeat(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	guest, err := s.UpdateRSVP(ctx, "972501111111", models.RSVPDeclined, "")
	require.NoError(t, err)
	assert.Nil(t, guest.Seat)

	event, err := s.LoadEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, []string{"yoni"}, event.Tables[0].AssignedGuestIDs)
}

func TestStorage_PhoneNumbersStoredNormalized(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, models.Event{
		Guests: []models.Guest{
			{ID: "noa", Name: "Noa", PhoneNumber: "0501234567", RSVPStatus: models.RSVPPending},
			{ID: "gil", Name: "Gil", RSVPStatus: models.RSVPPending},
		},
	}))

	noa, err := s.GetGuest(ctx, "noa")
	require.NoError(t, err)
	assert.Equal(t, "972501234567", noa.PhoneNumber)

	byPhone, err := s.GetGuestByPhone(ctx, "+972 50-123-4567")
	require.NoError(t, err)
	assert.Equal(t, "noa", byPhone.ID)

	added, err := s.AddGuest(ctx, models.Guest{Name: "Tal", PhoneNumber: "052-765-4321"})
	require.NoError(t, err)
	assert.Equal(t, "972527654321", added.PhoneNumber)

	_, err = s.GetGuestByPhone(ctx, "")
	assert.True(t, errors.Is(err, ErrNotFound))
}

func TestStorage_DecliningReleasesSeatTakenAfterImport(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	_, err := s.Mutate(ctx, func(r *seating.Roster) error {
		return r.Assign("avi", "t1", 2)
	})
	require.NoError(t, err)

	guest, err := s.UpdateRSVP(ctx, "972502222222", models.RSVPDeclined, "")
	require.NoError(t, err)
	assert.Nil(t, guest.Seat)

	event, err := s.LoadEvent(ctx)
	require.NoError(t, err)
	assert.Empty(t, event.Tables[1].AssignedGuestIDs)
}

func TestStorage_AddTableSuggestsCapacity(t *testing.T) {
	s := newTestStorage(t)

	table, err := s.AddTable(context.Background(), models.Table{
		Name: "Long", Shape: models.ShapeRectangular, Width: 140, Height: 60, IncludeEndSeats: true,
	})
	require.NoError(t, err)
	assert.Equal(t, 8, table.Capacity)
	assert.Equal(t, models.SideBoth, table.SeatingSide)

	_, err = s.AddTable(context.Background(), models.Table{ID: "bad", Shape: "oval"})
	assert.Error(t, err)
}

func TestStorage_ShrinkingTableBelowSeatedGuestsFails(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	_, err := s.AddTable(ctx, models.Table{ID: "head", Name: "Sweetheart", Shape: models.ShapeSweetheart, Capacity: 1, Width: 120, Height: 60})
	assert.ErrorIs(t, err, seating.ErrSeatOutOfRange)
}

func TestStorage_MutateAppliesAutoAssignments(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	event, err := s.LoadEvent(ctx)
	require.NoError(t, err)
	result := seating.ComputeAutoAssignments(event)
	require.Len(t, result.Assignments, 2)

	after, err := s.Mutate(ctx, func(r *seating.Roster) error {
		return r.Apply(result.Assignments)
	})
	require.NoError(t, err)

	reloaded, err := s.LoadEvent(ctx)
	require.NoError(t, err)
	assert.Equal(t, after.Tables, reloaded.Tables)
	assert.Empty(t, seating.CheckIntegrity(reloaded.Guests, reloaded.Tables))
	assert.Empty(t, seating.ComputeAutoAssignments(reloaded).Assignments)
}

func TestStorage_MutateSwapKeepsSeatsUnique(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	_, err := s.Mutate(ctx, func(r *seating.Roster) error {
		return r.Swap("dana", "yoni")
	})
	require.NoError(t, err)

	dana, err := s.GetGuest(ctx, "dana")
	require.NoError(t, err)
	assert.Equal(t, 1, dana.Seat.SeatIndex)
	yoni, err := s.GetGuest(ctx, "yoni")
	require.NoError(t, err)
	assert.Equal(t, 0, yoni.Seat.SeatIndex)
}

func TestStorage_MutateRollsBackOnError(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	_, err := s.Mutate(ctx, func(r *seating.Roster) error {
		if err := r.Assign("avi", "t1", 0); err != nil {
			return err
		}
		return r.Assign("rina", "t1", 0)
	})
	require.ErrorIs(t, err, seating.ErrSeatTaken)

	avi, err := s.GetGuest(ctx, "avi")
	require.NoError(t, err)
	assert.Nil(t, avi.Seat)
}

func TestStorage_AutoAssign(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	preview, err := s.AutoAssign(ctx, false)
	require.NoError(t, err)
	require.Len(t, preview.Assignments, 2)

	avi, err := s.GetGuest(ctx, "avi")
	require.NoError(t, err)
	assert.Nil(t, avi.Seat, "a preview must not write seats")

	applied, err := s.AutoAssign(ctx, true)
	require.NoError(t, err)
	assert.Equal(t, preview, applied)

	avi, err = s.GetGuest(ctx, "avi")
	require.NoError(t, err)
	require.NotNil(t, avi.Seat)
	assert.Equal(t, "t1", avi.Seat.TableID)

	again, err := s.AutoAssign(ctx, true)
	require.NoError(t, err)
	assert.Empty(t, again.Assignments)
}

func TestStorage_GroupsAndConstraints(t *testing.T) {
	ctx := context.Background()
	s := newTestStorage(t)
	require.NoError(t, s.ImportEvent(ctx, sampleEvent()))

	household, err := s.AddHousehold(ctx, models.Household{Name: "Cohen", MemberIDs: []string{"rina", "moshe"}})
	require.NoError(t, err)
	assert.NotEmpty(t, household.ID)

	_, err = s.AddSocialCircle(ctx, models.SocialCircle{ID: "army", Name: "Army friends", MemberIDs: []string{"rina"}})
	require.NoError(t, err)

	_, err = s.AddConstraint(ctx, models.Constraint{Kind: models.MustSitTogether, GuestA: "rina", GuestB: "moshe"})
	require.NoError(t, err)
	_, err = s.AddConstraint(ctx, models.Constraint{Kind: models.MustSitTogether, GuestA: "rina", GuestB: "rina"})
	assert.ErrorIs(t, err, models.ErrSameGuest)

	event, err := s.LoadEvent(ctx)
	require.NoError(t, err)

	require.Len(t, event.Households, 2)
	assert.Equal(t, []string{"avi"}, event.Households[0].MemberIDs, "rina moved to the new household")
	assert.Equal(t, []string{"rina", "moshe"}, event.Households[1].MemberIDs)
	assert.ElementsMatch(t, []string{"avi", "moshe", "rina"}, event.SocialCircles[0].MemberIDs)
	assert.Len(t, event.Constraints, 2)
}
