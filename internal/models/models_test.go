package models

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestGuestAssignable(t *testing.T) {
	tests := []struct {
		name  string
		guest Guest
		want  bool
	}{
		{"confirmed and free", Guest{RSVPStatus: RSVPConfirmed}, true},
		{"tentative and free", Guest{RSVPStatus: RSVPTentative}, true},
		{"pending", Guest{RSVPStatus: RSVPPending}, false},
		{"declined", Guest{RSVPStatus: RSVPDeclined}, false},
		{"already seated", Guest{RSVPStatus: RSVPConfirmed, Seat: &SeatRef{TableID: "t", SeatIndex: 0}}, false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, tt.guest.Assignable())
		})
	}
}

func TestParseEnums(t *testing.T) {
	_, err := ParseRSVPStatus("accepted")
	assert.Error(t, err)
	s, err := ParseRSVPStatus("tentative")
	require.NoError(t, err)
	assert.Equal(t, RSVPTentative, s)

	side, err := ParseSeatingSide("")
	require.NoError(t, err)
	assert.Equal(t, SideBoth, side)
	_, err = ParseSeatingSide("left")
	assert.Error(t, err)

	shape, err := ParseShape("cocktail")
	require.NoError(t, err)
	assert.Equal(t, ShapeCocktail, shape)
	_, err = ParseShape("oval")
	assert.Error(t, err)

	_, err = ParseConstraintKind("maybe_together")
	assert.Error(t, err)
}

func TestConstraintValidate(t *testing.T) {
	ok := Constraint{ID: "c", Kind: MustSitTogether, GuestA: "a", GuestB: "b"}
	assert.NoError(t, ok.Validate())
	assert.Equal(t, "b", ok.Other("a"))
	assert.Equal(t, "a", ok.Other("b"))

	same := Constraint{ID: "c", Kind: MustNotSitTogether, GuestA: "a", GuestB: "a"}
	assert.ErrorIs(t, same.Validate(), ErrSameGuest)

	missing := Constraint{ID: "c", Kind: MustNotSitTogether, GuestA: "a"}
	assert.Error(t, missing.Validate())
}

func TestTableNormalize(t *testing.T) {
	sweetheart := Table{ID: "s", Shape: ShapeSweetheart, Capacity: 6}
	sweetheart.Normalize()
	assert.Equal(t, SweetheartSeats, sweetheart.Capacity)
	assert.Equal(t, SideBoth, sweetheart.SeatingSide)

	negative := Table{ID: "n", Shape: ShapeRound, Capacity: -3}
	assert.Error(t, negative.Validate())
	negative.Normalize()
	assert.Equal(t, 0, negative.Capacity)
	assert.NoError(t, negative.Validate())

	assert.Error(t, Table{ID: "x", Shape: "oval"}.Validate())
}
