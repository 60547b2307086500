package seating

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-seating/internal/models"
)

func TestDisjointSet(t *testing.T) {
	ds := newDisjointSet([]string{"a", "b", "c", "d", "e"})

	ds.union("a", "b")
	ds.union("c", "d")
	ds.union("b", "d")
	ds.union("e", "missing")

	assert.Equal(t, ds.find("a"), ds.find("c"))
	assert.Equal(t, ds.find("b"), ds.find("d"))
	assert.NotEqual(t, ds.find("a"), ds.find("e"))
	assert.False(t, ds.has("missing"))

	// after find every node on the path points close to the root
	root := ds.find("d")
	for _, id := range []string{"a", "b", "c", "d"} {
		ds.find(id)
		assert.Equal(t, root, ds.parent[ds.parent[id]])
	}
}

func TestGroupGuests(t *testing.T) {
	guests := []models.Guest{
		newGuest("solo"),
		newGuest("p1"), newGuest("p2"),
		newGuest("k1"), newGuest("k2"), newGuest("k3"),
		newGuest("pair1"), newGuest("pair2"),
	}
	households := []models.Household{
		{ID: "kids", MemberIDs: []string{"k1", "k2", "k3"}},
		{ID: "parents", MemberIDs: []string{"p1", "seated-elsewhere", "p2"}},
	}
	constraints := []models.Constraint{
		together("c1", "pair1", "pair2"),
		together("c2", "solo", "not-assignable"),
		apart("c3", "k1", "pair1"),
	}

	groups := GroupGuests(guests, households, constraints)

	require.Equal(t, [][]string{
		{"k1", "k2", "k3"},
		{"p1", "p2"},
		{"pair1", "pair2"},
		{"solo"},
	}, groups)
}

func TestGroupGuests_ConstraintsBridgeHouseholds(t *testing.T) {
	guests := []models.Guest{newGuest("a"), newGuest("b"), newGuest("c"), newGuest("d")}
	households := []models.Household{
		{ID: "h1", MemberIDs: []string{"a", "b"}},
		{ID: "h2", MemberIDs: []string{"c", "d"}},
	}

	groups := GroupGuests(guests, households, []models.Constraint{together("c1", "b", "c")})

	require.Len(t, groups, 1)
	assert.Equal(t, []string{"a", "b", "c", "d"}, groups[0])
}

func TestGroupGuests_Empty(t *testing.T) {
	assert.Empty(t, GroupGuests(nil, nil, nil))
}
