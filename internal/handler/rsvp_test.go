package handler

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-seating/internal/models"
	"wedding-seating/internal/storage"
)

type sentMessage struct {
	phone string
	text  string
}

type fakeSender struct {
	sent    []sentMessage
	failFor string
}

func (f *fakeSender) SendMessage(_ context.Context, phoneNumber, message string) error {
	if phoneNumber == f.failFor {
		return errors.New("not on WhatsApp")
	}
	f.sent = append(f.sent, sentMessage{phone: phoneNumber, text: message})
	return nil
}

func newTestHandler(t *testing.T) (*RSVPHandler, *fakeSender, *storage.Storage) {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "seating.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })

	require.NoError(t, store.ImportEvent(context.Background(), models.Event{
		Guests: []models.Guest{
			{ID: "dana", Name: "Dana", PhoneNumber: "972501111111", RSVPStatus: models.RSVPConfirmed, Seat: &models.SeatRef{TableID: "t1", SeatIndex: 0}},
			{ID: "yoni", Name: "Yoni", PhoneNumber: "972502222222", RSVPStatus: models.RSVPConfirmed, Seat: &models.SeatRef{TableID: "t1", SeatIndex: 1}},
			{ID: "avi", Name: "Avi", PhoneNumber: "972503333333", RSVPStatus: models.RSVPPending},
			{ID: "rina", Name: "Rina", RSVPStatus: models.RSVPConfirmed, Seat: &models.SeatRef{TableID: "t1", SeatIndex: 2}},
		},
		Tables: []models.Table{
			{ID: "t1", Name: "Olive", Shape: models.ShapeRound, Capacity: 8, Width: 150},
		},
	}))

	sender := &fakeSender{}
	h := NewRSVPHandler(sender, store, &Config{
		WeddingDate:     "Thursday, June 4, 2026",
		WeddingLocation: "Tel Aviv",
		BrideName:       "Dana",
		GroomName:       "Yoni",
	}, zerolog.Nop())
	return h, sender, store
}

func TestContainsAny(t *testing.T) {
	tests := []struct {
		text     string
		keywords []string
		want     bool
	}{
		{"yes!", acceptKeywords, true},
		{"we're not coming, sorry", declineKeywords, true},
		{"i know the way", declineKeywords, false},
		{"no, thanks", declineKeywords, true},
		{"✅✅", acceptKeywords, true},
		{"which table am i at?", seatingKeywords, true},
		{"stable", seatingKeywords, false},
		{"", acceptKeywords, false},
	}
	for _, tt := range tests {
		t.Run(tt.text, func(t *testing.T) {
			assert.Equal(t, tt.want, containsAny(tt.text, tt.keywords...))
		})
	}
}

func TestHandleText_RSVP(t *testing.T) {
	ctx := context.Background()

	tests := []struct {
		name string
		text string
		want models.RSVPStatus
	}{
		{"accept", "Yes, we'll be there", models.RSVPConfirmed},
		{"maybe", "maybe, not sure yet", models.RSVPTentative},
		{"decline wins over coming", "Sorry, not coming", models.RSVPDeclined},
		{"unrelated text", "mazal tov!", models.RSVPPending},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			h, sender, store := newTestHandler(t)

			require.NoError(t, h.HandleText(ctx, "+972-50-333-3333", tt.text))

			guest, err := store.GetGuest(ctx, "avi")
			require.NoError(t, err)
			assert.Equal(t, tt.want, guest.RSVPStatus)
			if tt.want == models.RSVPPending {
				assert.Empty(t, sender.sent)
				return
			}
			require.Len(t, sender.sent, 1)
			assert.Equal(t, "972503333333", sender.sent[0].phone)
		})
	}
}

func TestHandleText_UnknownSenderIgnored(t *testing.T) {
	h, sender, _ := newTestHandler(t)

	require.NoError(t, h.HandleText(context.Background(), "15550000000", "yes"))
	assert.Empty(t, sender.sent)
}

func TestHandleText_LocalFormatPhoneFromImport(t *testing.T) {
	ctx := context.Background()
	h, sender, store := newTestHandler(t)
	require.NoError(t, store.ImportEvent(ctx, models.Event{
		Guests: []models.Guest{
			{ID: "noa", Name: "Noa", PhoneNumber: "0501234567", RSVPStatus: models.RSVPPending},
		},
	}))

	require.NoError(t, h.HandleText(ctx, "972501234567", "yes"))

	noa, err := store.GetGuest(ctx, "noa")
	require.NoError(t, err)
	assert.Equal(t, models.RSVPConfirmed, noa.RSVPStatus)
	require.Len(t, sender.sent, 1)
	assert.Equal(t, "972501234567", sender.sent[0].phone)
}

func TestHandleText_DeclineReleasesSeat(t *testing.T) {
	ctx := context.Background()
	h, _, store := newTestHandler(t)

	require.NoError(t, h.HandleText(ctx, "0502222222", "no"))

	yoni, err := store.GetGuest(ctx, "yoni")
	require.NoError(t, err)
	assert.Equal(t, models.RSVPDeclined, yoni.RSVPStatus)
	assert.Nil(t, yoni.Seat)
}

func TestHandleText_SeatQuery(t *testing.T) {
	ctx := context.Background()
	h, sender, _ := newTestHandler(t)

	require.NoError(t, h.HandleText(ctx, "972501111111", "Which table am I at?"))
	require.Len(t, sender.sent, 1)
	card := sender.sent[0].text
	assert.Contains(t, card, "Table: *Olive*")
	assert.Contains(t, card, "Seat: *1*")
	assert.Contains(t, card, "Yoni, Rina")

	require.NoError(t, h.HandleText(ctx, "972503333333", "where do I sit"))
	require.Len(t, sender.sent, 2)
	assert.Contains(t, sender.sent[1].text, "still working on the seating plan")
}

func TestNotifySeating(t *testing.T) {
	ctx := context.Background()
	h, sender, _ := newTestHandler(t)
	sender.failFor = "972502222222"

	sent, err := h.NotifySeating(ctx)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "guest yoni")
	assert.Equal(t, 1, sent)

	require.Len(t, sender.sent, 1)
	assert.Equal(t, "972501111111", sender.sent[0].phone)
	assert.Contains(t, sender.sent[0].text, "Tel Aviv")
}
