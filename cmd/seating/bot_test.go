package main

import (
	"bytes"
	"context"
	"io"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"wedding-seating/internal/models"
	"wedding-seating/internal/storage"
)

func newCLIStorage(t *testing.T) *storage.Storage {
	t.Helper()
	store, err := storage.NewStorage(filepath.Join(t.TempDir(), "seating.db"), zerolog.Nop())
	require.NoError(t, err)
	t.Cleanup(func() { store.Close() })
	return store
}

func TestStartCLI_ViewTablesThenExit(t *testing.T) {
	ctx := context.Background()
	store := newCLIStorage(t)
	require.NoError(t, store.ImportEvent(ctx, models.Event{
		Guests: []models.Guest{
			{ID: "dana", Name: "Dana", RSVPStatus: models.RSVPConfirmed, Seat: &models.SeatRef{TableID: "t1", SeatIndex: 0}},
		},
		Tables: []models.Table{
			{ID: "t1", Name: "Olive", Shape: models.ShapeRound, Capacity: 8, Width: 150},
		},
	}))

	var out bytes.Buffer
	startCLI(ctx, strings.NewReader("2\n9\n5\n"), &out, store, nil)

	assert.Contains(t, out.String(), "Tables (1 total)")
	assert.Contains(t, out.String(), "  - Dana")
	assert.Contains(t, out.String(), "Invalid command")
	assert.Contains(t, out.String(), "Exiting...")
}

func TestStartCLI_ReturnsWhenContextCancelled(t *testing.T) {
	store := newCLIStorage(t)
	in, w := io.Pipe()
	t.Cleanup(func() { w.Close() })

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		startCLI(ctx, in, io.Discard, store, nil)
		close(done)
	}()

	cancel()
	select {
	case <-done:
	case <-time.After(2 * time.Second):
		t.Fatal("menu kept waiting for input after cancel")
	}
}
