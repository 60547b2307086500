package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"wedding-seating/internal/models"
)

// replySeat tells a guest where they sit
func (h *RSVPHandler) replySeat(ctx context.Context, guest models.Guest) error {
	event, err := h.storage.LoadEvent(ctx)
	if err != nil {
		return fmt.Errorf("failed to load seating: %w", err)
	}

	message := "We're still working on the seating plan. We'll message you as soon as your table is ready! 💕"
	if card, ok := seatingCard(event, guest.ID, h.config); ok {
		message = card
	}
	if err := h.sender.SendMessage(ctx, guest.PhoneNumber, message); err != nil {
		return fmt.Errorf("failed to send seat reply: %w", err)
	}
	return nil
}

// NotifySeating sends every seated, attending guest with a phone number their
// table card. Failed sends are logged and reported together; the rest still go out.
func (h *RSVPHandler) NotifySeating(ctx context.Context) (int, error) {
	event, err := h.storage.LoadEvent(ctx)
	if err != nil {
		return 0, fmt.Errorf("failed to load seating: %w", err)
	}

	var (
		sent int
		errs []error
	)
	for _, guest := range event.Guests {
		if guest.PhoneNumber == "" || !guest.IsSeated() || !guest.RSVPStatus.Attending() {
			continue
		}
		card, ok := seatingCard(event, guest.ID, h.config)
		if !ok {
			continue
		}
		if err := ctx.Err(); err != nil {
			return sent, err
		}
		if err := h.sender.SendMessage(ctx, guest.PhoneNumber, card); err != nil {
			h.log.Error().Err(err).Str("guest", guest.ID).Msg("Failed to send seating card")
			errs = append(errs, fmt.Errorf("guest %s: %w", guest.ID, err))
			continue
		}
		sent++
	}

	h.log.Info().Int("sent", sent).Int("failed", len(errs)).Msg("Seating notices sent")
	return sent, errors.Join(errs...)
}

// seatingCard renders a guest's table, seat number and tablemates
func seatingCard(event models.Event, guestID string, cfg *Config) (string, bool) {
	names := make(map[string]string, len(event.Guests))
	var guest models.Guest
	for _, g := range event.Guests {
		names[g.ID] = g.Name
		if g.ID == guestID {
			guest = g
		}
	}
	if !guest.IsSeated() {
		return "", false
	}

	for _, t := range event.Tables {
		if t.ID != guest.Seat.TableID {
			continue
		}
		var mates []string
		for _, id := range t.AssignedGuestIDs {
			if id != guestID {
				mates = append(mates, names[id])
			}
		}

		var b strings.Builder
		fmt.Fprintf(&b, "🪑 *Your seat at the wedding of %s & %s*\n\n", cfg.BrideName, cfg.GroomName)
		fmt.Fprintf(&b, "Dear %s,\n\n", guest.Name)
		fmt.Fprintf(&b, "📍 Table: *%s*\n", tableLabel(t))
		fmt.Fprintf(&b, "💺 Seat: *%d*\n", guest.Seat.SeatIndex+1)
		if len(mates) > 0 {
			fmt.Fprintf(&b, "\nYou'll be sitting with %s.\n", strings.Join(mates, ", "))
		}
		fmt.Fprintf(&b, "\nSee you on %s at %s! 💕", cfg.WeddingDate, cfg.WeddingLocation)
		return b.String(), true
	}
	return "", false
}

func tableLabel(t models.Table) string {
	if t.Name != "" {
		return t.Name
	}
	return t.ID
}
