package handler

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"unicode"

	"github.com/rs/zerolog"
	"go.mau.fi/whatsmeow/types/events"

	"wedding-seating/internal/models"
	"wedding-seating/internal/storage"
)

// Sender delivers a text message to a phone number
type Sender interface {
	SendMessage(ctx context.Context, phoneNumber, message string) error
}

type RSVPHandler struct {
	sender  Sender
	storage *storage.Storage
	config  *Config
	log     zerolog.Logger
}

type Config struct {
	WeddingDate     string
	WeddingLocation string
	BrideName       string
	GroomName       string
}

var (
	seatingKeywords = []string{"table", "seat", "where do i sit", "🪑"}
	declineKeywords = []string{"no", "nope", "decline", "declining", "not coming", "can't come", "cannot come", "won't come", "can't make it", "❌"}
	maybeKeywords   = []string{"maybe", "not sure", "might", "perhaps", "🤔"}
	acceptKeywords  = []string{"yes", "yep", "yeah", "accept", "accepting", "attending", "coming", "will come", "will be there", "✅"}
)

// NewRSVPHandler creates a new RSVP handler
func NewRSVPHandler(sender Sender, store *storage.Storage, cfg *Config, logger zerolog.Logger) *RSVPHandler {
	return &RSVPHandler{
		sender:  sender,
		storage: store,
		config:  cfg,
		log:     logger,
	}
}

// HandleMessage processes incoming WhatsApp messages for RSVP responses and seat questions
func (h *RSVPHandler) HandleMessage(msg *events.Message) error {
	if msg.Message == nil {
		return nil
	}
	text := msg.Message.GetConversation()
	if text == "" {
		text = msg.Message.GetExtendedTextMessage().GetText()
	}
	if text == "" {
		return nil
	}
	return h.HandleText(context.Background(), msg.Info.Sender.User, text)
}

// HandleText answers one message from a known guest. Messages from unknown numbers
// and texts that match no keyword are ignored.
func (h *RSVPHandler) HandleText(ctx context.Context, sender, text string) error {
	phoneNumber := models.NormalizePhoneNumber(sender)

	// only guests already on the list are answered
	guest, err := h.storage.GetGuestByPhone(ctx, phoneNumber)
	if errors.Is(err, storage.ErrNotFound) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("failed to look up guest: %w", err)
	}

	text = strings.ToLower(strings.TrimSpace(text))

	if containsAny(text, seatingKeywords...) {
		return h.replySeat(ctx, guest)
	}

	var newStatus models.RSVPStatus
	var responseMessage string

	// declines first: "not coming" also contains "coming"
	switch {
	case containsAny(text, declineKeywords...):
		newStatus = models.RSVPDeclined
		responseMessage = fmt.Sprintf(
			"Thank you for letting us know. We're sorry you won't be able to join us for the wedding of %s & %s.\n\n"+
				"We'll miss you! 💕",
			h.config.BrideName, h.config.GroomName,
		)
	case containsAny(text, maybeKeywords...):
		newStatus = models.RSVPTentative
		responseMessage = fmt.Sprintf(
			"Thanks! We've noted you as a maybe for %s. We'll keep a seat in mind for you.\n\n"+
				"Reply *YES* or *NO* once you know.",
			h.config.WeddingDate,
		)
	case containsAny(text, acceptKeywords...):
		newStatus = models.RSVPConfirmed
		responseMessage = fmt.Sprintf(
			"🎉 Wonderful! We're so excited to celebrate with you!\n\n"+
				"We've confirmed your attendance for the wedding of %s & %s on %s.\n\n"+
				"Reply *TABLE* any time to find your seat. See you there! 💕",
			h.config.BrideName, h.config.GroomName, h.config.WeddingDate,
		)
	default:
		return nil
	}

	if _, err := h.storage.UpdateRSVP(ctx, phoneNumber, newStatus, ""); err != nil {
		return fmt.Errorf("failed to update RSVP: %w", err)
	}
	h.log.Info().Str("guest", guest.ID).Str("status", string(newStatus)).Msg("RSVP updated")

	if err := h.sender.SendMessage(ctx, phoneNumber, responseMessage); err != nil {
		return fmt.Errorf("failed to send confirmation: %w", err)
	}
	return nil
}

// containsAny reports whether text holds any keyword as a whole word or phrase.
// Keywords without letters, such as emoji, match anywhere.
func containsAny(text string, keywords ...string) bool {
	words := " " + strings.Join(strings.FieldsFunc(text, isSeparator), " ") + " "
	for _, keyword := range keywords {
		if !strings.ContainsFunc(keyword, unicode.IsLetter) {
			if strings.Contains(text, keyword) {
				return true
			}
			continue
		}
		if strings.Contains(words, " "+keyword+" ") {
			return true
		}
	}
	return false
}

func isSeparator(r rune) bool {
	return unicode.IsSpace(r) || (unicode.IsPunct(r) && r != '\'')
}
