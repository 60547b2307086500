package storage

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
	_ "github.com/mattn/go-sqlite3"
	"github.com/rs/zerolog"

	"wedding-seating/internal/models"
)

var (
	// ErrNotFound is returned when a looked-up record does not exist
	ErrNotFound = errors.New("not found")
	// ErrInconsistent is returned when a write would leave seats and tables disagreeing
	ErrInconsistent = errors.New("seating is inconsistent")
)

const schema = `
CREATE TABLE IF NOT EXISTS guests (
	id           TEXT PRIMARY KEY,
	position     INTEGER NOT NULL,
	name         TEXT NOT NULL,
	phone_number TEXT NOT NULL DEFAULT '',
	rsvp_status  TEXT NOT NULL,
	rsvp_date    TIMESTAMP,
	table_id     TEXT,
	seat_index   INTEGER,
	notes        TEXT NOT NULL DEFAULT '',
	CHECK ((table_id IS NULL) = (seat_index IS NULL))
);
CREATE UNIQUE INDEX IF NOT EXISTS guests_seat ON guests(table_id, seat_index) WHERE table_id IS NOT NULL;
CREATE INDEX IF NOT EXISTS guests_phone ON guests(phone_number);

CREATE TABLE IF NOT EXISTS households (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL
);
CREATE TABLE IF NOT EXISTS household_members (
	guest_id     TEXT PRIMARY KEY,
	household_id TEXT NOT NULL,
	position     INTEGER NOT NULL
);

CREATE TABLE IF NOT EXISTS social_circles (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	name     TEXT NOT NULL,
	color    TEXT NOT NULL DEFAULT ''
);
CREATE TABLE IF NOT EXISTS circle_members (
	circle_id TEXT NOT NULL,
	guest_id  TEXT NOT NULL,
	PRIMARY KEY (circle_id, guest_id)
);

CREATE TABLE IF NOT EXISTS seating_tables (
	id                TEXT PRIMARY KEY,
	position          INTEGER NOT NULL,
	name              TEXT NOT NULL,
	shape             TEXT NOT NULL,
	capacity          INTEGER NOT NULL CHECK (capacity >= 0),
	width             REAL NOT NULL,
	height            REAL NOT NULL,
	seating_side      TEXT NOT NULL,
	include_end_seats INTEGER NOT NULL DEFAULT 0
);

CREATE TABLE IF NOT EXISTS constraints (
	id       TEXT PRIMARY KEY,
	position INTEGER NOT NULL,
	kind     TEXT NOT NULL,
	guest_a  TEXT NOT NULL,
	guest_b  TEXT NOT NULL,
	reason   TEXT NOT NULL DEFAULT ''
);
`

// Storage persists one event's guests, groups, tables and constraints in sqlite
type Storage struct {
	db  *sql.DB
	log zerolog.Logger
}

// querier is satisfied by both *sql.DB and *sql.Tx
type querier interface {
	ExecContext(ctx context.Context, query string, args ...any) (sql.Result, error)
	QueryContext(ctx context.Context, query string, args ...any) (*sql.Rows, error)
	QueryRowContext(ctx context.Context, query string, args ...any) *sql.Row
}

// NewStorage opens (or creates) the sqlite database at filePath
func NewStorage(filePath string, logger zerolog.Logger) (*Storage, error) {
	if err := os.MkdirAll(filepath.Dir(filePath), 0755); err != nil {
		return nil, fmt.Errorf("failed to create directory: %w", err)
	}

	db, err := sql.Open("sqlite3", fmt.Sprintf("file:%s?_busy_timeout=5000", filePath))
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}
	// sqlite allows one writer; a single connection keeps Mutate transactions serialised
	db.SetMaxOpenConns(1)

	if _, err := db.Exec(schema); err != nil {
		db.Close()
		return nil, fmt.Errorf("failed to migrate database: %w", err)
	}

	s := &Storage{db: db, log: logger}
	s.log.Debug().Str("path", filePath).Msg("Storage ready")
	return s, nil
}

// Close closes the database
func (s *Storage) Close() error {
	return s.db.Close()
}

func nextPosition(ctx context.Context, q querier, table string) (int, error) {
	var pos int
	err := q.QueryRowContext(ctx, fmt.Sprintf("SELECT COALESCE(MAX(position), -1) + 1 FROM %s", table)).Scan(&pos)
	if err != nil {
		return 0, fmt.Errorf("failed to read %s position: %w", table, err)
	}
	return pos, nil
}

// AddGuest adds a new guest or updates an existing one.
// Seats are not touched here; they only change through Mutate.
func (s *Storage) AddGuest(ctx context.Context, guest models.Guest) (models.Guest, error) {
	if guest.ID == "" {
		guest.ID = uuid.NewString()
	}
	if guest.RSVPStatus == "" {
		guest.RSVPStatus = models.RSVPPending
	}
	if !guest.RSVPStatus.Valid() {
		return models.Guest{}, fmt.Errorf("guest %s: unknown rsvp status %q", guest.ID, guest.RSVPStatus)
	}
	guest.PhoneNumber = models.NormalizePhoneNumber(guest.PhoneNumber)

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Guest{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := upsertGuest(ctx, tx, guest, false); err != nil {
		return models.Guest{}, err
	}
	if err := tx.Commit(); err != nil {
		return models.Guest{}, fmt.Errorf("failed to commit guest: %w", err)
	}
	return s.GetGuest(ctx, guest.ID)
}

// upsertGuest stores phone numbers normalized so lookups by sender match
func upsertGuest(ctx context.Context, tx *sql.Tx, guest models.Guest, withSeat bool) error {
	pos, err := nextPosition(ctx, tx, "guests")
	if err != nil {
		return err
	}

	_, err = tx.ExecContext(ctx, `
		INSERT INTO guests (id, position, name, phone_number, rsvp_status, rsvp_date, notes)
		VALUES (?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			phone_number = excluded.phone_number,
			rsvp_status = excluded.rsvp_status,
			rsvp_date = COALESCE(excluded.rsvp_date, guests.rsvp_date),
			notes = excluded.notes`,
		guest.ID, pos, guest.Name, models.NormalizePhoneNumber(guest.PhoneNumber), string(guest.RSVPStatus), nullTime(guest.RSVPDate), guest.Notes)
	if err != nil {
		return fmt.Errorf("failed to save guest %s: %w", guest.ID, err)
	}

	if withSeat && guest.Seat != nil {
		_, err = tx.ExecContext(ctx, `UPDATE guests SET table_id = ?, seat_index = ? WHERE id = ?`,
			guest.Seat.TableID, guest.Seat.SeatIndex, guest.ID)
		if err != nil {
			return fmt.Errorf("failed to seat guest %s: %w", guest.ID, err)
		}
	}

	if guest.HouseholdID != "" {
		if err := addHouseholdMember(ctx, tx, guest.HouseholdID, guest.ID); err != nil {
			return err
		}
	}
	for _, circleID := range guest.SocialCircleIDs {
		_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO circle_members (circle_id, guest_id) VALUES (?, ?)`, circleID, guest.ID)
		if err != nil {
			return fmt.Errorf("failed to add guest %s to circle %s: %w", guest.ID, circleID, err)
		}
	}
	return nil
}

func nullTime(t time.Time) sql.NullTime {
	return sql.NullTime{Time: t, Valid: !t.IsZero()}
}

const guestColumns = `g.id, g.name, g.phone_number, g.rsvp_status, g.rsvp_date, g.table_id, g.seat_index, g.notes,
	COALESCE(hm.household_id, '')`

const guestFrom = `FROM guests g LEFT JOIN household_members hm ON hm.guest_id = g.id`

type rowScanner interface {
	Scan(dest ...any) error
}

func scanGuest(row rowScanner) (models.Guest, error) {
	var (
		g         models.Guest
		status    string
		rsvpDate  sql.NullTime
		tableID   sql.NullString
		seatIndex sql.NullInt64
	)
	if err := row.Scan(&g.ID, &g.Name, &g.PhoneNumber, &status, &rsvpDate, &tableID, &seatIndex, &g.Notes, &g.HouseholdID); err != nil {
		return models.Guest{}, err
	}
	g.RSVPStatus = models.RSVPStatus(status)
	if rsvpDate.Valid {
		g.RSVPDate = rsvpDate.Time
	}
	if tableID.Valid && seatIndex.Valid {
		g.Seat = &models.SeatRef{TableID: tableID.String, SeatIndex: int(seatIndex.Int64)}
	}
	return g, nil
}

func queryGuests(ctx context.Context, q querier, where string, args ...any) ([]models.Guest, error) {
	rows, err := q.QueryContext(ctx, "SELECT "+guestColumns+" "+guestFrom+" "+where+" ORDER BY g.position", args...)
	if err != nil {
		return nil, fmt.Errorf("failed to query guests: %w", err)
	}
	defer rows.Close()

	guests := make([]models.Guest, 0)
	index := make(map[string]int)
	for rows.Next() {
		g, err := scanGuest(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan guest: %w", err)
		}
		index[g.ID] = len(guests)
		guests = append(guests, g)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to read guests: %w", err)
	}
	rows.Close()

	circles, err := q.QueryContext(ctx, `
		SELECT cm.guest_id, cm.circle_id FROM circle_members cm
		JOIN social_circles sc ON sc.id = cm.circle_id
		ORDER BY sc.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query circle members: %w", err)
	}
	defer circles.Close()
	for circles.Next() {
		var guestID, circleID string
		if err := circles.Scan(&guestID, &circleID); err != nil {
			return nil, fmt.Errorf("failed to scan circle member: %w", err)
		}
		if i, ok := index[guestID]; ok {
			guests[i].SocialCircleIDs = append(guests[i].SocialCircleIDs, circleID)
		}
	}
	return guests, circles.Err()
}

// GetGuest retrieves a guest by id
func (s *Storage) GetGuest(ctx context.Context, id string) (models.Guest, error) {
	guests, err := queryGuests(ctx, s.db, "WHERE g.id = ?", id)
	if err != nil {
		return models.Guest{}, err
	}
	if len(guests) == 0 {
		return models.Guest{}, fmt.Errorf("guest %s: %w", id, ErrNotFound)
	}
	return guests[0], nil
}

// GetGuestByPhone retrieves a guest by phone number, in any format
func (s *Storage) GetGuestByPhone(ctx context.Context, phoneNumber string) (models.Guest, error) {
	return guestByPhone(ctx, s.db, phoneNumber)
}

func guestByPhone(ctx context.Context, q querier, phoneNumber string) (models.Guest, error) {
	if phoneNumber = models.NormalizePhoneNumber(phoneNumber); phoneNumber == "" {
		return models.Guest{}, fmt.Errorf("empty phone number: %w", ErrNotFound)
	}
	guests, err := queryGuests(ctx, q, "WHERE g.phone_number = ?", phoneNumber)
	if err != nil {
		return models.Guest{}, err
	}
	if len(guests) == 0 {
		return models.Guest{}, fmt.Errorf("guest with phone %s: %w", phoneNumber, ErrNotFound)
	}
	return guests[0], nil
}

// GetAllGuests returns all guests in insertion order
func (s *Storage) GetAllGuests(ctx context.Context) ([]models.Guest, error) {
	return queryGuests(ctx, s.db, "")
}

// GetGuestsByStatus returns guests filtered by RSVP status
func (s *Storage) GetGuestsByStatus(ctx context.Context, status models.RSVPStatus) ([]models.Guest, error) {
	return queryGuests(ctx, s.db, "WHERE g.rsvp_status = ?", string(status))
}

// UpdateRSVP updates the RSVP status for a guest.
// A guest who declines gives up their seat in the same transaction.
func (s *Storage) UpdateRSVP(ctx context.Context, phoneNumber string, status models.RSVPStatus, notes string) (models.Guest, error) {
	if !status.Valid() {
		return models.Guest{}, fmt.Errorf("unknown rsvp status %q", status)
	}
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return models.Guest{}, fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	guest, err := guestByPhone(ctx, tx, phoneNumber)
	if err != nil {
		return models.Guest{}, err
	}

	_, err = tx.ExecContext(ctx, `
		UPDATE guests SET rsvp_status = ?, rsvp_date = ?, notes = CASE WHEN ? = '' THEN notes ELSE ? END
		WHERE id = ?`,
		string(status), time.Now(), notes, notes, guest.ID)
	if err != nil {
		return models.Guest{}, fmt.Errorf("failed to update RSVP: %w", err)
	}
	if status == models.RSVPDeclined {
		if _, err := tx.ExecContext(ctx, `UPDATE guests SET table_id = NULL, seat_index = NULL WHERE id = ?`, guest.ID); err != nil {
			return models.Guest{}, fmt.Errorf("failed to release seat: %w", err)
		}
		if guest.Seat != nil {
			s.log.Info().Str("guest", guest.ID).Str("table", guest.Seat.TableID).Msg("Released seat after RSVP change")
		}
	}
	if err := tx.Commit(); err != nil {
		return models.Guest{}, fmt.Errorf("failed to commit RSVP: %w", err)
	}
	return s.GetGuest(ctx, guest.ID)
}
