package storage

import (
	"context"
	"database/sql"
	"fmt"

	"github.com/google/uuid"

	"wedding-seating/internal/geometry"
	"wedding-seating/internal/models"
	"wedding-seating/internal/seating"
)

func addHouseholdMember(ctx context.Context, tx *sql.Tx, householdID, guestID string) error {
	var pos int
	err := tx.QueryRowContext(ctx,
		`SELECT COALESCE(MAX(position), -1) + 1 FROM household_members WHERE household_id = ?`, householdID).Scan(&pos)
	if err != nil {
		return fmt.Errorf("failed to read household position: %w", err)
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO household_members (household_id, guest_id, position) VALUES (?, ?, ?)
		ON CONFLICT(guest_id) DO UPDATE SET household_id = excluded.household_id, position = excluded.position
		WHERE household_members.household_id <> excluded.household_id`,
		householdID, guestID, pos)
	if err != nil {
		return fmt.Errorf("failed to add guest %s to household %s: %w", guestID, householdID, err)
	}
	return nil
}

// AddHousehold creates or replaces a household and its ordered member list
func (s *Storage) AddHousehold(ctx context.Context, h models.Household) (models.Household, error) {
	if h.ID == "" {
		h.ID = uuid.NewString()
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return saveHousehold(ctx, tx, h)
	})
	return h, err
}

func saveHousehold(ctx context.Context, tx *sql.Tx, h models.Household) error {
	pos, err := nextPosition(ctx, tx, "households")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO households (id, position, name) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name`, h.ID, pos, h.Name)
	if err != nil {
		return fmt.Errorf("failed to save household %s: %w", h.ID, err)
	}
	if _, err := tx.ExecContext(ctx, `DELETE FROM household_members WHERE household_id = ?`, h.ID); err != nil {
		return fmt.Errorf("failed to reset household %s: %w", h.ID, err)
	}
	for _, guestID := range h.MemberIDs {
		if err := addHouseholdMember(ctx, tx, h.ID, guestID); err != nil {
			return err
		}
	}
	return nil
}

// AddSocialCircle creates or replaces a social circle and its members
func (s *Storage) AddSocialCircle(ctx context.Context, c models.SocialCircle) (models.SocialCircle, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return saveSocialCircle(ctx, tx, c)
	})
	return c, err
}

func saveSocialCircle(ctx context.Context, tx *sql.Tx, c models.SocialCircle) error {
	pos, err := nextPosition(ctx, tx, "social_circles")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO social_circles (id, position, name, color) VALUES (?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET name = excluded.name, color = excluded.color`, c.ID, pos, c.Name, c.Color)
	if err != nil {
		return fmt.Errorf("failed to save social circle %s: %w", c.ID, err)
	}
	for _, guestID := range c.MemberIDs {
		_, err := tx.ExecContext(ctx, `INSERT OR IGNORE INTO circle_members (circle_id, guest_id) VALUES (?, ?)`, c.ID, guestID)
		if err != nil {
			return fmt.Errorf("failed to add guest %s to circle %s: %w", guestID, c.ID, err)
		}
	}
	return nil
}

// AddTable creates or updates a table.
// A table created without seats gets as many as physically fit around it.
func (s *Storage) AddTable(ctx context.Context, t models.Table) (models.Table, error) {
	if t.ID == "" {
		t.ID = uuid.NewString()
	}
	if t.Capacity == 0 {
		t.Capacity = geometry.SuggestedCapacity(t.Shape, t.Width, t.Height, t.SeatingSide, t.IncludeEndSeats)
	}
	t.Normalize()
	if err := t.Validate(); err != nil {
		return models.Table{}, err
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return saveTable(ctx, tx, t)
	})
	return t, err
}

func saveTable(ctx context.Context, tx *sql.Tx, t models.Table) error {
	var seated int
	err := tx.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM guests WHERE table_id = ? AND seat_index >= ?`, t.ID, t.Capacity).Scan(&seated)
	if err != nil {
		return fmt.Errorf("failed to check seats of table %s: %w", t.ID, err)
	}
	if seated > 0 {
		return fmt.Errorf("table %s: %d guests sit beyond the new capacity %d: %w", t.ID, seated, t.Capacity, seating.ErrSeatOutOfRange)
	}

	pos, err := nextPosition(ctx, tx, "seating_tables")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO seating_tables (id, position, name, shape, capacity, width, height, seating_side, include_end_seats)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			name = excluded.name,
			shape = excluded.shape,
			capacity = excluded.capacity,
			width = excluded.width,
			height = excluded.height,
			seating_side = excluded.seating_side,
			include_end_seats = excluded.include_end_seats`,
		t.ID, pos, t.Name, string(t.Shape), t.Capacity, t.Width, t.Height, string(t.SeatingSide), t.IncludeEndSeats)
	if err != nil {
		return fmt.Errorf("failed to save table %s: %w", t.ID, err)
	}
	return nil
}

// AddConstraint stores a seating constraint
func (s *Storage) AddConstraint(ctx context.Context, c models.Constraint) (models.Constraint, error) {
	if c.ID == "" {
		c.ID = uuid.NewString()
	}
	if err := c.Validate(); err != nil {
		return models.Constraint{}, err
	}
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		return saveConstraint(ctx, tx, c)
	})
	return c, err
}

func saveConstraint(ctx context.Context, tx *sql.Tx, c models.Constraint) error {
	pos, err := nextPosition(ctx, tx, "constraints")
	if err != nil {
		return err
	}
	_, err = tx.ExecContext(ctx, `
		INSERT INTO constraints (id, position, kind, guest_a, guest_b, reason) VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			kind = excluded.kind, guest_a = excluded.guest_a, guest_b = excluded.guest_b, reason = excluded.reason`,
		c.ID, pos, string(c.Kind), c.GuestA, c.GuestB, c.Reason)
	if err != nil {
		return fmt.Errorf("failed to save constraint %s: %w", c.ID, err)
	}
	return nil
}

func (s *Storage) inTx(ctx context.Context, fn func(tx *sql.Tx) error) error {
	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	if err := fn(tx); err != nil {
		return err
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("failed to commit: %w", err)
	}
	return nil
}

// LoadEvent reads the whole event as one consistent snapshot
func (s *Storage) LoadEvent(ctx context.Context) (models.Event, error) {
	var event models.Event
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		var err error
		event, err = loadEvent(ctx, tx)
		return err
	})
	return event, err
}

func loadEvent(ctx context.Context, q querier) (models.Event, error) {
	var (
		event models.Event
		err   error
	)
	if event.Guests, err = queryGuests(ctx, q, ""); err != nil {
		return event, err
	}
	if event.Households, err = loadHouseholds(ctx, q); err != nil {
		return event, err
	}
	if event.SocialCircles, err = loadSocialCircles(ctx, q); err != nil {
		return event, err
	}
	if event.Tables, err = loadTables(ctx, q); err != nil {
		return event, err
	}
	if event.Constraints, err = loadConstraints(ctx, q); err != nil {
		return event, err
	}
	// table guest lists are derived from guest seats
	return seating.NewRoster(event.Guests, event.Tables).Event(event), nil
}

func loadHouseholds(ctx context.Context, q querier) ([]models.Household, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT h.id, h.name, hm.guest_id FROM households h
		LEFT JOIN household_members hm ON hm.household_id = h.id
		ORDER BY h.position, hm.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query households: %w", err)
	}
	defer rows.Close()

	households := make([]models.Household, 0)
	for rows.Next() {
		var (
			id, name string
			guestID  sql.NullString
		)
		if err := rows.Scan(&id, &name, &guestID); err != nil {
			return nil, fmt.Errorf("failed to scan household: %w", err)
		}
		if n := len(households); n == 0 || households[n-1].ID != id {
			households = append(households, models.Household{ID: id, Name: name, MemberIDs: []string{}})
		}
		if guestID.Valid {
			last := &households[len(households)-1]
			last.MemberIDs = append(last.MemberIDs, guestID.String)
		}
	}
	return households, rows.Err()
}

func loadSocialCircles(ctx context.Context, q querier) ([]models.SocialCircle, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT sc.id, sc.name, sc.color, cm.guest_id FROM social_circles sc
		LEFT JOIN circle_members cm ON cm.circle_id = sc.id
		LEFT JOIN guests g ON g.id = cm.guest_id
		ORDER BY sc.position, g.position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query social circles: %w", err)
	}
	defer rows.Close()

	circles := make([]models.SocialCircle, 0)
	for rows.Next() {
		var (
			c       models.SocialCircle
			guestID sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.Name, &c.Color, &guestID); err != nil {
			return nil, fmt.Errorf("failed to scan social circle: %w", err)
		}
		if n := len(circles); n == 0 || circles[n-1].ID != c.ID {
			c.MemberIDs = []string{}
			circles = append(circles, c)
		}
		if guestID.Valid {
			last := &circles[len(circles)-1]
			last.MemberIDs = append(last.MemberIDs, guestID.String)
		}
	}
	return circles, rows.Err()
}

func loadTables(ctx context.Context, q querier) ([]models.Table, error) {
	rows, err := q.QueryContext(ctx, `
		SELECT id, name, shape, capacity, width, height, seating_side, include_end_seats
		FROM seating_tables ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query tables: %w", err)
	}
	defer rows.Close()

	tables := make([]models.Table, 0)
	for rows.Next() {
		var (
			t           models.Table
			shape, side string
		)
		if err := rows.Scan(&t.ID, &t.Name, &shape, &t.Capacity, &t.Width, &t.Height, &side, &t.IncludeEndSeats); err != nil {
			return nil, fmt.Errorf("failed to scan table: %w", err)
		}
		t.Shape = models.Shape(shape)
		t.SeatingSide = models.SeatingSide(side)
		tables = append(tables, t)
	}
	return tables, rows.Err()
}

func loadConstraints(ctx context.Context, q querier) ([]models.Constraint, error) {
	rows, err := q.QueryContext(ctx, `SELECT id, kind, guest_a, guest_b, reason FROM constraints ORDER BY position`)
	if err != nil {
		return nil, fmt.Errorf("failed to query constraints: %w", err)
	}
	defer rows.Close()

	constraints := make([]models.Constraint, 0)
	for rows.Next() {
		var (
			c    models.Constraint
			kind string
		)
		if err := rows.Scan(&c.ID, &kind, &c.GuestA, &c.GuestB, &c.Reason); err != nil {
			return nil, fmt.Errorf("failed to scan constraint: %w", err)
		}
		c.Kind = models.ConstraintKind(kind)
		constraints = append(constraints, c)
	}
	return constraints, rows.Err()
}

// Mutate runs fn against the current seating and saves the result atomically.
//
// The snapshot is loaded, changed and written back inside one transaction, so a
// guest's seat and the table's guest list can never be observed half-updated. If fn
// fails, or the result breaks a seating invariant that held before, nothing is saved.
func (s *Storage) Mutate(ctx context.Context, fn func(r *seating.Roster) error) (models.Event, error) {
	var after models.Event
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		before, err := loadEvent(ctx, tx)
		if err != nil {
			return err
		}

		roster := seating.NewRoster(before.Guests, before.Tables)
		if err := fn(roster); err != nil {
			return err
		}
		after = roster.Event(before)

		issuesBefore := seating.CheckIntegrity(before.Guests, before.Tables)
		issuesAfter := seating.CheckIntegrity(after.Guests, after.Tables)
		if len(issuesAfter) > len(issuesBefore) {
			return fmt.Errorf("%w: %s", ErrInconsistent, issuesAfter[len(issuesAfter)-1].Message)
		}

		return writeSeats(ctx, tx, before.Guests, after.Guests)
	})
	if err != nil {
		return models.Event{}, err
	}
	return after, nil
}

// AutoAssign plans seats for every unseated attending guest. With apply set the
// plan is written in the same transaction it was computed from.
func (s *Storage) AutoAssign(ctx context.Context, apply bool) (seating.Result, error) {
	var result seating.Result
	err := s.inTx(ctx, func(tx *sql.Tx) error {
		event, err := loadEvent(ctx, tx)
		if err != nil {
			return err
		}
		result = seating.ComputeAutoAssignments(event)
		if !apply || len(result.Assignments) == 0 {
			return nil
		}

		roster := seating.NewRoster(event.Guests, event.Tables)
		if err := roster.Apply(result.Assignments); err != nil {
			return err
		}
		return writeSeats(ctx, tx, event.Guests, roster.Guests())
	})
	if err != nil {
		return seating.Result{}, err
	}
	if apply {
		s.log.Info().
			Int("placed", len(result.Assignments)).
			Int("unplaced", len(result.Unplaced)).
			Msg("Applied auto-assignments")
	}
	return result, nil
}

// writeSeats saves the seats that changed; seats are cleared first so exchanges
// never trip the unique seat index halfway through
func writeSeats(ctx context.Context, tx *sql.Tx, before, after []models.Guest) error {
	old := make(map[string]*models.SeatRef, len(before))
	for _, g := range before {
		old[g.ID] = g.Seat
	}

	var changed []models.Guest
	for _, g := range after {
		if !sameSeat(old[g.ID], g.Seat) {
			changed = append(changed, g)
		}
	}

	for _, g := range changed {
		if _, err := tx.ExecContext(ctx, `UPDATE guests SET table_id = NULL, seat_index = NULL WHERE id = ?`, g.ID); err != nil {
			return fmt.Errorf("failed to clear seat of %s: %w", g.ID, err)
		}
	}
	for _, g := range changed {
		if g.Seat == nil {
			continue
		}
		_, err := tx.ExecContext(ctx, `UPDATE guests SET table_id = ?, seat_index = ? WHERE id = ?`,
			g.Seat.TableID, g.Seat.SeatIndex, g.ID)
		if err != nil {
			return fmt.Errorf("failed to seat %s: %w", g.ID, err)
		}
	}
	return nil
}

func sameSeat(a, b *models.SeatRef) bool {
	if a == nil || b == nil {
		return a == b
	}
	return *a == *b
}

// ImportEvent loads a whole event, seats included, in one transaction
func (s *Storage) ImportEvent(ctx context.Context, event models.Event) error {
	event.Tables = append([]models.Table(nil), event.Tables...)
	for i := range event.Tables {
		event.Tables[i].Normalize()
		if err := event.Tables[i].Validate(); err != nil {
			return err
		}
	}
	for _, c := range event.Constraints {
		if err := c.Validate(); err != nil {
			return err
		}
	}
	for _, g := range event.Guests {
		if g.ID == "" {
			return fmt.Errorf("guest %q has no id", g.Name)
		}
		if !g.RSVPStatus.Valid() {
			return fmt.Errorf("guest %s: unknown rsvp status %q", g.ID, g.RSVPStatus)
		}
	}
	if issues := seating.CheckIntegrity(event.Guests, seating.NewRoster(event.Guests, event.Tables).Tables()); len(issues) > 0 {
		return fmt.Errorf("%w: %s", ErrInconsistent, issues[0].Message)
	}

	err := s.inTx(ctx, func(tx *sql.Tx) error {
		for _, t := range event.Tables {
			if err := saveTable(ctx, tx, t); err != nil {
				return err
			}
		}
		for _, g := range event.Guests {
			if _, err := tx.ExecContext(ctx, `UPDATE guests SET table_id = NULL, seat_index = NULL WHERE id = ?`, g.ID); err != nil {
				return fmt.Errorf("failed to clear seat of %s: %w", g.ID, err)
			}
		}
		for _, g := range event.Guests {
			if err := upsertGuest(ctx, tx, g, true); err != nil {
				return err
			}
		}
		for _, h := range event.Households {
			if err := saveHousehold(ctx, tx, h); err != nil {
				return err
			}
		}
		for _, c := range event.SocialCircles {
			if err := saveSocialCircle(ctx, tx, c); err != nil {
				return err
			}
		}
		for _, c := range event.Constraints {
			if err := saveConstraint(ctx, tx, c); err != nil {
				return err
			}
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to import event: %w", err)
	}

	s.log.Info().
		Int("guests", len(event.Guests)).
		Int("tables", len(event.Tables)).
		Int("constraints", len(event.Constraints)).
		Msg("Imported event")
	return nil
}
