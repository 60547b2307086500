package api

import (
	"errors"
	"io"
	"net/http"
	"strconv"

	"github.com/gin-gonic/gin"
	"github.com/rs/zerolog"

	"wedding-seating/internal/geometry"
	"wedding-seating/internal/metrics"
	"wedding-seating/internal/models"
	"wedding-seating/internal/seating"
	"wedding-seating/internal/storage"
)

// SeatingHandler serves the guest, table and seating routes
type SeatingHandler struct {
	storage *storage.Storage
	metrics *metrics.Seating
	log     zerolog.Logger
}

// NewSeatingHandler creates a new seating handler
func NewSeatingHandler(store *storage.Storage, m *metrics.Seating, logger zerolog.Logger) *SeatingHandler {
	return &SeatingHandler{
		storage: store,
		metrics: m,
		log:     logger,
	}
}

type AutoAssignInput struct {
	Apply bool `json:"apply"`
}

type AutoAssignResponse struct {
	Assignments []models.Assignment `json:"assignments"`
	Unplaced    []string            `json:"unplaced"`
	Applied     bool                `json:"applied"`
}

type AssignInput struct {
	GuestID   string `json:"guest_id" binding:"required"`
	TableID   string `json:"table_id" binding:"required"`
	SeatIndex *int   `json:"seat_index" binding:"required"`
}

type UnassignInput struct {
	GuestID string `json:"guest_id" binding:"required"`
}

type SwapInput struct {
	GuestA string `json:"guest_a" binding:"required"`
	GuestB string `json:"guest_b" binding:"required"`
}

type BulkAssignInput struct {
	TableID  string   `json:"table_id" binding:"required"`
	GuestIDs []string `json:"guest_ids" binding:"required"`
}

type TableSeatsResponse struct {
	TableID string          `json:"table_id"`
	Shape   models.Shape    `json:"shape"`
	Seats   []geometry.Seat `json:"seats"`
	// Occupants maps seat index to guest id
	Occupants map[int]string `json:"occupants"`
}

type CapacityResponse struct {
	Capacity int             `json:"capacity"`
	Seats    []geometry.Seat `json:"seats"`
}

type ViolationsResponse struct {
	Violations []seating.Violation `json:"violations"`
}

// GetGuests lists every guest with their seat
func (h *SeatingHandler) GetGuests(c *gin.Context) {
	guests, err := h.storage.GetAllGuests(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, guests)
}

// GetTables lists every table with its seated guest ids
func (h *SeatingHandler) GetTables(c *gin.Context) {
	event, err := h.storage.LoadEvent(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, event.Tables)
}

// GetTableSeats returns the seat layout of a stored table and who sits where
func (h *SeatingHandler) GetTableSeats(c *gin.Context) {
	event, err := h.storage.LoadEvent(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}

	id := c.Param("id")
	for _, t := range event.Tables {
		if t.ID != id {
			continue
		}
		occupants := make(map[int]string, len(t.AssignedGuestIDs))
		for _, g := range event.Guests {
			if g.TableID() == id {
				occupants[g.Seat.SeatIndex] = g.ID
			}
		}
		c.JSON(http.StatusOK, TableSeatsResponse{
			TableID:   t.ID,
			Shape:     t.Shape,
			Seats:     geometry.ForTable(t),
			Occupants: occupants,
		})
		return
	}
	c.JSON(http.StatusNotFound, gin.H{"error": "Table not found"})
}

// GetCapacity suggests how many seats fit a table of the given shape and size
func (h *SeatingHandler) GetCapacity(c *gin.Context) {
	shape, err := models.ParseShape(c.Query("shape"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	side, err := models.ParseSeatingSide(c.Query("side"))
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}
	width, err := queryFloat(c, "width")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid width"})
		return
	}
	height, err := queryFloat(c, "height")
	if err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid height"})
		return
	}
	if width < 0 || height < 0 {
		c.JSON(http.StatusBadRequest, gin.H{"error": "Dimensions must not be negative"})
		return
	}
	endSeats := false
	if raw := c.Query("end_seats"); raw != "" {
		if endSeats, err = strconv.ParseBool(raw); err != nil {
			c.JSON(http.StatusBadRequest, gin.H{"error": "Invalid end_seats"})
			return
		}
	}

	capacity := geometry.SuggestedCapacity(shape, width, height, side, endSeats)
	c.JSON(http.StatusOK, CapacityResponse{
		Capacity: capacity,
		Seats:    geometry.SeatPositions(shape, capacity, width, height, side, endSeats),
	})
}

// AutoAssign plans seats for unseated attending guests and optionally saves them
func (h *SeatingHandler) AutoAssign(c *gin.Context) {
	var input AutoAssignInput
	if err := c.ShouldBindJSON(&input); err != nil && !errors.Is(err, io.EOF) {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	result, err := h.storage.AutoAssign(c.Request.Context(), input.Apply)
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.ObserveRun(len(result.Assignments), len(result.Unplaced))

	c.JSON(http.StatusOK, AutoAssignResponse{
		Assignments: result.Assignments,
		Unplaced:    result.Unplaced,
		Applied:     input.Apply,
	})
}

// GetViolations reports every constraint the stored seating breaks
func (h *SeatingHandler) GetViolations(c *gin.Context) {
	event, err := h.storage.LoadEvent(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	violations := seating.Validate(event.Constraints, event.Guests, event.Tables)
	h.metrics.Violations.Set(float64(len(violations)))
	c.JSON(http.StatusOK, ViolationsResponse{Violations: violations})
}

// Assign puts a guest into a specific seat
func (h *SeatingHandler) Assign(c *gin.Context) {
	var input AssignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.storage.Mutate(c.Request.Context(), func(r *seating.Roster) error {
		return r.Assign(input.GuestID, input.TableID, *input.SeatIndex)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.SeatChanges.WithLabelValues("assign").Inc()
	c.JSON(http.StatusOK, findGuest(event, input.GuestID))
}

// Unassign frees a guest's seat
func (h *SeatingHandler) Unassign(c *gin.Context) {
	var input UnassignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.storage.Mutate(c.Request.Context(), func(r *seating.Roster) error {
		return r.Unassign(input.GuestID)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.SeatChanges.WithLabelValues("unassign").Inc()
	c.JSON(http.StatusOK, findGuest(event, input.GuestID))
}

// Swap exchanges the seats of two seated guests
func (h *SeatingHandler) Swap(c *gin.Context) {
	var input SwapInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	event, err := h.storage.Mutate(c.Request.Context(), func(r *seating.Roster) error {
		return r.Swap(input.GuestA, input.GuestB)
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.SeatChanges.WithLabelValues("swap").Inc()
	c.JSON(http.StatusOK, []models.Guest{findGuest(event, input.GuestA), findGuest(event, input.GuestB)})
}

// BulkAssign seats a list of guests at one table, filling the lowest free seats
func (h *SeatingHandler) BulkAssign(c *gin.Context) {
	var input BulkAssignInput
	if err := c.ShouldBindJSON(&input); err != nil {
		c.JSON(http.StatusBadRequest, gin.H{"error": err.Error()})
		return
	}

	var applied []models.Assignment
	_, err := h.storage.Mutate(c.Request.Context(), func(r *seating.Roster) error {
		var err error
		applied, err = r.BulkAssign(input.TableID, input.GuestIDs)
		return err
	})
	if err != nil {
		h.fail(c, err)
		return
	}
	h.metrics.SeatChanges.WithLabelValues("bulk_assign").Add(float64(len(applied)))
	c.JSON(http.StatusOK, gin.H{"assignments": applied})
}

// fail maps an error to its HTTP status
func (h *SeatingHandler) fail(c *gin.Context, err error) {
	status := statusFor(err)
	if status == http.StatusInternalServerError {
		h.log.Error().Err(err).Str("path", c.FullPath()).Msg("Request failed")
		c.JSON(status, gin.H{"error": "Internal server error"})
		return
	}
	c.JSON(status, gin.H{"error": err.Error()})
}

func statusFor(err error) int {
	switch {
	case errors.Is(err, seating.ErrGuestNotFound),
		errors.Is(err, seating.ErrTableNotFound),
		errors.Is(err, storage.ErrNotFound):
		return http.StatusNotFound
	case errors.Is(err, seating.ErrSeatOutOfRange):
		return http.StatusBadRequest
	case errors.Is(err, seating.ErrTableFull),
		errors.Is(err, seating.ErrSeatTaken),
		errors.Is(err, seating.ErrGuestNotSeated),
		errors.Is(err, storage.ErrInconsistent):
		return http.StatusConflict
	default:
		return http.StatusInternalServerError
	}
}

func queryFloat(c *gin.Context, key string) (float64, error) {
	raw := c.Query(key)
	if raw == "" {
		return 0, nil
	}
	return strconv.ParseFloat(raw, 64)
}

func findGuest(event models.Event, id string) models.Guest {
	for _, g := range event.Guests {
		if g.ID == id {
			return g
		}
	}
	return models.Guest{ID: id}
}
