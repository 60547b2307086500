// Package geometry turns a table's shape and capacity into an ordered list of seats.
//
// Seat order is part of the persisted data model: a guest's seat index points into
// the slice returned by SeatPositions, so every layout here is a deterministic
// function of its inputs. Offsets are relative to the table centre in screen
// coordinates (x grows right, y grows down). Angle is the direction the seated guest
// faces, in radians.
package geometry

import (
	"math"

	"wedding-seating/internal/models"
)

const (
	// SeatRadius is the radius of one chair
	SeatRadius = 16.0
	// SeatSpacing is the gap between a chair and the table edge, and between chairs
	SeatSpacing = 8.0
	// SeatPitch is the edge length one chair needs
	SeatPitch = 2*SeatRadius + SeatSpacing
)

const (
	facingDown  = math.Pi / 2
	facingUp    = -math.Pi / 2
	facingLeft  = math.Pi
	facingRight = 0.0
)

// Seat is one chair position around a table
type Seat struct {
	X float64 `json:"x"`
	Y float64 `json:"y"`
	// Angle is the facing direction, not the seat's polar position. For round
	// tables seat i sits at polar angle i·2π/n − π/2 and faces the centre, so
	// Angle is that polar angle plus π.
	Angle float64 `json:"angle"`
}

// SeatPositions lays out exactly capacity seats for a table, or none when capacity <= 0
func SeatPositions(shape models.Shape, capacity int, width, height float64, side models.SeatingSide, includeEndSeats bool) []Seat {
	if capacity <= 0 {
		return []Seat{}
	}

	switch shape {
	case models.ShapeRound, models.ShapeCocktail:
		return roundSeats(capacity, width)
	case models.ShapeHead:
		return headSeats(capacity, width, height)
	case models.ShapeSweetheart:
		return sweetheartSeats(capacity, height)
	default:
		return rectSeats(capacity, width, height, side, includeEndSeats)
	}
}

// ForTable returns the seat layout of t
func ForTable(t models.Table) []Seat {
	return SeatPositions(t.Shape, t.Capacity, t.Width, t.Height, t.SeatingSide, t.IncludeEndSeats)
}

// SuggestedCapacity returns how many seats physically fit around a table of the given size.
// It is never negative.
func SuggestedCapacity(shape models.Shape, width, height float64, side models.SeatingSide, includeEndSeats bool) int {
	switch shape {
	case models.ShapeRound, models.ShapeCocktail:
		circumference := 2 * math.Pi * roundRadius(width)
		return max(int(math.Floor(circumference/SeatPitch)), 0)
	case models.ShapeHead:
		return seatsAlong(width)
	case models.ShapeSweetheart:
		return models.SweetheartSeats
	}

	if side == models.SideTop || side == models.SideBottom {
		return seatsAlong(width)
	}
	n := 2 * seatsAlong(width)
	if includeEndSeats {
		n += 2 * seatsAlong(height)
	}
	return n
}

func roundRadius(width float64) float64 {
	return width/2 + SeatRadius + SeatSpacing
}

// seatsAlong is how many chairs fit on one edge; a real edge always takes at least one
func seatsAlong(length float64) int {
	if length <= 0 {
		return 0
	}
	n := int(math.Floor(length / SeatPitch))
	if n < 1 {
		return 1
	}
	return n
}

func roundSeats(capacity int, width float64) []Seat {
	r := roundRadius(width)
	step := 2 * math.Pi / float64(capacity)
	seats := make([]Seat, capacity)
	for i := range seats {
		theta := float64(i)*step - math.Pi/2
		seats[i] = Seat{
			X:     r * math.Cos(theta),
			Y:     r * math.Sin(theta),
			Angle: theta + math.Pi,
		}
	}
	return seats
}

// headSeats puts everyone on the back edge facing the room
func headSeats(capacity int, width, height float64) []Seat {
	y := -(height/2 + SeatRadius + SeatSpacing)
	seats := make([]Seat, capacity)
	for i := range seats {
		seats[i] = Seat{X: spread(width, i, capacity), Y: y, Angle: facingDown}
	}
	return seats
}

// sweetheartSeats centres a pair of chairs behind the table
func sweetheartSeats(capacity int, height float64) []Seat {
	y := -(height/2 + SeatRadius + SeatSpacing)
	mid := float64(capacity-1) / 2
	seats := make([]Seat, capacity)
	for i := range seats {
		seats[i] = Seat{X: (float64(i) - mid) * SeatPitch, Y: y, Angle: facingDown}
	}
	return seats
}

// edgeCounts is how many chairs sit on each side of a rectangle
type edgeCounts struct {
	top, right, bottom, left int
}

func splitRect(capacity int, width, height float64, side models.SeatingSide, includeEndSeats bool) edgeCounts {
	switch side {
	case models.SideTop:
		return edgeCounts{top: capacity}
	case models.SideBottom:
		return edgeCounts{bottom: capacity}
	}

	if !includeEndSeats {
		return edgeCounts{top: (capacity + 1) / 2, bottom: capacity / 2}
	}

	long := min(capacity, 2*seatsAlong(width))
	ends := min(capacity-long, 2*seatsAlong(height))
	// Whatever does not fit at the ends squeezes back onto the long sides.
	long = capacity - ends

	return edgeCounts{
		top:    (long + 1) / 2,
		bottom: long / 2,
		right:  (ends + 1) / 2,
		left:   ends / 2,
	}
}

// rectSeats walks the rectangle clockwise from the top-left corner
func rectSeats(capacity int, width, height float64, side models.SeatingSide, includeEndSeats bool) []Seat {
	c := splitRect(capacity, width, height, side, includeEndSeats)
	outX := width/2 + SeatRadius + SeatSpacing
	outY := height/2 + SeatRadius + SeatSpacing

	seats := make([]Seat, 0, capacity)
	for i := 0; i < c.top; i++ {
		seats = append(seats, Seat{X: spread(width, i, c.top), Y: -outY, Angle: facingDown})
	}
	for i := 0; i < c.right; i++ {
		seats = append(seats, Seat{X: outX, Y: spread(height, i, c.right), Angle: facingLeft})
	}
	for i := 0; i < c.bottom; i++ {
		seats = append(seats, Seat{X: -spread(width, i, c.bottom), Y: outY, Angle: facingUp})
	}
	for i := 0; i < c.left; i++ {
		seats = append(seats, Seat{X: -outX, Y: -spread(height, i, c.left), Angle: facingRight})
	}
	return seats
}

// spread centres n chairs along an edge of the given length and returns the i-th offset
func spread(length float64, i, n int) float64 {
	return -length/2 + length*(float64(i)+0.5)/float64(n)
}
