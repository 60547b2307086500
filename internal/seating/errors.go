package seating

import "errors"

var (
	ErrGuestNotFound  = errors.New("guest not found")
	ErrTableNotFound  = errors.New("table not found")
	ErrTableFull      = errors.New("table is full")
	ErrSeatTaken      = errors.New("seat is already taken")
	ErrSeatOutOfRange = errors.New("seat index out of range")
	ErrGuestNotSeated = errors.New("guest is not seated")
)
