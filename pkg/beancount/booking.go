package beancount

import (
	"errors"
	"fmt"
)

// ErrUnknownBooking is returned when a booking method token is not recognized.
var ErrUnknownBooking = errors.New("unknown booking method")

// Booking is the policy used to pick lots when a reduction matches several of them.
type Booking int

const (
	// BookingStrict rejects ambiguous matches with an error.
	BookingStrict Booking = iota
	// BookingStrictWithSize is strict, but accepts the oldest lot whose size matches exactly.
	BookingStrictWithSize
	// BookingNone disables matching and allows mixed inventories.
	BookingNone
	// BookingAverage merges all matching lots at their average cost.
	BookingAverage
	// BookingFifo takes the oldest lots first.
	BookingFifo
	// BookingLifo takes the newest lots first.
	BookingLifo
)

var bookingTokens = map[Booking]string{
	BookingStrict:         "STRICT",
	BookingStrictWithSize: "STRICT_WITH_SIZE",
	BookingNone:           "NONE",
	BookingAverage:        "AVERAGE",
	BookingFifo:           "FIFO",
	BookingLifo:           "LIFO",
}

// Bookings lists every booking method.
var Bookings = []Booking{
	BookingStrict,
	BookingStrictWithSize,
	BookingNone,
	BookingAverage,
	BookingFifo,
	BookingLifo,
}

// ParseBooking maps an upper-case token such as "FIFO" to its Booking.
func ParseBooking(token string) (Booking, error) {
	for b, t := range bookingTokens {
		if t == token {
			return b, nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrUnknownBooking, token)
}

// String returns the upper-case token of the booking method.
func (b Booking) String() string {
	if t, ok := bookingTokens[b]; ok {
		return t
	}
	return fmt.Sprintf("Booking(%d)", int(b))
}
