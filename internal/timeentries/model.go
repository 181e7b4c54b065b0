// Package timeentries tracks user clock-in and clock-out times.
package timeentries

import (
	"math"
	"time"

	"github.com/odyssey-erp/odyssey-ats/internal/shared"
)

// Entry statuses.
const (
	StatusClockedIn  = "clocked-in"
	StatusClockedOut = "clocked-out"
)

var (
	// ErrAlreadyClockedIn is returned when the user already has an open entry today.
	ErrAlreadyClockedIn = &shared.Error{Kind: shared.ErrConflict, Message: "You are already clocked in today"}
	// ErrNotClockedIn is returned by clock-out when no entry is open.
	ErrNotClockedIn = &shared.Error{Kind: shared.ErrConflict, Message: "You are not clocked in"}
)

// Entry is one working session.
type Entry struct {
	ID           int64      `json:"id"`
	UserID       int64      `json:"userId"`
	UserName     string     `json:"userName"`
	WorkDate     string     `json:"date"`
	ClockInTime  time.Time  `json:"clockInTime"`
	ClockOutTime *time.Time `json:"clockOutTime,omitempty"`
	TotalHours   *float64   `json:"totalHours,omitempty"`
	Status       string     `json:"status"`
}

// Filter narrows List. Zero values match everything.
type Filter struct {
	UserID int64
	Date   string
}

// Hours returns the elapsed time in hours rounded to two decimals.
func Hours(in, out time.Time) float64 {
	h := out.Sub(in).Hours()
	if h < 0 {
		h = 0
	}
	return math.Round(h*100) / 100
}
