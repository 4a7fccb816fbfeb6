package domain

import (
	"fmt"
	"time"
)

type (
	VoteID  string
	GuestID string
)

// Role says which roster the voter picked their name from. It is stored for
// reporting only and never re-checked against the roster.
type Role string

const (
	RoleStudent Role = "student"
	RoleTeacher Role = "teacher"
	RoleGuest   Role = "guest"
)

func (r Role) Valid() bool {
	switch r {
	case RoleStudent, RoleTeacher, RoleGuest:
		return true
	}
	return false
}

// Rating is the four-point smiley scale, 0 = most negative, 3 = most positive.
type Rating int

const (
	RatingMin Rating = 0
	RatingMax Rating = 3
)

func (r Rating) Valid() bool {
	return r >= RatingMin && r <= RatingMax
}

var smileys = [4]string{"😡", "😟", "😊", "😍"}

// Smiley returns the display glyph for a valid rating.
func (r Rating) Smiley() string {
	return smileys[r]
}

// Label is the export representation, glyph plus the numeric value.
func (r Rating) Label() string {
	return fmt.Sprintf("%s (%d)", r.Smiley(), int(r))
}

// Ratings lists all buckets in ascending order. Aggregates and exports iterate
// over this instead of a map so output order stays fixed.
func Ratings() []Rating {
	return []Rating{0, 1, 2, 3}
}

// Adjustments is the seasoning vocabulary offered on the vote form. Intake
// validates against it; storage stays free text so rows written under an older
// vocabulary still export.
var Adjustments = []string{
	"Weniger salzig",
	"Salziger",
	"Weniger würzig",
	"Würziger",
	"Weniger scharf",
	"Schärfer",
	"Gut so",
}

func KnownAdjustment(tag string) bool {
	for _, known := range Adjustments {
		if tag == known {
			return true
		}
	}
	return false
}

// DayFormat is the calendar-day key used everywhere: no time component, and
// lexicographic order equals chronological order.
const DayFormat = "2006-01-02"

// Vote is one submitted rating. At most one vote per (Name, Day) is accepted;
// the storage layer enforces this with a unique index.
type Vote struct {
	ID          VoteID
	Name        string
	Role        Role
	Rating      Rating
	Adjustments []string
	Day         string
	CreatedAt   time.Time
}

// Dish is the singleton "today's dish" record. Image is an opaque reference.
type Dish struct {
	Name  string
	Image string
}

type Guest struct {
	ID        GuestID
	Name      string
	CreatedAt time.Time
}

// DaySummary is derived from the vote log and never persisted. All four rating
// buckets are always present. Percentages are rounded half-up per bucket
// independently, so they need not sum to 100.
type DaySummary struct {
	Day         string
	Total       int64
	Counts      map[Rating]int64
	Percentages map[Rating]int
}
