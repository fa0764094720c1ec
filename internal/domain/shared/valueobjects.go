// Package shared contains common domain types, errors, events, and value objects
// that are used across all domain packages.
package shared

import (
	"fmt"
	"regexp"
	"strings"
)

// ═══════════════════════════════════════════════════════════════════════════
// ID Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// UserID represents a unique user identifier (UUID in string form).
type UserID string

var uuidRegex = regexp.MustCompile(`^[0-9a-fA-F]{8}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{4}-[0-9a-fA-F]{12}$`)

// IsValid checks if the user ID is a well-formed UUID.
func (u UserID) IsValid() bool {
	return uuidRegex.MatchString(string(u))
}

// String returns the underlying string value.
func (u UserID) String() string {
	return string(u)
}

// NewUserID validates and wraps a raw identifier.
func NewUserID(raw string) (UserID, error) {
	id := UserID(strings.TrimSpace(raw))
	if !id.IsValid() {
		return "", WrapError("shared", "NewUserID", ErrInvalidID, fmt.Sprintf("malformed user id %q", raw), nil)
	}
	return id, nil
}

// ═══════════════════════════════════════════════════════════════════════════
// Score Value Objects
// ═══════════════════════════════════════════════════════════════════════════

// Progress represents goal completion progress on a 0..100 scale.
type Progress int

// IsValid checks that progress is within the 0..100 range.
func (p Progress) IsValid() bool {
	return p >= 0 && p <= 100
}

// Int returns the underlying int value.
func (p Progress) Int() int {
	return int(p)
}

// IsComplete reports whether the goal is fully done.
func (p Progress) IsComplete() bool {
	return p == 100
}

// Score represents a normalized discipline score on a 0..10 scale.
type Score float64

// IsValid checks that the score is within the 0..10 range.
func (s Score) IsValid() bool {
	return s >= 0 && s <= 10
}

// Float64 returns the underlying float value.
func (s Score) Float64() float64 {
	return float64(s)
}

// String formats the score with one decimal place, as shown to users.
func (s Score) String() string {
	return fmt.Sprintf("%.1f", float64(s))
}

// XP represents cumulative experience points.
type XP int

// IsValid checks that XP is non-negative.
func (x XP) IsValid() bool {
	return x >= 0
}

// Add returns the sum of two XP values.
func (x XP) Add(delta XP) XP {
	return x + delta
}

// Int returns the underlying int value.
func (x XP) Int() int {
	return int(x)
}
