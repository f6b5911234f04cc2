// Package schedule converts a practitioner's working-hours configuration into
// the discrete grid of bookable time slots.
//
// Slots are identified internally by their minute-of-day offset; the
// zero-padded 12-hour label ("09:00 AM") is a display format only.
package schedule

import (
	"errors"
	"fmt"
	"strings"
	"time"
)

// DefaultSlotMinutes is used when a working-hours record carries no duration.
const DefaultSlotMinutes = 30

var (
	// ErrInvalidSlotDuration is returned when the configured slot duration is zero or negative
	ErrInvalidSlotDuration = errors.New("schedule: slot duration must be positive")

	// ErrInvalidWindow is returned when the working window is empty or inverted
	ErrInvalidWindow = errors.New("schedule: start time must be before end time")

	// ErrBadClock is returned for a malformed HH:MM clock string
	ErrBadClock = errors.New("schedule: malformed clock time")
)

// WorkingHours is a practitioner's daily bookable window.
// StartTime and EndTime are 24-hour "HH:MM" strings as stored on the
// practitioner record. A zero SlotDuration means DefaultSlotMinutes.
type WorkingHours struct {
	StartTime    string `json:"start_time"`
	EndTime      string `json:"end_time"`
	SlotDuration int    `json:"slot_duration"`
}

const minutesPerDay = 24 * 60

// ParseClock parses a 24-hour "HH:MM" string into its minute-of-day offset.
func ParseClock(s string) (int, error) {
	var hour, min int
	if _, err := fmt.Sscanf(s, "%d:%d", &hour, &min); err != nil {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	if hour < 0 || hour > 23 || min < 0 || min > 59 {
		return 0, fmt.Errorf("%w: %q", ErrBadClock, s)
	}
	return hour*60 + min, nil
}

// FormatLabel renders a minute-of-day offset as a zero-padded 12-hour label,
// e.g. 540 -> "09:00 AM". This is the one externally visible slot format.
func FormatLabel(minute int) string {
	t := time.Date(0, time.January, 1, minute/60, minute%60, 0, 0, time.UTC)
	return t.Format("03:04 PM")
}

// ParseLabel converts a 12-hour slot label back to its minute-of-day offset.
// Conflict detection runs on the normalized offset, never on the raw string,
// so a caller sending "9:00 AM" instead of "09:00 AM" still matches.
func ParseLabel(label string) (int, error) {
	normalized := strings.ToUpper(strings.TrimSpace(label))
	for _, layout := range []string{"03:04 PM", "3:04 PM"} {
		if t, err := time.Parse(layout, normalized); err == nil {
			return t.Hour()*60 + t.Minute(), nil
		}
	}
	return 0, fmt.Errorf("%w: %q", ErrBadClock, label)
}

// Slots returns the minute-of-day offset of every bookable slot start,
// beginning at StartTime and stepping by SlotDuration. A slot is emitted only
// while its start is strictly before EndTime.
func Slots(wh WorkingHours) ([]int, error) {
	duration := wh.SlotDuration
	if duration == 0 {
		duration = DefaultSlotMinutes
	}
	if duration < 0 {
		return nil, ErrInvalidSlotDuration
	}

	start, err := ParseClock(wh.StartTime)
	if err != nil {
		return nil, err
	}
	end, err := ParseClock(wh.EndTime)
	if err != nil {
		return nil, err
	}
	if start >= end {
		return nil, ErrInvalidWindow
	}

	slots := make([]int, 0, (end-start)/duration+1)
	for m := start; m < end && m < minutesPerDay; m += duration {
		slots = append(slots, m)
	}
	return slots, nil
}

// Labels returns the formatted label for every bookable slot.
func Labels(wh WorkingHours) ([]string, error) {
	offsets, err := Slots(wh)
	if err != nil {
		return nil, err
	}
	labels := make([]string, len(offsets))
	for i, m := range offsets {
		labels[i] = FormatLabel(m)
	}
	return labels, nil
}
