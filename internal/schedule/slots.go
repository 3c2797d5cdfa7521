package schedule

import (
	"errors"
	"fmt"
	"strings"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
)

var (
	ErrUnknownSlot = errors.New("unknown dose slot")
	ErrInvalidTime = errors.New("invalid dose time")
)

// SlotID names the n-th dose slot, counting from zero
func SlotID(n int) string {
	return fmt.Sprintf("dose-%d", n+1)
}

// Slots labels derived times with stable slot ids for editing
func Slots(times []model.DoseTime) []question.TimeEntry {
	entries := make([]question.TimeEntry, len(times))
	for i, t := range times {
		entries[i] = question.TimeEntry{Hour: t.Hour, Minute: t.Minute, ID: SlotID(i)}
	}
	return entries
}

// EditSlot replaces the time of one slot and keeps every other slot,
// including its id, as it was.
func EditSlot(entries []question.TimeEntry, id string, hour, minute int) ([]question.TimeEntry, error) {
	if !validClock(hour, minute) {
		return nil, fmt.Errorf("%w: %02d:%02d", ErrInvalidTime, hour, minute)
	}

	out := append([]question.TimeEntry{}, entries...)
	for i := range out {
		if out[i].ID == id {
			out[i].Hour = hour
			out[i].Minute = minute
			return out, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", ErrUnknownSlot, id)
}

// ValidateEntries checks a whole time list as answered by a client.
// Every entry needs a slot id and a time of day.
func ValidateEntries(entries []question.TimeEntry) error {
	for i, e := range entries {
		if strings.TrimSpace(e.ID) == "" {
			return fmt.Errorf("%w: entry %d has no slot id", ErrInvalidTime, i)
		}
		if !validClock(e.Hour, e.Minute) {
			return fmt.Errorf("%w: %s at %02d:%02d", ErrInvalidTime, e.ID, e.Hour, e.Minute)
		}
	}
	return nil
}

func validClock(hour, minute int) bool {
	return hour >= 0 && hour <= 23 && minute >= 0 && minute <= 59
}

// FromEntries converts a time-list answer back to dose times
func FromEntries(entries []question.TimeEntry) []model.DoseTime {
	times := make([]model.DoseTime, len(entries))
	for i, e := range entries {
		times[i] = model.DoseTime{Hour: e.Hour, Minute: e.Minute}
	}
	return times
}
