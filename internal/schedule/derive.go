// Package schedule turns a first dose time and a daily frequency into
// the clock times of each dose.
package schedule

import (
	"math"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
)

const (
	// DefaultIntervalHours applies when every-x-hours has no usable interval.
	DefaultIntervalHours = 4

	// Fixed-count schedules spread their doses up to 23:00.
	endAnchorMinutes = 23 * 60
)

// Input describes what is known about a day's doses
type Input struct {
	FirstDose     *model.DoseTime
	Daily         model.DailyFrequency
	IntervalHours int

	// Override replaces derivation entirely when non-empty.
	Override []model.DoseTime
}

// DoseCount maps a fixed daily frequency to the number of doses
func DoseCount(daily model.DailyFrequency) int {
	switch daily {
	case model.DailyTwice:
		return 2
	case model.DailyThreeTimes:
		return 3
	case model.DailyFourTimes:
		return 4
	case model.DailyMoreThanFour:
		return 5
	default:
		return 1
	}
}

// Derive returns the dose times for one dosing day. It returns an empty
// list when the first dose or the daily frequency is not known yet.
func Derive(in Input) []model.DoseTime {
	if len(in.Override) > 0 {
		return append([]model.DoseTime{}, in.Override...)
	}
	if in.FirstDose == nil || in.Daily == "" {
		return []model.DoseTime{}
	}

	first := *in.FirstDose
	first.Label = ""

	if in.Daily == model.DailyEveryXHours {
		return everyHours(first, in.IntervalHours)
	}
	return spreadToEvening(first, DoseCount(in.Daily))
}

func everyHours(first model.DoseTime, interval int) []model.DoseTime {
	if interval <= 0 {
		interval = DefaultIntervalHours
	}
	count := 24 / interval
	if count < 1 {
		count = 1
	}

	times := make([]model.DoseTime, 0, count)
	hour := first.Hour
	for i := 0; i < count; i++ {
		times = append(times, model.DoseTime{Hour: hour, Minute: first.Minute})
		hour = (hour + interval) % 24
	}
	return times
}

func spreadToEvening(first model.DoseTime, n int) []model.DoseTime {
	times := []model.DoseTime{first}
	if n <= 1 {
		return times
	}

	start := first.Hour*60 + first.Minute
	span := endAnchorMinutes - start
	for i := 1; i < n; i++ {
		// span*i/(n-1) keeps the last dose exactly on the anchor
		total := float64(start) + float64(span*i)/float64(n-1)
		times = append(times, model.DoseTime{
			Hour:   int(math.Floor(total/60)) % 24,
			Minute: int(math.Floor(math.Mod(total, 60))),
		})
	}
	return times
}
