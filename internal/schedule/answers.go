package schedule

import (
	"strconv"
	"strings"
	"time"

	"github.com/mitchsteamy/crome-lab-fmsp/internal/model"
	"github.com/mitchsteamy/crome-lab-fmsp/internal/question"
)

// FromAnswers collects the derivation input from flow answers
func FromAnswers(a question.Answers) Input {
	in := Input{
		Daily:         model.DailyFrequency(strings.TrimSpace(a.Text(question.DailyFrequency))),
		IntervalHours: ParseCount(a[question.IntervalHours]),
		Override:      FromEntries(a[question.DoseTimes].Entries()),
	}
	if first, ok := ParseClock(a[question.FirstDoseTime]); ok {
		in.FirstDose = &first
	}
	return in
}

// ParseClock reads the wall-clock hour and minute from a time answer.
// Timestamps keep the offset they were written with; "HH:MM" is also
// accepted.
func ParseClock(v question.Value) (model.DoseTime, bool) {
	if t, ok := v.Time(); ok {
		return model.DoseTime{Hour: t.Hour(), Minute: t.Minute()}, true
	}
	text := strings.TrimSpace(v.Text())
	for _, layout := range []string{"15:04", "15:04:05", "3:04 PM", "3:04PM"} {
		if t, err := time.Parse(layout, text); err == nil {
			return model.DoseTime{Hour: t.Hour(), Minute: t.Minute()}, true
		}
	}
	return model.DoseTime{}, false
}

// ParseCount reads a positive whole number from a number answer, or 0
func ParseCount(v question.Value) int {
	text := strings.TrimSpace(v.Text())
	if text == "" {
		return 0
	}
	n, err := strconv.Atoi(text)
	if err != nil {
		f, ferr := strconv.ParseFloat(text, 64)
		if ferr != nil {
			return 0
		}
		n = int(f)
	}
	if n < 0 {
		return 0
	}
	return n
}
