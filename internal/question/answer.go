package question

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

// Kind identifies which variant a Value holds
type Kind string

const (
	KindString Kind = "string"
	KindList   Kind = "list"
	KindTimes  Kind = "times"
	KindTime   Kind = "time"
)

// TimeEntry is one slot of a time-list answer
type TimeEntry struct {
	Hour   int    `json:"hour"`
	Minute int    `json:"minute"`
	ID     string `json:"id"`
}

// Value is a single answer. The zero Value is an empty string answer.
type Value struct {
	kind  Kind
	str   string
	list  []string
	times []TimeEntry
	at    time.Time
}

// String returns a text answer
func String(s string) Value {
	return Value{kind: KindString, str: s}
}

// List returns a multiselect answer
func List(items ...string) Value {
	return Value{kind: KindList, list: append([]string{}, items...)}
}

// Times returns a time-list answer
func Times(entries ...TimeEntry) Value {
	return Value{kind: KindTimes, times: append([]TimeEntry{}, entries...)}
}

// At returns a date or time answer
func At(t time.Time) Value {
	return Value{kind: KindTime, at: t}
}

func (v Value) Kind() Kind {
	if v.kind == "" {
		return KindString
	}
	return v.kind
}

// Text returns the string form of a string or time answer
func (v Value) Text() string {
	switch v.Kind() {
	case KindString:
		return v.str
	case KindTime:
		if v.at.IsZero() {
			return ""
		}
		return v.at.Format(time.RFC3339)
	}
	return ""
}

// Items returns the selections of a multiselect answer
func (v Value) Items() []string {
	if v.Kind() != KindList {
		return nil
	}
	return append([]string{}, v.list...)
}

// Entries returns the slots of a time-list answer
func (v Value) Entries() []TimeEntry {
	if v.Kind() != KindTimes {
		return nil
	}
	return append([]TimeEntry{}, v.times...)
}

// Time returns the instant held by a time answer, or parses a string
// answer as RFC 3339 or a bare date.
func (v Value) Time() (time.Time, bool) {
	switch v.Kind() {
	case KindTime:
		return v.at, !v.at.IsZero()
	case KindString:
		s := strings.TrimSpace(v.str)
		if s == "" {
			return time.Time{}, false
		}
		for _, layout := range []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"} {
			if t, err := time.Parse(layout, s); err == nil {
				return t, true
			}
		}
	}
	return time.Time{}, false
}

// IsEmpty reports whether the answer counts as unanswered
func (v Value) IsEmpty() bool {
	switch v.Kind() {
	case KindList:
		return len(v.list) == 0
	case KindTimes:
		return len(v.times) == 0
	case KindTime:
		return v.at.IsZero()
	default:
		return strings.TrimSpace(v.str) == ""
	}
}

func (v Value) MarshalJSON() ([]byte, error) {
	switch v.Kind() {
	case KindList:
		return json.Marshal(v.Items())
	case KindTimes:
		return json.Marshal(v.Entries())
	case KindTime:
		return json.Marshal(v.at)
	default:
		return json.Marshal(v.str)
	}
}

// UnmarshalJSON infers the kind: a string, an array of strings, or an
// array of {hour, minute, id} objects. Strings are kept as text even when
// they hold a timestamp.
func (v *Value) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if len(data) == 0 || bytes.Equal(data, []byte("null")) {
		*v = String("")
		return nil
	}

	switch data[0] {
	case '"':
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		*v = String(s)
		return nil
	case '[':
		var raw []json.RawMessage
		if err := json.Unmarshal(data, &raw); err != nil {
			return err
		}
		if len(raw) == 0 {
			*v = List()
			return nil
		}
		if first := bytes.TrimSpace(raw[0]); len(first) > 0 && first[0] == '{' {
			var entries []TimeEntry
			if err := json.Unmarshal(data, &entries); err != nil {
				return fmt.Errorf("invalid time list: %w", err)
			}
			*v = Times(entries...)
			return nil
		}
		var items []string
		if err := json.Unmarshal(data, &items); err != nil {
			return fmt.Errorf("invalid list: %w", err)
		}
		*v = List(items...)
		return nil
	default:
		// Numbers arrive from number inputs; keep their literal text.
		var n json.Number
		if err := json.Unmarshal(data, &n); err != nil {
			return fmt.Errorf("unsupported answer value: %s", string(data))
		}
		*v = String(n.String())
		return nil
	}
}

// Answers maps step ids to answers
type Answers map[string]Value

// Get returns the answer for id
func (a Answers) Get(id string) (Value, bool) {
	v, ok := a[id]
	return v, ok
}

// Text returns the string form of the answer for id, or ""
func (a Answers) Text(id string) string {
	return a[id].Text()
}

// Is reports whether the text answer for id equals want
func (a Answers) Is(id, want string) bool {
	v, ok := a[id]
	return ok && v.Kind() == KindString && v.str == want
}

// Filled reports whether id has a non-empty answer
func (a Answers) Filled(id string) bool {
	v, ok := a[id]
	return ok && !v.IsEmpty()
}

// With returns a copy of a with id set to v
func (a Answers) With(id string, v Value) Answers {
	next := make(Answers, len(a)+1)
	for k, existing := range a {
		next[k] = existing
	}
	next[id] = v
	return next
}
