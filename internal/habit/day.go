package habit

import (
	"encoding/json"
	"errors"
	"time"
)

var ErrInvalidDay = errors.New("invalid day, want YYYY-MM-DD")

const dayLayout = "2006-01-02"

// Day identifies one calendar day as a count of days since the Unix epoch,
// independent of time zone and time of day. The JSON form is an ISO date
// string (YYYY-MM-DD).
type Day int

// DayOf truncates t to the calendar day it falls on in t's location.
func DayOf(t time.Time) Day {
	year, month, day := t.Date()
	midnight := time.Date(year, month, day, 0, 0, 0, 0, time.UTC)
	return Day(midnight.Unix() / 86400)
}

func ParseDay(s string) (Day, error) {
	t, err := time.Parse(dayLayout, s)
	if err != nil {
		return 0, ErrInvalidDay
	}
	return DayOf(t), nil
}

func (d Day) Time() time.Time {
	return time.Unix(int64(d)*86400, 0).UTC()
}

func (d Day) String() string {
	return d.Time().Format(dayLayout)
}

func (d Day) AddDays(n int) Day {
	return d + Day(n)
}

// After reports whether d is strictly later than other.
func (d Day) After(other Day) bool {
	return d > other
}

func (d Day) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Day) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return ErrInvalidDay
	}
	parsed, err := ParseDay(s)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}
