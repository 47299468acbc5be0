package request

import (
	"encoding/json"
	"fmt"
	"strings"
	"time"
)

const (
	dateLayout    = "2006-01-02"
	secondsPerDay = 24 * 60 * 60
)

// Date is a calendar day without a time of day. The zero value means unset.
type Date struct {
	t time.Time
}

func NewDate(year int, month time.Month, day int) Date {
	return Date{t: time.Date(year, month, day, 0, 0, 0, 0, time.UTC)}
}

// DateOf returns the calendar day of t as observed in loc.
func DateOf(t time.Time, loc *time.Location) Date {
	if loc == nil {
		loc = time.UTC
	}
	local := t.In(loc)
	return NewDate(local.Year(), local.Month(), local.Day())
}

// ParseDate accepts YYYY-MM-DD or RFC3339. An empty string yields the zero Date.
func ParseDate(value string) (Date, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return Date{}, nil
	}
	if parsed, err := time.Parse(dateLayout, value); err == nil {
		return NewDate(parsed.Year(), parsed.Month(), parsed.Day()), nil
	}
	parsed, err := time.Parse(time.RFC3339, value)
	if err != nil {
		return Date{}, fmt.Errorf("invalid date %q", value)
	}
	return NewDate(parsed.Year(), parsed.Month(), parsed.Day()), nil
}

func (d Date) IsZero() bool { return d.t.IsZero() }
func (d Date) Time() time.Time { return d.t }
func (d Date) Before(other Date) bool { return d.t.Before(other.t) }
func (d Date) After(other Date) bool { return d.t.After(other.t) }
func (d Date) Equal(other Date) bool { return d.t.Equal(other.t) }
func (d Date) AddDays(n int) Date { return Date{t: d.t.AddDate(0, 0, n)} }
// DaysUntil counts calendar days from d to other. It works on Unix seconds, so
// spans beyond the range of time.Duration stay exact.
func (d Date) DaysUntil(other Date) int { return int((other.t.Unix() - d.t.Unix()) / secondsPerDay) }

func (d Date) String() string {
	if d.IsZero() {
		return ""
	}
	return d.t.Format(dateLayout)
}

func (d Date) MarshalJSON() ([]byte, error) {
	return json.Marshal(d.String())
}

func (d *Date) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*d = Date{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseDate(raw)
	if err != nil {
		return err
	}
	*d = parsed
	return nil
}

// ClockTime is a wall-clock minute of the day. The zero value means unset;
// midnight is a valid, set value.
type ClockTime struct {
	minutes int
	valid   bool
}

func NewClockTime(hour, minute int) ClockTime {
	return ClockTime{minutes: hour*60 + minute, valid: true}
}

// ParseClockTime accepts HH:MM or HH:MM:SS. An empty string yields the zero ClockTime.
func ParseClockTime(value string) (ClockTime, error) {
	value = strings.TrimSpace(value)
	if value == "" {
		return ClockTime{}, nil
	}
	for _, layout := range []string{"15:04", "15:04:05"} {
		if parsed, err := time.Parse(layout, value); err == nil {
			return NewClockTime(parsed.Hour(), parsed.Minute()), nil
		}
	}
	return ClockTime{}, fmt.Errorf("invalid time %q", value)
}

func (c ClockTime) IsZero() bool { return !c.valid }
func (c ClockTime) Minutes() int { return c.minutes }

func (c ClockTime) String() string {
	if !c.valid {
		return ""
	}
	return fmt.Sprintf("%02d:%02d", c.minutes/60, c.minutes%60)
}

func (c ClockTime) MarshalJSON() ([]byte, error) {
	return json.Marshal(c.String())
}

func (c *ClockTime) UnmarshalJSON(data []byte) error {
	if string(data) == "null" {
		*c = ClockTime{}
		return nil
	}
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseClockTime(raw)
	if err != nil {
		return err
	}
	*c = parsed
	return nil
}
