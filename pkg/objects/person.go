package objects

import (
	"fmt"
	"regexp"
	"strconv"
	"time"
)

// Timestamp is a commit timestamp: seconds since the epoch plus the author's
// UTC offset, as the object store records them.
//
// Wire format: "1609459200 +0000"
type Timestamp struct {
	Seconds int64
	Offset  *time.Location
}

// NewTimestampFromTime creates a Timestamp from a time.Time.
func NewTimestampFromTime(t time.Time) Timestamp {
	return Timestamp{
		Seconds: t.Unix(),
		Offset:  t.Location(),
	}
}

// ParseTimestamp parses the "seconds offset" pair from a person line.
func ParseTimestamp(seconds, offset string) (Timestamp, error) {
	secs, err := strconv.ParseInt(seconds, 10, 64)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timestamp: %w", err)
	}

	loc, err := parseOffset(offset)
	if err != nil {
		return Timestamp{}, fmt.Errorf("invalid timezone: %w", err)
	}

	return Timestamp{Seconds: secs, Offset: loc}, nil
}

// Time converts the Timestamp to a time.Time in the recorded offset.
// A zero offset location defaults to UTC.
func (t Timestamp) Time() time.Time {
	if t.Offset != nil {
		return time.Unix(t.Seconds, 0).In(t.Offset)
	}
	return time.Unix(t.Seconds, 0).UTC()
}

// IsZero returns true if the timestamp is unset.
func (t Timestamp) IsZero() bool {
	return t.Seconds == 0 && t.Offset == nil
}

// String formats the timestamp the way person lines carry it.
func (t Timestamp) String() string {
	when := t.Time()
	_, offset := when.Zone()

	sign := "+"
	if offset < 0 {
		sign = "-"
		offset = -offset
	}
	hours := offset / 3600
	minutes := (offset % 3600) / 60

	return fmt.Sprintf("%d %s%02d%02d", t.Seconds, sign, hours, minutes)
}

// Equal compares two timestamps by instant, ignoring the offset.
func (t Timestamp) Equal(other Timestamp) bool {
	return t.Seconds == other.Seconds
}

// Person represents author or committer information on a commit.
//
// Wire format: "Name <email> timestamp timezone"
// Example: "John Doe <john@example.com> 1609459200 +0000"
type Person struct {
	Name  string
	Email string
	When  Timestamp
}

// personPattern matches "Name <email> timestamp timezone"
var personPattern = regexp.MustCompile(`^(.*) <([^>]*)> (\d+) ([+-]\d{4})$`)

// ParsePerson parses person information from a commit header line value.
func ParsePerson(raw string) (Person, error) {
	matches := personPattern.FindStringSubmatch(raw)
	if matches == nil {
		return Person{}, fmt.Errorf("invalid person format: %s", raw)
	}

	when, err := ParseTimestamp(matches[3], matches[4])
	if err != nil {
		return Person{}, err
	}

	return Person{
		Name:  matches[1],
		Email: matches[2],
		When:  when,
	}, nil
}

// String formats the person in the object store's person-line format.
func (p Person) String() string {
	return fmt.Sprintf("%s <%s> %s", p.Name, p.Email, p.When)
}

// NameEmail returns the "Name <email>" part without the timestamp.
func (p Person) NameEmail() string {
	return fmt.Sprintf("%s <%s>", p.Name, p.Email)
}

// Equal compares two persons for equality.
func (p Person) Equal(other Person) bool {
	return p.Name == other.Name &&
		p.Email == other.Email &&
		p.When.Equal(other.When)
}

// parseOffset parses an offset string like "+0530" or "-0800" into a Location.
func parseOffset(tz string) (*time.Location, error) {
	if len(tz) != 5 {
		return nil, fmt.Errorf("invalid timezone length: %s", tz)
	}

	sign := tz[0]
	if sign != '+' && sign != '-' {
		return nil, fmt.Errorf("invalid timezone sign: %c", sign)
	}

	hours, err := strconv.Atoi(tz[1:3])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone hours: %w", err)
	}

	minutes, err := strconv.Atoi(tz[3:5])
	if err != nil {
		return nil, fmt.Errorf("invalid timezone minutes: %w", err)
	}

	offsetSeconds := hours*3600 + minutes*60
	if sign == '-' {
		offsetSeconds = -offsetSeconds
	}

	return time.FixedZone(tz, offsetSeconds), nil
}
