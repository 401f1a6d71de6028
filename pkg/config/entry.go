package config

import (
	"strconv"
	"strings"
	"unicode"
)

// Entry is a single configuration value together with the scope it came
// from.
type Entry struct {
	Key   string
	Value string
	Scope Scope
}

// AsString returns the value as a string
func (e Entry) AsString() string {
	return e.Value
}

// AsInt converts the value to an integer
func (e Entry) AsInt() (int, error) {
	val, convErr := strconv.Atoi(e.Value)
	if convErr != nil {
		return 0, NewValueError(e.Key, e.Value, "number", convErr)
	}
	return val, nil
}

// AsBoolean converts the value to a boolean, accepting the spellings git
// itself accepts.
func (e Entry) AsBoolean() (bool, error) {
	switch strings.ToLower(strings.TrimSpace(e.Value)) {
	case "true", "yes", "1", "on":
		return true, nil
	case "false", "no", "0", "off", "":
		return false, nil
	default:
		return false, NewValueError(e.Key, e.Value, "boolean", nil)
	}
}

// AsList splits the value on commas and whitespace, dropping empty
// elements.
func (e Entry) AsList() []string {
	return strings.FieldsFunc(e.Value, func(r rune) bool {
		return r == ',' || unicode.IsSpace(r)
	})
}
