package config

import (
	"slices"
	"testing"
)

func TestEntryAsBoolean(t *testing.T) {
	tests := []struct {
		name    string
		value   string
		want    bool
		wantErr bool
	}{
		{name: "true", value: "true", want: true},
		{name: "yes", value: "yes", want: true},
		{name: "on", value: "on", want: true},
		{name: "one", value: "1", want: true},
		{name: "mixed case", value: "TRUE", want: true},
		{name: "false", value: "false", want: false},
		{name: "no", value: "no", want: false},
		{name: "off", value: "off", want: false},
		{name: "zero", value: "0", want: false},
		{name: "empty string is false", value: "", want: false},
		{name: "padded", value: "  yes  ", want: true},
		{name: "garbage", value: "maybe", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{Key: "test.key", Value: tt.value}
			got, boolErr := e.AsBoolean()
			if tt.wantErr {
				if boolErr == nil {
					t.Fatal("AsBoolean() error = nil")
				}
				return
			}
			if boolErr != nil {
				t.Fatalf("AsBoolean() error = %v", boolErr)
			}
			if got != tt.want {
				t.Errorf("AsBoolean() = %v, want %v", got, tt.want)
			}
		})
	}
}

func TestEntryAsInt(t *testing.T) {
	e := Entry{Key: "test.key", Value: "42"}
	got, intErr := e.AsInt()
	if intErr != nil || got != 42 {
		t.Errorf("AsInt() = %d, %v", got, intErr)
	}

	e = Entry{Key: "test.key", Value: "-7"}
	got, intErr = e.AsInt()
	if intErr != nil || got != -7 {
		t.Errorf("AsInt() = %d, %v", got, intErr)
	}

	e = Entry{Key: "test.key", Value: "many"}
	if _, intErr = e.AsInt(); intErr == nil {
		t.Error("AsInt() error = nil for a non-number")
	}
}

func TestEntryAsList(t *testing.T) {
	tests := []struct {
		name  string
		value string
		want  []string
	}{
		{name: "commas", value: "a,b,c", want: []string{"a", "b", "c"}},
		{name: "spaces", value: "-M --ignore-space-change", want: []string{"-M", "--ignore-space-change"}},
		{name: "mixed", value: "a, b  c", want: []string{"a", "b", "c"}},
		{name: "empty", value: "", want: nil},
		{name: "only separators", value: " , , ", want: nil},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			e := Entry{Key: "test.key", Value: tt.value}
			if got := e.AsList(); !slices.Equal(got, tt.want) {
				t.Errorf("AsList() = %v, want %v", got, tt.want)
			}
		})
	}
}
