package core

import (
	"testing"

	"github.com/kat-co/vala"
	"github.com/stretchr/testify/assert"
)

type valueLogger struct{}

func (valueLogger) Debug(string, ...interface{}) {}
func (valueLogger) Info(string, ...interface{})  {}
func (valueLogger) Warn(string, ...interface{})  {}
func (valueLogger) Error(string, ...interface{}) {}
func (valueLogger) Fatal(string, ...interface{}) {}

func TestNotNil(t *testing.T) {
	var nilPtr *valueLogger
	var nilLogger Logger

	tests := []struct {
		name string
		arg  interface{}
		want bool
	}{
		{name: "struct value", arg: valueLogger{}, want: true},
		{name: "struct value behind interface", arg: Logger(valueLogger{}), want: true},
		{name: "pointer", arg: &valueLogger{}, want: true},
		{name: "int", arg: 3, want: true},
		{name: "nil", arg: nil},
		{name: "nil interface", arg: nilLogger},
		{name: "typed nil pointer", arg: nilPtr},
		{name: "nil map", arg: map[string]int(nil)},
		{name: "empty string", arg: ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			ok, _ := NotNil(tt.arg, "arg")()
			assert.Equal(t, tt.want, ok)

			check := func() { vala.BeginValidation().Validate(NotNil(tt.arg, "arg")).CheckAndPanic() }
			if tt.want {
				assert.NotPanics(t, check)
			} else {
				assert.Panics(t, check)
			}
		})
	}
}

func TestIsDigits(t *testing.T) {
	tests := []struct {
		in   string
		want bool
	}{
		{"0", true},
		{"3102", true},
		{"", false},
		{"1.5", false},
		{"-3", false},
		{"12a", false},
	}
	for _, tt := range tests {
		t.Run(tt.in, func(t *testing.T) {
			assert.Equal(t, tt.want, IsDigits(tt.in))
		})
	}
}
