// Package flags provides common flag types for the CLI.
package flags

import (
	"fmt"
	"strings"
)

// BoolFlag is a boolean flag that tracks whether it was explicitly set, so a
// command line value can override a settings document only when given.
type BoolFlag struct {
	Value  bool
	WasSet bool
}

// Set parses and sets the boolean value.
func (b *BoolFlag) Set(s string) error {
	if s == "" {
		b.Value = true
		b.WasSet = true
		return nil
	}
	switch strings.ToLower(s) {
	case "true", "1", "yes":
		b.Value = true
	case "false", "0", "no":
		b.Value = false
	default:
		return fmt.Errorf("invalid boolean %q", s)
	}
	b.WasSet = true
	return nil
}

// String returns the string representation of the boolean value.
func (b *BoolFlag) String() string {
	if b.Value {
		return "true"
	}
	return "false"
}

// IsBoolFlag reports that the flag needs no value.
func (b *BoolFlag) IsBoolFlag() bool { return true }

// Apply stores the flag value in dst when the flag was given.
func (b *BoolFlag) Apply(dst *bool) {
	if b.WasSet {
		*dst = b.Value
	}
}
