package syntax

import (
	"errors"
	"fmt"
	"unicode"
	"unicode/utf8"
)

// Default separators for the delimited format.
const (
	DefaultSegment = '~'
	DefaultElement = '*'
)

// Separators are the single character separators of the delimited format.
//
// The zero value for either field means "use the default".
type Separators struct {
	Segment rune // Terminates each segment, '~' by default
	Element rune // Separates elements within a segment, '*' by default
}

// DefaultSeparators returns the default [Separators].
func DefaultSeparators() Separators {
	return Separators{Segment: DefaultSegment, Element: DefaultElement}
}

// OrDefault returns a copy of s with any unset separators replaced
// by their defaults.
func (s Separators) OrDefault() Separators {
	if s.Segment == 0 {
		s.Segment = DefaultSegment
	}

	if s.Element == 0 {
		s.Element = DefaultElement
	}

	return s
}

// Validate reports whether the separators are usable, returning a non-nil
// error if they are not.
//
// Unset separators are validated as their defaults.
func (s Separators) Validate() error {
	s = s.OrDefault()

	if err := validateSeparator("segment", s.Segment); err != nil {
		return err
	}

	if err := validateSeparator("element", s.Element); err != nil {
		return err
	}

	if s.Segment == s.Element {
		return fmt.Errorf("segment and element separators must differ, both are %q", s.Segment)
	}

	return nil
}

// validateSeparator checks a single separator rune.
func validateSeparator(which string, r rune) error {
	switch {
	case !utf8.ValidRune(r) || r == utf8.RuneError:
		return errors.New(which + " separator is not a valid character")
	case unicode.IsSpace(r):
		return fmt.Errorf("%s separator %q cannot be whitespace", which, r)
	case unicode.IsLetter(r) || unicode.IsDigit(r):
		return fmt.Errorf("%s separator %q cannot be a letter or digit", which, r)
	case unicode.IsControl(r):
		return errors.New(which + " separator cannot be a control character")
	default:
		return nil
	}
}
