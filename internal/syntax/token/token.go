// Package token provides the set of lexical tokens for a delimited document.
package token

import (
	"fmt"
	"slices"
)

// Kind is the kind of a token.
type Kind int

const (
	EOF        Kind = iota // EOF
	Text                   // Text
	ElementSep             // ElementSep
	SegmentEnd             // SegmentEnd
)

// String implements [fmt.Stringer] for a [Kind].
func (k Kind) String() string {
	switch k {
	case EOF:
		return "EOF"
	case Text:
		return "Text"
	case ElementSep:
		return "ElementSep"
	case SegmentEnd:
		return "SegmentEnd"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// MarshalText implements [encoding.TextMarshaler] for [Kind].
func (k Kind) MarshalText() ([]byte, error) {
	return []byte(k.String()), nil
}

// Token is a lexical token in a delimited document.
type Token struct {
	Kind  Kind // The kind of token this is
	Start int  // Byte offset from the start of the document to the start of this token
	End   int  // Byte offset from the start of the document to the end of this token
}

// String implement [fmt.Stringer] for a [Token].
func (t Token) String() string {
	return fmt.Sprintf("<Token::%s start=%d, end=%d>", t.Kind, t.Start, t.End)
}

// Is reports whether the token is any of the provided [Kind]s.
func (t Token) Is(kinds ...Kind) bool {
	return slices.Contains(kinds, t.Kind)
}
