package format

import (
	"errors"
	"fmt"

	"go.followtheprocess.codes/tilde/internal/syntax"
)

// Kind classifies a conversion failure.
//
// Kind implements error so that a failure can be matched against its
// classification with [errors.Is]:
//
//	if errors.Is(err, format.EmptyDocument) {
//	    // ...
//	}
type Kind int

const (
	Internal                  Kind = iota // Internal
	EmptyDocument                         // EmptyDocument
	NoSegments                            // NoSegments
	MalformedSegment                      // MalformedSegment
	EmptySegmentName                      // EmptySegmentName
	InvalidJSON                           // InvalidJSON
	InvalidXML                            // InvalidXML
	UnsupportedSourceFormat               // UnsupportedSourceFormat
	UnsupportedTargetFormat               // UnsupportedTargetFormat
	UnsupportedConversionPair             // UnsupportedConversionPair
)

// String implements [fmt.Stringer] for a [Kind].
func (k Kind) String() string {
	switch k {
	case Internal:
		return "Internal"
	case EmptyDocument:
		return "EmptyDocument"
	case NoSegments:
		return "NoSegments"
	case MalformedSegment:
		return "MalformedSegment"
	case EmptySegmentName:
		return "EmptySegmentName"
	case InvalidJSON:
		return "InvalidJSON"
	case InvalidXML:
		return "InvalidXML"
	case UnsupportedSourceFormat:
		return "UnsupportedSourceFormat"
	case UnsupportedTargetFormat:
		return "UnsupportedTargetFormat"
	case UnsupportedConversionPair:
		return "UnsupportedConversionPair"
	default:
		return fmt.Sprintf("Kind(%d)", int(k))
	}
}

// Error implements error for [Kind].
func (k Kind) Error() string {
	return k.String()
}

// BadRequest reports whether the kind describes a problem with the caller's input
// (a document that failed validation or a format that isn't supported), as opposed
// to an internal failure.
func (k Kind) BadRequest() bool {
	return k != Internal
}

// Error is a typed conversion failure.
type Error struct {
	Err      error           // The underlying cause, if any
	Msg      string          // The message, returned verbatim by Error
	Position syntax.Position // Source position of the failure, only set for delimited documents
	Kind     Kind            // Classification of the failure
}

// Error implements error for [Error], returning the message exactly as it was created.
func (e *Error) Error() string {
	return e.Msg
}

// Unwrap returns the underlying cause.
func (e *Error) Unwrap() error {
	return e.Err
}

// Is reports whether target is the [Kind] of this error.
func (e *Error) Is(target error) bool {
	kind, ok := target.(Kind)
	return ok && kind == e.Kind
}

// KindOf returns the [Kind] of err, or [Internal] if err is not
// (and does not wrap) an [*Error].
func KindOf(err error) Kind {
	var ferr *Error
	if errors.As(err, &ferr) {
		return ferr.Kind
	}

	return Internal
}

// errorf returns a new [*Error] of the given kind with a formatted message.
func errorf(kind Kind, format string, a ...any) *Error {
	return &Error{Kind: kind, Msg: fmt.Sprintf(format, a...)}
}
