// Package scanner implements a lexical scanner for delimited documents, reading the raw
// source text and emitting a stream of tokens to be consumed by the delimited codec.
//
// The scanner is a state-function based scanner similar to that described by Rob Pike
// in his talk [Lexical Scanning in Go]. Each state does the work associated with it and
// returns the next state, the state of the scanner is maintained between token emits
// rather than being determined from scratch on every call.
//
// No goroutine is involved: [Scanner.Scan] runs the state machine just far enough to
// produce the next token, in the same way text/template does. A conversion is a single
// synchronous call with no suspension points.
//
// [Lexical Scanning in Go]: https://go.dev/talks/2011/lex.slide#1
package scanner

import (
	"slices"
	"unicode/utf8"

	"go.followtheprocess.codes/tilde/internal/syntax"
	"go.followtheprocess.codes/tilde/internal/syntax/token"
)

const (
	eof        = rune(-1) // eof signifies we have reached the end of the input.
	bufferSize = 8        // initial capacity of the pending token queue
)

// scanFn represents the state of the scanner as a function that does the work
// associated with the current state, then returns the next state.
type scanFn func(*Scanner) scanFn

// Scanner is the delimited document scanner.
type Scanner struct {
	state      scanFn            // The next state to run, nil once the machine has finished
	name       string            // Name of the document, used in positions
	pending    []token.Token     // Tokens emitted but not yet returned by Scan
	src        []byte            // Raw source text
	separators syntax.Separators // Segment and element separators
	start      int               // The start position of the current token
	pos        int               // Current scanner position in src (bytes, 0 indexed)
}

// New returns a new [Scanner] over src, splitting on the given separators.
//
// Unset separators fall back to their defaults.
func New(name string, src []byte, separators syntax.Separators) *Scanner {
	return &Scanner{
		state:      scanStart,
		name:       name,
		pending:    make([]token.Token, 0, bufferSize),
		src:        src,
		separators: separators.OrDefault(),
	}
}

// Scan scans the input and returns the next token.
//
// Once the input is exhausted, Scan returns an [token.EOF] token
// on every subsequent call.
func (s *Scanner) Scan() token.Token {
	for len(s.pending) == 0 {
		if s.state == nil {
			return token.Token{Kind: token.EOF, Start: len(s.src), End: len(s.src)}
		}

		s.state = s.state(s)
	}

	tok := s.pending[0]
	s.pending = s.pending[1:]

	return tok
}

// All scans the remainder of the input, returning every token up to and
// including the [token.EOF].
func (s *Scanner) All() []token.Token {
	var tokens []token.Token

	for {
		tok := s.Scan()

		tokens = append(tokens, tok)
		if tok.Is(token.EOF) {
			return tokens
		}
	}
}

// Position returns the [syntax.Position] of the byte range [start, end) in the
// source text.
//
// If the range spans multiple lines, the returned column range is clipped to
// the end of the first line.
func (s *Scanner) Position(start, end int) syntax.Position {
	start = min(max(start, 0), len(s.src))
	end = min(max(end, start), len(s.src))

	line := 1              // Line counter
	lastNewLineOffset := 0 // The byte offset of the (end of the) last newline seen

	for index, byt := range s.src[:start] {
		if byt == '\n' {
			lastNewLineOffset = index + 1 // +1 to account for len("\n")
			line++
		}
	}

	if newline := slices.Index(s.src[start:end], '\n'); newline != -1 {
		end = start + newline
	}

	startCol := 1 + start - lastNewLineOffset
	endCol := max(end-lastNewLineOffset, startCol)

	return syntax.Position{
		Name:     s.name,
		Offset:   start,
		Line:     line,
		StartCol: startCol,
		EndCol:   endCol,
	}
}

// next returns the next utf8 rune in the input, or [eof], and advances the scanner
// over that rune such that successive calls to [Scanner.next] iterate through
// src one rune at a time.
//
// Invalid utf8 is passed through byte by byte as text, the format places no
// constraints on element content other than the separators.
func (s *Scanner) next() rune {
	if s.pos >= len(s.src) {
		return eof
	}

	char, width := utf8.DecodeRune(s.src[s.pos:])
	s.pos += width

	return char
}

// peek returns the next utf8 rune in the input, or [eof], but does not
// advance the scanner.
func (s *Scanner) peek() rune {
	if s.pos >= len(s.src) {
		return eof
	}

	char, _ := utf8.DecodeRune(s.src[s.pos:])

	return char
}

// takeUntil consumes characters until it hits any of the specified runes.
//
// It stops before it consumes the first specified rune such that after it returns,
// the next call to [Scanner.next] returns the offending rune.
func (s *Scanner) takeUntil(runes ...rune) {
	for {
		if slices.Contains(runes, s.peek()) {
			return
		}

		s.next()
	}
}

// emit queues a token for [Scanner.Scan], using the scanner's internal
// state to populate position information.
func (s *Scanner) emit(kind token.Kind) {
	s.pending = append(s.pending, token.Token{
		Kind:  kind,
		Start: s.start,
		End:   s.pos,
	})

	s.start = s.pos
}

// scanStart is the initial state of the scanner, and the state it returns
// to after every token.
func scanStart(s *Scanner) scanFn {
	switch char := s.peek(); char {
	case eof:
		s.emit(token.EOF)
		return nil
	case s.separators.Segment:
		s.next()
		s.emit(token.SegmentEnd)

		return scanStart
	case s.separators.Element:
		s.next()
		s.emit(token.ElementSep)

		return scanStart
	default:
		return scanText
	}
}

// scanText scans a run of element or segment name text, everything up to the
// next separator or the end of the input. Whitespace is part of the text, it is
// up to the consumer to trim it.
func scanText(s *Scanner) scanFn {
	s.takeUntil(s.separators.Segment, s.separators.Element, eof)
	s.emit(token.Text)

	return scanStart
}
