package format

import (
	"fmt"
	"io"
	"strings"
	"unicode"

	"go.followtheprocess.codes/tilde/internal/document"
	"go.followtheprocess.codes/tilde/internal/syntax"
	"go.followtheprocess.codes/tilde/internal/syntax/scanner"
	"go.followtheprocess.codes/tilde/internal/syntax/token"
)

// documentName is the name given to positions in delimited documents, callers
// that know where the document came from (e.g. a file path) substitute their own.
const documentName = "document"

// DelimitedCodec is the [Codec] for the delimited flat-text format, where segments are
// terminated by '~' and the elements within a segment are separated by '*'.
//
//	ProductID*4*8*15*16*23~AddressID*42*108*3*14~
type DelimitedCodec struct {
	Separators syntax.Separators // Separators to split on, unset fields use the defaults
}

// rawSegment is a single segment as split from the source text, before
// any trimming of its parts.
type rawSegment struct {
	text  string   // The raw segment text, without the terminator
	parts []string // text split on the element separator
	start int      // Byte offset of the start of text in the source
	end   int      // Byte offset of the end of text in the source
}

// Validate implements [Codec] for [DelimitedCodec].
//
// It checks, in order, that the document is not empty, that it has at least one
// segment and that every segment has a non-empty name and at least one element,
// returning the raw, unsplit segment strings on success.
func (d DelimitedCodec) Validate(src string) ([]string, error) {
	segments, err := d.split(src)
	if err != nil {
		return nil, err
	}

	raw := make([]string, 0, len(segments))
	for _, segment := range segments {
		raw = append(raw, segment.text)
	}

	return raw, nil
}

// Parse implements [Codec] for [DelimitedCodec].
//
// Each segment's name is its first part and its elements the remaining parts, all
// trimmed of surrounding whitespace. Whitespace-only trailing elements are dropped, but
// a segment always keeps its first element.
func (d DelimitedCodec) Parse(src string) (*document.Document, error) {
	segments, err := d.split(src)
	if err != nil {
		return nil, err
	}

	doc := document.New()

	for _, raw := range segments {
		name := strings.TrimSpace(raw.parts[0])

		elements := make([]string, 0, len(raw.parts)-1)
		for _, part := range raw.parts[1:] {
			elements = append(elements, strings.TrimSpace(part))
		}

		for len(elements) > 1 && elements[len(elements)-1] == "" {
			elements = elements[:len(elements)-1]
		}

		segment, err := document.NewSegment(name, elements...)
		if err != nil {
			// split guarantees a name and at least one element so this is a bug
			return nil, &Error{Kind: Internal, Msg: fmt.Sprintf("could not build segment %q: %v", name, err), Err: err}
		}

		doc.Append(segment)
	}

	return doc, nil
}

// Renderer implements [Codec] for [DelimitedCodec].
func (d DelimitedCodec) Renderer(to Format) (Renderer, bool) {
	renderer, ok := d.table()[to]
	return renderer, ok
}

// Targets implements [Codec] for [DelimitedCodec].
func (d DelimitedCodec) Targets() []Format {
	return targets(d.table())
}

// table returns the delimited render table.
func (d DelimitedCodec) table() map[Format]Renderer {
	return map[Format]Renderer{
		JSON: JSONRenderer{Indent: jsonIndent},
		XML:  XMLRenderer{Indent: delimitedXMLIndent},
	}
}

// split scans src into its raw segments, applying the validation rules as it goes.
func (d DelimitedCodec) split(src string) ([]rawSegment, error) {
	separators := d.Separators.OrDefault()

	trimmed := strings.TrimSpace(src)
	if trimmed == "" {
		return nil, errorf(EmptyDocument, "Document is empty")
	}

	// The document as a whole is trimmed, so the first and last segments lose their
	// leading and trailing whitespace but offsets still refer to the untrimmed source
	low := len(src) - len(strings.TrimLeftFunc(src, unicode.IsSpace))
	high := len(strings.TrimRightFunc(src, unicode.IsSpace))

	s := scanner.New(documentName, []byte(src), separators)

	var (
		segments []rawSegment
		parts    []string
		current  string
	)

	start := 0

	for {
		tok := s.Scan()

		switch tok.Kind {
		case token.Text:
			current += src[tok.Start:tok.End]
		case token.ElementSep:
			parts = append(parts, current)
			current = ""
		case token.SegmentEnd, token.EOF:
			parts = append(parts, current)

			segStart := max(start, low)
			segEnd := min(tok.Start, high)

			if segEnd > segStart && strings.TrimSpace(src[segStart:segEnd]) != "" {
				segments = append(segments, rawSegment{
					text:  src[segStart:segEnd],
					parts: parts,
					start: segStart,
					end:   segEnd,
				})
			}

			parts = nil
			current = ""
			start = tok.End
		}

		if tok.Is(token.EOF) {
			break
		}
	}

	if len(segments) == 0 {
		return nil, errorf(
			NoSegments,
			"No segments found. Document must contain at least one segment separated by '%c'",
			separators.Segment,
		)
	}

	for _, segment := range segments {
		if err := d.check(s, segment, separators); err != nil {
			return nil, err
		}
	}

	return segments, nil
}

// check validates a single raw segment.
func (d DelimitedCodec) check(s *scanner.Scanner, segment rawSegment, separators syntax.Separators) error {
	text := strings.TrimSpace(segment.text)

	switch {
	case len(segment.parts) < 2: //nolint:mnd // A name and at least one element
		err := errorf(
			MalformedSegment,
			`Invalid segment format: "%s". Each segment must have a segment name and at least one element separated by '%c'`,
			text,
			separators.Element,
		)
		err.Position = d.position(s, segment)

		return err
	case strings.TrimSpace(segment.parts[0]) == "":
		err := errorf(EmptySegmentName, `Invalid segment: "%s". Segment name cannot be empty`, text)
		err.Position = d.position(s, segment)

		return err
	default:
		return nil
	}
}

// position returns the position of the segment's text, ignoring any
// whitespace surrounding it.
func (d DelimitedCodec) position(s *scanner.Scanner, segment rawSegment) syntax.Position {
	lead := len(segment.text) - len(strings.TrimLeftFunc(segment.text, unicode.IsSpace))
	trail := len(segment.text) - len(strings.TrimRightFunc(segment.text, unicode.IsSpace))

	return s.Position(segment.start+lead, segment.end-trail)
}

// DelimitedRenderer is a [Renderer] that writes documents in the delimited format.
//
// Each occurrence is written as its name followed by its elements, joined by the
// element separator and terminated by the segment separator, with nothing between
// segments.
type DelimitedRenderer struct {
	Separators syntax.Separators // Separators to join with, unset fields use the defaults
}

// Render implements [Renderer] for [DelimitedRenderer].
//
// A name or element that contains one of the separators cannot be represented
// and is an error rather than silently corrupting the output.
func (d DelimitedRenderer) Render(w io.Writer, doc *document.Document) error {
	separators := d.Separators.OrDefault()
	reserved := string([]rune{separators.Segment, separators.Element})

	builder := &strings.Builder{}

	for segment := range doc.Occurrences() {
		if strings.ContainsAny(segment.Name, reserved) {
			return fmt.Errorf("segment name %q contains a reserved separator (%q)", segment.Name, reserved)
		}

		builder.WriteString(segment.Name)

		for _, element := range segment.Elements {
			if strings.ContainsAny(element, reserved) {
				return fmt.Errorf("element %q of segment %q contains a reserved separator (%q)", element, segment.Name, reserved)
			}

			builder.WriteRune(separators.Element)
			builder.WriteString(element)
		}

		builder.WriteRune(separators.Segment)
	}

	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("could not write delimited output: %w", err)
	}

	return nil
}
