// Package format implements the codecs that convert documents between the delimited,
// JSON and XML representations.
//
// Every codec validates and parses its format into the intermediate
// [document.Document], and holds a render table of [Renderer]s describing the target
// formats it can convert to. Codecs are looked up by their [Format] tag through a
// [Registry], adding a format means adding a tag and a registry entry.
//
// Codecs and renderers are stateless, they are safe to share between goroutines.
package format

import (
	"fmt"
	"io"
	"maps"
	"slices"
	"strings"

	"go.followtheprocess.codes/tilde/internal/document"
	"go.followtheprocess.codes/tilde/internal/syntax"
)

// Format is the tag identifying one of the supported document representations.
//
// The zero value is not a valid format.
type Format int //nolint:recvcheck // UnmarshalText requires a pointer receiver

const (
	Delimited Format = iota + 1 // STRING
	JSON                        // JSON
	XML                         // XML
)

// String implements [fmt.Stringer] for a [Format], returning the name
// used by callers to request it.
func (f Format) String() string {
	switch f {
	case Delimited:
		return "STRING"
	case JSON:
		return "JSON"
	case XML:
		return "XML"
	default:
		return fmt.Sprintf("Format(%d)", int(f))
	}
}

// Valid reports whether f is one of the known formats.
func (f Format) Valid() bool {
	return f >= Delimited && f <= XML
}

// MarshalText implements [encoding.TextMarshaler] for [Format].
func (f Format) MarshalText() ([]byte, error) {
	if !f.Valid() {
		return nil, fmt.Errorf("cannot marshal unknown format %d", int(f))
	}

	return []byte(f.String()), nil
}

// UnmarshalText implements [encoding.TextUnmarshaler] for [Format].
func (f *Format) UnmarshalText(text []byte) error {
	parsed, err := Parse(string(text))
	if err != nil {
		return err
	}

	*f = parsed

	return nil
}

// Parse returns the [Format] with the given name.
//
// Names are case insensitive and surrounding whitespace is ignored. The delimited
// format is called "STRING", "DELIMITED" is accepted as an alias.
func Parse(name string) (Format, error) {
	switch strings.ToUpper(strings.TrimSpace(name)) {
	case "STRING", "DELIMITED":
		return Delimited, nil
	case "JSON":
		return JSON, nil
	case "XML":
		return XML, nil
	default:
		return 0, fmt.Errorf("unknown format %q, allowed values are 'STRING', 'JSON', 'XML'", name)
	}
}

// Renderer is the interface defining a mechanism for rendering an intermediate
// document into a target format.
type Renderer interface {
	// Render renders the document, writing the result to w.
	Render(w io.Writer, doc *document.Document) error
}

// Codec is the interface implemented by each supported format.
type Codec interface {
	// Validate checks the structural well-formedness of src without building
	// a document, returning a format specific preview on success (raw segments
	// for the delimited format, top level keys for JSON, element names for XML).
	Validate(src string) ([]string, error)

	// Parse parses src into a new document.
	Parse(src string) (*document.Document, error)

	// Renderer returns the renderer for the target format, and whether this
	// codec's render table has an entry for it.
	Renderer(to Format) (Renderer, bool)

	// Targets returns the formats this codec can render to.
	Targets() []Format
}

// Registry maps format tags to their codecs.
//
// A Registry is built once at startup with [NewRegistry] and then only read,
// so it may be shared between goroutines.
type Registry struct {
	codecs map[Format]Codec
}

// NewRegistry returns a [Registry] containing the delimited, JSON and XML codecs.
//
// The separators configure the delimited format, both when it is parsed and
// when it is the target of a conversion.
func NewRegistry(separators syntax.Separators) *Registry {
	separators = separators.OrDefault()

	registry := &Registry{codecs: make(map[Format]Codec)}

	registry.Register(Delimited, DelimitedCodec{Separators: separators})
	registry.Register(JSON, JSONCodec{Separators: separators})
	registry.Register(XML, XMLCodec{Separators: separators})

	return registry
}

// Register adds (or replaces) the codec for a format.
//
// It must not be called once the registry is in use by a converter.
func (r *Registry) Register(format Format, codec Codec) {
	r.codecs[format] = codec
}

// Codec returns the codec registered for the format, and whether one exists.
func (r *Registry) Codec(format Format) (Codec, bool) {
	codec, ok := r.codecs[format]
	return codec, ok
}

// Formats returns the registered formats in tag order.
func (r *Registry) Formats() []Format {
	return slices.Sorted(maps.Keys(r.codecs))
}

// Targets returns the formats a source format can be converted to, nil if the
// source format has no codec.
func (r *Registry) Targets(from Format) []Format {
	codec, ok := r.codecs[from]
	if !ok {
		return nil
	}

	return codec.Targets()
}

// targets returns the sorted keys of a render table.
func targets(table map[Format]Renderer) []Format {
	return slices.Sorted(maps.Keys(table))
}

// Names returns the names of formats joined by ", " e.g. "JSON, XML".
func Names(formats []Format) string {
	parts := make([]string, 0, len(formats))
	for _, format := range formats {
		parts = append(parts, format.String())
	}

	return strings.Join(parts, ", ")
}
