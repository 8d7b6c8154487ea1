package format

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"

	"go.followtheprocess.codes/tilde/internal/document"
	"go.followtheprocess.codes/tilde/internal/syntax"
)

// jsonIndent is the indentation used for all rendered JSON.
const jsonIndent = "    "

// JSONCodec is the [Codec] for the JSON representation of a document.
//
// A document is a JSON object keyed by segment name, each holding an array with one
// object per occurrence whose keys are "{segmentName}{n}":
//
//	{"ProductID": [{"ProductID1": "4", "ProductID2": "8"}]}
type JSONCodec struct {
	Separators syntax.Separators // Separators used when rendering to the delimited format
}

// Validate implements [Codec] for [JSONCodec], returning the top level keys
// of the document in the order they were declared.
func (j JSONCodec) Validate(src string) ([]string, error) {
	root, err := decodeObject(src)
	if err != nil {
		return nil, err
	}

	keys := make([]string, 0, len(root.members))
	for _, member := range root.members {
		keys = append(keys, member.key)
	}

	return keys, nil
}

// Parse implements [Codec] for [JSONCodec].
//
// Every top level key whose value is an array is a segment, each member of the array
// an occurrence. Element values are read in the order of their key's numeric suffix,
// not the order the keys were written in. Top level keys that aren't arrays are ignored.
func (j JSONCodec) Parse(src string) (*document.Document, error) {
	root, err := decodeObject(src)
	if err != nil {
		return nil, err
	}

	doc := document.New()

	for _, member := range root.members {
		if member.value.kind != jsonArray {
			continue
		}

		name := member.key
		if name == "" {
			return nil, errorf(InvalidJSON, "Invalid JSON format: segment name cannot be empty")
		}

		for i, occurrence := range member.value.items {
			if occurrence.kind != jsonObject {
				return nil, errorf(
					InvalidJSON,
					"Invalid JSON format: occurrence %d of segment %q must be an object, got %s",
					i+1,
					name,
					occurrence.kind,
				)
			}

			fields := make([]field, 0, len(occurrence.members))
			for _, element := range occurrence.members {
				if element.value.kind == jsonObject || element.value.kind == jsonArray {
					return nil, errorf(
						InvalidJSON,
						"Invalid JSON format: element %q of segment %q must be a string, number, boolean or null, got %s",
						element.key,
						name,
						element.value.kind,
					)
				}

				fields = append(fields, field{key: element.key, value: element.value.text})
			}

			if len(fields) == 0 {
				return nil, errorf(InvalidJSON, "Invalid JSON format: occurrence %d of segment %q has no elements", i+1, name)
			}

			segment, err := document.NewSegment(name, orderFields(name, fields)...)
			if err != nil {
				return nil, &Error{Kind: InvalidJSON, Msg: "Invalid JSON format: " + err.Error(), Err: err}
			}

			doc.Append(segment)
		}
	}

	return doc, nil
}

// Renderer implements [Codec] for [JSONCodec].
func (j JSONCodec) Renderer(to Format) (Renderer, bool) {
	renderer, ok := j.table()[to]
	return renderer, ok
}

// Targets implements [Codec] for [JSONCodec].
func (j JSONCodec) Targets() []Format {
	return targets(j.table())
}

// table returns the JSON render table.
func (j JSONCodec) table() map[Format]Renderer {
	return map[Format]Renderer{
		Delimited: DelimitedRenderer{Separators: j.Separators},
		XML:       XMLRenderer{Indent: jsonXMLIndent},
	}
}

// JSONRenderer is a [Renderer] that writes documents as JSON.
//
// Segment names appear in the order they were first seen and each occurrence's
// keys in element order, nothing is sorted.
type JSONRenderer struct {
	Indent string // Indent for each level of nesting, empty means compact output
}

// Render implements [Renderer] for [JSONRenderer].
func (j JSONRenderer) Render(w io.Writer, doc *document.Document) error {
	compact := &bytes.Buffer{}
	compact.WriteByte('{')

	first := true

	for name, group := range doc.Groups() {
		if !first {
			compact.WriteByte(',')
		}

		first = false

		if err := writeJSONString(compact, name); err != nil {
			return err
		}

		compact.WriteString(":[")

		for i, segment := range group {
			if i > 0 {
				compact.WriteByte(',')
			}

			compact.WriteByte('{')

			for index, element := range segment.Elements {
				if index > 0 {
					compact.WriteByte(',')
				}

				if err := writeJSONString(compact, name+strconv.Itoa(index+1)); err != nil {
					return err
				}

				compact.WriteByte(':')

				if err := writeJSONString(compact, element); err != nil {
					return err
				}
			}

			compact.WriteByte('}')
		}

		compact.WriteByte(']')
	}

	compact.WriteByte('}')

	if j.Indent == "" {
		_, err := w.Write(compact.Bytes())
		return err
	}

	indented := &bytes.Buffer{}
	if err := json.Indent(indented, compact.Bytes(), "", j.Indent); err != nil {
		return fmt.Errorf("could not indent JSON: %w", err)
	}

	if _, err := w.Write(indented.Bytes()); err != nil {
		return fmt.Errorf("could not write JSON output: %w", err)
	}

	return nil
}

// writeJSONString writes s to buf as a JSON string, without the HTML
// escaping json.Marshal applies.
func writeJSONString(buf *bytes.Buffer, s string) error {
	encoder := json.NewEncoder(buf)
	encoder.SetEscapeHTML(false)

	if err := encoder.Encode(s); err != nil {
		return fmt.Errorf("could not encode %q as JSON: %w", s, err)
	}

	// Encode always appends a newline
	buf.Truncate(buf.Len() - 1)

	return nil
}

// jsonKind is the kind of a decoded JSON value.
type jsonKind int

const (
	jsonNull   jsonKind = iota // null
	jsonString                 // string
	jsonNumber                 // number
	jsonBool                   // boolean
	jsonObject                 // object
	jsonArray                  // array
)

// String implements [fmt.Stringer] for [jsonKind].
func (k jsonKind) String() string {
	switch k {
	case jsonNull:
		return "null"
	case jsonString:
		return "string"
	case jsonNumber:
		return "number"
	case jsonBool:
		return "boolean"
	case jsonObject:
		return "object"
	case jsonArray:
		return "array"
	default:
		return fmt.Sprintf("jsonKind(%d)", int(k))
	}
}

// jsonValue is a decoded JSON value that, unlike map[string]any, remembers
// the order object keys were declared in.
type jsonValue struct {
	text    string       // Literal text of a scalar, numbers are kept exactly as written
	members []jsonMember // Object members in declaration order
	items   []jsonValue  // Array items
	kind    jsonKind     // The kind of value
}

// jsonMember is a single key/value pair of a JSON object.
type jsonMember struct {
	key   string
	value jsonValue
}

// decodeObject decodes src, which must be a single non-null JSON object.
func decodeObject(src string) (jsonValue, error) {
	if strings.TrimSpace(src) == "" {
		return jsonValue{}, errorf(InvalidJSON, "Invalid JSON format")
	}

	decoder := json.NewDecoder(strings.NewReader(src))
	decoder.UseNumber()

	root, err := readJSON(decoder)
	if err != nil {
		return jsonValue{}, &Error{Kind: InvalidJSON, Msg: "Invalid JSON format: " + err.Error(), Err: err}
	}

	if _, err := decoder.Token(); !errors.Is(err, io.EOF) {
		return jsonValue{}, errorf(InvalidJSON, "Invalid JSON format: unexpected data after top level value")
	}

	if root.kind != jsonObject {
		return jsonValue{}, errorf(InvalidJSON, "Invalid JSON format: top level value must be an object, got %s", root.kind)
	}

	return root, nil
}

// readJSON reads the next complete value from the decoder.
func readJSON(decoder *json.Decoder) (jsonValue, error) {
	tok, err := decoder.Token()
	if err != nil {
		return jsonValue{}, unexpectedEOF(err)
	}

	switch tok := tok.(type) {
	case json.Delim:
		switch tok {
		case '{':
			return readObject(decoder)
		case '[':
			return readArray(decoder)
		default:
			return jsonValue{}, fmt.Errorf("unexpected %q", rune(tok))
		}
	case string:
		return jsonValue{kind: jsonString, text: tok}, nil
	case json.Number:
		return jsonValue{kind: jsonNumber, text: tok.String()}, nil
	case bool:
		return jsonValue{kind: jsonBool, text: strconv.FormatBool(tok)}, nil
	case nil:
		return jsonValue{kind: jsonNull}, nil
	default:
		return jsonValue{}, fmt.Errorf("unexpected token %v", tok)
	}
}

// readObject reads the members of an object, the opening '{' has already been consumed.
//
// A key declared more than once keeps the position of its first declaration
// and the value of its last.
func readObject(decoder *json.Decoder) (jsonValue, error) {
	object := jsonValue{kind: jsonObject}
	seen := make(map[string]int)

	for decoder.More() {
		tok, err := decoder.Token()
		if err != nil {
			return jsonValue{}, unexpectedEOF(err)
		}

		key, ok := tok.(string)
		if !ok {
			return jsonValue{}, fmt.Errorf("object key must be a string, got %v", tok)
		}

		value, err := readJSON(decoder)
		if err != nil {
			return jsonValue{}, err
		}

		if index, ok := seen[key]; ok {
			object.members[index].value = value
			continue
		}

		seen[key] = len(object.members)
		object.members = append(object.members, jsonMember{key: key, value: value})
	}

	// Consume the closing '}'
	if _, err := decoder.Token(); err != nil {
		return jsonValue{}, unexpectedEOF(err)
	}

	return object, nil
}

// readArray reads the items of an array, the opening '[' has already been consumed.
func readArray(decoder *json.Decoder) (jsonValue, error) {
	array := jsonValue{kind: jsonArray}

	for decoder.More() {
		item, err := readJSON(decoder)
		if err != nil {
			return jsonValue{}, err
		}

		array.items = append(array.items, item)
	}

	// Consume the closing ']'
	if _, err := decoder.Token(); err != nil {
		return jsonValue{}, unexpectedEOF(err)
	}

	return array, nil
}

// unexpectedEOF converts a bare io.EOF part way through a value into
// an [io.ErrUnexpectedEOF].
func unexpectedEOF(err error) error {
	if errors.Is(err, io.EOF) {
		return io.ErrUnexpectedEOF
	}

	return err
}
