package format

import (
	"encoding/xml"
	"fmt"
	"io"
	"regexp"
	"strconv"
	"strings"

	"github.com/antchfx/xmlquery"
	"go.followtheprocess.codes/tilde/internal/document"
	"go.followtheprocess.codes/tilde/internal/syntax"
)

const (
	// xmlHeader is the declaration at the top of every rendered XML document.
	xmlHeader = `<?xml version="1.0" encoding="UTF-8" ?>`

	// rootTag is the name of the element wrapping every rendered XML document.
	rootTag = "root"

	// delimitedXMLIndent is the indentation of XML converted from the delimited format.
	delimitedXMLIndent = "  "

	// jsonXMLIndent is the indentation of XML converted from JSON.
	jsonXMLIndent = "    "
)

var (
	// openingTag matches the name of an XML opening (or self closing) tag.
	openingTag = regexp.MustCompile(`<([A-Za-z_][A-Za-z0-9._:-]*)[\s>/]`)

	// tagName matches names the XML renderer is able to write.
	tagName = regexp.MustCompile(`^[A-Za-z_][A-Za-z0-9._-]*$`)
)

// XMLCodec is the [Codec] for the XML representation of a document.
//
// Each occurrence is an element named after its segment, holding one child element
// per value named "{segmentName}{n}", all wrapped in a single <root> element:
//
//	<root>
//	  <ProductID>
//	    <ProductID1>4</ProductID1>
//	  </ProductID>
//	</root>
type XMLCodec struct {
	Separators syntax.Separators // Separators used when rendering to the delimited format
}

// Validate implements [Codec] for [XMLCodec].
//
// It is a structural smoke test rather than a well-formedness check: src must be
// non-empty, start with '<' and contain at least one opening tag. Well-formedness
// problems are reported by [XMLCodec.Parse].
//
// On success it returns the distinct opening tag names, in the order they first
// appear, excluding the <root> wrapper.
func (x XMLCodec) Validate(src string) ([]string, error) {
	trimmed := strings.TrimSpace(src)

	switch {
	case trimmed == "":
		return nil, errorf(InvalidXML, "Invalid XML format: document is empty")
	case !strings.HasPrefix(trimmed, "<"):
		return nil, errorf(InvalidXML, "Invalid XML format: document must start with '<'")
	}

	matches := openingTag.FindAllStringSubmatch(trimmed, -1)
	if len(matches) == 0 {
		return nil, errorf(InvalidXML, "Invalid XML format: no root element found")
	}

	seen := make(map[string]bool)
	names := make([]string, 0, len(matches))

	for _, match := range matches {
		name := match[1]
		if name == rootTag || seen[name] {
			continue
		}

		seen[name] = true
		names = append(names, name)
	}

	return names, nil
}

// Parse implements [Codec] for [XMLCodec].
//
// The document may be wrapped in a single outer element (conventionally <root>) whose
// children are the occurrences, or be a single occurrence on its own. Each occurrence's
// child elements named "{segmentName}{n}" are its values, taken as their trimmed text
// content and ordered by n. Any other children and all attributes are ignored.
func (x XMLCodec) Parse(src string) (*document.Document, error) {
	if _, err := x.Validate(src); err != nil {
		return nil, err
	}

	root, err := xmlquery.Parse(strings.NewReader(src))
	if err != nil {
		return nil, &Error{Kind: InvalidXML, Msg: "Invalid XML format: " + err.Error(), Err: err}
	}

	top := childElements(root)
	if len(top) == 0 {
		return nil, errorf(InvalidXML, "Invalid XML format: no root element found")
	}

	occurrences := top
	if len(top) == 1 && isWrapper(top[0]) {
		occurrences = childElements(top[0])
	}

	doc := document.New()

	for _, occurrence := range occurrences {
		name := occurrence.Data

		var fields []field

		for _, child := range childElements(occurrence) {
			if !isElementKey(name, child.Data) {
				continue
			}

			fields = append(fields, field{key: child.Data, value: strings.TrimSpace(child.InnerText())})
		}

		if len(fields) == 0 {
			return nil, errorf(
				InvalidXML,
				"Invalid XML format: segment %q has no elements, expected children named %q, %q etc.",
				name,
				name+"1",
				name+"2",
			)
		}

		segment, err := document.NewSegment(name, orderFields(name, fields)...)
		if err != nil {
			return nil, &Error{Kind: InvalidXML, Msg: "Invalid XML format: " + err.Error(), Err: err}
		}

		doc.Append(segment)
	}

	return doc, nil
}

// Renderer implements [Codec] for [XMLCodec].
func (x XMLCodec) Renderer(to Format) (Renderer, bool) {
	renderer, ok := x.table()[to]
	return renderer, ok
}

// Targets implements [Codec] for [XMLCodec].
func (x XMLCodec) Targets() []Format {
	return targets(x.table())
}

// table returns the XML render table.
func (x XMLCodec) table() map[Format]Renderer {
	return map[Format]Renderer{
		Delimited: DelimitedRenderer{Separators: x.Separators},
		JSON:      JSONRenderer{Indent: jsonIndent},
	}
}

// isWrapper reports whether the only top level element wraps the occurrences
// rather than being an occurrence itself.
func isWrapper(node *xmlquery.Node) bool {
	if node.Data == rootTag {
		return true
	}

	for _, child := range childElements(node) {
		if len(childElements(child)) != 0 {
			return true
		}
	}

	return false
}

// childElements returns the element children of node, skipping text,
// comments and other node types.
func childElements(node *xmlquery.Node) []*xmlquery.Node {
	var children []*xmlquery.Node

	for child := node.FirstChild; child != nil; child = child.NextSibling {
		if child.Type == xmlquery.ElementNode {
			children = append(children, child)
		}
	}

	return children
}

// XMLRenderer is a [Renderer] that writes documents as XML.
//
// The output starts with the XML declaration and wraps every occurrence in a
// <root> element, each nesting level indented by Indent. Occurrences are grouped by
// segment name in first seen order, the same order as the JSON form.
type XMLRenderer struct {
	Indent string // Indent for each level of nesting
}

// Render implements [Renderer] for [XMLRenderer].
func (x XMLRenderer) Render(w io.Writer, doc *document.Document) error {
	builder := &strings.Builder{}

	builder.WriteString(xmlHeader)
	builder.WriteString("\n<" + rootTag + ">\n")

	for name, group := range doc.Groups() {
		if !tagName.MatchString(name) {
			return fmt.Errorf("segment name %q is not a valid XML element name", name)
		}

		for _, segment := range group {
			fmt.Fprintf(builder, "%s<%s>\n", x.Indent, name)

			for index, element := range segment.Elements {
				tag := name + strconv.Itoa(index+1)

				fmt.Fprintf(builder, "%s%s<%s>", x.Indent, x.Indent, tag)

				if err := xml.EscapeText(builder, []byte(element)); err != nil {
					return fmt.Errorf("could not escape %q: %w", element, err)
				}

				fmt.Fprintf(builder, "</%s>\n", tag)
			}

			fmt.Fprintf(builder, "%s</%s>\n", x.Indent, name)
		}
	}

	builder.WriteString("</" + rootTag + ">")

	if _, err := io.WriteString(w, builder.String()); err != nil {
		return fmt.Errorf("could not write XML output: %w", err)
	}

	return nil
}
