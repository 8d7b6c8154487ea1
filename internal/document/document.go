// Package document implements the intermediate document model, the format agnostic
// representation every codec parses into and renders from.
//
// A [Document] is an ordered collection of [Segment] occurrences grouped by segment name.
// Groups are emitted in the order their name was first seen and each group keeps its
// occurrences in the order they were appended, so two ProductID segments remain two
// distinct entries rather than being merged.
//
// A Document is built fresh for a single conversion and is not safe for concurrent
// mutation.
package document

import (
	"errors"
	"iter"
	"slices"
	"strings"
)

var (
	// ErrEmptyName is returned when constructing a [Segment] with no name.
	ErrEmptyName = errors.New("segment name cannot be empty")

	// ErrNoElements is returned when constructing a [Segment] with no elements.
	ErrNoElements = errors.New("segment must have at least one element")
)

// Segment is a single occurrence of a named segment and its element values.
type Segment struct {
	// Name is the segment name e.g. "ProductID"
	Name string `json:"name"`

	// Elements are the element values in order, they are opaque strings
	// and no type coercion is ever performed on them
	Elements []string `json:"elements"`
}

// NewSegment returns a new [Segment], enforcing that the name is non-empty
// and that there is at least one element.
func NewSegment(name string, elements ...string) (Segment, error) {
	if name == "" {
		return Segment{}, ErrEmptyName
	}

	if len(elements) == 0 {
		return Segment{}, ErrNoElements
	}

	return Segment{Name: name, Elements: slices.Clone(elements)}, nil
}

// String implements [fmt.Stringer] for a [Segment], rendering it
// in the default delimited form e.g. "ProductID*4*8~".
func (s Segment) String() string {
	return s.Name + "*" + strings.Join(s.Elements, "*") + "~"
}

// Document is the intermediate document model.
//
// The zero value is an empty Document ready to use.
type Document struct {
	groups map[string][]Segment // Occurrences keyed by segment name
	order  []string             // Segment names in the order they were first seen
	count  int                  // Total number of occurrences
}

// New returns a new, empty [Document].
func New() *Document {
	return &Document{groups: make(map[string][]Segment)}
}

// Append adds an occurrence of a segment to the document.
//
// If this is the first time the segment name has been seen, a new group
// is created after all existing groups, otherwise the segment joins the end
// of its existing group.
func (d *Document) Append(segment Segment) {
	if d.groups == nil {
		d.groups = make(map[string][]Segment)
	}

	if _, seen := d.groups[segment.Name]; !seen {
		d.order = append(d.order, segment.Name)
	}

	d.groups[segment.Name] = append(d.groups[segment.Name], segment)
	d.count++
}

// Len returns the total number of segment occurrences in the document.
func (d *Document) Len() int {
	return d.count
}

// Groups returns an iterator over the segment groups, yielding each segment
// name alongside its occurrences, in first-seen order.
func (d *Document) Groups() iter.Seq2[string, []Segment] {
	return func(yield func(string, []Segment) bool) {
		for _, name := range d.order {
			if !yield(name, d.groups[name]) {
				return
			}
		}
	}
}

// Occurrences returns an iterator over every segment occurrence in emission
// order, that is each group in first-seen order and each group's occurrences
// in the order they were appended.
func (d *Document) Occurrences() iter.Seq[Segment] {
	return func(yield func(Segment) bool) {
		for _, group := range d.Groups() {
			for _, segment := range group {
				if !yield(segment) {
					return
				}
			}
		}
	}
}
