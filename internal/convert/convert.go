// Package convert implements the conversion orchestrator.
//
// A [Converter] resolves the source codec for a request, validates and parses the
// document into the intermediate model then renders it with the source codec's
// renderer for the target format. It holds nothing but a read-only [format.Registry]
// so a single Converter may serve any number of concurrent conversions.
package convert

import (
	"bytes"
	"context"
	"fmt"

	"go.followtheprocess.codes/tilde/internal/format"
	"go.followtheprocess.codes/tilde/internal/syntax"
)

// supported is the list of format names reported when a request names an unknown format.
var supported = format.Names([]format.Format{format.Delimited, format.JSON, format.XML})

// Request is a single conversion request.
type Request struct {
	Document string        // The source document text
	From     format.Format // The format Document is in
	To       format.Format // The format to convert to
}

// NewRequest builds a [Request] from external format names e.g. "STRING", "JSON".
//
// An unknown name is reported as [format.UnsupportedSourceFormat] or
// [format.UnsupportedTargetFormat], the same failures [Converter.Convert] returns
// for a format it has no codec for.
func NewRequest(document, from, to string) (Request, error) {
	source, err := format.Parse(from)
	if err != nil {
		return Request{}, &format.Error{
			Kind: format.UnsupportedSourceFormat,
			Msg:  fmt.Sprintf("Invalid fromFormat: %s. Supported formats: %s", from, supported),
			Err:  err,
		}
	}

	target, err := format.Parse(to)
	if err != nil {
		return Request{}, &format.Error{
			Kind: format.UnsupportedTargetFormat,
			Msg:  fmt.Sprintf("Invalid toFormat: %s. Supported formats: %s", to, supported),
			Err:  err,
		}
	}

	return Request{Document: document, From: source, To: target}, nil
}

// Result is the outcome of a successful conversion.
type Result struct {
	Data     string        // The converted document
	Format   format.Format // The format of Data, always the request's target
	Segments int           // The number of segment occurrences converted
}

// Converter converts documents between formats.
type Converter struct {
	registry *format.Registry
}

// New returns a [Converter] using the codecs in registry, a nil registry
// means the default codecs with the default separators.
func New(registry *format.Registry) Converter {
	if registry == nil {
		registry = format.NewRegistry(syntax.DefaultSeparators())
	}

	return Converter{registry: registry}
}

// Convert performs a single conversion.
//
// Validation and parse failures of the source document are returned exactly as the
// codec reported them, lookup failures are typed [*format.Error]s and a failure to
// render is reported as [format.Internal]. Nothing is returned on failure, there is
// no partial output.
//
// The context is only checked before any work is done, a conversion
// runs to completion once started.
func (c Converter) Convert(ctx context.Context, request Request) (Result, error) {
	if err := ctx.Err(); err != nil {
		return Result{}, err
	}

	source, err := c.source(request.From)
	if err != nil {
		return Result{}, err
	}

	if _, err = source.Validate(request.Document); err != nil {
		return Result{}, err
	}

	doc, err := source.Parse(request.Document)
	if err != nil {
		return Result{}, err
	}

	if _, ok := c.registry.Codec(request.To); !ok {
		return Result{}, &format.Error{
			Kind: format.UnsupportedTargetFormat,
			Msg:  fmt.Sprintf("Invalid toFormat: %s. Supported formats: %s", request.To, format.Names(c.registry.Formats())),
		}
	}

	renderer, ok := source.Renderer(request.To)
	if !ok {
		return Result{}, &format.Error{
			Kind: format.UnsupportedConversionPair,
			Msg: fmt.Sprintf(
				"Invalid conversion type for %s: %s. Supported types: %s",
				request.From,
				request.To,
				format.Names(source.Targets()),
			),
		}
	}

	buf := &bytes.Buffer{}
	if err := renderer.Render(buf, doc); err != nil {
		return Result{}, &format.Error{
			Kind: format.Internal,
			Msg:  fmt.Sprintf("could not render %s document as %s: %v", request.From, request.To, err),
			Err:  err,
		}
	}

	return Result{Data: buf.String(), Format: request.To, Segments: doc.Len()}, nil
}

// Validate checks that text is a well formed document in the given format without
// converting it, returning the codec's preview (raw segments, JSON keys or XML
// element names).
func (c Converter) Validate(ctx context.Context, text string, from format.Format) ([]string, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}

	source, err := c.source(from)
	if err != nil {
		return nil, err
	}

	return source.Validate(text)
}

// Formats returns the formats the converter can read, in tag order.
func (c Converter) Formats() []format.Format {
	return c.registry.Formats()
}

// Targets returns the formats a source format can be converted to.
func (c Converter) Targets(from format.Format) []format.Format {
	return c.registry.Targets(from)
}

// source returns the codec for the source format.
func (c Converter) source(from format.Format) (format.Codec, error) {
	codec, ok := c.registry.Codec(from)
	if !ok {
		return nil, &format.Error{
			Kind: format.UnsupportedSourceFormat,
			Msg:  fmt.Sprintf("Invalid fromFormat: %s. Supported formats: %s", from, format.Names(c.registry.Formats())),
		}
	}

	return codec, nil
}
