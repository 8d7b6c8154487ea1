package format_test

import (
	"bytes"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/tilde/internal/format"
	"go.followtheprocess.codes/tilde/internal/syntax"
	"go.followtheprocess.codes/txtar"
)

var update = flag.Bool("update", false, "Update golden files")

// example is the canonical delimited document used throughout.
const example = "ProductID*4*8*15*16*23~ProductID*a*b*c*d*e~AddressID*42*108*3*14~ContactID*59*26~"

func TestParse(t *testing.T) {
	tests := []struct {
		name    string        // Name of the test case
		input   string        // Name passed to Parse
		want    format.Format // Expected format
		wantErr bool          // Whether we want an error
	}{
		{name: "string", input: "STRING", want: format.Delimited},
		{name: "delimited alias", input: "delimited", want: format.Delimited},
		{name: "json", input: "JSON", want: format.JSON},
		{name: "lower case", input: "json", want: format.JSON},
		{name: "surrounding space", input: " XML\n", want: format.XML},
		{name: "unknown", input: "YAML", wantErr: true},
		{name: "empty", input: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := format.Parse(tt.input)
			test.WantErr(t, err, tt.wantErr)
			test.Equal(t, got, tt.want)
		})
	}
}

func TestFormatString(t *testing.T) {
	test.Equal(t, format.Delimited.String(), "STRING")
	test.Equal(t, format.JSON.String(), "JSON")
	test.Equal(t, format.XML.String(), "XML")
	test.Equal(t, format.Format(0).String(), "Format(0)")
	test.False(t, format.Format(0).Valid())
	test.True(t, format.XML.Valid())
}

func TestFormatText(t *testing.T) {
	text, err := format.JSON.MarshalText()
	test.Ok(t, err)
	test.Equal(t, string(text), "JSON")

	_, err = format.Format(42).MarshalText()
	test.Err(t, err)

	var f format.Format
	test.Ok(t, f.UnmarshalText([]byte("xml")))
	test.Equal(t, f, format.XML)

	test.Err(t, f.UnmarshalText([]byte("csv")))
}

func TestNames(t *testing.T) {
	test.Equal(t, format.Names([]format.Format{format.JSON, format.XML}), "JSON, XML")
	test.Equal(t, format.Names(nil), "")
}

func TestRegistry(t *testing.T) {
	registry := format.NewRegistry(syntax.Separators{})

	test.EqualFunc(t, registry.Formats(), []format.Format{format.Delimited, format.JSON, format.XML}, slices.Equal)

	tests := []struct {
		from format.Format   // Source format
		want []format.Format // Expected targets
	}{
		{from: format.Delimited, want: []format.Format{format.JSON, format.XML}},
		{from: format.JSON, want: []format.Format{format.Delimited, format.XML}},
		{from: format.XML, want: []format.Format{format.Delimited, format.JSON}},
	}

	for _, tt := range tests {
		t.Run(tt.from.String(), func(t *testing.T) {
			codec, ok := registry.Codec(tt.from)
			test.True(t, ok)
			test.EqualFunc(t, codec.Targets(), tt.want, slices.Equal)
			test.EqualFunc(t, registry.Targets(tt.from), tt.want, slices.Equal)

			_, ok = codec.Renderer(tt.from)
			test.False(t, ok, test.Context("%s should not render to itself", tt.from))
		})
	}

	_, ok := registry.Codec(format.Format(0))
	test.False(t, ok)
	test.Equal(t, len(registry.Targets(format.Format(0))), 0)
}

func TestErrors(t *testing.T) {
	cause := io.ErrUnexpectedEOF
	err := &format.Error{Kind: format.InvalidJSON, Msg: "Invalid JSON format: unexpected EOF", Err: cause}

	test.Equal(t, err.Error(), "Invalid JSON format: unexpected EOF")
	test.True(t, errors.Is(err, format.InvalidJSON))
	test.False(t, errors.Is(err, format.InvalidXML))
	test.True(t, errors.Is(err, io.ErrUnexpectedEOF))

	wrapped := fmt.Errorf("converting: %w", err)
	test.Equal(t, format.KindOf(wrapped), format.InvalidJSON)
	test.Equal(t, format.KindOf(errors.New("bang")), format.Internal)

	test.True(t, format.MalformedSegment.BadRequest())
	test.False(t, format.Internal.BadRequest())
	test.Equal(t, format.UnsupportedConversionPair.String(), "UnsupportedConversionPair")
	test.Equal(t, format.Kind(99).String(), "Kind(99)")
}

func TestConversions(t *testing.T) {
	test.ColorEnabled(os.Getenv("CI") == "")

	registry := format.NewRegistry(syntax.Separators{})

	for _, from := range registry.Formats() {
		source, ok := registry.Codec(from)
		test.True(t, ok)

		// Produce the example in the source format so every pair starts from the same document
		src := example
		if from != format.Delimited {
			delimited, _ := registry.Codec(format.Delimited)
			doc, err := delimited.Parse(example)
			test.Ok(t, err)

			renderer, ok := delimited.Renderer(from)
			test.True(t, ok)

			buf := &bytes.Buffer{}
			test.Ok(t, renderer.Render(buf, doc))
			src = buf.String()
		}

		for _, to := range source.Targets() {
			t.Run(fmt.Sprintf("%s to %s", from, to), func(t *testing.T) {
				name := fmt.Sprintf("%s_to_%s.txtar", strings.ToLower(from.String()), strings.ToLower(to.String()))
				file := filepath.Join("testdata", "conversions", name)

				archive, err := txtar.ParseFile(file)
				test.Ok(t, err)

				_, err = source.Validate(src)
				test.Ok(t, err)

				doc, err := source.Parse(src)
				test.Ok(t, err)

				renderer, ok := source.Renderer(to)
				test.True(t, ok)

				buf := &bytes.Buffer{}
				test.Ok(t, renderer.Render(buf, doc))

				// Rendered documents have no trailing newline but txtar sections always end in one
				got := buf.String() + "\n"

				if *update {
					test.Ok(t, archive.Write("want", got))
					test.Ok(t, txtar.DumpFile(file, archive))

					return
				}

				want, ok := archive.Read("want")
				test.True(t, ok, test.Context("%s missing want", file))

				test.Diff(t, got, want)
			})
		}
	}
}
