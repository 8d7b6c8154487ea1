package convert_test

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"slices"
	"strings"
	"testing"

	"go.followtheprocess.codes/test"
	"go.followtheprocess.codes/tilde/internal/convert"
	"go.followtheprocess.codes/tilde/internal/format"
	"go.followtheprocess.codes/tilde/internal/syntax"
	"go.followtheprocess.codes/txtar"
	"go.uber.org/goleak"
	"golang.org/x/sync/errgroup"
)

var update = flag.Bool("update", false, "Update golden files")

// example is the canonical delimited document used throughout.
const example = "ProductID*4*8*15*16*23~ProductID*a*b*c*d*e~AddressID*42*108*3*14~ContactID*59*26~"

func TestConvert(t *testing.T) {
	test.ColorEnabled(os.Getenv("CI") == "")

	pattern := filepath.Join("testdata", "convert", "*.txtar")
	files, err := filepath.Glob(pattern)
	test.Ok(t, err)

	converter := convert.New(nil)

	for _, file := range files {
		name := filepath.Base(file)
		t.Run(name, func(t *testing.T) {
			archive, err := txtar.ParseFile(file)
			test.Ok(t, err)

			rawRequest, ok := archive.Read("request.txt")
			test.True(t, ok, test.Context("%s missing request.txt", file))

			src, ok := archive.Read("src")
			test.True(t, ok, test.Context("%s missing src", file))

			from, to, ok := strings.Cut(strings.TrimSpace(rawRequest), " ")
			test.True(t, ok, test.Context("request.txt should be '<from> <to>', got %q", rawRequest))

			request, err := convert.NewRequest(src, from, to)
			test.Ok(t, err)

			result, err := converter.Convert(t.Context(), request)

			// A failed conversion is described by "<Kind>: <message>" in error.txt
			if wantErr, ok := archive.Read("error.txt"); ok {
				test.Err(t, err)
				test.Equal(t, result, convert.Result{})

				got := fmt.Sprintf("%s: %s\n", format.KindOf(err), err)

				if *update {
					test.Ok(t, archive.Write("error.txt", got))
					test.Ok(t, txtar.DumpFile(file, archive))

					return
				}

				test.Diff(t, got, wantErr)

				return
			}

			test.Ok(t, err)
			test.Equal(t, result.Format, request.To)

			want, ok := archive.Read("want")
			test.True(t, ok, test.Context("%s missing want", file))

			// Results carry no trailing newline but txtar sections always end in one
			got := result.Data + "\n"

			if *update {
				test.Ok(t, archive.Write("want", got))
				test.Ok(t, txtar.DumpFile(file, archive))

				return
			}

			test.Diff(t, got, want)
		})
	}
}

func TestNewRequest(t *testing.T) {
	tests := []struct {
		name string      // Name of the test case
		from string      // Source format name
		to   string      // Target format name
		msg  string      // Expected error message, empty if no error
		kind format.Kind // Expected error kind
	}{
		{
			name: "valid",
			from: "STRING",
			to:   "json",
		},
		{
			name: "bad source",
			from: "CSV",
			to:   "JSON",
			kind: format.UnsupportedSourceFormat,
			msg:  "Invalid fromFormat: CSV. Supported formats: STRING, JSON, XML",
		},
		{
			name: "bad target",
			from: "XML",
			to:   "YAML",
			kind: format.UnsupportedTargetFormat,
			msg:  "Invalid toFormat: YAML. Supported formats: STRING, JSON, XML",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			request, err := convert.NewRequest(example, tt.from, tt.to)
			if tt.msg == "" {
				test.Ok(t, err)
				test.Equal(t, request.From, format.Delimited)
				test.Equal(t, request.To, format.JSON)
				test.Equal(t, request.Document, example)

				return
			}

			test.Err(t, err)
			test.Equal(t, err.Error(), tt.msg)
			test.True(t, errors.Is(err, tt.kind))
		})
	}
}

func TestUnknownFormats(t *testing.T) {
	converter := convert.New(nil)

	_, err := converter.Convert(t.Context(), convert.Request{Document: example, From: format.Format(0), To: format.JSON})
	test.Err(t, err)
	test.True(t, errors.Is(err, format.UnsupportedSourceFormat))
	test.Equal(t, err.Error(), "Invalid fromFormat: Format(0). Supported formats: STRING, JSON, XML")

	_, err = converter.Convert(t.Context(), convert.Request{Document: example, From: format.Delimited, To: format.Format(7)})
	test.Err(t, err)
	test.True(t, errors.Is(err, format.UnsupportedTargetFormat))
	test.Equal(t, err.Error(), "Invalid toFormat: Format(7). Supported formats: STRING, JSON, XML")
}

func TestValidationErrorUnchanged(t *testing.T) {
	converter := convert.New(nil)
	codec := format.DelimitedCodec{}

	_, want := codec.Validate("ProductID~")
	test.Err(t, want)

	_, got := converter.Convert(t.Context(), convert.Request{Document: "ProductID~", From: format.Delimited, To: format.JSON})
	test.Err(t, got)

	// Same message, same kind and the same position
	var wantErr, gotErr *format.Error
	test.True(t, errors.As(want, &wantErr))
	test.True(t, errors.As(got, &gotErr))
	test.Equal(t, gotErr.Msg, wantErr.Msg)
	test.Equal(t, gotErr.Kind, wantErr.Kind)
	test.Equal(t, gotErr.Position, wantErr.Position)
}

func TestRoundTrips(t *testing.T) {
	converter := convert.New(nil)

	tests := []struct {
		name string        // Name of the test case
		via  format.Format // Intermediate format
	}{
		{name: "json", via: format.JSON},
		{name: "xml", via: format.XML},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			there, err := converter.Convert(t.Context(), convert.Request{Document: example, From: format.Delimited, To: tt.via})
			test.Ok(t, err)

			back, err := converter.Convert(t.Context(), convert.Request{Document: there.Data, From: tt.via, To: format.Delimited})
			test.Ok(t, err)

			// The example is already grouped by segment name so survives unchanged
			test.Equal(t, back.Data, example)
			test.Equal(t, there.Segments, 4)
			test.Equal(t, back.Segments, 4)
			test.Equal(t, back.Format, format.Delimited)
		})
	}

	t.Run("json xml json", func(t *testing.T) {
		json, err := converter.Convert(t.Context(), convert.Request{Document: example, From: format.Delimited, To: format.JSON})
		test.Ok(t, err)

		xml, err := converter.Convert(t.Context(), convert.Request{Document: json.Data, From: format.JSON, To: format.XML})
		test.Ok(t, err)

		again, err := converter.Convert(t.Context(), convert.Request{Document: xml.Data, From: format.XML, To: format.JSON})
		test.Ok(t, err)

		test.Diff(t, again.Data, json.Data)
	})
}

func TestXMLIndentation(t *testing.T) {
	converter := convert.New(nil)

	result, err := converter.Convert(t.Context(), convert.Request{Document: "ProductID*4*8~", From: format.Delimited, To: format.XML})
	test.Ok(t, err)

	want := []string{
		`<?xml version="1.0" encoding="UTF-8" ?>`,
		"<root>",
		"  <ProductID>",
		"    <ProductID1>4</ProductID1>",
		"    <ProductID2>8</ProductID2>",
		"  </ProductID>",
		"</root>",
	}

	test.EqualFunc(t, strings.Split(result.Data, "\n"), want, slices.Equal)
	test.Equal(t, result.Segments, 1)
}

func TestValidate(t *testing.T) {
	converter := convert.New(nil)

	first, err := converter.Validate(t.Context(), example, format.Delimited)
	test.Ok(t, err)

	// Validation has no side effects, doing it again gives the same answer
	second, err := converter.Validate(t.Context(), example, format.Delimited)
	test.Ok(t, err)

	test.EqualFunc(t, first, second, slices.Equal)
	test.Equal(t, len(first), 4)

	_, err = converter.Validate(t.Context(), "", format.JSON)
	test.Err(t, err)
	test.True(t, errors.Is(err, format.InvalidJSON))

	_, err = converter.Validate(t.Context(), example, format.Format(0))
	test.True(t, errors.Is(err, format.UnsupportedSourceFormat))
}

func TestCustomSeparators(t *testing.T) {
	registry := format.NewRegistry(syntax.Separators{Segment: '|', Element: '^'})
	converter := convert.New(registry)

	json, err := converter.Convert(t.Context(), convert.Request{Document: "ProductID^4^8|", From: format.Delimited, To: format.JSON})
	test.Ok(t, err)

	back, err := converter.Convert(t.Context(), convert.Request{Document: json.Data, From: format.JSON, To: format.Delimited})
	test.Ok(t, err)
	test.Equal(t, back.Data, "ProductID^4^8|")
}

func TestCancelled(t *testing.T) {
	converter := convert.New(nil)

	ctx, cancel := context.WithCancel(t.Context())
	cancel()

	_, err := converter.Convert(ctx, convert.Request{Document: example, From: format.Delimited, To: format.JSON})
	test.True(t, errors.Is(err, context.Canceled))

	_, err = converter.Validate(ctx, example, format.Delimited)
	test.True(t, errors.Is(err, context.Canceled))
}

func TestFormats(t *testing.T) {
	converter := convert.New(nil)

	test.EqualFunc(t, converter.Formats(), []format.Format{format.Delimited, format.JSON, format.XML}, slices.Equal)
	test.EqualFunc(t, converter.Targets(format.JSON), []format.Format{format.Delimited, format.XML}, slices.Equal)
}

func TestConcurrent(t *testing.T) {
	defer goleak.VerifyNone(t)

	converter := convert.New(nil)

	want, err := converter.Convert(t.Context(), convert.Request{Document: example, From: format.Delimited, To: format.XML})
	test.Ok(t, err)

	group, ctx := errgroup.WithContext(t.Context())

	for range 50 {
		group.Go(func() error {
			got, err := converter.Convert(ctx, convert.Request{Document: example, From: format.Delimited, To: format.XML})
			if err != nil {
				return err
			}

			if got.Data != want.Data {
				return errors.New("concurrent conversion gave a different result")
			}

			return nil
		})
	}

	test.Ok(t, group.Wait())
}

func BenchmarkConvert(b *testing.B) {
	converter := convert.New(nil)
	request := convert.Request{Document: strings.Repeat(example, 100), From: format.Delimited, To: format.JSON}

	for b.Loop() {
		_, err := converter.Convert(b.Context(), request)
		if err != nil {
			b.Fatalf("Convert returned an unexpected error: %v", err)
		}
	}
}
