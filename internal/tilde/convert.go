package tilde

import (
	"context"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"time"

	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/tilde/internal/convert"
	"go.followtheprocess.codes/tilde/internal/syntax"
)

// filePerms is the permissions of output files written by convert.
const filePerms = 0o644

// ConvertOptions are the options passed to the convert subcommand.
type ConvertOptions struct {
	// File is the path to the document to convert, empty or "-" means stdin.
	File string

	// From is the name of the format the document is in e.g. "STRING".
	From string

	// To is the name of the format to convert to e.g. "JSON".
	To string

	// Output is the name of a file to write the result to, if empty the
	// result is printed to stdout.
	Output string

	// Config is the path to a TOML or YAML config file, empty means
	// the defaults (plus any environment overrides).
	Config string

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the ConvertOptions is valid, returning a non-nil
// error if it's not.
//
// Format names are not checked here, unknown formats are reported by the
// conversion itself.
func (c ConvertOptions) Validate() error {
	switch {
	case c.From == "":
		return errors.New("--from is required")
	case c.To == "":
		return errors.New("--to is required")
	case c.Output != "" && c.File != "" && c.File != "-" && filepath.Clean(c.Output) == filepath.Clean(c.File):
		return fmt.Errorf("--output %s would overwrite the input document", c.Output)
	default:
		return nil
	}
}

// Convert implements the convert subcommand.
//
// A document that fails validation is reported to the handler (or stderr) and the
// returned error only summarises it, other failures are returned as they are.
func (t Tilde) Convert(ctx context.Context, handler syntax.ErrorHandler, options ConvertOptions) error {
	logger := t.logger.Prefixed("convert").With(slog.String("from", options.From), slog.String("to", options.To))

	if err := options.Validate(); err != nil {
		return err
	}

	logger.Debug("Convert configuration", slog.String("options", fmt.Sprintf("%+v", options)))

	converter, err := t.converter(options.Config)
	if err != nil {
		return err
	}

	name, src, err := t.read(options.File)
	if err != nil {
		return err
	}

	logger.Debug("Read document", slog.String("document", name), slog.Int("bytes", len(src)))

	request, err := convert.NewRequest(src, options.From, options.To)
	if err != nil {
		return err
	}

	start := time.Now()

	result, err := converter.Convert(ctx, request)
	if err != nil {
		if !invalid(err) {
			return err
		}

		t.report(diagnostic(name, err), handler)

		return failed{err: err, summary: fmt.Sprintf("%s is not a valid %s document", name, request.From)}
	}

	logger.Debug(
		"Converted document",
		slog.String("document", name),
		slog.Int("segments", result.Segments),
		slog.Int("bytes", len(result.Data)),
		slog.Duration("took", time.Since(start)),
	)

	if options.Output == "" {
		fmt.Fprintln(t.stdout, result.Data)
		return nil
	}

	if err := os.WriteFile(options.Output, []byte(result.Data+"\n"), filePerms); err != nil {
		return fmt.Errorf("could not write output: %w", err)
	}

	msg.Fsuccess(t.stdout, "Converted %s to %s in %s", name, result.Format, options.Output)

	return nil
}

// read returns the name and contents of the document at path, reading
// stdin when path is empty or "-".
func (t Tilde) read(path string) (name, contents string, err error) {
	if path == "" || path == "-" {
		data, err := io.ReadAll(t.stdin)
		if err != nil {
			return "", "", fmt.Errorf("could not read stdin: %w", err)
		}

		return stdinName, string(data), nil
	}

	data, err := os.ReadFile(path)
	if err != nil {
		return "", "", fmt.Errorf("could not read document: %w", err)
	}

	return path, string(data), nil
}
