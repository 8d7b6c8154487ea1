// Package tilde implements the functionality of the program, the CLI in package cmd is simply the
// entrypoint to exported functions and methods in this package.
package tilde

import (
	"errors"
	"fmt"
	"io"
	"log/slog"
	"os"

	"go.followtheprocess.codes/hue"
	"go.followtheprocess.codes/log"
	"go.followtheprocess.codes/tilde/internal/config"
	"go.followtheprocess.codes/tilde/internal/convert"
	"go.followtheprocess.codes/tilde/internal/format"
	"go.followtheprocess.codes/tilde/internal/syntax"
)

// Styles.
const (
	// pathStyle is the style used for file paths in diagnostics.
	pathStyle = hue.Bold

	// failure is the style used for the "Error:" marker in diagnostics.
	failure = hue.Red | hue.Bold

	// formatStyle is the style used for format names.
	formatStyle = hue.Cyan | hue.Bold

	// dimmed is the style used for informational content.
	dimmed = hue.BrightBlack | hue.Italic
)

// stdinName is the name used for documents read from stdin.
const stdinName = "stdin"

// Tilde represents the tilde program.
type Tilde struct {
	stdin   io.Reader   // Documents are read from here when no file is given
	stdout  io.Writer   // Normal program output is written here
	stderr  io.Writer   // Logs and errors are written here
	logger  *log.Logger // The logger for the application
	version string      // The program version
}

// New returns a new [Tilde].
func New(debug bool, version string, stdin io.Reader, stdout, stderr io.Writer) Tilde {
	level := log.LevelInfo
	if debug {
		level = log.LevelDebug
	}

	logger := log.New(stderr, log.Prefix("tilde"), log.WithLevel(level))

	return Tilde{
		stdin:   stdin,
		stdout:  stdout,
		stderr:  stderr,
		logger:  logger,
		version: version,
	}
}

// converter returns a converter configured from the config file at path (if any)
// and the environment.
func (t Tilde) converter(path string) (convert.Converter, error) {
	cfg, err := config.Load(path)
	if err != nil {
		return convert.Converter{}, err
	}

	cfg = cfg.WithEnv(os.LookupEnv)

	separators, err := cfg.Separators()
	if err != nil {
		return convert.Converter{}, fmt.Errorf("invalid configuration: %w", err)
	}

	t.logger.Debug(
		"Loaded configuration",
		slog.String("config", path),
		slog.String("segment", string(separators.Segment)),
		slog.String("element", string(separators.Element)),
		slog.String("version", t.version),
	)

	return convert.New(format.NewRegistry(separators)), nil
}

// failed is returned once the details of a failure have been reported to the user.
//
// Its message is a short summary so the details aren't printed twice, the failure
// itself is still reachable with [errors.Is] and [errors.As].
type failed struct {
	err     error  // The underlying failure
	summary string // Short description of what failed
}

// Error implements error for [failed].
func (f failed) Error() string {
	return f.summary
}

// Unwrap returns the underlying failure.
func (f failed) Unwrap() error {
	return f.err
}

// invalid reports whether err is a problem with the document itself, rather
// than with the request or the program.
func invalid(err error) bool {
	switch format.KindOf(err) {
	case format.EmptyDocument,
		format.NoSegments,
		format.MalformedSegment,
		format.EmptySegmentName,
		format.InvalidJSON,
		format.InvalidXML:
		return true
	default:
		return false
	}
}

// diagnostic describes the failure of the document called name.
//
// Failures in the delimited format know where in the document they happened,
// anything else is described against the name alone.
func diagnostic(name string, err error) syntax.Diagnostic {
	var formatErr *format.Error
	if errors.As(err, &formatErr) && formatErr.Position.IsValid() {
		pos := formatErr.Position
		pos.Name = name

		return syntax.Diagnostic{Msg: formatErr.Msg, Position: pos}
	}

	return syntax.Diagnostic{Msg: err.Error(), Position: syntax.Position{Name: name}}
}

// report prints a diagnostic, positioned ones are passed to the handler and
// the rest are written to stderr against the document name.
//
// It must only be called from one goroutine at a time, neither the handler
// nor stderr are safe for concurrent use.
func (t Tilde) report(diag syntax.Diagnostic, handler syntax.ErrorHandler) {
	if diag.Position.IsValid() {
		handler(diag.Position, diag.Msg)
		return
	}

	fmt.Fprintf(t.stderr, "%s: %s %s\n", pathStyle.Text(diag.Position.Name), failure.Text("Error:"), diag.Msg)
}
