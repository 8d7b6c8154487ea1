package tilde

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"slices"
	"strings"

	"go.followtheprocess.codes/msg"
	"go.followtheprocess.codes/tilde/internal/convert"
	"go.followtheprocess.codes/tilde/internal/format"
	"go.followtheprocess.codes/tilde/internal/syntax"
	"golang.org/x/sync/errgroup"
)

// extensions maps each format to the file extensions checked when
// walking a directory.
var extensions = map[format.Format][]string{
	format.Delimited: {".txt", ".edi"},
	format.JSON:      {".json"},
	format.XML:       {".xml"},
}

// CheckOptions are the options passed to the check subcommand.
type CheckOptions struct {
	// Path is the path (file or directory) to check.
	Path string

	// From is the name of the format the documents are in.
	From string

	// Config is the path to a TOML or YAML config file.
	Config string

	// Debug enables debug logging.
	Debug bool
}

// Validate reports whether the CheckOptions is valid, returning a non-nil
// error if it's not.
func (c CheckOptions) Validate() error {
	if c.Path == "" {
		return errors.New("path must not be empty")
	}

	if _, err := format.Parse(c.From); err != nil {
		return fmt.Errorf("invalid option for --from: %w", err)
	}

	return nil
}

// Check implements the check subcommand.
//
// Every document is validated concurrently. Once they have all been checked, success
// lines are printed for the valid ones and the failures are reported to the handler
// (or stderr) in path order.
func (t Tilde) Check(ctx context.Context, handler syntax.ErrorHandler, options CheckOptions) error {
	logger := t.logger.Prefixed("check").With(slog.String("path", options.Path))
	logger.Debug("Checking path")

	if err := options.Validate(); err != nil {
		return err
	}

	from, err := format.Parse(options.From)
	if err != nil {
		return err
	}

	converter, err := t.converter(options.Config)
	if err != nil {
		return err
	}

	paths, err := documents(options.Path, from)
	if err != nil {
		return err
	}

	logger.Debug("Checking documents given by path", slog.Int("number", len(paths)), slog.String("format", from.String()))

	// Each goroutine owns its index, a nil entry is a valid document
	failures := make([]error, len(paths))

	group := errgroup.Group{}

	for i, path := range paths {
		group.Go(func() error {
			problem, err := checkFile(ctx, converter, path, from)
			if err != nil {
				return err
			}

			failures[i] = problem

			return nil
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	var (
		errs        []error
		diagnostics []syntax.Diagnostic
	)

	for i, path := range paths {
		if failures[i] == nil {
			msg.Fsuccess(t.stdout, "%s is valid", path)
			continue
		}

		errs = append(errs, failures[i])
		diagnostics = append(diagnostics, diagnostic(path, failures[i]))
	}

	slices.SortFunc(diagnostics, func(a, b syntax.Diagnostic) int {
		return syntax.ComparePosition(a.Position, b.Position)
	})

	for _, diag := range diagnostics {
		t.report(diag, handler)
	}

	if len(errs) != 0 {
		logger.Debug("Documents failed validation", slog.Int("failed", len(errs)))

		return failed{
			err:     errors.Join(errs...),
			summary: fmt.Sprintf("%d of %d %s document(s) failed validation", len(errs), len(paths), from),
		}
	}

	return nil
}

// checkFile validates a single document, returning why it is invalid or nil if
// it's valid. The error is only non-nil when the document could not be checked at all.
func checkFile(ctx context.Context, converter convert.Converter, path string, from format.Format) (problem, err error) {
	contents, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("could not read %s: %w", path, err)
	}

	// We don't care about the preview, just that it validates
	if _, err := converter.Validate(ctx, string(contents), from); err != nil {
		if ctxErr := ctx.Err(); ctxErr != nil && errors.Is(err, ctxErr) {
			return nil, err
		}

		return err, nil
	}

	return nil, nil
}

// documents returns the documents to check. A file is checked whatever its extension,
// a directory is walked recursively for files with one of the format's extensions.
func documents(path string, from format.Format) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("could not get path info: %w", err)
	}

	if !info.IsDir() {
		return []string{path}, nil
	}

	var paths []string

	err = filepath.WalkDir(path, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}

		if !d.IsDir() && slices.Contains(extensions[from], strings.ToLower(filepath.Ext(path))) {
			paths = append(paths, path)
		}

		return nil
	})
	if err != nil {
		return nil, fmt.Errorf("could not walk %s: %w", path, err)
	}

	return paths, nil
}
