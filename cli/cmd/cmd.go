// Package cmd implements the tsk subcommands.
package cmd

import (
	"context"
	"encoding/hex"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/tsklang/tsk/lang"
	"github.com/tsklang/tsk/operator"
)

// stdinSource is the special source indicator for reading from stdin.
const stdinSource = "-"

// openSource opens a source path, mapping "-" to stdin. The returned
// closer is a no-op for stdin.
func openSource(path string) (io.ReadCloser, error) {
	if path == stdinSource {
		return io.NopCloser(os.Stdin), nil
	}

	f, err := os.Open(path)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).
			With(slog.String("path", path))
	}

	return f, nil
}

// parseOptions builds the parser options shared by the document-reading
// commands. Cross-file references resolve relative to the source file's
// directory first.
func parseOptions(source string, strict bool) []lang.Option {
	fs := lang.OSFilesystem{}
	if source != stdinSource {
		dir := filepath.Dir(source)
		fs.Dirs = append([]string{dir, filepath.Join(dir, "config")},
			lang.DefaultSearchDirs...)
	}

	return []lang.Option{
		lang.WithFilesystem(fs),
		lang.WithOperatorEngine(operator.New()),
		lang.WithStrictCrossFile(strict),
	}
}

// parseSource reads and parses one document.
func parseSource(
	ctx context.Context,
	source string,
	strict bool,
) (*lang.Config, error) {
	opts := parseOptions(source, strict)

	if source == stdinSource {
		return lang.ParseReader(ctx, os.Stdin, opts...)
	}

	return lang.ParseFile(ctx, source, opts...)
}

// render converts a configuration to the named output format.
func render(cfg *lang.Config, format string) ([]byte, error) {
	switch format {
	case "json":
		out, err := cfg.MarshalJSON()
		if err != nil {
			return nil, err
		}

		return append(out, '\n'), nil

	case "yaml":
		return cfg.MarshalYAML()

	default:
		return []byte(lang.Serialize(cfg)), nil
	}
}

// readKeyFile loads a hex-encoded key of the given byte length.
func readKeyFile(path string, size int) ([]byte, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, lang.ErrReadInput.Wrap(err).
			With(slog.String("path", path))
	}

	key, err := hex.DecodeString(strings.TrimSpace(string(data)))
	if err != nil {
		return nil, lang.ErrValidation.Wrap(err).
			With(slog.String("path", path))
	}

	if len(key) != size {
		return nil, lang.ErrValidation.
			With(
				slog.String("path", path),
				slog.Int("size", len(key)),
				slog.Int("want", size),
			)
	}

	return key, nil
}
