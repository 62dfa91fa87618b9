package output

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"

	"github.com/rs/zerolog"

	"github.com/dshills/diffcritic/internal/review"
)

// Writer writes a report in a specific format.
type Writer interface {
	Write(w io.Writer, report *review.Report) error
}

// ForFormat returns the writer and file extension for a format name.
func ForFormat(format string) (Writer, string, error) {
	switch format {
	case "json":
		return &JSONWriter{}, "json", nil
	case "sarif":
		return &SARIFWriter{}, "sarif", nil
	case "markdown", "md":
		return &MarkdownWriter{}, "md", nil
	default:
		return nil, "", fmt.Errorf("unsupported output format: %s", format)
	}
}

// Emit writes one artifact per requested format into dir, named
// review.<ext>. Every format is attempted even when an earlier one fails;
// the combined error reports what could not be written.
func Emit(report *review.Report, formats []string, dir string, log zerolog.Logger) error {
	var errs []error
	for _, format := range formats {
		path, err := emitOne(report, format, dir)
		if err != nil {
			log.Error().Err(err).Str("format", format).Msg("writing report artifact failed")
			errs = append(errs, fmt.Errorf("%s: %w", format, err))
			continue
		}
		log.Info().Str("format", format).Str("path", path).Msg("wrote report artifact")
	}
	return errors.Join(errs...)
}

func emitOne(report *review.Report, format, dir string) (string, error) {
	writer, ext, err := ForFormat(format)
	if err != nil {
		return "", err
	}
	if dir == "" {
		dir = "."
	}
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("creating output directory: %w", err)
	}
	path := filepath.Join(dir, "review."+ext)
	f, err := os.Create(path)
	if err != nil {
		return "", fmt.Errorf("creating output file: %w", err)
	}
	defer f.Close()
	if err := writer.Write(f, report); err != nil {
		return "", err
	}
	return path, nil
}
