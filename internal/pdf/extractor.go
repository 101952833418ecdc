// Package pdf extracts searchable text from uploaded PDFs by shelling
// out to poppler's pdftotext. Extraction is best-effort: a scanned PDF
// with no text layer simply yields nothing, and OCR is a concern of
// whatever produced the file, not of this service.
package pdf

import (
	"bytes"
	"context"
	"fmt"
	"os/exec"
	"strings"
)

// CommandRunner executes an external command and returns its stdout.
type CommandRunner interface {
	Run(ctx context.Context, name string, args ...string) ([]byte, error)
}

type execRunner struct{}

func (execRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	var stdout bytes.Buffer
	cmd := exec.CommandContext(ctx, name, args...)
	cmd.Stdout = &stdout
	if err := cmd.Run(); err != nil {
		return nil, err
	}
	return stdout.Bytes(), nil
}

// Extractor pulls plain text out of PDF files.
type Extractor struct {
	runner CommandRunner
}

// NewExtractor creates an extractor using the system pdftotext binary.
func NewExtractor() *Extractor {
	return &Extractor{runner: execRunner{}}
}

// NewExtractorWithRunner creates an extractor with a custom runner,
// for tests.
func NewExtractorWithRunner(runner CommandRunner) *Extractor {
	return &Extractor{runner: runner}
}

// ExtractText returns the text layer of the PDF at path. Whitespace is
// collapsed so the index doesn't store page-layout artifacts.
func (e *Extractor) ExtractText(ctx context.Context, path string) (string, error) {
	out, err := e.runner.Run(ctx, "pdftotext", "-layout", path, "-")
	if err != nil {
		return "", fmt.Errorf("pdftotext: %w", err)
	}
	return normalize(string(out)), nil
}

// normalize collapses runs of whitespace into single spaces.
func normalize(s string) string {
	return strings.Join(strings.Fields(s), " ")
}
