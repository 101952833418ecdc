package pdf

import (
	"context"
	"errors"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type fakeRunner struct {
	out  []byte
	err  error
	name string
	args []string
}

func (r *fakeRunner) Run(ctx context.Context, name string, args ...string) ([]byte, error) {
	r.name = name
	r.args = args
	return r.out, r.err
}

func TestExtractText(t *testing.T) {
	runner := &fakeRunner{out: []byte("Prøvesvar\n\n  Hemoglobin   14.2\n")}
	extractor := NewExtractorWithRunner(runner)

	text, err := extractor.ExtractText(context.Background(), "/data/scan.pdf")
	require.NoError(t, err)

	assert.Equal(t, "Prøvesvar Hemoglobin 14.2", text)
	assert.Equal(t, "pdftotext", runner.name)
	assert.Equal(t, []string{"-layout", "/data/scan.pdf", "-"}, runner.args)
}

func TestExtractTextEmptyLayer(t *testing.T) {
	extractor := NewExtractorWithRunner(&fakeRunner{out: []byte("   \n\n ")})

	text, err := extractor.ExtractText(context.Background(), "/data/scan.pdf")
	require.NoError(t, err)
	assert.Empty(t, text)
}

func TestExtractTextCommandFailure(t *testing.T) {
	extractor := NewExtractorWithRunner(&fakeRunner{err: errors.New("exit status 1")})

	_, err := extractor.ExtractText(context.Background(), "/data/broken.pdf")
	require.Error(t, err)
}
