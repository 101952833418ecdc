package handler

import (
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestInfoAdvertisesFeaturesAndLanguages(t *testing.T) {
	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	h := NewMetaHandler(nil, nil, "1.0.0", logger)

	rec := httptest.NewRecorder()
	h.Info(rec, httptest.NewRequest(http.MethodGet, "/api/info", nil))

	require.Equal(t, http.StatusOK, rec.Code)

	var body struct {
		Name      string   `json:"name"`
		Version   string   `json:"version"`
		Features  []string `json:"features"`
		Languages []string `json:"languages"`
	}
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &body))

	assert.Equal(t, "helsejournal", body.Name)
	assert.Equal(t, "1.0.0", body.Version)
	assert.Equal(t, []string{"en", "no"}, body.Languages)
	assert.Contains(t, body.Features, "full_text_search")
	assert.Contains(t, body.Features, "notifications")
	assert.Contains(t, body.Features, "sharing")
}
