package httputil

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestRespondJSON(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondJSON(rec, http.StatusCreated, map[string]string{"id": "abc"})

	assert.Equal(t, http.StatusCreated, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"id":"abc"}`, rec.Body.String())
}

func TestRespondError(t *testing.T) {
	rec := httptest.NewRecorder()
	RespondError(rec, http.StatusNotFound, "document x: not found")

	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Equal(t, "application/problem+json", rec.Header().Get("Content-Type"))

	var problem ProblemDetail
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &problem))
	assert.Equal(t, http.StatusNotFound, problem.Status)
	assert.Equal(t, "Not Found", problem.Title)
	assert.Equal(t, "document x: not found", problem.Detail)
}

func TestParseJSONLimitsBodySize(t *testing.T) {
	rec := httptest.NewRecorder()
	body := `{"content":"` + strings.Repeat("x", 2<<20) + `"}`
	req := httptest.NewRequest(http.MethodPost, "/", strings.NewReader(body))

	var dest map[string]string
	err := ParseJSON(rec, req, &dest)
	assert.Error(t, err)
}

func TestQueryInt(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?year=2023&bad=x", nil)

	year, err := QueryInt(req, "year")
	require.NoError(t, err)
	require.NotNil(t, year)
	assert.Equal(t, 2023, *year)

	missing, err := QueryInt(req, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = QueryInt(req, "bad")
	assert.Error(t, err)
}

func TestQueryBool(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/?favorite=true&bad=maybe", nil)

	fav, err := QueryBool(req, "favorite")
	require.NoError(t, err)
	require.NotNil(t, fav)
	assert.True(t, *fav)

	missing, err := QueryBool(req, "absent")
	require.NoError(t, err)
	assert.Nil(t, missing)

	_, err = QueryBool(req, "bad")
	assert.Error(t, err)
}

func TestUserIDContextRoundTrip(t *testing.T) {
	req := httptest.NewRequest(http.MethodGet, "/", nil)
	assert.Empty(t, GetUserID(req))

	req = WithUserID(req, "u1")
	assert.Equal(t, "u1", GetUserID(req))
}
