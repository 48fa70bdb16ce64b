package response

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestOK(t *testing.T) {
	rec := httptest.NewRecorder()
	OK(rec, []string{"a.pdf"})

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, "application/json", rec.Header().Get("Content-Type"))
	assert.JSONEq(t, `{"success":true,"data":["a.pdf"]}`, rec.Body.String())
}

func TestErrorWithData(t *testing.T) {
	rec := httptest.NewRecorder()
	ErrorWithData(rec, http.StatusBadGateway, "Error saving file order", map[string]string{"state": "ready"})

	var env Envelope
	require.NoError(t, json.Unmarshal(rec.Body.Bytes(), &env))
	assert.False(t, env.Success)
	assert.Equal(t, "Error saving file order", env.Error)
	assert.Equal(t, map[string]any{"state": "ready"}, env.Data)
}

func TestHelpersSetStatus(t *testing.T) {
	cases := map[int]func(http.ResponseWriter){
		http.StatusBadRequest:          func(w http.ResponseWriter) { BadRequest(w, "x") },
		http.StatusUnauthorized:        func(w http.ResponseWriter) { Unauthorized(w, "x") },
		http.StatusNotFound:            func(w http.ResponseWriter) { NotFound(w, "x") },
		http.StatusBadGateway:          func(w http.ResponseWriter) { BadGateway(w, "x") },
		http.StatusInternalServerError: InternalError,
	}
	for status, write := range cases {
		rec := httptest.NewRecorder()
		write(rec)
		assert.Equal(t, status, rec.Code)
	}
}
