package rest

import (
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gorilla/mux"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestWriteError(t *testing.T) {
	rr := httptest.NewRecorder()

	WriteError(rr, http.StatusBadRequest, "Invalid recurrence", "count must be positive")

	assert.Equal(t, http.StatusBadRequest, rr.Code)
	assert.Equal(t, "application/json", rr.Header().Get("Content-Type"))
	var body ErrorResponse
	require.NoError(t, json.NewDecoder(rr.Body).Decode(&body))
	assert.Equal(t, ErrorResponse{Error: "Invalid recurrence", Details: "count must be positive"}, body)
}

func TestIntVar(t *testing.T) {
	req := mux.SetURLVars(httptest.NewRequest(http.MethodGet, "/", nil), map[string]string{"eventId": "42", "bad": "x"})

	id, err := IntVar(req, "eventId")
	require.NoError(t, err)
	assert.Equal(t, 42, id)

	_, err = IntVar(req, "bad")
	assert.Error(t, err)
	_, err = IntVar(req, "missing")
	assert.Error(t, err)
}

func TestTimeRange(t *testing.T) {
	tests := []struct {
		name  string
		query string
		valid bool
	}{
		{"valid", "from=2024-01-01T00:00:00Z&to=2024-01-02T00:00:00Z", true},
		{"missing to", "from=2024-01-01T00:00:00Z", false},
		{"not rfc3339", "from=2024-01-01&to=2024-01-02", false},
		{"reversed", "from=2024-01-02T00:00:00Z&to=2024-01-01T00:00:00Z", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			req := httptest.NewRequest(http.MethodGet, "/?"+tt.query, nil)

			_, _, err := TimeRange(req)

			if tt.valid {
				assert.NoError(t, err)
			} else {
				assert.ErrorIs(t, err, ErrInvalidRange)
			}
		})
	}
}
