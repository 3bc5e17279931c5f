package rest

import (
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	log "github.com/sirupsen/logrus"
)

var ErrInvalidRange = errors.New("invalid time range")

type ErrorResponse struct {
	Error   string `json:"error"`
	Details string `json:"details,omitempty"`
}

// WriteJSON sets the content type, writes status and encodes body.
func WriteJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if body == nil {
		return
	}
	if err := json.NewEncoder(w).Encode(body); err != nil {
		log.Errorf("failed to encode response: %v", err)
	}
}

func WriteError(w http.ResponseWriter, status int, message string, details string) {
	WriteJSON(w, status, ErrorResponse{Error: message, Details: details})
}

// IntVar reads a numeric path variable.
func IntVar(r *http.Request, name string) (int, error) {
	raw, ok := mux.Vars(r)[name]
	if !ok {
		return 0, fmt.Errorf("missing path variable %s", name)
	}
	value, err := strconv.Atoi(raw)
	if err != nil {
		return 0, fmt.Errorf("path variable %s must be a number, got %q", name, raw)
	}
	return value, nil
}

// TimeRange parses the RFC3339 "from" and "to" query parameters. to must be after from.
func TimeRange(r *http.Request) (time.Time, time.Time, error) {
	from, err := time.Parse(time.RFC3339, r.URL.Query().Get("from"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: from must be in RFC3339 format", ErrInvalidRange)
	}
	to, err := time.Parse(time.RFC3339, r.URL.Query().Get("to"))
	if err != nil {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be in RFC3339 format", ErrInvalidRange)
	}
	if !to.After(from) {
		return time.Time{}, time.Time{}, fmt.Errorf("%w: to must be after from", ErrInvalidRange)
	}
	return from, to, nil
}
