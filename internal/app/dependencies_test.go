package app

import (
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/gorilla/mux"
	"github.com/jivetime/jivetime/internal/config"
	"github.com/jivetime/jivetime/pkg/timeslot"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTimeslotLayout(t *testing.T) {
	tests := []struct {
		name    string
		cfg     config.Timeslot
		want    timeslot.Layout
		wantErr bool
	}{
		{
			name: "configured layout",
			cfg:  config.Timeslot{Start: "08:30", Window: 9 * time.Hour, Interval: 30 * time.Minute, MinColumns: 2},
			want: timeslot.Layout{Start: 8*time.Hour + 30*time.Minute, Window: 9 * time.Hour, Interval: 30 * time.Minute, MinColumns: 2},
		},
		{
			name:    "start is not a clock time",
			cfg:     config.Timeslot{Start: "9am", Window: time.Hour, Interval: 15 * time.Minute},
			wantErr: true,
		},
		{
			name:    "zero interval",
			cfg:     config.Timeslot{Start: "09:00", Window: time.Hour},
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			layout, err := timeslotLayout(tt.cfg)
			if tt.wantErr {
				assert.ErrorIs(t, err, timeslot.ErrInvalidLayout)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, layout)
		})
	}
}

func TestSetupMiddleware_PassesStatusThrough(t *testing.T) {
	r := mux.NewRouter()
	SetupMiddleware(r)
	r.HandleFunc("/teapot", func(w http.ResponseWriter, _ *http.Request) {
		w.WriteHeader(http.StatusTeapot)
	})

	rr := httptest.NewRecorder()
	r.ServeHTTP(rr, httptest.NewRequest(http.MethodGet, "/teapot", nil))

	assert.Equal(t, http.StatusTeapot, rr.Code)
}
