package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("uses defaults when the file is missing", func(t *testing.T) {
		cfg, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))

		require.NoError(t, err)
		assert.Equal(t, ":8181", cfg.Listen)
		assert.Equal(t, "jivetime", cfg.Database.Schema)
		assert.Equal(t, 15*time.Minute, cfg.Timeslot.Interval)
		assert.Equal(t, 5000, cfg.Recurrence.MaxOccurrences)
	})

	t.Run("file overrides defaults and env overrides file", func(t *testing.T) {
		// given
		path := filepath.Join(t.TempDir(), "application.yaml")
		yaml := "db:\n  host: db.internal\ntimeslot:\n  start: \"08:30\"\n  interval: 30m\ncalendar:\n  firstweekday: 1\n"
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0o600))
		t.Setenv("JIVETIME_DB_PORT", "6543")
		t.Setenv("JIVETIME_RECURRENCE_MAXOCCURRENCES", "100")

		// when
		cfg, err := Load(path)

		// then
		require.NoError(t, err)
		assert.Equal(t, "db.internal", cfg.Database.Host)
		assert.Equal(t, 6543, cfg.Database.Port)
		assert.Equal(t, "08:30", cfg.Timeslot.Start)
		assert.Equal(t, 30*time.Minute, cfg.Timeslot.Interval)
		assert.Equal(t, 10*time.Hour, cfg.Timeslot.Window)
		assert.Equal(t, 1, cfg.Calendar.FirstWeekday)
		assert.Equal(t, 100, cfg.Recurrence.MaxOccurrences)
	})
}
