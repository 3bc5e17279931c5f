package event

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jivetime/jivetime/internal/test_utils"
	"github.com/jivetime/jivetime/pkg/recurrence"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
)

var pgContainer *postgres.PostgresContainer
var openDb func() *pgxpool.Pool

func TestMain(m *testing.M) {
	pgContainer, openDb = test_utils.TestWithDB()
	code := m.Run()
	if err := testcontainers.TerminateContainer(pgContainer); err != nil {
		log.Errorf("failed to terminate container: %s", err)
	}
	os.Exit(code)
}

func setupTestRepository(t *testing.T) (context.Context, EventRepository, *pgxpool.Pool, int) {
	t.Helper()
	bg := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		require.NoError(t, pgContainer.Restore(bg))
	})
	groupId := test_utils.InsertGroup(t, bg, db, "Office", "UTC")
	return bg, NewEventRepo(db), db, groupId
}

func TestEventRepositoryImpl_StoreEvent(t *testing.T) {
	// given
	bg, repo, _, groupId := setupTestRepository(t)
	eventType, err := repo.StoreEventType(bg, EventType{Abbr: "mtg", Label: "Meeting"})
	require.NoError(t, err)

	// when
	stored, err := repo.StoreEvent(bg, groupId, Event{
		Uid:         uuid.New(),
		EventType:   eventType,
		Title:       "Standup",
		Description: "daily",
	})
	require.NoError(t, err)

	// then
	loaded, err := repo.GetEvent(bg, groupId, stored.Id)
	require.NoError(t, err)
	assert.Equal(t, stored.Uid, loaded.Uid)
	assert.Equal(t, "Standup", loaded.Title)
	assert.Equal(t, eventType, loaded.EventType)

	_, err = repo.GetEvent(bg, groupId+1, stored.Id)
	assert.ErrorIs(t, err, ErrEventNotFound)
}

func TestEventRepositoryImpl_StoreEventType(t *testing.T) {
	bg, repo, _, _ := setupTestRepository(t)
	_, err := repo.StoreEventType(bg, EventType{Abbr: "mtg", Label: "Meeting"})
	require.NoError(t, err)

	_, err = repo.StoreEventType(bg, EventType{Abbr: "mtg", Label: "Duplicate"})

	assert.ErrorIs(t, err, ErrEventTypeExists)
}

func TestEventRepositoryImpl_StoreOccurrences(t *testing.T) {
	bg, repo, db, groupId := setupTestRepository(t)
	eventTypeId := test_utils.InsertEventType(t, bg, db, "clas", "Class")
	eventId := test_utils.InsertEvent(t, bg, db, groupId, eventTypeId, "Yoga")
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	spans := []recurrence.Occurrence{
		{Start: start, End: start.Add(time.Hour)},
		{Start: start.AddDate(0, 0, 1), End: start.AddDate(0, 0, 1).Add(time.Hour)},
		{Start: start.AddDate(0, 0, 2), End: start.AddDate(0, 0, 2).Add(time.Hour)},
	}

	ids, err := repo.StoreOccurrences(bg, eventId, spans)

	require.NoError(t, err)
	require.Len(t, ids, 3)
	assert.Less(t, ids[0], ids[1])
	var count int
	require.NoError(t, db.QueryRow(bg, `SELECT count(*) FROM occurrence WHERE event_id = $1`, eventId).Scan(&count))
	assert.Equal(t, 3, count)

	t.Run("end before start violates the check", func(t *testing.T) {
		_, err := repo.StoreOccurrences(bg, eventId, []recurrence.Occurrence{{Start: start, End: start.Add(-time.Hour)}})

		assert.Error(t, err)
	})
}

func TestEventRepositoryImpl_WithTransaction(t *testing.T) {
	bg, repo, _, groupId := setupTestRepository(t)
	eventType, err := repo.StoreEventType(bg, EventType{Abbr: "mtg", Label: "Meeting"})
	require.NoError(t, err)
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)

	err = repo.WithTransaction(bg, func(tx EventRepository) error {
		stored, err := tx.StoreEvent(bg, groupId, Event{Uid: uuid.New(), EventType: eventType, Title: "Lost"})
		if err != nil {
			return err
		}
		_, err = tx.StoreOccurrences(bg, stored.Id, []recurrence.Occurrence{{Start: start, End: start}})
		return err
	})

	require.Error(t, err)
	events, err := repo.ListEvents(bg, groupId)
	require.NoError(t, err)
	assert.Empty(t, events)
}

func TestEventRepositoryImpl_DeleteEvent(t *testing.T) {
	bg, repo, db, groupId := setupTestRepository(t)
	eventTypeId := test_utils.InsertEventType(t, bg, db, "clas", "Class")
	eventId := test_utils.InsertEvent(t, bg, db, groupId, eventTypeId, "Yoga")
	start := time.Date(2024, 1, 1, 9, 0, 0, 0, time.UTC)
	_, err := repo.StoreOccurrences(bg, eventId, []recurrence.Occurrence{
		{Start: start, End: start.Add(time.Hour)},
		{Start: start.Add(24 * time.Hour), End: start.Add(25 * time.Hour)},
	})
	require.NoError(t, err)
	_, err = repo.StoreNote(bg, Note{EventId: eventId, Text: "mat", CreatedAt: start})
	require.NoError(t, err)

	removed, err := repo.DeleteEvent(bg, groupId, eventId)

	require.NoError(t, err)
	assert.Equal(t, 2, removed)
	notes, err := repo.ListNotes(bg, eventId)
	require.NoError(t, err)
	assert.Empty(t, notes)
	_, err = repo.DeleteEvent(bg, groupId, eventId)
	assert.ErrorIs(t, err, ErrEventNotFound)
}
