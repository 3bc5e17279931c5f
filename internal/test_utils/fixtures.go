package test_utils

import (
	"context"
	"testing"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/stretchr/testify/require"
)

// InsertGroup stores an event group directly, bypassing the group package.
func InsertGroup(t *testing.T, ctx context.Context, db *pgxpool.Pool, name, timezone string) int {
	t.Helper()
	var id int
	err := db.QueryRow(ctx, `INSERT INTO event_group (name, timezone) VALUES ($1, $2) RETURNING id`, name, timezone).Scan(&id)
	require.NoError(t, err)
	return id
}

func InsertEventType(t *testing.T, ctx context.Context, db *pgxpool.Pool, abbr, label string) int {
	t.Helper()
	var id int
	err := db.QueryRow(ctx, `INSERT INTO event_type (abbr, label) VALUES ($1, $2) RETURNING id`, abbr, label).Scan(&id)
	require.NoError(t, err)
	return id
}

func InsertEvent(t *testing.T, ctx context.Context, db *pgxpool.Pool, groupId, eventTypeId int, title string) int {
	t.Helper()
	var id int
	err := db.QueryRow(ctx,
		`INSERT INTO event (uid, group_id, event_type_id, title, description) VALUES ($1, $2, $3, $4, '') RETURNING id`,
		uuid.NewString(), groupId, eventTypeId, title,
	).Scan(&id)
	require.NoError(t, err)
	return id
}
