package google

import (
	"context"
	"os"
	"testing"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/jivetime/jivetime/internal/test_utils"
	log "github.com/sirupsen/logrus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/testcontainers/testcontainers-go"
	"github.com/testcontainers/testcontainers-go/modules/postgres"
	"golang.org/x/oauth2"
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

func setupTestRepository(t *testing.T) (context.Context, Repository, int) {
	t.Helper()
	bg := context.Background()
	db := openDb()
	t.Cleanup(func() {
		db.Close()
		require.NoError(t, pgContainer.Restore(bg))
	})
	groupId := test_utils.InsertGroup(t, bg, db, "Office", "UTC")
	return bg, NewRepository(db), groupId
}

func testToken() *oauth2.Token {
	return &oauth2.Token{
		AccessToken:  "access",
		RefreshToken: "refresh",
		Expiry:       time.Date(2024, 1, 1, 12, 0, 0, 0, time.UTC),
	}
}

func TestRepositoryImpl_TokenLifecycle(t *testing.T) {
	// given
	bg, repo, groupId := setupTestRepository(t)
	require.NoError(t, repo.StoreNonce(bg, groupId, "nonce-1"))

	// when
	pending, err := repo.GetToken(bg, groupId)
	require.NoError(t, err)
	storedFor, err := repo.StoreToken(bg, "nonce-1", testToken())
	require.NoError(t, err)
	token, err := repo.GetToken(bg, groupId)

	// then
	require.NoError(t, err)
	assert.Nil(t, pending)
	assert.Equal(t, groupId, storedFor)
	require.NotNil(t, token)
	assert.Equal(t, "access", token.AccessToken)
	assert.Equal(t, "refresh", token.RefreshToken)
	assert.True(t, testToken().Expiry.Equal(token.Expiry))
}

func TestRepositoryImpl_StoreTokenUnknownNonce(t *testing.T) {
	bg, repo, groupId := setupTestRepository(t)
	require.NoError(t, repo.StoreNonce(bg, groupId, "nonce-1"))

	_, err := repo.StoreToken(bg, "other", testToken())

	assert.ErrorIs(t, err, ErrUnknownState)
}

func TestRepositoryImpl_NewLoginDropsToken(t *testing.T) {
	// given
	bg, repo, groupId := setupTestRepository(t)
	require.NoError(t, repo.StoreNonce(bg, groupId, "nonce-1"))
	_, err := repo.StoreToken(bg, "nonce-1", testToken())
	require.NoError(t, err)
	require.NoError(t, repo.SetSyncCalendar(bg, groupId, "primary"))

	// when
	require.NoError(t, repo.StoreNonce(bg, groupId, "nonce-2"))

	// then
	token, err := repo.GetToken(bg, groupId)
	require.NoError(t, err)
	assert.Nil(t, token)
	targets, err := repo.ListSyncTargets(bg)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestRepositoryImpl_SyncTargets(t *testing.T) {
	// given
	bg, repo, groupId := setupTestRepository(t)

	// then
	assert.ErrorIs(t, repo.SetSyncCalendar(bg, groupId, "primary"), ErrUnauthenticated)

	// when
	require.NoError(t, repo.StoreNonce(bg, groupId, "nonce-1"))
	_, err := repo.StoreToken(bg, "nonce-1", testToken())
	require.NoError(t, err)
	require.NoError(t, repo.SetSyncCalendar(bg, groupId, "primary"))

	// then
	targets, err := repo.ListSyncTargets(bg)
	require.NoError(t, err)
	assert.Equal(t, []SyncTarget{{GroupId: groupId, CalendarId: "primary"}}, targets)

	// when
	require.NoError(t, repo.SetSyncCalendar(bg, groupId, ""))

	// then
	targets, err = repo.ListSyncTargets(bg)
	require.NoError(t, err)
	assert.Empty(t, targets)
}

func TestRepositoryImpl_Delete(t *testing.T) {
	bg, repo, groupId := setupTestRepository(t)
	require.NoError(t, repo.StoreNonce(bg, groupId, "nonce-1"))
	_, err := repo.StoreToken(bg, "nonce-1", testToken())
	require.NoError(t, err)

	require.NoError(t, repo.Delete(bg, groupId))

	token, err := repo.GetToken(bg, groupId)
	require.NoError(t, err)
	assert.Nil(t, token)
}
