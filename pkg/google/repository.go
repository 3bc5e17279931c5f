package google

import (
	"context"
	"errors"
	"fmt"
	"time"

	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"
	log "github.com/sirupsen/logrus"
	"golang.org/x/oauth2"
)

var ErrUnknownState = errors.New("unknown oauth state")

// SyncTarget is a group whose occurrences are pushed to a Google calendar on schedule.
type SyncTarget struct {
	GroupId    int
	CalendarId string
}

type Repository interface {
	// StoreNonce starts a new authorization for the group, dropping any previous token.
	StoreNonce(ctx context.Context, groupId int, nonce string) error
	// StoreToken saves the token for the authorization started with nonce and returns its group.
	StoreToken(ctx context.Context, nonce string, token *oauth2.Token) (int, error)
	// GetToken returns nil when the group has not completed authorization.
	GetToken(ctx context.Context, groupId int) (*oauth2.Token, error)
	Delete(ctx context.Context, groupId int) error
	SetSyncCalendar(ctx context.Context, groupId int, calendarId string) error
	ListSyncTargets(ctx context.Context) ([]SyncTarget, error)
}

type RepositoryImpl struct {
	db *pgxpool.Pool
}

func NewRepository(db *pgxpool.Pool) *RepositoryImpl {
	return &RepositoryImpl{db: db}
}

func (r *RepositoryImpl) StoreNonce(ctx context.Context, groupId int, nonce string) error {
	query := `INSERT INTO google_calendar_auth (group_id, nonce) VALUES ($1, $2)
		ON CONFLICT (group_id) DO UPDATE
		SET nonce = EXCLUDED.nonce, access_token = NULL, refresh_token = NULL, expiry = NULL, sync_calendar_id = NULL`
	_, err := r.db.Exec(ctx, query, groupId, nonce)
	if err != nil {
		err := fmt.Errorf("failed to store Google auth nonce for group %d: %w", groupId, err)
		log.Error(err)
		return err
	}
	return nil
}

func (r *RepositoryImpl) StoreToken(ctx context.Context, nonce string, token *oauth2.Token) (int, error) {
	query := `UPDATE google_calendar_auth SET access_token = $1, refresh_token = $2, expiry = $3
		WHERE nonce = $4 RETURNING group_id`
	var groupId int
	err := r.db.QueryRow(ctx, query, token.AccessToken, token.RefreshToken, token.Expiry.Unix(), nonce).Scan(&groupId)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return 0, ErrUnknownState
		}
		err := fmt.Errorf("failed to store Google auth token: %w", err)
		log.Error(err)
		return 0, err
	}
	return groupId, nil
}

func (r *RepositoryImpl) GetToken(ctx context.Context, groupId int) (*oauth2.Token, error) {
	query := `SELECT access_token, COALESCE(refresh_token, ''), COALESCE(expiry, 0)
		FROM google_calendar_auth WHERE group_id = $1 AND access_token IS NOT NULL`
	var token oauth2.Token
	var expiry int64
	err := r.db.QueryRow(ctx, query, groupId).Scan(&token.AccessToken, &token.RefreshToken, &expiry)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, fmt.Errorf("unable to retrieve Google auth token: %w", err)
	}
	token.Expiry = time.Unix(expiry, 0)
	return &token, nil
}

func (r *RepositoryImpl) Delete(ctx context.Context, groupId int) error {
	_, err := r.db.Exec(ctx, `DELETE FROM google_calendar_auth WHERE group_id = $1`, groupId)
	if err != nil {
		err := fmt.Errorf("failed to delete Google auth for group %d: %w", groupId, err)
		log.Error(err)
		return err
	}
	return nil
}

// SetSyncCalendar stores the calendar used by the scheduled export. An empty calendarId
// disables it. Returns ErrUnauthenticated when the group has no token.
func (r *RepositoryImpl) SetSyncCalendar(ctx context.Context, groupId int, calendarId string) error {
	query := `UPDATE google_calendar_auth SET sync_calendar_id = NULLIF($1, '')
		WHERE group_id = $2 AND access_token IS NOT NULL`
	tag, err := r.db.Exec(ctx, query, calendarId, groupId)
	if err != nil {
		err := fmt.Errorf("failed to set sync calendar for group %d: %w", groupId, err)
		log.Error(err)
		return err
	}
	if tag.RowsAffected() == 0 {
		return ErrUnauthenticated
	}
	return nil
}

func (r *RepositoryImpl) ListSyncTargets(ctx context.Context) ([]SyncTarget, error) {
	query := `SELECT group_id, sync_calendar_id FROM google_calendar_auth
		WHERE sync_calendar_id IS NOT NULL AND access_token IS NOT NULL ORDER BY group_id`
	rows, err := r.db.Query(ctx, query)
	if err != nil {
		err := fmt.Errorf("could not query Google sync targets: %w", err)
		log.Error(err)
		return nil, err
	}
	defer rows.Close()

	targets := make([]SyncTarget, 0)
	for rows.Next() {
		var t SyncTarget
		if err := rows.Scan(&t.GroupId, &t.CalendarId); err != nil {
			return nil, fmt.Errorf("error scanning Google sync target: %w", err)
		}
		targets = append(targets, t)
	}
	return targets, rows.Err()
}
