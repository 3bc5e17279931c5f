package google

import (
	"context"
	"slices"
	"sync"

	"golang.org/x/oauth2"
)

type storedAuth struct {
	nonce      string
	token      *oauth2.Token
	calendarId string
}

type RepositoryStub struct {
	mu    sync.RWMutex
	auths map[int]storedAuth
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{auths: make(map[int]storedAuth)}
}

func (r *RepositoryStub) StoreNonce(ctx context.Context, groupId int, nonce string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.auths[groupId] = storedAuth{nonce: nonce}
	return nil
}

func (r *RepositoryStub) StoreToken(ctx context.Context, nonce string, token *oauth2.Token) (int, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	for groupId, auth := range r.auths {
		if auth.nonce == nonce {
			auth.token = token
			r.auths[groupId] = auth
			return groupId, nil
		}
	}
	return 0, ErrUnknownState
}

func (r *RepositoryStub) GetToken(ctx context.Context, groupId int) (*oauth2.Token, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.auths[groupId].token, nil
}

func (r *RepositoryStub) Delete(ctx context.Context, groupId int) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	delete(r.auths, groupId)
	return nil
}

func (r *RepositoryStub) SetSyncCalendar(ctx context.Context, groupId int, calendarId string) error {
	r.mu.Lock()
	defer r.mu.Unlock()
	auth, ok := r.auths[groupId]
	if !ok || auth.token == nil {
		return ErrUnauthenticated
	}
	auth.calendarId = calendarId
	r.auths[groupId] = auth
	return nil
}

func (r *RepositoryStub) ListSyncTargets(ctx context.Context) ([]SyncTarget, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	targets := make([]SyncTarget, 0)
	for groupId, auth := range r.auths {
		if auth.token != nil && auth.calendarId != "" {
			targets = append(targets, SyncTarget{GroupId: groupId, CalendarId: auth.calendarId})
		}
	}
	slices.SortFunc(targets, func(a, b SyncTarget) int { return a.GroupId - b.GroupId })
	return targets, nil
}

// Nonce returns the pending authorization nonce of a group.
func (r *RepositoryStub) Nonce(groupId int) string {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return r.auths[groupId].nonce
}
