package group

import (
	"context"
	"slices"
	"strings"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu     sync.RWMutex
	groups map[int]Group
	nextId int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{groups: make(map[int]Group), nextId: 1}
}

func (r *RepositoryStub) Create(ctx context.Context, g Group) (Group, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	g.Id = r.nextId
	g.CreatedAt = time.Now()
	r.nextId++
	r.groups[g.Id] = g
	return g, nil
}

func (r *RepositoryStub) Get(ctx context.Context, id int) (Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	g, ok := r.groups[id]
	if !ok {
		return Group{}, ErrGroupNotFound
	}
	return g, nil
}

func (r *RepositoryStub) List(ctx context.Context) ([]Group, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	groups := make([]Group, 0, len(r.groups))
	for _, g := range r.groups {
		groups = append(groups, g)
	}
	slices.SortFunc(groups, func(a, b Group) int {
		if c := strings.Compare(a.Name, b.Name); c != 0 {
			return c
		}
		return a.Id - b.Id
	})
	return groups, nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.groups = make(map[int]Group)
	r.nextId = 1
}
