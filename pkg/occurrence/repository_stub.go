package occurrence

import (
	"context"
	"slices"
	"sync"
	"time"
)

type RepositoryStub struct {
	mu          sync.RWMutex
	occurrences map[int]Occurrence
	groupIds    map[int]int // occurrence id -> group id
	nextId      int
}

func NewRepositoryStub() *RepositoryStub {
	return &RepositoryStub{
		occurrences: make(map[int]Occurrence),
		groupIds:    make(map[int]int),
		nextId:      1,
	}
}

// Add stores o for groupId and returns it with its new id.
func (r *RepositoryStub) Add(groupId int, o Occurrence) Occurrence {
	r.mu.Lock()
	defer r.mu.Unlock()
	o.Id = r.nextId
	r.nextId++
	r.occurrences[o.Id] = o
	r.groupIds[o.Id] = groupId
	return o
}

func (r *RepositoryStub) Get(ctx context.Context, groupId int, id int) (Occurrence, error) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	o, ok := r.occurrences[id]
	if !ok || r.groupIds[id] != groupId {
		return Occurrence{}, ErrOccurrenceNotFound
	}
	return o, nil
}

func (r *RepositoryStub) ListForEvent(ctx context.Context, groupId int, eventId int) ([]Occurrence, error) {
	return r.filter(groupId, func(o Occurrence) bool { return o.EventId == eventId }), nil
}

func (r *RepositoryStub) FindInRange(ctx context.Context, groupId int, from, to time.Time) ([]Occurrence, error) {
	return r.filter(groupId, func(o Occurrence) bool { return o.Overlaps(from, to) }), nil
}

func (r *RepositoryStub) filter(groupId int, keep func(Occurrence) bool) []Occurrence {
	r.mu.RLock()
	defer r.mu.RUnlock()
	result := make([]Occurrence, 0)
	for id, o := range r.occurrences {
		if r.groupIds[id] == groupId && keep(o) {
			result = append(result, o)
		}
	}
	slices.SortFunc(result, func(a, b Occurrence) int {
		if c := a.StartTime.Compare(b.StartTime); c != 0 {
			return c
		}
		if c := a.EndTime.Compare(b.EndTime); c != 0 {
			return c
		}
		return a.Id - b.Id
	})
	return result
}

func (r *RepositoryStub) Update(ctx context.Context, groupId int, o Occurrence) (Occurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	stored, ok := r.occurrences[o.Id]
	if !ok || r.groupIds[o.Id] != groupId {
		return Occurrence{}, ErrOccurrenceNotFound
	}
	stored.StartTime = o.StartTime
	stored.EndTime = o.EndTime
	r.occurrences[o.Id] = stored
	return stored, nil
}

func (r *RepositoryStub) Delete(ctx context.Context, groupId int, id int) (Occurrence, error) {
	r.mu.Lock()
	defer r.mu.Unlock()
	o, ok := r.occurrences[id]
	if !ok || r.groupIds[id] != groupId {
		return Occurrence{}, ErrOccurrenceNotFound
	}
	delete(r.occurrences, id)
	delete(r.groupIds, id)
	return o, nil
}

func (r *RepositoryStub) Reset() {
	r.mu.Lock()
	defer r.mu.Unlock()
	r.occurrences = make(map[int]Occurrence)
	r.groupIds = make(map[int]int)
	r.nextId = 1
}
