package google

import (
	"context"
	"fmt"
	"time"

	"github.com/jivetime/jivetime/pkg/group"
	"github.com/jivetime/jivetime/pkg/occurrence"
	log "github.com/sirupsen/logrus"
)

// ClientProvider returns a Calendar API client for a group, or ErrUnauthenticated.
type ClientProvider func(ctx context.Context, groupId int) (CalendarClient, error)

type OccurrenceFinder interface {
	FindInRange(ctx context.Context, from, to time.Time) ([]occurrence.Occurrence, error)
}

type Service interface {
	ListCalendars(ctx context.Context) ([]CalendarItem, error)
	// Export pushes the current group's occurrences overlapping [from, to) into calendarId.
	// Occurrences exported before are updated in place.
	Export(ctx context.Context, calendarId string, from, to time.Time) (int, error)
	SetSyncCalendar(ctx context.Context, calendarId string) error
}

type ServiceImpl struct {
	clients     ClientProvider
	repo        Repository
	occurrences OccurrenceFinder
}

func NewService(clients ClientProvider, repo Repository, occurrences OccurrenceFinder) *ServiceImpl {
	return &ServiceImpl{
		clients:     clients,
		repo:        repo,
		occurrences: occurrences,
	}
}

func (s *ServiceImpl) ListCalendars(ctx context.Context) ([]CalendarItem, error) {
	client, err := s.client(ctx)
	if err != nil {
		return nil, err
	}
	return client.ListCalendars(ctx)
}

func (s *ServiceImpl) Export(ctx context.Context, calendarId string, from, to time.Time) (int, error) {
	client, err := s.client(ctx)
	if err != nil {
		return 0, err
	}
	occurrences, err := s.occurrences.FindInRange(ctx, from, to)
	if err != nil {
		return 0, err
	}

	for i, o := range occurrences {
		if err := client.UpsertEvent(ctx, calendarId, toGoogleEvent(o)); err != nil {
			log.Errorf("Google export stopped after %d of %d occurrences: %v", i, len(occurrences), err)
			return i, err
		}
	}
	log.Debugf("exported %d occurrences to Google calendar %s", len(occurrences), calendarId)
	return len(occurrences), nil
}

func (s *ServiceImpl) SetSyncCalendar(ctx context.Context, calendarId string) error {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current group: %w", err)
	}
	return s.repo.SetSyncCalendar(ctx, groupId, calendarId)
}

func (s *ServiceImpl) client(ctx context.Context) (CalendarClient, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current group: %w", err)
	}
	return s.clients(ctx, groupId)
}
