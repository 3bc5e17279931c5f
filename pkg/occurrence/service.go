package occurrence

import (
	"context"
	"fmt"
	"time"

	"github.com/jivetime/jivetime/internal/event_bus"
	"github.com/jivetime/jivetime/pkg/group"
	log "github.com/sirupsen/logrus"
)

type Service interface {
	Get(ctx context.Context, id int) (Occurrence, error)
	ListForEvent(ctx context.Context, eventId int) ([]Occurrence, error)
	FindInRange(ctx context.Context, from, to time.Time) ([]Occurrence, error)
	Update(ctx context.Context, o Occurrence) (Occurrence, error)
	Delete(ctx context.Context, id int) error
}

type ServiceImpl struct {
	repo     Repository
	eventBus *event_bus.EventBus
}

func NewService(repo Repository, eventBus *event_bus.EventBus) *ServiceImpl {
	return &ServiceImpl{repo: repo, eventBus: eventBus}
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Occurrence, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return Occurrence{}, fmt.Errorf("failed to get current group: %w", err)
	}
	return s.repo.Get(ctx, groupId, id)
}

func (s *ServiceImpl) ListForEvent(ctx context.Context, eventId int) ([]Occurrence, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current group: %w", err)
	}
	return s.repo.ListForEvent(ctx, groupId, eventId)
}

func (s *ServiceImpl) FindInRange(ctx context.Context, from, to time.Time) ([]Occurrence, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return nil, fmt.Errorf("failed to get current group: %w", err)
	}
	if !to.After(from) {
		return nil, fmt.Errorf("%w: range end %s is not after its start %s", ErrInvalidOccurrence, to, from)
	}
	return s.repo.FindInRange(ctx, groupId, from, to)
}

// Update moves an occurrence to new start and end times.
func (s *ServiceImpl) Update(ctx context.Context, o Occurrence) (Occurrence, error) {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return Occurrence{}, fmt.Errorf("failed to get current group: %w", err)
	}
	if err := o.validate(); err != nil {
		return Occurrence{}, err
	}
	updated, err := s.repo.Update(ctx, groupId, o)
	if err != nil {
		return Occurrence{}, err
	}

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.OccurrenceUpdatedType, event_bus.OccurrenceUpdated{
		GroupId: groupId,
		EventId: updated.EventId,
		Occurrence: event_bus.OccurrenceSpan{
			Id:        updated.Id,
			StartTime: updated.StartTime,
			EndTime:   updated.EndTime,
		},
	}))
	if err != nil {
		log.Warnf("failed to publish occurrence update %d: %v", updated.Id, err)
	}
	return updated, nil
}

func (s *ServiceImpl) Delete(ctx context.Context, id int) error {
	groupId, err := group.CurrentId(ctx)
	if err != nil {
		return fmt.Errorf("failed to get current group: %w", err)
	}
	deleted, err := s.repo.Delete(ctx, groupId, id)
	if err != nil {
		return err
	}
	log.Debugf("deleted occurrence %d of event %d", deleted.Id, deleted.EventId)

	err = s.eventBus.Publish(event_bus.NewEvent(ctx, event_bus.OccurrenceDeletedType, event_bus.OccurrenceDeleted{
		GroupId:      groupId,
		EventId:      deleted.EventId,
		OccurrenceId: deleted.Id,
	}))
	if err != nil {
		log.Warnf("failed to publish occurrence deletion %d: %v", deleted.Id, err)
	}
	return nil
}
