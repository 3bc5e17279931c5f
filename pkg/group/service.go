package group

import (
	"context"
	"fmt"
	"strings"

	log "github.com/sirupsen/logrus"
)

const maxNameLength = 255

type Service interface {
	Create(ctx context.Context, g Group) (Group, error)
	Get(ctx context.Context, id int) (Group, error)
	List(ctx context.Context) ([]Group, error)
}

type ServiceImpl struct {
	repo            Repository
	defaultTimezone string
}

// NewService creates the group service. Groups created without a timezone get defaultTimezone.
func NewService(repo Repository, defaultTimezone string) *ServiceImpl {
	return &ServiceImpl{repo: repo, defaultTimezone: defaultTimezone}
}

func (s *ServiceImpl) Create(ctx context.Context, g Group) (Group, error) {
	g.Name = strings.TrimSpace(g.Name)
	if g.Name == "" || len(g.Name) > maxNameLength {
		return Group{}, fmt.Errorf("%w: name must have 1 to %d characters", ErrInvalidGroup, maxNameLength)
	}
	if g.Timezone == "" {
		g.Timezone = s.defaultTimezone
	}
	if _, err := g.Location(); err != nil {
		return Group{}, err
	}
	created, err := s.repo.Create(ctx, g)
	if err != nil {
		return Group{}, err
	}
	log.Debugf("created event group %d (%s, %s)", created.Id, created.Name, created.Timezone)
	return created, nil
}

func (s *ServiceImpl) Get(ctx context.Context, id int) (Group, error) {
	return s.repo.Get(ctx, id)
}

func (s *ServiceImpl) List(ctx context.Context) ([]Group, error) {
	return s.repo.List(ctx)
}
