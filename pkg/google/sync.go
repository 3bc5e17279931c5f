package google

import (
	"context"
	"fmt"

	"github.com/jivetime/jivetime/internal/utils"
	"github.com/jivetime/jivetime/pkg/group"
	"github.com/robfig/cron/v3"
	log "github.com/sirupsen/logrus"
)

type GroupGetter interface {
	Get(ctx context.Context, id int) (group.Group, error)
}

// Syncer periodically exports the upcoming days of every group that chose a sync calendar.
type Syncer struct {
	cron    *cron.Cron
	repo    Repository
	groups  GroupGetter
	service Service
	clock   utils.Clock
	days    int
}

func NewSyncer(repo Repository, groups GroupGetter, service Service, clock utils.Clock, days int) *Syncer {
	return &Syncer{
		cron:    cron.New(),
		repo:    repo,
		groups:  groups,
		service: service,
		clock:   clock,
		days:    days,
	}
}

// Start schedules SyncAll with a standard five field cron expression.
// An empty schedule leaves the syncer idle.
func (s *Syncer) Start(schedule string) error {
	if schedule == "" {
		log.Info("Google calendar sync disabled")
		return nil
	}
	_, err := s.cron.AddFunc(schedule, func() {
		s.SyncAll(context.Background())
	})
	if err != nil {
		return fmt.Errorf("invalid Google sync schedule %q: %w", schedule, err)
	}
	s.cron.Start()
	log.Infof("Google calendar sync scheduled: %s", schedule)
	return nil
}

// Stop waits for a running sync to finish.
func (s *Syncer) Stop() {
	<-s.cron.Stop().Done()
}

// SyncAll exports each target group's occurrences from the start of its current day
// for the configured number of days. Returns the number of groups synced.
func (s *Syncer) SyncAll(ctx context.Context) int {
	targets, err := s.repo.ListSyncTargets(ctx)
	if err != nil {
		return 0
	}
	synced := 0
	for _, target := range targets {
		if err := s.sync(ctx, target); err != nil {
			log.Warnf("Google sync of group %d failed: %v", target.GroupId, err)
			continue
		}
		synced++
	}
	log.Debugf("Google sync finished for %d of %d groups", synced, len(targets))
	return synced
}

func (s *Syncer) sync(ctx context.Context, target SyncTarget) error {
	g, err := s.groups.Get(ctx, target.GroupId)
	if err != nil {
		return err
	}
	loc, err := g.Location()
	if err != nil {
		return err
	}
	from := utils.Today(s.clock, loc)
	to := from.AddDate(0, 0, s.days)
	_, err = s.service.Export(group.WithGroup(ctx, g), target.CalendarId, from, to)
	return err
}
