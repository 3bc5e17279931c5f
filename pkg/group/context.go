package group

import (
	"context"
	"errors"
	"time"

	log "github.com/sirupsen/logrus"
)

type contextKey string

const GroupKey contextKey = "group"

var ErrNoGroup = errors.New("event group not present in context")

func WithGroup(ctx context.Context, g Group) context.Context {
	return context.WithValue(ctx, GroupKey, g)
}

// Current returns the group resolved for this request. Returns ErrNoGroup if absent.
func Current(ctx context.Context) (Group, error) {
	g, ok := ctx.Value(GroupKey).(Group)
	if !ok {
		log.Trace("group not found in context")
		return Group{}, ErrNoGroup
	}
	return g, nil
}

func CurrentId(ctx context.Context) (int, error) {
	g, err := Current(ctx)
	if err != nil {
		return 0, err
	}
	return g.Id, nil
}

// CurrentLocation is the timezone of the current group.
func CurrentLocation(ctx context.Context) (*time.Location, error) {
	g, err := Current(ctx)
	if err != nil {
		return nil, err
	}
	return g.Location()
}
