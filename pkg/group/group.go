package group

import (
	"errors"
	"fmt"
	"time"
	_ "time/tzdata"
)

var ErrGroupNotFound = errors.New("event group not found")
var ErrInvalidGroup = errors.New("invalid event group")
var ErrInvalidTimezone = errors.New("invalid timezone")

// Group scopes events and calendar views. All day boundaries of a group are computed
// in its Timezone.
type Group struct {
	Id        int
	Name      string
	Timezone  string
	CreatedAt time.Time
}

func (g Group) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(g.Timezone)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", ErrInvalidTimezone, g.Timezone)
	}
	return loc, nil
}
