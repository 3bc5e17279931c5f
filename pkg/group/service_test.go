package group

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestServiceImpl_Create(t *testing.T) {
	ctx := context.Background()

	t.Run("uses the default timezone", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), "Europe/Warsaw")

		created, err := service.Create(ctx, Group{Name: "  Team  "})

		require.NoError(t, err)
		assert.Equal(t, 1, created.Id)
		assert.Equal(t, "Team", created.Name)
		assert.Equal(t, "Europe/Warsaw", created.Timezone)
	})

	t.Run("rejects an unknown timezone", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), "UTC")

		_, err := service.Create(ctx, Group{Name: "Team", Timezone: "Mars/Olympus"})

		assert.ErrorIs(t, err, ErrInvalidTimezone)
	})

	t.Run("rejects an empty name", func(t *testing.T) {
		service := NewService(NewRepositoryStub(), "UTC")

		_, err := service.Create(ctx, Group{Name: " "})

		assert.ErrorIs(t, err, ErrInvalidGroup)
	})
}

func TestCurrent(t *testing.T) {
	_, err := Current(context.Background())
	assert.ErrorIs(t, err, ErrNoGroup)

	ctx := WithGroup(context.Background(), Group{Id: 3, Timezone: "UTC"})
	id, err := CurrentId(ctx)
	require.NoError(t, err)
	assert.Equal(t, 3, id)
	loc, err := CurrentLocation(ctx)
	require.NoError(t, err)
	assert.Equal(t, "UTC", loc.String())
}
