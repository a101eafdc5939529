package db_test

import (
	"context"
	"testing"

	"github.com/geocoder89/devevents/internal/db"
	"github.com/geocoder89/devevents/internal/domain/event"
	"github.com/geocoder89/devevents/internal/repo"
	"github.com/geocoder89/devevents/internal/store/memory"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSeedEvents_IsRepeatable(t *testing.T) {
	ctx := context.Background()
	events := repo.NewEventsRepo(memory.New(repo.Schema()), nil)

	n, err := db.SeedEvents(ctx, events, db.SampleEvents)
	require.NoError(t, err)
	assert.Equal(t, len(db.SampleEvents), n)

	n, err = db.SeedEvents(ctx, events, db.SampleEvents)
	require.NoError(t, err)
	assert.Zero(t, n)

	gophercon, err := events.GetBySlug(ctx, "gophercon-2025")
	require.NoError(t, err)
	assert.Equal(t, "2025-08-26", gophercon.Date)
	assert.Equal(t, "10:00", gophercon.Time)

	fair, err := events.GetBySlug(ctx, "ai-engineer-worlds-fair")
	require.NoError(t, err)
	assert.Equal(t, "13:30", fair.Time)
}

func TestSeedEvents_StopsOnInvalid(t *testing.T) {
	events := repo.NewEventsRepo(memory.New(repo.Schema()), nil)

	bad := db.SampleEvents[0]
	bad.Date = "not a date"

	_, err := db.SeedEvents(context.Background(), events, []event.CreateEventRequest{bad})
	assert.Error(t, err)
}
