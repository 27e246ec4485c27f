package main

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mrlokans/bookshelf/internal/catalog"
	"github.com/mrlokans/bookshelf/internal/entities"
	"github.com/mrlokans/bookshelf/internal/storage/memory"
)

var today = time.Date(2026, 10, 18, 0, 0, 0, 0, time.UTC)

func TestSeed(t *testing.T) {
	svc := catalog.NewService(memory.NewStore())
	svc.SetClock(func() time.Time { return today })

	added, err := seed(svc, today)
	require.NoError(t, err)
	assert.Equal(t, 2, added)

	books, err := svc.GetAllBooks()
	require.NoError(t, err)
	require.Len(t, books, 2)

	crime := books[0]
	assert.Equal(t, "Crime and Punishment", crime.Title)
	assert.Equal(t, entities.StatusInProgress, crime.Status)
	assert.Equal(t, "2026-11-17", crime.DueDate.Format(entities.DateLayout))
	assert.InDelta(t, 22.32, catalog.ReadingProgress(crime), 0.01)

	master := books[1]
	assert.Equal(t, "Mikhail Bulgakov", master.Author)
	assert.Equal(t, 9, master.Priority)
	assert.Equal(t, "2026-12-02", master.DueDate.Format(entities.DateLayout))

	recommended, err := svc.GetRecommendedBooks("classics")
	require.NoError(t, err)
	require.Len(t, recommended, 2)
	assert.Equal(t, master.ID, recommended[0].ID)
}

func TestSeed_SkipsExisting(t *testing.T) {
	svc := catalog.NewService(memory.NewStore())

	_, err := seed(svc, today)
	require.NoError(t, err)

	added, err := seed(svc, today)
	require.NoError(t, err)
	assert.Zero(t, added)

	books, err := svc.GetAllBooks()
	require.NoError(t, err)
	assert.Len(t, books, 2)
}
