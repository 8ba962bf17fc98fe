package store

import (
	"context"
	"testing"

	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestSummaryRepository_CreateGetUpdate(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "u1")
	repo := NewSummaryRepository(conn)
	ctx := context.Background()

	_, err := repo.Get(ctx, "u1", "2024-01-01")
	assert.ErrorIs(t, err, common.ErrNotFound)

	s := &models.DaySummary{
		UserID:    "u1",
		DateKey:   "2024-01-01",
		Derived:   models.Derived{Mood: "sad", Confidence: 0.6, Analysis: "low", CompanionEmotion: "empathetic", CompanionResponse: "hug"},
		CreatedAt: at(8, 0),
		UpdatedAt: at(8, 1),
	}
	require.NoError(t, repo.Create(ctx, s))
	assert.Equal(t, int64(1), s.Version)

	got, err := repo.Get(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, s.Derived, got.Derived)
	assert.True(t, at(8, 0).Equal(got.CreatedAt))
	assert.Equal(t, int64(1), got.Version)

	assert.ErrorIs(t, repo.Create(ctx, s), common.ErrConflict)

	got.Mood = "happy"
	got.UpdatedAt = at(9, 0)
	require.NoError(t, repo.Update(ctx, got, true))
	assert.Equal(t, int64(2), got.Version)

	after, err := repo.Get(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "happy", after.Mood)
	assert.True(t, at(8, 0).Equal(after.CreatedAt), "created_at must not move")
	assert.True(t, at(9, 0).Equal(after.UpdatedAt))
	assert.Equal(t, int64(2), after.Version)
}

func TestSummaryRepository_GuardedUpdateConflict(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "u1")
	repo := NewSummaryRepository(conn)
	ctx := context.Background()

	s := &models.DaySummary{UserID: "u1", DateKey: "2024-01-01", CreatedAt: at(8, 0), UpdatedAt: at(8, 0)}
	require.NoError(t, repo.Create(ctx, s))

	stale := *s
	s.Mood = "happy"
	require.NoError(t, repo.Update(ctx, s, true))

	stale.Mood = "sad"
	assert.ErrorIs(t, repo.Update(ctx, &stale, true), common.ErrConflict)

	// last writer wins without the guard
	require.NoError(t, repo.Update(ctx, &stale, false))
	got, err := repo.Get(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	assert.Equal(t, "sad", got.Mood)
	assert.Equal(t, int64(3), got.Version)
}

func TestSummaryRepository_UpdateMissing(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "u1")
	repo := NewSummaryRepository(conn)

	err := repo.Update(context.Background(), &models.DaySummary{UserID: "u1", DateKey: "2024-01-01"}, false)
	assert.ErrorIs(t, err, common.ErrNotFound)
}

func TestSummaryRepository_DeleteRangeKeys(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "u1")
	repo := NewSummaryRepository(conn)
	ctx := context.Background()

	for _, key := range []string{"2024-01-01", "2024-01-15", "2024-02-01"} {
		require.NoError(t, repo.Create(ctx, &models.DaySummary{UserID: "u1", DateKey: key, CreatedAt: at(8, 0), UpdatedAt: at(8, 0)}))
	}

	jan, err := repo.ListRange(ctx, "u1", "2024-01-01", "2024-01-31")
	require.NoError(t, err)
	require.Len(t, jan, 2)
	assert.Equal(t, "2024-01-01", jan[0].DateKey)
	assert.Equal(t, "2024-01-15", jan[1].DateKey)

	require.NoError(t, repo.Delete(ctx, "u1", "2024-01-15"))
	assert.ErrorIs(t, repo.Delete(ctx, "u1", "2024-01-15"), common.ErrNotFound)

	keys, err := repo.ListDateKeys(ctx, "u1")
	require.NoError(t, err)
	assert.Equal(t, []string{"2024-01-01", "2024-02-01"}, keys)
}

func TestDayReader_GetDayEntry(t *testing.T) {
	conn := openTestDB(t)
	seedUser(t, conn, "u1")
	ctx := context.Background()

	notes := NewNoteRepository(conn)
	require.NoError(t, notes.Create(ctx, &models.Note{ID: "n1", UserID: "u1", DateKey: "2024-01-01", Content: "a", CreatedAt: at(8, 0)}))

	reader := NewDayReader(conn)
	entry, err := reader.GetDayEntry(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	assert.Nil(t, entry.Summary)
	assert.Len(t, entry.Notes, 1)

	require.NoError(t, NewSummaryRepository(conn).Create(ctx, &models.DaySummary{UserID: "u1", DateKey: "2024-01-01", CreatedAt: at(8, 0), UpdatedAt: at(8, 0)}))
	entry, err = reader.GetDayEntry(ctx, "u1", "2024-01-01")
	require.NoError(t, err)
	require.NotNil(t, entry.Summary)
	assert.Equal(t, "2024-01-01", entry.DateKey)
}
