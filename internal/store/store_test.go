package store

import (
	"context"
	"database/sql"
	"path/filepath"
	"testing"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/config"
	"github.com/ahsanfayaz52/hopperhelps/internal/db"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
	"github.com/stretchr/testify/require"
)

func openTestDB(t *testing.T) *sql.DB {
	t.Helper()
	ctx := context.Background()

	conn, err := db.OpenSQLite(ctx, filepath.Join(t.TempDir(), "store.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = conn.Close() })

	require.NoError(t, db.Migrate(ctx, conn, config.DriverSQLite, nil))
	return conn
}

func seedUser(t *testing.T, conn *sql.DB, id string) {
	t.Helper()
	err := NewUserRepository(conn).Create(context.Background(), &models.User{
		ID:           id,
		Email:        id + "@example.com",
		PasswordHash: "hash",
		CreatedAt:    time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC),
	})
	require.NoError(t, err)
}

func at(hour, min int) time.Time {
	return time.Date(2024, 1, 1, hour, min, 0, 0, time.UTC)
}
