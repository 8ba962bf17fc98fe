package store

import (
	"context"
	"database/sql"
	"errors"

	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/db"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

// DayReader loads a summary and its notes from one transaction so the pair
// is consistent.
type DayReader struct {
	conn *sql.DB
}

func NewDayReader(conn *sql.DB) *DayReader {
	return &DayReader{conn: conn}
}

func (r *DayReader) GetDayEntry(ctx context.Context, userID, dateKey string) (*models.DayEntry, error) {
	entry := &models.DayEntry{DateKey: dateKey}

	err := db.WithTx(ctx, r.conn, nil, func(ctx context.Context, tx db.DBTX) error {
		summary, err := NewSummaryRepository(tx).Get(ctx, userID, dateKey)
		switch {
		case err == nil:
			entry.Summary = summary
		case !errors.Is(err, common.ErrNotFound):
			return err
		}

		notes, err := NewNoteRepository(tx).List(ctx, userID, dateKey)
		if err != nil {
			return err
		}
		entry.Notes = notes
		return nil
	})
	if err != nil {
		return nil, err
	}
	return entry, nil
}
