package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/db"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

const summaryColumns = `user_id, date_key, mood, confidence, analysis,
	companion_emotion, companion_response, created_at, updated_at, version`

type SummaryRepository struct {
	db db.DBTX
}

func NewSummaryRepository(conn db.DBTX) *SummaryRepository {
	return &SummaryRepository{db: conn}
}

func (r *SummaryRepository) Get(ctx context.Context, userID, dateKey string) (*models.DaySummary, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+summaryColumns+` FROM day_summaries
		WHERE user_id = ? AND date_key = ?`, userID, dateKey)

	s, err := scanSummary(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get day summary: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("get day summary: %w", err)
	}
	return s, nil
}

// Create inserts the summary at version 1. A summary that already exists for
// the day yields common.ErrConflict.
func (r *SummaryRepository) Create(ctx context.Context, s *models.DaySummary) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO day_summaries (`+summaryColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, 1)`,
		s.UserID, s.DateKey, s.Mood, s.Confidence, s.Analysis,
		s.CompanionEmotion, s.CompanionResponse, s.CreatedAt.UTC(), s.UpdatedAt.UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("create day summary: %w", common.ErrConflict)
		}
		return fmt.Errorf("create day summary: %w", err)
	}
	s.Version = 1
	return nil
}

// Update writes the derived fields and UpdatedAt and bumps the version.
// With guard set the write only applies while the stored version still equals
// s.Version, otherwise common.ErrConflict is returned. CreatedAt is never
// rewritten.
func (r *SummaryRepository) Update(ctx context.Context, s *models.DaySummary, guard bool) error {
	query := `UPDATE day_summaries SET
			mood = ?, confidence = ?, analysis = ?, companion_emotion = ?,
			companion_response = ?, updated_at = ?, version = version + 1
		WHERE user_id = ? AND date_key = ?`
	args := []any{s.Mood, s.Confidence, s.Analysis, s.CompanionEmotion,
		s.CompanionResponse, s.UpdatedAt.UTC(), s.UserID, s.DateKey}
	if guard {
		query += ` AND version = ?`
		args = append(args, s.Version)
	}

	res, err := r.db.ExecContext(ctx, query, args...)
	if err != nil {
		return fmt.Errorf("update day summary: %w", err)
	}
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("update day summary: rows affected: %w", err)
	}
	if n == 0 {
		if guard {
			return fmt.Errorf("update day summary: %w", common.ErrConflict)
		}
		return fmt.Errorf("update day summary: %w", common.ErrNotFound)
	}
	s.Version++
	return nil
}

func (r *SummaryRepository) Delete(ctx context.Context, userID, dateKey string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM day_summaries WHERE user_id = ? AND date_key = ?`,
		userID, dateKey)
	if err != nil {
		return fmt.Errorf("delete day summary: %w", err)
	}
	return expectAffected(res, "delete day summary")
}

// ListRange returns summaries with from <= date <= to, oldest first.
func (r *SummaryRepository) ListRange(ctx context.Context, userID, from, to string) ([]models.DaySummary, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+summaryColumns+` FROM day_summaries
		WHERE user_id = ? AND date_key >= ? AND date_key <= ?
		ORDER BY date_key ASC`, userID, from, to)
	if err != nil {
		return nil, fmt.Errorf("list day summaries: %w", err)
	}
	defer rows.Close()

	summaries := []models.DaySummary{}
	for rows.Next() {
		s, err := scanSummary(rows)
		if err != nil {
			return nil, fmt.Errorf("list day summaries: scan: %w", err)
		}
		summaries = append(summaries, *s)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list day summaries: %w", err)
	}
	return summaries, nil
}

func (r *SummaryRepository) ListDateKeys(ctx context.Context, userID string) ([]string, error) {
	return listDateKeys(ctx, r.db, `SELECT date_key FROM day_summaries WHERE user_id = ? ORDER BY date_key`, userID)
}

func scanSummary(row rowScanner) (*models.DaySummary, error) {
	var s models.DaySummary
	err := row.Scan(&s.UserID, &s.DateKey, &s.Mood, &s.Confidence, &s.Analysis,
		&s.CompanionEmotion, &s.CompanionResponse, scanTime(&s.CreatedAt), scanTime(&s.UpdatedAt), &s.Version)
	if err != nil {
		return nil, err
	}
	return &s, nil
}
