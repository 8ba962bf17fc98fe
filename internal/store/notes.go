package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/ahsanfayaz52/hopperhelps/internal/common"
	"github.com/ahsanfayaz52/hopperhelps/internal/db"
	"github.com/ahsanfayaz52/hopperhelps/internal/models"
)

const noteColumns = `id, user_id, date_key, content, mood, confidence, analysis,
	companion_emotion, companion_response, created_at`

type NoteRepository struct {
	db db.DBTX
}

func NewNoteRepository(conn db.DBTX) *NoteRepository {
	return &NoteRepository{db: conn}
}

func (r *NoteRepository) Create(ctx context.Context, n *models.Note) error {
	_, err := r.db.ExecContext(ctx, `INSERT INTO notes (`+noteColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		n.ID, n.UserID, n.DateKey, n.Content, n.Mood, n.Confidence, n.Analysis,
		n.CompanionEmotion, n.CompanionResponse, n.CreatedAt.UTC())
	if err != nil {
		if isDuplicateKey(err) {
			return fmt.Errorf("create note: %w", common.ErrConflict)
		}
		return fmt.Errorf("create note: %w", err)
	}
	return nil
}

func (r *NoteRepository) Get(ctx context.Context, userID, dateKey, id string) (*models.Note, error) {
	row := r.db.QueryRowContext(ctx, `SELECT `+noteColumns+` FROM notes
		WHERE id = ? AND user_id = ? AND date_key = ?`, id, userID, dateKey)

	n, err := scanNote(row)
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, fmt.Errorf("get note: %w", common.ErrNotFound)
		}
		return nil, fmt.Errorf("get note: %w", err)
	}
	return n, nil
}

// Update overwrites content and derived fields. CreatedAt never changes.
func (r *NoteRepository) Update(ctx context.Context, n *models.Note) error {
	res, err := r.db.ExecContext(ctx, `UPDATE notes SET
			content = ?, mood = ?, confidence = ?, analysis = ?,
			companion_emotion = ?, companion_response = ?
		WHERE id = ? AND user_id = ? AND date_key = ?`,
		n.Content, n.Mood, n.Confidence, n.Analysis, n.CompanionEmotion, n.CompanionResponse,
		n.ID, n.UserID, n.DateKey)
	if err != nil {
		return fmt.Errorf("update note: %w", err)
	}
	return expectAffected(res, "update note")
}

func (r *NoteRepository) Delete(ctx context.Context, userID, dateKey, id string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM notes WHERE id = ? AND user_id = ? AND date_key = ?`,
		id, userID, dateKey)
	if err != nil {
		return fmt.Errorf("delete note: %w", err)
	}
	return expectAffected(res, "delete note")
}

// List returns the day's notes ordered by creation time, then id.
func (r *NoteRepository) List(ctx context.Context, userID, dateKey string) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes
		WHERE user_id = ? AND date_key = ?
		ORDER BY created_at ASC, id ASC`, userID, dateKey)
	if err != nil {
		return nil, fmt.Errorf("list notes: %w", err)
	}
	return collectNotes(rows, "list notes")
}

// ListSince returns up to limit of the user's newest notes created at or after since.
func (r *NoteRepository) ListSince(ctx context.Context, userID string, since time.Time, limit int) ([]models.Note, error) {
	rows, err := r.db.QueryContext(ctx, `SELECT `+noteColumns+` FROM notes
		WHERE user_id = ? AND created_at >= ?
		ORDER BY created_at DESC, id DESC
		LIMIT ?`, userID, since.UTC(), limit)
	if err != nil {
		return nil, fmt.Errorf("list recent notes: %w", err)
	}
	return collectNotes(rows, "list recent notes")
}

func (r *NoteRepository) ListDateKeys(ctx context.Context, userID string) ([]string, error) {
	return listDateKeys(ctx, r.db, `SELECT DISTINCT date_key FROM notes WHERE user_id = ? ORDER BY date_key`, userID)
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanNote(row rowScanner) (*models.Note, error) {
	var n models.Note
	err := row.Scan(&n.ID, &n.UserID, &n.DateKey, &n.Content, &n.Mood, &n.Confidence, &n.Analysis,
		&n.CompanionEmotion, &n.CompanionResponse, scanTime(&n.CreatedAt))
	if err != nil {
		return nil, err
	}
	return &n, nil
}

func collectNotes(rows *sql.Rows, op string) ([]models.Note, error) {
	defer rows.Close()

	notes := []models.Note{}
	for rows.Next() {
		n, err := scanNote(rows)
		if err != nil {
			return nil, fmt.Errorf("%s: scan: %w", op, err)
		}
		notes = append(notes, *n)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("%s: %w", op, err)
	}
	return notes, nil
}

func listDateKeys(ctx context.Context, conn db.DBTX, query, userID string) ([]string, error) {
	rows, err := conn.QueryContext(ctx, query, userID)
	if err != nil {
		return nil, fmt.Errorf("list date keys: %w", err)
	}
	defer rows.Close()

	var keys []string
	for rows.Next() {
		var k string
		if err := rows.Scan(&k); err != nil {
			return nil, fmt.Errorf("list date keys: scan: %w", err)
		}
		keys = append(keys, k)
	}
	return keys, rows.Err()
}

func expectAffected(res sql.Result, op string) error {
	n, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("%s: rows affected: %w", op, err)
	}
	if n == 0 {
		return fmt.Errorf("%s: %w", op, common.ErrNotFound)
	}
	return nil
}
