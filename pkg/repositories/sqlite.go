package repositories

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/cbodonnell/replaycipher/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/mattn/go-sqlite3"
)

type SQLiteRepository struct {
	db *sql.DB
}

// NewSQLiteRepository opens the database at path and applies the SQLite
// migrations.
func NewSQLiteRepository(ctx context.Context, path string) (Repository, error) {
	db, err := sql.Open("sqlite3", path)
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %v", err)
	}

	scripts, err := migrations("sqlite")
	if err != nil {
		db.Close()
		return nil, err
	}
	for i, migration := range scripts {
		if _, err := db.ExecContext(ctx, migration); err != nil {
			db.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &SQLiteRepository{
		db: db,
	}, nil
}

func (r *SQLiteRepository) Close(ctx context.Context) error {
	return r.db.Close()
}

func (r *SQLiteRepository) SaveReplay(ctx context.Context, rp *replay.Replay, message string) (*models.Replay, error) {
	data, err := replay.SerializeReplay(rp)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize replay: %v", err)
	}

	record := &models.Replay{
		ID:        rp.ID,
		Strategy:  rp.Strategy,
		Message:   message,
		Frames:    len(rp.Frames),
		CreatedAt: time.Now().UTC().Truncate(time.Millisecond),
	}
	q := `
	INSERT INTO replays (id, strategy, message, frames, data, created_at)
	VALUES (?, ?, ?, ?, ?, ?);
	`
	_, err = r.db.ExecContext(ctx, q, record.ID.String(), record.Strategy, record.Message, record.Frames, data, record.CreatedAt.UnixMilli())
	if err != nil {
		var sqliteErr sqlite3.Error
		if errors.As(err, &sqliteErr) && sqliteErr.ExtendedCode == sqlite3.ErrConstraintPrimaryKey {
			return nil, &ErrAlreadyExists{ID: record.ID.String()}
		}
		return nil, fmt.Errorf("failed to insert replay: %v", err)
	}

	return record, nil
}

func (r *SQLiteRepository) GetReplay(ctx context.Context, id uuid.UUID) (*models.Replay, error) {
	q := `
	SELECT id, strategy, message, frames, created_at FROM replays WHERE id = ?;
	`
	record, err := scanSQLiteReplay(r.db.QueryRowContext(ctx, q, id.String()))
	if err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan replay: %v", err)
	}
	return record, nil
}

func (r *SQLiteRepository) LoadReplay(ctx context.Context, id uuid.UUID) (*replay.Replay, error) {
	q := `
	SELECT data FROM replays WHERE id = ?;
	`
	var data []byte
	if err := r.db.QueryRowContext(ctx, q, id.String()).Scan(&data); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan replay: %v", err)
	}

	rp, err := replay.DeserializeReplay(data)
	if err != nil {
		return nil, fmt.Errorf("failed to deserialize replay %s: %v", id, err)
	}
	return rp, nil
}

func (r *SQLiteRepository) ListReplays(ctx context.Context, limit int) ([]*models.Replay, error) {
	q := `
	SELECT id, strategy, message, frames, created_at FROM replays
	ORDER BY created_at DESC, id LIMIT ?;
	`
	rows, err := r.db.QueryContext(ctx, q, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query replays: %v", err)
	}
	defer rows.Close()

	records := []*models.Replay{}
	for rows.Next() {
		record, err := scanSQLiteReplay(rows)
		if err != nil {
			return nil, fmt.Errorf("failed to scan replay: %v", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate replays: %v", err)
	}

	return records, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanSQLiteReplay(row rowScanner) (*models.Replay, error) {
	var id string
	var createdAt int64
	record := &models.Replay{}
	if err := row.Scan(&id, &record.Strategy, &record.Message, &record.Frames, &createdAt); err != nil {
		return nil, err
	}

	parsed, err := uuid.Parse(id)
	if err != nil {
		return nil, fmt.Errorf("failed to parse replay id %q: %v", id, err)
	}
	record.ID = parsed
	record.CreatedAt = time.UnixMilli(createdAt).UTC()
	return record, nil
}
