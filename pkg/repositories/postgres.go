package repositories

import (
	"context"
	"errors"
	"fmt"

	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/cbodonnell/replaycipher/pkg/repositories/models"
	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// uniqueViolation is the SQLSTATE of a duplicate key.
const uniqueViolation = "23505"

type PostgresRepository struct {
	pool *pgxpool.Pool
}

// NewPostgresRepository connects to the database and applies the Postgres
// migrations. The caller is responsible for calling Close() on the repository.
func NewPostgresRepository(ctx context.Context, connStr string) (Repository, error) {
	pool, err := connectDb(ctx, connStr)
	if err != nil {
		return nil, err
	}

	scripts, err := migrations("postgres")
	if err != nil {
		pool.Close()
		return nil, err
	}
	for i, migration := range scripts {
		if _, err := pool.Exec(ctx, migration); err != nil {
			pool.Close()
			return nil, fmt.Errorf("failed to execute migration %d: %v", i+1, err)
		}
	}

	return &PostgresRepository{
		pool: pool,
	}, nil
}

func connectDb(ctx context.Context, connStr string) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, connStr)
	if err != nil {
		return nil, fmt.Errorf("unable to connect to database: %v", err)
	}

	var username string
	var database string
	err = pool.QueryRow(ctx, "SELECT current_user, current_database()").Scan(&username, &database)
	if err != nil {
		pool.Close()
		return nil, fmt.Errorf("unable to query database: %v", err)
	}

	log.Info("Connected to %s as %s", database, username)

	return pool, nil
}

func (r *PostgresRepository) Close(ctx context.Context) error {
	r.pool.Close()
	return nil
}

func (r *PostgresRepository) SaveReplay(ctx context.Context, rp *replay.Replay, message string) (*models.Replay, error) {
	data, err := replay.SerializeReplay(rp)
	if err != nil {
		return nil, fmt.Errorf("failed to serialize replay: %v", err)
	}

	record := &models.Replay{
		ID:       rp.ID,
		Strategy: rp.Strategy,
		Message:  message,
		Frames:   len(rp.Frames),
	}
	q := `
	INSERT INTO replays (id, strategy, message, frames, data) VALUES ($1, $2, $3, $4, $5)
	RETURNING created_at;
	`
	err = r.pool.QueryRow(ctx, q, record.ID, record.Strategy, record.Message, record.Frames, data).Scan(&record.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == uniqueViolation {
			return nil, &ErrAlreadyExists{ID: record.ID.String()}
		}
		return nil, fmt.Errorf("failed to insert replay: %v", err)
	}

	return record, nil
}

func (r *PostgresRepository) GetReplay(ctx context.Context, id uuid.UUID) (*models.Replay, error) {
	q := `
	SELECT id, strategy, message, frames, created_at FROM replays WHERE id = $1;
	`
	record := &models.Replay{}
	err := r.pool.QueryRow(ctx, q, id).Scan(&record.ID, &record.Strategy, &record.Message, &record.Frames, &record.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, &ErrNotFound{}
		}
		return nil, fmt.Errorf("failed to scan replay: %v", err)
	}
	return record, nil
}

func (r *PostgresRepository) LoadReplay(ctx context.Context, id uuid.UUID) (*replay.Replay, error) {
	q := `
	SELECT data FROM replays WHERE id = $1;
	`
	var data []byte
	if err := r.pool.QueryRow(ctx, q, id).Scan(&data); err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
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

func (r *PostgresRepository) ListReplays(ctx context.Context, limit int) ([]*models.Replay, error) {
	q := `
	SELECT id, strategy, message, frames, created_at FROM replays
	ORDER BY created_at DESC, id LIMIT $1;
	`
	rows, err := r.pool.Query(ctx, q, listLimit(limit))
	if err != nil {
		return nil, fmt.Errorf("failed to query replays: %v", err)
	}
	defer rows.Close()

	records := []*models.Replay{}
	for rows.Next() {
		record := &models.Replay{}
		if err := rows.Scan(&record.ID, &record.Strategy, &record.Message, &record.Frames, &record.CreatedAt); err != nil {
			return nil, fmt.Errorf("failed to scan replay: %v", err)
		}
		records = append(records, record)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("failed to iterate replays: %v", err)
	}

	return records, nil
}
