package repositories

import (
	"context"
	"embed"
	"fmt"
	"io/fs"
	"path"

	"github.com/cbodonnell/replaycipher/pkg/replay"
	"github.com/cbodonnell/replaycipher/pkg/repositories/models"
	"github.com/google/uuid"
)

// DefaultListLimit caps ListReplays when no limit is given.
const DefaultListLimit = 100

type Repository interface {
	Close(ctx context.Context) error
	// SaveReplay stores a replay with the message decoded from it.
	SaveReplay(ctx context.Context, r *replay.Replay, message string) (*models.Replay, error)
	GetReplay(ctx context.Context, id uuid.UUID) (*models.Replay, error)
	LoadReplay(ctx context.Context, id uuid.UUID) (*replay.Replay, error)
	// ListReplays returns the newest replays first.
	ListReplays(ctx context.Context, limit int) ([]*models.Replay, error)
}

//go:embed migrations
var migrationsFS embed.FS

// migrations returns the migration scripts of a dialect in file name order.
func migrations(dialect string) ([]string, error) {
	dir := path.Join("migrations", dialect)
	entries, err := fs.ReadDir(migrationsFS, dir)
	if err != nil {
		return nil, fmt.Errorf("failed to read migrations directory: %v", err)
	}

	var scripts []string
	for _, entry := range entries {
		if entry.IsDir() {
			continue
		}

		migrationPath := path.Join(dir, entry.Name())
		migration, err := fs.ReadFile(migrationsFS, migrationPath)
		if err != nil {
			return nil, fmt.Errorf("failed to read migration %s: %v", migrationPath, err)
		}
		scripts = append(scripts, string(migration))
	}
	return scripts, nil
}

func listLimit(limit int) int {
	if limit <= 0 {
		return DefaultListLimit
	}
	return limit
}
