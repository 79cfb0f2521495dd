package workers

import (
	"context"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/repositories"
	"github.com/cbodonnell/replaycipher/pkg/spectator"
)

// DefaultSaveInterval is how often live sessions are checked for completed
// messages.
const DefaultSaveInterval = time.Second

type SaveSessionWorker struct {
	repository repositories.Repository
	manager    *spectator.Manager
	interval   time.Duration
	logger     *log.Logger
}

type NewSaveSessionWorkerOptions struct {
	Repository repositories.Repository
	Manager    *spectator.Manager
	Interval   time.Duration
}

// NewSaveSessionWorker creates a new SaveSessionWorker.
// The worker periodically stores every live session whose message is
// complete as a replay, so streamed messages outlive their session.
func NewSaveSessionWorker(opts NewSaveSessionWorkerOptions) *SaveSessionWorker {
	if opts.Interval <= 0 {
		opts.Interval = DefaultSaveInterval
	}
	return &SaveSessionWorker{
		repository: opts.Repository,
		manager:    opts.Manager,
		interval:   opts.Interval,
		logger:     log.Default().With("workers"),
	}
}

func (w *SaveSessionWorker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			w.saveSessions(ctx)
		}
	}
}

func (w *SaveSessionWorker) saveSessions(ctx context.Context) {
	for _, session := range w.manager.Sessions() {
		r, message, ok := session.Archive()
		if !ok {
			continue
		}
		if _, err := w.repository.SaveReplay(ctx, r, message); err != nil {
			w.logger.Error("Failed to save session %s: %v", session.ID(), err)
			session.RetryArchive()
			continue
		}
		w.logger.Info("Saved session %s as replay", session.ID())
	}
}
