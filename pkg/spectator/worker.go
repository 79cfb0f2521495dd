package spectator

import (
	"context"
	"time"

	"github.com/cbodonnell/replaycipher/pkg/log"
	"github.com/cbodonnell/replaycipher/pkg/queue"
	"github.com/cbodonnell/replaycipher/pkg/replay"
)

const (
	DefaultWorkerInterval = 50 * time.Millisecond
	DefaultSessionTTL     = 10 * time.Minute
)

type Worker struct {
	bundleQueue queue.Queue
	manager     *Manager
	interval    time.Duration
	sessionTTL  time.Duration
	logger      *log.Logger
}

type NewWorkerOptions struct {
	BundleQueue queue.Queue
	Manager     *Manager
	Interval    time.Duration
	SessionTTL  time.Duration
}

// NewWorker creates a new Worker.
// The worker drains frame bundles from the queue on every tick and feeds them
// to the session of their stream. Idle sessions are dropped after SessionTTL.
func NewWorker(opts NewWorkerOptions) *Worker {
	if opts.Interval <= 0 {
		opts.Interval = DefaultWorkerInterval
	}
	if opts.SessionTTL <= 0 {
		opts.SessionTTL = DefaultSessionTTL
	}
	return &Worker{
		bundleQueue: opts.BundleQueue,
		manager:     opts.Manager,
		interval:    opts.Interval,
		sessionTTL:  opts.SessionTTL,
		logger:      log.Default().With("spectator"),
	}
}

func (w *Worker) Start(ctx context.Context) {
	ticker := time.NewTicker(w.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case t := <-ticker.C:
			w.drain()
			if removed := w.manager.Expire(t.Add(-w.sessionTTL)); removed > 0 {
				w.logger.Debug("Expired %d idle sessions", removed)
			}
		}
	}
}

// drain processes every bundle currently queued.
func (w *Worker) drain() {
	for _, item := range w.bundleQueue.ReadAllMessages() {
		bundle, ok := item.(*replay.Bundle)
		if !ok {
			w.logger.Error("Unexpected item in bundle queue: %T", item)
			continue
		}
		w.manager.GetOrCreate(bundle.StreamID).AddSequencedFrames(bundle.Sequence, bundle.Frames)
	}
}
