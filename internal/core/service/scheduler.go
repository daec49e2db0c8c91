package service

import (
	"context"
	"time"

	"github.com/google/uuid"
	"go.uber.org/zap"

	"github.com/julianszw/inventory-management-system/internal/trace"
)

// SyncScheduler invokes PushNow on a fixed interval. Push failures are
// logged and swallowed so the loop never terminates on its own; the process
// starts it at startup and stops it at shutdown.
type SyncScheduler struct {
	sync     *SyncService
	interval time.Duration
	logger   *zap.Logger
	quit     chan struct{}
	done     chan struct{}
}

func NewSyncScheduler(sync *SyncService, interval time.Duration, logger *zap.Logger) *SyncScheduler {
	return &SyncScheduler{
		sync:     sync,
		interval: interval,
		logger:   logger,
		quit:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

func (s *SyncScheduler) Start() {
	go s.run()
}

func (s *SyncScheduler) run() {
	defer close(s.done)

	ticker := time.NewTicker(s.interval)
	defer ticker.Stop()

	for {
		select {
		case <-ticker.C:
			ctx := trace.WithTraceID(context.Background(), uuid.New().String())
			if _, err := s.sync.PushNow(ctx); err != nil {
				s.logger.Warn("scheduled push failed", zap.Error(err))
			}
		case <-s.quit:
			return
		}
	}
}

// Stop halts the loop and waits for an in-flight push to finish.
func (s *SyncScheduler) Stop() {
	close(s.quit)
	<-s.done
}
