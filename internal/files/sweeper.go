package files

import (
	"context"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"forecastwb/internal/config"
)

// RetentionSweeper removes uploaded CSVs older than the retention window.
// It runs on a fixed interval in its own goroutine until stopped.
type RetentionSweeper struct {
	logger    *slog.Logger
	paths     *config.Paths
	retention time.Duration
	interval  time.Duration
	cancel    context.CancelFunc
	done      chan struct{}
}

// NewRetentionSweeper creates a sweeper over the uploads directory.
func NewRetentionSweeper(logger *slog.Logger, paths *config.Paths, cfg config.UploadsConfig) *RetentionSweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &RetentionSweeper{
		logger:    logger,
		paths:     paths,
		retention: cfg.RetentionWindow,
		interval:  cfg.SweepInterval,
	}
}

// Start launches the sweep loop. Calling Start on a running sweeper is a
// no-op.
func (s *RetentionSweeper) Start(ctx context.Context) {
	if s.done != nil {
		return
	}
	ctx, s.cancel = context.WithCancel(ctx)
	s.done = make(chan struct{})

	go func() {
		defer close(s.done)
		ticker := time.NewTicker(s.interval)
		defer ticker.Stop()
		s.SweepOnce(ctx)
		for {
			select {
			case <-ctx.Done():
				return
			case <-ticker.C:
				s.SweepOnce(ctx)
			}
		}
	}()
}

// Stop cancels the loop and waits for the current sweep to finish.
func (s *RetentionSweeper) Stop() {
	if s.cancel == nil {
		return
	}
	s.cancel()
	<-s.done
	s.cancel = nil
	s.done = nil
}

// SweepOnce deletes CSVs in the uploads directory whose modification time
// is past the retention window. Removal failures are logged and skipped.
func (s *RetentionSweeper) SweepOnce(ctx context.Context) {
	entries, err := os.ReadDir(s.paths.UploadsDir)
	if err != nil {
		if !os.IsNotExist(err) {
			s.logger.WarnContext(ctx, "failed to scan uploads directory", "error", err)
		}
		return
	}
	cutoff := time.Now().Add(-s.retention)
	removed := 0
	for _, entry := range entries {
		if entry.IsDir() || !strings.EqualFold(filepath.Ext(entry.Name()), ".csv") {
			continue
		}
		info, err := entry.Info()
		if err != nil {
			continue
		}
		if info.ModTime().After(cutoff) {
			continue
		}
		path := filepath.Join(s.paths.UploadsDir, entry.Name())
		if err := os.Remove(path); err != nil {
			s.logger.WarnContext(ctx, "failed to remove stale upload", "path", path, "error", err)
			continue
		}
		removed++
	}
	if removed > 0 {
		s.logger.InfoContext(ctx, "stale uploads removed", "count", removed)
	}
}
