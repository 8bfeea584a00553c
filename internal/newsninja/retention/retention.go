// Package retention removes expired audio artifacts from disk.
package retention

import (
	"context"
	"errors"
	"fmt"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/RobinCoderZhao/newsninja/internal/newsninja/store"
)

// Index is the part of the artifact store the sweeper needs.
type Index interface {
	Expired(ctx context.Context, before time.Time) ([]store.Record, error)
	MarkDeleted(ctx context.Context, id string, at time.Time) error
	IsTracked(ctx context.Context, path string) (bool, error)
}

// Report summarizes one sweep.
type Report struct {
	Removed int   // indexed files deleted
	Missing int   // indexed files already gone
	Orphans int   // untracked .mp3 files deleted from the output dir
	Failed  int   // files that could not be deleted
	Bytes   int64 // bytes freed
}

// Sweeper deletes artifacts older than the retention period.
type Sweeper struct {
	index     Index
	dir       string
	retention time.Duration
	now       func() time.Time
	logger    *slog.Logger
}

// NewSweeper creates a sweeper. When dir is set, untracked .mp3 files in it
// that are older than the retention period are removed too.
func NewSweeper(index Index, dir string, retention time.Duration, logger *slog.Logger) *Sweeper {
	if logger == nil {
		logger = slog.Default()
	}
	return &Sweeper{index: index, dir: dir, retention: retention, now: time.Now, logger: logger}
}

// Sweep runs one retention pass.
func (s *Sweeper) Sweep(ctx context.Context) (Report, error) {
	var rep Report
	now := s.now()
	cutoff := now.Add(-s.retention)

	expired, err := s.index.Expired(ctx, cutoff)
	if err != nil {
		return rep, fmt.Errorf("list expired artifacts: %w", err)
	}

	for _, r := range expired {
		if err := ctx.Err(); err != nil {
			return rep, err
		}
		switch err := os.Remove(r.Path); {
		case err == nil:
			rep.Removed++
			rep.Bytes += r.Size
		case errors.Is(err, fs.ErrNotExist):
			rep.Missing++
		default:
			s.logger.Warn("remove artifact failed", "path", r.Path, "error", err)
			rep.Failed++
			continue
		}
		if err := s.index.MarkDeleted(ctx, r.ID, now); err != nil {
			return rep, fmt.Errorf("mark %s deleted: %w", r.ID, err)
		}
	}

	if s.dir != "" {
		if err := s.sweepOrphans(ctx, cutoff, &rep); err != nil {
			return rep, err
		}
	}

	s.logger.Info("retention sweep complete",
		"removed", rep.Removed, "missing", rep.Missing, "orphans", rep.Orphans,
		"failed", rep.Failed, "bytes", rep.Bytes)
	return rep, nil
}

func (s *Sweeper) sweepOrphans(ctx context.Context, cutoff time.Time, rep *Report) error {
	entries, err := os.ReadDir(s.dir)
	if errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if err != nil {
		return fmt.Errorf("read %s: %w", s.dir, err)
	}

	for _, e := range entries {
		if e.IsDir() || !strings.EqualFold(filepath.Ext(e.Name()), ".mp3") {
			continue
		}
		info, err := e.Info()
		if err != nil || !info.ModTime().Before(cutoff) {
			continue
		}
		path := filepath.Join(s.dir, e.Name())
		tracked, err := s.index.IsTracked(ctx, path)
		if err != nil {
			return fmt.Errorf("check %s: %w", path, err)
		}
		if tracked {
			continue
		}
		if err := os.Remove(path); err != nil && !errors.Is(err, fs.ErrNotExist) {
			s.logger.Warn("remove orphan failed", "path", path, "error", err)
			rep.Failed++
			continue
		}
		rep.Orphans++
		rep.Bytes += info.Size()
	}
	return nil
}
