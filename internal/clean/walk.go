package clean

import (
	"context"
	"errors"
	"io/fs"
	"os"
	"path/filepath"
	"runtime"
	"sync/atomic"
	"time"

	"github.com/rs/zerolog"
	"golang.org/x/sync/errgroup"

	"github.com/lakshaymaurya-felt/reclaim/internal/match"
)

// action is what the walker does with a file that passes every filter.
type action int

const (
	actMeasure action = iota
	actDelete
	actRecycle
)

// cancelCheckEvery is how many dispatched files pass between context checks.
const cancelCheckEvery = 256

// walkResult is the aggregate of one walk.
type walkResult struct {
	Bytes     int64
	Files     int64
	HadError  bool
	Cancelled bool
}

// walker enumerates a tree and fans file work out to a bounded pool.
type walker struct {
	workers int
	trash   Trasher
	log     zerolog.Logger
}

// tally is shared by the walk's workers.
type tally struct {
	bytes    atomic.Int64
	files    atomic.Int64
	hadError atomic.Bool
}

func newWalker(workers int, trash Trasher, log zerolog.Logger) *walker {
	if workers <= 0 {
		workers = runtime.NumCPU()
	}
	return &walker{workers: workers, trash: trash, log: log}
}

// measure totals every regular file under dir with no filters and no action.
func (w *walker) measure(ctx context.Context, dir string, now time.Time) walkResult {
	return w.walk(ctx, dir, nil, Thresholds{}, now, actMeasure)
}

// walk evaluates base. A single file is checked against the thresholds only;
// a directory is enumerated without following links and every regular file
// under it is matched (relative to base), filtered and acted on.
func (w *walker) walk(ctx context.Context, base string, m *match.Matcher, th Thresholds, now time.Time, act action) walkResult {
	if ctx.Err() != nil {
		return walkResult{Cancelled: true}
	}

	info, err := os.Stat(longPath(base))
	if err != nil {
		w.log.Debug().Err(err).Str("path", base).Msg("cannot stat root")
		return walkResult{HadError: true}
	}

	var t tally
	if !info.IsDir() {
		if info.Mode().IsRegular() {
			w.apply(base, info, th, now, act, &t)
		}
		return t.result(false)
	}

	var g errgroup.Group
	g.SetLimit(w.workers)

	cancelled := false
	dispatched := 0
	_ = filepath.WalkDir(base, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			// Unreadable entry or directory: note it and keep going.
			t.hadError.Store(true)
			w.log.Debug().Err(err).Str("path", path).Msg("walk error")
			return nil
		}

		if d.IsDir() {
			if path != base && isReparsePoint(path) {
				return fs.SkipDir
			}
			return nil
		}
		if !d.Type().IsRegular() {
			return nil
		}

		if m != nil {
			if rel, relErr := filepath.Rel(base, path); relErr == nil && !m.Match(rel) {
				return nil
			}
		}

		dispatched++
		if dispatched%cancelCheckEvery == 0 && ctx.Err() != nil {
			cancelled = true
			return fs.SkipAll
		}

		g.Go(func() error {
			w.visit(path, th, now, act, &t)
			return nil
		})
		return nil
	})
	_ = g.Wait()

	return t.result(cancelled)
}

// visit fetches metadata for one enumerated file and applies it.
func (w *walker) visit(path string, th Thresholds, now time.Time, act action, t *tally) {
	info, err := os.Lstat(longPath(path))
	if err != nil {
		if errors.Is(err, fs.ErrNotExist) {
			return
		}
		t.hadError.Store(true)
		w.log.Debug().Err(err).Str("path", path).Msg("cannot stat file")
		return
	}
	w.apply(path, info, th, now, act, t)
}

// apply counts a file that passes th and then performs act on it.
func (w *walker) apply(path string, info fs.FileInfo, th Thresholds, now time.Time, act action, t *tally) {
	if !Include(info.Size(), info.ModTime(), now, th) {
		return
	}
	t.bytes.Add(info.Size())
	t.files.Add(1)

	var err error
	switch act {
	case actMeasure:
		return
	case actRecycle:
		err = w.trash.Submit(path)
	case actDelete:
		err = removeFile(path)
	}
	if err != nil && !errors.Is(err, fs.ErrNotExist) {
		t.hadError.Store(true)
		w.log.Debug().Err(err).Str("path", path).Msg("cannot remove file")
	}
}

func (t *tally) result(cancelled bool) walkResult {
	return walkResult{
		Bytes:     t.bytes.Load(),
		Files:     t.files.Load(),
		HadError:  t.hadError.Load(),
		Cancelled: cancelled,
	}
}

// removeFile deletes path permanently. On Windows a read-only file is made
// writable and retried once. A file that is already gone is not an error.
func removeFile(path string) error {
	p := longPath(path)
	err := os.Remove(p)
	if err == nil || errors.Is(err, fs.ErrNotExist) {
		return nil
	}
	if runtime.GOOS == "windows" && errors.Is(err, fs.ErrPermission) {
		if chErr := os.Chmod(p, 0o600); chErr == nil {
			if err = os.Remove(p); err == nil || errors.Is(err, fs.ErrNotExist) {
				return nil
			}
		}
	}
	return err
}
