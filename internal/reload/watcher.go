// SPDX-License-Identifier: Apache-2.0
// Copyright 2026 Sandbox Contributors

// Package reload watches a mods tree and reloads content when it changes.
package reload

import (
	"context"
	"io/fs"
	"log/slog"
	"os"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/gobwas/glob"
	"github.com/samber/oops"
	"github.com/sethvargo/go-retry"

	"github.com/sandboxgame/sandbox/pkg/errutil"
)

// Default timings.
const (
	DefaultDebounce   = 250 * time.Millisecond
	DefaultRetries    = 3
	DefaultRetryDelay = 500 * time.Millisecond
)

// Reloader drops and reloads all content.
type Reloader interface {
	Reload(ctx context.Context) error
}

// Watcher runs a Reloader after files under a root directory change.
// Bursts of events within the debounce window cause one reload.
type Watcher struct {
	root       string
	reloader   Reloader
	debounce   time.Duration
	retries    uint64
	retryDelay time.Duration
	ignore     []glob.Glob
	logger     *slog.Logger

	fsw       *fsnotify.Watcher
	closeOnce sync.Once
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets how long the tree must be quiet before a reload.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		w.debounce = d
	}
}

// WithRetry sets how many times a failed reload is retried, and the delay
// between attempts.
func WithRetry(retries uint64, delay time.Duration) Option {
	return func(w *Watcher) {
		w.retries = retries
		w.retryDelay = delay
	}
}

// WithIgnore skips events for files whose base name matches a pattern.
func WithIgnore(patterns ...glob.Glob) Option {
	return func(w *Watcher) {
		w.ignore = append(w.ignore, patterns...)
	}
}

// WithLogger sets the logger. Defaults to slog.Default.
func WithLogger(l *slog.Logger) Option {
	return func(w *Watcher) {
		w.logger = l
	}
}

// New starts watching every directory under root. Call Run to handle
// events, or Close to give up.
func New(root string, reloader Reloader, opts ...Option) (*Watcher, error) {
	w := &Watcher{
		root:       root,
		reloader:   reloader,
		debounce:   DefaultDebounce,
		retries:    DefaultRetries,
		retryDelay: DefaultRetryDelay,
		logger:     slog.Default(),
	}
	for _, opt := range opts {
		opt(w)
	}
	w.logger = w.logger.With("root", root)

	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, oops.Code("WATCH_FAILED").With("root", root).Wrapf(err, "create file watcher")
	}
	w.fsw = fsw

	if err := w.addTree(root); err != nil {
		w.Close()
		return nil, err
	}
	return w, nil
}

// Close stops watching. It is safe to call more than once.
func (w *Watcher) Close() {
	w.closeOnce.Do(func() {
		if err := w.fsw.Close(); err != nil {
			w.logger.Warn("closing file watcher", "error", err)
		}
	})
}

// Run handles events until ctx is done, then closes the watcher.
func (w *Watcher) Run(ctx context.Context) error {
	defer w.Close()

	timer := time.NewTimer(w.debounce)
	timer.Stop()
	defer timer.Stop()

	for {
		select {
		case <-ctx.Done():
			return nil

		case ev, ok := <-w.fsw.Events:
			if !ok {
				return nil
			}
			if w.ignored(ev.Name) {
				continue
			}
			if ev.Has(fsnotify.Create) {
				if info, err := os.Stat(ev.Name); err == nil && info.IsDir() {
					if err := w.addTree(ev.Name); err != nil {
						errutil.LogWarn(w.logger, "watching new directory", err)
					}
				}
			}
			w.logger.Debug("content changed", "file", ev.Name, "op", ev.Op.String())
			timer.Reset(w.debounce)

		case err, ok := <-w.fsw.Errors:
			if !ok {
				return nil
			}
			w.logger.Warn("file watcher error", "error", err)

		case <-timer.C:
			w.reload(ctx)
		}
	}
}

func (w *Watcher) reload(ctx context.Context) {
	start := time.Now()
	attempt := 0
	backoff := retry.WithMaxRetries(w.retries, retry.NewConstant(w.retryDelay))

	err := retry.Do(ctx, backoff, func(ctx context.Context) error {
		attempt++
		if err := w.reloader.Reload(ctx); err != nil {
			errutil.LogWarn(w.logger.With("attempt", attempt), "reload attempt failed", err)
			return retry.RetryableError(err)
		}
		return nil
	})
	if err != nil {
		if ctx.Err() == nil {
			errutil.LogError(w.logger, "reload failed", err)
		}
		return
	}
	w.logger.Info("content reloaded", "attempts", attempt, "duration", time.Since(start))
}

func (w *Watcher) addTree(root string) error {
	err := filepath.WalkDir(root, func(path string, d fs.DirEntry, err error) error {
		if err != nil {
			return err
		}
		if !d.IsDir() {
			return nil
		}
		if path != root && w.ignored(path) {
			return filepath.SkipDir
		}
		return w.fsw.Add(path)
	})
	if err != nil {
		return oops.Code("WATCH_FAILED").With("root", root).Wrapf(err, "watch directory tree")
	}
	return nil
}

func (w *Watcher) ignored(path string) bool {
	name := filepath.Base(path)
	for _, g := range w.ignore {
		if g.Match(name) {
			return true
		}
	}
	return false
}
