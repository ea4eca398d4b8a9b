package aqreport

import (
	"context"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"go.uber.org/zap"
)

// Watcher error message constants
const (
	ErrMsgWatcherCreateFailed = "failed to create template watcher"
	ErrMsgWatcherAddFailed    = "failed to watch template directory"
	ErrMsgNilRegenerateFunc   = "regenerate function is nil"
)

// RegenerateFunc is called by a TemplateWatcher after templates changed.
type RegenerateFunc func(ctx context.Context) error

// WatcherOptions configures a TemplateWatcher.
type WatcherOptions struct {
	// Debounce is the quiet period after the last change before fn runs.
	// Default: 500ms
	Debounce time.Duration

	// Logger receives watcher logs. Default: no logging.
	Logger *zap.Logger
}

// TemplateWatcher watches a template directory and calls a RegenerateFunc
// once changes to the template files settle.
type TemplateWatcher struct {
	mu        sync.Mutex
	watcher   *fsnotify.Watcher
	dir       string
	fn        RegenerateFunc
	files     map[string]struct{}
	debounce  time.Duration
	logger    *zap.Logger
	pending   bool
	lastEvent time.Time
	runs      int
	stopCh    chan struct{}
	doneCh    chan struct{}
	running   bool
	stopped   bool
}

// NewTemplateWatcher creates a watcher for dir. It does not watch until Start.
func NewTemplateWatcher(dir string, fn RegenerateFunc, opts WatcherOptions) (*TemplateWatcher, error) {
	if fn == nil {
		return nil, &ConfigError{Message: ErrMsgNilRegenerateFunc}
	}

	watcher, err := fsnotify.NewWatcher()
	if err != nil {
		return nil, &ConfigError{Message: ErrMsgWatcherCreateFailed, Field: dir, Cause: err}
	}

	if opts.Debounce <= 0 {
		opts.Debounce = WatcherDefaultDebounce
	}
	if opts.Logger == nil {
		opts.Logger = zap.NewNop()
	}

	files := make(map[string]struct{}, len(TemplateRoles()))
	for _, role := range TemplateRoles() {
		files[role.FileName()] = struct{}{}
	}

	return &TemplateWatcher{
		watcher:  watcher,
		dir:      dir,
		fn:       fn,
		files:    files,
		debounce: opts.Debounce,
		logger:   opts.Logger,
		stopCh:   make(chan struct{}),
		doneCh:   make(chan struct{}),
	}, nil
}

// Start begins watching. It returns immediately; events are handled in a
// goroutine until ctx is cancelled or Stop is called.
func (w *TemplateWatcher) Start(ctx context.Context) error {
	w.mu.Lock()
	if w.running || w.stopped {
		w.mu.Unlock()
		return nil
	}
	if err := w.watcher.Add(w.dir); err != nil {
		w.mu.Unlock()
		return &ConfigError{Message: ErrMsgWatcherAddFailed, Field: w.dir, Cause: err}
	}
	w.running = true
	w.mu.Unlock()

	w.logger.Info(LogMsgWatcherStarted,
		zap.String(LogFieldPath, w.dir),
		zap.Duration(LogFieldDuration, w.debounce))

	go w.run(ctx)
	return nil
}

// Stop stops the watcher, waits for the event loop to exit and releases the
// underlying fsnotify watcher. A stopped watcher cannot be restarted.
func (w *TemplateWatcher) Stop() {
	w.mu.Lock()
	if w.stopped {
		w.mu.Unlock()
		return
	}
	w.stopped = true
	wasRunning := w.running
	w.running = false
	w.mu.Unlock()

	if wasRunning {
		close(w.stopCh)
		<-w.doneCh
	}

	if err := w.watcher.Close(); err != nil {
		w.logger.Warn(LogMsgWatcherError, zap.Error(err))
	}
	w.logger.Info(LogMsgWatcherStopped, zap.String(LogFieldPath, w.dir))
}

// Runs returns how many times the regenerate function has been called.
func (w *TemplateWatcher) Runs() int {
	w.mu.Lock()
	defer w.mu.Unlock()
	return w.runs
}

func (w *TemplateWatcher) run(ctx context.Context) {
	defer close(w.doneCh)

	ticker := time.NewTicker(WatcherTickInterval)
	defer ticker.Stop()

	for {
		select {
		case <-ctx.Done():
			return
		case <-w.stopCh:
			return
		case event, ok := <-w.watcher.Events:
			if !ok {
				return
			}
			w.handleEvent(event)
		case err, ok := <-w.watcher.Errors:
			if !ok {
				return
			}
			w.logger.Warn(LogMsgWatcherError, zap.Error(err))
		case <-ticker.C:
			w.flush(ctx)
		}
	}
}

// handleEvent marks a pending regeneration for writes to template files
func (w *TemplateWatcher) handleEvent(event fsnotify.Event) {
	if !event.Has(fsnotify.Create) && !event.Has(fsnotify.Write) &&
		!event.Has(fsnotify.Remove) && !event.Has(fsnotify.Rename) {
		return
	}
	if _, ok := w.files[filepath.Base(event.Name)]; !ok {
		return
	}

	w.logger.Debug(LogMsgWatcherEvent,
		zap.String(LogFieldPath, event.Name),
		zap.String(LogFieldTemplate, event.Op.String()))

	w.mu.Lock()
	w.pending = true
	w.lastEvent = time.Now()
	w.mu.Unlock()
}

// flush runs fn once the debounce window after the last event has passed
func (w *TemplateWatcher) flush(ctx context.Context) {
	w.mu.Lock()
	if !w.pending || time.Since(w.lastEvent) < w.debounce {
		w.mu.Unlock()
		return
	}
	w.pending = false
	w.runs++
	w.mu.Unlock()

	w.logger.Info(LogMsgWatcherRegenerate, zap.String(LogFieldPath, w.dir))
	if err := w.fn(ctx); err != nil {
		w.logger.Error(LogMsgWatcherError, zap.Error(err))
	}
}
