package watcher

import (
	"context"
	"errors"
	"fmt"
	"path/filepath"
	"sync"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/sirupsen/logrus"

	"github.com/blackwell-systems/jobskills/internal/dataset"
	"github.com/blackwell-systems/jobskills/internal/materialize"
)

// DefaultDebounce is the quiet period after the last event before a
// rebuild starts.
const DefaultDebounce = 2 * time.Second

// Rematerializer rebuilds every summary relation.
type Rematerializer interface {
	Rematerialize(ctx context.Context) (*materialize.Result, error)
}

// Watcher triggers a rebuild whenever a source file in dir changes.
type Watcher struct {
	dir      string
	files    map[string]bool
	target   Rematerializer
	debounce time.Duration
	log      logrus.FieldLogger
	onRun    func(*materialize.Result, error)

	fsw    *fsnotify.Watcher
	cancel context.CancelFunc
	stopCh chan struct{}
	wg     sync.WaitGroup
}

// Option configures a Watcher.
type Option func(*Watcher)

// WithDebounce sets the quiet period before a rebuild.
func WithDebounce(d time.Duration) Option {
	return func(w *Watcher) {
		if d > 0 {
			w.debounce = d
		}
	}
}

// WithLogger sets the logger.
func WithLogger(l logrus.FieldLogger) Option {
	return func(w *Watcher) { w.log = l }
}

// OnRun registers a callback invoked after each rebuild.
func OnRun(fn func(*materialize.Result, error)) Option {
	return func(w *Watcher) { w.onRun = fn }
}

// New creates a Watcher for the source files in dir.
func New(dir string, target Rematerializer, opts ...Option) (*Watcher, error) {
	if target == nil {
		return nil, errors.New("rematerializer cannot be nil")
	}
	if dir == "" {
		return nil, errors.New("data directory cannot be empty")
	}

	w := &Watcher{
		dir:      dir,
		files:    make(map[string]bool, len(dataset.CSVFiles)),
		target:   target,
		debounce: DefaultDebounce,
		log:      logrus.StandardLogger(),
		stopCh:   make(chan struct{}),
	}
	for _, name := range dataset.CSVFiles {
		w.files[name] = true
	}
	for _, opt := range opts {
		opt(w)
	}
	return w, nil
}

// Start subscribes to the data directory and begins processing events.
func (w *Watcher) Start() error {
	fsw, err := fsnotify.NewWatcher()
	if err != nil {
		return fmt.Errorf("failed to create filesystem watcher: %w", err)
	}
	if err := fsw.Add(w.dir); err != nil {
		fsw.Close()
		return fmt.Errorf("failed to watch %s: %w", w.dir, err)
	}
	w.fsw = fsw

	ctx, cancel := context.WithCancel(context.Background())
	w.cancel = cancel

	w.wg.Add(1)
	go w.run(ctx)

	w.log.WithField("dir", w.dir).Info("watching source files")
	return nil
}

// Relevant reports whether ev touches one of the source files.
func (w *Watcher) Relevant(ev fsnotify.Event) bool {
	if !w.files[filepath.Base(ev.Name)] {
		return false
	}
	return ev.Has(fsnotify.Create) || ev.Has(fsnotify.Write) ||
		ev.Has(fsnotify.Remove) || ev.Has(fsnotify.Rename)
}

func (w *Watcher) run(ctx context.Context) {
	defer w.wg.Done()

	timer := time.NewTimer(w.debounce)
	if !timer.Stop() {
		<-timer.C
	}
	defer timer.Stop()

	for {
		select {
		case ev, ok := <-w.fsw.Events:
			if !ok {
				return
			}
			if w.Relevant(ev) {
				w.log.WithFields(logrus.Fields{"file": filepath.Base(ev.Name), "op": ev.Op.String()}).Debug("source changed")
				timer.Reset(w.debounce)
			}
		case err, ok := <-w.fsw.Errors:
			if !ok {
				return
			}
			w.log.WithError(err).Warn("filesystem watcher error")
		case <-timer.C:
			w.rebuild(ctx)
		case <-w.stopCh:
			return
		}
	}
}

func (w *Watcher) rebuild(ctx context.Context) {
	res, err := w.target.Rematerialize(ctx)
	if err != nil {
		w.log.WithError(err).Error("re-materialization failed")
	} else {
		w.log.WithFields(logrus.Fields{"run_id": res.RunID, "relations": len(res.Runs)}).Info("summaries rebuilt")
	}
	if w.onRun != nil {
		w.onRun(res, err)
	}
}

// Stop halts the watcher, cancelling any in-flight rebuild, and waits for
// the event loop to exit.
func (w *Watcher) Stop() error {
	close(w.stopCh)
	if w.cancel != nil {
		w.cancel()
	}
	w.wg.Wait()

	if w.fsw != nil {
		return w.fsw.Close()
	}
	return nil
}
