package roster

import (
	"context"
	"path/filepath"
	"sync"
	"sync/atomic"
	"time"

	"github.com/fsnotify/fsnotify"
	"github.com/go-faster/errors"
	"github.com/sirupsen/logrus"

	"github.com/spektr-org/gccdash/resource"
)

// ============================================================================
// STORE: current dataset, swapped atomically on reload
// ============================================================================

// ErrNotWatchable is returned by Watch for sources that are not local files.
var ErrNotWatchable = errors.New("data source is not a local file")

// Status describes the last load attempt.
type Status struct {
	Loaded      bool      `json:"loaded"`
	Records     int       `json:"records"`
	Source      string    `json:"source"`
	LoadedAt    time.Time `json:"loadedAt,omitempty"`
	LastAttempt time.Time `json:"lastAttempt,omitempty"`
	LastError   string    `json:"lastError,omitempty"`
}

// StoreOption configures a Store.
type StoreOption func(*Store)

// WithLogger sets the logger used for reload and watch events.
func WithLogger(log logrus.FieldLogger) StoreOption {
	return func(s *Store) { s.log = log }
}

// WithClock replaces time.Now.
func WithClock(now func() time.Time) StoreOption {
	return func(s *Store) { s.now = now }
}

// WithDebounce sets how long Watch waits after the last file event before reloading.
func WithDebounce(d time.Duration) StoreOption {
	return func(s *Store) { s.debounce = d }
}

// OnLoad registers fn to run after every successful load.
func OnLoad(fn func(*Dataset)) StoreOption {
	return func(s *Store) { s.hooks = append(s.hooks, fn) }
}

// Store holds the current dataset. Readers see either a complete dataset or none.
type Store struct {
	fetcher  resource.Fetcher
	log      logrus.FieldLogger
	now      func() time.Time
	debounce time.Duration
	hooks    []func(*Dataset)

	current atomic.Pointer[Dataset]

	mu     sync.Mutex
	status Status
}

// NewStore creates an empty store reading from f.
func NewStore(f resource.Fetcher, opts ...StoreOption) *Store {
	s := &Store{
		fetcher:  f,
		log:      logrus.StandardLogger(),
		now:      time.Now,
		debounce: 250 * time.Millisecond,
	}
	for _, opt := range opts {
		opt(s)
	}
	s.status.Source = f.Location()
	return s
}

// Current returns the current dataset, or false when nothing has loaded yet.
func (s *Store) Current() (*Dataset, bool) {
	d := s.current.Load()
	return d, d != nil
}

// Status returns a snapshot of the load state.
func (s *Store) Status() Status {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.status
}

// Reload loads the source and swaps it in. On failure the previous dataset
// stays current and the error is recorded in Status.
func (s *Store) Reload(ctx context.Context) (*Dataset, error) {
	started := s.now()
	d, err := Load(ctx, s.fetcher, started)

	s.mu.Lock()
	s.status.LastAttempt = started
	if err != nil {
		s.status.LastError = err.Error()
		s.mu.Unlock()
		s.log.WithError(err).WithField("source", s.fetcher.Location()).Error("dataset load failed")
		return nil, err
	}
	s.current.Store(d)
	s.status.Loaded = true
	s.status.Records = d.Len()
	s.status.LoadedAt = d.LoadedAt()
	s.status.LastError = ""
	s.mu.Unlock()

	s.log.WithFields(logrus.Fields{
		"source":  d.Source(),
		"records": d.Len(),
	}).Info("dataset loaded")

	for _, fn := range s.hooks {
		fn(d)
	}
	return d, nil
}

// Watch reloads the dataset whenever its file is written or recreated, until
// ctx is done. The parent directory is watched so that editors replacing the
// file are picked up.
func (s *Store) Watch(ctx context.Context) error {
	file, ok := s.fetcher.(*resource.File)
	if !ok {
		return ErrNotWatchable
	}
	target, err := filepath.Abs(file.Path())
	if err != nil {
		return errors.Wrap(err, "resolve data path")
	}

	w, err := fsnotify.NewWatcher()
	if err != nil {
		return errors.Wrap(err, "create watcher")
	}
	defer w.Close()

	if err := w.Add(filepath.Dir(target)); err != nil {
		return errors.Wrapf(err, "watch %s", filepath.Dir(target))
	}
	s.log.WithField("path", target).Info("watching dataset for changes")

	var pending <-chan time.Time
	for {
		select {
		case <-ctx.Done():
			return nil
		case ev, ok := <-w.Events:
			if !ok {
				return nil
			}
			if filepath.Clean(ev.Name) != target {
				continue
			}
			if ev.Has(fsnotify.Write) || ev.Has(fsnotify.Create) {
				pending = time.After(s.debounce)
			}
		case err, ok := <-w.Errors:
			if !ok {
				return nil
			}
			s.log.WithError(err).Warn("dataset watcher error")
		case <-pending:
			pending = nil
			// Errors are recorded in Status and logged by Reload.
			_, _ = s.Reload(ctx)
		}
	}
}
