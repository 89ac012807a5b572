package firmware

import (
	"context"
	"sync"
	"time"
)

// DefaultSaveTimeout bounds one background save.
const DefaultSaveTimeout = 10 * time.Second

// SaverLogger receives save failures.
type SaverLogger interface {
	Error(msg string, args ...any)
}

type noopSaverLogger struct{}

func (noopSaverLogger) Error(string, ...any) {}

// Saver writes tracker snapshots to a Store on a background goroutine.
//
// Schedule marks a save as wanted and returns immediately. Requests made
// while a save is already queued are merged into it; the snapshot is taken
// when the save runs, so it always includes the newest state. Failures are
// logged and reported to the error callback. The saver never retries.
type Saver struct {
	store    Store
	snapshot func() Data
	timeout  time.Duration

	mu      sync.RWMutex
	logger  SaverLogger
	onError func(error)
	onSaved func(time.Duration)

	pending  chan struct{}
	stop     chan struct{}
	done     chan struct{}
	startOne sync.Once
	stopOne  sync.Once
}

// NewSaver creates a saver writing snapshot() to store. A non-positive
// timeout uses DefaultSaveTimeout.
func NewSaver(store Store, snapshot func() Data, timeout time.Duration) *Saver {
	if timeout <= 0 {
		timeout = DefaultSaveTimeout
	}
	return &Saver{
		store:    store,
		snapshot: snapshot,
		timeout:  timeout,
		logger:   noopSaverLogger{},
		pending:  make(chan struct{}, 1),
		stop:     make(chan struct{}),
		done:     make(chan struct{}),
	}
}

// SetLogger sets the failure logger.
func (s *Saver) SetLogger(l SaverLogger) {
	s.mu.Lock()
	defer s.mu.Unlock()
	if l == nil {
		l = noopSaverLogger{}
	}
	s.logger = l
}

// SetOnError registers a callback for failed saves.
func (s *Saver) SetOnError(fn func(error)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onError = fn
}

// SetOnSaved registers a callback run after each successful save with its
// duration.
func (s *Saver) SetOnSaved(fn func(time.Duration)) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.onSaved = fn
}

// Start launches the background goroutine. Later calls do nothing.
// Cancelling ctx stops the saver after a final pending save.
func (s *Saver) Start(ctx context.Context) {
	s.startOne.Do(func() {
		go s.run(ctx)
	})
}

// Schedule requests a save. It never blocks.
func (s *Saver) Schedule() {
	select {
	case s.pending <- struct{}{}:
	default:
	}
}

// Stop ends the background goroutine, running any pending save first, and
// waits for it to exit. A save scheduled after the goroutine already left
// on context cancellation is run here. It must only be called after Start.
func (s *Saver) Stop() {
	s.stopOne.Do(func() { close(s.stop) })
	<-s.done
	s.flush()
}

// SaveNow saves synchronously on the caller's goroutine.
func (s *Saver) SaveNow(ctx context.Context) error {
	select {
	case <-s.stop:
		return ErrSaverStopped
	default:
	}
	return s.save(ctx)
}

func (s *Saver) run(ctx context.Context) {
	defer close(s.done)
	for {
		select {
		case <-s.pending:
			s.save(context.Background()) //nolint:errcheck // reported through callbacks
		case <-s.stop:
			s.flush()
			return
		case <-ctx.Done():
			s.flush()
			return
		}
	}
}

func (s *Saver) flush() {
	select {
	case <-s.pending:
		s.save(context.Background()) //nolint:errcheck // reported through callbacks
	default:
	}
}

func (s *Saver) save(parent context.Context) error {
	ctx, cancel := context.WithTimeout(parent, s.timeout)
	defer cancel()

	start := time.Now()
	err := s.store.Save(ctx, s.snapshot())

	s.mu.RLock()
	logger, onError, onSaved := s.logger, s.onError, s.onSaved
	s.mu.RUnlock()

	if err != nil {
		logger.Error("firmware history save failed", "error", err)
		if onError != nil {
			onError(err)
		}
		return err
	}
	if onSaved != nil {
		onSaved(time.Since(start))
	}
	return nil
}
