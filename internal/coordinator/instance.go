package coordinator

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/nerrad567/ringext-core/internal/catalog"
	"github.com/nerrad567/ringext-core/internal/device"
	"github.com/nerrad567/ringext-core/internal/firmware"
	"github.com/nerrad567/ringext-core/internal/publish"
	"github.com/nerrad567/ringext-core/internal/reconcile"
	"github.com/nerrad567/ringext-core/internal/registry"
)

// DefaultInterval is the refresh interval used when Options.Interval is zero.
const DefaultInterval = time.Minute

// healthRepublishInterval keeps minutes_since_update current between cycles.
const healthRepublishInterval = time.Minute

// Registry materializes observations.
type Registry interface {
	ListIdentifiers(ctx context.Context, namespace, scopeID string) (reconcile.Set, error)
	Add(ctx context.Context, scopeID, group string, specs []registry.Spec) error
	Remove(ctx context.Context, identifier string) error
	Entities(scopeID string) []registry.Entity
}

// StatePublisher receives current observation states.
type StatePublisher interface {
	PublishStates(ctx context.Context, states []publish.State) error
	ClearStates(ctx context.Context, identifiers []string) error
}

// MetricWriter stores numeric values and firmware transitions.
type MetricWriter interface {
	WriteStates(ctx context.Context, states []publish.State) int
	WriteTransition(ctx context.Context, t firmware.Transition)
}

// Notifier announces firmware transitions.
type Notifier interface {
	NotifyFirmware(ctx context.Context, t firmware.Transition) error
}

// SaveScheduler requests a durable save of the firmware history.
type SaveScheduler interface {
	Schedule()
}

// Recorder receives cycle metrics.
type Recorder interface {
	ObserveCycle(success bool, started time.Time, d time.Duration)
	ObserveDelta(added, removed int)
	ObserveDeparted(n int)
	ObserveFirmwareTransition(kind string)
	SetInventory(devices, observations int)
}

// Logger is the logging interface used by the coordinator.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
	Warn(msg string, args ...any)
	Error(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}
func (noopLogger) Warn(string, ...any)  {}
func (noopLogger) Error(string, ...any) {}

type noopPublisher struct{}

func (noopPublisher) PublishStates(context.Context, []publish.State) error { return nil }
func (noopPublisher) ClearStates(context.Context, []string) error          { return nil }

type noopRecorder struct{}

func (noopRecorder) ObserveCycle(bool, time.Time, time.Duration) {}
func (noopRecorder) ObserveDelta(int, int)                       {}
func (noopRecorder) ObserveDeparted(int)                         {}
func (noopRecorder) ObserveFirmwareTransition(string)            {}
func (noopRecorder) SetInventory(int, int)                       {}

// Deps holds the collaborators of an Instance. Source, Registry and Tracker
// are required; everything else is optional.
type Deps struct {
	Source    device.Source
	Registry  Registry
	Tracker   *firmware.Tracker
	Evaluator *catalog.Evaluator

	Saver    SaveScheduler
	States   StatePublisher
	Metrics  MetricWriter
	Notifier Notifier
	Recorder Recorder
	Logger   Logger
	Clock    func() time.Time
}

// Options configures an Instance.
type Options struct {
	// EntryID identifies the configuration instance. It scopes every
	// materialized identifier and must not contain "_".
	EntryID string

	// Name is the display name reported by diagnostics.
	Name string

	// Namespace is the registry namespace owning the observations.
	Namespace string

	// EnabledCategories lists categories materialized enabled.
	EnabledCategories []catalog.Category

	// Interval is the time between scheduled cycles.
	Interval time.Duration
}

// Instance is the refresh context of one configuration instance.
type Instance struct {
	opts     Options
	enabled  map[catalog.Category]bool
	healthID string

	source    device.Source
	registry  Registry
	tracker   *firmware.Tracker
	evaluator *catalog.Evaluator
	saver     SaveScheduler
	states    StatePublisher
	metrics   MetricWriter
	notifier  Notifier
	recorder  Recorder
	logger    Logger
	now       func() time.Time

	// cycleMu serializes refresh cycles and guards churn.
	cycleMu sync.Mutex
	churn   *reconcile.ChurnTracker

	// mu guards the read views below.
	mu          sync.RWMutex
	health      healthState
	snapshot    *Snapshot
	records     []device.Record
	transitions []firmware.Transition

	trigger chan struct{}
}

// New creates an Instance. It validates options and fills defaults for
// optional collaborators.
//
// Parameters:
//   - deps: Collaborators; Source, Registry and Tracker are required
//   - opts: Instance options; EntryID must not contain "_"
//
// Returns:
//   - *Instance: Ready for Startup and Run
//   - error: ErrMissingDependency or ErrInvalidOptions
func New(deps Deps, opts Options) (*Instance, error) {
	switch {
	case deps.Source == nil:
		return nil, fmt.Errorf("%w: device source", ErrMissingDependency)
	case deps.Registry == nil:
		return nil, fmt.Errorf("%w: registry", ErrMissingDependency)
	case deps.Tracker == nil:
		return nil, fmt.Errorf("%w: firmware tracker", ErrMissingDependency)
	}

	if opts.EntryID == "" || strings.Contains(opts.EntryID, "_") {
		return nil, fmt.Errorf("%w: entry id %q", ErrInvalidOptions, opts.EntryID)
	}
	if opts.Namespace == "" {
		return nil, fmt.Errorf("%w: namespace is required", ErrInvalidOptions)
	}
	if opts.Interval <= 0 {
		opts.Interval = DefaultInterval
	}
	if opts.Name == "" {
		opts.Name = opts.EntryID
	}

	in := &Instance{
		opts:      opts,
		enabled:   make(map[catalog.Category]bool, len(opts.EnabledCategories)),
		healthID:  reconcile.CoordinatorHealthID(opts.EntryID),
		source:    deps.Source,
		registry:  deps.Registry,
		tracker:   deps.Tracker,
		evaluator: deps.Evaluator,
		saver:     deps.Saver,
		states:    deps.States,
		metrics:   deps.Metrics,
		notifier:  deps.Notifier,
		recorder:  deps.Recorder,
		logger:    deps.Logger,
		now:       deps.Clock,
		churn:     reconcile.NewChurnTracker(),
		health:    healthState{lastSuccess: true},
		trigger:   make(chan struct{}, 1),
	}
	for _, c := range opts.EnabledCategories {
		in.enabled[c] = true
	}

	if in.evaluator == nil {
		in.evaluator = catalog.NewEvaluator(catalog.Default())
	}
	if in.states == nil {
		in.states = noopPublisher{}
	}
	if in.recorder == nil {
		in.recorder = noopRecorder{}
	}
	if in.logger == nil {
		in.logger = noopLogger{}
	}
	if in.now == nil {
		in.now = time.Now
	}
	return in, nil
}

// EntryID returns the configuration instance id.
func (in *Instance) EntryID() string {
	return in.opts.EntryID
}

// Options returns the options the instance was created with, after defaults.
func (in *Instance) Options() Options {
	return in.opts
}

// Tracker returns the firmware history tracker owned by the instance.
func (in *Instance) Tracker() *firmware.Tracker {
	return in.tracker
}

// Evaluator returns the catalog evaluator used by the instance.
func (in *Instance) Evaluator() *catalog.Evaluator {
	return in.evaluator
}

// CoordinatorHealthID returns the identifier of the health observation.
func (in *Instance) CoordinatorHealthID() string {
	return in.healthID
}

// Enabled reports whether observations in c are materialized enabled.
func (in *Instance) Enabled(c catalog.Category) bool {
	return in.enabled[c]
}
