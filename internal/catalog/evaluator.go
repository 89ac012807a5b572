package catalog

import (
	"fmt"

	"github.com/nerrad567/ringext-core/internal/attrs"
)

// Logger receives diagnostics for descriptor functions that fail.
type Logger interface {
	Debug(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}

// Evaluator applies a catalog to merged device trees.
//
// A failing or panicking Value or Available func never escapes: the
// observation is reported unavailable (or without a value) for that call
// and the failure is logged at debug level.
type Evaluator struct {
	catalog *Catalog
	logger  Logger
}

// NewEvaluator returns an evaluator over c.
func NewEvaluator(c *Catalog) *Evaluator {
	return &Evaluator{catalog: c, logger: noopLogger{}}
}

// SetLogger sets the debug logger. Nil restores the no-op logger.
func (e *Evaluator) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	e.logger = logger
}

// Catalog returns the catalog being evaluated.
func (e *Evaluator) Catalog() *Catalog {
	return e.catalog
}

// Evaluate returns the keys of every descriptor available for t, in
// catalog order.
func (e *Evaluator) Evaluate(t attrs.Tree) []string {
	var keys []string
	for _, d := range e.catalog.descriptors {
		if e.Available(d, t) {
			keys = append(keys, d.Key)
		}
	}
	return keys
}

// Available reports whether d yields an observation for t.
func (e *Evaluator) Available(d Descriptor, t attrs.Tree) (available bool) {
	if d.Available == nil {
		return attrs.Exists(t, d.Path)
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("availability check panicked", "key", d.Key, "panic", fmt.Sprint(r))
			available = false
		}
	}()

	ok, err := d.Available(t)
	if err != nil {
		e.logger.Debug("availability check failed", "key", d.Key, "error", err)
		return false
	}
	return ok
}

// Value extracts the value of d from t. ok is false when there is no value,
// including a present nil. Availability is not consulted: an available
// observation may legitimately have no value.
func (e *Evaluator) Value(d Descriptor, t attrs.Tree) (value any, ok bool) {
	if d.Value == nil {
		v, found := attrs.Resolve(t, d.Path)
		return v, found && v != nil
	}

	defer func() {
		if r := recover(); r != nil {
			e.logger.Debug("value function panicked", "key", d.Key, "panic", fmt.Sprint(r))
			value, ok = nil, false
		}
	}()

	v, err := d.Value(t)
	if err != nil {
		e.logger.Debug("value function failed", "key", d.Key, "error", err)
		return nil, false
	}
	return v, v != nil
}

// Observation is one available descriptor and its current value.
type Observation struct {
	Descriptor Descriptor
	Value      any
	HasValue   bool
}

// Observations evaluates availability and value for every descriptor,
// returning the available ones in catalog order.
func (e *Evaluator) Observations(t attrs.Tree) []Observation {
	var out []Observation
	for _, d := range e.catalog.descriptors {
		if !e.Available(d, t) {
			continue
		}
		v, ok := e.Value(d, t)
		out = append(out, Observation{Descriptor: d, Value: v, HasValue: ok})
	}
	return out
}
