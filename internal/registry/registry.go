package registry

import (
	"context"
	"errors"
	"fmt"
	"sort"
	"sync"
	"time"

	"github.com/nerrad567/ringext-core/internal/reconcile"
)

// Logger defines the logging interface used by the Registry.
type Logger interface {
	Debug(msg string, args ...any)
	Info(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Info(string, ...any)  {}

// Registry fronts a Repository with an in-memory cache of every entity.
type Registry struct {
	repo      Repository
	namespace string

	cacheMu sync.RWMutex
	cache   map[string]Entity // by identifier
	logger  Logger
	now     func() time.Time
}

// NewRegistry creates a registry that creates entities in namespace.
//
// Parameters:
//   - repo: Repository for entity persistence
//   - namespace: Namespace stamped on every entity Add creates
//
// Returns:
//   - *Registry: Registry with an empty cache; call RefreshCache before use
func NewRegistry(repo Repository, namespace string) *Registry {
	return &Registry{
		repo:      repo,
		namespace: namespace,
		cache:     make(map[string]Entity),
		logger:    noopLogger{},
		now:       time.Now,
	}
}

// SetLogger sets the logger for the registry.
func (r *Registry) SetLogger(logger Logger) {
	r.logger = logger
}

// Namespace returns the namespace new entities are created in.
func (r *Registry) Namespace() string {
	return r.namespace
}

// RefreshCache reloads every entity from the repository.
// This should be called on application startup.
func (r *Registry) RefreshCache(ctx context.Context) error {
	entities, err := r.repo.List(ctx)
	if err != nil {
		return fmt.Errorf("loading entities: %w", err)
	}

	r.cacheMu.Lock()
	defer r.cacheMu.Unlock()

	r.cache = make(map[string]Entity, len(entities))
	for _, e := range entities {
		r.cache[e.Identifier] = e
	}

	r.logger.Info("entity cache refreshed", "count", len(entities))
	return nil
}

// ListIdentifiers returns the identifiers materialized for one
// configuration instance.
func (r *Registry) ListIdentifiers(_ context.Context, namespace, scopeID string) (reconcile.Set, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	ids := make(reconcile.Set)
	for id, e := range r.cache {
		if e.Namespace == namespace && e.ScopeID == scopeID {
			ids.Add(id)
		}
	}
	return ids, nil
}

// Entities returns the entities of one configuration instance, ordered by
// identifier.
func (r *Registry) Entities(scopeID string) []Entity {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	var out []Entity
	for _, e := range r.cache {
		if e.Namespace == r.namespace && e.ScopeID == scopeID {
			out = append(out, e)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Identifier < out[j].Identifier })
	return out
}

// Get returns one entity from the cache.
//
// Returns:
//   - Entity: The cached entity
//   - error: ErrEntityNotFound if the identifier is not materialized
func (r *Registry) Get(identifier string) (Entity, error) {
	r.cacheMu.RLock()
	defer r.cacheMu.RUnlock()

	e, ok := r.cache[identifier]
	if !ok {
		return Entity{}, ErrEntityNotFound
	}
	return e, nil
}

// Add creates the entities of one device group in a single transaction.
//
// Parameters:
//   - ctx: Context for cancellation
//   - scopeID: Configuration instance owning the entities
//   - group: Device group, usually the device id
//   - specs: Entities to create
//
// Returns:
//   - error: ErrEntityExists if any identifier is taken, in which case none
//     are created
func (r *Registry) Add(ctx context.Context, scopeID, group string, specs []Spec) error {
	if len(specs) == 0 {
		return nil
	}

	now := r.now().UTC()
	entities := make([]Entity, 0, len(specs))
	for _, s := range specs {
		entities = append(entities, Entity{
			Identifier:  s.Identifier,
			Namespace:   r.namespace,
			ScopeID:     scopeID,
			Group:       group,
			Key:         s.Key,
			Category:    s.Category,
			Name:        s.Name,
			Unit:        s.Unit,
			DeviceClass: s.DeviceClass,
			StateClass:  s.StateClass,
			Enabled:     s.Enabled,
			CreatedAt:   now,
		})
	}

	if err := r.repo.Insert(ctx, entities); err != nil {
		return fmt.Errorf("adding group %s: %w", group, err)
	}

	r.cacheMu.Lock()
	for _, e := range entities {
		r.cache[e.Identifier] = e
	}
	r.cacheMu.Unlock()

	r.logger.Debug("entities added", "group", group, "count", len(entities))
	return nil
}

// Remove deletes one entity. Removing an identifier the repository no
// longer has still clears it from the cache.
//
// Returns:
//   - error: ErrEntityNotFound if neither the repository nor the cache had
//     it, otherwise the repository error
func (r *Registry) Remove(ctx context.Context, identifier string) error {
	err := r.repo.Delete(ctx, identifier)
	if err != nil && !errors.Is(err, ErrEntityNotFound) {
		return fmt.Errorf("removing %s: %w", identifier, err)
	}

	r.cacheMu.Lock()
	_, cached := r.cache[identifier]
	delete(r.cache, identifier)
	r.cacheMu.Unlock()

	if err != nil && !cached {
		return ErrEntityNotFound
	}
	r.logger.Debug("entity removed", "identifier", identifier)
	return nil
}
