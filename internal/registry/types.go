package registry

import (
	"fmt"
	"time"
)

// Entity is one materialized observation.
type Entity struct {
	Identifier  string    `json:"identifier"`
	Namespace   string    `json:"namespace"`
	ScopeID     string    `json:"scope_id"`
	Group       string    `json:"device_group"`
	Key         string    `json:"key"`
	Category    string    `json:"category,omitempty"`
	Name        string    `json:"name,omitempty"`
	Unit        string    `json:"unit,omitempty"`
	DeviceClass string    `json:"device_class,omitempty"`
	StateClass  string    `json:"state_class,omitempty"`
	Enabled     bool      `json:"enabled"`
	CreatedAt   time.Time `json:"created_at"`
}

// Spec describes an entity to create. Namespace, scope and group come from
// the Add call.
type Spec struct {
	Identifier  string
	Key         string
	Category    string
	Name        string
	Unit        string
	DeviceClass string
	StateClass  string
	Enabled     bool
}

// Validate checks the fields every stored entity needs.
func (e Entity) Validate() error {
	switch {
	case e.Identifier == "":
		return fmt.Errorf("%w: identifier is required", ErrInvalidEntity)
	case e.Namespace == "":
		return fmt.Errorf("%w: %s: namespace is required", ErrInvalidEntity, e.Identifier)
	case e.ScopeID == "":
		return fmt.Errorf("%w: %s: scope is required", ErrInvalidEntity, e.Identifier)
	case e.Key == "":
		return fmt.Errorf("%w: %s: key is required", ErrInvalidEntity, e.Identifier)
	}
	return nil
}
