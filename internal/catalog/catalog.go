package catalog

import (
	"fmt"
	"sort"
	"sync"
)

// Catalog is an ordered, immutable collection of descriptors with unique keys.
//
// Thread Safety:
//   - A Catalog is read-only after New and safe for concurrent use.
type Catalog struct {
	descriptors []Descriptor
	index       map[string]int
}

// New builds a catalog in the given order.
//
// Returns:
//   - *Catalog: Catalog indexed by key
//   - error: ErrDuplicateKey or ErrInvalidDescriptor
func New(descriptors ...Descriptor) (*Catalog, error) {
	c := &Catalog{
		descriptors: make([]Descriptor, 0, len(descriptors)),
		index:       make(map[string]int, len(descriptors)),
	}
	for _, d := range descriptors {
		if d.Key == "" || d.Category == "" || d.Path == "" {
			return nil, fmt.Errorf("%w: key=%q category=%q path=%q", ErrInvalidDescriptor, d.Key, d.Category, d.Path)
		}
		if _, dup := c.index[d.Key]; dup {
			return nil, fmt.Errorf("%w: %s", ErrDuplicateKey, d.Key)
		}
		c.index[d.Key] = len(c.descriptors)
		c.descriptors = append(c.descriptors, d)
	}
	return c, nil
}

// MustNew is New that panics on error. Only for static tables.
func MustNew(descriptors ...Descriptor) *Catalog {
	c, err := New(descriptors...)
	if err != nil {
		panic(err)
	}
	return c
}

var defaultCatalog = sync.OnceValue(func() *Catalog {
	return MustNew(builtin()...)
})

// Default returns the built-in device observation catalog. It is built on
// first use and shared for the life of the process.
func Default() *Catalog {
	return defaultCatalog()
}

// Len returns the number of descriptors.
func (c *Catalog) Len() int {
	return len(c.descriptors)
}

// All returns the descriptors in catalog order. The slice is a copy.
func (c *Catalog) All() []Descriptor {
	out := make([]Descriptor, len(c.descriptors))
	copy(out, c.descriptors)
	return out
}

// Lookup finds a descriptor by key.
func (c *Catalog) Lookup(key string) (Descriptor, bool) {
	i, ok := c.index[key]
	if !ok {
		return Descriptor{}, false
	}
	return c.descriptors[i], true
}

// ByCategory returns the descriptors of one category in catalog order.
func (c *Catalog) ByCategory(cat Category) []Descriptor {
	var out []Descriptor
	for _, d := range c.descriptors {
		if d.Category == cat {
			out = append(out, d)
		}
	}
	return out
}

// Paths returns the distinct attribute paths referenced by the catalog, sorted.
func (c *Catalog) Paths() []string {
	seen := make(map[string]struct{}, len(c.descriptors))
	out := make([]string, 0, len(c.descriptors))
	for _, d := range c.descriptors {
		if _, ok := seen[d.Path]; ok {
			continue
		}
		seen[d.Path] = struct{}{}
		out = append(out, d.Path)
	}
	sort.Strings(out)
	return out
}
