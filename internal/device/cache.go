package device

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/nerrad567/ringext-core/internal/attrs"
	"github.com/nerrad567/ringext-core/internal/infrastructure/mqtt"
)

// Subscriber is the part of the MQTT client the cache needs.
type Subscriber interface {
	Subscribe(topic string, qos byte, handler mqtt.MessageHandler) error
}

// Logger defines the logging interface used by the Cache.
type Logger interface {
	Debug(msg string, args ...any)
	Warn(msg string, args ...any)
}

type noopLogger struct{}

func (noopLogger) Debug(string, ...any) {}
func (noopLogger) Warn(string, ...any)  {}

// Cache keeps the latest retained fragments of every device seen on MQTT.
//
// An empty payload on a fragment topic clears that fragment; a device with
// no fragments left is forgotten. All methods are safe for concurrent use.
type Cache struct {
	topics mqtt.Topics

	mu      sync.RWMutex
	devices map[string]*Fragments
	logger  Logger
}

// NewCache creates an empty cache for topics under prefix.
func NewCache(topics mqtt.Topics) *Cache {
	return &Cache{
		topics:  topics,
		devices: make(map[string]*Fragments),
		logger:  noopLogger{},
	}
}

// SetLogger sets the logger for the cache.
func (c *Cache) SetLogger(logger Logger) {
	c.mu.Lock()
	defer c.mu.Unlock()
	if logger == nil {
		logger = noopLogger{}
	}
	c.logger = logger
}

// Subscribe registers the cache for every device fragment topic.
func (c *Cache) Subscribe(sub Subscriber, qos byte) error {
	if err := sub.Subscribe(c.topics.AllDeviceFragments(), qos, c.HandleMessage); err != nil {
		return fmt.Errorf("subscribing to device fragments: %w", err)
	}
	return nil
}

// HandleMessage stores one fragment. It is an mqtt.MessageHandler.
func (c *Cache) HandleMessage(topic string, payload []byte) error {
	deviceID, kind, ok := c.topics.ParseDeviceFragment(topic)
	if !ok {
		return fmt.Errorf("%w: unexpected topic %s", ErrInvalidFragment, topic)
	}
	if err := ValidateID(deviceID); err != nil {
		return err
	}

	var tree map[string]any
	if len(payload) > 0 {
		if err := json.Unmarshal(payload, &tree); err != nil {
			return fmt.Errorf("%w: %s: %w", ErrInvalidFragment, topic, err)
		}
	}

	c.mu.Lock()
	defer c.mu.Unlock()

	f, exists := c.devices[deviceID]
	if !exists {
		if tree == nil {
			return nil
		}
		f = &Fragments{}
		c.devices[deviceID] = f
	}

	switch kind {
	case mqtt.FragmentAttributes:
		f.Attributes = attrs.Tree(tree)
	case mqtt.FragmentHealth:
		f.Health = tree
	case mqtt.FragmentAlerts:
		f.Alerts = tree
	}

	if f.Attributes == nil && f.Health == nil && f.Alerts == nil {
		delete(c.devices, deviceID)
		c.logger.Debug("device cleared", "device_id", deviceID)
	}
	return nil
}

// Devices implements Source. Records are merged fresh on every call.
func (c *Cache) Devices(_ context.Context) ([]Record, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	records := make([]Record, 0, len(c.devices))
	for id, f := range c.devices {
		r := NewRecord(id, "", *f)
		if r.Empty() {
			continue
		}
		records = append(records, r)
	}
	SortRecords(records)
	return records, nil
}

// Len returns the number of devices with at least one fragment.
func (c *Cache) Len() int {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return len(c.devices)
}
