package publish

import (
	"time"

	"github.com/nerrad567/ringext-core/internal/attrs"
)

// State is the current value of one observation.
type State struct {
	Identifier string         `json:"identifier"`
	DeviceID   string         `json:"device_id,omitempty"`
	Key        string         `json:"key"`
	Category   string         `json:"category,omitempty"`
	Name       string         `json:"name"`
	Value      any            `json:"value"`
	Unit       string         `json:"unit,omitempty"`
	Attributes map[string]any `json:"attributes,omitempty"`
	Available  bool           `json:"available"`
	Timestamp  time.Time      `json:"timestamp"`
}

// Numeric returns the value as a float64 for metric storage. Booleans map
// to 0 and 1; text and timestamps are not numeric.
func (s State) Numeric() (float64, bool) {
	switch v := s.Value.(type) {
	case nil, string, time.Time:
		return 0, false
	case bool:
		if v {
			return 1, true
		}
		return 0, true
	}
	return attrs.Float(s.Value)
}
