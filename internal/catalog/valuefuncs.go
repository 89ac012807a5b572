package catalog

import (
	"fmt"
	"math"
	"time"

	"github.com/nerrad567/ringext-core/internal/attrs"
)

const (
	secondsPerDay    = 86400
	secondsPerHour   = 3600
	secondsPerMinute = 60
)

// FormatUptime renders the seconds at path as "{d}d {h}h {m}m".
func FormatUptime(path string) ValueFunc {
	return func(t attrs.Tree) (any, error) {
		raw, ok := attrs.Resolve(t, path)
		if !ok || raw == nil {
			return nil, nil
		}
		secs, ok := attrs.Int(raw)
		if !ok {
			return nil, fmt.Errorf("uptime %v is not a number", raw)
		}
		days := secs / secondsPerDay
		hours := (secs % secondsPerDay) / secondsPerHour
		mins := (secs % secondsPerHour) / secondsPerMinute
		return fmt.Sprintf("%dd %dh %dm", days, hours, mins), nil
	}
}

// UnixTime converts the Unix seconds at path to a UTC time.
func UnixTime(path string) ValueFunc {
	return func(t attrs.Tree) (any, error) {
		raw, ok := attrs.Resolve(t, path)
		if !ok || raw == nil {
			return nil, nil
		}
		f, ok := attrs.Float(raw)
		if !ok || math.IsNaN(f) || math.IsInf(f, 0) {
			return nil, fmt.Errorf("timestamp %v is not a number", raw)
		}
		sec, frac := math.Modf(f)
		return time.Unix(int64(sec), int64(frac*float64(time.Second))).UTC(), nil
	}
}

// TruthyFloat returns the value at path as a float64 when it is set.
// Zero and empty values yield no value.
func TruthyFloat(path string) ValueFunc {
	return func(t attrs.Tree) (any, error) {
		raw, ok := attrs.Resolve(t, path)
		if !ok || !attrs.Truthy(raw) {
			return nil, nil
		}
		f, ok := attrs.Float(raw)
		if !ok {
			return nil, fmt.Errorf("%v is not a number", raw)
		}
		return f, nil
	}
}

// TruthyInt returns the value at path as an int64 when it is set.
func TruthyInt(path string) ValueFunc {
	return func(t attrs.Tree) (any, error) {
		raw, ok := attrs.Resolve(t, path)
		if !ok || !attrs.Truthy(raw) {
			return nil, nil
		}
		i, ok := attrs.Int(raw)
		if !ok {
			return nil, fmt.Errorf("%v is not an integer", raw)
		}
		return i, nil
	}
}

// IntBool reads an integer flag at path (0 or 1) as a bool.
func IntBool(path string) ValueFunc {
	return func(t attrs.Tree) (any, error) {
		raw, ok := attrs.Resolve(t, path)
		if !ok || raw == nil {
			return nil, nil
		}
		if b, isBool := raw.(bool); isBool {
			return b, nil
		}
		i, ok := attrs.Int(raw)
		if !ok {
			return nil, fmt.Errorf("%v is not an integer flag", raw)
		}
		return i != 0, nil
	}
}
