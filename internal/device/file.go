package device

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"

	"gopkg.in/yaml.v3"

	"github.com/nerrad567/ringext-core/internal/attrs"
)

// snapshotDevice is one device in a snapshot file.
type snapshotDevice struct {
	ID          any            `json:"id" yaml:"id"`
	Attrs       map[string]any `json:"attrs" yaml:"attrs"`
	HealthAttrs map[string]any `json:"health_attrs" yaml:"health_attrs"`
	Alerts      map[string]any `json:"alerts" yaml:"alerts"`
}

// FileSource reads devices from a snapshot file, grouped by family:
//
//	{"doorbells": [{"id": 12345, "attrs": {...}, "health_attrs": {...}}], "chimes": [...]}
//
// Files ending in .yaml or .yml are read as YAML, anything else as JSON.
// The file is read again on every call. A device with an invalid id is
// skipped and logged; the rest of the file is still used.
type FileSource struct {
	path   string
	logger Logger
}

// NewFileSource returns a source reading path.
func NewFileSource(path string) *FileSource {
	return &FileSource{path: path, logger: noopLogger{}}
}

// SetLogger sets the logger that reports skipped devices. It must be called
// before the source is used.
func (s *FileSource) SetLogger(logger Logger) {
	if logger == nil {
		logger = noopLogger{}
	}
	s.logger = logger
}

// Path returns the snapshot file path.
func (s *FileSource) Path() string {
	return s.path
}

// Devices implements Source.
func (s *FileSource) Devices(_ context.Context) ([]Record, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		return nil, fmt.Errorf("%w: reading %s: %w", ErrSourceUnavailable, s.path, err)
	}
	return parseSnapshot(data, isYAML(s.path), func(family, id string, err error) {
		s.logger.Warn("skipping snapshot device", "path", s.path, "family", family, "id", id, "error", err)
	})
}

func isYAML(path string) bool {
	switch strings.ToLower(filepath.Ext(path)) {
	case ".yaml", ".yml":
		return true
	default:
		return false
	}
}

// ParseSnapshot decodes a snapshot document. Unknown family names are read
// as FamilyOther.
//
// Parameters:
//   - data: the JSON or YAML document
//   - asYAML: decode data as YAML instead of JSON
//
// Returns:
//   - []Record: the devices sorted by id; devices with an invalid id are left out
//   - error: ErrInvalidSnapshot if the document itself cannot be decoded
func ParseSnapshot(data []byte, asYAML bool) ([]Record, error) {
	return parseSnapshot(data, asYAML, nil)
}

func parseSnapshot(data []byte, asYAML bool, skip func(family, id string, err error)) ([]Record, error) {
	var doc map[string][]snapshotDevice
	if asYAML {
		if err := yaml.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
	} else {
		if err := json.Unmarshal(data, &doc); err != nil {
			return nil, fmt.Errorf("%w: %w", ErrInvalidSnapshot, err)
		}
	}

	var records []Record
	for family, devices := range doc {
		for _, d := range devices {
			id := formatID(d.ID)
			if err := ValidateID(id); err != nil {
				if skip != nil {
					skip(family, id, err)
				}
				continue
			}
			r := NewRecord(id, ParseFamily(family), Fragments{
				Attributes: attrs.Tree(d.Attrs),
				Health:     d.HealthAttrs,
				Alerts:     d.Alerts,
			})
			if r.Empty() {
				continue
			}
			records = append(records, r)
		}
	}
	SortRecords(records)
	return records, nil
}

// formatID renders an id from a snapshot. Numeric ids lose any
// fractional part JSON decoding gave them.
func formatID(v any) string {
	switch x := v.(type) {
	case nil:
		return ""
	case string:
		return x
	}
	if i, ok := attrs.Int(v); ok {
		return fmt.Sprint(i)
	}
	return fmt.Sprint(v)
}
