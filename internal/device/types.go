package device

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"github.com/nerrad567/ringext-core/internal/attrs"
)

// Family groups devices for display. It plays no part in identity.
type Family string

// Device families, in processing order.
const (
	FamilyDoorbells   Family = "doorbells"
	FamilyStickupCams Family = "stickup_cams"
	FamilyChimes      Family = "chimes"
	FamilyOther       Family = "other"
)

// Families returns every family in processing order.
func Families() []Family {
	return []Family{FamilyDoorbells, FamilyStickupCams, FamilyChimes, FamilyOther}
}

// ParseFamily returns the family named s, or FamilyOther if unknown.
func ParseFamily(s string) Family {
	for _, f := range Families() {
		if string(f) == s {
			return f
		}
	}
	return FamilyOther
}

// DetectFamily guesses a family from a device kind such as "doorbell_v4"
// or "stickup_cam_lunar".
func DetectFamily(kind string) Family {
	k := strings.ToLower(kind)
	switch {
	case strings.Contains(k, "doorbell"):
		return FamilyDoorbells
	case strings.Contains(k, "chime"):
		return FamilyChimes
	case strings.Contains(k, "stickup"), strings.Contains(k, "cam"):
		return FamilyStickupCams
	default:
		return FamilyOther
	}
}

func (f Family) order() int {
	for i, fam := range Families() {
		if fam == f {
			return i
		}
	}
	return len(Families())
}

// Fragments are the raw parts of one device snapshot.
type Fragments struct {
	Attributes attrs.Tree
	Health     map[string]any
	Alerts     map[string]any
}

// Record is one device with its merged attribute tree.
type Record struct {
	ID         string
	Family     Family
	Attributes attrs.Tree
}

// NewRecord merges f into a record. When family is empty it is detected
// from the "kind" attribute.
func NewRecord(id string, family Family, f Fragments) Record {
	merged := attrs.Merge(f.Attributes, f.Health, f.Alerts)
	if family == "" {
		kind, _ := attrs.String(merged["kind"])
		family = DetectFamily(kind)
	}
	return Record{ID: id, Family: family, Attributes: merged}
}

// ValidateID checks that id can prefix observation identifiers.
func ValidateID(id string) error {
	if id == "" || strings.Contains(id, "_") {
		return fmt.Errorf("%w: %q", ErrInvalidID, id)
	}
	return nil
}

// Empty reports whether the record has no attributes at all. Such devices
// are skipped by sources.
func (r Record) Empty() bool {
	return len(r.Attributes) == 0
}

// Name is the user-facing device name ("description"), or the id.
func (r Record) Name() string {
	if s, ok := attrs.String(r.Attributes["description"]); ok && s != "" {
		return s
	}
	return r.ID
}

// Model is the device kind.
func (r Record) Model() string {
	s, _ := attrs.String(r.Attributes["kind"])
	return s
}

// FirmwareVersion returns the reported firmware version when it is set.
func (r Record) FirmwareVersion() (string, bool) {
	v, ok := attrs.Resolve(r.Attributes, "health.firmware_version")
	if !ok || !attrs.Truthy(v) {
		return "", false
	}
	return attrs.String(v)
}

// Source supplies the current devices for a refresh cycle. An empty list
// is a valid answer; an error means the source itself is unusable.
type Source interface {
	Devices(ctx context.Context) ([]Record, error)
}

// SortRecords orders records by family, then id.
func SortRecords(records []Record) {
	sort.SliceStable(records, func(i, j int) bool {
		oi, oj := records[i].Family.order(), records[j].Family.order()
		if oi != oj {
			return oi < oj
		}
		return records[i].ID < records[j].ID
	})
}

// IDs returns the ids of records in order.
func IDs(records []Record) []string {
	ids := make([]string, len(records))
	for i, r := range records {
		ids[i] = r.ID
	}
	return ids
}
