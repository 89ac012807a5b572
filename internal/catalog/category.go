package catalog

import (
	"fmt"
	"strings"
)

// Category groups descriptors. Categories are what users enable; an
// observation in a disabled category is still materialized, but disabled.
type Category string

// Observation categories, in catalog order.
const (
	CategoryHealth          Category = "health"
	CategoryPower           Category = "power"
	CategoryFirmware        Category = "firmware"
	CategoryVideo           Category = "video"
	CategoryAudio           Category = "audio"
	CategoryMotion          Category = "motion"
	CategoryCVDetection     Category = "cv_detection"
	CategoryCVPaid          Category = "cv_paid"
	CategoryOtherPaid       Category = "other_paid"
	CategoryNotifications   Category = "notifications"
	CategoryRecording       Category = "recording"
	CategoryFloodlight      Category = "floodlight"
	CategoryRadar           Category = "radar"
	CategoryLocalProcessing Category = "local_processing"
	CategoryFeatures        Category = "features"
	CategoryDeviceStatus    Category = "device_status"
)

type categoryInfo struct {
	name   string
	prefix string
}

var categoryInfos = map[Category]categoryInfo{
	CategoryHealth:          {"Health & Connectivity", "Health"},
	CategoryPower:           {"Power & Battery", "Power"},
	CategoryFirmware:        {"Firmware", "Firmware"},
	CategoryVideo:           {"Video & Streaming", "Video"},
	CategoryAudio:           {"Audio", "Audio"},
	CategoryMotion:          {"Motion Detection", "Motion"},
	CategoryCVDetection:     {"CV Detection Types", "CV"},
	CategoryCVPaid:          {"CV Paid Features", "Paid CV"},
	CategoryOtherPaid:       {"Other Paid Features", "Paid"},
	CategoryNotifications:   {"Notifications", "Notify"},
	CategoryRecording:       {"Recording & Storage", "Recording"},
	CategoryFloodlight:      {"Floodlight", "Light"},
	CategoryRadar:           {"Radar / Bird's Eye", "Radar"},
	CategoryLocalProcessing: {"Local Processing", "Local"},
	CategoryFeatures:        {"Feature Eligibility", "Feature"},
	CategoryDeviceStatus:    {"Device Status", "Status"},
}

// Categories returns every known category in catalog order.
func Categories() []Category {
	return []Category{
		CategoryHealth,
		CategoryPower,
		CategoryFirmware,
		CategoryVideo,
		CategoryAudio,
		CategoryMotion,
		CategoryCVDetection,
		CategoryCVPaid,
		CategoryOtherPaid,
		CategoryNotifications,
		CategoryRecording,
		CategoryFloodlight,
		CategoryRadar,
		CategoryLocalProcessing,
		CategoryFeatures,
		CategoryDeviceStatus,
	}
}

// ParseCategory validates a category name from configuration.
func ParseCategory(s string) (Category, error) {
	c := Category(strings.TrimSpace(s))
	if _, ok := categoryInfos[c]; !ok {
		return "", fmt.Errorf("%w: %q", ErrUnknownCategory, s)
	}
	return c, nil
}

// ParseCategories converts names to a set. An empty list yields an empty set.
func ParseCategories(names []string) (map[Category]bool, error) {
	set := make(map[Category]bool, len(names))
	for _, n := range names {
		c, err := ParseCategory(n)
		if err != nil {
			return nil, err
		}
		set[c] = true
	}
	return set, nil
}

// DisplayName is the long, user-facing category title.
func (c Category) DisplayName() string {
	if info, ok := categoryInfos[c]; ok {
		return info.name
	}
	return titleCase(string(c))
}

// Prefix is the short label prepended to observation names.
func (c Category) Prefix() string {
	if info, ok := categoryInfos[c]; ok {
		return info.prefix
	}
	return titleCase(string(c))
}

// titleCase replaces underscores with spaces and capitalises each run of
// letters, so "lite_24x7_enabled" becomes "Lite 24X7 Enabled".
func titleCase(s string) string {
	var b strings.Builder
	b.Grow(len(s))
	prevLetter := false
	for _, r := range strings.ReplaceAll(s, "_", " ") {
		isLetter := ('a' <= r && r <= 'z') || ('A' <= r && r <= 'Z')
		switch {
		case isLetter && !prevLetter:
			b.WriteString(strings.ToUpper(string(r)))
		case isLetter:
			b.WriteString(strings.ToLower(string(r)))
		default:
			b.WriteRune(r)
		}
		prevLetter = isLetter
	}
	return b.String()
}
