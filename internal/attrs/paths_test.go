package attrs

import (
	"reflect"
	"testing"
)

func TestPaths(t *testing.T) {
	tree := decode(t, `{
		"kind": "stickup_cam_v4",
		"health": {"rssi": -50, "firmware_version": "1.0"},
		"settings": {"zones": [1, 2], "empty": {}},
		"owner": null
	}`)

	want := []string{
		"health.firmware_version",
		"health.rssi",
		"kind",
		"owner",
		"settings.zones",
	}
	if got := Paths(tree); !reflect.DeepEqual(got, want) {
		t.Errorf("Paths() = %v, want %v", got, want)
	}
}

func TestRedact(t *testing.T) {
	tree := decode(t, `{
		"description": "Front Door",
		"owner": {"email": "a@b.c", "first_name": "A"},
		"location": {"latitude": 1.5, "name": "home"},
		"shared": [{"email": "x@y.z", "role": "guest"}]
	}`)
	keys := map[string]struct{}{
		"description": {}, "owner": {}, "email": {}, "latitude": {},
	}

	got := Redact(tree, keys)

	if got["description"] != Redacted || got["owner"] != Redacted {
		t.Errorf("top-level keys not redacted: %v", got)
	}
	if v, _ := Resolve(got, "location.latitude"); v != Redacted {
		t.Errorf("location.latitude = %v, want redacted", v)
	}
	if v, _ := Resolve(got, "location.name"); v != "home" {
		t.Errorf("location.name = %v, want home", v)
	}
	shared := got["shared"].([]any)[0].(map[string]any)
	if shared["email"] != Redacted || shared["role"] != "guest" {
		t.Errorf("sequence element = %v", shared)
	}

	// Source untouched.
	if v, _ := Resolve(tree, "location.latitude"); v != 1.5 {
		t.Errorf("source mutated: latitude = %v", v)
	}
}
