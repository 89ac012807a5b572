package registry

import (
	"context"
	"errors"
	"reflect"
	"testing"
	"time"

	"github.com/nerrad567/ringext-core/internal/infrastructure/config"
	"github.com/nerrad567/ringext-core/internal/infrastructure/database"
	"github.com/nerrad567/ringext-core/internal/reconcile"
	_ "github.com/nerrad567/ringext-core/migrations"
)

func setupRegistry(t *testing.T) (*Registry, *SQLiteRepository) {
	t.Helper()

	ctx := context.Background()
	db, err := database.Open(ctx, config.DatabaseConfig{Path: database.MemoryPath})
	if err != nil {
		t.Fatalf("Open() error = %v", err)
	}
	t.Cleanup(func() { db.Close() }) //nolint:errcheck // Test cleanup

	if err := db.Migrate(ctx); err != nil {
		t.Fatalf("Migrate() error = %v", err)
	}

	repo := NewSQLiteRepository(db.DB)
	reg := NewRegistry(repo, "ringext")
	reg.now = func() time.Time { return time.Date(2026, 3, 1, 9, 0, 0, 0, time.UTC) }
	return reg, repo
}

func specs(ids ...string) []Spec {
	out := make([]Spec, 0, len(ids))
	for _, id := range ids {
		out = append(out, Spec{Identifier: id, Key: reconcile.KeyOf(id), Enabled: true})
	}
	return out
}

func TestRegistry_AddAndList(t *testing.T) {
	reg, _ := setupRegistry(t)
	ctx := context.Background()

	if err := reg.Add(ctx, "entry-1", "111", specs("111_rssi", "111_connected")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := reg.Add(ctx, "entry-2", "222", specs("222_rssi")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	got, err := reg.ListIdentifiers(ctx, "ringext", "entry-1")
	if err != nil {
		t.Fatalf("ListIdentifiers() error = %v", err)
	}
	if !got.Equal(reconcile.NewSet("111_rssi", "111_connected")) {
		t.Errorf("ListIdentifiers() = %v", got.Sorted())
	}

	other, _ := reg.ListIdentifiers(ctx, "elsewhere", "entry-1")
	if other.Len() != 0 {
		t.Errorf("ListIdentifiers(other namespace) = %v, want empty", other.Sorted())
	}

	e, err := reg.Get("111_rssi")
	if err != nil {
		t.Fatalf("Get() error = %v", err)
	}
	if e.Group != "111" || e.Key != "rssi" || !e.Enabled || e.Namespace != "ringext" {
		t.Errorf("Get() = %+v", e)
	}
}

func TestRegistry_AddDuplicateIsAtomic(t *testing.T) {
	reg, repo := setupRegistry(t)
	ctx := context.Background()

	if err := reg.Add(ctx, "entry-1", "111", specs("111_rssi")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}

	err := reg.Add(ctx, "entry-1", "111", specs("111_connected", "111_rssi"))
	if !errors.Is(err, ErrEntityExists) {
		t.Fatalf("Add() error = %v, want ErrEntityExists", err)
	}

	stored, err := repo.List(ctx)
	if err != nil {
		t.Fatalf("List() error = %v", err)
	}
	if len(stored) != 1 {
		t.Errorf("stored %d entities, want 1 after failed batch", len(stored))
	}
	if _, err := reg.Get("111_connected"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("Get() error = %v, want ErrEntityNotFound", err)
	}
}

func TestRegistry_AddInvalid(t *testing.T) {
	reg, _ := setupRegistry(t)

	err := reg.Add(context.Background(), "entry-1", "111", []Spec{{Identifier: "111_x"}})
	if !errors.Is(err, ErrInvalidEntity) {
		t.Errorf("Add() error = %v, want ErrInvalidEntity", err)
	}
}

func TestRegistry_Remove(t *testing.T) {
	reg, _ := setupRegistry(t)
	ctx := context.Background()

	if err := reg.Add(ctx, "entry-1", "111", specs("111_rssi")); err != nil {
		t.Fatalf("Add() error = %v", err)
	}
	if err := reg.Remove(ctx, "111_rssi"); err != nil {
		t.Fatalf("Remove() error = %v", err)
	}
	if err := reg.Remove(ctx, "111_rssi"); !errors.Is(err, ErrEntityNotFound) {
		t.Errorf("second Remove() error = %v, want ErrEntityNotFound", err)
	}
}

func TestRegistry_RefreshCache(t *testing.T) {
	reg, repo := setupRegistry(t)
	ctx := context.Background()

	created := time.Date(2026, 2, 1, 8, 0, 0, 0, time.UTC)
	if err := repo.Insert(ctx, []Entity{{
		Identifier: "111_rssi", Namespace: "ringext", ScopeID: "entry-1", Group: "111",
		Key: "rssi", Category: "health", Name: "Health: Rssi", Unit: "dBm",
		Enabled: false, CreatedAt: created,
	}}); err != nil {
		t.Fatalf("Insert() error = %v", err)
	}

	if got := reg.Entities("entry-1"); len(got) != 0 {
		t.Fatalf("Entities() before refresh = %v, want empty", got)
	}
	if err := reg.RefreshCache(ctx); err != nil {
		t.Fatalf("RefreshCache() error = %v", err)
	}

	got := reg.Entities("entry-1")
	want := []Entity{{
		Identifier: "111_rssi", Namespace: "ringext", ScopeID: "entry-1", Group: "111",
		Key: "rssi", Category: "health", Name: "Health: Rssi", Unit: "dBm",
		Enabled: false, CreatedAt: created,
	}}
	if !reflect.DeepEqual(got, want) {
		t.Errorf("Entities() = %+v, want %+v", got, want)
	}
}

func TestRegistry_ApplyDelta(t *testing.T) {
	reg, _ := setupRegistry(t)
	ctx := context.Background()

	actual := reconcile.NewSet()
	expected := reconcile.NewSet("entry-1_coordinator_health", "111_rssi", "111_connected")

	delta := reconcile.Reconcile(expected, actual)
	for _, group := range delta.Groups() {
		if err := reg.Add(ctx, "entry-1", group, specs(delta.ToAdd[group]...)); err != nil {
			t.Fatalf("Add(%s) error = %v", group, err)
		}
	}

	after, _ := reg.ListIdentifiers(ctx, "ringext", "entry-1")
	if !reconcile.Reconcile(expected, after).Empty() {
		t.Errorf("second reconcile not empty, registry has %v", after.Sorted())
	}
}
