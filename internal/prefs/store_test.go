package prefs_test

import (
	"context"
	"errors"
	"path/filepath"
	"testing"

	"github.com/calder/taxlead-crm-go/internal/domain"
	"github.com/calder/taxlead-crm-go/internal/prefs"

	"go.uber.org/zap"
)

func openStore(t *testing.T) (*prefs.Store, string) {
	t.Helper()
	path := filepath.Join(t.TempDir(), "prefs.db")
	s, err := prefs.Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("open store: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s, path
}

func TestViewMode_DefaultWhenUnset(t *testing.T) {
	s, _ := openStore(t)
	if got := s.ViewMode(context.Background(), "u1"); got != domain.DefaultViewMode {
		t.Errorf("expected default %q, got %q", domain.DefaultViewMode, got)
	}
}

func TestViewMode_SetAndGet(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	s.SetViewMode(ctx, "u1", domain.ViewKanban)
	if got := s.ViewMode(ctx, "u1"); got != domain.ViewKanban {
		t.Errorf("expected kanban, got %q", got)
	}

	// Unrecognized values are ignored on write, so the stored value stands.
	s.SetViewMode(ctx, "u1", domain.ViewMode("spreadsheet"))
	if got := s.ViewMode(ctx, "u1"); got != domain.ViewKanban {
		t.Errorf("invalid write must not clobber, got %q", got)
	}
}

func TestViewMode_PerUser(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	s.SetViewMode(ctx, "u1", domain.ViewCards)
	if got := s.ViewMode(ctx, "u2"); got != domain.DefaultViewMode {
		t.Errorf("u2 must see the default, got %q", got)
	}
}

func TestFilterSets_RoundTripAcrossReopen(t *testing.T) {
	s, path := openStore(t)
	ctx := context.Background()

	fs := &domain.SavedFilterSet{
		Name: "hot with arrears",
		Conditions: []domain.FilterCondition{
			{Field: domain.FieldStatus, Operator: domain.OpEquals, Value: "HOT"},
			{Field: domain.FieldArrears, Operator: domain.OpGreater, Value: "1000"},
		},
	}
	saved, err := s.SaveFilterSet(ctx, "u1", fs)
	if err != nil {
		t.Fatalf("save: %v", err)
	}
	if saved.ID == "" || saved.CreatedAt.IsZero() {
		t.Fatal("save must assign id and created_at")
	}
	s.Close()

	reopened, err := prefs.Open(path, zap.NewNop())
	if err != nil {
		t.Fatalf("reopen: %v", err)
	}
	defer reopened.Close()

	sets, err := reopened.ListFilterSets(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sets) != 1 {
		t.Fatalf("expected 1 set, got %d", len(sets))
	}
	got := sets[0]
	if got.Name != fs.Name || len(got.Conditions) != 2 {
		t.Fatalf("set did not round-trip: %+v", got)
	}
	for i, c := range fs.Conditions {
		if got.Conditions[i] != c {
			t.Errorf("condition %d: got %+v want %+v (order must be preserved)", i, got.Conditions[i], c)
		}
	}
}

func TestFilterSets_UpdateKeepsCreatedAt(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	saved, err := s.SaveFilterSet(ctx, "u1", &domain.SavedFilterSet{Name: "v1"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	saved.Name = "v2"
	updated, err := s.SaveFilterSet(ctx, "u1", saved)
	if err != nil {
		t.Fatalf("update: %v", err)
	}
	if updated.ID != saved.ID {
		t.Error("update must keep the id")
	}
	if !updated.CreatedAt.Equal(saved.CreatedAt) {
		t.Errorf("update must report the original created_at, got %v want %v",
			updated.CreatedAt, saved.CreatedAt)
	}

	sets, _ := s.ListFilterSets(ctx, "u1")
	if len(sets) != 1 || sets[0].Name != "v2" {
		t.Fatalf("expected single updated set, got %+v", sets)
	}
}

func TestFilterSets_SaveScopedToUser(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	saved, err := s.SaveFilterSet(ctx, "u1", &domain.SavedFilterSet{Name: "mine"})
	if err != nil {
		t.Fatalf("save: %v", err)
	}

	// A different user submitting the same id must not touch u1's set
	_, err = s.SaveFilterSet(ctx, "u2", &domain.SavedFilterSet{ID: saved.ID, Name: "takeover"})
	var notFound *domain.ErrNotFound
	if err == nil || !errors.As(err, &notFound) {
		t.Fatalf("expected not found for another user's id, got %v", err)
	}

	sets, err := s.ListFilterSets(ctx, "u1")
	if err != nil {
		t.Fatalf("list: %v", err)
	}
	if len(sets) != 1 || sets[0].Name != "mine" {
		t.Fatalf("u1's set must be untouched, got %+v", sets)
	}

	other, err := s.ListFilterSets(ctx, "u2")
	if err != nil {
		t.Fatalf("list u2: %v", err)
	}
	if len(other) != 0 {
		t.Errorf("u2 must not gain a set from the rejected save, got %+v", other)
	}
}

func TestFilterSets_DeleteScopedToUser(t *testing.T) {
	s, _ := openStore(t)
	ctx := context.Background()

	saved, _ := s.SaveFilterSet(ctx, "u1", &domain.SavedFilterSet{Name: "mine"})

	if err := s.DeleteFilterSet(ctx, "u2", saved.ID); err == nil {
		t.Error("deleting another user's set must fail")
	}
	if err := s.DeleteFilterSet(ctx, "u1", saved.ID); err != nil {
		t.Errorf("owner delete failed: %v", err)
	}
}

func TestFilterSets_NameRequired(t *testing.T) {
	s, _ := openStore(t)
	if _, err := s.SaveFilterSet(context.Background(), "u1", &domain.SavedFilterSet{}); err == nil {
		t.Error("expected validation error for empty name")
	}
}
