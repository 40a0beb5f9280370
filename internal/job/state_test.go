package job

import (
	"context"
	"errors"
	"testing"
)

func TestMemoryStore_RolesAreIndependent(t *testing.T) {
	ctx := context.Background()
	s := NewMemoryStore()

	if _, err := s.Get(ctx, "j1", RolePrimary); !errors.Is(err, ErrNotFound) {
		t.Fatalf("Get unknown = %v, want ErrNotFound", err)
	}

	if err := s.Set(ctx, "j1", RolePrimary, StateVectorGenerated); err != nil {
		t.Fatalf("Set: %v", err)
	}
	if err := s.Set(ctx, "j1", RoleSecondary, StateInProgress); err != nil {
		t.Fatalf("Set: %v", err)
	}

	got, err := s.Get(ctx, "j1", RolePrimary)
	if err != nil || got != StateVectorGenerated {
		t.Fatalf("primary = %v, %v", got, err)
	}
	got, err = s.Get(ctx, "j1", RoleSecondary)
	if err != nil || got != StateInProgress {
		t.Fatalf("secondary = %v, %v", got, err)
	}

	// Advancing one role never touches the other.
	s.Set(ctx, "j1", RoleSecondary, StateExtractionComplete)
	got, _ = s.Get(ctx, "j1", RolePrimary)
	if got != StateVectorGenerated {
		t.Fatalf("primary after secondary update = %v", got)
	}
}
