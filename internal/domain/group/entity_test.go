package group

import (
	"errors"
	"testing"

	circles_errors "circles/pkg/errors"

	"github.com/google/uuid"
)

func TestValidateBounds(t *testing.T) {
	tests := []struct {
		min, max int
		ok       bool
	}{
		{2, 6, true},
		{2, 2, true},
		{6, 6, true},
		{1, 4, false},
		{3, 7, false},
		{5, 4, false},
	}
	for _, tt := range tests {
		err := ValidateBounds(tt.min, tt.max)
		if tt.ok && err != nil {
			t.Errorf("ValidateBounds(%d, %d) = %v, want nil", tt.min, tt.max, err)
		}
		if !tt.ok && !errors.Is(err, circles_errors.ErrInvalidInput) {
			t.Errorf("ValidateBounds(%d, %d) = %v, want ErrInvalidInput", tt.min, tt.max, err)
		}
	}
}

func TestApplyMergesBeforeValidating(t *testing.T) {
	g := Group{Name: "book club", Visibility: VisibilityPublic, MinMembers: 2, MaxMembers: 4}

	lo := 5
	if _, err := g.Apply(SettingsPatch{MinMembers: &lo}); !errors.Is(err, circles_errors.ErrInvalidInput) {
		t.Errorf("min above current max: err = %v, want ErrInvalidInput", err)
	}

	hi := 6
	got, err := g.Apply(SettingsPatch{MinMembers: &lo, MaxMembers: &hi})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if got.MinMembers != 5 || got.MaxMembers != 6 {
		t.Errorf("bounds = %d..%d, want 5..6", got.MinMembers, got.MaxMembers)
	}
	if g.MinMembers != 2 {
		t.Error("Apply mutated the receiver")
	}
}

func TestIsAdmin(t *testing.T) {
	creator, other := uuid.New(), uuid.New()
	g := Group{ID: uuid.New(), CreatorID: creator}

	if !IsAdmin(g, Member{GroupID: g.ID, UserID: creator}) {
		t.Error("creator should always be admin")
	}
	if IsAdmin(g, Member{GroupID: g.ID, UserID: other}) {
		t.Error("plain member should not be admin")
	}
	if !IsAdmin(g, Member{GroupID: g.ID, UserID: other, IsAdmin: true}) {
		t.Error("flagged member should be admin")
	}
}
