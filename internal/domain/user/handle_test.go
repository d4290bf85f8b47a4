package user

import "testing"

func TestNormalizeHandle(t *testing.T) {
	tests := []struct {
		in   string
		want string
	}{
		{"Alice", "alice"},
		{"  bob.smith ", "bob_smith"},
		{"émile!!", "mile"},
		{"___", ""},
		{"a-very-long-handle-that-keeps-going", "a_very_long_handle_that"},
	}
	for _, tt := range tests {
		if got := NormalizeHandle(tt.in); got != tt.want {
			t.Errorf("NormalizeHandle(%q) = %q, want %q", tt.in, got, tt.want)
		}
	}
}

func TestDeriveHandleFallsBack(t *testing.T) {
	if got := DeriveHandle(Identity{Username: "", DisplayName: "Jo Ann"}); got != "jo_ann" {
		t.Errorf("DeriveHandle = %q, want %q", got, "jo_ann")
	}
	if got := DeriveHandle(Identity{}); got != "user" {
		t.Errorf("DeriveHandle = %q, want %q", got, "user")
	}
}
