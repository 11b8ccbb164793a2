package identity

import "testing"

func TestNormalize(t *testing.T) {
	tests := []struct {
		name      string
		id        string
		email     string
		wantID    string
		anonymous bool
	}{
		{"empty id", "", "", "anonymous", true},
		{"whitespace id", "   ", "x@example.com", "anonymous", true},
		{"real id", "user-1", "x@example.com", "user-1", false},
		{"explicit anonymous", "anonymous", "", "anonymous", true},
		{"trimmed", " user-1 ", " x@example.com ", "user-1", false},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got := Normalize(tt.id, tt.email)
			if got.ID != tt.wantID {
				t.Fatalf("ID = %q, want %q", got.ID, tt.wantID)
			}
			if got.IsAnonymous() != tt.anonymous {
				t.Fatalf("IsAnonymous() = %v, want %v", got.IsAnonymous(), tt.anonymous)
			}
		})
	}
}

func TestAllowlist(t *testing.T) {
	list := NewAllowlist([]string{"VIP@Example.com", "  dev@example.com ", ""})

	if !list.Contains("vip@example.com") {
		t.Fatalf("lookup should be case-insensitive")
	}
	if !list.Contains("DEV@EXAMPLE.COM") {
		t.Fatalf("stored entries should be normalized")
	}
	if list.Contains("other@example.com") {
		t.Fatalf("unknown email should not match")
	}
	if list.Contains("") {
		t.Fatalf("empty email should never match")
	}

	if !list.IsUnlimited(Normalize("user-1", "vip@example.com")) {
		t.Fatalf("identity with allowlisted email should be unlimited")
	}
	if list.IsUnlimited(Normalize("", "")) {
		t.Fatalf("anonymous identity should not be unlimited")
	}

	var nilList *Allowlist
	if nilList.Contains("vip@example.com") {
		t.Fatalf("nil allowlist should match nothing")
	}
}
