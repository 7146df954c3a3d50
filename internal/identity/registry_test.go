package identity

import "testing"

func TestRegistryLookup(t *testing.T) {
	reg := NewRegistry([]string{"alpha_secret123", "beta_abc", " gamma_x ", "solo", ""})

	cases := []struct {
		token   string
		wantID  string
		wantHit bool
	}{
		{"alpha_secret123", "alpha", true},
		{"beta_abc", "beta", true},
		{"gamma_x", "gamma", true},
		{"solo", "solo", true},
		{"alpha_wrong", "", false},
		{"alpha", "", false},
		{"", "", false},
	}

	for _, tc := range cases {
		id, ok := reg.Lookup(tc.token)
		if ok != tc.wantHit {
			t.Errorf("Lookup(%q) hit = %v, want %v", tc.token, ok, tc.wantHit)
		}
		if id != tc.wantID {
			t.Errorf("Lookup(%q) identity = %q, want %q", tc.token, id, tc.wantID)
		}
	}

	if reg.Len() != 4 {
		t.Errorf("Len() = %d, want 4", reg.Len())
	}
}

func TestRegistryLeadingUnderscore(t *testing.T) {
	reg := NewRegistry([]string{"_oddball"})

	id, ok := reg.Lookup("_oddball")
	if !ok {
		t.Fatal("expected token to be allow-listed")
	}
	// No usable prefix before the underscore: the token is its own identity.
	if id != "_oddball" {
		t.Errorf("identity = %q, want %q", id, "_oddball")
	}
}
