package core

import (
	"encoding/json"
	"errors"
	"testing"
)

func TestParseRole(t *testing.T) {
	tests := []struct {
		name    string
		raw     string
		want    Role
		wantErr error
	}{
		{name: "canonical lawyer", raw: "LAWYER", want: RoleLawyer},
		{name: "lowercase lawyer", raw: "lawyer", want: RoleLawyer},
		{name: "mixed case client", raw: "Client", want: RoleClient},
		{name: "surrounding whitespace", raw: "  client\t", want: RoleClient},
		{name: "empty", raw: "", wantErr: ErrRoleRequired},
		{name: "whitespace only", raw: "   ", wantErr: ErrRoleRequired},
		{name: "unknown role", raw: "paralegal", wantErr: ErrUnknownRole},
	}

	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			got, err := ParseRole(test.raw)
			if test.wantErr != nil {
				if !errors.Is(err, test.wantErr) {
					t.Fatalf("ParseRole(%q) error = %v, want %v", test.raw, err, test.wantErr)
				}
				return
			}
			if err != nil {
				t.Fatalf("ParseRole(%q): %v", test.raw, err)
			}
			if got != test.want {
				t.Errorf("ParseRole(%q) = %q, want %q", test.raw, got, test.want)
			}
		})
	}
}

func TestRole_Valid(t *testing.T) {
	if !RoleLawyer.Valid() || !RoleClient.Valid() {
		t.Error("canonical roles report invalid")
	}
	if Role("lawyer").Valid() {
		t.Error("non-canonical casing reports valid; normalization happens at ingress")
	}
	if Role("").Valid() {
		t.Error("empty role reports valid")
	}
}

// Requirement: roles arriving over the wire are normalized during decode so
// comparisons never see raw casing.
func TestRole_UnmarshalJSON(t *testing.T) {
	var payload struct {
		Role Role `json:"role"`
	}

	if err := json.Unmarshal([]byte(`{"role":"lawyer"}`), &payload); err != nil {
		t.Fatalf("unmarshal: %v", err)
	}
	if payload.Role != RoleLawyer {
		t.Errorf("Role = %q, want %q", payload.Role, RoleLawyer)
	}

	if err := json.Unmarshal([]byte(`{"role":"chauffeur"}`), &payload); err == nil {
		t.Error("expected error for unknown role")
	}
}
