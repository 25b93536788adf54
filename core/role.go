package core

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Role is the canonical account role. The canonical form is UPPERCASE.
// Raw input is normalized when it enters the system (JSON, form state,
// route declaration), never at comparison sites.
type Role string

const (
	RoleLawyer Role = "LAWYER"
	RoleClient Role = "CLIENT"
)

// ParseRole normalizes raw input ("lawyer", "Client", "LAWYER") into a
// canonical Role.
func ParseRole(raw string) (Role, error) {
	switch Role(strings.ToUpper(strings.TrimSpace(raw))) {
	case RoleLawyer:
		return RoleLawyer, nil
	case RoleClient:
		return RoleClient, nil
	case "":
		return "", ErrRoleRequired
	default:
		return "", fmt.Errorf("%w: %q", ErrUnknownRole, raw)
	}
}

func (r Role) Valid() bool {
	return r == RoleLawyer || r == RoleClient
}

func (r Role) String() string {
	return string(r)
}

// UnmarshalJSON normalizes the wire representation so an external identity
// carrying a lowercase role compares equal to a declared requirement.
func (r *Role) UnmarshalJSON(data []byte) error {
	var raw string
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	parsed, err := ParseRole(raw)
	if err != nil {
		return err
	}
	*r = parsed
	return nil
}
