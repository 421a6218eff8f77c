package configstore

import (
	"fmt"
	"strings"

	"forecastwb/internal/errors"
)

// Role is the caller's permission level. Levels are ordered: viewer,
// editor, approver.
type Role string

const (
	RoleViewer   Role = "viewer"
	RoleEditor   Role = "editor"
	RoleApprover Role = "approver"
)

var roleLevels = map[Role]int{
	RoleViewer:   0,
	RoleEditor:   1,
	RoleApprover: 2,
}

// ParseRole normalizes a role string, defaulting to viewer when empty.
func ParseRole(s string) (Role, error) {
	role := Role(strings.ToLower(strings.TrimSpace(s)))
	if role == "" {
		return RoleViewer, nil
	}
	if _, ok := roleLevels[role]; !ok {
		return "", errors.NewValidationError(fmt.Sprintf("unknown role %q", s))
	}
	return role, nil
}

// EnsureMinRole rejects callers below the required level.
func EnsureMinRole(role, minimum Role) error {
	if roleLevels[role] < roleLevels[minimum] {
		return errors.NewPermissionError(
			fmt.Sprintf("role %q is not permitted to perform this action", role))
	}
	return nil
}
