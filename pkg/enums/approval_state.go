package enums

import (
	"fmt"
	"strings"
)

// ApprovalState is the moderation state derived from a user's role and
// approval flag. Deleted users have no record, so there is no stored value
// for that state.
type ApprovalState string

const (
	ApprovalStatePending  ApprovalState = "pending"
	ApprovalStateApproved ApprovalState = "approved"
	ApprovalStateAdmin    ApprovalState = "admin"
)

// ApprovalStateAll is the admin listing sentinel meaning "any state".
const ApprovalStateAll = "all"

var validApprovalStates = []ApprovalState{
	ApprovalStatePending,
	ApprovalStateApproved,
	ApprovalStateAdmin,
}

// ApprovalStateOf derives the state for a role/approval pair.
func ApprovalStateOf(role UserRole, isApproved bool) ApprovalState {
	switch {
	case role == UserRoleAdmin:
		return ApprovalStateAdmin
	case isApproved:
		return ApprovalStateApproved
	default:
		return ApprovalStatePending
	}
}

// String implements fmt.Stringer.
func (s ApprovalState) String() string {
	return string(s)
}

// IsValid reports whether the value is a known ApprovalState.
func (s ApprovalState) IsValid() bool {
	for _, candidate := range validApprovalStates {
		if candidate == s {
			return true
		}
	}
	return false
}

// ParseApprovalState converts raw input into an ApprovalState.
func ParseApprovalState(value string) (ApprovalState, error) {
	normalized := strings.ToLower(strings.TrimSpace(value))
	for _, candidate := range validApprovalStates {
		if string(candidate) == normalized {
			return candidate, nil
		}
	}
	return "", fmt.Errorf("invalid approval state %q", value)
}
