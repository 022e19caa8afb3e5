package domain

import "fmt"

// Role is one of the closed set of platform roles. Unknown strings never become a Role.
type Role string

const (
	RoleStudent       Role = "student"
	RoleParent        Role = "parent"
	RoleTeacher       Role = "teacher"
	RoleSchoolAdmin   Role = "school_admin"
	RoleSocialWorker  Role = "social_worker"
	RolePlatformAdmin Role = "platform_admin"
	RoleSubAdmin      Role = "sub_admin"
)

var knownRoles = map[Role]struct{}{
	RoleStudent:       {},
	RoleParent:        {},
	RoleTeacher:       {},
	RoleSchoolAdmin:   {},
	RoleSocialWorker:  {},
	RolePlatformAdmin: {},
	RoleSubAdmin:      {},
}

// ParseRole validates a raw role string.
func ParseRole(raw string) (Role, error) {
	role := Role(raw)
	if _, ok := knownRoles[role]; !ok {
		return "", Invalid(fmt.Sprintf("unknown role %q", raw))
	}
	return role, nil
}

// IsAdmin reports platform-wide administrators that bypass role filtering.
func (r Role) IsAdmin() bool {
	return r == RolePlatformAdmin || r == RoleSubAdmin
}

// ApproverType designates who may review a completed task.
type ApproverType string

const (
	ApproverParent  ApproverType = "parent"
	ApproverTeacher ApproverType = "teacher"
	ApproverNone    ApproverType = "none"
)

// DefaultApproverType derives the approver from the creator's roles.
func DefaultApproverType(creatorRoles []Role) ApproverType {
	switch {
	case hasRole(creatorRoles, RoleParent):
		return ApproverParent
	case hasRole(creatorRoles, RoleTeacher), hasRole(creatorRoles, RoleSchoolAdmin):
		return ApproverTeacher
	default:
		return ApproverNone
	}
}

func hasRole(roles []Role, want Role) bool {
	for _, r := range roles {
		if r == want {
			return true
		}
	}
	return false
}
