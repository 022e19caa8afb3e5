package task

import "github.com/amankumar-in/univance/domain"

// Every predicate switches over the full role set; an unlisted role is denied.

func isAssignee(p *domain.Principal, t *domain.Task) bool {
	return t.AssignedTo.Includes(p.Role, p.ProfileFor(p.Role))
}

func childAssigned(p *domain.Principal, t *domain.Task) bool {
	for _, child := range p.ChildIDs {
		if t.AssignedTo.Includes(domain.RoleStudent, child) {
			return true
		}
	}
	return false
}

func sameSchool(p *domain.Principal, t *domain.Task) bool {
	return t.SchoolID != "" && (p.SchoolID == "" || p.SchoolID == t.SchoolID)
}

func canView(p *domain.Principal, t *domain.Task) bool {
	if t.CreatedBy == p.UserID {
		return true
	}
	switch p.Role {
	case domain.RolePlatformAdmin, domain.RoleSubAdmin:
		return true
	case domain.RoleStudent, domain.RoleSocialWorker:
		return isAssignee(p, t)
	case domain.RoleParent:
		return isAssignee(p, t) || childAssigned(p, t)
	case domain.RoleTeacher:
		return isAssignee(p, t) || t.ClassID != ""
	case domain.RoleSchoolAdmin:
		return isAssignee(p, t) || sameSchool(p, t)
	default:
		return false
	}
}

func canModify(p *domain.Principal, t *domain.Task) bool {
	if t.CreatedBy == p.UserID {
		return true
	}
	switch p.Role {
	case domain.RolePlatformAdmin, domain.RoleSubAdmin:
		return true
	case domain.RoleSchoolAdmin:
		return sameSchool(p, t)
	case domain.RoleTeacher:
		return t.ClassID != "" && t.CreatedByRole(domain.RoleTeacher)
	case domain.RoleStudent, domain.RoleParent, domain.RoleSocialWorker:
		return false
	default:
		return false
	}
}

// canReview applies the approver rules of the task's approver type.
func canReview(p *domain.Principal, t *domain.Task) bool {
	if p.Role == domain.RolePlatformAdmin {
		return true
	}
	switch t.ApproverType {
	case domain.ApproverParent:
		if p.Role != domain.RoleParent {
			return false
		}
		if t.SpecificApproverID != "" {
			return t.SpecificApproverID == p.UserID
		}
		return t.CreatedBy == p.UserID
	case domain.ApproverTeacher:
		switch p.Role {
		case domain.RoleSchoolAdmin:
			return true
		case domain.RoleTeacher:
			return t.CreatedBy == p.UserID
		default:
			return false
		}
	case domain.ApproverNone:
		return false
	default:
		return false
	}
}

func canComment(p *domain.Principal, t *domain.Task) bool {
	if t.CreatedBy == p.UserID {
		return true
	}
	switch p.Role {
	case domain.RolePlatformAdmin, domain.RoleSubAdmin, domain.RoleSchoolAdmin:
		return true
	case domain.RoleTeacher:
		return isAssignee(p, t) || t.ClassID != ""
	case domain.RoleStudent, domain.RoleSocialWorker:
		return isAssignee(p, t)
	case domain.RoleParent:
		return isAssignee(p, t) || childAssigned(p, t)
	default:
		return false
	}
}

func canToggleVisibility(p *domain.Principal) bool {
	switch p.Role {
	case domain.RolePlatformAdmin, domain.RoleSubAdmin, domain.RoleTeacher, domain.RoleParent:
		return true
	default:
		return false
	}
}

// canReadStudent guards per-student dashboards and statistics.
func canReadStudent(p *domain.Principal, studentID string) bool {
	switch p.Role {
	case domain.RolePlatformAdmin, domain.RoleSubAdmin, domain.RoleSchoolAdmin, domain.RoleTeacher:
		return true
	case domain.RoleStudent:
		return p.ProfileFor(domain.RoleStudent) == studentID
	case domain.RoleParent:
		return p.IsParentOf(studentID)
	default:
		return false
	}
}
