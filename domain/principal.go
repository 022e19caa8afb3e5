package domain

// Principal is the authenticated caller as described by verified token claims.
type Principal struct {
	UserID   string
	Email    string
	Name     string
	Role     Role
	Roles    []Role
	Profiles map[Role]string
	ChildIDs []string
	SchoolID string
}

// HasRole reports whether the caller holds the role at all.
func (p *Principal) HasRole(role Role) bool {
	return p != nil && hasRole(p.Roles, role)
}

// ProfileID returns the role-profile id for the active role, falling back to the user id.
func (p *Principal) ProfileID() string {
	return p.ProfileFor(p.Role)
}

// ProfileFor returns the role-profile id for a specific role.
func (p *Principal) ProfileFor(role Role) string {
	if p == nil {
		return ""
	}
	if id := p.Profiles[role]; id != "" {
		return id
	}
	return p.UserID
}

// IsParentOf reports whether the student profile is one of the caller's children.
func (p *Principal) IsParentOf(studentID string) bool {
	if p == nil || studentID == "" {
		return false
	}
	for _, id := range p.ChildIDs {
		if id == studentID {
			return true
		}
	}
	return false
}

// WithRole switches the active role. The role must already be held.
func (p *Principal) WithRole(role Role) (*Principal, error) {
	if p == nil {
		return nil, ErrUnauthorized
	}
	if !p.HasRole(role) {
		return nil, Invalid("invalid or missing role in query")
	}
	clone := *p
	clone.Role = role
	return &clone, nil
}
