package domain

// Principal is the verified caller attached to a request by the auth gate.
// It lives only for the duration of that request.
type Principal struct {
	ID   string
	Role Role
}

// IsAdmin reports whether the principal holds the elevated role.
func (p Principal) IsAdmin() bool {
	return p.Role == RoleAdmin
}
