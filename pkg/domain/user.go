package domain

// User is the backend's account record as seen by the console.
type User struct {
	ID       string `json:"_id"`
	UserName string `json:"userName"`
	Email    string `json:"email"`
	Role     Role   `json:"role"`
	TenantID string `json:"tenantId"`
}

// DisplayName returns the user name, falling back to the email address for
// invited users who have not completed signup yet.
func (u *User) DisplayName() string {
	if u.UserName != "" {
		return u.UserName
	}
	return u.Email
}

// Session is the per-request identity of the console user.
// Role is empty while unresolved or when the role lookup failed.
type Session struct {
	Token    string
	UserID   string
	TenantID string
	Role     Role
	Email    string
	UserName string
}

// Authorized reports whether the session carries a resolved role.
func (s *Session) Authorized() bool {
	return s != nil && s.Role != ""
}
