// internal/models/identity.go
package models

// Identity is the authenticated context carried from the session into the
// service layer. The zero value is anonymous.
type Identity struct {
	Authenticated bool
	UserID        int64
	Role          Role
	Name          string
}

func (i Identity) IsAdmin() bool {
	return i.Role == RoleAdmin
}
