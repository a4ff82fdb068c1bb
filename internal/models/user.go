// internal/models/user.go
package models

// Role is the authorization level of a user. Admins bypass task ownership
// checks; self-service registration always produces RoleUser.
type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

// User is a registered account. Password holds the bcrypt digest, never
// plaintext.
type User struct {
	ID       int64  `db:"id" json:"id"`
	Name     string `db:"name" json:"name"`
	Email    string `db:"email" json:"email"`
	Password string `db:"password" json:"-"`
	Role     Role   `db:"role" json:"role"`
}
