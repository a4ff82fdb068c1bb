// internal/service/policy.go
package service

import "github.com/flasktaskr/flasktaskr/internal/models"

// MayModify decides whether the identity may complete or delete the task:
// the owner may, an admin may, nobody else may. Stateless; evaluated before
// any mutation so a denial leaves no partial side effects.
func MayModify(identity models.Identity, task *models.Task) bool {
	if !identity.Authenticated {
		return false
	}
	return identity.UserID == task.UserID || identity.IsAdmin()
}
