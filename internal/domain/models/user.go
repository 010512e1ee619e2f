// internal/domain/models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// User represents a staff or admin account.
//
// Username is the login identifier and is unique (enforced by index).
// PasswordHash is a bcrypt hash; it is never rendered to templates.
type User struct {
	ID           primitive.ObjectID `bson:"_id,omitempty" json:"id"`
	Username     string             `bson:"username" json:"username"`
	Email        string             `bson:"email,omitempty" json:"email,omitempty"`
	PasswordHash string             `bson:"password_hash" json:"-"`
	Role         string             `bson:"role" json:"role"` // admin | staff
	IsActive     bool               `bson:"is_active" json:"is_active"`

	// MustResetPassword is set by the legacy importer when an account was
	// migrated with a placeholder password.
	MustResetPassword bool `bson:"must_reset_password,omitempty" json:"must_reset_password,omitempty"`

	CreatedAt time.Time           `bson:"created_at" json:"created_at"`
	UpdatedAt time.Time           `bson:"updated_at" json:"updated_at"`
	CreatedBy *primitive.ObjectID `bson:"created_by,omitempty" json:"created_by,omitempty"`
}

// Roles recognized by the application.
const (
	RoleAdmin = "admin"
	RoleStaff = "staff"
)

// ValidRole reports whether role is one of the recognized roles.
func ValidRole(role string) bool {
	return role == RoleAdmin || role == RoleStaff
}
