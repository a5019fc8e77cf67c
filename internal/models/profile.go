package models

import (
	"time"
)

// Role defines what a user can do on the marketplace.
type Role string

const (
	RoleBuyer  Role = "buyer"
	RoleSeller Role = "seller"
	RoleAdmin  Role = "admin"
)

// ValidRole reports whether r is one of the known roles.
func ValidRole(r Role) bool {
	switch r {
	case RoleBuyer, RoleSeller, RoleAdmin:
		return true
	}
	return false
}

// ProfileStatus is the account standing of a user.
type ProfileStatus string

const (
	StatusActive    ProfileStatus = "active"
	StatusSuspended ProfileStatus = "suspended"
)

// Profile represents a marketplace user account.
// PremiumExpiresAt is set if and only if PremiumStatus is true; the two are
// always written together.
type Profile struct {
	ID               string        `bson:"_id" json:"id"`
	FirstName        string        `bson:"first_name" json:"first_name"`
	LastName         string        `bson:"last_name" json:"last_name"`
	Email            string        `bson:"email" json:"email"`
	Phone            string        `bson:"phone,omitempty" json:"phone,omitempty"`
	Location         string        `bson:"location,omitempty" json:"location,omitempty"`
	Role             Role          `bson:"role" json:"role"`
	Status           ProfileStatus `bson:"status" json:"status"`
	PremiumStatus    bool          `bson:"premium_status" json:"premium_status"`
	PremiumExpiresAt *time.Time    `bson:"premium_expires_at,omitempty" json:"premium_expires_at,omitempty"`
	PasswordHash     string        `bson:"password" json:"-"`
	CreatedAt        time.Time     `bson:"created_at" json:"created_at"`
	UpdatedAt        time.Time     `bson:"updated_at" json:"updated_at"`
}

// IsAdmin reports whether the profile holds the admin role.
func (p *Profile) IsAdmin() bool {
	return p.Role == RoleAdmin
}
