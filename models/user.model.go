package models

import (
	"time"

	"gorm.io/gorm"
)

const (
	RoleUser       = "USER"
	RoleInstructor = "INSTRUCTOR"
	RoleAdmin      = "ADMIN"
)

type User struct {
	gorm.Model
	Name      string    `gorm:"default:''" json:"name"`
	Email     string    `gorm:"unique;not null" json:"email"`
	Password  string    `gorm:"not null" json:"-"`
	Role      string    `gorm:"default:'USER'" json:"role"` // USER, INSTRUCTOR, ADMIN
	LastLogin time.Time `gorm:"default:NULL" json:"lastLogin"`
	IsDeleted bool      `gorm:"default:false" json:"-"`
}

// IsAdmin reports whether the user holds the admin role. The role on this
// record is the only admin authority; there is no config-email override.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
