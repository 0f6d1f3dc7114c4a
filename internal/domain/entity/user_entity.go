package entity

import (
	"time"
)

type Role string

const (
	RoleAdmin       Role = "ADMIN"
	RoleContributor Role = "CONTRIBUTOR"
)

type UserStatus string

const (
	UserActive    UserStatus = "ACTIVE"
	UserSuspended UserStatus = "SUSPENDED"
	UserInactive  UserStatus = "INACTIVE"
)

// User is the aggregate root for accounts.
// Passwords are stored as bcrypt hashes in Password field
type User struct {
	ID               string
	Name             string
	Email            string
	Phone            string
	AvatarURL        string
	Password         string
	Role             Role
	Status           UserStatus
	TotalContributed int64
	CreatedAt        time.Time
	UpdatedAt        time.Time
}

func (u *User) IsAdmin() bool { return u != nil && u.Role == RoleAdmin }

// CanSignIn reports whether the account may hold a session.
func (u *User) CanSignIn() bool { return u != nil && u.Status == UserActive }

func ValidRole(r string) bool {
	switch Role(r) {
	case RoleAdmin, RoleContributor:
		return true
	}
	return false
}

func ValidUserStatus(s string) bool {
	switch UserStatus(s) {
	case UserActive, UserSuspended, UserInactive:
		return true
	}
	return false
}
