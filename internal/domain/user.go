package domain

import (
	"errors"
	"time"

	"github.com/google/uuid"
)

var ErrNoRole = errors.New("user has no recognised role")

type User struct {
	ID          uuid.UUID  `json:"id" db:"id"`
	Email       string     `json:"email" db:"email"`
	FullName    string     `json:"full_name" db:"full_name"`
	UserType    string     `json:"user_type" db:"user_type"`
	IsSuperuser bool       `json:"is_superuser" db:"is_superuser"`
	IsActive    bool       `json:"is_active" db:"is_active"`
	CreatedAt   time.Time  `json:"created_at" db:"created_at"`
	UpdatedAt   time.Time  `json:"updated_at" db:"updated_at"`
	DeletedAt   *time.Time `json:"-" db:"deleted_at"`
}

const (
	UserTypeFarmUser   = "farm_user"
	UserTypeAdmin      = "admin"
	UserTypeAgronomist = "agronomist"
)

// RoleFlags mirrors the three boolean flags the upstream user record carries.
// They are not guaranteed to be mutually exclusive; use Role to classify.
type RoleFlags struct {
	IsAdmin     bool `json:"is_admin"`
	IsSuperuser bool `json:"is_superuser"`
	IsFarmUser  bool `json:"is_farm_user"`
}

func (u *User) RoleFlags() RoleFlags {
	return RoleFlags{
		IsAdmin:     u.UserType == UserTypeAdmin || u.UserType == UserTypeAgronomist,
		IsSuperuser: u.IsSuperuser,
		IsFarmUser:  u.UserType == UserTypeFarmUser,
	}
}

func (u *User) Role() (Role, error) {
	return u.RoleFlags().Role()
}

type Role int

const (
	RoleUnknown Role = iota
	RoleFarmUser
	RoleAdmin
	RoleSuperuser
)

// Role classifies the flags. Farm user wins over the administrative flags, so a
// record flagged both farm user and admin is treated as a farm user.
func (f RoleFlags) Role() (Role, error) {
	switch {
	case f.IsFarmUser:
		return RoleFarmUser, nil
	case f.IsSuperuser:
		return RoleSuperuser, nil
	case f.IsAdmin:
		return RoleAdmin, nil
	default:
		return RoleUnknown, ErrNoRole
	}
}

func (r Role) String() string {
	switch r {
	case RoleFarmUser:
		return "farm_user"
	case RoleAdmin:
		return "admin"
	case RoleSuperuser:
		return "superuser"
	default:
		return "unknown"
	}
}

// Label is the badge text shown next to the user in the layout shell.
func (r Role) Label() string {
	if r == RoleSuperuser {
		return "Superuser"
	}
	return r.String()
}

func (r Role) IsAdministrative() bool {
	return r == RoleAdmin || r == RoleSuperuser
}

func (r Role) MarshalText() ([]byte, error) {
	return []byte(r.String()), nil
}

func (u *User) HasAnyRole(roles ...Role) bool {
	role, err := u.Role()
	if err != nil {
		return false
	}
	for _, r := range roles {
		if r == role {
			return true
		}
	}
	return false
}
