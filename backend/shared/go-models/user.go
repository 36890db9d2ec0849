// go-models/user.go
package models

import (
	"time"

	"github.com/google/uuid"
)

type RoleType string

const (
	RoleLandlord RoleType = "LANDLORD"
	RoleTenant   RoleType = "TENANT"
	RoleVendor   RoleType = "VENDOR"
	RoleAdmin    RoleType = "ADMIN"
)

// ParseRole converts a JWT role claim into a RoleType.
func ParseRole(s string) (RoleType, bool) {
	switch r := RoleType(s); r {
	case RoleLandlord, RoleTenant, RoleVendor, RoleAdmin:
		return r, true
	default:
		return "", false
	}
}

type UserStatusType string

const (
	UserStatusActive    UserStatusType = "ACTIVE"
	UserStatusInvited   UserStatusType = "INVITED"
	UserStatusSuspended UserStatusType = "SUSPENDED"
)

type User struct {
	ID          uuid.UUID      `json:"id"`
	Email       string         `json:"email"`
	PhoneNumber *string        `json:"phone_number,omitempty"`
	FirstName   string         `json:"first_name"`
	LastName    string         `json:"last_name"`
	Role        RoleType       `json:"role"`
	Status      UserStatusType `json:"status"`
	CreatedAt   time.Time      `json:"created_at"`
	UpdatedAt   time.Time      `json:"updated_at"`
	DeletedAt   *time.Time     `json:"deleted_at,omitempty"`
}

func (u *User) FullName() string {
	if u.LastName == "" {
		return u.FirstName
	}
	return u.FirstName + " " + u.LastName
}
