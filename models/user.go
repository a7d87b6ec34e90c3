package models

import (
	"time"
)

type UserRole string

const (
	RoleRequester  UserRole = "REQUESTER"
	RoleDesigner   UserRole = "DESIGNER"
	RoleProducer   UserRole = "PRODUCER"
	RoleManagement UserRole = "MANAGEMENT"
	RoleAdmin      UserRole = "ADMIN"
)

type User struct {
	ID           uint      `json:"id" gorm:"primaryKey"`
	FullName     string    `json:"full_name" gorm:"size:255;not null"`
	Email        string    `json:"email" gorm:"size:255;uniqueIndex;not null"`
	PasswordHash string    `json:"-" gorm:"size:255;not null"`
	Role         UserRole  `json:"role" gorm:"type:varchar(20);not null;default:'REQUESTER';check:role IN ('REQUESTER','DESIGNER','PRODUCER','MANAGEMENT','ADMIN')"`
	IsActive     bool      `json:"is_active" gorm:"default:true"`
	CreatedAt    time.Time `json:"created_at" gorm:"autoCreateTime"`
	UpdatedAt    time.Time `json:"updated_at" gorm:"autoUpdateTime"`
}

// TableName specifies the table name for the User model
func (User) TableName() string {
	return "users"
}

// IsValidRole checks if the user role is one of the closed set
func (u *User) IsValidRole() bool {
	switch u.Role {
	case RoleRequester, RoleDesigner, RoleProducer, RoleManagement, RoleAdmin:
		return true
	default:
		return false
	}
}

// IsApprover reports whether the role may approve, assign and reassign requests.
func (r UserRole) IsApprover() bool {
	switch r {
	case RoleProducer, RoleManagement, RoleAdmin:
		return true
	default:
		return false
	}
}

// Actor is the request-scoped identity every core operation runs as.
// It is built from the JWT claims, never from ambient state.
type Actor struct {
	ID   uint
	Role UserRole
}
