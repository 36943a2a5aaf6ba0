// models/user.go
package models

import (
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"
)

// Roles
const (
	RoleManager    = "manager"
	RoleSalesman   = "salesman"
	RoleTeamLeader = "team_leader"
)

// User model
type User struct {
	ID             primitive.ObjectID `json:"id,omitempty" bson:"_id,omitempty"`
	Username       string             `json:"username" bson:"username"`
	FullName       string             `json:"fullName" bson:"fullName"`
	Email          string             `json:"email,omitempty" bson:"email,omitempty"`
	Password       string             `json:"password,omitempty" bson:"password"`
	Role           string             `json:"role" bson:"role"`
	Team           string             `json:"team,omitempty" bson:"team,omitempty"`
	ManagedTeam    string             `json:"managedTeam,omitempty" bson:"managedTeam,omitempty"`
	IsActive       bool               `json:"isActive" bson:"isActive"`
	LastActivityAt time.Time          `json:"lastActivityAt,omitempty" bson:"lastActivityAt,omitempty"`
	AvatarPath     string             `json:"avatarPath,omitempty" bson:"avatarPath,omitempty"`
	FCMToken       string             `json:"fcmToken,omitempty" bson:"fcmToken,omitempty"`
	CreatedAt      time.Time          `json:"createdAt" bson:"createdAt"`
	UpdatedAt      time.Time          `json:"updatedAt,omitempty" bson:"updatedAt,omitempty"`
}

// ValidRole reports whether role is one of the three known roles.
func ValidRole(role string) bool {
	return role == RoleManager || role == RoleSalesman || role == RoleTeamLeader
}

// LoginRequest is the request body for login
type LoginRequest struct {
	Username   string `json:"username" validate:"required"`
	Password   string `json:"password" validate:"required"`
	RememberMe bool   `json:"rememberMe,omitempty"`
}

// CreateUserRequest is the request body for creating a user (manager only)
type CreateUserRequest struct {
	Username    string `json:"username" validate:"required"`
	FullName    string `json:"fullName" validate:"required"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Password    string `json:"password" validate:"required,min=8"`
	Role        string `json:"role" validate:"required,oneof=manager salesman team_leader"`
	Team        string `json:"team,omitempty"`
	ManagedTeam string `json:"managedTeam,omitempty"`
}

// UpdateUserRequest is the request body for updating a user (manager only)
type UpdateUserRequest struct {
	FullName    string `json:"fullName,omitempty"`
	Email       string `json:"email,omitempty" validate:"omitempty,email"`
	Password    string `json:"password,omitempty" validate:"omitempty,min=8"`
	Role        string `json:"role,omitempty" validate:"omitempty,oneof=manager salesman team_leader"`
	Team        string `json:"team,omitempty"`
	ManagedTeam string `json:"managedTeam,omitempty"`
	IsActive    *bool  `json:"isActive,omitempty"`
}

// FCMTokenUpdateRequest is the request body for updating FCM tokens
type FCMTokenUpdateRequest struct {
	FCMToken string `json:"fcmToken" validate:"required"`
}

// Response model
type Response struct {
	Status  int         `json:"status"`
	Message string      `json:"message"`
	Data    interface{} `json:"data,omitempty"`
}
