package model

import (
	"time"
)

type Role string

const (
	RoleAdmin    Role = "admin"
	RoleCustomer Role = "customer"
)

type User struct {
	ID        string     `json:"_id,omitempty"`
	Name      string     `json:"name,omitempty"`
	Email     string     `json:"email"`
	Role      Role       `json:"role,omitempty"`
	CreatedAt *time.Time `json:"createdAt,omitempty"`
}

type UserPage struct {
	Data  []User `json:"data"`
	Total int    `json:"total"`
}

// UserUpdate is the admin edit of a user.
type UserUpdate struct {
	Name  string `json:"name"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}

type LoginRequest struct {
	Email    string `json:"email"`
	Name     string `json:"name,omitempty"`
	Image    string `json:"image,omitempty"`
	Provider string `json:"provider,omitempty"`
	IDToken  string `json:"idToken,omitempty"`
}

type LoginResponse struct {
	Success bool   `json:"success"`
	User    User   `json:"user"`
	Token   string `json:"token,omitempty"`
	Message string `json:"message,omitempty"`
	Error   string `json:"error,omitempty"`
}
