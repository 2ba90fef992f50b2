package model

import "time"

type UserRole string

const (
	RoleUser  UserRole = "USER"
	RoleCoach UserRole = "COACH"
	RoleAdmin UserRole = "ADMIN"
)

type User struct {
	ID                string    `json:"id"`
	Name              string    `json:"name"`
	Email             string    `json:"email"`
	Password          string    `json:"-"`
	Role              UserRole  `json:"role"`
	ProfilePictureURL string    `json:"profilePictureUrl,omitempty"`
	Access            bool      `json:"access"`
	CreatedAt         time.Time `json:"createdAt"`
	UpdatedAt         time.Time `json:"updatedAt"`
}
