package models

import "time"

// Role is the authorization role of a user or caller.
type Role string

const (
	RoleUser  Role = "USER"
	RoleAdmin Role = "ADMIN"
	// RoleSystem is never stored on a user; it identifies trusted internal
	// callers such as the import consumer.
	RoleSystem Role = "SYSTEM"
)

// User is the subset of a marketplace account the workflow needs.
type User struct {
	ID        int64     `json:"id"`
	Email     string    `json:"email"`
	Role      Role      `json:"role"`
	CreatedAt time.Time `json:"created_at"`
}

// IsAdmin reports whether the user has the administrative role.
func (u *User) IsAdmin() bool {
	return u != nil && u.Role == RoleAdmin
}

// Actor is the authenticated caller of a workflow operation.
type Actor struct {
	UserID int64
	Role   Role
}

// SystemActor returns the actor used by trusted internal paths.
func SystemActor() Actor {
	return Actor{Role: RoleSystem}
}

func (a Actor) IsAdmin() bool  { return a.Role == RoleAdmin }
func (a Actor) IsSystem() bool { return a.Role == RoleSystem }
