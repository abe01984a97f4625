package models

import "time"

const (
	RoleAdmin = "admin"
	RoleUser  = "user"

	StatusOnline  = "online"
	StatusOffline = "offline"
)

// User represents an account in the Hideout Messenger system. Passwords are
// plain text: accounts are provisioned by the admin and the admin panel
// displays them, there is no self-service credential flow.
type User struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Password string    `json:"password,omitempty"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
	IP       string    `json:"ip,omitempty"`
	Location string    `json:"location,omitempty"`
	Avatar   string    `json:"avatar,omitempty"`
}

// PublicUser is the view of a user returned to other users.
type PublicUser struct {
	ID       string    `json:"id"`
	Username string    `json:"username"`
	Role     string    `json:"role"`
	Status   string    `json:"status"`
	LastSeen time.Time `json:"last_seen"`
	Avatar   string    `json:"avatar,omitempty"`
}

// Public strips the fields only the owner and the admin may see.
func (u *User) Public() PublicUser {
	return PublicUser{
		ID:       u.ID,
		Username: u.Username,
		Role:     u.Role,
		Status:   u.Status,
		LastSeen: u.LastSeen,
		Avatar:   u.Avatar,
	}
}
