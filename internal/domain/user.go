package domain

import "time"

type User struct {
	ID        int64
	Name      string
	Email     string
	Password  string
	CreatedAt time.Time
}

// SessionUser is the only user shape that leaves the backend: no email, no credential.
type SessionUser struct {
	ID   int64  `json:"id"`
	Name string `json:"name"`
}

func (u *User) SessionUser() *SessionUser {
	return &SessionUser{ID: u.ID, Name: u.Name}
}
