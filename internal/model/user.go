// Package model defines domain entities for the application.
package model

import "time"

// User is a persisted credential record.
// Email is the login key and is unique across the store.
type User struct {
	ID           string    `json:"id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"created_at"`
}

// UserView is the public projection of a user returned to clients.
// It never carries the password hash.
type UserView struct {
	Name  string `json:"name"`
	Email string `json:"email"`
}

// View returns the public projection of the user.
func (u *User) View() UserView {
	return UserView{Name: u.Name, Email: u.Email}
}
