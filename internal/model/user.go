// Package model defines the data structures used throughout the application.
// In Go, we use structs to represent our data, similar to classes in other languages,
// but without inheritance. Go favours composition over inheritance.
package model

import "time"

// User represents a registered user account.
//
// The Email is stored exactly as it was submitted: no lower-casing, no
// trimming. Two addresses that differ only in case are different accounts.
//
// WHY `json:"-"` ON PasswordHash?
// The hash must never leave the server. Tagging it "-" means no handler can
// accidentally serialise it, even when a whole User is passed to the encoder.
type User struct {
	ID           string    `json:"_id"`
	Name         string    `json:"name"`
	Email        string    `json:"email"`
	PasswordHash string    `json:"-"`
	CreatedAt    time.Time `json:"createdAt"`
}

// Profile is the public projection of a User returned by the directory endpoints.
type Profile struct {
	ID    string `json:"_id"`
	Name  string `json:"name"`
	Email string `json:"email"`
}

// Profile returns the public fields of u.
func (u *User) Profile() Profile {
	return Profile{ID: u.ID, Name: u.Name, Email: u.Email}
}
