// Package model defines domain entities for the application.
package model

import (
	"strconv"
	"strings"
	"time"
)

// User is an account stored by the backend.
type User struct {
	ID           int64
	Email        string
	PasswordHash string
	Name         *string
}

// DisplayName returns the stored name, or the local part of the email.
func (u *User) DisplayName() string {
	if u.Name != nil && *u.Name != "" {
		return *u.Name
	}
	return EmailLocalPart(u.Email)
}

// Identity is the authenticated user as the web client knows it.
type Identity struct {
	UserID int64  `json:"user_id"`
	Name   string `json:"name"`
}

// Greeting returns the name shown in the feed header.
func (i Identity) Greeting() string {
	if i.Name != "" {
		return i.Name
	}
	return "User " + strconv.FormatInt(i.UserID, 10)
}

// Session binds a browser cookie to an identity.
type Session struct {
	ID        string    `json:"id"`
	Identity  Identity  `json:"identity"`
	CreatedAt time.Time `json:"created_at"`
}

// EmailLocalPart returns everything before the first "@".
func EmailLocalPart(email string) string {
	local, _, _ := strings.Cut(email, "@")
	return local
}
