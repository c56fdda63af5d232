// /home/krylon/go/src/github.com/blicero/mnemosyne/objects/user.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-07-30 17:42:09 krylon>

package objects

import (
	"fmt"
	"time"
)

//go:generate ffjson user.go

// GoogleAuth holds the OAuth tokens for a user's Google Calendar.
type GoogleAuth struct {
	AccessToken  string `json:"-"`
	RefreshToken string `json:"-"`
	TokenExpiry  time.Time
	CalendarID   string
}

// CalendarSettings controls the Google Calendar integration for a user.
type CalendarSettings struct {
	Enabled            bool
	SyncEvents         bool
	DefaultLeadMinutes int
}

// User is a person using the application. Todos and Categories belong
// to exactly one User.
type User struct {
	ID           int64
	Name         string
	Email        string
	PasswordHash string `json:"-"`
	TodoCount    int64
	GoogleID     string
	Google       GoogleAuth
	Calendar     CalendarSettings
	Created      time.Time
}

// HasValidGoogleAuth returns true if the User has a usable set of
// Google OAuth tokens.
func (u *User) HasValidGoogleAuth() bool {
	return u.Google.AccessToken != "" &&
		u.Google.RefreshToken != "" &&
		(u.Google.TokenExpiry.IsZero() || u.Google.TokenExpiry.After(time.Now()))
} // func (u *User) HasValidGoogleAuth() bool

func (u *User) String() string {
	return fmt.Sprintf("User{ ID: %d, Name: %q, Email: %q }",
		u.ID,
		u.Name,
		u.Email)
} // func (u *User) String() string
