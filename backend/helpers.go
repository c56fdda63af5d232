// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/helpers.go
// -*- mode: go; coding: utf-8; -*-
// Created on 09. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-25 20:02:31 krylon>

package backend

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/blicero/mnemosyne/database"
	"github.com/blicero/mnemosyne/objects"
)

// Attachments are limited to a few well-known types and a modest size.
const maxAttachmentSize = 5 << 20

var allowedMimeTypes = map[string]bool{
	"image/jpeg":      true,
	"image/png":       true,
	"application/pdf": true,
}

// ErrNoToken means a request to a protected endpoint carried no usable
// Authorization header.
var ErrNoToken = errors.New("No bearer token in request")

func durAbs(d time.Duration) time.Duration {
	if d < 0 {
		return -d
	}

	return d
} // func durAbs(d time.Duration) time.Duration

// authUser extracts the bearer token from the request and returns the
// User it belongs to.
func (d *Daemon) authUser(r *http.Request, db *database.Database) (*objects.User, error) {
	var (
		err    error
		userID int64
		u      *objects.User
		header = r.Header.Get("Authorization")
	)

	var token, found = strings.CutPrefix(header, "Bearer ")
	if !found || token == "" {
		return nil, ErrNoToken
	}

	if userID, err = d.auth.Verify(token); err != nil {
		return nil, err
	} else if u, err = db.UserGetByID(userID); err != nil {
		return nil, err
	} else if u == nil {
		return nil, errors.New("Token belongs to a user that no longer exists")
	}

	return u, nil
} // func (d *Daemon) authUser(r *http.Request, db *database.Database) (*objects.User, error)
