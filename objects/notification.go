// /home/krylon/go/src/github.com/blicero/mnemosyne/objects/notification.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-20 19:55:31 krylon>

// Package objects provides the data types used by the application.
package objects

import (
	"fmt"
	"time"

	"github.com/blicero/mnemosyne/objects/kind"
)

//go:generate ffjson notification.go

// NotificationMessage is the payload pushed to a connected client when
// a Todo is due soon or overdue. It is never persisted.
//
// ID is unique per delivery attempt, NOT per Todo - the same Todo can
// fire several messages over its lifetime (e.g. DUE_SOON, then OVERDUE
// after a reschedule), and clients deduplicate on ID.
type NotificationMessage struct {
	ID          string
	Kind        kind.ID
	TodoID      int64
	OwnerID     int64
	Title       string
	Message     string
	MinutesLeft int
	Timestamp   time.Time
}

func (n *NotificationMessage) String() string {
	return fmt.Sprintf("NotificationMessage{ ID: %q, Kind: %s, TodoID: %d, OwnerID: %d }",
		n.ID,
		n.Kind,
		n.TodoID,
		n.OwnerID)
} // func (n *NotificationMessage) String() string

// Payload returns the NotificationMessage's Title and Message.
func (n *NotificationMessage) Payload() (string, string) {
	return n.Title, n.Message
} // func (n *NotificationMessage) Payload() (string, string)
