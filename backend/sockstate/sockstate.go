// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/sockstate/sockstate.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-22 18:09:33 krylon>

// Package sockstate provides symbolic constants for the lifecycle of a
// websocket session.
package sockstate

//go:generate stringer -type=ID

// ID represents the state of a websocket session.
type ID uint8

// A session starts out Unauthenticated, becomes Authenticated once a
// valid token has been presented, and ends up Closed.
const (
	Unauthenticated ID = iota
	Authenticated
	Closed
)
