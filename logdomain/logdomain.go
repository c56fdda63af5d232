// /home/krylon/go/src/github.com/blicero/mnemosyne/logdomain/logdomain.go
// -*- mode: go; coding: utf-8; -*-
// Created on 03. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-01-14 20:02:44 krylon>

// Package logdomain provides symbolic constants to identify the various
// "areas" of the application that perform logging.
package logdomain

//go:generate stringer -type=ID

// ID represents an area of concern.
type ID uint8

// These constants identify the various logging domains.
const (
	Common ID = iota
	Backend
	Database
	DBPool
	Scanner
	Socket
	Auth
	Calendar
	Client
	DNSSd
)

// AllDomains returns a slice of all the known log sources.
func AllDomains() []ID {
	return []ID{
		Common,
		Backend,
		Database,
		DBPool,
		Scanner,
		Socket,
		Auth,
		Calendar,
		Client,
		DNSSd,
	}
} // func AllDomains() []ID
