// /home/krylon/go/src/github.com/blicero/mnemosyne/objects/kind/kind.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-02-03 19:11:48 krylon>

// Package kind contains symbolic constants to distinguish the
// kinds of reminder Notifications the backend can emit.
package kind

import "fmt"

// ID describes the kind of a Notification.
type ID uint8

// DueSoon means the Todo is due within its reminder lead time.
// Overdue means the Todo's due time has passed.
const (
	DueSoon ID = iota
	Overdue
)

// Clients treat the kind as payload data, so the wire names are
// part of the protocol and must not change.
var names = map[ID]string{
	DueSoon: "DUE_SOON",
	Overdue: "OVERDUE",
}

func (i ID) String() string {
	if name, ok := names[i]; ok {
		return name
	}

	return fmt.Sprintf("kind.ID(%d)", i)
} // func (i ID) String() string

// MarshalJSON serializes the ID as its wire name.
func (i ID) MarshalJSON() ([]byte, error) {
	var name, ok = names[i]
	if !ok {
		return nil, fmt.Errorf("Invalid Notification kind %d", i)
	}

	return []byte(`"` + name + `"`), nil
} // func (i ID) MarshalJSON() ([]byte, error)

// UnmarshalJSON parses an ID from its wire name.
func (i *ID) UnmarshalJSON(data []byte) error {
	var str = string(data)

	for id, name := range names {
		if str == `"`+name+`"` {
			*i = id
			return nil
		}
	}

	return fmt.Errorf("Invalid Notification kind %s", str)
} // func (i *ID) UnmarshalJSON(data []byte) error
