// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/registry.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-22 18:33:10 krylon>

package backend

import "sync"

// Registry keeps track of which user is reachable over which websocket
// session. A user has at most one active session; authenticating over
// a second connection displaces the first one.
type Registry struct {
	lock  sync.RWMutex
	users map[int64]string
	conns map[string]int64
}

// NewRegistry creates an empty Registry.
func NewRegistry() *Registry {
	return &Registry{
		users: make(map[int64]string),
		conns: make(map[string]int64),
	}
} // func NewRegistry() *Registry

// Register binds the user to the given connection. If the user already
// had a session, the old binding is dropped, and its connection ID is
// returned so the caller can close it.
func (reg *Registry) Register(userID int64, connID string) (displaced string) {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	if old, ok := reg.users[userID]; ok && old != connID {
		delete(reg.conns, old)
		displaced = old
	}

	// The connection might have authenticated as somebody else
	// before.
	if oldUser, ok := reg.conns[connID]; ok && oldUser != userID {
		delete(reg.users, oldUser)
	}

	reg.users[userID] = connID
	reg.conns[connID] = userID

	return displaced
} // func (reg *Registry) Register(userID int64, connID string) string

// Drop removes the binding for the given connection, if any, and
// returns the ID of the user it belonged to.
func (reg *Registry) Drop(connID string) (userID int64, ok bool) {
	reg.lock.Lock()
	defer reg.lock.Unlock()

	if userID, ok = reg.conns[connID]; !ok {
		return 0, false
	}

	delete(reg.conns, connID)

	// Only remove the forward binding if it still points at this
	// connection. The user may have re-authenticated elsewhere.
	if cur, found := reg.users[userID]; found && cur == connID {
		delete(reg.users, userID)
	}

	return userID, true
} // func (reg *Registry) Drop(connID string) (int64, bool)

// LookupUser returns the connection ID the user is reachable under.
func (reg *Registry) LookupUser(userID int64) (string, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()

	var connID, ok = reg.users[userID]
	return connID, ok
} // func (reg *Registry) LookupUser(userID int64) (string, bool)

// LookupConn returns the ID of the user bound to the given connection.
func (reg *Registry) LookupConn(connID string) (int64, bool) {
	reg.lock.RLock()
	defer reg.lock.RUnlock()

	var userID, ok = reg.conns[connID]
	return userID, ok
} // func (reg *Registry) LookupConn(connID string) (int64, bool)

// Count returns the number of authenticated sessions.
func (reg *Registry) Count() int {
	reg.lock.RLock()
	defer reg.lock.RUnlock()

	return len(reg.users)
} // func (reg *Registry) Count() int
