// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/suppress.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-22 19:02:46 krylon>

package backend

import (
	"sync"
	"time"
)

// How long after a reminder has fired we refuse to fire another one
// for the same Todo, and how long a record is kept around at all.
const (
	suppressCooldown  = time.Minute * 15
	suppressRetention = time.Hour * 24
	suppressSweep     = time.Hour
)

// SuppressionStore remembers when a reminder last fired for each Todo,
// so a Todo that stays due does not pester the user on every scan.
// Records are held in memory only; after a restart the reminder_sent
// flag in the database takes over.
type SuppressionStore struct {
	lock  sync.Mutex
	fired map[int64]time.Time
	clock func() time.Time
}

// NewSuppressionStore creates an empty SuppressionStore.
func NewSuppressionStore() *SuppressionStore {
	return &SuppressionStore{
		fired: make(map[int64]time.Time),
		clock: time.Now,
	}
} // func NewSuppressionStore() *SuppressionStore

// HasFired returns true if a reminder for the given Todo fired within
// the cooldown period.
func (s *SuppressionStore) HasFired(todoID int64) bool {
	s.lock.Lock()
	defer s.lock.Unlock()

	var stamp, ok = s.fired[todoID]
	if !ok {
		return false
	}

	return s.clock().Sub(stamp) < suppressCooldown
} // func (s *SuppressionStore) HasFired(todoID int64) bool

// RecordFired notes that a reminder for the given Todo has just fired.
func (s *SuppressionStore) RecordFired(todoID int64) {
	s.lock.Lock()
	s.fired[todoID] = s.clock()
	s.lock.Unlock()
} // func (s *SuppressionStore) RecordFired(todoID int64)

// Invalidate forgets the record for the given Todo, e.g. because its
// due date has changed and a fresh reminder is in order.
func (s *SuppressionStore) Invalidate(todoID int64) {
	s.lock.Lock()
	delete(s.fired, todoID)
	s.lock.Unlock()
} // func (s *SuppressionStore) Invalidate(todoID int64)

// Sweep discards all records older than the retention period and
// returns the number of records removed.
func (s *SuppressionStore) Sweep() int {
	s.lock.Lock()
	defer s.lock.Unlock()

	var (
		cnt int
		now = s.clock()
	)

	for id, stamp := range s.fired {
		if now.Sub(stamp) > suppressRetention {
			delete(s.fired, id)
			cnt++
		}
	}

	return cnt
} // func (s *SuppressionStore) Sweep() int
