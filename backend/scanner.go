// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/scanner.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 16:58:11 krylon>

package backend

import (
	"errors"
	"fmt"
	"log"
	"math"
	"sync"
	"time"

	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/database"
	"github.com/blicero/mnemosyne/logdomain"
	"github.com/blicero/mnemosyne/objects"
	"github.com/blicero/mnemosyne/objects/kind"
)

const (
	scanInterval = time.Second * 30
	scanWarmup   = time.Second * 5
)

// ErrScanBusy means a scan was requested while another one was still
// running. The caller is expected to just carry on.
var ErrScanBusy = errors.New("Another scan is already in progress")

// Transport delivers a notification to the given user, returning true
// if the user was connected.
type Transport interface {
	Deliver(userID int64, n *objects.NotificationMessage) bool
}

// ScanResult sums up one pass over the reminder-eligible Todos.
type ScanResult struct {
	Checked  int
	Notified int
	Skipped  int
}

func (r ScanResult) String() string {
	return fmt.Sprintf("checked %d, notified %d, skipped %d",
		r.Checked,
		r.Notified,
		r.Skipped)
} // func (r ScanResult) String() string

// Scanner periodically walks all Todos that are eligible for a
// reminder and fires notifications for those that are due soon or
// overdue.
type Scanner struct {
	log      *log.Logger
	pool     *database.Pool
	suppress *SuppressionStore
	trans    Transport
	clock    func() time.Time
	lock     sync.Mutex
	busy     bool
}

// NewScanner creates a Scanner.
func NewScanner(pool *database.Pool, suppress *SuppressionStore, trans Transport) (*Scanner, error) {
	var (
		err error
		sc  = &Scanner{
			pool:     pool,
			suppress: suppress,
			trans:    trans,
			clock:    time.Now,
		}
	)

	if sc.log, err = common.GetLogger(logdomain.Scanner); err != nil {
		return nil, err
	}

	return sc, nil
} // func NewScanner(...) (*Scanner, error)

// Scan performs one pass over all reminder-eligible Todos.
// Scans are strictly serialized: if one is already running, Scan
// returns ErrScanBusy immediately instead of waiting.
func (sc *Scanner) Scan() (ScanResult, error) {
	var res ScanResult

	sc.lock.Lock()
	if sc.busy {
		sc.lock.Unlock()
		return res, ErrScanBusy
	}
	sc.busy = true
	sc.lock.Unlock()

	defer func() {
		sc.lock.Lock()
		sc.busy = false
		sc.lock.Unlock()
	}()

	var (
		err   error
		todos []objects.Todo
		now   = sc.clock()
		db    = sc.pool.Get()
	)

	defer sc.pool.Put(db)

	if todos, err = db.TodoGetReminderPending(); err != nil {
		sc.log.Printf("[ERROR] Cannot load reminder-eligible Todos: %s\n",
			err.Error())
		return res, err
	}

	for idx := range todos {
		var (
			t       = &todos[idx]
			minutes = t.MinutesUntilDue(now)
			lead    = float64(t.Notification.LeadMinutes)
			k       kind.ID
		)

		res.Checked++

		// A Todo due this very minute counts as due soon, not
		// overdue.
		switch {
		case minutes < 0:
			k = kind.Overdue
		case minutes <= lead:
			k = kind.DueSoon
		default:
			// Not due, yet. Some other scan will get it.
			continue
		}

		if sc.suppress.HasFired(t.ID) {
			res.Skipped++
			continue
		}

		var n = &objects.NotificationMessage{
			ID:        common.GetUUID(),
			Kind:      k,
			TodoID:    t.ID,
			OwnerID:   t.UserID,
			Title:     t.Title,
			Timestamp: now,
		}

		switch k {
		case kind.Overdue:
			n.Message = fmt.Sprintf("Task %q is overdue", t.Title)
		case kind.DueSoon:
			n.MinutesLeft = int(math.Round(minutes))
			n.Message = fmt.Sprintf("Task %q is due in %d minutes",
				t.Title,
				n.MinutesLeft)
		}

		var delivered = sc.trans.Deliver(t.UserID, n)

		// Record the suppression immediately - if marking the
		// reminder fails below, the cooldown still has to keep
		// the next tick from delivering a duplicate.
		sc.suppress.RecordFired(t.ID)

		// The reminder counts as handled whether the user was
		// there to see it or not. Anything else would spam a
		// user who reconnects after a week.
		if err = db.TodoSetReminderSent(t, true); err != nil {
			sc.log.Printf("[ERROR] Cannot mark reminder on Todo %d (%q) as sent: %s\n",
				t.ID,
				t.Title,
				err.Error())
			res.Skipped++
			continue
		}

		res.Notified++

		sc.log.Printf("[DEBUG] %s reminder for Todo %d (%q), user %d, delivered: %t\n",
			k,
			t.ID,
			t.Title,
			t.UserID,
			delivered)
	}

	return res, nil
} // func (sc *Scanner) Scan() (ScanResult, error)
