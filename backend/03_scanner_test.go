// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/03_scanner_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 18:05:33 krylon>

package backend

import (
	"database/sql"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/database"
	"github.com/blicero/mnemosyne/objects"
	"github.com/blicero/mnemosyne/objects/kind"
)

// fakeTransport stands in for the websocket layer.
type fakeTransport struct {
	lock      sync.Mutex
	online    map[int64]bool
	delivered []*objects.NotificationMessage
}

func (ft *fakeTransport) Deliver(userID int64, n *objects.NotificationMessage) bool {
	ft.lock.Lock()
	defer ft.lock.Unlock()

	if !ft.online[userID] {
		return false
	}

	ft.delivered = append(ft.delivered, n)
	return true
} // func (ft *fakeTransport) Deliver(userID int64, n *objects.NotificationMessage) bool

func (ft *fakeTransport) reset() {
	ft.lock.Lock()
	ft.delivered = nil
	ft.lock.Unlock()
} // func (ft *fakeTransport) reset()

var (
	scanPool  *database.Pool
	scanTrans *fakeTransport
	scanSupp  *SuppressionStore
	scanner   *Scanner
	scanStamp time.Time

	online  objects.User
	offline objects.User

	tdoOverdue  objects.Todo
	tdoDueSoon  objects.Todo
	tdoNotYet   objects.Todo
	tdoMuted    objects.Todo
	tdoElsewhre objects.Todo
)

func TestScannerSetup(t *testing.T) {
	var (
		err error
		db  *database.Database
	)

	if scanPool, err = database.NewPool(2); err != nil {
		scanPool = nil
		t.Fatalf("Cannot create database pool: %s", err.Error())
	}

	scanStamp = time.Now()
	scanTrans = &fakeTransport{online: make(map[int64]bool)}
	scanSupp = NewSuppressionStore()
	scanSupp.clock = func() time.Time { return scanStamp }

	if scanner, err = NewScanner(scanPool, scanSupp, scanTrans); err != nil {
		scanner = nil
		t.Fatalf("Cannot create Scanner: %s", err.Error())
	}

	scanner.clock = func() time.Time { return scanStamp }

	db = scanPool.Get()
	defer scanPool.Put(db)

	online = objects.User{Name: "Circe", Email: "circe@aiaia.example", PasswordHash: "x"}
	offline = objects.User{Name: "Calypso", Email: "calypso@ogygia.example", PasswordHash: "x"}

	for _, u := range []*objects.User{&online, &offline} {
		if err = db.UserAdd(u); err != nil {
			t.Fatalf("Cannot add User %q: %s",
				u.Email,
				err.Error())
		}

		var cat = objects.Category{
			UserID:    u.ID,
			Name:      objects.DefaultCategoryName,
			IsDefault: true,
		}

		if err = db.CategoryAdd(&cat); err != nil {
			t.Fatalf("Cannot add Category for User %q: %s",
				u.Email,
				err.Error())
		}
	}

	scanTrans.online[online.ID] = true

	var (
		cat     *objects.Category
		overdue = scanStamp.Add(-time.Hour * 2)
		soon    = scanStamp.Add(time.Minute * 10)
		later   = scanStamp.Add(time.Hour * 5)
	)

	if cat, err = db.CategoryGetDefault(online.ID); err != nil || cat == nil {
		t.Fatalf("Cannot look up default Category: %v", err)
	}

	tdoOverdue = mkScanTodo(online.ID, cat.ID, "Feed the pigs", &overdue, true)
	tdoDueSoon = mkScanTodo(online.ID, cat.ID, "Brew potion", &soon, true)
	tdoNotYet = mkScanTodo(online.ID, cat.ID, "Weave", &later, true)
	tdoMuted = mkScanTodo(online.ID, cat.ID, "Sing", &soon, false)

	for _, tdo := range []*objects.Todo{&tdoOverdue, &tdoDueSoon, &tdoNotYet, &tdoMuted} {
		if err = db.TodoAdd(tdo); err != nil {
			t.Fatalf("Cannot add Todo %q: %s",
				tdo.Title,
				err.Error())
		}
	}

	if cat, err = db.CategoryGetDefault(offline.ID); err != nil || cat == nil {
		t.Fatalf("Cannot look up default Category: %v", err)
	}

	tdoElsewhre = mkScanTodo(offline.ID, cat.ID, "Wait", &soon, true)

	if err = db.TodoAdd(&tdoElsewhre); err != nil {
		t.Fatalf("Cannot add Todo %q: %s",
			tdoElsewhre.Title,
			err.Error())
	}
} // func TestScannerSetup(t *testing.T)

// The due-time computation uses the local midnight of the due date, so
// we pin the effective due time by clearing the time of day and using
// stamps well away from date boundaries... easier to just compare
// against what the Todo itself reports.
func mkScanTodo(userID, catID int64, title string, due *time.Time, notify bool) objects.Todo {
	return objects.Todo{
		UserID:     userID,
		CategoryID: catID,
		Title:      title,
		DueDate:    due,
		DueTime:    due.Format("15:04"),
		Notification: objects.NotificationSettings{
			Enabled:     notify,
			LeadMinutes: objects.DefaultLeadMinutes,
		},
	}
} // func mkScanTodo(...) objects.Todo

func TestScannerFirstPass(t *testing.T) {
	if scanner == nil {
		t.SkipNow()
	}

	var res, err = scanner.Scan()

	if err != nil {
		t.Fatalf("Scan failed: %s", err.Error())
	} else if res.Checked != 4 {
		// tdoMuted has notifications disabled, the database does
		// not even hand it to the scanner.
		t.Errorf("Scan should have checked 4 Todos, checked %d",
			res.Checked)
	} else if res.Notified != 3 {
		t.Errorf("Scan should have fired 3 reminders, fired %d",
			res.Notified)
	} else if res.Skipped != 0 {
		t.Errorf("Scan should not have skipped anything, skipped %d",
			res.Skipped)
	}

	// Only the online user actually received anything.
	if len(scanTrans.delivered) != 2 {
		t.Fatalf("Expected 2 delivered notifications, got %d",
			len(scanTrans.delivered))
	}

	var kinds = make(map[int64]kind.ID, 2)
	for _, n := range scanTrans.delivered {
		kinds[n.TodoID] = n.Kind

		if n.OwnerID != online.ID {
			t.Errorf("Notification for Todo %d went to user %d (expected %d)",
				n.TodoID,
				n.OwnerID,
				online.ID)
		} else if n.ID == "" {
			t.Errorf("Notification for Todo %d has no delivery ID",
				n.TodoID)
		}
	}

	if k, ok := kinds[tdoOverdue.ID]; !ok || k != kind.Overdue {
		t.Errorf("Todo %q should have fired an overdue reminder, got %s (%t)",
			tdoOverdue.Title,
			k,
			ok)
	}

	if k, ok := kinds[tdoDueSoon.ID]; !ok || k != kind.DueSoon {
		t.Errorf("Todo %q should have fired a due-soon reminder, got %s (%t)",
			tdoDueSoon.Title,
			k,
			ok)
	}

	if _, ok := kinds[tdoNotYet.ID]; ok {
		t.Errorf("Todo %q is not due for hours, it should not have fired",
			tdoNotYet.Title)
	}
} // func TestScannerFirstPass(t *testing.T)

// The reminder flag was set for the offline user's Todo, too - a user
// who reconnects later does not get a backlog of stale reminders.
func TestScannerOfflineMarked(t *testing.T) {
	if scanner == nil {
		t.SkipNow()
	}

	var (
		err   error
		fresh *objects.Todo
		db    = scanPool.Get()
	)
	defer scanPool.Put(db)

	if fresh, err = db.TodoGetByID(tdoElsewhre.ID); err != nil || fresh == nil {
		t.Fatalf("Cannot fetch Todo %q: %v",
			tdoElsewhre.Title,
			err)
	} else if !fresh.ReminderSent {
		t.Errorf("Todo %q belongs to an offline user, but its reminder should still be marked as sent",
			tdoElsewhre.Title)
	}
} // func TestScannerOfflineMarked(t *testing.T)

func TestScannerSecondPass(t *testing.T) {
	if scanner == nil {
		t.SkipNow()
	}

	scanTrans.reset()

	var res, err = scanner.Scan()

	if err != nil {
		t.Fatalf("Scan failed: %s", err.Error())
	} else if res.Checked != 1 {
		t.Errorf("Only %q should still be eligible, but the scan checked %d Todos",
			tdoNotYet.Title,
			res.Checked)
	} else if res.Notified != 0 {
		t.Errorf("Nothing should have fired on the second pass, but %d did",
			res.Notified)
	}
} // func TestScannerSecondPass(t *testing.T)

// Rescheduling clears the reminder flag, but the in-memory suppression
// record still holds the reminder back until it is invalidated, too.
func TestScannerSuppression(t *testing.T) {
	if scanner == nil {
		t.SkipNow()
	}

	var (
		err error
		db  = scanPool.Get()
		due = scanStamp.Add(-time.Hour)
	)
	defer scanPool.Put(db)

	if err = db.TodoSetDue(&tdoOverdue, &due, due.Format("15:04")); err != nil {
		t.Fatalf("Cannot reschedule Todo %q: %s",
			tdoOverdue.Title,
			err.Error())
	}

	scanTrans.reset()

	var res ScanResult

	if res, err = scanner.Scan(); err != nil {
		t.Fatalf("Scan failed: %s", err.Error())
	} else if res.Skipped != 1 {
		t.Errorf("The rescheduled Todo should have been suppressed, skipped = %d",
			res.Skipped)
	} else if res.Notified != 0 {
		t.Errorf("Nothing should have fired while suppressed, but %d did",
			res.Notified)
	}

	scanSupp.Invalidate(tdoOverdue.ID)

	// TodoSetDue cleared the flag in the struct and the database,
	// but the previous scan marked it as sent again. Clear it the
	// way a due-date edit would.
	if err = db.TodoSetDue(&tdoOverdue, &due, due.Format("15:04")); err != nil {
		t.Fatalf("Cannot reschedule Todo %q: %s",
			tdoOverdue.Title,
			err.Error())
	}

	if res, err = scanner.Scan(); err != nil {
		t.Fatalf("Scan failed: %s", err.Error())
	} else if res.Notified != 1 {
		t.Errorf("The rescheduled Todo should have fired after invalidation, notified = %d",
			res.Notified)
	} else if len(scanTrans.delivered) != 1 {
		t.Fatalf("Expected 1 delivered notification, got %d",
			len(scanTrans.delivered))
	} else if scanTrans.delivered[0].Kind != kind.Overdue {
		t.Errorf("The reminder should have been overdue, got %s",
			scanTrans.delivered[0].Kind)
	}
} // func TestScannerSuppression(t *testing.T)

func TestScannerBusy(t *testing.T) {
	if scanner == nil {
		t.SkipNow()
	}

	scanner.lock.Lock()
	scanner.busy = true
	scanner.lock.Unlock()

	var _, err = scanner.Scan()

	if !errors.Is(err, ErrScanBusy) {
		t.Errorf("A scan during another scan should return ErrScanBusy, got %v",
			err)
	}

	scanner.lock.Lock()
	scanner.busy = false
	scanner.lock.Unlock()
} // func TestScannerBusy(t *testing.T)

// The lead time is inclusive: a Todo due exactly the lead time out
// fires a due-soon reminder, one minute further out fires nothing. A
// Todo due this very minute is due soon, one minute past due is
// overdue.
func TestScannerLeadBoundaries(t *testing.T) {
	if scanner == nil {
		t.SkipNow()
	}

	var (
		err   error
		cat   *objects.Category
		db    = scanPool.Get()
		stamp = time.Now().Truncate(time.Minute)
		supp  = NewSuppressionStore()
	)
	defer scanPool.Put(db)

	supp.clock = func() time.Time { return stamp }

	var (
		origSupp  = scanner.suppress
		origClock = scanner.clock
	)

	scanner.suppress = supp
	scanner.clock = func() time.Time { return stamp }
	defer func() {
		scanner.suppress = origSupp
		scanner.clock = origClock
	}()

	if cat, err = db.CategoryGetDefault(online.ID); err != nil || cat == nil {
		t.Fatalf("Cannot look up default Category: %v", err)
	}

	var (
		atLead   = stamp.Add(time.Minute * time.Duration(objects.DefaultLeadMinutes))
		pastLead = stamp.Add(time.Minute * time.Duration(objects.DefaultLeadMinutes+1))
		rightNow = stamp
		justPast = stamp.Add(-time.Minute)

		tdoAtLead   = mkScanTodo(online.ID, cat.ID, "Set sail", &atLead, true)
		tdoPastLead = mkScanTodo(online.ID, cat.ID, "Bury the oar", &pastLead, true)
		tdoRightNow = mkScanTodo(online.ID, cat.ID, "String the bow", &rightNow, true)
		tdoJustPast = mkScanTodo(online.ID, cat.ID, "Close the gates", &justPast, true)
	)

	for _, tdo := range []*objects.Todo{&tdoAtLead, &tdoPastLead, &tdoRightNow, &tdoJustPast} {
		if err = db.TodoAdd(tdo); err != nil {
			t.Fatalf("Cannot add Todo %q: %s",
				tdo.Title,
				err.Error())
		}
	}

	scanTrans.reset()

	if _, err = scanner.Scan(); err != nil {
		t.Fatalf("Scan failed: %s", err.Error())
	}

	var byID = make(map[int64]*objects.NotificationMessage)
	for _, n := range scanTrans.delivered {
		byID[n.TodoID] = n
	}

	if n, ok := byID[tdoAtLead.ID]; !ok {
		t.Errorf("Todo %q is due exactly the lead time out, it should have fired",
			tdoAtLead.Title)
	} else if n.Kind != kind.DueSoon {
		t.Errorf("Todo %q should have fired a due-soon reminder, got %s",
			tdoAtLead.Title,
			n.Kind)
	} else if n.MinutesLeft != objects.DefaultLeadMinutes {
		t.Errorf("Todo %q should report %d minutes left, got %d",
			tdoAtLead.Title,
			objects.DefaultLeadMinutes,
			n.MinutesLeft)
	}

	if _, ok := byID[tdoPastLead.ID]; ok {
		t.Errorf("Todo %q is due one minute past the lead time, it should not have fired",
			tdoPastLead.Title)
	}

	if n, ok := byID[tdoRightNow.ID]; !ok {
		t.Errorf("Todo %q is due this very minute, it should have fired",
			tdoRightNow.Title)
	} else if n.Kind != kind.DueSoon {
		t.Errorf("Todo %q due this minute counts as due soon, got %s",
			tdoRightNow.Title,
			n.Kind)
	} else if n.MinutesLeft != 0 {
		t.Errorf("Todo %q should report 0 minutes left, got %d",
			tdoRightNow.Title,
			n.MinutesLeft)
	}

	if n, ok := byID[tdoJustPast.ID]; !ok {
		t.Errorf("Todo %q is one minute past due, it should have fired",
			tdoJustPast.Title)
	} else if n.Kind != kind.Overdue {
		t.Errorf("Todo %q should have fired an overdue reminder, got %s",
			tdoJustPast.Title,
			n.Kind)
	} else if n.MinutesLeft != 0 {
		t.Errorf("An overdue reminder carries no minutes left, got %d",
			n.MinutesLeft)
	}

	// Fractional distances round to the nearest minute.
	var (
		half     = stamp.Add(time.Second * 30)
		fraction = stamp.Add(time.Minute * 15)
		tdoFract = mkScanTodo(online.ID, cat.ID, "Mix the wine", &fraction, true)
	)

	if err = db.TodoAdd(&tdoFract); err != nil {
		t.Fatalf("Cannot add Todo %q: %s",
			tdoFract.Title,
			err.Error())
	}

	scanner.clock = func() time.Time { return half }
	scanTrans.reset()

	if _, err = scanner.Scan(); err != nil {
		t.Fatalf("Scan failed: %s", err.Error())
	}

	byID = make(map[int64]*objects.NotificationMessage)
	for _, n := range scanTrans.delivered {
		byID[n.TodoID] = n
	}

	if n, ok := byID[tdoFract.ID]; !ok {
		t.Errorf("Todo %q is well within the lead time, it should have fired",
			tdoFract.Title)
	} else if n.MinutesLeft != 15 {
		t.Errorf("14.5 minutes out should round to 15, got %d",
			n.MinutesLeft)
	}

	if _, ok := byID[tdoPastLead.ID]; ok {
		t.Errorf("Todo %q is still 30.5 minutes out, it should not have fired",
			tdoPastLead.Title)
	}
} // func TestScannerLeadBoundaries(t *testing.T)

// When the reminder flag cannot be persisted, the in-memory record
// still holds the reminder back - one notification, not one per tick.
func TestScannerPersistFailure(t *testing.T) {
	if scanner == nil {
		t.SkipNow()
	}

	var (
		err    error
		raw    *sql.DB
		cat    *objects.Category
		fresh  *objects.Todo
		db     = scanPool.Get()
		due    = scanStamp.Add(time.Minute * 5)
		frozen objects.Todo
	)
	defer scanPool.Put(db)

	if cat, err = db.CategoryGetDefault(online.ID); err != nil || cat == nil {
		t.Fatalf("Cannot look up default Category: %v", err)
	}

	frozen = mkScanTodo(online.ID, cat.ID, "Sacrifice to Poseidon", &due, true)

	if err = db.TodoAdd(&frozen); err != nil {
		t.Fatalf("Cannot add Todo %q: %s",
			frozen.Title,
			err.Error())
	}

	// Make every attempt to persist the reminder flag fail.
	if raw, err = sql.Open("sqlite3", common.DbPath); err != nil {
		t.Fatalf("Cannot open database %s: %s",
			common.DbPath,
			err.Error())
	}
	defer raw.Close() // nolint: errcheck

	if _, err = raw.Exec(`
CREATE TRIGGER reminder_frozen
BEFORE UPDATE OF reminder_sent ON todo
BEGIN
    SELECT RAISE(ABORT, 'reminder updates are frozen');
END
`); err != nil {
		t.Fatalf("Cannot create trigger: %s", err.Error())
	}

	defer raw.Exec("DROP TRIGGER reminder_frozen") // nolint: errcheck

	scanTrans.reset()

	var deliveries = func() int {
		var cnt int
		for _, n := range scanTrans.delivered {
			if n.TodoID == frozen.ID {
				cnt++
			}
		}
		return cnt
	}

	if _, err = scanner.Scan(); err != nil {
		t.Fatalf("Scan failed: %s", err.Error())
	} else if deliveries() != 1 {
		t.Fatalf("Expected 1 delivered notification for Todo %q, got %d",
			frozen.Title,
			deliveries())
	} else if !scanSupp.HasFired(frozen.ID) {
		t.Errorf("Todo %q should be on cooldown after the failed pass",
			frozen.Title)
	}

	if fresh, err = db.TodoGetByID(frozen.ID); err != nil || fresh == nil {
		t.Fatalf("Cannot fetch Todo %q: %v",
			frozen.Title,
			err)
	} else if fresh.ReminderSent {
		t.Errorf("The reminder flag on Todo %q cannot have been persisted",
			frozen.Title)
	}

	// The next tick sees the Todo again, but the cooldown holds it.
	if _, err = scanner.Scan(); err != nil {
		t.Fatalf("Scan failed: %s", err.Error())
	} else if deliveries() != 1 {
		t.Errorf("Todo %q was delivered again on the second pass (%d deliveries)",
			frozen.Title,
			deliveries())
	}
} // func TestScannerPersistFailure(t *testing.T)
