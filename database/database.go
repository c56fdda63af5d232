// /home/krylon/go/src/github.com/blicero/mnemosyne/database/database.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-21 19:46:30 krylon>

// Package database provides the persistence layer of the application.
// All access to the underlying SQLite database goes through this
// package.
package database

import (
	"database/sql"
	"errors"
	"fmt"
	"log"
	"regexp"
	"sync"
	"time"

	"github.com/blicero/krylib"
	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/database/query"
	"github.com/blicero/mnemosyne/logdomain"
	"github.com/blicero/mnemosyne/objects"
	_ "github.com/mattn/go-sqlite3" // Import the database driver
)

var (
	openLock sync.Mutex
	idCnt    int64
)

// ErrTxInProgress indicates that an attempt to initiate a transaction
// failed because there is already one in progress.
var ErrTxInProgress = errors.New("A Transaction is already in progress")

// ErrNoTxInProgress indicates that an attempt was made to finish a
// transaction when none was active.
var ErrNoTxInProgress = errors.New("There is no transaction in progress")

// If a query returns with this error, we can usually just wait a
// little and try again.
var retryPat = regexp.MustCompile("(?i)database is (?:locked|busy)")

const retryDelay = time.Millisecond * 25

func worthARetry(e error) bool {
	return retryPat.MatchString(e.Error())
} // func worthARetry(e error) bool

func waitForRetry() {
	time.Sleep(retryDelay)
} // func waitForRetry()

// Database wraps a connection to the SQLite database and the related
// state, i.e. prepared statements and the transaction in progress, if any.
type Database struct {
	id      int64
	db      *sql.DB
	tx      *sql.Tx
	log     *log.Logger
	path    string
	queries map[query.ID]*sql.Stmt
}

// Open opens the database at the given path. If the database is not
// initialized, yet, the schema is created.
func Open(path string) (*Database, error) {
	var (
		err      error
		dbExists bool
		db       = &Database{
			path:    path,
			queries: make(map[query.ID]*sql.Stmt, len(dbQueries)),
		}
	)

	openLock.Lock()
	defer openLock.Unlock()
	idCnt++
	db.id = idCnt

	if db.log, err = common.GetLogger(logdomain.Database); err != nil {
		return nil, err
	}

	var connstring = fmt.Sprintf("%s?_locking=NORMAL&_journal=WAL&_fk=1&recursive_triggers=0",
		path)

	if dbExists, err = krylib.Fexists(path); err != nil {
		db.log.Printf("[ERROR] Failed to check if %s exists: %s\n",
			path,
			err.Error())
		return nil, err
	} else if db.db, err = sql.Open("sqlite3", connstring); err != nil {
		db.log.Printf("[ERROR] Failed to open %s: %s\n",
			path,
			err.Error())
		return nil, err
	}

	if !dbExists {
		if err = db.initialize(); err != nil {
			var e2 error
			if e2 = db.db.Close(); e2 != nil {
				db.log.Printf("[CRITICAL] Failed to close database: %s\n",
					e2.Error())
				return nil, e2
			}
			return nil, err
		}
	}

	return db, nil
} // func Open(path string) (*Database, error)

func (db *Database) initialize() error {
	var (
		err error
		tx  *sql.Tx
	)

	if tx, err = db.db.Begin(); err != nil {
		db.log.Printf("[ERROR] Cannot begin transaction: %s\n",
			err.Error())
		return err
	}

	for _, q := range initQueries {
		if _, err = tx.Exec(q); err != nil {
			db.log.Printf("[ERROR] Cannot execute init query:\n%s\n%s\n",
				q,
				err.Error())
			if rbErr := tx.Rollback(); rbErr != nil {
				db.log.Printf("[CANTHAPPEN] Cannot rollback transaction: %s\n",
					rbErr.Error())
			}
			return err
		}
	}

	if err = tx.Commit(); err != nil {
		db.log.Printf("[CANTHAPPEN] Failed to commit init transaction: %s\n",
			err.Error())
		return err
	}

	return nil
} // func (db *Database) initialize() error

// Close closes the database connection.
func (db *Database) Close() error {
	if db.tx != nil {
		if err := db.tx.Rollback(); err != nil {
			db.log.Printf("[CRITICAL] Cannot roll back pending transaction: %s\n",
				err.Error())
			return err
		}
		db.tx = nil
	}

	for key, stmt := range db.queries {
		if err := stmt.Close(); err != nil {
			db.log.Printf("[CRITICAL] Cannot close statement handle %s: %s\n",
				key,
				err.Error())
			return err
		}
		delete(db.queries, key)
	}

	if err := db.db.Close(); err != nil {
		db.log.Printf("[CRITICAL] Cannot close database: %s\n",
			err.Error())
		return err
	}

	db.db = nil
	return nil
} // func (db *Database) Close() error

func (db *Database) getQuery(qid query.ID) (*sql.Stmt, error) {
	var (
		stmt *sql.Stmt
		ok   bool
		err  error
	)

	if stmt, ok = db.queries[qid]; ok {
		return stmt, nil
	}

PREPARE_QUERY:
	if stmt, err = db.db.Prepare(dbQueries[qid]); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto PREPARE_QUERY
		}

		db.log.Printf("[ERROR] Cannot parse query %s: %s\n%s\n",
			qid,
			err.Error(),
			dbQueries[qid])
		return nil, err
	}

	db.queries[qid] = stmt
	return stmt, nil
} // func (db *Database) getQuery(qid query.ID) (*sql.Stmt, error)

// Begin begins an explicit database transaction.
// Only one transaction can be in progress at once, attempting to start one,
// while another transaction is already in progress will yield ErrTxInProgress.
func (db *Database) Begin() error {
	var err error

	if db.tx != nil {
		return ErrTxInProgress
	}

BEGIN_TX:
	for db.tx == nil {
		if db.tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				waitForRetry()
				continue BEGIN_TX
			} else {
				db.log.Printf("[ERROR] Failed to start transaction: %s\n",
					err.Error())
				return err
			}
		}
	}

	return nil
} // func (db *Database) Begin() error

// Commit ends the active transaction, making any changes made during that
// transaction permanent and visible to other connections.
func (db *Database) Commit() error {
	var err error

	if db.tx == nil {
		return ErrNoTxInProgress
	}

COMMIT_TX:
	if err = db.tx.Commit(); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto COMMIT_TX
		} else {
			db.log.Printf("[ERROR] Failed to commit transaction: %s\n",
				err.Error())
			return err
		}
	}

	db.tx = nil
	return nil
} // func (db *Database) Commit() error

// Rollback terminates a pending transaction, undoing any changes to the
// database made during that transaction.
func (db *Database) Rollback() error {
	var err error

	if db.tx == nil {
		return ErrNoTxInProgress
	} else if err = db.tx.Rollback(); err != nil {
		db.log.Printf("[ERROR] Failed to roll back transaction: %s\n",
			err.Error())
		return err
	}

	db.tx = nil
	return nil
} // func (db *Database) Rollback() error

// execStmt runs a modifying query. If no explicit transaction is in
// progress, it gets wrapped in an ad-hoc one.
func (db *Database) execStmt(qid query.ID, args ...interface{}) (sql.Result, error) {
	var (
		err    error
		stmt   *sql.Stmt
		tx     *sql.Tx
		adHoc  bool
		status bool
		res    sql.Result
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		tx = db.tx
	} else {
		adHoc = true
	BEGIN_AD_HOC:
		if tx, err = db.db.Begin(); err != nil {
			if worthARetry(err) {
				waitForRetry()
				goto BEGIN_AD_HOC
			}

			db.log.Printf("[ERROR] Error starting transaction: %s\n",
				err.Error())
			return nil, err
		}
	}

	if adHoc {
		defer func() {
			var err2 error
			if status {
				if err2 = tx.Commit(); err2 != nil {
					db.log.Printf("[ERROR] Failed to commit ad-hoc transaction: %s\n",
						err2.Error())
				}
			} else if err2 = tx.Rollback(); err2 != nil {
				db.log.Printf("[ERROR] Rollback of ad-hoc transaction failed: %s\n",
					err2.Error())
			}
		}()
	}

	stmt = tx.Stmt(stmt)

EXEC_QUERY:
	if res, err = stmt.Exec(args...); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Error executing query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	}

	status = true
	return res, nil
} // func (db *Database) execStmt(qid query.ID, args ...interface{}) (sql.Result, error)

// queryStmt runs a SELECT query, retrying if the database is busy.
func (db *Database) queryStmt(qid query.ID, args ...interface{}) (*sql.Rows, error) {
	var (
		err  error
		stmt *sql.Stmt
		rows *sql.Rows
	)

	if stmt, err = db.getQuery(qid); err != nil {
		db.log.Printf("[ERROR] Cannot prepare query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	} else if db.tx != nil {
		stmt = db.tx.Stmt(stmt)
	}

EXEC_QUERY:
	if rows, err = stmt.Query(args...); err != nil {
		if worthARetry(err) {
			waitForRetry()
			goto EXEC_QUERY
		}

		db.log.Printf("[ERROR] Error executing query %s: %s\n",
			qid,
			err.Error())
		return nil, err
	}

	return rows, nil
} // func (db *Database) queryStmt(qid query.ID, args ...interface{}) (*sql.Rows, error)

//////////////////////////////////////////////////////////////////////////////
/// User /////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////

// UserAdd adds a new User to the database.
func (db *Database) UserAdd(u *objects.User) error {
	var (
		err error
		res sql.Result
		now = time.Now()
	)

	if res, err = db.execStmt(query.UserAdd, u.Name, u.Email, u.PasswordHash, now.Unix()); err != nil {
		return err
	} else if u.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new User %q: %s\n",
			u.Email,
			err.Error())
		return err
	}

	u.Created = now
	return nil
} // func (db *Database) UserAdd(u *objects.User) error

// UserGetByID looks up a User by their ID.
// If no such User exists, it returns nil, but no error.
func (db *Database) UserGetByID(id int64) (*objects.User, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.UserGetByID, id); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			u       = &objects.User{ID: id}
			expiry  int64
			created int64
		)

		if err = rows.Scan(
			&u.Name,
			&u.Email,
			&u.PasswordHash,
			&u.TodoCount,
			&u.GoogleID,
			&u.Google.AccessToken,
			&u.Google.RefreshToken,
			&expiry,
			&u.Google.CalendarID,
			&u.Calendar.Enabled,
			&u.Calendar.SyncEvents,
			&u.Calendar.DefaultLeadMinutes,
			&created); err != nil {
			db.log.Printf("[ERROR] Cannot scan User row: %s\n",
				err.Error())
			return nil, err
		}

		if expiry != 0 {
			u.Google.TokenExpiry = time.Unix(expiry, 0)
		}
		u.Created = time.Unix(created, 0)

		return u, nil
	}

	return nil, nil
} // func (db *Database) UserGetByID(id int64) (*objects.User, error)

// UserGetByEmail looks up a User by their email address.
// If no such User exists, it returns nil, but no error.
func (db *Database) UserGetByEmail(email string) (*objects.User, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.UserGetByEmail, email); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			u       = &objects.User{Email: email}
			expiry  int64
			created int64
		)

		if err = rows.Scan(
			&u.ID,
			&u.Name,
			&u.PasswordHash,
			&u.TodoCount,
			&u.GoogleID,
			&u.Google.AccessToken,
			&u.Google.RefreshToken,
			&expiry,
			&u.Google.CalendarID,
			&u.Calendar.Enabled,
			&u.Calendar.SyncEvents,
			&u.Calendar.DefaultLeadMinutes,
			&created); err != nil {
			db.log.Printf("[ERROR] Cannot scan User row: %s\n",
				err.Error())
			return nil, err
		}

		if expiry != 0 {
			u.Google.TokenExpiry = time.Unix(expiry, 0)
		}
		u.Created = time.Unix(created, 0)

		return u, nil
	}

	return nil, nil
} // func (db *Database) UserGetByEmail(email string) (*objects.User, error)

// UserIncTodoCount adjusts the User's Todo counter by the given delta.
func (db *Database) UserIncTodoCount(u *objects.User, delta int64) error {
	var err error

	if _, err = db.execStmt(query.UserIncTodoCount, delta, u.ID); err != nil {
		return err
	}

	u.TodoCount += delta
	return nil
} // func (db *Database) UserIncTodoCount(u *objects.User, delta int64) error

// UserSetGoogleAuth stores the User's Google OAuth tokens and enables
// the calendar integration.
func (db *Database) UserSetGoogleAuth(u *objects.User, googleID string, ga objects.GoogleAuth) error {
	var (
		err    error
		expiry int64
	)

	if !ga.TokenExpiry.IsZero() {
		expiry = ga.TokenExpiry.Unix()
	}

	if ga.CalendarID == "" {
		ga.CalendarID = "primary"
	}

	if _, err = db.execStmt(query.UserSetGoogleAuth,
		googleID,
		ga.AccessToken,
		ga.RefreshToken,
		expiry,
		ga.CalendarID,
		u.ID); err != nil {
		return err
	}

	u.GoogleID = googleID
	u.Google = ga
	u.Calendar.Enabled = true
	return nil
} // func (db *Database) UserSetGoogleAuth(u *objects.User, googleID string, ga objects.GoogleAuth) error

// UserClearGoogleAuth removes the User's Google OAuth tokens and
// disables the calendar integration.
func (db *Database) UserClearGoogleAuth(u *objects.User) error {
	var err error

	if _, err = db.execStmt(query.UserClearGoogleAuth, u.ID); err != nil {
		return err
	}

	u.GoogleID = ""
	u.Google = objects.GoogleAuth{CalendarID: u.Google.CalendarID}
	u.Calendar.Enabled = false
	u.Calendar.SyncEvents = false
	return nil
} // func (db *Database) UserClearGoogleAuth(u *objects.User) error

// UserSetCalendarSettings updates the User's calendar integration settings.
func (db *Database) UserSetCalendarSettings(u *objects.User, cs objects.CalendarSettings, calendarID string) error {
	var err error

	if calendarID == "" {
		calendarID = "primary"
	}

	if _, err = db.execStmt(query.UserSetCalendarSettings,
		cs.SyncEvents,
		cs.DefaultLeadMinutes,
		calendarID,
		u.ID); err != nil {
		return err
	}

	u.Calendar.SyncEvents = cs.SyncEvents
	u.Calendar.DefaultLeadMinutes = cs.DefaultLeadMinutes
	u.Google.CalendarID = calendarID
	return nil
} // func (db *Database) UserSetCalendarSettings(...) error

//////////////////////////////////////////////////////////////////////////////
/// Category /////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////

// CategoryAdd adds a new Category to the database.
func (db *Database) CategoryAdd(c *objects.Category) error {
	var (
		err error
		res sql.Result
	)

	if c.Color == "" {
		c.Color = objects.DefaultCategoryColor
	}

	if res, err = db.execStmt(query.CategoryAdd, c.UserID, c.Name, c.Color, c.IsDefault); err != nil {
		return err
	} else if c.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new Category %q: %s\n",
			c.Name,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) CategoryAdd(c *objects.Category) error

// CategoryGetByID looks up a Category by its ID.
func (db *Database) CategoryGetByID(id int64) (*objects.Category, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.CategoryGetByID, id); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var c = &objects.Category{ID: id}

		if err = rows.Scan(&c.UserID, &c.Name, &c.Color, &c.IsDefault); err != nil {
			db.log.Printf("[ERROR] Cannot scan Category row: %s\n",
				err.Error())
			return nil, err
		}

		return c, nil
	}

	return nil, nil
} // func (db *Database) CategoryGetByID(id int64) (*objects.Category, error)

// CategoryGetByUser loads all of a User's Categories.
func (db *Database) CategoryGetByUser(userID int64) ([]objects.Category, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.CategoryGetByUser, userID); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var categories = make([]objects.Category, 0, 8)

	for rows.Next() {
		var c = objects.Category{UserID: userID}

		if err = rows.Scan(&c.ID, &c.Name, &c.Color, &c.IsDefault); err != nil {
			db.log.Printf("[ERROR] Cannot scan Category row: %s\n",
				err.Error())
			return nil, err
		}

		categories = append(categories, c)
	}

	return categories, nil
} // func (db *Database) CategoryGetByUser(userID int64) ([]objects.Category, error)

// CategoryGetByName looks up one of a User's Categories by its name.
func (db *Database) CategoryGetByName(userID int64, name string) (*objects.Category, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.CategoryGetByName, userID, name); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var c = &objects.Category{UserID: userID, Name: name}

		if err = rows.Scan(&c.ID, &c.Color, &c.IsDefault); err != nil {
			db.log.Printf("[ERROR] Cannot scan Category row: %s\n",
				err.Error())
			return nil, err
		}

		return c, nil
	}

	return nil, nil
} // func (db *Database) CategoryGetByName(userID int64, name string) (*objects.Category, error)

// CategoryGetDefault returns the User's default Category.
func (db *Database) CategoryGetDefault(userID int64) (*objects.Category, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.CategoryGetDefault, userID); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var c = &objects.Category{UserID: userID, IsDefault: true}

		if err = rows.Scan(&c.ID, &c.Name, &c.Color); err != nil {
			db.log.Printf("[ERROR] Cannot scan Category row: %s\n",
				err.Error())
			return nil, err
		}

		return c, nil
	}

	return nil, nil
} // func (db *Database) CategoryGetDefault(userID int64) (*objects.Category, error)

// CategoryUpdate updates a Category's name, color, and default flag.
func (db *Database) CategoryUpdate(c *objects.Category, name, color string, isDefault bool) error {
	var err error

	if _, err = db.execStmt(query.CategoryUpdate, name, color, isDefault, c.ID); err != nil {
		return err
	}

	c.Name = name
	c.Color = color
	c.IsDefault = isDefault
	return nil
} // func (db *Database) CategoryUpdate(c *objects.Category, name, color string, isDefault bool) error

// CategoryDelete removes a Category from the database.
// The database will refuse to delete a Category that still has Todos
// attached to it.
func (db *Database) CategoryDelete(c *objects.Category) error {
	var err error

	if _, err = db.execStmt(query.CategoryDelete, c.ID); err != nil {
		return err
	}

	return nil
} // func (db *Database) CategoryDelete(c *objects.Category) error

// CategoryTodoCount returns the number of Todos filed under the Category.
func (db *Database) CategoryTodoCount(c *objects.Category) (int64, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.CategoryTodoCount, c.ID); err != nil {
		return 0, err
	}

	defer rows.Close() // nolint: errcheck

	var cnt int64

	if rows.Next() {
		if err = rows.Scan(&cnt); err != nil {
			db.log.Printf("[ERROR] Cannot scan count: %s\n",
				err.Error())
			return 0, err
		}
	}

	return cnt, nil
} // func (db *Database) CategoryTodoCount(c *objects.Category) (int64, error)

//////////////////////////////////////////////////////////////////////////////
/// Todo /////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////

// TodoAdd adds a new Todo to the database.
func (db *Database) TodoAdd(t *objects.Todo) error {
	var (
		err error
		res sql.Result
		due interface{}
		now = time.Now()
	)

	if t.UUID == "" {
		t.UUID = common.GetUUID()
	}
	if t.Status == "" {
		t.Status = objects.StatusPending
	}
	if t.Priority == "" {
		t.Priority = objects.PriorityMedium
	}

	if t.DueDate != nil {
		due = t.DueDate.Unix()
	}

	if res, err = db.execStmt(query.TodoAdd,
		t.UUID,
		t.UserID,
		t.CategoryID,
		t.Title,
		t.Description,
		due,
		t.DueTime,
		string(t.Status),
		string(t.Priority),
		t.Notification.Enabled,
		t.Notification.LeadMinutes,
		now.Unix()); err != nil {
		return err
	} else if t.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new Todo %q: %s\n",
			t.Title,
			err.Error())
		return err
	}

	t.Changed = now
	return nil
} // func (db *Database) TodoAdd(t *objects.Todo) error

// scanTodo scans one row from a query that returns the full set of
// Todo columns, minus the user_id the caller already knows.
func scanTodo(rows *sql.Rows, t *objects.Todo) error {
	var (
		err     error
		due     sql.NullInt64
		synced  int64
		changed int64
	)

	if err = rows.Scan(
		&t.ID,
		&t.UUID,
		&t.CategoryID,
		&t.Title,
		&t.Description,
		&due,
		&t.DueTime,
		&t.Completed,
		&t.Status,
		&t.Priority,
		&t.Notification.Enabled,
		&t.Notification.LeadMinutes,
		&t.ReminderSent,
		&t.CalendarEvent.EventID,
		&t.CalendarEvent.Synced,
		&synced,
		&t.CalendarEvent.LastSyncStatus,
		&t.CalendarEvent.SyncError,
		&changed); err != nil {
		return err
	}

	if due.Valid {
		var stamp = time.Unix(due.Int64, 0)
		t.DueDate = &stamp
	}
	if synced != 0 {
		t.CalendarEvent.SyncedAt = time.Unix(synced, 0)
	}
	t.Changed = time.Unix(changed, 0)

	return nil
} // func scanTodo(rows *sql.Rows, t *objects.Todo) error

// TodoGetByID looks up a Todo by its ID, including its Attachments.
func (db *Database) TodoGetByID(id int64) (*objects.Todo, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.TodoGetByID, id); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			t       = &objects.Todo{ID: id}
			due     sql.NullInt64
			synced  int64
			changed int64
		)

		if err = rows.Scan(
			&t.UUID,
			&t.UserID,
			&t.CategoryID,
			&t.Title,
			&t.Description,
			&due,
			&t.DueTime,
			&t.Completed,
			&t.Status,
			&t.Priority,
			&t.Notification.Enabled,
			&t.Notification.LeadMinutes,
			&t.ReminderSent,
			&t.CalendarEvent.EventID,
			&t.CalendarEvent.Synced,
			&synced,
			&t.CalendarEvent.LastSyncStatus,
			&t.CalendarEvent.SyncError,
			&changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan Todo row: %s\n",
				err.Error())
			return nil, err
		}

		if due.Valid {
			var stamp = time.Unix(due.Int64, 0)
			t.DueDate = &stamp
		}
		if synced != 0 {
			t.CalendarEvent.SyncedAt = time.Unix(synced, 0)
		}
		t.Changed = time.Unix(changed, 0)

		if t.Attachments, err = db.AttachmentGetByTodo(id); err != nil {
			return nil, err
		}

		return t, nil
	}

	return nil, nil
} // func (db *Database) TodoGetByID(id int64) (*objects.Todo, error)

// TodoGetByUser loads all of a User's Todos, most recently changed first.
func (db *Database) TodoGetByUser(userID int64) ([]objects.Todo, error) {
	return db.todoList(query.TodoGetByUser, userID)
} // func (db *Database) TodoGetByUser(userID int64) ([]objects.Todo, error)

// TodoGetUpcoming returns the User's unfinished Todos that are due
// between the two given points in time.
func (db *Database) TodoGetUpcoming(userID int64, lo, hi time.Time) ([]objects.Todo, error) {
	return db.todoList(query.TodoGetUpcoming, userID, lo.Unix(), hi.Unix())
} // func (db *Database) TodoGetUpcoming(userID int64, lo, hi time.Time) ([]objects.Todo, error)

// TodoGetOverdue returns the User's unfinished Todos whose due date has
// passed relative to the given reference time.
func (db *Database) TodoGetOverdue(userID int64, ref time.Time) ([]objects.Todo, error) {
	return db.todoList(query.TodoGetOverdue, userID, ref.Unix())
} // func (db *Database) TodoGetOverdue(userID int64, ref time.Time) ([]objects.Todo, error)

func (db *Database) todoList(qid query.ID, userID int64, args ...interface{}) ([]objects.Todo, error) {
	var (
		err  error
		rows *sql.Rows
	)

	var qargs = append([]interface{}{userID}, args...)

	if rows, err = db.queryStmt(qid, qargs...); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var todos = make([]objects.Todo, 0, 16)

	for rows.Next() {
		var t = objects.Todo{UserID: userID}

		if err = scanTodo(rows, &t); err != nil {
			db.log.Printf("[ERROR] Cannot scan Todo row (%s): %s\n",
				qid,
				err.Error())
			return nil, err
		}

		todos = append(todos, t)
	}

	return todos, nil
} // func (db *Database) todoList(qid query.ID, userID int64, args ...interface{}) ([]objects.Todo, error)

// TodoGetReminderPending returns all Todos - across all users - that are
// eligible for a reminder: not completed, with a due date, notifications
// enabled, and no reminder sent, yet.
func (db *Database) TodoGetReminderPending() ([]objects.Todo, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.TodoGetReminderPending); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var todos = make([]objects.Todo, 0, 16)

	for rows.Next() {
		var (
			t = objects.Todo{
				Notification: objects.NotificationSettings{Enabled: true},
			}
			due     int64
			synced  int64
			changed int64
		)

		if err = rows.Scan(
			&t.ID,
			&t.UUID,
			&t.UserID,
			&t.CategoryID,
			&t.Title,
			&t.Description,
			&due,
			&t.DueTime,
			&t.Status,
			&t.Priority,
			&t.Notification.LeadMinutes,
			&t.CalendarEvent.EventID,
			&t.CalendarEvent.Synced,
			&synced,
			&t.CalendarEvent.LastSyncStatus,
			&t.CalendarEvent.SyncError,
			&changed); err != nil {
			db.log.Printf("[ERROR] Cannot scan Todo row: %s\n",
				err.Error())
			return nil, err
		}

		var stamp = time.Unix(due, 0)
		t.DueDate = &stamp
		if synced != 0 {
			t.CalendarEvent.SyncedAt = time.Unix(synced, 0)
		}
		t.Changed = time.Unix(changed, 0)

		todos = append(todos, t)
	}

	return todos, nil
} // func (db *Database) TodoGetReminderPending() ([]objects.Todo, error)

// TodoSetTitle updates a Todo's title.
func (db *Database) TodoSetTitle(t *objects.Todo, title string) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoSetTitle, title, now.Unix(), t.ID); err != nil {
		return err
	}

	t.Title = title
	t.Changed = now
	return nil
} // func (db *Database) TodoSetTitle(t *objects.Todo, title string) error

// TodoSetDescription updates a Todo's description.
func (db *Database) TodoSetDescription(t *objects.Todo, desc string) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoSetDescription, desc, now.Unix(), t.ID); err != nil {
		return err
	}

	t.Description = desc
	t.Changed = now
	return nil
} // func (db *Database) TodoSetDescription(t *objects.Todo, desc string) error

// TodoSetCategory moves a Todo to a different Category.
func (db *Database) TodoSetCategory(t *objects.Todo, catID int64) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoSetCategory, catID, now.Unix(), t.ID); err != nil {
		return err
	}

	t.CategoryID = catID
	t.Changed = now
	return nil
} // func (db *Database) TodoSetCategory(t *objects.Todo, catID int64) error

// TodoSetStatus updates a Todo's status.
func (db *Database) TodoSetStatus(t *objects.Todo, status objects.Status) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoSetStatus, string(status), now.Unix(), t.ID); err != nil {
		return err
	}

	t.Status = status
	t.Changed = now
	return nil
} // func (db *Database) TodoSetStatus(t *objects.Todo, status objects.Status) error

// TodoSetPriority updates a Todo's priority.
func (db *Database) TodoSetPriority(t *objects.Todo, prio objects.Priority) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoSetPriority, string(prio), now.Unix(), t.ID); err != nil {
		return err
	}

	t.Priority = prio
	t.Changed = now
	return nil
} // func (db *Database) TodoSetPriority(t *objects.Todo, prio objects.Priority) error

// TodoSetCompleted updates a Todo's completed flag and status together.
func (db *Database) TodoSetCompleted(t *objects.Todo, completed bool, status objects.Status) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoSetCompleted, completed, string(status), now.Unix(), t.ID); err != nil {
		return err
	}

	t.Completed = completed
	t.Status = status
	t.Changed = now
	return nil
} // func (db *Database) TodoSetCompleted(t *objects.Todo, completed bool, status objects.Status) error

// TodoSetDue updates a Todo's due date and time of day.
// As a side effect - enforced by the query itself - the reminder_sent
// flag is cleared, so a rescheduled Todo becomes eligible for a
// reminder again.
func (db *Database) TodoSetDue(t *objects.Todo, date *time.Time, tod string) error {
	var (
		err error
		due interface{}
		now = time.Now()
	)

	if date != nil {
		due = date.Unix()
	}

	if _, err = db.execStmt(query.TodoSetDue, due, tod, now.Unix(), t.ID); err != nil {
		return err
	}

	t.DueDate = date
	t.DueTime = tod
	t.ReminderSent = false
	t.Changed = now
	return nil
} // func (db *Database) TodoSetDue(t *objects.Todo, date *time.Time, tod string) error

// TodoSetNotification updates a Todo's notification settings.
func (db *Database) TodoSetNotification(t *objects.Todo, ns objects.NotificationSettings) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoSetNotification, ns.Enabled, ns.LeadMinutes, now.Unix(), t.ID); err != nil {
		return err
	}

	t.Notification = ns
	t.Changed = now
	return nil
} // func (db *Database) TodoSetNotification(t *objects.Todo, ns objects.NotificationSettings) error

// TodoSetReminderSent sets or clears a Todo's reminder_sent flag.
func (db *Database) TodoSetReminderSent(t *objects.Todo, sent bool) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoSetReminderSent, sent, now.Unix(), t.ID); err != nil {
		return err
	}

	t.ReminderSent = sent
	t.Changed = now
	return nil
} // func (db *Database) TodoSetReminderSent(t *objects.Todo, sent bool) error

// TodoSetCalendarEvent records the result of syncing a Todo to the
// user's Google Calendar.
func (db *Database) TodoSetCalendarEvent(t *objects.Todo, info objects.CalendarEventInfo) error {
	var (
		err    error
		synced int64
		now    = time.Now()
	)

	if !info.SyncedAt.IsZero() {
		synced = info.SyncedAt.Unix()
	}

	if _, err = db.execStmt(query.TodoSetCalendarEvent,
		info.EventID,
		info.Synced,
		synced,
		info.LastSyncStatus,
		info.SyncError,
		now.Unix(),
		t.ID); err != nil {
		return err
	}

	t.CalendarEvent = info
	t.Changed = now
	return nil
} // func (db *Database) TodoSetCalendarEvent(t *objects.Todo, info objects.CalendarEventInfo) error

// TodoClearCalendarEvent removes a Todo's link to a calendar event.
func (db *Database) TodoClearCalendarEvent(t *objects.Todo) error {
	var (
		err error
		now = time.Now()
	)

	if _, err = db.execStmt(query.TodoClearCalendarEvent, now.Unix(), t.ID); err != nil {
		return err
	}

	t.CalendarEvent = objects.CalendarEventInfo{}
	t.Changed = now
	return nil
} // func (db *Database) TodoClearCalendarEvent(t *objects.Todo) error

// TodoSetChanged bumps a Todo's change stamp without touching any
// other column. Used after operations that only affect related
// records, like Attachments.
func (db *Database) TodoSetChanged(t *objects.Todo, stamp time.Time) error {
	var err error

	if _, err = db.execStmt(query.TodoSetChanged, stamp.Unix(), t.ID); err != nil {
		return err
	}

	t.Changed = stamp
	return nil
} // func (db *Database) TodoSetChanged(t *objects.Todo, stamp time.Time) error

// TodoDelete removes a Todo from the database. Its Attachment records
// are removed by the database.
func (db *Database) TodoDelete(t *objects.Todo) error {
	var err error

	if _, err = db.execStmt(query.TodoDelete, t.ID); err != nil {
		return err
	}

	return nil
} // func (db *Database) TodoDelete(t *objects.Todo) error

//////////////////////////////////////////////////////////////////////////////
/// Attachment ///////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////

// AttachmentAdd stores an Attachment's metadata.
func (db *Database) AttachmentAdd(a *objects.Attachment) error {
	var (
		err error
		res sql.Result
	)

	if a.UploadedAt.IsZero() {
		a.UploadedAt = time.Now()
	}

	if res, err = db.execStmt(query.AttachmentAdd,
		a.TodoID,
		a.OriginalName,
		a.Filename,
		a.Size,
		a.MimeType,
		a.UploadedAt.Unix()); err != nil {
		return err
	} else if a.ID, err = res.LastInsertId(); err != nil {
		db.log.Printf("[ERROR] Cannot get ID of new Attachment %q: %s\n",
			a.OriginalName,
			err.Error())
		return err
	}

	return nil
} // func (db *Database) AttachmentAdd(a *objects.Attachment) error

// AttachmentGetByID looks up an Attachment by its ID.
func (db *Database) AttachmentGetByID(id int64) (*objects.Attachment, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.AttachmentGetByID, id); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	if rows.Next() {
		var (
			a        = &objects.Attachment{ID: id}
			uploaded int64
		)

		if err = rows.Scan(
			&a.TodoID,
			&a.OriginalName,
			&a.Filename,
			&a.Size,
			&a.MimeType,
			&uploaded); err != nil {
			db.log.Printf("[ERROR] Cannot scan Attachment row: %s\n",
				err.Error())
			return nil, err
		}

		a.UploadedAt = time.Unix(uploaded, 0)
		return a, nil
	}

	return nil, nil
} // func (db *Database) AttachmentGetByID(id int64) (*objects.Attachment, error)

// AttachmentGetByTodo loads all Attachments of one Todo.
func (db *Database) AttachmentGetByTodo(todoID int64) ([]objects.Attachment, error) {
	var (
		err  error
		rows *sql.Rows
	)

	if rows, err = db.queryStmt(query.AttachmentGetByTodo, todoID); err != nil {
		return nil, err
	}

	defer rows.Close() // nolint: errcheck

	var attachments = make([]objects.Attachment, 0, 4)

	for rows.Next() {
		var (
			a        = objects.Attachment{TodoID: todoID}
			uploaded int64
		)

		if err = rows.Scan(
			&a.ID,
			&a.OriginalName,
			&a.Filename,
			&a.Size,
			&a.MimeType,
			&uploaded); err != nil {
			db.log.Printf("[ERROR] Cannot scan Attachment row: %s\n",
				err.Error())
			return nil, err
		}

		a.UploadedAt = time.Unix(uploaded, 0)
		attachments = append(attachments, a)
	}

	return attachments, nil
} // func (db *Database) AttachmentGetByTodo(todoID int64) ([]objects.Attachment, error)

// AttachmentDelete removes an Attachment's metadata from the database.
// Deleting the actual file from the spool directory is the caller's
// business.
func (db *Database) AttachmentDelete(a *objects.Attachment) error {
	var err error

	if _, err = db.execStmt(query.AttachmentDelete, a.ID); err != nil {
		return err
	}

	return nil
} // func (db *Database) AttachmentDelete(a *objects.Attachment) error
