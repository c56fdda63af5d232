// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/calweb.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 17:48:05 krylon>

package backend

import (
	"fmt"
	"net/http"
	"strconv"
	"time"

	"github.com/blicero/mnemosyne/calendar"
	"github.com/blicero/mnemosyne/database"
	"github.com/blicero/mnemosyne/objects"
	"github.com/gorilla/mux"
	"golang.org/x/oauth2"
	gcal "google.golang.org/api/calendar/v3"
)

// handleCalendarAuth hands the client the URL it has to send the user
// to in order to connect their Google account. The OAuth state is a
// token for the requesting user, so the callback can tell whose
// account is being connected.
func (d *Daemon) handleCalendarAuth(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		u        *objects.User
		state    string
		response = objects.Response{ID: d.getID()}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if d.cal == nil {
		response.Message = "Calendar integration is not configured"
		goto SEND_RESPONSE
	} else if state, err = d.auth.Issue(u); err != nil {
		d.log.Printf("[ERROR] Cannot issue state token for User %q: %s\n",
			u.Email,
			err.Error())
		response.Message = err.Error()
		goto SEND_RESPONSE
	}

	response.Message = d.cal.AuthURL(state)
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCalendarAuth(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCalendarCallback(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		u        *objects.User
		tok      *oauth2.Token
		userID   int64
		msg      string
		code     = r.FormValue("code")
		state    = r.FormValue("state")
		response = objects.Response{ID: d.getID()}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if d.cal == nil {
		response.Message = "Calendar integration is not configured"
		goto SEND_RESPONSE
	} else if code == "" {
		response.Message = "No authorization code in callback"
		goto SEND_RESPONSE
	} else if userID, err = d.auth.Verify(state); err != nil {
		msg = fmt.Sprintf("Invalid state token: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if u, err = db.UserGetByID(userID); err != nil || u == nil {
		msg = fmt.Sprintf("Cannot look up User %d", userID)
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if tok, err = d.cal.Exchange(r.Context(), code); err != nil {
		msg = fmt.Sprintf("Cannot exchange authorization code: %s",
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if err = db.UserSetGoogleAuth(u, u.GoogleID, objects.GoogleAuth{
		AccessToken:  tok.AccessToken,
		RefreshToken: tok.RefreshToken,
		TokenExpiry:  tok.Expiry,
		CalendarID:   u.Google.CalendarID,
	}); err != nil {
		msg = fmt.Sprintf("Cannot store tokens for User %q: %s",
			u.Email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	d.log.Printf("[INFO] User %q connected their Google account\n",
		u.Email)

	response.ID = u.ID
	response.Message = "Calendar connected"
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCalendarCallback(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCalendarStatus(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err error
		db  *database.Database
		u   *objects.User
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	}

	var status = map[string]interface{}{
		"configured":  d.cal != nil,
		"connected":   u.HasValidGoogleAuth(),
		"syncEvents":  u.Calendar.SyncEvents,
		"leadMinutes": u.Calendar.DefaultLeadMinutes,
		"calendarId":  u.Google.CalendarID,
	}

	d.sendListJSON(w, status)
} // func (d *Daemon) handleCalendarStatus(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCalendarEvents(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err    error
		db     *database.Database
		u      *objects.User
		events []*gcal.Event
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if d.cal == nil || !u.HasValidGoogleAuth() {
		d.sendListJSON(w, []*gcal.Event{})
		return
	} else if events, err = d.cal.ListUpcoming(r.Context(), db, u, 10); err != nil {
		d.log.Printf("[ERROR] Cannot list calendar events for User %q: %s\n",
			u.Email,
			err.Error())
	}

	d.sendListJSON(w, events)
} // func (d *Daemon) handleCalendarEvents(w http.ResponseWriter, r *http.Request)

// handleCalendarSync pushes a single Todo to the user's calendar on
// demand, regardless of the automatic sync setting.
func (d *Daemon) handleCalendarSync(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		u          *objects.User
		tdo        *objects.Todo
		id         int64
		idstr, msg string
		response   = objects.Response{ID: d.getID()}
	)

	idstr = mux.Vars(r)["id"]

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if d.cal == nil {
		response.Message = "Calendar integration is not configured"
		goto SEND_RESPONSE
	} else if !u.HasValidGoogleAuth() {
		response.Message = "No Google account connected"
		goto SEND_RESPONSE
	} else if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[CANTHAPPEN] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if tdo, err = db.TodoGetByID(id); err != nil {
		msg = fmt.Sprintf("Failed to look up Todo #%d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if tdo == nil || tdo.UserID != u.ID {
		msg = fmt.Sprintf("Todo #%d was not found", id)
		d.log.Printf("[DEBUG] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if !tdo.HasDue() {
		response.Message = "Todo has no due date"
		goto SEND_RESPONSE
	} else if err = d.cal.SyncTodo(r.Context(), db, u, tdo); err != nil {
		msg = fmt.Sprintf("Cannot sync Todo %d (%q) to calendar: %s",
			id,
			tdo.Title,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.ID = tdo.ID
	response.Message = tdo.CalendarEvent.EventID
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCalendarSync(w http.ResponseWriter, r *http.Request)

// handleCalendarSyncAll pushes all of the user's open Todos that have
// a due date to their calendar.
func (d *Daemon) handleCalendarSyncAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		u        *objects.User
		todos    []objects.Todo
		msg      string
		response = objects.Response{ID: d.getID()}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if d.cal == nil {
		response.Message = "Calendar integration is not configured"
		goto SEND_RESPONSE
	} else if !u.HasValidGoogleAuth() {
		response.Message = "No Google account connected"
		goto SEND_RESPONSE
	} else if todos, err = db.TodoGetByUser(u.ID); err != nil {
		msg = fmt.Sprintf("Cannot load Todos for User %q: %s",
			u.Email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	{
		var success, failed, skipped int64

		for i := range todos {
			var t = &todos[i]
			if t.Completed || !t.HasDue() {
				skipped++
				continue
			} else if serr := d.cal.SyncTodo(r.Context(), db, u, t); serr != nil {
				d.log.Printf("[ERROR] Cannot sync Todo %d (%q) to calendar: %s\n",
					t.ID,
					t.Title,
					serr.Error())
				failed++
			} else {
				success++
			}
		}

		d.log.Printf("[INFO] Calendar sync for User %q: %d synced, %d failed, %d skipped\n",
			u.Email,
			success,
			failed,
			skipped)

		response.ID = success
		response.Message = fmt.Sprintf("Synced %d of %d Todos (%d failed, %d skipped)",
			success,
			len(todos),
			failed,
			skipped)
		response.Status = true
	}

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCalendarSyncAll(w http.ResponseWriter, r *http.Request)

// handleCalendarUnsync removes the calendar event linked to a Todo.
// The local link is cleared even if deleting the event on the Google
// side fails.
func (d *Daemon) handleCalendarUnsync(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		u          *objects.User
		tdo        *objects.Todo
		id         int64
		idstr, msg string
		response   = objects.Response{ID: d.getID()}
	)

	idstr = mux.Vars(r)["id"]

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		msg = fmt.Sprintf("Cannot parse ID %q: %s",
			idstr,
			err.Error())
		d.log.Printf("[CANTHAPPEN] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if tdo, err = db.TodoGetByID(id); err != nil {
		msg = fmt.Sprintf("Failed to look up Todo #%d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if tdo == nil || tdo.UserID != u.ID {
		msg = fmt.Sprintf("Todo #%d was not found", id)
		d.log.Printf("[DEBUG] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if tdo.CalendarEvent.EventID == "" {
		response.Message = "Todo is not linked to a calendar event"
		goto SEND_RESPONSE
	}

	if d.cal != nil && u.HasValidGoogleAuth() {
		if err = d.cal.RemoveEvent(r.Context(), db, u, tdo); err != nil {
			d.log.Printf("[ERROR] Cannot delete calendar event for Todo %d (%q): %s\n",
				tdo.ID,
				tdo.Title,
				err.Error())
		}
	}

	// RemoveEvent clears the link on success; after a failure we
	// still drop the link ourselves.
	if tdo.CalendarEvent.EventID != "" {
		if err = db.TodoClearCalendarEvent(tdo); err != nil {
			msg = fmt.Sprintf("Cannot clear calendar link on Todo %d: %s",
				tdo.ID,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}
	}

	response.ID = tdo.ID
	response.Message = "OK"
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCalendarUnsync(w http.ResponseWriter, r *http.Request)

// handleCalendarImport turns upcoming calendar events into Todos.
// Events this application created itself and events already linked to
// a Todo are left alone.
func (d *Daemon) handleCalendarImport(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		u        *objects.User
		cat      *objects.Category
		todos    []objects.Todo
		events   []*gcal.Event
		msg      string
		response = objects.Response{ID: d.getID()}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if d.cal == nil {
		response.Message = "Calendar integration is not configured"
		goto SEND_RESPONSE
	} else if !u.HasValidGoogleAuth() {
		response.Message = "No Google account connected"
		goto SEND_RESPONSE
	} else if events, err = d.cal.ListUpcoming(r.Context(), db, u, 100); err != nil {
		msg = fmt.Sprintf("Cannot list calendar events for User %q: %s",
			u.Email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if todos, err = db.TodoGetByUser(u.ID); err != nil {
		msg = fmt.Sprintf("Cannot load Todos for User %q: %s",
			u.Email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if cat, err = db.CategoryGetDefault(u.ID); err != nil || cat == nil {
		msg = fmt.Sprintf("Cannot look up default Category for User %q",
			u.Email)
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	{
		var linked = make(map[string]bool, len(todos))
		for i := range todos {
			if todos[i].CalendarEvent.EventID != "" {
				linked[todos[i].CalendarEvent.EventID] = true
			}
		}

		var imported int64

		for _, ev := range events {
			if calendar.IsAppEvent(ev) || linked[ev.Id] {
				continue
			}

			var tdo = objects.Todo{
				UserID:     u.ID,
				CategoryID: cat.ID,
				Title:      ev.Summary,
				Notification: objects.NotificationSettings{
					Enabled:     true,
					LeadMinutes: objects.DefaultLeadMinutes,
				},
			}

			if tdo.Title == "" {
				tdo.Title = "Imported event"
			}

			if ev.Start != nil && ev.Start.DateTime != "" {
				var stamp time.Time
				if stamp, err = time.Parse(time.RFC3339, ev.Start.DateTime); err != nil {
					d.log.Printf("[ERROR] Cannot parse start time %q of event %q: %s\n",
						ev.Start.DateTime,
						ev.Summary,
						err.Error())
					continue
				}
				tdo.DueDate = &stamp
				tdo.DueTime = stamp.Format("15:04")
			} else if ev.Start != nil && ev.Start.Date != "" {
				// All-day event
				var stamp time.Time
				if stamp, err = time.Parse("2006-01-02", ev.Start.Date); err != nil {
					d.log.Printf("[ERROR] Cannot parse start date %q of event %q: %s\n",
						ev.Start.Date,
						ev.Summary,
						err.Error())
					continue
				}
				tdo.DueDate = &stamp
			}

			if err = db.TodoAdd(&tdo); err != nil {
				d.log.Printf("[ERROR] Cannot import event %q: %s\n",
					tdo.Title,
					err.Error())
				continue
			} else if err = db.TodoSetCalendarEvent(&tdo, objects.CalendarEventInfo{
				EventID:        ev.Id,
				Synced:         true,
				SyncedAt:       time.Now(),
				LastSyncStatus: "ok",
			}); err != nil {
				d.log.Printf("[ERROR] Cannot link Todo %d to event %s: %s\n",
					tdo.ID,
					ev.Id,
					err.Error())
			}

			imported++
			d.emitToUser(u.ID, evTodoAdded, &tdo)
		}

		if imported > 0 {
			if err = db.UserIncTodoCount(u, imported); err != nil {
				d.log.Printf("[ERROR] Cannot update Todo count for User %q: %s\n",
					u.Email,
					err.Error())
			}
		}

		d.log.Printf("[INFO] Imported %d calendar events for User %q\n",
			imported,
			u.Email)

		response.ID = imported
		response.Message = fmt.Sprintf("Imported %d events", imported)
		response.Status = true
	}

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCalendarImport(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCalendarSettings(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		u        *objects.User
		msg      string
		cs       objects.CalendarSettings
		calID    string
		response = objects.Response{ID: d.getID()}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if err = r.ParseForm(); err != nil {
		msg = fmt.Sprintf("Cannot parse form data: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	cs = u.Calendar
	calID = u.Google.CalendarID

	if _, ok := r.PostForm["syncEvents"]; ok {
		cs.SyncEvents = r.PostFormValue("syncEvents") == "true"
	}
	if _, ok := r.PostForm["calendarId"]; ok {
		calID = r.PostFormValue("calendarId")
	}
	if leadstr := r.PostFormValue("leadMinutes"); leadstr != "" {
		var lead int64
		if lead, err = strconv.ParseInt(leadstr, 10, 32); err != nil || lead < 0 {
			response.Message = fmt.Sprintf("Invalid lead time %q", leadstr)
			goto SEND_RESPONSE
		}
		cs.DefaultLeadMinutes = int(lead)
	}

	if err = db.UserSetCalendarSettings(u, cs, calID); err != nil {
		msg = fmt.Sprintf("Cannot update calendar settings for User %q: %s",
			u.Email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.ID = u.ID
	response.Message = "OK"
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCalendarSettings(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCalendarDisconnect(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		u        *objects.User
		msg      string
		response = objects.Response{ID: d.getID()}
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if err = db.UserClearGoogleAuth(u); err != nil {
		msg = fmt.Sprintf("Cannot disconnect Google account for User %q: %s",
			u.Email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	d.log.Printf("[INFO] User %q disconnected their Google account\n",
		u.Email)

	response.ID = u.ID
	response.Message = "Calendar disconnected"
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCalendarDisconnect(w http.ResponseWriter, r *http.Request)
