// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/web.go
// -*- mode: go; coding: utf-8; -*-
// Created on 09. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 17:52:30 krylon>

package backend

import (
	"context"
	"fmt"
	"io"
	"net/http"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/database"
	"github.com/blicero/mnemosyne/objects"
	"github.com/gorilla/mux"
	"github.com/pquerna/ffjson/ffjson"
)

const dueDateFormat = "2006-01-02"

func (d *Daemon) initWebHandlers() error {
	d.router.HandleFunc("/ws", d.handleSocket)

	d.router.HandleFunc("/user/register", d.handleUserRegister).Methods("POST")
	d.router.HandleFunc("/user/login", d.handleUserLogin).Methods("POST")

	d.router.HandleFunc("/todo/all", d.handleTodoGetAll)
	d.router.HandleFunc("/todo/upcoming", d.handleTodoGetUpcoming)
	d.router.HandleFunc("/todo/overdue", d.handleTodoGetOverdue)
	d.router.HandleFunc("/todo/add", d.handleTodoAdd).Methods("POST")
	d.router.HandleFunc("/todo/{id:(?:\\d+)}/update", d.handleTodoUpdate).Methods("POST")
	d.router.HandleFunc("/todo/{id:(?:\\d+)}/toggle", d.handleTodoToggle).Methods("POST")
	d.router.HandleFunc("/todo/{id:(?:\\d+)}/delete", d.handleTodoDelete).Methods("POST")
	d.router.HandleFunc("/todo/{id:(?:\\d+)}/attachment/add", d.handleAttachmentAdd).Methods("POST")
	d.router.HandleFunc("/attachment/{id:(?:\\d+)}", d.handleAttachmentGet)
	d.router.HandleFunc("/attachment/{id:(?:\\d+)}/delete", d.handleAttachmentDelete).Methods("POST")

	d.router.HandleFunc("/category/all", d.handleCategoryGetAll)
	d.router.HandleFunc("/category/add", d.handleCategoryAdd).Methods("POST")
	d.router.HandleFunc("/category/{id:(?:\\d+)}/update", d.handleCategoryUpdate).Methods("POST")
	d.router.HandleFunc("/category/{id:(?:\\d+)}/delete", d.handleCategoryDelete).Methods("POST")

	d.router.HandleFunc("/calendar/auth", d.handleCalendarAuth)
	d.router.HandleFunc("/calendar/callback", d.handleCalendarCallback)
	d.router.HandleFunc("/calendar/status", d.handleCalendarStatus)
	d.router.HandleFunc("/calendar/events", d.handleCalendarEvents)
	d.router.HandleFunc("/calendar/sync/all", d.handleCalendarSyncAll).Methods("POST")
	d.router.HandleFunc("/calendar/sync/{id:(?:\\d+)}", d.handleCalendarSync).Methods("POST")
	d.router.HandleFunc("/calendar/unsync/{id:(?:\\d+)}", d.handleCalendarUnsync).Methods("POST")
	d.router.HandleFunc("/calendar/import", d.handleCalendarImport).Methods("POST")
	d.router.HandleFunc("/calendar/settings", d.handleCalendarSettings).Methods("POST")
	d.router.HandleFunc("/calendar/disconnect", d.handleCalendarDisconnect).Methods("POST")

	return nil
} // func (d *Daemon) initWebHandlers() error

func (d *Daemon) serveHTTP() {
	var err error

	defer d.log.Println("[INFO] Web server is shutting down")

	d.log.Printf("[INFO] Web frontend is going online at %s\n", d.web.Addr)

	if err = d.web.ListenAndServe(); err != nil {
		if err != http.ErrServerClosed {
			d.log.Printf("[ERROR] ListenAndServe returned an error: %s\n",
				err.Error())
		} else {
			d.log.Println("[INFO] HTTP Server has shut down.")
		}
	}
} // func (d *Daemon) serveHTTP()

func (d *Daemon) handleTodoGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err   error
		db    *database.Database
		u     *objects.User
		todos []objects.Todo
		catID int64
	)

	if catstr := r.FormValue("category"); catstr != "" {
		if catID, err = strconv.ParseInt(catstr, 10, 64); err != nil {
			d.log.Printf("[DEBUG] Ignoring invalid category filter %q\n",
				catstr)
			catID = 0
		}
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if todos, err = db.TodoGetByUser(u.ID); err != nil {
		d.log.Printf("[ERROR] Cannot load Todos for User %q: %s\n",
			u.Email,
			err.Error())
	}

	if catID != 0 || r.FormValue("includeCompleted") == "false" {
		var filtered = make([]objects.Todo, 0, len(todos))
		var skipDone = r.FormValue("includeCompleted") == "false"

		for idx := range todos {
			if catID != 0 && todos[idx].CategoryID != catID {
				continue
			} else if skipDone && todos[idx].Completed {
				continue
			}
			filtered = append(filtered, todos[idx])
		}

		todos = filtered
	}

	d.sendListJSON(w, todos)
} // func (d *Daemon) handleTodoGetAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleTodoGetUpcoming(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err   error
		db    *database.Database
		u     *objects.User
		todos []objects.Todo
		days  int64 = 7
		now         = time.Now()
	)

	if daystr := r.FormValue("days"); daystr != "" {
		if days, err = strconv.ParseInt(daystr, 10, 32); err != nil || days < 1 {
			days = 7
		}
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if todos, err = db.TodoGetUpcoming(u.ID, now, now.AddDate(0, 0, int(days))); err != nil {
		d.log.Printf("[ERROR] Cannot load upcoming Todos for User %q: %s\n",
			u.Email,
			err.Error())
	}

	d.sendListJSON(w, todos)
} // func (d *Daemon) handleTodoGetUpcoming(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleTodoGetOverdue(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err   error
		db    *database.Database
		u     *objects.User
		todos []objects.Todo
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if todos, err = db.TodoGetOverdue(u.ID, time.Now()); err != nil {
		d.log.Printf("[ERROR] Cannot load overdue Todos for User %q: %s\n",
			u.Email,
			err.Error())
	}

	d.sendListJSON(w, todos)
} // func (d *Daemon) handleTodoGetOverdue(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleTodoAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		u        *objects.User
		cat      *objects.Category
		msg      string
		tdo      objects.Todo
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

	tdo.UserID = u.ID
	tdo.Title = r.PostFormValue("title")
	tdo.Description = r.PostFormValue("body")
	tdo.DueTime = r.PostFormValue("dueTime")
	tdo.Priority = objects.Priority(r.PostFormValue("priority"))
	tdo.Notification.Enabled = r.PostFormValue("notify") != "false"
	tdo.Notification.LeadMinutes = objects.DefaultLeadMinutes

	if tdo.Title == "" {
		response.Message = "Title must not be empty"
		goto SEND_RESPONSE
	}

	if leadstr := r.PostFormValue("leadMinutes"); leadstr != "" {
		var lead int64
		if lead, err = strconv.ParseInt(leadstr, 10, 32); err != nil || lead < 0 {
			msg = fmt.Sprintf("Invalid lead time %q", leadstr)
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}
		tdo.Notification.LeadMinutes = int(lead)
	}

	if duestr := r.PostFormValue("due"); duestr != "" {
		var due time.Time
		if due, err = parseDueDate(duestr); err != nil {
			msg = fmt.Sprintf("Cannot parse due date %q: %s",
				duestr,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}
		tdo.DueDate = &due
	}

	if catstr := r.PostFormValue("category"); catstr != "" {
		var catID int64
		if catID, err = strconv.ParseInt(catstr, 10, 64); err != nil {
			msg = fmt.Sprintf("Cannot parse category ID %q: %s",
				catstr,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		} else if cat, err = db.CategoryGetByID(catID); err != nil {
			msg = fmt.Sprintf("Cannot look up Category %d: %s",
				catID,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}
	} else if cat, err = db.CategoryGetDefault(u.ID); err != nil {
		msg = fmt.Sprintf("Cannot look up default Category: %s",
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	if cat == nil || cat.UserID != u.ID {
		response.Message = "No such category"
		goto SEND_RESPONSE
	}

	tdo.CategoryID = cat.ID

	if err = db.Begin(); err != nil {
		msg = fmt.Sprintf("Error starting transaction: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if err = db.TodoAdd(&tdo); err != nil {
		msg = fmt.Sprintf("Cannot add Todo %q to database: %s",
			tdo.Title,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		db.Rollback() // nolint: errcheck
		goto SEND_RESPONSE
	} else if err = db.UserIncTodoCount(u, 1); err != nil {
		msg = fmt.Sprintf("Cannot update Todo count for User %q: %s",
			u.Email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		db.Rollback() // nolint: errcheck
		goto SEND_RESPONSE
	} else if err = db.Commit(); err != nil {
		msg = fmt.Sprintf("Error committing transaction: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.ID = tdo.ID
	response.Message = tdo.UUID
	response.Status = true

	d.emitToUser(u.ID, evTodoAdded, &tdo)
	d.syncInBackground(u, &tdo)

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleTodoAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleTodoUpdate(w http.ResponseWriter, r *http.Request) {
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
		dueDirty   bool
		txOpen     bool
		txStatus   bool
		response   = objects.Response{ID: d.getID()}
	)

	idstr = mux.Vars(r)["id"]

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
	} else if err = db.Begin(); err != nil {
		msg = fmt.Sprintf("Error starting transaction: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	txOpen = true

	if _, ok := r.PostForm["title"]; ok {
		var title = r.PostFormValue("title")
		if title != tdo.Title {
			if err = db.TodoSetTitle(tdo, title); err != nil {
				msg = fmt.Sprintf("Failed to update Title of Todo %d: %s",
					id,
					err.Error())
				d.log.Printf("[ERROR] %s\n", msg)
				response.Message = msg
				goto SEND_RESPONSE
			}
		}
	}

	if _, ok := r.PostForm["body"]; ok {
		var body = r.PostFormValue("body")
		if body != tdo.Description {
			if err = db.TodoSetDescription(tdo, body); err != nil {
				msg = fmt.Sprintf("Failed to update Description of Todo %d: %s",
					id,
					err.Error())
				d.log.Printf("[ERROR] %s\n", msg)
				response.Message = msg
				goto SEND_RESPONSE
			}
		}
	}

	if _, ok := r.PostForm["category"]; ok {
		var (
			catID int64
			cat   *objects.Category
		)

		if catID, err = strconv.ParseInt(r.PostFormValue("category"), 10, 64); err != nil {
			msg = fmt.Sprintf("Cannot parse category ID %q: %s",
				r.PostFormValue("category"),
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		} else if cat, err = db.CategoryGetByID(catID); err != nil || cat == nil || cat.UserID != u.ID {
			msg = fmt.Sprintf("No such category: %d", catID)
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		} else if catID != tdo.CategoryID {
			if err = db.TodoSetCategory(tdo, catID); err != nil {
				msg = fmt.Sprintf("Failed to move Todo %d to Category %d: %s",
					id,
					catID,
					err.Error())
				d.log.Printf("[ERROR] %s\n", msg)
				response.Message = msg
				goto SEND_RESPONSE
			}
		}
	}

	if _, ok := r.PostForm["priority"]; ok {
		var prio = objects.Priority(r.PostFormValue("priority"))
		if prio != tdo.Priority {
			if err = db.TodoSetPriority(tdo, prio); err != nil {
				msg = fmt.Sprintf("Failed to update Priority of Todo %d: %s",
					id,
					err.Error())
				d.log.Printf("[ERROR] %s\n", msg)
				response.Message = msg
				goto SEND_RESPONSE
			}
		}
	}

	if _, ok := r.PostForm["status"]; ok {
		var status = objects.Status(r.PostFormValue("status"))
		if status != tdo.Status {
			if err = db.TodoSetStatus(tdo, status); err != nil {
				msg = fmt.Sprintf("Failed to update Status of Todo %d: %s",
					id,
					err.Error())
				d.log.Printf("[ERROR] %s\n", msg)
				response.Message = msg
				goto SEND_RESPONSE
			}
		}
	}

	if _, ok := r.PostForm["notify"]; ok {
		var ns = objects.NotificationSettings{
			Enabled:     r.PostFormValue("notify") != "false",
			LeadMinutes: tdo.Notification.LeadMinutes,
		}

		if leadstr := r.PostFormValue("leadMinutes"); leadstr != "" {
			var lead int64
			if lead, err = strconv.ParseInt(leadstr, 10, 32); err != nil || lead < 0 {
				msg = fmt.Sprintf("Invalid lead time %q", leadstr)
				d.log.Printf("[ERROR] %s\n", msg)
				response.Message = msg
				goto SEND_RESPONSE
			}
			ns.LeadMinutes = int(lead)
		}

		if ns != tdo.Notification {
			if err = db.TodoSetNotification(tdo, ns); err != nil {
				msg = fmt.Sprintf("Failed to update notification settings of Todo %d: %s",
					id,
					err.Error())
				d.log.Printf("[ERROR] %s\n", msg)
				response.Message = msg
				goto SEND_RESPONSE
			}
		}
	}

	// A partial update may carry the date, the time of day, or both;
	// whichever half is absent keeps its stored value.
	{
		var (
			_, hasDate = r.PostForm["due"]
			_, hasTime = r.PostForm["dueTime"]
		)

		if hasDate || hasTime {
			var (
				due     = tdo.DueDate
				timestr = tdo.DueTime
			)

			if hasDate {
				var duestr = r.PostFormValue("due")
				if duestr == "" {
					due = nil
				} else {
					var stamp time.Time
					if stamp, err = parseDueDate(duestr); err != nil {
						msg = fmt.Sprintf("Cannot parse due date %q: %s",
							duestr,
							err.Error())
						d.log.Printf("[ERROR] %s\n", msg)
						response.Message = msg
						goto SEND_RESPONSE
					}
					due = &stamp
				}
			}

			if hasTime {
				timestr = r.PostFormValue("dueTime")
			}

			var changed = timestr != tdo.DueTime
			if due == nil || tdo.DueDate == nil {
				changed = changed || due != tdo.DueDate
			} else {
				changed = changed || durAbs(due.Sub(*tdo.DueDate)) > time.Minute
			}

			if changed {
				if err = db.TodoSetDue(tdo, due, timestr); err != nil {
					msg = fmt.Sprintf("Failed to update due date of Todo %d: %s",
						id,
						err.Error())
					d.log.Printf("[ERROR] %s\n", msg)
					response.Message = msg
					goto SEND_RESPONSE
				}
				dueDirty = true
			}
		}
	}

	response.ID = tdo.ID
	response.Status = true
	response.Message = "OK"
	txStatus = true

SEND_RESPONSE:
	if txStatus {
		if err = db.Commit(); err != nil {
			msg = fmt.Sprintf("Error committing transaction: %s",
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			response.Status = false
		} else {
			// A rescheduled Todo may remind again right away.
			if dueDirty {
				d.suppress.Invalidate(tdo.ID)
				d.requestScan()
			}

			d.emitToUser(u.ID, evTodoUpdated, tdo)
			d.syncInBackground(u, tdo)
		}
	} else if txOpen {
		if db.Rollback() != nil {
			d.log.Println("[ERROR] Failed to rollback transaction")
		}
	}

	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleTodoUpdate(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleTodoToggle(w http.ResponseWriter, r *http.Request) {
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
	}

	{
		var status = objects.StatusDone
		if tdo.Completed {
			status = objects.StatusPending
		}

		if err = db.TodoSetCompleted(tdo, !tdo.Completed, status); err != nil {
			msg = fmt.Sprintf("Failed to toggle Todo %d (%q): %s",
				id,
				tdo.Title,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}
	}

	response.ID = tdo.ID
	response.Message = string(tdo.Status)
	response.Status = true

	d.emitToUser(u.ID, evTodoUpdated, tdo)

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleTodoToggle(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleTodoDelete(w http.ResponseWriter, r *http.Request) {
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
	}

	if d.cal != nil && u.HasValidGoogleAuth() && tdo.CalendarEvent.EventID != "" {
		if err = d.cal.RemoveEvent(r.Context(), db, u, tdo); err != nil {
			// Not fatal, the event just lingers in the calendar.
			d.log.Printf("[ERROR] Cannot remove calendar event for Todo %d: %s\n",
				id,
				err.Error())
			err = nil
		}
	}

	for idx := range tdo.Attachments {
		var path = filepath.Join(common.SpoolDir, tdo.Attachments[idx].Filename)
		if rmErr := os.Remove(path); rmErr != nil && !os.IsNotExist(rmErr) {
			d.log.Printf("[ERROR] Cannot remove attachment file %s: %s\n",
				path,
				rmErr.Error())
		}
	}

	if err = db.Begin(); err != nil {
		msg = fmt.Sprintf("Error starting transaction: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if err = db.TodoDelete(tdo); err != nil {
		msg = fmt.Sprintf("Failed to delete Todo %d (%q): %s",
			id,
			tdo.Title,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		db.Rollback() // nolint: errcheck
		goto SEND_RESPONSE
	} else if err = db.UserIncTodoCount(u, -1); err != nil {
		msg = fmt.Sprintf("Cannot update Todo count for User %q: %s",
			u.Email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		db.Rollback() // nolint: errcheck
		goto SEND_RESPONSE
	} else if err = db.Commit(); err != nil {
		msg = fmt.Sprintf("Error committing transaction: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	d.suppress.Invalidate(tdo.ID)

	response.ID = tdo.ID
	response.Message = fmt.Sprintf("Todo %d (%q) was deleted",
		id,
		tdo.Title)
	response.Status = true

	d.emitToUser(u.ID, evTodoDeleted, map[string]int64{"id": tdo.ID})

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleTodoDelete(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAttachmentAdd(w http.ResponseWriter, r *http.Request) {
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
		att        objects.Attachment
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
	} else if err = r.ParseMultipartForm(maxAttachmentSize); err != nil {
		msg = fmt.Sprintf("Cannot parse upload: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	{
		var (
			file     io.ReadCloser
			header   = r.MultipartForm.File["file"]
			dst      *os.File
			mimeType string
			written  int64
		)

		if len(header) == 0 {
			response.Message = "No file in upload"
			goto SEND_RESPONSE
		}

		mimeType = header[0].Header.Get("Content-Type")

		if header[0].Size > maxAttachmentSize {
			response.Message = fmt.Sprintf("File is too large (%d bytes)",
				header[0].Size)
			goto SEND_RESPONSE
		} else if !allowedMimeTypes[mimeType] {
			response.Message = fmt.Sprintf("File type %q is not allowed",
				mimeType)
			goto SEND_RESPONSE
		} else if file, err = header[0].Open(); err != nil {
			msg = fmt.Sprintf("Cannot open uploaded file: %s", err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		}

		defer file.Close() // nolint: errcheck

		att.TodoID = tdo.ID
		att.OriginalName = header[0].Filename
		att.MimeType = mimeType
		att.Filename = fmt.Sprintf("%s%s",
			common.GetUUID(),
			filepath.Ext(header[0].Filename))

		var path = filepath.Join(common.SpoolDir, att.Filename)

		if dst, err = os.Create(path); err != nil {
			msg = fmt.Sprintf("Cannot create spool file %s: %s",
				path,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			goto SEND_RESPONSE
		} else if written, err = io.Copy(dst, file); err != nil {
			msg = fmt.Sprintf("Cannot store upload in %s: %s",
				path,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			dst.Close()     // nolint: errcheck
			os.Remove(path) // nolint: errcheck
			goto SEND_RESPONSE
		} else if err = dst.Close(); err != nil {
			msg = fmt.Sprintf("Cannot close spool file %s: %s",
				path,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			os.Remove(path) // nolint: errcheck
			goto SEND_RESPONSE
		}

		att.Size = written

		if err = db.AttachmentAdd(&att); err != nil {
			msg = fmt.Sprintf("Cannot add Attachment %q to database: %s",
				att.OriginalName,
				err.Error())
			d.log.Printf("[ERROR] %s\n", msg)
			response.Message = msg
			os.Remove(path) // nolint: errcheck
			goto SEND_RESPONSE
		}
	}

	db.TodoSetChanged(tdo, time.Now()) // nolint: errcheck

	response.ID = att.ID
	response.Message = att.Filename
	response.Status = true

	d.emitToUser(u.ID, evTodoUpdated, tdo)

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleAttachmentAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAttachmentGet(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err   error
		db    *database.Database
		u     *objects.User
		att   *objects.Attachment
		tdo   *objects.Todo
		id    int64
		idstr = mux.Vars(r)["id"]
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if id, err = strconv.ParseInt(idstr, 10, 64); err != nil {
		d.log.Printf("[CANTHAPPEN] Cannot parse ID %q: %s\n",
			idstr,
			err.Error())
		http.Error(w, "Invalid ID", http.StatusBadRequest)
		return
	} else if att, err = db.AttachmentGetByID(id); err != nil {
		d.log.Printf("[ERROR] Failed to look up Attachment #%d: %s\n",
			id,
			err.Error())
		http.Error(w, "Database error", http.StatusInternalServerError)
		return
	} else if att == nil {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	} else if tdo, err = db.TodoGetByID(att.TodoID); err != nil || tdo == nil || tdo.UserID != u.ID {
		http.Error(w, "Not found", http.StatusNotFound)
		return
	}

	w.Header().Set("Content-Type", att.MimeType)
	w.Header().Set("Content-Disposition",
		fmt.Sprintf("attachment; filename=%q", att.OriginalName))

	http.ServeFile(w, r, filepath.Join(common.SpoolDir, att.Filename))
} // func (d *Daemon) handleAttachmentGet(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleAttachmentDelete(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		u          *objects.User
		att        *objects.Attachment
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
	} else if att, err = db.AttachmentGetByID(id); err != nil {
		msg = fmt.Sprintf("Failed to look up Attachment #%d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if att == nil {
		msg = fmt.Sprintf("Attachment #%d was not found", id)
		d.log.Printf("[DEBUG] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if tdo, err = db.TodoGetByID(att.TodoID); err != nil || tdo == nil || tdo.UserID != u.ID {
		msg = fmt.Sprintf("Attachment #%d was not found", id)
		d.log.Printf("[DEBUG] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if err = db.AttachmentDelete(att); err != nil {
		msg = fmt.Sprintf("Failed to delete Attachment %d (%q): %s",
			id,
			att.OriginalName,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	if rmErr := os.Remove(filepath.Join(common.SpoolDir, att.Filename)); rmErr != nil && !os.IsNotExist(rmErr) {
		d.log.Printf("[ERROR] Cannot remove attachment file %s: %s\n",
			att.Filename,
			rmErr.Error())
	}

	response.ID = att.ID
	response.Message = fmt.Sprintf("Attachment %q was deleted", att.OriginalName)
	response.Status = true

	d.emitToUser(u.ID, evTodoUpdated, tdo)

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleAttachmentDelete(w http.ResponseWriter, r *http.Request)

//////////////////////////////////////////////////////////////////////////////////////////////////
/// Helpers //////////////////////////////////////////////////////////////////////////////////////
//////////////////////////////////////////////////////////////////////////////////////////////////

// syncInBackground pushes the Todo to the user's Google Calendar
// without making the web request wait for it.
func (d *Daemon) syncInBackground(u *objects.User, t *objects.Todo) {
	if d.cal == nil || !u.HasValidGoogleAuth() || !u.Calendar.SyncEvents || !t.HasDue() {
		return
	}

	var (
		usr = *u
		tdo = *t
	)

	go func() {
		var db = d.pool.Get()
		defer d.pool.Put(db)

		if err := d.cal.SyncTodo(context.Background(), db, &usr, &tdo); err != nil {
			d.log.Printf("[ERROR] Cannot sync Todo %d (%q) to calendar: %s\n",
				tdo.ID,
				tdo.Title,
				err.Error())
		}
	}()
} // func (d *Daemon) syncInBackground(u *objects.User, t *objects.Todo)

func parseDueDate(s string) (time.Time, error) {
	var stamp, err = time.Parse(dueDateFormat, s)
	if err != nil {
		stamp, err = time.Parse(time.RFC3339, s)
	}

	return stamp, err
} // func parseDueDate(s string) (time.Time, error)

func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(res); err != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object %#v: %s\n",
			res,
			err.Error())
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendResponseJSON(w http.ResponseWriter, res *objects.Response)

func (d *Daemon) sendListJSON(w http.ResponseWriter, list interface{}) {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(list); err != nil {
		d.log.Printf("[ERROR] Cannot serialize list: %s\n",
			err.Error())
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(200)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendListJSON(w http.ResponseWriter, list interface{})

func (d *Daemon) sendAuthError(w http.ResponseWriter, err error) {
	d.log.Printf("[DEBUG] Request was not authenticated: %s\n",
		err.Error())

	var res = objects.Response{
		ID:      d.getID(),
		Message: "Not authenticated",
	}

	var buf, mErr = ffjson.Marshal(&res)
	if mErr != nil {
		d.log.Printf("[ERROR] Cannot serialize Response object: %s\n",
			mErr.Error())
		return
	}

	defer ffjson.Pool(buf)

	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusUnauthorized)
	w.Write(buf) // nolint: errcheck
} // func (d *Daemon) sendAuthError(w http.ResponseWriter, err error)
