// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/userweb.go
// -*- mode: go; coding: utf-8; -*-
// Created on 10. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-26 19:12:55 krylon>

package backend

import (
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"github.com/blicero/mnemosyne/auth"
	"github.com/blicero/mnemosyne/database"
	"github.com/blicero/mnemosyne/objects"
	"github.com/gorilla/mux"
)

func (d *Daemon) handleUserRegister(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err                   error
		db                    *database.Database
		name, email, password string
		hash, msg             string
		u                     objects.User
		cat                   objects.Category
		existing              *objects.User
		response              = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		msg = fmt.Sprintf("Cannot parse form data: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	name = strings.TrimSpace(r.PostFormValue("name"))
	email = strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password = r.PostFormValue("password")

	if name == "" || email == "" || password == "" {
		response.Message = "Name, email, and password are all required"
		goto SEND_RESPONSE
	}

	db = d.pool.Get()
	defer d.pool.Put(db)

	if existing, err = db.UserGetByEmail(email); err != nil {
		msg = fmt.Sprintf("Cannot look up email %q: %s",
			email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if existing != nil {
		response.Message = fmt.Sprintf("Email %q is already registered", email)
		goto SEND_RESPONSE
	} else if hash, err = auth.HashPassword(password); err != nil {
		msg = fmt.Sprintf("Cannot hash password: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	u.Name = name
	u.Email = email
	u.PasswordHash = hash

	// Every user starts out with a default category.
	if err = db.Begin(); err != nil {
		msg = fmt.Sprintf("Error starting transaction: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if err = db.UserAdd(&u); err != nil {
		msg = fmt.Sprintf("Cannot add User %q to database: %s",
			email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		db.Rollback() // nolint: errcheck
		goto SEND_RESPONSE
	}

	cat = objects.Category{
		UserID:    u.ID,
		Name:      objects.DefaultCategoryName,
		IsDefault: true,
	}

	if err = db.CategoryAdd(&cat); err != nil {
		msg = fmt.Sprintf("Cannot create default Category for User %q: %s",
			email,
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
	} else if response.Token, err = d.auth.Issue(&u); err != nil {
		msg = fmt.Sprintf("Cannot issue token for User %q: %s",
			email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	d.log.Printf("[INFO] User %q registered\n", email)

	response.ID = u.ID
	response.Message = "Welcome aboard"
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleUserRegister(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleUserLogin(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err             error
		db              *database.Database
		email, password string
		msg             string
		u               *objects.User
		response        = objects.Response{ID: d.getID()}
	)

	if err = r.ParseForm(); err != nil {
		msg = fmt.Sprintf("Cannot parse form data: %s", err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	email = strings.ToLower(strings.TrimSpace(r.PostFormValue("email")))
	password = r.PostFormValue("password")

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = db.UserGetByEmail(email); err != nil {
		msg = fmt.Sprintf("Cannot look up email %q: %s",
			email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if u == nil || !auth.CheckPassword(u.PasswordHash, password) {
		// Deliberately the same message for both cases.
		d.log.Printf("[INFO] Failed login attempt for %q from %s\n",
			email,
			r.RemoteAddr)
		response.Message = "Invalid credentials"
		goto SEND_RESPONSE
	} else if response.Token, err = d.auth.Issue(u); err != nil {
		msg = fmt.Sprintf("Cannot issue token for User %q: %s",
			email,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	d.log.Printf("[INFO] User %q logged in from %s\n",
		email,
		r.RemoteAddr)

	response.ID = u.ID
	response.Message = u.Name
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleUserLogin(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCategoryGetAll(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		u          *objects.User
		categories []objects.Category
	)

	db = d.pool.Get()
	defer d.pool.Put(db)

	if u, err = d.authUser(r, db); err != nil {
		d.sendAuthError(w, err)
		return
	} else if categories, err = db.CategoryGetByUser(u.ID); err != nil {
		d.log.Printf("[ERROR] Cannot load Categories for User %q: %s\n",
			u.Email,
			err.Error())
	}

	d.sendListJSON(w, categories)
} // func (d *Daemon) handleCategoryGetAll(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCategoryAdd(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err      error
		db       *database.Database
		u        *objects.User
		existing *objects.Category
		msg      string
		cat      objects.Category
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

	cat.UserID = u.ID
	cat.Name = strings.TrimSpace(r.PostFormValue("name"))
	cat.Color = r.PostFormValue("color")

	if cat.Name == "" {
		response.Message = "Name must not be empty"
		goto SEND_RESPONSE
	} else if existing, err = db.CategoryGetByName(u.ID, cat.Name); err != nil {
		msg = fmt.Sprintf("Cannot look up Category %q: %s",
			cat.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if existing != nil {
		response.Message = fmt.Sprintf("Category %q already exists", cat.Name)
		goto SEND_RESPONSE
	} else if err = db.CategoryAdd(&cat); err != nil {
		msg = fmt.Sprintf("Cannot add Category %q to database: %s",
			cat.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.ID = cat.ID
	response.Message = cat.Name
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCategoryAdd(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCategoryUpdate(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err         error
		db          *database.Database
		u           *objects.User
		cat         *objects.Category
		id          int64
		idstr, msg  string
		name, color string
		isDefault   bool
		response    = objects.Response{ID: d.getID()}
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
	} else if cat, err = db.CategoryGetByID(id); err != nil {
		msg = fmt.Sprintf("Failed to look up Category #%d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if cat == nil || cat.UserID != u.ID {
		msg = fmt.Sprintf("Category #%d was not found", id)
		d.log.Printf("[DEBUG] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	name = cat.Name
	color = cat.Color
	isDefault = cat.IsDefault

	if _, ok := r.PostForm["name"]; ok {
		name = strings.TrimSpace(r.PostFormValue("name"))
		if name == "" {
			response.Message = "Name must not be empty"
			goto SEND_RESPONSE
		}
	}
	if _, ok := r.PostForm["color"]; ok {
		color = r.PostFormValue("color")
	}
	if _, ok := r.PostForm["default"]; ok {
		isDefault = r.PostFormValue("default") == "true"
	}

	if err = db.CategoryUpdate(cat, name, color, isDefault); err != nil {
		msg = fmt.Sprintf("Failed to update Category %d (%q): %s",
			id,
			cat.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.ID = cat.ID
	response.Message = "OK"
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCategoryUpdate(w http.ResponseWriter, r *http.Request)

func (d *Daemon) handleCategoryDelete(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err        error
		db         *database.Database
		u          *objects.User
		cat        *objects.Category
		id, cnt    int64
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
	} else if cat, err = db.CategoryGetByID(id); err != nil {
		msg = fmt.Sprintf("Failed to look up Category #%d: %s",
			id,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if cat == nil || cat.UserID != u.ID {
		msg = fmt.Sprintf("Category #%d was not found", id)
		d.log.Printf("[DEBUG] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if cat.IsDefault {
		response.Message = "The default category cannot be deleted"
		goto SEND_RESPONSE
	} else if cnt, err = db.CategoryTodoCount(cat); err != nil {
		msg = fmt.Sprintf("Cannot count Todos in Category %q: %s",
			cat.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	} else if cnt > 0 {
		response.Message = fmt.Sprintf("Category %q still has %d todos",
			cat.Name,
			cnt)
		goto SEND_RESPONSE
	} else if err = db.CategoryDelete(cat); err != nil {
		msg = fmt.Sprintf("Failed to delete Category %d (%q): %s",
			id,
			cat.Name,
			err.Error())
		d.log.Printf("[ERROR] %s\n", msg)
		response.Message = msg
		goto SEND_RESPONSE
	}

	response.ID = cat.ID
	response.Message = fmt.Sprintf("Category %q was deleted", cat.Name)
	response.Status = true

SEND_RESPONSE:
	d.sendResponseJSON(w, &response)
} // func (d *Daemon) handleCategoryDelete(w http.ResponseWriter, r *http.Request)
