// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/socket.go
// -*- mode: go; coding: utf-8; -*-
// Created on 08. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-24 18:55:38 krylon>

package backend

import (
	"encoding/json"
	"errors"
	"net/http"
	"sync"

	"github.com/blicero/mnemosyne/auth"
	"github.com/blicero/mnemosyne/backend/sockstate"
	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/objects"
	"github.com/gorilla/websocket"
	"github.com/pquerna/ffjson/ffjson"
)

// Events exchanged over the websocket.
const (
	evAuthenticate  = "authenticate"
	evAuthenticated = "authenticated"
	evError         = "error"
	evNotification  = "notification"
	evTodoAdded     = "todoAdded"
	evTodoUpdated   = "todoUpdated"
	evTodoDeleted   = "todoDeleted"
)

// sockMsgIn is an incoming websocket message. The payload is decoded
// per event.
type sockMsgIn struct {
	Event   string          `json:"event"`
	Payload json.RawMessage `json:"payload"`
}

// sockMsgOut is an outgoing websocket message.
type sockMsgOut struct {
	Event   string      `json:"event"`
	Payload interface{} `json:"payload,omitempty"`
}

// session is one websocket connection, authenticated or not.
type session struct {
	id     string
	conn   *websocket.Conn
	state  sockstate.ID
	userID int64
	wlock  sync.Mutex
}

func (s *session) emit(event string, payload interface{}) error {
	var (
		err error
		buf []byte
	)

	if buf, err = ffjson.Marshal(&sockMsgOut{Event: event, Payload: payload}); err != nil {
		return err
	}

	defer ffjson.Pool(buf)

	s.wlock.Lock()
	defer s.wlock.Unlock()

	return s.conn.WriteMessage(websocket.TextMessage, buf)
} // func (s *session) emit(event string, payload interface{}) error

func (d *Daemon) handleSocket(w http.ResponseWriter, r *http.Request) {
	d.log.Printf("[TRACE] Handle %s from %s\n",
		r.URL,
		r.RemoteAddr)

	var (
		err  error
		conn *websocket.Conn
	)

	if conn, err = d.upgrader.Upgrade(w, r, nil); err != nil {
		d.log.Printf("[ERROR] Cannot upgrade connection from %s: %s\n",
			r.RemoteAddr,
			err.Error())
		return
	}

	var sess = &session{
		id:   common.GetUUID(),
		conn: conn,
	}

	d.sLock.Lock()
	d.sessions[sess.id] = sess
	d.sLock.Unlock()

	d.log.Printf("[DEBUG] Session %s connected from %s\n",
		sess.id,
		r.RemoteAddr)

	d.socketReadLoop(sess)
} // func (d *Daemon) handleSocket(w http.ResponseWriter, r *http.Request)

func (d *Daemon) socketReadLoop(sess *session) {
	defer d.closeSession(sess)

	for d.IsAlive() {
		var (
			err error
			raw []byte
			msg sockMsgIn
		)

		if _, raw, err = sess.conn.ReadMessage(); err != nil {
			if websocket.IsUnexpectedCloseError(err,
				websocket.CloseNormalClosure,
				websocket.CloseGoingAway) {
				d.log.Printf("[DEBUG] Session %s read error: %s\n",
					sess.id,
					err.Error())
			}
			return
		} else if err = ffjson.Unmarshal(raw, &msg); err != nil {
			d.log.Printf("[DEBUG] Session %s sent garbage: %s\n",
				sess.id,
				err.Error())
			sess.emit(evError, map[string]string{"message": "Cannot parse message"}) // nolint: errcheck
			continue
		}

		switch msg.Event {
		case evAuthenticate:
			d.handleAuthenticate(sess, msg.Payload)
		default:
			d.log.Printf("[DEBUG] Session %s sent unknown event %q\n",
				sess.id,
				msg.Event)
		}
	}
} // func (d *Daemon) socketReadLoop(sess *session)

// handleAuthenticate processes the token a freshly connected client
// presents. A failed attempt gets an error event, but the connection
// stays open so the client can retry, e.g. after refreshing its token.
func (d *Daemon) handleAuthenticate(sess *session, payload json.RawMessage) {
	var (
		err    error
		token  string
		userID int64
	)

	if err = ffjson.Unmarshal(payload, &token); err != nil {
		// Be lenient, some clients send the token without
		// quoting it.
		token = string(payload)
	}

	if userID, err = d.auth.Verify(token); err != nil {
		var msg = "Authentication failed"
		if errors.Is(err, auth.ErrNoSubject) {
			msg = "Invalid token format"
		}

		d.log.Printf("[INFO] Session %s failed to authenticate: %s\n",
			sess.id,
			err.Error())
		sess.emit(evError, map[string]string{"message": msg}) // nolint: errcheck
		return
	}

	var displaced = d.registry.Register(userID, sess.id)
	if displaced != "" {
		d.log.Printf("[DEBUG] Session %s displaces %s for user %d\n",
			sess.id,
			displaced,
			userID)

		d.sLock.Lock()
		var old = d.sessions[displaced]
		delete(d.sessions, displaced)
		d.sLock.Unlock()

		if old != nil {
			old.state = sockstate.Closed
			old.conn.Close() // nolint: errcheck
		}
	}

	sess.userID = userID
	sess.state = sockstate.Authenticated

	d.log.Printf("[INFO] Session %s authenticated as user %d\n",
		sess.id,
		userID)

	if err = sess.emit(evAuthenticated, map[string]int64{"userId": userID}); err != nil {
		d.log.Printf("[ERROR] Cannot confirm authentication to session %s: %s\n",
			sess.id,
			err.Error())
		return
	}

	// The user may have missed reminders while offline, so check
	// right away.
	d.requestScan()
} // func (d *Daemon) handleAuthenticate(sess *session, payload json.RawMessage)

func (d *Daemon) closeSession(sess *session) {
	if userID, ok := d.registry.Drop(sess.id); ok {
		d.log.Printf("[DEBUG] User %d disconnected (session %s)\n",
			userID,
			sess.id)
	}

	d.sLock.Lock()
	delete(d.sessions, sess.id)
	d.sLock.Unlock()

	sess.state = sockstate.Closed
	sess.conn.Close() // nolint: errcheck
} // func (d *Daemon) closeSession(sess *session)

// Deliver sends a notification to the given user if they have an
// authenticated session. It returns true on successful delivery.
func (d *Daemon) Deliver(userID int64, n *objects.NotificationMessage) bool {
	return d.emitToUser(userID, evNotification, n)
} // func (d *Daemon) Deliver(userID int64, n *objects.NotificationMessage) bool

// emitToUser sends an event to the given user's session, if any.
func (d *Daemon) emitToUser(userID int64, event string, payload interface{}) bool {
	var (
		connID string
		ok     bool
		sess   *session
	)

	if connID, ok = d.registry.LookupUser(userID); !ok {
		return false
	}

	d.sLock.RLock()
	sess = d.sessions[connID]
	d.sLock.RUnlock()

	if sess == nil || sess.state != sockstate.Authenticated {
		return false
	}

	if err := sess.emit(event, payload); err != nil {
		d.log.Printf("[ERROR] Cannot send %s event to user %d: %s\n",
			event,
			userID,
			err.Error())
		return false
	}

	return true
} // func (d *Daemon) emitToUser(userID int64, event string, payload interface{}) bool
