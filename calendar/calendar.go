// /home/krylon/go/src/github.com/blicero/mnemosyne/calendar/calendar.go
// -*- mode: go; coding: utf-8; -*-
// Created on 10. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 17:41:12 krylon>

// Package calendar talks to the Google Calendar API on behalf of users
// who have connected their Google account.
package calendar

import (
	"context"
	"fmt"
	"log"
	"os"
	"time"

	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/database"
	"github.com/blicero/mnemosyne/logdomain"
	"github.com/blicero/mnemosyne/objects"
	"golang.org/x/oauth2"
	"golang.org/x/oauth2/google"
	gcal "google.golang.org/api/calendar/v3"
	"google.golang.org/api/option"
)

// Names of the environment variables the Google OAuth credentials are
// read from.
const (
	EnvClientID     = "GOOGLE_CLIENT_ID"
	EnvClientSecret = "GOOGLE_CLIENT_SECRET"
	EnvRedirectURL  = "GOOGLE_REDIRECT_URL"
)

// ErrNotConfigured means the Google OAuth credentials are not set in
// the environment. The application runs fine without them, just
// without calendar sync.
var ErrNotConfigured = fmt.Errorf("%s, %s and %s must be set in the environment",
	EnvClientID,
	EnvClientSecret,
	EnvRedirectURL)

const eventDuration = time.Minute * 30

// Events we create carry a private marker so an import does not turn
// them back into Todos.
const eventTagKey = "mnemosyne"

// IsAppEvent reports whether the given event was created by this
// application.
func IsAppEvent(ev *gcal.Event) bool {
	return ev.ExtendedProperties != nil &&
		ev.ExtendedProperties.Private[eventTagKey] == "true"
} // func IsAppEvent(ev *gcal.Event) bool

// Client wraps the OAuth dance and the calls to the Calendar API.
type Client struct {
	log  *log.Logger
	conf *oauth2.Config
}

// New creates a Client, reading the OAuth credentials from the
// environment.
func New() (*Client, error) {
	var (
		err error
		c   = new(Client)

		id       = os.Getenv(EnvClientID)
		secret   = os.Getenv(EnvClientSecret)
		redirect = os.Getenv(EnvRedirectURL)
	)

	if id == "" || secret == "" || redirect == "" {
		return nil, ErrNotConfigured
	}

	c.conf = &oauth2.Config{
		ClientID:     id,
		ClientSecret: secret,
		RedirectURL:  redirect,
		Scopes: []string{
			gcal.CalendarEventsScope,
			"openid",
			"email",
		},
		Endpoint: google.Endpoint,
	}

	if c.log, err = common.GetLogger(logdomain.Calendar); err != nil {
		return nil, err
	}

	return c, nil
} // func New() (*Client, error)

// AuthURL returns the URL the user has to visit to grant access to
// their calendar.
func (c *Client) AuthURL(state string) string {
	return c.conf.AuthCodeURL(state,
		oauth2.AccessTypeOffline,
		oauth2.ApprovalForce)
} // func (c *Client) AuthURL(state string) string

// Exchange trades the authorization code from the OAuth callback for a
// token.
func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error) {
	var tok, err = c.conf.Exchange(ctx, code)
	if err != nil {
		c.log.Printf("[ERROR] Cannot exchange authorization code: %s\n",
			err.Error())
		return nil, err
	}

	return tok, nil
} // func (c *Client) Exchange(ctx context.Context, code string) (*oauth2.Token, error)

// service builds a Calendar API client for the given user. If the
// access token had to be refreshed along the way, the fresh token is
// written back to the database.
func (c *Client) service(ctx context.Context, db *database.Database, u *objects.User) (*gcal.Service, error) {
	var (
		err error
		svc *gcal.Service
		tok = &oauth2.Token{
			AccessToken:  u.Google.AccessToken,
			RefreshToken: u.Google.RefreshToken,
			Expiry:       u.Google.TokenExpiry,
		}
	)

	var src = c.conf.TokenSource(ctx, tok)

	var fresh *oauth2.Token
	if fresh, err = src.Token(); err != nil {
		c.log.Printf("[ERROR] Cannot get access token for User %q: %s\n",
			u.Email,
			err.Error())
		return nil, err
	} else if fresh.AccessToken != tok.AccessToken {
		var ga = u.Google
		ga.AccessToken = fresh.AccessToken
		if fresh.RefreshToken != "" {
			ga.RefreshToken = fresh.RefreshToken
		}
		ga.TokenExpiry = fresh.Expiry

		if err = db.UserSetGoogleAuth(u, u.GoogleID, ga); err != nil {
			c.log.Printf("[ERROR] Cannot store refreshed token for User %q: %s\n",
				u.Email,
				err.Error())
			return nil, err
		}
	}

	if svc, err = gcal.NewService(ctx, option.WithTokenSource(src)); err != nil {
		c.log.Printf("[ERROR] Cannot create Calendar service: %s\n",
			err.Error())
		return nil, err
	}

	return svc, nil
} // func (c *Client) service(...) (*gcal.Service, error)

// SyncTodo creates or updates the calendar event for the given Todo
// and records the outcome on the Todo itself.
func (c *Client) SyncTodo(ctx context.Context, db *database.Database, u *objects.User, t *objects.Todo) error {
	var (
		err error
		svc *gcal.Service
	)

	if !t.HasDue() {
		return nil
	} else if svc, err = c.service(ctx, db, u); err != nil {
		goto RECORD_FAILURE
	}

	{
		var (
			start = t.EffectiveDue()
			lead  = int64(t.Notification.LeadMinutes)
			ev    = &gcal.Event{
				Summary:     t.Title,
				Description: t.Description,
				Start: &gcal.EventDateTime{
					DateTime: start.Format(time.RFC3339),
				},
				End: &gcal.EventDateTime{
					DateTime: start.Add(eventDuration).Format(time.RFC3339),
				},
				Reminders: &gcal.EventReminders{
					UseDefault: false,
					Overrides: []*gcal.EventReminder{
						{Method: "popup", Minutes: lead},
					},
					ForceSendFields: []string{"UseDefault"},
				},
				ExtendedProperties: &gcal.EventExtendedProperties{
					Private: map[string]string{
						eventTagKey: "true",
					},
				},
			}
		)

		if t.CalendarEvent.EventID == "" {
			if ev, err = svc.Events.Insert(u.Google.CalendarID, ev).Context(ctx).Do(); err != nil {
				c.log.Printf("[ERROR] Cannot create event for Todo %d (%q): %s\n",
					t.ID,
					t.Title,
					err.Error())
				goto RECORD_FAILURE
			}
		} else if ev, err = svc.Events.Update(u.Google.CalendarID, t.CalendarEvent.EventID, ev).Context(ctx).Do(); err != nil {
			c.log.Printf("[ERROR] Cannot update event %s for Todo %d (%q): %s\n",
				t.CalendarEvent.EventID,
				t.ID,
				t.Title,
				err.Error())
			goto RECORD_FAILURE
		}

		return db.TodoSetCalendarEvent(t, objects.CalendarEventInfo{
			EventID:        ev.Id,
			Synced:         true,
			SyncedAt:       time.Now(),
			LastSyncStatus: "ok",
		})
	}

RECORD_FAILURE:
	var info = t.CalendarEvent
	info.Synced = false
	info.LastSyncStatus = "failed"
	info.SyncError = err.Error()

	if dbErr := db.TodoSetCalendarEvent(t, info); dbErr != nil {
		c.log.Printf("[ERROR] Cannot record sync failure on Todo %d: %s\n",
			t.ID,
			dbErr.Error())
	}

	return err
} // func (c *Client) SyncTodo(...) error

// RemoveEvent deletes the calendar event linked to the given Todo, if
// any, and clears the link.
func (c *Client) RemoveEvent(ctx context.Context, db *database.Database, u *objects.User, t *objects.Todo) error {
	var (
		err error
		svc *gcal.Service
	)

	if t.CalendarEvent.EventID == "" {
		return nil
	} else if svc, err = c.service(ctx, db, u); err != nil {
		return err
	} else if err = svc.Events.Delete(u.Google.CalendarID, t.CalendarEvent.EventID).Context(ctx).Do(); err != nil {
		c.log.Printf("[ERROR] Cannot delete event %s for Todo %d (%q): %s\n",
			t.CalendarEvent.EventID,
			t.ID,
			t.Title,
			err.Error())
		return err
	}

	return db.TodoClearCalendarEvent(t)
} // func (c *Client) RemoveEvent(...) error

// ListUpcoming returns the next few events from the user's calendar.
func (c *Client) ListUpcoming(ctx context.Context, db *database.Database, u *objects.User, maxResults int64) ([]*gcal.Event, error) {
	var (
		err  error
		svc  *gcal.Service
		list *gcal.Events
	)

	if svc, err = c.service(ctx, db, u); err != nil {
		return nil, err
	} else if list, err = svc.Events.List(u.Google.CalendarID).
		TimeMin(time.Now().Format(time.RFC3339)).
		MaxResults(maxResults).
		SingleEvents(true).
		OrderBy("startTime").
		Context(ctx).
		Do(); err != nil {
		c.log.Printf("[ERROR] Cannot list events for User %q: %s\n",
			u.Email,
			err.Error())
		return nil, err
	}

	return list.Items, nil
} // func (c *Client) ListUpcoming(...) ([]*gcal.Event, error)
