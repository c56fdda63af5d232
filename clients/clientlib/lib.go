// /home/krylon/go/src/github.com/blicero/mnemosyne/clients/clientlib/lib.go
// -*- mode: go; coding: utf-8; -*-
// Created on 11. 08. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 17:10:47 krylon>

// Package clientlib provides the basic framework for building clients
// that talk to the Mnemosyne backend over its REST interface.
package clientlib

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"os"
	"strconv"
	"strings"
	"time"

	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/logdomain"
	"github.com/blicero/mnemosyne/objects"
	"github.com/pquerna/ffjson/ffjson"
)

const (
	loginPath    = "/user/login"
	registerPath = "/user/register"
	todoAddPath  = "/todo/add"
	todoAllPath  = "/todo/all"
)

// Client is the basic implementation of a Mnemosyne client,
// it implements the fundamental communication with the Server.
type Client struct {
	Server *url.URL
	Client http.Client
	token  string
	log    *log.Logger
}

// NewClient creates a new Client.
func NewClient(srv string) (*Client, error) {
	var (
		err error
		c   = &Client{
			Client: http.Client{
				Timeout: time.Second * 10,
			},
		}
	)

	if c.log, err = common.GetLogger(logdomain.Client); err != nil {
		fmt.Fprintf(
			os.Stderr,
			"Cannot create Logger: %s\n",
			err.Error())
		return nil, err
	} else if c.Server, err = url.Parse(srv); err != nil {
		c.log.Printf("[ERROR] Cannot parse URL %q: %s\n",
			srv,
			err.Error())
		return nil, err
	}

	c.Server.Scheme = "http"

	return c, nil
} // func NewClient(srv string) (*Client, error)

// GetLogger returns the Client's Logger.
func (c *Client) GetLogger() *log.Logger {
	return c.log
} // func (c *Client) GetLogger() *log.Logger

// Token returns the authentication token obtained by Login or
// Register, or the empty string if the Client is not authenticated.
func (c *Client) Token() string {
	return c.token
} // func (c *Client) Token() string

func (c *Client) endpoint(path string) string {
	var u = *c.Server
	u.Path = path
	return u.String()
} // func (c *Client) endpoint(path string) string

func (c *Client) decodeResponse(hres *http.Response) (*objects.Response, error) {
	var (
		err    error
		rcvBuf bytes.Buffer
		ores   objects.Response
	)

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		var msg = fmt.Sprintf("Unexpected status from %s: %s",
			c.Server,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return nil, errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Response body from %s: %s\n",
			c.Server,
			err.Error())
		return nil, err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), &ores); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Response from %s: %s\n",
			c.Server,
			err.Error())
		return nil, err
	} else if !ores.Status {
		err = fmt.Errorf("Request to %s failed: %s",
			c.Server,
			ores.Message)
		c.log.Printf("[ERROR] %s\n",
			err.Error())
		return nil, err
	}

	return &ores, nil
} // func (c *Client) decodeResponse(hres *http.Response) (*objects.Response, error)

func (c *Client) credentialRequest(path string, values url.Values) error {
	var (
		err  error
		hres *http.Response
		ores *objects.Response
	)

	if hres, err = c.Client.PostForm(c.endpoint(path), values); err != nil {
		c.log.Printf("[ERROR] Failed to POST credentials to %s: %s\n",
			c.Server,
			err.Error())
		return err
	} else if ores, err = c.decodeResponse(hres); err != nil {
		return err
	} else if ores.Token == "" {
		err = fmt.Errorf("No token in Response from %s", c.Server)
		c.log.Printf("[ERROR] %s\n", err.Error())
		return err
	}

	c.token = ores.Token
	return nil
} // func (c *Client) credentialRequest(path string, values url.Values) error

// Register creates a new account on the backend and stores the
// returned authentication token in the Client.
func (c *Client) Register(name, email, password string) error {
	var values = url.Values{
		"name":     []string{name},
		"email":    []string{email},
		"password": []string{password},
	}
	return c.credentialRequest(registerPath, values)
} // func (c *Client) Register(name, email, password string) error

// Login authenticates against the backend and stores the returned
// authentication token in the Client.
func (c *Client) Login(email, password string) error {
	var values = url.Values{
		"email":    []string{email},
		"password": []string{password},
	}
	return c.credentialRequest(loginPath, values)
} // func (c *Client) Login(email, password string) error

// SubmitTodo creates a new Todo on the backend. The Todo's ID and
// UUID are filled in from the backend's Response.
func (c *Client) SubmitTodo(t *objects.Todo) error {
	var (
		err    error
		req    *http.Request
		hres   *http.Response
		ores   *objects.Response
		values = make(url.Values)
	)

	if c.token == "" {
		return errors.New("Client is not authenticated")
	}

	values["title"] = []string{t.Title}
	values["body"] = []string{t.Description}
	values["priority"] = []string{string(t.Priority)}

	if !t.Notification.Enabled {
		values["notify"] = []string{"false"}
	} else if t.Notification.LeadMinutes > 0 {
		values["leadMinutes"] = []string{strconv.Itoa(t.Notification.LeadMinutes)}
	}

	if t.DueDate != nil {
		values["due"] = []string{t.DueDate.Format("2006-01-02")}
		if t.DueTime != "" {
			values["dueTime"] = []string{t.DueTime}
		}
	}

	if t.CategoryID != 0 {
		values["category"] = []string{strconv.FormatInt(t.CategoryID, 10)}
	}

	if req, err = http.NewRequest(
		http.MethodPost,
		c.endpoint(todoAddPath),
		strings.NewReader(values.Encode())); err != nil {
		c.log.Printf("[ERROR] Cannot create request for %s: %s\n",
			c.Server,
			err.Error())
		return err
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+c.token)

	if hres, err = c.Client.Do(req); err != nil {
		c.log.Printf("[ERROR] Failed to POST Todo to %s: %s\n",
			c.Server,
			err.Error())
		return err
	} else if ores, err = c.decodeResponse(hres); err != nil {
		return err
	}

	t.ID = ores.ID
	t.UUID = ores.Message

	c.log.Printf("[DEBUG] Submitted Todo %d (%s) to %s\n",
		t.ID,
		t.UUID,
		c.Server)

	return nil
} // func (c *Client) SubmitTodo(t *objects.Todo) error

// FetchTodos retrieves all of the authenticated user's Todos from the
// backend.
func (c *Client) FetchTodos() ([]objects.Todo, error) {
	var (
		err    error
		req    *http.Request
		hres   *http.Response
		rcvBuf bytes.Buffer
		todos  []objects.Todo
	)

	if c.token == "" {
		return nil, errors.New("Client is not authenticated")
	}

	if req, err = http.NewRequest(http.MethodGet, c.endpoint(todoAllPath), nil); err != nil {
		c.log.Printf("[ERROR] Cannot create request for %s: %s\n",
			c.Server,
			err.Error())
		return nil, err
	}

	req.Header.Set("Authorization", "Bearer "+c.token)

	if hres, err = c.Client.Do(req); err != nil {
		c.log.Printf("[ERROR] Failed to GET Todos from %s: %s\n",
			c.Server,
			err.Error())
		return nil, err
	}

	defer hres.Body.Close() // nolint: errcheck

	if hres.StatusCode != http.StatusOK {
		var msg = fmt.Sprintf("Unexpected status from %s: %s",
			c.Server,
			hres.Status)
		c.log.Printf("[ERROR] %s\n", msg)
		return nil, errors.New(msg)
	} else if _, err = io.Copy(&rcvBuf, hres.Body); err != nil {
		c.log.Printf("[ERROR] Failed to read Todo list from %s: %s\n",
			c.Server,
			err.Error())
		return nil, err
	} else if err = ffjson.Unmarshal(rcvBuf.Bytes(), &todos); err != nil {
		c.log.Printf("[ERROR] Cannot de-serialize Todo list from %s: %s\n",
			c.Server,
			err.Error())
		return nil, err
	}

	return todos, nil
} // func (c *Client) FetchTodos() ([]objects.Todo, error)
