// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/04_daemon_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 18:12:48 krylon>

package backend

import (
	"fmt"
	"net/http"
	"net/url"
	"strings"
	"testing"
	"time"

	"github.com/blicero/mnemosyne/clients/clientlib"
	"github.com/blicero/mnemosyne/objects"
	"github.com/gorilla/websocket"
	"github.com/pquerna/ffjson/ffjson"
)

const testAddr = "127.0.0.1:52029"

var (
	back      *Daemon
	testToken string
	testUID   int64
)

func TestSummon(t *testing.T) {
	var err error

	if back, err = Summon(testAddr); err != nil {
		back = nil
		t.Fatalf("Cannot summon Daemon: %s",
			err.Error())
	}

	// Give the web server a moment to come up.
	var deadline = time.Now().Add(time.Second * 5)
	for time.Now().Before(deadline) {
		var resp *http.Response
		if resp, err = http.Get(fmt.Sprintf("http://%s/todo/all", testAddr)); err == nil {
			resp.Body.Close() // nolint: errcheck
			return
		}
		time.Sleep(time.Millisecond * 50)
	}

	t.Fatalf("Web server did not come up at %s: %s",
		testAddr,
		err.Error())
} // func TestSummon(t *testing.T)

func TestRegisterAndLogin(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err  error
		resp *http.Response
		res  objects.Response
		form = url.Values{
			"name":     []string{"Nausicaa"},
			"email":    []string{"nausicaa@scheria.example"},
			"password": []string{"laundry-day"},
		}
	)

	if resp, err = http.PostForm(fmt.Sprintf("http://%s/user/register", testAddr), form); err != nil {
		t.Fatalf("Cannot register user: %s", err.Error())
	}

	defer resp.Body.Close() // nolint: errcheck

	var dec = ffjson.NewDecoder()
	if err = dec.DecodeReader(resp.Body, &res); err != nil {
		t.Fatalf("Cannot decode response: %s", err.Error())
	} else if !res.Status {
		t.Fatalf("Registration failed: %s", res.Message)
	} else if res.Token == "" {
		t.Fatal("Registration did not yield a token")
	}

	testUID = res.ID

	var lresp *http.Response
	if lresp, err = http.PostForm(fmt.Sprintf("http://%s/user/login", testAddr), url.Values{
		"email":    []string{"nausicaa@scheria.example"},
		"password": []string{"laundry-day"},
	}); err != nil {
		t.Fatalf("Cannot log in: %s", err.Error())
	}

	defer lresp.Body.Close() // nolint: errcheck

	res = objects.Response{}
	if err = dec.DecodeReader(lresp.Body, &res); err != nil {
		t.Fatalf("Cannot decode response: %s", err.Error())
	} else if !res.Status {
		t.Fatalf("Login failed: %s", res.Message)
	} else if res.Token == "" {
		t.Fatal("Login did not yield a token")
	}

	testToken = res.Token
} // func TestRegisterAndLogin(t *testing.T)

func TestLoginWrongPassword(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err  error
		resp *http.Response
		res  objects.Response
	)

	if resp, err = http.PostForm(fmt.Sprintf("http://%s/user/login", testAddr), url.Values{
		"email":    []string{"nausicaa@scheria.example"},
		"password": []string{"wrong"},
	}); err != nil {
		t.Fatalf("Cannot log in: %s", err.Error())
	}

	defer resp.Body.Close() // nolint: errcheck

	if err = ffjson.NewDecoder().DecodeReader(resp.Body, &res); err != nil {
		t.Fatalf("Cannot decode response: %s", err.Error())
	} else if res.Status {
		t.Error("Login with the wrong password should fail, but it did not")
	}
} // func TestLoginWrongPassword(t *testing.T)

// A client presents its token as the first websocket message. A bad
// token gets an error event, but the connection stays open, so the
// client can retry with a good one.
func TestSocketHandshake(t *testing.T) {
	if back == nil || testToken == "" {
		t.SkipNow()
	}

	var (
		err  error
		conn *websocket.Conn
		msg  sockMsgIn
		wsu  = fmt.Sprintf("ws://%s/ws", testAddr)
	)

	if conn, _, err = websocket.DefaultDialer.Dial(wsu, nil); err != nil {
		t.Fatalf("Cannot connect to %s: %s",
			wsu,
			err.Error())
	}

	defer conn.Close() // nolint: errcheck

	conn.SetReadDeadline(time.Now().Add(time.Second * 5)) // nolint: errcheck

	if err = conn.WriteJSON(&sockMsgOut{Event: evAuthenticate, Payload: "no-such-token"}); err != nil {
		t.Fatalf("Cannot send authenticate message: %s", err.Error())
	} else if err = conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Cannot read reply: %s", err.Error())
	} else if msg.Event != evError {
		t.Fatalf("A bad token should get an error event, got %q",
			msg.Event)
	}

	// The connection is still usable, try again with the real token.
	if err = conn.WriteJSON(&sockMsgOut{Event: evAuthenticate, Payload: testToken}); err != nil {
		t.Fatalf("Cannot send authenticate message: %s", err.Error())
	} else if err = conn.ReadJSON(&msg); err != nil {
		t.Fatalf("Cannot read reply: %s", err.Error())
	} else if msg.Event != evAuthenticated {
		t.Fatalf("Expected an authenticated event, got %q",
			msg.Event)
	}

	var payload map[string]int64
	if err = ffjson.Unmarshal(msg.Payload, &payload); err != nil {
		t.Fatalf("Cannot decode authenticated payload: %s", err.Error())
	} else if payload["userId"] != testUID {
		t.Errorf("Authenticated as user %d (expected %d)",
			payload["userId"],
			testUID)
	}

	if cnt := back.registry.Count(); cnt != 1 {
		t.Errorf("Registry should hold 1 session, holds %d", cnt)
	}

	// Disconnect and make sure the binding goes away.
	conn.Close() // nolint: errcheck

	var deadline = time.Now().Add(time.Second * 5)
	for time.Now().Before(deadline) {
		if back.registry.Count() == 0 {
			return
		}
		time.Sleep(time.Millisecond * 50)
	}

	t.Error("Registry binding was not dropped after disconnect")
} // func TestSocketHandshake(t *testing.T)

func TestTodoRoundTrip(t *testing.T) {
	if back == nil || testToken == "" {
		t.SkipNow()
	}

	var (
		err   error
		req   *http.Request
		resp  *http.Response
		res   objects.Response
		todos []objects.Todo
		due   = time.Now().AddDate(0, 0, 1).Format(dueDateFormat)
		form  = url.Values{
			"title":   []string{"Wash clothes by the river"},
			"body":    []string{"Bring the ball"},
			"due":     []string{due},
			"dueTime": []string{"09:30"},
		}
	)

	if req, err = http.NewRequest("POST",
		fmt.Sprintf("http://%s/todo/add", testAddr),
		strings.NewReader(form.Encode())); err != nil {
		t.Fatalf("Cannot create request: %s", err.Error())
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+testToken)

	if resp, err = http.DefaultClient.Do(req); err != nil {
		t.Fatalf("Cannot add Todo: %s", err.Error())
	}

	defer resp.Body.Close() // nolint: errcheck

	if err = ffjson.NewDecoder().DecodeReader(resp.Body, &res); err != nil {
		t.Fatalf("Cannot decode response: %s", err.Error())
	} else if !res.Status {
		t.Fatalf("Adding a Todo failed: %s", res.Message)
	}

	if req, err = http.NewRequest("GET",
		fmt.Sprintf("http://%s/todo/all", testAddr),
		nil); err != nil {
		t.Fatalf("Cannot create request: %s", err.Error())
	}

	req.Header.Set("Authorization", "Bearer "+testToken)

	var lresp *http.Response
	if lresp, err = http.DefaultClient.Do(req); err != nil {
		t.Fatalf("Cannot fetch Todos: %s", err.Error())
	}

	defer lresp.Body.Close() // nolint: errcheck

	if err = ffjson.NewDecoder().DecodeReader(lresp.Body, &todos); err != nil {
		t.Fatalf("Cannot decode Todo list: %s", err.Error())
	} else if len(todos) != 1 {
		t.Fatalf("Expected 1 Todo, got %d", len(todos))
	} else if todos[0].Title != "Wash clothes by the river" {
		t.Errorf("Unexpected Todo title %q", todos[0].Title)
	} else if todos[0].DueTime != "09:30" {
		t.Errorf("Unexpected due time %q", todos[0].DueTime)
	}
} // func TestTodoRoundTrip(t *testing.T)

func fetchTestTodos(t *testing.T) []objects.Todo {
	t.Helper()

	var (
		err   error
		req   *http.Request
		resp  *http.Response
		todos []objects.Todo
	)

	if req, err = http.NewRequest("GET",
		fmt.Sprintf("http://%s/todo/all", testAddr),
		nil); err != nil {
		t.Fatalf("Cannot create request: %s", err.Error())
	}

	req.Header.Set("Authorization", "Bearer "+testToken)

	if resp, err = http.DefaultClient.Do(req); err != nil {
		t.Fatalf("Cannot fetch Todos: %s", err.Error())
	}

	defer resp.Body.Close() // nolint: errcheck

	if err = ffjson.NewDecoder().DecodeReader(resp.Body, &todos); err != nil {
		t.Fatalf("Cannot decode Todo list: %s", err.Error())
	}

	return todos
} // func fetchTestTodos(t *testing.T) []objects.Todo

func postTodoUpdate(t *testing.T, id int64, form url.Values) objects.Response {
	t.Helper()

	var (
		err  error
		req  *http.Request
		resp *http.Response
		res  objects.Response
	)

	if req, err = http.NewRequest("POST",
		fmt.Sprintf("http://%s/todo/%d/update", testAddr, id),
		strings.NewReader(form.Encode())); err != nil {
		t.Fatalf("Cannot create request: %s", err.Error())
	}

	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	req.Header.Set("Authorization", "Bearer "+testToken)

	if resp, err = http.DefaultClient.Do(req); err != nil {
		t.Fatalf("Cannot update Todo %d: %s", id, err.Error())
	}

	defer resp.Body.Close() // nolint: errcheck

	if err = ffjson.NewDecoder().DecodeReader(resp.Body, &res); err != nil {
		t.Fatalf("Cannot decode response: %s", err.Error())
	}

	return res
} // func postTodoUpdate(t *testing.T, id int64, form url.Values) objects.Response

// Sending just the time of day has to move the due time, the stored
// due date fills in the missing half.
func TestTodoUpdateDueTimeOnly(t *testing.T) {
	if back == nil || testToken == "" {
		t.SkipNow()
	}

	var todos = fetchTestTodos(t)
	if len(todos) != 1 {
		t.Fatalf("Expected 1 Todo, got %d", len(todos))
	}

	var res = postTodoUpdate(t, todos[0].ID, url.Values{
		"dueTime": []string{"10:45"},
	})

	if !res.Status {
		t.Fatalf("Updating the due time failed: %s", res.Message)
	}

	todos = fetchTestTodos(t)
	if len(todos) != 1 {
		t.Fatalf("Expected 1 Todo, got %d", len(todos))
	} else if todos[0].DueTime != "10:45" {
		t.Errorf("Due time should have moved to 10:45, is %q",
			todos[0].DueTime)
	} else if todos[0].DueDate == nil {
		t.Error("The due date should have been kept")
	}
} // func TestTodoUpdateDueTimeOnly(t *testing.T)

// Updating a Todo that does not exist fails cleanly, and the handler
// stays usable afterwards.
func TestTodoUpdateNotFound(t *testing.T) {
	if back == nil || testToken == "" {
		t.SkipNow()
	}

	var res = postTodoUpdate(t, 999999, url.Values{
		"title": []string{"Ghost"},
	})

	if res.Status {
		t.Error("Updating a nonexistent Todo should fail, but it did not")
	}

	var todos = fetchTestTodos(t)
	if len(todos) != 1 {
		t.Fatalf("Expected 1 Todo, got %d", len(todos))
	}

	if res = postTodoUpdate(t, todos[0].ID, url.Values{
		"title": []string{"Wash clothes by the sea"},
	}); !res.Status {
		t.Fatalf("Updating an existing Todo failed: %s", res.Message)
	}

	if todos = fetchTestTodos(t); len(todos) != 1 {
		t.Fatalf("Expected 1 Todo, got %d", len(todos))
	} else if todos[0].Title != "Wash clothes by the sea" {
		t.Errorf("Unexpected Todo title %q", todos[0].Title)
	}
} // func TestTodoUpdateNotFound(t *testing.T)

func TestClientLib(t *testing.T) {
	if back == nil {
		t.SkipNow()
	}

	var (
		err error
		cl  *clientlib.Client
		due = time.Now().AddDate(0, 0, 2)
	)

	if cl, err = clientlib.NewClient("http://" + testAddr); err != nil {
		t.Fatalf("Cannot create client: %s", err.Error())
	} else if err = cl.Register("Telemachus", "telemachus@ithaca.example", "where-is-father"); err != nil {
		t.Fatalf("Cannot register: %s", err.Error())
	} else if cl.Token() == "" {
		t.Fatal("Registration did not yield a token")
	}

	var tdo = objects.Todo{
		Title:       "Visit Nestor",
		Description: "Ask about the war",
		DueDate:     &due,
		DueTime:     "11:00",
	}

	if err = cl.SubmitTodo(&tdo); err != nil {
		t.Fatalf("Cannot submit Todo: %s", err.Error())
	} else if tdo.ID == 0 {
		t.Error("The submitted Todo should have an ID")
	}

	var todos []objects.Todo
	if todos, err = cl.FetchTodos(); err != nil {
		t.Fatalf("Cannot fetch Todos: %s", err.Error())
	} else if len(todos) != 1 {
		t.Fatalf("Expected 1 Todo, got %d", len(todos))
	} else if todos[0].Title != tdo.Title {
		t.Errorf("Unexpected Todo title %q", todos[0].Title)
	} else if todos[0].DueTime != "11:00" {
		t.Errorf("Unexpected due time %q", todos[0].DueTime)
	}

	// Logging in again yields a fresh token.
	if err = cl.Login("telemachus@ithaca.example", "where-is-father"); err != nil {
		t.Fatalf("Cannot log in: %s", err.Error())
	} else if cl.Token() == "" {
		t.Fatal("Login did not yield a token")
	}
} // func TestClientLib(t *testing.T)
