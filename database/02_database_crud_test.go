// /home/krylon/go/src/github.com/blicero/mnemosyne/database/02_database_crud_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-21 20:31:17 krylon>

package database

import (
	"fmt"
	"testing"
	"time"

	"github.com/blicero/mnemosyne/objects"
)

const todoCnt = 16

var (
	testUser *objects.User
	testCat  *objects.Category
	todos    []*objects.Todo
)

func TestUserAdd(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	testUser = &objects.User{
		Name:         "Odysseus",
		Email:        "odysseus@ithaca.example",
		PasswordHash: "$2a$10$notahashatall.but.it.does.not.matter.here",
	}

	var err error

	if err = db.UserAdd(testUser); err != nil {
		t.Fatalf("Cannot add User %q: %s",
			testUser.Email,
			err.Error())
	} else if testUser.ID == 0 {
		t.Fatalf("ID of User %q is 0", testUser.Email)
	}
} // func TestUserAdd(t *testing.T)

func TestUserGetByEmail(t *testing.T) {
	if db == nil || testUser == nil {
		t.SkipNow()
	}

	var (
		err error
		u   *objects.User
	)

	if u, err = db.UserGetByEmail(testUser.Email); err != nil {
		t.Fatalf("Cannot look up User %q: %s",
			testUser.Email,
			err.Error())
	} else if u == nil {
		t.Fatalf("User %q was not found", testUser.Email)
	} else if u.ID != testUser.ID {
		t.Fatalf("User %q has unexpected ID %d (expected %d)",
			testUser.Email,
			u.ID,
			testUser.ID)
	} else if u.PasswordHash != testUser.PasswordHash {
		t.Fatalf("Password hash of User %q did not survive the round trip",
			testUser.Email)
	}
} // func TestUserGetByEmail(t *testing.T)

func TestCategoryAdd(t *testing.T) {
	if db == nil || testUser == nil {
		t.SkipNow()
	}

	testCat = &objects.Category{
		UserID:    testUser.ID,
		Name:      objects.DefaultCategoryName,
		IsDefault: true,
	}

	var err error

	if err = db.CategoryAdd(testCat); err != nil {
		t.Fatalf("Cannot add Category %q: %s",
			testCat.Name,
			err.Error())
	} else if testCat.ID == 0 {
		t.Fatalf("ID of Category %q is 0", testCat.Name)
	} else if testCat.Color != objects.DefaultCategoryColor {
		t.Errorf("Category %q did not get the default color (%q)",
			testCat.Name,
			testCat.Color)
	}
} // func TestCategoryAdd(t *testing.T)

func TestCategoryGetDefault(t *testing.T) {
	if db == nil || testCat == nil {
		t.SkipNow()
	}

	var (
		err error
		c   *objects.Category
	)

	if c, err = db.CategoryGetDefault(testUser.ID); err != nil {
		t.Fatalf("Cannot look up default Category: %s", err.Error())
	} else if c == nil {
		t.Fatal("No default Category was found")
	} else if c.ID != testCat.ID {
		t.Fatalf("Default Category has unexpected ID %d (expected %d)",
			c.ID,
			testCat.ID)
	}
} // func TestCategoryGetDefault(t *testing.T)

func TestTodoAdd(t *testing.T) {
	if db == nil || testCat == nil {
		t.SkipNow()
	}

	todos = make([]*objects.Todo, todoCnt)

	var now = time.Now()

	for i := range todos {
		var (
			err error
			due = now.Add(time.Hour * time.Duration(i+1))
			tdo = &objects.Todo{
				UserID:      testUser.ID,
				CategoryID:  testCat.ID,
				Title:       fmt.Sprintf("TEST #%03d", i),
				Description: fmt.Sprintf("This is test item no. %d", i+1),
				DueDate:     &due,
				Notification: objects.NotificationSettings{
					Enabled:     true,
					LeadMinutes: objects.DefaultLeadMinutes,
				},
			}
		)

		if err = db.TodoAdd(tdo); err != nil {
			t.Fatalf("Cannot add Todo %q: %s",
				tdo.Title,
				err.Error())
		} else if tdo.ID == 0 {
			t.Fatalf("ID of Todo %q is 0", tdo.Title)
		} else if tdo.UUID == "" {
			t.Fatalf("Todo %q did not get a UUID", tdo.Title)
		}

		todos[i] = tdo
	}
} // func TestTodoAdd(t *testing.T)

func TestTodoGetByUser(t *testing.T) {
	if db == nil || todos == nil {
		t.SkipNow()
	}

	var (
		err error
		res []objects.Todo
	)

	if res, err = db.TodoGetByUser(testUser.ID); err != nil {
		t.Fatalf("Cannot fetch Todos: %s", err.Error())
	} else if len(res) != len(todos) {
		t.Fatalf("Unexpected number of Todos: %d (expected %d)",
			len(res),
			len(todos))
	}

	for _, tdo := range res {
		if tdo.DueDate == nil {
			t.Errorf("Todo %q lost its due date", tdo.Title)
		} else if !tdo.Notification.Enabled {
			t.Errorf("Todo %q lost its notification flag", tdo.Title)
		}
	}
} // func TestTodoGetByUser(t *testing.T)

// All test Todos are pending, have a due date, notifications enabled,
// and no reminder sent, so all of them must show up here.
func TestTodoReminderPendingAll(t *testing.T) {
	if db == nil || todos == nil {
		t.SkipNow()
	}

	var (
		err error
		res []objects.Todo
	)

	if res, err = db.TodoGetReminderPending(); err != nil {
		t.Fatalf("Cannot fetch pending Todos: %s", err.Error())
	} else if len(res) != len(todos) {
		t.Fatalf("Unexpected number of pending Todos: %d (expected %d)",
			len(res),
			len(todos))
	}
} // func TestTodoReminderPendingAll(t *testing.T)

// Completing a Todo, disabling its notifications, or marking its
// reminder as sent must each remove it from the pending set.
func TestTodoReminderPendingFilter(t *testing.T) {
	if db == nil || todos == nil {
		t.SkipNow()
	}

	var err error

	if err = db.TodoSetCompleted(todos[0], true, objects.StatusDone); err != nil {
		t.Fatalf("Cannot complete Todo %q: %s",
			todos[0].Title,
			err.Error())
	} else if err = db.TodoSetNotification(todos[1], objects.NotificationSettings{Enabled: false}); err != nil {
		t.Fatalf("Cannot disable notifications on Todo %q: %s",
			todos[1].Title,
			err.Error())
	} else if err = db.TodoSetReminderSent(todos[2], true); err != nil {
		t.Fatalf("Cannot mark reminder on Todo %q as sent: %s",
			todos[2].Title,
			err.Error())
	}

	var res []objects.Todo

	if res, err = db.TodoGetReminderPending(); err != nil {
		t.Fatalf("Cannot fetch pending Todos: %s", err.Error())
	} else if len(res) != len(todos)-3 {
		t.Fatalf("Unexpected number of pending Todos: %d (expected %d)",
			len(res),
			len(todos)-3)
	}

	for _, tdo := range res {
		for i := 0; i < 3; i++ {
			if tdo.ID == todos[i].ID {
				t.Errorf("Todo %q should not be in the pending set",
					tdo.Title)
			}
		}
	}
} // func TestTodoReminderPendingFilter(t *testing.T)

// Rescheduling a Todo makes it eligible for a reminder again.
func TestTodoSetDueResetsReminder(t *testing.T) {
	if db == nil || todos == nil {
		t.SkipNow()
	}

	var (
		err error
		tdo = todos[2]
		due = time.Now().Add(time.Hour * 48)
	)

	if !tdo.ReminderSent {
		t.Fatalf("Todo %q should have its reminder flag set at this point",
			tdo.Title)
	} else if err = db.TodoSetDue(tdo, &due, "09:30"); err != nil {
		t.Fatalf("Cannot reschedule Todo %q: %s",
			tdo.Title,
			err.Error())
	} else if tdo.ReminderSent {
		t.Errorf("Rescheduling Todo %q did not clear its reminder flag",
			tdo.Title)
	}

	var fresh *objects.Todo

	if fresh, err = db.TodoGetByID(tdo.ID); err != nil {
		t.Fatalf("Cannot fetch Todo %q: %s",
			tdo.Title,
			err.Error())
	} else if fresh == nil {
		t.Fatalf("Todo %q was not found", tdo.Title)
	} else if fresh.ReminderSent {
		t.Errorf("Reminder flag on Todo %q was not cleared in the database",
			tdo.Title)
	} else if fresh.DueTime != "09:30" {
		t.Errorf("Todo %q has unexpected due time %q (expected %q)",
			tdo.Title,
			fresh.DueTime,
			"09:30")
	}
} // func TestTodoSetDueResetsReminder(t *testing.T)

func TestCategoryDeleteRestricted(t *testing.T) {
	if db == nil || testCat == nil {
		t.SkipNow()
	}

	// The Category still has Todos attached, so the database must
	// refuse to delete it.
	if err := db.CategoryDelete(testCat); err == nil {
		t.Error("Deleting a Category that still has Todos should fail, but it did not")
	}
} // func TestCategoryDeleteRestricted(t *testing.T)

func TestAttachmentRoundTrip(t *testing.T) {
	if db == nil || todos == nil {
		t.SkipNow()
	}

	var (
		err error
		tdo = todos[3]
		att = &objects.Attachment{
			TodoID:       tdo.ID,
			OriginalName: "receipt.pdf",
			Filename:     "0194a7c2-receipt.pdf",
			Size:         4096,
			MimeType:     "application/pdf",
		}
	)

	if err = db.AttachmentAdd(att); err != nil {
		t.Fatalf("Cannot add Attachment %q: %s",
			att.OriginalName,
			err.Error())
	} else if att.ID == 0 {
		t.Fatalf("ID of Attachment %q is 0", att.OriginalName)
	}

	var fresh *objects.Todo

	if fresh, err = db.TodoGetByID(tdo.ID); err != nil {
		t.Fatalf("Cannot fetch Todo %q: %s",
			tdo.Title,
			err.Error())
	} else if fresh == nil {
		t.Fatalf("Todo %q was not found", tdo.Title)
	} else if len(fresh.Attachments) != 1 {
		t.Fatalf("Unexpected number of Attachments on Todo %q: %d (expected 1)",
			tdo.Title,
			len(fresh.Attachments))
	} else if fresh.Attachments[0].MimeType != att.MimeType {
		t.Errorf("Attachment %q has unexpected MIME type %q",
			att.OriginalName,
			fresh.Attachments[0].MimeType)
	}

	if err = db.AttachmentDelete(att); err != nil {
		t.Fatalf("Cannot delete Attachment %q: %s",
			att.OriginalName,
			err.Error())
	}
} // func TestAttachmentRoundTrip(t *testing.T)
