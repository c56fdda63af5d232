// /home/krylon/go/src/github.com/blicero/mnemosyne/objects/todo.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-19 21:27:33 krylon>

package objects

import (
	"fmt"
	"time"
)

//go:generate ffjson todo.go

// Status describes the processing state of a Todo.
type Status string

// The Status values a Todo can take.
const (
	StatusPending    Status = "Pending"
	StatusInProgress Status = "In Progress"
	StatusDone       Status = "Done"
)

// Priority describes how important a Todo is.
type Priority string

// The Priority values a Todo can take.
const (
	PriorityLow    Priority = "Low"
	PriorityMedium Priority = "Medium"
	PriorityHigh   Priority = "High"
)

// DefaultLeadMinutes is how long before its due time a Todo triggers
// a reminder unless the user said otherwise.
const DefaultLeadMinutes = 30

// timeOfDay is the format due times are stored in.
const timeOfDay = "15:04"

// NotificationSettings controls if and when the backend reminds the
// user of a Todo.
type NotificationSettings struct {
	Enabled     bool
	LeadMinutes int
}

// CalendarEventInfo links a Todo to an event in the user's Google Calendar.
type CalendarEventInfo struct {
	EventID        string
	Synced         bool
	SyncedAt       time.Time
	LastSyncStatus string
	SyncError      string
}

// Attachment is a file the user attached to a Todo. The actual bytes
// live in the spool directory, the database only keeps the metadata.
type Attachment struct {
	ID           int64
	TodoID       int64
	OriginalName string
	Filename     string
	Size         int64
	MimeType     string
	UploadedAt   time.Time
}

// Todo is a single task the user wants to be done.
type Todo struct {
	ID            int64
	UUID          string
	UserID        int64
	CategoryID    int64
	Title         string
	Description   string
	DueDate       *time.Time
	DueTime       string
	Completed     bool
	Status        Status
	Priority      Priority
	Notification  NotificationSettings
	ReminderSent  bool
	CalendarEvent CalendarEventInfo
	Attachments   []Attachment
	Changed       time.Time
}

// HasDue returns true if the Todo has a due date at all.
func (t *Todo) HasDue() bool {
	return t.DueDate != nil
} // func (t *Todo) HasDue() bool

// EffectiveDue returns the instant the Todo is actually due: the due
// date combined with the time of day if one is set, midnight of the
// due date otherwise.
func (t *Todo) EffectiveDue() time.Time {
	if t.DueDate == nil {
		return time.Time{}
	}

	var due = time.Date(
		t.DueDate.Year(),
		t.DueDate.Month(),
		t.DueDate.Day(),
		0, 0, 0, 0,
		t.DueDate.Location())

	if t.DueTime != "" {
		if tod, err := time.Parse(timeOfDay, t.DueTime); err == nil {
			due = due.Add(time.Hour*time.Duration(tod.Hour()) +
				time.Minute*time.Duration(tod.Minute()))
		}
	}

	return due
} // func (t *Todo) EffectiveDue() time.Time

// MinutesUntilDue returns the number of minutes between the reference
// time and the Todo's effective due time. The value is negative if
// the Todo is overdue.
func (t *Todo) MinutesUntilDue(ref time.Time) float64 {
	return t.EffectiveDue().Sub(ref).Minutes()
} // func (t *Todo) MinutesUntilDue(ref time.Time) float64

// IsDue returns true if the Todo's effective due time has passed.
func (t *Todo) IsDue() bool {
	return t.HasDue() && t.EffectiveDue().Before(time.Now())
} // func (t *Todo) IsDue() bool

// Payload returns the Todo's Title and Description.
func (t *Todo) Payload() (string, string) {
	return t.Title, t.Description
} // func (t *Todo) Payload() (string, string)

// UniqueID returns an identifier that is unique across instances,
// i.e. a UUID.
func (t *Todo) UniqueID() string {
	return t.UUID
} // func (t *Todo) UniqueID() string

// IsNewer returns true if the receiver's Changed stamp is more recent
// than the argument's.
func (t *Todo) IsNewer(other *Todo) bool {
	return t.Changed.After(other.Changed)
} // func (t *Todo) IsNewer(other *Todo) bool

func (t *Todo) String() string {
	var due = "<none>"

	if t.DueDate != nil {
		due = t.EffectiveDue().Format("2006-01-02 15:04:05")
	}

	return fmt.Sprintf("Todo{ ID: %d, Title: %q, Due: %s, Completed: %t }",
		t.ID,
		t.Title,
		due,
		t.Completed)
} // func (t *Todo) String() string
