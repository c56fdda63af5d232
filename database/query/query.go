// /home/krylon/go/src/github.com/blicero/mnemosyne/database/query/query.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-18 17:40:12 krylon>

// Package query provides symbolic constants for identifying SQL queries.
package query

//go:generate stringer -type=ID

type ID uint8

const (
	UserAdd ID = iota
	UserGetByID
	UserGetByEmail
	UserIncTodoCount
	UserSetGoogleAuth
	UserClearGoogleAuth
	UserSetCalendarSettings
	CategoryAdd
	CategoryGetByID
	CategoryGetByUser
	CategoryGetByName
	CategoryGetDefault
	CategoryUpdate
	CategoryDelete
	CategoryTodoCount
	TodoAdd
	TodoGetByID
	TodoGetByUser
	TodoGetUpcoming
	TodoGetOverdue
	TodoGetReminderPending
	TodoSetTitle
	TodoSetDescription
	TodoSetCategory
	TodoSetStatus
	TodoSetPriority
	TodoSetCompleted
	TodoSetDue
	TodoSetNotification
	TodoSetReminderSent
	TodoSetCalendarEvent
	TodoClearCalendarEvent
	TodoSetChanged
	TodoDelete
	AttachmentAdd
	AttachmentGetByID
	AttachmentGetByTodo
	AttachmentDelete
)
