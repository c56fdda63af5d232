// /home/krylon/go/src/github.com/blicero/mnemosyne/database/dbqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-20 18:11:06 krylon>

package database

import "github.com/blicero/mnemosyne/database/query"

var dbQueries = map[query.ID]string{
	query.UserAdd: `
INSERT INTO user (name, email, pwhash, created)
VALUES           (   ?,     ?,      ?,       ?)
`,
	query.UserGetByID: `
SELECT
    name,
    email,
    pwhash,
    todo_cnt,
    google_id,
    access_token,
    refresh_token,
    token_expiry,
    calendar_id,
    cal_enabled,
    cal_sync_events,
    cal_lead_minutes,
    created
FROM user
WHERE id = ?
`,
	query.UserGetByEmail: `
SELECT
    id,
    name,
    pwhash,
    todo_cnt,
    google_id,
    access_token,
    refresh_token,
    token_expiry,
    calendar_id,
    cal_enabled,
    cal_sync_events,
    cal_lead_minutes,
    created
FROM user
WHERE email = ?
`,
	query.UserIncTodoCount: `
UPDATE user
SET todo_cnt = todo_cnt + ?
WHERE id = ?
`,
	query.UserSetGoogleAuth: `
UPDATE user
SET
    google_id = ?,
    access_token = ?,
    refresh_token = ?,
    token_expiry = ?,
    calendar_id = ?,
    cal_enabled = 1
WHERE id = ?
`,
	query.UserClearGoogleAuth: `
UPDATE user
SET
    google_id = '',
    access_token = '',
    refresh_token = '',
    token_expiry = 0,
    cal_enabled = 0,
    cal_sync_events = 0
WHERE id = ?
`,
	query.UserSetCalendarSettings: `
UPDATE user
SET
    cal_sync_events = ?,
    cal_lead_minutes = ?,
    calendar_id = ?
WHERE id = ?
`,
	query.CategoryAdd: `
INSERT INTO category (user_id, name, color, is_default)
VALUES               (      ?,    ?,     ?,          ?)
`,
	query.CategoryGetByID: `
SELECT
    user_id,
    name,
    color,
    is_default
FROM category
WHERE id = ?
`,
	query.CategoryGetByUser: `
SELECT
    id,
    name,
    color,
    is_default
FROM category
WHERE user_id = ?
ORDER BY name
`,
	query.CategoryGetByName: `
SELECT
    id,
    color,
    is_default
FROM category
WHERE user_id = ? AND name = ?
`,
	query.CategoryGetDefault: `
SELECT
    id,
    name,
    color
FROM category
WHERE user_id = ? AND is_default
ORDER BY id
LIMIT 1
`,
	query.CategoryUpdate: `
UPDATE category
SET name = ?, color = ?, is_default = ?
WHERE id = ?
`,
	query.CategoryDelete: "DELETE FROM category WHERE id = ?",
	query.CategoryTodoCount: `
SELECT COUNT(id)
FROM todo
WHERE category_id = ?
`,
	query.TodoAdd: `
INSERT INTO todo (uuid, user_id, category_id, title, description, due_date, due_time, status, priority, notify_enabled, lead_minutes, changed)
VALUES           (   ?,       ?,           ?,     ?,           ?,        ?,        ?,      ?,        ?,              ?,            ?,       ?)
`,
	query.TodoGetByID: `
SELECT
    uuid,
    user_id,
    category_id,
    title,
    description,
    due_date,
    due_time,
    completed,
    status,
    priority,
    notify_enabled,
    lead_minutes,
    reminder_sent,
    cal_event_id,
    cal_synced,
    cal_synced_at,
    cal_sync_status,
    cal_sync_error,
    changed
FROM todo
WHERE id = ?
`,
	query.TodoGetByUser: `
SELECT
    id,
    uuid,
    category_id,
    title,
    description,
    due_date,
    due_time,
    completed,
    status,
    priority,
    notify_enabled,
    lead_minutes,
    reminder_sent,
    cal_event_id,
    cal_synced,
    cal_synced_at,
    cal_sync_status,
    cal_sync_error,
    changed
FROM todo
WHERE user_id = ?
ORDER BY changed DESC
`,
	query.TodoGetUpcoming: `
SELECT
    id,
    uuid,
    category_id,
    title,
    description,
    due_date,
    due_time,
    completed,
    status,
    priority,
    notify_enabled,
    lead_minutes,
    reminder_sent,
    cal_event_id,
    cal_synced,
    cal_synced_at,
    cal_sync_status,
    cal_sync_error,
    changed
FROM todo
WHERE user_id = ?
  AND completed = 0
  AND due_date IS NOT NULL
  AND due_date BETWEEN ? AND ?
ORDER BY due_date
`,
	query.TodoGetOverdue: `
SELECT
    id,
    uuid,
    category_id,
    title,
    description,
    due_date,
    due_time,
    completed,
    status,
    priority,
    notify_enabled,
    lead_minutes,
    reminder_sent,
    cal_event_id,
    cal_synced,
    cal_synced_at,
    cal_sync_status,
    cal_sync_error,
    changed
FROM todo
WHERE user_id = ?
  AND completed = 0
  AND due_date IS NOT NULL
  AND due_date < ?
ORDER BY due_date
`,
	// The Scanner's eligibility filter. The time-of-day component is
	// not part of the predicate, it only decides *when* during the due
	// day the reminder fires.
	query.TodoGetReminderPending: `
SELECT
    id,
    uuid,
    user_id,
    category_id,
    title,
    description,
    due_date,
    due_time,
    status,
    priority,
    lead_minutes,
    cal_event_id,
    cal_synced,
    cal_synced_at,
    cal_sync_status,
    cal_sync_error,
    changed
FROM todo
WHERE completed = 0
  AND due_date IS NOT NULL
  AND notify_enabled <> 0
  AND reminder_sent = 0
ORDER BY due_date
`,
	query.TodoSetTitle: `
UPDATE todo
SET title = ?, changed = ?
WHERE id = ?
`,
	query.TodoSetDescription: `
UPDATE todo
SET description = ?, changed = ?
WHERE id = ?
`,
	query.TodoSetCategory: `
UPDATE todo
SET category_id = ?, changed = ?
WHERE id = ?
`,
	query.TodoSetStatus: `
UPDATE todo
SET status = ?, changed = ?
WHERE id = ?
`,
	query.TodoSetPriority: `
UPDATE todo
SET priority = ?, changed = ?
WHERE id = ?
`,
	query.TodoSetCompleted: `
UPDATE todo
SET completed = ?, status = ?, changed = ?
WHERE id = ?
`,
	// Changing the due date or time makes the Todo eligible for
	// reminders again, so the flag is cleared in the same statement.
	query.TodoSetDue: `
UPDATE todo
SET due_date = ?, due_time = ?, reminder_sent = 0, changed = ?
WHERE id = ?
`,
	query.TodoSetNotification: `
UPDATE todo
SET notify_enabled = ?, lead_minutes = ?, changed = ?
WHERE id = ?
`,
	query.TodoSetReminderSent: `
UPDATE todo
SET reminder_sent = ?, changed = ?
WHERE id = ?
`,
	query.TodoSetCalendarEvent: `
UPDATE todo
SET
    cal_event_id = ?,
    cal_synced = ?,
    cal_synced_at = ?,
    cal_sync_status = ?,
    cal_sync_error = ?,
    changed = ?
WHERE id = ?
`,
	query.TodoClearCalendarEvent: `
UPDATE todo
SET
    cal_event_id = '',
    cal_synced = 0,
    cal_synced_at = 0,
    cal_sync_status = '',
    cal_sync_error = '',
    changed = ?
WHERE id = ?
`,
	query.TodoSetChanged: `
UPDATE todo
SET changed = ?
WHERE id = ?
`,
	query.TodoDelete: "DELETE FROM todo WHERE id = ?",
	query.AttachmentAdd: `
INSERT INTO attachment (todo_id, orig_name, filename, size, mime_type, uploaded)
VALUES                 (      ?,         ?,        ?,    ?,         ?,        ?)
`,
	query.AttachmentGetByID: `
SELECT
    todo_id,
    orig_name,
    filename,
    size,
    mime_type,
    uploaded
FROM attachment
WHERE id = ?
`,
	query.AttachmentGetByTodo: `
SELECT
    id,
    orig_name,
    filename,
    size,
    mime_type,
    uploaded
FROM attachment
WHERE todo_id = ?
ORDER BY uploaded
`,
	query.AttachmentDelete: "DELETE FROM attachment WHERE id = ?",
}
