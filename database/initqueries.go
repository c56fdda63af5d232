// /home/krylon/go/src/github.com/blicero/mnemosyne/database/initqueries.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-18 18:02:33 krylon>

package database

var initQueries = []string{
	`
CREATE TABLE user (
    id               INTEGER PRIMARY KEY,
    name             TEXT NOT NULL,
    email            TEXT UNIQUE NOT NULL,
    pwhash           TEXT NOT NULL,
    todo_cnt         INTEGER NOT NULL DEFAULT 0,
    google_id        TEXT NOT NULL DEFAULT '',
    access_token     TEXT NOT NULL DEFAULT '',
    refresh_token    TEXT NOT NULL DEFAULT '',
    token_expiry     INTEGER NOT NULL DEFAULT 0,
    calendar_id      TEXT NOT NULL DEFAULT 'primary',
    cal_enabled      INTEGER NOT NULL DEFAULT 0,
    cal_sync_events  INTEGER NOT NULL DEFAULT 0,
    cal_lead_minutes INTEGER NOT NULL DEFAULT 30,
    created          INTEGER NOT NULL
)
`,
	`
CREATE TABLE category (
    id         INTEGER PRIMARY KEY,
    user_id    INTEGER NOT NULL REFERENCES user (id)
                   ON DELETE CASCADE
                   ON UPDATE RESTRICT,
    name       TEXT NOT NULL,
    color      TEXT NOT NULL DEFAULT '#000000',
    is_default INTEGER NOT NULL DEFAULT 0,
    UNIQUE (user_id, name)
)
`,
	"CREATE INDEX cat_user_idx ON category (user_id)",
	`
CREATE TABLE todo (
    id              INTEGER PRIMARY KEY,
    uuid            TEXT UNIQUE NOT NULL,
    user_id         INTEGER NOT NULL REFERENCES user (id)
                        ON DELETE CASCADE
                        ON UPDATE RESTRICT,
    category_id     INTEGER NOT NULL REFERENCES category (id)
                        ON DELETE RESTRICT
                        ON UPDATE RESTRICT,
    title           TEXT NOT NULL,
    description     TEXT NOT NULL DEFAULT '',
    due_date        INTEGER,
    due_time        TEXT NOT NULL DEFAULT '',
    completed       INTEGER NOT NULL DEFAULT 0,
    status          TEXT NOT NULL DEFAULT 'Pending'
                        CHECK (status IN ('Pending', 'In Progress', 'Done')),
    priority        TEXT NOT NULL DEFAULT 'Medium'
                        CHECK (priority IN ('Low', 'Medium', 'High')),
    notify_enabled  INTEGER NOT NULL DEFAULT 1,
    lead_minutes    INTEGER NOT NULL DEFAULT 30
                        CHECK (lead_minutes >= 0),
    reminder_sent   INTEGER NOT NULL DEFAULT 0,
    cal_event_id    TEXT NOT NULL DEFAULT '',
    cal_synced      INTEGER NOT NULL DEFAULT 0,
    cal_synced_at   INTEGER NOT NULL DEFAULT 0,
    cal_sync_status TEXT NOT NULL DEFAULT '',
    cal_sync_error  TEXT NOT NULL DEFAULT '',
    changed         INTEGER NOT NULL
)
`,
	"CREATE INDEX todo_user_idx ON todo (user_id)",
	"CREATE INDEX todo_user_cat_idx ON todo (user_id, category_id)",
	"CREATE INDEX todo_user_due_idx ON todo (user_id, due_date)",
	"CREATE INDEX todo_due_reminder_idx ON todo (due_date, reminder_sent)",
	"CREATE INDEX todo_cal_event_idx ON todo (cal_event_id)",
	`
CREATE TABLE attachment (
    id        INTEGER PRIMARY KEY,
    todo_id   INTEGER NOT NULL REFERENCES todo (id)
                  ON DELETE CASCADE
                  ON UPDATE RESTRICT,
    orig_name TEXT NOT NULL,
    filename  TEXT UNIQUE NOT NULL,
    size      INTEGER NOT NULL,
    mime_type TEXT NOT NULL,
    uploaded  INTEGER NOT NULL
)
`,
	"CREATE INDEX attachment_todo_idx ON attachment (todo_id)",
}
