// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/99_backend_shutdown_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 13. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-27 19:18:40 krylon>

package backend

import "testing"

func TestBanish(t *testing.T) {
	if back == nil {
		t.SkipNow()
	} else if !back.IsAlive() {
		t.SkipNow()
	}

	var err error

	if err = back.Banish(); err != nil {
		t.Errorf("Failed to banish Daemon: %s", err.Error())
	}
} // func TestBanish(t *testing.T)
