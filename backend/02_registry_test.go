// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/02_registry_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 12. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-26 20:44:37 krylon>

package backend

import "testing"

func TestRegistryRegister(t *testing.T) {
	var reg = NewRegistry()

	if displaced := reg.Register(1, "conn-a"); displaced != "" {
		t.Errorf("Registering a new user should not displace anything, got %q",
			displaced)
	}

	if connID, ok := reg.LookupUser(1); !ok {
		t.Error("User 1 should be registered")
	} else if connID != "conn-a" {
		t.Errorf("User 1 is bound to %q (expected %q)",
			connID,
			"conn-a")
	}

	if userID, ok := reg.LookupConn("conn-a"); !ok || userID != 1 {
		t.Errorf("Connection conn-a should map back to user 1, got %d (%t)",
			userID,
			ok)
	}

	if cnt := reg.Count(); cnt != 1 {
		t.Errorf("Registry should hold 1 session, holds %d", cnt)
	}
} // func TestRegistryRegister(t *testing.T)

// A user authenticating over a second connection displaces the first.
func TestRegistryLastWins(t *testing.T) {
	var reg = NewRegistry()

	reg.Register(1, "conn-a")

	if displaced := reg.Register(1, "conn-b"); displaced != "conn-a" {
		t.Errorf("Registering a second session should displace conn-a, got %q",
			displaced)
	}

	if connID, _ := reg.LookupUser(1); connID != "conn-b" {
		t.Errorf("User 1 should be bound to conn-b, is bound to %q",
			connID)
	}

	if _, ok := reg.LookupConn("conn-a"); ok {
		t.Error("conn-a should not be in the registry anymore")
	}

	if cnt := reg.Count(); cnt != 1 {
		t.Errorf("Registry should hold 1 session, holds %d", cnt)
	}
} // func TestRegistryLastWins(t *testing.T)

func TestRegistryDrop(t *testing.T) {
	var reg = NewRegistry()

	reg.Register(1, "conn-a")
	reg.Register(2, "conn-b")

	if userID, ok := reg.Drop("conn-a"); !ok || userID != 1 {
		t.Errorf("Dropping conn-a should yield user 1, got %d (%t)",
			userID,
			ok)
	}

	if _, ok := reg.LookupUser(1); ok {
		t.Error("User 1 should not be registered after the drop")
	}

	if _, ok := reg.Drop("conn-a"); ok {
		t.Error("Dropping conn-a twice should not find anything")
	}

	if cnt := reg.Count(); cnt != 1 {
		t.Errorf("Registry should hold 1 session, holds %d", cnt)
	}
} // func TestRegistryDrop(t *testing.T)

// Dropping a displaced connection must not unbind the user's new
// session.
func TestRegistryDropDisplaced(t *testing.T) {
	var reg = NewRegistry()

	reg.Register(1, "conn-a")
	reg.Register(1, "conn-b")

	// The socket layer drops the displaced connection when it is
	// closed; at that point it is no longer in the registry.
	reg.Drop("conn-a")

	if connID, ok := reg.LookupUser(1); !ok || connID != "conn-b" {
		t.Errorf("User 1 should still be bound to conn-b, got %q (%t)",
			connID,
			ok)
	}
} // func TestRegistryDropDisplaced(t *testing.T)
