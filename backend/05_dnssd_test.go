// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/05_dnssd_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 29. 08. 2026 by Benjamin Walkenhorst
// (c) 2026 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 18:15:21 krylon>

package backend

import "testing"

func TestParseListenPort(t *testing.T) {
	type testCase struct {
		addr     string
		expected int
		valid    bool
	}

	var cases = []testCase{
		{addr: "localhost:4711", expected: 4711, valid: true},
		{addr: ":8080", expected: 8080, valid: true},
		{addr: "127.0.0.1:52029", expected: 52029, valid: true},
		{addr: "[::1]:65535", expected: 65535, valid: true},
		{addr: "localhost:65536", valid: false},
		{addr: "localhost:0", valid: false},
		{addr: "localhost", valid: false},
		{addr: "", valid: false},
	}

	for _, c := range cases {
		var port, err = parseListenPort(c.addr)

		if c.valid {
			if err != nil {
				t.Errorf("Cannot parse port from %q: %s",
					c.addr,
					err.Error())
			} else if port != c.expected {
				t.Errorf("Unexpected port for %q: %d (expected %d)",
					c.addr,
					port,
					c.expected)
			}
		} else if err == nil {
			t.Errorf("Parsing the port from %q should have failed, got %d",
				c.addr,
				port)
		}
	}
} // func TestParseListenPort(t *testing.T)
