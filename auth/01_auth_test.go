// /home/krylon/go/src/github.com/blicero/mnemosyne/auth/01_auth_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-22 17:21:40 krylon>

package auth

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/objects"
	"github.com/golang-jwt/jwt/v5"
)

const testSecret = "wine-dark-sea"

var prov *Provider

func init() {
	var baseDir = filepath.Join(
		os.TempDir(),
		fmt.Sprintf("mnemosyne_auth_test_%d", time.Now().Unix()))

	if err := common.SetBaseDir(baseDir); err != nil {
		fmt.Printf("Cannot set base directory to %s: %s\n",
			baseDir,
			err.Error())
		os.Exit(1)
	}

	os.Setenv(EnvSecret, testSecret)
} // func init()

func TestNew(t *testing.T) {
	var err error

	if prov, err = New(); err != nil {
		prov = nil
		t.Fatalf("Cannot create Provider: %s", err.Error())
	}
} // func TestNew(t *testing.T)

func TestIssueVerify(t *testing.T) {
	if prov == nil {
		t.SkipNow()
	}

	var (
		err   error
		token string
		id    int64
		u     = &objects.User{
			ID:    42,
			Email: "penelope@ithaca.example",
		}
	)

	if token, err = prov.Issue(u); err != nil {
		t.Fatalf("Cannot issue token: %s", err.Error())
	} else if id, err = prov.Verify(token); err != nil {
		t.Fatalf("Cannot verify freshly issued token: %s", err.Error())
	} else if id != u.ID {
		t.Fatalf("Token verified to wrong user ID %d (expected %d)",
			id,
			u.ID)
	}
} // func TestIssueVerify(t *testing.T)

// Tokens issued by older versions of the application store the user ID
// under different claim names.
func TestVerifyAliasClaims(t *testing.T) {
	if prov == nil {
		t.SkipNow()
	}

	var samples = []jwt.MapClaims{
		{"id": 23, "exp": time.Now().Add(time.Hour).Unix()},
		{"userId": "23", "exp": time.Now().Add(time.Hour).Unix()},
		{"_id": 23, "exp": time.Now().Add(time.Hour).Unix()},
	}

	for i, claims := range samples {
		var (
			err    error
			signed string
			id     int64
		)

		if signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret)); err != nil {
			t.Fatalf("Cannot sign sample token #%d: %s",
				i,
				err.Error())
		} else if id, err = prov.Verify(signed); err != nil {
			t.Errorf("Cannot verify sample token #%d: %s",
				i,
				err.Error())
		} else if id != 23 {
			t.Errorf("Sample token #%d verified to wrong user ID %d (expected 23)",
				i,
				id)
		}
	}
} // func TestVerifyAliasClaims(t *testing.T)

func TestVerifyExpired(t *testing.T) {
	if prov == nil {
		t.SkipNow()
	}

	var (
		err    error
		signed string
		claims = jwt.MapClaims{
			"sub": "42",
			"exp": time.Now().Add(-time.Hour).Unix(),
		}
	)

	if signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret)); err != nil {
		t.Fatalf("Cannot sign expired token: %s", err.Error())
	} else if _, err = prov.Verify(signed); err == nil {
		t.Error("Verifying an expired token should fail, but it did not")
	}
} // func TestVerifyExpired(t *testing.T)

func TestVerifyWrongKey(t *testing.T) {
	if prov == nil {
		t.SkipNow()
	}

	var (
		err    error
		signed string
		claims = jwt.MapClaims{
			"sub": "42",
			"exp": time.Now().Add(time.Hour).Unix(),
		}
	)

	if signed, err = jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte("not-the-real-key")); err != nil {
		t.Fatalf("Cannot sign token: %s", err.Error())
	} else if _, err = prov.Verify(signed); err == nil {
		t.Error("Verifying a token signed with the wrong key should fail, but it did not")
	}
} // func TestVerifyWrongKey(t *testing.T)
