// /home/krylon/go/src/github.com/blicero/mnemosyne/auth/auth.go
// -*- mode: go; coding: utf-8; -*-
// Created on 06. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-22 17:03:55 krylon>

// Package auth issues and verifies the signed tokens users present to
// the web interface, and handles password hashing.
package auth

import (
	"errors"
	"fmt"
	"log"
	"os"
	"strconv"
	"time"

	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/logdomain"
	"github.com/blicero/mnemosyne/objects"
	"github.com/golang-jwt/jwt/v5"
	"golang.org/x/crypto/bcrypt"
)

// EnvSecret is the name of the environment variable holding the key
// tokens are signed with.
const EnvSecret = "MNEMOSYNE_JWT_SECRET"

// TokenTTL is how long an issued token remains valid.
const TokenTTL = time.Hour * 24 * 30

// ErrNoSecret means the signing key is not configured.
var ErrNoSecret = fmt.Errorf("Environment variable %s is not set", EnvSecret)

// ErrNoSubject means a token was validly signed but carries no user ID
// under any of the accepted claim names.
var ErrNoSubject = errors.New("Token carries no user ID")

// Provider issues and verifies tokens.
type Provider struct {
	secret []byte
	log    *log.Logger
}

// New creates a Provider, reading the signing key from the environment.
func New() (*Provider, error) {
	var (
		err error
		p   = new(Provider)
	)

	if key := os.Getenv(EnvSecret); key == "" {
		return nil, ErrNoSecret
	} else {
		p.secret = []byte(key)
	}

	if p.log, err = common.GetLogger(logdomain.Auth); err != nil {
		return nil, err
	}

	return p, nil
} // func New() (*Provider, error)

// Issue creates a signed token for the given User.
func (p *Provider) Issue(u *objects.User) (string, error) {
	var (
		err    error
		signed string
		now    = time.Now()
		claims = jwt.MapClaims{
			"sub":   strconv.FormatInt(u.ID, 10),
			"id":    u.ID,
			"email": u.Email,
			"iat":   now.Unix(),
			"exp":   now.Add(TokenTTL).Unix(),
		}
	)

	var token = jwt.NewWithClaims(jwt.SigningMethodHS256, claims)

	if signed, err = token.SignedString(p.secret); err != nil {
		p.log.Printf("[ERROR] Cannot sign token for User %q: %s\n",
			u.Email,
			err.Error())
		return "", err
	}

	return signed, nil
} // func (p *Provider) Issue(u *objects.User) (string, error)

// Verify checks the given token's signature and expiry and returns the
// ID of the User it was issued to.
// Older tokens used different claim names for the user ID, so in
// addition to "sub" we accept "id", "userId", and "_id".
func (p *Provider) Verify(tokenStr string) (int64, error) {
	var (
		err    error
		token  *jwt.Token
		claims jwt.MapClaims
		ok     bool
	)

	if token, err = jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, isHMAC := t.Method.(*jwt.SigningMethodHMAC); !isHMAC {
			return nil, fmt.Errorf("Unexpected signing method %s",
				t.Method.Alg())
		}
		return p.secret, nil
	}); err != nil {
		return 0, err
	} else if claims, ok = token.Claims.(jwt.MapClaims); !ok {
		return 0, ErrNoSubject
	}

	for _, name := range []string{"sub", "id", "userId", "_id"} {
		var raw, found = claims[name]
		if !found {
			continue
		}

		switch val := raw.(type) {
		case string:
			var id int64
			if id, err = strconv.ParseInt(val, 10, 64); err == nil && id != 0 {
				return id, nil
			}
		case float64:
			if val != 0 {
				return int64(val), nil
			}
		}
	}

	return 0, ErrNoSubject
} // func (p *Provider) Verify(tokenStr string) (int64, error)

// HashPassword hashes a password for storage.
func HashPassword(password string) (string, error) {
	var hash, err = bcrypt.GenerateFromPassword([]byte(password), bcrypt.DefaultCost)
	if err != nil {
		return "", err
	}

	return string(hash), nil
} // func HashPassword(password string) (string, error)

// CheckPassword compares a password against the stored hash.
func CheckPassword(hash, password string) bool {
	return bcrypt.CompareHashAndPassword([]byte(hash), []byte(password)) == nil
} // func CheckPassword(hash, password string) bool
