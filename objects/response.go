// /home/krylon/go/src/github.com/blicero/mnemosyne/objects/response.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-03-17 18:22:40 krylon>

package objects

//go:generate ffjson response.go

// Response is what the backend sends to a client after processing a request.
// Token is only set on successful registration or login.
type Response struct {
	ID      int64
	Status  bool
	Message string
	Token   string `json:",omitempty"`
}
