// /home/krylon/go/src/github.com/blicero/mnemosyne/objects/category.go
// -*- mode: go; coding: utf-8; -*-
// Created on 04. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-01-09 18:50:21 krylon>

package objects

import "fmt"

//go:generate ffjson category.go

// DefaultCategoryName is the name of the Category every new user starts
// out with.
const DefaultCategoryName = "Personal"

// DefaultCategoryColor is the color assigned to a Category unless the
// user picks one.
const DefaultCategoryColor = "#000000"

// Category is a label for grouping Todos. Each user has their own set
// of Categories, names are unique per user.
type Category struct {
	ID        int64
	UserID    int64
	Name      string
	Color     string
	IsDefault bool
}

func (c *Category) String() string {
	return fmt.Sprintf("Category{ ID: %d, Name: %q, Color: %q }",
		c.ID,
		c.Name,
		c.Color)
} // func (c *Category) String() string
