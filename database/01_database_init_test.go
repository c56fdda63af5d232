// /home/krylon/go/src/github.com/blicero/mnemosyne/database/01_database_init_test.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-21 20:14:48 krylon>

package database

import (
	"fmt"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/blicero/mnemosyne/common"
)

var db *Database

func init() {
	var baseDir = filepath.Join(
		os.TempDir(),
		fmt.Sprintf("mnemosyne_db_test_%d", time.Now().Unix()))

	if err := common.SetBaseDir(baseDir); err != nil {
		fmt.Printf("Cannot set base directory to %s: %s\n",
			baseDir,
			err.Error())
		os.Exit(1)
	}
} // func init()

func TestCreateDatabase(t *testing.T) {
	var err error

	if db, err = Open(common.DbPath); err != nil {
		db = nil
		t.Fatalf("Cannot open database at %s: %s",
			common.DbPath,
			err.Error())
	}
} // func TestCreateDatabase(t *testing.T)

// We prepare each query once to make sure there are no syntax errors in the SQL.
func TestPrepareQueries(t *testing.T) {
	if db == nil {
		t.SkipNow()
	}

	for id := range dbQueries {
		var err error
		if _, err = db.getQuery(id); err != nil {
			t.Errorf("Cannot prepare query %s: %s",
				id,
				err.Error())
		}
	}
} // func TestPrepareQueries(t *testing.T)
