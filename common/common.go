// /home/krylon/go/src/github.com/blicero/mnemosyne/common/common.go
// -*- mode: go; coding: utf-8; -*-
// Created on 03. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-21 18:34:10 krylon>

// Package common provides constants and functions used throughout
// the application.
package common

import (
	"fmt"
	"io"
	"log"
	"os"
	"path/filepath"
	"time"

	"github.com/blicero/krylib"
	"github.com/blicero/mnemosyne/logdomain"
	"github.com/hashicorp/logutils"
	"github.com/odeke-em/go-uuid"
)

//go:generate ./build_time_stamp.pl

// Debug, if true, causes the application to log additional messages
// and perform additional sanity checks.
const Debug = true

// AppName is the name of the application.
// Version is the version number.
// TimestampFormat is the format string used to render datetime values.
const (
	AppName                  = "Mnemosyne"
	Version                  = "0.4.2"
	TimestampFormat          = "2006-01-02 15:04:05"
	TimestampFormatMinute    = "2006-01-02 15:04"
	TimestampFormatSubSecond = "2006-01-02 15:04:05.0000 MST"
	TimestampFormatTime      = "15:04:05"
	TimestampFormatDate      = "2006-01-02"
	DefaultPort              = 5202
)

// LogLevels are the names of the log levels supported by the logger.
var LogLevels = []logutils.LogLevel{
	"TRACE",
	"DEBUG",
	"INFO",
	"WARN",
	"ERROR",
	"CRITICAL",
	"CANTHAPPEN",
	"SILENT",
}

// PackageLevels defines minimum log levels per package.
var PackageLevels = make(map[logdomain.ID]logutils.LogLevel, len(logdomain.AllDomains()))

func init() {
	for _, id := range logdomain.AllDomains() {
		PackageLevels[id] = "TRACE"
	}
} // func init()

// BaseDir is the folder where all application-specific files are stored.
// It defaults to $HOME/.mnemosyne.d
var BaseDir = filepath.Join(
	os.Getenv("HOME"),
	".mnemosyne.d")

// LogPath is the file to which the log is written.
var LogPath = filepath.Join(BaseDir, "mnemosyne.log")

// DbPath is the path of the main database.
var DbPath = filepath.Join(BaseDir, "mnemosyne.db")

// SpoolDir is the folder where attachment files are stored.
var SpoolDir = filepath.Join(BaseDir, "attachments")

// SetBaseDir sets the BaseDir and related variables.
func SetBaseDir(path string) error {
	fmt.Printf("Setting BaseDir to %s\n", path)

	BaseDir = path
	LogPath = filepath.Join(BaseDir, "mnemosyne.log")
	DbPath = filepath.Join(BaseDir, "mnemosyne.db")
	SpoolDir = filepath.Join(BaseDir, "attachments")

	if err := InitApp(); err != nil {
		fmt.Printf("Error initializing application environment: %s\n",
			err.Error())
		return err
	}

	return nil
} // func SetBaseDir(path string) error

// GetLogger tries to create a Logger for the given log domain.
func GetLogger(dom logdomain.ID) (*log.Logger, error) {
	var (
		err     error
		name    string
		logfile *os.File
	)

	if err = InitApp(); err != nil {
		return nil, fmt.Errorf("Error initializing application environment: %s",
			err.Error())
	}

	name = fmt.Sprintf("%s.%s ",
		AppName,
		dom)

	var style = log.Ldate | log.Ltime | log.Lshortfile

	if logfile, err = os.OpenFile(LogPath, os.O_RDWR|os.O_APPEND|os.O_CREATE, 0644); err != nil {
		return nil, fmt.Errorf("Error opening log file %s: %s",
			LogPath,
			err.Error())
	}

	var writer = io.MultiWriter(os.Stdout, logfile)

	var filter = &logutils.LevelFilter{
		Levels:   LogLevels,
		MinLevel: PackageLevels[dom],
		Writer:   writer,
	}

	var logger = log.New(filter, name, style)

	return logger, nil
} // func GetLogger(dom logdomain.ID) (*log.Logger, error)

// InitApp performs some basic preparations for the application to run.
// Currently, this means creating the BaseDir and the SpoolDir if they
// do not exist.
func InitApp() error {
	for _, dir := range []string{BaseDir, SpoolDir} {
		var (
			err    error
			exists bool
		)

		if exists, err = krylib.Fexists(dir); err != nil {
			return fmt.Errorf("Error checking on directory %s: %s",
				dir,
				err.Error())
		} else if !exists {
			if err = os.Mkdir(dir, 0700); err != nil {
				return fmt.Errorf("Error creating directory %s: %s",
					dir,
					err.Error())
			}
		}
	}

	return nil
} // func InitApp() error

// GetUUID returns a randomized UUID.
func GetUUID() string {
	return uuid.NewRandom().String()
} // func GetUUID() string

// TimeEqual returns true if the two timestamps are less than one second apart.
func TimeEqual(t1, t2 time.Time) bool {
	var delta = t1.Sub(t2)

	if delta < 0 {
		delta = -delta
	}

	return delta < time.Second
} // func TimeEqual(t1, t2 time.Time) bool
