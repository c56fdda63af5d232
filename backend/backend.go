// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/backend.go
// -*- mode: go; coding: utf-8; -*-
// Created on 07. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-25 19:21:14 krylon>

// Package backend implements the server side of the application: the
// web interface, the websocket sessions, and the reminder scanner.
package backend

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os"
	"sync"
	"time"

	"github.com/blicero/mnemosyne/auth"
	"github.com/blicero/mnemosyne/calendar"
	"github.com/blicero/mnemosyne/common"
	"github.com/blicero/mnemosyne/database"
	"github.com/blicero/mnemosyne/logdomain"
	"github.com/gorilla/mux"
	"github.com/gorilla/websocket"
	"github.com/grandcat/zeroconf"
)

const poolSize = 4

// Daemon is the centerpiece of the backend, coordinating between the
// database, the web interface, and the reminder scanner.
type Daemon struct {
	log        *log.Logger
	pool       *database.Pool
	auth       *auth.Provider
	cal        *calendar.Client
	lock       sync.RWMutex
	active     bool
	web        http.Server
	router     *mux.Router
	registry   *Registry
	suppress   *SuppressionStore
	scanner    *Scanner
	upgrader   websocket.Upgrader
	sLock      sync.RWMutex
	sessions   map[string]*session
	scanReq    chan struct{}
	dnssd      *zeroconf.Server
	hostname   string
	listenAddr string
	idLock     sync.Mutex
	idCnt      int64
}

// Summon summons a Daemon and returns it. No sacrifice or idolatry is required.
func Summon(addr string) (*Daemon, error) {
	var (
		err error
		d   = &Daemon{
			listenAddr: addr,
			active:     true,
			router:     mux.NewRouter(),
			registry:   NewRegistry(),
			suppress:   NewSuppressionStore(),
			sessions:   make(map[string]*session),
			scanReq:    make(chan struct{}, 1),
			upgrader: websocket.Upgrader{
				CheckOrigin: func(r *http.Request) bool { return true },
			},
		}
	)

	if d.log, err = common.GetLogger(logdomain.Backend); err != nil {
		fmt.Printf("ERROR initializing Logger: %s\n",
			err.Error())
		return nil, err
	} else if d.pool, err = database.NewPool(poolSize); err != nil {
		d.log.Printf("[ERROR] Cannot initialize database pool: %s\n",
			err.Error())
		return nil, err
	} else if d.auth, err = auth.New(); err != nil {
		d.log.Printf("[ERROR] Cannot initialize token provider: %s\n",
			err.Error())
		return nil, err
	} else if d.scanner, err = NewScanner(d.pool, d.suppress, d); err != nil {
		d.log.Printf("[ERROR] Cannot initialize Scanner: %s\n",
			err.Error())
		return nil, err
	}

	if d.cal, err = calendar.New(); err != nil {
		if !errors.Is(err, calendar.ErrNotConfigured) {
			d.log.Printf("[ERROR] Cannot initialize Calendar client: %s\n",
				err.Error())
			return nil, err
		}

		d.log.Println("[INFO] Google Calendar integration is not configured, running without it")
		d.cal = nil
	}

	if d.hostname, err = os.Hostname(); err != nil {
		d.log.Printf("[ERROR] Cannot query hostname: %s\n",
			err.Error())
		return nil, err
	}

	d.web.Addr = addr
	d.web.ErrorLog = d.log
	d.web.Handler = d.router

	if err = d.initWebHandlers(); err != nil {
		d.log.Printf("[ERROR] Failed to initialize web server: %s\n",
			err.Error())
		return nil, err
	}

	if err = d.initDNSSd(); err != nil {
		// Not fatal, the server is still reachable by address.
		d.log.Printf("[ERROR] Cannot announce service via DNS-SD: %s\n",
			err.Error())
	}

	go d.scanLoop()
	go d.sweepLoop()
	go d.serveHTTP()

	return d, nil
} // func Summon(addr string) (*Daemon, error)

// IsAlive returns true if the Daemon's active flag is set.
func (d *Daemon) IsAlive() bool {
	d.lock.RLock()
	var alive = d.active
	d.lock.RUnlock()

	return alive
} // func (d *Daemon) IsAlive() bool

// Banish clears the Daemon's active flag, telling components to shut down.
func (d *Daemon) Banish() error {
	var (
		err         error
		ctx, cancel = context.WithTimeout(context.Background(), time.Second*3)
	)
	defer cancel()

	if d.dnssd != nil {
		d.dnssd.Shutdown()
		d.dnssd = nil
	}

	if err = d.web.Shutdown(ctx); err != nil {
		d.log.Printf("[ERROR] Failed to shutdown web server: %s\n",
			err.Error())
	}

	if ctx.Err() != nil {
		err = ctx.Err()
		d.log.Printf("[ERROR] Failed to gracefully shut down web server: %s\n",
			ctx.Err().Error())
		d.web.Close() // nolint: errcheck
	}

	d.sLock.Lock()
	for id, sess := range d.sessions {
		sess.conn.Close() // nolint: errcheck
		delete(d.sessions, id)
	}
	d.sLock.Unlock()

	d.lock.Lock()
	d.active = false
	d.lock.Unlock()
	return err
} // func (d *Daemon) Banish() error

// requestScan nudges the scanLoop to run a scan soon. If a nudge is
// already pending, this one is folded into it.
func (d *Daemon) requestScan() {
	select {
	case d.scanReq <- struct{}{}:
	default:
	}
} // func (d *Daemon) requestScan()

func (d *Daemon) scanLoop() {
	defer d.log.Println("[TRACE] scanLoop is quitting")

	var (
		warmup = time.NewTimer(scanWarmup)
		tick   = time.NewTicker(scanInterval)
	)
	defer warmup.Stop()
	defer tick.Stop()

	for d.IsAlive() {
		select {
		case <-warmup.C:
		case <-tick.C:
		case <-d.scanReq:
		}

		var res, err = d.scanner.Scan()

		switch {
		case err == nil:
			d.log.Printf("[DEBUG] Reminder scan: %s\n", res)
		case errors.Is(err, ErrScanBusy):
			d.log.Println("[TRACE] Skipping reminder scan, another one is still running")
		default:
			d.log.Printf("[ERROR] Reminder scan failed: %s\n",
				err.Error())
		}
	}
} // func (d *Daemon) scanLoop()

func (d *Daemon) sweepLoop() {
	defer d.log.Println("[TRACE] sweepLoop is quitting")

	var tick = time.NewTicker(suppressSweep)
	defer tick.Stop()

	for d.IsAlive() {
		<-tick.C

		if cnt := d.suppress.Sweep(); cnt > 0 {
			d.log.Printf("[DEBUG] Swept %d stale suppression records\n",
				cnt)
		}
	}
} // func (d *Daemon) sweepLoop()

func (d *Daemon) getID() int64 {
	d.idLock.Lock()
	d.idCnt++
	var id = d.idCnt
	d.idLock.Unlock()
	return id
} // func (d *Daemon) getID() int64
