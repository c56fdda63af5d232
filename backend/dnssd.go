// /home/krylon/go/src/github.com/blicero/mnemosyne/backend/dnssd.go
// -*- mode: go; coding: utf-8; -*-
// Created on 09. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-29 17:32:40 krylon>

package backend

import (
	"fmt"
	"regexp"
	"strconv"

	"github.com/blicero/mnemosyne/common"
	"github.com/grandcat/zeroconf"
)

// We announce the web interface on the local network so clients can
// find the server without configuration.
const (
	srvService = "_http._tcp"
	srvDomain  = "local."
)

var addrPat = regexp.MustCompile(`:(\d+)$`)

// parseListenPort extracts the TCP port from a listen address like
// "localhost:4711" or ":8080".
func parseListenPort(addr string) (int, error) {
	var (
		err   error
		match []string
		port  int64
	)

	if match = addrPat.FindStringSubmatch(addr); match == nil {
		return 0, fmt.Errorf("Cannot extract HTTP port from server address %q",
			addr)
	} else if port, err = strconv.ParseInt(match[1], 10, 32); err != nil {
		return 0, err
	} else if port < 1 || port > 65535 {
		return 0, fmt.Errorf("Port %d in server address %q is out of range",
			port,
			addr)
	}

	return int(port), nil
} // func parseListenPort(addr string) (int, error)

func (d *Daemon) initDNSSd() error {
	var (
		err  error
		port int
		srv  *zeroconf.Server
	)

	if port, err = parseListenPort(d.web.Addr); err != nil {
		d.log.Printf("[ERROR] Cannot parse HTTP port from server address %q: %s\n",
			d.web.Addr,
			err.Error())
		return err
	}

	var txt = []string{"txtv=0"}

	var instanceName = fmt.Sprintf("%s@%s",
		common.AppName,
		d.hostname)

	if srv, err = zeroconf.Register(instanceName, srvService, srvDomain, port, txt, nil); err != nil {
		d.log.Printf("[ERROR] Cannot register service with DNS-SD: %s\n",
			err.Error())
		return err
	}

	d.dnssd = srv
	return nil
} // func (d *Daemon) initDNSSd() error
