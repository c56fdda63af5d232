// /home/krylon/go/src/github.com/blicero/mnemosyne/database/pool.go
// -*- mode: go; coding: utf-8; -*-
// Created on 05. 11. 2025 by Benjamin Walkenhorst
// (c) 2025 Benjamin Walkenhorst
// Time-stamp: <2026-08-21 19:58:11 krylon>

package database

import (
	"sync"

	"github.com/blicero/mnemosyne/common"
)

// Pool is a pool of database connections.
type Pool struct {
	lock sync.Mutex
	cond *sync.Cond
	pool []*Database
}

// NewPool creates a Pool of database connections, containing the
// given number of connections.
func NewPool(cnt int) (*Pool, error) {
	var (
		err  error
		pool = &Pool{
			pool: make([]*Database, cnt),
		}
	)

	pool.cond = sync.NewCond(&pool.lock)

	for i := 0; i < cnt; i++ {
		if pool.pool[i], err = Open(common.DbPath); err != nil {
			return nil, err
		}
	}

	return pool, nil
} // func NewPool(cnt int) (*Pool, error)

// Get returns a connection from the Pool.
// If the Pool is empty, it blocks until a connection is returned.
func (pool *Pool) Get() *Database {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	for len(pool.pool) == 0 {
		pool.cond.Wait()
	}

	var db = pool.pool[len(pool.pool)-1]
	pool.pool = pool.pool[:len(pool.pool)-1]

	return db
} // func (pool *Pool) Get() *Database

// GetNoWait returns a connection from the Pool.
// If the Pool is empty, it opens a fresh connection that is not part
// of the Pool.
func (pool *Pool) GetNoWait() (*Database, error) {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	if len(pool.pool) == 0 {
		return Open(common.DbPath)
	}

	var db = pool.pool[len(pool.pool)-1]
	pool.pool = pool.pool[:len(pool.pool)-1]

	return db, nil
} // func (pool *Pool) GetNoWait() (*Database, error)

// Put returns a connection to the Pool.
func (pool *Pool) Put(db *Database) {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	pool.pool = append(pool.pool, db)
	pool.cond.Signal()
} // func (pool *Pool) Put(db *Database)

// Close closes all connections currently in the Pool.
func (pool *Pool) Close() error {
	pool.lock.Lock()
	defer pool.lock.Unlock()

	for _, db := range pool.pool {
		if err := db.Close(); err != nil {
			return err
		}
	}

	pool.pool = nil
	return nil
} // func (pool *Pool) Close() error
