package dummydb

import (
	"sync"

	"github.com/hajerbook/backend/core/account"
	"github.com/hajerbook/backend/core/course"
)

type (
	// DB is an in-memory store, used for tests and the "memory" engine.
	DB struct {
		account *accountTable
		course  *courseTable
	}

	accountTable struct {
		sync.RWMutex
		table map[string]*account.Account
	}

	courseTable struct {
		sync.RWMutex
		table map[string]*course.List // by student ID
	}
)

func Open() *DB {
	return &DB{
		account: &accountTable{table: make(map[string]*account.Account)},
		course:  &courseTable{table: make(map[string]*course.List)},
	}
}

// Reset drops all the data.
func (db *DB) Reset() {
	db.account.Lock()
	db.account.table = make(map[string]*account.Account)
	db.account.Unlock()

	db.course.Lock()
	db.course.table = make(map[string]*course.List)
	db.course.Unlock()
}
