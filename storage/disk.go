// Package storage owns the process-wide Badger handle.
// The database is opened on first use and closed once at process exit;
// the rest of the system only sees it through the repositories.
package storage

import (
	"fmt"
	"log/slog"
	"sync"

	"github.com/dgraph-io/badger/v4"
)

type Store struct {
	options badger.Options
	log     *slog.Logger

	once sync.Once
	db   *badger.DB
	err  error
}

func NewStore(options badger.Options, log *slog.Logger) *Store {
	return &Store{options: options, log: log}
}

// Options builds the Badger options used by the server.
// An in-memory store ignores the path and is meant for demos and tests.
func Options(path string, inMemory, debug bool) badger.Options {
	options := badger.DefaultOptions(path)
	if inMemory {
		options = badger.DefaultOptions("").WithInMemory(true)
	}
	if debug {
		return options.WithLoggingLevel(badger.DEBUG)
	}
	return options.WithLoggingLevel(badger.WARNING)
}

// DB opens the database on the first call and returns the same handle afterwards.
func (s *Store) DB() (*badger.DB, error) {
	s.once.Do(func() {
		s.db, s.err = badger.Open(s.options)
		if s.err != nil {
			s.err = fmt.Errorf("database opening failed: %w", s.err)
			return
		}
		s.log.Info("BadgerDB opened", "dir", s.options.Dir, "in_memory", s.options.InMemory)
	})
	return s.db, s.err
}

// Ping reports whether the store can serve a read.
func (s *Store) Ping() error {
	db, err := s.DB()
	if err != nil {
		return err
	}
	if db.IsClosed() {
		return fmt.Errorf("database is closed")
	}
	return db.View(func(txn *badger.Txn) error {
		_, err := txn.Get([]byte("counter:user"))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		return err
	})
}

func (s *Store) Close() error {
	if s.db == nil {
		return nil
	}
	s.log.Info("Closing BadgerDB...")
	return s.db.Close()
}
