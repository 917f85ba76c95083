// Copyright 2018 Denis Bernard <db047h@gmail.com>
// Licensed under the MIT license. See license text in the LICENSE file.

// Package store persists delay results in a badger key-value store.
//
// Results are keyed by circuit name, input string and output pin, and are
// stored only once: the first result for a key wins.
//
package store

import (
	"encoding/json"
	"fmt"
	"log/slog"
	"strings"
	"time"

	"github.com/db47h/ddpath"
	"github.com/dgraph-io/badger/v4"
	"github.com/pkg/errors"
)

// ErrNotFound is returned by Get for unknown results.
var ErrNotFound = errors.New("result not found")

const keyPrefix = "result/"

// Record is a stored result.
//
type Record struct {
	Circuit string              `json:"circuit"`
	RunID   string              `json:"run_id"`
	Time    time.Time           `json:"time"`
	Result  *ddpath.DelayResult `json:"result"`
}

// Store is a result store. It is safe for concurrent use.
//
type Store struct {
	db *badger.DB
}

// Open opens or creates the store in directory path. Badger messages are
// logged to logger, or discarded if logger is nil.
//
func Open(path string, logger *slog.Logger) (*Store, error) {
	return open(badger.DefaultOptions(path), logger)
}

// OpenInMemory opens a store that lives in memory only.
//
func OpenInMemory(logger *slog.Logger) (*Store, error) {
	return open(badger.DefaultOptions("").WithInMemory(true), logger)
}

func open(opts badger.Options, logger *slog.Logger) (*Store, error) {
	if logger != nil {
		opts = opts.WithLogger(badgerLogger{logger.With(slog.String("component", "badger"))})
	} else {
		opts = opts.WithLogger(nil)
	}
	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "open result store")
	}
	return &Store{db: db}, nil
}

// Close closes the store.
//
func (s *Store) Close() error {
	return s.db.Close()
}

func key(circuit, input, output string) []byte {
	return []byte(keyPrefix + circuit + "/" + input + "/" + output)
}

// Put stores r for the given circuit. It returns false if a result for the
// same circuit, input string and output pin is already stored.
//
func (s *Store) Put(circuit, runID string, r *ddpath.DelayResult) (bool, error) {
	if strings.Contains(circuit, "/") {
		return false, errors.Errorf("invalid circuit name %q", circuit)
	}
	val, err := json.Marshal(&Record{Circuit: circuit, RunID: runID, Time: time.Now().UTC(), Result: r})
	if err != nil {
		return false, errors.Wrap(err, "encode result")
	}
	k := key(circuit, r.Input, r.Output)
	for {
		added := false
		err = s.db.Update(func(txn *badger.Txn) error {
			_, err := txn.Get(k)
			switch err {
			case nil:
				return nil
			case badger.ErrKeyNotFound:
			default:
				return err
			}
			added = true
			return txn.Set(k, val)
		})
		if err == badger.ErrConflict {
			continue
		}
		if err != nil {
			return false, errors.Wrapf(err, "store result %s", k)
		}
		return added, nil
	}
}

// Get returns the stored result for the given circuit, input string and
// output pin, or ErrNotFound.
//
func (s *Store) Get(circuit, input, output string) (*Record, error) {
	var rec Record
	k := key(circuit, input, output)
	err := s.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(k)
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return json.Unmarshal(val, &rec)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read result %s", k)
	}
	return &rec, nil
}

// Scan calls fn for every result stored for circuit, in key order: by input
// string, then by output pin name. Scan stops at the first error returned by
// fn and returns it.
//
func (s *Store) Scan(circuit string, fn func(*Record) error) error {
	prefix := []byte(keyPrefix + circuit + "/")
	return s.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var rec Record
			err := it.Item().Value(func(val []byte) error {
				return json.Unmarshal(val, &rec)
			})
			if err != nil {
				return errors.Wrapf(err, "read result %s", it.Item().Key())
			}
			if err = fn(&rec); err != nil {
				return err
			}
		}
		return nil
	})
}

// Count returns the number of results stored for circuit.
//
func (s *Store) Count(circuit string) (int, error) {
	n := 0
	prefix := []byte(keyPrefix + circuit + "/")
	err := s.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			n++
		}
		return nil
	})
	return n, err
}

// badgerLogger adapts a slog.Logger to badger.Logger.
type badgerLogger struct {
	l *slog.Logger
}

func (b badgerLogger) Errorf(format string, args ...interface{}) {
	b.l.Error(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Warningf(format string, args ...interface{}) {
	b.l.Warn(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Infof(format string, args ...interface{}) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}

func (b badgerLogger) Debugf(format string, args ...interface{}) {
	b.l.Debug(strings.TrimSpace(fmt.Sprintf(format, args...)))
}
