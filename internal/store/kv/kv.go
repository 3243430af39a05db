// ABOUTME: Badger-backed storage engine for the media library.
// ABOUTME: Handles open options, schema versioning and error mapping.

package kv

import (
	"errors"
	"fmt"
	"io"
	"os"
	"strconv"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/myaktube/internal/models"
	"github.com/harper/myaktube/internal/store"
	"github.com/sirupsen/logrus"
)

const versionKey = "meta:schema_version"

type Store struct {
	db        *badger.DB
	closed    atomic.Bool
	log       logrus.FieldLogger
	media     *collection[*models.MediaItem]
	playlists *collection[*models.Playlist]
}

type options struct {
	inMemory   bool
	syncWrites bool
	log        logrus.FieldLogger
}

// Option configures Open.
type Option func(*options)

// WithInMemory keeps everything in memory. The path is ignored.
func WithInMemory() Option {
	return func(o *options) {
		o.inMemory = true
	}
}

// WithSyncWrites fsyncs every commit.
func WithSyncWrites(enabled bool) Option {
	return func(o *options) {
		o.syncWrites = enabled
	}
}

// WithLogger routes badger's own logging through log.
func WithLogger(log logrus.FieldLogger) Option {
	return func(o *options) {
		o.log = log
	}
}

// Open opens or creates the database directory at path and brings its
// schema up to date.
func Open(path string, opts ...Option) (*Store, error) {
	o := &options{}
	for _, opt := range opts {
		opt(o)
	}
	if o.log == nil {
		discard := logrus.New()
		discard.SetOutput(io.Discard)
		o.log = discard
	}

	bopts := badger.DefaultOptions(path).
		WithLogger(o.log).
		WithLoggingLevel(badger.WARNING).
		WithSyncWrites(o.syncWrites)
	// Badger stores values inline when running in memory, which caps them at
	// the value threshold instead of the value log file size.
	maxValue := bopts.ValueLogFileSize
	if o.inMemory {
		bopts = bopts.WithDir("").WithValueDir("").WithInMemory(true)
		maxValue = bopts.ValueThreshold
	} else if err := os.MkdirAll(path, 0750); err != nil {
		return nil, fmt.Errorf("create data directory: %w: %w", store.ErrStorageUnavailable, err)
	}

	db, err := badger.Open(bopts)
	if err != nil {
		return nil, fmt.Errorf("open database: %w: %w", store.ErrStorageUnavailable, err)
	}

	if err := migrate(db, migrations); err != nil {
		_ = db.Close()
		return nil, err
	}

	s := &Store{db: db, log: o.log}
	s.media = &collection[*models.MediaItem]{
		db:       db,
		closed:   &s.closed,
		prefix:   "media:",
		name:     store.CollectionMedia,
		codec:    mediaCodec{},
		maxValue: maxValue,
	}
	s.playlists = &collection[*models.Playlist]{
		db:       db,
		closed:   &s.closed,
		prefix:   "playlist:",
		name:     store.CollectionPlaylists,
		codec:    playlistCodec{},
		maxValue: maxValue,
	}
	return s, nil
}

func (s *Store) Media() store.Collection[*models.MediaItem] {
	return s.media
}

func (s *Store) Playlists() store.Collection[*models.Playlist] {
	return s.playlists
}

func (s *Store) SchemaVersion() (int, error) {
	if s.closed.Load() {
		return 0, errClosed("read schema version")
	}
	var v int
	err := s.db.View(func(txn *badger.Txn) error {
		var err error
		v, err = readVersion(txn)
		return err
	})
	if err != nil {
		return 0, txnErr("read schema version", err)
	}
	return v, nil
}

func (s *Store) Close() error {
	if s.closed.Swap(true) {
		return nil
	}
	return s.db.Close()
}

func readVersion(txn *badger.Txn) (int, error) {
	item, err := txn.Get([]byte(versionKey))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, nil
	}
	if err != nil {
		return 0, err
	}
	val, err := item.ValueCopy(nil)
	if err != nil {
		return 0, err
	}
	v, err := strconv.Atoi(string(val))
	if err != nil {
		return 0, fmt.Errorf("%w: schema version %q", store.ErrInvalidRecord, val)
	}
	return v, nil
}

func errClosed(op string) error {
	return fmt.Errorf("%s: %w: database closed", op, store.ErrStorageUnavailable)
}

func txnErr(op string, err error) error {
	if errors.Is(err, store.ErrInvalidRecord) || errors.Is(err, store.ErrStorageUnavailable) {
		return fmt.Errorf("%s: %w", op, err)
	}
	return fmt.Errorf("%s: %w: %w", op, store.ErrTransactionFailed, err)
}
