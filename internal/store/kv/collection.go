// ABOUTME: Generic id-keyed collection over badger with a creation-time index.
// ABOUTME: Uses type-prefixed keys; blobs live beside the record under blob:<prefix><id>.

package kv

import (
	"encoding/json"
	"errors"
	"fmt"
	"strconv"
	"sync/atomic"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/myaktube/internal/store"
)

// codec converts between a model and its stored form.
type codec[T any] interface {
	identify(rec T) (id string, createdMS int64)
	validate(rec T) error
	marshal(rec T) (meta, blob []byte, err error)
	unmarshal(meta, blob []byte) (T, error)
	hasBlob() bool
}

// conflictRetries bounds how often a write is replayed after losing a race.
// Every round lets at least one writer commit.
const conflictRetries = 64

type collection[T any] struct {
	db       *badger.DB
	closed   *atomic.Bool
	prefix   string
	name     string
	codec    codec[T]
	maxValue int64
}

func (c *collection[T]) recordKey(id string) []byte {
	return []byte(c.prefix + id)
}

func (c *collection[T]) blobKey(id string) []byte {
	return []byte("blob:" + c.prefix + id)
}

func (c *collection[T]) indexPrefix() []byte {
	return []byte("idx:" + c.name + ":created:")
}

func (c *collection[T]) indexKey(createdMS int64, id string) []byte {
	if createdMS < 0 {
		createdMS = 0
	}
	return []byte(fmt.Sprintf("idx:%s:created:%020d:%s", c.name, createdMS, id))
}

func (c *collection[T]) Put(rec T) (T, error) {
	var zero T
	op := "put " + c.name
	if c.closed.Load() {
		return zero, errClosed(op)
	}
	if err := c.codec.validate(rec); err != nil {
		return zero, fmt.Errorf("%s: %w: %w", op, store.ErrInvalidRecord, err)
	}
	id, created := c.codec.identify(rec)
	meta, blob, err := c.codec.marshal(rec)
	if err != nil {
		return zero, fmt.Errorf("%s: %w: %w", op, store.ErrInvalidRecord, err)
	}
	if c.maxValue > 0 && (int64(len(blob)) > c.maxValue || int64(len(meta)) > c.maxValue) {
		return zero, fmt.Errorf("%s: %w: %d bytes exceeds the %d byte value limit",
			op, store.ErrInvalidRecord, max(len(blob), len(meta)), c.maxValue)
	}

	err = c.update(func(txn *badger.Txn) error {
		prevCreated, found, err := c.createdOf(txn, id)
		if err != nil {
			return err
		}
		if found && prevCreated != created {
			if err := txn.Delete(c.indexKey(prevCreated, id)); err != nil {
				return err
			}
		}
		if err := txn.Set(c.recordKey(id), meta); err != nil {
			return err
		}
		if c.codec.hasBlob() {
			if err := txn.Set(c.blobKey(id), blob); err != nil {
				return err
			}
		}
		return txn.Set(c.indexKey(created, id), []byte{})
	})
	if err != nil {
		return zero, txnErr(op, err)
	}
	return rec, nil
}

func (c *collection[T]) GetAll() ([]T, error) {
	op := "list " + c.name
	if c.closed.Load() {
		return nil, errClosed(op)
	}

	var records []T
	prefix := c.indexPrefix()
	err := c.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.PrefetchValues = false
		opts.Prefix = prefix
		it := txn.NewIterator(opts)
		defer it.Close()

		// key layout: <prefix><20 digit ms>:<id>
		idOffset := len(prefix) + 21
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			key := it.Item().Key()
			if len(key) <= idOffset {
				continue
			}
			id := string(key[idOffset:])
			indexed, err := strconv.ParseInt(string(key[len(prefix):idOffset-1]), 10, 64)
			if err != nil {
				continue
			}

			item, err := txn.Get(c.recordKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				continue
			}
			if err != nil {
				return err
			}
			meta, err := item.ValueCopy(nil)
			if err != nil {
				return err
			}
			rec, err := c.codec.unmarshal(meta, nil)
			if err != nil {
				return fmt.Errorf("%w: %s %s: %w", store.ErrInvalidRecord, c.name, id, err)
			}
			// An index entry left behind by an older write no longer matches.
			if _, created := c.codec.identify(rec); max(created, 0) != indexed {
				continue
			}
			records = append(records, rec)
		}
		return nil
	})
	if err != nil {
		return nil, txnErr(op, err)
	}
	return records, nil
}

func (c *collection[T]) GetByID(id string) (T, bool, error) {
	var zero T
	op := "get " + c.name
	if c.closed.Load() {
		return zero, false, errClosed(op)
	}

	var (
		rec   T
		found bool
	)
	err := c.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(c.recordKey(id))
		if errors.Is(err, badger.ErrKeyNotFound) {
			return nil
		}
		if err != nil {
			return err
		}
		meta, err := item.ValueCopy(nil)
		if err != nil {
			return err
		}

		var blob []byte
		if c.codec.hasBlob() {
			bitem, err := txn.Get(c.blobKey(id))
			if errors.Is(err, badger.ErrKeyNotFound) {
				return fmt.Errorf("%w: %s %s has no content", store.ErrInvalidRecord, c.name, id)
			}
			if err != nil {
				return err
			}
			if blob, err = bitem.ValueCopy(nil); err != nil {
				return err
			}
			if blob == nil {
				blob = []byte{}
			}
		}

		rec, err = c.codec.unmarshal(meta, blob)
		if err != nil {
			return fmt.Errorf("%w: %s %s: %w", store.ErrInvalidRecord, c.name, id, err)
		}
		found = true
		return nil
	})
	if err != nil {
		return zero, false, txnErr(op, err)
	}
	if !found {
		return zero, false, nil
	}
	return rec, true, nil
}

func (c *collection[T]) DeleteByID(id string) error {
	op := "delete " + c.name
	if c.closed.Load() {
		return errClosed(op)
	}

	err := c.update(func(txn *badger.Txn) error {
		created, found, err := c.createdOf(txn, id)
		if err != nil || !found {
			return err
		}
		if err := txn.Delete(c.indexKey(created, id)); err != nil {
			return err
		}
		if c.codec.hasBlob() {
			if err := txn.Delete(c.blobKey(id)); err != nil {
				return err
			}
		}
		return txn.Delete(c.recordKey(id))
	})
	if err != nil {
		return txnErr(op, err)
	}
	return nil
}

// update runs fn in a read-write transaction, replaying it when a concurrent
// commit touched the keys it read. The last commit wins.
func (c *collection[T]) update(fn func(txn *badger.Txn) error) error {
	var err error
	for range conflictRetries {
		err = c.db.Update(fn)
		if !errors.Is(err, badger.ErrConflict) {
			return err
		}
	}
	return err
}

// createdOf reads the creation time stored for id, if the record exists.
func (c *collection[T]) createdOf(txn *badger.Txn, id string) (int64, bool, error) {
	item, err := txn.Get(c.recordKey(id))
	if errors.Is(err, badger.ErrKeyNotFound) {
		return 0, false, nil
	}
	if err != nil {
		return 0, false, err
	}
	var stamp struct {
		CreatedAt int64 `json:"created_at"`
	}
	err = item.Value(func(val []byte) error {
		return json.Unmarshal(val, &stamp)
	})
	if err != nil {
		return 0, false, fmt.Errorf("%w: %s %s: %w", store.ErrInvalidRecord, c.name, id, err)
	}
	return stamp.CreatedAt, true, nil
}
