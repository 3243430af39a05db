// ABOUTME: Versioned, additive schema setup for the badger store.
// ABOUTME: Each step runs in its own transaction together with the version bump.

package kv

import (
	"encoding/json"
	"fmt"
	"strconv"

	"github.com/dgraph-io/badger/v3"
	"github.com/harper/myaktube/internal/store"
)

type migration struct {
	version int
	name    string
	apply   func(txn *badger.Txn) error
}

// collectionInfo registers a collection and the secondary indexes kept for it.
type collectionInfo struct {
	Name    string   `json:"name"`
	Prefix  string   `json:"prefix"`
	Indexes []string `json:"indexes"`
}

var migrations = []migration{
	{
		version: 1,
		name:    "create media and playlists collections",
		apply: func(txn *badger.Txn) error {
			if err := registerCollection(txn, collectionInfo{
				Name: store.CollectionMedia, Prefix: "media:", Indexes: []string{"created"},
			}); err != nil {
				return err
			}
			return registerCollection(txn, collectionInfo{
				Name: store.CollectionPlaylists, Prefix: "playlist:", Indexes: []string{"created"},
			})
		},
	},
}

func registerCollection(txn *badger.Txn, info collectionInfo) error {
	data, err := json.Marshal(info)
	if err != nil {
		return err
	}
	return txn.Set([]byte("meta:collection:"+info.Name), data)
}

func migrate(db *badger.DB, steps []migration) error {
	latest := 0
	if len(steps) > 0 {
		latest = steps[len(steps)-1].version
	}

	var current int
	if err := db.View(func(txn *badger.Txn) error {
		var err error
		current, err = readVersion(txn)
		return err
	}); err != nil {
		return txnErr("read schema version", err)
	}

	if current > latest {
		return fmt.Errorf("schema version %d is newer than supported %d: %w", current, latest, store.ErrStorageUnavailable)
	}

	for _, m := range steps {
		if m.version <= current {
			continue
		}
		err := db.Update(func(txn *badger.Txn) error {
			if err := m.apply(txn); err != nil {
				return err
			}
			return txn.Set([]byte(versionKey), []byte(strconv.Itoa(m.version)))
		})
		if err != nil {
			return txnErr(fmt.Sprintf("migrate to v%d (%s)", m.version, m.name), err)
		}
		current = m.version
	}
	return nil
}
