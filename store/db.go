package store

import (
	"os"
	"path/filepath"

	"github.com/dgraph-io/badger"
	"github.com/pkg/errors"
	"github.com/thrylos-labs/stakeledger/crypto/hash"
	"github.com/thrylos-labs/stakeledger/types"
)

// Database wraps the Badger database and stores stake positions under
// StakePositionPrefix followed by the hex Blake2b-256 hash of the principal.
type Database struct {
	db *badger.DB
}

// NewDatabase opens (or creates) a Badger database at path.
func NewDatabase(path string) (*Database, error) {
	if err := os.MkdirAll(path, 0o700); err != nil {
		return nil, errors.Wrapf(err, "create data dir %s", path)
	}

	// Remove any stale lock file left by a crashed process
	lockFile := filepath.Join(path, "LOCK")
	if err := os.Remove(lockFile); err != nil && !os.IsNotExist(err) {
		return nil, errors.Wrap(err, "failed to remove existing lock file")
	}

	opts := badger.DefaultOptions(path).
		WithLogger(nil).
		WithSyncWrites(true)

	db, err := badger.Open(opts)
	if err != nil {
		return nil, errors.Wrap(err, "failed to open Badger database")
	}
	return &Database{db: db}, nil
}

func positionKey(principal string) []byte {
	h := hash.NewHash([]byte(principal))
	return []byte(StakePositionPrefix + h.String())
}

func (d *Database) Get(principal string) (*types.StakePosition, error) {
	var pos types.StakePosition
	err := d.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(positionKey(principal))
		if err != nil {
			return err
		}
		return item.Value(func(val []byte) error {
			return pos.Unmarshal(val)
		})
	})
	if err == badger.ErrKeyNotFound {
		return nil, ErrNotFound
	}
	if err != nil {
		return nil, errors.Wrapf(err, "read stake position of %s", principal)
	}
	return &pos, nil
}

func (d *Database) Put(pos *types.StakePosition) error {
	data, err := pos.Marshal()
	if err != nil {
		return errors.Wrap(err, "encode stake position")
	}
	err = d.db.Update(func(txn *badger.Txn) error {
		return txn.Set(positionKey(pos.Principal), data)
	})
	return errors.Wrapf(err, "write stake position of %s", pos.Principal)
}

func (d *Database) Delete(principal string) error {
	err := d.db.Update(func(txn *badger.Txn) error {
		return txn.Delete(positionKey(principal))
	})
	return errors.Wrapf(err, "delete stake position of %s", principal)
}

func (d *Database) Iterate(fn func(*types.StakePosition) error) error {
	return d.db.View(func(txn *badger.Txn) error {
		it := txn.NewIterator(badger.DefaultIteratorOptions)
		defer it.Close()

		prefix := []byte(StakePositionPrefix)
		for it.Seek(prefix); it.ValidForPrefix(prefix); it.Next() {
			var pos types.StakePosition
			err := it.Item().Value(func(val []byte) error {
				return pos.Unmarshal(val)
			})
			if err != nil {
				return errors.Wrapf(err, "decode %s", it.Item().Key())
			}
			if err := fn(&pos); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the Badger database
func (d *Database) Close() error {
	if d.db == nil {
		return nil
	}
	return d.db.Close()
}
