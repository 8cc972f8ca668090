package accounts

import (
	"fmt"
	"sync/atomic"

	"github.com/dgraph-io/badger/v4"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// accountKeyspace is the key prefix byte reserved for account records,
// leaving the rest of the keyspace free for future record kinds.
const accountKeyspace = 0x01

// BadgerDB persists account records in a BadgerDB data directory.
// Keys are the keyspace byte followed by the raw 32-byte pubkey, so a
// prefix iteration yields accounts in ascending pubkey order.
type BadgerDB struct {
	db   *badger.DB
	live atomic.Uint64
}

// NewBadgerDB opens (or creates) the account store at path.
func NewBadgerDB(path string) (*BadgerDB, error) {
	opts := badger.DefaultOptions(path)
	opts.Logger = nil

	inner, err := badger.Open(opts)
	if err != nil {
		return nil, fmt.Errorf("failed to open badger db: %w", err)
	}

	db := &BadgerDB{db: inner}
	live, err := db.countLive()
	if err != nil {
		inner.Close()
		return nil, fmt.Errorf("failed to count accounts: %w", err)
	}
	db.live.Store(live)
	return db, nil
}

func accountKey(pubkey types.Pubkey) []byte {
	key := make([]byte, 1+32)
	key[0] = accountKeyspace
	copy(key[1:], pubkey[:])
	return key
}

// GetAccount returns the stored account, or nil, nil when absent.
func (db *BadgerDB) GetAccount(pubkey types.Pubkey) (*types.Account, error) {
	var account *types.Account
	err := db.db.View(func(txn *badger.Txn) error {
		item, err := txn.Get(accountKey(pubkey))
		if err == badger.ErrKeyNotFound {
			return nil
		}
		if err != nil {
			return err
		}
		return item.Value(func(record []byte) error {
			account, err = DecodeAccountRecord(record)
			return err
		})
	})
	if err != nil {
		return nil, fmt.Errorf("failed to get account: %w", err)
	}
	return account, nil
}

// SetAccount stores an account snapshot under pubkey.
func (db *BadgerDB) SetAccount(pubkey types.Pubkey, account *types.Account) error {
	record, err := EncodeAccountRecord(account)
	if err != nil {
		return err
	}

	key := accountKey(pubkey)
	err = db.db.Update(func(txn *badger.Txn) error {
		_, getErr := txn.Get(key)
		fresh := getErr == badger.ErrKeyNotFound
		if getErr != nil && !fresh {
			return getErr
		}
		if err := txn.Set(key, record); err != nil {
			return err
		}
		if fresh {
			db.live.Add(1)
		}
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to set account: %w", err)
	}
	return nil
}

// DeleteAccount drops the entry. Deleting a missing pubkey is a no-op.
func (db *BadgerDB) DeleteAccount(pubkey types.Pubkey) error {
	key := accountKey(pubkey)
	err := db.db.Update(func(txn *badger.Txn) error {
		if _, err := txn.Get(key); err != nil {
			if err == badger.ErrKeyNotFound {
				return nil
			}
			return err
		}
		if err := txn.Delete(key); err != nil {
			return err
		}
		db.live.Add(^uint64(0))
		return nil
	})
	if err != nil {
		return fmt.Errorf("failed to delete account: %w", err)
	}
	return nil
}

// HasAccount reports whether an entry exists for pubkey.
func (db *BadgerDB) HasAccount(pubkey types.Pubkey) bool {
	err := db.db.View(func(txn *badger.Txn) error {
		_, err := txn.Get(accountKey(pubkey))
		return err
	})
	return err == nil
}

// GetAccountsCount returns the number of stored entries.
func (db *BadgerDB) GetAccountsCount() uint64 {
	return db.live.Load()
}

// Scan visits every account in ascending pubkey byte order. Badger
// iterates keys in byte order, which under the keyspace prefix is
// exactly pubkey order.
func (db *BadgerDB) Scan(visit func(pubkey types.Pubkey, account *types.Account) error) error {
	return db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{accountKeyspace}

		it := txn.NewIterator(opts)
		defer it.Close()

		for it.Rewind(); it.Valid(); it.Next() {
			item := it.Item()
			var pubkey types.Pubkey
			copy(pubkey[:], item.Key()[1:])

			var account *types.Account
			err := item.Value(func(record []byte) error {
				var decErr error
				account, decErr = DecodeAccountRecord(record)
				return decErr
			})
			if err != nil {
				return err
			}
			if err := visit(pubkey, account); err != nil {
				return err
			}
		}
		return nil
	})
}

// Close closes the underlying badger instance.
func (db *BadgerDB) Close() error {
	return db.db.Close()
}

func (db *BadgerDB) countLive() (uint64, error) {
	var live uint64
	err := db.db.View(func(txn *badger.Txn) error {
		opts := badger.DefaultIteratorOptions
		opts.Prefix = []byte{accountKeyspace}
		opts.PrefetchValues = false

		it := txn.NewIterator(opts)
		defer it.Close()
		for it.Rewind(); it.Valid(); it.Next() {
			live++
		}
		return nil
	})
	return live, err
}

var _ AccountsDB = (*BadgerDB)(nil)
