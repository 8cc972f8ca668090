package accounts

import (
	"bytes"
	"sort"
	"sync"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// MemoryDB keeps account records in a map. Entries are held in the same
// encoded record form the persistent backend writes, so the codec is on
// the path of every store operation regardless of backend. Backs tests
// and the ":memory:" data dir of the axis binary.
type MemoryDB struct {
	mu      sync.RWMutex
	records map[types.Pubkey][]byte
}

// NewMemoryDB creates an empty in-memory account store.
func NewMemoryDB() *MemoryDB {
	return &MemoryDB{records: make(map[types.Pubkey][]byte)}
}

// GetAccount returns the stored account, or nil, nil when absent.
func (db *MemoryDB) GetAccount(pubkey types.Pubkey) (*types.Account, error) {
	db.mu.RLock()
	record, ok := db.records[pubkey]
	db.mu.RUnlock()
	if !ok {
		return nil, nil
	}
	return DecodeAccountRecord(record)
}

// SetAccount stores an account snapshot under pubkey.
func (db *MemoryDB) SetAccount(pubkey types.Pubkey, account *types.Account) error {
	record, err := EncodeAccountRecord(account)
	if err != nil {
		return err
	}
	db.mu.Lock()
	db.records[pubkey] = record
	db.mu.Unlock()
	return nil
}

// DeleteAccount drops the entry for pubkey.
func (db *MemoryDB) DeleteAccount(pubkey types.Pubkey) error {
	db.mu.Lock()
	delete(db.records, pubkey)
	db.mu.Unlock()
	return nil
}

// HasAccount reports whether an entry exists for pubkey.
func (db *MemoryDB) HasAccount(pubkey types.Pubkey) bool {
	db.mu.RLock()
	_, ok := db.records[pubkey]
	db.mu.RUnlock()
	return ok
}

// GetAccountsCount returns the number of stored entries.
func (db *MemoryDB) GetAccountsCount() uint64 {
	db.mu.RLock()
	defer db.mu.RUnlock()
	return uint64(len(db.records))
}

// Scan visits every account in ascending pubkey byte order.
func (db *MemoryDB) Scan(visit func(pubkey types.Pubkey, account *types.Account) error) error {
	db.mu.RLock()
	pubkeys := make([]types.Pubkey, 0, len(db.records))
	for pubkey := range db.records {
		pubkeys = append(pubkeys, pubkey)
	}
	db.mu.RUnlock()

	sort.Slice(pubkeys, func(i, j int) bool {
		return bytes.Compare(pubkeys[i][:], pubkeys[j][:]) < 0
	})

	for _, pubkey := range pubkeys {
		account, err := db.GetAccount(pubkey)
		if err != nil {
			return err
		}
		if account == nil {
			continue
		}
		if err := visit(pubkey, account); err != nil {
			return err
		}
	}
	return nil
}

// Close drops all entries.
func (db *MemoryDB) Close() error {
	db.mu.Lock()
	db.records = make(map[types.Pubkey][]byte)
	db.mu.Unlock()
	return nil
}

var _ AccountsDB = (*MemoryDB)(nil)
