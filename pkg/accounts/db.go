// Package accounts implements the Axis account store: the pubkey to
// account mapping the runtime loads instruction snapshots from and
// commits mutated snapshots back into.
package accounts

import (
	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// AccountsDB is the ledger's account mapping. Two backends exist: an
// in-memory store for tests and ephemeral runs, and a BadgerDB store for
// persistent data directories. Both persist accounts in the record
// layout defined in record.go.
type AccountsDB interface {
	// GetAccount returns the stored account, or nil, nil when the pubkey
	// has no entry.
	GetAccount(pubkey types.Pubkey) (*types.Account, error)

	// SetAccount writes an account snapshot under pubkey, replacing any
	// previous entry.
	SetAccount(pubkey types.Pubkey, account *types.Account) error

	// DeleteAccount drops the entry. Deleting a missing pubkey is a no-op.
	DeleteAccount(pubkey types.Pubkey) error

	// HasAccount reports whether an entry exists for pubkey.
	HasAccount(pubkey types.Pubkey) bool

	// GetAccountsCount returns the number of stored entries.
	GetAccountsCount() uint64

	// Scan visits every stored account in ascending pubkey byte order.
	// The order is part of the contract: an export built on Scan must
	// come out identical across runs and across backends. Scan stops at
	// the first error the visit function returns.
	Scan(visit func(pubkey types.Pubkey, account *types.Account) error) error

	// Close releases the backend.
	Close() error
}
