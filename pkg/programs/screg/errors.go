// Package screg implements the Mundis sidechain registry program.
package screg

import "errors"

// Registry errors
var (
	// ErrChainAlreadyExists indicates the chain record is already initialized.
	ErrChainAlreadyExists = errors.New("chain account already exists")

	// ErrInsufficientFunds indicates the payer cannot cover the deposit.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrMissingRequiredSignature indicates a required signer did not sign.
	ErrMissingRequiredSignature = errors.New("missing required signature")

	// ErrInvalidState indicates a malformed sidechain record.
	ErrInvalidState = errors.New("invalid sidechain state")

	// ErrInvalidInstructionData indicates malformed instruction data.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrNotEnoughAccountKeys indicates too few accounts were provided.
	ErrNotEnoughAccountKeys = errors.New("not enough account keys")

	// ErrAccountNotWritable indicates a required writable account is read-only.
	ErrAccountNotWritable = errors.New("account is not writable")
)
