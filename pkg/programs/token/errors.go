// Package token implements the Mundis Token Program.
package token

import "errors"

// Token Program errors
var (
	// ErrAlreadyInUse indicates the target record is already initialized.
	ErrAlreadyInUse = errors.New("account or record already in use")

	// ErrInvalidMint indicates the mint account is invalid or uninitialized.
	ErrInvalidMint = errors.New("invalid mint")

	// ErrMintMismatch indicates a token account belongs to a different mint.
	ErrMintMismatch = errors.New("mint mismatch")

	// ErrOwnerMismatch indicates the claimed authority does not match.
	ErrOwnerMismatch = errors.New("owner mismatch")

	// ErrFixedSupply indicates the mint has no mint authority.
	ErrFixedSupply = errors.New("fixed supply")

	// ErrInvalidNumberOfProvidedSigners indicates an out-of-range signer count.
	ErrInvalidNumberOfProvidedSigners = errors.New("invalid number of provided signers")

	// ErrInvalidNumberOfRequiredSigners indicates an out-of-range threshold.
	ErrInvalidNumberOfRequiredSigners = errors.New("invalid number of required signers")

	// ErrUninitializedState indicates a record that has not been initialized.
	ErrUninitializedState = errors.New("uninitialized state")

	// ErrNativeNotSupported indicates the operation rejects wrapped-native accounts.
	ErrNativeNotSupported = errors.New("native not supported")

	// ErrNonNativeNotSupported indicates the operation requires a wrapped-native account.
	ErrNonNativeNotSupported = errors.New("non-native not supported")

	// ErrNonNativeHasBalance indicates a non-native account still holds tokens.
	ErrNonNativeHasBalance = errors.New("non-native account has balance")

	// ErrInvalidInstruction indicates an unknown or malformed instruction.
	ErrInvalidInstruction = errors.New("invalid instruction")

	// ErrInvalidState indicates a no-op or impossible state transition.
	ErrInvalidState = errors.New("invalid state")

	// ErrOverflow indicates checked arithmetic overflowed.
	ErrOverflow = errors.New("overflow")

	// ErrAuthorityTypeNotSupported indicates an authority type that does not
	// apply to the target record kind.
	ErrAuthorityTypeNotSupported = errors.New("authority type not supported")

	// ErrMintCannotFreeze indicates the mint has no freeze authority.
	ErrMintCannotFreeze = errors.New("mint cannot freeze")

	// ErrAccountFrozen indicates the token account is frozen.
	ErrAccountFrozen = errors.New("account is frozen")

	// ErrMintDecimalsMismatch indicates caller-supplied decimals disagree
	// with the mint.
	ErrMintDecimalsMismatch = errors.New("mint decimals mismatch")

	// ErrMissingRequiredSignature indicates a required signer did not sign.
	ErrMissingRequiredSignature = errors.New("missing required signature")

	// ErrInvalidAccountData indicates a malformed packed record.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrInvalidArgument indicates an argument outside the accepted domain.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInsufficientFunds indicates insufficient token balance or allowance.
	ErrInsufficientFunds = errors.New("insufficient funds")

	// ErrNotEnoughAccountKeys indicates too few accounts were provided.
	ErrNotEnoughAccountKeys = errors.New("not enough account keys")

	// ErrAccountNotWritable indicates a required writable account is read-only.
	ErrAccountNotWritable = errors.New("account is not writable")

	// ErrInvalidInstructionData indicates malformed instruction data.
	ErrInvalidInstructionData = errors.New("invalid instruction data")
)
