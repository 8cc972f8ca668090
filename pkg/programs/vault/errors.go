// Package vault implements the Mundis Token Vault Program: it locks
// token balances into program-held stores and issues fractional shares
// against them.
package vault

import "errors"

// Vault Program errors
var (
	// ErrInvalidInstructionData indicates malformed instruction data.
	ErrInvalidInstructionData = errors.New("invalid instruction data")

	// ErrNotEnoughAccountKeys indicates too few accounts were provided.
	ErrNotEnoughAccountKeys = errors.New("not enough account keys")

	// ErrAccountNotWritable indicates a required writable account is read-only.
	ErrAccountNotWritable = errors.New("account is not writable")

	// ErrInvalidAccountData indicates a malformed packed record.
	ErrInvalidAccountData = errors.New("invalid account data")

	// ErrIncorrectOwner indicates an account owned by the wrong program.
	ErrIncorrectOwner = errors.New("account owned by the wrong program")

	// ErrAlreadyInitialized indicates the target record is already in use.
	ErrAlreadyInitialized = errors.New("record already initialized")

	// ErrUninitializedRecord indicates a record that has not been initialized.
	ErrUninitializedRecord = errors.New("uninitialized record")

	// ErrMissingRequiredSignature indicates a required signer did not sign.
	ErrMissingRequiredSignature = errors.New("missing required signature")

	// ErrVaultAuthorityMismatch indicates the supplied authority is not the
	// vault's authority.
	ErrVaultAuthorityMismatch = errors.New("vault authority mismatch")

	// ErrVaultMismatch indicates an account that does not match the one the
	// vault record points at.
	ErrVaultMismatch = errors.New("account does not match the vault record")

	// ErrVaultShouldBeInactive indicates the vault is past its funding phase.
	ErrVaultShouldBeInactive = errors.New("vault should be inactive")

	// ErrVaultShouldBeActive indicates the vault has not been activated.
	ErrVaultShouldBeActive = errors.New("vault should be active")

	// ErrVaultMintNotEmpty indicates the fraction mint already has supply.
	ErrVaultMintNotEmpty = errors.New("fraction mint already has supply")

	// ErrVaultAuthorityNotVault indicates a mint or treasury authority that
	// is not the vault account itself.
	ErrVaultAuthorityNotVault = errors.New("authority must be the vault account")

	// ErrTreasuryNotEmpty indicates a treasury that already holds tokens.
	ErrTreasuryNotEmpty = errors.New("treasury not empty")

	// ErrDelegateSet indicates a treasury or store with a delegate.
	ErrDelegateSet = errors.New("delegate must be unset")

	// ErrCloseAuthoritySet indicates a treasury or store with a close authority.
	ErrCloseAuthoritySet = errors.New("close authority must be unset")

	// ErrRedeemTreasuryMintMismatch indicates the redeem treasury's mint is
	// not the pricing mint.
	ErrRedeemTreasuryMintMismatch = errors.New("redeem treasury mint must match pricing mint")

	// ErrSharedFractionMint indicates the redeem treasury uses the fraction
	// mint itself.
	ErrSharedFractionMint = errors.New("redeem treasury cannot use the fraction mint")

	// ErrFractionTreasuryMintMismatch indicates the fraction treasury's mint
	// is not the fraction mint.
	ErrFractionTreasuryMintMismatch = errors.New("fraction treasury mint must match fraction mint")

	// ErrStoreNotEmpty indicates a token store that already holds tokens.
	ErrStoreNotEmpty = errors.New("store not empty")

	// ErrNoTokens indicates a source token account with a zero balance.
	ErrNoTokens = errors.New("token account contains no tokens")

	// ErrInsufficientTokens indicates a balance below the requested amount.
	ErrInsufficientTokens = errors.New("token account balance below requested amount")

	// ErrOwnerMismatch indicates the claimed token owner does not match.
	ErrOwnerMismatch = errors.New("owner mismatch")

	// ErrMintMismatch indicates a store bound to a different mint than the
	// deposited tokens.
	ErrMintMismatch = errors.New("mint mismatch")

	// ErrCombineNotAllowed indicates the pricing account forbids combining.
	ErrCombineNotAllowed = errors.New("pricing account does not allow combining")

	// ErrOverflow indicates checked arithmetic overflowed.
	ErrOverflow = errors.New("overflow")
)
