package token

import (
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/runtime"
	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// unpackTokenAccount decodes a TokenAccount record and rejects
// uninitialized ones.
func unpackTokenAccount(data []byte) (*TokenAccount, error) {
	account, err := DeserializeTokenAccount(data)
	if err != nil {
		return nil, err
	}
	if account.State == AccountStateUninitialized {
		return nil, ErrUninitializedState
	}
	return account, nil
}

// unpackMint decodes a Mint record and rejects uninitialized ones.
func unpackMint(data []byte) (*Mint, error) {
	mint, err := DeserializeMint(data)
	if err != nil {
		return nil, err
	}
	if !mint.IsInitialized {
		return nil, ErrUninitializedState
	}
	return mint, nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

func checkedSub(a, b uint64) (uint64, error) {
	if b > a {
		return 0, ErrOverflow
	}
	return a - b, nil
}

// validateOwner checks that expectedOwner has validly authorized the
// operation through ownerAcc.
//
// expectedOwner must equal ownerAcc's pubkey. If ownerAcc is a multisig
// record owned by this program, each entry of signers is matched against
// an unconsumed registered position; a matched entry must itself be a
// signer, and at least m positions must be matched. Otherwise ownerAcc
// itself must be a signer.
func validateOwner(ctx *runtime.ExecutionContext, expectedOwner types.Pubkey, ownerAcc *runtime.KeyedAccount, signers []*runtime.KeyedAccount) error {
	if expectedOwner != ownerAcc.Pubkey {
		return ErrOwnerMismatch
	}

	if ownerAcc.Owner == ctx.ProgramID && len(ownerAcc.Data) == MultisigSize {
		multisig, err := DeserializeMultisig(ownerAcc.Data)
		if err != nil {
			return err
		}
		numSigners := 0
		var matched [MaxSigners]bool
		for _, signer := range signers {
			for position := 0; position < int(multisig.N); position++ {
				if multisig.Signers[position] == signer.Pubkey && !matched[position] {
					if !signer.IsSigner {
						return ErrMissingRequiredSignature
					}
					matched[position] = true
					numSigners++
				}
			}
		}
		if numSigners < int(multisig.M) {
			return ErrMissingRequiredSignature
		}
		return nil
	}

	if !ownerAcc.IsSigner {
		return ErrMissingRequiredSignature
	}
	return nil
}

// remainingAccounts returns the accounts after index, used as the
// multisig signer set.
func remainingAccounts(ctx *runtime.ExecutionContext, index int) []*runtime.KeyedAccount {
	if index+1 >= ctx.AccountCount() {
		return nil
	}
	return ctx.Accounts[index+1:]
}

// handleInitializeMint handles InitializeMint and InitializeMint2.
// Account layout:
//
//	[0] mint (writable) - The mint to initialize
//	[1] rent sysvar (InitializeMint only)
func handleInitializeMint(ctx *runtime.ExecutionContext, inst *InitializeMintInstruction, rentSysvar bool) error {
	required := 1
	if rentSysvar {
		required = 2
	}
	if ctx.AccountCount() < required {
		return fmt.Errorf("%w: InitializeMint requires %d accounts, got %d",
			ErrNotEnoughAccountKeys, required, ctx.AccountCount())
	}

	mintAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !mintAcc.IsWritable {
		return fmt.Errorf("%w: mint account", ErrAccountNotWritable)
	}
	if len(mintAcc.Data) != MintSize {
		return fmt.Errorf("%w: mint record must be %d bytes", ErrInvalidAccountData, MintSize)
	}

	existing, err := DeserializeMint(mintAcc.Data)
	if err != nil {
		return err
	}
	if existing.IsInitialized {
		return ErrAlreadyInUse
	}

	mint := NewMint(inst.Decimals, inst.Name, inst.Symbol, &inst.MintAuthority, inst.FreezeAuthority)
	copy(mintAcc.Data, mint.Serialize())

	ctx.Log("Initialized mint %s", mintAcc.Pubkey)
	return nil
}

// handleInitializeAccount handles InitializeAccount(2/3) with the owner
// already resolved by the dispatcher.
// Account layout:
//
//	[0] account (writable) - The token account to initialize
//	[1] mint - The mint this account holds
func handleInitializeAccount(ctx *runtime.ExecutionContext, owner types.Pubkey) error {
	if ctx.AccountCount() < 2 {
		return fmt.Errorf("%w: InitializeAccount requires 2 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	tokenAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !tokenAcc.IsWritable {
		return fmt.Errorf("%w: token account", ErrAccountNotWritable)
	}
	if len(tokenAcc.Data) != TokenAccountSize {
		return fmt.Errorf("%w: token account record must be %d bytes",
			ErrInvalidAccountData, TokenAccountSize)
	}

	mintAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}

	existing, err := DeserializeTokenAccount(tokenAcc.Data)
	if err != nil {
		return err
	}
	if existing.State != AccountStateUninitialized {
		return ErrAlreadyInUse
	}

	account := NewTokenAccount(mintAcc.Pubkey, owner)
	if mintAcc.Pubkey == types.NativeMintID {
		// The wrapped-native mint needs no initialization check. The
		// token balance mirrors the account's lamports.
		lamports := *tokenAcc.Lamports
		account.IsNative = COptionU64{IsSome: true, Value: lamports}
		account.Amount = lamports
	} else {
		if len(mintAcc.Data) != MintSize {
			return fmt.Errorf("%w: mint record must be %d bytes", ErrInvalidMint, MintSize)
		}
		mint, err := DeserializeMint(mintAcc.Data)
		if err != nil {
			return fmt.Errorf("%w: %v", ErrInvalidMint, err)
		}
		if !mint.IsInitialized {
			return fmt.Errorf("%w: mint not initialized", ErrInvalidMint)
		}
	}

	copy(tokenAcc.Data, account.Serialize())
	return nil
}

// handleInitializeMultisig handles the InitializeMultisig instruction.
// Account layout:
//
//	[0] multisig (writable) - The multisig record to initialize
//	[1] rent sysvar
//	[2..2+n] signer pubkeys to register
func handleInitializeMultisig(ctx *runtime.ExecutionContext, inst *InitializeMultisigInstruction) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: InitializeMultisig requires at least 3 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	msAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !msAcc.IsWritable {
		return fmt.Errorf("%w: multisig account", ErrAccountNotWritable)
	}
	if len(msAcc.Data) != MultisigSize {
		return fmt.Errorf("%w: multisig record must be %d bytes",
			ErrInvalidAccountData, MultisigSize)
	}

	existing, err := DeserializeMultisig(msAcc.Data)
	if err != nil {
		return err
	}
	if existing.IsInitialized {
		return ErrAlreadyInUse
	}

	n := ctx.AccountCount() - 2
	if n < MinSigners || n > MaxSigners {
		return ErrInvalidNumberOfProvidedSigners
	}
	if int(inst.M) < MinSigners || int(inst.M) > n {
		return ErrInvalidNumberOfRequiredSigners
	}

	multisig := &Multisig{
		M:             inst.M,
		N:             uint8(n),
		IsInitialized: true,
	}
	for i := 0; i < n; i++ {
		signerAcc, err := ctx.GetAccountByIndex(2 + i)
		if err != nil {
			return err
		}
		multisig.Signers[i] = signerAcc.Pubkey
	}

	copy(msAcc.Data, multisig.Serialize())
	return nil
}

// handleTransfer handles Transfer and TransferChecked. expectedDecimals is
// non-nil for the checked variant, which carries the mint at position 1.
// Account layout (plain):
//
//	[0] source (writable)
//	[1] destination (writable)
//	[2] authority (owner or delegate)
//	[3..] multisig signers
//
// Checked inserts the mint at [1], shifting the rest by one.
func handleTransfer(ctx *runtime.ExecutionContext, amount uint64, expectedDecimals *uint8) error {
	required := 3
	destIndex := 1
	authIndex := 2
	if expectedDecimals != nil {
		required = 4
		destIndex = 2
		authIndex = 3
	}
	if ctx.AccountCount() < required {
		return fmt.Errorf("%w: Transfer requires %d accounts, got %d",
			ErrNotEnoughAccountKeys, required, ctx.AccountCount())
	}

	sourceAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	destAcc, err := ctx.GetAccountByIndex(destIndex)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(authIndex)
	if err != nil {
		return err
	}
	if !sourceAcc.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}
	if !destAcc.IsWritable {
		return fmt.Errorf("%w: destination account", ErrAccountNotWritable)
	}

	source, err := unpackTokenAccount(sourceAcc.Data)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	dest, err := unpackTokenAccount(destAcc.Data)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}

	if source.IsFrozen() {
		return fmt.Errorf("source: %w", ErrAccountFrozen)
	}
	if dest.IsFrozen() {
		return fmt.Errorf("destination: %w", ErrAccountFrozen)
	}
	if amount > source.Amount {
		return ErrInsufficientFunds
	}
	if source.Mint != dest.Mint {
		return ErrMintMismatch
	}

	if expectedDecimals != nil {
		mintAcc, err := ctx.GetAccountByIndex(1)
		if err != nil {
			return err
		}
		if mintAcc.Pubkey != source.Mint {
			return ErrMintMismatch
		}
		mint, err := unpackMint(mintAcc.Data)
		if err != nil {
			return fmt.Errorf("mint: %w", err)
		}
		if *expectedDecimals != mint.Decimals {
			return ErrMintDecimalsMismatch
		}
	}

	selfTransfer := sourceAcc.Pubkey == destAcc.Pubkey
	signers := remainingAccounts(ctx, authIndex)

	// Delegate allowance is validated and drawn down before the
	// self-transfer short circuit, so a self-transfer exercises (and
	// persists) the allowance bookkeeping without moving balances.
	if source.Delegate.IsSome && source.Delegate.Value == authorityAcc.Pubkey {
		if err := validateOwner(ctx, source.Delegate.Value, authorityAcc, signers); err != nil {
			return err
		}
		if source.DelegatedAmount < amount {
			return ErrInsufficientFunds
		}
		source.DelegatedAmount -= amount
		if source.DelegatedAmount == 0 {
			source.Delegate = COption{}
		}
	} else {
		if err := validateOwner(ctx, source.Owner, authorityAcc, signers); err != nil {
			return err
		}
	}

	if selfTransfer {
		copy(sourceAcc.Data, source.Serialize())
		return nil
	}

	source.Amount -= amount
	dest.Amount, err = checkedAdd(dest.Amount, amount)
	if err != nil {
		return err
	}

	if source.IsNativeAccount() {
		// Wrapped-native balances move lamports in lockstep.
		newSourceLamports, err := checkedSub(*sourceAcc.Lamports, amount)
		if err != nil {
			return err
		}
		newDestLamports, err := checkedAdd(*destAcc.Lamports, amount)
		if err != nil {
			return err
		}
		*sourceAcc.Lamports = newSourceLamports
		*destAcc.Lamports = newDestLamports
	}

	copy(sourceAcc.Data, source.Serialize())
	copy(destAcc.Data, dest.Serialize())
	return nil
}

// handleApprove handles Approve and ApproveChecked.
// Account layout (plain):
//
//	[0] source (writable)
//	[1] delegate
//	[2] owner
//	[3..] multisig signers
//
// Checked inserts the mint at [1], shifting the rest by one.
func handleApprove(ctx *runtime.ExecutionContext, amount uint64, expectedDecimals *uint8) error {
	required := 3
	delegateIndex := 1
	ownerIndex := 2
	if expectedDecimals != nil {
		required = 4
		delegateIndex = 2
		ownerIndex = 3
	}
	if ctx.AccountCount() < required {
		return fmt.Errorf("%w: Approve requires %d accounts, got %d",
			ErrNotEnoughAccountKeys, required, ctx.AccountCount())
	}

	sourceAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !sourceAcc.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}
	delegateAcc, err := ctx.GetAccountByIndex(delegateIndex)
	if err != nil {
		return err
	}
	ownerAcc, err := ctx.GetAccountByIndex(ownerIndex)
	if err != nil {
		return err
	}

	source, err := unpackTokenAccount(sourceAcc.Data)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if source.IsFrozen() {
		return ErrAccountFrozen
	}

	if expectedDecimals != nil {
		mintAcc, err := ctx.GetAccountByIndex(1)
		if err != nil {
			return err
		}
		if mintAcc.Pubkey != source.Mint {
			return ErrMintMismatch
		}
		mint, err := unpackMint(mintAcc.Data)
		if err != nil {
			return fmt.Errorf("mint: %w", err)
		}
		if *expectedDecimals != mint.Decimals {
			return ErrMintDecimalsMismatch
		}
	}

	if err := validateOwner(ctx, source.Owner, ownerAcc, remainingAccounts(ctx, ownerIndex)); err != nil {
		return err
	}

	source.Delegate = COption{IsSome: true, Value: delegateAcc.Pubkey}
	source.DelegatedAmount = amount

	copy(sourceAcc.Data, source.Serialize())
	return nil
}

// handleRevoke handles the Revoke instruction.
// Account layout:
//
//	[0] source (writable)
//	[1] owner
//	[2..] multisig signers
func handleRevoke(ctx *runtime.ExecutionContext) error {
	if ctx.AccountCount() < 2 {
		return fmt.Errorf("%w: Revoke requires 2 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	sourceAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !sourceAcc.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}
	ownerAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}

	source, err := unpackTokenAccount(sourceAcc.Data)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if source.IsFrozen() {
		return ErrAccountFrozen
	}

	if err := validateOwner(ctx, source.Owner, ownerAcc, remainingAccounts(ctx, 1)); err != nil {
		return err
	}

	source.Delegate = COption{}
	source.DelegatedAmount = 0

	copy(sourceAcc.Data, source.Serialize())
	return nil
}

// handleSetAuthority handles the SetAuthority instruction. The target
// record kind is chosen by its exact byte length, an inherited behavior
// that must not drift.
// Account layout:
//
//	[0] target mint or token account (writable)
//	[1] current authority
//	[2..] multisig signers
func handleSetAuthority(ctx *runtime.ExecutionContext, inst *SetAuthorityInstruction) error {
	if ctx.AccountCount() < 2 {
		return fmt.Errorf("%w: SetAuthority requires 2 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	targetAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !targetAcc.IsWritable {
		return fmt.Errorf("%w: target account", ErrAccountNotWritable)
	}
	authorityAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	signers := remainingAccounts(ctx, 1)

	switch len(targetAcc.Data) {
	case TokenAccountSize:
		account, err := unpackTokenAccount(targetAcc.Data)
		if err != nil {
			return err
		}
		if account.IsFrozen() {
			return ErrAccountFrozen
		}

		switch inst.AuthorityType {
		case AuthorityTypeAccountOwner:
			if err := validateOwner(ctx, account.Owner, authorityAcc, signers); err != nil {
				return err
			}
			if inst.NewAuthority == nil {
				return fmt.Errorf("%w: owner authority cannot be cleared", ErrInvalidInstruction)
			}
			account.Owner = *inst.NewAuthority
			account.Delegate = COption{}
			account.DelegatedAmount = 0
			if account.IsNativeAccount() {
				account.CloseAuthority = COption{}
			}
		case AuthorityTypeCloseAccount:
			authority := account.Owner
			if account.CloseAuthority.IsSome {
				authority = account.CloseAuthority.Value
			}
			if err := validateOwner(ctx, authority, authorityAcc, signers); err != nil {
				return err
			}
			account.CloseAuthority = optionFromPtr(inst.NewAuthority)
		default:
			return ErrAuthorityTypeNotSupported
		}

		copy(targetAcc.Data, account.Serialize())
		return nil

	case MintSize:
		mint, err := unpackMint(targetAcc.Data)
		if err != nil {
			return err
		}

		switch inst.AuthorityType {
		case AuthorityTypeMintTokens:
			// Once the mint authority is cleared the supply is fixed
			// forever; it cannot be reinstated.
			if !mint.MintAuthority.IsSome {
				return ErrFixedSupply
			}
			if err := validateOwner(ctx, mint.MintAuthority.Value, authorityAcc, signers); err != nil {
				return err
			}
			mint.MintAuthority = optionFromPtr(inst.NewAuthority)
		case AuthorityTypeFreezeAccount:
			if !mint.FreezeAuthority.IsSome {
				return ErrMintCannotFreeze
			}
			if err := validateOwner(ctx, mint.FreezeAuthority.Value, authorityAcc, signers); err != nil {
				return err
			}
			mint.FreezeAuthority = optionFromPtr(inst.NewAuthority)
		default:
			return ErrAuthorityTypeNotSupported
		}

		copy(targetAcc.Data, mint.Serialize())
		return nil

	default:
		return ErrInvalidArgument
	}
}

func optionFromPtr(pk *types.Pubkey) COption {
	if pk == nil {
		return COption{}
	}
	return COption{IsSome: true, Value: *pk}
}

// handleMintTo handles MintTo and MintToChecked.
// Account layout:
//
//	[0] mint (writable)
//	[1] destination (writable)
//	[2] mint authority
//	[3..] multisig signers
func handleMintTo(ctx *runtime.ExecutionContext, amount uint64, expectedDecimals *uint8) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: MintTo requires 3 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	mintAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	destAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	if !mintAcc.IsWritable {
		return fmt.Errorf("%w: mint account", ErrAccountNotWritable)
	}
	if !destAcc.IsWritable {
		return fmt.Errorf("%w: destination account", ErrAccountNotWritable)
	}

	dest, err := unpackTokenAccount(destAcc.Data)
	if err != nil {
		return fmt.Errorf("destination: %w", err)
	}
	if dest.IsFrozen() {
		return ErrAccountFrozen
	}
	if dest.IsNativeAccount() {
		return ErrNativeNotSupported
	}
	if mintAcc.Pubkey != dest.Mint {
		return ErrMintMismatch
	}

	mint, err := unpackMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if expectedDecimals != nil && *expectedDecimals != mint.Decimals {
		return ErrMintDecimalsMismatch
	}

	if !mint.MintAuthority.IsSome {
		return ErrFixedSupply
	}
	if err := validateOwner(ctx, mint.MintAuthority.Value, authorityAcc, remainingAccounts(ctx, 2)); err != nil {
		return err
	}

	dest.Amount, err = checkedAdd(dest.Amount, amount)
	if err != nil {
		return err
	}
	mint.Supply, err = checkedAdd(mint.Supply, amount)
	if err != nil {
		return err
	}

	copy(destAcc.Data, dest.Serialize())
	copy(mintAcc.Data, mint.Serialize())
	return nil
}

// handleBurn handles Burn and BurnChecked.
// Account layout:
//
//	[0] source (writable)
//	[1] mint (writable)
//	[2] authority (owner or delegate)
//	[3..] multisig signers
func handleBurn(ctx *runtime.ExecutionContext, amount uint64, expectedDecimals *uint8) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: Burn requires 3 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	sourceAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	mintAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	if !sourceAcc.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}
	if !mintAcc.IsWritable {
		return fmt.Errorf("%w: mint account", ErrAccountNotWritable)
	}

	source, err := unpackTokenAccount(sourceAcc.Data)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if source.IsNativeAccount() {
		return ErrNativeNotSupported
	}
	if source.IsFrozen() {
		return ErrAccountFrozen
	}
	if amount > source.Amount {
		return ErrInsufficientFunds
	}
	if mintAcc.Pubkey != source.Mint {
		return ErrMintMismatch
	}

	mint, err := unpackMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if expectedDecimals != nil && *expectedDecimals != mint.Decimals {
		return ErrMintDecimalsMismatch
	}

	signers := remainingAccounts(ctx, 2)
	if source.Delegate.IsSome && source.Delegate.Value == authorityAcc.Pubkey {
		if err := validateOwner(ctx, source.Delegate.Value, authorityAcc, signers); err != nil {
			return err
		}
		if source.DelegatedAmount < amount {
			return ErrInsufficientFunds
		}
		source.DelegatedAmount -= amount
		if source.DelegatedAmount == 0 {
			source.Delegate = COption{}
		}
	} else {
		if err := validateOwner(ctx, source.Owner, authorityAcc, signers); err != nil {
			return err
		}
	}

	source.Amount -= amount
	mint.Supply, err = checkedSub(mint.Supply, amount)
	if err != nil {
		return err
	}

	copy(sourceAcc.Data, source.Serialize())
	copy(mintAcc.Data, mint.Serialize())
	return nil
}

// handleCloseAccount handles the CloseAccount instruction.
// Account layout:
//
//	[0] source (writable) - the account to close
//	[1] destination (writable) - receives the lamports
//	[2] authority (close authority or owner)
//	[3..] multisig signers
func handleCloseAccount(ctx *runtime.ExecutionContext) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: CloseAccount requires 3 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	sourceAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	destAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	if sourceAcc.Pubkey == destAcc.Pubkey {
		return ErrInvalidAccountData
	}
	if !sourceAcc.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}
	if !destAcc.IsWritable {
		return fmt.Errorf("%w: destination account", ErrAccountNotWritable)
	}

	source, err := unpackTokenAccount(sourceAcc.Data)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if !source.IsNativeAccount() && source.Amount != 0 {
		return ErrNonNativeHasBalance
	}

	authority := source.Owner
	if source.CloseAuthority.IsSome {
		authority = source.CloseAuthority.Value
	}
	if err := validateOwner(ctx, authority, authorityAcc, remainingAccounts(ctx, 2)); err != nil {
		return err
	}

	newDestLamports, err := checkedAdd(*destAcc.Lamports, *sourceAcc.Lamports)
	if err != nil {
		return err
	}
	*destAcc.Lamports = newDestLamports
	*sourceAcc.Lamports = 0
	source.Amount = 0

	copy(sourceAcc.Data, source.Serialize())
	return nil
}

// handleToggleFreeze handles FreezeAccount (freeze=true) and ThawAccount
// (freeze=false). No-op transitions are rejected.
// Account layout:
//
//	[0] source (writable)
//	[1] mint
//	[2] freeze authority
//	[3..] multisig signers
func handleToggleFreeze(ctx *runtime.ExecutionContext, freeze bool) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: FreezeAccount requires 3 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	sourceAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	mintAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	if !sourceAcc.IsWritable {
		return fmt.Errorf("%w: source account", ErrAccountNotWritable)
	}

	source, err := unpackTokenAccount(sourceAcc.Data)
	if err != nil {
		return fmt.Errorf("source: %w", err)
	}
	if source.IsNativeAccount() {
		return ErrNativeNotSupported
	}
	if freeze == source.IsFrozen() {
		return ErrInvalidState
	}
	if mintAcc.Pubkey != source.Mint {
		return ErrMintMismatch
	}

	mint, err := unpackMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("mint: %w", err)
	}
	if !mint.FreezeAuthority.IsSome {
		return ErrMintCannotFreeze
	}
	if err := validateOwner(ctx, mint.FreezeAuthority.Value, authorityAcc, remainingAccounts(ctx, 2)); err != nil {
		return err
	}

	if freeze {
		source.State = AccountStateFrozen
	} else {
		source.State = AccountStateInitialized
	}

	copy(sourceAcc.Data, source.Serialize())
	return nil
}

// handleSyncNative handles the SyncNative instruction, reconciling a
// wrapped-native account's token amount with its lamport balance after an
// external deposit.
// Account layout:
//
//	[0] native token account (writable)
func handleSyncNative(ctx *runtime.ExecutionContext) error {
	if ctx.AccountCount() < 1 {
		return fmt.Errorf("%w: SyncNative requires 1 account, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	nativeAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	if !nativeAcc.IsWritable {
		return fmt.Errorf("%w: native account", ErrAccountNotWritable)
	}

	account, err := unpackTokenAccount(nativeAcc.Data)
	if err != nil {
		return err
	}
	if !account.IsNativeAccount() {
		return ErrNonNativeNotSupported
	}

	newAmount := *nativeAcc.Lamports
	if newAmount < account.Amount {
		return ErrInvalidState
	}
	account.Amount = newAmount

	copy(nativeAcc.Data, account.Serialize())
	return nil
}
