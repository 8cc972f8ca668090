package vault

import (
	"encoding/binary"
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/programs/token"
	"github.com/mundisnetwork/axis-sub000/pkg/runtime"
	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Vault instruction discriminators (first byte of instruction data)
const (
	InstructionInitVault     uint8 = 0
	InstructionAddToken      uint8 = 1
	InstructionActivateVault uint8 = 2
	InstructionCombineVault  uint8 = 3
)

// InitVaultInstruction starts a new, inactive vault.
//
// Data layout: allow_further_share_creation (bool, 1 byte).
type InitVaultInstruction struct {
	AllowFurtherShareCreation bool
}

// Decode decodes an InitVault instruction from bytes.
func (inst *InitVaultInstruction) Decode(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("%w: truncated InitVault", ErrInvalidInstructionData)
	}
	inst.AllowFurtherShareCreation = data[0] != 0
	return nil
}

// Encode encodes an InitVault instruction to bytes.
func (inst *InitVaultInstruction) Encode() []byte {
	flag := byte(0)
	if inst.AllowFurtherShareCreation {
		flag = 1
	}
	return []byte{InstructionInitVault, flag}
}

// AddTokenInstruction moves tokens into a vault store.
//
// Data layout: amount (u64).
type AddTokenInstruction struct {
	Amount uint64
}

// Decode decodes an AddToken instruction from bytes.
func (inst *AddTokenInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: truncated AddToken amount", ErrInvalidInstructionData)
	}
	inst.Amount = binary.LittleEndian.Uint64(data)
	return nil
}

// Encode encodes an AddToken instruction to bytes.
func (inst *AddTokenInstruction) Encode() []byte {
	data := make([]byte, 9)
	data[0] = InstructionAddToken
	binary.LittleEndian.PutUint64(data[1:], inst.Amount)
	return data
}

// ActivateVaultInstruction mints the initial share supply and opens the
// vault for trading.
//
// Data layout: number_of_shares (u64).
type ActivateVaultInstruction struct {
	NumberOfShares uint64
}

// Decode decodes an ActivateVault instruction from bytes.
func (inst *ActivateVaultInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: truncated ActivateVault share count", ErrInvalidInstructionData)
	}
	inst.NumberOfShares = binary.LittleEndian.Uint64(data)
	return nil
}

// Encode encodes an ActivateVault instruction to bytes.
func (inst *ActivateVaultInstruction) Encode() []byte {
	data := make([]byte, 9)
	data[0] = InstructionActivateVault
	binary.LittleEndian.PutUint64(data[1:], inst.NumberOfShares)
	return data
}

// EncodeCombineVault encodes a CombineVault instruction. It carries no
// payload beyond the discriminator.
func EncodeCombineVault() []byte {
	return []byte{InstructionCombineVault}
}

// VaultProgram implements the token vault.
type VaultProgram struct {
	programID types.Pubkey
}

// New creates a new VaultProgram instance.
func New() *VaultProgram {
	return &VaultProgram{programID: types.TokenVaultProgramID}
}

// ID returns the vault program's public key.
func (p *VaultProgram) ID() types.Pubkey {
	return p.programID
}

// Execute executes a vault instruction.
func (p *VaultProgram) Execute(ctx *runtime.ExecutionContext) error {
	if len(ctx.InstructionData) < 1 {
		return fmt.Errorf("%w: empty instruction data", ErrInvalidInstructionData)
	}
	discriminator := ctx.InstructionData[0]
	data := ctx.InstructionData[1:]

	switch discriminator {
	case InstructionInitVault:
		var inst InitVaultInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: InitVault")
		return p.handleInitVault(ctx, &inst)

	case InstructionAddToken:
		var inst AddTokenInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: AddTokenToInactiveVault")
		return p.handleAddToken(ctx, &inst)

	case InstructionActivateVault:
		var inst ActivateVaultInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: ActivateVault")
		return p.handleActivateVault(ctx, &inst)

	case InstructionCombineVault:
		ctx.Log("Instruction: CombineVault")
		return p.handleCombineVault(ctx)

	default:
		return fmt.Errorf("%w: unknown instruction %d", ErrInvalidInstructionData, discriminator)
	}
}

// loadVault checks program ownership and unpacks an initialized vault
// record.
func (p *VaultProgram) loadVault(acc *runtime.KeyedAccount) (*Vault, error) {
	if acc.Owner != p.programID {
		return nil, fmt.Errorf("%w: vault account", ErrIncorrectOwner)
	}
	v, err := DeserializeVault(acc.Data)
	if err != nil {
		return nil, err
	}
	if v.Key != RecordVault {
		return nil, fmt.Errorf("%w: vault account", ErrUninitializedRecord)
	}
	return v, nil
}

// loadTokenAccount checks token-program ownership and unpacks an
// initialized token account record.
func loadTokenAccount(acc *runtime.KeyedAccount, label string) (*token.TokenAccount, error) {
	if acc.Owner != types.TokenProgramID {
		return nil, fmt.Errorf("%w: %s", ErrIncorrectOwner, label)
	}
	ta, err := token.DeserializeTokenAccount(acc.Data)
	if err != nil {
		return nil, fmt.Errorf("%w: %s", ErrInvalidAccountData, label)
	}
	if ta.State == token.AccountStateUninitialized {
		return nil, fmt.Errorf("%w: %s", ErrUninitializedRecord, label)
	}
	return ta, nil
}

// checkVaultAuthority verifies that the signer is the vault's current
// authority.
func checkVaultAuthority(v *Vault, authority *runtime.KeyedAccount) error {
	if v.Authority != authority.Pubkey {
		return fmt.Errorf("%w: %s", ErrVaultAuthorityMismatch, authority.Pubkey)
	}
	if !authority.IsSigner {
		return fmt.Errorf("%w: vault authority", ErrMissingRequiredSignature)
	}
	return nil
}

// checkEmptyTreasury verifies that a treasury account is fresh: no
// balance, no delegate, no close authority, and owned by the vault
// account so only vault instructions can move it.
func checkEmptyTreasury(ta *token.TokenAccount, vaultPubkey types.Pubkey, label string) error {
	if ta.Amount != 0 {
		return fmt.Errorf("%w: %s", ErrTreasuryNotEmpty, label)
	}
	if ta.Delegate.IsSome {
		return fmt.Errorf("%w: %s", ErrDelegateSet, label)
	}
	if ta.CloseAuthority.IsSome {
		return fmt.Errorf("%w: %s", ErrCloseAuthoritySet, label)
	}
	if ta.Owner != vaultPubkey {
		return fmt.Errorf("%w: %s", ErrVaultAuthorityNotVault, label)
	}
	return nil
}

func checkedAdd(a, b uint64) (uint64, error) {
	sum := a + b
	if sum < a {
		return 0, ErrOverflow
	}
	return sum, nil
}

// handleInitVault initializes an inactive vault over a fresh fraction
// mint and two empty treasuries. The vault account's own pubkey serves
// as the program-held authority: the fraction mint's authorities and the
// treasuries' owners must all be the vault account.
// Account layout:
//
//	[0] fraction mint (writable)
//	[1] redeem treasury (writable)
//	[2] fraction treasury (writable)
//	[3] vault account (writable)
//	[4] vault authority
//	[5] pricing lookup (external price account)
func (p *VaultProgram) handleInitVault(ctx *runtime.ExecutionContext, inst *InitVaultInstruction) error {
	if ctx.AccountCount() < 6 {
		return fmt.Errorf("%w: InitVault requires 6 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	mintAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	redeemAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	fractionAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	vaultAcc, err := ctx.GetAccountByIndex(3)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(4)
	if err != nil {
		return err
	}
	pricingAcc, err := ctx.GetAccountByIndex(5)
	if err != nil {
		return err
	}
	if !vaultAcc.IsWritable {
		return fmt.Errorf("%w: vault account", ErrAccountNotWritable)
	}

	if vaultAcc.Owner != p.programID {
		return fmt.Errorf("%w: vault account", ErrIncorrectOwner)
	}
	if len(vaultAcc.Data) != VaultSize {
		return fmt.Errorf("%w: vault record must be %d bytes",
			ErrInvalidAccountData, VaultSize)
	}
	if vaultAcc.Data[0] != RecordUninitialized {
		return fmt.Errorf("%w: vault account", ErrAlreadyInitialized)
	}

	if pricingAcc.Owner != p.programID {
		return fmt.Errorf("%w: pricing lookup", ErrIncorrectOwner)
	}
	pricing, err := DeserializeExternalPrice(pricingAcc.Data)
	if err != nil {
		return err
	}
	if pricing.Key != RecordExternalPrice {
		return fmt.Errorf("%w: pricing lookup", ErrUninitializedRecord)
	}

	if mintAcc.Owner != types.TokenProgramID {
		return fmt.Errorf("%w: fraction mint", ErrIncorrectOwner)
	}
	mint, err := token.DeserializeMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("%w: fraction mint", ErrInvalidAccountData)
	}
	if mint.Supply != 0 {
		return ErrVaultMintNotEmpty
	}
	if !mint.MintAuthority.IsSome || mint.MintAuthority.Value != vaultAcc.Pubkey {
		return fmt.Errorf("%w: fraction mint authority", ErrVaultAuthorityNotVault)
	}
	if !mint.FreezeAuthority.IsSome || mint.FreezeAuthority.Value != vaultAcc.Pubkey {
		return fmt.Errorf("%w: fraction mint freeze authority", ErrVaultAuthorityNotVault)
	}

	redeem, err := loadTokenAccount(redeemAcc, "redeem treasury")
	if err != nil {
		return err
	}
	if err := checkEmptyTreasury(redeem, vaultAcc.Pubkey, "redeem treasury"); err != nil {
		return err
	}
	if redeem.Mint == mintAcc.Pubkey {
		return ErrSharedFractionMint
	}
	if redeem.Mint != pricing.PriceMint {
		return ErrRedeemTreasuryMintMismatch
	}

	fraction, err := loadTokenAccount(fractionAcc, "fraction treasury")
	if err != nil {
		return err
	}
	if err := checkEmptyTreasury(fraction, vaultAcc.Pubkey, "fraction treasury"); err != nil {
		return err
	}
	if fraction.Mint != mintAcc.Pubkey {
		return ErrFractionTreasuryMintMismatch
	}

	record := &Vault{
		Key:                       RecordVault,
		FractionMint:              mintAcc.Pubkey,
		Authority:                 authorityAcc.Pubkey,
		FractionTreasury:          fractionAcc.Pubkey,
		RedeemTreasury:            redeemAcc.Pubkey,
		AllowFurtherShareCreation: inst.AllowFurtherShareCreation,
		PricingLookup:             pricingAcc.Pubkey,
		TokenTypeCount:            0,
		State:                     VaultInactive,
		LockedPricePerShare:       0,
	}
	copy(vaultAcc.Data, record.Serialize())

	ctx.Log("Initialized vault %s", vaultAcc.Pubkey)
	return nil
}

// handleAddToken moves tokens from a source account into a vault-owned
// store and records the store in a fresh safety deposit box. Only an
// inactive vault accepts deposits.
// Account layout:
//
//	[0] safety deposit box (writable)
//	[1] source token account (writable)
//	[2] store token account (writable)
//	[3] vault account (writable)
//	[4] vault authority (signer)
//	[5] transfer authority (signer, source owner)
func (p *VaultProgram) handleAddToken(ctx *runtime.ExecutionContext, inst *AddTokenInstruction) error {
	if ctx.AccountCount() < 6 {
		return fmt.Errorf("%w: AddTokenToInactiveVault requires 6 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	boxAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	sourceAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	storeAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	vaultAcc, err := ctx.GetAccountByIndex(3)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(4)
	if err != nil {
		return err
	}
	transferAcc, err := ctx.GetAccountByIndex(5)
	if err != nil {
		return err
	}
	for _, w := range []struct {
		acc   *runtime.KeyedAccount
		label string
	}{
		{boxAcc, "safety deposit box"},
		{sourceAcc, "source token account"},
		{storeAcc, "store token account"},
		{vaultAcc, "vault account"},
	} {
		if !w.acc.IsWritable {
			return fmt.Errorf("%w: %s", ErrAccountNotWritable, w.label)
		}
	}

	v, err := p.loadVault(vaultAcc)
	if err != nil {
		return err
	}
	if v.State != VaultInactive {
		return ErrVaultShouldBeInactive
	}
	if err := checkVaultAuthority(v, authorityAcc); err != nil {
		return err
	}

	if boxAcc.Owner != p.programID {
		return fmt.Errorf("%w: safety deposit box", ErrIncorrectOwner)
	}
	if len(boxAcc.Data) != SafetyDepositSize {
		return fmt.Errorf("%w: safety deposit record must be %d bytes",
			ErrInvalidAccountData, SafetyDepositSize)
	}
	if boxAcc.Data[0] != RecordUninitialized {
		return fmt.Errorf("%w: safety deposit box", ErrAlreadyInitialized)
	}

	source, err := loadTokenAccount(sourceAcc, "source token account")
	if err != nil {
		return err
	}
	if source.Amount == 0 {
		return ErrNoTokens
	}
	if source.Amount < inst.Amount {
		return ErrInsufficientTokens
	}
	if transferAcc.Pubkey != source.Owner {
		return fmt.Errorf("%w: transfer authority", ErrOwnerMismatch)
	}
	if !transferAcc.IsSigner {
		return fmt.Errorf("%w: transfer authority", ErrMissingRequiredSignature)
	}

	store, err := loadTokenAccount(storeAcc, "store token account")
	if err != nil {
		return err
	}
	if store.Amount != 0 {
		return ErrStoreNotEmpty
	}
	if store.Delegate.IsSome {
		return fmt.Errorf("%w: store token account", ErrDelegateSet)
	}
	if store.CloseAuthority.IsSome {
		return fmt.Errorf("%w: store token account", ErrCloseAuthoritySet)
	}
	if store.Owner != vaultAcc.Pubkey {
		return fmt.Errorf("%w: store token account", ErrVaultAuthorityNotVault)
	}
	if store.Mint != source.Mint {
		return ErrMintMismatch
	}

	if v.TokenTypeCount == ^uint8(0) {
		return fmt.Errorf("%w: token type count", ErrOverflow)
	}

	source.Amount -= inst.Amount
	store.Amount = inst.Amount

	box := &SafetyDepositBox{
		Key:       RecordSafetyDeposit,
		Vault:     vaultAcc.Pubkey,
		TokenMint: source.Mint,
		Store:     storeAcc.Pubkey,
		Order:     v.TokenTypeCount,
	}
	v.TokenTypeCount++

	copy(sourceAcc.Data, source.Serialize())
	copy(storeAcc.Data, store.Serialize())
	copy(boxAcc.Data, box.Serialize())
	copy(vaultAcc.Data, v.Serialize())

	ctx.Log("Deposited %d tokens of mint %s into vault %s",
		inst.Amount, source.Mint, vaultAcc.Pubkey)
	return nil
}

// handleActivateVault mints the initial share supply into the fraction
// treasury and moves the vault to the active state.
// Account layout:
//
//	[0] vault account (writable)
//	[1] fraction mint (writable)
//	[2] fraction treasury (writable)
//	[3] vault authority (signer)
func (p *VaultProgram) handleActivateVault(ctx *runtime.ExecutionContext, inst *ActivateVaultInstruction) error {
	if ctx.AccountCount() < 4 {
		return fmt.Errorf("%w: ActivateVault requires 4 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	vaultAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	mintAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	treasuryAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(3)
	if err != nil {
		return err
	}
	for _, w := range []struct {
		acc   *runtime.KeyedAccount
		label string
	}{
		{vaultAcc, "vault account"},
		{mintAcc, "fraction mint"},
		{treasuryAcc, "fraction treasury"},
	} {
		if !w.acc.IsWritable {
			return fmt.Errorf("%w: %s", ErrAccountNotWritable, w.label)
		}
	}

	v, err := p.loadVault(vaultAcc)
	if err != nil {
		return err
	}
	if v.State != VaultInactive {
		return ErrVaultShouldBeInactive
	}
	if err := checkVaultAuthority(v, authorityAcc); err != nil {
		return err
	}
	if mintAcc.Pubkey != v.FractionMint {
		return fmt.Errorf("%w: fraction mint", ErrVaultMismatch)
	}
	if treasuryAcc.Pubkey != v.FractionTreasury {
		return fmt.Errorf("%w: fraction treasury", ErrVaultMismatch)
	}

	if mintAcc.Owner != types.TokenProgramID {
		return fmt.Errorf("%w: fraction mint", ErrIncorrectOwner)
	}
	mint, err := token.DeserializeMint(mintAcc.Data)
	if err != nil {
		return fmt.Errorf("%w: fraction mint", ErrInvalidAccountData)
	}
	treasury, err := loadTokenAccount(treasuryAcc, "fraction treasury")
	if err != nil {
		return err
	}

	supply, err := checkedAdd(mint.Supply, inst.NumberOfShares)
	if err != nil {
		return fmt.Errorf("%w: fraction mint supply", ErrOverflow)
	}
	amount, err := checkedAdd(treasury.Amount, inst.NumberOfShares)
	if err != nil {
		return fmt.Errorf("%w: fraction treasury balance", ErrOverflow)
	}
	mint.Supply = supply
	treasury.Amount = amount
	v.State = VaultActive

	copy(mintAcc.Data, mint.Serialize())
	copy(treasuryAcc.Data, treasury.Serialize())
	copy(vaultAcc.Data, v.Serialize())

	ctx.Log("Activated vault %s with %d shares", vaultAcc.Pubkey, inst.NumberOfShares)
	return nil
}

// handleCombineVault locks the share price from the pricing lookup,
// hands the vault to a new authority, and moves it to the combined
// state. The pricing lookup must allow combining.
// Account layout:
//
//	[0] vault account (writable)
//	[1] pricing lookup (external price account)
//	[2] new authority
//	[3] vault authority (signer)
func (p *VaultProgram) handleCombineVault(ctx *runtime.ExecutionContext) error {
	if ctx.AccountCount() < 4 {
		return fmt.Errorf("%w: CombineVault requires 4 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	vaultAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	pricingAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	newAuthorityAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	authorityAcc, err := ctx.GetAccountByIndex(3)
	if err != nil {
		return err
	}
	if !vaultAcc.IsWritable {
		return fmt.Errorf("%w: vault account", ErrAccountNotWritable)
	}

	v, err := p.loadVault(vaultAcc)
	if err != nil {
		return err
	}
	if v.State != VaultActive {
		return ErrVaultShouldBeActive
	}
	if err := checkVaultAuthority(v, authorityAcc); err != nil {
		return err
	}
	if pricingAcc.Pubkey != v.PricingLookup {
		return fmt.Errorf("%w: pricing lookup", ErrVaultMismatch)
	}
	if pricingAcc.Owner != p.programID {
		return fmt.Errorf("%w: pricing lookup", ErrIncorrectOwner)
	}
	pricing, err := DeserializeExternalPrice(pricingAcc.Data)
	if err != nil {
		return err
	}
	if pricing.Key != RecordExternalPrice {
		return fmt.Errorf("%w: pricing lookup", ErrUninitializedRecord)
	}
	if !pricing.AllowedToCombine {
		return ErrCombineNotAllowed
	}

	v.LockedPricePerShare = pricing.PricePerShare
	v.Authority = newAuthorityAcc.Pubkey
	v.State = VaultCombined
	copy(vaultAcc.Data, v.Serialize())

	ctx.Log("Combined vault %s at price %d per share", vaultAcc.Pubkey, pricing.PricePerShare)
	return nil
}
