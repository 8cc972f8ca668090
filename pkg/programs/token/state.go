package token

import (
	"encoding/binary"
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Packed record sizes. These are persisted formats read directly from
// account storage by clients and indexers, so they are wire-frozen.
const (
	// MintSize is the size of a packed Mint record.
	MintSize = 124

	// TokenAccountSize is the size of a packed TokenAccount record.
	TokenAccountSize = 165

	// MultisigSize is the size of a packed Multisig record.
	MultisigSize = 355

	// MaxNameLength is the fixed width of a mint's name field.
	MaxNameLength = 32

	// MaxSymbolLength is the fixed width of a mint's symbol field.
	MaxSymbolLength = 10
)

// Multisig signer limits
const (
	MinSigners = 1
	MaxSigners = 11
)

// Account state enum values
const (
	AccountStateUninitialized uint8 = 0
	AccountStateInitialized   uint8 = 1
	AccountStateFrozen        uint8 = 2
)

// COption is an optional pubkey packed as a 4-byte tag plus 32-byte body.
type COption struct {
	IsSome bool
	Value  types.Pubkey
}

// COptionU64 is an optional u64 packed as a 4-byte tag plus 8-byte body.
type COptionU64 struct {
	IsSome bool
	Value  uint64
}

// Mint describes a token type.
//
// Layout (124 bytes):
//   - mint_authority: COption<Pubkey> (36 bytes)
//   - name: 32 bytes, NUL right-padded
//   - symbol: 10 bytes, NUL right-padded
//   - supply: u64 (8 bytes)
//   - decimals: u8 (1 byte)
//   - is_initialized: bool (1 byte)
//   - freeze_authority: COption<Pubkey> (36 bytes)
type Mint struct {
	MintAuthority   COption
	Name            [MaxNameLength]byte
	Symbol          [MaxSymbolLength]byte
	Supply          uint64
	Decimals        uint8
	IsInitialized   bool
	FreezeAuthority COption
}

// TokenAccount holds a balance of one mint.
//
// Layout (165 bytes):
//   - mint: Pubkey (32 bytes)
//   - owner: Pubkey (32 bytes)
//   - amount: u64 (8 bytes)
//   - delegate: COption<Pubkey> (36 bytes)
//   - state: u8 (1 byte)
//   - is_native: COption<u64> (12 bytes)
//   - delegated_amount: u64 (8 bytes)
//   - close_authority: COption<Pubkey> (36 bytes)
type TokenAccount struct {
	Mint            types.Pubkey
	Owner           types.Pubkey
	Amount          uint64
	Delegate        COption
	State           uint8
	IsNative        COptionU64
	DelegatedAmount uint64
	CloseAuthority  COption
}

// Multisig is an M-of-N threshold signer set.
//
// Layout (355 bytes):
//   - m: u8 (1 byte) - required signer threshold
//   - n: u8 (1 byte) - registered signer count
//   - is_initialized: bool (1 byte)
//   - signers: 11 x 32 bytes
type Multisig struct {
	M             uint8
	N             uint8
	IsInitialized bool
	Signers       [MaxSigners]types.Pubkey
}

// DeserializeMint unpacks a Mint record. The buffer must be exactly
// MintSize bytes.
func DeserializeMint(data []byte) (*Mint, error) {
	if len(data) != MintSize {
		return nil, fmt.Errorf("%w: mint record must be %d bytes, got %d",
			ErrInvalidAccountData, MintSize, len(data))
	}

	mint := &Mint{}
	offset := 0

	var err error
	mint.MintAuthority, offset, err = deserializeCOption(data, offset)
	if err != nil {
		return nil, err
	}

	copy(mint.Name[:], data[offset:offset+MaxNameLength])
	offset += MaxNameLength

	copy(mint.Symbol[:], data[offset:offset+MaxSymbolLength])
	offset += MaxSymbolLength

	mint.Supply = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	mint.Decimals = data[offset]
	offset++

	mint.IsInitialized = data[offset] != 0
	offset++

	mint.FreezeAuthority, _, err = deserializeCOption(data, offset)
	if err != nil {
		return nil, err
	}

	return mint, nil
}

// Serialize packs the Mint into its fixed-width form.
func (m *Mint) Serialize() []byte {
	data := make([]byte, MintSize)
	offset := 0

	offset = serializeCOption(data, offset, m.MintAuthority)

	copy(data[offset:offset+MaxNameLength], m.Name[:])
	offset += MaxNameLength

	copy(data[offset:offset+MaxSymbolLength], m.Symbol[:])
	offset += MaxSymbolLength

	binary.LittleEndian.PutUint64(data[offset:offset+8], m.Supply)
	offset += 8

	data[offset] = m.Decimals
	offset++

	if m.IsInitialized {
		data[offset] = 1
	}
	offset++

	serializeCOption(data, offset, m.FreezeAuthority)

	return data
}

// NameString returns the mint name with NUL padding trimmed.
func (m *Mint) NameString() string {
	return trimPadding(m.Name[:])
}

// SymbolString returns the mint symbol with NUL padding trimmed.
func (m *Mint) SymbolString() string {
	return trimPadding(m.Symbol[:])
}

func trimPadding(b []byte) string {
	end := len(b)
	for end > 0 && b[end-1] == 0 {
		end--
	}
	return string(b[:end])
}

// DeserializeTokenAccount unpacks a TokenAccount record. The buffer must
// be exactly TokenAccountSize bytes.
func DeserializeTokenAccount(data []byte) (*TokenAccount, error) {
	if len(data) != TokenAccountSize {
		return nil, fmt.Errorf("%w: token account record must be %d bytes, got %d",
			ErrInvalidAccountData, TokenAccountSize, len(data))
	}

	account := &TokenAccount{}
	offset := 0

	copy(account.Mint[:], data[offset:offset+32])
	offset += 32

	copy(account.Owner[:], data[offset:offset+32])
	offset += 32

	account.Amount = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	var err error
	account.Delegate, offset, err = deserializeCOption(data, offset)
	if err != nil {
		return nil, err
	}

	account.State = data[offset]
	offset++

	account.IsNative, offset, err = deserializeCOptionU64(data, offset)
	if err != nil {
		return nil, err
	}

	account.DelegatedAmount = binary.LittleEndian.Uint64(data[offset : offset+8])
	offset += 8

	account.CloseAuthority, _, err = deserializeCOption(data, offset)
	if err != nil {
		return nil, err
	}

	return account, nil
}

// Serialize packs the TokenAccount into its fixed-width form.
func (a *TokenAccount) Serialize() []byte {
	data := make([]byte, TokenAccountSize)
	offset := 0

	copy(data[offset:offset+32], a.Mint[:])
	offset += 32

	copy(data[offset:offset+32], a.Owner[:])
	offset += 32

	binary.LittleEndian.PutUint64(data[offset:offset+8], a.Amount)
	offset += 8

	offset = serializeCOption(data, offset, a.Delegate)

	data[offset] = a.State
	offset++

	offset = serializeCOptionU64(data, offset, a.IsNative)

	binary.LittleEndian.PutUint64(data[offset:offset+8], a.DelegatedAmount)
	offset += 8

	serializeCOption(data, offset, a.CloseAuthority)

	return data
}

// IsFrozen returns true if the account is frozen.
func (a *TokenAccount) IsFrozen() bool {
	return a.State == AccountStateFrozen
}

// IsNativeAccount returns true if this is a wrapped native account.
func (a *TokenAccount) IsNativeAccount() bool {
	return a.IsNative.IsSome
}

// DeserializeMultisig unpacks a Multisig record. The buffer must be
// exactly MultisigSize bytes.
func DeserializeMultisig(data []byte) (*Multisig, error) {
	if len(data) != MultisigSize {
		return nil, fmt.Errorf("%w: multisig record must be %d bytes, got %d",
			ErrInvalidAccountData, MultisigSize, len(data))
	}

	ms := &Multisig{}
	ms.M = data[0]
	ms.N = data[1]
	ms.IsInitialized = data[2] != 0

	offset := 3
	for i := 0; i < MaxSigners; i++ {
		copy(ms.Signers[i][:], data[offset:offset+32])
		offset += 32
	}

	return ms, nil
}

// Serialize packs the Multisig into its fixed-width form.
func (ms *Multisig) Serialize() []byte {
	data := make([]byte, MultisigSize)
	data[0] = ms.M
	data[1] = ms.N
	if ms.IsInitialized {
		data[2] = 1
	}

	offset := 3
	for i := 0; i < MaxSigners; i++ {
		copy(data[offset:offset+32], ms.Signers[i][:])
		offset += 32
	}

	return data
}

// deserializeCOption reads a COption<Pubkey> at offset. Only tags 0 and 1
// are valid; anything else is a hard decode failure.
func deserializeCOption(data []byte, offset int) (COption, int, error) {
	opt := COption{}
	tag := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4

	switch tag {
	case 0:
	case 1:
		opt.IsSome = true
		copy(opt.Value[:], data[offset:offset+32])
	default:
		return COption{}, offset, fmt.Errorf("%w: invalid option tag %d", ErrInvalidAccountData, tag)
	}
	offset += 32

	return opt, offset, nil
}

// serializeCOption writes a COption<Pubkey> at offset and returns the new
// offset. A None body is all zeros.
func serializeCOption(data []byte, offset int, opt COption) int {
	if opt.IsSome {
		binary.LittleEndian.PutUint32(data[offset:offset+4], 1)
		copy(data[offset+4:offset+36], opt.Value[:])
	}
	return offset + 36
}

// deserializeCOptionU64 reads a COption<u64> at offset with the same
// strict tag rule as deserializeCOption.
func deserializeCOptionU64(data []byte, offset int) (COptionU64, int, error) {
	opt := COptionU64{}
	tag := binary.LittleEndian.Uint32(data[offset : offset+4])
	offset += 4

	switch tag {
	case 0:
	case 1:
		opt.IsSome = true
		opt.Value = binary.LittleEndian.Uint64(data[offset : offset+8])
	default:
		return COptionU64{}, offset, fmt.Errorf("%w: invalid option tag %d", ErrInvalidAccountData, tag)
	}
	offset += 8

	return opt, offset, nil
}

// serializeCOptionU64 writes a COption<u64> at offset and returns the new
// offset.
func serializeCOptionU64(data []byte, offset int, opt COptionU64) int {
	if opt.IsSome {
		binary.LittleEndian.PutUint32(data[offset:offset+4], 1)
		binary.LittleEndian.PutUint64(data[offset+4:offset+12], opt.Value)
	}
	return offset + 12
}

// NewMint creates an initialized Mint. Name and symbol are stored NUL
// right-padded to their fixed widths.
func NewMint(decimals uint8, name, symbol []byte, mintAuthority *types.Pubkey, freezeAuthority *types.Pubkey) *Mint {
	mint := &Mint{
		Supply:        0,
		Decimals:      decimals,
		IsInitialized: true,
	}
	copy(mint.Name[:], name)
	copy(mint.Symbol[:], symbol)

	if mintAuthority != nil {
		mint.MintAuthority = COption{IsSome: true, Value: *mintAuthority}
	}
	if freezeAuthority != nil {
		mint.FreezeAuthority = COption{IsSome: true, Value: *freezeAuthority}
	}

	return mint
}

// NewTokenAccount creates an initialized TokenAccount with a zero balance.
func NewTokenAccount(mint types.Pubkey, owner types.Pubkey) *TokenAccount {
	return &TokenAccount{
		Mint:   mint,
		Owner:  owner,
		Amount: 0,
		State:  AccountStateInitialized,
	}
}
