package vault

import (
	"encoding/binary"
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Packed record sizes. Persisted formats, wire-frozen like the token
// program's records.
const (
	// VaultSize is the size of a packed Vault record. The trailing byte
	// is reserved padding kept for layout compatibility.
	VaultSize = 173

	// SafetyDepositSize is the size of a packed SafetyDepositBox record.
	SafetyDepositSize = 98

	// ExternalPriceSize is the size of a packed ExternalPriceAccount record.
	ExternalPriceSize = 42
)

// Record kind discriminators (first byte of every vault-owned record).
const (
	RecordUninitialized uint8 = 0
	RecordSafetyDeposit uint8 = 1
	RecordExternalPrice uint8 = 2
	RecordVault         uint8 = 3
)

// Vault lifecycle states.
const (
	VaultInactive    uint8 = 0
	VaultActive      uint8 = 1
	VaultCombined    uint8 = 2
	VaultDeactivated uint8 = 3
)

// Vault fractionalizes a set of token stores into shares of one mint.
//
// Layout (173 bytes):
//   - key: u8 (record kind)
//   - fraction_mint: Pubkey (32 bytes)
//   - authority: Pubkey (32 bytes)
//   - fraction_treasury: Pubkey (32 bytes)
//   - redeem_treasury: Pubkey (32 bytes)
//   - allow_further_share_creation: bool (1 byte)
//   - pricing_lookup: Pubkey (32 bytes)
//   - token_type_count: u8 (1 byte)
//   - state: u8 (1 byte)
//   - locked_price_per_share: u64 (8 bytes)
//   - reserved: 1 byte
type Vault struct {
	Key                       uint8
	FractionMint              types.Pubkey
	Authority                 types.Pubkey
	FractionTreasury          types.Pubkey
	RedeemTreasury            types.Pubkey
	AllowFurtherShareCreation bool
	PricingLookup             types.Pubkey
	TokenTypeCount            uint8
	State                     uint8
	LockedPricePerShare       uint64
}

// SafetyDepositBox binds one token store to its parent vault.
//
// Layout (98 bytes):
//   - key: u8 (record kind)
//   - vault: Pubkey (32 bytes)
//   - token_mint: Pubkey (32 bytes)
//   - store: Pubkey (32 bytes)
//   - order: u8 (1 byte)
type SafetyDepositBox struct {
	Key       uint8
	Vault     types.Pubkey
	TokenMint types.Pubkey
	Store     types.Pubkey
	Order     uint8
}

// ExternalPriceAccount quotes the share price and gates combining.
//
// Layout (42 bytes):
//   - key: u8 (record kind)
//   - price_per_share: u64 (8 bytes)
//   - price_mint: Pubkey (32 bytes)
//   - allowed_to_combine: bool (1 byte)
type ExternalPriceAccount struct {
	Key              uint8
	PricePerShare    uint64
	PriceMint        types.Pubkey
	AllowedToCombine bool
}

// DeserializeVault unpacks a Vault record. The buffer must be exactly
// VaultSize bytes.
func DeserializeVault(data []byte) (*Vault, error) {
	if len(data) != VaultSize {
		return nil, fmt.Errorf("%w: vault record must be %d bytes, got %d",
			ErrInvalidAccountData, VaultSize, len(data))
	}

	v := &Vault{Key: data[0]}
	copy(v.FractionMint[:], data[1:33])
	copy(v.Authority[:], data[33:65])
	copy(v.FractionTreasury[:], data[65:97])
	copy(v.RedeemTreasury[:], data[97:129])
	v.AllowFurtherShareCreation = data[129] != 0
	copy(v.PricingLookup[:], data[130:162])
	v.TokenTypeCount = data[162]
	v.State = data[163]
	v.LockedPricePerShare = binary.LittleEndian.Uint64(data[164:172])
	return v, nil
}

// Serialize packs the Vault record into VaultSize bytes.
func (v *Vault) Serialize() []byte {
	data := make([]byte, VaultSize)
	data[0] = v.Key
	copy(data[1:33], v.FractionMint[:])
	copy(data[33:65], v.Authority[:])
	copy(data[65:97], v.FractionTreasury[:])
	copy(data[97:129], v.RedeemTreasury[:])
	if v.AllowFurtherShareCreation {
		data[129] = 1
	}
	copy(data[130:162], v.PricingLookup[:])
	data[162] = v.TokenTypeCount
	data[163] = v.State
	binary.LittleEndian.PutUint64(data[164:172], v.LockedPricePerShare)
	return data
}

// DeserializeSafetyDeposit unpacks a SafetyDepositBox record. The buffer
// must be exactly SafetyDepositSize bytes.
func DeserializeSafetyDeposit(data []byte) (*SafetyDepositBox, error) {
	if len(data) != SafetyDepositSize {
		return nil, fmt.Errorf("%w: safety deposit record must be %d bytes, got %d",
			ErrInvalidAccountData, SafetyDepositSize, len(data))
	}

	box := &SafetyDepositBox{Key: data[0]}
	copy(box.Vault[:], data[1:33])
	copy(box.TokenMint[:], data[33:65])
	copy(box.Store[:], data[65:97])
	box.Order = data[97]
	return box, nil
}

// Serialize packs the SafetyDepositBox record into SafetyDepositSize bytes.
func (box *SafetyDepositBox) Serialize() []byte {
	data := make([]byte, SafetyDepositSize)
	data[0] = box.Key
	copy(data[1:33], box.Vault[:])
	copy(data[33:65], box.TokenMint[:])
	copy(data[65:97], box.Store[:])
	data[97] = box.Order
	return data
}

// DeserializeExternalPrice unpacks an ExternalPriceAccount record. The
// buffer must be exactly ExternalPriceSize bytes.
func DeserializeExternalPrice(data []byte) (*ExternalPriceAccount, error) {
	if len(data) != ExternalPriceSize {
		return nil, fmt.Errorf("%w: external price record must be %d bytes, got %d",
			ErrInvalidAccountData, ExternalPriceSize, len(data))
	}

	epa := &ExternalPriceAccount{Key: data[0]}
	epa.PricePerShare = binary.LittleEndian.Uint64(data[1:9])
	copy(epa.PriceMint[:], data[9:41])
	epa.AllowedToCombine = data[41] != 0
	return epa, nil
}

// Serialize packs the ExternalPriceAccount record into ExternalPriceSize
// bytes.
func (epa *ExternalPriceAccount) Serialize() []byte {
	data := make([]byte, ExternalPriceSize)
	data[0] = epa.Key
	binary.LittleEndian.PutUint64(data[1:9], epa.PricePerShare)
	copy(data[9:41], epa.PriceMint[:])
	if epa.AllowedToCombine {
		data[41] = 1
	}
	return data
}
