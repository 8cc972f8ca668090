package token

import (
	"encoding/binary"
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Token Program instruction discriminators (first byte of instruction data)
const (
	InstructionInitializeMint     uint8 = 0
	InstructionInitializeAccount  uint8 = 1
	InstructionInitializeMultisig uint8 = 2
	InstructionTransfer           uint8 = 3
	InstructionApprove            uint8 = 4
	InstructionRevoke             uint8 = 5
	InstructionSetAuthority       uint8 = 6
	InstructionMintTo             uint8 = 7
	InstructionBurn               uint8 = 8
	InstructionCloseAccount       uint8 = 9
	InstructionFreezeAccount      uint8 = 10
	InstructionThawAccount        uint8 = 11
	InstructionTransferChecked    uint8 = 12
	InstructionApproveChecked     uint8 = 13
	InstructionMintToChecked      uint8 = 14
	InstructionBurnChecked        uint8 = 15
	InstructionInitializeAccount2 uint8 = 16
	InstructionSyncNative         uint8 = 17
	InstructionInitializeAccount3 uint8 = 18
	InstructionInitializeMint2    uint8 = 20
)

// Authority types for the SetAuthority instruction
const (
	AuthorityTypeMintTokens    uint8 = 0
	AuthorityTypeFreezeAccount uint8 = 1
	AuthorityTypeAccountOwner  uint8 = 2
	AuthorityTypeCloseAccount  uint8 = 3
)

// InitializeMintInstruction carries the parameters of InitializeMint and
// InitializeMint2.
//
// Data layout: decimals (1) + mint_authority (32) + name_len (1) + name +
// symbol_len (1) + symbol + freeze_authority tag (1) [+ freeze_authority
// (32)].
type InitializeMintInstruction struct {
	Decimals        uint8
	MintAuthority   types.Pubkey
	Name            []byte
	Symbol          []byte
	FreezeAuthority *types.Pubkey
}

// Decode decodes an InitializeMint instruction from bytes.
func (inst *InitializeMintInstruction) Decode(data []byte) error {
	if len(data) < 34 {
		return fmt.Errorf("%w: InitializeMint requires at least 34 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}

	inst.Decimals = data[0]
	copy(inst.MintAuthority[:], data[1:33])
	offset := 33

	nameLen := int(data[offset])
	offset++
	if nameLen > MaxNameLength {
		return fmt.Errorf("%w: name exceeds %d bytes", ErrInvalidArgument, MaxNameLength)
	}
	if offset+nameLen > len(data) {
		return fmt.Errorf("%w: truncated mint name", ErrInvalidInstructionData)
	}
	inst.Name = append([]byte(nil), data[offset:offset+nameLen]...)
	offset += nameLen

	if offset >= len(data) {
		return fmt.Errorf("%w: truncated mint symbol", ErrInvalidInstructionData)
	}
	symbolLen := int(data[offset])
	offset++
	if symbolLen > MaxSymbolLength {
		return fmt.Errorf("%w: symbol exceeds %d bytes", ErrInvalidArgument, MaxSymbolLength)
	}
	if offset+symbolLen > len(data) {
		return fmt.Errorf("%w: truncated mint symbol", ErrInvalidInstructionData)
	}
	inst.Symbol = append([]byte(nil), data[offset:offset+symbolLen]...)
	offset += symbolLen

	if offset >= len(data) {
		return fmt.Errorf("%w: truncated freeze authority", ErrInvalidInstructionData)
	}
	switch data[offset] {
	case 0:
		inst.FreezeAuthority = nil
	case 1:
		if offset+33 > len(data) {
			return fmt.Errorf("%w: truncated freeze authority", ErrInvalidInstructionData)
		}
		freezeAuth := types.Pubkey{}
		copy(freezeAuth[:], data[offset+1:offset+33])
		inst.FreezeAuthority = &freezeAuth
	default:
		return fmt.Errorf("%w: invalid freeze authority tag", ErrInvalidInstructionData)
	}

	return nil
}

// Encode encodes an InitializeMint instruction to bytes.
func (inst *InitializeMintInstruction) Encode() []byte {
	data := []byte{InstructionInitializeMint, inst.Decimals}
	data = append(data, inst.MintAuthority[:]...)
	data = append(data, byte(len(inst.Name)))
	data = append(data, inst.Name...)
	data = append(data, byte(len(inst.Symbol)))
	data = append(data, inst.Symbol...)
	if inst.FreezeAuthority != nil {
		data = append(data, 1)
		data = append(data, inst.FreezeAuthority[:]...)
	} else {
		data = append(data, 0)
	}
	return data
}

// InitializeAccountInstruction carries no data; the accounts provide all
// parameters.
type InitializeAccountInstruction struct{}

// Decode decodes an InitializeAccount instruction from bytes.
func (inst *InitializeAccountInstruction) Decode(_ []byte) error {
	return nil
}

// Encode encodes an InitializeAccount instruction to bytes.
func (inst *InitializeAccountInstruction) Encode() []byte {
	return []byte{InstructionInitializeAccount}
}

// InitializeAccount2Instruction carries the owner in instruction data
// instead of an account position.
type InitializeAccount2Instruction struct {
	Owner types.Pubkey
}

// Decode decodes an InitializeAccount2 instruction from bytes.
func (inst *InitializeAccount2Instruction) Decode(data []byte) error {
	if len(data) < 32 {
		return fmt.Errorf("%w: InitializeAccount2 requires 32 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	copy(inst.Owner[:], data[0:32])
	return nil
}

// Encode encodes an InitializeAccount2 instruction to bytes.
func (inst *InitializeAccount2Instruction) Encode() []byte {
	data := make([]byte, 33)
	data[0] = InstructionInitializeAccount2
	copy(data[1:33], inst.Owner[:])
	return data
}

// InitializeMultisigInstruction carries the required signer threshold.
type InitializeMultisigInstruction struct {
	M uint8
}

// Decode decodes an InitializeMultisig instruction from bytes.
func (inst *InitializeMultisigInstruction) Decode(data []byte) error {
	if len(data) < 1 {
		return fmt.Errorf("%w: InitializeMultisig requires 1 byte, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.M = data[0]
	return nil
}

// Encode encodes an InitializeMultisig instruction to bytes.
func (inst *InitializeMultisigInstruction) Encode() []byte {
	return []byte{InstructionInitializeMultisig, inst.M}
}

// TransferInstruction carries the transfer amount.
type TransferInstruction struct {
	Amount uint64
}

// Decode decodes a Transfer instruction from bytes.
func (inst *TransferInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Transfer requires 8 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a Transfer instruction to bytes.
func (inst *TransferInstruction) Encode() []byte {
	data := make([]byte, 9)
	data[0] = InstructionTransfer
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// ApproveInstruction carries the delegated allowance.
type ApproveInstruction struct {
	Amount uint64
}

// Decode decodes an Approve instruction from bytes.
func (inst *ApproveInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Approve requires 8 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes an Approve instruction to bytes.
func (inst *ApproveInstruction) Encode() []byte {
	data := make([]byte, 9)
	data[0] = InstructionApprove
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// SetAuthorityInstruction selects an authority slot and its new value.
//
// Data layout: authority_type (1) + option tag (1) [+ new_authority (32)].
type SetAuthorityInstruction struct {
	AuthorityType uint8
	NewAuthority  *types.Pubkey
}

// Decode decodes a SetAuthority instruction from bytes.
func (inst *SetAuthorityInstruction) Decode(data []byte) error {
	if len(data) < 2 {
		return fmt.Errorf("%w: SetAuthority requires at least 2 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.AuthorityType = data[0]
	switch data[1] {
	case 0:
		inst.NewAuthority = nil
	case 1:
		if len(data) < 34 {
			return fmt.Errorf("%w: truncated new authority", ErrInvalidInstructionData)
		}
		auth := types.Pubkey{}
		copy(auth[:], data[2:34])
		inst.NewAuthority = &auth
	default:
		return fmt.Errorf("%w: invalid new authority tag", ErrInvalidInstructionData)
	}
	return nil
}

// Encode encodes a SetAuthority instruction to bytes.
func (inst *SetAuthorityInstruction) Encode() []byte {
	data := []byte{InstructionSetAuthority, inst.AuthorityType}
	if inst.NewAuthority != nil {
		data = append(data, 1)
		data = append(data, inst.NewAuthority[:]...)
	} else {
		data = append(data, 0)
	}
	return data
}

// MintToInstruction carries the mint amount.
type MintToInstruction struct {
	Amount uint64
}

// Decode decodes a MintTo instruction from bytes.
func (inst *MintToInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: MintTo requires 8 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a MintTo instruction to bytes.
func (inst *MintToInstruction) Encode() []byte {
	data := make([]byte, 9)
	data[0] = InstructionMintTo
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// BurnInstruction carries the burn amount.
type BurnInstruction struct {
	Amount uint64
}

// Decode decodes a Burn instruction from bytes.
func (inst *BurnInstruction) Decode(data []byte) error {
	if len(data) < 8 {
		return fmt.Errorf("%w: Burn requires 8 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	return nil
}

// Encode encodes a Burn instruction to bytes.
func (inst *BurnInstruction) Encode() []byte {
	data := make([]byte, 9)
	data[0] = InstructionBurn
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	return data
}

// TransferCheckedInstruction carries the amount and expected mint decimals.
type TransferCheckedInstruction struct {
	Amount   uint64
	Decimals uint8
}

// Decode decodes a TransferChecked instruction from bytes.
func (inst *TransferCheckedInstruction) Decode(data []byte) error {
	if len(data) < 9 {
		return fmt.Errorf("%w: TransferChecked requires 9 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	inst.Decimals = data[8]
	return nil
}

// Encode encodes a TransferChecked instruction to bytes.
func (inst *TransferCheckedInstruction) Encode() []byte {
	data := make([]byte, 10)
	data[0] = InstructionTransferChecked
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	data[9] = inst.Decimals
	return data
}

// ApproveCheckedInstruction carries the allowance and expected mint decimals.
type ApproveCheckedInstruction struct {
	Amount   uint64
	Decimals uint8
}

// Decode decodes an ApproveChecked instruction from bytes.
func (inst *ApproveCheckedInstruction) Decode(data []byte) error {
	if len(data) < 9 {
		return fmt.Errorf("%w: ApproveChecked requires 9 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	inst.Decimals = data[8]
	return nil
}

// Encode encodes an ApproveChecked instruction to bytes.
func (inst *ApproveCheckedInstruction) Encode() []byte {
	data := make([]byte, 10)
	data[0] = InstructionApproveChecked
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	data[9] = inst.Decimals
	return data
}

// MintToCheckedInstruction carries the amount and expected mint decimals.
type MintToCheckedInstruction struct {
	Amount   uint64
	Decimals uint8
}

// Decode decodes a MintToChecked instruction from bytes.
func (inst *MintToCheckedInstruction) Decode(data []byte) error {
	if len(data) < 9 {
		return fmt.Errorf("%w: MintToChecked requires 9 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	inst.Decimals = data[8]
	return nil
}

// Encode encodes a MintToChecked instruction to bytes.
func (inst *MintToCheckedInstruction) Encode() []byte {
	data := make([]byte, 10)
	data[0] = InstructionMintToChecked
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	data[9] = inst.Decimals
	return data
}

// BurnCheckedInstruction carries the amount and expected mint decimals.
type BurnCheckedInstruction struct {
	Amount   uint64
	Decimals uint8
}

// Decode decodes a BurnChecked instruction from bytes.
func (inst *BurnCheckedInstruction) Decode(data []byte) error {
	if len(data) < 9 {
		return fmt.Errorf("%w: BurnChecked requires 9 bytes, got %d",
			ErrInvalidInstructionData, len(data))
	}
	inst.Amount = binary.LittleEndian.Uint64(data[0:8])
	inst.Decimals = data[8]
	return nil
}

// Encode encodes a BurnChecked instruction to bytes.
func (inst *BurnCheckedInstruction) Encode() []byte {
	data := make([]byte, 10)
	data[0] = InstructionBurnChecked
	binary.LittleEndian.PutUint64(data[1:9], inst.Amount)
	data[9] = inst.Decimals
	return data
}

// ParseInstructionDiscriminator returns the instruction tag byte.
func ParseInstructionDiscriminator(data []byte) (uint8, error) {
	if len(data) < 1 {
		return 0, fmt.Errorf("%w: empty instruction data", ErrInvalidInstructionData)
	}
	return data[0], nil
}
