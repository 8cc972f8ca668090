package screg

import (
	"encoding/binary"
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/runtime"
	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Registry instruction discriminators (first byte of instruction data)
const (
	InstructionRegisterChain uint8 = 0
	InstructionUpvoteChain   uint8 = 1
	InstructionDownvoteChain uint8 = 2
)

// RegisterChainInstruction carries the registration parameters.
//
// Data layout: three optional strings (1 tag + 1 len + bytes each) for
// website, github, and contact email, then deposit (u64).
type RegisterChainInstruction struct {
	WebsiteURL   *string
	GithubURL    *string
	ContactEmail *string
	Deposit      uint64
}

// Decode decodes a RegisterChain instruction from bytes.
func (inst *RegisterChainInstruction) Decode(data []byte) error {
	offset := 0
	var err error
	if inst.WebsiteURL, offset, err = decodeOptionString(data, offset, MaxURLLength); err != nil {
		return err
	}
	if inst.GithubURL, offset, err = decodeOptionString(data, offset, MaxURLLength); err != nil {
		return err
	}
	if inst.ContactEmail, offset, err = decodeOptionString(data, offset, MaxEmailLength); err != nil {
		return err
	}
	if offset+8 > len(data) {
		return fmt.Errorf("%w: truncated deposit", ErrInvalidInstructionData)
	}
	inst.Deposit = binary.LittleEndian.Uint64(data[offset:])
	return nil
}

// Encode encodes a RegisterChain instruction to bytes.
func (inst *RegisterChainInstruction) Encode() []byte {
	data := []byte{InstructionRegisterChain}
	data = encodeOptionString(data, inst.WebsiteURL)
	data = encodeOptionString(data, inst.GithubURL)
	data = encodeOptionString(data, inst.ContactEmail)
	var deposit [8]byte
	binary.LittleEndian.PutUint64(deposit[:], inst.Deposit)
	return append(data, deposit[:]...)
}

func encodeOptionString(data []byte, s *string) []byte {
	if s == nil {
		return append(data, 0)
	}
	data = append(data, 1, byte(len(*s)))
	return append(data, *s...)
}

func decodeOptionString(data []byte, offset, max int) (*string, int, error) {
	if offset >= len(data) {
		return nil, offset, fmt.Errorf("%w: truncated option tag", ErrInvalidInstructionData)
	}
	switch data[offset] {
	case 0:
		return nil, offset + 1, nil
	case 1:
		if offset+2 > len(data) {
			return nil, offset, fmt.Errorf("%w: truncated string length", ErrInvalidInstructionData)
		}
		length := int(data[offset+1])
		if length > max {
			return nil, offset, fmt.Errorf("%w: string length %d exceeds %d",
				ErrInvalidInstructionData, length, max)
		}
		if offset+2+length > len(data) {
			return nil, offset, fmt.Errorf("%w: truncated string body", ErrInvalidInstructionData)
		}
		s := string(data[offset+2 : offset+2+length])
		return &s, offset + 2 + length, nil
	default:
		return nil, offset, fmt.Errorf("%w: invalid option tag", ErrInvalidInstructionData)
	}
}

// RegistryProgram implements the sidechain registry.
type RegistryProgram struct {
	programID types.Pubkey
}

// New creates a new RegistryProgram instance.
func New() *RegistryProgram {
	return &RegistryProgram{programID: types.ScRegistryProgramID}
}

// ID returns the registry program's public key.
func (p *RegistryProgram) ID() types.Pubkey {
	return p.programID
}

// Execute executes a registry instruction.
func (p *RegistryProgram) Execute(ctx *runtime.ExecutionContext) error {
	if len(ctx.InstructionData) < 1 {
		return fmt.Errorf("%w: empty instruction data", ErrInvalidInstructionData)
	}
	discriminator := ctx.InstructionData[0]
	data := ctx.InstructionData[1:]

	switch discriminator {
	case InstructionRegisterChain:
		var inst RegisterChainInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: RegisterChain")
		return handleRegisterChain(ctx, &inst)

	case InstructionUpvoteChain, InstructionDownvoteChain:
		// Voting is accepted but not yet tallied.
		return nil

	default:
		return fmt.Errorf("%w: unknown instruction %d", ErrInvalidInstructionData, discriminator)
	}
}

// handleRegisterChain registers a new sidechain and moves the deposit from
// the payer to the chain account.
// Account layout:
//
//	[0] fee payer (writable, signer)
//	[1] chain owner
//	[2] chain account (writable, signer)
func handleRegisterChain(ctx *runtime.ExecutionContext, inst *RegisterChainInstruction) error {
	if ctx.AccountCount() < 3 {
		return fmt.Errorf("%w: RegisterChain requires 3 accounts, got %d",
			ErrNotEnoughAccountKeys, ctx.AccountCount())
	}

	payerAcc, err := ctx.GetAccountByIndex(0)
	if err != nil {
		return err
	}
	ownerAcc, err := ctx.GetAccountByIndex(1)
	if err != nil {
		return err
	}
	chainAcc, err := ctx.GetAccountByIndex(2)
	if err != nil {
		return err
	}
	if !payerAcc.IsWritable {
		return fmt.Errorf("%w: payer account", ErrAccountNotWritable)
	}
	if !chainAcc.IsWritable {
		return fmt.Errorf("%w: chain account", ErrAccountNotWritable)
	}

	if len(chainAcc.Data) != SidechainRecordSize {
		return fmt.Errorf("%w: chain record must be %d bytes",
			ErrInvalidState, SidechainRecordSize)
	}
	existing, err := DeserializeSidechainRecord(chainAcc.Data)
	if err == nil && existing.IsInitialized {
		ctx.Log("Chain account already exists")
		return ErrChainAlreadyExists
	}

	if *payerAcc.Lamports < inst.Deposit {
		ctx.Log("Insufficient funds to create a deposit for the new chain")
		return ErrInsufficientFunds
	}
	if !payerAcc.IsSigner {
		ctx.Log("Payer account must be a signer")
		return ErrMissingRequiredSignature
	}
	if !chainAcc.IsSigner {
		ctx.Log("Chain account must be a signer")
		return ErrMissingRequiredSignature
	}

	*payerAcc.Lamports -= inst.Deposit
	*chainAcc.Lamports += inst.Deposit

	record := &SidechainRecord{
		ChainOwner:    ownerAcc.Pubkey,
		WebsiteURL:    inst.WebsiteURL,
		GithubURL:     inst.GithubURL,
		ContactEmail:  inst.ContactEmail,
		Deposit:       inst.Deposit,
		State:         SidechainRegistered,
		IsInitialized: true,
	}
	copy(chainAcc.Data, record.Serialize())

	ctx.Log("Registered chain %s", chainAcc.Pubkey)
	return nil
}
