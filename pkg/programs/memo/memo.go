// Package memo implements the Mundis Memo Program.
//
// The Memo Program validates a UTF-8 string of instruction data and logs
// it. If any accounts are provided, every one of them must have signed,
// which lets a memo attest to a set of parties.
//
// Program ID: Memo111111111111111111111111111111111111111
package memo

import (
	"errors"
	"unicode/utf8"

	"github.com/mundisnetwork/axis-sub000/pkg/runtime"
	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Memo Program errors
var (
	// ErrMissingRequiredSignature indicates a provided account did not sign.
	ErrMissingRequiredSignature = errors.New("missing required signature")

	// ErrInvalidInstructionData indicates the memo is not valid UTF-8.
	ErrInvalidInstructionData = errors.New("invalid instruction data")
)

// MemoProgram implements the Mundis Memo Program.
type MemoProgram struct {
	programID types.Pubkey
}

// New creates a new MemoProgram instance.
func New() *MemoProgram {
	return &MemoProgram{programID: types.MemoProgramID}
}

// ID returns the Memo Program's public key.
func (p *MemoProgram) ID() types.Pubkey {
	return p.programID
}

// Execute validates and logs one memo instruction.
func (p *MemoProgram) Execute(ctx *runtime.ExecutionContext) error {
	missingSignature := false
	for i := 0; i < ctx.AccountCount(); i++ {
		acc, err := ctx.GetAccountByIndex(i)
		if err != nil {
			return err
		}
		if acc.IsSigner {
			ctx.Log("Signed by %s", acc.Pubkey)
		} else {
			missingSignature = true
		}
	}
	if missingSignature {
		return ErrMissingRequiredSignature
	}

	if !utf8.Valid(ctx.InstructionData) {
		ctx.Log("Invalid UTF-8, from byte %d", validPrefixLen(ctx.InstructionData))
		return ErrInvalidInstructionData
	}

	ctx.Log("Memo (len %d): %q", len(ctx.InstructionData), string(ctx.InstructionData))
	return nil
}

// validPrefixLen returns the length of the longest valid UTF-8 prefix.
func validPrefixLen(data []byte) int {
	for i := 0; i < len(data); {
		r, size := utf8.DecodeRune(data[i:])
		if r == utf8.RuneError && size == 1 {
			return i
		}
		i += size
	}
	return len(data)
}
