// Package token implements the Mundis Token Program.
//
// The Token Program manages fungible tokens:
//   - Creating token mints with a name, symbol, and decimals
//   - Initializing token and multisig accounts
//   - Transferring tokens between accounts
//   - Minting and burning tokens
//   - Delegating and revoking spending allowances
//   - Freezing and thawing token accounts
//   - Wrapping the native currency
//
// Program ID: Token11111111111111111111111111111111111111
package token

import (
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/runtime"
	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// TokenProgram implements the Mundis Token Program.
type TokenProgram struct {
	programID types.Pubkey
}

// New creates a new TokenProgram instance.
func New() *TokenProgram {
	return &TokenProgram{programID: types.TokenProgramID}
}

// ID returns the Token Program's public key.
func (p *TokenProgram) ID() types.Pubkey {
	return p.programID
}

// Execute executes a Token Program instruction. The first byte of the
// instruction data is the discriminator, the rest is instruction-specific.
func (p *TokenProgram) Execute(ctx *runtime.ExecutionContext) error {
	discriminator, err := ParseInstructionDiscriminator(ctx.InstructionData)
	if err != nil {
		return err
	}
	data := ctx.InstructionData[1:]

	switch discriminator {
	case InstructionInitializeMint, InstructionInitializeMint2:
		var inst InitializeMintInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: InitializeMint")
		return handleInitializeMint(ctx, &inst, discriminator == InstructionInitializeMint)

	case InstructionInitializeAccount:
		ctx.Log("Instruction: InitializeAccount")
		// Accounts: [account, mint, owner, rent sysvar]
		if ctx.AccountCount() < 4 {
			return fmt.Errorf("%w: InitializeAccount requires 4 accounts, got %d",
				ErrNotEnoughAccountKeys, ctx.AccountCount())
		}
		ownerAcc, err := ctx.GetAccountByIndex(2)
		if err != nil {
			return err
		}
		return handleInitializeAccount(ctx, ownerAcc.Pubkey)

	case InstructionInitializeAccount2, InstructionInitializeAccount3:
		var inst InitializeAccount2Instruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: InitializeAccount2")
		return handleInitializeAccount(ctx, inst.Owner)

	case InstructionInitializeMultisig:
		var inst InitializeMultisigInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: InitializeMultisig")
		return handleInitializeMultisig(ctx, &inst)

	case InstructionTransfer:
		var inst TransferInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: Transfer")
		return handleTransfer(ctx, inst.Amount, nil)

	case InstructionTransferChecked:
		var inst TransferCheckedInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: TransferChecked")
		return handleTransfer(ctx, inst.Amount, &inst.Decimals)

	case InstructionApprove:
		var inst ApproveInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: Approve")
		return handleApprove(ctx, inst.Amount, nil)

	case InstructionApproveChecked:
		var inst ApproveCheckedInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: ApproveChecked")
		return handleApprove(ctx, inst.Amount, &inst.Decimals)

	case InstructionRevoke:
		ctx.Log("Instruction: Revoke")
		return handleRevoke(ctx)

	case InstructionSetAuthority:
		var inst SetAuthorityInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: SetAuthority")
		return handleSetAuthority(ctx, &inst)

	case InstructionMintTo:
		var inst MintToInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: MintTo")
		return handleMintTo(ctx, inst.Amount, nil)

	case InstructionMintToChecked:
		var inst MintToCheckedInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: MintToChecked")
		return handleMintTo(ctx, inst.Amount, &inst.Decimals)

	case InstructionBurn:
		var inst BurnInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: Burn")
		return handleBurn(ctx, inst.Amount, nil)

	case InstructionBurnChecked:
		var inst BurnCheckedInstruction
		if err := inst.Decode(data); err != nil {
			return err
		}
		ctx.Log("Instruction: BurnChecked")
		return handleBurn(ctx, inst.Amount, &inst.Decimals)

	case InstructionCloseAccount:
		ctx.Log("Instruction: CloseAccount")
		return handleCloseAccount(ctx)

	case InstructionFreezeAccount:
		ctx.Log("Instruction: FreezeAccount")
		return handleToggleFreeze(ctx, true)

	case InstructionThawAccount:
		ctx.Log("Instruction: ThawAccount")
		return handleToggleFreeze(ctx, false)

	case InstructionSyncNative:
		ctx.Log("Instruction: SyncNative")
		return handleSyncNative(ctx)

	default:
		return fmt.Errorf("%w: unknown instruction %d", ErrInvalidInstruction, discriminator)
	}
}

// IsTokenProgram checks if a pubkey is the Token Program.
func IsTokenProgram(pubkey types.Pubkey) bool {
	return pubkey == types.TokenProgramID
}

// AmountToUIAmount converts a raw token amount to its decimal UI form.
func AmountToUIAmount(amount uint64, decimals uint8) float64 {
	divisor := 1.0
	for i := uint8(0); i < decimals; i++ {
		divisor *= 10
	}
	return float64(amount) / divisor
}

// UIAmountToAmount converts a decimal UI amount to its raw token form.
func UIAmountToAmount(uiAmount float64, decimals uint8) uint64 {
	multiplier := 1.0
	for i := uint8(0); i < decimals; i++ {
		multiplier *= 10
	}
	return uint64(uiAmount * multiplier)
}
