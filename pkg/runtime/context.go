// Package runtime provides the instruction execution layer for Axis:
// keyed-account views over store snapshots, the native program registry,
// and the parameter serialization ABI for foreign programs.
//
// The runtime is single-threaded by construction. The enclosing scheduler
// partitions transactions by account access sets before invoking it, so no
// internal locking is needed and execution stays deterministic.
package runtime

import (
	"errors"
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Context errors
var (
	ErrAccountNotFound     = errors.New("account not found")
	ErrNotEnoughAccounts   = errors.New("not enough account keys")
	ErrInvalidAccountIndex = errors.New("invalid account index")
	ErrUnknownProgram      = errors.New("unknown program id")
	ErrMaxLogsExceeded     = errors.New("maximum log entries exceeded")
)

// Execution limits
const (
	MaxLogMessages      = 64
	MaxLogMessageLength = 10000
)

// KeyedAccount is the per-instruction view of an account: the pubkey it was
// addressed by, the signer/writable privileges granted by the transaction,
// and a mutable handle into the account snapshot. When the same pubkey
// appears at several positions of one instruction, every position holds the
// same *KeyedAccount, so a mutation through one position is visible at all
// of them.
type KeyedAccount struct {
	Pubkey     types.Pubkey
	Lamports   *uint64
	Data       []byte
	Owner      types.Pubkey
	Executable bool
	RentEpoch  uint64
	IsSigner   bool
	IsWritable bool
}

// NewKeyedAccount binds an account snapshot to instruction privileges.
// The snapshot's data slice is referenced, not copied.
func NewKeyedAccount(pubkey types.Pubkey, acc *types.Account, isSigner, isWritable bool) *KeyedAccount {
	lamports := uint64(acc.Lamports)
	return &KeyedAccount{
		Pubkey:     pubkey,
		Lamports:   &lamports,
		Data:       acc.Data,
		Owner:      acc.Owner,
		Executable: acc.Executable,
		RentEpoch:  uint64(acc.RentEpoch),
		IsSigner:   isSigner,
		IsWritable: isWritable,
	}
}

// Snapshot converts the view back into an account record.
func (ka *KeyedAccount) Snapshot() *types.Account {
	data := make([]byte, len(ka.Data))
	copy(data, ka.Data)
	return &types.Account{
		Lamports:   types.Lamports(*ka.Lamports),
		Data:       data,
		Owner:      ka.Owner,
		Executable: ka.Executable,
		RentEpoch:  types.Epoch(ka.RentEpoch),
	}
}

// Clone creates a deep copy of the view.
func (ka *KeyedAccount) Clone() *KeyedAccount {
	if ka == nil {
		return nil
	}
	lamports := *ka.Lamports
	clone := &KeyedAccount{
		Pubkey:     ka.Pubkey,
		Lamports:   &lamports,
		Owner:      ka.Owner,
		Executable: ka.Executable,
		RentEpoch:  ka.RentEpoch,
		IsSigner:   ka.IsSigner,
		IsWritable: ka.IsWritable,
	}
	if ka.Data != nil {
		clone.Data = make([]byte, len(ka.Data))
		copy(clone.Data, ka.Data)
	}
	return clone
}

// ExecutionContext holds the state of one instruction invocation.
type ExecutionContext struct {
	// Program being executed
	ProgramID types.Pubkey

	// Accounts in instruction order. Dup positions share pointers.
	Accounts []*KeyedAccount

	// Instruction data
	InstructionData []byte

	// Execution logs
	logs    []string
	maxLogs int
}

// NewExecutionContext creates an execution context for one instruction.
func NewExecutionContext(programID types.Pubkey, accounts []*KeyedAccount, instructionData []byte) *ExecutionContext {
	return &ExecutionContext{
		ProgramID:       programID,
		Accounts:        accounts,
		InstructionData: instructionData,
		logs:            make([]string, 0, MaxLogMessages),
		maxLogs:         MaxLogMessages,
	}
}

// GetAccountByIndex returns the keyed account at the given position.
func (ctx *ExecutionContext) GetAccountByIndex(index int) (*KeyedAccount, error) {
	if index < 0 || index >= len(ctx.Accounts) {
		return nil, fmt.Errorf("%w: %d", ErrInvalidAccountIndex, index)
	}
	return ctx.Accounts[index], nil
}

// AccountCount returns the number of account positions.
func (ctx *ExecutionContext) AccountCount() int {
	return len(ctx.Accounts)
}

// Log records a formatted program log message. Messages past the cap are
// dropped, matching on-chain log truncation.
func (ctx *ExecutionContext) Log(format string, args ...interface{}) {
	if len(ctx.logs) >= ctx.maxLogs {
		return
	}
	msg := fmt.Sprintf(format, args...)
	if len(msg) > MaxLogMessageLength {
		msg = msg[:MaxLogMessageLength]
	}
	ctx.logs = append(ctx.logs, msg)
}

// Logs returns all recorded log messages.
func (ctx *ExecutionContext) Logs() []string {
	logs := make([]string, len(ctx.logs))
	copy(logs, ctx.logs)
	return logs
}

// Program is a native program executable against an execution context.
type Program interface {
	// ID returns the program's well-known address.
	ID() types.Pubkey
	// Execute runs one instruction. Any error aborts the instruction with
	// no partial record writes.
	Execute(ctx *ExecutionContext) error
}

// Registry maps program ids to native program implementations.
type Registry struct {
	programs map[types.Pubkey]Program
}

// NewRegistry creates an empty program registry.
func NewRegistry() *Registry {
	return &Registry{programs: make(map[types.Pubkey]Program)}
}

// Register adds a program to the registry.
func (r *Registry) Register(p Program) {
	r.programs[p.ID()] = p
}

// Lookup returns the program registered under id.
func (r *Registry) Lookup(id types.Pubkey) (Program, bool) {
	p, ok := r.programs[id]
	return p, ok
}

// AccountLoader supplies account snapshots for instruction processing.
type AccountLoader interface {
	GetAccount(pubkey types.Pubkey) (*types.Account, error)
	SetAccount(pubkey types.Pubkey, account *types.Account) error
}

// ProcessInstruction loads keyed-account views for the instruction,
// dispatches to the registered program, and on success commits every
// writable account back to the store, in instruction order. A failed
// instruction leaves the store untouched: if a store write fails
// mid-commit, the accounts already committed are restored to their
// pre-instruction snapshots before the error is returned.
func (r *Registry) ProcessInstruction(loader AccountLoader, ix types.Instruction) (*ExecutionContext, error) {
	program, ok := r.Lookup(ix.ProgramID)
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrUnknownProgram, ix.ProgramID)
	}

	views := make([]*KeyedAccount, len(ix.Accounts))
	byKey := make(map[types.Pubkey]*KeyedAccount, len(ix.Accounts))
	origs := make(map[types.Pubkey]*types.Account, len(ix.Accounts))
	for i, meta := range ix.Accounts {
		if existing, ok := byKey[meta.Pubkey]; ok {
			// Same pubkey appearing again aliases the first view. The
			// stronger privileges of the two positions apply.
			existing.IsSigner = existing.IsSigner || meta.IsSigner
			existing.IsWritable = existing.IsWritable || meta.IsWritable
			views[i] = existing
			continue
		}
		acc, err := loader.GetAccount(meta.Pubkey)
		if err != nil {
			return nil, fmt.Errorf("load account %s: %w", meta.Pubkey, err)
		}
		if acc == nil {
			acc = types.NewAccount(0, types.SystemProgramID)
		}
		// The view below shares acc's data slice, so clone the snapshot
		// now in case the commit has to roll back.
		origs[meta.Pubkey] = acc.Clone()
		view := NewKeyedAccount(meta.Pubkey, acc, meta.IsSigner, meta.IsWritable)
		views[i] = view
		byKey[meta.Pubkey] = view
	}

	ctx := NewExecutionContext(ix.ProgramID, views, ix.Data)
	if err := program.Execute(ctx); err != nil {
		return ctx, err
	}

	committed := make([]types.Pubkey, 0, len(views))
	seen := make(map[types.Pubkey]bool, len(views))
	for _, view := range views {
		if seen[view.Pubkey] || !view.IsWritable {
			continue
		}
		seen[view.Pubkey] = true
		if err := loader.SetAccount(view.Pubkey, view.Snapshot()); err != nil {
			for _, pubkey := range committed {
				if rbErr := loader.SetAccount(pubkey, origs[pubkey]); rbErr != nil {
					return ctx, fmt.Errorf("commit account %s: %w (restore of %s also failed: %v)",
						view.Pubkey, err, pubkey, rbErr)
				}
			}
			return ctx, fmt.Errorf("commit account %s: %w", view.Pubkey, err)
		}
		committed = append(committed, view.Pubkey)
	}
	return ctx, nil
}
