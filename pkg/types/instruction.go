package types

// Instruction is a single program invocation: the program to run, the
// accounts it may read or write, and its opaque instruction data.
type Instruction struct {
	ProgramID Pubkey
	Accounts  []AccountMeta
	Data      []byte
}

// NewInstruction creates an instruction.
func NewInstruction(programID Pubkey, accounts []AccountMeta, data []byte) Instruction {
	return Instruction{
		ProgramID: programID,
		Accounts:  accounts,
		Data:      data,
	}
}
