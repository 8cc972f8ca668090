package token

import (
	"errors"
	"math"
	"testing"

	"github.com/mundisnetwork/axis-sub000/pkg/runtime"
	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// record builds a keyed account holding a packed record owned by the
// Token Program.
func record(pubkey types.Pubkey, data []byte, writable bool) *runtime.KeyedAccount {
	lamports := uint64(0)
	return &runtime.KeyedAccount{
		Pubkey:     pubkey,
		Lamports:   &lamports,
		Data:       data,
		Owner:      types.TokenProgramID,
		IsWritable: writable,
	}
}

// wallet builds a keyed account for a system-owned signer or sysvar.
func wallet(pubkey types.Pubkey, signer bool) *runtime.KeyedAccount {
	lamports := uint64(0)
	return &runtime.KeyedAccount{
		Pubkey:   pubkey,
		Lamports: &lamports,
		Owner:    types.SystemProgramID,
		IsSigner: signer,
	}
}

func execute(t *testing.T, accts []*runtime.KeyedAccount, data []byte) error {
	t.Helper()
	ctx := runtime.NewExecutionContext(types.TokenProgramID, accts, data)
	return New().Execute(ctx)
}

func mustTokenAccount(t *testing.T, data []byte) *TokenAccount {
	t.Helper()
	account, err := DeserializeTokenAccount(data)
	if err != nil {
		t.Fatalf("DeserializeTokenAccount failed: %v", err)
	}
	return account
}

func mustMint(t *testing.T, data []byte) *Mint {
	t.Helper()
	mint, err := DeserializeMint(data)
	if err != nil {
		t.Fatalf("DeserializeMint failed: %v", err)
	}
	return mint
}

// fixture is a mint with two holder accounts: source holds 100 tokens,
// destination is empty. The source owner signs by default.
type fixture struct {
	mintKey, srcKey, dstKey, ownerKey, authKey types.Pubkey

	mintAcc, srcAcc, dstAcc *runtime.KeyedAccount
	ownerAcc                *runtime.KeyedAccount
}

func newFixture(t *testing.T) *fixture {
	t.Helper()
	f := &fixture{
		mintKey:  testPubkey(0x10),
		srcKey:   testPubkey(0x11),
		dstKey:   testPubkey(0x12),
		ownerKey: testPubkey(0x13),
		authKey:  testPubkey(0x14),
	}

	freeze := testPubkey(0x15)
	mint := NewMint(2, []byte("Test Token"), []byte("TST"), &f.authKey, &freeze)
	mint.Supply = 100
	f.mintAcc = record(f.mintKey, mint.Serialize(), true)

	src := NewTokenAccount(f.mintKey, f.ownerKey)
	src.Amount = 100
	f.srcAcc = record(f.srcKey, src.Serialize(), true)

	dst := NewTokenAccount(f.mintKey, f.ownerKey)
	f.dstAcc = record(f.dstKey, dst.Serialize(), true)

	f.ownerAcc = wallet(f.ownerKey, true)
	return f
}

func (f *fixture) transfer(t *testing.T, amount uint64) error {
	t.Helper()
	inst := TransferInstruction{Amount: amount}
	return execute(t, []*runtime.KeyedAccount{f.srcAcc, f.dstAcc, f.ownerAcc}, inst.Encode())
}

func TestInitializeMint(t *testing.T) {
	mintAcc := record(testPubkey(1), make([]byte, MintSize), true)
	rent := wallet(types.SysvarRentID, false)

	auth := testPubkey(2)
	inst := InitializeMintInstruction{
		Decimals:      6,
		MintAuthority: auth,
		Name:          []byte("New Token"),
		Symbol:        []byte("NEW"),
	}
	if err := execute(t, []*runtime.KeyedAccount{mintAcc, rent}, inst.Encode()); err != nil {
		t.Fatalf("InitializeMint failed: %v", err)
	}

	mint := mustMint(t, mintAcc.Data)
	if !mint.IsInitialized || mint.Decimals != 6 || mint.Supply != 0 {
		t.Errorf("mint = %+v", mint)
	}
	if mint.NameString() != "New Token" || mint.SymbolString() != "NEW" {
		t.Errorf("name/symbol = %q/%q", mint.NameString(), mint.SymbolString())
	}
	if !mint.MintAuthority.IsSome || mint.MintAuthority.Value != auth {
		t.Errorf("mint authority = %+v", mint.MintAuthority)
	}
	if mint.FreezeAuthority.IsSome {
		t.Error("freeze authority should be None")
	}

	// Initializing twice fails.
	if err := execute(t, []*runtime.KeyedAccount{mintAcc, rent}, inst.Encode()); !errors.Is(err, ErrAlreadyInUse) {
		t.Errorf("second init: err = %v, want ErrAlreadyInUse", err)
	}
}

func TestInitializeMint2SkipsRentAccount(t *testing.T) {
	mintAcc := record(testPubkey(1), make([]byte, MintSize), true)
	inst := InitializeMintInstruction{Decimals: 0, MintAuthority: testPubkey(2)}
	data := inst.Encode()
	data[0] = InstructionInitializeMint2

	if err := execute(t, []*runtime.KeyedAccount{mintAcc}, data); err != nil {
		t.Fatalf("InitializeMint2 failed: %v", err)
	}
	if !mustMint(t, mintAcc.Data).IsInitialized {
		t.Error("mint not initialized")
	}
}

func TestInitializeAccount(t *testing.T) {
	f := newFixture(t)
	tokenAcc := record(testPubkey(0x20), make([]byte, TokenAccountSize), true)
	owner := wallet(testPubkey(0x21), false)
	rent := wallet(types.SysvarRentID, false)

	inst := InitializeAccountInstruction{}
	accts := []*runtime.KeyedAccount{tokenAcc, f.mintAcc, owner, rent}
	if err := execute(t, accts, inst.Encode()); err != nil {
		t.Fatalf("InitializeAccount failed: %v", err)
	}

	account := mustTokenAccount(t, tokenAcc.Data)
	if account.Mint != f.mintKey || account.Owner != owner.Pubkey {
		t.Errorf("account = %+v", account)
	}
	if account.State != AccountStateInitialized || account.Amount != 0 {
		t.Errorf("state/amount = %d/%d", account.State, account.Amount)
	}

	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrAlreadyInUse) {
		t.Errorf("second init: err = %v, want ErrAlreadyInUse", err)
	}
}

func TestInitializeNativeAccount(t *testing.T) {
	tokenAcc := record(testPubkey(0x20), make([]byte, TokenAccountSize), true)
	*tokenAcc.Lamports = 5_000_000
	nativeMint := wallet(types.NativeMintID, false)
	owner := testPubkey(0x21)

	inst := InitializeAccount2Instruction{Owner: owner}
	accts := []*runtime.KeyedAccount{tokenAcc, nativeMint}
	if err := execute(t, accts, inst.Encode()); err != nil {
		t.Fatalf("InitializeAccount2 failed: %v", err)
	}

	account := mustTokenAccount(t, tokenAcc.Data)
	if !account.IsNativeAccount() {
		t.Fatal("account not marked native")
	}
	// The token balance mirrors the full lamport balance.
	if account.Amount != 5_000_000 || account.IsNative.Value != 5_000_000 {
		t.Errorf("amount/is_native = %d/%d, want 5000000", account.Amount, account.IsNative.Value)
	}
}

func TestInitializeMultisig(t *testing.T) {
	rent := wallet(types.SysvarRentID, false)
	signerAccts := func(n int) []*runtime.KeyedAccount {
		accts := make([]*runtime.KeyedAccount, n)
		for i := range accts {
			accts[i] = wallet(testPubkey(byte(0x30+i)), false)
		}
		return accts
	}

	run := func(m uint8, n int) (*runtime.KeyedAccount, error) {
		msAcc := record(testPubkey(0x2F), make([]byte, MultisigSize), true)
		accts := append([]*runtime.KeyedAccount{msAcc, rent}, signerAccts(n)...)
		inst := InitializeMultisigInstruction{M: m}
		return msAcc, execute(t, accts, inst.Encode())
	}

	msAcc, err := run(2, 3)
	if err != nil {
		t.Fatalf("InitializeMultisig failed: %v", err)
	}
	ms, err := DeserializeMultisig(msAcc.Data)
	if err != nil {
		t.Fatalf("DeserializeMultisig failed: %v", err)
	}
	if ms.M != 2 || ms.N != 3 || !ms.IsInitialized {
		t.Errorf("multisig = %+v", ms)
	}

	if _, err := run(2, MaxSigners+1); !errors.Is(err, ErrInvalidNumberOfProvidedSigners) {
		t.Errorf("n=%d: err = %v, want ErrInvalidNumberOfProvidedSigners", MaxSigners+1, err)
	}
	if _, err := run(0, 3); !errors.Is(err, ErrInvalidNumberOfRequiredSigners) {
		t.Errorf("m=0: err = %v, want ErrInvalidNumberOfRequiredSigners", err)
	}
	if _, err := run(4, 3); !errors.Is(err, ErrInvalidNumberOfRequiredSigners) {
		t.Errorf("m>n: err = %v, want ErrInvalidNumberOfRequiredSigners", err)
	}
}

func TestTransferConservation(t *testing.T) {
	f := newFixture(t)
	if err := f.transfer(t, 30); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}

	src := mustTokenAccount(t, f.srcAcc.Data)
	dst := mustTokenAccount(t, f.dstAcc.Data)
	if src.Amount != 70 || dst.Amount != 30 {
		t.Errorf("balances = %d/%d, want 70/30", src.Amount, dst.Amount)
	}
	if src.Amount+dst.Amount != 100 {
		t.Errorf("total supply changed: %d", src.Amount+dst.Amount)
	}

	if err := f.transfer(t, 71); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("overdraw: err = %v, want ErrInsufficientFunds", err)
	}
	// The failed transfer must not have touched either balance.
	if mustTokenAccount(t, f.srcAcc.Data).Amount != 70 {
		t.Error("failed transfer changed source balance")
	}
}

func TestTransferUnsignedOwner(t *testing.T) {
	f := newFixture(t)
	f.ownerAcc.IsSigner = false
	if err := f.transfer(t, 1); !errors.Is(err, ErrMissingRequiredSignature) {
		t.Errorf("err = %v, want ErrMissingRequiredSignature", err)
	}

	f = newFixture(t)
	f.ownerAcc = wallet(testPubkey(0x66), true)
	if err := f.transfer(t, 1); !errors.Is(err, ErrOwnerMismatch) {
		t.Errorf("wrong owner: err = %v, want ErrOwnerMismatch", err)
	}
}

func TestTransferMintMismatch(t *testing.T) {
	f := newFixture(t)
	other := NewTokenAccount(testPubkey(0x60), f.ownerKey)
	f.dstAcc = record(f.dstKey, other.Serialize(), true)
	if err := f.transfer(t, 1); !errors.Is(err, ErrMintMismatch) {
		t.Errorf("err = %v, want ErrMintMismatch", err)
	}
}

func TestTransferChecked(t *testing.T) {
	f := newFixture(t)
	inst := TransferCheckedInstruction{Amount: 10, Decimals: 2}
	accts := []*runtime.KeyedAccount{f.srcAcc, f.mintAcc, f.dstAcc, f.ownerAcc}
	if err := execute(t, accts, inst.Encode()); err != nil {
		t.Fatalf("TransferChecked failed: %v", err)
	}
	if mustTokenAccount(t, f.dstAcc.Data).Amount != 10 {
		t.Error("checked transfer did not move tokens")
	}

	inst.Decimals = 3
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrMintDecimalsMismatch) {
		t.Errorf("wrong decimals: err = %v, want ErrMintDecimalsMismatch", err)
	}

	// The mint position must be the source's mint.
	inst.Decimals = 2
	badMint := record(testPubkey(0x61), f.mintAcc.Data, false)
	accts[1] = badMint
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrMintMismatch) {
		t.Errorf("wrong mint account: err = %v, want ErrMintMismatch", err)
	}
}

func TestSelfTransferDelegateDrawdown(t *testing.T) {
	f := newFixture(t)
	delegateKey := testPubkey(0x40)

	// Approve a 50 token allowance.
	approve := ApproveInstruction{Amount: 50}
	accts := []*runtime.KeyedAccount{f.srcAcc, wallet(delegateKey, false), f.ownerAcc}
	if err := execute(t, accts, approve.Encode()); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	// A self-transfer through the delegate moves no tokens but draws the
	// allowance down and persists it.
	transfer := TransferInstruction{Amount: 20}
	selfAccts := []*runtime.KeyedAccount{f.srcAcc, f.srcAcc, wallet(delegateKey, true)}
	if err := execute(t, selfAccts, transfer.Encode()); err != nil {
		t.Fatalf("self transfer failed: %v", err)
	}
	src := mustTokenAccount(t, f.srcAcc.Data)
	if src.Amount != 100 {
		t.Errorf("self transfer moved tokens: amount = %d", src.Amount)
	}
	if src.DelegatedAmount != 30 {
		t.Errorf("delegated amount = %d, want 30", src.DelegatedAmount)
	}
	if !src.Delegate.IsSome {
		t.Error("delegate cleared before allowance exhausted")
	}

	// Drawing the allowance to zero clears the delegate.
	transfer.Amount = 30
	if err := execute(t, selfAccts, transfer.Encode()); err != nil {
		t.Fatalf("self transfer failed: %v", err)
	}
	src = mustTokenAccount(t, f.srcAcc.Data)
	if src.Delegate.IsSome || src.DelegatedAmount != 0 {
		t.Errorf("delegate not cleared: %+v/%d", src.Delegate, src.DelegatedAmount)
	}

	// The exhausted delegate can no longer move funds.
	transfer.Amount = 1
	if err := execute(t, selfAccts, transfer.Encode()); !errors.Is(err, ErrOwnerMismatch) {
		t.Errorf("exhausted delegate: err = %v, want ErrOwnerMismatch", err)
	}
}

func TestDelegateTransferOverAllowance(t *testing.T) {
	f := newFixture(t)
	delegateKey := testPubkey(0x40)

	approve := ApproveInstruction{Amount: 10}
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc, wallet(delegateKey, false), f.ownerAcc}, approve.Encode()); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	transfer := TransferInstruction{Amount: 11}
	accts := []*runtime.KeyedAccount{f.srcAcc, f.dstAcc, wallet(delegateKey, true)}
	if err := execute(t, accts, transfer.Encode()); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("over allowance: err = %v, want ErrInsufficientFunds", err)
	}
}

func TestRevoke(t *testing.T) {
	f := newFixture(t)
	approve := ApproveInstruction{Amount: 50}
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc, wallet(testPubkey(0x40), false), f.ownerAcc}, approve.Encode()); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	revoke := []byte{InstructionRevoke}
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc, f.ownerAcc}, revoke); err != nil {
		t.Fatalf("Revoke failed: %v", err)
	}
	src := mustTokenAccount(t, f.srcAcc.Data)
	if src.Delegate.IsSome || src.DelegatedAmount != 0 {
		t.Errorf("delegate not revoked: %+v/%d", src.Delegate, src.DelegatedAmount)
	}
}

// multisigFixture rewires the fixture's source account to a 2-of-3
// multisig owner.
func multisigFixture(t *testing.T, f *fixture) (msAcc *runtime.KeyedAccount, signerKeys [3]types.Pubkey) {
	t.Helper()
	msKey := testPubkey(0x50)
	for i := range signerKeys {
		signerKeys[i] = testPubkey(byte(0x51 + i))
	}
	ms := &Multisig{M: 2, N: 3, IsInitialized: true}
	for i, key := range signerKeys {
		ms.Signers[i] = key
	}
	msAcc = record(msKey, ms.Serialize(), false)

	src := mustTokenAccount(t, f.srcAcc.Data)
	src.Owner = msKey
	copy(f.srcAcc.Data, src.Serialize())
	return msAcc, signerKeys
}

func TestMultisigTransferThreshold(t *testing.T) {
	transferWith := func(t *testing.T, signers ...*runtime.KeyedAccount) error {
		f := newFixture(t)
		msAcc, keys := multisigFixture(t, f)
		for i, s := range signers {
			if s == nil {
				signers[i] = wallet(keys[i], true)
			}
		}
		inst := TransferInstruction{Amount: 10}
		accts := append([]*runtime.KeyedAccount{f.srcAcc, f.dstAcc, msAcc}, signers...)
		return execute(t, accts, inst.Encode())
	}

	// Two distinct registered signers meet the threshold.
	if err := transferWith(t, nil, nil); err != nil {
		t.Errorf("2 of 3: %v", err)
	}

	// One signer is below threshold.
	if err := transferWith(t, nil); !errors.Is(err, ErrMissingRequiredSignature) {
		t.Errorf("1 of 3: err = %v, want ErrMissingRequiredSignature", err)
	}

	// The same signer twice counts once.
	f := newFixture(t)
	msAcc, keys := multisigFixture(t, f)
	dup := wallet(keys[0], true)
	inst := TransferInstruction{Amount: 10}
	accts := []*runtime.KeyedAccount{f.srcAcc, f.dstAcc, msAcc, dup, dup}
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrMissingRequiredSignature) {
		t.Errorf("duplicate signer: err = %v, want ErrMissingRequiredSignature", err)
	}

	// A registered signer plus an unregistered one is below threshold.
	f = newFixture(t)
	msAcc, keys = multisigFixture(t, f)
	accts = []*runtime.KeyedAccount{f.srcAcc, f.dstAcc, msAcc,
		wallet(keys[0], true), wallet(testPubkey(0x70), true)}
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrMissingRequiredSignature) {
		t.Errorf("unregistered signer: err = %v, want ErrMissingRequiredSignature", err)
	}

	// A matched signer that did not actually sign fails outright.
	f = newFixture(t)
	msAcc, keys = multisigFixture(t, f)
	accts = []*runtime.KeyedAccount{f.srcAcc, f.dstAcc, msAcc,
		wallet(keys[0], true), wallet(keys[1], false)}
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrMissingRequiredSignature) {
		t.Errorf("unsigned match: err = %v, want ErrMissingRequiredSignature", err)
	}
}

func TestMintTo(t *testing.T) {
	f := newFixture(t)
	auth := wallet(f.authKey, true)

	inst := MintToInstruction{Amount: 25}
	accts := []*runtime.KeyedAccount{f.mintAcc, f.dstAcc, auth}
	if err := execute(t, accts, inst.Encode()); err != nil {
		t.Fatalf("MintTo failed: %v", err)
	}
	if got := mustTokenAccount(t, f.dstAcc.Data).Amount; got != 25 {
		t.Errorf("dest amount = %d, want 25", got)
	}
	if got := mustMint(t, f.mintAcc.Data).Supply; got != 125 {
		t.Errorf("supply = %d, want 125", got)
	}

	// Only the mint authority can mint.
	badAuth := wallet(testPubkey(0x70), true)
	accts[2] = badAuth
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrOwnerMismatch) {
		t.Errorf("wrong authority: err = %v, want ErrOwnerMismatch", err)
	}
}

func TestMintToOverflow(t *testing.T) {
	f := newFixture(t)
	dst := mustTokenAccount(t, f.dstAcc.Data)
	dst.Amount = math.MaxUint64
	copy(f.dstAcc.Data, dst.Serialize())

	inst := MintToInstruction{Amount: 1}
	accts := []*runtime.KeyedAccount{f.mintAcc, f.dstAcc, wallet(f.authKey, true)}
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrOverflow) {
		t.Errorf("err = %v, want ErrOverflow", err)
	}
	// Neither record may change on overflow.
	if got := mustMint(t, f.mintAcc.Data).Supply; got != 100 {
		t.Errorf("supply changed on overflow: %d", got)
	}
	if got := mustTokenAccount(t, f.dstAcc.Data).Amount; got != math.MaxUint64 {
		t.Errorf("dest amount changed on overflow: %d", got)
	}
}

func TestBurn(t *testing.T) {
	f := newFixture(t)
	inst := BurnInstruction{Amount: 40}
	accts := []*runtime.KeyedAccount{f.srcAcc, f.mintAcc, f.ownerAcc}
	if err := execute(t, accts, inst.Encode()); err != nil {
		t.Fatalf("Burn failed: %v", err)
	}
	if got := mustTokenAccount(t, f.srcAcc.Data).Amount; got != 60 {
		t.Errorf("source amount = %d, want 60", got)
	}
	if got := mustMint(t, f.mintAcc.Data).Supply; got != 60 {
		t.Errorf("supply = %d, want 60", got)
	}

	inst.Amount = 61
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrInsufficientFunds) {
		t.Errorf("overburn: err = %v, want ErrInsufficientFunds", err)
	}
}

func TestFreezeGating(t *testing.T) {
	f := newFixture(t)
	freezeAuth := wallet(testPubkey(0x15), true)
	freezeAccts := []*runtime.KeyedAccount{f.srcAcc, f.mintAcc, freezeAuth}

	if err := execute(t, freezeAccts, []byte{InstructionFreezeAccount}); err != nil {
		t.Fatalf("FreezeAccount failed: %v", err)
	}
	if !mustTokenAccount(t, f.srcAcc.Data).IsFrozen() {
		t.Fatal("account not frozen")
	}

	// Everything that moves or delegates balance is gated.
	if err := f.transfer(t, 1); !errors.Is(err, ErrAccountFrozen) {
		t.Errorf("transfer while frozen: err = %v, want ErrAccountFrozen", err)
	}
	approve := ApproveInstruction{Amount: 5}
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc, wallet(testPubkey(0x40), false), f.ownerAcc}, approve.Encode()); !errors.Is(err, ErrAccountFrozen) {
		t.Errorf("approve while frozen: err = %v, want ErrAccountFrozen", err)
	}
	burn := BurnInstruction{Amount: 1}
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc, f.mintAcc, f.ownerAcc}, burn.Encode()); !errors.Is(err, ErrAccountFrozen) {
		t.Errorf("burn while frozen: err = %v, want ErrAccountFrozen", err)
	}

	// Freezing a frozen account is rejected.
	if err := execute(t, freezeAccts, []byte{InstructionFreezeAccount}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("double freeze: err = %v, want ErrInvalidState", err)
	}

	// Thaw restores normal operation.
	if err := execute(t, freezeAccts, []byte{InstructionThawAccount}); err != nil {
		t.Fatalf("ThawAccount failed: %v", err)
	}
	if err := f.transfer(t, 1); err != nil {
		t.Errorf("transfer after thaw failed: %v", err)
	}
}

func TestFreezeWithoutAuthority(t *testing.T) {
	f := newFixture(t)
	// A mint without a freeze authority cannot freeze anything.
	mint := mustMint(t, f.mintAcc.Data)
	mint.FreezeAuthority = COption{}
	copy(f.mintAcc.Data, mint.Serialize())

	accts := []*runtime.KeyedAccount{f.srcAcc, f.mintAcc, wallet(testPubkey(0x15), true)}
	if err := execute(t, accts, []byte{InstructionFreezeAccount}); !errors.Is(err, ErrMintCannotFreeze) {
		t.Errorf("err = %v, want ErrMintCannotFreeze", err)
	}
}

func TestSetAuthorityOnTokenAccount(t *testing.T) {
	f := newFixture(t)
	newOwner := testPubkey(0x80)

	// Give the account a delegate first to observe the clearing.
	approve := ApproveInstruction{Amount: 5}
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc, wallet(testPubkey(0x40), false), f.ownerAcc}, approve.Encode()); err != nil {
		t.Fatalf("Approve failed: %v", err)
	}

	inst := SetAuthorityInstruction{AuthorityType: AuthorityTypeAccountOwner, NewAuthority: &newOwner}
	accts := []*runtime.KeyedAccount{f.srcAcc, f.ownerAcc}
	if err := execute(t, accts, inst.Encode()); err != nil {
		t.Fatalf("SetAuthority failed: %v", err)
	}
	src := mustTokenAccount(t, f.srcAcc.Data)
	if src.Owner != newOwner {
		t.Errorf("owner = %s, want %s", src.Owner, newOwner)
	}
	if src.Delegate.IsSome || src.DelegatedAmount != 0 {
		t.Error("owner change did not clear the delegate")
	}

	// The owner slot can never be cleared.
	inst.NewAuthority = nil
	newOwnerAcc := wallet(newOwner, true)
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc, newOwnerAcc}, inst.Encode()); !errors.Is(err, ErrInvalidInstruction) {
		t.Errorf("clear owner: err = %v, want ErrInvalidInstruction", err)
	}

	// Close authority can be set and cleared.
	closeAuth := testPubkey(0x81)
	inst = SetAuthorityInstruction{AuthorityType: AuthorityTypeCloseAccount, NewAuthority: &closeAuth}
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc, newOwnerAcc}, inst.Encode()); err != nil {
		t.Fatalf("set close authority failed: %v", err)
	}
	if got := mustTokenAccount(t, f.srcAcc.Data).CloseAuthority; !got.IsSome || got.Value != closeAuth {
		t.Errorf("close authority = %+v", got)
	}
}

func TestSetAuthorityFixedSupply(t *testing.T) {
	f := newFixture(t)
	auth := wallet(f.authKey, true)

	// Clearing the mint authority fixes the supply forever.
	inst := SetAuthorityInstruction{AuthorityType: AuthorityTypeMintTokens, NewAuthority: nil}
	if err := execute(t, []*runtime.KeyedAccount{f.mintAcc, auth}, inst.Encode()); err != nil {
		t.Fatalf("SetAuthority failed: %v", err)
	}
	if mustMint(t, f.mintAcc.Data).MintAuthority.IsSome {
		t.Fatal("mint authority not cleared")
	}

	mintTo := MintToInstruction{Amount: 1}
	if err := execute(t, []*runtime.KeyedAccount{f.mintAcc, f.dstAcc, auth}, mintTo.Encode()); !errors.Is(err, ErrFixedSupply) {
		t.Errorf("mint after clear: err = %v, want ErrFixedSupply", err)
	}

	// Reinstating is impossible too.
	inst.NewAuthority = &f.authKey
	if err := execute(t, []*runtime.KeyedAccount{f.mintAcc, auth}, inst.Encode()); !errors.Is(err, ErrFixedSupply) {
		t.Errorf("reinstate: err = %v, want ErrFixedSupply", err)
	}
}

func TestSetAuthorityLengthDispatch(t *testing.T) {
	// A target that is neither a token account nor a mint by exact length
	// is rejected.
	odd := record(testPubkey(0x90), make([]byte, 100), true)
	auth := wallet(testPubkey(0x91), true)
	inst := SetAuthorityInstruction{AuthorityType: AuthorityTypeAccountOwner, NewAuthority: &auth.Pubkey}
	if err := execute(t, []*runtime.KeyedAccount{odd, auth}, inst.Encode()); !errors.Is(err, ErrInvalidArgument) {
		t.Errorf("err = %v, want ErrInvalidArgument", err)
	}
}

func TestCloseAccount(t *testing.T) {
	f := newFixture(t)

	// A non-native account with a balance cannot be closed.
	closeData := []byte{InstructionCloseAccount}
	dest := wallet(testPubkey(0xA0), false)
	dest.IsWritable = true
	accts := []*runtime.KeyedAccount{f.srcAcc, dest, f.ownerAcc}
	if err := execute(t, accts, closeData); !errors.Is(err, ErrNonNativeHasBalance) {
		t.Errorf("close with balance: err = %v, want ErrNonNativeHasBalance", err)
	}

	// Drain it, then close.
	if err := f.transfer(t, 100); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	*f.srcAcc.Lamports = 2_000_000
	if err := execute(t, accts, closeData); err != nil {
		t.Fatalf("CloseAccount failed: %v", err)
	}
	if *f.srcAcc.Lamports != 0 {
		t.Errorf("source lamports = %d, want 0", *f.srcAcc.Lamports)
	}
	if *dest.Lamports != 2_000_000 {
		t.Errorf("dest lamports = %d, want 2000000", *dest.Lamports)
	}

	// Closing into itself is rejected.
	f = newFixture(t)
	accts = []*runtime.KeyedAccount{f.srcAcc, f.srcAcc, f.ownerAcc}
	if err := execute(t, accts, closeData); !errors.Is(err, ErrInvalidAccountData) {
		t.Errorf("self close: err = %v, want ErrInvalidAccountData", err)
	}
}

func TestSyncNative(t *testing.T) {
	account := NewTokenAccount(types.NativeMintID, testPubkey(1))
	account.IsNative = COptionU64{IsSome: true, Value: 1000}
	account.Amount = 1000
	nativeAcc := record(testPubkey(2), account.Serialize(), true)
	*nativeAcc.Lamports = 1500

	if err := execute(t, []*runtime.KeyedAccount{nativeAcc}, []byte{InstructionSyncNative}); err != nil {
		t.Fatalf("SyncNative failed: %v", err)
	}
	if got := mustTokenAccount(t, nativeAcc.Data).Amount; got != 1500 {
		t.Errorf("amount = %d, want 1500", got)
	}

	// A sync that would shrink the balance is rejected.
	*nativeAcc.Lamports = 1400
	if err := execute(t, []*runtime.KeyedAccount{nativeAcc}, []byte{InstructionSyncNative}); !errors.Is(err, ErrInvalidState) {
		t.Errorf("shrinking sync: err = %v, want ErrInvalidState", err)
	}

	// Non-native accounts cannot sync.
	f := newFixture(t)
	if err := execute(t, []*runtime.KeyedAccount{f.srcAcc}, []byte{InstructionSyncNative}); !errors.Is(err, ErrNonNativeNotSupported) {
		t.Errorf("non-native sync: err = %v, want ErrNonNativeNotSupported", err)
	}
}

func TestNativeTransferMovesLamports(t *testing.T) {
	owner := testPubkey(1)
	src := NewTokenAccount(types.NativeMintID, owner)
	src.IsNative = COptionU64{IsSome: true, Value: 500}
	src.Amount = 500
	dst := NewTokenAccount(types.NativeMintID, owner)
	dst.IsNative = COptionU64{IsSome: true, Value: 0}

	srcAcc := record(testPubkey(2), src.Serialize(), true)
	*srcAcc.Lamports = 500
	dstAcc := record(testPubkey(3), dst.Serialize(), true)
	ownerAcc := wallet(owner, true)

	inst := TransferInstruction{Amount: 200}
	if err := execute(t, []*runtime.KeyedAccount{srcAcc, dstAcc, ownerAcc}, inst.Encode()); err != nil {
		t.Fatalf("Transfer failed: %v", err)
	}
	if *srcAcc.Lamports != 300 || *dstAcc.Lamports != 200 {
		t.Errorf("lamports = %d/%d, want 300/200", *srcAcc.Lamports, *dstAcc.Lamports)
	}
	if got := mustTokenAccount(t, dstAcc.Data).Amount; got != 200 {
		t.Errorf("dest amount = %d, want 200", got)
	}
}

func TestMintToNativeRejected(t *testing.T) {
	f := newFixture(t)
	native := NewTokenAccount(f.mintKey, f.ownerKey)
	native.IsNative = COptionU64{IsSome: true, Value: 0}
	nativeAcc := record(testPubkey(0xB0), native.Serialize(), true)

	inst := MintToInstruction{Amount: 1}
	accts := []*runtime.KeyedAccount{f.mintAcc, nativeAcc, wallet(f.authKey, true)}
	if err := execute(t, accts, inst.Encode()); !errors.Is(err, ErrNativeNotSupported) {
		t.Errorf("err = %v, want ErrNativeNotSupported", err)
	}
}

func TestUninitializedAccountRejected(t *testing.T) {
	f := newFixture(t)
	f.srcAcc = record(f.srcKey, make([]byte, TokenAccountSize), true)
	if err := f.transfer(t, 1); !errors.Is(err, ErrUninitializedState) {
		t.Errorf("err = %v, want ErrUninitializedState", err)
	}
}

func TestUnknownInstruction(t *testing.T) {
	if err := execute(t, nil, []byte{99}); !errors.Is(err, ErrInvalidInstruction) {
		t.Errorf("err = %v, want ErrInvalidInstruction", err)
	}
	if err := execute(t, nil, nil); !errors.Is(err, ErrInvalidInstructionData) {
		t.Errorf("empty data: err = %v, want ErrInvalidInstructionData", err)
	}
}
