package token

import (
	"bytes"
	"encoding/binary"
	"errors"
	"testing"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

func testPubkey(tag byte) types.Pubkey {
	var pk types.Pubkey
	pk[0] = tag
	return pk
}

func TestMintRoundTrip(t *testing.T) {
	auth := testPubkey(1)
	freeze := testPubkey(2)
	mint := NewMint(9, []byte("Wrapped Mundis"), []byte("wMUN"), &auth, &freeze)
	mint.Supply = 1_000_000

	data := mint.Serialize()
	if len(data) != MintSize {
		t.Fatalf("serialized mint is %d bytes, want %d", len(data), MintSize)
	}

	got, err := DeserializeMint(data)
	if err != nil {
		t.Fatalf("DeserializeMint failed: %v", err)
	}
	if !got.MintAuthority.IsSome || got.MintAuthority.Value != auth {
		t.Errorf("mint authority = %+v, want Some(%s)", got.MintAuthority, auth)
	}
	if got.NameString() != "Wrapped Mundis" {
		t.Errorf("name = %q, want %q", got.NameString(), "Wrapped Mundis")
	}
	if got.SymbolString() != "wMUN" {
		t.Errorf("symbol = %q, want %q", got.SymbolString(), "wMUN")
	}
	if got.Supply != 1_000_000 {
		t.Errorf("supply = %d, want 1000000", got.Supply)
	}
	if got.Decimals != 9 {
		t.Errorf("decimals = %d, want 9", got.Decimals)
	}
	if !got.IsInitialized {
		t.Error("is_initialized lost")
	}
	if !got.FreezeAuthority.IsSome || got.FreezeAuthority.Value != freeze {
		t.Errorf("freeze authority = %+v, want Some(%s)", got.FreezeAuthority, freeze)
	}

	// Name and symbol are NUL right-padded to their fixed widths.
	if data[36+len("Wrapped Mundis")] != 0 {
		t.Error("name padding is not NUL")
	}
	if !bytes.Equal(data[36:36+len("Wrapped Mundis")], []byte("Wrapped Mundis")) {
		t.Error("name bytes not at fixed offset")
	}
}

func TestMintWithoutAuthorities(t *testing.T) {
	mint := NewMint(0, []byte("fixed"), []byte("FIX"), nil, nil)
	got, err := DeserializeMint(mint.Serialize())
	if err != nil {
		t.Fatalf("DeserializeMint failed: %v", err)
	}
	if got.MintAuthority.IsSome {
		t.Error("mint authority should be None")
	}
	if got.FreezeAuthority.IsSome {
		t.Error("freeze authority should be None")
	}
}

func TestTokenAccountRoundTrip(t *testing.T) {
	account := NewTokenAccount(testPubkey(1), testPubkey(2))
	account.Amount = 42
	account.Delegate = COption{IsSome: true, Value: testPubkey(3)}
	account.DelegatedAmount = 10
	account.IsNative = COptionU64{IsSome: true, Value: 2_000_000}
	account.CloseAuthority = COption{IsSome: true, Value: testPubkey(4)}

	data := account.Serialize()
	if len(data) != TokenAccountSize {
		t.Fatalf("serialized token account is %d bytes, want %d", len(data), TokenAccountSize)
	}

	got, err := DeserializeTokenAccount(data)
	if err != nil {
		t.Fatalf("DeserializeTokenAccount failed: %v", err)
	}
	if got.Mint != testPubkey(1) || got.Owner != testPubkey(2) {
		t.Error("mint or owner lost in round trip")
	}
	if got.Amount != 42 || got.DelegatedAmount != 10 {
		t.Errorf("amounts = %d/%d, want 42/10", got.Amount, got.DelegatedAmount)
	}
	if !got.Delegate.IsSome || got.Delegate.Value != testPubkey(3) {
		t.Errorf("delegate = %+v", got.Delegate)
	}
	if !got.IsNativeAccount() || got.IsNative.Value != 2_000_000 {
		t.Errorf("is_native = %+v", got.IsNative)
	}
	if !got.CloseAuthority.IsSome || got.CloseAuthority.Value != testPubkey(4) {
		t.Errorf("close authority = %+v", got.CloseAuthority)
	}
	if got.State != AccountStateInitialized {
		t.Errorf("state = %d, want %d", got.State, AccountStateInitialized)
	}
}

func TestMultisigRoundTrip(t *testing.T) {
	ms := &Multisig{M: 2, N: 3, IsInitialized: true}
	for i := 0; i < 3; i++ {
		ms.Signers[i] = testPubkey(byte(10 + i))
	}

	data := ms.Serialize()
	if len(data) != MultisigSize {
		t.Fatalf("serialized multisig is %d bytes, want %d", len(data), MultisigSize)
	}

	got, err := DeserializeMultisig(data)
	if err != nil {
		t.Fatalf("DeserializeMultisig failed: %v", err)
	}
	if got.M != 2 || got.N != 3 || !got.IsInitialized {
		t.Errorf("header = m=%d n=%d init=%v", got.M, got.N, got.IsInitialized)
	}
	for i := 0; i < 3; i++ {
		if got.Signers[i] != testPubkey(byte(10+i)) {
			t.Errorf("signer %d lost in round trip", i)
		}
	}
}

func TestDeserializeExactLength(t *testing.T) {
	cases := []struct {
		name string
		size int
		fn   func([]byte) error
	}{
		{"mint", MintSize, func(b []byte) error { _, err := DeserializeMint(b); return err }},
		{"token account", TokenAccountSize, func(b []byte) error { _, err := DeserializeTokenAccount(b); return err }},
		{"multisig", MultisigSize, func(b []byte) error { _, err := DeserializeMultisig(b); return err }},
	}
	for _, tc := range cases {
		if err := tc.fn(make([]byte, tc.size)); err != nil {
			t.Errorf("%s: exact size rejected: %v", tc.name, err)
		}
		if err := tc.fn(make([]byte, tc.size-1)); !errors.Is(err, ErrInvalidAccountData) {
			t.Errorf("%s: short buffer: err = %v, want ErrInvalidAccountData", tc.name, err)
		}
		if err := tc.fn(make([]byte, tc.size+1)); !errors.Is(err, ErrInvalidAccountData) {
			t.Errorf("%s: long buffer: err = %v, want ErrInvalidAccountData", tc.name, err)
		}
	}
}

func TestStrictOptionTags(t *testing.T) {
	// Corrupt the mint authority tag.
	data := make([]byte, MintSize)
	binary.LittleEndian.PutUint32(data[0:4], 2)
	if _, err := DeserializeMint(data); !errors.Is(err, ErrInvalidAccountData) {
		t.Errorf("mint authority tag 2: err = %v, want ErrInvalidAccountData", err)
	}

	// Corrupt a token account's is_native tag (offset 32+32+8+36+1).
	data = make([]byte, TokenAccountSize)
	binary.LittleEndian.PutUint32(data[109:113], 0xFFFF)
	if _, err := DeserializeTokenAccount(data); !errors.Is(err, ErrInvalidAccountData) {
		t.Errorf("is_native bad tag: err = %v, want ErrInvalidAccountData", err)
	}

	// Tag 1 with a zero body is valid, just a zero value.
	data = make([]byte, MintSize)
	binary.LittleEndian.PutUint32(data[0:4], 1)
	mint, err := DeserializeMint(data)
	if err != nil {
		t.Fatalf("tag 1 rejected: %v", err)
	}
	if !mint.MintAuthority.IsSome || !mint.MintAuthority.Value.IsZero() {
		t.Errorf("mint authority = %+v, want Some(zero)", mint.MintAuthority)
	}
}

func TestNameSymbolTruncation(t *testing.T) {
	longName := bytes.Repeat([]byte{'a'}, MaxNameLength+5)
	mint := NewMint(0, longName, []byte("ABCDEFGHIJKLMNO"), nil, nil)

	// NewMint copies at most the fixed widths.
	if mint.NameString() != string(longName[:MaxNameLength]) {
		t.Errorf("name = %q, want %d a's", mint.NameString(), MaxNameLength)
	}
	if len(mint.SymbolString()) != MaxSymbolLength {
		t.Errorf("symbol length = %d, want %d", len(mint.SymbolString()), MaxSymbolLength)
	}
}

func TestAmountConversions(t *testing.T) {
	if got := AmountToUIAmount(1_500_000_000, 9); got != 1.5 {
		t.Errorf("AmountToUIAmount = %v, want 1.5", got)
	}
	if got := UIAmountToAmount(1.5, 9); got != 1_500_000_000 {
		t.Errorf("UIAmountToAmount = %d, want 1500000000", got)
	}
	if got := AmountToUIAmount(7, 0); got != 7 {
		t.Errorf("AmountToUIAmount with 0 decimals = %v, want 7", got)
	}
}
