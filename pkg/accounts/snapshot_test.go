package accounts

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

func TestSnapshotRoundTrip(t *testing.T) {
	path := filepath.Join(t.TempDir(), "accounts.snap")

	refs := make([]types.AccountRef, 0, 3)
	for i := byte(1); i <= 3; i++ {
		var pubkey types.Pubkey
		pubkey[0] = i
		acc := types.NewAccountWithData(types.Lamports(i)*1000, []byte{i, i, i}, types.TokenProgramID)
		refs = append(refs, types.AccountRef{Pubkey: pubkey, Account: acc})
	}

	if err := WriteSnapshot(path, refs); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	db := NewMemoryDB()
	defer db.Close()
	count, err := LoadSnapshot(path, db)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if count != 3 {
		t.Errorf("restored %d accounts, want 3", count)
	}

	for _, ref := range refs {
		got, err := db.GetAccount(ref.Pubkey)
		if err != nil {
			t.Fatalf("GetAccount failed: %v", err)
		}
		if got == nil {
			t.Fatalf("account %s missing after restore", ref.Pubkey)
		}
		if got.Lamports != ref.Account.Lamports {
			t.Errorf("lamports = %d, want %d", got.Lamports, ref.Account.Lamports)
		}
		if got.Owner != types.TokenProgramID {
			t.Errorf("owner = %s", got.Owner)
		}
		if len(got.Data) != 3 || got.Data[0] != ref.Pubkey[0] {
			t.Errorf("data = %v", got.Data)
		}
	}
}

func TestSnapshotEmpty(t *testing.T) {
	path := filepath.Join(t.TempDir(), "empty.snap")
	if err := WriteSnapshot(path, nil); err != nil {
		t.Fatalf("WriteSnapshot failed: %v", err)
	}

	db := NewMemoryDB()
	defer db.Close()
	count, err := LoadSnapshot(path, db)
	if err != nil {
		t.Fatalf("LoadSnapshot failed: %v", err)
	}
	if count != 0 {
		t.Errorf("restored %d accounts, want 0", count)
	}
}

func TestSnapshotRejectsBadMagic(t *testing.T) {
	path := filepath.Join(t.TempDir(), "bogus.snap")
	if err := os.WriteFile(path, []byte("not a snapshot"), 0o644); err != nil {
		t.Fatal(err)
	}
	if _, err := LoadSnapshot(path, NewMemoryDB()); err == nil {
		t.Error("corrupt file accepted")
	}
}
