package accounts

import (
	"encoding/binary"
	"fmt"
	"io"
	"os"

	"github.com/klauspost/compress/zstd"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Snapshot format:
// - magic:   4 bytes ("AXSN")
// - version: 4 bytes (little-endian uint32)
// - count:   8 bytes (little-endian uint64)
// - entries: count x (pubkey 32 bytes + record_len 4 bytes + record)
//
// Records use the same binary format as the on-disk store. The whole
// stream after the header is zstd-compressed.

var snapshotMagic = [4]byte{'A', 'X', 'S', 'N'}

const snapshotVersion = 1

// WriteSnapshot exports all given accounts to a zstd-compressed snapshot
// file. Entries are written in the caller's order, so pass a sorted set
// when a deterministic file is needed.
func WriteSnapshot(path string, accounts []types.AccountRef) error {
	file, err := os.Create(path)
	if err != nil {
		return fmt.Errorf("failed to create snapshot file: %w", err)
	}
	defer file.Close()

	encoder, err := zstd.NewWriter(file)
	if err != nil {
		return fmt.Errorf("failed to create zstd encoder: %w", err)
	}

	header := make([]byte, 16)
	copy(header[0:4], snapshotMagic[:])
	binary.LittleEndian.PutUint32(header[4:8], snapshotVersion)
	binary.LittleEndian.PutUint64(header[8:16], uint64(len(accounts)))
	if _, err := encoder.Write(header); err != nil {
		encoder.Close()
		return fmt.Errorf("failed to write snapshot header: %w", err)
	}

	var lenBuf [4]byte
	for _, ref := range accounts {
		record, err := EncodeAccountRecord(ref.Account)
		if err != nil {
			encoder.Close()
			return fmt.Errorf("failed to encode account %s: %w", ref.Pubkey, err)
		}
		if _, err := encoder.Write(ref.Pubkey[:]); err != nil {
			encoder.Close()
			return err
		}
		binary.LittleEndian.PutUint32(lenBuf[:], uint32(len(record)))
		if _, err := encoder.Write(lenBuf[:]); err != nil {
			encoder.Close()
			return err
		}
		if _, err := encoder.Write(record); err != nil {
			encoder.Close()
			return err
		}
	}

	if err := encoder.Close(); err != nil {
		return fmt.Errorf("failed to finish snapshot: %w", err)
	}
	return nil
}

// LoadSnapshot imports a snapshot file into the database.
// Returns the number of accounts restored.
func LoadSnapshot(path string, db AccountsDB) (uint64, error) {
	file, err := os.Open(path)
	if err != nil {
		return 0, fmt.Errorf("failed to open snapshot file: %w", err)
	}
	defer file.Close()

	decoder, err := zstd.NewReader(file)
	if err != nil {
		return 0, fmt.Errorf("failed to create zstd decoder: %w", err)
	}
	defer decoder.Close()

	header := make([]byte, 16)
	if _, err := io.ReadFull(decoder, header); err != nil {
		return 0, fmt.Errorf("failed to read snapshot header: %w", err)
	}
	if [4]byte(header[0:4]) != snapshotMagic {
		return 0, fmt.Errorf("%w: bad snapshot magic", ErrInvalidAccountData)
	}
	if v := binary.LittleEndian.Uint32(header[4:8]); v != snapshotVersion {
		return 0, fmt.Errorf("%w: unsupported snapshot version %d", ErrInvalidAccountData, v)
	}
	count := binary.LittleEndian.Uint64(header[8:16])

	var pubkeyBuf [32]byte
	var lenBuf [4]byte
	for i := uint64(0); i < count; i++ {
		if _, err := io.ReadFull(decoder, pubkeyBuf[:]); err != nil {
			return i, fmt.Errorf("failed to read snapshot entry %d: %w", i, err)
		}
		if _, err := io.ReadFull(decoder, lenBuf[:]); err != nil {
			return i, fmt.Errorf("failed to read snapshot entry %d: %w", i, err)
		}
		record := make([]byte, binary.LittleEndian.Uint32(lenBuf[:]))
		if _, err := io.ReadFull(decoder, record); err != nil {
			return i, fmt.Errorf("failed to read snapshot entry %d: %w", i, err)
		}

		account, err := DecodeAccountRecord(record)
		if err != nil {
			return i, fmt.Errorf("failed to decode snapshot entry %d: %w", i, err)
		}
		var pubkey types.Pubkey
		copy(pubkey[:], pubkeyBuf[:])
		if err := db.SetAccount(pubkey, account); err != nil {
			return i, fmt.Errorf("failed to store snapshot entry %d: %w", i, err)
		}
	}

	return count, nil
}
