package accounts

import (
	"encoding/binary"
	"errors"
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// Persisted account record layout, shared by every store backend and by
// snapshot files:
//
//	version     u8
//	flags       u8 (bit 0: executable)
//	owner       32 bytes
//	lamports    u64 little-endian
//	rent_epoch  u64 little-endian
//	data_len    u32 little-endian
//	data        data_len bytes
//
// The version byte leads so a layout change can coexist with records
// written before it. Decoding rejects any record whose total length is
// not exactly header + data_len.

const (
	recordVersion    = 1
	recordHeaderSize = 1 + 1 + 32 + 8 + 8 + 4
)

const recordExecutableFlag = 0x01

// ErrInvalidAccountData is returned when a persisted record is malformed.
var ErrInvalidAccountData = errors.New("invalid account data")

// EncodeAccountRecord encodes an account into the persisted record form.
func EncodeAccountRecord(account *types.Account) ([]byte, error) {
	if account == nil {
		return nil, errors.New("cannot encode nil account")
	}

	record := make([]byte, recordHeaderSize+len(account.Data))
	record[0] = recordVersion
	if account.Executable {
		record[1] |= recordExecutableFlag
	}
	copy(record[2:34], account.Owner[:])
	binary.LittleEndian.PutUint64(record[34:42], uint64(account.Lamports))
	binary.LittleEndian.PutUint64(record[42:50], uint64(account.RentEpoch))
	binary.LittleEndian.PutUint32(record[50:54], uint32(len(account.Data)))
	copy(record[recordHeaderSize:], account.Data)
	return record, nil
}

// DecodeAccountRecord decodes a persisted record back into an account.
func DecodeAccountRecord(record []byte) (*types.Account, error) {
	if len(record) < recordHeaderSize {
		return nil, fmt.Errorf("%w: record of %d bytes, need at least %d",
			ErrInvalidAccountData, len(record), recordHeaderSize)
	}
	if record[0] != recordVersion {
		return nil, fmt.Errorf("%w: unknown record version %d",
			ErrInvalidAccountData, record[0])
	}

	dataLen := binary.LittleEndian.Uint32(record[50:54])
	if uint64(len(record)) != recordHeaderSize+uint64(dataLen) {
		return nil, fmt.Errorf("%w: record of %d bytes, data_len says %d",
			ErrInvalidAccountData, len(record), recordHeaderSize+uint64(dataLen))
	}

	account := &types.Account{
		Executable: record[1]&recordExecutableFlag != 0,
		Lamports:   types.Lamports(binary.LittleEndian.Uint64(record[34:42])),
		RentEpoch:  types.Epoch(binary.LittleEndian.Uint64(record[42:50])),
	}
	copy(account.Owner[:], record[2:34])
	if dataLen > 0 {
		account.Data = make([]byte, dataLen)
		copy(account.Data, record[recordHeaderSize:])
	}
	return account, nil
}
