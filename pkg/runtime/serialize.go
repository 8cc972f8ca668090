package runtime

import (
	"encoding/binary"
	"errors"
)

// Parameter serialization constants. These are part of the program ABI and
// must not change: foreign programs index into the serialized buffer with
// raw pointers at these exact offsets.
const (
	// MaxPermittedDataIncrease is the slack reserved after each account's
	// data for in-place growth during execution.
	MaxPermittedDataIncrease = 10 * 1024

	// MaxPermittedDataLength is the absolute cap on account data size.
	MaxPermittedDataLength = 10 * 1024 * 1024

	// alignOfU128 is the alignment the execution engine requires for
	// 128-bit loads inside the parameter buffer.
	alignOfU128 = 16

	// NonDupMarker flags an account serialized in full. Any other marker
	// byte is the position of the earlier account this one aliases.
	NonDupMarker = 0xFF
)

// Codec errors
var (
	// ErrInvalidArgument indicates a buffer bound violation. With a
	// correctly pre-sized buffer this is unreachable; hitting it means an
	// internal sizing bug, not bad input.
	ErrInvalidArgument = errors.New("invalid argument")

	// ErrInvalidRealloc indicates a program grew an account's data past
	// the permitted bounds.
	ErrInvalidRealloc = errors.New("invalid realloc")
)

// dupIndex returns the position of the first earlier account bound to the
// same pubkey, or -1 if this is the first occurrence. The scan is O(n^2)
// over the instruction's account list, which is capped small enough that
// this beats map allocation.
func dupIndex(accounts []*KeyedAccount, i int) int {
	for j := 0; j < i; j++ {
		if accounts[j].Pubkey == accounts[i].Pubkey {
			return j
		}
	}
	return -1
}

// alignUp returns the padding needed to bring offset up to the next
// multiple of align.
func alignUp(offset, align int) int {
	return (align - offset%align) % align
}

// SerializeAligned marshals keyed accounts, instruction data, and the
// program id into the aligned parameter format.
//
// Layout: u64 account count; per unique account: marker 0xFF, is_signer,
// is_writable, executable (1 byte each), 4 bytes padding, key (32),
// owner (32), lamports (u64), data_len (u64), data, a slack region of
// MaxPermittedDataIncrease zeros plus padding to a 16-byte boundary, and
// rent_epoch (u64). A dup account contributes the position byte of the
// account it aliases plus 7 bytes padding. Trailer: instruction data length
// (u64), instruction data, program id (32). All integers little-endian.
//
// Returns the buffer and the pre-instruction data length of each account
// position, which DeserializeAligned needs to walk the buffer after the
// program may have resized account data.
func SerializeAligned(accounts []*KeyedAccount, instructionData []byte, programID [32]byte) ([]byte, []uint64, error) {
	accountLengths := make([]uint64, len(accounts))

	// Dry-run the writer's offsets to size the buffer exactly.
	size := 8
	for i, acc := range accounts {
		size++ // dup marker
		if dupIndex(accounts, i) >= 0 {
			size += 7
			continue
		}
		size += 1 + 1 + 1 + 4 + 32 + 32 + 8 + 8
		size += len(acc.Data) + MaxPermittedDataIncrease
		size += alignUp(size, alignOfU128)
		size += 8 // rent_epoch
	}
	size += 8 + len(instructionData) + 32

	buf := make([]byte, size)
	offset := 0

	writeU64 := func(v uint64) error {
		if offset+8 > len(buf) {
			return ErrInvalidArgument
		}
		binary.LittleEndian.PutUint64(buf[offset:], v)
		offset += 8
		return nil
	}
	writeBytes := func(b []byte) error {
		if offset+len(b) > len(buf) {
			return ErrInvalidArgument
		}
		copy(buf[offset:], b)
		offset += len(b)
		return nil
	}
	writeU8 := func(v byte) error {
		if offset >= len(buf) {
			return ErrInvalidArgument
		}
		buf[offset] = v
		offset++
		return nil
	}

	if err := writeU64(uint64(len(accounts))); err != nil {
		return nil, nil, err
	}
	for i, acc := range accounts {
		accountLengths[i] = uint64(len(acc.Data))
		if pos := dupIndex(accounts, i); pos >= 0 {
			if err := writeU8(byte(pos)); err != nil {
				return nil, nil, err
			}
			offset += 7 // padding
			continue
		}
		if err := writeU8(NonDupMarker); err != nil {
			return nil, nil, err
		}
		if err := writeU8(boolByte(acc.IsSigner)); err != nil {
			return nil, nil, err
		}
		if err := writeU8(boolByte(acc.IsWritable)); err != nil {
			return nil, nil, err
		}
		if err := writeU8(boolByte(acc.Executable)); err != nil {
			return nil, nil, err
		}
		offset += 4 // padding
		if err := writeBytes(acc.Pubkey[:]); err != nil {
			return nil, nil, err
		}
		if err := writeBytes(acc.Owner[:]); err != nil {
			return nil, nil, err
		}
		if err := writeU64(*acc.Lamports); err != nil {
			return nil, nil, err
		}
		if err := writeU64(uint64(len(acc.Data))); err != nil {
			return nil, nil, err
		}
		if err := writeBytes(acc.Data); err != nil {
			return nil, nil, err
		}
		// Slack region plus alignment padding, all zero.
		pad := MaxPermittedDataIncrease + alignUp(offset+MaxPermittedDataIncrease, alignOfU128)
		if offset+pad > len(buf) {
			return nil, nil, ErrInvalidArgument
		}
		offset += pad
		if err := writeU64(acc.RentEpoch); err != nil {
			return nil, nil, err
		}
	}
	if err := writeU64(uint64(len(instructionData))); err != nil {
		return nil, nil, err
	}
	if err := writeBytes(instructionData); err != nil {
		return nil, nil, err
	}
	if err := writeBytes(programID[:]); err != nil {
		return nil, nil, err
	}
	if offset != len(buf) {
		return nil, nil, ErrInvalidArgument
	}
	return buf, accountLengths, nil
}

// DeserializeAligned unmarshals an aligned parameter buffer back into the
// keyed-account views after program execution. accountLengths must be the
// pre-instruction lengths returned by SerializeAligned: the buffer is
// walked with those, because the program may have changed the recorded
// data_len in place.
//
// With doSupportRealloc, any growth beyond MaxPermittedDataIncrease over
// the pre-instruction length, or beyond MaxPermittedDataLength absolute,
// fails with ErrInvalidRealloc. Without it (legacy), an out-of-bounds new
// length is silently ignored and the original length kept.
//
// Owner, lamports, and data are written back for every unique account.
func DeserializeAligned(accounts []*KeyedAccount, buf []byte, accountLengths []uint64, doSupportRealloc bool) error {
	if len(buf) < 8 {
		return ErrInvalidArgument
	}
	offset := 8 // account count
	for i, acc := range accounts {
		if offset >= len(buf) {
			return ErrInvalidArgument
		}
		preLen := int(accountLengths[i])
		if buf[offset] != NonDupMarker {
			offset += 8 // marker + padding
			continue
		}
		offset++ // marker
		offset += 1 + 1 + 1 + 4 + 32
		if offset+32+8+8 > len(buf) {
			return ErrInvalidArgument
		}
		var owner [32]byte
		copy(owner[:], buf[offset:offset+32])
		offset += 32
		lamports := binary.LittleEndian.Uint64(buf[offset:])
		offset += 8
		// Compare the recorded length as uint64 before narrowing, so a
		// huge value classifies as a realloc violation instead of wrapping
		// negative.
		postLen64 := binary.LittleEndian.Uint64(buf[offset:])
		offset += 8

		dataEnd := offset + preLen
		if doSupportRealloc {
			if postLen64 > uint64(preLen+MaxPermittedDataIncrease) || postLen64 > MaxPermittedDataLength {
				return ErrInvalidRealloc
			}
			dataEnd = offset + int(postLen64)
		} else if postLen64 != uint64(preLen) && postLen64 <= uint64(preLen+MaxPermittedDataIncrease) {
			dataEnd = offset + int(postLen64)
		}
		if dataEnd > len(buf) || dataEnd < offset {
			return ErrInvalidArgument
		}

		data := make([]byte, dataEnd-offset)
		copy(data, buf[offset:dataEnd])
		acc.Data = data
		*acc.Lamports = lamports
		acc.Owner = owner

		offset += preLen + MaxPermittedDataIncrease
		offset += alignUp(offset, alignOfU128)
		offset += 8 // rent_epoch
	}
	return nil
}

// SerializeUnaligned marshals keyed accounts into the legacy unaligned
// parameter format.
//
// Layout: u64 account count; per unique account: marker 0xFF, is_signer,
// is_writable, key (32), lamports (u64), data_len (u64), data, owner (32),
// executable (1), rent_epoch (u64). A dup account contributes only the
// position byte of the account it aliases. Trailer as in the aligned
// format.
func SerializeUnaligned(accounts []*KeyedAccount, instructionData []byte, programID [32]byte) ([]byte, []uint64, error) {
	accountLengths := make([]uint64, len(accounts))

	size := 8
	for i, acc := range accounts {
		size++ // dup marker
		if dupIndex(accounts, i) >= 0 {
			continue
		}
		size += 1 + 1 + 32 + 8 + 8 + len(acc.Data) + 32 + 1 + 8
	}
	size += 8 + len(instructionData) + 32

	buf := make([]byte, size)
	offset := 0
	binary.LittleEndian.PutUint64(buf[offset:], uint64(len(accounts)))
	offset += 8
	for i, acc := range accounts {
		accountLengths[i] = uint64(len(acc.Data))
		if pos := dupIndex(accounts, i); pos >= 0 {
			buf[offset] = byte(pos)
			offset++
			continue
		}
		buf[offset] = NonDupMarker
		offset++
		buf[offset] = boolByte(acc.IsSigner)
		offset++
		buf[offset] = boolByte(acc.IsWritable)
		offset++
		copy(buf[offset:], acc.Pubkey[:])
		offset += 32
		binary.LittleEndian.PutUint64(buf[offset:], *acc.Lamports)
		offset += 8
		binary.LittleEndian.PutUint64(buf[offset:], uint64(len(acc.Data)))
		offset += 8
		copy(buf[offset:], acc.Data)
		offset += len(acc.Data)
		copy(buf[offset:], acc.Owner[:])
		offset += 32
		buf[offset] = boolByte(acc.Executable)
		offset++
		binary.LittleEndian.PutUint64(buf[offset:], acc.RentEpoch)
		offset += 8
	}
	binary.LittleEndian.PutUint64(buf[offset:], uint64(len(instructionData)))
	offset += 8
	copy(buf[offset:], instructionData)
	offset += len(instructionData)
	copy(buf[offset:], programID[:])
	offset += 32
	if offset != len(buf) {
		return nil, nil, ErrInvalidArgument
	}
	return buf, accountLengths, nil
}

// DeserializeUnaligned unmarshals an unaligned parameter buffer back into
// the keyed-account views. The legacy format has no realloc slack, so only
// lamports and the pre-instruction length of data are written back.
func DeserializeUnaligned(accounts []*KeyedAccount, buf []byte, accountLengths []uint64) error {
	if len(buf) < 8 {
		return ErrInvalidArgument
	}
	offset := 8 // account count
	for i, acc := range accounts {
		if offset >= len(buf) {
			return ErrInvalidArgument
		}
		preLen := int(accountLengths[i])
		if buf[offset] != NonDupMarker {
			offset++ // marker only
			continue
		}
		offset++ // marker
		offset += 1 + 1 + 32
		if offset+8+8+preLen > len(buf) {
			return ErrInvalidArgument
		}
		lamports := binary.LittleEndian.Uint64(buf[offset:])
		offset += 8
		offset += 8 // data_len
		data := make([]byte, preLen)
		copy(data, buf[offset:offset+preLen])
		offset += preLen

		*acc.Lamports = lamports
		acc.Data = data

		offset += 32 + 1 + 8 // owner, executable, rent_epoch
	}
	return nil
}

func boolByte(b bool) byte {
	if b {
		return 1
	}
	return 0
}
