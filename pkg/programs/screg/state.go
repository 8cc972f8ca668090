package screg

import (
	"encoding/binary"
	"fmt"

	"github.com/mundisnetwork/axis-sub000/pkg/types"
)

// SidechainRecordSize is the size of a packed SidechainRecord. The layout
// leaves reserved space at the tail for future fields.
const SidechainRecordSize = 426

// Fixed widths of the optional string fields.
const (
	MaxURLLength   = 128
	MaxEmailLength = 64
)

// Sidechain lifecycle states
const (
	SidechainUninitialized uint8 = 0
	SidechainRegistered    uint8 = 1
	SidechainInQueue       uint8 = 2
	SidechainStaging       uint8 = 3
	SidechainBooting       uint8 = 4
	SidechainActive        uint8 = 5
	SidechainBroken        uint8 = 6
	SidechainDead          uint8 = 7
)

// SidechainRecord describes a registered sidechain.
//
// Layout (426 bytes):
//   - chain_owner: Pubkey (32 bytes)
//   - website_url: optional string (1 tag + 1 len + 128 bytes)
//   - github_url: optional string (1 tag + 1 len + 128 bytes)
//   - contact_email: optional string (1 tag + 1 len + 64 bytes)
//   - deposit: u64 (8 bytes)
//   - state: u8 (1 byte)
//   - vote_deposit: u64 (8 bytes)
//   - registration_time: u64 (8 bytes)
//   - boot_time: u64 (8 bytes)
//   - validator_count: u16 (2 bytes)
//   - total_stake: u64 (8 bytes)
//   - is_initialized: bool (1 byte)
//   - reserved: 24 bytes
type SidechainRecord struct {
	ChainOwner       types.Pubkey
	WebsiteURL       *string
	GithubURL        *string
	ContactEmail     *string
	Deposit          uint64
	State            uint8
	VoteDeposit      uint64
	RegistrationTime uint64
	BootTime         uint64
	ValidatorCount   uint16
	TotalStake       uint64
	IsInitialized    bool
}

// Serialize packs the record into its fixed-width form.
func (r *SidechainRecord) Serialize() []byte {
	data := make([]byte, SidechainRecordSize)
	offset := 0

	copy(data[offset:offset+32], r.ChainOwner[:])
	offset += 32

	offset = serializeOptionString(data, offset, r.WebsiteURL, MaxURLLength)
	offset = serializeOptionString(data, offset, r.GithubURL, MaxURLLength)
	offset = serializeOptionString(data, offset, r.ContactEmail, MaxEmailLength)

	binary.LittleEndian.PutUint64(data[offset:], r.Deposit)
	offset += 8

	data[offset] = r.State
	offset++

	binary.LittleEndian.PutUint64(data[offset:], r.VoteDeposit)
	offset += 8

	binary.LittleEndian.PutUint64(data[offset:], r.RegistrationTime)
	offset += 8

	binary.LittleEndian.PutUint64(data[offset:], r.BootTime)
	offset += 8

	binary.LittleEndian.PutUint16(data[offset:], r.ValidatorCount)
	offset += 2

	binary.LittleEndian.PutUint64(data[offset:], r.TotalStake)
	offset += 8

	if r.IsInitialized {
		data[offset] = 1
	}

	return data
}

// DeserializeSidechainRecord unpacks a record. The buffer must be exactly
// SidechainRecordSize bytes.
func DeserializeSidechainRecord(data []byte) (*SidechainRecord, error) {
	if len(data) != SidechainRecordSize {
		return nil, fmt.Errorf("%w: sidechain record must be %d bytes, got %d",
			ErrInvalidState, SidechainRecordSize, len(data))
	}

	r := &SidechainRecord{}
	offset := 0

	copy(r.ChainOwner[:], data[offset:offset+32])
	offset += 32

	var err error
	r.WebsiteURL, offset, err = deserializeOptionString(data, offset, MaxURLLength)
	if err != nil {
		return nil, err
	}
	r.GithubURL, offset, err = deserializeOptionString(data, offset, MaxURLLength)
	if err != nil {
		return nil, err
	}
	r.ContactEmail, offset, err = deserializeOptionString(data, offset, MaxEmailLength)
	if err != nil {
		return nil, err
	}

	r.Deposit = binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	r.State = data[offset]
	offset++

	r.VoteDeposit = binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	r.RegistrationTime = binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	r.BootTime = binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	r.ValidatorCount = binary.LittleEndian.Uint16(data[offset:])
	offset += 2

	r.TotalStake = binary.LittleEndian.Uint64(data[offset:])
	offset += 8

	r.IsInitialized = data[offset] != 0

	return r, nil
}

func serializeOptionString(data []byte, offset int, s *string, width int) int {
	if s != nil {
		data[offset] = 1
		data[offset+1] = byte(len(*s))
		copy(data[offset+2:offset+2+width], *s)
	}
	return offset + 2 + width
}

func deserializeOptionString(data []byte, offset int, width int) (*string, int, error) {
	tag := data[offset]
	length := int(data[offset+1])
	body := data[offset+2 : offset+2+width]
	next := offset + 2 + width

	switch tag {
	case 0:
		return nil, next, nil
	case 1:
		if length > width {
			return nil, next, fmt.Errorf("%w: string length %d exceeds field width %d",
				ErrInvalidState, length, width)
		}
		s := string(body[:length])
		return &s, next, nil
	default:
		return nil, next, fmt.Errorf("%w: invalid option tag %d", ErrInvalidState, tag)
	}
}
