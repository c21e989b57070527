package ledger

import (
	"crypto/sha256"
	"errors"
	"fmt"

	"github.com/mr-tron/base58"
)

const AddressLen = 32

// Address keys one record in the flat account space. The text form is base58.
type Address [AddressLen]byte

var ZeroAddress Address

func (a Address) String() string {
	return base58.Encode(a[:])
}

func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// ParseAddress decodes the base58 text form.
func ParseAddress(s string) (Address, error) {
	var a Address
	raw, err := base58.Decode(s)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}
	if len(raw) != AddressLen {
		return a, fmt.Errorf("invalid address %q: got %d bytes, want %d", s, len(raw), AddressLen)
	}
	copy(a[:], raw)
	return a, nil
}

// Seed tags for derived account addresses.
const (
	SeedUser       = "user"
	SeedBounty     = "bounty"
	SeedEscrow     = "bounty-escrow"
	SeedSubmission = "submission"
)

// maxSeedLen caps the combined length of tag + parts fed into Derive.
const maxSeedLen = 256

// programSeed namespaces every derived address to this program.
var programSeed = []byte("bounty-hunt-program/v1")

// Both conditions are configuration errors, not runtime-recoverable ones.
var (
	ErrSeedTooLong = errors.New("ledger: combined derivation seeds exceed maximum length")
	ErrNoValidBump = errors.New("ledger: no valid bump for derivation seeds")
)

// Derive maps (tag, parts) to a deterministic address plus the bump that
// disambiguated it. The bump search walks 255 down to 0 and keeps the first
// candidate whose digest lands in the valid half of the space, so identical
// inputs always resolve to the same (address, bump) pair.
func Derive(tag string, parts ...[]byte) (Address, uint8, error) {
	total := len(tag)
	for _, p := range parts {
		total += len(p)
	}
	if total > maxSeedLen {
		return ZeroAddress, 0, ErrSeedTooLong
	}

	for bump := 255; bump >= 0; bump-- {
		h := sha256.New()
		h.Write([]byte(tag))
		for _, p := range parts {
			h.Write(p)
		}
		h.Write([]byte{uint8(bump)})
		h.Write(programSeed)

		var addr Address
		copy(addr[:], h.Sum(nil))
		if addr[AddressLen-1]&0x80 == 0 {
			return addr, uint8(bump), nil
		}
	}
	return ZeroAddress, 0, ErrNoValidBump
}

// ProfileAddress derives the one profile address an owner may hold.
func ProfileAddress(owner Address) (Address, uint8, error) {
	return Derive(SeedUser, owner[:])
}

// BountyAddress derives the address of a (creator, title) bounty.
func BountyAddress(creator Address, title string) (Address, uint8, error) {
	return Derive(SeedBounty, creator[:], []byte(title))
}

// EscrowAddress derives the value sub-account owned by a bounty.
func EscrowAddress(bounty Address) (Address, uint8, error) {
	return Derive(SeedEscrow, bounty[:])
}

// SubmissionAddress derives the one submission a hunter may file per bounty.
func SubmissionAddress(bounty, hunter Address) (Address, uint8, error) {
	return Derive(SeedSubmission, bounty[:], hunter[:])
}
