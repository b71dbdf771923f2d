package models

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
)

// AddressLength is the fixed byte width of an account identifier.
const AddressLength = 20

// Address identifies a ledger participant. It is an opaque fixed-width value;
// the zero value is reserved and never a valid operation participant.
type Address [AddressLength]byte

// ZeroAddress is the reserved null identifier.
var ZeroAddress Address

// ParseAddress decodes a 0x-prefixed or bare hex string into an Address.
func ParseAddress(s string) (Address, error) {
	var a Address

	if len(s) >= 2 && (s[:2] == "0x" || s[:2] == "0X") {
		s = s[2:]
	}
	if len(s) != AddressLength*2 {
		return a, fmt.Errorf("address must be %d hex characters, got %d", AddressLength*2, len(s))
	}

	raw, err := hex.DecodeString(s)
	if err != nil {
		return a, fmt.Errorf("invalid address %q: %w", s, err)
	}

	copy(a[:], raw)
	return a, nil
}

// IsZero reports whether the address is the reserved null identifier.
func (a Address) IsZero() bool {
	return a == ZeroAddress
}

// String renders the address as 0x-prefixed lowercase hex.
func (a Address) String() string {
	return "0x" + hex.EncodeToString(a[:])
}

// MarshalJSON encodes the address as its hex string form.
func (a Address) MarshalJSON() ([]byte, error) {
	return json.Marshal(a.String())
}

// UnmarshalJSON decodes an address from its hex string form.
func (a *Address) UnmarshalJSON(data []byte) error {
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return err
	}
	parsed, err := ParseAddress(s)
	if err != nil {
		return err
	}
	*a = parsed
	return nil
}

// AllowancePair keys a delegated-spending allowance: how much Spender may
// still move out of Owner's balance.
type AllowancePair struct {
	Owner   Address
	Spender Address
}
