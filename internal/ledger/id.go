package ledger

import (
	"bytes"
	"fmt"
	"strings"

	"github.com/google/uuid"
)

// Identifiers are 128-bit UUIDv7 values, so sorting by identifier is sorting
// by creation time. They render as proquints rather than hex so they can be
// read aloud and typed into a terminal.

// AccountID identifies an account of either type.
type AccountID struct{ id uuid.UUID }

// PhysicalID is an AccountID known to refer to a physical account.
type PhysicalID struct{ id uuid.UUID }

// VirtualID is an AccountID known to refer to a virtual account.
type VirtualID struct{ id uuid.UUID }

// TransactionID identifies a transaction.
type TransactionID struct{ id uuid.UUID }

// CommandID identifies one entry in a backend's command log.
type CommandID struct{ id uuid.UUID }

func newID() uuid.UUID {
	return uuid.Must(uuid.NewV7())
}

func NewAccountID() AccountID         { return AccountID{newID()} }
func NewTransactionID() TransactionID { return TransactionID{newID()} }
func NewCommandID() CommandID         { return CommandID{newID()} }

// Erase drops the axis tag. Persisted identifiers are always untagged.
func (p PhysicalID) Erase() AccountID { return AccountID{p.id} }
func (v VirtualID) Erase() AccountID  { return AccountID{v.id} }

// Physical asserts that the id refers to a physical account. The assertion is
// checked against the account table when the id is used, not here.
func (a AccountID) Physical() PhysicalID { return PhysicalID{a.id} }

// Virtual asserts that the id refers to a virtual account.
func (a AccountID) Virtual() VirtualID { return VirtualID{a.id} }

func (a AccountID) IsZero() bool { return a.id == uuid.UUID{} }

func (a AccountID) Compare(b AccountID) int { return bytes.Compare(a.id[:], b.id[:]) }

func (t TransactionID) Compare(u TransactionID) int { return bytes.Compare(t.id[:], u.id[:]) }

func (a AccountID) String() string     { return proquintEncode(a.id) }
func (p PhysicalID) String() string    { return proquintEncode(p.id) }
func (v VirtualID) String() string     { return proquintEncode(v.id) }
func (t TransactionID) String() string { return proquintEncode(t.id) }
func (c CommandID) String() string     { return proquintEncode(c.id) }

func ParseAccountID(s string) (AccountID, error) {
	id, err := proquintDecode(s)
	return AccountID{id}, err
}

func ParseTransactionID(s string) (TransactionID, error) {
	id, err := proquintDecode(s)
	return TransactionID{id}, err
}

func (a AccountID) MarshalText() ([]byte, error)     { return []byte(a.String()), nil }
func (p PhysicalID) MarshalText() ([]byte, error)    { return []byte(p.String()), nil }
func (v VirtualID) MarshalText() ([]byte, error)     { return []byte(v.String()), nil }
func (t TransactionID) MarshalText() ([]byte, error) { return []byte(t.String()), nil }
func (c CommandID) MarshalText() ([]byte, error)     { return []byte(c.String()), nil }

func (a *AccountID) UnmarshalText(text []byte) (err error) {
	a.id, err = proquintDecode(string(text))
	return err
}

func (p *PhysicalID) UnmarshalText(text []byte) (err error) {
	p.id, err = proquintDecode(string(text))
	return err
}

func (v *VirtualID) UnmarshalText(text []byte) (err error) {
	v.id, err = proquintDecode(string(text))
	return err
}

func (t *TransactionID) UnmarshalText(text []byte) (err error) {
	t.id, err = proquintDecode(string(text))
	return err
}

func (c *CommandID) UnmarshalText(text []byte) (err error) {
	c.id, err = proquintDecode(string(text))
	return err
}

// Proquint encoding: each 16-bit group becomes a pronounceable
// consonant-vowel-consonant-vowel-consonant word, so a 128-bit id is eight
// words joined by dashes.
const (
	proquintConsonants = "bdfghjklmnprstvz"
	proquintVowels     = "aiou"
)

func proquintEncode(id uuid.UUID) string {
	var sb strings.Builder
	for i := 0; i < len(id); i += 2 {
		if i > 0 {
			sb.WriteByte('-')
		}
		x := uint16(id[i])<<8 | uint16(id[i+1])
		sb.WriteByte(proquintConsonants[x>>12&0xf])
		sb.WriteByte(proquintVowels[x>>10&0x3])
		sb.WriteByte(proquintConsonants[x>>6&0xf])
		sb.WriteByte(proquintVowels[x>>4&0x3])
		sb.WriteByte(proquintConsonants[x&0xf])
	}
	return sb.String()
}

func proquintDecode(s string) (uuid.UUID, error) {
	var id uuid.UUID
	words := strings.Split(s, "-")
	if len(words) != 8 {
		return id, fmt.Errorf("%w: identifier %q must be 8 proquint words", ErrInvalidEncoding, s)
	}
	for i, word := range words {
		if len(word) != 5 {
			return id, fmt.Errorf("%w: identifier word %q", ErrInvalidEncoding, word)
		}
		var x uint16
		for j, alphabet := range [5]string{
			proquintConsonants, proquintVowels, proquintConsonants, proquintVowels, proquintConsonants,
		} {
			k := strings.IndexByte(alphabet, word[j])
			if k < 0 {
				return id, fmt.Errorf("%w: identifier word %q", ErrInvalidEncoding, word)
			}
			if len(alphabet) == 4 {
				x = x<<2 | uint16(k)
			} else {
				x = x<<4 | uint16(k)
			}
		}
		id[2*i] = byte(x >> 8)
		id[2*i+1] = byte(x)
	}
	return id, nil
}
