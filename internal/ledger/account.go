package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// AccountType is the axis an account lives on: physical accounts track where
// money actually sits, virtual accounts track what it is earmarked for.
type AccountType string

const (
	Physical AccountType = "physical"
	Virtual  AccountType = "virtual"
)

func ParseAccountType(s string) (AccountType, error) {
	switch strings.ToLower(s) {
	case "physical":
		return Physical, nil
	case "virtual":
		return Virtual, nil
	}
	return "", fmt.Errorf("%w: no such account type %q", ErrInvalidEncoding, s)
}

func (t AccountType) String() string { return string(t) }

func (t AccountType) MarshalText() ([]byte, error) { return []byte(t), nil }

func (t *AccountType) UnmarshalText(text []byte) error {
	parsed, err := ParseAccountType(string(text))
	if err != nil {
		return err
	}
	*t = parsed
	return nil
}

// Account is one ledger account. Current is derived from transaction history:
// the local backend maintains it as a cache, the sql backend recomputes it on
// every read, and both must equal BalanceOf over the account's transactions.
type Account struct {
	ID      AccountID   `json:"id" toml:"id"`
	Name    string      `json:"name" toml:"name"`
	Notes   string      `json:"notes" toml:"notes"`
	Type    AccountType `json:"type" toml:"type"`
	Current Amounts     `json:"current" toml:"current"`
	Enabled bool        `json:"enabled" toml:"enabled"`
}

type accountJSON struct {
	ID      AccountID   `json:"id"`
	Name    string      `json:"name"`
	Notes   string      `json:"notes"`
	Type    AccountType `json:"type"`
	Current Amounts     `json:"current"`
	Enabled *bool       `json:"enabled"`
}

// UnmarshalJSON rejects payloads that omit enabled: a hand-written
// create_account body must say whether the account starts enabled, it never
// gets the zero value.
func (a *Account) UnmarshalJSON(data []byte) error {
	var raw accountJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	if raw.Enabled == nil {
		return fmt.Errorf("%w: account %s is missing enabled", ErrInvalidEncoding, raw.ID)
	}
	*a = Account{
		ID:      raw.ID,
		Name:    raw.Name,
		Notes:   raw.Notes,
		Type:    raw.Type,
		Current: raw.Current,
		Enabled: *raw.Enabled,
	}
	return nil
}

// NewAccount returns an enabled account with a fresh id and a zero balance.
func NewAccount(name string, typ AccountType, notes string) Account {
	return Account{
		ID:      NewAccountID(),
		Name:    name,
		Notes:   notes,
		Type:    typ,
		Current: Amounts{},
		Enabled: true,
	}
}

// DefaultVirtualAccount is the account seeded into every fresh repository.
func DefaultVirtualAccount() Account {
	return NewAccount(
		"Default Virtual Account",
		Virtual,
		"A virtual account is required to do much, but many transactions don't really need one, so this is a default to use",
	)
}

func (a Account) Clone() Account {
	a.Current = a.Current.Clone()
	return a
}
