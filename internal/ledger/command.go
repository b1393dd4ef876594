package ledger

import (
	"encoding/json"
	"fmt"
	"strings"
)

// Command is the only mutation entry point. Exactly one field is set.
type Command struct {
	CreateAccount  *Account
	UpdateAccount  *UpdateAccount
	AddTransaction *Transaction
}

// UpdateAccount applies changes to an existing account, in order; a later
// change of the same kind overrides an earlier one. It never touches the
// balance.
type UpdateAccount struct {
	ID      AccountID       `json:"id"`
	Changes []AccountChange `json:"changes"`
}

type ChangeOp string

const (
	OpDisable  ChangeOp = "disable"
	OpSetName  ChangeOp = "set_name"
	OpSetNotes ChangeOp = "set_notes"
)

// AccountChange is one modification of an UpdateAccount command.
type AccountChange struct {
	Op    ChangeOp `json:"op"`
	Value string   `json:"value,omitempty"`
}

func Disable() AccountChange         { return AccountChange{Op: OpDisable} }
func SetName(s string) AccountChange { return AccountChange{Op: OpSetName, Value: s} }
func SetNotes(s string) AccountChange {
	return AccountChange{Op: OpSetNotes, Value: s}
}

// Describe renders the audit message recorded by the backend's durability
// layer for a successful command.
func (c Command) Describe() string {
	switch {
	case c.CreateAccount != nil:
		return fmt.Sprintf("Create account %s: %q", c.CreateAccount.ID, c.CreateAccount.Name)
	case c.AddTransaction != nil:
		t := c.AddTransaction
		var detail string
		switch inner := t.Inner.(type) {
		case Received:
			detail = fmt.Sprintf("received from %s", inner.Source)
		case Paid:
			detail = fmt.Sprintf("paid to %s", inner.Dst)
		case MovePhys:
			detail = fmt.Sprintf("moved to %s", inner.Dst)
		case MoveVirt:
			detail = fmt.Sprintf("moved to %s", inner.Dst)
		case Convert:
			detail = fmt.Sprintf("converted to %s", inner.NewAmount)
		}
		return fmt.Sprintf("Add transaction %s of %s: %s", t.ID, t.Amount, detail)
	case c.UpdateAccount != nil:
		var sb strings.Builder
		fmt.Fprintf(&sb, "Update account %s:\n", c.UpdateAccount.ID)
		for _, change := range c.UpdateAccount.Changes {
			switch change.Op {
			case OpDisable:
				sb.WriteString("  - disable account\n")
			case OpSetName:
				fmt.Fprintf(&sb, "  - set name to %q\n", change.Value)
			case OpSetNotes:
				fmt.Fprintf(&sb, "  - set notes to %q\n", change.Value)
			}
		}
		return sb.String()
	}
	return "(empty command)"
}

const (
	cmdCreateAccount  = "create_account"
	cmdUpdateAccount  = "update_account"
	cmdAddTransaction = "add_transaction"
)

type commandJSON struct {
	Type        string          `json:"type"`
	Account     *Account        `json:"account,omitempty"`
	ID          *AccountID      `json:"id,omitempty"`
	Changes     []AccountChange `json:"changes,omitempty"`
	Transaction *Transaction    `json:"transaction,omitempty"`
}

func (c Command) MarshalJSON() ([]byte, error) {
	switch {
	case c.CreateAccount != nil:
		return json.Marshal(commandJSON{Type: cmdCreateAccount, Account: c.CreateAccount})
	case c.UpdateAccount != nil:
		id := c.UpdateAccount.ID
		return json.Marshal(commandJSON{Type: cmdUpdateAccount, ID: &id, Changes: c.UpdateAccount.Changes})
	case c.AddTransaction != nil:
		return json.Marshal(commandJSON{Type: cmdAddTransaction, Transaction: c.AddTransaction})
	}
	return nil, fmt.Errorf("empty command")
}

func (c *Command) UnmarshalJSON(data []byte) error {
	var raw commandJSON
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}
	*c = Command{}
	switch raw.Type {
	case cmdCreateAccount:
		if raw.Account == nil {
			return fmt.Errorf("%w: create_account requires an account", ErrInvalidEncoding)
		}
		c.CreateAccount = raw.Account
	case cmdUpdateAccount:
		if raw.ID == nil {
			return fmt.Errorf("%w: update_account requires an id", ErrInvalidEncoding)
		}
		c.UpdateAccount = &UpdateAccount{ID: *raw.ID, Changes: raw.Changes}
	case cmdAddTransaction:
		if raw.Transaction == nil {
			return fmt.Errorf("%w: add_transaction requires a transaction", ErrInvalidEncoding)
		}
		c.AddTransaction = raw.Transaction
	default:
		return fmt.Errorf("%w: unknown command type %q", ErrInvalidEncoding, raw.Type)
	}
	return nil
}
