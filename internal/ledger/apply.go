package ledger

import "fmt"

// Apply runs one command against the account table and returns the accounts
// it would create or update, without mutating the table. Application is
// all-or-nothing: any error means no account changed and the caller must
// persist nothing. On success the caller persists the returned accounts
// (and the transaction, for AddTransaction) as one atomic unit.
func Apply(accounts map[AccountID]Account, cmd Command) ([]Account, error) {
	switch {
	case cmd.CreateAccount != nil:
		return applyCreate(accounts, *cmd.CreateAccount)
	case cmd.UpdateAccount != nil:
		return applyUpdate(accounts, *cmd.UpdateAccount)
	case cmd.AddTransaction != nil:
		return applyTransaction(accounts, *cmd.AddTransaction)
	}
	return nil, fmt.Errorf("empty command")
}

func applyCreate(accounts map[AccountID]Account, account Account) ([]Account, error) {
	if _, exists := accounts[account.ID]; exists {
		return nil, fmt.Errorf("%w: %s", ErrDuplicateID, account.ID)
	}
	account = account.Clone()
	if account.Current == nil {
		account.Current = Amounts{}
	}
	return []Account{account}, nil
}

func applyUpdate(accounts map[AccountID]Account, update UpdateAccount) ([]Account, error) {
	account, ok := accounts[update.ID]
	if !ok {
		return nil, fmt.Errorf("%w: %s", ErrNotFound, update.ID)
	}
	account = account.Clone()
	for _, change := range update.Changes {
		switch change.Op {
		case OpDisable:
			account.Enabled = false
		case OpSetName:
			account.Name = change.Value
		case OpSetNotes:
			account.Notes = change.Value
		default:
			return nil, fmt.Errorf("%w: unknown account change %q", ErrInvalidEncoding, change.Op)
		}
	}
	return []Account{account}, nil
}

func applyTransaction(accounts map[AccountID]Account, t Transaction) ([]Account, error) {
	for _, p := range t.Participants() {
		account, ok := accounts[p.Account]
		if !ok {
			return nil, fmt.Errorf("%w: %s", ErrNotFound, p.Account)
		}
		if account.Type != p.Axis {
			return nil, fmt.Errorf("%w: %s is %s, expected %s", ErrWrongAxis, p.Account, account.Type, p.Axis)
		}
	}

	// Group deltas by account so each participant is checked once against the
	// sum of its changes.
	var order []AccountID
	grouped := map[AccountID][]Amount{}
	for _, d := range t.Deltas() {
		if _, seen := grouped[d.Account]; !seen {
			order = append(order, d.Account)
		}
		grouped[d.Account] = append(grouped[d.Account], d.Amount)
	}

	changed := make([]Account, 0, len(order))
	for _, id := range order {
		account := accounts[id].Clone()
		for _, amount := range grouped[id] {
			account.Current.Add(amount)
		}
		if c, negative := account.Current.Negative(); negative {
			return nil, NegativeBalanceError{Account: id, Currency: c}
		}
		changed = append(changed, account)
	}
	return changed, nil
}
