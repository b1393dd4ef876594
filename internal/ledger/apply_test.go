package ledger

import (
	"errors"
	"testing"
)

// table builds an account map from accounts, keyed by id.
func table(accounts ...Account) map[AccountID]Account {
	out := make(map[AccountID]Account, len(accounts))
	for _, acc := range accounts {
		out[acc.ID] = acc
	}
	return out
}

func apply(t *testing.T, accounts map[AccountID]Account, cmd Command) {
	t.Helper()
	changed, err := Apply(accounts, cmd)
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	for _, acc := range changed {
		accounts[acc.ID] = acc
	}
}

func TestApplyCreateAccount(t *testing.T) {
	accounts := map[AccountID]Account{}
	account := NewAccount("Checking", Physical, "")

	changed, err := Apply(accounts, Command{CreateAccount: &account})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	if len(changed) != 1 || changed[0].ID != account.ID {
		t.Fatalf("changed = %+v", changed)
	}
	if !changed[0].Enabled {
		t.Error("new account is not enabled")
	}
	if len(accounts) != 0 {
		t.Error("Apply mutated the caller's table")
	}

	accounts[account.ID] = changed[0]
	if _, err := Apply(accounts, Command{CreateAccount: &account}); !errors.Is(err, ErrDuplicateID) {
		t.Errorf("recreating the same id gave %v, want ErrDuplicateID", err)
	}
}

func TestApplyUpdateAccount(t *testing.T) {
	account := NewAccount("Checking", Physical, "old notes")
	accounts := table(account)

	update := UpdateAccount{
		ID:      account.ID,
		Changes: []AccountChange{SetName("Main"), SetNotes("new notes"), SetName("Main Checking"), Disable()},
	}
	changed, err := Apply(accounts, Command{UpdateAccount: &update})
	if err != nil {
		t.Fatalf("Apply: %v", err)
	}
	got := changed[0]
	// Later changes of the same kind win.
	if got.Name != "Main Checking" || got.Notes != "new notes" || got.Enabled {
		t.Errorf("updated account = %+v", got)
	}
	if accounts[account.ID].Name != "Checking" {
		t.Error("Apply mutated the caller's table")
	}

	missing := UpdateAccount{ID: NewAccountID(), Changes: []AccountChange{Disable()}}
	if _, err := Apply(accounts, Command{UpdateAccount: &missing}); !errors.Is(err, ErrNotFound) {
		t.Errorf("updating a missing account gave %v, want ErrNotFound", err)
	}
}

func TestApplyTransactionRejections(t *testing.T) {
	phys := NewAccount("Checking", Physical, "")
	virt := NewAccount("Rent", Virtual, "")
	accounts := table(phys, virt)

	cases := []struct {
		name string
		tx   Transaction
		want error
	}{
		{
			name: "unknown participant",
			tx: Transaction{
				ID:     NewTransactionID(),
				Amount: eur(100),
				Inner:  Received{Source: "x", Dst: NewAccountID().Physical(), DstVirt: virt.ID.Virtual()},
			},
			want: ErrNotFound,
		},
		{
			name: "virtual account in a physical slot",
			tx: Transaction{
				ID:     NewTransactionID(),
				Amount: eur(100),
				Inner:  Received{Source: "x", Dst: virt.ID.Physical(), DstVirt: virt.ID.Virtual()},
			},
			want: ErrWrongAxis,
		},
		{
			name: "physical account in a virtual slot",
			tx: Transaction{
				ID:     NewTransactionID(),
				Amount: eur(100),
				Inner:  Received{Source: "x", Dst: phys.ID.Physical(), DstVirt: phys.ID.Virtual()},
			},
			want: ErrWrongAxis,
		},
	}

	for _, c := range cases {
		t.Run(c.name, func(t *testing.T) {
			if _, err := Apply(accounts, Command{AddTransaction: &c.tx}); !errors.Is(err, c.want) {
				t.Errorf("Apply gave %v, want %v", err, c.want)
			}
		})
	}
}

func TestApplyReceivedThenOverdraft(t *testing.T) {
	phys := NewAccount("Checking", Physical, "")
	virt := NewAccount("Budget", Virtual, "")
	accounts := table(phys, virt)

	received := Transaction{
		ID:     NewTransactionID(),
		Amount: eur(100000),
		Inner:  Received{Source: "Employer", Dst: phys.ID.Physical(), DstVirt: virt.ID.Virtual()},
	}
	apply(t, accounts, Command{AddTransaction: &received})

	for _, id := range []AccountID{phys.ID, virt.ID} {
		if got := accounts[id].Current.Get("EUR").Minor; got != 100000 {
			t.Errorf("balance of %s = %d, want 100000", id, got)
		}
	}

	// Paying out more than the balance fails and must leave both balances
	// exactly as they were.
	overdraft := Transaction{
		ID:     NewTransactionID(),
		Amount: eur(120000),
		Inner:  Paid{Src: phys.ID.Physical(), SrcVirt: virt.ID.Virtual(), Dst: "Landlord"},
	}
	_, err := Apply(accounts, Command{AddTransaction: &overdraft})

	var negative NegativeBalanceError
	if !errors.As(err, &negative) {
		t.Fatalf("overdraft gave %v, want NegativeBalanceError", err)
	}
	if negative.Currency != "EUR" {
		t.Errorf("violated currency = %s, want EUR", negative.Currency)
	}
	for _, id := range []AccountID{phys.ID, virt.ID} {
		if got := accounts[id].Current.Get("EUR").Minor; got != 100000 {
			t.Errorf("after rejection, balance of %s = %d, want 100000", id, got)
		}
	}
}

func TestApplyConvert(t *testing.T) {
	phys := NewAccount("Checking", Physical, "")
	virt := NewAccount("Budget", Virtual, "")
	accounts := table(phys, virt)

	received := Transaction{
		ID:     NewTransactionID(),
		Amount: eur(10000),
		Inner:  Received{Source: "x", Dst: phys.ID.Physical(), DstVirt: virt.ID.Virtual()},
	}
	apply(t, accounts, Command{AddTransaction: &received})

	convert := Transaction{
		ID:     NewTransactionID(),
		Amount: eur(10000),
		Inner:  Convert{Acc: phys.ID.Physical(), AccVirt: virt.ID.Virtual(), NewAmount: usd(9000)},
	}
	apply(t, accounts, Command{AddTransaction: &convert})

	for _, id := range []AccountID{phys.ID, virt.ID} {
		balance := accounts[id].Current
		if got := balance.Get("EUR").Minor; got != 0 {
			t.Errorf("EUR balance of %s = %d, want 0", id, got)
		}
		if got := balance.Get("USD").Minor; got != 9000 {
			t.Errorf("USD balance of %s = %d, want 9000", id, got)
		}
		// The zeroed entry stays: the account has a history in that currency.
		if _, ok := balance["EUR"]; !ok {
			t.Errorf("EUR entry of %s dropped from the balance", id)
		}
	}

	// Converting more than is held fails atomically even though the credit
	// legs alone would leave the balance positive.
	tooMuch := Transaction{
		ID:     NewTransactionID(),
		Amount: usd(10000),
		Inner:  Convert{Acc: phys.ID.Physical(), AccVirt: virt.ID.Virtual(), NewAmount: eur(8000)},
	}
	var negative NegativeBalanceError
	if _, err := Apply(accounts, Command{AddTransaction: &tooMuch}); !errors.As(err, &negative) {
		t.Fatalf("oversized convert gave %v, want NegativeBalanceError", err)
	}
}

func TestApplyMoveBetweenSameAxis(t *testing.T) {
	src := NewAccount("Checking", Physical, "")
	dst := NewAccount("Savings", Physical, "")
	virtSrc := NewAccount("Budget", Virtual, "")
	virtDst := NewAccount("Rent", Virtual, "")
	accounts := table(src, dst, virtSrc, virtDst)

	received := Transaction{
		ID:     NewTransactionID(),
		Amount: eur(10000),
		Inner:  Received{Source: "x", Dst: src.ID.Physical(), DstVirt: virtSrc.ID.Virtual()},
	}
	apply(t, accounts, Command{AddTransaction: &received})

	movePhys := Transaction{
		ID:     NewTransactionID(),
		Amount: eur(4000),
		Inner:  MovePhys{Src: src.ID.Physical(), Dst: dst.ID.Physical()},
	}
	apply(t, accounts, Command{AddTransaction: &movePhys})

	moveVirt := Transaction{
		ID:     NewTransactionID(),
		Amount: eur(3000),
		Inner:  MoveVirt{Src: virtSrc.ID.Virtual(), Dst: virtDst.ID.Virtual()},
	}
	apply(t, accounts, Command{AddTransaction: &moveVirt})

	want := map[AccountID]int64{
		src.ID:     6000,
		dst.ID:     4000,
		virtSrc.ID: 7000,
		virtDst.ID: 3000,
	}
	for id, minor := range want {
		if got := accounts[id].Current.Get("EUR").Minor; got != minor {
			t.Errorf("balance of %s = %d, want %d", id, got, minor)
		}
	}

	// A physical move never shows up on the virtual axis and vice versa.
	total := int64(0)
	for _, id := range []AccountID{virtSrc.ID, virtDst.ID} {
		total += accounts[id].Current.Get("EUR").Minor
	}
	if total != 10000 {
		t.Errorf("virtual axis total = %d, want 10000", total)
	}
}
