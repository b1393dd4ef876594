package store

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/bluepython508/monfari/internal/ledger"
)

// testSqlite opens a fresh database under a temp dir, using the migration
// files from the repository root.
func testSqlite(t *testing.T) *Sqlite {
	t.Helper()
	s, err := OpenSqlite(filepath.Join(t.TempDir(), "ledger.db"), os.DirFS("../.."))
	if err != nil {
		t.Fatalf("OpenSqlite: %v", err)
	}
	t.Cleanup(func() { s.Close() })
	return s
}

func TestSqliteMigrationsAreIdempotent(t *testing.T) {
	path := filepath.Join(t.TempDir(), "ledger.db")
	for i := 0; i < 2; i++ {
		s, err := OpenSqlite(path, os.DirFS("../.."))
		if err != nil {
			t.Fatalf("open %d: %v", i, err)
		}
		if err := s.Close(); err != nil {
			t.Fatalf("close %d: %v", i, err)
		}
	}
}

func TestSqliteCreateAndListAccounts(t *testing.T) {
	s := testSqlite(t)
	phys, virt := seedAccounts(t, s)

	accounts, err := s.Accounts()
	if err != nil {
		t.Fatalf("Accounts: %v", err)
	}
	if len(accounts) != 2 {
		t.Fatalf("got %d accounts, want 2", len(accounts))
	}
	// Sorted by id, which is creation order.
	if accounts[0].ID != phys.ID || accounts[1].ID != virt.ID {
		t.Errorf("accounts out of creation order: %v, %v", accounts[0].ID, accounts[1].ID)
	}

	dup := phys
	if _, err := s.RunCommand(ledger.Command{CreateAccount: &dup}); !errors.Is(err, ledger.ErrDuplicateID) {
		t.Errorf("duplicate create gave %v, want ErrDuplicateID", err)
	}

	if _, err := s.Account(ledger.NewAccountID()); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("unknown account gave %v, want ErrNotFound", err)
	}
}

func TestSqliteUpdateAccount(t *testing.T) {
	s := testSqlite(t)
	phys, _ := seedAccounts(t, s)

	update := ledger.UpdateAccount{
		ID:      phys.ID,
		Changes: []ledger.AccountChange{ledger.SetName("Main"), ledger.SetNotes("primary"), ledger.Disable()},
	}
	if _, err := s.RunCommand(ledger.Command{UpdateAccount: &update}); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}

	got, err := s.Account(phys.ID)
	if err != nil {
		t.Fatalf("Account: %v", err)
	}
	if got.Name != "Main" || got.Notes != "primary" || got.Enabled {
		t.Errorf("updated account = %+v", got)
	}

	missing := ledger.UpdateAccount{ID: ledger.NewAccountID(), Changes: []ledger.AccountChange{ledger.Disable()}}
	if _, err := s.RunCommand(ledger.Command{UpdateAccount: &missing}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("updating missing account gave %v, want ErrNotFound", err)
	}
}

func TestSqliteBalancesAreRecomputed(t *testing.T) {
	s := testSqlite(t)
	phys, virt := seedAccounts(t, s)

	tx := receivedTx(ledger.Amount{Minor: 100000, Currency: "EUR"}, phys, virt)
	if _, err := s.RunCommand(ledger.Command{AddTransaction: &tx}); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}

	convert := ledger.Transaction{
		ID:     ledger.NewTransactionID(),
		Amount: ledger.Amount{Minor: 10000, Currency: "EUR"},
		Inner: ledger.Convert{
			Acc:       phys.ID.Physical(),
			AccVirt:   virt.ID.Virtual(),
			NewAmount: ledger.Amount{Minor: 9000, Currency: "USD"},
		},
	}
	if _, err := s.RunCommand(ledger.Command{AddTransaction: &convert}); err != nil {
		t.Fatalf("convert: %v", err)
	}

	for _, id := range []ledger.AccountID{phys.ID, virt.ID} {
		acc, err := s.Account(id)
		if err != nil {
			t.Fatalf("Account: %v", err)
		}
		if got := acc.Current.Get("EUR").Minor; got != 90000 {
			t.Errorf("EUR balance of %s = %d, want 90000", id, got)
		}
		if got := acc.Current.Get("USD").Minor; got != 9000 {
			t.Errorf("USD balance of %s = %d, want 9000", id, got)
		}

		txs, err := s.Transactions(id)
		if err != nil {
			t.Fatalf("Transactions: %v", err)
		}
		if !acc.Current.Equal(ledger.BalanceOf(id, txs)) {
			t.Errorf("stored balance of %s disagrees with the fold", id)
		}
	}
}

func TestSqliteRejectsInvalidTransactions(t *testing.T) {
	s := testSqlite(t)
	phys, virt := seedAccounts(t, s)

	wrongAxis := ledger.Transaction{
		ID:     ledger.NewTransactionID(),
		Amount: ledger.Amount{Minor: 100, Currency: "EUR"},
		Inner: ledger.Received{
			Source:  "x",
			Dst:     virt.ID.Physical(),
			DstVirt: virt.ID.Virtual(),
		},
	}
	if _, err := s.RunCommand(ledger.Command{AddTransaction: &wrongAxis}); !errors.Is(err, ledger.ErrWrongAxis) {
		t.Errorf("wrong axis gave %v, want ErrWrongAxis", err)
	}

	unknown := ledger.Transaction{
		ID:     ledger.NewTransactionID(),
		Amount: ledger.Amount{Minor: 100, Currency: "EUR"},
		Inner: ledger.Received{
			Source:  "x",
			Dst:     ledger.NewAccountID().Physical(),
			DstVirt: virt.ID.Virtual(),
		},
	}
	if _, err := s.RunCommand(ledger.Command{AddTransaction: &unknown}); !errors.Is(err, ledger.ErrNotFound) {
		t.Errorf("unknown participant gave %v, want ErrNotFound", err)
	}

	if txs, err := s.Transactions(phys.ID); err != nil || len(txs) != 0 {
		t.Errorf("rejected transactions left traces: %v, %v", txs, err)
	}
}

func TestSqliteOverdraftRollsBack(t *testing.T) {
	s := testSqlite(t)
	phys, virt := seedAccounts(t, s)

	tx := receivedTx(ledger.Amount{Minor: 100000, Currency: "EUR"}, phys, virt)
	if _, err := s.RunCommand(ledger.Command{AddTransaction: &tx}); err != nil {
		t.Fatalf("RunCommand: %v", err)
	}

	overdraft := ledger.Transaction{
		ID:     ledger.NewTransactionID(),
		Amount: ledger.Amount{Minor: 120000, Currency: "EUR"},
		Inner: ledger.Paid{
			Src:     phys.ID.Physical(),
			SrcVirt: virt.ID.Virtual(),
			Dst:     "Landlord",
		},
	}
	var negative ledger.NegativeBalanceError
	if _, err := s.RunCommand(ledger.Command{AddTransaction: &overdraft}); !errors.As(err, &negative) {
		t.Fatalf("overdraft gave %v, want NegativeBalanceError", err)
	}

	for _, id := range []ledger.AccountID{phys.ID, virt.ID} {
		acc, err := s.Account(id)
		if err != nil {
			t.Fatalf("Account: %v", err)
		}
		if got := acc.Current.Get("EUR").Minor; got != 100000 {
			t.Errorf("balance of %s = %d after rollback, want 100000", id, got)
		}
	}

	txs, err := s.Transactions(phys.ID)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != 1 {
		t.Fatalf("got %d transactions after rollback, want 1", len(txs))
	}
}

func TestSqliteTransactionOrder(t *testing.T) {
	s := testSqlite(t)
	phys, virt := seedAccounts(t, s)

	var want []ledger.TransactionID
	for i := 0; i < 5; i++ {
		tx := receivedTx(ledger.Amount{Minor: 100, Currency: "EUR"}, phys, virt)
		if _, err := s.RunCommand(ledger.Command{AddTransaction: &tx}); err != nil {
			t.Fatalf("RunCommand: %v", err)
		}
		want = append(want, tx.ID)
	}

	txs, err := s.Transactions(phys.ID)
	if err != nil {
		t.Fatalf("Transactions: %v", err)
	}
	if len(txs) != len(want) {
		t.Fatalf("got %d transactions, want %d", len(txs), len(want))
	}
	for i := range want {
		if txs[i].ID != want[i] {
			t.Fatalf("position %d has %s, want %s", i, txs[i].ID, want[i])
		}
	}
}
