package store

import (
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"

	"github.com/golang-migrate/migrate/v4"
	"github.com/golang-migrate/migrate/v4/database/sqlite3"
	"github.com/golang-migrate/migrate/v4/source/iofs"
	_ "github.com/mattn/go-sqlite3"

	"github.com/bluepython508/monfari/internal/ledger"
)

type dbtx interface {
	Exec(query string, args ...any) (sql.Result, error)
	Query(query string, args ...any) (*sql.Rows, error)
	QueryRow(query string, args ...any) *sql.Row
}

// Sqlite is the event-sourced backend. Commands land verbatim in the
// commands table, entities in normalized tables, and balances are never
// stored: every read folds the account's transaction history, so the balance
// is provably derived and cannot drift.
type Sqlite struct {
	db *sql.DB
}

// OpenSqlite opens (creating if needed) the database file and brings the
// schema up to date. migrations must contain a "migrations" directory of
// golang-migrate SQL pairs.
func OpenSqlite(path string, migrations fs.FS) (*Sqlite, error) {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return nil, fmt.Errorf("create database directory %s: %w", dir, err)
		}
	}
	db, err := sql.Open("sqlite3", path+"?_foreign_keys=on")
	if err != nil {
		return nil, fmt.Errorf("open database: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("connect to database: %w", err)
	}
	if err := runMigrations(db, migrations); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("migrate database: %w", err)
	}
	return &Sqlite{db: db}, nil
}

func runMigrations(db *sql.DB, migrations fs.FS) error {
	driver, err := sqlite3.WithInstance(db, &sqlite3.Config{})
	if err != nil {
		return fmt.Errorf("set up migrate driver: %w", err)
	}
	source, err := iofs.New(migrations, "migrations")
	if err != nil {
		return fmt.Errorf("create iofs source driver: %w", err)
	}
	m, err := migrate.NewWithInstance("iofs", source, "sqlite3", driver)
	if err != nil {
		return fmt.Errorf("set up migrate instance: %w", err)
	}
	if err := m.Up(); err != nil && !errors.Is(err, migrate.ErrNoChange) {
		return fmt.Errorf("run migrations: %w", err)
	}
	return nil
}

// RunCommand wraps the command-log append and all entity writes in one
// database transaction; the negative-balance check runs against balances
// recomputed inside that transaction, and any violation rolls the whole
// thing back.
func (s *Sqlite) RunCommand(cmd ledger.Command) ([]ledger.Account, error) {
	payload, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}

	tx, err := s.db.Begin()
	if err != nil {
		return nil, fmt.Errorf("begin transaction: %w", err)
	}
	defer tx.Rollback()

	if _, err := tx.Exec(
		"INSERT INTO commands (id, payload) VALUES (?, ?)",
		ledger.NewCommandID().String(), string(payload),
	); err != nil {
		return nil, fmt.Errorf("append command log: %w", err)
	}

	switch {
	case cmd.CreateAccount != nil:
		err = createAccountTx(tx, *cmd.CreateAccount)
	case cmd.UpdateAccount != nil:
		err = updateAccountTx(tx, *cmd.UpdateAccount)
	case cmd.AddTransaction != nil:
		err = addTransactionTx(tx, *cmd.AddTransaction)
	default:
		err = fmt.Errorf("empty command")
	}
	if err != nil {
		return nil, err
	}

	if err := tx.Commit(); err != nil {
		return nil, fmt.Errorf("commit: %w", err)
	}
	return s.Accounts()
}

func createAccountTx(tx dbtx, account ledger.Account) error {
	var exists bool
	if err := tx.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE id = ?)", account.ID.String(),
	).Scan(&exists); err != nil {
		return fmt.Errorf("check account existence: %w", err)
	}
	if exists {
		return fmt.Errorf("%w: %s", ledger.ErrDuplicateID, account.ID)
	}
	if _, err := tx.Exec(
		"INSERT INTO accounts (id, type, name, notes, enabled) VALUES (?, ?, ?, ?, ?)",
		account.ID.String(), account.Type.String(), account.Name, account.Notes, account.Enabled,
	); err != nil {
		return fmt.Errorf("insert account: %w", err)
	}
	return nil
}

func updateAccountTx(tx dbtx, update ledger.UpdateAccount) error {
	var exists bool
	if err := tx.QueryRow(
		"SELECT EXISTS(SELECT 1 FROM accounts WHERE id = ?)", update.ID.String(),
	).Scan(&exists); err != nil {
		return fmt.Errorf("check account existence: %w", err)
	}
	if !exists {
		return fmt.Errorf("%w: %s", ledger.ErrNotFound, update.ID)
	}
	for _, change := range update.Changes {
		var err error
		switch change.Op {
		case ledger.OpDisable:
			_, err = tx.Exec("UPDATE accounts SET enabled = false WHERE id = ?", update.ID.String())
		case ledger.OpSetName:
			_, err = tx.Exec("UPDATE accounts SET name = ? WHERE id = ?", change.Value, update.ID.String())
		case ledger.OpSetNotes:
			_, err = tx.Exec("UPDATE accounts SET notes = ? WHERE id = ?", change.Value, update.ID.String())
		default:
			err = fmt.Errorf("%w: unknown account change %q", ledger.ErrInvalidEncoding, change.Op)
		}
		if err != nil {
			return fmt.Errorf("update account: %w", err)
		}
	}
	return nil
}

func addTransactionTx(tx dbtx, t ledger.Transaction) error {
	for _, p := range t.Participants() {
		var typ string
		err := tx.QueryRow("SELECT type FROM accounts WHERE id = ?", p.Account.String()).Scan(&typ)
		if errors.Is(err, sql.ErrNoRows) {
			return fmt.Errorf("%w: %s", ledger.ErrNotFound, p.Account)
		}
		if err != nil {
			return fmt.Errorf("load account %s: %w", p.Account, err)
		}
		if typ != p.Axis.String() {
			return fmt.Errorf("%w: %s is %s, expected %s", ledger.ErrWrongAxis, p.Account, typ, p.Axis)
		}
	}

	rec := t.Record()
	var newAmount, externalParty any
	if rec.NewAmount != nil {
		newAmount = rec.NewAmount.String()
	}
	if rec.ExternalParty != "" {
		externalParty = rec.ExternalParty
	}
	if _, err := tx.Exec(
		`INSERT INTO transactions (id, notes, amount, type, acc_1, acc_2, external_party, new_amount)
		 VALUES (?, ?, ?, ?, ?, ?, ?, ?)`,
		rec.ID.String(), rec.Notes, rec.Amount.String(), rec.Type,
		rec.Acc1.String(), rec.Acc2.String(), externalParty, newAmount,
	); err != nil {
		return fmt.Errorf("insert transaction: %w", err)
	}

	// Recompute each participant from history, including the row just
	// inserted, before the transaction may commit.
	for _, id := range distinctAccounts(t) {
		txs, err := queryTransactions(tx, id)
		if err != nil {
			return err
		}
		if c, negative := ledger.BalanceOf(id, txs).Negative(); negative {
			return ledger.NegativeBalanceError{Account: id, Currency: c}
		}
	}
	return nil
}

func distinctAccounts(t ledger.Transaction) []ledger.AccountID {
	accounts := t.Accounts()
	if accounts[0] == accounts[1] {
		return accounts[:1]
	}
	return accounts[:]
}

func (s *Sqlite) Accounts() ([]ledger.Account, error) {
	rows, err := s.db.Query("SELECT id, type, name, notes, enabled FROM accounts ORDER BY id")
	if err != nil {
		return nil, fmt.Errorf("query accounts: %w", err)
	}
	defer rows.Close()

	var out []ledger.Account
	for rows.Next() {
		account, err := scanAccount(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, account)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate accounts: %w", err)
	}
	for i := range out {
		txs, err := queryTransactions(s.db, out[i].ID)
		if err != nil {
			return nil, err
		}
		out[i].Current = ledger.BalanceOf(out[i].ID, txs)
	}
	return out, nil
}

func (s *Sqlite) Account(id ledger.AccountID) (ledger.Account, error) {
	row := s.db.QueryRow("SELECT id, type, name, notes, enabled FROM accounts WHERE id = ?", id.String())
	account, err := scanAccount(row)
	if errors.Is(err, sql.ErrNoRows) {
		return ledger.Account{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
	}
	if err != nil {
		return ledger.Account{}, err
	}
	txs, err := queryTransactions(s.db, id)
	if err != nil {
		return ledger.Account{}, err
	}
	account.Current = ledger.BalanceOf(id, txs)
	return account, nil
}

func (s *Sqlite) Transactions(id ledger.AccountID) ([]ledger.Transaction, error) {
	return queryTransactions(s.db, id)
}

func (s *Sqlite) Close() error {
	return s.db.Close()
}

type scanner interface {
	Scan(dest ...any) error
}

func scanAccount(row scanner) (ledger.Account, error) {
	var account ledger.Account
	var id, typ string
	if err := row.Scan(&id, &typ, &account.Name, &account.Notes, &account.Enabled); err != nil {
		if errors.Is(err, sql.ErrNoRows) {
			return account, err
		}
		return account, fmt.Errorf("scan account: %w", err)
	}
	var err error
	if account.ID, err = ledger.ParseAccountID(id); err != nil {
		return account, fmt.Errorf("scan account: %w", err)
	}
	if account.Type, err = ledger.ParseAccountType(typ); err != nil {
		return account, fmt.Errorf("scan account: %w", err)
	}
	account.Current = ledger.Amounts{}
	return account, nil
}

func queryTransactions(db dbtx, id ledger.AccountID) ([]ledger.Transaction, error) {
	rows, err := db.Query(
		`SELECT id, amount, type, new_amount, external_party, acc_1, acc_2, notes
		 FROM transactions
		 WHERE acc_1 = ?1 OR acc_2 = ?1
		 ORDER BY id`,
		id.String(),
	)
	if err != nil {
		return nil, fmt.Errorf("query transactions: %w", err)
	}
	defer rows.Close()

	var out []ledger.Transaction
	for rows.Next() {
		var rec ledger.TransactionRecord
		var txID, amount, acc1, acc2 string
		var newAmount, externalParty sql.NullString
		if err := rows.Scan(&txID, &amount, &rec.Type, &newAmount, &externalParty, &acc1, &acc2, &rec.Notes); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if rec.ID, err = ledger.ParseTransactionID(txID); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if rec.Amount, err = ledger.ParseAmount(amount); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if rec.Acc1, err = ledger.ParseAccountID(acc1); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if rec.Acc2, err = ledger.ParseAccountID(acc2); err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		if newAmount.Valid {
			parsed, err := ledger.ParseAmount(newAmount.String)
			if err != nil {
				return nil, fmt.Errorf("scan transaction: %w", err)
			}
			rec.NewAmount = &parsed
		}
		rec.ExternalParty = externalParty.String
		t, err := rec.Transaction()
		if err != nil {
			return nil, fmt.Errorf("scan transaction: %w", err)
		}
		out = append(out, t)
	}
	return out, rows.Err()
}
