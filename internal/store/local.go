package store

import (
	"errors"
	"fmt"
	"io/fs"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/pelletier/go-toml/v2"

	"github.com/bluepython508/monfari/internal/ledger"
)

const (
	accountsDir     = "accounts"
	transactionsDir = "transactions"
	entityExt       = ".toml"
)

// Local is the git-versioned backend: one TOML file per entity, one git
// commit per successful command. The commit is the atomicity boundary - a
// crash before it leaves the working tree dirty, which the next OpenLocal
// refuses to touch.
type Local struct {
	path     string
	lock     *lockFile
	accounts map[ledger.AccountID]ledger.Account
}

// InitLocal creates a repository in an empty or absent directory, commits
// the scaffold, and seeds the default virtual account as the first real
// commit.
func InitLocal(path string) (*Local, error) {
	if entries, err := os.ReadDir(path); err == nil {
		if len(entries) > 0 {
			return nil, fmt.Errorf("init %s: path must be an empty or non-existent directory", path)
		}
	} else if !errors.Is(err, fs.ErrNotExist) {
		return nil, fmt.Errorf("init %s: %w", path, err)
	} else if err := os.MkdirAll(path, 0o755); err != nil {
		return nil, fmt.Errorf("init %s: %w", path, err)
	}

	if err := os.WriteFile(filepath.Join(path, ".gitignore"), []byte(lockFileName+"\n"), 0o644); err != nil {
		return nil, fmt.Errorf("init %s: %w", path, err)
	}
	for _, dir := range []string{accountsDir, transactionsDir} {
		if err := os.MkdirAll(filepath.Join(path, dir), 0o755); err != nil {
			return nil, fmt.Errorf("init %s: %w", path, err)
		}
		if err := os.WriteFile(filepath.Join(path, dir, ".gitkeep"), nil, 0o644); err != nil {
			return nil, fmt.Errorf("init %s: %w", path, err)
		}
	}

	if _, err := git(path, "init"); err != nil {
		return nil, err
	}
	// Commits must not depend on the user's global git identity.
	if _, err := git(path, "config", "user.name", "monfari"); err != nil {
		return nil, err
	}
	if _, err := git(path, "config", "user.email", "monfari@localhost"); err != nil {
		return nil, err
	}
	if _, err := git(path, "add", accountsDir, transactionsDir, ".gitignore"); err != nil {
		return nil, err
	}
	if _, err := git(path, "commit", "-m", "Initial commit"); err != nil {
		return nil, err
	}

	lock, err := acquireLock(filepath.Join(path, lockFileName))
	if err != nil {
		return nil, err
	}
	l := &Local{
		path:     path,
		lock:     lock,
		accounts: map[ledger.AccountID]ledger.Account{},
	}
	account := ledger.DefaultVirtualAccount()
	if _, err := l.RunCommand(ledger.Command{CreateAccount: &account}); err != nil {
		_ = l.Close()
		return nil, err
	}
	return l, nil
}

// OpenLocal opens an initialized repository, refusing dirty working trees
// and repositories locked by another process, and loads the account index.
func OpenLocal(path string) (*Local, error) {
	if _, err := git(path, "status"); err != nil {
		return nil, fmt.Errorf("%w: %s is not a git repository", ErrNotInitialized, path)
	}
	for _, dir := range []string{accountsDir, transactionsDir} {
		if info, err := os.Stat(filepath.Join(path, dir)); err != nil || !info.IsDir() {
			return nil, fmt.Errorf("%w: %s is missing %s/", ErrNotInitialized, path, dir)
		}
	}
	if _, err := git(path, "diff-index", "--quiet", "HEAD"); err != nil {
		return nil, fmt.Errorf("%w (%s)", ErrDirtyRepository, path)
	}

	lock, err := acquireLock(filepath.Join(path, lockFileName))
	if err != nil {
		return nil, err
	}
	l := &Local{
		path:     path,
		lock:     lock,
		accounts: map[ledger.AccountID]ledger.Account{},
	}
	accounts, err := readEntities(filepath.Join(path, accountsDir), readAccountFile)
	if err != nil {
		_ = l.Close()
		return nil, err
	}
	for _, account := range accounts {
		l.accounts[account.ID] = account
	}
	return l, nil
}

// RunCommand applies the command, writes the affected entity files, and
// commits them in one git commit carrying the audit message.
func (l *Local) RunCommand(cmd ledger.Command) ([]ledger.Account, error) {
	message := cmd.Describe()
	changed, err := ledger.Apply(l.accounts, cmd)
	if err != nil {
		return nil, err
	}

	var paths []string
	if t := cmd.AddTransaction; t != nil {
		path := filepath.Join(transactionsDir, t.ID.String()+entityExt)
		if err := l.writeEntity(path, t.Record()); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}
	for _, account := range changed {
		path := filepath.Join(accountsDir, account.ID.String()+entityExt)
		if err := l.writeEntity(path, account); err != nil {
			return nil, err
		}
		paths = append(paths, path)
	}

	if _, err := git(l.path, append([]string{"add"}, paths...)...); err != nil {
		return nil, err
	}
	if _, err := git(l.path, "commit", "-m", message); err != nil {
		return nil, err
	}

	// The commit is durable; only now may the cached index move.
	for _, account := range changed {
		l.accounts[account.ID] = account
	}
	return l.Accounts()
}

func (l *Local) Accounts() ([]ledger.Account, error) {
	out := make([]ledger.Account, 0, len(l.accounts))
	for _, account := range l.accounts {
		out = append(out, account.Clone())
	}
	sort.Slice(out, func(i, j int) bool { return out[i].ID.Compare(out[j].ID) < 0 })
	return out, nil
}

func (l *Local) Account(id ledger.AccountID) (ledger.Account, error) {
	account, ok := l.accounts[id]
	if !ok {
		return ledger.Account{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
	}
	return account.Clone(), nil
}

// Transactions reads every transaction file and keeps the ones referencing
// the account, sorted by identifier.
func (l *Local) Transactions(id ledger.AccountID) ([]ledger.Transaction, error) {
	all, err := readEntities(filepath.Join(l.path, transactionsDir), readTransactionFile)
	if err != nil {
		return nil, err
	}
	var out []ledger.Transaction
	for _, t := range all {
		if t.Touches(id) {
			out = append(out, t)
		}
	}
	ledger.SortTransactions(out)
	return out, nil
}

// Close releases the lock. The repository stays usable by other processes
// afterwards.
func (l *Local) Close() error {
	if l.lock == nil {
		return nil
	}
	err := l.lock.release()
	l.lock = nil
	return err
}

func (l *Local) writeEntity(relPath string, v any) error {
	data, err := toml.Marshal(v)
	if err != nil {
		return fmt.Errorf("encode %s: %w", relPath, err)
	}
	if err := os.WriteFile(filepath.Join(l.path, relPath), data, 0o644); err != nil {
		return fmt.Errorf("write %s: %w", relPath, err)
	}
	return nil
}

func readEntities[T any](dir string, read func(path string) (T, error)) ([]T, error) {
	entries, err := os.ReadDir(dir)
	if err != nil {
		return nil, fmt.Errorf("read %s: %w", dir, err)
	}
	var out []T
	for _, entry := range entries {
		if entry.IsDir() || !strings.HasSuffix(entry.Name(), entityExt) {
			continue
		}
		v, err := read(filepath.Join(dir, entry.Name()))
		if err != nil {
			return nil, err
		}
		out = append(out, v)
	}
	return out, nil
}

func readAccountFile(path string) (ledger.Account, error) {
	var account ledger.Account
	data, err := os.ReadFile(path)
	if err != nil {
		return account, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &account); err != nil {
		return account, fmt.Errorf("decode %s: %w", path, err)
	}
	return account, nil
}

func readTransactionFile(path string) (ledger.Transaction, error) {
	var rec ledger.TransactionRecord
	data, err := os.ReadFile(path)
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("read %s: %w", path, err)
	}
	if err := toml.Unmarshal(data, &rec); err != nil {
		return ledger.Transaction{}, fmt.Errorf("decode %s: %w", path, err)
	}
	t, err := rec.Transaction()
	if err != nil {
		return ledger.Transaction{}, fmt.Errorf("decode %s: %w", path, err)
	}
	return t, nil
}
