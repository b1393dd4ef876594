// Package store provides the three interchangeable ledger backends: a
// git-versioned directory of entity files, an event-sourced sqlite database,
// and a client replicating a ledger served by another process. All of them
// apply commands through the same invariant engine and are expected to agree
// with ledger.BalanceOf.
package store

import (
	"fmt"
	"io/fs"
	"strings"

	"github.com/bluepython508/monfari/internal/ledger"
)

// Store is the backend contract. Each instance assumes single-writer access;
// RunCommand persists the command synchronously as one atomic unit and
// returns the fresh account list. Read results are sorted by identifier,
// which is creation-time order.
type Store interface {
	RunCommand(cmd ledger.Command) ([]ledger.Account, error)
	Accounts() ([]ledger.Account, error)
	Account(id ledger.AccountID) (ledger.Account, error)
	Transactions(id ledger.AccountID) ([]ledger.Transaction, error)
	Close() error
}

// Open selects a backend from a connection-string-like address:
//
//	path:<dir> or a bare path  local git-versioned repository
//	sqlite:<file>              event-sourced sqlite database
//	tcp:<host:port>            stream replication client
//	http://... or https://...  request/response replication client
//
// migrations is only consulted by the sqlite backend.
func Open(addr string, migrations fs.FS) (Store, error) {
	scheme, rest, ok := strings.Cut(addr, ":")
	if !ok {
		return OpenLocal(addr)
	}
	switch scheme {
	case "path":
		return OpenLocal(rest)
	case "sqlite":
		return OpenSqlite(rest, migrations)
	case "tcp":
		return DialTCP(rest)
	case "http", "https":
		return DialHTTP(addr)
	}
	return nil, fmt.Errorf("unknown repository scheme %q in %q", scheme, addr)
}
