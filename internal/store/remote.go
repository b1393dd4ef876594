package store

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net"
	"net/http"
	"strings"

	"github.com/bluepython508/monfari/internal/ledger"
)

// Remote operates a ledger hosted by another process. It keeps the last
// account list the server sent; a successful command replaces the whole
// cache with the server's authoritative post-command list, so a command that
// fails server-side leaves it untouched. There is no reconnection or retry:
// any transport failure is terminal.
type Remote struct {
	handle   remoteHandle
	accounts []ledger.Account
}

type remoteHandle interface {
	runCommand(cmd ledger.Command) ([]ledger.Account, error)
	transactions(id ledger.AccountID) ([]ledger.Transaction, error)
	close() error
}

// DialTCP connects to a stream server.
func DialTCP(addr string) (*Remote, error) {
	conn, err := net.Dial("tcp", addr)
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return DialStream(conn)
}

// DialStream opens a replication session over an established byte stream
// and waits for the server's opening account list.
func DialStream(rw io.ReadWriteCloser) (*Remote, error) {
	handle := &streamHandle{conn: newConnection(rw), closer: rw}
	var accounts []ledger.Account
	if err := handle.conn.receive(&accounts); err != nil {
		_ = rw.Close()
		return nil, err
	}
	return &Remote{handle: handle, accounts: accounts}, nil
}

// DialHTTP connects to the request/response form of the protocol and fetches
// the initial account list.
func DialHTTP(baseURL string) (*Remote, error) {
	handle := &httpHandle{
		client:  &http.Client{},
		baseURL: strings.TrimSuffix(baseURL, "/"),
	}
	accounts, err := handle.accounts()
	if err != nil {
		return nil, err
	}
	return &Remote{handle: handle, accounts: accounts}, nil
}

func (r *Remote) RunCommand(cmd ledger.Command) ([]ledger.Account, error) {
	accounts, err := r.handle.runCommand(cmd)
	if err != nil {
		return nil, err
	}
	r.accounts = accounts
	return r.Accounts()
}

func (r *Remote) Accounts() ([]ledger.Account, error) {
	out := make([]ledger.Account, len(r.accounts))
	copy(out, r.accounts)
	return out, nil
}

func (r *Remote) Account(id ledger.AccountID) (ledger.Account, error) {
	for _, account := range r.accounts {
		if account.ID == id {
			return account, nil
		}
	}
	return ledger.Account{}, fmt.Errorf("%w: %s", ledger.ErrNotFound, id)
}

func (r *Remote) Transactions(id ledger.AccountID) ([]ledger.Transaction, error) {
	return r.handle.transactions(id)
}

func (r *Remote) Close() error {
	return r.handle.close()
}

// streamHandle speaks the NUL-delimited JSON stream protocol in strict
// request/response alternation.
type streamHandle struct {
	conn   *connection
	closer io.Closer
}

func (h *streamHandle) runCommand(cmd ledger.Command) ([]ledger.Account, error) {
	if err := h.conn.send(message{Type: msgCommand, Command: &cmd}); err != nil {
		return nil, err
	}
	var accounts []ledger.Account
	if err := h.conn.receive(&accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (h *streamHandle) transactions(id ledger.AccountID) ([]ledger.Transaction, error) {
	if err := h.conn.send(message{Type: msgTransactions, Account: &id}); err != nil {
		return nil, err
	}
	var txs []ledger.Transaction
	if err := h.conn.receive(&txs); err != nil {
		return nil, err
	}
	return txs, nil
}

func (h *streamHandle) close() error {
	return h.closer.Close()
}

// httpHandle speaks the request/response form over HTTP.
type httpHandle struct {
	client  *http.Client
	baseURL string
}

func (h *httpHandle) accounts() ([]ledger.Account, error) {
	var accounts []ledger.Account
	err := h.do(http.MethodGet, "/", nil, &accounts)
	return accounts, err
}

func (h *httpHandle) runCommand(cmd ledger.Command) ([]ledger.Account, error) {
	body, err := json.Marshal(cmd)
	if err != nil {
		return nil, fmt.Errorf("encode command: %w", err)
	}
	var accounts []ledger.Account
	if err := h.do(http.MethodPost, "/", body, &accounts); err != nil {
		return nil, err
	}
	return accounts, nil
}

func (h *httpHandle) transactions(id ledger.AccountID) ([]ledger.Transaction, error) {
	var txs []ledger.Transaction
	err := h.do(http.MethodGet, "/transactions/"+id.String(), nil, &txs)
	return txs, err
}

func (h *httpHandle) do(method, path string, body []byte, out any) error {
	var reader io.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	}
	req, err := http.NewRequest(method, h.baseURL+path, reader)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	resp, err := h.client.Do(req)
	if err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	defer resp.Body.Close()
	if resp.StatusCode != http.StatusOK {
		msg, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("server rejected %s %s: %s: %s", method, path, resp.Status, strings.TrimSpace(string(msg)))
	}
	if err := json.NewDecoder(resp.Body).Decode(out); err != nil {
		return fmt.Errorf("%w: malformed response: %v", ErrTransport, err)
	}
	return nil
}

func (h *httpHandle) close() error {
	h.client.CloseIdleConnections()
	return nil
}
