package store

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net"
	"net/http"
	"sync"

	"github.com/bluepython508/monfari/internal/ledger"
)

// Server exposes a backend to remote clients over the stream and HTTP wire
// forms. Connections are handled concurrently, but every access to the
// backend goes through one mutex, so commands serialize behind the backend's
// single-writer discipline: one session's command commits before another's
// begins.
type Server struct {
	mu    sync.Mutex
	store Store
}

func NewServer(store Store) *Server {
	return &Server{store: store}
}

func (s *Server) runCommand(cmd ledger.Command) ([]ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.RunCommand(cmd)
}

func (s *Server) accounts() ([]ledger.Account, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Accounts()
}

func (s *Server) transactions(id ledger.AccountID) ([]ledger.Transaction, error) {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.store.Transactions(id)
}

// ServeConn runs one stream session: the full account list first, then
// strict request/response alternation until the client goes away. Any error,
// including an invariant violation, ends the session; the client sees it as
// a connection failure and its cache stays as it was.
func (s *Server) ServeConn(rw io.ReadWriter) error {
	conn := newConnection(rw)
	accounts, err := s.accounts()
	if err != nil {
		return err
	}
	if err := conn.send(accounts); err != nil {
		return err
	}
	for {
		var msg message
		ok, err := conn.receiveOrEOF(&msg)
		if err != nil {
			return err
		}
		if !ok {
			return nil
		}
		switch msg.Type {
		case msgCommand:
			if msg.Command == nil {
				return fmt.Errorf("%w: command message without a command", ErrTransport)
			}
			accounts, err := s.runCommand(*msg.Command)
			if err != nil {
				return err
			}
			if err := conn.send(accounts); err != nil {
				return err
			}
		case msgTransactions:
			if msg.Account == nil {
				return fmt.Errorf("%w: transactions message without an account", ErrTransport)
			}
			txs, err := s.transactions(*msg.Account)
			if err != nil {
				return err
			}
			if err := conn.send(txs); err != nil {
				return err
			}
		default:
			return fmt.Errorf("%w: unknown message type %q", ErrTransport, msg.Type)
		}
	}
}

// ServeListener accepts stream sessions until the listener is closed. Each
// session runs in its own goroutine; a failed session only takes down its
// own connection.
func (s *Server) ServeListener(l net.Listener) error {
	for {
		conn, err := l.Accept()
		if err != nil {
			return fmt.Errorf("accept: %w", err)
		}
		go func() {
			defer conn.Close()
			_ = s.ServeConn(conn)
		}()
	}
}

// Handler returns the HTTP form of the protocol. stop is invoked once when a
// shutdown is requested via POST /__stop__; it may be nil.
func (s *Server) Handler(stop func()) http.Handler {
	var stopOnce sync.Once
	mux := http.NewServeMux()
	mux.HandleFunc("GET /{$}", s.handleAccounts)
	mux.HandleFunc("POST /{$}", s.handleCommand)
	mux.HandleFunc("GET /transactions/{account}", s.handleTransactions)
	mux.HandleFunc("POST /__stop__", func(w http.ResponseWriter, r *http.Request) {
		writeJSON(w, http.StatusOK, "")
		if stop != nil {
			stopOnce.Do(stop)
		}
	})
	return mux
}

func (s *Server) handleAccounts(w http.ResponseWriter, r *http.Request) {
	accounts, err := s.accounts()
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleCommand(w http.ResponseWriter, r *http.Request) {
	var cmd ledger.Command
	if err := json.NewDecoder(r.Body).Decode(&cmd); err != nil {
		http.Error(w, fmt.Sprintf("invalid command: %v", err), http.StatusBadRequest)
		return
	}
	accounts, err := s.runCommand(cmd)
	if err != nil {
		writeErr(w, err)
		return
	}
	writeJSON(w, http.StatusOK, accounts)
}

func (s *Server) handleTransactions(w http.ResponseWriter, r *http.Request) {
	id, err := ledger.ParseAccountID(r.PathValue("account"))
	if err != nil {
		http.Error(w, err.Error(), http.StatusBadRequest)
		return
	}
	txs, err := s.transactions(id)
	if err != nil {
		writeErr(w, err)
		return
	}
	if txs == nil {
		txs = []ledger.Transaction{}
	}
	writeJSON(w, http.StatusOK, txs)
}

// ListenHTTP serves the HTTP form on addr until POST /__stop__ requests a
// graceful shutdown.
func (s *Server) ListenHTTP(addr string) error {
	stopped := make(chan struct{})
	srv := &http.Server{Addr: addr, Handler: s.Handler(func() { close(stopped) })}
	go func() {
		<-stopped
		_ = srv.Shutdown(context.Background())
	}()
	if err := srv.ListenAndServe(); !errors.Is(err, http.ErrServerClosed) {
		return err
	}
	return nil
}

func writeJSON(w http.ResponseWriter, code int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_ = json.NewEncoder(w).Encode(v)
}

// writeErr maps domain failures to client errors and everything else to a
// server error: callers react differently to "your data is wrong" and "the
// environment is wrong".
func writeErr(w http.ResponseWriter, err error) {
	code := http.StatusInternalServerError
	var negative ledger.NegativeBalanceError
	switch {
	case errors.Is(err, ledger.ErrNotFound):
		code = http.StatusNotFound
	case errors.Is(err, ledger.ErrDuplicateID),
		errors.Is(err, ledger.ErrWrongAxis),
		errors.As(err, &negative):
		code = http.StatusUnprocessableEntity
	}
	http.Error(w, err.Error(), code)
}
