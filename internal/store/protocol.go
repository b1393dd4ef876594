package store

import (
	"bufio"
	"encoding/json"
	"errors"
	"fmt"
	"io"

	"github.com/bluepython508/monfari/internal/ledger"
)

// The stream wire form: each message is one JSON value followed by a single
// NUL byte. The server's first message after a connection opens is always the
// full account list; afterwards client and server alternate strictly. Any
// desynchronization is fatal for the connection.

const frameDelimiter = 0

// message is a client request, tagged with its type.
type message struct {
	Type    string            `json:"type"`
	Command *ledger.Command   `json:"command,omitempty"`
	Account *ledger.AccountID `json:"account,omitempty"`
}

const (
	msgCommand      = "command"
	msgTransactions = "transactions"
)

// connection frames JSON messages over any byte stream.
type connection struct {
	r *bufio.Reader
	w *bufio.Writer
}

func newConnection(rw io.ReadWriter) *connection {
	return &connection{r: bufio.NewReader(rw), w: bufio.NewWriter(rw)}
}

func (c *connection) send(v any) error {
	data, err := json.Marshal(v)
	if err != nil {
		return fmt.Errorf("%w: encode message: %v", ErrTransport, err)
	}
	if _, err := c.w.Write(data); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := c.w.WriteByte(frameDelimiter); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	if err := c.w.Flush(); err != nil {
		return fmt.Errorf("%w: %v", ErrTransport, err)
	}
	return nil
}

func (c *connection) receive(v any) error {
	ok, err := c.receiveOrEOF(v)
	if err != nil {
		return err
	}
	if !ok {
		return fmt.Errorf("%w: unexpected EOF", ErrTransport)
	}
	return nil
}

// receiveOrEOF reads one frame. A clean EOF at a frame boundary returns
// (false, nil); EOF mid-frame is a desync and therefore an error.
func (c *connection) receiveOrEOF(v any) (bool, error) {
	data, err := c.r.ReadBytes(frameDelimiter)
	if errors.Is(err, io.EOF) {
		if len(data) == 0 {
			return false, nil
		}
		return false, fmt.Errorf("%w: connection closed mid-message", ErrTransport)
	}
	if err != nil {
		return false, fmt.Errorf("%w: %v", ErrTransport, err)
	}
	data = data[:len(data)-1]
	if err := json.Unmarshal(data, v); err != nil {
		return false, fmt.Errorf("%w: malformed message: %v", ErrTransport, err)
	}
	return true, nil
}
