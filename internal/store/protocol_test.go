package store

import (
	"errors"
	"net"
	"testing"

	"github.com/bluepython508/monfari/internal/ledger"
)

func TestConnectionRoundtrip(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	id := ledger.NewAccountID()
	sent := message{Type: msgTransactions, Account: &id}

	done := make(chan error, 1)
	go func() {
		done <- newConnection(client).send(sent)
	}()

	var got message
	if err := newConnection(server).receive(&got); err != nil {
		t.Fatalf("receive: %v", err)
	}
	if err := <-done; err != nil {
		t.Fatalf("send: %v", err)
	}
	if got.Type != sent.Type || got.Account == nil || *got.Account != id {
		t.Fatalf("received %+v, want %+v", got, sent)
	}
}

func TestConnectionMultipleFrames(t *testing.T) {
	client, server := net.Pipe()
	defer client.Close()
	defer server.Close()

	go func() {
		conn := newConnection(client)
		for i := 0; i < 3; i++ {
			id := ledger.NewAccountID()
			_ = conn.send(message{Type: msgTransactions, Account: &id})
		}
		client.Close()
	}()

	conn := newConnection(server)
	count := 0
	for {
		var msg message
		ok, err := conn.receiveOrEOF(&msg)
		if err != nil {
			t.Fatalf("receive %d: %v", count, err)
		}
		if !ok {
			break
		}
		count++
	}
	if count != 3 {
		t.Fatalf("received %d frames, want 3", count)
	}
}

func TestConnectionEOFMidFrame(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		// A frame missing its delimiter, then a hangup.
		_, _ = client.Write([]byte(`{"type":"command"`))
		client.Close()
	}()

	var msg message
	_, err := newConnection(server).receiveOrEOF(&msg)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("mid-frame EOF gave %v, want ErrTransport", err)
	}
}

func TestConnectionMalformedFrame(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()

	go func() {
		_, _ = client.Write([]byte("not json\x00"))
		client.Close()
	}()

	var msg message
	_, err := newConnection(server).receiveOrEOF(&msg)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("malformed frame gave %v, want ErrTransport", err)
	}
}

func TestReceiveTreatsCleanEOFAsError(t *testing.T) {
	client, server := net.Pipe()
	defer server.Close()
	client.Close()

	// receive is for replies the protocol requires; the peer hanging up
	// instead is a transport failure even at a frame boundary.
	var accounts []ledger.Account
	err := newConnection(server).receive(&accounts)
	if !errors.Is(err, ErrTransport) {
		t.Fatalf("clean EOF gave %v, want ErrTransport", err)
	}
}
