// Copyright 2025 The packetd Authors
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
//
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package client

import (
	"bufio"
	"context"
	"fmt"
	"io"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/confopt"
)

// readCommand parses one RESP array-of-bulk-strings command off r, the
// wire form every command.Command.Encode produces.
func readCommand(r *bufio.Reader) ([]string, error) {
	line, err := r.ReadString('\n')
	if err != nil {
		return nil, err
	}
	line = strings.TrimRight(line, "\r\n")
	if len(line) == 0 || line[0] != '*' {
		return nil, fmt.Errorf("client_test: expected array header, got %q", line)
	}
	n, err := strconv.Atoi(line[1:])
	if err != nil {
		return nil, err
	}
	args := make([]string, n)
	for i := 0; i < n; i++ {
		lenLine, err := r.ReadString('\n')
		if err != nil {
			return nil, err
		}
		lenLine = strings.TrimRight(lenLine, "\r\n")
		if len(lenLine) == 0 || lenLine[0] != '$' {
			return nil, fmt.Errorf("client_test: expected bulk string header, got %q", lenLine)
		}
		l, err := strconv.Atoi(lenLine[1:])
		if err != nil {
			return nil, err
		}
		buf := make([]byte, l+2)
		if _, err := io.ReadFull(r, buf); err != nil {
			return nil, err
		}
		args[i] = string(buf[:l])
	}
	return args, nil
}

func normalizeName(args []string) string {
	if len(args) >= 2 && args[0] == "CLIENT" {
		return "CLIENT " + args[1]
	}
	return args[0]
}

func writeSimple(w io.Writer, s string) { fmt.Fprintf(w, "+%s\r\n", s) }
func writeError(w io.Writer, s string) { fmt.Fprintf(w, "-%s\r\n", s) }
func writeBulk(w io.Writer, s string) { fmt.Fprintf(w, "$%d\r\n%s\r\n", len(s), s) }

// fakeServer answers the handshake (HELLO/CLIENT SETINFO/CLIENT
// SETNAME/SELECT) generically and hands every other command to handle,
// so each test only scripts the commands it cares about.
type fakeServer struct {
	ln net.Listener
	handle func(args []string, w io.Writer)
}

func startFakeServer(t *testing.T, handle func(args []string, w io.Writer)) *fakeServer {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	s := &fakeServer{ln: ln, handle: handle}
	go s.acceptLoop()
	return s
}

func (s *fakeServer) acceptLoop() {
	for {
		c, err := s.ln.Accept()
		if err != nil {
			return
		}
		go s.serve(c)
	}
}

func (s *fakeServer) serve(c net.Conn) {
	r := bufio.NewReader(c)
	for {
		args, err := readCommand(r)
		if err != nil {
			return
		}
		switch normalizeName(args) {
		case "HELLO":
			fmt.Fprint(c, "%1\r\n$6\r\nserver\r\n$5\r\nvalkey\r\n")
		case "CLIENT SETINFO", "CLIENT SETNAME", "SELECT":
			writeSimple(c, "OK")
		default:
			if s.handle != nil {
				s.handle(args, c)
			}
		}
	}
}

func (s *fakeServer) addr() string { return s.ln.Addr().String() }
func (s *fakeServer) close() { s.ln.Close() }

func testOptions() confopt.Options {
	opts := confopt.Default()
	opts.ConnectionPool.MaximumConnectionSoftLimit = 2
	opts.ConnectionPool.MaximumConnectionHardLimit = 2
	opts.ConnectionPool.MaximumConcurrentConnectionRequests = 2
	opts.CommandTimeoutMs = 2000
	opts.BlockingCommandTimeoutMs = 2000
	opts.KeepAlive.FrequencyMs = 0
	return opts
}

func TestDoRoundTripsAGetCommand(t *testing.T) {
	srv := startFakeServer(t, func(args []string, w io.Writer) {
		if args[0] == "GET" {
			writeBulk(w, "bar")
		}
	})
	defer srv.close()

	ctx := context.Background()
	c, err := New(ctx, srv.addr(), testOptions())
	require.NoError(t, err)
	defer c.Close()

	frame, err := c.Do(ctx, command.Get("foo"))
	require.NoError(t, err)
	assert.Equal(t, "bar", frame.Text())
}

func TestDoFollowsAMovedRedirect(t *testing.T) {
	var nodeBAddr string
	nodeB := startFakeServer(t, func(args []string, w io.Writer) {
		if args[0] == "GET" {
			writeBulk(w, "bar")
		}
	})
	defer nodeB.close()
	nodeBAddr = nodeB.addr()

	nodeA := startFakeServer(t, func(args []string, w io.Writer) {
		if args[0] == "GET" {
			writeError(w, "MOVED 0 "+nodeBAddr)
		}
	})
	defer nodeA.close()

	ctx := context.Background()
	c, err := New(ctx, nodeA.addr(), testOptions())
	require.NoError(t, err)
	defer c.Close()

	frame, err := c.Do(ctx, command.Get("foo"))
	require.NoError(t, err)
	assert.Equal(t, "bar", frame.Text())
	assert.Equal(t, nodeBAddr, c.nodes.PrimaryAddr())
}

func TestTransactionExecReturnsResults(t *testing.T) {
	srv := startFakeServer(t, func(args []string, w io.Writer) {
		switch args[0] {
		case "MULTI":
			writeSimple(w, "OK")
		case "SET":
			writeSimple(w, "QUEUED")
		case "EXEC":
			fmt.Fprint(w, "*1\r\n+OK\r\n")
		}
	})
	defer srv.close()

	ctx := context.Background()
	c, err := New(ctx, srv.addr(), testOptions())
	require.NoError(t, err)
	defer c.Close()

	txn, err := c.BeginTransaction(ctx)
	require.NoError(t, err)
	results, err := txn.Exec(ctx, command.Set("k", "v", command.SetOptions{}))
	require.NoError(t, err)
	require.Len(t, results, 1)
	assert.Equal(t, "OK", results[0].Text())
}

func TestSubscribeReceivesAPushedMessage(t *testing.T) {
	srv := startFakeServer(t, func(args []string, w io.Writer) {
		if args[0] == "SUBSCRIBE" {
			fmt.Fprint(w, ">3\r\n$9\r\nsubscribe\r\n$4\r\nnews\r\n:1\r\n")
			fmt.Fprint(w, ">3\r\n$7\r\nmessage\r\n$4\r\nnews\r\n$5\r\nhello\r\n")
		}
	})
	defer srv.close()

	ctx := context.Background()
	c, err := New(ctx, srv.addr(), testOptions())
	require.NoError(t, err)
	defer c.Close()

	sub, err := c.Subscribe(ctx, "news")
	require.NoError(t, err)
	defer sub.Close()

	select {
	case msg := <-sub.Messages():
		assert.Equal(t, "news", msg.Channel)
		assert.Equal(t, "hello", msg.Payload)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for pushed message")
	}
}
