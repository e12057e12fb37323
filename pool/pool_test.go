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

package pool

import (
	"bufio"
	"context"
	"net"
	"strconv"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkeygo/valkeygo/confopt"
	"github.com/valkeygo/valkeygo/connection"
)

// fakeNode accepts connections and answers just enough of the
// handshake (HELLO 3) for connection.Dial to complete; it never
// replies to anything else, which is enough to exercise the pool's
// lease/release/reaper/breaker mechanics without a real server.
type fakeNode struct {
	t *testing.T
	ln net.Listener
}

func startFakeNode(t *testing.T) *fakeNode {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	n := &fakeNode{t: t, ln: ln}
	go n.acceptLoop()
	return n
}

func (n *fakeNode) acceptLoop() {
	for {
		c, err := n.ln.Accept()
		if err != nil {
			return
		}
		go n.serve(c)
	}
}

func (n *fakeNode) serve(c net.Conn) {
	r := bufio.NewReader(c)
	_, _ = r.ReadString('\n') // "*2"
	_, _ = r.ReadString('\n') // "$5"
	_, _ = r.ReadString('\n') // "HELLO"
	_, _ = r.ReadString('\n') // "$1"
	_, _ = r.ReadString('\n') // "3"
	_, _ = c.Write([]byte("%1\r\n$6\r\nserver\r\n$5\r\nvalkey\r\n"))
	buf := make([]byte, 512)
	for {
		if _, err := c.Read(buf); err != nil {
			return
		}
	}
}

func (n *fakeNode) addr() string { return n.ln.Addr().String() }

func (n *fakeNode) close() { n.ln.Close() }

func testDialer(t *testing.T, addr string) Dialer {
	return func(ctx context.Context) (*connection.Conn, error) {
		return connection.Dial(ctx, addr, connection.Options{CommandTimeout: time.Second}, nil)
	}
}

func TestLeaseDialsUpToHardLimitThenBlocks(t *testing.T) {
	node := startFakeNode(t)
	defer node.close()

	opts := confopt.PoolOptions{MaximumConnectionSoftLimit: 1, MaximumConnectionHardLimit: 1, MaximumConcurrentConnectionRequests: 1}
	p := New(node.addr(), opts, testDialer(t, node.addr()))
	defer p.Close()

	ctx := context.Background()
	c1, err := p.Lease(ctx)
	require.NoError(t, err)
	assert.Equal(t, 1, p.Len())

	leaseCtx, cancel := context.WithTimeout(ctx, 50*time.Millisecond)
	defer cancel()
	_, err = p.Lease(leaseCtx)
	assert.ErrorIs(t, err, context.DeadlineExceeded)

	p.Release(c1)
}

func TestReleaseMakesAConnectionReusable(t *testing.T) {
	node := startFakeNode(t)
	defer node.close()

	opts := confopt.PoolOptions{MaximumConnectionSoftLimit: 2, MaximumConnectionHardLimit: 2, MaximumConcurrentConnectionRequests: 2}
	p := New(node.addr(), opts, testDialer(t, node.addr()))
	defer p.Close()

	ctx := context.Background()
	c1, err := p.Lease(ctx)
	require.NoError(t, err)
	firstID := c1.ID()
	p.Release(c1)

	c2, err := p.Lease(ctx)
	require.NoError(t, err)
	assert.Equal(t, firstID, c2.ID())
	assert.Equal(t, 1, p.Len())
}

func TestBreakerOpensAfterPersistentDialFailures(t *testing.T) {
	opts := confopt.PoolOptions{
		MaximumConnectionSoftLimit: 2,
		MaximumConnectionHardLimit: 2,
		MaximumConcurrentConnectionRequests: 2,
		CircuitBreakerTripAfterMs: 10,
	}
	failing := func(ctx context.Context) (*connection.Conn, error) {
		return nil, assert.AnError
	}
	p := New("unreachable:0", opts, failing)
	defer p.Close()

	ctx := context.Background()
	_, err := p.Lease(ctx)
	require.Error(t, err)

	time.Sleep(15 * time.Millisecond)
	_, err = p.Lease(ctx)
	require.Error(t, err)

	assert.True(t, p.breaker.isOpen())
}

// pingNode completes the handshake like fakeNode, then answers every
// subsequent command as a PING: it records one signal per command and,
// unless dropOnCommand is set, replies +PONG. With dropOnCommand it
// closes the connection instead, simulating a node that stopped
// responding.
type pingNode struct {
	ln net.Listener
	pinged chan struct{}
	dropOnCommand bool
}

func startPingNode(t *testing.T, dropOnCommand bool) *pingNode {
	t.Helper()
	ln, err := net.Listen("tcp", "127.0.0.1:0")
	require.NoError(t, err)
	n := &pingNode{ln: ln, pinged: make(chan struct{}, 8), dropOnCommand: dropOnCommand}
	go n.acceptLoop()
	return n
}

func (n *pingNode) acceptLoop() {
	for {
		c, err := n.ln.Accept()
		if err != nil {
			return
		}
		go n.serve(c)
	}
}

func (n *pingNode) serve(c net.Conn) {
	r := bufio.NewReader(c)
	_, _ = r.ReadString('\n') // "*2"
	_, _ = r.ReadString('\n') // "$5"
	_, _ = r.ReadString('\n') // "HELLO"
	_, _ = r.ReadString('\n') // "$1"
	_, _ = r.ReadString('\n') // "3"
	if _, err := c.Write([]byte("%1\r\n$6\r\nserver\r\n$5\r\nvalkey\r\n")); err != nil {
		return
	}

	for {
		header, err := r.ReadString('\n')
		if err != nil {
			return
		}
		header = strings.TrimRight(header, "\r\n")
		if len(header) == 0 || header[0] != '*' {
			return
		}
		count, err := strconv.Atoi(header[1:])
		if err != nil {
			return
		}
		for i := 0; i < count; i++ {
			lenLine, err := r.ReadString('\n')
			if err != nil {
				return
			}
			l, err := strconv.Atoi(strings.TrimRight(lenLine, "\r\n")[1:])
			if err != nil {
				return
			}
			if _, err := r.Discard(l + 2); err != nil {
				return
			}
		}

		n.pinged <- struct{}{}
		if n.dropOnCommand {
			c.Close()
			return
		}
		if _, err := c.Write([]byte("+PONG\r\n")); err != nil {
			return
		}
	}
}

func (n *pingNode) addr() string { return n.ln.Addr().String() }
func (n *pingNode) close() { n.ln.Close() }

func testKeepAliveDialer(addr string) Dialer {
	return func(ctx context.Context) (*connection.Conn, error) {
		return connection.Dial(ctx, addr, connection.Options{
			CommandTimeout: time.Second,
			KeepAliveFrequency: time.Millisecond,
		}, nil)
	}
}

func TestKeepAliveOncePingsIdleConnections(t *testing.T) {
	node := startPingNode(t, false)
	defer node.close()

	opts := confopt.PoolOptions{MaximumConnectionSoftLimit: 1, MaximumConnectionHardLimit: 1, MaximumConcurrentConnectionRequests: 1}
	p := New(node.addr(), opts, testKeepAliveDialer(node.addr()))
	defer p.Close()

	ctx := context.Background()
	c, err := p.Lease(ctx)
	require.NoError(t, err)
	p.Release(c)

	time.Sleep(5 * time.Millisecond)
	p.keepAliveOnce()

	select {
	case <-node.pinged:
	case <-time.After(time.Second):
		t.Fatal("timed out waiting for a keep-alive ping")
	}
	assert.Equal(t, 1, p.Len())
}

func TestKeepAliveOnceDropsAConnectionThatFailsToRespond(t *testing.T) {
	node := startPingNode(t, true)
	defer node.close()

	opts := confopt.PoolOptions{MaximumConnectionSoftLimit: 1, MaximumConnectionHardLimit: 1, MaximumConcurrentConnectionRequests: 1}
	p := New(node.addr(), opts, testKeepAliveDialer(node.addr()))
	defer p.Close()

	ctx := context.Background()
	c, err := p.Lease(ctx)
	require.NoError(t, err)
	p.Release(c)

	time.Sleep(5 * time.Millisecond)
	p.keepAliveOnce()

	assert.Equal(t, 0, p.Len())
	assert.Equal(t, 0, p.Idle())
}
