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

package connection

import (
	"bufio"
	"context"
	"net"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/internal/bufbytes"
	"github.com/valkeygo/valkeygo/resp"
	"github.com/valkeygo/valkeygo/subscribe"
)

// fakeServer reads one RESP array-of-bulk-strings command per call to
// next and lets the test script a reply via respond/push.
type fakeServer struct {
	t *testing.T
	conn net.Conn
	r *bufio.Reader
}

func newFakeServer(t *testing.T, conn net.Conn) *fakeServer {
	return &fakeServer{t: t, conn: conn, r: bufio.NewReader(conn)}
}

// next reads and discards one full RESP array command, returning its
// tokens.
func (s *fakeServer) next() []string {
	s.t.Helper()
	line, err := s.r.ReadString('\n')
	require.NoError(s.t, err)
	require.True(s.t, len(line) > 0 && line[0] == '*')
	n := parseCount(line)
	tokens := make([]string, 0, n)
	for i := 0; i < n; i++ {
		hdr, err := s.r.ReadString('\n')
		require.NoError(s.t, err)
		blen := parseCount(hdr)
		buf := make([]byte, blen+2)
		_, err = s.r.Read(buf)
		require.NoError(s.t, err)
		tokens = append(tokens, string(buf[:blen]))
	}
	return tokens
}

func parseCount(line string) int {
	n := 0
	i := 1
	for ; i < len(line) && line[i] >= '0' && line[i] <= '9'; i++ {
		n = n*10 + int(line[i]-'0')
	}
	return n
}

func (s *fakeServer) write(raw string) {
	s.t.Helper()
	_, err := s.conn.Write([]byte(raw))
	require.NoError(s.t, err)
}

func dialPipe(t *testing.T, opts Options) (*Conn, *fakeServer) {
	t.Helper()
	client, server := net.Pipe()

	srv := newFakeServer(t, server)
	ready := make(chan struct{})
	go func() {
		defer close(ready)
		require.Equal(t, []string{"HELLO", "3"}, srv.next())
		srv.write("%1\r\n$6\r\nserver\r\n$5\r\nvalkey\r\n")
	}()

	c := &Conn{id: connIDs.Add(1), addr: "pipe", nc: client, opts: opts, dec: resp.NewDecoder(), diag: bufbytes.New(diagSnapshotSize)}
	c.state.Store(int32(Handshaking))
	c.touch()
	go c.readLoop()

	ctx, cancel := context.WithTimeout(context.Background(), time.Second)
	defer cancel()
	require.NoError(t, c.handshake(ctx))
	c.state.Store(int32(Active))

	<-ready
	return c, srv
}

func TestHandshakeIssuesHelloAndActivates(t *testing.T) {
	c, srv := dialPipe(t, Options{CommandTimeout: time.Second})
	defer c.Close()
	_ = srv
	assert.Equal(t, Active, c.State())
}

func TestDoRoundTripsASimpleCommand(t *testing.T) {
	c, srv := dialPipe(t, Options{CommandTimeout: time.Second})
	defer c.Close()

	done := make(chan struct{})
	var reply string
	go func() {
		defer close(done)
		f, err := c.Do(context.Background(), command.Get("foo"))
		require.NoError(t, err)
		reply, err = command.AsString(f)
		require.NoError(t, err)
	}()

	assert.Equal(t, []string{"GET", "foo"}, srv.next())
	srv.write("$3\r\nbar\r\n")
	<-done
	assert.Equal(t, "bar", reply)
}

func TestDoSurfacesServerError(t *testing.T) {
	c, srv := dialPipe(t, Options{CommandTimeout: time.Second})
	defer c.Close()

	done := make(chan struct{})
	var callErr error
	go func() {
		defer close(done)
		_, callErr = c.Do(context.Background(), command.Get("foo"))
	}()

	srv.next()
	srv.write("-WRONGTYPE Operation against a key holding the wrong kind of value\r\n")
	<-done
	require.Error(t, callErr)
	var cmdErr *command.Error
	require.ErrorAs(t, callErr, &cmdErr)
	assert.Equal(t, command.ErrorWrongType, cmdErr.Kind)
}

func TestDoTimesOutWithoutConsumingAFutureReply(t *testing.T) {
	c, srv := dialPipe(t, Options{CommandTimeout: 20 * time.Millisecond})
	defer c.Close()

	_, err := c.Do(context.Background(), command.Get("slow"))
	assert.ErrorIs(t, err, ErrTimeout)

	srv.next()
	srv.write("$3\r\nbar\r\n")
	time.Sleep(10 * time.Millisecond) // let readLoop discard the stale reply
}

func TestPushFramesRouteToSubscriptionManagerInsteadOfAWaiter(t *testing.T) {
	c, srv := dialPipe(t, Options{CommandTimeout: time.Second})
	defer c.Close()

	sender := &noopSender{}
	mgr := subscribe.NewManager(sender)
	c.AttachSubscriptions(mgr)

	q, err := mgr.Subscribe(subscribe.Filter{Kind: subscribe.Channel, Name: "news"})
	require.NoError(t, err)

	srv.write(">3\r\n$7\r\nmessage\r\n$4\r\nnews\r\n$5\r\nhello\r\n")

	v, ok := q.PopTimeout(time.Second)
	require.True(t, ok)
	assert.Equal(t, "hello", v.(subscribe.Message).Payload)
}

type noopSender struct{}

func (noopSender) SendSubscribe(subscribe.Filter) error { return nil }
func (noopSender) SendUnsubscribe(subscribe.Filter) error { return nil }
