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

// Package connection owns one duplex socket to a Valkey/Redis node: it
// serializes writes, parses reads, and multiplexes requests against a
// FIFO of waiters, routing push frames out to a subscribe.Manager
// instead of ever consuming a waiter slot for them .
//
// The read loop is grounded on protocol/predis/decoder.go's decode
// loop, generalized from a passive capture decoder parsing a
// zerocopy.Reader into an active reader goroutine parsing bytes read
// off a live net.Conn.
package connection

import (
	"context"
	"crypto/tls"
	"net"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/internal/bufbytes"
	"github.com/valkeygo/valkeygo/internal/ssl"
	"github.com/valkeygo/valkeygo/logger"
	"github.com/valkeygo/valkeygo/metrics"
	"github.com/valkeygo/valkeygo/resp"
	"github.com/valkeygo/valkeygo/subscribe"
)

// diagSnapshotSize bounds how many wire bytes read since the last
// successfully parsed frame are kept for inclusion in a parse-failure
// diagnostic; bytes past the first diagSnapshotSize are dropped.
const diagSnapshotSize = 256

// State is the connection's lifecycle state .
type State int32

const (
	Handshaking State = iota
	Active
	Draining
	Closing
	Closed
)

func (s State) String() string {
	switch s {
	case Handshaking:
		return "handshaking"
	case Active:
		return "active"
	case Draining:
		return "draining"
	case Closing:
		return "closing"
	case Closed:
		return "closed"
	default:
		return "unknown"
	}
}

var (
	// ErrConnectionClosed means the connection is already closed.
	ErrConnectionClosed = errors.New("connection: closed")
	// ErrConnectionClosing means the connection is tearing down and
	// refuses new work.
	ErrConnectionClosing = errors.New("connection: closing")
	// ErrTimeout means a request's deadline elapsed before a reply
	// arrived.
	ErrTimeout = errors.New("connection: timeout")
	// ErrCancelled means the caller cancelled a request explicitly.
	ErrCancelled = errors.New("connection: cancelled due to cancellation")
)

// Options configures a Conn's handshake and timeouts.
type Options struct {
	Username, Password string
	ClientName string
	LibName, LibVersion string
	DatabaseNumber int
	CommandTimeout time.Duration
	BlockingCommandTimeout time.Duration
	KeepAliveFrequency time.Duration
	TLS *tls.Config
}

// waiter is one entry in the FIFO of requests awaiting a reply.
type waiter struct {
	done chan struct{}
	frame *resp.Frame
	err error
	blocking bool
}

// Conn is one duplex connection to a node.
type Conn struct {
	id int64
	addr string
	nc net.Conn
	opts Options
	subs *subscribe.Manager

	state atomic.Int32

	writeMu sync.Mutex
	dec *resp.Decoder
	diag *bufbytes.Bytes

	waitersMu sync.Mutex
	waiters []*waiter

	lastActivity atomic.Int64 // unix nano

	closeOnce sync.Once
	closeErr error
}

var connIDs atomic.Int64

// Dial opens a TCP (optionally TLS) connection to addr and runs the
// handshake sequence: HELLO 3 (+ AUTH) → CLIENT SETINFO lib-name →
// CLIENT SETINFO lib-ver → optional CLIENT SETNAME → optional SELECT.
func Dial(ctx context.Context, addr string, opts Options, provider *ssl.Provider) (*Conn, error) {
	dialer := &net.Dialer{}
	var nc net.Conn
	var err error

	if opts.TLS != nil {
		tlsCfg := opts.TLS
		if provider != nil {
			tlsCfg, err = provider.Get(opts.TLS.ServerName)
			if err != nil {
				return nil, errors.Wrap(err, "connection: obtain TLS context")
			}
		}
		nc, err = tls.DialWithDialer(dialer, "tcp", addr, tlsCfg)
	} else {
		nc, err = dialer.DialContext(ctx, "tcp", addr)
	}
	if err != nil {
		return nil, errors.Wrapf(err, "connection: dial %s", addr)
	}

	c := &Conn{
		id: connIDs.Add(1),
		addr: addr,
		nc: nc,
		opts: opts,
		dec: resp.NewDecoder(),
		diag: bufbytes.New(diagSnapshotSize),
	}
	c.state.Store(int32(Handshaking))
	c.touch()

	go c.readLoop()

	if err := c.handshake(ctx); err != nil {
		c.fail(err)
		return nil, err
	}
	c.state.Store(int32(Active))
	metrics.ConnectionsOpen.WithLabelValues(addr).Inc()
	return c, nil
}

// ID returns the connection's process-unique monotonic identifier.
func (c *Conn) ID() int64 { return c.id }

// State returns the connection's current lifecycle state.
func (c *Conn) State() State { return State(c.state.Load()) }

// ActiveAt returns the time of the connection's last observed activity
// (a write, or any decoded frame, push frames included).
func (c *Conn) ActiveAt() time.Time {
	return time.Unix(0, c.lastActivity.Load())
}

func (c *Conn) touch() {
	c.lastActivity.Store(time.Now().UnixNano())
}

// AttachSubscriptions wires subs as this connection's push-frame
// destination; called once by the dedicated subscription acquirer or
// by the pool before handing the connection out for SUBSCRIBE use.
func (c *Conn) AttachSubscriptions(subs *subscribe.Manager) {
	c.subs = subs
}

// handshake runs HELLO/AUTH/CLIENT SETINFO/CLIENT SETNAME/SELECT in
// sequence. A non-success HELLO reply is fatal; SETINFO failures are
// tolerated, since older servers may not support it.
func (c *Conn) handshake(ctx context.Context) error {
	hello := command.Hello(3, c.opts.Username, c.opts.Password, "")
	if _, err := c.do(ctx, hello, false); err != nil {
		return errors.Wrap(err, "connection: HELLO failed")
	}

	if c.opts.LibName != "" {
		_, _ = c.do(ctx, command.ClientSetInfo("lib-name", c.opts.LibName), false)
	}
	if c.opts.LibVersion != "" {
		_, _ = c.do(ctx, command.ClientSetInfo("lib-ver", c.opts.LibVersion), false)
	}
	if c.opts.ClientName != "" {
		if _, err := c.do(ctx, command.ClientSetName(c.opts.ClientName), false); err != nil {
			logger.Warnf("connection %d: CLIENT SETNAME failed: %v", c.id, err)
		}
	}
	if c.opts.DatabaseNumber != 0 {
		if _, err := c.do(ctx, command.Select(c.opts.DatabaseNumber), false); err != nil {
			return errors.Wrap(err, "connection: SELECT failed")
		}
	}
	return nil
}

// Do submits cmd, writes it to the wire, and blocks until its reply
// arrives, times out, or ctx is cancelled. It is the single-command
// entry point used after the handshake completes; Pipeline is the
// batched one.
func (c *Conn) Do(ctx context.Context, cmd command.Command) (*resp.Frame, error) {
	return c.do(ctx, cmd, cmd.Blocking())
}

func (c *Conn) do(ctx context.Context, cmd command.Command, blocking bool) (*resp.Frame, error) {
	state := c.State()
	if state == Closed || state == Closing {
		return nil, ErrConnectionClosed
	}
	if state == Draining {
		return nil, ErrConnectionClosing
	}

	w := &waiter{done: make(chan struct{}), blocking: blocking}

	c.writeMu.Lock()
	e := resp.NewEncoder()
	cmd.Encode(e)
	c.waitersMu.Lock()
	c.waiters = append(c.waiters, w)
	c.waitersMu.Unlock()
	_, writeErr := c.nc.Write(e.Bytes())
	c.writeMu.Unlock()
	c.touch()

	if writeErr != nil {
		c.fail(errors.Wrap(writeErr, "connection: write"))
		return nil, c.closeErr
	}

	timeout := c.opts.CommandTimeout
	if blocking {
		timeout = c.opts.BlockingCommandTimeout
	}

	var timeoutCh <-chan time.Time
	if timeout > 0 {
		timer := time.NewTimer(timeout)
		defer timer.Stop()
		timeoutCh = timer.C
	}

	select {
	case <-w.done:
		return w.frame, w.err
	case <-ctx.Done():
		return nil, ErrCancelled
	case <-timeoutCh:
		return nil, ErrTimeout
	}
}

// Pipeline submits cmds as a single batched write — submitting
// multiple commands before reading any responses, with responses
// returned in submission order — and returns one reply frame per
// command, in order. It is the primitive the
// transaction driver uses to send MULTI, each queued command, and EXEC
// as one write.
func (c *Conn) Pipeline(ctx context.Context, cmds []command.Command) ([]*resp.Frame, error) {
	if len(cmds) == 0 {
		return nil, nil
	}
	state := c.State()
	if state == Closed || state == Closing {
		return nil, ErrConnectionClosed
	}
	if state == Draining {
		return nil, ErrConnectionClosing
	}

	waiters := make([]*waiter, len(cmds))
	c.writeMu.Lock()
	e := resp.NewEncoder()
	for i, cmd := range cmds {
		cmd.Encode(e)
		waiters[i] = &waiter{done: make(chan struct{}), blocking: cmd.Blocking()}
	}
	c.waitersMu.Lock()
	c.waiters = append(c.waiters, waiters...)
	c.waitersMu.Unlock()
	_, writeErr := c.nc.Write(e.Bytes())
	c.writeMu.Unlock()
	c.touch()

	if writeErr != nil {
		c.fail(errors.Wrap(writeErr, "connection: write"))
		return nil, c.closeErr
	}

	frames := make([]*resp.Frame, len(cmds))
	for i, w := range waiters {
		timeout := c.opts.CommandTimeout
		if w.blocking {
			timeout = c.opts.BlockingCommandTimeout
		}
		var timeoutCh <-chan time.Time
		if timeout > 0 {
			timer := time.NewTimer(timeout)
			select {
			case <-w.done:
				timer.Stop()
				frames[i] = w.frame
			case <-ctx.Done():
				timer.Stop()
				return frames, ErrCancelled
			case <-timer.C:
				return frames, ErrTimeout
			}
			continue
		}
		select {
		case <-w.done:
			frames[i] = w.frame
		case <-ctx.Done():
			return frames, ErrCancelled
		}
	}
	return frames, nil
}

// readLoop is the connection's single reader goroutine: it owns the
// decoder and the waiter FIFO's pop side, so only this goroutine ever
// removes the FIFO's head; pushes and pops both take waitersMu.
func (c *Conn) readLoop() {
	buf := make([]byte, 4096)
	for {
		n, err := c.nc.Read(buf)
		if n > 0 {
			c.dec.Feed(buf[:n])
			c.diag.Write(buf[:n])
			c.drainFrames()
		}
		if err != nil {
			c.fail(errors.Wrap(err, "connection: read"))
			return
		}
	}
}

func (c *Conn) drainFrames() {
	for {
		f, err := c.dec.Next()
		if errors.Is(err, resp.ErrTruncated) {
			c.dec.Compact()
			return
		}
		if err != nil {
			c.fail(errors.Wrapf(err, "connection: parse (near %q)", c.diag.TrimCStringText()))
			return
		}
		c.diag.Reset()
		c.touch()

		if f.Type == resp.Push {
			c.routePush(f)
			continue
		}

		c.popWaiter(f)
	}
}

func (c *Conn) popWaiter(f *resp.Frame) {
	c.waitersMu.Lock()
	if len(c.waiters) == 0 {
		c.waitersMu.Unlock()
		logger.Warnf("connection %d: unsolicited reply with no pending waiter", c.id)
		return
	}
	w := c.waiters[0]
	c.waiters = c.waiters[1:]
	c.waitersMu.Unlock()

	w.frame = f
	if cerr := command.AsError(f); cerr != nil {
		w.err = cerr
	}
	close(w.done)
}

func (c *Conn) routePush(f *resp.Frame) {
	if c.subs == nil || f.Len() == 0 {
		return
	}
	kind, err := command.AsString(&f.Elements[0])
	if err != nil {
		return
	}

	filter, channel, payloadIdx := pushFilter(kind, f)
	if payloadIdx < 0 || payloadIdx >= f.Len() {
		return
	}
	payload, err := command.AsString(&f.Elements[payloadIdx])
	if err != nil {
		return
	}
	c.subs.Dispatch(filter, subscribe.Message{Filter: filter, Channel: channel, Payload: payload})
}

// SendSubscribe issues the wire-level subscribe command for f,
// implementing subscribe.Sender. Under RESP3 the server answers
// (p/s)subscribe with a push frame rather than a FIFO-ordered reply, so
// this writes directly to the wire instead of going through Do/waiter
// registration: a waiter here would never be popped and would
// desynchronize the FIFO for every command after it. The confirmation
// push is simply dropped by routePush/pushFilter, which only recognize
// the message-delivery kinds.
func (c *Conn) SendSubscribe(f subscribe.Filter) error {
	return c.writeCommand(subscribeCommand(f))
}

// SendUnsubscribe issues the wire-level unsubscribe command for f, for
// the same reason SendSubscribe bypasses Do.
func (c *Conn) SendUnsubscribe(f subscribe.Filter) error {
	return c.writeCommand(unsubscribeCommand(f))
}

// writeCommand flushes cmd to the wire without registering a FIFO
// waiter, for commands whose reply is never delivered as a regular
// reply frame.
func (c *Conn) writeCommand(cmd command.Command) error {
	state := c.State()
	if state == Closed || state == Closing {
		return ErrConnectionClosed
	}

	c.writeMu.Lock()
	e := resp.NewEncoder()
	cmd.Encode(e)
	_, err := c.nc.Write(e.Bytes())
	c.writeMu.Unlock()
	c.touch()

	if err != nil {
		c.fail(errors.Wrap(err, "connection: write"))
		return c.closeErr
	}
	return nil
}

func subscribeCommand(f subscribe.Filter) command.Command {
	switch f.Kind {
	case subscribe.Pattern:
		return command.PSubscribe(f.Name)
	case subscribe.ShardChannel:
		return command.SSubscribe(f.Name)
	default:
		return command.Subscribe(f.Name)
	}
}

func unsubscribeCommand(f subscribe.Filter) command.Command {
	switch f.Kind {
	case subscribe.Pattern:
		return command.PUnsubscribe(f.Name)
	case subscribe.ShardChannel:
		return command.SUnsubscribe(f.Name)
	default:
		return command.Unsubscribe(f.Name)
	}
}

func pushFilter(kind string, f *resp.Frame) (subscribe.Filter, string, int) {
	switch kind {
	case "message":
		if f.Len() < 3 {
			return subscribe.Filter{}, "", -1
		}
		ch, _ := command.AsString(&f.Elements[1])
		return subscribe.Filter{Kind: subscribe.Channel, Name: ch}, ch, 2
	case "smessage":
		if f.Len() < 3 {
			return subscribe.Filter{}, "", -1
		}
		ch, _ := command.AsString(&f.Elements[1])
		return subscribe.Filter{Kind: subscribe.ShardChannel, Name: ch}, ch, 2
	case "pmessage":
		if f.Len() < 4 {
			return subscribe.Filter{}, "", -1
		}
		pattern, _ := command.AsString(&f.Elements[1])
		ch, _ := command.AsString(&f.Elements[2])
		return subscribe.Filter{Kind: subscribe.Pattern, Name: pattern}, ch, 3
	default:
		return subscribe.Filter{}, "", -1
	}
}

// fail transitions the connection to closing/closed and fails every
// outstanding waiter with err: parse/connection errors are reported to
// all waiters on the affected connection.
func (c *Conn) fail(err error) {
	c.closeOnce.Do(func() {
		c.state.Store(int32(Closing))
		c.closeErr = err

		c.waitersMu.Lock()
		pending := c.waiters
		c.waiters = nil
		c.waitersMu.Unlock()

		for _, w := range pending {
			w.err = err
			close(w.done)
		}

		_ = c.nc.Close()
		c.state.Store(int32(Closed))
		metrics.ConnectionsOpen.WithLabelValues(c.addr).Dec()
	})
}

// Drain stops accepting new requests and closes once the FIFO empties,
// per the handshaking/active/draining/closing/closed state machine.
func (c *Conn) Drain() {
	if !c.state.CompareAndSwap(int32(Active), int32(Draining)) {
		return
	}
	go func() {
		for {
			c.waitersMu.Lock()
			empty := len(c.waiters) == 0
			c.waitersMu.Unlock()
			if empty {
				c.fail(ErrConnectionClosed)
				return
			}
			time.Sleep(10 * time.Millisecond)
		}
	}()
}

// Close forcibly closes the connection, failing all outstanding
// waiters immediately.
func (c *Conn) Close() error {
	c.fail(ErrConnectionClosed)
	return nil
}

// KeepAlive sends PING if idle for at least opts.KeepAliveFrequency and
// reports whether the connection is still healthy; the pool's idle
// reaper calls this periodically.
func (c *Conn) KeepAlive(ctx context.Context) error {
	if c.opts.KeepAliveFrequency <= 0 {
		return nil
	}
	if time.Since(c.ActiveAt()) < c.opts.KeepAliveFrequency {
		return nil
	}
	_, err := c.Do(ctx, command.Ping(""))
	return err
}
