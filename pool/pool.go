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

// Package pool implements a per-node connection pool: lease/release
// against a bounded set of connections to one node, an idle reaper,
// and a circuit breaker that fails fast while a node is unreachable.
//
// The pool's double-checked lock shape is grounded on
// protocol/pool.go's connPool.GetOrCreate; the idle reaper is grounded
// on common/socket/ttlcache.go's ticker-driven gc.
package pool

import (
	"context"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/valkeygo/valkeygo/confopt"
	"github.com/valkeygo/valkeygo/connection"
	"github.com/valkeygo/valkeygo/metrics"
)

var (
	// ErrPoolClosed means the pool has been shut down.
	ErrPoolClosed = errors.New("pool: closed")
	// ErrCircuitOpen means the node's circuit breaker is currently open
	// and new connection attempts are being failed fast.
	ErrCircuitOpen = errors.New("pool: circuit breaker open")
)

// Dialer opens one new connection to the pool's node.
type Dialer func(ctx context.Context) (*connection.Conn, error)

// Pool leases connections to a single node, bounded by
// confopt.PoolOptions.
type Pool struct {
	addr string
	opts confopt.PoolOptions
	dial Dialer

	sem chan struct{}

	mut sync.Mutex
	cond *sync.Cond
	idle []*connection.Conn
	leased map[int64]*connection.Conn
	total int
	closed bool

	breaker breaker

	stop chan struct{}
}

// New returns a Pool for addr that dials new connections through dial.
func New(addr string, opts confopt.PoolOptions, dial Dialer) *Pool {
	p := &Pool{
		addr: addr,
		opts: opts,
		dial: dial,
		sem: make(chan struct{}, maxInt(1, opts.MaximumConcurrentConnectionRequests)),
		leased: make(map[int64]*connection.Conn),
		stop: make(chan struct{}),
	}
	p.cond = sync.NewCond(&p.mut)
	go p.reapLoop()
	return p
}

func maxInt(a, b int) int {
	if a > b {
		return a
	}
	return b
}

// Lease returns an idle connection or dials a new one, blocking while
// the pool is at its hard limit until a connection is released or ctx
// is cancelled.
func (p *Pool) Lease(ctx context.Context) (*connection.Conn, error) {
	for {
		p.mut.Lock()
		if p.closed {
			p.mut.Unlock()
			return nil, ErrPoolClosed
		}

		for len(p.idle) > 0 {
			c := p.idle[len(p.idle)-1]
			p.idle = p.idle[:len(p.idle)-1]
			if c.State() != connection.Active {
				p.total--
				go c.Close()
				continue
			}
			p.leased[c.ID()] = c
			p.mut.Unlock()
			metrics.ConnectionsLeased.WithLabelValues(p.addr).Inc()
			return c, nil
		}

		if p.total < p.opts.MaximumConnectionHardLimit {
			p.total++
			p.mut.Unlock()

			c, err := p.dialWithBreaker(ctx)
			if err != nil {
				p.mut.Lock()
				p.total--
				p.mut.Unlock()
				return nil, err
			}

			p.mut.Lock()
			p.leased[c.ID()] = c
			p.mut.Unlock()
			metrics.ConnectionsLeased.WithLabelValues(p.addr).Inc()
			return c, nil
		}

		// At the hard limit with nothing idle: wait for a release,
		// waking periodically to notice context cancellation.
		waitDone := make(chan struct{})
		go func() {
			select {
			case <-ctx.Done():
				p.cond.Broadcast()
			case <-waitDone:
			}
		}()
		p.cond.Wait()
		close(waitDone)
		p.mut.Unlock()

		if ctx.Err() != nil {
			return nil, ctx.Err()
		}
	}
}

// Release returns c to the idle set, or drops it from the pool's
// accounting if it is no longer active.
func (p *Pool) Release(c *connection.Conn) {
	p.mut.Lock()
	delete(p.leased, c.ID())
	if c.State() == connection.Active && !p.closed {
		p.idle = append(p.idle, c)
	} else {
		p.total--
		go c.Close()
	}
	p.mut.Unlock()
	p.cond.Signal()
	metrics.ConnectionsLeased.WithLabelValues(p.addr).Dec()
}

// dialWithBreaker acquires the concurrent-dial semaphore, consults the
// breaker, dials, and records the outcome.
func (p *Pool) dialWithBreaker(ctx context.Context) (*connection.Conn, error) {
	if !p.breaker.allow(p.opts.CircuitBreakerTripAfter()) {
		return nil, ErrCircuitOpen
	}

	select {
	case p.sem <- struct{}{}:
	case <-ctx.Done():
		return nil, ctx.Err()
	}
	defer func() { <-p.sem }()

	c, err := p.dial(ctx)
	if err != nil {
		p.breaker.recordFailure(p.opts.CircuitBreakerTripAfter())
		metrics.PoolCircuitBreakerOpen.WithLabelValues(p.addr).Set(boolToFloat(p.breaker.isOpen()))
		return nil, errors.Wrapf(err, "pool: dial %s", p.addr)
	}
	p.breaker.recordSuccess()
	metrics.PoolCircuitBreakerOpen.WithLabelValues(p.addr).Set(0)
	return c, nil
}

func boolToFloat(b bool) float64 {
	if b {
		return 1
	}
	return 0
}

// Len reports the pool's current total connection count (idle +
// leased).
func (p *Pool) Len() int {
	p.mut.Lock()
	defer p.mut.Unlock()
	return p.total
}

// Idle reports the pool's current idle connection count.
func (p *Pool) Idle() int {
	p.mut.Lock()
	defer p.mut.Unlock()
	return len(p.idle)
}

// Close drains and closes every connection the pool holds and stops
// the reaper.
func (p *Pool) Close() {
	p.mut.Lock()
	if p.closed {
		p.mut.Unlock()
		return
	}
	p.closed = true
	idle := p.idle
	p.idle = nil
	p.mut.Unlock()

	close(p.stop)
	for _, c := range idle {
		c.Close()
	}
	p.cond.Broadcast()
}

// reapLoop closes idle connections that exceeded IdleTimeout, keeping
// at least MinimumConnectionCount connections (idle or leased) alive.
func (p *Pool) reapLoop() {
	interval := p.opts.IdleTimeout() / 4
	if interval <= 0 {
		interval = time.Second
	}
	ticker := time.NewTicker(interval)
	defer ticker.Stop()

	for {
		select {
		case <-p.stop:
			return
		case <-ticker.C:
			p.reapOnce()
			p.keepAliveOnce()
		}
	}
}

// keepAliveOnce pings every idle connection via Conn.KeepAlive, which
// itself no-ops unless the connection has gone quiet for at least its
// configured keep-alive frequency. Connections that fail to respond are
// dropped from the pool, mirroring reapOnce's snapshot-probe-remove
// shape so pinging never happens while holding mut.
func (p *Pool) keepAliveOnce() {
	p.mut.Lock()
	idle := make([]*connection.Conn, len(p.idle))
	copy(idle, p.idle)
	p.mut.Unlock()

	var dead []*connection.Conn
	for _, c := range idle {
		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		err := c.KeepAlive(ctx)
		cancel()
		if err != nil {
			dead = append(dead, c)
		}
	}
	if len(dead) == 0 {
		return
	}

	deadIDs := make(map[int64]struct{}, len(dead))
	for _, c := range dead {
		deadIDs[c.ID()] = struct{}{}
	}
	p.mut.Lock()
	kept := p.idle[:0]
	for _, c := range p.idle {
		if _, ok := deadIDs[c.ID()]; ok {
			p.total--
			continue
		}
		kept = append(kept, c)
	}
	p.idle = kept
	p.mut.Unlock()

	for _, c := range dead {
		c.Close()
	}
}

func (p *Pool) reapOnce() {
	timeout := p.opts.IdleTimeout()
	if timeout <= 0 {
		return
	}

	p.mut.Lock()
	now := time.Now()
	kept := p.idle[:0]
	var expired []*connection.Conn
	for _, c := range p.idle {
		if p.total <= p.opts.MinimumConnectionCount {
			kept = append(kept, c)
			continue
		}
		if now.Sub(c.ActiveAt()) >= timeout {
			expired = append(expired, c)
			p.total--
			continue
		}
		kept = append(kept, c)
	}
	p.idle = kept
	p.mut.Unlock()

	for _, c := range expired {
		c.Close()
	}
}

// breaker is a minimal consecutive-failure circuit breaker: it opens
// once dial failures have persisted continuously for tripAfter, and
// resets on the first success.
type breaker struct {
	mut sync.Mutex
	firstFailureAt time.Time
	open bool
	openUntil time.Time
}

func (b *breaker) allow(tripAfter time.Duration) bool {
	b.mut.Lock()
	defer b.mut.Unlock()
	if !b.open {
		return true
	}
	if time.Now().After(b.openUntil) {
		// Half-open: let one trial dial through.
		b.open = false
		return true
	}
	return false
}

// recordFailure opens the breaker once failures have persisted
// continuously for tripAfter; the open period reuses tripAfter as its
// own cool-down so a node that keeps failing is retried at the same
// cadence it took to trip.
func (b *breaker) recordFailure(tripAfter time.Duration) {
	b.mut.Lock()
	defer b.mut.Unlock()
	now := time.Now()
	if b.firstFailureAt.IsZero() {
		b.firstFailureAt = now
		return
	}
	if tripAfter > 0 && now.Sub(b.firstFailureAt) >= tripAfter {
		b.open = true
		b.openUntil = now.Add(tripAfter)
	}
}

func (b *breaker) recordSuccess() {
	b.mut.Lock()
	defer b.mut.Unlock()
	b.firstFailureAt = time.Time{}
	b.open = false
}

func (b *breaker) isOpen() bool {
	b.mut.Lock()
	defer b.mut.Unlock()
	return b.open
}
