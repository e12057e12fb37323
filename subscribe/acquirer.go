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

package subscribe

import (
	"context"
	"sync"

	"github.com/pkg/errors"
)

type acquirerState int

const (
	acquirerUninitialized acquirerState = iota
	acquirerProducing
	acquirerReady
	acquirerFailed
)

// Dialer produces the single dedicated connection an Acquirer shares.
// conn is typed as any so this package does not import connection
// (which itself imports subscribe to route push frames); callers supply
// a Dialer closing over *connection.Conn and type-assert the result.
type Dialer func(ctx context.Context) (conn interface{}, err error)

// Acquirer is the dedicated subscription-connection acquirer: a
// lazy-shared-once-init state machine where the first caller dials the
// shared pub/sub connection, concurrent callers park on that same dial,
// and the result (or failure) is replayed to everyone waiting.
// Isolating subscriptions onto one connection keeps push traffic off
// the request/response connections the pool leases out.
type Acquirer struct {
	dial Dialer

	mut sync.Mutex
	state acquirerState
	conn interface{}
	err error
	ready chan struct{}
}

// NewAcquirer returns an Acquirer backed by dial.
func NewAcquirer(dial Dialer) *Acquirer {
	return &Acquirer{dial: dial}
}

// Get returns the shared subscription connection, dialing it on the
// first call and replaying the same result (or error) to every
// subsequent or concurrent caller until Invalidate is called.
func (a *Acquirer) Get(ctx context.Context) (interface{}, error) {
	a.mut.Lock()
	switch a.state {
	case acquirerReady:
		conn := a.conn
		a.mut.Unlock()
		return conn, nil
	case acquirerFailed:
		err := a.err
		a.mut.Unlock()
		return nil, err
	case acquirerProducing:
		ready := a.ready
		a.mut.Unlock()
		select {
		case <-ready:
			return a.Get(ctx)
		case <-ctx.Done():
			return nil, ctx.Err()
		}
	}

	a.state = acquirerProducing
	a.ready = make(chan struct{})
	a.mut.Unlock()

	conn, err := a.dial(ctx)

	a.mut.Lock()
	if err != nil {
		a.state = acquirerFailed
		a.err = errors.Wrap(err, "subscribe: dial subscription connection")
	} else {
		a.state = acquirerReady
		a.conn = conn
	}
	close(a.ready)
	a.mut.Unlock()

	if err != nil {
		return nil, a.err
	}
	return conn, nil
}

// Current returns the cached connection without dialing, for shutdown
// paths that need to close whatever connection is live without forcing
// a fresh dial first.
func (a *Acquirer) Current() (interface{}, bool) {
	a.mut.Lock()
	defer a.mut.Unlock()
	if a.state != acquirerReady {
		return nil, false
	}
	return a.conn, true
}

// Invalidate discards the cached connection, e.g. after it reports a
// connection-level failure, so the next Get redials.
func (a *Acquirer) Invalidate() {
	a.mut.Lock()
	defer a.mut.Unlock()
	a.state = acquirerUninitialized
	a.conn = nil
	a.err = nil
}
