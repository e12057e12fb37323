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
	"context"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/connection"
	"github.com/valkeygo/valkeygo/pool"
	"github.com/valkeygo/valkeygo/resp"
	"github.com/valkeygo/valkeygo/transaction"
)

// Transaction pins one connection across a WATCH/MULTI/EXEC sequence:
// WATCH and the following EXEC must run on the same connection for the
// server's optimistic-concurrency check to mean anything.
type Transaction struct {
	pool *pool.Pool
	conn *connection.Conn
	closed bool
}

// BeginTransaction leases a connection from the primary and, if any
// watch keys are given, arms WATCH on it before returning. The caller
// must call Exec or Discard exactly once to release the connection.
func (c *Client) BeginTransaction(ctx context.Context, watchKeys ...string) (*Transaction, error) {
	p, err := c.nodes.Primary()
	if err != nil {
		return nil, err
	}
	conn, err := p.Lease(ctx)
	if err != nil {
		return nil, err
	}
	if len(watchKeys) > 0 {
		if err := transaction.Watch(ctx, conn, watchKeys...); err != nil {
			p.Release(conn)
			return nil, err
		}
	}
	return &Transaction{pool: p, conn: conn}, nil
}

// Exec pipelines MULTI, cmds, and EXEC on the pinned connection and
// releases it back to the pool. See transaction.Exec for error
// semantics (ErrAborted, *ErrorsError).
func (t *Transaction) Exec(ctx context.Context, cmds ...command.Command) ([]*resp.Frame, error) {
	defer t.release()
	return transaction.Exec(ctx, t.conn, cmds...)
}

// Discard abandons the transaction (and any armed WATCH) without
// executing anything, releasing the pinned connection.
func (t *Transaction) Discard(ctx context.Context) error {
	defer t.release()
	_, err := t.conn.Do(ctx, command.Discard())
	return err
}

func (t *Transaction) release() {
	if t.closed {
		return
	}
	t.closed = true
	t.pool.Release(t.conn)
}
