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

// Package client is the public façade wiring node, pool, retry,
// subscribe, and transaction together into a single entry point: one
// object a caller constructs with an address and a confopt.Options,
// then drives with Do/BeginTransaction/Subscribe.
package client

import (
	"context"
	"crypto/tls"
	"sync"
	"time"

	"github.com/pkg/errors"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/confopt"
	"github.com/valkeygo/valkeygo/connection"
	"github.com/valkeygo/valkeygo/internal/backoff"
	"github.com/valkeygo/valkeygo/internal/ssl"
	"github.com/valkeygo/valkeygo/logger"
	"github.com/valkeygo/valkeygo/metrics"
	"github.com/valkeygo/valkeygo/node"
	"github.com/valkeygo/valkeygo/pool"
	"github.com/valkeygo/valkeygo/resp"
	"github.com/valkeygo/valkeygo/retry"
	"github.com/valkeygo/valkeygo/subscribe"
	"github.com/valkeygo/valkeygo/transaction"
)

// LibraryName/LibraryVersion are reported to the server via CLIENT
// SETINFO during every connection's handshake .
const (
	LibraryName = "valkeygo"
	LibraryVersion = "0.1.0"
)

// Client is the library's public entry point: a primary/replica-aware,
// pooled, retrying RESP3 command executor.
type Client struct {
	opts confopt.Options
	newPool node.PoolFactory
	nodes *node.Set
	ssl *ssl.Provider
	schedule backoff.Schedule

	adhocMu sync.Mutex
	adhocPools map[string]*pool.Pool

	subs *subscribe.Acquirer
}

// subsConn pairs the dedicated pub/sub connection with the
// subscription manager attached to it; it is the value cached inside
// the subscribe.Acquirer.
type subsConn struct {
	conn *connection.Conn
	manager *subscribe.Manager
}

// New dials primaryAddr as the initial primary and returns a ready
// Client. opts.Validate() is checked first.
func New(ctx context.Context, primaryAddr string, opts confopt.Options) (*Client, error) {
	if err := opts.Validate(); err != nil {
		return nil, err
	}

	c := &Client{
		opts: opts,
		ssl: ssl.NewProvider(ssl.Default()),
		adhocPools: make(map[string]*pool.Pool),
		schedule: backoff.Schedule{
			ExponentBase: opts.Retry.ExponentBase,
			Factor: time.Duration(opts.Retry.FactorMs) * time.Millisecond,
			MinWait: time.Duration(opts.Retry.MinWaitTimeMs) * time.Millisecond,
			MaxWait: time.Duration(opts.Retry.MaxWaitTimeMs) * time.Millisecond,
		},
	}
	c.newPool = func(addr string) *pool.Pool {
		return pool.New(addr, opts.ConnectionPool, c.dialer(addr))
	}
	c.subs = subscribe.NewAcquirer(func(ctx context.Context) (interface{}, error) {
		conn, err := connection.Dial(ctx, primaryAddr, c.connOptions(), c.ssl)
		if err != nil {
			return nil, err
		}
		manager := subscribe.NewManager(conn)
		conn.AttachSubscriptions(manager)
		return &subsConn{conn: conn, manager: manager}, nil
	})

	c.nodes = node.New(c.newPool, opts.ReadOnlyCommandNodeSelection, opts.TopologyRefresh)
	c.nodes.SetPrimary(primaryAddr)
	c.nodes.StartRefresher(ctx)
	return c, nil
}

func (c *Client) connOptions() connection.Options {
	o := connection.Options{
		Username: c.opts.Authentication.Username,
		Password: c.opts.Authentication.Password,
		ClientName: LibraryName,
		LibName: LibraryName,
		LibVersion: LibraryVersion,
		DatabaseNumber: c.opts.DatabaseNumber,
		CommandTimeout: c.opts.CommandTimeout(),
		BlockingCommandTimeout: c.opts.BlockingCommandTimeout(),
		KeepAliveFrequency: c.opts.KeepAliveFrequency(),
	}
	if c.opts.TLS.Enabled {
		o.TLS = &tls.Config{ServerName: c.opts.TLS.ServerName}
	}
	return o
}

func (c *Client) dialer(addr string) pool.Dialer {
	return func(ctx context.Context) (*connection.Conn, error) {
		var provider *ssl.Provider
		if c.opts.TLS.Enabled {
			provider = c.ssl
		}
		return connection.Dial(ctx, addr, c.connOptions(), provider)
	}
}

func (c *Client) poolForAddr(addr string) *pool.Pool {
	c.adhocMu.Lock()
	defer c.adhocMu.Unlock()
	if p, ok := c.adhocPools[addr]; ok {
		return p
	}
	p := c.newPool(addr)
	c.adhocPools[addr] = p
	return p
}

// Do executes cmd, routing read-only commands per the configured
// confopt.ReadRouting policy and everything else to the primary,
// transparently retrying LOADING/BUSY and following at most one
// MOVED/ASK redirect per attempt.
func (c *Client) Do(ctx context.Context, cmd command.Command) (*resp.Frame, error) {
	start := time.Now()
	frame, err := c.do(ctx, cmd)
	metrics.CommandDurationSeconds.WithLabelValues(cmd.Name()).Observe(time.Since(start).Seconds())
	if err != nil {
		metrics.CommandsTotal.WithLabelValues(cmd.Name(), "error").Inc()
	} else {
		metrics.CommandsTotal.WithLabelValues(cmd.Name(), "success").Inc()
	}
	return frame, err
}

func (c *Client) do(ctx context.Context, cmd command.Command) (*resp.Frame, error) {
	driver := retry.NewDriver(c.schedule)
	redirectAddr := ""
	asking := false

	for {
		p, err := c.targetPool(cmd, redirectAddr)
		if err != nil {
			return nil, err
		}
		conn, err := p.Lease(ctx)
		if err != nil {
			return nil, err
		}

		var frame *resp.Frame
		if asking {
			frames, pipeErr := conn.Pipeline(ctx, []command.Command{command.Asking(), cmd})
			err = pipeErr
			if pipeErr == nil {
				frame = frames[1]
				if aerr := command.AsError(frame); aerr != nil {
					err = aerr
				}
			}
		} else {
			frame, err = conn.Do(ctx, cmd)
		}
		p.Release(conn)

		if err == nil {
			return frame, nil
		}

		var cerr *command.Error
		if !errors.As(err, &cerr) {
			return nil, err
		}

		decision := retry.Classify(cerr)
		metrics.RetriesTotal.WithLabelValues(decision.Action.String()).Inc()

		switch decision.Action {
		case retry.TryAgain:
			wait, ok := driver.NextWait()
			if !ok {
				return nil, err
			}
			logger.Debugf("client: %s retrying after %s: %v", cmd.Name(), wait, err)
			select {
			case <-time.After(wait):
			case <-ctx.Done():
				return nil, ctx.Err()
			}
		case retry.Moved:
			if !driver.AllowRedirect() {
				return nil, err
			}
			c.nodes.SetPrimary(decision.TargetAddr)
			redirectAddr = ""
			asking = false
		case retry.Ask:
			if !driver.AllowRedirect() {
				return nil, err
			}
			redirectAddr = decision.TargetAddr
			asking = true
		default:
			return nil, err
		}
	}
}

func (c *Client) targetPool(cmd command.Command, redirectAddr string) (*pool.Pool, error) {
	if redirectAddr != "" {
		return c.poolForAddr(redirectAddr), nil
	}
	if cmd.ReadOnly() {
		return c.nodes.Route()
	}
	return c.nodes.Primary()
}

// Close tears down every pool and connection the client owns,
// including the dedicated pub/sub connection and the background
// topology refresher.
func (c *Client) Close() error {
	c.nodes.Close()

	c.adhocMu.Lock()
	pools := make([]*pool.Pool, 0, len(c.adhocPools))
	for _, p := range c.adhocPools {
		pools = append(pools, p)
	}
	c.adhocPools = make(map[string]*pool.Pool)
	c.adhocMu.Unlock()
	for _, p := range pools {
		p.Close()
	}

	if cached, ok := c.subs.Current(); ok {
		if sc, ok := cached.(*subsConn); ok {
			return sc.conn.Close()
		}
	}
	return nil
}
