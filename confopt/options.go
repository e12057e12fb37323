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

// Package confopt declares the client's configuration surface and loads
// it through confengine, the same ucfg-based path used elsewhere in
// this module for logger.Options and other component configs.
package confopt

import (
	"time"

	"github.com/pkg/errors"

	"github.com/valkeygo/valkeygo/confengine"
)

// ReadRouting selects how a read-only command picks a node.
type ReadRouting string

const (
	RoutePrimary ReadRouting = "primary"
	RouteCycleReplicas ReadRouting = "cycleReplicas"
	RouteCycleAllNodes ReadRouting = "cycleAllNodes"
)

// PoolOptions configures a per-node connection pool .
type PoolOptions struct {
	MinimumConnectionCount int `config:"minimumConnectionCount"`
	MaximumConnectionSoftLimit int `config:"maximumConnectionSoftLimit"`
	MaximumConnectionHardLimit int `config:"maximumConnectionHardLimit"`
	IdleTimeoutMs int `config:"idleTimeoutMs"`
	CircuitBreakerTripAfterMs int `config:"circuitBreakerTripAfterMs"`
	MaximumConcurrentConnectionRequests int `config:"maximumConcurrentConnectionRequests"`
}

// KeepAliveOptions configures the connection channel's idle PING probe.
type KeepAliveOptions struct {
	FrequencyMs int `config:"frequencyMs"`
}

// RetryOptions configures the exponential backoff schedule used between
// retried command attempts.
type RetryOptions struct {
	ExponentBase float64 `config:"exponentBase"`
	FactorMs int `config:"factorMs"`
	MinWaitTimeMs int `config:"minWaitTimeMs"`
	MaxWaitTimeMs int `config:"maxWaitTimeMs"`
}

// AuthenticationOptions configures inline HELLO authentication. Both
// fields are required to enable authentication.
type AuthenticationOptions struct {
	Username string `config:"username"`
	Password string `config:"password"`
}

// TLSOptions configures the connection factory's SSL context request.
type TLSOptions struct {
	Enabled bool `config:"enabled"`
	ServerName string `config:"serverName"`
}

// Options is the client's full configuration surface, unpacked from a
// confengine.Config exactly as logger.Options is.
type Options struct {
	ConnectionPool PoolOptions `config:"connectionPool"`
	KeepAlive KeepAliveOptions `config:"keepAlive"`
	Retry RetryOptions `config:"retry"`
	Authentication AuthenticationOptions `config:"authentication"`
	CommandTimeoutMs int `config:"commandTimeoutMs"`
	BlockingCommandTimeoutMs int `config:"blockingCommandTimeoutMs"`
	DatabaseNumber int `config:"databaseNumber"`
	ReadOnlyCommandNodeSelection ReadRouting `config:"readOnlyCommandNodeSelection"`
	TLS TLSOptions `config:"tls"`

	// TopologyRefresh controls node.Set's background ROLE poll
	// .
	TopologyRefresh TopologyOptions `config:"topology"`
}

// TopologyOptions configures the node package's background replica
// discovery refresher.
type TopologyOptions struct {
	DiscoverReplicas bool `config:"discoverReplicas"`
	RefreshIntervalMs int `config:"refreshIntervalMs"`
}

// Default returns the baseline configuration, before any overlay from
// a loaded file.
func Default() Options {
	return Options{
		ConnectionPool: PoolOptions{
			MinimumConnectionCount: 0,
			MaximumConnectionSoftLimit: 20,
			MaximumConnectionHardLimit: 20,
			IdleTimeoutMs: 60000,
			CircuitBreakerTripAfterMs: 60000,
			MaximumConcurrentConnectionRequests: 20,
		},
		KeepAlive: KeepAliveOptions{FrequencyMs: 30000},
		Retry: RetryOptions{
			ExponentBase: 2.0,
			FactorMs: 10,
			MinWaitTimeMs: 1280,
			MaxWaitTimeMs: 655360,
		},
		CommandTimeoutMs: 30000,
		BlockingCommandTimeoutMs: 120000,
		DatabaseNumber: 0,
		ReadOnlyCommandNodeSelection: RoutePrimary,
		TopologyRefresh: TopologyOptions{
			DiscoverReplicas: false,
			RefreshIntervalMs: 10000,
		},
	}
}

// Load reads path as YAML and unpacks it onto the defaults.
func Load(path string) (Options, error) {
	opt := Default()
	cfg, err := confengine.LoadConfigPath(path)
	if err != nil {
		return opt, errors.Wrap(err, "confopt: load config")
	}
	if err := cfg.Unpack(&opt); err != nil {
		return opt, errors.Wrap(err, "confopt: unpack config")
	}
	return opt, nil
}

// Validate checks the invariants this package's callers rely on:
// soft <= hard, databaseNumber in 0..15, and that authentication is
// all-or-nothing.
func (o Options) Validate() error {
	if o.ConnectionPool.MaximumConnectionSoftLimit > o.ConnectionPool.MaximumConnectionHardLimit {
		return errors.New("confopt: maximumConnectionSoftLimit must be <= maximumConnectionHardLimit")
	}
	if o.DatabaseNumber < 0 || o.DatabaseNumber > 15 {
		return errors.New("confopt: databaseNumber must be in 0..15")
	}
	if o.Authentication.Username != "" && o.Authentication.Password == "" {
		return errors.New("confopt: authentication.username set without authentication.password")
	}
	if o.Authentication.Password != "" && o.Authentication.Username == "" {
		return errors.New("confopt: authentication.password set without authentication.username")
	}
	switch o.ReadOnlyCommandNodeSelection {
	case RoutePrimary, RouteCycleReplicas, RouteCycleAllNodes, "":
	default:
		return errors.Errorf("confopt: unknown readOnlyCommandNodeSelection %q", o.ReadOnlyCommandNodeSelection)
	}
	return nil
}

// CommandTimeout returns the configured command timeout as a
// time.Duration.
func (o Options) CommandTimeout() time.Duration {
	return time.Duration(o.CommandTimeoutMs) * time.Millisecond
}

// BlockingCommandTimeout returns the configured blocking-command
// timeout as a time.Duration.
func (o Options) BlockingCommandTimeout() time.Duration {
	return time.Duration(o.BlockingCommandTimeoutMs) * time.Millisecond
}

// KeepAliveFrequency returns the configured keep-alive frequency as a
// time.Duration.
func (o Options) KeepAliveFrequency() time.Duration {
	return time.Duration(o.KeepAlive.FrequencyMs) * time.Millisecond
}

// IdleTimeout returns the configured pool idle timeout as a
// time.Duration.
func (o PoolOptions) IdleTimeout() time.Duration {
	return time.Duration(o.IdleTimeoutMs) * time.Millisecond
}

// CircuitBreakerTripAfter returns the configured circuit-breaker
// failure window as a time.Duration.
func (o PoolOptions) CircuitBreakerTripAfter() time.Duration {
	return time.Duration(o.CircuitBreakerTripAfterMs) * time.Millisecond
}
