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

// Package ssl provides a lazy, shared, once-init SSL context cache:
// the first caller to request a context produces it, concurrent
// callers park on the same production, and the result (or failure) is
// shared with everyone waiting.
package ssl

import (
	"crypto/tls"
	"sync"

	"github.com/pkg/errors"
)

type state int

const (
	stateUninitialized state = iota
	stateProducing
	stateReady
	stateFailed
)

// Producer builds a *tls.Config for a given server name. It is called
// once per distinct server name, and again after Invalidate drops that
// name's cached entry.
type Producer func(serverName string) (*tls.Config, error)

// Provider caches TLS configs by server name: Get is idempotent per
// server name and coalesces concurrent callers.
type Provider struct {
	produce Producer

	mut sync.Mutex
	entries map[string]*entry
}

type entry struct {
	state state
	cfg *tls.Config
	err error
	ready chan struct{}
}

// NewProvider returns a Provider backed by produce.
func NewProvider(produce Producer) *Provider {
	return &Provider{produce: produce, entries: make(map[string]*entry)}
}

// Get returns the shared *tls.Config for serverName, producing it on
// the first call and replaying the same result (or error) to every
// subsequent or concurrent caller.
func (p *Provider) Get(serverName string) (*tls.Config, error) {
	p.mut.Lock()
	e, ok := p.entries[serverName]
	if ok && e.state == stateReady {
		p.mut.Unlock()
		return e.cfg, nil
	}
	if ok && e.state == stateFailed {
		p.mut.Unlock()
		return nil, e.err
	}
	if ok && e.state == stateProducing {
		ready := e.ready
		p.mut.Unlock()
		<-ready
		return p.Get(serverName)
	}

	e = &entry{state: stateProducing, ready: make(chan struct{})}
	p.entries[serverName] = e
	p.mut.Unlock()

	cfg, err := p.produce(serverName)

	p.mut.Lock()
	if err != nil {
		e.state = stateFailed
		e.err = errors.Wrapf(err, "ssl: produce context for %q", serverName)
	} else {
		e.state = stateReady
		e.cfg = cfg
	}
	close(e.ready)
	p.mut.Unlock()

	if err != nil {
		return nil, e.err
	}
	return cfg, nil
}

// Invalidate discards the cached context for serverName, e.g. after a
// connection reports a TLS handshake failure, so the next Get
// reproduces it.
func (p *Provider) Invalidate(serverName string) {
	p.mut.Lock()
	defer p.mut.Unlock()
	delete(p.entries, serverName)
}

// Default returns a Producer that builds a minimal verifying
// *tls.Config for serverName, used when the caller supplies no custom
// Producer.
func Default() Producer {
	return func(serverName string) (*tls.Config, error) {
		return &tls.Config{ServerName: serverName, MinVersion: tls.VersionTLS12}, nil
	}
}
