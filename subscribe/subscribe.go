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

// Package subscribe implements the per-connection pub/sub filter table
// , built directly on internal/pubsub's fan-out queue:
// each filter owns one pubsub.Bus and refcounts its sinks, issuing
// SUBSCRIBE/UNSUBSCRIBE only on 0→1/1→0 transitions.
package subscribe

import (
	"sync"

	"github.com/valkeygo/valkeygo/internal/pubsub"
)

// Kind distinguishes the three pub/sub filter shapes.
type Kind int

const (
	Channel Kind = iota
	Pattern
	ShardChannel
)

// Filter identifies one subscription target.
type Filter struct {
	Kind Kind
	Name string
}

// Message is a routed push payload delivered to a sink.
type Message struct {
	Filter Filter
	Channel string // the concrete channel a pattern matched, or Name itself
	Payload string
}

// Sender issues the wire-level (un)subscribe commands for a filter.
// The connection package implements this by encoding and writing the
// corresponding command on its socket.
type Sender interface {
	SendSubscribe(f Filter) error
	SendUnsubscribe(f Filter) error
}

type entry struct {
	refcount int
	bus *pubsub.Bus
}

// Manager is the per-connection subscription filter table.
type Manager struct {
	sender Sender

	mut sync.Mutex
	filters map[Filter]*entry
}

// NewManager returns an empty Manager that issues (un)subscribe
// commands through sender.
func NewManager(sender Sender) *Manager {
	return &Manager{sender: sender, filters: make(map[Filter]*entry)}
}

// Subscribe opens a sink for f, issuing the wire-level subscribe only
// if f's refcount transitions from 0 to 1. The returned pubsub.Queue is
// the caller's sink; it must be released via Unsubscribe.
func (m *Manager) Subscribe(f Filter) (pubsub.Queue, error) {
	m.mut.Lock()
	e, ok := m.filters[f]
	if !ok {
		e = &entry{bus: pubsub.New()}
		m.filters[f] = e
	}
	e.refcount++
	firstSubscriber := e.refcount == 1
	q := e.bus.Subscribe(64)
	m.mut.Unlock()

	if firstSubscriber {
		if err := m.sender.SendSubscribe(f); err != nil {
			m.mut.Lock()
			e.refcount--
			e.bus.Unsubscribe(q)
			if e.refcount == 0 {
				delete(m.filters, f)
			}
			m.mut.Unlock()
			return nil, err
		}
	}
	return q, nil
}

// Unsubscribe releases q's subscription to f, issuing the wire-level
// unsubscribe only when f's refcount transitions to 0.
func (m *Manager) Unsubscribe(f Filter, q pubsub.Queue) error {
	m.mut.Lock()
	e, ok := m.filters[f]
	if !ok {
		m.mut.Unlock()
		return nil
	}
	e.bus.Unsubscribe(q)
	e.refcount--
	lastSubscriber := e.refcount <= 0
	if lastSubscriber {
		delete(m.filters, f)
	}
	m.mut.Unlock()

	if lastSubscriber {
		return m.sender.SendUnsubscribe(f)
	}
	return nil
}

// Refcount returns f's current subscriber count, for tests and the
// "subscription refcount" invariant .
func (m *Manager) Refcount(f Filter) int {
	m.mut.Lock()
	defer m.mut.Unlock()
	if e, ok := m.filters[f]; ok {
		return e.refcount
	}
	return 0
}

// Dispatch routes an incoming push payload to every sink subscribed to
// f. It is called from the connection's read loop for each push frame,
// matching patterns against channel names beforehand.
func (m *Manager) Dispatch(f Filter, msg Message) {
	m.mut.Lock()
	e, ok := m.filters[f]
	m.mut.Unlock()
	if !ok {
		return
	}
	e.bus.Publish(msg)
}

// ActiveFilters returns the number of filters with a non-zero
// refcount, for metrics.SubscriptionFiltersActive.
func (m *Manager) ActiveFilters() int {
	m.mut.Lock()
	defer m.mut.Unlock()
	return len(m.filters)
}
