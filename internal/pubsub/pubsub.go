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

// Package pubsub provides a small fan-out primitive: any number of
// independent subscriber queues, each fed by Publish. The subscribe
// package builds the RESP pub/sub filter table on top of this.
package pubsub

import (
	"context"
	"sync"
	"sync/atomic"
	"time"

	"github.com/google/uuid"
)

// Queue is one subscriber's inbox.
type Queue interface {
	// ID uniquely identifies the queue.
	ID() string

	// PopTimeout blocks for up to timeout for the next pushed value.
	PopTimeout(timeout time.Duration) (any, bool)

	// Push enqueues a value; it never blocks, dropping the value if the
	// queue is full or already closed.
	Push(data any)

	// Close releases the queue. Further Push calls are no-ops.
	Close()
}

type channel struct {
	id string
	ch chan any
	closed atomic.Bool
}

func newChannel(size int) Queue {
	if size <= 0 {
		size = 1
	}
	return &channel{id: uuid.New().String(), ch: make(chan any, size)}
}

func (ch *channel) ID() string {
	return ch.id
}

func (ch *channel) PopTimeout(timeout time.Duration) (any, bool) {
	if ch.closed.Load() {
		return nil, false
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	select {
	case data, ok := <-ch.ch:
		return data, ok
	case <-ctx.Done():
		return nil, false
	}
}

func (ch *channel) Push(data any) {
	if ch.closed.Load() {
		return
	}
	select {
	case ch.ch <- data:
	default:
	}
}

func (ch *channel) Close() {
	if ch.closed.CompareAndSwap(false, true) {
		close(ch.ch)
	}
}

// Bus is a registry of subscriber queues. Publish fans a value out to
// every currently subscribed queue.
type Bus struct {
	mut sync.RWMutex
	queues map[string]Queue
}

// New returns an empty Bus.
func New() *Bus {
	return &Bus{queues: make(map[string]Queue)}
}

// Num returns the number of currently subscribed queues.
func (p *Bus) Num() int {
	p.mut.RLock()
	defer p.mut.RUnlock()
	return len(p.queues)
}

// Subscribe registers and returns a new queue with the given buffer
// size.
func (p *Bus) Subscribe(size int) Queue {
	p.mut.Lock()
	defer p.mut.Unlock()

	ch := newChannel(size)
	p.queues[ch.ID()] = ch
	return ch
}

// Publish pushes msg to every subscribed queue.
func (p *Bus) Publish(msg any) {
	p.mut.RLock()
	defer p.mut.RUnlock()

	for _, q := range p.queues {
		q.Push(msg)
	}
}

// Unsubscribe removes and closes q.
func (p *Bus) Unsubscribe(q Queue) {
	p.mut.Lock()
	delete(p.queues, q.ID())
	p.mut.Unlock()
	q.Close()
}
