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
	"time"

	"github.com/pkg/errors"

	"github.com/valkeygo/valkeygo/internal/pubsub"
	"github.com/valkeygo/valkeygo/metrics"
	"github.com/valkeygo/valkeygo/subscribe"
)

// Subscription delivers push messages for one filter over a Go
// channel, translating the subscribe package's poll-style pubsub.Queue
// into idiomatic blocking receive.
type Subscription struct {
	filter subscribe.Filter
	manager *subscribe.Manager
	queue pubsub.Queue
	messages chan subscribe.Message
	done chan struct{}
}

// Messages returns the channel messages for this subscription arrive
// on. It is closed once Close is called.
func (s *Subscription) Messages() <-chan subscribe.Message {
	return s.messages
}

// Close unsubscribes the filter, issuing the wire-level UNSUBSCRIBE
// only if this was the filter's last subscriber .
func (s *Subscription) Close() error {
	close(s.done)
	return s.manager.Unsubscribe(s.filter, s.queue)
}

func (s *Subscription) pump() {
	defer close(s.messages)
	for {
		select {
		case <-s.done:
			return
		default:
		}
		v, ok := s.queue.PopTimeout(time.Second)
		if !ok {
			continue
		}
		msg, ok := v.(subscribe.Message)
		if !ok {
			continue
		}
		select {
		case s.messages <- msg:
		case <-s.done:
			return
		}
	}
}

func (c *Client) subscribeFilter(ctx context.Context, f subscribe.Filter) (*Subscription, error) {
	cached, err := c.subs.Get(ctx)
	if err != nil {
		return nil, errors.Wrap(err, "client: acquire subscription connection")
	}
	sc, ok := cached.(*subsConn)
	if !ok {
		return nil, errors.New("client: unexpected subscription connection type")
	}

	q, err := sc.manager.Subscribe(f)
	if err != nil {
		c.subs.Invalidate()
		return nil, err
	}
	metrics.SubscriptionFiltersActive.Set(float64(sc.manager.ActiveFilters()))

	sub := &Subscription{
		filter: f,
		manager: sc.manager,
		queue: q,
		messages: make(chan subscribe.Message, 64),
		done: make(chan struct{}),
	}
	go sub.pump()
	return sub, nil
}

// Subscribe opens a Subscription to a single channel name.
func (c *Client) Subscribe(ctx context.Context, channel string) (*Subscription, error) {
	return c.subscribeFilter(ctx, subscribe.Filter{Kind: subscribe.Channel, Name: channel})
}

// PSubscribe opens a Subscription matching a glob pattern.
func (c *Client) PSubscribe(ctx context.Context, pattern string) (*Subscription, error) {
	return c.subscribeFilter(ctx, subscribe.Filter{Kind: subscribe.Pattern, Name: pattern})
}

// SSubscribe opens a Subscription to a shard channel (cluster pub/sub).
func (c *Client) SSubscribe(ctx context.Context, channel string) (*Subscription, error) {
	return c.subscribeFilter(ctx, subscribe.Filter{Kind: subscribe.ShardChannel, Name: channel})
}
