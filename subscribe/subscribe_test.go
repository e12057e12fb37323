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
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

type recordingSender struct {
	subscribes atomic.Int32
	unsubscribes atomic.Int32
}

func (s *recordingSender) SendSubscribe(f Filter) error {
	s.subscribes.Add(1)
	return nil
}

func (s *recordingSender) SendUnsubscribe(f Filter) error {
	s.unsubscribes.Add(1)
	return nil
}

func TestSubscribeIssuesWireCommandOnlyOnFirstSubscriber(t *testing.T) {
	sender := &recordingSender{}
	m := NewManager(sender)
	f := Filter{Kind: Channel, Name: "c1"}

	q1, err := m.Subscribe(f)
	require.NoError(t, err)
	q2, err := m.Subscribe(f)
	require.NoError(t, err)

	assert.Equal(t, int32(1), sender.subscribes.Load())
	assert.Equal(t, 2, m.Refcount(f))

	require.NoError(t, m.Unsubscribe(f, q1))
	assert.Equal(t, int32(0), sender.unsubscribes.Load())

	require.NoError(t, m.Unsubscribe(f, q2))
	assert.Equal(t, int32(1), sender.unsubscribes.Load())
	assert.Equal(t, 0, m.Refcount(f))
}

func TestDispatchFansOutToAllSinks(t *testing.T) {
	sender := &recordingSender{}
	m := NewManager(sender)
	f := Filter{Kind: Channel, Name: "c1"}

	q1, err := m.Subscribe(f)
	require.NoError(t, err)
	q2, err := m.Subscribe(f)
	require.NoError(t, err)

	m.Dispatch(f, Message{Filter: f, Channel: "c1", Payload: "hello"})

	v1, ok := q1.PopTimeout(time.Second)
	require.True(t, ok)
	assert.Equal(t, "hello", v1.(Message).Payload)

	v2, ok := q2.PopTimeout(time.Second)
	require.True(t, ok)
	assert.Equal(t, "hello", v2.(Message).Payload)
}

func TestDispatchToUnknownFilterIsNoop(t *testing.T) {
	sender := &recordingSender{}
	m := NewManager(sender)
	assert.NotPanics(t, func() {
		m.Dispatch(Filter{Kind: Pattern, Name: "news.*"}, Message{Payload: "x"})
	})
}
