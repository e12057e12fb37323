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

// Package node tracks a deployment's primary/replica topology and
// resolves which node a command should target, backed by a background
// ROLE-based discovery loop that finds replicas without an operator
// having to list them up front.
//
// The mutex-guarded swap-the-whole-topology pattern is grounded on
// protocol/pool.go's connPool, generalized from a map of live
// connections to a small immutable topology value replaced atomically
// under lock.
package node

import (
	"context"
	"strconv"
	"sync"
	"sync/atomic"
	"time"

	"github.com/pkg/errors"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/confopt"
	"github.com/valkeygo/valkeygo/logger"
	"github.com/valkeygo/valkeygo/pool"
)

// ErrNotInitialized means the topology has no primary yet; the set
// must be initialized with SetPrimary before routing is possible.
var ErrNotInitialized = errors.New("node: topology not initialized")

// PoolFactory dials and pools connections to a single node address.
type PoolFactory func(addr string) *pool.Pool

// topology is the immutable snapshot replaced wholesale on every
// set_primary/add_replicas transition.
type topology struct {
	primaryAddr string
	primary *pool.Pool
	replicaAddr []string
	replicas []*pool.Pool
}

// Set is the node/replica state machine: uninitialized until the first
// SetPrimary, then running, fielding read routing and redirect-driven
// primary changes.
type Set struct {
	newPool PoolFactory
	routing confopt.ReadRouting
	topoOpt confopt.TopologyOptions

	mut sync.RWMutex
	topo *topology

	cycle atomic.Uint64

	stop chan struct{}
	stopOnce sync.Once
}

// New returns an uninitialized Set. Call SetPrimary before routing any
// command.
func New(newPool PoolFactory, routing confopt.ReadRouting, topoOpt confopt.TopologyOptions) *Set {
	return &Set{newPool: newPool, routing: routing, topoOpt: topoOpt, stop: make(chan struct{})}
}

// SetPrimary transitions the set to (or onto a new) primary at addr,
// closing the previous primary's pool if one existed. Replicas are
// cleared; the next topology refresh repopulates them if enabled.
func (s *Set) SetPrimary(addr string) {
	newPrimary := s.newPool(addr)

	s.mut.Lock()
	old := s.topo
	s.topo = &topology{primaryAddr: addr, primary: newPrimary}
	s.mut.Unlock()

	if old != nil {
		old.primary.Close()
		for _, p := range old.replicas {
			p.Close()
		}
	}
}

// AddReplicas replaces the replica set with addrs, diffing against the
// current set so pools for addresses that persist are kept rather than
// redialed.
func (s *Set) AddReplicas(addrs []string) {
	s.mut.Lock()
	if s.topo == nil {
		s.mut.Unlock()
		return
	}
	existing := make(map[string]*pool.Pool, len(s.topo.replicaAddr))
	for i, a := range s.topo.replicaAddr {
		existing[a] = s.topo.replicas[i]
	}

	next := &topology{primaryAddr: s.topo.primaryAddr, primary: s.topo.primary}
	for _, a := range addrs {
		if p, ok := existing[a]; ok {
			next.replicaAddr = append(next.replicaAddr, a)
			next.replicas = append(next.replicas, p)
			delete(existing, a)
			continue
		}
		next.replicaAddr = append(next.replicaAddr, a)
		next.replicas = append(next.replicas, s.newPool(a))
	}
	stale := existing
	s.topo = next
	s.mut.Unlock()

	for _, p := range stale {
		p.Close()
	}
}

// PrimaryAddr returns the current primary address, or "" if
// uninitialized.
func (s *Set) PrimaryAddr() string {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if s.topo == nil {
		return ""
	}
	return s.topo.primaryAddr
}

// ReplicaAddrs returns the current replica address list.
func (s *Set) ReplicaAddrs() []string {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if s.topo == nil {
		return nil
	}
	out := make([]string, len(s.topo.replicaAddr))
	copy(out, s.topo.replicaAddr)
	return out
}

// Primary returns the primary's pool.
func (s *Set) Primary() (*pool.Pool, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if s.topo == nil {
		return nil, ErrNotInitialized
	}
	return s.topo.primary, nil
}

// Route returns the pool a read-only command should be leased from,
// per the configured confopt.ReadRouting policy: RoutePrimary always
// targets the primary; RouteCycleReplicas round-robins the replica
// set, falling back to the primary when there are no replicas;
// RouteCycleAllNodes round-robins the primary and every replica.
func (s *Set) Route() (*pool.Pool, error) {
	s.mut.RLock()
	defer s.mut.RUnlock()
	if s.topo == nil {
		return nil, ErrNotInitialized
	}

	switch s.routing {
	case confopt.RouteCycleReplicas:
		if len(s.topo.replicas) == 0 {
			return s.topo.primary, nil
		}
		i := s.cycle.Add(1) % uint64(len(s.topo.replicas))
		return s.topo.replicas[i], nil

	case confopt.RouteCycleAllNodes:
		all := append([]*pool.Pool{s.topo.primary}, s.topo.replicas...)
		i := s.cycle.Add(1) % uint64(len(all))
		return all[i], nil

	default: // RoutePrimary, or unset
		return s.topo.primary, nil
	}
}

// StartRefresher launches the background ROLE poll: disabled unless
// topoOpt.DiscoverReplicas is set, it periodically queries the
// primary's ROLE and feeds the returned replica list into AddReplicas.
func (s *Set) StartRefresher(ctx context.Context) {
	if !s.topoOpt.DiscoverReplicas {
		return
	}
	interval := time.Duration(s.topoOpt.RefreshIntervalMs) * time.Millisecond
	if interval <= 0 {
		return
	}
	go s.refreshLoop(ctx, interval)
}

func (s *Set) refreshLoop(ctx context.Context, interval time.Duration) {
	ticker := time.NewTicker(interval)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-s.stop:
			return
		case <-ticker.C:
			s.refreshOnce(ctx)
		}
	}
}

func (s *Set) refreshOnce(ctx context.Context) {
	p, err := s.Primary()
	if err != nil {
		return
	}
	conn, err := p.Lease(ctx)
	if err != nil {
		logger.Warnf("node: topology refresh: lease primary: %v", err)
		return
	}
	defer p.Release(conn)

	f, err := conn.Do(ctx, command.Role())
	if err != nil {
		logger.Warnf("node: topology refresh: ROLE: %v", err)
		return
	}
	reply, err := command.DecodeRoleReply(f)
	if err != nil {
		logger.Warnf("node: topology refresh: decode ROLE: %v", err)
		return
	}

	addrs := make([]string, 0, len(reply.Replicas))
	for _, r := range reply.Replicas {
		addrs = append(addrs, formatAddr(r.Host, r.Port))
	}
	s.AddReplicas(addrs)
}

func formatAddr(host string, port int64) string {
	return host + ":" + strconv.FormatInt(port, 10)
}

// Close stops the refresher and closes every pool the topology holds.
func (s *Set) Close() {
	s.stopOnce.Do(func() { close(s.stop) })

	s.mut.Lock()
	topo := s.topo
	s.topo = nil
	s.mut.Unlock()

	if topo == nil {
		return
	}
	topo.primary.Close()
	for _, p := range topo.replicas {
		p.Close()
	}
}
