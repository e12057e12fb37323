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

package command

import "github.com/valkeygo/valkeygo/resp"

// Multi builds a MULTI command, opening a transaction .
func Multi() *MultiCmd { return &MultiCmd{} }

// MultiCmd is the MULTI command; its reply decodes with AsOK.
type MultiCmd struct{}

func (c *MultiCmd) Name() string { return "MULTI" }
func (c *MultiCmd) Keys() []string { return nil }
func (c *MultiCmd) ReadOnly() bool { return false }
func (c *MultiCmd) Blocking() bool { return false }
func (c *MultiCmd) Encode(e *resp.Encoder) { NewBuilder("MULTI").Encode(e) }

// Exec builds an EXEC command, committing a transaction. Its reply is
// an Array of one reply per queued command, or a null Array if a
// watched key was modified .
func Exec() *ExecCmd { return &ExecCmd{} }

// ExecCmd is the EXEC command.
type ExecCmd struct{}

func (c *ExecCmd) Name() string { return "EXEC" }
func (c *ExecCmd) Keys() []string { return nil }
func (c *ExecCmd) ReadOnly() bool { return false }
func (c *ExecCmd) Blocking() bool { return false }
func (c *ExecCmd) Encode(e *resp.Encoder) { NewBuilder("EXEC").Encode(e) }

// Discard builds a DISCARD command, aborting a transaction.
func Discard() *DiscardCmd { return &DiscardCmd{} }

// DiscardCmd is the DISCARD command; its reply decodes with AsOK.
type DiscardCmd struct{}

func (c *DiscardCmd) Name() string { return "DISCARD" }
func (c *DiscardCmd) Keys() []string { return nil }
func (c *DiscardCmd) ReadOnly() bool { return false }
func (c *DiscardCmd) Blocking() bool { return false }
func (c *DiscardCmd) Encode(e *resp.Encoder) { NewBuilder("DISCARD").Encode(e) }

// Watch builds a WATCH command over one or more keys, arming optimistic
// locking for the next transaction.
func Watch(keys ...string) *WatchCmd {
	return &WatchCmd{keys: keys}
}

// WatchCmd is the WATCH command; its reply decodes with AsOK.
type WatchCmd struct {
	keys []string
}

func (c *WatchCmd) Name() string { return "WATCH" }
func (c *WatchCmd) Keys() []string { return c.keys }
func (c *WatchCmd) ReadOnly() bool { return true }
func (c *WatchCmd) Blocking() bool { return false }
func (c *WatchCmd) Encode(e *resp.Encoder) {
	NewBuilder("WATCH").Multiple(c.keys).Encode(e)
}

// Unwatch builds an UNWATCH command, flushing all watched keys.
func Unwatch() *UnwatchCmd { return &UnwatchCmd{} }

// UnwatchCmd is the UNWATCH command; its reply decodes with AsOK.
type UnwatchCmd struct{}

func (c *UnwatchCmd) Name() string { return "UNWATCH" }
func (c *UnwatchCmd) Keys() []string { return nil }
func (c *UnwatchCmd) ReadOnly() bool { return false }
func (c *UnwatchCmd) Blocking() bool { return false }
func (c *UnwatchCmd) Encode(e *resp.Encoder) { NewBuilder("UNWATCH").Encode(e) }

// Role builds a ROLE command, used by the node state machine to
// discover whether a connection targets a primary or a replica
// .
func Role() *RoleCmd { return &RoleCmd{} }

// RoleCmd is the ROLE command.
type RoleCmd struct{}

func (c *RoleCmd) Name() string { return "ROLE" }
func (c *RoleCmd) Keys() []string { return nil }
func (c *RoleCmd) ReadOnly() bool { return true }
func (c *RoleCmd) Blocking() bool { return false }
func (c *RoleCmd) Encode(e *resp.Encoder) { NewBuilder("ROLE").Encode(e) }

// RoleReply is ROLE's decoded reply; only the fields common to both the
// primary and replica reply shapes are surfaced, since the state
// machine only needs the leading role tag plus, for replicas, the
// primary's address.
type RoleReply struct {
	Role string
	PrimaryHost string
	PrimaryPort int64
	ReplicationID string
	ReplOffset int64
	// Replicas is populated for a "master" reply: the set of replicas
	// the primary currently knows about, used for background topology
	// discovery.
	Replicas []RoleReplica
}

// RoleReplica is one element of a master ROLE reply's replica list.
type RoleReplica struct {
	Host string
	Port int64
}

// DecodeRoleReply decodes a ROLE reply's leading elements common to
// both the "master" and "slave" reply shapes, plus the master shape's
// trailing replica list.
func DecodeRoleReply(f *resp.Frame) (*RoleReply, error) {
	if err := AsError(f); err != nil {
		return nil, err
	}
	if f.Type != resp.Array || f.Len() < 1 {
		return nil, unexpectedType(resp.Array, f)
	}
	role, err := AsString(&f.Elements[0])
	if err != nil {
		return nil, err
	}
	reply := &RoleReply{Role: role}
	if role == "slave" && f.Len() >= 3 {
		host, err := AsString(&f.Elements[1])
		if err != nil {
			return nil, err
		}
		port, err := AsInt64(&f.Elements[2])
		if err != nil {
			return nil, err
		}
		reply.PrimaryHost = host
		reply.PrimaryPort = port
	}
	if role == "master" && f.Len() >= 2 {
		offset, err := AsInt64(&f.Elements[1])
		if err == nil {
			reply.ReplOffset = offset
		}
	}
	if role == "master" && f.Len() >= 3 && f.Elements[2].Type == resp.Array {
		for _, entry := range f.Elements[2].Elements {
			if entry.Type != resp.Array || entry.Len() < 2 {
				continue
			}
			host, err := AsString(&entry.Elements[0])
			if err != nil {
				continue
			}
			port, err := AsInt64(&entry.Elements[1])
			if err != nil {
				continue
			}
			reply.Replicas = append(reply.Replicas, RoleReplica{Host: host, Port: port})
		}
	}
	return reply, nil
}

// Asking builds an ASKING command, marking the next command on this
// connection as eligible to be served despite a slot being in
// migrating state .
func Asking() *AskingCmd { return &AskingCmd{} }

// AskingCmd is the ASKING command; its reply decodes with AsOK.
type AskingCmd struct{}

func (c *AskingCmd) Name() string { return "ASKING" }
func (c *AskingCmd) Keys() []string { return nil }
func (c *AskingCmd) ReadOnly() bool { return false }
func (c *AskingCmd) Blocking() bool { return false }
func (c *AskingCmd) Encode(e *resp.Encoder) { NewBuilder("ASKING").Encode(e) }
