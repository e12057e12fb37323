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

// Hello builds the HELLO command the connection handshake opens with
// : protover pins RESP3, username/password authenticate
// inline, and clientName sets the initial connection name.
func Hello(protover int, username, password, clientName string) *HelloCmd {
	return &HelloCmd{protover: protover, username: username, password: password, clientName: clientName}
}

// HelloCmd is the HELLO command; its reply decodes with AsStringMap.
type HelloCmd struct {
	protover int
	username, password, clientName string
}

func (c *HelloCmd) Name() string { return "HELLO" }
func (c *HelloCmd) Keys() []string { return nil }
func (c *HelloCmd) ReadOnly() bool { return true }
func (c *HelloCmd) Blocking() bool { return false }
func (c *HelloCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("HELLO").Int(int64(c.protover))
	if c.password != "" {
		if c.username != "" {
			b.Block("AUTH", c.username, c.password)
		} else {
			b.Block("AUTH", "default", c.password)
		}
	}
	if c.clientName != "" {
		b.Block("SETNAME", c.clientName)
	}
	b.Encode(e)
}

// Auth builds an AUTH command, used when authentication must be
// performed outside of HELLO (e.g. re-auth mid-connection).
func Auth(username, password string) *AuthCmd {
	return &AuthCmd{username: username, password: password}
}

// AuthCmd is the AUTH command; its reply decodes with AsOK.
type AuthCmd struct {
	username, password string
}

func (c *AuthCmd) Name() string { return "AUTH" }
func (c *AuthCmd) Keys() []string { return nil }
func (c *AuthCmd) ReadOnly() bool { return true }
func (c *AuthCmd) Blocking() bool { return false }
func (c *AuthCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("AUTH")
	if c.username != "" {
		b.Arg(c.username)
	}
	b.Arg(c.password).Encode(e)
}

// ClientSetInfo builds a CLIENT SETINFO command, used to report
// library name/version metadata during the handshake .
func ClientSetInfo(attr, value string) *ClientSetInfoCmd {
	return &ClientSetInfoCmd{attr: attr, value: value}
}

// ClientSetInfoCmd is the CLIENT SETINFO command; its reply decodes
// with AsOK.
type ClientSetInfoCmd struct {
	attr, value string
}

func (c *ClientSetInfoCmd) Name() string { return "CLIENT SETINFO" }
func (c *ClientSetInfoCmd) Keys() []string { return nil }
func (c *ClientSetInfoCmd) ReadOnly() bool { return true }
func (c *ClientSetInfoCmd) Blocking() bool { return false }
func (c *ClientSetInfoCmd) Encode(e *resp.Encoder) {
	NewBuilder("CLIENT", "SETINFO").Arg(c.attr).Arg(c.value).Encode(e)
}

// ClientSetName builds a CLIENT SETNAME command.
func ClientSetName(name string) *ClientSetNameCmd {
	return &ClientSetNameCmd{name: name}
}

// ClientSetNameCmd is the CLIENT SETNAME command; its reply decodes
// with AsOK.
type ClientSetNameCmd struct {
	name string
}

func (c *ClientSetNameCmd) Name() string { return "CLIENT SETNAME" }
func (c *ClientSetNameCmd) Keys() []string { return nil }
func (c *ClientSetNameCmd) ReadOnly() bool { return true }
func (c *ClientSetNameCmd) Blocking() bool { return false }
func (c *ClientSetNameCmd) Encode(e *resp.Encoder) {
	NewBuilder("CLIENT", "SETNAME").Arg(c.name).Encode(e)
}

// Select builds a SELECT command for choosing a logical database index.
func Select(index int) *SelectCmd {
	return &SelectCmd{index: index}
}

// SelectCmd is the SELECT command; its reply decodes with AsOK.
type SelectCmd struct {
	index int
}

func (c *SelectCmd) Name() string { return "SELECT" }
func (c *SelectCmd) Keys() []string { return nil }
func (c *SelectCmd) ReadOnly() bool { return true }
func (c *SelectCmd) Blocking() bool { return false }
func (c *SelectCmd) Encode(e *resp.Encoder) {
	NewBuilder("SELECT").Int(int64(c.index)).Encode(e)
}

// Ping builds a PING command, used both as an explicit liveness probe
// and as the connection channel's idle keep-alive .
func Ping(message string) *PingCmd {
	return &PingCmd{message: message}
}

// PingCmd is the PING command; its reply decodes with AsString.
type PingCmd struct {
	message string
}

func (c *PingCmd) Name() string { return "PING" }
func (c *PingCmd) Keys() []string { return nil }
func (c *PingCmd) ReadOnly() bool { return true }
func (c *PingCmd) Blocking() bool { return false }
func (c *PingCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("PING")
	if c.message != "" {
		b.Arg(c.message)
	}
	b.Encode(e)
}
