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

// Package command defines the typed command / response-decoding model
// used throughout the client. Hand-written commands in this package
// double as the golden output of the cmd/valkeygen generator: every
// family below binds to exactly the Encode/decode contracts a generated
// stub must also satisfy.
package command

import (
	"strconv"

	"github.com/valkeygo/valkeygo/resp"
)

// Command is a value that knows how to encode itself as a RESP array of
// bulk strings and exposes the routing metadata the connection/node
// layers need: the keys it touches, whether it may be served by a
// replica, and whether it can block indefinitely on the server.
type Command interface {
	// Name is the command's literal name, e.g. "GET" or "CLIENT SETNAME".
	Name() string
	// Keys returns the keys this command reads or writes, for routing.
	Keys() []string
	// ReadOnly reports whether the command may be served by a replica.
	ReadOnly() bool
	// Blocking reports whether the command may block server-side
	// (e.g. BLPOP), which selects blockingCommandTimeout over
	// commandTimeout .
	Blocking() bool
	// Encode writes the command's wire form to e.
	Encode(e *resp.Encoder)
}

// Builder assembles a command's argument list: the command (and
// optional sub-command) literal comes
// first, then declared arguments in order, with tokens, blocks, one-of
// variants, and multiple-valued arguments each following their own
// expansion rule.
type Builder struct {
	args []string
}

// NewBuilder starts a command, writing name and an optional sub-command
// literal (for commands whose name contains a space, e.g. "CLIENT
// SETNAME") as the array's first elements.
func NewBuilder(name string, sub ...string) *Builder {
	b := &Builder{args: make([]string, 0, 4+len(sub))}
	b.args = append(b.args, name)
	b.args = append(b.args, sub...)
	return b
}

// Arg appends a single positional argument.
func (b *Builder) Arg(s string) *Builder {
	b.args = append(b.args, s)
	return b
}

// Token appends flag only if present is true ("pure-token" argument).
func (b *Builder) Token(flag string, present bool) *Builder {
	if present {
		b.args = append(b.args, flag)
	}
	return b
}

// TokenArg appends flag immediately followed by value, only if present
// is true (value is appended as given, even when empty); this is the "named flag immediately preceding the
// argument" form optional tokened arguments take.
func (b *Builder) TokenArg(flag, value string, present bool) *Builder {
	if present {
		b.args = append(b.args, flag, value)
	}
	return b
}

// Int appends an integer argument rendered in base 10.
func (b *Builder) Int(n int64) *Builder {
	b.args = append(b.args, strconv.FormatInt(n, 10))
	return b
}

// Double appends a floating-point argument.
func (b *Builder) Double(f float64) *Builder {
	b.args = append(b.args, strconv.FormatFloat(f, 'g', -1, 64))
	return b
}

// Block appends the concatenation of a sub-argument's own rendered
// tokens, e.g. "LIMIT offset count".
func (b *Builder) Block(parts ...string) *Builder {
	b.args = append(b.args, parts...)
	return b
}

// Multiple expands a multiple-valued argument into its elements in
// order.
func (b *Builder) Multiple(items []string) *Builder {
	b.args = append(b.args, items...)
	return b
}

// MultipleWithCount is Multiple but precedes the elements with a count,
// for commands whose grammar combines the multiplicity with an explicit
// count element (e.g. LPOS ... COUNT n, or SINTERCARD numkeys key...).
func (b *Builder) MultipleWithCount(items []string) *Builder {
	b.args = append(b.args, strconv.Itoa(len(items)))
	b.args = append(b.args, items...)
	return b
}

// OneOf appends exactly one of a one-of argument's rendered variants.
// Callers select the variant before calling OneOf; it exists purely to
// document intent at call sites.
func (b *Builder) OneOf(variant ...string) *Builder {
	return b.Block(variant...)
}

// Encode writes the accumulated arguments as a RESP array of bulk
// strings.
func (b *Builder) Encode(e *resp.Encoder) {
	e.Command(b.args...)
}

// Args exposes the raw argument list, e.g. for tests or logging; it must
// not be mutated.
func (b *Builder) Args() []string {
	return b.args
}
