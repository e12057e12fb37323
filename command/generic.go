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

// Raw builds an ad hoc command from a literal name and argument list,
// for callers (e.g. cmd/valkeycli) that need to issue a command this
// package has no typed binding for yet. It is conservatively routed:
// never read-only, never blocking, and it reports no keys, so the
// caller is responsible for routing it explicitly if cluster-aware
// routing matters.
func Raw(name string, args ...string) *RawCmd {
	return &RawCmd{name: name, args: args}
}

// RawCmd is an untyped command; its reply is whatever frame shape the
// server returns, left to the caller to decode.
type RawCmd struct {
	name string
	args []string
}

func (c *RawCmd) Name() string { return c.name }
func (c *RawCmd) Keys() []string { return nil }
func (c *RawCmd) ReadOnly() bool { return false }
func (c *RawCmd) Blocking() bool { return false }
func (c *RawCmd) Encode(e *resp.Encoder) {
	NewBuilder(c.name).Multiple(c.args).Encode(e)
}
