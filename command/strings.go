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

import (
	"strconv"
	"time"

	"github.com/valkeygo/valkeygo/resp"
)

// Get builds a GET command.
func Get(key string) *GetCmd {
	return &GetCmd{key: key}
}

// GetCmd is the GET command; its reply decodes with DecodeOptionalString.
type GetCmd struct {
	key string
}

func (c *GetCmd) Name() string { return "GET" }
func (c *GetCmd) Keys() []string { return []string{c.key} }
func (c *GetCmd) ReadOnly() bool { return true }
func (c *GetCmd) Blocking() bool { return false }
func (c *GetCmd) Encode(e *resp.Encoder) {
	NewBuilder("GET").Arg(c.key).Encode(e)
}

// DecodeOptionalString decodes GetCmd's reply.
func (c *GetCmd) DecodeOptionalString(f *resp.Frame) (string, bool, error) {
	return AsOptionalString(f)
}

// SetOptions carries SET's optional tokens .
type SetOptions struct {
	EX time.Duration
	PX time.Duration
	EXAT time.Time
	PXAT time.Time
	KeepTTL bool
	NX bool
	XX bool
	Get bool
}

// Set builds a SET command.
func Set(key, value string, opts SetOptions) *SetCmd {
	return &SetCmd{key: key, value: value, opts: opts}
}

// SetCmd is the SET command.
type SetCmd struct {
	key, value string
	opts SetOptions
}

func (c *SetCmd) Name() string { return "SET" }
func (c *SetCmd) Keys() []string { return []string{c.key} }
func (c *SetCmd) ReadOnly() bool { return false }
func (c *SetCmd) Blocking() bool { return false }

func (c *SetCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("SET").Arg(c.key).Arg(c.value)
	switch {
	case c.opts.EX > 0:
		b.TokenArg("EX", strconv.FormatInt(int64(c.opts.EX/time.Second), 10), true)
	case c.opts.PX > 0:
		b.TokenArg("PX", strconv.FormatInt(int64(c.opts.PX/time.Millisecond), 10), true)
	case !c.opts.EXAT.IsZero():
		b.TokenArg("EXAT", strconv.FormatInt(c.opts.EXAT.Unix(), 10), true)
	case !c.opts.PXAT.IsZero():
		b.TokenArg("PXAT", strconv.FormatInt(c.opts.PXAT.UnixMilli(), 10), true)
	case c.opts.KeepTTL:
		b.Token("KEEPTTL", true)
	}
	b.Token("NX", c.opts.NX)
	b.Token("XX", c.opts.XX)
	b.Token("GET", c.opts.Get)
	b.Encode(e)
}

// Incr builds an INCR command.
func Incr(key string) *IncrCmd {
	return &IncrCmd{key: key}
}

// IncrCmd is the INCR command; its reply decodes with AsInt64.
type IncrCmd struct {
	key string
}

func (c *IncrCmd) Name() string { return "INCR" }
func (c *IncrCmd) Keys() []string { return []string{c.key} }
func (c *IncrCmd) ReadOnly() bool { return false }
func (c *IncrCmd) Blocking() bool { return false }
func (c *IncrCmd) Encode(e *resp.Encoder) {
	NewBuilder("INCR").Arg(c.key).Encode(e)
}

// MGet builds an MGET command over one or more keys.
func MGet(keys ...string) *MGetCmd {
	return &MGetCmd{keys: keys}
}

// MGetCmd is the MGET command; its reply decodes with AsStringSlice.
type MGetCmd struct {
	keys []string
}

func (c *MGetCmd) Name() string { return "MGET" }
func (c *MGetCmd) Keys() []string { return c.keys }
func (c *MGetCmd) ReadOnly() bool { return true }
func (c *MGetCmd) Blocking() bool { return false }
func (c *MGetCmd) Encode(e *resp.Encoder) {
	NewBuilder("MGET").Multiple(c.keys).Encode(e)
}

// Del builds a DEL command over one or more keys; its reply decodes
// with AsInt64.
func Del(keys ...string) *DelCmd {
	return &DelCmd{keys: keys}
}

// DelCmd is the DEL command.
type DelCmd struct {
	keys []string
}

func (c *DelCmd) Name() string { return "DEL" }
func (c *DelCmd) Keys() []string { return c.keys }
func (c *DelCmd) ReadOnly() bool { return false }
func (c *DelCmd) Blocking() bool { return false }
func (c *DelCmd) Encode(e *resp.Encoder) {
	NewBuilder("DEL").Multiple(c.keys).Encode(e)
}
