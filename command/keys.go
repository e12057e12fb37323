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

	"github.com/valkeygo/valkeygo/resp"
)

// Exists builds an EXISTS command over one or more keys; its reply
// decodes with AsInt64.
func Exists(keys ...string) *ExistsCmd {
	return &ExistsCmd{keys: keys}
}

// ExistsCmd is the EXISTS command.
type ExistsCmd struct {
	keys []string
}

func (c *ExistsCmd) Name() string { return "EXISTS" }
func (c *ExistsCmd) Keys() []string { return c.keys }
func (c *ExistsCmd) ReadOnly() bool { return true }
func (c *ExistsCmd) Blocking() bool { return false }
func (c *ExistsCmd) Encode(e *resp.Encoder) {
	NewBuilder("EXISTS").Multiple(c.keys).Encode(e)
}

// Expire builds an EXPIRE command with optional NX/XX/GT/LT conditions.
func Expire(key string, seconds int64, condition string) *ExpireCmd {
	return &ExpireCmd{key: key, seconds: seconds, condition: condition}
}

// ExpireCmd is the EXPIRE command; its reply decodes with AsBool.
type ExpireCmd struct {
	key string
	seconds int64
	condition string // "", "NX", "XX", "GT", "LT"
}

func (c *ExpireCmd) Name() string { return "EXPIRE" }
func (c *ExpireCmd) Keys() []string { return []string{c.key} }
func (c *ExpireCmd) ReadOnly() bool { return false }
func (c *ExpireCmd) Blocking() bool { return false }
func (c *ExpireCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("EXPIRE").Arg(c.key).Int(c.seconds)
	if c.condition != "" {
		b.Arg(c.condition)
	}
	b.Encode(e)
}

// TTL builds a TTL command; its reply decodes with AsInt64 (-1 means no
// expiry, -2 means the key does not exist).
func TTL(key string) *TTLCmd {
	return &TTLCmd{key: key}
}

// TTLCmd is the TTL command.
type TTLCmd struct {
	key string
}

func (c *TTLCmd) Name() string { return "TTL" }
func (c *TTLCmd) Keys() []string { return []string{c.key} }
func (c *TTLCmd) ReadOnly() bool { return true }
func (c *TTLCmd) Blocking() bool { return false }
func (c *TTLCmd) Encode(e *resp.Encoder) {
	NewBuilder("TTL").Arg(c.key).Encode(e)
}

// ScanCursor is the opaque cursor SCAN-family commands thread through
// successive calls; "0" both starts and ends an iteration.
type ScanCursor = string

// ScanOptions carries SCAN's optional MATCH/COUNT/TYPE tokens.
type ScanOptions struct {
	Match string
	Count int64
	Type string
}

// Scan builds a SCAN command.
func Scan(cursor ScanCursor, opts ScanOptions) *ScanCmd {
	return &ScanCmd{cursor: cursor, opts: opts}
}

// ScanCmd is the SCAN command; decode its reply with DecodeScanReply.
type ScanCmd struct {
	cursor string
	opts ScanOptions
}

func (c *ScanCmd) Name() string { return "SCAN" }
func (c *ScanCmd) Keys() []string { return nil }
func (c *ScanCmd) ReadOnly() bool { return true }
func (c *ScanCmd) Blocking() bool { return false }
func (c *ScanCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("SCAN").Arg(c.cursor)
	if c.opts.Match != "" {
		b.TokenArg("MATCH", c.opts.Match, true)
	}
	if c.opts.Count > 0 {
		b.TokenArg("COUNT", strconv.FormatInt(c.opts.Count, 10), true)
	}
	if c.opts.Type != "" {
		b.TokenArg("TYPE", c.opts.Type, true)
	}
	b.Encode(e)
}

// ScanReply is SCAN's decoded [cursor, keys] reply.
type ScanReply struct {
	Cursor ScanCursor
	Keys []string
}

// DecodeScanReply decodes a SCAN-family 2-tuple reply.
func DecodeScanReply(f *resp.Frame) (*ScanReply, error) {
	cursorFrame, itemsFrame, err := AsTuple2(f)
	if err != nil {
		return nil, err
	}
	cursor, err := AsString(cursorFrame)
	if err != nil {
		return nil, err
	}
	items, err := AsStringSlice(itemsFrame)
	if err != nil {
		return nil, err
	}
	return &ScanReply{Cursor: cursor, Keys: items}, nil
}
