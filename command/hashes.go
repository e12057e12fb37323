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

// HSet builds an HSET command from a flat field/value list; its reply
// decodes with AsInt64.
func HSet(key string, fieldValues ...string) *HSetCmd {
	return &HSetCmd{key: key, fieldValues: fieldValues}
}

// HSetCmd is the HSET command.
type HSetCmd struct {
	key string
	fieldValues []string
}

func (c *HSetCmd) Name() string { return "HSET" }
func (c *HSetCmd) Keys() []string { return []string{c.key} }
func (c *HSetCmd) ReadOnly() bool { return false }
func (c *HSetCmd) Blocking() bool { return false }
func (c *HSetCmd) Encode(e *resp.Encoder) {
	NewBuilder("HSET").Arg(c.key).Multiple(c.fieldValues).Encode(e)
}

// HGet builds an HGET command; its reply decodes with
// AsOptionalString.
func HGet(key, field string) *HGetCmd {
	return &HGetCmd{key: key, field: field}
}

// HGetCmd is the HGET command.
type HGetCmd struct {
	key, field string
}

func (c *HGetCmd) Name() string { return "HGET" }
func (c *HGetCmd) Keys() []string { return []string{c.key} }
func (c *HGetCmd) ReadOnly() bool { return true }
func (c *HGetCmd) Blocking() bool { return false }
func (c *HGetCmd) Encode(e *resp.Encoder) {
	NewBuilder("HGET").Arg(c.key).Arg(c.field).Encode(e)
}

// HGetAll builds an HGETALL command; its reply decodes with
// AsStringMap (a RESP3 Map, or a flat RESP2 array fallback).
func HGetAll(key string) *HGetAllCmd {
	return &HGetAllCmd{key: key}
}

// HGetAllCmd is the HGETALL command.
type HGetAllCmd struct {
	key string
}

func (c *HGetAllCmd) Name() string { return "HGETALL" }
func (c *HGetAllCmd) Keys() []string { return []string{c.key} }
func (c *HGetAllCmd) ReadOnly() bool { return true }
func (c *HGetAllCmd) Blocking() bool { return false }
func (c *HGetAllCmd) Encode(e *resp.Encoder) {
	NewBuilder("HGETALL").Arg(c.key).Encode(e)
}

// HDel builds an HDEL command over one or more fields; its reply
// decodes with AsInt64.
func HDel(key string, fields ...string) *HDelCmd {
	return &HDelCmd{key: key, fields: fields}
}

// HDelCmd is the HDEL command.
type HDelCmd struct {
	key string
	fields []string
}

func (c *HDelCmd) Name() string { return "HDEL" }
func (c *HDelCmd) Keys() []string { return []string{c.key} }
func (c *HDelCmd) ReadOnly() bool { return false }
func (c *HDelCmd) Blocking() bool { return false }
func (c *HDelCmd) Encode(e *resp.Encoder) {
	NewBuilder("HDEL").Arg(c.key).Multiple(c.fields).Encode(e)
}
