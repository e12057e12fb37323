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

// LPush builds an LPUSH command; its reply decodes with AsInt64.
func LPush(key string, values ...string) *LPushCmd {
	return &LPushCmd{key: key, values: values}
}

// LPushCmd is the LPUSH command.
type LPushCmd struct {
	key string
	values []string
}

func (c *LPushCmd) Name() string { return "LPUSH" }
func (c *LPushCmd) Keys() []string { return []string{c.key} }
func (c *LPushCmd) ReadOnly() bool { return false }
func (c *LPushCmd) Blocking() bool { return false }
func (c *LPushCmd) Encode(e *resp.Encoder) {
	NewBuilder("LPUSH").Arg(c.key).Multiple(c.values).Encode(e)
}

// RPush builds an RPUSH command; its reply decodes with AsInt64.
func RPush(key string, values ...string) *RPushCmd {
	return &RPushCmd{key: key, values: values}
}

// RPushCmd is the RPUSH command.
type RPushCmd struct {
	key string
	values []string
}

func (c *RPushCmd) Name() string { return "RPUSH" }
func (c *RPushCmd) Keys() []string { return []string{c.key} }
func (c *RPushCmd) ReadOnly() bool { return false }
func (c *RPushCmd) Blocking() bool { return false }
func (c *RPushCmd) Encode(e *resp.Encoder) {
	NewBuilder("RPUSH").Arg(c.key).Multiple(c.values).Encode(e)
}

// LRange builds an LRANGE command; its reply decodes with
// AsStringSlice.
func LRange(key string, start, stop int64) *LRangeCmd {
	return &LRangeCmd{key: key, start: start, stop: stop}
}

// LRangeCmd is the LRANGE command.
type LRangeCmd struct {
	key string
	start, stop int64
}

func (c *LRangeCmd) Name() string { return "LRANGE" }
func (c *LRangeCmd) Keys() []string { return []string{c.key} }
func (c *LRangeCmd) ReadOnly() bool { return true }
func (c *LRangeCmd) Blocking() bool { return false }
func (c *LRangeCmd) Encode(e *resp.Encoder) {
	NewBuilder("LRANGE").Arg(c.key).Int(c.start).Int(c.stop).Encode(e)
}

// BLPop builds a BLPOP command: the canonical blocking command,
// selecting blockingCommandTimeout instead of commandTimeout on the
// connection channel.
func BLPop(timeout float64, keys ...string) *BLPopCmd {
	return &BLPopCmd{timeout: timeout, keys: keys}
}

// BLPopCmd is the BLPOP command. Its reply is a null Array on timeout,
// or a 2-tuple [key, value] otherwise; decode with DecodeBLPopReply.
type BLPopCmd struct {
	timeout float64
	keys []string
}

func (c *BLPopCmd) Name() string { return "BLPOP" }
func (c *BLPopCmd) Keys() []string { return c.keys }
func (c *BLPopCmd) ReadOnly() bool { return false }
func (c *BLPopCmd) Blocking() bool { return true }
func (c *BLPopCmd) Encode(e *resp.Encoder) {
	NewBuilder("BLPOP").Multiple(c.keys).Arg(strconv.FormatFloat(c.timeout, 'f', -1, 64)).Encode(e)
}

// DecodeBLPopReply decodes BLPOP's reply, reporting ok=false on the
// timeout-expired null-array form.
func DecodeBLPopReply(f *resp.Frame) (key, value string, ok bool, err error) {
	if aerr := AsError(f); aerr != nil {
		return "", "", false, aerr
	}
	if f.IsNull {
		return "", "", false, nil
	}
	keyFrame, valueFrame, err := AsTuple2(f)
	if err != nil {
		return "", "", false, err
	}
	key, err = AsString(keyFrame)
	if err != nil {
		return "", "", false, err
	}
	value, err = AsString(valueFrame)
	if err != nil {
		return "", "", false, err
	}
	return key, value, true, nil
}
