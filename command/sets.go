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

// SAdd builds an SADD command; its reply decodes with AsInt64.
func SAdd(key string, members ...string) *SAddCmd {
	return &SAddCmd{key: key, members: members}
}

// SAddCmd is the SADD command.
type SAddCmd struct {
	key string
	members []string
}

func (c *SAddCmd) Name() string { return "SADD" }
func (c *SAddCmd) Keys() []string { return []string{c.key} }
func (c *SAddCmd) ReadOnly() bool { return false }
func (c *SAddCmd) Blocking() bool { return false }
func (c *SAddCmd) Encode(e *resp.Encoder) {
	NewBuilder("SADD").Arg(c.key).Multiple(c.members).Encode(e)
}

// SMembers builds an SMEMBERS command; its reply decodes with
// AsStringSlice (it arrives as a RESP3 Set).
func SMembers(key string) *SMembersCmd {
	return &SMembersCmd{key: key}
}

// SMembersCmd is the SMEMBERS command.
type SMembersCmd struct {
	key string
}

func (c *SMembersCmd) Name() string { return "SMEMBERS" }
func (c *SMembersCmd) Keys() []string { return []string{c.key} }
func (c *SMembersCmd) ReadOnly() bool { return true }
func (c *SMembersCmd) Blocking() bool { return false }
func (c *SMembersCmd) Encode(e *resp.Encoder) {
	NewBuilder("SMEMBERS").Arg(c.key).Encode(e)
}

// SIsMember builds an SISMEMBER command; its reply decodes with
// AsBool.
func SIsMember(key, member string) *SIsMemberCmd {
	return &SIsMemberCmd{key: key, member: member}
}

// SIsMemberCmd is the SISMEMBER command.
type SIsMemberCmd struct {
	key, member string
}

func (c *SIsMemberCmd) Name() string { return "SISMEMBER" }
func (c *SIsMemberCmd) Keys() []string { return []string{c.key} }
func (c *SIsMemberCmd) ReadOnly() bool { return true }
func (c *SIsMemberCmd) Blocking() bool { return false }
func (c *SIsMemberCmd) Encode(e *resp.Encoder) {
	NewBuilder("SISMEMBER").Arg(c.key).Arg(c.member).Encode(e)
}

// ZAdd builds a ZADD command from a flat score/member list; its reply
// decodes with AsInt64.
func ZAdd(key string, scoreMembers ...string) *ZAddCmd {
	return &ZAddCmd{key: key, scoreMembers: scoreMembers}
}

// ZAddCmd is the ZADD command.
type ZAddCmd struct {
	key string
	scoreMembers []string
}

func (c *ZAddCmd) Name() string { return "ZADD" }
func (c *ZAddCmd) Keys() []string { return []string{c.key} }
func (c *ZAddCmd) ReadOnly() bool { return false }
func (c *ZAddCmd) Blocking() bool { return false }
func (c *ZAddCmd) Encode(e *resp.Encoder) {
	NewBuilder("ZADD").Arg(c.key).Multiple(c.scoreMembers).Encode(e)
}

// ZRange builds a ZRANGE command with the WITHSCORES token; its reply
// decodes with AsStringSlice (alternating member, score when
// withScores is true).
func ZRange(key string, start, stop int64, withScores bool) *ZRangeCmd {
	return &ZRangeCmd{key: key, start: start, stop: stop, withScores: withScores}
}

// ZRangeCmd is the ZRANGE command.
type ZRangeCmd struct {
	key string
	start, stop int64
	withScores bool
}

func (c *ZRangeCmd) Name() string { return "ZRANGE" }
func (c *ZRangeCmd) Keys() []string { return []string{c.key} }
func (c *ZRangeCmd) ReadOnly() bool { return true }
func (c *ZRangeCmd) Blocking() bool { return false }
func (c *ZRangeCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("ZRANGE").Arg(c.key).Int(c.start).Int(c.stop)
	b.Token("WITHSCORES", c.withScores)
	b.Encode(e)
}
