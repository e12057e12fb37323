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

// ZAddOptions carries ZADD's optional tokens.
type ZAddOptions struct {
	NX bool
	XX bool
	GT bool
	LT bool
	CH bool
	Incr bool
}

// ZMember is one score/member pair for ZAdd.
type ZMember struct {
	Score float64
	Member string
}

// ZAdd builds a ZADD command.
func ZAdd(key string, opts ZAddOptions, members ...ZMember) *ZAddCmd {
	return &ZAddCmd{key: key, opts: opts, members: members}
}

// ZAddCmd is the ZADD command; its reply decodes with AsInt64, or
// AsDouble when Incr is set.
type ZAddCmd struct {
	key string
	opts ZAddOptions
	members []ZMember
}

func (c *ZAddCmd) Name() string { return "ZADD" }
func (c *ZAddCmd) Keys() []string { return []string{c.key} }
func (c *ZAddCmd) ReadOnly() bool { return false }
func (c *ZAddCmd) Blocking() bool { return false }
func (c *ZAddCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("ZADD").Arg(c.key)
	b.Token("NX", c.opts.NX)
	b.Token("XX", c.opts.XX)
	b.Token("GT", c.opts.GT)
	b.Token("LT", c.opts.LT)
	b.Token("CH", c.opts.CH)
	b.Token("INCR", c.opts.Incr)
	for _, m := range c.members {
		b.Double(m.Score).Arg(m.Member)
	}
	b.Encode(e)
}

// ZScore builds a ZSCORE command; its reply decodes with AsOptionalString
// then strconv.ParseFloat, since a missing member replies with a null
// bulk string rather than an error.
func ZScore(key, member string) *ZScoreCmd {
	return &ZScoreCmd{key: key, member: member}
}

// ZScoreCmd is the ZSCORE command.
type ZScoreCmd struct {
	key, member string
}

func (c *ZScoreCmd) Name() string { return "ZSCORE" }
func (c *ZScoreCmd) Keys() []string { return []string{c.key} }
func (c *ZScoreCmd) ReadOnly() bool { return true }
func (c *ZScoreCmd) Blocking() bool { return false }
func (c *ZScoreCmd) Encode(e *resp.Encoder) {
	NewBuilder("ZSCORE").Arg(c.key).Arg(c.member).Encode(e)
}

// DecodeOptionalDouble decodes ZScoreCmd's reply.
func (c *ZScoreCmd) DecodeOptionalDouble(f *resp.Frame) (float64, bool, error) {
	s, ok, err := AsOptionalString(f)
	if err != nil || !ok {
		return 0, false, err
	}
	v, perr := strconv.ParseFloat(s, 64)
	if perr != nil {
		return 0, false, unexpectedType(resp.Double, f)
	}
	return v, true, nil
}

// ZRangeOptions carries ZRANGE's BYSCORE/BYLEX/REV/LIMIT/WITHSCORES
// tokens.
type ZRangeOptions struct {
	ByScore bool
	ByLex bool
	Rev bool
	LimitSet bool
	Offset int64
	Count int64
	WithScores bool
}

// ZRange builds a ZRANGE command over [start, stop].
func ZRange(key, start, stop string, opts ZRangeOptions) *ZRangeCmd {
	return &ZRangeCmd{key: key, start: start, stop: stop, opts: opts}
}

// ZRangeCmd is the ZRANGE command; its reply decodes with
// AsStringSlice, or pairs of member/score via AsStringMap's sibling
// when WithScores is set (the caller re-pairs the flat AsStringSlice
// result, since WITHSCORES keeps member/score interleaved rather than
// ordered by key).
type ZRangeCmd struct {
	key, start, stop string
	opts ZRangeOptions
}

func (c *ZRangeCmd) Name() string { return "ZRANGE" }
func (c *ZRangeCmd) Keys() []string { return []string{c.key} }
func (c *ZRangeCmd) ReadOnly() bool { return true }
func (c *ZRangeCmd) Blocking() bool { return false }
func (c *ZRangeCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("ZRANGE").Arg(c.key).Arg(c.start).Arg(c.stop)
	b.Token("BYSCORE", c.opts.ByScore)
	b.Token("BYLEX", c.opts.ByLex)
	b.Token("REV", c.opts.Rev)
	if c.opts.LimitSet {
		b.Block("LIMIT", strconv.FormatInt(c.opts.Offset, 10), strconv.FormatInt(c.opts.Count, 10))
	}
	b.Token("WITHSCORES", c.opts.WithScores)
	b.Encode(e)
}

// ZRem builds a ZREM command over one or more members; its reply
// decodes with AsInt64.
func ZRem(key string, members ...string) *ZRemCmd {
	return &ZRemCmd{key: key, members: members}
}

// ZRemCmd is the ZREM command.
type ZRemCmd struct {
	key string
	members []string
}

func (c *ZRemCmd) Name() string { return "ZREM" }
func (c *ZRemCmd) Keys() []string { return []string{c.key} }
func (c *ZRemCmd) ReadOnly() bool { return false }
func (c *ZRemCmd) Blocking() bool { return false }
func (c *ZRemCmd) Encode(e *resp.Encoder) {
	NewBuilder("ZREM").Arg(c.key).Multiple(c.members).Encode(e)
}

// ZCard builds a ZCARD command; its reply decodes with AsInt64.
func ZCard(key string) *ZCardCmd {
	return &ZCardCmd{key: key}
}

// ZCardCmd is the ZCARD command.
type ZCardCmd struct {
	key string
}

func (c *ZCardCmd) Name() string { return "ZCARD" }
func (c *ZCardCmd) Keys() []string { return []string{c.key} }
func (c *ZCardCmd) ReadOnly() bool { return true }
func (c *ZCardCmd) Blocking() bool { return false }
func (c *ZCardCmd) Encode(e *resp.Encoder) {
	NewBuilder("ZCARD").Arg(c.key).Encode(e)
}
