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

// Subscribe builds a SUBSCRIBE command over one or more channel names.
// Its replies arrive as Push frames, one per channel, consumed by the
// subscribe package rather than decoded here.
func Subscribe(channels ...string) *SubscribeCmd {
	return &SubscribeCmd{channels: channels}
}

// SubscribeCmd is the SUBSCRIBE command.
type SubscribeCmd struct {
	channels []string
}

func (c *SubscribeCmd) Name() string { return "SUBSCRIBE" }
func (c *SubscribeCmd) Keys() []string { return nil }
func (c *SubscribeCmd) ReadOnly() bool { return true }
func (c *SubscribeCmd) Blocking() bool { return true }
func (c *SubscribeCmd) Encode(e *resp.Encoder) {
	NewBuilder("SUBSCRIBE").Multiple(c.channels).Encode(e)
}

// PSubscribe builds a PSUBSCRIBE command over one or more glob patterns.
func PSubscribe(patterns ...string) *PSubscribeCmd {
	return &PSubscribeCmd{patterns: patterns}
}

// PSubscribeCmd is the PSUBSCRIBE command.
type PSubscribeCmd struct {
	patterns []string
}

func (c *PSubscribeCmd) Name() string { return "PSUBSCRIBE" }
func (c *PSubscribeCmd) Keys() []string { return nil }
func (c *PSubscribeCmd) ReadOnly() bool { return true }
func (c *PSubscribeCmd) Blocking() bool { return true }
func (c *PSubscribeCmd) Encode(e *resp.Encoder) {
	NewBuilder("PSUBSCRIBE").Multiple(c.patterns).Encode(e)
}

// SSubscribe builds an SSUBSCRIBE command over one or more shard
// channel names.
func SSubscribe(channels ...string) *SSubscribeCmd {
	return &SSubscribeCmd{channels: channels}
}

// SSubscribeCmd is the SSUBSCRIBE command.
type SSubscribeCmd struct {
	channels []string
}

func (c *SSubscribeCmd) Name() string { return "SSUBSCRIBE" }
func (c *SSubscribeCmd) Keys() []string { return c.channels }
func (c *SSubscribeCmd) ReadOnly() bool { return true }
func (c *SSubscribeCmd) Blocking() bool { return true }
func (c *SSubscribeCmd) Encode(e *resp.Encoder) {
	NewBuilder("SSUBSCRIBE").Multiple(c.channels).Encode(e)
}

// Unsubscribe builds an UNSUBSCRIBE command. No channels unsubscribes
// from all of them.
func Unsubscribe(channels ...string) *UnsubscribeCmd {
	return &UnsubscribeCmd{channels: channels}
}

// UnsubscribeCmd is the UNSUBSCRIBE command.
type UnsubscribeCmd struct {
	channels []string
}

func (c *UnsubscribeCmd) Name() string { return "UNSUBSCRIBE" }
func (c *UnsubscribeCmd) Keys() []string { return nil }
func (c *UnsubscribeCmd) ReadOnly() bool { return true }
func (c *UnsubscribeCmd) Blocking() bool { return false }
func (c *UnsubscribeCmd) Encode(e *resp.Encoder) {
	NewBuilder("UNSUBSCRIBE").Multiple(c.channels).Encode(e)
}

// PUnsubscribe builds a PUNSUBSCRIBE command.
func PUnsubscribe(patterns ...string) *PUnsubscribeCmd {
	return &PUnsubscribeCmd{patterns: patterns}
}

// PUnsubscribeCmd is the PUNSUBSCRIBE command.
type PUnsubscribeCmd struct {
	patterns []string
}

func (c *PUnsubscribeCmd) Name() string { return "PUNSUBSCRIBE" }
func (c *PUnsubscribeCmd) Keys() []string { return nil }
func (c *PUnsubscribeCmd) ReadOnly() bool { return true }
func (c *PUnsubscribeCmd) Blocking() bool { return false }
func (c *PUnsubscribeCmd) Encode(e *resp.Encoder) {
	NewBuilder("PUNSUBSCRIBE").Multiple(c.patterns).Encode(e)
}

// SUnsubscribe builds an SUNSUBSCRIBE command.
func SUnsubscribe(channels ...string) *SUnsubscribeCmd {
	return &SUnsubscribeCmd{channels: channels}
}

// SUnsubscribeCmd is the SUNSUBSCRIBE command.
type SUnsubscribeCmd struct {
	channels []string
}

func (c *SUnsubscribeCmd) Name() string { return "SUNSUBSCRIBE" }
func (c *SUnsubscribeCmd) Keys() []string { return c.channels }
func (c *SUnsubscribeCmd) ReadOnly() bool { return true }
func (c *SUnsubscribeCmd) Blocking() bool { return false }
func (c *SUnsubscribeCmd) Encode(e *resp.Encoder) {
	NewBuilder("SUNSUBSCRIBE").Multiple(c.channels).Encode(e)
}

// Publish builds a PUBLISH command; its reply decodes with AsInt64
// (the number of clients that received the message).
func Publish(channel, message string) *PublishCmd {
	return &PublishCmd{channel: channel, message: message}
}

// PublishCmd is the PUBLISH command.
type PublishCmd struct {
	channel, message string
}

func (c *PublishCmd) Name() string { return "PUBLISH" }
func (c *PublishCmd) Keys() []string { return []string{c.channel} }
func (c *PublishCmd) ReadOnly() bool { return false }
func (c *PublishCmd) Blocking() bool { return false }
func (c *PublishCmd) Encode(e *resp.Encoder) {
	NewBuilder("PUBLISH").Arg(c.channel).Arg(c.message).Encode(e)
}

// SPublish builds an SPUBLISH command for shard pub/sub.
func SPublish(channel, message string) *SPublishCmd {
	return &SPublishCmd{channel: channel, message: message}
}

// SPublishCmd is the SPUBLISH command.
type SPublishCmd struct {
	channel, message string
}

func (c *SPublishCmd) Name() string { return "SPUBLISH" }
func (c *SPublishCmd) Keys() []string { return []string{c.channel} }
func (c *SPublishCmd) ReadOnly() bool { return false }
func (c *SPublishCmd) Blocking() bool { return false }
func (c *SPublishCmd) Encode(e *resp.Encoder) {
	NewBuilder("SPUBLISH").Arg(c.channel).Arg(c.message).Encode(e)
}
