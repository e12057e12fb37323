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

// Package resp implements the RESP3 wire codec: an incremental decoder
// that turns a stream of bytes into Frame values without recursing into
// the Go call stack, and an encoder that turns client commands into the
// RESP array-of-bulk-strings wire form.
package resp

import (
	"github.com/pkg/errors"
)

// Type tags a Frame with its RESP3 wire type. The underlying byte is the
// type's leading wire character, so switching on it during decode needs
// no separate lookup table.
type Type byte

const (
	SimpleString Type = '+'
	Error Type = '-'
	Integer Type = ':'
	BulkString Type = '$'
	Array Type = '*'
	Null Type = '_'
	Double Type = ','
	Boolean Type = '#'
	BigNumber Type = '('
	BulkError Type = '!'
	VerbatimString Type = '='
	Map Type = '%'
	Set Type = '~'
	Attribute Type = '|'
	Push Type = '>'
)

// String names the type for diagnostics and UnexpectedType errors.
func (t Type) String() string {
	switch t {
	case SimpleString:
		return "SimpleString"
	case Error:
		return "Error"
	case Integer:
		return "Integer"
	case BulkString:
		return "BulkString"
	case Array:
		return "Array"
	case Null:
		return "Null"
	case Double:
		return "Double"
	case Boolean:
		return "Boolean"
	case BigNumber:
		return "BigNumber"
	case BulkError:
		return "BulkError"
	case VerbatimString:
		return "VerbatimString"
	case Map:
		return "Map"
	case Set:
		return "Set"
	case Attribute:
		return "Attribute"
	case Push:
		return "Push"
	default:
		return "Unknown(" + string(byte(t)) + ")"
	}
}

// IsAggregate reports whether the type carries nested child frames.
func (t Type) IsAggregate() bool {
	switch t {
	case Array, Set, Map, Attribute, Push:
		return true
	default:
		return false
	}
}

// Frame is a single decoded RESP3 value. Only the fields relevant to its
// Type are meaningful; callers should use the Type tag (or the typed
// accessors below) rather than reading fields directly for unrelated
// types.
//
// Aggregate children share the decoder's input buffer: Bytes slices for
// string-shaped frames are windows into that buffer, never copies.
type Frame struct {
	Type Type

	// IsNull distinguishes the RESP2 null forms ($-1, *-1) and the
	// RESP3 "_" null from a zero-length value of the same type.
	IsNull bool

	// Bytes holds the raw payload for SimpleString, Error, BulkString,
	// BulkError, BigNumber (digits only, optional leading '-'), and the
	// text portion of VerbatimString.
	Bytes []byte

	// VerbatimTag holds the 3-byte type tag (e.g. "txt") of a
	// VerbatimString frame.
	VerbatimTag string

	// Int holds the value of an Integer frame.
	Int int64

	// Bool holds the value of a Boolean frame.
	Bool bool

	// Double holds the value of a Double frame.
	Double float64

	// Elements holds the children of an aggregate frame. For Map and
	// Attribute, elements alternate key, value, key, value, ....
	Elements []Frame
}

// Text returns the string-shaped payload (SimpleString, Error,
// BulkString, BulkError, VerbatimString, BigNumber digits).
func (f Frame) Text() string {
	return string(f.Bytes)
}

// Len returns len(Elements) for aggregate frames.
func (f Frame) Len() int {
	return len(f.Elements)
}

// Pairs iterates a Map/Attribute frame's key/value elements.
func (f Frame) Pairs() func(yield func(key, value Frame) bool) {
	return func(yield func(key, value Frame) bool) {
		for i := 0; i+1 < len(f.Elements); i += 2 {
			if !yield(f.Elements[i], f.Elements[i+1]) {
				return
			}
		}
	}
}

// Error kinds. These are sentinel values checked with errors.Is; wrapped
// instances carry additional context via errors.Wrap/Wrapf.
var (
	// ErrTruncated means the buffer does not yet hold a complete frame;
	// it is recoverable by feeding more bytes and retrying.
	ErrTruncated = errors.New("resp: truncated frame")

	// ErrCanNotParseInteger means an integer literal was malformed or
	// overflowed a signed 64-bit value.
	ErrCanNotParseInteger = errors.New("resp: can not parse integer")

	// ErrCanNotParseBigNumber means a big-number literal was not an
	// optional '-' followed by one or more digits.
	ErrCanNotParseBigNumber = errors.New("resp: can not parse big number")

	// ErrTooDeeplyNested means aggregate nesting exceeded MaxDepth.
	ErrTooDeeplyNested = errors.New("resp: too deeply nested aggregated types")

	// ErrUnexpectedType means a frame's leading byte (or a
	// type-specific sub-form, e.g. "#x") did not match any known RESP3
	// type.
	ErrUnexpectedType = errors.New("resp: unexpected type")
)

// MaxDepth is the maximum nesting depth of aggregate frames the decoder
// accepts. Exactly MaxDepth levels succeed; MaxDepth+1 fails with
// ErrTooDeeplyNested.
const MaxDepth = 100
