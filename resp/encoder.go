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

package resp

import (
	"strconv"
)

// Encoder accumulates the wire bytes of one client command (a RESP
// array of bulk strings) or, for tests, an arbitrary Frame. It never
// emits the RESP2 inline-command form.
//
// BulkString and BulkBytes are the encoder's two sinks for bulk-string
// payloads: one takes an owned or borrowed string (Go string slicing is
// already a zero-copy borrow of a larger string, so no third sink is
// needed for "borrowed substring"), the other a borrowed byte slice.
// Both produce byte-identical output.
type Encoder struct {
	buf []byte
}

// NewEncoder returns an Encoder with an empty buffer.
func NewEncoder() *Encoder {
	return &Encoder{}
}

// Reset clears the encoder for reuse, retaining its backing array.
func (e *Encoder) Reset() {
	e.buf = e.buf[:0]
}

// Bytes returns the accumulated wire bytes.
func (e *Encoder) Bytes() []byte {
	return e.buf
}

// ArrayHeader writes a "*<n>\r\n" array header.
func (e *Encoder) ArrayHeader(n int) *Encoder {
	e.buf = append(e.buf, '*')
	e.buf = strconv.AppendInt(e.buf, int64(n), 10)
	e.buf = append(e.buf, '\r', '\n')
	return e
}

// BulkString writes a "$<len>\r\n<s>\r\n" bulk string. s may be an owned
// string or a borrowed substring of a larger string; both are
// represented identically in Go and cost nothing extra here.
func (e *Encoder) BulkString(s string) *Encoder {
	e.buf = append(e.buf, '$')
	e.buf = strconv.AppendInt(e.buf, int64(len(s)), 10)
	e.buf = append(e.buf, '\r', '\n')
	e.buf = append(e.buf, s...)
	e.buf = append(e.buf, '\r', '\n')
	return e
}

// BulkBytes writes a "$<len>\r\n<b>\r\n" bulk string from a borrowed
// byte slice, without ever converting it to a string.
func (e *Encoder) BulkBytes(b []byte) *Encoder {
	e.buf = append(e.buf, '$')
	e.buf = strconv.AppendInt(e.buf, int64(len(b)), 10)
	e.buf = append(e.buf, '\r', '\n')
	e.buf = append(e.buf, b...)
	e.buf = append(e.buf, '\r', '\n')
	return e
}

// Command encodes a full command as an array of bulk strings, the only
// form the encoder ever produces for outbound commands.
func (e *Encoder) Command(args ...string) *Encoder {
	e.ArrayHeader(len(args))
	for _, a := range args {
		e.BulkString(a)
	}
	return e
}

// CommandBytes is Command for callers holding some arguments as raw
// byte slices (e.g. binary-safe values) instead of strings.
func (e *Encoder) CommandBytes(args [][]byte) *Encoder {
	e.ArrayHeader(len(args))
	for _, a := range args {
		e.BulkBytes(a)
	}
	return e
}

// EncodeFrame writes an arbitrary Frame in RESP3 wire form. It exists
// for round-trip testing of the decoder and for forwarding frames
// read from one connection (e.g. MULTI/EXEC replies) verbatim; normal
// command encoding should use Command/CommandBytes instead.
func EncodeFrame(e *Encoder, f Frame) {
	switch f.Type {
	case SimpleString, Error:
		e.buf = append(e.buf, byte(f.Type))
		e.buf = append(e.buf, f.Bytes...)
		e.buf = append(e.buf, '\r', '\n')

	case Integer:
		e.buf = append(e.buf, ':')
		e.buf = strconv.AppendInt(e.buf, f.Int, 10)
		e.buf = append(e.buf, '\r', '\n')

	case Boolean:
		e.buf = append(e.buf, '#')
		if f.Bool {
			e.buf = append(e.buf, 't')
		} else {
			e.buf = append(e.buf, 'f')
		}
		e.buf = append(e.buf, '\r', '\n')

	case Null:
		e.buf = append(e.buf, '_', '\r', '\n')

	case Double:
		e.buf = append(e.buf, ',')
		e.buf = strconv.AppendFloat(e.buf, f.Double, 'g', -1, 64)
		e.buf = append(e.buf, '\r', '\n')

	case BigNumber:
		e.buf = append(e.buf, '(')
		e.buf = append(e.buf, f.Bytes...)
		e.buf = append(e.buf, '\r', '\n')

	case BulkString, BulkError:
		if f.IsNull {
			e.buf = append(e.buf, byte(f.Type))
			e.buf = append(e.buf, '-', '1', '\r', '\n')
			return
		}
		e.buf = append(e.buf, byte(f.Type))
		e.buf = strconv.AppendInt(e.buf, int64(len(f.Bytes)), 10)
		e.buf = append(e.buf, '\r', '\n')
		e.buf = append(e.buf, f.Bytes...)
		e.buf = append(e.buf, '\r', '\n')

	case VerbatimString:
		total := 4 + len(f.Bytes)
		e.buf = append(e.buf, '=')
		e.buf = strconv.AppendInt(e.buf, int64(total), 10)
		e.buf = append(e.buf, '\r', '\n')
		e.buf = append(e.buf, f.VerbatimTag...)
		e.buf = append(e.buf, ':')
		e.buf = append(e.buf, f.Bytes...)
		e.buf = append(e.buf, '\r', '\n')

	case Array, Set, Push:
		if f.IsNull {
			e.buf = append(e.buf, byte(f.Type))
			e.buf = append(e.buf, '-', '1', '\r', '\n')
			return
		}
		e.buf = append(e.buf, byte(f.Type))
		e.buf = strconv.AppendInt(e.buf, int64(len(f.Elements)), 10)
		e.buf = append(e.buf, '\r', '\n')
		for _, child := range f.Elements {
			EncodeFrame(e, child)
		}

	case Map, Attribute:
		e.buf = append(e.buf, byte(f.Type))
		e.buf = strconv.AppendInt(e.buf, int64(len(f.Elements)/2), 10)
		e.buf = append(e.buf, '\r', '\n')
		for _, child := range f.Elements {
			EncodeFrame(e, child)
		}
	}
}
