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

	"github.com/pkg/errors"

	"github.com/valkeygo/valkeygo/internal/splitio"
	"github.com/valkeygo/valkeygo/internal/zerocopy"
)

// Decoder turns a byte stream into a sequence of Frame values. Feed
// appends newly read bytes; Next drains complete frames one at a time,
// returning ErrTruncated once only a partial frame remains. A partial
// frame never consumes bytes, so the caller can Feed more and retry.
//
// Aggregate parsing is iterative, driven by an explicit stack of
// pending frames (see pending below) instead of native recursion, so
// adversarial nesting depth is bounded by MaxDepth rather than by the Go
// call stack.
type Decoder struct {
	buf zerocopy.Buffer
}

// NewDecoder returns a Decoder with an empty backlog.
func NewDecoder() *Decoder {
	return &Decoder{buf: zerocopy.NewBuffer(nil)}
}

// Feed appends bytes read from the wire to the decoder's backlog.
func (d *Decoder) Feed(b []byte) {
	d.buf.Write(b)
}

// Buffered reports how many unconsumed bytes remain.
func (d *Decoder) Buffered() int {
	return d.buf.Len()
}

// Compact discards already-parsed bytes from the backlog, bounding its
// growth across many small reads. Safe to call after draining all
// complete frames with Next.
func (d *Decoder) Compact() {
	d.buf.Compact()
}

// Next parses and returns the next complete frame, or ErrTruncated if
// the backlog does not yet hold one. Other errors are fatal to the
// decoder's connection: the caller should not call Next again without
// resetting state.
func (d *Decoder) Next() (*Frame, error) {
	avail, err := d.buf.Peek(d.buf.Len())
	if err != nil {
		// No bytes at all is a truncation, not a hard error.
		return nil, ErrTruncated
	}

	f, n, err := parseOne(avail)
	if err != nil {
		return nil, err
	}
	d.buf.Advance(n)
	return f, nil
}

// pending is one frame in the iterative parse stack: an aggregate whose
// header has been read but whose children are still being collected.
type pending struct {
	typ Type
	need int
	elem []Frame
}

// parseOne parses exactly one top-level frame (which may itself contain
// nested aggregates) from buf, returning the frame and the number of
// bytes it consumed. It never recurses: nested aggregates are tracked on
// an explicit stack so MaxDepth is enforced without risking a Go stack
// overflow on adversarial input.
func parseOne(buf []byte) (*Frame, int, error) {
	r := splitio.NewReader(buf)
	var stack []*pending

	// attach folds a completed frame into its parent aggregate (if any)
	// and keeps folding while doing so completes the parent in turn.
	// When the stack empties, the fully assembled top-level frame is
	// returned.
	attach := func(f Frame) (*Frame, bool) {
		for {
			if len(stack) == 0 {
				return &f, true
			}
			top := stack[len(stack)-1]
			top.elem = append(top.elem, f)
			top.need--
			if top.need > 0 {
				return nil, false
			}
			stack = stack[:len(stack)-1]
			f = Frame{Type: top.typ, Elements: top.elem}
		}
	}

	for {
		f, isHeader, count, err := decodeHeader(r)
		if err != nil {
			return nil, 0, err
		}

		if isHeader {
			if count < 0 {
				// RESP2 null array form; only Array carries this.
				if done, ok := attach(Frame{Type: f.Type, IsNull: true}); ok {
					return done, r.Pos(), nil
				}
				continue
			}
			if count == 0 {
				if done, ok := attach(Frame{Type: f.Type, Elements: []Frame{}}); ok {
					return done, r.Pos(), nil
				}
				continue
			}
			if len(stack)+1 > MaxDepth {
				return nil, 0, ErrTooDeeplyNested
			}
			stack = append(stack, &pending{typ: f.Type, need: count, elem: make([]Frame, 0, count)})
			continue
		}

		if done, ok := attach(f); ok {
			return done, r.Pos(), nil
		}
	}
}

// decodeHeader reads one frame from r. For aggregate headers (Array,
// Set, Map, Attribute, Push) isHeader is true and count gives the
// number of child frames still to read (already doubled for Map and
// Attribute); count<0 marks a RESP2 null array. For every other type
// the frame is fully formed on return.
func decodeHeader(r *splitio.Reader) (f Frame, isHeader bool, count int, err error) {
	line, ok := r.ReadLine()
	if !ok {
		return Frame{}, false, 0, ErrTruncated
	}
	payload := splitio.TrimCRLF(line)
	if len(payload) == 0 {
		return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "empty frame line")
	}

	tag := Type(payload[0])
	body := payload[1:]

	switch tag {
	case SimpleString:
		return Frame{Type: SimpleString, Bytes: body}, false, 0, nil

	case Error:
		return Frame{Type: Error, Bytes: body}, false, 0, nil

	case Integer:
		n, err := parseInt64(body)
		if err != nil {
			return Frame{}, false, 0, err
		}
		return Frame{Type: Integer, Int: n}, false, 0, nil

	case Double:
		v, err := strconv.ParseFloat(string(body), 64)
		if err != nil {
			return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "malformed double")
		}
		return Frame{Type: Double, Double: v}, false, 0, nil

	case Boolean:
		switch {
		case len(body) == 1 && body[0] == 't':
			return Frame{Type: Boolean, Bool: true}, false, 0, nil
		case len(body) == 1 && body[0] == 'f':
			return Frame{Type: Boolean, Bool: false}, false, 0, nil
		default:
			return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "malformed boolean")
		}

	case Null:
		if len(body) != 0 {
			return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "malformed null")
		}
		return Frame{Type: Null, IsNull: true}, false, 0, nil

	case BigNumber:
		if !isBigNumber(body) {
			return Frame{}, false, 0, ErrCanNotParseBigNumber
		}
		return Frame{Type: BigNumber, Bytes: body}, false, 0, nil

	case BulkString, BulkError:
		return decodeBulk(r, tag, body)

	case VerbatimString:
		return decodeVerbatim(r, body)

	case Array, Set, Push:
		n, err := parseInt(body)
		if err != nil {
			return Frame{}, false, 0, err
		}
		if n < 0 {
			if tag != Array {
				return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "null not valid for this type")
			}
			return Frame{Type: tag}, true, -1, nil
		}
		return Frame{Type: tag}, true, n, nil

	case Map, Attribute:
		n, err := parseInt(body)
		if err != nil {
			return Frame{}, false, 0, err
		}
		if n < 0 {
			return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "null not valid for this type")
		}
		return Frame{Type: tag}, true, n * 2, nil

	default:
		return Frame{}, false, 0, errors.Wrapf(ErrUnexpectedType, "leading byte %q", byte(tag))
	}
}

// decodeBulk reads the payload of a BulkString or BulkError: a length
// header has already been read into body; n<0 denotes a RESP2 null.
func decodeBulk(r *splitio.Reader, tag Type, body []byte) (Frame, bool, int, error) {
	n, err := parseInt(body)
	if err != nil {
		return Frame{}, false, 0, err
	}
	if n < 0 {
		if tag != BulkString {
			return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "null not valid for bulk error")
		}
		return Frame{Type: tag, IsNull: true}, false, 0, nil
	}

	data, ok := r.ReadN(n + 2)
	if !ok {
		return Frame{}, false, 0, ErrTruncated
	}
	return Frame{Type: tag, Bytes: data[:n]}, false, 0, nil
}

// decodeVerbatim reads a verbatim string: "=<n>\r\n<3-byte tag>:<payload>\r\n".
func decodeVerbatim(r *splitio.Reader, body []byte) (Frame, bool, int, error) {
	n, err := parseInt(body)
	if err != nil {
		return Frame{}, false, 0, err
	}
	if n < 4 {
		return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "verbatim string too short for tag")
	}

	data, ok := r.ReadN(n + 2)
	if !ok {
		return Frame{}, false, 0, ErrTruncated
	}
	if data[3] != ':' {
		return Frame{}, false, 0, errors.Wrap(ErrUnexpectedType, "malformed verbatim string tag")
	}
	return Frame{
		Type: VerbatimString,
		VerbatimTag: string(data[:3]),
		Bytes: data[4:n],
	}, false, 0, nil
}

func parseInt(b []byte) (int, error) {
	n, err := parseInt64(b)
	if err != nil {
		return 0, err
	}
	return int(n), nil
}

func parseInt64(b []byte) (int64, error) {
	n, err := strconv.ParseInt(string(b), 10, 64)
	if err != nil {
		return 0, errors.Wrapf(ErrCanNotParseInteger, "%q", b)
	}
	return n, nil
}

// isBigNumber reports whether b is an optional '-' followed by one or
// more ASCII digits, per the RESP3 big-number grammar.
func isBigNumber(b []byte) bool {
	if len(b) == 0 {
		return false
	}
	i := 0
	if b[0] == '-' {
		i = 1
	}
	if i == len(b) {
		return false
	}
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return false
		}
	}
	return true
}
