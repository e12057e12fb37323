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

// AsString decodes a SimpleString, BulkString, or VerbatimString frame
// as a Go string. A null BulkString decodes as an empty string with a
// nil error; AsOptionalString tells null apart from empty.
func AsString(f *resp.Frame) (string, error) {
	switch f.Type {
	case resp.SimpleString, resp.VerbatimString:
		return f.Text(), nil
	case resp.BulkString:
		if f.IsNull {
			return "", nil
		}
		return f.Text(), nil
	default:
		if err := AsError(f); err != nil {
			return "", err
		}
		return "", unexpectedType(resp.BulkString, f)
	}
}

// AsOptionalString decodes a possibly-null BulkString, mapping the null
// form to (\"\", false) per its option-decoder rule.
func AsOptionalString(f *resp.Frame) (string, bool, error) {
	if err := AsError(f); err != nil {
		return "", false, err
	}
	switch f.Type {
	case resp.BulkString:
		if f.IsNull {
			return "", false, nil
		}
		return f.Text(), true, nil
	case resp.Null:
		return "", false, nil
	default:
		return "", false, unexpectedType(resp.BulkString, f)
	}
}

// AsBytes decodes a BulkString frame's raw payload. The returned slice
// shares the decoder's input buffer and must be copied before the
// buffer is reused.
func AsBytes(f *resp.Frame) ([]byte, error) {
	if err := AsError(f); err != nil {
		return nil, err
	}
	if f.Type != resp.BulkString {
		return nil, unexpectedType(resp.BulkString, f)
	}
	if f.IsNull {
		return nil, nil
	}
	return f.Bytes, nil
}

// AsInt64 decodes an Integer frame, also accepting a BulkString/
// SimpleString holding a decimal literal (some commands reply with a
// bulk string even though the value is logically integral).
func AsInt64(f *resp.Frame) (int64, error) {
	if err := AsError(f); err != nil {
		return 0, err
	}
	switch f.Type {
	case resp.Integer:
		return f.Int, nil
	case resp.BulkString, resp.SimpleString:
		n, perr := parseInt64(f.Bytes)
		if perr != nil {
			return 0, unexpectedType(resp.Integer, f)
		}
		return n, nil
	default:
		return 0, unexpectedType(resp.Integer, f)
	}
}

// AsDouble decodes a Double frame, also accepting a bulk/simple string
// holding a float literal (RESP2 servers reply to floating commands
// this way).
func AsDouble(f *resp.Frame) (float64, error) {
	if err := AsError(f); err != nil {
		return 0, err
	}
	switch f.Type {
	case resp.Double:
		return f.Double, nil
	case resp.BulkString, resp.SimpleString:
		v, perr := parseFloat64(f.Bytes)
		if perr != nil {
			return 0, unexpectedType(resp.Double, f)
		}
		return v, nil
	default:
		return 0, unexpectedType(resp.Double, f)
	}
}

// AsBool decodes a Boolean frame, also accepting the Integer 0/1 form
// RESP2-speaking servers use.
func AsBool(f *resp.Frame) (bool, error) {
	if err := AsError(f); err != nil {
		return false, err
	}
	switch f.Type {
	case resp.Boolean:
		return f.Bool, nil
	case resp.Integer:
		return f.Int != 0, nil
	default:
		return false, unexpectedType(resp.Boolean, f)
	}
}

// AsOK decodes the common "+OK" simple-string acknowledgement, failing
// if the reply is not exactly "OK".
func AsOK(f *resp.Frame) error {
	if err := AsError(f); err != nil {
		return err
	}
	if f.Type != resp.SimpleString {
		return unexpectedType(resp.SimpleString, f)
	}
	if f.Text() != "OK" {
		return &UnexpectedTypeError{Expected: resp.SimpleString, Received: f.Type}
	}
	return nil
}

// AsStringSlice decodes a homogeneous Array/Set of bulk strings. Null
// elements decode as empty strings, matching how sparse reply arrays
// (e.g. MGET with missing keys) are typically surfaced.
func AsStringSlice(f *resp.Frame) ([]string, error) {
	if err := AsError(f); err != nil {
		return nil, err
	}
	if f.IsNull {
		return nil, nil
	}
	if f.Type != resp.Array && f.Type != resp.Set {
		return nil, unexpectedType(resp.Array, f)
	}
	out := make([]string, len(f.Elements))
	for i := range f.Elements {
		s, err := AsString(&f.Elements[i])
		if err != nil {
			return nil, err
		}
		out[i] = s
	}
	return out, nil
}

// AsInt64Slice decodes a homogeneous Array of integers.
func AsInt64Slice(f *resp.Frame) ([]int64, error) {
	if err := AsError(f); err != nil {
		return nil, err
	}
	if f.IsNull {
		return nil, nil
	}
	if f.Type != resp.Array && f.Type != resp.Set {
		return nil, unexpectedType(resp.Array, f)
	}
	out := make([]int64, len(f.Elements))
	for i := range f.Elements {
		n, err := AsInt64(&f.Elements[i])
		if err != nil {
			return nil, err
		}
		out[i] = n
	}
	return out, nil
}

// AsStringMap decodes a RESP3 Map, or falls back to a flat RESP2 array
// of alternating key/value bulk strings, per its map-decoder
// rule.
func AsStringMap(f *resp.Frame) (map[string]string, error) {
	if err := AsError(f); err != nil {
		return nil, err
	}
	switch f.Type {
	case resp.Map:
		out := make(map[string]string, f.Len()/2)
		for k, v := range f.Pairs() {
			key, err := AsString(&k)
			if err != nil {
				return nil, err
			}
			val, err := AsString(&v)
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil
	case resp.Array:
		if len(f.Elements)%2 != 0 {
			return nil, unexpectedType(resp.Map, f)
		}
		out := make(map[string]string, len(f.Elements)/2)
		for i := 0; i+1 < len(f.Elements); i += 2 {
			key, err := AsString(&f.Elements[i])
			if err != nil {
				return nil, err
			}
			val, err := AsString(&f.Elements[i+1])
			if err != nil {
				return nil, err
			}
			out[key] = val
		}
		return out, nil
	default:
		return nil, unexpectedType(resp.Map, f)
	}
}

// AsTuple2 decodes a fixed-shape 2-element array by position, e.g. a
// cursor reply's [cursor, items] pair.
func AsTuple2(f *resp.Frame) (*resp.Frame, *resp.Frame, error) {
	if err := AsError(f); err != nil {
		return nil, nil, err
	}
	if f.Type != resp.Array || len(f.Elements) != 2 {
		return nil, nil, unexpectedType(resp.Array, f)
	}
	return &f.Elements[0], &f.Elements[1], nil
}

func parseInt64(b []byte) (int64, error) {
	if len(b) == 0 {
		return 0, ErrUnexpectedType
	}
	neg := false
	i := 0
	if b[0] == '-' {
		neg = true
		i++
	}
	if i == len(b) {
		return 0, ErrUnexpectedType
	}
	var n int64
	for ; i < len(b); i++ {
		if b[i] < '0' || b[i] > '9' {
			return 0, ErrUnexpectedType
		}
		n = n*10 + int64(b[i]-'0')
	}
	if neg {
		n = -n
	}
	return n, nil
}

func parseFloat64(b []byte) (float64, error) {
	f, err := strconv.ParseFloat(string(b), 64)
	if err != nil {
		return 0, ErrUnexpectedType
	}
	return f, nil
}
