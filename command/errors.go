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
	"fmt"
	"regexp"
	"strings"

	"github.com/valkeygo/valkeygo/resp"
)

// UnexpectedTypeError is returned when a response decoder receives a
// frame whose type does not match what the command expects.
type UnexpectedTypeError struct {
	Expected resp.Type
	Received resp.Type
}

func (e *UnexpectedTypeError) Error() string {
	return fmt.Sprintf("command: unexpected type: expected %s, got %s", e.Expected, e.Received)
}

// ErrUnexpectedType lets callers match any UnexpectedTypeError with
// errors.Is without caring about the specific types involved.
var ErrUnexpectedType = &UnexpectedTypeError{}

func (e *UnexpectedTypeError) Is(target error) bool {
	_, ok := target.(*UnexpectedTypeError)
	return ok
}

func unexpectedType(expected resp.Type, f *resp.Frame) error {
	return &UnexpectedTypeError{Expected: expected, Received: f.Type}
}

// Error is a server error reply, further classified into the
// well-known sub-kinds the retry driver acts on.
type Error struct {
	Message string
	Kind ErrorKind
	// TargetAddr carries the target for MOVED/ASK/REDIRECT replies;
	// empty otherwise.
	TargetAddr string
}

func (e *Error) Error() string {
	return e.Message
}

// ErrorKind classifies a server error reply.
type ErrorKind string

const (
	ErrorGeneric ErrorKind = "GENERIC"
	ErrorMoved ErrorKind = "MOVED"
	ErrorAsk ErrorKind = "ASK"
	ErrorRedirect ErrorKind = "REDIRECT"
	ErrorLoading ErrorKind = "LOADING"
	ErrorBusy ErrorKind = "BUSY"
	ErrorWrongPass ErrorKind = "WRONGPASS"
	ErrorReadOnly ErrorKind = "READONLY"
	ErrorWrongType ErrorKind = "WRONGTYPE"
)

var redirectPattern = regexp.MustCompile(`^(MOVED|ASK|REDIRECT)\s+(\d+)\s+(\S+)`)

// ParseError classifies a server error message into an *Error:
// MOVED/ASK/REDIRECT carry a slot and a target address,
// LOADING/BUSY/WRONGPASS/READONLY/WRONGTYPE are recognized by their
// leading token, anything else is ErrorGeneric.
func ParseError(message string) *Error {
	if m := redirectPattern.FindStringSubmatch(message); m != nil {
		return &Error{Message: message, Kind: ErrorKind(m[1]), TargetAddr: m[3]}
	}

	fields := strings.Fields(message)
	if len(fields) > 0 {
		switch ErrorKind(fields[0]) {
		case ErrorLoading, ErrorBusy, ErrorWrongPass, ErrorReadOnly, ErrorWrongType:
			return &Error{Message: message, Kind: ErrorKind(fields[0])}
		}
	}
	return &Error{Message: message, Kind: ErrorGeneric}
}

// AsError converts an Error/BulkError frame into *Error, or nil for any
// other frame type.
func AsError(f *resp.Frame) error {
	if f.Type != resp.Error && f.Type != resp.BulkError {
		return nil
	}
	return ParseError(f.Text())
}
