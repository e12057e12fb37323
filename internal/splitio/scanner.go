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

// Package splitio provides a zero-copy, CRLF-aware line scanner used by
// the resp decoder to find frame boundaries without buffering.
package splitio

import "bytes"

var (
	CharCRLF = []byte("\r\n")
	CharCR = []byte("\r")
	CharLF = []byte("\n")
)

// Scanner splits a byte slice into lines terminated by '\n', keeping the
// terminator attached to the returned slice. It never copies: Bytes
// returns a sub-slice of the buffer passed to NewScanner.
type Scanner struct {
	l, r int
	buf []byte
}

func NewScanner(b []byte) *Scanner {
	return &Scanner{buf: b}
}

// Scan advances to the next line. It returns false once every byte of
// buf has been consumed, including a final unterminated line.
func (s *Scanner) Scan() bool {
	s.l = s.r
	if len(s.buf) == s.l {
		return false
	}

	idx := bytes.IndexByte(s.buf[s.l:], CharLF[0])
	if idx == -1 {
		s.r = len(s.buf)
	} else {
		s.r = s.l + idx + 1
	}
	return true
}

// Bytes returns the most recently scanned line. Callers must copy it if
// they intend to retain it past the buffer's lifetime.
func (s *Scanner) Bytes() []byte {
	return s.buf[s.l:s.r]
}

// Terminated reports whether the last line scanned ended in '\n'
// (equivalently, whether it was NOT the trailing partial line).
func (s *Scanner) Terminated() bool {
	return s.r > s.l && s.buf[s.r-1] == '\n'
}
