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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEncoderCommand(t *testing.T) {
	e := NewEncoder()
	e.Command("SET", "foo", "Hello")
	assert.Equal(t, "*3\r\n$3\r\nSET\r\n$3\r\nfoo\r\n$5\r\nHello\r\n", string(e.Bytes()))
}

func TestEncoderBulkSinksAreByteIdentical(t *testing.T) {
	owned := "hello world"
	sub := ("xxhello worldxx")[2:13]
	asBytes := []byte("hello world")

	e1 := NewEncoder()
	e1.BulkString(owned)

	e2 := NewEncoder()
	e2.BulkString(sub)

	e3 := NewEncoder()
	e3.BulkBytes(asBytes)

	assert.Equal(t, e1.Bytes(), e2.Bytes())
	assert.Equal(t, e1.Bytes(), e3.Bytes())
}

func TestEncoderNoInlineForm(t *testing.T) {
	e := NewEncoder()
	e.Command("PING")
	b := e.Bytes()
	assert.Equal(t, byte('*'), b[0], "commands must be arrays, never the RESP2 inline form")
}

func TestEncoderReset(t *testing.T) {
	e := NewEncoder()
	e.Command("PING")
	e.Reset()
	assert.Len(t, e.Bytes(), 0)
	e.Command("PONG")
	assert.Equal(t, "*1\r\n$4\r\nPONG\r\n", string(e.Bytes()))
}
