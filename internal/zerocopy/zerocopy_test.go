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

package zerocopy

import (
	"bytes"
	"io"
	"testing"

	"github.com/stretchr/testify/assert"
)

const blockSize = 4096

func TestBuffer(t *testing.T) {
	t.Run("PeekAdvance", func(t *testing.T) {
		n := 64
		buf := NewBuffer(bytes.Repeat([]byte("a"), n*blockSize))

		for i := 0; i < n; i++ {
			b, err := buf.Peek(blockSize)
			assert.NoError(t, err)
			assert.Len(t, b, blockSize)
			buf.Advance(blockSize)
		}
		_, err := buf.Peek(1)
		assert.Equal(t, io.EOF, err)
	})

	t.Run("Compact", func(t *testing.T) {
		buf := NewBuffer([]byte("helloworld"))
		buf.Advance(5)
		assert.Equal(t, 5, buf.Len())
		buf.Compact()
		b, err := buf.Peek(5)
		assert.NoError(t, err)
		assert.Equal(t, []byte("world"), b)
	})

	t.Run("WriteAppends", func(t *testing.T) {
		buf := NewBuffer(nil)
		buf.Write([]byte("abc"))
		buf.Write([]byte("def"))
		b, err := buf.Peek(6)
		assert.NoError(t, err)
		assert.Equal(t, []byte("abcdef"), b)
	})
}

func BenchmarkBuffer(b *testing.B) {
	b.ReportAllocs()
	b.RunParallel(func(pb *testing.PB) {
		for pb.Next() {
			buf := NewBuffer(nil)
			buf.Write(bytes.Repeat([]byte("a"), 65535))
			for buf.Len() > 0 {
				n := blockSize
				if n > buf.Len() {
					n = buf.Len()
				}
				data, err := buf.Peek(n)
				if err != nil {
					break
				}
				buf.Advance(len(data))
			}
		}
	})
}
