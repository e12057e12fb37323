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
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestEvalEncode(t *testing.T) {
	got := encode(t, Eval("return 1", []string{"k1", "k2"}, "a1"))
	assert.Equal(t, "*6\r\n$4\r\nEVAL\r\n$8\r\nreturn 1\r\n$1\r\n2\r\n$2\r\nk1\r\n$2\r\nk2\r\n$2\r\na1\r\n", got)
}

func TestEvalShaEncode(t *testing.T) {
	got := encode(t, EvalSha("abc123", nil))
	assert.Equal(t, "*3\r\n$7\r\nEVALSHA\r\n$6\r\nabc123\r\n$1\r\n0\r\n", got)
}

func TestScriptLoadEncode(t *testing.T) {
	got := encode(t, ScriptLoad("return 1"))
	assert.Equal(t, "*3\r\n$6\r\nSCRIPT\r\n$4\r\nLOAD\r\n$8\r\nreturn 1\r\n", got)
}

func TestConfigGetEncode(t *testing.T) {
	got := encode(t, ConfigGet("maxmemory*"))
	assert.Equal(t, "*3\r\n$6\r\nCONFIG\r\n$3\r\nGET\r\n$10\r\nmaxmemory*\r\n", got)
}

func TestConfigSetEncode(t *testing.T) {
	got := encode(t, ConfigSet("maxmemory", "100mb"))
	assert.Equal(t, "*4\r\n$6\r\nCONFIG\r\n$3\r\nSET\r\n$9\r\nmaxmemory\r\n$5\r\n100mb\r\n", got)
}

func TestDBSizeEncode(t *testing.T) {
	got := encode(t, DBSize())
	assert.Equal(t, "*1\r\n$6\r\nDBSIZE\r\n", got)
}

func TestFlushDBEncodeAsync(t *testing.T) {
	got := encode(t, FlushDB(true))
	assert.Equal(t, "*2\r\n$7\r\nFLUSHDB\r\n$5\r\nASYNC\r\n", got)
}

func TestInfoEncode(t *testing.T) {
	got := encode(t, Info("server", "replication"))
	assert.Equal(t, "*3\r\n$4\r\nINFO\r\n$6\r\nserver\r\n$11\r\nreplication\r\n", got)
}
