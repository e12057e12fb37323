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

package transaction

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/resp"
)

type fakePipeliner struct {
	calls [][]command.Command
	responses [][]*resp.Frame
}

func (f *fakePipeliner) Pipeline(ctx context.Context, cmds []command.Command) ([]*resp.Frame, error) {
	idx := len(f.calls)
	f.calls = append(f.calls, cmds)
	return f.responses[idx], nil
}

func simpleString(s string) *resp.Frame { return &resp.Frame{Type: resp.SimpleString, Bytes: []byte(s)} }
func integer(n int64) *resp.Frame { return &resp.Frame{Type: resp.Integer, Int: n} }
func bulkString(s string) *resp.Frame { return &resp.Frame{Type: resp.BulkString, Bytes: []byte(s)} }
func simpleError(s string) *resp.Frame { return &resp.Frame{Type: resp.Error, Bytes: []byte(s)} }

func TestExecReturnsResultsInOrder(t *testing.T) {
	conn := &fakePipeliner{
		responses: [][]*resp.Frame{
			{
				simpleString("OK"), // MULTI
				simpleString("QUEUED"), // SET
				simpleString("QUEUED"), // INCR
				simpleString("QUEUED"), // GET
				{ // EXEC
					Type: resp.Array,
					Elements: []resp.Frame{
						*simpleString("OK"),
						*integer(101),
						*bulkString("101"),
					},
				},
			},
		},
	}

	results, err := Exec(context.Background(), conn,
		command.Set("k", "100", command.SetOptions{}),
		command.Incr("k"),
		command.Get("k"),
	)
	require.NoError(t, err)
	require.Len(t, results, 3)
	assert.Equal(t, "OK", results[0].Text())
	assert.Equal(t, int64(101), results[1].Int)
	assert.Equal(t, "101", results[2].Text())

	require.Len(t, conn.calls, 1)
	assert.Len(t, conn.calls[0], 5) // MULTI + 3 cmds + EXEC
}

func TestExecSurfacesQueueingErrorsAndIssuesDiscard(t *testing.T) {
	conn := &fakePipeliner{
		responses: [][]*resp.Frame{
			{
				simpleString("OK"),
				simpleError("ERR wrong number of arguments"),
				simpleString("QUEUED"),
				{Type: resp.Error, Bytes: []byte("EXECABORT Transaction discarded")},
			},
			{simpleString("OK")}, // DISCARD
		},
	}

	_, err := Exec(context.Background(), conn,
		command.Get("k"),
		command.Get("k2"),
	)
	require.Error(t, err)
	var qerr *ErrorsError
	require.ErrorAs(t, err, &qerr)
	require.Len(t, qerr.Queueing, 1)
	assert.Equal(t, 0, qerr.Queueing[0].Index)

	require.Len(t, conn.calls, 2)
	assert.Len(t, conn.calls[1], 1)
	assert.Equal(t, "DISCARD", conn.calls[1][0].Name())
}

func TestExecSurfacesAbortedOnNullExec(t *testing.T) {
	conn := &fakePipeliner{
		responses: [][]*resp.Frame{
			{
				simpleString("OK"),
				simpleString("QUEUED"),
				{Type: resp.Array, IsNull: true},
			},
		},
	}

	_, err := Exec(context.Background(), conn, command.Set("w", "v2", command.SetOptions{}))
	assert.ErrorIs(t, err, ErrAborted)
}

func TestWatchSendsWatchCommand(t *testing.T) {
	conn := &fakePipeliner{responses: [][]*resp.Frame{{simpleString("OK")}}}
	err := Watch(context.Background(), conn, "w")
	require.NoError(t, err)
	require.Len(t, conn.calls, 1)
	assert.Equal(t, "WATCH", conn.calls[0][0].Name())
}
