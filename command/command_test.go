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
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/valkeygo/valkeygo/resp"
)

func encode(t *testing.T, c Command) string {
	t.Helper()
	e := resp.NewEncoder()
	c.Encode(e)
	return string(e.Bytes())
}

func TestGetEncode(t *testing.T) {
	got := encode(t, Get("foo"))
	assert.Equal(t, "*2\r\n$3\r\nGET\r\n$3\r\nfoo\r\n", got)
}

func TestSetEncodeWithEX(t *testing.T) {
	got := encode(t, Set("k", "v", SetOptions{EX: 30 * time.Second}))
	assert.Equal(t, "*5\r\n$3\r\nSET\r\n$1\r\nk\r\n$1\r\nv\r\n$2\r\nEX\r\n$2\r\n30\r\n", got)
}

func TestSetEncodeNXToken(t *testing.T) {
	c := Set("k", "v", SetOptions{NX: true})
	e := resp.NewEncoder()
	c.Encode(e)
	d := resp.NewDecoder()
	d.Feed(e.Bytes())
	f, err := d.Next()
	require.NoError(t, err)
	args, err := AsStringSlice(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"SET", "k", "v", "NX"}, args)
}

func TestDelEncode(t *testing.T) {
	got := encode(t, Del("a", "b", "c"))
	assert.Equal(t, "*4\r\n$3\r\nDEL\r\n$1\r\na\r\n$1\r\nb\r\n$1\r\nc\r\n", got)
}

func TestMGetKeys(t *testing.T) {
	c := MGet("a", "b")
	assert.Equal(t, []string{"a", "b"}, c.Keys())
	assert.True(t, c.ReadOnly())
}

func TestHelloEncodeWithAuth(t *testing.T) {
	c := Hello(3, "default", "secret", "myclient")
	e := resp.NewEncoder()
	c.Encode(e)
	d := resp.NewDecoder()
	d.Feed(e.Bytes())
	f, err := d.Next()
	require.NoError(t, err)
	args, err := AsStringSlice(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"HELLO", "3", "AUTH", "default", "secret", "SETNAME", "myclient"}, args)
}

func TestClientSetInfoName(t *testing.T) {
	c := ClientSetInfo("lib-name", "valkeygo")
	assert.Equal(t, "CLIENT SETINFO", c.Name())
	got := encode(t, c)
	assert.Equal(t, "*4\r\n$6\r\nCLIENT\r\n$7\r\nSETINFO\r\n$8\r\nlib-name\r\n$8\r\nvalkeygo\r\n", got)
}

func TestAsStringSimple(t *testing.T) {
	f := &resp.Frame{Type: resp.SimpleString, Bytes: []byte("OK")}
	s, err := AsString(f)
	require.NoError(t, err)
	assert.Equal(t, "OK", s)
}

func TestAsOptionalStringNull(t *testing.T) {
	f := &resp.Frame{Type: resp.BulkString, IsNull: true}
	s, ok, err := AsOptionalString(f)
	require.NoError(t, err)
	assert.False(t, ok)
	assert.Equal(t, "", s)
}

func TestAsOptionalStringPresent(t *testing.T) {
	f := &resp.Frame{Type: resp.BulkString, Bytes: []byte("hi")}
	s, ok, err := AsOptionalString(f)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "hi", s)
}

func TestAsInt64FromIntegerFrame(t *testing.T) {
	f := &resp.Frame{Type: resp.Integer, Int: 42}
	n, err := AsInt64(f)
	require.NoError(t, err)
	assert.Equal(t, int64(42), n)
}

func TestAsInt64FromBulkString(t *testing.T) {
	f := &resp.Frame{Type: resp.BulkString, Bytes: []byte("-17")}
	n, err := AsInt64(f)
	require.NoError(t, err)
	assert.Equal(t, int64(-17), n)
}

func TestAsDoubleFromDoubleFrame(t *testing.T) {
	f := &resp.Frame{Type: resp.Double, Double: 3.5}
	v, err := AsDouble(f)
	require.NoError(t, err)
	assert.Equal(t, 3.5, v)
}

func TestAsBoolFromIntegerFallback(t *testing.T) {
	f := &resp.Frame{Type: resp.Integer, Int: 1}
	v, err := AsBool(f)
	require.NoError(t, err)
	assert.True(t, v)
}

func TestAsOKRejectsOtherSimpleStrings(t *testing.T) {
	f := &resp.Frame{Type: resp.SimpleString, Bytes: []byte("PONG")}
	err := AsOK(f)
	require.Error(t, err)
}

func TestAsStringSliceHandlesSparseNulls(t *testing.T) {
	f := &resp.Frame{Type: resp.Array, Elements: []resp.Frame{
		{Type: resp.BulkString, Bytes: []byte("v1")},
		{Type: resp.BulkString, IsNull: true},
	}}
	got, err := AsStringSlice(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"v1", ""}, got)
}

func TestAsStringMapFromRESP3Map(t *testing.T) {
	f := &resp.Frame{Type: resp.Map, Elements: []resp.Frame{
		{Type: resp.SimpleString, Bytes: []byte("k1")}, {Type: resp.BulkString, Bytes: []byte("v1")},
		{Type: resp.SimpleString, Bytes: []byte("k2")}, {Type: resp.BulkString, Bytes: []byte("v2")},
	}}
	got, err := AsStringMap(f)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k1": "v1", "k2": "v2"}, got)
}

func TestAsStringMapFromRESP2FlatArrayFallback(t *testing.T) {
	f := &resp.Frame{Type: resp.Array, Elements: []resp.Frame{
		{Type: resp.BulkString, Bytes: []byte("k1")}, {Type: resp.BulkString, Bytes: []byte("v1")},
	}}
	got, err := AsStringMap(f)
	require.NoError(t, err)
	assert.Equal(t, map[string]string{"k1": "v1"}, got)
}

func TestAsErrorMismatchedTypeFails(t *testing.T) {
	f := &resp.Frame{Type: resp.Integer, Int: 1}
	_, err := AsString(f)
	require.Error(t, err)
	var uerr *UnexpectedTypeError
	require.ErrorAs(t, err, &uerr)
	assert.Equal(t, resp.BulkString, uerr.Expected)
	assert.Equal(t, resp.Integer, uerr.Received)
}

func TestParseErrorMoved(t *testing.T) {
	e := ParseError("MOVED 1234 127.0.0.1:6381")
	assert.Equal(t, ErrorMoved, e.Kind)
	assert.Equal(t, "127.0.0.1:6381", e.TargetAddr)
}

func TestParseErrorAsk(t *testing.T) {
	e := ParseError("ASK 1234 127.0.0.1:6381")
	assert.Equal(t, ErrorAsk, e.Kind)
	assert.Equal(t, "127.0.0.1:6381", e.TargetAddr)
}

func TestParseErrorLoading(t *testing.T) {
	e := ParseError("LOADING Redis is loading the dataset in memory")
	assert.Equal(t, ErrorLoading, e.Kind)
}

func TestParseErrorGenericFallback(t *testing.T) {
	e := ParseError("ERR unknown command")
	assert.Equal(t, ErrorGeneric, e.Kind)
}

func TestAsErrorPropagatesServerError(t *testing.T) {
	f := &resp.Frame{Type: resp.Error, Bytes: []byte("WRONGTYPE Operation against a key holding the wrong kind of value")}
	_, err := AsString(f)
	require.Error(t, err)
	var cmdErr *Error
	require.ErrorAs(t, err, &cmdErr)
	assert.Equal(t, ErrorWrongType, cmdErr.Kind)
}

func TestDecodeBLPopReplyTimeout(t *testing.T) {
	f := &resp.Frame{Type: resp.Array, IsNull: true}
	_, _, ok, err := DecodeBLPopReply(f)
	require.NoError(t, err)
	assert.False(t, ok)
}

func TestDecodeBLPopReplyValue(t *testing.T) {
	f := &resp.Frame{Type: resp.Array, Elements: []resp.Frame{
		{Type: resp.BulkString, Bytes: []byte("mylist")},
		{Type: resp.BulkString, Bytes: []byte("hello")},
	}}
	key, value, ok, err := DecodeBLPopReply(f)
	require.NoError(t, err)
	assert.True(t, ok)
	assert.Equal(t, "mylist", key)
	assert.Equal(t, "hello", value)
}

func TestDecodeRoleReplyPrimary(t *testing.T) {
	f := &resp.Frame{Type: resp.Array, Elements: []resp.Frame{
		{Type: resp.BulkString, Bytes: []byte("master")},
		{Type: resp.Integer, Int: 3129},
		{Type: resp.Array, Elements: nil},
	}}
	r, err := DecodeRoleReply(f)
	require.NoError(t, err)
	assert.Equal(t, "master", r.Role)
	assert.Equal(t, int64(3129), r.ReplOffset)
}

func TestDecodeRoleReplyPrimaryWithReplicas(t *testing.T) {
	f := &resp.Frame{Type: resp.Array, Elements: []resp.Frame{
		{Type: resp.BulkString, Bytes: []byte("master")},
		{Type: resp.Integer, Int: 3129},
		{Type: resp.Array, Elements: []resp.Frame{
			{Type: resp.Array, Elements: []resp.Frame{
				{Type: resp.BulkString, Bytes: []byte("127.0.0.1")},
				{Type: resp.BulkString, Bytes: []byte("6380")},
				{Type: resp.BulkString, Bytes: []byte("3129")},
			}},
		}},
	}}
	r, err := DecodeRoleReply(f)
	require.NoError(t, err)
	require.Len(t, r.Replicas, 1)
	assert.Equal(t, "127.0.0.1", r.Replicas[0].Host)
	assert.Equal(t, int64(6380), r.Replicas[0].Port)
}

func TestDecodeRoleReplyReplica(t *testing.T) {
	f := &resp.Frame{Type: resp.Array, Elements: []resp.Frame{
		{Type: resp.BulkString, Bytes: []byte("slave")},
		{Type: resp.BulkString, Bytes: []byte("127.0.0.1")},
		{Type: resp.Integer, Int: 6379},
		{Type: resp.BulkString, Bytes: []byte("connected")},
		{Type: resp.Integer, Int: 100},
	}}
	r, err := DecodeRoleReply(f)
	require.NoError(t, err)
	assert.Equal(t, "slave", r.Role)
	assert.Equal(t, "127.0.0.1", r.PrimaryHost)
	assert.Equal(t, int64(6379), r.PrimaryPort)
}

func TestScanEncodeWithOptions(t *testing.T) {
	c := Scan("0", ScanOptions{Match: "user:*", Count: 100})
	e := resp.NewEncoder()
	c.Encode(e)
	d := resp.NewDecoder()
	d.Feed(e.Bytes())
	f, err := d.Next()
	require.NoError(t, err)
	args, err := AsStringSlice(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"SCAN", "0", "MATCH", "user:*", "COUNT", "100"}, args)
}

func TestDecodeScanReply(t *testing.T) {
	f := &resp.Frame{Type: resp.Array, Elements: []resp.Frame{
		{Type: resp.BulkString, Bytes: []byte("12")},
		{Type: resp.Array, Elements: []resp.Frame{
			{Type: resp.BulkString, Bytes: []byte("k1")},
			{Type: resp.BulkString, Bytes: []byte("k2")},
		}},
	}}
	r, err := DecodeScanReply(f)
	require.NoError(t, err)
	assert.Equal(t, "12", r.Cursor)
	assert.Equal(t, []string{"k1", "k2"}, r.Keys)
}

func TestSubscribeIsBlocking(t *testing.T) {
	c := Subscribe("ch1", "ch2")
	assert.True(t, c.Blocking())
	got := encode(t, c)
	assert.Equal(t, "*3\r\n$9\r\nSUBSCRIBE\r\n$3\r\nch1\r\n$3\r\nch2\r\n", got)
}

func TestMultiExecEncode(t *testing.T) {
	assert.Equal(t, "*1\r\n$5\r\nMULTI\r\n", encode(t, Multi()))
	assert.Equal(t, "*1\r\n$4\r\nEXEC\r\n", encode(t, Exec()))
}

func TestWatchEncode(t *testing.T) {
	got := encode(t, Watch("a", "b"))
	assert.Equal(t, "*3\r\n$5\r\nWATCH\r\n$1\r\na\r\n$1\r\nb\r\n", got)
}

func TestZRangeWithScoresToken(t *testing.T) {
	c := ZRange("zset", 0, -1, true)
	e := resp.NewEncoder()
	c.Encode(e)
	d := resp.NewDecoder()
	d.Feed(e.Bytes())
	f, err := d.Next()
	require.NoError(t, err)
	args, err := AsStringSlice(f)
	require.NoError(t, err)
	assert.Equal(t, []string{"ZRANGE", "zset", "0", "-1", "WITHSCORES"}, args)
}
