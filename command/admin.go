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

import "github.com/valkeygo/valkeygo/resp"

// Eval builds an EVAL command; its reply shape depends on the script
// and is left to the caller to decode with whichever Decode* fits.
func Eval(script string, keys []string, args ...string) *EvalCmd {
	return &EvalCmd{script: script, keys: keys, args: args}
}

// EvalCmd is the EVAL command.
type EvalCmd struct {
	script string
	keys []string
	args []string
}

func (c *EvalCmd) Name() string { return "EVAL" }
func (c *EvalCmd) Keys() []string { return c.keys }
func (c *EvalCmd) ReadOnly() bool { return false }
func (c *EvalCmd) Blocking() bool { return false }
func (c *EvalCmd) Encode(e *resp.Encoder) {
	NewBuilder("EVAL").Arg(c.script).MultipleWithCount(c.keys).Multiple(c.args).Encode(e)
}

// EvalSha builds an EVALSHA command, running a script already cached on
// the server by its SHA1 digest.
func EvalSha(sha1 string, keys []string, args ...string) *EvalShaCmd {
	return &EvalShaCmd{sha1: sha1, keys: keys, args: args}
}

// EvalShaCmd is the EVALSHA command.
type EvalShaCmd struct {
	sha1 string
	keys []string
	args []string
}

func (c *EvalShaCmd) Name() string { return "EVALSHA" }
func (c *EvalShaCmd) Keys() []string { return c.keys }
func (c *EvalShaCmd) ReadOnly() bool { return false }
func (c *EvalShaCmd) Blocking() bool { return false }
func (c *EvalShaCmd) Encode(e *resp.Encoder) {
	NewBuilder("EVALSHA").Arg(c.sha1).MultipleWithCount(c.keys).Multiple(c.args).Encode(e)
}

// ScriptLoad builds a SCRIPT LOAD command; its reply decodes with
// AsString, returning the script's SHA1 digest for later EvalSha calls.
func ScriptLoad(script string) *ScriptLoadCmd {
	return &ScriptLoadCmd{script: script}
}

// ScriptLoadCmd is the SCRIPT LOAD command.
type ScriptLoadCmd struct {
	script string
}

func (c *ScriptLoadCmd) Name() string { return "SCRIPT LOAD" }
func (c *ScriptLoadCmd) Keys() []string { return nil }
func (c *ScriptLoadCmd) ReadOnly() bool { return false }
func (c *ScriptLoadCmd) Blocking() bool { return false }
func (c *ScriptLoadCmd) Encode(e *resp.Encoder) {
	NewBuilder("SCRIPT", "LOAD").Arg(c.script).Encode(e)
}

// ConfigGet builds a CONFIG GET command over one or more glob patterns;
// its reply decodes with AsStringMap.
func ConfigGet(patterns ...string) *ConfigGetCmd {
	return &ConfigGetCmd{patterns: patterns}
}

// ConfigGetCmd is the CONFIG GET command.
type ConfigGetCmd struct {
	patterns []string
}

func (c *ConfigGetCmd) Name() string { return "CONFIG GET" }
func (c *ConfigGetCmd) Keys() []string { return nil }
func (c *ConfigGetCmd) ReadOnly() bool { return true }
func (c *ConfigGetCmd) Blocking() bool { return false }
func (c *ConfigGetCmd) Encode(e *resp.Encoder) {
	NewBuilder("CONFIG", "GET").Multiple(c.patterns).Encode(e)
}

// ConfigSet builds a CONFIG SET command from a flat parameter/value
// list; its reply decodes with AsOK.
func ConfigSet(parameterValues ...string) *ConfigSetCmd {
	return &ConfigSetCmd{parameterValues: parameterValues}
}

// ConfigSetCmd is the CONFIG SET command.
type ConfigSetCmd struct {
	parameterValues []string
}

func (c *ConfigSetCmd) Name() string { return "CONFIG SET" }
func (c *ConfigSetCmd) Keys() []string { return nil }
func (c *ConfigSetCmd) ReadOnly() bool { return false }
func (c *ConfigSetCmd) Blocking() bool { return false }
func (c *ConfigSetCmd) Encode(e *resp.Encoder) {
	NewBuilder("CONFIG", "SET").Multiple(c.parameterValues).Encode(e)
}

// DBSize builds a DBSIZE command; its reply decodes with AsInt64.
func DBSize() *DBSizeCmd { return &DBSizeCmd{} }

// DBSizeCmd is the DBSIZE command.
type DBSizeCmd struct{}

func (c *DBSizeCmd) Name() string { return "DBSIZE" }
func (c *DBSizeCmd) Keys() []string { return nil }
func (c *DBSizeCmd) ReadOnly() bool { return true }
func (c *DBSizeCmd) Blocking() bool { return false }
func (c *DBSizeCmd) Encode(e *resp.Encoder) { NewBuilder("DBSIZE").Encode(e) }

// FlushDB builds a FLUSHDB command; its reply decodes with AsOK.
func FlushDB(async bool) *FlushDBCmd { return &FlushDBCmd{async: async} }

// FlushDBCmd is the FLUSHDB command.
type FlushDBCmd struct {
	async bool
}

func (c *FlushDBCmd) Name() string { return "FLUSHDB" }
func (c *FlushDBCmd) Keys() []string { return nil }
func (c *FlushDBCmd) ReadOnly() bool { return false }
func (c *FlushDBCmd) Blocking() bool { return false }
func (c *FlushDBCmd) Encode(e *resp.Encoder) {
	b := NewBuilder("FLUSHDB")
	if c.async {
		b.Token("ASYNC", true)
	}
	b.Encode(e)
}

// Info builds an INFO command; its reply decodes with AsString (a
// human-readable, colon-delimited section format callers parse
// themselves).
func Info(sections ...string) *InfoCmd {
	return &InfoCmd{sections: sections}
}

// InfoCmd is the INFO command.
type InfoCmd struct {
	sections []string
}

func (c *InfoCmd) Name() string { return "INFO" }
func (c *InfoCmd) Keys() []string { return nil }
func (c *InfoCmd) ReadOnly() bool { return true }
func (c *InfoCmd) Blocking() bool { return false }
func (c *InfoCmd) Encode(e *resp.Encoder) {
	NewBuilder("INFO").Multiple(c.sections).Encode(e)
}
