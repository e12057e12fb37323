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

// Package genvalkey parses a YAML command catalogue and generates the
// Go source implementing command.Command for each entry, the same
// shape as the hand-written families in the
// command package (they are this generator's golden output). Grounded
// on protocol/predis/command.go's embedded command.list: that file is
// a flat list baked in at build time via //go:embed; the catalogue
// here plays the same "declarative command inventory" role, but is
// compiled ahead of time by this generator instead of read at init.
package genvalkey

import (
	"fmt"

	"github.com/pkg/errors"
	"gopkg.in/yaml.v3"
)

// ArgKind names the shape an Argument's wire encoding follows,
// matching command.Builder's vocabulary (Arg/Token/TokenArg/Multiple/
// Block).
type ArgKind string

const (
	// ArgPositional is a plain required argument (Builder.Arg).
	ArgPositional ArgKind = "positional"
	// ArgToken is a pure-token flag present only if a bool field is
	// true (Builder.Token).
	ArgToken ArgKind = "token"
	// ArgTokenArg is a flag immediately followed by a value, present
	// only if non-empty (Builder.TokenArg).
	ArgTokenArg ArgKind = "tokenArg"
	// ArgMultiple is a variadic string slice argument (Builder.Multiple).
	ArgMultiple ArgKind = "multiple"
)

// Argument is one entry in a Command's argument list, in wire order.
type Argument struct {
	// Name is the Go field/parameter name (lowerCamel in generated
	// code).
	Name string `yaml:"name"`
	// Kind selects the Builder method used to encode this argument.
	Kind ArgKind `yaml:"kind"`
	// Flag is the literal token for ArgToken/ArgTokenArg (e.g. "NX").
	Flag string `yaml:"flag,omitempty"`
	// IsKey marks a positional argument that should also be reported
	// from Keys(), for command routing.
	IsKey bool `yaml:"isKey,omitempty"`
}

// Entry describes one command the generator emits a Command
// implementation for.
type Entry struct {
	// Name is the command's wire name, e.g. "GET" or "CLIENT SETNAME"
	// (a space splits it into NewBuilder's name and sub-command form).
	Name string `yaml:"name"`
	// GoName is the exported constructor/type name, e.g. "Get" yields
	// func Get(...) *GetCmd.
	GoName string `yaml:"goName"`
	// ReadOnly reports whether the command may be served by a replica.
	ReadOnly bool `yaml:"readOnly"`
	// Blocking reports whether the command may block server-side.
	Blocking bool `yaml:"blocking"`
	// Decoder names the command package decoder function used to
	// interpret this command's reply (e.g. "AsInt64"), recorded in the
	// doc comment of the generated constructor; the generator does not emit a
	// decode method body, since reply shapes vary per command family
	// more than this catalogue schema can cheaply express.
	Decoder string `yaml:"decoder,omitempty"`
	// Args lists the command's arguments in wire order.
	Args []Argument `yaml:"args"`
}

// Catalogue is the parsed command inventory.
type Catalogue struct {
	Commands []Entry `yaml:"commands"`
}

// Parse decodes a YAML catalogue document.
func Parse(data []byte) (*Catalogue, error) {
	var cat Catalogue
	if err := yaml.Unmarshal(data, &cat); err != nil {
		return nil, errors.Wrap(err, "genvalkey: parse catalogue")
	}
	for i, e := range cat.Commands {
		if e.Name == "" {
			return nil, errors.Errorf("genvalkey: commands[%d]: name is required", i)
		}
		if e.GoName == "" {
			return nil, errors.Errorf("genvalkey: commands[%d] (%s): goName is required", i, e.Name)
		}
		for j, a := range e.Args {
			switch a.Kind {
			case ArgPositional, ArgToken, ArgTokenArg, ArgMultiple:
			default:
				return nil, errors.Errorf("genvalkey: %s.args[%d]: unknown kind %q", e.GoName, j, a.Kind)
			}
			if (a.Kind == ArgToken || a.Kind == ArgTokenArg) && a.Flag == "" {
				return nil, fmt.Errorf("genvalkey: %s.args[%d]: kind %s requires flag", e.GoName, j, a.Kind)
			}
		}
	}
	return &cat, nil
}
