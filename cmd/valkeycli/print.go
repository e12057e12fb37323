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

package main

import (
	"fmt"
	"strings"

	"github.com/valkeygo/valkeygo/resp"
)

// printFrame renders a reply frame redis-cli style: scalars on one
// line, aggregates as an indented numbered list.
func printFrame(f *resp.Frame, depth int) {
	indent := strings.Repeat(" ", depth)
	if f.IsNull {
		fmt.Println(indent + "(nil)")
		return
	}

	switch f.Type {
	case resp.SimpleString, resp.BulkString, resp.VerbatimString:
		fmt.Println(indent + `"` + f.Text() + `"`)
	case resp.Error, resp.BulkError:
		fmt.Println(indent + "(error) " + f.Text())
	case resp.Integer:
		fmt.Printf("%s(integer) %d\n", indent, f.Int)
	case resp.Double:
		fmt.Printf("%s(double) %g\n", indent, f.Double)
	case resp.Boolean:
		fmt.Printf("%s(boolean) %v\n", indent, f.Bool)
	case resp.Null:
		fmt.Println(indent + "(nil)")
	case resp.BigNumber:
		fmt.Println(indent + "(big number) " + f.Text())
	case resp.Array, resp.Set, resp.Push:
		if len(f.Elements) == 0 {
			fmt.Println(indent + "(empty array)")
			return
		}
		for i := range f.Elements {
			fmt.Printf("%s%d) ", indent, i+1)
			printFrame(&f.Elements[i], 0)
		}
	case resp.Map, resp.Attribute:
		i := 1
		for k, v := range f.Pairs() {
			fmt.Printf("%s%d) ", indent, i)
			printFrame(&k, 0)
			fmt.Printf("%s ", indent)
			printFrame(&v, 0)
			i++
		}
	default:
		fmt.Printf("%s%v\n", indent, f.Bytes)
	}
}
