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

// Command valkeycli is a minimal interactive REPL built on the public
// client package: not part of the library's contract, just a consumer
// demonstrating the wiring, the role cmd/agent.go plays for packetd's
// own controller package.
package main

import (
	"bufio"
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"

	"github.com/valkeygo/valkeygo/client"
	"github.com/valkeygo/valkeygo/command"
	"github.com/valkeygo/valkeygo/confopt"
)

var addr string

var rootCmd = &cobra.Command{
	Use: "valkeycli",
	Short: "Interactive REPL for a valkeygo client",
	RunE: func(cmd *cobra.Command, args []string) error {
		return runRepl(cmd.Context(), addr)
	},
	Example: " valkeycli --addr 127.0.0.1:6379",
}

func init() {
	rootCmd.Flags().StringVar(&addr, "addr", "127.0.0.1:6379", "Primary node address")
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func runRepl(ctx context.Context, addr string) error {
	c, err := client.New(ctx, addr, confopt.Default())
	if err != nil {
		return fmt.Errorf("connect to %s: %w", addr, err)
	}
	defer c.Close()

	scanner := bufio.NewScanner(os.Stdin)
	fmt.Printf("connected to %s, Ctrl-D to exit\n", addr)
	for {
		fmt.Print("> ")
		if !scanner.Scan() {
			return scanner.Err()
		}
		line := strings.TrimSpace(scanner.Text())
		if line == "" {
			continue
		}

		fields := strings.Fields(line)
		cmd := command.Raw(strings.ToUpper(fields[0]), fields[1:]...)

		frame, err := c.Do(ctx, cmd)
		if err != nil {
			fmt.Println("(error)", err)
			continue
		}
		printFrame(frame, 0)
	}
}
