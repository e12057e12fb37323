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
	"os"

	"github.com/spf13/cobra"

	"github.com/valkeygo/valkeygo/internal/genvalkey"
)

var (
	cataloguePath string
	outputPath string
	packageName string
)

var generateCmd = &cobra.Command{
	Use: "generate",
	Short: "Generate a Go source file from a command catalogue",
	Example: " valkeygen generate --catalogue catalogue.yaml --package command --out commands_generated.go",
	RunE: func(cmd *cobra.Command, args []string) error {
		data, err := os.ReadFile(cataloguePath)
		if err != nil {
			return fmt.Errorf("read catalogue: %w", err)
		}

		cat, err := genvalkey.Parse(data)
		if err != nil {
			return err
		}

		out := os.Stdout
		if outputPath != "" {
			f, err := os.Create(outputPath)
			if err != nil {
				return fmt.Errorf("create output: %w", err)
			}
			defer f.Close()
			return genvalkey.Generate(f, packageName, cat)
		}
		return genvalkey.Generate(out, packageName, cat)
	},
}

func init() {
	generateCmd.Flags().StringVar(&cataloguePath, "catalogue", "catalogue.yaml", "Path to the YAML command catalogue")
	generateCmd.Flags().StringVar(&outputPath, "out", "", "Output file path (defaults to stdout)")
	generateCmd.Flags().StringVar(&packageName, "package", "command", "Generated file's package name")
	rootCmd.AddCommand(generateCmd)
}
