// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"encoding/json"
	"fmt"

	"github.com/spf13/cobra"
	"github.com/telekom/tcptrace/internal/output"
	"gopkg.in/yaml.v3"
)

// NewCmdSchema creates a command printing the schema of the structured output
func NewCmdSchema() *cobra.Command {
	var asYAML bool

	cmd := &cobra.Command{
		Use:   "schema",
		Short: "Print the OpenAPI schema of the json and yaml output records",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			ref, err := output.Schema()
			if err != nil {
				return err
			}

			var b []byte
			if asYAML {
				b, err = yaml.Marshal(ref.Value)
			} else {
				b, err = json.MarshalIndent(ref.Value, "", "  ")
			}
			if err != nil {
				return fmt.Errorf("failed to encode schema: %w", err)
			}
			_, err = fmt.Fprintln(cmd.OutOrStdout(), string(b))
			return err
		},
	}
	cmd.Flags().BoolVar(&asYAML, "yaml", false, "print the schema as yaml")

	return cmd
}
