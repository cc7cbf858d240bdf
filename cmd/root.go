// SPDX-FileCopyrightText: 2025 Deutsche Telekom IT GmbH
//
// SPDX-License-Identifier: Apache-2.0

package cmd

import (
	"errors"
	"fmt"
	"os"
	"strings"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

// NewCmdRoot creates a new root command tracing the route to a host
func NewCmdRoot(version string) *cobra.Command {
	var cfgFile string
	v := viper.NewWithOptions(viper.ExperimentalBindStruct())

	rootCmd := &cobra.Command{
		Use:   "tcptrace [flags] <ipv4-or-hostname>",
		Short: "tcptrace, the TCP SYN traceroute",
		Long: "tcptrace discovers the routers between this host and a destination.\n" +
			"It sends TCP SYN probes with increasing TTLs to a port of the destination\n" +
			"and reads the ICMP time exceeded messages of the routers dropping them.\n" +
			"Reading ICMP requires the NET_RAW capability.",
		Example: "  tcptrace example.com\n" +
			"  tcptrace --port 443 --output json 93.184.216.34",
		Version:       version,
		Args:          cobra.ExactArgs(1),
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return initConfig(v, cfgFile)
		},
		RunE: runTrace(v, version),
	}

	rootCmd.PersistentFlags().StringVarP(&cfgFile, "config", "c", "", "config file (default is $HOME/.tcptrace.yaml)")
	registerTraceFlags(rootCmd.Flags())
	if err := bindFlags(v, rootCmd.Flags()); err != nil {
		panic(err)
	}

	return rootCmd
}

// Execute adds all child commands to the root command
// and executes the cmd tree
func Execute(version string) {
	cmd := BuildCmd(version)

	if err := cmd.Execute(); err != nil {
		_, _ = fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func BuildCmd(version string) *cobra.Command {
	cmd := NewCmdRoot(version)
	cmd.AddCommand(NewCmdSchema())
	return cmd
}

func initConfig(v *viper.Viper, cfgFile string) error {
	if cfgFile != "" {
		// Use config file from the flag
		v.SetConfigFile(cfgFile)
	} else {
		// Find home directory
		home, err := os.UserHomeDir()
		if err != nil {
			return fmt.Errorf("failed to find home directory: %w", err)
		}

		// Search config in home directory with name ".tcptrace" (without an extension)
		v.AddConfigPath(home)
		v.SetConfigType("yaml")
		v.SetConfigName(".tcptrace")
	}

	v.SetEnvPrefix("tcptrace")
	dotreplacer := strings.NewReplacer(".", "_")
	v.SetEnvKeyReplacer(dotreplacer)
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if errors.As(err, &notFound) && cfgFile == "" {
			return nil
		}
		return fmt.Errorf("failed to read config file: %w", err)
	}
	// stdout carries the trace, the config file in use goes to stderr
	_, _ = fmt.Fprintln(os.Stderr, "Using config file:", v.ConfigFileUsed())
	return nil
}
