// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

package main

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litter-getter/internal/pubmed"
)

var connectCmd = &cobra.Command{
	Use:   "connect",
	Short: "Set the tool name and contact email sent to NCBI",
	Long: `Connect validates a tool name and contact email and writes them to the
config file, so later commands identify themselves to E-utilities. The
values are checked locally; no request is sent.`,
	RunE: runConnect,
}

func runConnect(cmd *cobra.Command, args []string) error {
	tool, _ := cmd.Flags().GetString("tool")
	email, _ := cmd.Flags().GetString("email")

	c := pubmed.New(cfg.PubMed, pubmed.WithLogger(logger))
	if err := c.Connect(tool, email); err != nil {
		return err
	}
	s := c.Settings()

	path, _ := cmd.Flags().GetString("write")
	if path == "" {
		path = viper.ConfigFileUsed()
	}
	if path == "" {
		path = "litter-getter.yaml"
	}

	viper.Set("pubmed.tool", s.Tool)
	viper.Set("pubmed.email", s.Email)
	if err := viper.WriteConfigAs(path); err != nil {
		return fmt.Errorf("writing config %s: %w", path, err)
	}

	fmt.Fprintf(cmd.OutOrStdout(), "identification saved to %s (tool=%s, email=%s)\n", path, s.Tool, s.Email)
	return nil
}

func init() {
	connectCmd.Flags().String("tool", "", "registered tool name (required)")
	connectCmd.Flags().String("email", "", "contact email address (required)")
	connectCmd.Flags().String("write", "", "config file to write (default: the loaded config or ./litter-getter.yaml)")
	connectCmd.MarkFlagRequired("tool")
	connectCmd.MarkFlagRequired("email")

	rootCmd.AddCommand(connectCmd)
}
