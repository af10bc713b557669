// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the litter-getter CLI, a PubMed
// E-utilities client that searches, fetches and tracks changes in result
// sets over time.
package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/litter-getter/internal/observability"
	"github.com/pdiddy/litter-getter/internal/secrets"
	"github.com/pdiddy/litter-getter/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// Process-wide state built in PersistentPreRunE.
var (
	cfg           types.Config
	logger        = zerolog.Nop()
	metrics       *observability.Metrics
	loadedSecrets map[string]string
)

// rootCmd is the base command for the litter-getter CLI.
var rootCmd = &cobra.Command{
	Use:   "litter-getter",
	Short: "Search and fetch PubMed records through NCBI E-utilities",
	Long: `litter-getter runs PubMed searches, fetches the matching records as
citation records, and reports which PMIDs were added or removed since a
previous run of the same search.

NCBI asks every E-utilities caller to identify itself with a tool name and
a contact email. Set them once with "litter-getter connect", in
litter-getter.yaml, in LITTER_GETTER_PUBMED_TOOL / LITTER_GETTER_PUBMED_EMAIL,
or in .secrets/ncbi-tool and .secrets/ncbi-email.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := viper.Unmarshal(&cfg); err != nil {
			return fmt.Errorf("decoding configuration: %w", err)
		}

		logger = observability.NewLogger(cfg.Logging, cmd.ErrOrStderr())
		if used := viper.ConfigFileUsed(); used != "" {
			logger.Debug().Str("file", used).Msg("using config file")
		}

		secretsDir, _ := cmd.Flags().GetString("secrets-dir")
		s, err := secrets.Load(secretsDir, logger)
		if err != nil {
			return err
		}
		loadedSecrets = s
		if len(s) > 0 {
			keys := make([]string, 0, len(s))
			for k := range s {
				keys = append(keys, k)
			}
			sort.Strings(keys)
			logger.Debug().Strs("keys", keys).Msg("loaded secrets")
		}

		if cfg.Metrics.Textfile != "" {
			metrics = observability.NewMetrics()
		}
		return nil
	},
	PersistentPostRunE: func(cmd *cobra.Command, args []string) error {
		return metrics.WriteTextfile(cfg.Metrics.Textfile)
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	pf := rootCmd.PersistentFlags()
	pf.String("config", "", "config file (default: ./litter-getter.yaml or ~/.config/litter-getter/litter-getter.yaml)")
	pf.String("secrets-dir", secrets.DefaultDir, "directory holding ncbi-tool and ncbi-email files")
	pf.String("log-level", "info", "log level: trace, debug, info, warn, error")
	pf.String("log-format", "console", "log format: console or json")
	pf.String("db", "", "snapshot database path (default: litter-getter.db)")
	pf.String("metrics-file", "", "write Prometheus counters to this textfile on exit")

	viper.BindPFlag("logging.level", pf.Lookup("log-level"))
	viper.BindPFlag("logging.format", pf.Lookup("log-format"))
	viper.BindPFlag("store.path", pf.Lookup("db"))
	viper.BindPFlag("metrics.textfile", pf.Lookup("metrics-file"))
}

func setDefaults() {
	viper.SetDefault("pubmed.base_url", "https://eutils.ncbi.nlm.nih.gov/entrez/eutils")
	viper.SetDefault("pubmed.timeout", "60s")
	viper.SetDefault("pubmed.max_retries", 5)
	viper.SetDefault("pubmed.search_page_size", 5000)
	viper.SetDefault("pubmed.fetch_page_size", 1000)
	viper.SetDefault("pubmed.tool", "")
	viper.SetDefault("pubmed.email", "")
	viper.SetDefault("store.path", "litter-getter.db")
}

func initConfig() {
	setDefaults()

	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("litter-getter")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "litter-getter"))
		}
	}

	viper.SetEnvPrefix("LITTER_GETTER")
	viper.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err != nil {
		var notFound viper.ConfigFileNotFoundError
		if cfgFile != "" || !errors.As(err, &notFound) {
			fmt.Fprintln(os.Stderr, "warning: reading config:", err)
		}
	}
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
