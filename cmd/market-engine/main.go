// Copyright Mesh Intelligence Inc., 2026. All rights reserved.

// Package main is the entry point for the market-engine CLI.
package main

import (
	"fmt"
	"os"
	"path/filepath"
	"sort"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/pdiddy/market-engine/internal/secrets"
	"github.com/pdiddy/market-engine/pkg/types"
)

// version is set at build time via ldflags.
var version = "dev"

// loadedSecrets holds API keys loaded from .secrets/ at startup.
var loadedSecrets map[string]string

// secretDefault returns fallback when set, otherwise the secret value for key.
func secretDefault(key, fallback string) string {
	if fallback != "" {
		return fallback
	}
	if v, ok := loadedSecrets[key]; ok {
		return v
	}
	return ""
}

// rootCmd is the base command for the market-engine CLI.
var rootCmd = &cobra.Command{
	Use:   "market-engine",
	Short: "Staged market research for product ideas",
	Long: `market-engine runs a product idea through a staged research pipeline:
complaint discovery, evidence verification, competitor profiling, persona
synthesis, feature prioritization, and a financial audit, ending in a
compiled research report. Every verdict along the way is computed from
recorded evidence, so runs are explainable and reproducible.

Completed runs are archived and can be listed, inspected, and re-rendered
with the runs subcommand.`,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		// .env is optional; absence is the normal case in production.
		_ = godotenv.Load()

		s, err := secrets.Load(".secrets/")
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
			fmt.Fprintf(os.Stderr, "Loaded secrets: %v\n", keys)
		}
		return nil
	},
}

func init() {
	cobra.OnInitialize(initConfig)

	rootCmd.PersistentFlags().String("config", "", "config file (default: ./market-engine.yaml or ~/.config/market-engine/config.yaml)")
}

func initConfig() {
	cfgFile, _ := rootCmd.PersistentFlags().GetString("config")
	if cfgFile != "" {
		viper.SetConfigFile(cfgFile)
	} else {
		viper.SetConfigName("market-engine")
		viper.SetConfigType("yaml")
		viper.AddConfigPath(".")

		home, err := os.UserHomeDir()
		if err == nil {
			viper.AddConfigPath(filepath.Join(home, ".config", "market-engine"))
		}
	}

	viper.SetEnvPrefix("MARKET_ENGINE")
	viper.AutomaticEnv()

	if err := viper.ReadInConfig(); err == nil {
		fmt.Fprintln(os.Stderr, "Using config file:", viper.ConfigFileUsed())
	}
}

// buildConfig assembles the pipeline configuration: defaults first, then the
// config file and environment, then secrets for anything still unset.
func buildConfig() types.PipelineConfig {
	cfg := types.DefaultPipelineConfig()

	if v := viper.GetString("search.api_key"); v != "" {
		cfg.Search.APIKey = v
	}
	if v := viper.GetInt("search.max_results"); v > 0 {
		cfg.Search.MaxResults = v
	}
	if v := viper.GetString("genai.api_key"); v != "" {
		cfg.GenAI.APIKey = v
	}
	if v := viper.GetString("genai.model"); v != "" {
		cfg.GenAI.Model = v
	}
	if v := viper.GetString("genai.base_url"); v != "" {
		cfg.GenAI.BaseURL = v
	}
	if v := viper.GetString("report.output_dir"); v != "" {
		cfg.Report.OutputDir = v
	}
	if v := viper.GetString("report.format"); v != "" {
		cfg.Report.Format = types.ReportFormat(v)
	}
	if v := viper.GetString("store.data_dir"); v != "" {
		cfg.Store.DataDir = v
	}
	if v := viper.GetInt("workflow.max_verification_rounds"); v > 0 {
		cfg.Workflow.MaxVerificationRounds = v
	}
	if v := viper.GetInt("workflow.max_viability_rounds"); v > 0 {
		cfg.Workflow.MaxViabilityRounds = v
	}

	cfg.Search.APIKey = secretDefault("tavily-api-key", cfg.Search.APIKey)
	cfg.GenAI.APIKey = secretDefault("genai-api-key", cfg.GenAI.APIKey)
	return cfg
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
