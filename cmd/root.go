// Package cmd holds the command line interface of the screening server.
package cmd

import (
	"fmt"

	"github.com/spf13/cobra"
	"github.com/spf13/viper"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/config"
	"github.com/tashasho/MCP-Server-BNV/logger"
)

const (
	app = "mcp-server"
)

var (
	// Used for flags.
	cfgFile string

	rootCmd = &cobra.Command{
		Use:          app,
		Short:        "mcp-server scores startups, crawls incubator portfolios and triages deal-flow email",
		SilenceUsage: true,
	}
)

// Execute executes the root command.
func Execute() error {
	return rootCmd.Execute()
}

func init() {
	rootCmd.PersistentFlags().StringVar(&cfgFile, "config", "", "a config file (default is "+config.FileName+" in current directory)")
	rootCmd.PersistentFlags().BoolP("debug", "d", false, "verbose/debug output")
	rootCmd.PersistentFlags().BoolP("json", "j", false, "json format for logging")

	viper.BindPFlag("debug", rootCmd.PersistentFlags().Lookup("debug"))
	viper.BindPFlag("json", rootCmd.PersistentFlags().Lookup("json"))
}

// setup loads the configuration and builds the logger every subcommand uses.
func setup() (*config.Config, *zap.Logger, error) {
	log, err := logger.New(viper.GetBool("json"), viper.GetBool("debug"))
	if err != nil {
		return nil, nil, fmt.Errorf("creating a logger: %w", err)
	}

	cfg, err := config.Load(viper.GetViper(), cfgFile)
	if err != nil {
		return nil, nil, err
	}
	return cfg, log, nil
}
