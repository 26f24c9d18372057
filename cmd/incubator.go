package cmd

import (
	"context"
	"errors"
	"io"
	"strings"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/crm"
	"github.com/tashasho/MCP-Server-BNV/database"
)

var incubatorCmd = &cobra.Command{
	Use:   "incubator",
	Short: "Manage the incubators whose portfolios are crawled",
}

var incubatorAddCmd = &cobra.Command{
	Use:   "add <name>",
	Short: "Add an incubator or update the one with the same name",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		url, _ := cmd.Flags().GetString("url")
		location, _ := cmd.Flags().GetString("location")
		focus, _ := cmd.Flags().GetStringSlice("focus")
		inc := crm.Incubator{Name: args[0], PortfolioURL: url, Location: location, FocusAreas: focus}

		return withStore(cmd, func(ctx context.Context, store crm.Store, log *zap.Logger) error {
			format, _ := cmd.Flags().GetString("format")
			if err := addIncubator(ctx, store, inc, cmd.OutOrStdout(), format); err != nil {
				return err
			}
			log.Info("incubator saved", zap.String("name", strings.TrimSpace(inc.Name)))
			return nil
		})
	},
}

var incubatorListCmd = &cobra.Command{
	Use:   "list",
	Short: "List the known incubators",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStore(cmd, func(ctx context.Context, store crm.Store, _ *zap.Logger) error {
			incubators, err := store.ListIncubators(ctx)
			if err != nil {
				return err
			}
			format, _ := cmd.Flags().GetString("format")
			return write(cmd.OutOrStdout(), format, incubators)
		})
	},
}

func withStore(cmd *cobra.Command, fn func(context.Context, crm.Store, *zap.Logger) error) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	db, err := database.Open(cfg.Database.Path)
	if err != nil {
		return err
	}
	defer database.Close(db) //nolint:errcheck

	store, err := newStore(cmd.Context(), cfg.Affinity, db, log)
	if err != nil {
		return err
	}
	return fn(cmd.Context(), store, log)
}

func addIncubator(ctx context.Context, store crm.Store, inc crm.Incubator, out io.Writer, format string) error {
	inc.Name = strings.TrimSpace(inc.Name)
	if inc.Name == "" {
		return errors.New("incubator name is empty")
	}
	if err := store.SaveIncubator(ctx, inc); err != nil {
		return err
	}
	saved, err := store.FindIncubator(ctx, inc.Name)
	if err != nil {
		return err
	}
	return write(out, format, saved)
}

func init() {
	rootCmd.AddCommand(incubatorCmd)
	incubatorCmd.AddCommand(incubatorAddCmd, incubatorListCmd)

	incubatorCmd.PersistentFlags().StringP("format", "o", "json", "output format: json or yaml")
	incubatorAddCmd.Flags().String("url", "", "portfolio page url")
	incubatorAddCmd.Flags().String("location", "", "incubator location")
	incubatorAddCmd.Flags().StringSlice("focus", nil, "focus areas, comma separated")
}
