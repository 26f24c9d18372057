package cmd

import (
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/database"
	"github.com/tashasho/MCP-Server-BNV/dealflow"
)

var dealflowCmd = &cobra.Command{
	Use:   "dealflow",
	Short: "Poll the deal-flow mailbox once and print the prioritized deals",
	RunE: func(cmd *cobra.Command, _ []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		password, err := cfg.Email.Secret()
		if err != nil {
			log.Error("loading mailbox password", zap.Error(err),
				zap.String("hint", "set MCP_EMAIL_PASSWORD or the 'email.password-file' key in the configuration file"))
			return err
		}

		catalog, err := loadCatalog(cfg.Scoring)
		if err != nil {
			return err
		}

		inbox := dealflow.NewIMAPInbox(dealflow.IMAPConfig{
			Addr:     cfg.Email.Server,
			Username: cfg.Email.Address,
			Password: password,
			Mailbox:  cfg.Email.Mailbox,
			Lookback: cfg.Email.Lookback,
		}, dealflow.NewExtractor(catalog), log)

		results, err := inbox.Poll(cmd.Context())
		if err != nil {
			return err
		}
		for _, r := range results {
			if r.Err != nil {
				log.Warn("message skipped", zap.Uint32("seq_num", r.SeqNum), zap.Error(r.Err))
			}
		}

		deals := dealflow.Deals(results)
		log.Info("mailbox polled", zap.Int("messages", len(results)), zap.Int("deals", len(deals)))

		prioritized := dealflow.PrioritizeAll(newScorer(cfg.Scoring, catalog), deals, dealCriteria(cfg), time.Now())

		if save, _ := cmd.Flags().GetBool("save"); save {
			db, err := database.Open(cfg.Database.Path)
			if err != nil {
				return err
			}
			defer database.Close(db) //nolint:errcheck
			if err := dealflow.SaveDeals(cmd.Context(), db, prioritized); err != nil {
				return err
			}
		}

		format, _ := cmd.Flags().GetString("format")
		return write(cmd.OutOrStdout(), format, prioritized)
	},
}

func init() {
	rootCmd.AddCommand(dealflowCmd)

	dealflowCmd.Flags().StringP("format", "o", "json", "output format: json or yaml")
	dealflowCmd.Flags().Bool("save", true, "store the prioritized deals in the database")
}
