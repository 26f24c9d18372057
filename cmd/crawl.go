package cmd

import (
	"sort"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/tashasho/MCP-Server-BNV/crm"
)

var crawlCmd = &cobra.Command{
	Use:   "crawl <portfolio-url>",
	Short: "Crawl a portfolio page and print the scored companies",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, log, err := setup()
		if err != nil {
			return err
		}
		defer log.Sync() //nolint:errcheck

		catalog, err := loadCatalog(cfg.Scoring)
		if err != nil {
			return err
		}

		profiles, err := newCrawler(cfg.Crawler, catalog, log).Crawl(cmd.Context(), args[0])
		if err != nil {
			return err
		}

		scorer := newScorer(cfg.Scoring, catalog)
		companies := make([]crm.Company, 0, len(profiles))
		for _, p := range profiles {
			companies = append(companies, crm.Company{CompanyProfile: p, TotalScore: scorer.Score(p).TotalScore})
		}
		sort.SliceStable(companies, func(i, j int) bool {
			return companies[i].TotalScore > companies[j].TotalScore
		})

		log.Info("portfolio crawled", zap.String("url", args[0]), zap.Int("companies", len(companies)))

		format, _ := cmd.Flags().GetString("format")
		return write(cmd.OutOrStdout(), format, companies)
	},
}

func init() {
	rootCmd.AddCommand(crawlCmd)

	crawlCmd.Flags().StringP("format", "o", "json", "output format: json or yaml")
}
