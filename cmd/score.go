package cmd

import (
	"encoding/json"
	"fmt"
	"io"
	"os"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/tashasho/MCP-Server-BNV/scoring"
)

type scoreResult struct {
	scoring.ScoreBreakdown `yaml:",inline"`
	Sectors                []string          `json:"sectors,omitempty" yaml:"sectors,omitempty"`
	Screening              scoring.Screening `json:"screening" yaml:"screening"`
}

var scoreCmd = &cobra.Command{
	Use:   "score [profile.json]",
	Short: "Score a company profile read from a file or stdin",
	Args:  cobra.MaximumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		thesis, _ := cmd.Flags().GetString("thesis")
		format, _ := cmd.Flags().GetString("format")

		in := cmd.InOrStdin()
		if len(args) == 1 && args[0] != "-" {
			f, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer f.Close()
			in = f
		}
		return score(in, cmd.OutOrStdout(), thesis, format)
	},
}

func init() {
	rootCmd.AddCommand(scoreCmd)

	scoreCmd.Flags().StringP("thesis", "t", "", "investment thesis text to compute relevance against")
	scoreCmd.Flags().StringP("format", "o", "json", "output format: json or yaml")
}

func score(in io.Reader, out io.Writer, thesis, format string) error {
	cfg, log, err := setup()
	if err != nil {
		return err
	}
	defer log.Sync() //nolint:errcheck

	catalog, err := loadCatalog(cfg.Scoring)
	if err != nil {
		return err
	}

	var raw map[string]any
	if err := json.NewDecoder(in).Decode(&raw); err != nil {
		return fmt.Errorf("decoding profile: %w", err)
	}
	profile := scoring.ProfileFromMap(raw)

	b := newScorer(cfg.Scoring, catalog).ScoreWithThesis(profile, thesis)
	res := scoreResult{
		ScoreBreakdown: b,
		Sectors:        scoring.ProfileSectors(profile, catalog.Sectors),
		Screening:      scoring.Screen(b, screeningOptions(cfg.Scoring)),
	}
	return write(out, format, res)
}

func write(out io.Writer, format string, v any) error {
	switch format {
	case "yaml":
		enc := yaml.NewEncoder(out)
		enc.SetIndent(2)
		defer enc.Close()
		return enc.Encode(v)
	case "json", "":
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(v)
	default:
		return fmt.Errorf("unknown output format %q", format)
	}
}
