package main

import (
	"encoding/json"
	"os"

	"github.com/spf13/cobra"

	"FinScope/internal/di"
	"FinScope/internal/usecase"
	"FinScope/pkg/config"
)

var analyzePretty bool

var analyzeCmd = &cobra.Command{
	Use:   "analyze <TICKER>",
	Short: "Run one analysis and print the result as JSON",
	Example: `  finscope analyze AAPL
  finscope analyze msft --pretty=false --config config/config.yaml`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnv(configPath)
		if err != nil {
			return err
		}
		// stdout carries the result
		cfg.Log.Output = "stderr"

		analyzer, err := di.InitializeAnalyzer(cfg)
		if err != nil {
			return err
		}
		ctx := usecase.WithTrigger(cmd.Context(), usecase.TriggerCLI)
		res, err := analyzer.Analyze(ctx, args[0])
		if err != nil {
			return err
		}

		enc := json.NewEncoder(os.Stdout)
		if analyzePretty {
			enc.SetIndent("", "  ")
		}
		return enc.Encode(res)
	},
}

func init() {
	analyzeCmd.Flags().BoolVar(&analyzePretty, "pretty", true, "indent the JSON output")
}
