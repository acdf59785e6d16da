package main

import (
	"fmt"
	"os"

	"github.com/spf13/cobra"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "finscope",
	Short: "FinScope equity analysis service",
	Long: `FinScope fuses live quotes, price history, technical indicators and news
sentiment into a verdict and a 72-hour forecast for a ticker.

It runs either as a long-lived service (HTTP API, watchlist scanner, Kafka
request consumer) or as a one-shot analysis printed as JSON.`,
	SilenceUsage: true,
}

func init() {
	rootCmd.PersistentFlags().StringVar(&configPath, "config", "", "config file path (defaults and environment only when empty)")
	rootCmd.AddCommand(serveCmd, analyzeCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
