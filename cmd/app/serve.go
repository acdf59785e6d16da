package main

import (
	"github.com/spf13/cobra"

	"FinScope/internal/di"
	"FinScope/pkg/config"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API, scanner and Kafka consumer until interrupted",
	RunE: func(cmd *cobra.Command, args []string) error {
		cfg, err := config.LoadWithEnv(configPath)
		if err != nil {
			return err
		}
		app, err := di.InitializeApp(cfg)
		if err != nil {
			return err
		}
		return app.Run(cmd.Context())
	},
}
