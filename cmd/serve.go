package cmd

import (
	"github.com/aqlanhadi/stmtx/api"
	"github.com/aqlanhadi/stmtx/export"
	"github.com/aqlanhadi/stmtx/extractor/common"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Start HTTP API server",
	Long: `Starts the HTTP API server that accepts PDF files and returns the extracted
table as JSON, CSV or an xlsx workbook. Prometheus metrics are served on /metrics.`,
	Run: func(cmd *cobra.Command, args []string) {
		// server mode always logs requests
		if !verbose {
			log.SetLevel(log.InfoLevel)
		}

		cfg := api.DefaultConfig()
		if port := viper.GetString("server.port"); port != "" {
			cfg.Port = ":" + port
		}
		cfg.LogPrefix = "SERVER: "
		cfg.Workbook = export.WorkbookOptions{Header: viper.GetBool("export.header")}
		if name := viper.GetString("bank"); name != "" {
			bank, err := common.ParseBank(name)
			if err != nil {
				log.Fatalf("Invalid default bank: %v", err)
			}
			cfg.DefaultBank = bank
		}

		server := api.New(cfg)
		if err := server.Start(); err != nil {
			log.Fatalf("Failed to start server: %v", err)
		}
	},
}

func init() {
	rootCmd.AddCommand(serveCmd)

	serveCmd.Flags().StringP("port", "p", "8080", "Port to run the API server on")
	viper.BindPFlag("server.port", serveCmd.Flags().Lookup("port"))
}
