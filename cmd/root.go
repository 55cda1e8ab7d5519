package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/sells-group/edgar-service/internal/config"
	"github.com/sells-group/edgar-service/internal/edgar"
	"github.com/sells-group/edgar-service/internal/service"
)

var cfg *config.Config

var rootCmd = &cobra.Command{
	Use:   "edgar-service",
	Short: "Normalization and citation layer over SEC EDGAR filings",
	Long:  "Resolves companies, locates filings, normalizes XBRL financial data, and aggregates insider transactions, with exact numeric fidelity and a verifiable citation on every result.",
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		c, err := config.Load()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		cfg = c

		if err := config.InitLogger(cfg.Log); err != nil {
			return fmt.Errorf("init logger: %w", err)
		}

		return nil
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		_ = zap.L().Sync()
	},
}

// newService builds the operation surface from the loaded config.
func newService() (*service.Service, error) {
	client := edgar.NewClient(edgar.Options{
		UserAgent:  cfg.Edgar.UserAgent,
		Timeout:    time.Duration(cfg.Edgar.TimeoutSecs) * time.Second,
		MaxRetries: cfg.Edgar.MaxRetries,
	})
	return service.New(client, service.Options{CacheSize: cfg.Cache.Size})
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}
