package cmd

import (
	"fmt"
	"os"

	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/storefront/orders-api/cmd/orders-api/cmd/users"
	"github.com/storefront/orders-api/internal/pkg/config"
	"github.com/storefront/orders-api/pkg/logger"
)

var (
	cfg *config.Config
	log zerolog.Logger
)

var rootCmd = &cobra.Command{
	Use:   "orders-api",
	Short: "Orders API server",
	Long: `Orders API serves order management over HTTP. Every /v1 request carries a
bearer token; orders are visible to their owner and to administrators.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		var err error
		cfg, err = config.Load(cmd.Context())
		if err != nil {
			return fmt.Errorf("failed to load configuration: %w", err)
		}

		level := cfg.LogLevel
		if debug, _ := cmd.Flags().GetBool("debug"); debug {
			level = "debug"
		}
		log = logger.Init(logger.Options{
			Level:   level,
			Pretty:  cfg.IsDevelopment(),
			Service: "orders-api",
		})
		return nil
	},
}

func init() {
	rootCmd.PersistentFlags().Bool("debug", false, "Enable debug logging (overrides LOG_LEVEL)")

	rootCmd.AddCommand(users.UsersCmd)
}

// Execute runs the root command
func Execute() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}
