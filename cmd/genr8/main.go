package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"syscall"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/spf13/cobra"

	"genr8-backend/internal/app"
	"genr8-backend/internal/config"
	"genr8-backend/internal/logger"
)

var version = "1.0.0"

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := rootCmd.ExecuteContext(ctx); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "genr8",
	Short: "Genr8 CLI - run the image studio against the configured store",
	Long: `genr8 drives the same store, generator and studio as the HTTP server,
configured from the environment (and an optional .env file).

Examples:
  genr8 migrate
  genr8 generate --type logo --prompt "minimal fox logo" --new-project Logos
  genr8 assets --type favorites
  genr8 export <asset-id> --license commercial`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
}

func init() {
	rootCmd.AddCommand(migrateCmd)
	rootCmd.AddCommand(generateCmd)
	rootCmd.AddCommand(assetsCmd)
	rootCmd.AddCommand(projectsCmd)
	rootCmd.AddCommand(meCmd)
	rootCmd.AddCommand(exportCmd)

	rootCmd.PersistentFlags().BoolP("verbose", "v", false, "Enable debug logging")
}

func loadConfig(cmd *cobra.Command) (*config.Config, error) {
	cfg, err := config.Load()
	if err != nil {
		return nil, err
	}
	if verbose, _ := cmd.Flags().GetBool("verbose"); verbose {
		cfg.LogLevel = "debug"
	}
	return cfg, nil
}

// openApp builds the application with console logging on stderr, so stdout
// carries only command output.
func openApp(cmd *cobra.Command) (*app.App, error) {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return nil, err
	}
	log := logger.NewWithWriter(os.Stderr, cfg.LogLevel, "console")
	return app.New(cmd.Context(), cfg, log, prometheus.NewRegistry())
}

func withApp(run func(ctx context.Context, a *app.App, cmd *cobra.Command, args []string) error) func(*cobra.Command, []string) error {
	return func(cmd *cobra.Command, args []string) error {
		a, err := openApp(cmd)
		if err != nil {
			return err
		}
		defer a.Close()
		return run(cmd.Context(), a, cmd, args)
	}
}

func printJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
