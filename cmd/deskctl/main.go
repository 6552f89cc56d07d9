// Command deskctl is the scripting companion of the back-office TUI: it
// prints summaries, downloads exports, uploads imports and manages the
// local cache.
package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/backoffice/internal/cache"
	"github.com/MrJamesThe3rd/backoffice/internal/client"
	"github.com/MrJamesThe3rd/backoffice/internal/config"
	"github.com/MrJamesThe3rd/backoffice/internal/format"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

// env is what every subcommand shares once the root command has run.
type env struct {
	cfg    *config.Config
	api    *client.Client
	format *format.Formatter
}

var (
	apiURL   string
	apiToken string
	app      env
)

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:           "deskctl",
		Short:         "Command-line access to the back-office API",
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(_ *cobra.Command, _ []string) error {
			return setup()
		},
	}

	root.PersistentFlags().StringVar(&apiURL, "api-url", "", "backend base URL (default $API_URL)")
	root.PersistentFlags().StringVar(&apiToken, "token", "", "bearer token (default $API_TOKEN)")

	root.AddCommand(
		summaryCmd(),
		exportCmd(),
		importCmd(),
		cacheCmd(),
		tokenCmd(),
		meCmd(),
	)

	return root
}

func setup() error {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	if apiURL != "" {
		cfg.API.BaseURL = apiURL
	}

	if apiToken != "" {
		cfg.API.Token = apiToken
	}

	f, err := cfg.Formatter()
	if err != nil {
		return err
	}

	app = env{
		cfg:    cfg,
		api:    client.New(cfg.API.BaseURL, cfg.API.Token, client.WithTimeout(cfg.API.Timeout)),
		format: f,
	}

	return nil
}

func openCache(ctx context.Context) (*cache.Cache, error) {
	path, err := app.cfg.CachePath()
	if err != nil {
		return nil, err
	}

	return cache.Open(ctx, path)
}

// parseKind accepts a kind in singular or plural form.
func parseKind(s string) (record.Kind, error) {
	s = strings.ToLower(strings.TrimSpace(s))

	for _, k := range record.Kinds {
		if s == string(k) || s == string(k)+"s" {
			return k, nil
		}
	}

	return "", fmt.Errorf("%w: unknown kind %q", record.ErrInvalid, s)
}

func kindNames() string {
	names := make([]string, len(record.Kinds))
	for i, k := range record.Kinds {
		names[i] = string(k)
	}

	return strings.Join(names, ", ")
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)

	err := rootCmd().ExecuteContext(ctx)
	stop()

	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}
