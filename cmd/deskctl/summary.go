package main

import (
	"errors"
	"fmt"
	"log/slog"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/backoffice/internal/client"
	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func summaryCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "summary <kind>...",
		Short: "Print the KPI summary of one or more kinds",
		Long: "Print the KPI summary of each kind. When the backend cannot be reached\n" +
			"the last cached collection is summarized instead.\n\nKinds: " + kindNames(),
		Args: cobra.MinimumNArgs(1),
		RunE: runSummary,
	}
}

func runSummary(cmd *cobra.Command, args []string) error {
	ctx := cmd.Context()
	out := export.NewService(app.format)

	for _, arg := range args {
		kind, err := parseKind(arg)
		if err != nil {
			return err
		}

		kpis, err := app.api.Summary(ctx, kind)

		var apiErr *client.APIError
		if err != nil && !errors.As(err, &apiErr) {
			slog.Debug("summary request failed, trying cache", "kind", kind, "error", err)

			kpis, err = cachedSummary(cmd, kind, err)
		}

		if err != nil {
			return err
		}

		fmt.Fprint(cmd.OutOrStdout(), out.Summary(kind, kpis))
	}

	return nil
}

func cachedSummary(cmd *cobra.Command, kind record.Kind, cause error) ([]record.KPI, error) {
	c, err := openCache(cmd.Context())
	if err != nil {
		return nil, errors.Join(cause, err)
	}
	defer c.Close()

	snap, err := c.Load(cmd.Context(), kind)
	if err != nil {
		return nil, errors.Join(cause, err)
	}

	fmt.Fprintf(cmd.ErrOrStderr(), "offline: %s cached %s\n", kind, snap.SavedAt.Format("2006-01-02 15:04"))

	return record.ComputeAggregates(kind, snap.Records), nil
}
