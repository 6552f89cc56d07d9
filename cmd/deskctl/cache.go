package main

import (
	"fmt"
	"text/tabwriter"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

func cacheCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "cache",
		Short: "Inspect or clear the offline cache",
	}

	cmd.AddCommand(
		&cobra.Command{
			Use:   "ls",
			Short: "List cached collections",
			Args:  cobra.NoArgs,
			RunE:  runCacheList,
		},
		&cobra.Command{
			Use:   "clear [kind]",
			Short: "Drop one cached collection, or all of them",
			Args:  cobra.MaximumNArgs(1),
			RunE:  runCacheClear,
		},
	)

	return cmd
}

func runCacheList(cmd *cobra.Command, _ []string) error {
	c, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	entries, err := c.Entries(cmd.Context())
	if err != nil {
		return err
	}

	if len(entries) == 0 {
		fmt.Fprintln(cmd.OutOrStdout(), "cache is empty")
		return nil
	}

	tw := tabwriter.NewWriter(cmd.OutOrStdout(), 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "KIND\tRECORDS\tSAVED")

	for _, e := range entries {
		fmt.Fprintf(tw, "%s\t%d\t%s\n", e.Kind, e.Count, e.SavedAt.Format("2006-01-02 15:04:05"))
	}

	return tw.Flush()
}

func runCacheClear(cmd *cobra.Command, args []string) error {
	var kind record.Kind

	if len(args) == 1 {
		k, err := parseKind(args[0])
		if err != nil {
			return err
		}

		kind = k
	}

	c, err := openCache(cmd.Context())
	if err != nil {
		return err
	}
	defer c.Close()

	if err := c.Clear(cmd.Context(), kind); err != nil {
		return err
	}

	fmt.Fprintln(cmd.OutOrStdout(), "cleared")

	return nil
}
