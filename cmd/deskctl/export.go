package main

import (
	"fmt"
	"os"
	"time"

	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/backoffice/internal/export"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

type exportFlags struct {
	output    string
	format    string
	query     string
	status    string
	category  string
	from      string
	to        string
	dateField string
	sort      string
}

func exportCmd() *cobra.Command {
	var f exportFlags

	cmd := &cobra.Command{
		Use:   "export <kind>",
		Short: "Download the filtered collection as an XLSX workbook or PDF report",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runExport(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.output, "output", "o", "", "output file (default <kind>s_<date>.<format>)")
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "xlsx or pdf (default from the output extension, else xlsx)")
	cmd.Flags().StringVarP(&f.query, "query", "q", "", "free-text search")
	cmd.Flags().StringVar(&f.status, "status", "", "only this status")
	cmd.Flags().StringVar(&f.category, "category", "", "only this category")
	cmd.Flags().StringVar(&f.from, "from", "", "first day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.to, "to", "", "last day, YYYY-MM-DD")
	cmd.Flags().StringVar(&f.dateField, "date-field", string(record.DateIssue), "date the range applies to: issue, due or updated")
	cmd.Flags().StringVar(&f.sort, "sort", "", "date_asc, date_desc, amount_asc or amount_desc")

	return cmd
}

func (f exportFlags) criteria() (record.Criteria, error) {
	c := record.Criteria{
		Query:     f.query,
		Status:    f.status,
		Category:  f.category,
		DateField: record.DateField(f.dateField),
		Sort:      record.SortOrder(f.sort),
	}

	if f.from != "" {
		t, err := time.Parse(time.DateOnly, f.from)
		if err != nil {
			return c, fmt.Errorf("invalid --from: %w", err)
		}

		c.Start = &t
	}

	if f.to != "" {
		t, err := time.Parse(time.DateOnly, f.to)
		if err != nil {
			return c, fmt.Errorf("invalid --to: %w", err)
		}

		// The whole last day is included; see api.DecodeQuery.
		t = t.AddDate(0, 0, 1).Add(-time.Nanosecond)
		c.End = &t
	}

	return c, nil
}

// fileFormat resolves --format, falling back to the extension of --output.
func (f exportFlags) fileFormat() (export.Format, error) {
	if f.format == "" {
		return export.FormatOf(f.output), nil
	}

	return export.ParseFormat(f.format)
}

func runExport(cmd *cobra.Command, arg string, f exportFlags) error {
	kind, err := parseKind(arg)
	if err != nil {
		return err
	}

	crit, err := f.criteria()
	if err != nil {
		return err
	}

	format, err := f.fileFormat()
	if err != nil {
		return err
	}

	path := f.output
	if path == "" {
		path = export.Filename(kind, format, time.Now())
	}

	out, err := os.Create(path)
	if err != nil {
		return err
	}

	if err := app.api.Export(cmd.Context(), kind, crit, string(format), out); err != nil {
		_ = out.Close()
		_ = os.Remove(path)

		return err
	}

	if err := out.Close(); err != nil {
		return err
	}

	fmt.Fprintf(cmd.OutOrStdout(), "wrote %s\n", path)

	return nil
}
