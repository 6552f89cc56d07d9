package main

import (
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"strings"
	"text/tabwriter"

	"github.com/charmbracelet/huh"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"

	"github.com/MrJamesThe3rd/backoffice/internal/api"
	"github.com/MrJamesThe3rd/backoffice/internal/importer"
	"github.com/MrJamesThe3rd/backoffice/internal/record"
)

type importFlags struct {
	kind       string
	format     string
	yes        bool
	duplicates bool
}

func importCmd() *cobra.Command {
	var f importFlags

	cmd := &cobra.Command{
		Use:   "import <file>",
		Short: "Upload a CSV or XLSX file into a kind",
		Long: "Upload a file into a kind. When some references already exist nothing\n" +
			"is written; the duplicates are listed and, once confirmed, the new rows\n" +
			"are imported on their own.",
		Args: cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			return runImport(cmd, args[0], f)
		},
	}

	cmd.Flags().StringVarP(&f.kind, "kind", "k", "", "target kind: "+kindNames())
	cmd.Flags().StringVarP(&f.format, "format", "f", "", "ledger, standard or xlsx (default from the file extension)")
	cmd.Flags().BoolVarP(&f.yes, "yes", "y", false, "confirm without asking")
	cmd.Flags().BoolVar(&f.duplicates, "include-duplicates", false, "also import rows whose reference already exists")
	_ = cmd.MarkFlagRequired("kind")

	return cmd
}

func formatFor(path, flag string) importer.Format {
	if flag != "" {
		return importer.Format(flag)
	}

	if strings.EqualFold(filepath.Ext(path), ".xlsx") {
		return importer.FormatXLSX
	}

	return importer.FormatLedger
}

func runImport(cmd *cobra.Command, path string, f importFlags) error {
	kind, err := parseKind(f.kind)
	if err != nil {
		return err
	}

	file, err := os.Open(path)
	if err != nil {
		return err
	}
	defer file.Close()

	info, err := file.Stat()
	if err != nil {
		return err
	}

	bar := progressbar.NewOptions64(info.Size(),
		progressbar.OptionSetWriter(cmd.ErrOrStderr()),
		progressbar.OptionSetDescription("uploading "+filepath.Base(path)),
		progressbar.OptionShowBytes(true),
		progressbar.OptionSetWidth(30),
		progressbar.OptionClearOnFinish(),
	)

	resp, err := app.api.Import(cmd.Context(), kind, string(formatFor(path, f.format)), filepath.Base(path), io.TeeReader(file, bar))
	_ = bar.Finish()

	out := cmd.OutOrStdout()

	switch {
	case err == nil:
		fmt.Fprintf(out, "imported %d %ss\n", len(resp.Imported), kind)
		return nil
	case !errors.Is(err, record.ErrConflict) || resp == nil:
		return err
	}

	printConflicts(out, resp.Conflicts)

	params := resp.New
	if f.duplicates {
		for _, c := range resp.Conflicts {
			params = append(params, c.Incoming)
		}
	}

	if len(params) == 0 {
		fmt.Fprintln(out, "nothing new to import")
		return nil
	}

	if !f.yes {
		ok := false

		err := huh.NewConfirm().
			Title(fmt.Sprintf("Import %d rows?", len(params))).
			Affirmative("Import").
			Negative("Abort").
			Value(&ok).
			Run()
		if err != nil {
			return err
		}

		if !ok {
			fmt.Fprintln(out, "aborted, nothing written")
			return nil
		}
	}

	created, err := app.api.ConfirmImport(cmd.Context(), kind, params)
	if err != nil {
		return err
	}

	fmt.Fprintf(out, "imported %d %ss\n", len(created), kind)

	return nil
}

func printConflicts(w io.Writer, conflicts []api.ImportConflict) {
	fmt.Fprintf(w, "%d references already exist:\n", len(conflicts))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "REFERENCE\tINCOMING\tEXISTING\tSTATUS")

	for _, c := range conflicts {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n",
			c.Incoming.Reference,
			app.format.Money(c.Incoming.Amount),
			app.format.Money(c.Existing.Amount),
			app.format.Status(c.Existing.Status),
		)
	}

	_ = tw.Flush()
}
