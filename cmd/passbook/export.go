package main

import (
	"context"
	"fmt"
	"log/slog"

	"github.com/Veraticus/passbook/internal/cli"
	"github.com/Veraticus/passbook/internal/config"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/Veraticus/passbook/internal/sheets"
	"github.com/spf13/cobra"
)

func exportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "export <export.csv>",
		Short: "Write the report to Google Sheets",
		Long: `Classify a payment export and write the sales summary, campaign performance and
per-order classifications to a Google Sheets spreadsheet.

Authentication uses either a service account key or an OAuth refresh token,
configured under sheets.* or through the GOOGLE_SHEETS_* environment variables.`,
		Args: cobra.ExactArgs(1),
		RunE: runExport,
	}

	cmd.Flags().String("spreadsheet-id", "", "Existing spreadsheet to write into")
	cmd.Flags().Bool("no-progress", false, "Do not draw a progress bar")

	return cmd
}

func runExport(cmd *cobra.Command, args []string) error {
	spreadsheetID, _ := cmd.Flags().GetString("spreadsheet-id")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context(), "exporting to Google Sheets")
	defer stop()

	sheetsConfig, err := config.LoadSheetsConfig()
	if err != nil {
		return fmt.Errorf("failed to load Google Sheets configuration: %w", err)
	}
	if spreadsheetID != "" {
		sheetsConfig.SpreadsheetID = spreadsheetID
	}

	sess, err := newSession()
	if err != nil {
		return err
	}

	ds, err := sess.read(ctx, args[0])
	if err != nil {
		return interruptHandler.Err(err)
	}

	results, err := sess.classify(ctx, ds, progressWriter(cmd.ErrOrStderr(), noProgress))
	if err != nil {
		return interruptHandler.Err(err)
	}

	rep, err := sess.report(ds, results, sess.passOptions(model.CategoryTermPass, "", true), report.DefaultTopMembers)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	writer, err := sheets.NewWriter(ctx, *sheetsConfig, slog.Default())
	if err != nil {
		return fmt.Errorf("failed to create sheets writer: %w", err)
	}

	return interruptHandler.Err(writeReport(ctx, cmd, writer, rep))
}

func writeReport(ctx context.Context, cmd *cobra.Command, writer report.Writer, rep *report.Report) error {
	if err := writer.Write(ctx, rep); err != nil {
		return fmt.Errorf("failed to write report: %w", err)
	}
	fmt.Fprintln(cmd.OutOrStdout(), cli.FormatSuccess(fmt.Sprintf("Wrote %d orders to Google Sheets", len(rep.Rows))))
	return nil
}
