package main

import (
	"encoding/json"
	"fmt"

	"github.com/Veraticus/passbook/internal/cli"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/spf13/cobra"
)

func reportCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "report <export.csv>",
		Short: "Summarize sales, members, term passes and campaigns",
		Long: `Classify a payment export and print the sales summary with PG fee, royalty and
settlement, the top members, the term-pass timeline and campaign performance.`,
		Args: cobra.ExactArgs(1),
		RunE: runReport,
	}

	cmd.Flags().Int("top", report.DefaultTopMembers, "Number of top members to list")
	cmd.Flags().Bool("json", false, "Print the report as JSON")
	cmd.Flags().Bool("no-progress", false, "Do not draw a progress bar")

	return cmd
}

func runReport(cmd *cobra.Command, args []string) error {
	topN, _ := cmd.Flags().GetInt("top")
	asJSON, _ := cmd.Flags().GetBool("json")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context(), "building the report")
	defer stop()

	sess, err := newSession()
	if err != nil {
		return err
	}

	ds, err := sess.read(ctx, args[0])
	if err != nil {
		return interruptHandler.Err(err)
	}

	results, err := sess.classify(ctx, ds, progressWriter(cmd.ErrOrStderr(), noProgress || asJSON))
	if err != nil {
		return interruptHandler.Err(err)
	}

	rep, err := sess.report(ds, results, sess.passOptions(model.CategoryTermPass, "", false), topN)
	if err != nil {
		return fmt.Errorf("failed to build report: %w", err)
	}

	out := cmd.OutOrStdout()
	if asJSON {
		enc := json.NewEncoder(out)
		enc.SetIndent("", "  ")
		return enc.Encode(rep)
	}

	fmt.Fprintln(out, report.Render(rep))
	printRejected(cmd.ErrOrStderr(), ds.Rejected)
	return nil
}
