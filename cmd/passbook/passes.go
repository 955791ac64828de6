package main

import (
	"fmt"

	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/Veraticus/passbook/internal/tui"
	"github.com/spf13/cobra"
)

func passesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "passes <export.csv>",
		Short: "Show the term-pass or locker timeline and D-Day histogram",
		Long: `Show every term pass (or locker rental) sold in the export with its remaining
days, the number of members whose pass is still running, and a histogram of
remaining days for the passes still running.

Examples:
  passbook passes payments.csv
  passbook passes payments.csv --name 김 --show-expired
  passbook passes payments.csv --category locker --group
  passbook passes payments.csv --interactive`,
		Args: cobra.ExactArgs(1),
		RunE: runPasses,
	}

	cmd.Flags().String("category", "term", "Timeline to show (term, locker)")
	cmd.Flags().Bool("show-expired", false, "Include passes that have already ended")
	cmd.Flags().String("name", "", "Only show members whose name contains this text")
	cmd.Flags().Bool("group", false, "Show each member on one line")
	cmd.Flags().BoolP("interactive", "i", false, "Browse passes in an interactive table")

	return cmd
}

// timelineCategory maps the --category flag onto an export category.
func timelineCategory(flag string) (model.Category, error) {
	switch flag {
	case "term", string(model.CategoryTermPass):
		return model.CategoryTermPass, nil
	case "locker", string(model.CategoryLocker):
		return model.CategoryLocker, nil
	default:
		return "", fmt.Errorf("invalid category %q (use term or locker)", flag)
	}
}

func runPasses(cmd *cobra.Command, args []string) error {
	categoryFlag, _ := cmd.Flags().GetString("category")
	showExpired, _ := cmd.Flags().GetBool("show-expired")
	name, _ := cmd.Flags().GetString("name")
	group, _ := cmd.Flags().GetBool("group")
	interactive, _ := cmd.Flags().GetBool("interactive")

	category, err := timelineCategory(categoryFlag)
	if err != nil {
		return err
	}

	ctx := cmd.Context()

	sess, err := newSession()
	if err != nil {
		return err
	}

	ds, err := sess.read(ctx, args[0])
	if err != nil {
		return err
	}

	results, err := sess.classify(ctx, ds, nil)
	if err != nil {
		return err
	}

	if interactive {
		// The browser toggles expired passes itself.
		passes := report.Passes(ds.Orders, results, sess.passOptions(category, name, true))
		opts := tui.DefaultOptions()
		opts.Title = fmt.Sprintf("%s 현황", category)
		opts.ShowExpired = showExpired
		return tui.Run(ctx, passes, opts)
	}

	passes := report.Passes(ds.Orders, results, sess.passOptions(category, name, showExpired))
	if group {
		fmt.Fprintln(cmd.OutOrStdout(), report.RenderPassesByMember(passes))
		return nil
	}
	fmt.Fprintln(cmd.OutOrStdout(), report.RenderPasses(passes))
	return nil
}
