package main

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"io"
	"strconv"
	"time"

	"github.com/Veraticus/passbook/internal/classification"
	"github.com/Veraticus/passbook/internal/cli"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/spf13/cobra"
)

// classifiedOrder is one line of classify's json output.
type classifiedOrder struct {
	Classification model.Classification `json:"classification"`
	Timestamp      time.Time            `json:"timestamp"`
	Amount         *int64               `json:"amount"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
}

var classifyColumns = []string{
	"No", "주문일시", "이름", "구분", "주문명", "합계금액",
	"분류", "이벤트", "거리(일)", "사유", "D-Day",
}

func classifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "classify <export.csv>",
		Short: "Classify every order in a payment export",
		Long: `Classify every paid pass order in a payment export as regular, promotional,
suspected promotional, anomalous or not applicable.

Examples:
  passbook classify payments.csv
  passbook classify payments.csv --output json > classified.json
  passbook classify payments.csv --output csv --no-progress`,
		Args: cobra.ExactArgs(1),
		RunE: runClassify,
	}

	cmd.Flags().StringP("output", "o", "table", "Output format (table, json, csv)")
	cmd.Flags().Bool("no-progress", false, "Do not draw a progress bar")

	return cmd
}

func runClassify(cmd *cobra.Command, args []string) error {
	format, _ := cmd.Flags().GetString("output")
	noProgress, _ := cmd.Flags().GetBool("no-progress")

	switch format {
	case "table", "json", "csv":
	default:
		return fmt.Errorf("invalid output format %q (use table, json or csv)", format)
	}

	interruptHandler := cli.NewInterruptHandler(cmd.ErrOrStderr())
	ctx, stop := interruptHandler.HandleInterrupts(cmd.Context(), "classifying orders")
	defer stop()

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

	out := cmd.OutOrStdout()
	switch format {
	case "json":
		return writeClassifiedJSON(out, ds.Orders, results)
	case "csv":
		return writeClassifiedCSV(out, ds.Orders, results)
	}

	fmt.Fprintln(out, cli.RenderTable(classifyColumns, classifiedRows(ds.Orders, results)))

	counts := classification.Counts(results)
	summary := ""
	for _, kind := range model.Kinds() {
		if counts[kind] > 0 {
			summary += fmt.Sprintf("%s %d  ", kind.DisplayName(), counts[kind])
		}
	}
	fmt.Fprintln(out, cli.FormatInfo(summary))
	printRejected(cmd.ErrOrStderr(), ds.Rejected)

	return nil
}

func classifiedRows(orders []model.Order, results []model.Classification) [][]string {
	rows := make([][]string, len(orders))
	for i, o := range orders {
		c := results[i]

		amount := strconv.FormatInt(o.Amount, 10)
		if o.AmountErr != nil {
			amount = ""
		}
		distance := ""
		if c.CampaignID != "" {
			distance = strconv.Itoa(c.SignedDistance())
		}

		rows[i] = []string{
			o.RowID,
			o.Timestamp.Format("2006-01-02 15:04"),
			o.Name,
			string(o.Category),
			o.Description,
			amount,
			c.Kind.DisplayName(),
			c.CampaignID,
			distance,
			string(c.Reason),
			c.DDay,
		}
	}
	return rows
}

func writeClassifiedJSON(w io.Writer, orders []model.Order, results []model.Classification) error {
	out := make([]classifiedOrder, len(orders))
	for i, o := range orders {
		out[i] = classifiedOrder{
			Classification: results[i],
			Timestamp:      o.Timestamp,
			Name:           o.Name,
			Description:    o.Description,
		}
		if o.AmountErr == nil {
			amount := o.Amount
			out[i].Amount = &amount
		}
	}

	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	if err := enc.Encode(out); err != nil {
		return fmt.Errorf("failed to write json: %w", err)
	}
	return nil
}

func writeClassifiedCSV(w io.Writer, orders []model.Order, results []model.Classification) error {
	cw := csv.NewWriter(w)
	if err := cw.Write(classifyColumns); err != nil {
		return fmt.Errorf("failed to write csv header: %w", err)
	}
	if err := cw.WriteAll(classifiedRows(orders, results)); err != nil {
		return fmt.Errorf("failed to write csv: %w", err)
	}
	return nil
}
