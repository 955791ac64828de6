package main

import (
	"fmt"
	"strings"
	"time"

	"github.com/Veraticus/passbook/internal/campaign"
	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/cli"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/spf13/cobra"
)

func campaignsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "campaigns [export.csv]",
		Short: "List configured campaigns, with their performance when an export is given",
		Long: `Print the validated campaign calendar and each campaign's adjusted products.
When an export is given, also print promotional and suspected counts per
campaign and the estimated regular-price revenue over the campaign's length.`,
		Args: cobra.MaximumNArgs(1),
		RunE: runCampaigns,
	}
}

func runCampaigns(cmd *cobra.Command, args []string) error {
	sess, err := newSession()
	if err != nil {
		return err
	}

	out := cmd.OutOrStdout()
	fmt.Fprintln(out, renderCatalog(sess.catalog, sess.clock.Now()))

	for _, pair := range sess.catalog.Overlaps() {
		fmt.Fprintln(out, cli.FormatWarning(fmt.Sprintf("%s and %s overlap; %s wins for orders in both", pair[0], pair[1], pair[0])))
	}

	if len(args) == 0 {
		return nil
	}

	ctx := cmd.Context()
	ds, err := sess.read(ctx, args[0])
	if err != nil {
		return err
	}
	results, err := sess.classify(ctx, ds, nil)
	if err != nil {
		return err
	}

	perf, err := report.Campaigns(ds.Orders, results, campaign.NewLocator(sess.catalog), ds.Period.Start, ds.Period.End)
	if err != nil {
		return fmt.Errorf("failed to build campaign report: %w", err)
	}
	fmt.Fprintln(out, report.RenderCampaigns(perf))
	return nil
}

func renderCatalog(cat *catalog.Catalog, now time.Time) string {
	rows := make([][]string, 0, len(cat.Campaigns()))
	for _, c := range cat.Campaigns() {
		status := ""
		switch {
		case c.Contains(now):
			status = cli.StyleSuccess("진행 중")
		case now.Before(c.Start):
			status = "예정"
		}

		rows = append(rows, []string{
			c.ID,
			c.Start.Format("2006-01-02"),
			c.End.Format("2006-01-02"),
			fmt.Sprintf("%d일", c.Days()),
			describeAdjustments(c),
			status,
		})
	}

	return cli.StyleTitle(cli.CalendarIcon+" 이벤트 일정 ("+cat.Location().String()+")") + "\n" +
		cli.RenderTable([]string{"이벤트", "시작일", "종료일", "일수", "조정 상품", "상태"}, rows)
}

func describeAdjustments(c catalog.Campaign) string {
	var parts []string
	for _, category := range []model.Category{model.CategoryTimePass, model.CategoryTermPass} {
		for _, base := range c.BaseLabels(category) {
			adj := c.Adjustments[category][base]
			prices := make([]string, 0, len(adj.Prices))
			for _, p := range adj.Prices {
				prices = append(prices, report.FormatWon(p))
			}
			parts = append(parts, fmt.Sprintf("%s→%s %s", base, adj.Label, strings.Join(prices, "/")))
		}
	}
	return strings.Join(parts, "\n")
}
