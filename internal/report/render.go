package report

import (
	"fmt"
	"strings"

	"github.com/Veraticus/passbook/internal/cli"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/shopspring/decimal"
	"golang.org/x/text/language"
	"golang.org/x/text/message"
)

var won = message.NewPrinter(language.Korean)

// FormatWon renders an amount with thousands separators, e.g. "85,000원".
func FormatWon(amount int64) string {
	return won.Sprintf("%d원", amount)
}

// FormatWonDecimal rounds to whole won before formatting.
func FormatWonDecimal(amount decimal.Decimal) string {
	return FormatWon(amount.Round(0).IntPart())
}

// Render renders the full report for a terminal.
func Render(r *Report) string {
	sections := []string{
		cli.FormatTitle(fmt.Sprintf("결제 내역 %s ~ %s",
			r.Period.Start.Format("2006-01-02"), r.Period.End.Format("2006-01-02"))),
		RenderSales(r.Sales),
		RenderTopMembers(r.TopMembers),
		RenderPasses(r.Passes),
		RenderCampaigns(r.Campaigns),
	}
	return strings.Join(sections, "\n\n")
}

// RenderSales renders the sales box and the per-category table.
func RenderSales(s SalesSummary) string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s 총 매출      %s (%d건)\n", cli.MoneyIcon, FormatWonDecimal(s.Total), s.Orders)
	fmt.Fprintf(&b, "   PG 수수료    -%s\n", FormatWonDecimal(s.PGFee))
	fmt.Fprintf(&b, "   로열티       -%s\n", FormatWonDecimal(s.Royalty))
	fmt.Fprintf(&b, "   최종 정산    %s", cli.StyleSuccess(FormatWonDecimal(s.Settlement)))

	rows := make([][]string, 0, len(s.ByCategory))
	for _, c := range s.ByCategory {
		rows = append(rows, []string{
			string(c.Category),
			FormatWonDecimal(c.Total),
			c.Share.StringFixed(1) + "%",
			fmt.Sprintf("%d", c.Orders),
		})
	}

	return cli.RenderBox("매출 현황", b.String()) + "\n" +
		cli.RenderTable([]string{"구분", "매출", "비율", "건수"}, rows)
}

// RenderTopMembers renders the top member table.
func RenderTopMembers(members []MemberTotal) string {
	rows := make([][]string, 0, len(members))
	for i, m := range members {
		rows = append(rows, []string{
			fmt.Sprintf("%d", i+1),
			m.Name,
			FormatWon(m.Total),
			fmt.Sprintf("%d", m.Orders),
		})
	}
	return cli.StyleTitle("회원별 결제 금액") + "\n" +
		cli.RenderTable([]string{"순위", "이름", "결제 금액", "건수"}, rows)
}

// RenderPasses renders the timeline and D-Day histogram.
func RenderPasses(p PassReport) string {
	rows := make([][]string, 0, len(p.Entries))
	for _, e := range p.Entries {
		rows = append(rows, []string{
			e.Name,
			fmt.Sprintf("%d주", e.Weeks),
			e.Start.Format("2006-01-02"),
			e.End.Format("2006-01-02"),
			styleDDay(e),
			e.Kind.DisplayName(),
		})
	}
	table := cli.RenderTable([]string{"이름", "기간", "시작일", "종료일", "D-Day", "유형"}, rows)
	return renderPassReport(p, table)
}

// RenderPassesByMember renders the timeline one line per member.
func RenderPassesByMember(p PassReport) string {
	groups := p.ByMember()
	rows := make([][]string, 0, len(groups))
	for _, g := range groups {
		spans := make([]string, 0, len(g.Entries))
		ddays := make([]string, 0, len(g.Entries))
		for _, e := range g.Entries {
			spans = append(spans, fmt.Sprintf("%s~%s (%d주)", e.Start.Format("01-02"), e.End.Format("01-02"), e.Weeks))
			ddays = append(ddays, styleDDay(e))
		}
		rows = append(rows, []string{
			g.Name,
			fmt.Sprintf("%d", len(g.Entries)),
			strings.Join(spans, ", "),
			strings.Join(ddays, ", "),
		})
	}
	table := cli.RenderTable([]string{"이름", "건수", "기간", "D-Day"}, rows)
	return renderPassReport(p, table)
}

func styleDDay(e PassEntry) string {
	if e.Expired {
		return cli.ExpiredStyle.Render(e.DDay)
	}
	return e.DDay
}

func renderPassReport(p PassReport, table string) string {
	category := p.Category
	if category == "" {
		category = model.CategoryTermPass
	}

	var hist strings.Builder
	peak := 0
	for _, bucket := range p.Histogram {
		if bucket.Count > peak {
			peak = bucket.Count
		}
	}
	for _, bucket := range p.Histogram {
		bar := ""
		if peak > 0 {
			bar = strings.Repeat("█", bucket.Count*30/peak)
		}
		fmt.Fprintf(&hist, "%-6s %s %d\n", bucket.Label, cli.InfoStyle.Render(bar), bucket.Count)
	}

	return cli.StyleTitle(fmt.Sprintf("%s %s (기간 남은 회원 %d명)", cli.CalendarIcon, category, p.Remaining)) + "\n" +
		table + "\n" +
		cli.RenderBox("D-Day 분포", strings.TrimRight(hist.String(), "\n"))
}

// RenderCampaigns renders campaign performance and totals per kind.
func RenderCampaigns(c CampaignReport) string {
	rows := make([][]string, 0, len(c.Campaigns))
	for _, line := range c.Campaigns {
		estimate := "-"
		if line.Estimate != nil {
			estimate = FormatWonDecimal(line.Estimate.Amount)
		}
		rows = append(rows, []string{
			line.ID,
			fmt.Sprintf("%s ~ %s", line.Start.Format("2006-01-02"), line.End.Format("2006-01-02")),
			fmt.Sprintf("%d일", line.Days),
			fmt.Sprintf("%d", line.Promotional),
			FormatWon(line.PromotionalRevenue),
			fmt.Sprintf("%d", line.Suspected),
			fmt.Sprintf("%d", line.Mismatched),
			estimate,
		})
	}

	kinds := make([][]string, 0, len(c.Kinds))
	for _, k := range c.Kinds {
		kinds = append(kinds, []string{k.Name, fmt.Sprintf("%d", k.Count), FormatWon(k.Revenue)})
	}

	return cli.StyleTitle(cli.ChartIcon+" 이벤트 성과") + "\n" +
		cli.RenderTable([]string{"이벤트", "기간", "일수", "이벤트 결제", "이벤트 매출", "의심", "불일치", "정가 환산 예상"}, rows) + "\n" +
		cli.RenderTable([]string{"분류", "건수", "매출"}, kinds)
}
