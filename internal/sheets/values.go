package sheets

import (
	"fmt"

	"github.com/Veraticus/passbook/internal/report"
)

// orderColumns is the header of the per-order table.
var orderColumns = []any{
	"No", "주문일시", "이름", "구분", "주문명", "합계금액",
	"분류", "이벤트", "거리(일)", "사유", "시작일", "종료일", "D-Day",
}

// sheetLayout records where the writer put each block so formatting can
// target it.
type sheetLayout struct {
	sectionRows []int
	headerRows  []int
	totalRows   int
}

// prepareReportData lays the report out as summary, campaign and order blocks.
func prepareReportData(r *report.Report) ([][]any, sheetLayout) {
	var layout sheetLayout
	values := make([][]any, 0, 24+len(r.Sales.ByCategory)+len(r.Campaigns.Campaigns)+len(r.Campaigns.Kinds)+len(r.Rows))

	section := func(title string, header ...any) {
		values = append(values, []any{})
		layout.sectionRows = append(layout.sectionRows, len(values))
		values = append(values, []any{title})
		if len(header) > 0 {
			layout.headerRows = append(layout.headerRows, len(values))
			values = append(values, header)
		}
	}

	values = append(values, []any{
		"결제 분석 보고서",
		fmt.Sprintf("%s ~ %s", r.Period.Start.Format("2006-01-02"), r.Period.End.Format("2006-01-02")),
	})

	section("매출 요약")
	values = append(values,
		[]any{"총 매출", r.Sales.Total.Round(0).IntPart()},
		[]any{"PG 수수료", r.Sales.PGFee.Round(0).IntPart()},
		[]any{"로열티", r.Sales.Royalty.Round(0).IntPart()},
		[]any{"최종 정산", r.Sales.Settlement.Round(0).IntPart()},
		[]any{"결제 건수", r.Sales.Orders},
	)

	section("구분별 매출", "구분", "매출", "비율(%)", "건수")
	for _, c := range r.Sales.ByCategory {
		values = append(values, []any{string(c.Category), c.Total.IntPart(), c.Share.InexactFloat64(), c.Orders})
	}

	section("이벤트 성과", "이벤트", "시작일", "종료일", "일수", "이벤트 결제", "이벤트 매출", "의심", "불일치", "정가 환산 예상")
	for _, c := range r.Campaigns.Campaigns {
		var estimate any = ""
		if c.Estimate != nil {
			estimate = c.Estimate.Amount.Round(0).IntPart()
		}
		values = append(values, []any{
			c.ID,
			c.Start.Format("2006-01-02"),
			c.End.Format("2006-01-02"),
			c.Days,
			c.Promotional,
			c.PromotionalRevenue,
			c.Suspected,
			c.Mismatched,
			estimate,
		})
	}

	section("분류별 합계", "분류", "건수", "매출")
	for _, k := range r.Campaigns.Kinds {
		values = append(values, []any{k.Name, k.Count, k.Revenue})
	}

	section("주문별 분류", orderColumns...)
	for _, row := range r.Rows {
		o, c := row.Order, row.Classification

		var amount any = o.Amount
		if o.AmountErr != nil {
			amount = ""
		}

		start, end := "", ""
		if c.HasTerm() {
			start = c.Start.Format("2006-01-02")
			end = c.End.Format("2006-01-02")
		}

		var distance any = ""
		if c.CampaignID != "" {
			distance = c.SignedDistance()
		}

		values = append(values, []any{
			o.RowID,
			o.Timestamp.Format("2006-01-02 15:04:05"),
			o.Name,
			string(o.Category),
			o.Description,
			amount,
			c.Kind.DisplayName(),
			c.CampaignID,
			distance,
			string(c.Reason),
			start,
			end,
			c.DDay,
		})
	}

	layout.totalRows = len(values)
	return values, layout
}
