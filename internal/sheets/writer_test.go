package sheets

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"testing"

	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/classification"
	"github.com/Veraticus/passbook/internal/common"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/Veraticus/passbook/internal/service"
	"github.com/Veraticus/passbook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"google.golang.org/api/googleapi"
)

func buildReport(t *testing.T) *report.Report {
	t.Helper()
	loc := testutil.Seoul(t)

	orders := []model.Order{
		testutil.NewOrder(t).ID("1").Hours(50).Amount(85000).At("2025-02-10 10:00:00").Build(),
		testutil.NewOrder(t).ID("2").TermPass("2025-01-15", "2025-02-18").Amount(150000).At("2025-01-15 10:00:00").Build(),
		testutil.NewOrder(t).ID("3").TermPass("2025-02-10", "2025-03-16").Amount(150000).At("2025-02-10 10:00:00").Build(),
		testutil.NewOrder(t).ID("4").Hours(50).AmountError(errors.New("bad")).Build(),
	}

	c := classification.New(catalog.Default(loc),
		service.FixedClock(testutil.MustTime(t, loc, "2025-03-01")),
		classification.DefaultOptions())
	results, err := c.ClassifyBatch(context.Background(), orders)
	require.NoError(t, err)

	r, err := report.Build(orders, results, c.Locator(), report.Period{
		Start: testutil.MustTime(t, loc, "2025-01-15"),
		End:   testutil.MustTime(t, loc, "2025-02-10"),
	}, report.DefaultOptions())
	require.NoError(t, err)
	return r
}

func TestPrepareReportData(t *testing.T) {
	r := buildReport(t)
	values, layout := prepareReportData(r)

	assert.Equal(t, len(values), layout.totalRows)
	assert.Equal(t, "결제 분석 보고서", values[0][0])
	assert.Equal(t, "2025-01-15 ~ 2025-02-10", values[0][1])

	sections := make([]string, 0, len(layout.sectionRows))
	for _, row := range layout.sectionRows {
		sections = append(sections, fmt.Sprint(values[row][0]))
	}
	assert.Equal(t, []string{"매출 요약", "구분별 매출", "이벤트 성과", "분류별 합계", "주문별 분류"}, sections)

	for _, row := range layout.headerRows {
		assert.Greater(t, len(values[row]), 1)
	}

	assert.Equal(t, []any{"총 매출", int64(385000)}, values[layout.sectionRows[0]+1])

	orderHeader := layout.headerRows[len(layout.headerRows)-1]
	assert.Equal(t, orderColumns, values[orderHeader])

	orders := values[orderHeader+1:]
	require.Len(t, orders, 4)
	assert.Equal(t, "정가", orders[0][6])
	assert.Equal(t, "", orders[0][7])

	assert.Equal(t, "이벤트", orders[1][6])
	assert.Equal(t, "250101새해", orders[1][7])
	assert.Equal(t, 0, orders[1][8])

	assert.Equal(t, "이벤트 의심", orders[2][6])
	assert.Equal(t, -10, orders[2][8])
	assert.Equal(t, "2025-03-16", orders[2][11])
	assert.Equal(t, "D-15", orders[2][12])

	assert.Equal(t, "", orders[3][5])
	assert.Equal(t, string(model.ReasonMalformedAmount), orders[3][9])
}

func TestFormattingRequests(t *testing.T) {
	_, layout := prepareReportData(buildReport(t))
	requests := formattingRequests(42, layout)

	assert.Len(t, requests, 1+len(layout.sectionRows)+len(layout.headerRows)+3)
	for _, req := range requests {
		switch {
		case req.RepeatCell != nil:
			assert.Equal(t, int64(42), req.RepeatCell.Range.SheetId)
		case req.AutoResizeDimensions != nil:
			assert.Equal(t, int64(42), req.AutoResizeDimensions.Dimensions.SheetId)
		case req.UpdateSheetProperties != nil:
			assert.Equal(t, int64(1), req.UpdateSheetProperties.Properties.GridProperties.FrozenRowCount)
		}
	}
}

func TestClassifyAPIError(t *testing.T) {
	assert.NoError(t, classifyAPIError(nil))

	plain := errors.New("connection reset")
	assert.Same(t, plain, classifyAPIError(plain))

	limited := classifyAPIError(&googleapi.Error{Code: http.StatusTooManyRequests})
	assert.ErrorIs(t, limited, common.ErrSheetsRateLimit)
	assert.True(t, common.IsRetryable(limited))

	forbidden := classifyAPIError(&googleapi.Error{Code: http.StatusForbidden})
	assert.False(t, common.IsRetryable(forbidden))

	attempts := 0
	err := common.WithRetry(context.Background(), func() error {
		attempts++
		return forbidden
	}, service.RetryOptions{MaxAttempts: 3})
	require.Error(t, err)
	assert.Equal(t, 1, attempts)

	unavailable := classifyAPIError(&googleapi.Error{Code: http.StatusServiceUnavailable})
	var apiErr *googleapi.Error
	assert.ErrorAs(t, unavailable, &apiErr)
}

func TestNewWriter_InvalidConfig(t *testing.T) {
	_, err := NewWriter(context.Background(), Config{}, nil)
	assert.ErrorIs(t, err, common.ErrMissingConfig)
}

func TestMockWriter(t *testing.T) {
	m := NewMockWriter()
	r := buildReport(t)

	require.NoError(t, m.Write(context.Background(), r))
	assert.Same(t, r, m.LastReport)

	boom := errors.New("boom")
	m.SetWriteError(boom)
	assert.ErrorIs(t, m.Write(context.Background(), r), boom)

	calls := m.GetWriteCalls()
	require.Len(t, calls, 2)
	assert.NoError(t, calls[0].Error)
	assert.ErrorIs(t, calls[1].Error, boom)
	assert.Equal(t, 2, m.WriteCallCount)
}
