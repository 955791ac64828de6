package ingest

import (
	"bytes"
	"context"
	"io"
	"strings"
	"testing"

	"github.com/Veraticus/passbook/internal/common"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"golang.org/x/text/encoding/korean"
	"golang.org/x/text/transform"
)

const paymentHeader = "No,브랜드,지점,구분,이름,주문명,주문금액,할인금액,합계금액,결제구분,주문유형,주문상태,주문일시\n"

const sampleExport = paymentHeader +
	`1,스터디카페,본점,정액시간권,김철수,50시간,"85,000",0,"85,000",카드,일반,결제완료,2025-02-10 10:00:00` + "\n" +
	`2,스터디카페,본점,정액시간권,김철수,50시간,85000,0,85000,카드,일반,결제취소,2025-03-01 11:00:00` + "\n" +
	`3,스터디카페,본점,기간권,관리자,"28일, 4주(2025-02-01~2025-02-28)",150000,0,150000,현금,일반,결제완료,2025-02-01 09:00:00` + "\n" +
	`4,스터디카페,본점,정액시간권,이영희,100시간,135000,0,135000,카드,일반,결제완료,` + "\n" +
	`,스터디카페,본점,정액시간권,박민수,100시간,135000,0,135000,카드,일반,결제완료,2025-02-11 12:00` + "\n" +
	`6,스터디카페,본점,정액시간권,최지우,50시간,무료,0,무료,카드,일반,결제완료,2025-02-12T08:30:00` + "\n" +
	`7,스터디카페,본점,기간권,정하늘,"35일, 5주(2025-01-05~2025-02-08)",150000,0,150000원,카드,일반,결제완료,2025.01.05 09:00:00` + "\n"

func TestRead(t *testing.T) {
	loc := testutil.Seoul(t)

	ds, err := Read(context.Background(), strings.NewReader(sampleExport), Options{
		Location: loc,
		Filter:   DefaultFilter(),
	})
	require.NoError(t, err)

	assert.Equal(t, KindPayment, ds.Kind)
	assert.Equal(t, EncodingUTF8, ds.Encoding)
	assert.Equal(t, 2, ds.Filtered)

	require.Len(t, ds.Rejected, 2)
	assert.Equal(t, 5, ds.Rejected[0].Line)
	assert.Equal(t, ColumnTimestamp, ds.Rejected[0].Field)
	assert.Equal(t, 6, ds.Rejected[1].Line)
	assert.Equal(t, ColumnNo, ds.Rejected[1].Field)

	require.Len(t, ds.Orders, 3)

	first := ds.Orders[0]
	assert.Equal(t, "1", first.RowID)
	assert.Equal(t, model.CategoryTimePass, first.Category)
	assert.Equal(t, int64(85000), first.Amount)
	assert.NoError(t, first.AmountErr)
	assert.Equal(t, "카드", first.PaymentMethod)
	assert.Equal(t, testutil.MustTime(t, loc, "2025-02-10 10:00:00"), first.Timestamp)

	free := ds.Orders[1]
	assert.Equal(t, "6", free.RowID)
	assert.ErrorIs(t, free.AmountErr, ErrMalformedAmount)

	term := ds.Orders[2]
	assert.Equal(t, "35일, 5주(2025-01-05~2025-02-08)", term.Description)
	assert.Equal(t, int64(150000), term.Amount)

	// Filtered rows still count toward the period.
	assert.Equal(t, "2025-01-05", ds.Period.Start.Format("2006-01-02"))
	assert.Equal(t, "2025-03-01", ds.Period.End.Format("2006-01-02"))
}

func TestRead_NoFilter(t *testing.T) {
	ds, err := Read(context.Background(), strings.NewReader(sampleExport), Options{})
	require.NoError(t, err)
	assert.Zero(t, ds.Filtered)
	assert.Len(t, ds.Orders, 5)
}

func TestRead_EUCKR(t *testing.T) {
	encoded, err := io.ReadAll(transform.NewReader(strings.NewReader(sampleExport), korean.EUCKR.NewEncoder()))
	require.NoError(t, err)

	ds, err := Read(context.Background(), bytes.NewReader(encoded), Options{Filter: DefaultFilter()})
	require.NoError(t, err)

	assert.Equal(t, EncodingEUCKR, ds.Encoding)
	require.Len(t, ds.Orders, 3)
	assert.Equal(t, "김철수", ds.Orders[0].Name)
	assert.Equal(t, model.CategoryTermPass, ds.Orders[2].Category)
}

func TestRead_BOM(t *testing.T) {
	data := append([]byte{0xEF, 0xBB, 0xBF}, sampleExport...)
	ds, err := Read(context.Background(), bytes.NewReader(data), Options{Filter: DefaultFilter()})
	require.NoError(t, err)
	assert.Equal(t, KindPayment, ds.Kind)
	assert.Len(t, ds.Orders, 3)
}

func TestRead_Builder(t *testing.T) {
	orders := []model.Order{
		testutil.NewOrder(t).ID("a").Hours(50).Amount(85000).Build(),
		testutil.NewOrder(t).ID("b").TermPass("2025-02-10", "2025-03-16").Amount(150000).Build(),
	}

	ds, err := Read(context.Background(), strings.NewReader(testutil.PaymentCSV(orders...)), Options{
		Location: testutil.Seoul(t),
		Filter:   DefaultFilter(),
	})
	require.NoError(t, err)
	require.Len(t, ds.Orders, 2)
	assert.Equal(t, orders[1].Description, ds.Orders[1].Description)
	assert.True(t, orders[0].Timestamp.Equal(ds.Orders[0].Timestamp))
}

func TestRead_Unsupported(t *testing.T) {
	tests := []struct {
		name  string
		input string
	}{
		{name: "empty", input: ""},
		{name: "member export", input: "NO,이름,생년월일,성별,사물함,신발장,휴대폰,PIN번호,수신,보호자,휴대폰2,수신2,상태,이용권,좌석,좌석타입,시작일,종료일,잔여,전체,이용금액\n"},
		{name: "other file", input: "date,amount\n2025-01-01,100\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Read(context.Background(), strings.NewReader(tt.input), Options{})
			require.Error(t, err)
			assert.ErrorIs(t, err, common.ErrUnsupportedExport)

			var userErr *common.UserError
			assert.ErrorAs(t, err, &userErr)
		})
	}
}

func TestRead_Canceled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	_, err := Read(ctx, strings.NewReader(sampleExport), Options{})
	require.ErrorIs(t, err, context.Canceled)
}

func TestDetectKind(t *testing.T) {
	payment := strings.Split(strings.TrimSpace(paymentHeader), ",")
	assert.Equal(t, KindPayment, DetectKind(payment))
	assert.Equal(t, KindPayment, DetectKind(append([]string{"비고"}, payment...)))
	assert.Equal(t, KindUnknown, DetectKind(payment[1:]))
	assert.Equal(t, KindUnknown, DetectKind(nil))
}

func TestFilter(t *testing.T) {
	f := DefaultFilter()

	tests := []struct {
		name string
		row  Row
		want bool
	}{
		{name: "completed", row: Row{Status: "결제완료", Name: "김철수"}, want: true},
		{name: "canceled", row: Row{Status: "결제취소", Name: "김철수"}, want: false},
		{name: "administrator", row: Row{Status: "결제완료", Name: "관리자"}, want: false},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := f.Match(tt.row)
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}

	t.Run("custom expression", func(t *testing.T) {
		custom, err := NewFilter(`category == "기간권" && amount >= 100000`)
		require.NoError(t, err)

		got, err := custom.Match(Row{Category: "기간권", Amount: 150000})
		require.NoError(t, err)
		assert.True(t, got)

		got, err = custom.Match(Row{Category: "정액시간권", Amount: 150000})
		require.NoError(t, err)
		assert.False(t, got)
	})

	t.Run("invalid expressions", func(t *testing.T) {
		_, err := NewFilter(`status ==`)
		require.ErrorIs(t, err, common.ErrInvalidConfig)

		_, err = NewFilter(`amount + 1`)
		require.ErrorIs(t, err, common.ErrInvalidConfig)

		_, err = NewFilter(`unknown == "x"`)
		require.ErrorIs(t, err, common.ErrInvalidConfig)
	})

	t.Run("empty accepts all", func(t *testing.T) {
		all, err := NewFilter("")
		require.NoError(t, err)
		got, err := all.Match(Row{Status: "결제취소"})
		require.NoError(t, err)
		assert.True(t, got)
	})
}

func TestParseAmount(t *testing.T) {
	tests := []struct {
		raw     string
		want    int64
		wantErr bool
	}{
		{raw: "85000", want: 85000},
		{raw: "85,000", want: 85000},
		{raw: " 135,000원 ", want: 135000},
		{raw: "85000.0", want: 85000},
		{raw: "-5000", want: -5000},
		{raw: "12.5", wantErr: true},
		{raw: "무료", wantErr: true},
		{raw: "", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.raw, func(t *testing.T) {
			got, err := ParseAmount(tt.raw)
			if tt.wantErr {
				require.ErrorIs(t, err, ErrMalformedAmount)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestParseTimestamp(t *testing.T) {
	loc := testutil.Seoul(t)
	want := testutil.MustTime(t, loc, "2025-02-10 10:30:00")

	for _, raw := range []string{"2025-02-10 10:30:00", "2025-02-10 10:30", "2025-02-10T10:30:00", "2025.02.10 10:30:00"} {
		got, err := ParseTimestamp(raw, loc)
		require.NoError(t, err, raw)
		assert.True(t, want.Equal(got), raw)
	}

	_, err := ParseTimestamp("10/02/2025", loc)
	assert.Error(t, err)
	_, err = ParseTimestamp("", loc)
	assert.Error(t, err)
}
