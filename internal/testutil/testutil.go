// Package testutil provides test helpers for building orders and payment
// export fixtures.
//
// Example:
//
//	order := testutil.NewOrder(t).
//		TermPass("2025-01-01", "2025-02-04").
//		Amount(150000).
//		At("2025-01-15 10:30:00").
//		Build()
package testutil

import (
	"bytes"
	"encoding/csv"
	"fmt"
	"strconv"
	"sync/atomic"
	"testing"
	"time"

	"github.com/Veraticus/passbook/internal/model"
)

// Seoul returns the Asia/Seoul location, failing the test if tzdata is unavailable.
func Seoul(t testing.TB) *time.Location {
	t.Helper()
	loc, err := time.LoadLocation("Asia/Seoul")
	if err != nil {
		t.Fatalf("failed to load Asia/Seoul: %v", err)
	}
	return loc
}

// MustTime parses "2006-01-02 15:04:05" or "2006-01-02" in loc.
func MustTime(t testing.TB, loc *time.Location, value string) time.Time {
	t.Helper()
	layout := "2006-01-02 15:04:05"
	if len(value) == len("2006-01-02") {
		layout = "2006-01-02"
	}
	ts, err := time.ParseInLocation(layout, value, loc)
	if err != nil {
		t.Fatalf("failed to parse time %q: %v", value, err)
	}
	return ts
}

// OrderBuilder builds orders with a fluent API. Defaults describe a paid
// regular 50-hour time-pass.
type OrderBuilder struct {
	t     testing.TB
	loc   *time.Location
	order model.Order
}

var rowSeq atomic.Int64

// NewOrder starts a builder in Asia/Seoul with a unique row ID.
func NewOrder(t testing.TB) *OrderBuilder {
	t.Helper()
	loc := Seoul(t)
	return &OrderBuilder{
		t:   t,
		loc: loc,
		order: model.Order{
			RowID:       strconv.FormatInt(rowSeq.Add(1), 10),
			Name:        "홍길동",
			Category:    model.CategoryTimePass,
			Description: "50시간",
			Amount:      85000,
			ListAmount:  85000,
			Status:      "결제완료",
			Timestamp:   MustTime(t, loc, "2025-02-10 10:00:00"),
		},
	}
}

// ID sets the row ID.
func (b *OrderBuilder) ID(id string) *OrderBuilder {
	b.order.RowID = id
	return b
}

// Name sets the member name.
func (b *OrderBuilder) Name(name string) *OrderBuilder {
	b.order.Name = name
	return b
}

// Category sets the raw category.
func (b *OrderBuilder) Category(c model.Category) *OrderBuilder {
	b.order.Category = c
	return b
}

// Description sets the raw description.
func (b *OrderBuilder) Description(d string) *OrderBuilder {
	b.order.Description = d
	return b
}

// Hours makes the order an n-hour time-pass.
func (b *OrderBuilder) Hours(n int) *OrderBuilder {
	b.order.Category = model.CategoryTimePass
	b.order.Description = fmt.Sprintf("%d시간", n)
	return b
}

// TermPass makes the order a term-pass covering [start, end].
func (b *OrderBuilder) TermPass(start, end string) *OrderBuilder {
	b.t.Helper()
	s := MustTime(b.t, b.loc, start)
	e := MustTime(b.t, b.loc, end)
	days := int(e.Sub(s).Hours()/24) + 1
	b.order.Category = model.CategoryTermPass
	b.order.Description = fmt.Sprintf("%d일, %d주(%s~%s)", days, days/7, start, end)
	return b
}

// Amount sets the paid amount.
func (b *OrderBuilder) Amount(amount int64) *OrderBuilder {
	b.order.Amount = amount
	b.order.ListAmount = amount
	return b
}

// AmountError marks the amount as unparseable.
func (b *OrderBuilder) AmountError(err error) *OrderBuilder {
	b.order.AmountErr = err
	return b
}

// At sets the order timestamp.
func (b *OrderBuilder) At(ts string) *OrderBuilder {
	b.t.Helper()
	b.order.Timestamp = MustTime(b.t, b.loc, ts)
	return b
}

// Status sets the order status.
func (b *OrderBuilder) Status(s string) *OrderBuilder {
	b.order.Status = s
	return b
}

// Build returns the order.
func (b *OrderBuilder) Build() model.Order {
	return b.order
}

// PaymentHeader is the column set of a payment export.
var PaymentHeader = []string{
	"No", "브랜드", "지점", "구분", "이름", "주문명", "주문금액",
	"할인금액", "합계금액", "결제구분", "주문유형", "주문상태", "주문일시",
}

// PaymentRow renders one payment export line for an order.
func PaymentRow(o model.Order) []string {
	return []string{
		o.RowID, "스터디카페", "본점", string(o.Category), o.Name, o.Description,
		fmt.Sprintf("%d", o.ListAmount), fmt.Sprintf("%d", o.Discount),
		fmt.Sprintf("%d", o.Amount), o.PaymentMethod, o.OrderType, o.Status,
		o.Timestamp.Format("2006-01-02 15:04:05"),
	}
}

// PaymentCSV renders a UTF-8 payment export for the orders.
func PaymentCSV(orders ...model.Order) string {
	var buf bytes.Buffer
	w := csv.NewWriter(&buf)
	_ = w.Write(PaymentHeader)
	for _, o := range orders {
		_ = w.Write(PaymentRow(o))
	}
	w.Flush()
	return buf.String()
}
