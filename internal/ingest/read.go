package ingest

import (
	"context"
	"encoding/csv"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"strconv"
	"strings"
	"time"

	"github.com/Veraticus/passbook/internal/common"
	"github.com/Veraticus/passbook/internal/model"
)

// ErrMalformedAmount is set on orders whose amount is not an integer.
var ErrMalformedAmount = errors.New("malformed amount")

var timestampLayouts = []string{
	"2006-01-02 15:04:05",
	"2006-01-02 15:04",
	"2006-01-02T15:04:05",
	"2006.01.02 15:04:05",
	"2006-01-02",
}

// RowError describes an export row that could not become an order.
type RowError struct {
	Field  string `json:"field,omitempty"`
	Reason string `json:"reason"`
	Line   int    `json:"line"`
}

func (e *RowError) Error() string {
	if e.Field == "" {
		return fmt.Sprintf("line %d: %s", e.Line, e.Reason)
	}
	return fmt.Sprintf("line %d: %s: %s", e.Line, e.Field, e.Reason)
}

// Period is the span of order dates in an export.
type Period struct {
	Start time.Time `json:"start"`
	End   time.Time `json:"end"`
}

// IsZero reports whether no timestamp was seen.
func (p Period) IsZero() bool {
	return p.Start.IsZero() && p.End.IsZero()
}

func (p *Period) extend(ts time.Time) {
	if p.Start.IsZero() || ts.Before(p.Start) {
		p.Start = ts
	}
	if p.End.IsZero() || ts.After(p.End) {
		p.End = ts
	}
}

// Dataset is one decoded payment export.
type Dataset struct {
	Period   Period
	Kind     ExportKind
	Encoding Encoding
	Orders   []model.Order
	Rejected []RowError
	Filtered int
}

// Options configures Read.
type Options struct {
	// Location is the zone export timestamps are written in. Defaults to UTC.
	Location *time.Location
	// Filter selects rows; nil accepts every row.
	Filter *Filter
}

// Read decodes a payment export. Rows failing the filter are counted in
// Filtered; rows missing a row number or a parseable timestamp are collected
// in Rejected. Neither stops the read.
func Read(ctx context.Context, r io.Reader, opts Options) (*Dataset, error) {
	if opts.Location == nil {
		opts.Location = time.UTC
	}

	decoded, enc, err := Decode(r)
	if err != nil {
		return nil, err
	}

	reader := csv.NewReader(decoded)
	reader.FieldsPerRecord = -1
	reader.LazyQuotes = true

	header, err := reader.Read()
	if errors.Is(err, io.EOF) {
		return nil, common.NewUserError("the export is empty", common.ErrUnsupportedExport)
	}
	if err != nil {
		return nil, fmt.Errorf("failed to read header: %w", err)
	}

	ds := &Dataset{Kind: DetectKind(header), Encoding: enc}
	switch ds.Kind {
	case KindPayment:
	case KindMember:
		return nil, common.NewUserError("member exports cannot be classified; export 회원결제내역 instead",
			fmt.Errorf("%w: %s", common.ErrUnsupportedExport, ds.Kind))
	default:
		return nil, common.NewUserError("the file is not a payment export (missing columns)",
			fmt.Errorf("%w: header %v", common.ErrUnsupportedExport, header))
	}

	cols := headerIndex(header)

	for {
		if err := ctx.Err(); err != nil {
			return nil, err
		}

		record, err := reader.Read()
		if errors.Is(err, io.EOF) {
			break
		}
		if err != nil {
			var perr *csv.ParseError
			if errors.As(err, &perr) {
				ds.reject(RowError{Line: perr.StartLine, Reason: perr.Err.Error()})
				continue
			}
			return nil, fmt.Errorf("failed to read export: %w", err)
		}
		line, _ := reader.FieldPos(0)

		get := func(column string) string {
			i := cols[column]
			if i >= len(record) {
				return ""
			}
			return strings.TrimSpace(record[i])
		}

		amount, amountErr := ParseAmount(get(ColumnAmount))

		ts, tsErr := ParseTimestamp(get(ColumnTimestamp), opts.Location)
		if tsErr == nil {
			ds.Period.extend(ts)
		}

		keep, err := opts.Filter.Match(Row{
			Status:   get(ColumnStatus),
			Name:     get(ColumnName),
			Category: get(ColumnCategory),
			Amount:   amount,
		})
		if err != nil {
			return nil, fmt.Errorf("line %d: %w", line, err)
		}
		if !keep {
			ds.Filtered++
			continue
		}

		rowID := get(ColumnNo)
		if rowID == "" {
			ds.reject(RowError{Line: line, Field: ColumnNo, Reason: "missing row number"})
			continue
		}
		if tsErr != nil {
			ds.reject(RowError{Line: line, Field: ColumnTimestamp, Reason: tsErr.Error()})
			continue
		}

		listAmount, _ := ParseAmount(get(ColumnListAmount))
		discount, _ := ParseAmount(get(ColumnDiscount))

		order := model.Order{
			RowID:         rowID,
			Name:          get(ColumnName),
			Category:      model.Category(get(ColumnCategory)),
			Description:   get(ColumnDescription),
			Status:        get(ColumnStatus),
			PaymentMethod: get(ColumnPaymentMethod),
			OrderType:     get(ColumnOrderType),
			Timestamp:     ts,
			Amount:        amount,
			ListAmount:    listAmount,
			Discount:      discount,
			AmountErr:     amountErr,
		}
		ds.Orders = append(ds.Orders, order)
	}

	slog.Debug("read payment export",
		"encoding", ds.Encoding,
		"orders", len(ds.Orders),
		"filtered", ds.Filtered,
		"rejected", len(ds.Rejected))

	return ds, nil
}

func (ds *Dataset) reject(e RowError) {
	slog.Warn("rejected export row", "line", e.Line, "field", e.Field, "reason", e.Reason)
	ds.Rejected = append(ds.Rejected, e)
}

// ParseAmount parses an integer amount, tolerating thousands separators,
// whitespace and a trailing "원".
func ParseAmount(raw string) (int64, error) {
	cleaned := strings.TrimSuffix(strings.TrimSpace(raw), "원")
	cleaned = strings.NewReplacer(",", "", " ", "").Replace(cleaned)
	if cleaned == "" {
		return 0, fmt.Errorf("%w: empty", ErrMalformedAmount)
	}

	n, err := strconv.ParseInt(cleaned, 10, 64)
	if err != nil {
		// Spreadsheet round-trips turn 85000 into "85000.0".
		if f, ferr := strconv.ParseFloat(cleaned, 64); ferr == nil && f == float64(int64(f)) {
			return int64(f), nil
		}
		return 0, fmt.Errorf("%w: %q", ErrMalformedAmount, raw)
	}
	return n, nil
}

// ParseTimestamp parses an export timestamp in loc.
func ParseTimestamp(raw string, loc *time.Location) (time.Time, error) {
	if raw == "" {
		return time.Time{}, errors.New("missing timestamp")
	}
	for _, layout := range timestampLayouts {
		if ts, err := time.ParseInLocation(layout, raw, loc); err == nil {
			return ts, nil
		}
	}
	return time.Time{}, fmt.Errorf("unparseable timestamp %q", raw)
}
