package ingest

import "strings"

// ExportKind identifies which export a file came from.
type ExportKind string

// Export kinds.
const (
	KindPayment ExportKind = "payment"
	KindMember  ExportKind = "member"
	KindUnknown ExportKind = "unknown"
)

// Payment export columns.
const (
	ColumnNo            = "No"
	ColumnBrand         = "브랜드"
	ColumnBranch        = "지점"
	ColumnCategory      = "구분"
	ColumnName          = "이름"
	ColumnDescription   = "주문명"
	ColumnListAmount    = "주문금액"
	ColumnDiscount      = "할인금액"
	ColumnAmount        = "합계금액"
	ColumnPaymentMethod = "결제구분"
	ColumnOrderType     = "주문유형"
	ColumnStatus        = "주문상태"
	ColumnTimestamp     = "주문일시"
)

var paymentColumns = []string{
	ColumnNo, ColumnBrand, ColumnBranch, ColumnCategory, ColumnName,
	ColumnDescription, ColumnListAmount, ColumnDiscount, ColumnAmount,
	ColumnPaymentMethod, ColumnOrderType, ColumnStatus, ColumnTimestamp,
}

var memberColumns = []string{
	"NO", "이름", "생년월일", "성별", "사물함", "신발장", "휴대폰", "PIN번호",
	"수신", "보호자", "휴대폰2", "수신2", "상태", "이용권", "좌석", "좌석타입",
	"시작일", "종료일", "잔여", "전체", "이용금액",
}

// DetectKind reports which export the header belongs to. Extra columns are
// allowed; every column of the export's set must be present.
func DetectKind(header []string) ExportKind {
	index := headerIndex(header)
	switch {
	case hasAll(index, paymentColumns):
		return KindPayment
	case hasAll(index, memberColumns):
		return KindMember
	default:
		return KindUnknown
	}
}

func headerIndex(header []string) map[string]int {
	index := make(map[string]int, len(header))
	for i, h := range header {
		name := strings.TrimSpace(h)
		if _, seen := index[name]; !seen {
			index[name] = i
		}
	}
	return index
}

func hasAll(index map[string]int, columns []string) bool {
	for _, c := range columns {
		if _, ok := index[c]; !ok {
			return false
		}
	}
	return true
}
