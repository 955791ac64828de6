package cli

import (
	"bytes"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFormatters(t *testing.T) {
	tests := []struct {
		name   string
		format func(string) string
		icon   string
	}{
		{name: "success", format: FormatSuccess, icon: SuccessIcon},
		{name: "error", format: FormatError, icon: ErrorIcon},
		{name: "warning", format: FormatWarning, icon: WarningIcon},
		{name: "info", format: FormatInfo, icon: InfoIcon},
		{name: "title", format: FormatTitle, icon: PassIcon},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out := tt.format("결제 내역")
			assert.Contains(t, out, tt.icon)
			assert.Contains(t, out, "결제 내역")
		})
	}
}

func TestRenderBox(t *testing.T) {
	out := RenderBox("매출", "총 매출 85,000원")
	assert.Contains(t, out, "매출")
	assert.Contains(t, out, "총 매출 85,000원")
	assert.Greater(t, strings.Count(out, "\n"), 2)
}

func TestRenderTable(t *testing.T) {
	out := RenderTable([]string{"이름", "금액"}, [][]string{{"김철수", "85,000"}, {"이영희", "135,000"}})
	for _, want := range []string{"이름", "금액", "김철수", "135,000"} {
		assert.Contains(t, out, want)
	}
}

func TestProgress(t *testing.T) {
	var buf bytes.Buffer
	p := NewProgress(&buf, 3, "Classifying orders...")
	p.Set(1, 3)
	p.Set(3, 3)
	p.Finish()

	assert.Contains(t, buf.String(), "Classifying orders...")
}
