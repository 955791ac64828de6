package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/Veraticus/passbook/internal/common"
	"github.com/Veraticus/passbook/internal/ingest"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/service"
	"github.com/Veraticus/passbook/internal/sheets"
	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestExpandPath(t *testing.T) {
	home, err := os.UserHomeDir()
	require.NoError(t, err)
	t.Setenv("PASSBOOK_TEST_DIR", "/srv/passbook")

	tests := []struct {
		name string
		in   string
		want string
	}{
		{name: "empty", in: "", want: ""},
		{name: "tilde only", in: "~", want: home},
		{name: "tilde prefix", in: "~/catalog.yaml", want: filepath.Join(home, "catalog.yaml")},
		{name: "env var", in: "$PASSBOOK_TEST_DIR/catalog.toml", want: "/srv/passbook/catalog.toml"},
		{name: "absolute", in: "/etc/passbook.yaml", want: "/etc/passbook.yaml"},
		{name: "tilde in middle untouched", in: "a~/b", want: "a~/b"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, ExpandPath(tt.in))
		})
	}
}

func TestLoadFrom_Defaults(t *testing.T) {
	s, err := LoadFrom(viper.New())
	require.NoError(t, err)

	assert.Equal(t, DefaultTimeZone, s.TimeZone)
	assert.Equal(t, 1, s.Workers)
	assert.Equal(t, ingest.DefaultFilterExpression, s.Filter)
	assert.Equal(t, "0.033", s.PGRate.String())
	assert.Equal(t, "0.05", s.RoyaltyRate.String())
	assert.Equal(t, DefaultServeAddr, s.ServeAddr)
	assert.False(t, s.ServeTLS)
	assert.Equal(t, ExpandPath(DefaultCertDir), s.CertDir)
	assert.Empty(t, s.TLSHosts)
	assert.False(t, s.PassOptions("", time.Time{}).BinExpired)
	assert.IsType(t, service.SystemClock{}, s.Clock(time.UTC))

	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, "Asia/Seoul", loc.String())

	cat, err := s.Catalog(loc)
	require.NoError(t, err)
	assert.NotEmpty(t, cat.Campaigns())

	filter, err := s.NewFilter()
	require.NoError(t, err)
	assert.Equal(t, ingest.DefaultFilterExpression, filter.Expression())
}

func TestLoadFrom_Overrides(t *testing.T) {
	v := viper.New()
	v.Set("analysis.today", "2025-03-01")
	v.Set("analysis.workers", 4)
	v.Set("analysis.verify_suspected_label", true)
	v.Set("analysis.bin_expired_passes", true)
	v.Set("fees.pg_rate", "0.025")

	s, err := LoadFrom(v)
	require.NoError(t, err)

	opts := s.ClassifierOptions()
	assert.Equal(t, 4, opts.Workers)
	assert.True(t, opts.VerifySuspectedLabel)
	passes := s.PassOptions(model.CategoryLocker, time.Date(2025, 3, 1, 0, 0, 0, 0, time.UTC))
	assert.True(t, passes.BinExpired)
	assert.Equal(t, model.CategoryLocker, passes.Category)
	assert.Equal(t, "0.025", s.Rates().PG.String())

	loc, err := s.Location()
	require.NoError(t, err)
	assert.Equal(t, time.Date(2025, 3, 1, 0, 0, 0, 0, loc), s.Clock(loc).Now())
}

func TestLoadFrom_Invalid(t *testing.T) {
	tests := []struct {
		values map[string]any
		name   string
	}{
		{name: "zero workers", values: map[string]any{"analysis.workers": 0}},
		{name: "unknown zone", values: map[string]any{"analysis.timezone": "Mars/Olympus"}},
		{name: "bad today", values: map[string]any{"analysis.today": "03/01/2025"}},
		{name: "negative fee", values: map[string]any{"fees.pg_rate": "-0.1"}},
		{name: "fee of one", values: map[string]any{"fees.royalty_rate": "1"}},
		{name: "fee not a number", values: map[string]any{"fees.pg_rate": "three percent"}},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			for k, val := range tt.values {
				v.Set(k, val)
			}
			_, err := LoadFrom(v)
			assert.ErrorIs(t, err, common.ErrInvalidConfig)
		})
	}
}

func TestLoadFrom_CatalogPath(t *testing.T) {
	v := viper.New()
	v.Set("catalog.path", filepath.Join(t.TempDir(), "missing.yaml"))

	s, err := LoadFrom(v)
	require.NoError(t, err)

	_, err = s.Catalog(time.UTC)
	assert.Error(t, err)
}

func TestLoadSheetsConfig(t *testing.T) {
	for _, key := range []string{
		"GOOGLE_SHEETS_CLIENT_ID",
		"GOOGLE_SHEETS_CLIENT_SECRET",
		"GOOGLE_SHEETS_REFRESH_TOKEN",
		"GOOGLE_SHEETS_SPREADSHEET_ID",
	} {
		t.Setenv(key, "")
	}
	t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "/env/key.json")
	t.Setenv("GOOGLE_SHEETS_SPREADSHEET_NAME", "환경 보고서")

	t.Run("environment fallback", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)

		c, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "/env/key.json", c.ServiceAccountPath)
		assert.Equal(t, "환경 보고서", c.SpreadsheetName)
	})

	t.Run("viper wins", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		viper.Set("sheets.service_account_path", "/viper/key.json")
		viper.Set("sheets.spreadsheet_name", "설정 보고서")

		c, err := LoadSheetsConfig()
		require.NoError(t, err)
		assert.Equal(t, "/viper/key.json", c.ServiceAccountPath)
		assert.Equal(t, "설정 보고서", c.SpreadsheetName)
	})

	t.Run("no credentials", func(t *testing.T) {
		viper.Reset()
		t.Cleanup(viper.Reset)
		t.Setenv("GOOGLE_SHEETS_SERVICE_ACCOUNT_PATH", "")

		c, err := LoadSheetsConfig()
		assert.Nil(t, c)
		assert.ErrorIs(t, err, common.ErrMissingConfig)
		assert.Equal(t, sheets.DefaultSpreadsheetName, sheets.DefaultConfig().SpreadsheetName)
	})
}
