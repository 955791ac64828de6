package config

import (
	"fmt"
	"time"

	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/classification"
	"github.com/Veraticus/passbook/internal/common"
	"github.com/Veraticus/passbook/internal/ingest"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/Veraticus/passbook/internal/service"
	"github.com/shopspring/decimal"
	"github.com/spf13/viper"
)

// Defaults for settings not present in the config file or environment.
const (
	DefaultTimeZone    = "Asia/Seoul"
	DefaultServeAddr   = ":8080"
	DefaultPGRate      = "0.033"
	DefaultRoyaltyRate = "0.05"
	DefaultCertDir     = "~/.config/passbook/certs"
)

// Settings is the typed view of the viper configuration.
type Settings struct {
	PGRate               decimal.Decimal
	RoyaltyRate          decimal.Decimal
	CatalogPath          string
	TimeZone             string
	Today                string
	Filter               string
	LogLevel             string
	LogFormat            string
	ServeAddr            string
	CertDir              string
	TLSHosts             []string
	Workers              int
	VerifySuspectedLabel bool
	BinExpiredPasses     bool
	ServeTLS             bool
}

// SetDefaults registers default values on v.
func SetDefaults(v *viper.Viper) {
	v.SetDefault("analysis.timezone", DefaultTimeZone)
	v.SetDefault("analysis.workers", 1)
	v.SetDefault("analysis.verify_suspected_label", false)
	v.SetDefault("analysis.bin_expired_passes", false)
	v.SetDefault("ingest.filter", ingest.DefaultFilterExpression)
	v.SetDefault("fees.pg_rate", DefaultPGRate)
	v.SetDefault("fees.royalty_rate", DefaultRoyaltyRate)
	v.SetDefault("logging.level", "info")
	v.SetDefault("logging.format", "console")
	v.SetDefault("serve.addr", DefaultServeAddr)
	v.SetDefault("serve.tls", false)
	v.SetDefault("serve.cert_dir", DefaultCertDir)
}

// Load reads settings from the global viper instance.
func Load() (*Settings, error) {
	return LoadFrom(viper.GetViper())
}

// LoadFrom reads and validates settings from v.
func LoadFrom(v *viper.Viper) (*Settings, error) {
	SetDefaults(v)

	pg, err := decimal.NewFromString(v.GetString("fees.pg_rate"))
	if err != nil {
		return nil, fmt.Errorf("%w: fees.pg_rate: %w", common.ErrInvalidConfig, err)
	}
	royalty, err := decimal.NewFromString(v.GetString("fees.royalty_rate"))
	if err != nil {
		return nil, fmt.Errorf("%w: fees.royalty_rate: %w", common.ErrInvalidConfig, err)
	}

	s := &Settings{
		PGRate:               pg,
		RoyaltyRate:          royalty,
		CatalogPath:          ExpandPath(v.GetString("catalog.path")),
		TimeZone:             v.GetString("analysis.timezone"),
		Today:                v.GetString("analysis.today"),
		Filter:               v.GetString("ingest.filter"),
		LogLevel:             v.GetString("logging.level"),
		LogFormat:            v.GetString("logging.format"),
		ServeAddr:            v.GetString("serve.addr"),
		CertDir:              ExpandPath(v.GetString("serve.cert_dir")),
		TLSHosts:             v.GetStringSlice("serve.tls_hosts"),
		Workers:              v.GetInt("analysis.workers"),
		VerifySuspectedLabel: v.GetBool("analysis.verify_suspected_label"),
		BinExpiredPasses:     v.GetBool("analysis.bin_expired_passes"),
		ServeTLS:             v.GetBool("serve.tls"),
	}

	if err := s.Validate(); err != nil {
		return nil, err
	}
	return s, nil
}

// Validate checks ranges that viper cannot express.
func (s *Settings) Validate() error {
	if s.Workers < 1 {
		return fmt.Errorf("%w: analysis.workers must be at least 1, got %d", common.ErrInvalidConfig, s.Workers)
	}
	rates := []struct {
		value decimal.Decimal
		name  string
	}{
		{s.PGRate, "fees.pg_rate"},
		{s.RoyaltyRate, "fees.royalty_rate"},
	}
	for _, r := range rates {
		if r.value.IsNegative() || r.value.GreaterThanOrEqual(decimal.NewFromInt(1)) {
			return fmt.Errorf("%w: %s must be in [0, 1), got %s", common.ErrInvalidConfig, r.name, r.value)
		}
	}
	if _, err := s.Location(); err != nil {
		return err
	}
	if s.Today != "" {
		if _, err := time.Parse(time.DateOnly, s.Today); err != nil {
			return fmt.Errorf("%w: analysis.today must be YYYY-MM-DD: %w", common.ErrInvalidConfig, err)
		}
	}
	return nil
}

// Location resolves the configured time zone.
func (s *Settings) Location() (*time.Location, error) {
	loc, err := time.LoadLocation(s.TimeZone)
	if err != nil {
		return nil, fmt.Errorf("%w: unknown time zone %q", common.ErrInvalidConfig, s.TimeZone)
	}
	return loc, nil
}

// Clock returns a fixed clock when analysis.today is set, otherwise the
// system clock.
func (s *Settings) Clock(loc *time.Location) service.Clock {
	if s.Today == "" {
		return service.SystemClock{}
	}
	today, err := time.ParseInLocation(time.DateOnly, s.Today, loc)
	if err != nil {
		return service.SystemClock{}
	}
	return service.FixedClock(today)
}

// Catalog loads the catalog file, or the built-in catalog when no path is set.
func (s *Settings) Catalog(loc *time.Location) (*catalog.Catalog, error) {
	if s.CatalogPath == "" {
		return catalog.Default(loc), nil
	}
	return catalog.Load(s.CatalogPath, loc)
}

// ClassifierOptions maps the analysis.* keys onto classifier options.
func (s *Settings) ClassifierOptions() classification.Options {
	return classification.Options{
		Workers:              s.Workers,
		VerifySuspectedLabel: s.VerifySuspectedLabel,
	}
}

// PassOptions maps analysis.bin_expired_passes onto timeline options for
// category, anchored at today.
func (s *Settings) PassOptions(category model.Category, today time.Time) report.PassOptions {
	return report.PassOptions{
		Category:   category,
		Today:      today,
		BinExpired: s.BinExpiredPasses,
	}
}

// Rates returns the fee rates used for settlement.
func (s *Settings) Rates() report.Rates {
	return report.Rates{PG: s.PGRate, Royalty: s.RoyaltyRate}
}

// NewFilter compiles the ingest.filter expression.
func (s *Settings) NewFilter() (*ingest.Filter, error) {
	return ingest.NewFilter(s.Filter)
}
