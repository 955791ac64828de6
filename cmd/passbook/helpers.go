package main

import (
	"context"
	"fmt"
	"io"
	"log/slog"
	"os"
	"time"

	"github.com/Veraticus/passbook/internal/campaign"
	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/classification"
	"github.com/Veraticus/passbook/internal/cli"
	"github.com/Veraticus/passbook/internal/common"
	"github.com/Veraticus/passbook/internal/config"
	"github.com/Veraticus/passbook/internal/ingest"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
	"github.com/Veraticus/passbook/internal/service"
)

// session holds everything a command needs once configuration is loaded.
// A bad catalog or filter fails here, before any export is read.
type session struct {
	settings *config.Settings
	loc      *time.Location
	catalog  *catalog.Catalog
	filter   *ingest.Filter
	clock    service.Clock
}

func newSession() (*session, error) {
	settings, err := config.Load()
	if err != nil {
		return nil, err
	}

	loc, err := settings.Location()
	if err != nil {
		return nil, err
	}

	cat, err := settings.Catalog(loc)
	if err != nil {
		return nil, fmt.Errorf("failed to load catalog: %w", err)
	}
	for _, pair := range cat.Overlaps() {
		slog.Warn("Campaign windows overlap; the first configured campaign wins", "first", pair[0], "second", pair[1])
	}

	filter, err := settings.NewFilter()
	if err != nil {
		return nil, fmt.Errorf("failed to compile ingest filter: %w", err)
	}

	return &session{
		settings: settings,
		loc:      loc,
		catalog:  cat,
		filter:   filter,
		clock:    settings.Clock(loc),
	}, nil
}

// read loads and validates a payment export.
func (s *session) read(ctx context.Context, path string) (*ingest.Dataset, error) {
	f, err := os.Open(config.ExpandPath(path)) // #nosec G304 -- path is the operator's own export
	if err != nil {
		return nil, common.NewUserError("cannot open export file", err)
	}
	defer func() {
		if closeErr := f.Close(); closeErr != nil {
			slog.Warn("Failed to close export", "error", closeErr)
		}
	}()

	ds, err := ingest.Read(ctx, f, ingest.Options{Location: s.loc, Filter: s.filter})
	if err != nil {
		return nil, err
	}

	slog.Info("Export loaded",
		"path", path,
		"orders", len(ds.Orders),
		"filtered", ds.Filtered,
		"rejected", len(ds.Rejected),
		"encoding", ds.Encoding)

	if len(ds.Orders) == 0 {
		return nil, common.NewUserError("the export has no paid orders", common.ErrNoOrders)
	}
	return ds, nil
}

// classify runs the classifier, drawing a progress bar on progress when it
// is non-nil.
func (s *session) classify(ctx context.Context, ds *ingest.Dataset, progress io.Writer) ([]model.Classification, error) {
	opts := s.settings.ClassifierOptions()
	if progress != nil {
		bar := cli.NewProgress(progress, len(ds.Orders), "Classifying")
		opts.OnProgress = bar.Set
		defer bar.Finish()
	}

	return classification.New(s.catalog, s.clock, opts).ClassifyBatch(ctx, ds.Orders)
}

func (s *session) passOptions(category model.Category, name string, showExpired bool) report.PassOptions {
	opts := s.settings.PassOptions(category, s.clock.Now().In(s.loc))
	opts.Name = name
	opts.ShowExpired = showExpired
	return opts
}

func (s *session) report(ds *ingest.Dataset, results []model.Classification, passes report.PassOptions, topN int) (*report.Report, error) {
	opts := report.DefaultOptions()
	opts.Now = s.clock.Now()
	opts.Rates = s.settings.Rates()
	opts.Passes = passes
	if topN > 0 {
		opts.TopN = topN
	}

	return report.Build(ds.Orders, results, campaign.NewLocator(s.catalog),
		report.Period{Start: ds.Period.Start, End: ds.Period.End}, opts)
}

// progressWriter returns stderr unless progress output is disabled.
func progressWriter(w io.Writer, disabled bool) io.Writer {
	if disabled {
		return nil
	}
	return w
}

func printRejected(w io.Writer, rejected []ingest.RowError) {
	if len(rejected) == 0 {
		return
	}
	fmt.Fprintln(w, cli.FormatWarning(fmt.Sprintf("%d rows rejected", len(rejected))))
	for i := range rejected {
		fmt.Fprintln(w, "  "+rejected[i].Error())
	}
}
