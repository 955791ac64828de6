package api

import (
	"encoding/json"
	"errors"
	"log/slog"
	"net/http"
	"time"

	"github.com/Veraticus/passbook/internal/campaign"
	"github.com/Veraticus/passbook/internal/catalog"
	"github.com/Veraticus/passbook/internal/classification"
	"github.com/Veraticus/passbook/internal/common"
	"github.com/Veraticus/passbook/internal/ingest"
	"github.com/Veraticus/passbook/internal/model"
	"github.com/Veraticus/passbook/internal/report"
)

// Handler holds dependencies for API handlers.
type Handler struct {
	deps     Dependencies
	version  string
	maxBytes int64
}

// NewHandler creates a new API handler.
func NewHandler(deps Dependencies, version string, maxBytes int64) *Handler {
	return &Handler{deps: deps, version: version, maxBytes: maxBytes}
}

// HealthResponse is the response for GET /health.
type HealthResponse struct {
	Status  string `json:"status"`
	Version string `json:"version,omitempty"`
}

// CatalogCampaign is one campaign in the GET /v1/catalog response.
type CatalogCampaign struct {
	Adjustments map[model.Category]map[model.Label]catalog.Adjustment `json:"adjustments"`
	ID          string                                                `json:"id"`
	Start       string                                                `json:"start"`
	End         string                                                `json:"end"`
	Days        int                                                   `json:"days"`
}

// CatalogResponse is the response for GET /v1/catalog.
type CatalogResponse struct {
	Regular   map[model.Category][]catalog.Tier `json:"regular"`
	TimeZone  string                            `json:"time_zone"`
	Campaigns []CatalogCampaign                 `json:"campaigns"`
	Overlaps  [][2]string                       `json:"overlaps,omitempty"`
}

// OrderResult is one classified order in the POST /v1/classify response.
type OrderResult struct {
	Classification model.Classification `json:"classification"`
	Timestamp      time.Time            `json:"timestamp"`
	Amount         *int64               `json:"amount"`
	Name           string               `json:"name"`
	Description    string               `json:"description"`
}

// ClassifyResponse is the response for POST /v1/classify.
type ClassifyResponse struct {
	Period   ingest.Period      `json:"period"`
	Counts   map[model.Kind]int `json:"counts"`
	Encoding string             `json:"encoding"`
	Results  []OrderResult      `json:"results"`
	Rejected []ingest.RowError  `json:"rejected"`
	Filtered int                `json:"filtered"`
}

// ReportResponse is the response for POST /v1/report.
type ReportResponse struct {
	*report.Report
	Rejected []ingest.RowError `json:"rejected"`
	Filtered int               `json:"filtered"`
}

// Health handles GET /health.
func (h *Handler) Health(w http.ResponseWriter, _ *http.Request) {
	writeJSON(w, http.StatusOK, HealthResponse{Status: "ok", Version: h.version})
}

// Catalog handles GET /v1/catalog.
func (h *Handler) Catalog(w http.ResponseWriter, _ *http.Request) {
	cat := h.deps.Catalog
	resp := CatalogResponse{
		Regular: map[model.Category][]catalog.Tier{
			model.CategoryTimePass: cat.Regular(model.CategoryTimePass),
			model.CategoryTermPass: cat.Regular(model.CategoryTermPass),
		},
		TimeZone: cat.Location().String(),
		Overlaps: cat.Overlaps(),
	}
	for _, c := range cat.Campaigns() {
		resp.Campaigns = append(resp.Campaigns, CatalogCampaign{
			ID:          c.ID,
			Start:       c.Start.Format(time.DateOnly),
			End:         c.End.Format(time.DateOnly),
			Days:        c.Days(),
			Adjustments: c.Adjustments,
		})
	}
	writeJSON(w, http.StatusOK, resp)
}

// Classify handles POST /v1/classify with a payment export as the body. With
// ?row=<id> it returns only that order's result.
func (h *Handler) Classify(w http.ResponseWriter, r *http.Request) {
	ds, results, ok := h.classify(w, r)
	if !ok {
		return
	}

	if row := r.URL.Query().Get("row"); row != "" {
		idx, err := classification.Lookup(results, row)
		if err != nil {
			writeError(w, http.StatusNotFound, err.Error())
			return
		}
		writeJSON(w, http.StatusOK, orderResult(ds.Orders[idx], results[idx]))
		return
	}

	resp := ClassifyResponse{
		Period:   ds.Period,
		Counts:   classification.Counts(results),
		Encoding: string(ds.Encoding),
		Results:  make([]OrderResult, len(results)),
		Rejected: nonNil(ds.Rejected),
		Filtered: ds.Filtered,
	}
	for i, o := range ds.Orders {
		resp.Results[i] = orderResult(o, results[i])
	}

	writeJSON(w, http.StatusOK, resp)
}

func orderResult(o model.Order, c model.Classification) OrderResult {
	res := OrderResult{
		Classification: c,
		Timestamp:      o.Timestamp,
		Name:           o.Name,
		Description:    o.Description,
	}
	if o.AmountErr == nil {
		amount := o.Amount
		res.Amount = &amount
	}
	return res
}

// Report handles POST /v1/report with a payment export as the body.
func (h *Handler) Report(w http.ResponseWriter, r *http.Request) {
	ds, results, ok := h.classify(w, r)
	if !ok {
		return
	}

	opts := h.deps.Report
	if opts.Now.IsZero() {
		opts.Now = h.clockNow()
	}
	opts.Passes.Today = opts.Now.In(h.deps.Catalog.Location())

	rep, err := report.Build(ds.Orders, results, campaign.NewLocator(h.deps.Catalog),
		report.Period{Start: ds.Period.Start, End: ds.Period.End}, opts)
	if err != nil {
		slog.Error("failed to build report", "error", err, "request_id", GetRequestID(r.Context()))
		writeError(w, http.StatusInternalServerError, "failed to build report")
		return
	}

	writeJSON(w, http.StatusOK, ReportResponse{
		Report:   rep,
		Rejected: nonNil(ds.Rejected),
		Filtered: ds.Filtered,
	})
}

// classify reads the request body as an export and classifies it. It writes
// the error response itself and reports whether the caller should continue.
func (h *Handler) classify(w http.ResponseWriter, r *http.Request) (*ingest.Dataset, []model.Classification, bool) {
	ctx := r.Context()
	body := http.MaxBytesReader(w, r.Body, h.maxBytes)

	ds, err := ingest.Read(ctx, body, ingest.Options{
		Location: h.deps.Catalog.Location(),
		Filter:   h.deps.Filter,
	})
	if err != nil {
		var tooLarge *http.MaxBytesError
		var userErr *common.UserError
		switch {
		case errors.As(err, &tooLarge):
			writeError(w, http.StatusRequestEntityTooLarge, "export exceeds upload limit")
		case errors.As(err, &userErr):
			writeError(w, http.StatusBadRequest, userErr.UserMessage)
		default:
			slog.Warn("failed to read export", "error", err, "request_id", GetRequestID(ctx))
			writeError(w, http.StatusBadRequest, "failed to read export")
		}
		return nil, nil, false
	}

	RowsRejected.Add(float64(len(ds.Rejected)))

	classifier := classification.New(h.deps.Catalog, h.deps.Clock, h.deps.Classifier)
	results, err := classifier.ClassifyBatch(ctx, ds.Orders)
	if err != nil {
		writeError(w, http.StatusServiceUnavailable, "classification interrupted")
		return nil, nil, false
	}

	for kind, n := range classification.Counts(results) {
		OrdersClassified.WithLabelValues(string(kind)).Add(float64(n))
	}

	return ds, results, true
}

func (h *Handler) clockNow() time.Time {
	if h.deps.Clock == nil {
		return time.Now()
	}
	return h.deps.Clock.Now()
}

func nonNil(rows []ingest.RowError) []ingest.RowError {
	if rows == nil {
		return []ingest.RowError{}
	}
	return rows
}

type errorResponse struct {
	Error string `json:"error"`
}

func writeError(w http.ResponseWriter, status int, message string) {
	writeJSON(w, status, errorResponse{Error: message})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		slog.Error("failed to encode response", "error", err)
	}
}
