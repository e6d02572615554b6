package services

import (
	"bytes"
	"context"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"
	"io"
	"math"
	"strconv"
	"strings"
	"time"

	"golang.org/x/sync/errgroup"

	"github.com/shashiranjanraj/sdscatalog/app/models"
	"github.com/shashiranjanraj/sdscatalog/pkg/audit"
	"github.com/shashiranjanraj/sdscatalog/pkg/hazard"
	"github.com/shashiranjanraj/sdscatalog/pkg/latex"
	"github.com/shashiranjanraj/sdscatalog/pkg/logger"
	"github.com/shashiranjanraj/sdscatalog/pkg/metrics"
	"github.com/shashiranjanraj/sdscatalog/pkg/pdfmerge"
	"github.com/shashiranjanraj/sdscatalog/pkg/reqid"
	"github.com/shashiranjanraj/sdscatalog/pkg/units"
	"github.com/shashiranjanraj/sdscatalog/pkg/workerpool"
)

// CoverTitle heads every generated cover sheet.
const CoverTitle = "Cover Sheet — U.S. Origin Shipments"

// Measurement units accepted on a checkout.
const (
	UnitGrams   = "g"
	UnitPercent = "%"
)

// Measurement types accepted on a checkout.
const (
	MeasureWeight = "weight"
	MeasureVolume = "volume"
)

// CheckoutItem is one sheet and its quantity in the request's unit.
type CheckoutItem struct {
	SdsID    uint
	Quantity float64
}

// CheckoutRequest is the canonical checkout input. Legacy field names are
// folded into Quantity by the controller before this point.
type CheckoutRequest struct {
	ProductName       string
	Destination       string
	CertificationDate time.Time
	Sensitivity       string
	Unit              string // UnitGrams (default) or UnitPercent
	MeasurementType   string // MeasureWeight (default) or MeasureVolume
	Items             []CheckoutItem
}

// Packet is an assembled checkout document.
type Packet struct {
	// PDF is positioned at offset zero.
	PDF        *bytes.Reader
	CoverPages int
	TotalPages int
	SHA256     string
	Aggregate  *hazard.Result
}

// RecordLoader batch-reads sheets; unknown ids are omitted, not errors.
type RecordLoader interface {
	FindByIDs(ctx context.Context, ids []uint) ([]models.SafetyDataSheet, error)
}

// DocumentFetcher downloads a stored sheet by URL.
type DocumentFetcher interface {
	Fetch(ctx context.Context, url string) ([]byte, error)
}

// CoverRenderer compiles a template to PDF.
type CoverRenderer interface {
	Render(ctx context.Context, id latex.TemplateID, data latex.Data) ([]byte, error)
}

// CheckoutService runs the packet pipeline:
// validate, load, aggregate, render cover, fetch sources, merge.
type CheckoutService struct {
	records    RecordLoader
	fetcher    DocumentFetcher
	renderer   CoverRenderer
	pool       *workerpool.Pool
	aggregator *hazard.Aggregator
	formatter  units.Formatter
	recorder   audit.Recorder
	fetchLimit int
	paper      string
	now        func() time.Time
}

// CheckoutOption configures a CheckoutService.
type CheckoutOption func(*CheckoutService)

// WithStatementPolicy sets how unknown hazard-statement codes are handled.
func WithStatementPolicy(p hazard.StatementPolicy) CheckoutOption {
	return func(s *CheckoutService) { s.aggregator = hazard.NewAggregator(hazard.GHSStatements, p) }
}

// WithFormatter replaces the quantity formatter.
func WithFormatter(f units.Formatter) CheckoutOption {
	return func(s *CheckoutService) { s.formatter = f }
}

// WithRecorder sets the audit recorder. The default discards manifests.
func WithRecorder(r audit.Recorder) CheckoutOption {
	return func(s *CheckoutService) {
		if r != nil {
			s.recorder = r
		}
	}
}

// WithFetchConcurrency caps parallel source downloads.
func WithFetchConcurrency(n int) CheckoutOption {
	return func(s *CheckoutService) {
		if n > 0 {
			s.fetchLimit = n
		}
	}
}

// WithPaper selects the cover sheet paper size.
func WithPaper(paper string) CheckoutOption {
	return func(s *CheckoutService) { s.paper = paper }
}

// NewCheckoutService wires the pipeline. Renders run on pool.
func NewCheckoutService(records RecordLoader, fetcher DocumentFetcher, renderer CoverRenderer, pool *workerpool.Pool, opts ...CheckoutOption) *CheckoutService {
	s := &CheckoutService{
		records:    records,
		fetcher:    fetcher,
		renderer:   renderer,
		pool:       pool,
		aggregator: hazard.NewAggregator(hazard.GHSStatements, hazard.DropUnknownStatements),
		formatter:  units.Default,
		recorder:   audit.Noop{},
		fetchLimit: 8,
		paper:      latex.A4Paper,
		now:        time.Now,
	}
	for _, opt := range opts {
		opt(s)
	}
	return s
}

// Checkout assembles the packet for req. Any failure aborts the whole
// pipeline; no partial packet is ever returned.
func (s *CheckoutService) Checkout(ctx context.Context, req CheckoutRequest) (packet *Packet, err error) {
	log := logger.WithCtx(ctx)
	defer func() { metrics.CheckoutTotal.WithLabelValues(Kind(err)).Inc() }()
	// Once the caller is gone every failure is reported as the cancellation.
	// The compiler timeout runs on a child context and stays a render failure.
	defer func() {
		if err != nil && ctx.Err() != nil && Kind(err) != "cancelled" {
			err = fmt.Errorf("checkout: %w (%v)", ctx.Err(), err)
		}
	}()

	if err := validateCheckout(&req); err != nil {
		return nil, err
	}

	start := time.Now()
	sheets, err := s.load(ctx, req.Items)
	if err != nil {
		return nil, err
	}
	metrics.ObserveStage("load", start)

	start = time.Now()
	records := make([]hazard.Record, len(sheets))
	for i := range sheets {
		records[i] = toHazardRecord(&sheets[i])
	}
	quantities := make(map[uint]float64, len(req.Items))
	for _, it := range req.Items {
		quantities[it.SdsID] = it.Quantity
	}
	agg, err := s.aggregator.Aggregate(records, quantities)
	if err != nil {
		return nil, fmt.Errorf("checkout: aggregate: %w", err)
	}
	metrics.ObserveStage("aggregate", start)
	log.Debug("checkout: aggregated",
		"items", len(agg.Items),
		"total", agg.Total,
		"pictograms", agg.Pictograms,
		"signal_word", agg.SignalLabel(hazard.DefaultAbsentMarker),
	)

	start = time.Now()
	cover, err := s.renderCover(ctx, req, agg)
	if err != nil {
		var ce *latex.CompileError
		if errors.As(err, &ce) {
			log.Error("checkout: cover render failed", "error", ce.Err, "output", tail(ce.Output, 2048))
		}
		return nil, fmt.Errorf("checkout: render cover: %w", err)
	}
	metrics.ObserveStage("render", start)

	start = time.Now()
	sources, err := s.fetchSources(ctx, sheets)
	if err != nil {
		return nil, fmt.Errorf("checkout: fetch sources: %w", err)
	}
	metrics.ObserveStage("fetch", start)

	start = time.Now()
	merged, err := pdfmerge.Merge(append([][]byte{cover}, sources...))
	if err != nil {
		var de *pdfmerge.DocumentError
		if errors.As(err, &de) && de.Index > 0 {
			log.Warn("checkout: stored sheet is not a valid pdf",
				"sds_id", sheets[de.Index-1].ID,
				"url", sheets[de.Index-1].PDFDownloadURL,
				"error", de.Err,
			)
		}
		return nil, fmt.Errorf("checkout: merge: %w", err)
	}
	metrics.ObserveStage("merge", start)

	packet, err = s.finish(ctx, req, agg, merged)
	if err != nil {
		return nil, err
	}
	log.Info("checkout: packet assembled",
		"product", req.ProductName,
		"items", len(req.Items),
		"pages", packet.TotalPages,
		"sha256", packet.SHA256,
	)
	return packet, nil
}

func validateCheckout(req *CheckoutRequest) error {
	if len(req.Items) == 0 {
		return ErrEmptyRequest
	}
	if req.Unit == "" {
		req.Unit = UnitGrams
	}
	if req.MeasurementType == "" {
		req.MeasurementType = MeasureWeight
	}

	seen := make(map[uint]struct{}, len(req.Items))
	for i, it := range req.Items {
		q := it.Quantity
		if math.IsNaN(q) || math.IsInf(q, 0) || q <= 0 {
			return fmt.Errorf("%w: items[%d] has quantity %v", ErrInvalidQuantity, i, q)
		}
		if req.Unit == UnitPercent && q > 100 {
			return fmt.Errorf("%w: items[%d] exceeds 100%%", ErrInvalidQuantity, i)
		}
		if _, dup := seen[it.SdsID]; dup {
			return fmt.Errorf("%w: %d", ErrDuplicateItem, it.SdsID)
		}
		seen[it.SdsID] = struct{}{}
	}
	return nil
}

// load fetches every referenced sheet in one query and returns them in
// submission order.
func (s *CheckoutService) load(ctx context.Context, items []CheckoutItem) ([]models.SafetyDataSheet, error) {
	ids := make([]uint, len(items))
	for i, it := range items {
		ids[i] = it.SdsID
	}

	rows, err := s.records.FindByIDs(ctx, ids)
	if err != nil {
		return nil, fmt.Errorf("checkout: load records: %w", err)
	}

	byID := make(map[uint]*models.SafetyDataSheet, len(rows))
	for i := range rows {
		byID[rows[i].ID] = &rows[i]
	}

	var missing []string
	sheets := make([]models.SafetyDataSheet, 0, len(items))
	for _, id := range ids {
		row, ok := byID[id]
		if !ok {
			missing = append(missing, strconv.FormatUint(uint64(id), 10))
			continue
		}
		sheets = append(sheets, *row)
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("checkout: %w: sds ids %s", hazard.ErrMissingReference, strings.Join(missing, ", "))
	}
	return sheets, nil
}

func (s *CheckoutService) renderCover(ctx context.Context, req CheckoutRequest, agg *hazard.Result) ([]byte, error) {
	data := s.coverData(req, agg)

	var pdf []byte
	err := s.pool.Do(ctx, func() error {
		// The caller may have given up while the task sat in the queue.
		if err := ctx.Err(); err != nil {
			return err
		}
		var err error
		pdf, err = s.renderer.Render(ctx, latex.CoverSheet, data)
		return err
	})
	if errors.Is(err, workerpool.ErrPoolFull) {
		metrics.RenderPoolRejections.Inc()
	}
	return pdf, err
}

func (s *CheckoutService) coverData(req CheckoutRequest, agg *hazard.Result) latex.Data {
	rows := make([][]string, len(agg.Items))
	for i, it := range agg.Items {
		qty := s.formatter.Format(it.Quantity)
		if req.Unit == UnitPercent {
			qty = strconv.FormatFloat(it.Quantity, 'f', -1, 64) + "%"
		}
		rows[i] = []string{it.Record.ProductName, it.Record.CASNumber, qty, it.ShareText()}
	}

	overview := make([]string, len(agg.Statements))
	for i, st := range agg.Statements {
		overview[i] = st.String()
	}

	return latex.Data{
		Paper:              s.paper,
		CoverTitle:         CoverTitle,
		Sensitivity:        capitalize(req.Sensitivity),
		ProductName:        req.ProductName,
		DestinationCountry: req.Destination,
		CertificationDate:  req.CertificationDate.Format("January 02, 2006"),
		ColumnsSpec:        "L|l|l|l",
		Headers: []string{
			"Product Name",
			"CAS No.",
			"Quantity",
			capitalize(req.MeasurementType) + " %",
		},
		Rows:                    rows,
		SignalWord:              agg.SignalLabel(hazard.DefaultAbsentMarker),
		Pictograms:              agg.Pictograms,
		HazardStatementOverview: overview,
	}
}

// fetchSources downloads every sheet concurrently. Results are stored by
// position so the merge keeps submission order; the first failure cancels
// the rest.
func (s *CheckoutService) fetchSources(ctx context.Context, sheets []models.SafetyDataSheet) ([][]byte, error) {
	docs := make([][]byte, len(sheets))

	g, gctx := errgroup.WithContext(ctx)
	g.SetLimit(s.fetchLimit)
	for i, sheet := range sheets {
		g.Go(func() error {
			body, err := s.fetcher.Fetch(gctx, sheet.PDFDownloadURL)
			if err != nil {
				return fmt.Errorf("sds id %d: %w", sheet.ID, err)
			}
			docs[i] = body
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	return docs, nil
}

func (s *CheckoutService) finish(ctx context.Context, req CheckoutRequest, agg *hazard.Result, merged *pdfmerge.Result) (*Packet, error) {
	sum := sha256.New()
	if _, err := merged.PDF.WriteTo(sum); err != nil {
		return nil, fmt.Errorf("checkout: digest: %w", err)
	}
	if _, err := merged.PDF.Seek(0, io.SeekStart); err != nil {
		return nil, fmt.Errorf("checkout: rewind: %w", err)
	}

	packet := &Packet{
		PDF:        merged.PDF,
		CoverPages: merged.Pages[0],
		TotalPages: merged.TotalPages(),
		SHA256:     hex.EncodeToString(sum.Sum(nil)),
		Aggregate:  agg,
	}
	metrics.PacketPages.Observe(float64(packet.TotalPages))

	items := make([]audit.Item, len(agg.Items))
	for i, it := range agg.Items {
		items[i] = audit.Item{
			SdsID:       it.Record.ID,
			ProductName: it.Record.ProductName,
			CASNumber:   it.Record.CASNumber,
			Quantity:    it.Quantity,
			Share:       it.Share,
		}
	}
	s.recorder.Record(audit.Manifest{
		RequestID:   reqid.FromCtx(ctx),
		Time:        s.now().UTC(),
		ProductName: req.ProductName,
		Destination: req.Destination,
		Sensitivity: strings.ToLower(req.Sensitivity),
		Unit:        req.Unit,
		Items:       items,
		Pictograms:  agg.Pictograms,
		SignalWord:  string(agg.SignalWord),
		CoverPages:  packet.CoverPages,
		TotalPages:  packet.TotalPages,
		SHA256:      packet.SHA256,
	})

	return packet, nil
}

func toHazardRecord(m *models.SafetyDataSheet) hazard.Record {
	return hazard.Record{
		ID:          m.ID,
		ProductName: m.ProductName,
		CASNumber:   m.CASNumber,
		SignalWord:  hazard.ParseSignalWord(m.SignalWord),
		Pictograms:  m.Hazards,
		Statements:  m.Statements,
	}
}

func capitalize(s string) string {
	s = strings.ToLower(strings.TrimSpace(s))
	if s == "" {
		return s
	}
	return strings.ToUpper(s[:1]) + s[1:]
}

func tail(b []byte, n int) string {
	if len(b) > n {
		b = b[len(b)-n:]
	}
	return string(b)
}
