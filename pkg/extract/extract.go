// Package extract turns an uploaded safety data sheet PDF into the fields
// the catalog stores. The parser itself runs as a separate HTTP service;
// this package is its client.
package extract

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	resty "github.com/go-resty/resty/v2"
)

var (
	// ErrNotConfigured is returned when no extractor URL is set.
	ErrNotConfigured = errors.New("extract: extractor is not configured")

	// ErrExtractFailed wraps transport errors and non-2xx answers.
	ErrExtractFailed = errors.New("extract: extraction failed")

	// ErrIncomplete is returned when the parsed sheet lacks one of the
	// identifying fields.
	ErrIncomplete = errors.New("extract: document is missing identifiers")
)

// Document is the parsed sheet.
type Document struct {
	ProductName   string          `json:"product_name"`
	ProductBrand  string          `json:"product_brand"`
	ProductNumber string          `json:"product_number"`
	CASNumber     string          `json:"cas_number"`
	SignalWord    string          `json:"signal_word"`
	Pictograms    []string        `json:"hazards"`
	Statements    []string        `json:"statements"`
	Data          json.RawMessage `json:"data"`
}

// Validate reports ErrIncomplete if any part of the natural key is blank.
func (d *Document) Validate() error {
	fields := []struct{ name, value string }{
		{"product_name", d.ProductName},
		{"product_brand", d.ProductBrand},
		{"product_number", d.ProductNumber},
		{"cas_number", d.CASNumber},
	}

	var missing []string
	for _, f := range fields {
		if strings.TrimSpace(f.value) == "" {
			missing = append(missing, f.name)
		}
	}
	if len(missing) > 0 {
		return fmt.Errorf("%w: %s", ErrIncomplete, strings.Join(missing, ", "))
	}
	return nil
}

// Extractor parses sheet PDFs.
type Extractor interface {
	Extract(ctx context.Context, filename string, pdf []byte) (*Document, error)
}

type httpExtractor struct {
	client *resty.Client
}

// New returns an Extractor that posts the PDF to baseURL + "/extract".
// An empty baseURL yields an Extractor that always fails with
// ErrNotConfigured.
func New(baseURL string, timeout time.Duration) Extractor {
	if baseURL == "" {
		return unconfigured{}
	}
	return &httpExtractor{
		client: resty.New().
			SetTimeout(timeout).
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json"),
	}
}

// NewWithClient is New over an existing *http.Client.
func NewWithClient(baseURL string, hc *http.Client) Extractor {
	return &httpExtractor{
		client: resty.NewWithClient(hc).
			SetBaseURL(strings.TrimRight(baseURL, "/")).
			SetHeader("Accept", "application/json"),
	}
}

func (e *httpExtractor) Extract(ctx context.Context, filename string, pdf []byte) (*Document, error) {
	doc := &Document{}
	res, err := e.client.R().
		SetContext(ctx).
		SetFileReader("file", filename, bytes.NewReader(pdf)).
		SetResult(doc).
		Post("/extract")
	if err != nil {
		return nil, fmt.Errorf("%w: %v", ErrExtractFailed, err)
	}
	if !res.IsSuccess() {
		return nil, fmt.Errorf("%w: status %d", ErrExtractFailed, res.StatusCode())
	}

	doc.normalise()
	if err := doc.Validate(); err != nil {
		return nil, err
	}
	return doc, nil
}

func (d *Document) normalise() {
	d.ProductName = strings.TrimSpace(d.ProductName)
	d.ProductBrand = strings.TrimSpace(d.ProductBrand)
	d.ProductNumber = strings.TrimSpace(d.ProductNumber)
	d.CASNumber = strings.TrimSpace(d.CASNumber)
	d.SignalWord = strings.TrimSpace(d.SignalWord)
	if d.Pictograms == nil {
		d.Pictograms = []string{}
	}
	if d.Statements == nil {
		d.Statements = []string{}
	}
	if len(d.Data) == 0 {
		d.Data = json.RawMessage("{}")
	}
}

type unconfigured struct{}

func (unconfigured) Extract(context.Context, string, []byte) (*Document, error) {
	return nil, ErrNotConfigured
}

// Func adapts a function to the Extractor interface.
type Func func(ctx context.Context, filename string, pdf []byte) (*Document, error)

func (f Func) Extract(ctx context.Context, filename string, pdf []byte) (*Document, error) {
	return f(ctx, filename, pdf)
}
