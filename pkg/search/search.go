// Package search pushes catalog records to a Meilisearch-compatible index.
package search

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"strings"
	"time"

	resty "github.com/go-resty/resty/v2"
)

// ErrIndexFailed wraps transport errors and non-2xx answers.
var ErrIndexFailed = errors.New("search: index request failed")

// Document is the searchable projection of a record.
type Document struct {
	ID            uint     `json:"id"`
	ProductName   string   `json:"product_name"`
	ProductBrand  string   `json:"product_brand"`
	ProductNumber string   `json:"product_number"`
	CASNumber     string   `json:"cas_number"`
	Hazards       []string `json:"hazards"`
}

// Indexer adds or replaces documents in the index.
type Indexer interface {
	Index(ctx context.Context, docs ...Document) error
}

// Meili talks to the documents endpoint of one index.
type Meili struct {
	client *resty.Client
	index  string
}

// NewMeili returns an Indexer for index at baseURL, or Noop when baseURL is
// empty.
func NewMeili(baseURL, apiKey, index string, timeout time.Duration) Indexer {
	if baseURL == "" {
		return Noop{}
	}
	c := resty.New().SetTimeout(timeout)
	return newMeili(c, baseURL, apiKey, index)
}

// NewMeiliWithClient is NewMeili over an existing *http.Client.
func NewMeiliWithClient(baseURL, apiKey, index string, hc *http.Client) *Meili {
	return newMeili(resty.NewWithClient(hc), baseURL, apiKey, index)
}

func newMeili(c *resty.Client, baseURL, apiKey, index string) *Meili {
	c.SetBaseURL(strings.TrimRight(baseURL, "/")).
		SetHeader("Content-Type", "application/json")
	if apiKey != "" {
		c.SetAuthToken(apiKey)
	}
	return &Meili{client: c, index: index}
}

// Index posts docs in a single request. Meilisearch treats the call as an
// upsert keyed on id.
func (m *Meili) Index(ctx context.Context, docs ...Document) error {
	if len(docs) == 0 {
		return nil
	}
	for i := range docs {
		if docs[i].Hazards == nil {
			docs[i].Hazards = []string{}
		}
	}

	res, err := m.client.R().
		SetContext(ctx).
		SetPathParam("index", m.index).
		SetBody(docs).
		Post("/indexes/{index}/documents")
	if err != nil {
		return fmt.Errorf("%w: %v", ErrIndexFailed, err)
	}
	if !res.IsSuccess() {
		return fmt.Errorf("%w: status %d: %s", ErrIndexFailed, res.StatusCode(), strings.TrimSpace(res.String()))
	}
	return nil
}

// Noop discards documents.
type Noop struct{}

func (Noop) Index(context.Context, ...Document) error { return nil }
