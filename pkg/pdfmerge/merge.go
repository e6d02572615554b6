// Package pdfmerge concatenates PDF documents in order.
package pdfmerge

import (
	"bytes"
	"errors"
	"fmt"
	"io"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/pdfcpu/pdfcpu/pkg/pdfcpu/model"
)

// ErrInvalidDocument means an input could not be parsed as a PDF.
var ErrInvalidDocument = errors.New("pdfmerge: invalid document")

// ErrNoDocuments is returned by Merge when called with nothing to merge.
var ErrNoDocuments = errors.New("pdfmerge: no documents")

// DocumentError identifies which input failed to parse.
type DocumentError struct {
	Index int
	Err   error
}

func (e *DocumentError) Error() string {
	return fmt.Sprintf("pdfmerge: document %d: %v", e.Index, e.Err)
}

func (e *DocumentError) Unwrap() []error { return []error{ErrInvalidDocument, e.Err} }

func init() {
	// No pdfcpu config directory under $HOME for a server process.
	api.DisableConfigDir()
}

func configuration() *model.Configuration {
	conf := model.NewDefaultConfiguration()
	conf.ValidationMode = model.ValidationRelaxed
	return conf
}

// PageCount parses doc and returns its number of pages.
func PageCount(doc []byte) (int, error) {
	n, err := api.PageCount(bytes.NewReader(doc), configuration())
	if err != nil {
		return 0, fmt.Errorf("%w: %v", ErrInvalidDocument, err)
	}
	return n, nil
}

// Result is a merged document.
type Result struct {
	// PDF is positioned at offset zero.
	PDF *bytes.Reader
	// Pages holds the page count of each input, in input order.
	Pages []int
}

// TotalPages sums the pages of every input.
func (r *Result) TotalPages() int {
	total := 0
	for _, n := range r.Pages {
		total += n
	}
	return total
}

// Merge concatenates docs; the first document's pages come first. Every
// input is validated before merging so a corrupt one is reported by index.
func Merge(docs [][]byte) (*Result, error) {
	if len(docs) == 0 {
		return nil, ErrNoDocuments
	}

	conf := configuration()
	pages := make([]int, len(docs))
	readers := make([]io.ReadSeeker, len(docs))

	for i, doc := range docs {
		if len(doc) == 0 {
			return nil, &DocumentError{Index: i, Err: errors.New("empty input")}
		}
		rs := bytes.NewReader(doc)
		n, err := api.PageCount(rs, conf)
		if err != nil {
			return nil, &DocumentError{Index: i, Err: err}
		}
		if _, err := rs.Seek(0, io.SeekStart); err != nil {
			return nil, &DocumentError{Index: i, Err: err}
		}
		pages[i] = n
		readers[i] = rs
	}

	var out bytes.Buffer
	if len(docs) == 1 {
		out.Write(docs[0])
	} else if err := api.MergeRaw(readers, &out, false, conf); err != nil {
		return nil, fmt.Errorf("%w: merge: %v", ErrInvalidDocument, err)
	}

	return &Result{PDF: bytes.NewReader(out.Bytes()), Pages: pages}, nil
}
