package pdfmerge_test

import (
	"io"
	"testing"

	"github.com/pdfcpu/pdfcpu/pkg/api"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/shashiranjanraj/sdscatalog/pkg/pdfmerge"
	"github.com/shashiranjanraj/sdscatalog/pkg/pdfmerge/pdftest"
)

func TestPageCount(t *testing.T) {
	n, err := pdfmerge.PageCount(pdftest.Build(3, 200))
	require.NoError(t, err)
	assert.Equal(t, 3, n)

	_, err = pdfmerge.PageCount([]byte("not a pdf"))
	assert.ErrorIs(t, err, pdfmerge.ErrInvalidDocument)
}

func TestMerge_PreservesOrder(t *testing.T) {
	cover := pdftest.Build(1, 100)
	docA := pdftest.Build(2, 200)
	docB := pdftest.Build(3, 300)

	res, err := pdfmerge.Merge([][]byte{cover, docA, docB})
	require.NoError(t, err)
	assert.Equal(t, []int{1, 2, 3}, res.Pages)
	assert.Equal(t, 6, res.TotalPages())

	pos, err := res.PDF.Seek(0, io.SeekCurrent)
	require.NoError(t, err)
	assert.Zero(t, pos, "merged stream starts at offset zero")

	dims, err := api.PageDims(res.PDF, nil)
	require.NoError(t, err)
	require.Len(t, dims, 6)

	widths := make([]float64, len(dims))
	for i, d := range dims {
		widths[i] = d.Width
	}
	assert.Equal(t, []float64{100, 200, 200, 300, 300, 300}, widths)
}

func TestMerge_SingleDocument(t *testing.T) {
	res, err := pdfmerge.Merge([][]byte{pdftest.Build(2, 150)})
	require.NoError(t, err)
	assert.Equal(t, 2, res.TotalPages())
}

func TestMerge_InvalidDocument(t *testing.T) {
	_, err := pdfmerge.Merge([][]byte{pdftest.Build(1, 100), []byte("%PDF-garbage")})
	require.ErrorIs(t, err, pdfmerge.ErrInvalidDocument)

	var de *pdfmerge.DocumentError
	require.ErrorAs(t, err, &de)
	assert.Equal(t, 1, de.Index)

	_, err = pdfmerge.Merge([][]byte{nil})
	assert.ErrorIs(t, err, pdfmerge.ErrInvalidDocument)
}

func TestMerge_Empty(t *testing.T) {
	_, err := pdfmerge.Merge(nil)
	assert.ErrorIs(t, err, pdfmerge.ErrNoDocuments)
}
