package audit

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

type fakeCollection struct {
	mu      sync.Mutex
	batches [][]interface{}
	err     error
}

func (f *fakeCollection) InsertMany(_ context.Context, docs []interface{}, _ ...*options.InsertManyOptions) (*mongo.InsertManyResult, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	cp := append([]interface{}(nil), docs...)
	f.batches = append(f.batches, cp)
	return &mongo.InsertManyResult{}, f.err
}

func (f *fakeCollection) total() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	n := 0
	for _, b := range f.batches {
		n += len(b)
	}
	return n
}

func TestMongo_CloseFlushesQueue(t *testing.T) {
	col := &fakeCollection{}
	rec := newMongo(col, nil)

	for i := 0; i < 120; i++ {
		rec.Record(Manifest{ProductName: "Solvent blend", TotalPages: 3})
	}
	require.NoError(t, rec.Close())

	assert.Equal(t, 120, col.total())
	for _, b := range col.batches {
		assert.LessOrEqual(t, len(b), batchSize)
	}

	first, ok := col.batches[0][0].(Manifest)
	require.True(t, ok)
	assert.Equal(t, "Solvent blend", first.ProductName)
}

func TestMongo_RecordAfterCloseIsDropped(t *testing.T) {
	col := &fakeCollection{}
	rec := newMongo(col, nil)
	require.NoError(t, rec.Close())
	require.NoError(t, rec.Close())

	rec.Record(Manifest{})
	assert.Equal(t, int64(1), rec.Dropped())
	assert.Equal(t, 0, col.total())
}

func TestMongo_InsertErrorsReported(t *testing.T) {
	col := &fakeCollection{err: errors.New("no primary")}

	var mu sync.Mutex
	var reported []error
	rec := newMongo(col, func(err error) {
		mu.Lock()
		reported = append(reported, err)
		mu.Unlock()
	})

	rec.Record(Manifest{})
	require.NoError(t, rec.Close())

	require.Len(t, reported, 1)
	assert.Contains(t, reported[0].Error(), "no primary")
}

func TestNoop(t *testing.T) {
	var r Recorder = Noop{}
	r.Record(Manifest{})
	assert.NoError(t, r.Close())
}
