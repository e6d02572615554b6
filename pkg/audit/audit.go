// Package audit keeps a trail of assembled checkout packets.
//
// The Mongo recorder is built for zero impact on the request path:
//
//   - Record enqueues into a buffered channel and never blocks.
//   - A single background goroutine drains the channel and performs
//     InsertMany in batches (default 50).
//   - If the channel is full the manifest is dropped and counted.
//   - Close flushes what is queued and disconnects.
package audit

import (
	"context"
	"fmt"
	"sync"
	"sync/atomic"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"
)

const (
	queueSize = 1024 // buffered channel capacity
	batchSize = 50   // maximum documents per InsertMany
	drainTick = 2 * time.Second
)

// Item is one line of a packet.
type Item struct {
	SdsID       uint    `bson:"sds_id"`
	ProductName string  `bson:"product_name"`
	CASNumber   string  `bson:"cas_number"`
	Quantity    float64 `bson:"quantity"`
	Share       float64 `bson:"share"`
}

// Manifest describes one successful checkout.
type Manifest struct {
	RequestID   string    `bson:"request_id,omitempty"`
	Time        time.Time `bson:"time"`
	ProductName string    `bson:"product_name"`
	Destination string    `bson:"destination"`
	Sensitivity string    `bson:"sensitivity"`
	Unit        string    `bson:"unit"`
	Items       []Item    `bson:"items"`
	Pictograms  []string  `bson:"pictograms"`
	SignalWord  string    `bson:"signal_word,omitempty"`
	CoverPages  int       `bson:"cover_pages"`
	TotalPages  int       `bson:"total_pages"`
	SHA256      string    `bson:"sha256"`
}

// Recorder accepts manifests.
type Recorder interface {
	Record(m Manifest)
	Close() error
}

// Noop drops every manifest.
type Noop struct{}

func (Noop) Record(Manifest) {}
func (Noop) Close() error    { return nil }

// inserter is the slice of *mongo.Collection the drain loop needs.
type inserter interface {
	InsertMany(ctx context.Context, docs []interface{}, opts ...*options.InsertManyOptions) (*mongo.InsertManyResult, error)
}

// Mongo writes manifests to a collection asynchronously.
type Mongo struct {
	col     inserter
	client  *mongo.Client
	queue   chan Manifest
	done    chan struct{}
	stopped chan struct{}
	once    sync.Once
	onError func(error)
	dropped atomic.Int64
}

// Connect dials uri and returns a recorder writing to db.collection.
// The caller must eventually call Close().
func Connect(ctx context.Context, uri, db, collection string, onError func(error)) (*Mongo, error) {
	ctx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()

	clientOpts := options.Client().ApplyURI(uri).
		SetConnectTimeout(5 * time.Second).
		SetServerSelectionTimeout(5 * time.Second).
		SetMaxPoolSize(10)

	client, err := mongo.Connect(ctx, clientOpts)
	if err != nil {
		return nil, fmt.Errorf("audit: connect: %w", err)
	}

	if err := client.Ping(ctx, nil); err != nil {
		_ = client.Disconnect(context.Background())
		return nil, fmt.Errorf("audit: ping: %w", err)
	}

	col := client.Database(db).Collection(collection)

	_, _ = col.Indexes().CreateMany(ctx, []mongo.IndexModel{
		{Keys: bson.D{{Key: "time", Value: -1}}},
		{Keys: bson.D{{Key: "items.sds_id", Value: 1}}},
	})

	m := newMongo(col, onError)
	m.client = client
	return m, nil
}

func newMongo(col inserter, onError func(error)) *Mongo {
	if onError == nil {
		onError = func(error) {}
	}
	m := &Mongo{
		col:     col,
		queue:   make(chan Manifest, queueSize),
		done:    make(chan struct{}),
		stopped: make(chan struct{}),
		onError: onError,
	}
	go m.drainLoop()
	return m
}

// Record enqueues m without blocking.
func (m *Mongo) Record(man Manifest) {
	select {
	case <-m.done:
		m.dropped.Add(1)
		return
	default:
	}

	select {
	case m.queue <- man:
	default:
		m.dropped.Add(1)
	}
}

// Dropped is how many manifests were discarded because the queue was full
// or the recorder closed.
func (m *Mongo) Dropped() int64 { return m.dropped.Load() }

// drainLoop runs in the background, flushing queued manifests into MongoDB.
func (m *Mongo) drainLoop() {
	defer close(m.stopped)

	ticker := time.NewTicker(drainTick)
	defer ticker.Stop()

	batch := make([]interface{}, 0, batchSize)

	flush := func() {
		if len(batch) == 0 {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if _, err := m.col.InsertMany(ctx, batch); err != nil {
			m.onError(fmt.Errorf("audit: insert %d manifests: %w", len(batch), err))
		}
		batch = batch[:0]
	}

	for {
		select {
		case man := <-m.queue:
			batch = append(batch, man)
			if len(batch) >= batchSize {
				flush()
			}
		case <-ticker.C:
			flush()
		case <-m.done:
			// Drain remaining items before exit.
			for len(m.queue) > 0 {
				batch = append(batch, <-m.queue)
				if len(batch) >= batchSize {
					flush()
				}
			}
			flush()
			return
		}
	}
}

// Close flushes pending manifests and disconnects from MongoDB.
// Safe to call multiple times.
func (m *Mongo) Close() error {
	var err error
	m.once.Do(func() {
		close(m.done)
		<-m.stopped

		if m.client == nil {
			return
		}
		ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		err = m.client.Disconnect(ctx)
	})
	return err
}
