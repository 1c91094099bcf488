package database

import (
	"context"
	"errors"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rpupo63/colbee-backend/models"
)

var (
	storeOperations = promauto.NewCounterVec(
		prometheus.CounterOpts{
			Name: "store_operations_total",
			Help: "Total number of document store operations by outcome",
		},
		[]string{"store", "collection", "operation", "result"},
	)
	storeLatency = promauto.NewHistogramVec(
		prometheus.HistogramOpts{
			Name:    "store_operation_latency_ms",
			Help:    "Latency of document store operations in milliseconds",
			Buckets: []float64{0.5, 1, 2, 5, 10, 25, 50, 100, 250, 500, 1000},
		},
		[]string{"store", "collection", "operation"},
	)
)

// instrumentedCollection records the count and latency of every call.
type instrumentedCollection struct {
	next       Collection
	store      string
	collection string
}

func withMetrics(next Collection, store, collection string) Collection {
	return instrumentedCollection{next: next, store: store, collection: collection}
}

func (c instrumentedCollection) observe(operation string, start time.Time, err error) {
	result := "ok"
	switch {
	case errors.Is(err, ErrNoRecord):
		result = "miss"
	case err != nil:
		result = "error"
	}
	storeOperations.WithLabelValues(c.store, c.collection, operation, result).Inc()
	storeLatency.WithLabelValues(c.store, c.collection, operation).
		Observe(float64(time.Since(start).Microseconds()) / 1000)
}

func (c instrumentedCollection) FindOne(ctx context.Context, filter Filter) (raw models.RawRecord, err error) {
	defer func(start time.Time) { c.observe("find_one", start, err) }(time.Now())
	return c.next.FindOne(ctx, filter)
}

func (c instrumentedCollection) FindMany(ctx context.Context, filter Filter) (raws []models.RawRecord, err error) {
	defer func(start time.Time) { c.observe("find_many", start, err) }(time.Now())
	return c.next.FindMany(ctx, filter)
}

func (c instrumentedCollection) InsertOne(ctx context.Context, doc models.RawRecord) (id string, err error) {
	defer func(start time.Time) { c.observe("insert_one", start, err) }(time.Now())
	return c.next.InsertOne(ctx, doc)
}

func (c instrumentedCollection) UpdateOne(ctx context.Context, filter Filter, update Update) (raw models.RawRecord, err error) {
	defer func(start time.Time) { c.observe("update_one", start, err) }(time.Now())
	return c.next.UpdateOne(ctx, filter, update)
}

func (c instrumentedCollection) ToggleOne(ctx context.Context, filter Filter, toggle Toggle) (raw models.RawRecord, err error) {
	defer func(start time.Time) { c.observe("toggle_one", start, err) }(time.Now())
	return c.next.ToggleOne(ctx, filter, toggle)
}

func (c instrumentedCollection) DeleteOne(ctx context.Context, filter Filter) (err error) {
	defer func(start time.Time) { c.observe("delete_one", start, err) }(time.Now())
	return c.next.DeleteOne(ctx, filter)
}
