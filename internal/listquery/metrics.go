package listquery

import (
	"context"
	"time"

	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
	"go.opentelemetry.io/otel/metric/noop"
)

const meterName = "github.com/simp-lee/procurebase/internal/listquery"

// Fetch outcomes recorded on the listquery.fetches counter.
const (
	outcomeOK    = "ok"
	outcomeError = "error"
	outcomeStale = "stale"
)

type fetchMetrics struct {
	fetches  metric.Int64Counter
	duration metric.Float64Histogram
	endpoint attribute.KeyValue
}

func newFetchMetrics(meter metric.Meter, endpoint string) *fetchMetrics {
	if meter == nil {
		meter = otel.Meter(meterName)
	}

	m := &fetchMetrics{endpoint: attribute.String("endpoint", endpoint)}

	var err error
	m.fetches, err = meter.Int64Counter("listquery.fetches",
		metric.WithDescription("List fetches by outcome"),
		metric.WithUnit("1"),
	)
	if err != nil {
		m.fetches = noop.Int64Counter{}
	}

	m.duration, err = meter.Float64Histogram("listquery.fetch.duration",
		metric.WithDescription("Duration of list fetches"),
		metric.WithUnit("s"),
	)
	if err != nil {
		m.duration = noop.Float64Histogram{}
	}
	return m
}

func (m *fetchMetrics) record(ctx context.Context, outcome string, elapsed time.Duration) {
	attrs := metric.WithAttributes(m.endpoint, attribute.String("outcome", outcome))
	m.fetches.Add(ctx, 1, attrs)
	m.duration.Record(ctx, elapsed.Seconds(), attrs)
}
