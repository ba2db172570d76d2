package observability

import (
	"context"
	"fmt"
	"time"

	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/metric"
)

const (
	metricLeavesTotal  = "replaystats.leaves.total"
	metricRecordsTotal = "replaystats.records.total"
	metricSkippedTotal = "replaystats.nodes.skipped.total"
	metricLeafDuration = "replaystats.leaf.duration.seconds"

	attrReason = "reason"

	statusOK          = "ok"
	defaultSkipReason = "unknown"
)

// Statuses recorded by RecordLeaf and REDMetrics.RecordRequest.
const (
	StatusOK    = statusOK
	StatusError = statusError
)

// RunMetrics holds the OTel instruments for a directory walk.
type RunMetrics struct {
	leavesTotal  metric.Int64Counter
	recordsTotal metric.Int64Counter
	skippedTotal metric.Int64Counter
	leafDuration metric.Float64Histogram
}

// NewRunMetrics creates walk metric instruments from the given meter.
func NewRunMetrics(mt metric.Meter) (*RunMetrics, error) {
	leaves, err := mt.Int64Counter(metricLeavesTotal,
		metric.WithDescription("Replay files processed by status"),
		metric.WithUnit("{file}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLeavesTotal, err)
	}

	records, err := mt.Int64Counter(metricRecordsTotal,
		metric.WithDescription("Unit records emitted"),
		metric.WithUnit("{record}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricRecordsTotal, err)
	}

	skipped, err := mt.Int64Counter(metricSkippedTotal,
		metric.WithDescription("Tree nodes skipped by reason"),
		metric.WithUnit("{node}"),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricSkippedTotal, err)
	}

	leafDur, err := mt.Float64Histogram(metricLeafDuration,
		metric.WithDescription("Per-file parse and build duration in seconds"),
		metric.WithUnit("s"),
		metric.WithExplicitBucketBoundaries(durationBucketBoundaries...),
	)
	if err != nil {
		return nil, fmt.Errorf("create %s: %w", metricLeafDuration, err)
	}

	return &RunMetrics{
		leavesTotal:  leaves,
		recordsTotal: records,
		skippedTotal: skipped,
		leafDuration: leafDur,
	}, nil
}

// RecordLeaf records one processed replay file.
// Safe to call on a nil receiver (no-op).
func (rm *RunMetrics) RecordLeaf(ctx context.Context, status string, duration time.Duration) {
	if rm == nil {
		return
	}

	rm.leavesTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrStatus, status)))
	rm.leafDuration.Record(ctx, duration.Seconds())
}

// RecordRecords adds n emitted records.
// Safe to call on a nil receiver (no-op).
func (rm *RunMetrics) RecordRecords(ctx context.Context, n int) {
	if rm == nil {
		return
	}

	rm.recordsTotal.Add(ctx, int64(n))
}

// RecordSkip records a node the walk did not descend into or parse.
// Safe to call on a nil receiver (no-op).
func (rm *RunMetrics) RecordSkip(ctx context.Context, reason string) {
	if rm == nil {
		return
	}

	if reason == "" {
		reason = defaultSkipReason
	}

	rm.skippedTotal.Add(ctx, 1, metric.WithAttributes(attribute.String(attrReason, reason)))
}
