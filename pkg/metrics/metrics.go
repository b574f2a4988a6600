package metrics

import (
	"context"
	"time"
)

// RecordCount records a count metric
func RecordCount(ctx context.Context, metricName string, count uint64) {
	if nr := applicationFromContext(ctx); nr != nil {
		nr.RecordCustomMetric(metricName, float64(count))
	}
}

// RecordDuration records a duration metric in milliseconds
func RecordDuration(ctx context.Context, metricName string, duration time.Duration) {
	if nr := applicationFromContext(ctx); nr != nil {
		nr.RecordCustomMetric(metricName, float64(duration/time.Millisecond))
	}
}
