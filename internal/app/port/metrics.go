package port

import "time"

// MetricsRecorder records aggregation observability data.
type MetricsRecorder interface {
	RecordRun(result string, duration time.Duration)
	RecordQueryFailure(query string)
	RecordSnapshot(totalValueUSD float64, positions int)
	RecordLeafFetch(client, result string)
}
