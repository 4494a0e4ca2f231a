package ingest

import "github.com/prometheus/client_golang/prometheus"

var (
	ActiveConnections = prometheus.NewGauge(prometheus.GaugeOpts{
		Name: "loghive_active_connections",
		Help: "Number of currently connected clients",
	})

	ConnectionsTotal = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loghive_connections_total",
		Help: "Total accepted connections",
	})

	EntriesWritten = prometheus.NewCounter(prometheus.CounterOpts{
		Name: "loghive_entries_written_total",
		Help: "Log entries appended to the sink",
	})

	DroppedLines = prometheus.NewCounterVec(prometheus.CounterOpts{
		Name: "loghive_dropped_lines_total",
		Help: "Lines dropped before reaching the sink, by reason",
	}, []string{"reason"})

	AppendDuration = prometheus.NewHistogram(prometheus.HistogramOpts{
		Name:    "loghive_append_seconds",
		Help:    "Time to append one entry to the sink",
		Buckets: prometheus.DefBuckets,
	})
)

func init() {
	prometheus.MustRegister(ActiveConnections)
	prometheus.MustRegister(ConnectionsTotal)
	prometheus.MustRegister(EntriesWritten)
	prometheus.MustRegister(DroppedLines)
	prometheus.MustRegister(AppendDuration)
}
