package pool

import "github.com/prometheus/client_golang/prometheus"

const namespace = "parclust"

type metrics struct {
	submissions  prometheus.Counter
	rejections   prometheus.Counter
	forks        *prometheus.CounterVec
	spawnedForks prometheus.Counter
	inlineForks  prometheus.Counter
}

func newMetrics() *metrics {
	m := &metrics{
		submissions: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "submissions_total",
			Help:      "The total number of task trees submitted to the pool.",
		}),
		rejections: prometheus.NewCounter(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "rejections_total",
			Help:      "The total number of submissions rejected by a closed pool.",
		}),
		forks: prometheus.NewCounterVec(prometheus.CounterOpts{
			Namespace: namespace,
			Subsystem: "pool",
			Name:      "forks_total",
			Help:      "The total number of forks, by whether the right child was spawned on a worker or run inline.",
		}, []string{"mode"}),
	}
	m.spawnedForks = m.forks.WithLabelValues("spawned")
	m.inlineForks = m.forks.WithLabelValues("inline")
	return m
}

func (m *metrics) collectors() []prometheus.Collector {
	return []prometheus.Collector{m.submissions, m.rejections, m.forks}
}
