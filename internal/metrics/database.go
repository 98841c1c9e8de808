package metrics

import (
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/prometheus/client_golang/prometheus"
)

// PoolCollector exports pgxpool statistics as gauges. Stats are sampled at
// scrape time, so there is no background goroutine to manage.
type PoolCollector struct {
	pool *pgxpool.Pool

	totalConns    *prometheus.Desc
	idleConns     *prometheus.Desc
	acquiredConns *prometheus.Desc
	maxConns      *prometheus.Desc
	acquireCount  *prometheus.Desc
	emptyAcquire  *prometheus.Desc
}

var _ prometheus.Collector = (*PoolCollector)(nil)

func NewPoolCollector(pool *pgxpool.Pool) *PoolCollector {
	return &PoolCollector{
		pool: pool,
		totalConns: prometheus.NewDesc("db_pool_total_conns",
			"Total connections currently in the pool.", nil, nil),
		idleConns: prometheus.NewDesc("db_pool_idle_conns",
			"Idle connections in the pool.", nil, nil),
		acquiredConns: prometheus.NewDesc("db_pool_acquired_conns",
			"Connections currently checked out of the pool.", nil, nil),
		maxConns: prometheus.NewDesc("db_pool_max_conns",
			"Configured maximum pool size.", nil, nil),
		acquireCount: prometheus.NewDesc("db_pool_acquire_total",
			"Cumulative successful connection acquires.", nil, nil),
		emptyAcquire: prometheus.NewDesc("db_pool_empty_acquire_total",
			"Cumulative acquires that had to wait for a free connection.", nil, nil),
	}
}

func (c *PoolCollector) Describe(ch chan<- *prometheus.Desc) {
	ch <- c.totalConns
	ch <- c.idleConns
	ch <- c.acquiredConns
	ch <- c.maxConns
	ch <- c.acquireCount
	ch <- c.emptyAcquire
}

func (c *PoolCollector) Collect(ch chan<- prometheus.Metric) {
	stat := c.pool.Stat()
	ch <- prometheus.MustNewConstMetric(c.totalConns, prometheus.GaugeValue, float64(stat.TotalConns()))
	ch <- prometheus.MustNewConstMetric(c.idleConns, prometheus.GaugeValue, float64(stat.IdleConns()))
	ch <- prometheus.MustNewConstMetric(c.acquiredConns, prometheus.GaugeValue, float64(stat.AcquiredConns()))
	ch <- prometheus.MustNewConstMetric(c.maxConns, prometheus.GaugeValue, float64(stat.MaxConns()))
	ch <- prometheus.MustNewConstMetric(c.acquireCount, prometheus.CounterValue, float64(stat.AcquireCount()))
	ch <- prometheus.MustNewConstMetric(c.emptyAcquire, prometheus.CounterValue, float64(stat.EmptyAcquireCount()))
}
