package redis

import (
	"context"
	"fmt"
	"time"

	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/redis/go-redis/v9"
)

var (
	redisPoolHits = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillproof_redis_pool_hits_total",
		Help: "Number of times a connection was found in the pool",
	})
	redisPoolMisses = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillproof_redis_pool_misses_total",
		Help: "Number of times a connection was not found in the pool",
	})
	redisPoolTimeouts = promauto.NewCounter(prometheus.CounterOpts{
		Name: "skillproof_redis_pool_timeouts_total",
		Help: "Number of times a connection was not obtained due to timeout",
	})
	redisPoolTotalConns = promauto.NewGauge(prometheus.GaugeOpts{
		Name: "skillproof_redis_pool_total_conns",
		Help: "Number of total connections in the pool",
	})
)

// New connects to Redis and verifies the connection with a ping.
// Returns nil if addr is empty so callers can fall back to in-process caches.
func New(ctx context.Context, addr string) (*redis.Client, error) {
	if addr == "" {
		return nil, nil
	}

	client := redis.NewClient(&redis.Options{
		Addr:         addr,
		DialTimeout:  5 * time.Second,
		ReadTimeout:  3 * time.Second,
		WriteTimeout: 3 * time.Second,
	})

	pingCtx, cancel := context.WithTimeout(ctx, 5*time.Second)
	defer cancel()
	if err := client.Ping(pingCtx).Err(); err != nil {
		client.Close() //nolint:errcheck // best-effort cleanup on init failure
		return nil, fmt.Errorf("ping redis: %w", err)
	}

	return client, nil
}

// CollectPoolStats pushes pool statistics into Prometheus gauges/counters.
// Call periodically from a background goroutine.
func CollectPoolStats(client *redis.Client) {
	if client == nil {
		return
	}
	stats := client.PoolStats()
	redisPoolHits.Add(float64(stats.Hits))
	redisPoolMisses.Add(float64(stats.Misses))
	redisPoolTimeouts.Add(float64(stats.Timeouts))
	redisPoolTotalConns.Set(float64(stats.TotalConns))
}
