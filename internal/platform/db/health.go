package db

import (
	"context"
	"net/http"
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/labstack/echo/v4"
)

// PoolStats is a snapshot of the connection pool for the health endpoint.
type PoolStats struct {
	TotalConns        int32 `json:"total_conns"`
	IdleConns         int32 `json:"idle_conns"`
	AcquiredConns     int32 `json:"acquired_conns"`
	MaxConns          int32 `json:"max_conns"`
	EmptyAcquireCount int64 `json:"empty_acquire_count"`
}

// GetPoolStats reads current pool counters. EmptyAcquireCount growing under
// load means the pool is undersized for the traffic.
func GetPoolStats(pool *pgxpool.Pool) *PoolStats {
	stat := pool.Stat()
	return &PoolStats{
		TotalConns:        stat.TotalConns(),
		IdleConns:         stat.IdleConns(),
		AcquiredConns:     stat.AcquiredConns(),
		MaxConns:          stat.MaxConns(),
		EmptyAcquireCount: stat.EmptyAcquireCount(),
	}
}

// HealthHandler pings the database with a short deadline and reports the
// round-trip time along with pool counters.
func HealthHandler(pool *pgxpool.Pool) echo.HandlerFunc {
	return func(c echo.Context) error {
		ctx, cancel := context.WithTimeout(c.Request().Context(), 5*time.Second)
		defer cancel()

		start := time.Now()
		err := pool.Ping(ctx)
		pingMs := time.Since(start).Milliseconds()

		if err != nil {
			return c.JSON(http.StatusServiceUnavailable, map[string]interface{}{
				"status":   "unhealthy",
				"database": "postgres",
				"error":    err.Error(),
				"pool":     GetPoolStats(pool),
			})
		}

		return c.JSON(http.StatusOK, map[string]interface{}{
			"status":   "healthy",
			"database": "postgres",
			"ping_ms":  pingMs,
			"pool":     GetPoolStats(pool),
		})
	}
}
