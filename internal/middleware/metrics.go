package middleware

import (
	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/gofiber/fiber/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
)

// RedisErrors counts Redis command failures by command name. Cache misses
// (redis.Nil) are not failures and are excluded by the cache hook.
var RedisErrors = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "glimpse_redis_errors_total",
		Help: "Total number of Redis command errors",
	},
	[]string{"command"},
)

// FanoutNotifications counts fan-out notification attempts by type and
// outcome ("ok" or "error").
var FanoutNotifications = promauto.NewCounterVec(
	prometheus.CounterOpts{
		Name: "glimpse_fanout_notifications_total",
		Help: "Total number of notifications created by write-time fan-out",
	},
	[]string{"type", "status"},
)

// InitMetrics creates the Prometheus middleware for the given service name.
func InitMetrics(serviceName string) *fiberprometheus.FiberPrometheus {
	return fiberprometheus.New(serviceName)
}

// MetricsMiddleware returns the request-level Prometheus middleware handler.
func MetricsMiddleware(p *fiberprometheus.FiberPrometheus) fiber.Handler {
	return p.Middleware
}
