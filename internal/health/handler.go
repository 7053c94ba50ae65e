package health

import (
	"context"
	"database/sql"
	"net/http"
	"time"

	"github.com/redis/go-redis/v9"

	"github.com/keyboxhn/keybox/internal/handlers"
)

// QueuePinger reports whether the message broker connection is usable.
type QueuePinger interface {
	Ping() error
}

type Handler struct {
	db    *sql.DB
	queue QueuePinger
	redis *redis.Client
}

// NewHandler builds the health endpoint. redis may be nil when the service
// runs without Redis; the check is then reported as disabled.
func NewHandler(db *sql.DB, queue QueuePinger, redis *redis.Client) *Handler {
	return &Handler{
		db:    db,
		queue: queue,
		redis: redis,
	}
}

// HealthResponse represents the health check response
type HealthResponse struct {
	Status    string           `json:"status"`
	Checks    map[string]Check `json:"checks"`
	Timestamp time.Time        `json:"timestamp"`
}

// Check represents a single health check
type Check struct {
	Status  string `json:"status"`
	Message string `json:"message,omitempty"`
}

// Health performs health checks on database, RabbitMQ and Redis
func (h *Handler) Health(w http.ResponseWriter, r *http.Request) {
	ctx, cancel := context.WithTimeout(r.Context(), 5*time.Second)
	defer cancel()

	checks := make(map[string]Check)
	overallHealthy := true

	// Check database connectivity
	dbCheck := h.checkDatabase(ctx)
	checks["database"] = dbCheck
	if dbCheck.Status != "healthy" {
		overallHealthy = false
	}

	// Check RabbitMQ connectivity
	queueCheck := h.checkQueue()
	checks["queue"] = queueCheck
	if queueCheck.Status != "healthy" {
		overallHealthy = false
	}

	redisCheck := h.checkRedis(ctx)
	checks["redis"] = redisCheck
	if redisCheck.Status == "unhealthy" {
		overallHealthy = false
	}

	// Determine overall status
	status := "healthy"
	if !overallHealthy {
		status = "unhealthy"
	}

	response := HealthResponse{
		Status:    status,
		Checks:    checks,
		Timestamp: time.Now(),
	}

	// Set HTTP status code
	statusCode := http.StatusOK
	if !overallHealthy {
		statusCode = http.StatusServiceUnavailable
	}

	handlers.RespondWithJSON(w, statusCode, response)
}

// checkDatabase checks if the database is accessible
func (h *Handler) checkDatabase(ctx context.Context) Check {
	if h.db == nil {
		return Check{
			Status:  "unhealthy",
			Message: "database connection is nil",
		}
	}

	// Try to ping the database
	err := h.db.PingContext(ctx)
	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "database connection failed: " + err.Error(),
		}
	}

	// Try a simple query to verify database is actually working
	var result int
	err = h.db.QueryRowContext(ctx, "SELECT 1").Scan(&result)
	if err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "database query failed: " + err.Error(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "database is accessible",
	}
}

// checkQueue checks if RabbitMQ is accessible
func (h *Handler) checkQueue() Check {
	if h.queue == nil {
		return Check{
			Status:  "unhealthy",
			Message: "queue connection is nil",
		}
	}

	if err := h.queue.Ping(); err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "queue connection failed: " + err.Error(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "queue is accessible",
	}
}

// checkRedis checks the cache and session store
func (h *Handler) checkRedis(ctx context.Context) Check {
	if h.redis == nil {
		return Check{
			Status:  "disabled",
			Message: "redis is not configured, using in-process fallbacks",
		}
	}

	if err := h.redis.Ping(ctx).Err(); err != nil {
		return Check{
			Status:  "unhealthy",
			Message: "redis connection failed: " + err.Error(),
		}
	}

	return Check{
		Status:  "healthy",
		Message: "redis is accessible",
	}
}
