package handlers

import (
	"context"
	"time"

	"kosh/internal/repositories"

	"github.com/gofiber/fiber/v2"
	"gorm.io/gorm"
)

const healthTimeout = 2 * time.Second

// HealthChecker reports whether a dependency is reachable.
type HealthChecker interface {
	HealthCheck(ctx context.Context) error
}

type HealthHandler struct {
	db    *gorm.DB
	cache HealthChecker
}

// NewHealthHandler creates a health handler. cache may be nil when redis is
// not configured.
func NewHealthHandler(db *gorm.DB, cache HealthChecker) *HealthHandler {
	return &HealthHandler{db: db, cache: cache}
}

// Check handles GET /health.
func (h *HealthHandler) Check(c *fiber.Ctx) error {
	status := fiber.StatusOK
	services := fiber.Map{"database": "connected", "redis": "disabled"}

	if err := repositories.Ping(h.db); err != nil {
		status = fiber.StatusServiceUnavailable
		services["database"] = "unreachable"
	}

	if h.cache != nil {
		ctx, cancel := context.WithTimeout(c.UserContext(), healthTimeout)
		defer cancel()
		services["redis"] = "connected"
		if err := h.cache.HealthCheck(ctx); err != nil {
			status = fiber.StatusServiceUnavailable
			services["redis"] = "unreachable"
		}
	}

	state := "ok"
	if status != fiber.StatusOK {
		state = "degraded"
	}
	return c.Status(status).JSON(fiber.Map{
		"status":   state,
		"services": services,
	})
}
