package http

import (
	"net/http"
	"time"

	"github.com/labstack/echo/v4"
	"gorm.io/gorm"
)

type Handler struct {
	db      *gorm.DB
	started time.Time
}

func NewHandler(db *gorm.DB) *Handler {
	return &Handler{db: db, started: time.Now().UTC()}
}

// Health reports liveness plus database reachability. A settlement engine
// that cannot reach its store must not advertise itself as healthy.
func (h *Handler) Health(c echo.Context) error {
	dbStatus := "up"
	code := http.StatusOK

	sqlDB, err := h.db.DB()
	if err == nil {
		err = sqlDB.PingContext(c.Request().Context())
	}
	if err != nil {
		dbStatus = "down"
		code = http.StatusServiceUnavailable
	}

	return c.JSON(code, map[string]any{
		"service":  "settlement-engine",
		"db":       dbStatus,
		"uptime_s": int64(time.Since(h.started).Seconds()),
		"time":     time.Now().UTC().Format(time.RFC3339Nano),
	})
}
