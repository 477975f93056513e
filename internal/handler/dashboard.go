package handler

import (
	"context"
	"net/http"

	"github.com/labstack/echo/v4"
	"go.uber.org/zap"

	"github.com/iliyamo/movie-ticket-booking/internal/repository"
)

type ReportSource interface {
	Summary(ctx context.Context) (*repository.Summary, error)
}

// DashboardHandler serves GET /admin-dashboard/ to staff.
type DashboardHandler struct {
	Reports ReportSource
	Log     *zap.Logger
}

func NewDashboardHandler(reports ReportSource, log *zap.Logger) *DashboardHandler {
	return &DashboardHandler{Reports: reports, Log: log}
}

func (h *DashboardHandler) Show(c echo.Context) error {
	s, err := h.Reports.Summary(c.Request().Context())
	if err != nil {
		return internalError(c, h.Log, "dashboard summary", err)
	}
	return c.JSON(http.StatusOK, s)
}
