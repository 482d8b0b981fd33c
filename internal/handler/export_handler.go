package handler

import (
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/audit"
	"github.com/ekamauln/livo-next/internal/middleware"
)

type ExportHandler struct {
	repo *audit.Repository
}

func NewExportHandler(repo *audit.Repository) *ExportHandler {
	return &ExportHandler{repo: repo}
}

// List GET /api/v1/exports
// Admins see every run; other users only their own.
func (h *ExportHandler) List(c *gin.Context) {
	page, pageSize := GetPagination(c)
	filters := map[string]string{
		"report": c.Query("report"),
		"status": c.Query("status"),
		"format": c.Query("format"),
	}
	if middleware.HasRole(c, "admin") {
		filters["user_id"] = c.Query("user_id")
	} else {
		filters["user_id"] = GetUserID(c)
	}

	runs, total, err := h.repo.FindAll(c.Request.Context(), page, pageSize, filters)
	if err != nil {
		InternalError(c, "Failed to load export history")
		return
	}
	Success(c, ListResponse{
		Items:      runs,
		Pagination: NewPagination(page, pageSize, int(total)),
	})
}

// Get GET /api/v1/exports/:id
// Another user's run is reported as missing to non-admins.
func (h *ExportHandler) Get(c *gin.Context) {
	run, err := h.repo.FindByID(c.Request.Context(), c.Param("id"))
	if err != nil {
		if errors.Is(err, audit.ErrNotFound) {
			NotFound(c, "Export not found")
			return
		}
		InternalError(c, "Failed to load export")
		return
	}
	if run.UserID != GetUserID(c) && !middleware.HasRole(c, "admin") {
		NotFound(c, "Export not found")
		return
	}
	Success(c, run)
}
