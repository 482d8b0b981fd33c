package handler

import (
	"errors"
	"net/http"
	"strings"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"

	"github.com/ekamauln/livo-next/internal/report"
	"github.com/ekamauln/livo-next/internal/upstream"
)

type ReportHandler struct {
	svc    *report.Service
	loc    *time.Location
	logger *zap.Logger
}

func NewReportHandler(svc *report.Service, loc *time.Location, logger *zap.Logger) *ReportHandler {
	if loc == nil {
		loc = time.UTC
	}
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportHandler{svc: svc, loc: loc, logger: logger}
}

// List GET /api/v1/reports
func (h *ReportHandler) List(c *gin.Context) {
	items := make([]gin.H, 0)
	for _, key := range h.svc.Reports() {
		rep, _ := h.svc.Lookup(key)
		items = append(items, gin.H{
			"key":          key,
			"subject":      rep.Subject(),
			"entity_label": rep.EntityLabel(),
		})
	}
	Success(c, gin.H{"items": items})
}

// ExportPDF GET /api/v1/reports/:report/pdf
func (h *ReportHandler) ExportPDF(c *gin.Context) {
	h.export(c, report.FormatPDF)
}

// ExportXLSX GET /api/v1/reports/:report/xlsx
func (h *ReportHandler) ExportXLSX(c *gin.Context) {
	h.export(c, report.FormatXLSX)
}

// parseFilter captures the query's filter state once, before any page is fetched.
func (h *ReportHandler) parseFilter(c *gin.Context) (report.Filter, error) {
	f := report.Filter{
		Search:        strings.TrimSpace(c.Query("search")),
		Entity:        strings.TrimSpace(c.Query("filter")),
		EntityDisplay: strings.TrimSpace(c.Query("filter_label")),
	}
	if s := c.Query("start_date"); s != "" {
		t, err := upstream.ParseDate(s, h.loc)
		if err != nil {
			return f, errors.New("start_date must be formatted as yyyy-MM-dd")
		}
		f.DateFrom = t
	}
	if s := c.Query("end_date"); s != "" {
		t, err := upstream.ParseDate(s, h.loc)
		if err != nil {
			return f, errors.New("end_date must be formatted as yyyy-MM-dd")
		}
		f.DateTo = t
	}
	if !f.DateFrom.IsZero() && !f.DateTo.IsZero() && f.DateTo.Before(f.DateFrom) {
		return f, errors.New("end_date must not be before start_date")
	}
	return f, nil
}

func (h *ReportHandler) export(c *gin.Context, format report.Format) {
	filter, err := h.parseFilter(c)
	if err != nil {
		BadRequest(c, err.Error())
		return
	}

	delivery := c.DefaultQuery("delivery", "stream")
	if delivery != "stream" && delivery != "link" {
		BadRequest(c, "delivery must be stream or link")
		return
	}

	res, err := h.svc.Export(RequestContext(c), report.ExportRequest{
		Report: c.Param("report"),
		Format: format,
		Filter: filter,
		UserID: GetUserID(c),
		Link:   delivery == "link",
	})
	if err != nil {
		h.exportError(c, err)
		return
	}

	if a := res.Delivery.Artifact; a != nil {
		c.Header("Content-Disposition", a.Disposition())
		c.Header("Cache-Control", "no-store")
		c.Data(http.StatusOK, a.ContentType, a.Body)
		return
	}
	Success(c, gin.H{
		"url":          res.Delivery.URL,
		"filename":     res.Filename,
		"expires_at":   res.Delivery.ExpiresAt,
		"record_count": res.RecordCount,
	})
}

func (h *ReportHandler) exportError(c *gin.Context, err error) {
	var empty *report.NoRecordsError
	switch {
	case errors.As(err, &empty):
		Warning(c, empty.Error(), gin.H{"report": c.Param("report"), "record_count": 0})
	case errors.Is(err, report.ErrUnknownReport):
		NotFound(c, "Report not found")
	case errors.Is(err, report.ErrExportInProgress):
		Conflict(c, CodeExportInProgress, "An export of this report is already running")
	case errors.Is(err, report.ErrNoLinkSink):
		BadRequest(c, "Download links are not available")
	case errors.Is(err, report.ErrTooManyPages):
		BadRequest(c, "Too many records for one export, please narrow the filters")
	case errors.Is(err, report.ErrInconsistentTotal):
		Error(c, CodeUpstream, "Data changed while the report was generated, please try again")
	default:
		h.logger.Warn("report export failed", zap.String("report", c.Param("report")), zap.Error(err))
		UpstreamError(c, err)
	}
}
