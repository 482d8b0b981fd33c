package handler

import (
	"context"
	"errors"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/form"
	"github.com/ekamauln/livo-next/internal/qc"
	"github.com/ekamauln/livo-next/internal/report"
	"github.com/ekamauln/livo-next/internal/upstream"
)

type QCHandler struct {
	api      *upstream.Client
	pageSize int
}

func NewQCHandler(api *upstream.Client, pageSize int) *QCHandler {
	if pageSize <= 0 {
		pageSize = 100
	}
	return &QCHandler{api: api, pageSize: pageSize}
}

// boxes loads every box so submitted box ids can be classified.
func (h *QCHandler) boxes(ctx context.Context) (map[uint]qc.Box, error) {
	fetch := func(ctx context.Context, page, pageSize int, _ report.Filter) (*report.Page[upstream.Box], error) {
		p, err := h.api.ListBoxes(ctx, upstream.ListQuery{Page: page, Limit: pageSize})
		if err != nil {
			return nil, err
		}
		return &report.Page[upstream.Box]{Records: p.Records, Total: p.Total}, nil
	}
	all, err := report.Accumulate(ctx, fetch, report.Filter{}, h.pageSize, 0)
	if err != nil {
		return nil, err
	}
	out := make(map[uint]qc.Box, len(all))
	for _, b := range all {
		out[b.ID] = qc.BoxFrom(b)
	}
	return out, nil
}

// Create POST /api/v1/qc-online
func (h *QCHandler) Create(c *gin.Context) {
	var in upstream.QCOnlineInput
	if err := c.ShouldBindJSON(&in); err != nil {
		BadRequest(c, "Invalid QC payload: "+err.Error())
		return
	}

	ctx := RequestContext(c)
	boxes, err := h.boxes(ctx)
	if err != nil {
		UpstreamError(c, err)
		return
	}

	f, err := qc.Replay(in, boxes)
	if errors.Is(err, qc.ErrPackingBoxPresent) {
		ValidationFailed(c, &form.Errors{Banner: err.Error()})
		return
	}
	if err != nil {
		BadRequest(c, err.Error())
		return
	}
	if fields := f.Validate(); fields != nil {
		ValidationFailed(c, &form.Errors{Fields: fields})
		return
	}

	submission := f.Submission()
	created, err := h.api.CreateQCOnline(ctx, &submission)
	if err != nil {
		UpstreamError(c, err)
		return
	}
	Created(c, created)
}
