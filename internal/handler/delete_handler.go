package handler

import (
	"context"
	"strconv"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/confirm"
)

// DeleteFunc removes one upstream record.
type DeleteFunc func(ctx context.Context, id uint) error

// DeleteHandler gates deletes behind a two-step confirmation: the first DELETE
// arms the row, a second within the window deletes it.
type DeleteHandler struct {
	armer   confirm.Armer
	deletes map[string]DeleteFunc
}

func NewDeleteHandler(armer confirm.Armer, deletes map[string]DeleteFunc) *DeleteHandler {
	return &DeleteHandler{armer: armer, deletes: deletes}
}

// Delete returns the handler for DELETE /api/v1/<entity>/:id.
func (h *DeleteHandler) Delete(entity string) gin.HandlerFunc {
	return func(c *gin.Context) {
		del, ok := h.deletes[entity]
		if !ok {
			NotFound(c, "Unknown entity")
			return
		}
		id, ok := idParam(c)
		if !ok {
			return
		}

		scope := confirm.Key(GetUserID(c), entity)
		outcome, err := h.armer.Press(c.Request.Context(), scope, strconv.FormatUint(uint64(id), 10))
		if err != nil {
			InternalError(c, "Could not confirm delete, please try again")
			return
		}
		if outcome == confirm.Armed {
			Accepted(c, "Click delete again to confirm", gin.H{
				"armed":         true,
				"expires_in_ms": h.armer.Window().Milliseconds(),
			})
			return
		}

		if err := del(RequestContext(c), id); err != nil {
			UpstreamError(c, err)
			return
		}
		Success(c, gin.H{"deleted": true, "id": id})
	}
}

type resetRequest struct {
	Entity string `json:"entity" binding:"required"`
}

// Reset POST /api/v1/confirmations/reset disarms the caller's pending delete for an entity.
func (h *DeleteHandler) Reset(c *gin.Context) {
	var req resetRequest
	if err := c.ShouldBindJSON(&req); err != nil {
		BadRequest(c, "entity is required")
		return
	}
	if err := h.armer.Reset(c.Request.Context(), confirm.Key(GetUserID(c), req.Entity)); err != nil {
		InternalError(c, "Could not reset confirmation")
		return
	}
	Success(c, gin.H{"armed": false})
}
