package handler

import (
	"errors"
	"net/http"
	"strconv"
	"time"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/barcode"
)

type BarcodeHandler struct {
	now func() time.Time
}

func NewBarcodeHandler() *BarcodeHandler {
	return &BarcodeHandler{now: time.Now}
}

// Render GET /api/v1/barcodes/:kind/:value?w=&h=&download=1
func (h *BarcodeHandler) Render(c *gin.Context) {
	kind := barcode.Kind(c.Param("kind"))
	value := c.Param("value")
	w, _ := strconv.Atoi(c.Query("w"))
	ht, _ := strconv.Atoi(c.Query("h"))

	body, err := barcode.Render(kind, value, w, ht)
	if err != nil {
		if errors.Is(err, barcode.ErrUnknownKind) {
			NotFound(c, "Unknown barcode kind")
			return
		}
		BadRequest(c, err.Error())
		return
	}

	disposition := "inline"
	if c.Query("download") == "1" {
		disposition = "attachment"
	}
	c.Header("Content-Disposition", disposition+"; filename=\""+barcode.Filename(kind, value, h.now())+"\"")
	c.Data(http.StatusOK, "image/png", body)
}
