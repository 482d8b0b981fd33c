package handler

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/ekamauln/livo-next/internal/middleware"
)

// Handlers groups the HTTP handlers mounted by RegisterRoutes.
type Handlers struct {
	Health  *HealthHandler
	Report  *ReportHandler
	Order   *OrderHandler
	QC      *QCHandler
	User    *UserHandler
	Delete  *DeleteHandler
	Lookup  *LookupHandler
	Barcode *BarcodeHandler
	Export  *ExportHandler
	List    *ListHandler
}

// Entities whose DELETE goes through the two-step confirmation.
const (
	EntityProducts   = "products"
	EntityReturns    = "returns"
	EntityComplaints = "complaints"
	EntityUsers      = "users"
)

// RegisterRoutes mounts every route on r. Routes under /api/v1 require a
// bearer token signed with jwtSecret.
func RegisterRoutes(r *gin.Engine, h *Handlers, jwtSecret, issuer string) {
	if h.Health != nil {
		r.GET("/health/live", h.Health.Live)
		r.GET("/health/ready", h.Health.Ready)
		r.GET("/version", h.Health.Version)
	}

	r.NoRoute(func(c *gin.Context) {
		c.JSON(http.StatusNotFound, Response{Code: 40400, Message: "Not found"})
	})

	v1 := r.Group("/api/v1", middleware.JWTAuth(jwtSecret, issuer))
	{
		if h.Report != nil {
			v1.GET("/reports", h.Report.List)
			v1.GET("/reports/:report/pdf", h.Report.ExportPDF)
			v1.GET("/reports/:report/xlsx", h.Report.ExportXLSX)
		}

		if h.Order != nil {
			v1.GET("/orders", h.Order.List)
			v1.GET("/orders/:id", h.Order.Get)
			v1.PUT("/orders/:id/details", h.Order.UpdateDetails)
		}

		if h.QC != nil {
			v1.POST("/qc-online", h.QC.Create)
		}

		if h.User != nil {
			v1.GET("/users/badges", h.User.Badges)
			v1.GET("/users/badges/:role", h.User.Badge)
			v1.PUT("/users/:id", h.User.Update)
			v1.PUT("/users/:id/admin", middleware.RequireRole("admin"), h.User.AdminUpdate)
			v1.POST("/user-charge-fees", h.User.CreateChargeFees)
		}

		if h.Delete != nil {
			v1.DELETE("/products/:id", h.Delete.Delete(EntityProducts))
			v1.DELETE("/returns/:id", h.Delete.Delete(EntityReturns))
			v1.DELETE("/complaints/:id", h.Delete.Delete(EntityComplaints))
			v1.DELETE("/users/:id", middleware.RequireRole("admin"), h.Delete.Delete(EntityUsers))
			v1.POST("/confirmations/reset", h.Delete.Reset)
		}

		if h.Lookup != nil {
			v1.GET("/lookups/:kind/stream", h.Lookup.Stream)
			v1.POST("/lookups/sessions/:id/keys", h.Lookup.Key)
		}

		if h.Barcode != nil {
			v1.GET("/barcodes/:kind/:value", h.Barcode.Render)
		}

		if h.Export != nil {
			v1.GET("/exports", h.Export.List)
			v1.GET("/exports/:id", h.Export.Get)
		}

		if h.List != nil {
			v1.GET("/pick-orders", h.List.PickOrders)
			v1.GET("/boxes", h.List.Boxes)
			v1.GET("/boxes/count", h.List.BoxCounts)
			v1.GET("/user-charge-fees", h.List.UserChargeFees)
			v1.GET("/returns", h.List.Returns)
			v1.GET("/complaints", h.List.Complaints)
			v1.GET("/products", h.List.Products)
			v1.GET("/users", h.List.Users)
			v1.GET("/users/:id", h.List.User)
			v1.GET("/expeditions", h.List.Expeditions)
		}
	}
}
