package purchaseorder

import "github.com/gin-gonic/gin"

// PurchaseOrderModule implements the app.Module interface for purchase orders.
type PurchaseOrderModule struct {
	handler *PurchaseOrderHandler
}

// NewModule creates a new PurchaseOrderModule. Panics if h is nil.
func NewModule(h *PurchaseOrderHandler) *PurchaseOrderModule {
	if h == nil {
		panic("purchaseorder.NewModule: handler must not be nil")
	}
	return &PurchaseOrderModule{handler: h}
}

// RegisterRoutes registers the purchase order API routes.
func (m *PurchaseOrderModule) RegisterRoutes(api *gin.RouterGroup) {
	api.POST("/purchase-orders", m.handler.Create)
	api.GET("/purchase-orders/:id", m.handler.Get)
	api.GET("/purchase-orders", m.handler.List)
}
