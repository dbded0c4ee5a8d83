package purchaseorder

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/simp-lee/procurebase/internal/domain"
	"github.com/simp-lee/procurebase/internal/pkg"
)

// idParams are list params that must hold a positive id when present.
var idParams = []string{"requisitionid", "vendorid"}

// PurchaseOrderHandler handles REST API requests for purchase orders.
type PurchaseOrderHandler struct {
	svc domain.PurchaseOrderService
}

// NewPurchaseOrderHandler creates a new PurchaseOrderHandler.
func NewPurchaseOrderHandler(svc domain.PurchaseOrderService) *PurchaseOrderHandler {
	return &PurchaseOrderHandler{svc: svc}
}

// Create handles POST /api/v1/purchase-orders.
func (h *PurchaseOrderHandler) Create(c *gin.Context) {
	var req CreatePurchaseOrderRequest
	if !pkg.BindAndValidate(c, &req) {
		return
	}

	order, err := h.svc.CreatePurchaseOrder(c.Request.Context(), domain.PurchaseOrderInput{
		VendorID:      req.VendorID,
		RequisitionID: req.RequisitionID,
		Amount:        req.Amount,
		Status:        domain.POStatus(req.Status),
		IssuedAt:      req.IssuedAt,
	})
	if err != nil {
		pkg.Error(c, err)
		return
	}

	c.JSON(http.StatusCreated, pkg.Response{
		Code:    http.StatusCreated,
		Message: "success",
		Data:    order,
	})
}

// Get handles GET /api/v1/purchase-orders/:id.
func (h *PurchaseOrderHandler) Get(c *gin.Context) {
	id, err := pkg.ParseID(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}

	order, err := h.svc.GetPurchaseOrder(c.Request.Context(), id)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.Success(c, order)
}

// List handles GET /api/v1/purchase-orders, optionally scoped with
// ?requisitionid= or ?vendorid=.
func (h *PurchaseOrderHandler) List(c *gin.Context) {
	req, err := pkg.ParseListRequest(c)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	for _, name := range idParams {
		if _, err := pkg.ParseUintParam(req.Params, name); err != nil {
			pkg.Error(c, err)
			return
		}
	}

	result, err := h.svc.ListPurchaseOrders(c.Request.Context(), req)
	if err != nil {
		pkg.Error(c, err)
		return
	}
	pkg.List(c, result)
}
