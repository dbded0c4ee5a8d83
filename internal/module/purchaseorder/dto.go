package purchaseorder

import (
	"time"

	"github.com/shopspring/decimal"
)

// CreatePurchaseOrderRequest represents the input for issuing a purchase
// order. Amount accepts a JSON number or a decimal string.
type CreatePurchaseOrderRequest struct {
	VendorID      uint            `json:"vendor_id" binding:"required"`
	RequisitionID uint            `json:"requisition_id" binding:"required"`
	Amount        decimal.Decimal `json:"amount"`
	Status        string          `json:"status" binding:"omitempty,oneof=draft issued received cancelled"`
	IssuedAt      *time.Time      `json:"issued_at"`
}
