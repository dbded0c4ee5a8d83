package domain

import (
	"context"
	"time"

	"github.com/shopspring/decimal"
)

// POStatus is the lifecycle state of a purchase order.
type POStatus string

const (
	PODraft     POStatus = "draft"
	POIssued    POStatus = "issued"
	POReceived  POStatus = "received"
	POCancelled POStatus = "cancelled"
)

// Valid reports whether s is a known status.
func (s POStatus) Valid() bool {
	switch s {
	case PODraft, POIssued, POReceived, POCancelled:
		return true
	}
	return false
}

// PurchaseOrder is an order issued to a vendor against a requisition.
type PurchaseOrder struct {
	BaseModel
	Number        string          `gorm:"size:40;uniqueIndex;not null" json:"number"`
	VendorID      uint            `gorm:"not null;index" json:"vendor_id"`
	RequisitionID uint            `gorm:"not null;index" json:"requisition_id"`
	Amount        decimal.Decimal `gorm:"type:decimal(14,2);not null" json:"amount"`
	Status        POStatus        `gorm:"size:20;not null;index" json:"status"`
	IssuedAt      *time.Time      `json:"issued_at"`
}

// PurchaseOrderInput carries the writable fields of a purchase order.
type PurchaseOrderInput struct {
	VendorID      uint
	RequisitionID uint
	Amount        decimal.Decimal
	Status        POStatus
	IssuedAt      *time.Time
}

// PurchaseOrderRepository defines the data access interface for purchase orders.
type PurchaseOrderRepository interface {
	// Create inserts order and increments its vendor's order count in one
	// transaction. An unknown vendor yields a not-found error.
	Create(ctx context.Context, order *PurchaseOrder) error
	GetByID(ctx context.Context, id uint) (*PurchaseOrder, error)
	// List pages the matching orders; Extra carries the total amount of the
	// whole filtered set.
	List(ctx context.Context, req ListRequest) (*ListResult[PurchaseOrder], error)
}

// PurchaseOrderService defines the business logic interface for purchase orders.
type PurchaseOrderService interface {
	CreatePurchaseOrder(ctx context.Context, in PurchaseOrderInput) (*PurchaseOrder, error)
	GetPurchaseOrder(ctx context.Context, id uint) (*PurchaseOrder, error)
	ListPurchaseOrders(ctx context.Context, req ListRequest) (*ListResult[PurchaseOrder], error)
}
