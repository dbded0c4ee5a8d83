package purchaseorder

import (
	"context"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/simp-lee/procurebase/internal/domain"
)

type purchaseOrderService struct {
	repo domain.PurchaseOrderRepository
	now  func() time.Time
}

// NewPurchaseOrderService creates a PurchaseOrderService with the given
// repository.
func NewPurchaseOrderService(repo domain.PurchaseOrderRepository) domain.PurchaseOrderService {
	return &purchaseOrderService{repo: repo, now: time.Now}
}

// CreatePurchaseOrder numbers and persists a new order. Status defaults to
// draft; an issued order without an issue time is stamped with the current
// time.
func (s *purchaseOrderService) CreatePurchaseOrder(ctx context.Context, in domain.PurchaseOrderInput) (*domain.PurchaseOrder, error) {
	if in.Status == "" {
		in.Status = domain.PODraft
	}
	if err := validate(in); err != nil {
		return nil, err
	}

	order := &domain.PurchaseOrder{
		Number:        newNumber(),
		VendorID:      in.VendorID,
		RequisitionID: in.RequisitionID,
		Amount:        in.Amount.Round(2),
		Status:        in.Status,
		IssuedAt:      in.IssuedAt,
	}
	if order.Status == domain.POIssued && order.IssuedAt == nil {
		now := s.now().UTC()
		order.IssuedAt = &now
	}

	if err := s.repo.Create(ctx, order); err != nil {
		return nil, err
	}
	return order, nil
}

// GetPurchaseOrder retrieves a purchase order by its ID.
func (s *purchaseOrderService) GetPurchaseOrder(ctx context.Context, id uint) (*domain.PurchaseOrder, error) {
	return s.repo.GetByID(ctx, id)
}

// ListPurchaseOrders returns one page of purchase orders.
func (s *purchaseOrderService) ListPurchaseOrders(ctx context.Context, req domain.ListRequest) (*domain.ListResult[domain.PurchaseOrder], error) {
	return s.repo.List(ctx, req)
}

func validate(in domain.PurchaseOrderInput) error {
	if in.VendorID == 0 {
		return domain.NewAppError(domain.CodeValidation, "vendor_id is required", nil)
	}
	if in.RequisitionID == 0 {
		return domain.NewAppError(domain.CodeValidation, "requisition_id is required", nil)
	}
	if !in.Amount.IsPositive() {
		return domain.NewAppError(domain.CodeValidation, "amount must be greater than zero", nil)
	}
	if !in.Status.Valid() {
		return domain.NewAppError(domain.CodeValidation, "status must be one of draft, issued, received, cancelled", nil)
	}
	return nil
}

// newNumber returns an order number such as "PO-1A2B3C4D".
func newNumber() string {
	return "PO-" + strings.ToUpper(uuid.NewString()[:8])
}
