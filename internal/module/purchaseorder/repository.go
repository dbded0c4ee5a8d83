package purchaseorder

import (
	"context"

	"github.com/shopspring/decimal"
	"gorm.io/gorm"

	"github.com/simp-lee/procurebase/internal/domain"
	"github.com/simp-lee/procurebase/internal/pkg"
)

// extraTotalAmount is the list extra holding the summed amount of every
// matching order, as a decimal string.
const extraTotalAmount = "totalAmount"

var (
	allowedSortFields = []string{"id", "number", "amount", "status", "issued_at", "created_at"}
	searchFields      = []string{"number"}
	matchColumns      = map[string]string{
		"requisitionid": "requisition_id",
		"vendorid":      "vendor_id",
		"status":        "status",
	}
	filterColumns = map[string]string{
		"number":     "number",
		"amount":     "amount",
		"status":     "status",
		"issued_at":  "issued_at",
		"created_at": "created_at",
	}
)

type purchaseOrderRepository struct {
	db *gorm.DB
}

// NewPurchaseOrderRepository creates a PurchaseOrderRepository backed by db.
func NewPurchaseOrderRepository(db *gorm.DB) domain.PurchaseOrderRepository {
	return &purchaseOrderRepository{db: db}
}

// Create inserts order and bumps its vendor's order count in one transaction.
func (r *purchaseOrderRepository) Create(ctx context.Context, order *domain.PurchaseOrder) error {
	order.IssuedAt = pkg.UTC(order.IssuedAt)
	err := pkg.WithTx(ctx, r.db, func(tx *gorm.DB) error {
		res := tx.Model(&domain.Vendor{}).
			Where("id = ?", order.VendorID).
			UpdateColumn("order_count", gorm.Expr("order_count + ?", 1))
		if res.Error != nil {
			return res.Error
		}
		if res.RowsAffected == 0 {
			return domain.NewAppError(domain.CodeNotFound, "vendor not found", nil)
		}
		return tx.Create(order).Error
	})
	return pkg.MapDBError(err)
}

// GetByID retrieves a purchase order by its ID.
func (r *purchaseOrderRepository) GetByID(ctx context.Context, id uint) (*domain.PurchaseOrder, error) {
	var order domain.PurchaseOrder
	if err := r.db.WithContext(ctx).First(&order, id).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	return &order, nil
}

// List returns one page of orders plus the summed amount of every match.
func (r *purchaseOrderRepository) List(ctx context.Context, req domain.ListRequest) (*domain.ListResult[domain.PurchaseOrder], error) {
	query := func() *gorm.DB {
		return r.db.WithContext(ctx).Model(&domain.PurchaseOrder{}).Scopes(
			pkg.Search(req.Search, searchFields),
			pkg.Match(req.Params, matchColumns),
			pkg.ApplyFilters(req.Filters, filterColumns),
		)
	}

	result, err := pkg.FindPage[domain.PurchaseOrder](query, req, allowedSortFields)
	if err != nil {
		return nil, err
	}

	var agg struct {
		Total decimal.Decimal
	}
	if err := query().Select("COALESCE(SUM(amount), 0) AS total").Scan(&agg).Error; err != nil {
		return nil, pkg.MapDBError(err)
	}
	result.Extra = map[string]any{extraTotalAmount: agg.Total.StringFixed(2)}
	return result, nil
}
