package domain

import (
	"context"
	"time"
)

// VendorStatus is the onboarding state of a vendor.
type VendorStatus string

const (
	VendorActive   VendorStatus = "active"
	VendorInactive VendorStatus = "inactive"
	VendorPending  VendorStatus = "pending"
)

// Valid reports whether s is a known status.
func (s VendorStatus) Valid() bool {
	switch s {
	case VendorActive, VendorInactive, VendorPending:
		return true
	}
	return false
}

// Vendor is a supplier purchase orders are issued to.
type Vendor struct {
	BaseModel
	Name        string       `gorm:"size:200;not null" json:"name"`
	Email       string       `gorm:"size:255;uniqueIndex;not null" json:"email"`
	Category    string       `gorm:"size:100;index" json:"category"`
	Status      VendorStatus `gorm:"size:20;not null;default:pending;index" json:"status"`
	Rating      float64      `gorm:"not null;default:0" json:"rating"`
	OnboardedAt *time.Time   `json:"onboarded_at"`
	OrderCount  int          `gorm:"not null;default:0" json:"order_count"`
}

// VendorInput carries the writable fields of a vendor.
type VendorInput struct {
	Name        string
	Email       string
	Category    string
	Status      VendorStatus
	Rating      float64
	OnboardedAt *time.Time
}

// VendorRepository defines the data access interface for vendors.
type VendorRepository interface {
	Create(ctx context.Context, vendor *Vendor) error
	GetByID(ctx context.Context, id uint) (*Vendor, error)
	List(ctx context.Context, req ListRequest) (*ListResult[Vendor], error)
	// CountByStatus counts every vendor per status, ignoring any list query.
	CountByStatus(ctx context.Context) (map[VendorStatus]int64, error)
	Delete(ctx context.Context, id uint) error
}

// VendorService defines the business logic interface for vendors.
type VendorService interface {
	CreateVendor(ctx context.Context, in VendorInput) (*Vendor, error)
	GetVendor(ctx context.Context, id uint) (*Vendor, error)
	ListVendors(ctx context.Context, req ListRequest) (*ListResult[Vendor], error)
	DeleteVendor(ctx context.Context, id uint) error
}
