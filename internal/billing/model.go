package billing

import (
	"time"
)

// Upgrade statuses.
const (
	StatusPending = "PENDING"
	StatusPaid    = "PAID"
	StatusFailed  = "FAILED"
)

// PremiumUpgrade tracks one checkout for the premium (host) plan. The
// premium flag on the user flips only after signature verification.
type PremiumUpgrade struct {
	ID        uint      `gorm:"primaryKey" json:"id"`
	UserID    uint      `gorm:"not null;index" json:"user_id"`
	Amount    float64   `gorm:"not null" json:"amount"`
	OrderID   string    `gorm:"size:100;not null;uniqueIndex" json:"order_id"`
	PaymentID string    `gorm:"size:100" json:"payment_id,omitempty"`
	Method    string    `gorm:"size:30" json:"method,omitempty"`
	Status    string    `gorm:"size:20;not null;default:'PENDING';index" json:"status"`
	CreatedAt time.Time `gorm:"autoCreateTime" json:"created_at"`
	UpdatedAt time.Time `gorm:"autoUpdateTime" json:"updated_at"`
}

func (PremiumUpgrade) TableName() string {
	return "premium_upgrades"
}

// ============================
// Requests / responses

type StartUpgradeResponse struct {
	OrderID     string  `json:"order_id"`
	Amount      float64 `json:"amount"`
	Currency    string  `json:"currency"`
	RazorpayKey string  `json:"razorpay_key"`
}

type VerifyPaymentRequest struct {
	OrderID     string `json:"razorpay_order_id" binding:"required"`
	PaymentID   string `json:"razorpay_payment_id" binding:"required"`
	RazorpaySig string `json:"razorpay_signature" binding:"required"`
}
