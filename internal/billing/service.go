package billing

import (
	"context"
	"crypto/hmac"
	"crypto/sha256"
	"encoding/hex"
	"errors"
	"fmt"

	razorpay "github.com/razorpay/razorpay-go"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
)

// Service handles the premium-plan checkout. Payment processing itself
// lives with the provider; this subsystem only opens orders and flips
// the premium flag after a verified capture.
type Service interface {
	StartUpgrade(ctx context.Context, userID uint, ip string) (*StartUpgradeResponse, error)
	VerifyUpgrade(ctx context.Context, userID uint, req VerifyPaymentRequest, ip string) error
	ListUpgrades(ctx context.Context, userID uint) ([]PremiumUpgrade, error)
}

type service struct {
	repo     Repository
	authRepo auth.Repository
	client   *razorpay.Client
	cfg      *config.Config
	auditSvc auditlog.Service
}

func NewService(repo Repository, authRepo auth.Repository, cfg *config.Config, auditSvc auditlog.Service) Service {
	return &service{
		repo:     repo,
		authRepo: authRepo,
		client:   razorpay.NewClient(cfg.RazorpayKey, cfg.RazorpaySecret),
		cfg:      cfg,
		auditSvc: auditSvc,
	}
}

// StartUpgrade opens a provider order and records a pending upgrade.
func (s *service) StartUpgrade(ctx context.Context, userID uint, ip string) (*StartUpgradeResponse, error) {
	amount := s.cfg.PremiumPlanAmount

	data := map[string]interface{}{
		"amount":          int(amount * 100),
		"currency":        "JPY",
		"payment_capture": 1,
		"notes": map[string]interface{}{
			"user_id": userID,
			"plan":    "premium",
		},
	}

	order, err := s.client.Order.Create(data, nil)
	if err != nil {
		s.auditSvc.LogAction(ctx, &userID, nil, "PREMIUM_UPGRADE_INITIATED", map[string]interface{}{
			"amount": amount,
			"error":  err.Error(),
		}, ip, "failure")
		return nil, fmt.Errorf("razorpay order creation failed: %w", err)
	}

	orderID, ok := order["id"].(string)
	if !ok {
		return nil, errors.New("unable to extract order_id from Razorpay response")
	}

	upgrade := &PremiumUpgrade{
		UserID:  userID,
		Amount:  amount,
		OrderID: orderID,
		Status:  StatusPending,
	}
	if err := s.repo.Create(ctx, upgrade); err != nil {
		return nil, fmt.Errorf("failed to create upgrade record: %w", err)
	}

	s.auditSvc.LogAction(ctx, &userID, nil, "PREMIUM_UPGRADE_INITIATED", map[string]interface{}{
		"amount":   amount,
		"order_id": orderID,
	}, ip, "success")

	return &StartUpgradeResponse{
		OrderID:     orderID,
		Amount:      amount,
		Currency:    "JPY",
		RazorpayKey: s.cfg.RazorpayKey,
	}, nil
}

// VerifyUpgrade checks the provider signature, confirms the order belongs
// to the caller and was captured, and flips the user's premium flag.
func (s *service) VerifyUpgrade(ctx context.Context, userID uint, req VerifyPaymentRequest, ip string) error {
	if expectedSignature(req.OrderID, req.PaymentID, s.cfg.RazorpaySecret) != req.RazorpaySig {
		s.auditSvc.LogAction(ctx, nil, nil, "PREMIUM_UPGRADE_VERIFICATION_FAILED", map[string]interface{}{
			"order_id":   req.OrderID,
			"payment_id": req.PaymentID,
			"reason":     "invalid payment signature",
		}, ip, "failure")
		return errors.New("invalid payment signature")
	}

	upgrade, err := s.repo.GetByOrderID(ctx, req.OrderID)
	if err != nil {
		return fmt.Errorf("upgrade record not found: %w", err)
	}

	if upgrade.UserID != userID {
		s.auditSvc.LogAction(ctx, &userID, nil, "PREMIUM_UPGRADE_VERIFICATION_FAILED", map[string]interface{}{
			"order_id": req.OrderID,
			"reason":   "order belongs to another user",
		}, ip, "failure")
		return domain.ErrForbidden
	}

	payment, err := s.client.Payment.Fetch(req.PaymentID, nil, nil)
	if err != nil {
		return fmt.Errorf("razorpay payment fetch failed: %w", err)
	}
	status, ok := payment["status"].(string)
	if !ok {
		return errors.New("invalid payment status format")
	}

	upgrade.PaymentID = req.PaymentID
	if method, ok := payment["method"].(string); ok {
		upgrade.Method = method
	}

	if status != "captured" {
		upgrade.Status = StatusFailed
		_ = s.repo.Update(ctx, upgrade)

		s.auditSvc.LogAction(ctx, &upgrade.UserID, nil, "PREMIUM_UPGRADE_FAILED", map[string]interface{}{
			"order_id":        req.OrderID,
			"payment_id":      req.PaymentID,
			"razorpay_status": status,
		}, ip, "failure")
		return fmt.Errorf("payment not captured: %s", status)
	}

	upgrade.Status = StatusPaid
	if err := s.repo.Update(ctx, upgrade); err != nil {
		return fmt.Errorf("failed to update upgrade record: %w", err)
	}

	if err := s.authRepo.SetPremium(upgrade.UserID, true); err != nil {
		return fmt.Errorf("failed to set premium flag: %w", err)
	}

	s.auditSvc.LogAction(ctx, &upgrade.UserID, nil, "PREMIUM_UPGRADE_COMPLETED", map[string]interface{}{
		"order_id":   req.OrderID,
		"payment_id": req.PaymentID,
		"amount":     upgrade.Amount,
	}, ip, "success")

	return nil
}

func (s *service) ListUpgrades(ctx context.Context, userID uint) ([]PremiumUpgrade, error) {
	return s.repo.ListByUser(ctx, userID)
}

// expectedSignature is the provider's documented order|payment HMAC.
func expectedSignature(orderID, paymentID, secret string) string {
	mac := hmac.New(sha256.New, []byte(secret))
	mac.Write([]byte(orderID + "|" + paymentID))
	return hex.EncodeToString(mac.Sum(nil))
}
