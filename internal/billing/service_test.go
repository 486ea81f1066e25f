package billing

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
)

type noopAudit struct{}

func (noopAudit) LogAction(ctx context.Context, userID *uint, eventID *uint, action string, details map[string]interface{}, ip string, status string) error {
	return nil
}

func (noopAudit) GetAuditLogs(ctx context.Context, filter auditlog.AuditLogFilter) (*auditlog.PaginatedAuditLogs, error) {
	return nil, nil
}

func (noopAudit) GetAuditLogByID(ctx context.Context, id uint) (*auditlog.AuditLogResponse, error) {
	return nil, nil
}

type fakeRepo struct {
	byOrder map[string]*PremiumUpgrade
}

func (r *fakeRepo) Create(ctx context.Context, u *PremiumUpgrade) error {
	r.byOrder[u.OrderID] = u
	return nil
}

func (r *fakeRepo) GetByOrderID(ctx context.Context, orderID string) (*PremiumUpgrade, error) {
	u, ok := r.byOrder[orderID]
	if !ok {
		return nil, assert.AnError
	}
	return u, nil
}

func (r *fakeRepo) Update(ctx context.Context, u *PremiumUpgrade) error {
	r.byOrder[u.OrderID] = u
	return nil
}

func (r *fakeRepo) ListByUser(ctx context.Context, userID uint) ([]PremiumUpgrade, error) {
	var out []PremiumUpgrade
	for _, u := range r.byOrder {
		if u.UserID == userID {
			out = append(out, *u)
		}
	}
	return out, nil
}

var _ auth.Repository = (*stubAuthRepo)(nil)

type stubAuthRepo struct{ premium map[uint]bool }

func (r *stubAuthRepo) Create(user *auth.User) error                  { return nil }
func (r *stubAuthRepo) FindByEmail(email string) (*auth.User, error)  { return nil, assert.AnError }
func (r *stubAuthRepo) FindByID(userID uint) (auth.User, error)       { return auth.User{}, assert.AnError }
func (r *stubAuthRepo) Update(user *auth.User) error                  { return nil }
func (r *stubAuthRepo) SetPremium(userID uint, premium bool) error {
	r.premium[userID] = premium
	return nil
}
func (r *stubAuthRepo) GetCitySubscribers(city string, excludeUserID uint) ([]auth.User, error) {
	return nil, nil
}
func (r *stubAuthRepo) GetEmailsByUserIDs(userIDs []uint) ([]string, error) { return nil, nil }

func TestExpectedSignature(t *testing.T) {
	sig := expectedSignature("order_123", "pay_456", "secret")

	assert.Len(t, sig, 64)
	assert.Equal(t, sig, expectedSignature("order_123", "pay_456", "secret"))
	assert.NotEqual(t, sig, expectedSignature("order_123", "pay_456", "other-secret"))
	assert.NotEqual(t, sig, expectedSignature("order_124", "pay_456", "secret"))
}

func newVerifyFixture() (Service, *fakeRepo, *stubAuthRepo) {
	repo := &fakeRepo{byOrder: map[string]*PremiumUpgrade{
		"order_123": {UserID: 1, OrderID: "order_123", Status: StatusPending},
	}}
	authRepo := &stubAuthRepo{premium: map[uint]bool{}}
	cfg := &config.Config{RazorpayKey: "key", RazorpaySecret: "secret"}
	return NewService(repo, authRepo, cfg, noopAudit{}), repo, authRepo
}

func TestVerifyUpgradeRejectsBadSignature(t *testing.T) {
	svc, repo, authRepo := newVerifyFixture()

	err := svc.VerifyUpgrade(context.Background(), 1, VerifyPaymentRequest{
		OrderID:     "order_123",
		PaymentID:   "pay_456",
		RazorpaySig: "forged",
	}, "127.0.0.1")

	require.Error(t, err)
	assert.Equal(t, StatusPending, repo.byOrder["order_123"].Status)
	assert.False(t, authRepo.premium[1])
}

// A correctly signed proof for someone else's order must not grant the
// caller premium.
func TestVerifyUpgradeRejectsForeignOrder(t *testing.T) {
	svc, repo, authRepo := newVerifyFixture()

	err := svc.VerifyUpgrade(context.Background(), 2, VerifyPaymentRequest{
		OrderID:     "order_123",
		PaymentID:   "pay_456",
		RazorpaySig: expectedSignature("order_123", "pay_456", "secret"),
	}, "127.0.0.1")

	require.ErrorIs(t, err, domain.ErrForbidden)
	assert.Equal(t, StatusPending, repo.byOrder["order_123"].Status)
	assert.False(t, authRepo.premium[1])
	assert.False(t, authRepo.premium[2])
}
