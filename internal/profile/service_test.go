package profile

import (
	"context"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

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

type fakeAuthRepo struct {
	users map[uint]*auth.User
}

func (r *fakeAuthRepo) Create(user *auth.User) error { return nil }

func (r *fakeAuthRepo) FindByEmail(email string) (*auth.User, error) {
	return nil, gorm.ErrRecordNotFound
}

func (r *fakeAuthRepo) FindByID(userID uint) (auth.User, error) {
	u, ok := r.users[userID]
	if !ok {
		return auth.User{}, gorm.ErrRecordNotFound
	}
	return *u, nil
}

func (r *fakeAuthRepo) Update(user *auth.User) error {
	r.users[user.ID] = user
	return nil
}

func (r *fakeAuthRepo) SetPremium(userID uint, premium bool) error { return nil }

func (r *fakeAuthRepo) GetCitySubscribers(city string, excludeUserID uint) ([]auth.User, error) {
	return nil, nil
}

func (r *fakeAuthRepo) GetEmailsByUserIDs(userIDs []uint) ([]string, error) { return nil, nil }

func newTestService() (Service, *fakeAuthRepo) {
	repo := &fakeAuthRepo{users: map[uint]*auth.User{
		1: {ID: 1, FullName: "Aiko Tanaka", Email: "aiko@example.jp", City: "Tokyo", NotifyCityEvents: true},
	}}
	cfg := &config.Config{Cities: []string{"Tokyo", "Osaka"}}
	return NewService(repo, cfg, noopAudit{}), repo
}

func strPtr(s string) *string { return &s }
func boolPtr(b bool) *bool    { return &b }

func TestUpdate(t *testing.T) {
	ctx := context.Background()

	t.Run("applies only the provided fields", func(t *testing.T) {
		svc, repo := newTestService()

		user, err := svc.Update(ctx, 1, UpdateInput{
			Bio:              strPtr("Coffee and bouldering."),
			HomeStation:      strPtr("Nakameguro"),
			NotifyCityEvents: boolPtr(false),
		}, "")
		require.NoError(t, err)

		assert.Equal(t, "Aiko Tanaka", user.FullName)
		assert.Equal(t, "Coffee and bouldering.", user.Bio)
		assert.Equal(t, "Nakameguro", user.HomeStation)
		assert.False(t, user.NotifyCityEvents)
		assert.False(t, repo.users[1].NotifyCityEvents)
	})

	t.Run("stores interests as JSON", func(t *testing.T) {
		svc, repo := newTestService()

		_, err := svc.Update(ctx, 1, UpdateInput{Interests: []string{"ramen", "karaoke"}}, "")
		require.NoError(t, err)
		assert.JSONEq(t, `["ramen","karaoke"]`, string(repo.users[1].Interests))
	})

	t.Run("rejects moving to an unknown city", func(t *testing.T) {
		svc, repo := newTestService()

		_, err := svc.Update(ctx, 1, UpdateInput{City: strPtr("Springfield")}, "")
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
		assert.Equal(t, "Tokyo", repo.users[1].City)
	})

	t.Run("unknown user", func(t *testing.T) {
		svc, _ := newTestService()

		_, err := svc.Update(ctx, 99, UpdateInput{}, "")
		assert.ErrorIs(t, err, domain.ErrNotFound)
	})
}

func TestSetAvatar(t *testing.T) {
	svc, repo := newTestService()

	require.NoError(t, svc.SetAvatar(context.Background(), 1, "http://localhost/uploads/avatars/x.png", ""))
	assert.Equal(t, "http://localhost/uploads/avatars/x.png", repo.users[1].AvatarURL)
}
