package auth

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gorm.io/gorm"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/internal/domain"
)

type fakeRepo struct {
	byID    map[uint]*User
	byEmail map[string]*User
	nextID  uint
}

func newFakeRepo() *fakeRepo {
	return &fakeRepo{byID: map[uint]*User{}, byEmail: map[string]*User{}, nextID: 1}
}

func (r *fakeRepo) Create(user *User) error {
	if _, ok := r.byEmail[user.Email]; ok {
		return gorm.ErrDuplicatedKey
	}
	user.ID = r.nextID
	r.nextID++
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeRepo) FindByEmail(email string) (*User, error) {
	u, ok := r.byEmail[email]
	if !ok {
		return &User{}, gorm.ErrRecordNotFound
	}
	return u, nil
}

func (r *fakeRepo) FindByID(userID uint) (User, error) {
	u, ok := r.byID[userID]
	if !ok {
		return User{}, gorm.ErrRecordNotFound
	}
	return *u, nil
}

func (r *fakeRepo) Update(user *User) error {
	r.byID[user.ID] = user
	r.byEmail[user.Email] = user
	return nil
}

func (r *fakeRepo) SetPremium(userID uint, premium bool) error {
	u, ok := r.byID[userID]
	if !ok {
		return gorm.ErrRecordNotFound
	}
	u.IsPremium = premium
	return nil
}

func (r *fakeRepo) GetCitySubscribers(city string, excludeUserID uint) ([]User, error) {
	return nil, nil
}

func (r *fakeRepo) GetEmailsByUserIDs(userIDs []uint) ([]string, error) {
	return nil, nil
}

func newTestService() (Service, *fakeRepo) {
	repo := newFakeRepo()
	cfg := &config.Config{
		JWTAccessSecret:  "access-secret",
		JWTRefreshSecret: "refresh-secret",
		Cities:           []string{"Tokyo", "Osaka"},
	}
	return NewService(repo, cfg), repo
}

func register(t *testing.T, svc Service) *User {
	t.Helper()
	user, err := svc.Register(RegisterInput{
		FullName: "Aiko Tanaka",
		Email:    "aiko@example.jp",
		Password: "correct horse",
		City:     "Tokyo",
	})
	require.NoError(t, err)
	return user
}

func TestRegister(t *testing.T) {
	t.Run("creates an active account", func(t *testing.T) {
		svc, _ := newTestService()
		user := register(t, svc)

		assert.Equal(t, "active", user.Status)
		assert.False(t, user.IsPremium)
		assert.True(t, user.NotifyCityEvents)
		assert.NotEqual(t, "correct horse", user.PasswordHash)
	})

	t.Run("normalizes the email", func(t *testing.T) {
		svc, repo := newTestService()
		_, err := svc.Register(RegisterInput{
			FullName: "Aiko",
			Email:    "  AIKO@Example.JP ",
			Password: "correct horse",
		})
		require.NoError(t, err)
		_, ok := repo.byEmail["aiko@example.jp"]
		assert.True(t, ok)
	})

	t.Run("rejects short passwords", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(RegisterInput{Email: "a@b.jp", Password: "short"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})

	t.Run("rejects unknown city", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Register(RegisterInput{Email: "a@b.jp", Password: "correct horse", City: "Gotham"})
		assert.ErrorIs(t, err, domain.ErrInvalidArgument)
	})
}

func TestLogin(t *testing.T) {
	t.Run("issues a token pair", func(t *testing.T) {
		svc, _ := newTestService()
		register(t, svc)

		pair, user, err := svc.Login(LoginInput{Email: "aiko@example.jp", Password: "correct horse"})
		require.NoError(t, err)
		assert.NotEmpty(t, pair.AccessToken)
		assert.NotEmpty(t, pair.RefreshToken)
		assert.Equal(t, "aiko@example.jp", user.Email)
	})

	t.Run("wrong password", func(t *testing.T) {
		svc, _ := newTestService()
		register(t, svc)

		_, _, err := svc.Login(LoginInput{Email: "aiko@example.jp", Password: "wrong"})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("unknown account", func(t *testing.T) {
		svc, _ := newTestService()

		_, _, err := svc.Login(LoginInput{Email: "nobody@example.jp", Password: "whatever1"})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("suspended account", func(t *testing.T) {
		svc, repo := newTestService()
		user := register(t, svc)
		repo.byID[user.ID].Status = "suspended"

		_, _, err := svc.Login(LoginInput{Email: "aiko@example.jp", Password: "correct horse"})
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestRefresh(t *testing.T) {
	t.Run("mints a fresh access token", func(t *testing.T) {
		svc, _ := newTestService()
		register(t, svc)

		pair, _, err := svc.Login(LoginInput{Email: "aiko@example.jp", Password: "correct horse"})
		require.NoError(t, err)

		access, err := svc.Refresh(pair.RefreshToken)
		require.NoError(t, err)
		assert.NotEmpty(t, access)

		_, err = svc.ResolveIdentity(access)
		assert.NoError(t, err)
	})

	t.Run("rejects garbage tokens", func(t *testing.T) {
		svc, _ := newTestService()
		_, err := svc.Refresh("not-a-jwt")
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})

	t.Run("rejects an access token used as refresh", func(t *testing.T) {
		svc, _ := newTestService()
		register(t, svc)

		pair, _, err := svc.Login(LoginInput{Email: "aiko@example.jp", Password: "correct horse"})
		require.NoError(t, err)

		_, err = svc.Refresh(pair.AccessToken)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}

func TestResolveIdentity(t *testing.T) {
	t.Run("premium reflects the stored record, not the token", func(t *testing.T) {
		svc, repo := newTestService()
		user := register(t, svc)

		pair, _, err := svc.Login(LoginInput{Email: "aiko@example.jp", Password: "correct horse"})
		require.NoError(t, err)

		identity, err := svc.ResolveIdentity(pair.AccessToken)
		require.NoError(t, err)
		assert.False(t, identity.Premium)

		// Upgrade mid-session; the same token now resolves premium.
		require.NoError(t, repo.SetPremium(user.ID, true))

		identity, err = svc.ResolveIdentity(pair.AccessToken)
		require.NoError(t, err)
		assert.True(t, identity.Premium)
		assert.Equal(t, user.ID, identity.UserID)
	})

	t.Run("suspended account is rejected", func(t *testing.T) {
		svc, repo := newTestService()
		user := register(t, svc)

		pair, _, err := svc.Login(LoginInput{Email: "aiko@example.jp", Password: "correct horse"})
		require.NoError(t, err)

		repo.byID[user.ID].Status = "suspended"

		_, err = svc.ResolveIdentity(pair.AccessToken)
		assert.ErrorIs(t, err, domain.ErrUnauthenticated)
	})
}
