package profile

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/kizunalink/kizuna-backend/config"
	"github.com/kizunalink/kizuna-backend/internal/auditlog"
	"github.com/kizunalink/kizuna-backend/internal/auth"
	"github.com/kizunalink/kizuna-backend/internal/domain"
)

// UpdateInput carries the member-editable profile fields. Nil pointers
// mean "leave unchanged".
type UpdateInput struct {
	FullName         *string  `json:"full_name,omitempty"`
	Bio              *string  `json:"bio,omitempty"`
	City             *string  `json:"city,omitempty"`
	HomeStation      *string  `json:"home_station,omitempty"`
	Interests        []string `json:"interests,omitempty"`
	NotifyCityEvents *bool    `json:"notify_city_events,omitempty"`
}

type Service interface {
	Get(ctx context.Context, userID uint) (*auth.User, error)
	Update(ctx context.Context, userID uint, input UpdateInput, ip string) (*auth.User, error)
	SetAvatar(ctx context.Context, userID uint, url string, ip string) error
}

type service struct {
	authRepo auth.Repository
	cfg      *config.Config
	auditSvc auditlog.Service
}

func NewService(authRepo auth.Repository, cfg *config.Config, auditSvc auditlog.Service) Service {
	return &service{
		authRepo: authRepo,
		cfg:      cfg,
		auditSvc: auditSvc,
	}
}

func (s *service) Get(ctx context.Context, userID uint) (*auth.User, error) {
	user, err := s.authRepo.FindByID(userID)
	if err != nil {
		return nil, domain.ErrNotFound
	}
	return &user, nil
}

func (s *service) Update(ctx context.Context, userID uint, input UpdateInput, ip string) (*auth.User, error) {
	user, err := s.authRepo.FindByID(userID)
	if err != nil {
		return nil, domain.ErrNotFound
	}

	changes := map[string]interface{}{}

	if input.FullName != nil && *input.FullName != "" {
		user.FullName = *input.FullName
		changes["full_name"] = *input.FullName
	}
	if input.Bio != nil {
		user.Bio = *input.Bio
		changes["bio_updated"] = true
	}
	if input.City != nil {
		if !s.cfg.IsAllowedCity(*input.City) {
			return nil, fmt.Errorf("%w: unknown city %q", domain.ErrInvalidArgument, *input.City)
		}
		user.City = *input.City
		changes["city"] = *input.City
	}
	if input.HomeStation != nil {
		user.HomeStation = *input.HomeStation
		changes["home_station"] = *input.HomeStation
	}
	if input.Interests != nil {
		raw, err := json.Marshal(input.Interests)
		if err != nil {
			return nil, fmt.Errorf("%w: interests must be a string list", domain.ErrInvalidArgument)
		}
		user.Interests = raw
		changes["interests"] = input.Interests
	}
	if input.NotifyCityEvents != nil {
		user.NotifyCityEvents = *input.NotifyCityEvents
		changes["notify_city_events"] = *input.NotifyCityEvents
	}

	if err := s.authRepo.Update(&user); err != nil {
		return nil, fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	uid := userID
	_ = s.auditSvc.LogAction(ctx, &uid, nil, "PROFILE_UPDATED", changes, ip, "success")

	return &user, nil
}

func (s *service) SetAvatar(ctx context.Context, userID uint, url string, ip string) error {
	user, err := s.authRepo.FindByID(userID)
	if err != nil {
		return domain.ErrNotFound
	}

	user.AvatarURL = url
	if err := s.authRepo.Update(&user); err != nil {
		return fmt.Errorf("%w: %v", domain.ErrStorage, err)
	}

	uid := userID
	_ = s.auditSvc.LogAction(ctx, &uid, nil, "AVATAR_UPDATED", map[string]interface{}{
		"url": url,
	}, ip, "success")

	return nil
}
