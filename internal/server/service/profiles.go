package service

import (
	"context"
	"time"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/store"
	"github.com/slatedeck/slate/pkg/idx"
)

// ProfileService owns profile CRUD. The "default" profile is simply the
// oldest one; it is what unbound connections land on.
type ProfileService struct {
	Store store.Store
}

func NewProfileService(st store.Store) *ProfileService {
	return &ProfileService{Store: st}
}

func (s *ProfileService) List(ctx context.Context) ([]domain.Profile, error) {
	return s.Store.Profiles().ListProfiles(ctx)
}

func (s *ProfileService) Get(ctx context.Context, profileID string) (domain.Profile, error) {
	return s.Store.Profiles().GetProfile(ctx, profileID)
}

func (s *ProfileService) GetDefault(ctx context.Context) (domain.Profile, error) {
	return s.Store.Profiles().GetDefaultProfile(ctx)
}

func (s *ProfileService) Create(ctx context.Context, name string) (domain.Profile, error) {
	now := time.Now()
	p := domain.Profile{
		ID:        idx.New().String(),
		Name:      name,
		CreatedAt: now,
		UpdatedAt: now,
	}
	if err := s.Store.Profiles().CreateProfile(ctx, p); err != nil {
		return domain.Profile{}, err
	}
	return p, nil
}

func (s *ProfileService) Rename(ctx context.Context, profileID, name string) (domain.Profile, error) {
	if err := s.Store.Profiles().RenameProfile(ctx, profileID, name); err != nil {
		return domain.Profile{}, err
	}
	return s.Store.Profiles().GetProfile(ctx, profileID)
}

// Delete removes a profile and, via the schema, its buttons.
func (s *ProfileService) Delete(ctx context.Context, profileID string) error {
	return s.Store.Profiles().DeleteProfile(ctx, profileID)
}
