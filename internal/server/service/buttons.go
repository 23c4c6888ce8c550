package service

import (
	"context"

	"github.com/slatedeck/slate/internal/server/domain"
	"github.com/slatedeck/slate/internal/server/store"
)

// ButtonService owns button CRUD within a profile. Button ids are chosen by
// the caller so deck layouts stay portable across installs.
type ButtonService struct {
	Store store.Store
}

func NewButtonService(st store.Store) *ButtonService {
	return &ButtonService{Store: st}
}

func (s *ButtonService) List(ctx context.Context, profileID string) ([]domain.Button, error) {
	return s.Store.Buttons().ListButtons(ctx, profileID)
}

func (s *ButtonService) Get(ctx context.Context, buttonID, profileID string) (domain.Button, error) {
	return s.Store.Buttons().GetButton(ctx, buttonID, profileID)
}

func (s *ButtonService) Create(ctx context.Context, b domain.Button, profileID string) error {
	return s.Store.Buttons().CreateButton(ctx, b, profileID)
}

func (s *ButtonService) Update(ctx context.Context, b domain.Button, profileID string) error {
	return s.Store.Buttons().UpdateButton(ctx, b, profileID)
}

func (s *ButtonService) Delete(ctx context.Context, buttonID, profileID string) error {
	return s.Store.Buttons().DeleteButton(ctx, buttonID, profileID)
}

// Reorder applies the given id order atomically; buttons not listed keep
// their relative order after the listed ones.
func (s *ButtonService) Reorder(ctx context.Context, buttonIDs []string, profileID string) error {
	return s.Store.WithTx(ctx, func(tx store.Tx) error {
		return tx.Buttons().ReorderButtons(ctx, buttonIDs, profileID)
	})
}
