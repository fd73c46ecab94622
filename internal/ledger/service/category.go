package service

import (
	"context"
	"errors"
	"strings"

	"github.com/storefrontbuilder/ledger/internal/ledger/domain"
	"github.com/storefrontbuilder/ledger/internal/ledger/store"
	"github.com/storefrontbuilder/ledger/pkg/idx"
)

var (
	ErrInvalidCategory  = errors.New("invalid_category")
	ErrCategoryNotFound = errors.New("category_not_found")
)

type CategoryService struct {
	Store store.Store
}

func (s *CategoryService) Create(ctx context.Context, userID, name string, typ domain.EntryType, color string) (domain.Category, error) {
	name = strings.TrimSpace(name)
	if name == "" || !typ.Valid() {
		return domain.Category{}, ErrInvalidCategory
	}

	c := domain.Category{
		ID:     idx.New().String(),
		UserID: userID,
		Name:   name,
		Type:   typ,
		Color:  strings.TrimSpace(color),
	}
	if err := s.Store.Categories().CreateCategory(ctx, c); err != nil {
		return domain.Category{}, err
	}
	return s.Store.Categories().GetCategoryByID(ctx, userID, c.ID)
}

func (s *CategoryService) List(ctx context.Context, userID string) ([]domain.Category, error) {
	return s.Store.Categories().ListCategories(ctx, userID)
}

func (s *CategoryService) Delete(ctx context.Context, userID, id string) error {
	err := s.Store.Categories().DeleteCategory(ctx, userID, id)
	if errors.Is(err, store.ErrNotFound) {
		return ErrCategoryNotFound
	}
	return err
}
