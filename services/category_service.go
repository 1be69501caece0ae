package services

import (
	"context"
	"fmt"
	"strconv"

	"news-quiz/dto"
	"news-quiz/models"
)

type CategoryService struct {
	categories CategoryStore
	questions  NewsQAStore
	users      UserDetailStore
}

func NewCategoryService(categories CategoryStore, questions NewsQAStore, users UserDetailStore) *CategoryService {
	return &CategoryService{categories: categories, questions: questions, users: users}
}

func (s *CategoryService) List(ctx context.Context, search string) ([]dto.CategoryDTO, error) {
	cats, err := s.categories.List(ctx, search)
	if err != nil {
		return nil, err
	}
	return mapCategories(cats), nil
}

func (s *CategoryService) Get(ctx context.Context, rawID string) (*dto.CategoryDTO, error) {
	id, err := parseCategoryID(rawID)
	if err != nil {
		return nil, err
	}
	c, err := s.categories.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := mapCategory(*c)
	return &d, nil
}

// Questions lists every question of one category.
func (s *CategoryService) Questions(ctx context.Context, rawID string) ([]dto.NewsQADTO, error) {
	id, err := parseCategoryID(rawID)
	if err != nil {
		return nil, err
	}
	if _, err := s.categories.Get(ctx, id); err != nil {
		return nil, err
	}
	items, err := s.questions.ByCategory(ctx, id, 0)
	if err != nil {
		return nil, err
	}
	return mapNewsQAs(items), nil
}

// UserCategories returns the user's preferred categories. A user without a
// preference document or with an empty list gets an empty slice.
func (s *CategoryService) UserCategories(ctx context.Context, userID string) ([]dto.CategoryDTO, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	prefs, err := preferredCategories(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	if len(prefs) == 0 {
		return []dto.CategoryDTO{}, nil
	}
	cats, err := s.categories.FindByIDs(ctx, prefs)
	if err != nil {
		return nil, err
	}
	return mapCategories(cats), nil
}

func parseCategoryID(raw string) (int64, error) {
	id, err := strconv.ParseInt(raw, 10, 64)
	if err != nil {
		return 0, fmt.Errorf("%w: category %s", ErrNotFound, raw)
	}
	return id, nil
}

func mapCategory(c models.Category) dto.CategoryDTO {
	return dto.CategoryDTO{ID: c.ID, Name: c.Name, URI: c.URI, ParentCategory: c.ParentID}
}

func mapCategories(cats []models.Category) []dto.CategoryDTO {
	out := make([]dto.CategoryDTO, 0, len(cats))
	for _, c := range cats {
		out = append(out, mapCategory(c))
	}
	return out
}
