package services

import (
	"context"
	"fmt"
	"sort"
	"strings"

	"news-quiz/dto"
	"news-quiz/models"
)

type UserDetailService struct {
	users      UserDetailStore
	categories CategoryStore
}

func NewUserDetailService(users UserDetailStore, categories CategoryStore) *UserDetailService {
	return &UserDetailService{users: users, categories: categories}
}

func (s *UserDetailService) Get(ctx context.Context, userID string) (*dto.UserDetailDTO, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	u, err := s.users.Get(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := mapUserDetail(*u)
	return &d, nil
}

// Create makes an empty preference document. It fails with
// repositories.ErrAlreadyExists when one exists.
func (s *UserDetailService) Create(ctx context.Context, userID string) (*dto.UserDetailDTO, error) {
	if userID == "" {
		return nil, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	u, err := s.users.Create(ctx, userID)
	if err != nil {
		return nil, err
	}
	d := mapUserDetail(*u)
	return &d, nil
}

// UpdateCategories replaces the user's categories wholesale. Unknown ids
// reject the whole update. created reports a lazily created document.
func (s *UserDetailService) UpdateCategories(ctx context.Context, userID string, ids []int64) (*dto.UserDetailDTO, bool, error) {
	if userID == "" {
		return nil, false, fmt.Errorf("%w: user id is required", ErrInvalidInput)
	}
	ids = dedupe(ids)
	if len(ids) > 0 {
		missing, err := s.categories.MissingIDs(ctx, ids)
		if err != nil {
			return nil, false, err
		}
		if len(missing) > 0 {
			return nil, false, fmt.Errorf("%w: categories with ids %s do not exist", ErrUnknownCategory, joinIDs(missing))
		}
	}
	u, created, err := s.users.ReplaceCategories(ctx, userID, ids)
	if err != nil {
		return nil, false, err
	}
	d := mapUserDetail(*u)
	return &d, created, nil
}

func dedupe(ids []int64) []int64 {
	seen := make(map[int64]bool, len(ids))
	out := make([]int64, 0, len(ids))
	for _, id := range ids {
		if !seen[id] {
			seen[id] = true
			out = append(out, id)
		}
	}
	return out
}

func joinIDs(ids []int64) string {
	sorted := append([]int64(nil), ids...)
	sort.Slice(sorted, func(i, j int) bool { return sorted[i] < sorted[j] })
	parts := make([]string, len(sorted))
	for i, id := range sorted {
		parts[i] = fmt.Sprint(id)
	}
	return strings.Join(parts, ", ")
}

func mapUserDetail(u models.UserDetail) dto.UserDetailDTO {
	cats := u.Categories
	if cats == nil {
		cats = []int64{}
	}
	return dto.UserDetailDTO{User: u.UserID, Categories: cats}
}
