package services

import (
	"context"
	"errors"
	"fmt"
	"strings"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"news-quiz/dto"
	"news-quiz/models"
	"news-quiz/repositories"
)

const questionsPerCategory = 5

// NewsQAService encapsulates question reads/writes and DTO mapping.
type NewsQAService struct {
	store      NewsQAStore
	categories CategoryStore
	users      UserDetailStore
}

func NewNewsQAService(store NewsQAStore, categories CategoryStore, users UserDetailStore) *NewsQAService {
	return &NewsQAService{store: store, categories: categories, users: users}
}

type ListNewsQAInput struct {
	UserID   string
	Page     int
	PageSize int
	// Category 가 0 이면 사용자 선호 카테고리(있다면)로 거른다.
	Category int64
	Search   string
	Ordering string
}

func (s *NewsQAService) List(ctx context.Context, in ListNewsQAInput) (dto.Pagination[dto.NewsQADTO], error) {
	opt := repositories.ListNewsQAOptions{
		Page:     in.Page,
		PageSize: in.PageSize,
		Search:   strings.TrimSpace(in.Search),
		OrderBy:  in.Ordering,
	}
	if in.Category != 0 {
		opt.CategoryIDs = []int64{in.Category}
	} else {
		prefs, err := preferredCategories(ctx, s.users, in.UserID)
		if err != nil {
			return dto.Pagination[dto.NewsQADTO]{}, err
		}
		opt.CategoryIDs = prefs
	}

	items, total, err := s.store.List(ctx, opt)
	if err != nil {
		return dto.Pagination[dto.NewsQADTO]{}, err
	}
	page, pageSize := in.Page, in.PageSize
	if page < 1 {
		page = 1
	}
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}
	return dto.Pagination[dto.NewsQADTO]{
		Data:     mapNewsQAs(items),
		Page:     page,
		PageSize: pageSize,
		Total:    total,
	}, nil
}

func (s *NewsQAService) Get(ctx context.Context, hexID string) (*dto.NewsQADTO, error) {
	id, err := parseObjectID(hexID)
	if err != nil {
		return nil, err
	}
	q, err := s.store.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	d := mapNewsQA(*q)
	return &d, nil
}

func (s *NewsQAService) Create(ctx context.Context, in dto.CreateNewsQARequest) (*dto.NewsQADTO, error) {
	if err := validateChoices(in.Options, in.Answer); err != nil {
		return nil, err
	}
	if err := s.ensureCategory(ctx, in.Category); err != nil {
		return nil, err
	}
	q := &models.NewsQA{
		CategoryID:  in.Category,
		Question:    in.Question,
		Answer:      in.Answer,
		Description: in.Description,
		Options:     in.Options,
		Paragraph:   in.Paragraph,
	}
	if in.URI != nil && *in.URI != "" {
		q.URI = in.URI
	}
	if err := s.store.Create(ctx, q); err != nil {
		return nil, err
	}
	d := mapNewsQA(*q)
	return &d, nil
}

func (s *NewsQAService) Update(ctx context.Context, hexID string, in dto.UpdateNewsQARequest) (*dto.NewsQADTO, error) {
	id, err := parseObjectID(hexID)
	if err != nil {
		return nil, err
	}
	if in.Category != nil {
		if err := s.ensureCategory(ctx, *in.Category); err != nil {
			return nil, err
		}
	}
	if in.Options != nil || in.Answer != nil {
		// 보기와 정답은 함께 검증해야 하므로 현재 값을 채워 넣는다.
		cur, err := s.store.Get(ctx, id)
		if err != nil {
			return nil, err
		}
		options, answer := cur.Options, cur.Answer
		if in.Options != nil {
			options = in.Options
		}
		if in.Answer != nil {
			answer = *in.Answer
		}
		if err := validateChoices(options, answer); err != nil {
			return nil, err
		}
	}

	q, err := s.store.Update(ctx, id, repositories.UpdateNewsQA{
		CategoryID:  in.Category,
		Question:    in.Question,
		Answer:      in.Answer,
		Description: in.Description,
		Options:     in.Options,
		Paragraph:   in.Paragraph,
	})
	if err != nil {
		return nil, err
	}
	d := mapNewsQA(*q)
	return &d, nil
}

func (s *NewsQAService) Delete(ctx context.Context, hexID, deletedBy string) error {
	id, err := parseObjectID(hexID)
	if err != nil {
		return err
	}
	return s.store.SoftDelete(ctx, id, deletedBy)
}

// Random returns one random question, optionally within category.
func (s *NewsQAService) Random(ctx context.Context, category int64) (*dto.NewsQADTO, error) {
	var ids []int64
	if category != 0 {
		ids = []int64{category}
	}
	q, err := s.store.Random(ctx, ids)
	if err != nil {
		return nil, err
	}
	d := mapNewsQA(*q)
	return &d, nil
}

// ByCategory groups up to five questions under each category name. Only the
// user's preferred categories are used when the user has any. Categories
// without questions are left out.
func (s *NewsQAService) ByCategory(ctx context.Context, userID string) (map[string][]dto.NewsQADTO, error) {
	prefs, err := preferredCategories(ctx, s.users, userID)
	if err != nil {
		return nil, err
	}
	var cats []models.Category
	if len(prefs) > 0 {
		cats, err = s.categories.FindByIDs(ctx, prefs)
	} else {
		cats, err = s.categories.List(ctx, "")
	}
	if err != nil {
		return nil, err
	}

	out := map[string][]dto.NewsQADTO{}
	for _, c := range cats {
		items, err := s.store.ByCategory(ctx, c.ID, questionsPerCategory)
		if err != nil {
			return nil, err
		}
		if len(items) > 0 {
			out[c.Name] = mapNewsQAs(items)
		}
	}
	return out, nil
}

// AllByCategoryName lists every question of the category with that name.
func (s *NewsQAService) AllByCategoryName(ctx context.Context, name string) ([]dto.NewsQADTO, error) {
	cats, err := s.categories.List(ctx, name)
	if err != nil {
		return nil, err
	}
	for _, c := range cats {
		if strings.EqualFold(c.Name, name) {
			items, err := s.store.ByCategory(ctx, c.ID, 0)
			if err != nil {
				return nil, err
			}
			return mapNewsQAs(items), nil
		}
	}
	return nil, fmt.Errorf("%w: category %q", ErrNotFound, name)
}

func (s *NewsQAService) ensureCategory(ctx context.Context, id int64) error {
	if _, err := s.categories.Get(ctx, id); err != nil {
		if errors.Is(err, repositories.ErrNotFound) {
			return fmt.Errorf("%w: category %d does not exist", ErrUnknownCategory, id)
		}
		return err
	}
	return nil
}

func validateChoices(options map[string]string, answer string) error {
	if len(options) != len(models.ChoiceLabels) {
		return fmt.Errorf("%w: options must have exactly the labels A, B, C, D", ErrInvalidInput)
	}
	for _, label := range models.ChoiceLabels {
		if strings.TrimSpace(options[label]) == "" {
			return fmt.Errorf("%w: option %s is missing", ErrInvalidInput, label)
		}
	}
	if _, ok := options[answer]; !ok {
		return fmt.Errorf("%w: answer must be one of A, B, C, D", ErrInvalidInput)
	}
	return nil
}

func parseObjectID(hexID string) (primitive.ObjectID, error) {
	id, err := primitive.ObjectIDFromHex(hexID)
	if err != nil {
		// 형식이 틀린 id 는 존재하지 않는 id 와 같게 취급한다.
		return primitive.NilObjectID, fmt.Errorf("%w: %s", ErrNotFound, hexID)
	}
	return id, nil
}

func mapNewsQA(q models.NewsQA) dto.NewsQADTO {
	return dto.NewsQADTO{
		ID:          q.ID.Hex(),
		Category:    q.CategoryID,
		Question:    q.Question,
		Answer:      q.Answer,
		Description: q.Description,
		Options:     q.Options,
		Paragraph:   q.Paragraph,
		URI:         q.URI,
		CreatedAt:   q.CreatedAt,
		UpdatedAt:   q.UpdatedAt,
	}
}

func mapNewsQAs(items []models.NewsQA) []dto.NewsQADTO {
	out := make([]dto.NewsQADTO, 0, len(items))
	for _, q := range items {
		out = append(out, mapNewsQA(q))
	}
	return out
}
