package services

import (
	"context"
	"errors"
	"fmt"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"news-quiz/models"
	"news-quiz/repositories"
)

// ErrInvalidInput marks request validation failures. Handlers map it to 400.
var ErrInvalidInput = errors.New("invalid input")

// ErrUnknownCategory is a lookup miss inside a write request. It is an
// ErrInvalidInput, not an ErrNotFound: the resource addressed does exist.
var ErrUnknownCategory = fmt.Errorf("%w: unknown category", ErrInvalidInput)

// ErrNotFound is re-exported so handlers need not import repositories.
var ErrNotFound = repositories.ErrNotFound

// NewsQAStore is implemented by repositories.NewsQARepository.
type NewsQAStore interface {
	Create(ctx context.Context, q *models.NewsQA) error
	Get(ctx context.Context, id primitive.ObjectID) (*models.NewsQA, error)
	Update(ctx context.Context, id primitive.ObjectID, u repositories.UpdateNewsQA) (*models.NewsQA, error)
	SoftDelete(ctx context.Context, id primitive.ObjectID, deletedBy string) error
	List(ctx context.Context, opt repositories.ListNewsQAOptions) ([]models.NewsQA, int64, error)
	Random(ctx context.Context, categoryIDs []int64) (*models.NewsQA, error)
	ByCategory(ctx context.Context, categoryID int64, limit int64) ([]models.NewsQA, error)
}

// CategoryStore is implemented by repositories.CategoryRepository.
type CategoryStore interface {
	List(ctx context.Context, search string) ([]models.Category, error)
	FindByIDs(ctx context.Context, ids []int64) ([]models.Category, error)
	Get(ctx context.Context, id int64) (*models.Category, error)
	MissingIDs(ctx context.Context, ids []int64) ([]int64, error)
}

// UserDetailStore is implemented by repositories.UserDetailRepository.
type UserDetailStore interface {
	Get(ctx context.Context, userID string) (*models.UserDetail, error)
	Create(ctx context.Context, userID string) (*models.UserDetail, error)
	ReplaceCategories(ctx context.Context, userID string, categoryIDs []int64) (*models.UserDetail, bool, error)
}

// preferredCategories returns the user's saved categories, or nil when the
// user is anonymous or has none.
func preferredCategories(ctx context.Context, users UserDetailStore, userID string) ([]int64, error) {
	if userID == "" {
		return nil, nil
	}
	u, err := users.Get(ctx, userID)
	if errors.Is(err, repositories.ErrNotFound) {
		return nil, nil
	}
	if err != nil {
		return nil, err
	}
	return u.Categories, nil
}
