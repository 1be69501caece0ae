package repositories

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news-quiz/db"
	"news-quiz/models"
)

type UserDetailRepository struct {
	col *mongo.Collection
}

func NewUserDetailRepository(d *mongo.Database) *UserDetailRepository {
	return &UserDetailRepository{col: d.Collection(db.CollectionUserDetails)}
}

func (r *UserDetailRepository) Get(ctx context.Context, userID string) (*models.UserDetail, error) {
	var u models.UserDetail
	if err := r.col.FindOne(ctx, bson.M{"user_id": userID}).Decode(&u); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &u, nil
}

// Create inserts an empty preference document for userID.
func (r *UserDetailRepository) Create(ctx context.Context, userID string) (*models.UserDetail, error) {
	now := time.Now()
	u := &models.UserDetail{UserID: userID, Categories: []int64{}, CreatedAt: now, UpdatedAt: now}
	res, err := r.col.InsertOne(ctx, u)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return nil, ErrAlreadyExists
		}
		return nil, err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		u.ID = id
	}
	return u, nil
}

// ReplaceCategories sets the user's preferred categories, creating the
// document on first use. created reports whether a new document was made.
func (r *UserDetailRepository) ReplaceCategories(ctx context.Context, userID string, categoryIDs []int64) (*models.UserDetail, bool, error) {
	if categoryIDs == nil {
		categoryIDs = []int64{}
	}
	now := time.Now()
	res, err := r.col.UpdateOne(ctx,
		bson.M{"user_id": userID},
		bson.M{
			"$set":         bson.M{"categories": categoryIDs, "updated_at": now},
			"$setOnInsert": bson.M{"created_at": now},
		},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		return nil, false, err
	}
	u, err := r.Get(ctx, userID)
	if err != nil {
		return nil, false, err
	}
	return u, res.UpsertedCount > 0, nil
}
