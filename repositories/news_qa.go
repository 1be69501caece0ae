package repositories

import (
	"context"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news-quiz/db"
	"news-quiz/models"
)

type NewsQARepository struct {
	col *mongo.Collection
}

func NewNewsQARepository(d *mongo.Database) *NewsQARepository {
	return &NewsQARepository{col: d.Collection(db.CollectionNewsQA)}
}

// ExistsByURI reports whether any question (soft-deleted ones included) was
// created from uri.
func (r *NewsQARepository) ExistsByURI(ctx context.Context, uri string) (bool, error) {
	err := r.col.FindOne(ctx, bson.M{"uri": uri}, options.FindOne().SetProjection(bson.M{"_id": 1})).Err()
	if err == mongo.ErrNoDocuments {
		return false, nil
	}
	return err == nil, err
}

// InsertIfAbsent atomically creates q unless a question with the same uri
// already exists. It returns false for the duplicate case. q.URI must be set.
func (r *NewsQARepository) InsertIfAbsent(ctx context.Context, q *models.NewsQA) (bool, error) {
	now := time.Now()
	q.CreatedAt, q.UpdatedAt = now, now

	res, err := r.col.UpdateOne(ctx,
		bson.M{"uri": q.URI},
		bson.M{"$setOnInsert": bson.M{
			"category_id": q.CategoryID,
			"question":    q.Question,
			"answer":      q.Answer,
			"description": q.Description,
			"options":     q.Options,
			"paragraph":   q.Paragraph,
			"created_at":  q.CreatedAt,
			"updated_at":  q.UpdatedAt,
			"is_deleted":  false,
		}},
		options.Update().SetUpsert(true),
	)
	if err != nil {
		// 동시에 같은 uri 로 upsert 하면 한쪽은 unique index 에 걸린다.
		if mongo.IsDuplicateKeyError(err) {
			return false, nil
		}
		return false, err
	}
	if res.UpsertedCount == 0 {
		return false, nil
	}
	if id, ok := res.UpsertedID.(primitive.ObjectID); ok {
		q.ID = id
	}
	return true, nil
}

// Create inserts a question written directly through the API.
func (r *NewsQARepository) Create(ctx context.Context, q *models.NewsQA) error {
	now := time.Now()
	q.CreatedAt, q.UpdatedAt = now, now
	q.SoftDelete = models.SoftDelete{}
	res, err := r.col.InsertOne(ctx, q)
	if err != nil {
		if mongo.IsDuplicateKeyError(err) {
			return ErrDuplicateURI
		}
		return err
	}
	if id, ok := res.InsertedID.(primitive.ObjectID); ok {
		q.ID = id
	}
	return nil
}

func (r *NewsQARepository) Get(ctx context.Context, id primitive.ObjectID) (*models.NewsQA, error) {
	var q models.NewsQA
	if err := r.col.FindOne(ctx, bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}).Decode(&q); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &q, nil
}

// UpdateNewsQA holds the replaceable fields. Nil fields are left untouched.
type UpdateNewsQA struct {
	CategoryID  *int64
	Question    *string
	Answer      *string
	Description *string
	Options     map[string]string
	Paragraph   *string
}

func (r *NewsQARepository) Update(ctx context.Context, id primitive.ObjectID, u UpdateNewsQA) (*models.NewsQA, error) {
	set := bson.M{"updated_at": time.Now()}
	if u.CategoryID != nil {
		set["category_id"] = *u.CategoryID
	}
	if u.Question != nil {
		set["question"] = *u.Question
	}
	if u.Answer != nil {
		set["answer"] = *u.Answer
	}
	if u.Description != nil {
		set["description"] = *u.Description
	}
	if u.Options != nil {
		set["options"] = u.Options
	}
	if u.Paragraph != nil {
		set["paragraph"] = *u.Paragraph
	}
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}, bson.M{"$set": set})
	if err != nil {
		return nil, err
	}
	if res.MatchedCount == 0 {
		return nil, ErrNotFound
	}
	return r.Get(ctx, id)
}

// SoftDelete marks the question deleted. The document and its uri stay, so
// the article is never ingested again.
func (r *NewsQARepository) SoftDelete(ctx context.Context, id primitive.ObjectID, deletedBy string) error {
	now := time.Now()
	res, err := r.col.UpdateOne(ctx, bson.M{"_id": id, "is_deleted": bson.M{"$ne": true}}, bson.M{
		"$set": bson.M{
			"is_deleted": true,
			"deleted_at": now,
			"deleted_by": deletedBy,
			"updated_at": now,
		},
	})
	if err != nil {
		return err
	}
	if res.MatchedCount == 0 {
		return ErrNotFound
	}
	return nil
}

type ListNewsQAOptions struct {
	Page        int
	PageSize    int
	CategoryIDs []int64
	Search      string
	// OrderBy is one of created_at, -created_at, updated_at, -updated_at.
	OrderBy string
}

// List returns non-deleted questions with filters and pagination.
func (r *NewsQARepository) List(ctx context.Context, opt ListNewsQAOptions) ([]models.NewsQA, int64, error) {
	filter := bson.M{"is_deleted": bson.M{"$ne": true}}
	if len(opt.CategoryIDs) > 0 {
		filter["category_id"] = bson.M{"$in": opt.CategoryIDs}
	}
	if opt.Search != "" {
		rx := primitive.Regex{Pattern: regexp.QuoteMeta(opt.Search), Options: "i"}
		filter["$or"] = bson.A{
			bson.M{"question": rx},
			bson.M{"answer": rx},
			bson.M{"description": rx},
			bson.M{"paragraph": rx},
		}
	}

	page := opt.Page
	if page < 1 {
		page = 1
	}
	pageSize := opt.PageSize
	if pageSize <= 0 || pageSize > 100 {
		pageSize = 20
	}

	total, err := r.col.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}

	findOpts := options.Find().
		SetSort(sortFor(opt.OrderBy)).
		SetSkip(int64((page - 1) * pageSize)).
		SetLimit(int64(pageSize))
	cur, err := r.col.Find(ctx, filter, findOpts)
	if err != nil {
		return nil, 0, err
	}
	defer cur.Close(ctx)

	items := []models.NewsQA{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}

func sortFor(orderBy string) bson.D {
	switch orderBy {
	case "created_at":
		return bson.D{{Key: "created_at", Value: 1}}
	case "updated_at":
		return bson.D{{Key: "updated_at", Value: 1}}
	case "-updated_at":
		return bson.D{{Key: "updated_at", Value: -1}}
	default:
		return bson.D{{Key: "created_at", Value: -1}}
	}
}

// Random returns one random non-deleted question, optionally restricted to
// categoryIDs.
func (r *NewsQARepository) Random(ctx context.Context, categoryIDs []int64) (*models.NewsQA, error) {
	match := bson.M{"is_deleted": bson.M{"$ne": true}}
	if len(categoryIDs) > 0 {
		match["category_id"] = bson.M{"$in": categoryIDs}
	}
	cur, err := r.col.Aggregate(ctx, mongo.Pipeline{
		{{Key: "$match", Value: match}},
		{{Key: "$sample", Value: bson.M{"size": 1}}},
	})
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	var items []models.NewsQA
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	if len(items) == 0 {
		return nil, ErrNotFound
	}
	return &items[0], nil
}

// ByCategory returns up to limit newest questions of one category.
func (r *NewsQARepository) ByCategory(ctx context.Context, categoryID int64, limit int64) ([]models.NewsQA, error) {
	findOpts := options.Find().SetSort(bson.D{{Key: "created_at", Value: -1}})
	if limit > 0 {
		findOpts.SetLimit(limit)
	}
	cur, err := r.col.Find(ctx, bson.M{"category_id": categoryID, "is_deleted": bson.M{"$ne": true}}, findOpts)
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	items := []models.NewsQA{}
	if err := cur.All(ctx, &items); err != nil {
		return nil, err
	}
	return items, nil
}
