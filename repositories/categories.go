package repositories

import (
	"context"
	"fmt"
	"regexp"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"news-quiz/db"
	"news-quiz/models"
	"news-quiz/taxonomy"
)

type CategoryRepository struct {
	col *mongo.Collection
}

func NewCategoryRepository(d *mongo.Database) *CategoryRepository {
	return &CategoryRepository{col: d.Collection(db.CollectionCategories)}
}

// SyncForest upserts every taxonomy node by id so API consumers can read the
// taxonomy from the database. A stored node keeps its parent: a forest that
// moves an existing id under another root is rejected before anything is
// written.
func (r *CategoryRepository) SyncForest(ctx context.Context, f *taxonomy.Forest) error {
	nodes := f.Nodes()
	ids := make([]int64, 0, len(nodes))
	for _, n := range nodes {
		ids = append(ids, n.ID)
	}
	stored, err := r.FindByIDs(ctx, ids)
	if err != nil {
		return err
	}
	parents := make(map[int64]*int64, len(stored))
	for _, c := range stored {
		parents[c.ID] = c.ParentID
	}
	for _, n := range nodes {
		old, ok := parents[n.ID]
		if ok && !sameParent(old, n.ParentID) {
			return fmt.Errorf("%w: id %d (%q)", ErrReparented, n.ID, n.Name)
		}
	}

	now := time.Now()
	for _, n := range nodes {
		_, err := r.col.UpdateByID(ctx, n.ID, bson.M{
			"$setOnInsert": bson.M{"created_at": now, "parent_id": n.ParentID},
			"$set": bson.M{
				"name":       n.Name,
				"uri":        n.SourceURI,
				"updated_at": now,
			},
		}, options.Update().SetUpsert(true))
		if err != nil {
			return err
		}
	}
	return nil
}

func sameParent(a, b *int64) bool {
	if a == nil || b == nil {
		return a == nil && b == nil
	}
	return *a == *b
}

// List returns categories ordered by id. search filters by case-insensitive
// name substring.
func (r *CategoryRepository) List(ctx context.Context, search string) ([]models.Category, error) {
	filter := bson.M{}
	if search != "" {
		filter["name"] = primitive.Regex{Pattern: regexp.QuoteMeta(search), Options: "i"}
	}
	return r.find(ctx, filter)
}

func (r *CategoryRepository) FindByIDs(ctx context.Context, ids []int64) ([]models.Category, error) {
	return r.find(ctx, bson.M{"_id": bson.M{"$in": ids}})
}

func (r *CategoryRepository) Get(ctx context.Context, id int64) (*models.Category, error) {
	var c models.Category
	if err := r.col.FindOne(ctx, bson.M{"_id": id}).Decode(&c); err != nil {
		if err == mongo.ErrNoDocuments {
			return nil, ErrNotFound
		}
		return nil, err
	}
	return &c, nil
}

// MissingIDs returns the ids that have no category document.
func (r *CategoryRepository) MissingIDs(ctx context.Context, ids []int64) ([]int64, error) {
	found, err := r.FindByIDs(ctx, ids)
	if err != nil {
		return nil, err
	}
	seen := make(map[int64]bool, len(found))
	for _, c := range found {
		seen[c.ID] = true
	}
	var missing []int64
	for _, id := range ids {
		if !seen[id] {
			missing = append(missing, id)
		}
	}
	return missing, nil
}

func (r *CategoryRepository) find(ctx context.Context, filter bson.M) ([]models.Category, error) {
	cur, err := r.col.Find(ctx, filter, options.Find().SetSort(bson.D{{Key: "_id", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cur.Close(ctx)

	out := []models.Category{}
	if err := cur.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
