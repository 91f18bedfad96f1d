package mongostore

import (
	"context"
	"fmt"
	"sort"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type productRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (r *productRepo) Create(ctx context.Context, p *models.Product) error {
	if p.ID.IsZero() {
		p.ID = primitive.NewObjectID()
	}
	if p.CreatedAt.IsZero() {
		p.CreatedAt = r.now()
	}
	p.UpdatedAt = p.CreatedAt
	_, err := r.coll.InsertOne(ctx, p)
	return mapErr(err)
}

func (r *productRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	var p models.Product
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *productRepo) ExistsByName(ctx context.Context, name string) (bool, error) {
	return exists(ctx, r.coll, bson.M{"name": name})
}

func (r *productRepo) Update(ctx context.Context, p *models.Product) error {
	p.UpdatedAt = r.now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": p.ID}, p)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) Delete(ctx context.Context, id primitive.ObjectID) error {
	res, err := r.coll.DeleteOne(ctx, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if res.DeletedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *productRepo) AddQuantity(ctx context.Context, id primitive.ObjectID, delta int64) error {
	filter := bson.M{"_id": id}
	if delta < 0 {
		filter["quantity"] = bson.M{"$gte": -delta}
	}
	update := bson.M{
		"$inc": bson.M{"quantity": delta},
		"$set": bson.M{"updatedAt": r.now()},
	}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount > 0 {
		return nil
	}
	found, err := exists(ctx, r.coll, bson.M{"_id": id})
	if err != nil {
		return err
	}
	if !found {
		return store.ErrNotFound
	}
	return store.ErrStale
}

func (r *productRepo) List(ctx context.Context, f models.ProductFilter, opts models.ListOptions) ([]*models.Product, int64, error) {
	filter := bson.M{}
	if f.Search != "" {
		filter["$or"] = searchFilter(f.Search, "name", "manufacturer", "category")
	}
	if f.Category != "" {
		filter["category"] = f.Category
	}
	if f.Manufacturer != "" {
		filter["manufacturer"] = f.Manufacturer
	}
	switch f.Stock {
	case models.StockOut:
		filter["quantity"] = 0
	case models.StockIn:
		filter["quantity"] = bson.M{"$gt": 0}
	}
	return findPage[models.Product](ctx, r.coll, filter, opts)
}

func (r *productRepo) Manufacturers(ctx context.Context) ([]string, error) {
	values, err := r.coll.Distinct(ctx, "manufacturer", bson.M{})
	if err != nil {
		return nil, err
	}
	out := make([]string, 0, len(values))
	for _, v := range values {
		out = append(out, fmt.Sprint(v))
	}
	sort.Strings(out)
	return out, nil
}

type activityRepo struct {
	db *mongo.Database
}

func (r *activityRepo) collection(subject models.ActivitySubject) (*mongo.Collection, error) {
	name, ok := activityCollections[subject]
	if !ok {
		return nil, fmt.Errorf("unknown activity subject %q", subject)
	}
	return r.db.Collection(name), nil
}

func (r *activityRepo) Append(ctx context.Context, subject models.ActivitySubject, entry *models.ActivityLog) error {
	coll, err := r.collection(subject)
	if err != nil {
		return err
	}
	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	_, err = coll.InsertOne(ctx, entry)
	return err
}

func (r *activityRepo) ListBySubject(ctx context.Context, subject models.ActivitySubject, subjectID primitive.ObjectID) ([]*models.ActivityLog, error) {
	coll, err := r.collection(subject)
	if err != nil {
		return nil, err
	}
	cursor, err := coll.Find(ctx, bson.M{"subject_id": subjectID}, options.Find().SetSort(bson.D{{Key: "date", Value: 1}}))
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	out := make([]*models.ActivityLog, 0)
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	return out, nil
}
