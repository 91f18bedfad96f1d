package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

const patientCounter = "patient_id"

type patientRepo struct {
	coll     *mongo.Collection
	counters *mongo.Collection
	now      func() time.Time
}

func (r *patientRepo) Create(ctx context.Context, p *models.Patient) error {
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

func (r *patientRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error) {
	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *patientRepo) GetByEmail(ctx context.Context, email string) (*models.Patient, error) {
	var p models.Patient
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&p); err != nil {
		return nil, mapErr(err)
	}
	return &p, nil
}

func (r *patientRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.coll, bson.M{"email": email})
}

func (r *patientRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return exists(ctx, r.coll, bson.M{"phone": phone})
}

func (r *patientRepo) Update(ctx context.Context, p *models.Patient) error {
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

func (r *patientRepo) List(ctx context.Context, search string, opts models.ListOptions) ([]*models.Patient, int64, error) {
	filter := bson.M{}
	if search != "" {
		filter["$or"] = searchFilter(search, "first_name", "last_name", "patient_id")
	}
	return findPage[models.Patient](ctx, r.coll, filter, opts)
}

func (r *patientRepo) NextSequence(ctx context.Context) (int64, error) {
	var counter struct {
		Seq int64 `bson:"seq"`
	}
	opts := options.FindOneAndUpdate().SetUpsert(true).SetReturnDocument(options.After)
	err := r.counters.FindOneAndUpdate(ctx,
		bson.M{"_id": patientCounter},
		bson.M{"$inc": bson.M{"seq": 1}},
		opts,
	).Decode(&counter)
	if err != nil {
		return 0, mapErr(err)
	}
	return counter.Seq, nil
}

type doctorRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (r *doctorRepo) Create(ctx context.Context, d *models.Doctor) error {
	if d.ID.IsZero() {
		d.ID = primitive.NewObjectID()
	}
	if d.CreatedAt.IsZero() {
		d.CreatedAt = r.now()
	}
	d.UpdatedAt = d.CreatedAt
	_, err := r.coll.InsertOne(ctx, d)
	return mapErr(err)
}

func (r *doctorRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *doctorRepo) GetByEmail(ctx context.Context, email string) (*models.Doctor, error) {
	var d models.Doctor
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&d); err != nil {
		return nil, mapErr(err)
	}
	return &d, nil
}

func (r *doctorRepo) ExistsByEmail(ctx context.Context, email string) (bool, error) {
	return exists(ctx, r.coll, bson.M{"email": email})
}

func (r *doctorRepo) ExistsByPhone(ctx context.Context, phone string) (bool, error) {
	return exists(ctx, r.coll, bson.M{"phone": phone})
}

func (r *doctorRepo) Update(ctx context.Context, d *models.Doctor) error {
	d.UpdatedAt = r.now()
	res, err := r.coll.ReplaceOne(ctx, bson.M{"_id": d.ID}, d)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrNotFound
	}
	return nil
}

func (r *doctorRepo) List(ctx context.Context, search string, opts models.ListOptions) ([]*models.Doctor, int64, error) {
	filter := bson.M{}
	if search != "" {
		filter["$or"] = searchFilter(search, "first_name", "last_name")
	}
	return findPage[models.Doctor](ctx, r.coll, filter, opts)
}

func (r *doctorRepo) ListActive(ctx context.Context) ([]*models.Doctor, error) {
	items, _, err := findPage[models.Doctor](ctx, r.coll, bson.M{"is_active": true}, models.ListOptions{Sort: "first_name"})
	return items, err
}

type hospitalRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (r *hospitalRepo) Create(ctx context.Context, h *models.Hospital) error {
	if h.ID.IsZero() {
		h.ID = primitive.NewObjectID()
	}
	if h.CreatedAt.IsZero() {
		h.CreatedAt = r.now()
	}
	_, err := r.coll.InsertOne(ctx, h)
	return mapErr(err)
}

func (r *hospitalRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	var h models.Hospital
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&h); err != nil {
		return nil, mapErr(err)
	}
	return &h, nil
}

func (r *hospitalRepo) GetByEmail(ctx context.Context, email string) (*models.Hospital, error) {
	var h models.Hospital
	if err := r.coll.FindOne(ctx, bson.M{"email": email}).Decode(&h); err != nil {
		return nil, mapErr(err)
	}
	return &h, nil
}
