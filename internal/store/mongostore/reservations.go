package mongostore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type reservationRepo struct {
	coll *mongo.Collection
	now  func() time.Time
}

func (r *reservationRepo) Create(ctx context.Context, res *models.Reservation) error {
	if res.ID.IsZero() {
		res.ID = primitive.NewObjectID()
	}
	if res.CreatedAt.IsZero() {
		res.CreatedAt = r.now()
	}
	res.UpdatedAt = res.CreatedAt
	_, err := r.coll.InsertOne(ctx, res)
	return mapErr(err)
}

func (r *reservationRepo) GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.coll.FindOne(ctx, bson.M{"_id": id}).Decode(&res); err != nil {
		return nil, mapErr(err)
	}
	return &res, nil
}

func (r *reservationRepo) GetDetail(ctx context.Context, id primitive.ObjectID) (*models.ReservationDetail, error) {
	pipeline := mongo.Pipeline{{{Key: "$match", Value: bson.M{"_id": id}}}}
	pipeline = append(pipeline, populateStages()...)
	pipeline = append(pipeline, bson.D{{Key: "$limit", Value: 1}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, err
	}
	defer cursor.Close(ctx)

	var out []*models.ReservationDetail
	if err := cursor.All(ctx, &out); err != nil {
		return nil, err
	}
	if len(out) == 0 {
		return nil, store.ErrNotFound
	}
	return out[0], nil
}

func (r *reservationRepo) FindByDoctorAndTime(ctx context.Context, doctorID primitive.ObjectID, t time.Time) (*models.Reservation, error) {
	var res models.Reservation
	if err := r.coll.FindOne(ctx, bson.M{"doctor": doctorID, "time": t}).Decode(&res); err != nil {
		return nil, mapErr(err)
	}
	return &res, nil
}

func (r *reservationRepo) UpdateTime(ctx context.Context, id primitive.ObjectID, t time.Time) error {
	filter := bson.M{"_id": id, "reservation_status": bson.M{"$ne": models.StatusRejected}}
	update := bson.M{"$set": bson.M{"time": t, "updatedAt": r.now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrStale
	}
	return nil
}

func (r *reservationRepo) UpdateStatus(ctx context.Context, id primitive.ObjectID, from []models.ReservationStatus, to models.ReservationStatus) error {
	filter := bson.M{"_id": id, "reservation_status": bson.M{"$in": from}}
	update := bson.M{"$set": bson.M{"reservation_status": to, "updatedAt": r.now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrStale
	}
	return nil
}

func (r *reservationRepo) UpdateFeeStatus(ctx context.Context, id primitive.ObjectID, from, to models.FeeStatus) error {
	filter := bson.M{"_id": id, "fee_status": from}
	update := bson.M{"$set": bson.M{"fee_status": to, "updatedAt": r.now()}}
	res, err := r.coll.UpdateOne(ctx, filter, update)
	if err != nil {
		return mapErr(err)
	}
	if res.MatchedCount == 0 {
		return store.ErrStale
	}
	return nil
}

// List resolves patient and doctor names with $lookup so that the name search
// is applied before paging, then pages and counts in one $facet.
func (r *reservationRepo) List(ctx context.Context, filter models.ReservationFilter, opts models.ListOptions) ([]*models.ReservationDetail, int64, error) {
	sort, err := sortDoc(opts.Sort)
	if err != nil {
		return nil, 0, err
	}

	match := bson.M{}
	if filter.Status != "" {
		match["reservation_status"] = filter.Status
	}
	if !filter.PatientID.IsZero() {
		match["patient"] = filter.PatientID
	}

	pipeline := mongo.Pipeline{{{Key: "$match", Value: match}}}
	pipeline = append(pipeline, populateStages()...)
	if filter.Search != "" {
		pipeline = append(pipeline, bson.D{{Key: "$match", Value: bson.M{
			"$or": searchFilter(filter.Search,
				"patient_info.first_name", "patient_info.last_name",
				"doctor_info.first_name", "doctor_info.last_name"),
		}}})
	}

	page := bson.A{bson.M{"$sort": sort}}
	if opts.Skip > 0 {
		page = append(page, bson.M{"$skip": opts.Skip})
	}
	if opts.Limit > 0 {
		page = append(page, bson.M{"$limit": opts.Limit})
	}
	pipeline = append(pipeline, bson.D{{Key: "$facet", Value: bson.M{
		"items": page,
		"total": bson.A{bson.M{"$count": "n"}},
	}}})

	cursor, err := r.coll.Aggregate(ctx, pipeline)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	var facets []struct {
		Items []*models.ReservationDetail `bson:"items"`
		Total []struct {
			N int64 `bson:"n"`
		} `bson:"total"`
	}
	if err := cursor.All(ctx, &facets); err != nil {
		return nil, 0, err
	}
	if len(facets) == 0 {
		return []*models.ReservationDetail{}, 0, nil
	}
	var total int64
	if len(facets[0].Total) > 0 {
		total = facets[0].Total[0].N
	}
	items := facets[0].Items
	if items == nil {
		items = []*models.ReservationDetail{}
	}
	return items, total, nil
}

// populateStages joins the patient and doctor documents as patient_info and
// doctor_info. Only the PersonSummary fields are decoded.
func populateStages() []bson.D {
	lookup := func(from, local, as string) []bson.D {
		return []bson.D{
			{{Key: "$lookup", Value: bson.M{"from": from, "localField": local, "foreignField": "_id", "as": as}}},
			{{Key: "$unwind", Value: bson.M{"path": "$" + as, "preserveNullAndEmptyArrays": true}}},
			{{Key: "$project", Value: bson.M{
				as + ".password":         0,
				as + ".verify_token":     0,
				as + ".token_expires_in": 0,
			}}},
		}
	}
	stages := lookup(colPatients, "patient", "patient_info")
	return append(stages, lookup(colDoctors, "doctor", "doctor_info")...)
}
