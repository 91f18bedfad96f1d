// Package mongostore implements the store contracts on MongoDB.
package mongostore

import (
	"context"
	"errors"
	"fmt"
	"regexp"
	"strings"
	"time"

	"go.mongodb.org/mongo-driver/bson"
	"go.mongodb.org/mongo-driver/bson/primitive"
	"go.mongodb.org/mongo-driver/mongo"
	"go.mongodb.org/mongo-driver/mongo/options"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
	"github.com/harentsoaR/hospital-api/internal/utils"
)

const (
	colPatients     = "patients"
	colDoctors      = "doctors"
	colHospitals    = "hospitals"
	colReservations = "reservations"
	colProducts     = "products"
	colCounters     = "counters"

	// doctorTimeIndex enforces one reservation per doctor per instant.
	doctorTimeIndex = "doctor_time"
)

var activityCollections = map[models.ActivitySubject]string{
	models.SubjectDoctor:      "doctor_activity_logs",
	models.SubjectPatient:     "patient_activity_logs",
	models.SubjectReservation: "reservation_activity_logs",
}

type Store struct {
	db  *mongo.Database
	now func() time.Time
}

var _ store.Store = (*Store)(nil)

func New(db *mongo.Database) *Store {
	return &Store{db: db, now: time.Now}
}

func (s *Store) Patients() store.PatientRepository {
	return &patientRepo{coll: s.db.Collection(colPatients), counters: s.db.Collection(colCounters), now: s.now}
}

func (s *Store) Doctors() store.DoctorRepository {
	return &doctorRepo{coll: s.db.Collection(colDoctors), now: s.now}
}

func (s *Store) Hospitals() store.HospitalRepository {
	return &hospitalRepo{coll: s.db.Collection(colHospitals), now: s.now}
}

func (s *Store) Reservations() store.ReservationRepository {
	return &reservationRepo{coll: s.db.Collection(colReservations), now: s.now}
}

func (s *Store) Products() store.ProductRepository {
	return &productRepo{coll: s.db.Collection(colProducts), now: s.now}
}

func (s *Store) Activity() store.ActivityRepository {
	return &activityRepo{db: s.db}
}

// EnsureIndexes creates the unique indexes that back the uniqueness
// invariants. It is idempotent.
func (s *Store) EnsureIndexes(ctx context.Context) error {
	unique := func(keys bson.D, name string) mongo.IndexModel {
		opts := options.Index().SetUnique(true)
		if name != "" {
			opts.SetName(name)
		}
		return mongo.IndexModel{Keys: keys, Options: opts}
	}

	specs := map[string][]mongo.IndexModel{
		colPatients: {
			unique(bson.D{{Key: "email", Value: 1}}, ""),
			unique(bson.D{{Key: "phone", Value: 1}}, ""),
			unique(bson.D{{Key: "patient_id", Value: 1}}, ""),
		},
		colDoctors: {
			unique(bson.D{{Key: "email", Value: 1}}, ""),
			unique(bson.D{{Key: "phone", Value: 1}}, ""),
		},
		colHospitals: {
			unique(bson.D{{Key: "email", Value: 1}}, ""),
			unique(bson.D{{Key: "username", Value: 1}}, ""),
		},
		colReservations: {
			unique(bson.D{{Key: "doctor", Value: 1}, {Key: "time", Value: 1}}, doctorTimeIndex),
			{Keys: bson.D{{Key: "patient", Value: 1}}},
			{Keys: bson.D{{Key: "reservation_status", Value: 1}}},
		},
		colProducts: {
			unique(bson.D{{Key: "name", Value: 1}}, ""),
		},
	}
	for _, coll := range activityCollections {
		specs[coll] = []mongo.IndexModel{{Keys: bson.D{{Key: "subject_id", Value: 1}, {Key: "date", Value: 1}}}}
	}

	for coll, idx := range specs {
		if _, err := s.db.Collection(coll).Indexes().CreateMany(ctx, idx); err != nil {
			return fmt.Errorf("create indexes on %s: %w", coll, err)
		}
	}
	return nil
}

// mapErr translates driver errors into store errors.
func mapErr(err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, mongo.ErrNoDocuments) {
		return store.ErrNotFound
	}
	if mongo.IsDuplicateKeyError(err) {
		return &store.DuplicateError{Field: duplicateField(err), Err: err}
	}
	return err
}

// duplicateField extracts the offending field from an E11000 message such as
// "... index: email_1 dup key: { email: \"a@b.c\" }".
func duplicateField(err error) string {
	msg := err.Error()
	i := strings.Index(msg, "index: ")
	if i < 0 {
		return ""
	}
	name := msg[i+len("index: "):]
	if j := strings.IndexAny(name, " \""); j >= 0 {
		name = name[:j]
	}
	if name == doctorTimeIndex {
		return "time"
	}
	return strings.TrimSuffix(name, "_1")
}

func sortDoc(sort string) (bson.D, error) {
	field, desc, err := utils.ParseSort(sort)
	if err != nil {
		return nil, err
	}
	dir := 1
	if desc {
		dir = -1
	}
	d := bson.D{{Key: field, Value: dir}}
	if field != "_id" {
		d = append(d, bson.E{Key: "_id", Value: dir})
	}
	return d, nil
}

func findOptions(opts models.ListOptions) (*options.FindOptions, error) {
	sort, err := sortDoc(opts.Sort)
	if err != nil {
		return nil, err
	}
	fo := options.Find().SetSort(sort)
	if opts.Skip > 0 {
		fo.SetSkip(opts.Skip)
	}
	if opts.Limit > 0 {
		fo.SetLimit(opts.Limit)
	}
	return fo, nil
}

func containsRegex(s string) primitive.Regex {
	return primitive.Regex{Pattern: regexp.QuoteMeta(s), Options: "i"}
}

func searchFilter(search string, fields ...string) bson.A {
	rx := containsRegex(search)
	or := bson.A{}
	for _, f := range fields {
		or = append(or, bson.M{f: rx})
	}
	return or
}

func exists(ctx context.Context, coll *mongo.Collection, filter bson.M) (bool, error) {
	n, err := coll.CountDocuments(ctx, filter, options.Count().SetLimit(1))
	if err != nil {
		return false, err
	}
	return n > 0, nil
}

// findPage runs a paged Find and a CountDocuments on the same filter.
func findPage[T any](ctx context.Context, coll *mongo.Collection, filter bson.M, opts models.ListOptions) ([]*T, int64, error) {
	fo, err := findOptions(opts)
	if err != nil {
		return nil, 0, err
	}
	total, err := coll.CountDocuments(ctx, filter)
	if err != nil {
		return nil, 0, err
	}
	cursor, err := coll.Find(ctx, filter, fo)
	if err != nil {
		return nil, 0, err
	}
	defer cursor.Close(ctx)

	items := make([]*T, 0)
	if err := cursor.All(ctx, &items); err != nil {
		return nil, 0, err
	}
	return items, total, nil
}
