// Package memstore is an in-process implementation of the store contracts.
// It enforces the same unique constraints and conditional updates as the
// MongoDB store and is safe for concurrent use.
package memstore

import (
	"sync"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type Store struct {
	mu  sync.RWMutex
	now func() time.Time

	patients     map[primitive.ObjectID]models.Patient
	doctors      map[primitive.ObjectID]models.Doctor
	hospitals    map[primitive.ObjectID]models.Hospital
	reservations map[primitive.ObjectID]models.Reservation
	products     map[primitive.ObjectID]models.Product
	activity     map[models.ActivitySubject][]models.ActivityLog
	patientSeq   int64
}

var _ store.Store = (*Store)(nil)

func New() *Store {
	return &Store{
		now:          time.Now,
		patients:     make(map[primitive.ObjectID]models.Patient),
		doctors:      make(map[primitive.ObjectID]models.Doctor),
		hospitals:    make(map[primitive.ObjectID]models.Hospital),
		reservations: make(map[primitive.ObjectID]models.Reservation),
		products:     make(map[primitive.ObjectID]models.Product),
		activity:     make(map[models.ActivitySubject][]models.ActivityLog),
	}
}

func (s *Store) Patients() store.PatientRepository         { return &patientRepo{s} }
func (s *Store) Doctors() store.DoctorRepository           { return &doctorRepo{s} }
func (s *Store) Hospitals() store.HospitalRepository       { return &hospitalRepo{s} }
func (s *Store) Reservations() store.ReservationRepository { return &reservationRepo{s} }
func (s *Store) Products() store.ProductRepository         { return &productRepo{s} }
func (s *Store) Activity() store.ActivityRepository        { return &activityRepo{s} }

// stamp assigns an id and creation time the way the MongoDB store does.
func (s *Store) stamp(id *primitive.ObjectID, createdAt *time.Time) {
	if id.IsZero() {
		*id = primitive.NewObjectID()
	}
	if createdAt.IsZero() {
		*createdAt = s.now()
	}
}

func duplicate(field string) error {
	return &store.DuplicateError{Field: field}
}

// page applies skip and limit to an already sorted slice.
func page[T any](items []T, opts models.ListOptions) []T {
	if opts.Skip >= int64(len(items)) {
		return []T{}
	}
	items = items[opts.Skip:]
	if opts.Limit > 0 && opts.Limit < int64(len(items)) {
		items = items[:opts.Limit]
	}
	return items
}
