// Package store declares the persistence contracts used by the services.
// mongostore is the production implementation; memstore keeps everything in
// process and backs the tests and STORE_DRIVER=memory.
package store

import (
	"context"
	"errors"
	"fmt"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/models"
)

var (
	ErrNotFound = errors.New("store: not found")
	// ErrStale is returned by conditional updates whose precondition no
	// longer holds (for example the status changed since it was read).
	ErrStale = errors.New("store: precondition failed")
)

// DuplicateError reports a unique-index violation on Field.
type DuplicateError struct {
	Field string
	Err   error
}

func (e *DuplicateError) Error() string {
	return fmt.Sprintf("store: duplicate value for %s", e.Field)
}

func (e *DuplicateError) Unwrap() error { return e.Err }

// IsDuplicate reports whether err is a DuplicateError and returns its field.
func IsDuplicate(err error) (string, bool) {
	var de *DuplicateError
	if errors.As(err, &de) {
		return de.Field, true
	}
	return "", false
}

type PatientRepository interface {
	Create(ctx context.Context, p *models.Patient) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Patient, error)
	GetByEmail(ctx context.Context, email string) (*models.Patient, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Update(ctx context.Context, p *models.Patient) error
	List(ctx context.Context, search string, opts models.ListOptions) ([]*models.Patient, int64, error)
	// NextSequence atomically increments and returns the patient counter.
	NextSequence(ctx context.Context) (int64, error)
}

type DoctorRepository interface {
	Create(ctx context.Context, d *models.Doctor) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Doctor, error)
	GetByEmail(ctx context.Context, email string) (*models.Doctor, error)
	ExistsByEmail(ctx context.Context, email string) (bool, error)
	ExistsByPhone(ctx context.Context, phone string) (bool, error)
	Update(ctx context.Context, d *models.Doctor) error
	List(ctx context.Context, search string, opts models.ListOptions) ([]*models.Doctor, int64, error)
	ListActive(ctx context.Context) ([]*models.Doctor, error)
}

type HospitalRepository interface {
	Create(ctx context.Context, h *models.Hospital) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Hospital, error)
	GetByEmail(ctx context.Context, email string) (*models.Hospital, error)
}

type ReservationRepository interface {
	// Create fails with a DuplicateError on field "time" when the doctor is
	// already booked at that instant.
	Create(ctx context.Context, r *models.Reservation) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Reservation, error)
	GetDetail(ctx context.Context, id primitive.ObjectID) (*models.ReservationDetail, error)
	FindByDoctorAndTime(ctx context.Context, doctorID primitive.ObjectID, t time.Time) (*models.Reservation, error)
	// UpdateTime moves a reservation whose status is not rejected.
	UpdateTime(ctx context.Context, id primitive.ObjectID, t time.Time) error
	// UpdateStatus sets status to `to` only if the current status is one of `from`.
	UpdateStatus(ctx context.Context, id primitive.ObjectID, from []models.ReservationStatus, to models.ReservationStatus) error
	UpdateFeeStatus(ctx context.Context, id primitive.ObjectID, from, to models.FeeStatus) error
	List(ctx context.Context, filter models.ReservationFilter, opts models.ListOptions) ([]*models.ReservationDetail, int64, error)
}

type ProductRepository interface {
	Create(ctx context.Context, p *models.Product) error
	GetByID(ctx context.Context, id primitive.ObjectID) (*models.Product, error)
	ExistsByName(ctx context.Context, name string) (bool, error)
	Update(ctx context.Context, p *models.Product) error
	Delete(ctx context.Context, id primitive.ObjectID) error
	// AddQuantity adjusts stock by delta, refusing to go below zero (ErrStale).
	AddQuantity(ctx context.Context, id primitive.ObjectID, delta int64) error
	List(ctx context.Context, filter models.ProductFilter, opts models.ListOptions) ([]*models.Product, int64, error)
	Manufacturers(ctx context.Context) ([]string, error)
}

// ActivityRepository is append-only.
type ActivityRepository interface {
	Append(ctx context.Context, subject models.ActivitySubject, entry *models.ActivityLog) error
	ListBySubject(ctx context.Context, subject models.ActivitySubject, subjectID primitive.ObjectID) ([]*models.ActivityLog, error)
}

// Store groups the repositories behind one backend.
type Store interface {
	Patients() PatientRepository
	Doctors() DoctorRepository
	Hospitals() HospitalRepository
	Reservations() ReservationRepository
	Products() ProductRepository
	Activity() ActivityRepository
}
