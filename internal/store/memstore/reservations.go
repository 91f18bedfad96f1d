package memstore

import (
	"context"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type reservationRepo struct{ s *Store }

// booked reports whether another reservation holds doctor at t. Times are
// compared at millisecond precision, which is what BSON dates keep.
func (r *reservationRepo) booked(self, doctor primitive.ObjectID, t time.Time) bool {
	want := t.Truncate(time.Millisecond)
	for id, other := range r.s.reservations {
		if id == self {
			continue
		}
		if other.DoctorID == doctor && other.Time.Truncate(time.Millisecond).Equal(want) {
			return true
		}
	}
	return false
}

func (r *reservationRepo) Create(_ context.Context, res *models.Reservation) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&res.ID, &res.CreatedAt)
	res.UpdatedAt = res.CreatedAt
	if _, ok := r.s.reservations[res.ID]; ok {
		return duplicate("_id")
	}
	if r.booked(res.ID, res.DoctorID, res.Time) {
		return duplicate("time")
	}
	r.s.reservations[res.ID] = *res
	return nil
}

func (r *reservationRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &res, nil
}

func (r *reservationRepo) detail(res models.Reservation) *models.ReservationDetail {
	d := &models.ReservationDetail{Reservation: res}
	if p, ok := r.s.patients[res.PatientID]; ok {
		d.Patient = &models.PersonSummary{ID: p.ID, FirstName: p.FirstName, LastName: p.LastName, Email: p.Email}
	}
	if doc, ok := r.s.doctors[res.DoctorID]; ok {
		d.Doctor = &models.PersonSummary{ID: doc.ID, FirstName: doc.FirstName, LastName: doc.LastName, Email: doc.Email}
	}
	return d
}

func (r *reservationRepo) GetDetail(_ context.Context, id primitive.ObjectID) (*models.ReservationDetail, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return r.detail(res), nil
}

func (r *reservationRepo) FindByDoctorAndTime(_ context.Context, doctorID primitive.ObjectID, t time.Time) (*models.Reservation, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	want := t.Truncate(time.Millisecond)
	for _, res := range r.s.reservations {
		if res.DoctorID == doctorID && res.Time.Truncate(time.Millisecond).Equal(want) {
			return &res, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *reservationRepo) UpdateTime(_ context.Context, id primitive.ObjectID, t time.Time) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.reservations[id]
	if !ok || res.Status == models.StatusRejected {
		return store.ErrStale
	}
	if r.booked(id, res.DoctorID, t) {
		return duplicate("time")
	}
	res.Time = t
	res.UpdatedAt = r.s.now()
	r.s.reservations[id] = res
	return nil
}

func (r *reservationRepo) UpdateStatus(_ context.Context, id primitive.ObjectID, from []models.ReservationStatus, to models.ReservationStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.reservations[id]
	if !ok {
		return store.ErrStale
	}
	allowed := false
	for _, s := range from {
		if res.Status == s {
			allowed = true
			break
		}
	}
	if !allowed {
		return store.ErrStale
	}
	res.Status = to
	res.UpdatedAt = r.s.now()
	r.s.reservations[id] = res
	return nil
}

func (r *reservationRepo) UpdateFeeStatus(_ context.Context, id primitive.ObjectID, from, to models.FeeStatus) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	res, ok := r.s.reservations[id]
	if !ok || res.FeeStatus != from {
		return store.ErrStale
	}
	res.FeeStatus = to
	res.UpdatedAt = r.s.now()
	r.s.reservations[id] = res
	return nil
}

func (r *reservationRepo) List(_ context.Context, filter models.ReservationFilter, opts models.ListOptions) ([]*models.ReservationDetail, int64, error) {
	r.s.mu.RLock()
	matched := make([]*models.ReservationDetail, 0, len(r.s.reservations))
	for _, res := range r.s.reservations {
		if filter.Status != "" && res.Status != filter.Status {
			continue
		}
		if !filter.PatientID.IsZero() && res.PatientID != filter.PatientID {
			continue
		}
		d := r.detail(res)
		if filter.Search != "" && !matchesName(d, filter.Search) {
			continue
		}
		matched = append(matched, d)
	}
	r.s.mu.RUnlock()

	if err := sortItems(matched, opts.Sort); err != nil {
		return nil, 0, err
	}
	return page(matched, opts), int64(len(matched)), nil
}

func matchesName(d *models.ReservationDetail, search string) bool {
	var names []string
	if d.Patient != nil {
		names = append(names, d.Patient.FirstName, d.Patient.LastName)
	}
	if d.Doctor != nil {
		names = append(names, d.Doctor.FirstName, d.Doctor.LastName)
	}
	return anyContains(search, names...)
}
