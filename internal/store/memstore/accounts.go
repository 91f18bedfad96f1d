package memstore

import (
	"context"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type patientRepo struct{ s *Store }

func (r *patientRepo) conflict(p *models.Patient) error {
	for id, other := range r.s.patients {
		if id == p.ID {
			continue
		}
		switch {
		case other.Email == p.Email:
			return duplicate("email")
		case other.Phone == p.Phone:
			return duplicate("phone")
		case p.PatientID != "" && other.PatientID == p.PatientID:
			return duplicate("patient_id")
		}
	}
	return nil
}

func (r *patientRepo) Create(_ context.Context, p *models.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&p.ID, &p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	if _, ok := r.s.patients[p.ID]; ok {
		return duplicate("_id")
	}
	if err := r.conflict(p); err != nil {
		return err
	}
	r.s.patients[p.ID] = *p
	return nil
}

func (r *patientRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.patients[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (r *patientRepo) GetByEmail(_ context.Context, email string) (*models.Patient, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.patients {
		if p.Email == email {
			return &p, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *patientRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.patients {
		if p.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *patientRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.patients {
		if p.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *patientRepo) Update(_ context.Context, p *models.Patient) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.patients[p.ID]; !ok {
		return store.ErrNotFound
	}
	if err := r.conflict(p); err != nil {
		return err
	}
	p.UpdatedAt = r.s.now()
	r.s.patients[p.ID] = *p
	return nil
}

func (r *patientRepo) List(_ context.Context, search string, opts models.ListOptions) ([]*models.Patient, int64, error) {
	r.s.mu.RLock()
	matched := make([]*models.Patient, 0, len(r.s.patients))
	for _, p := range r.s.patients {
		if search != "" && !anyContains(search, p.FirstName, p.LastName, p.PatientID) {
			continue
		}
		p := p
		matched = append(matched, &p)
	}
	r.s.mu.RUnlock()

	if err := sortItems(matched, opts.Sort); err != nil {
		return nil, 0, err
	}
	return page(matched, opts), int64(len(matched)), nil
}

func (r *patientRepo) NextSequence(context.Context) (int64, error) {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.patientSeq++
	return r.s.patientSeq, nil
}

type doctorRepo struct{ s *Store }

func (r *doctorRepo) conflict(d *models.Doctor) error {
	for id, other := range r.s.doctors {
		if id == d.ID {
			continue
		}
		if other.Email == d.Email {
			return duplicate("email")
		}
		if other.Phone == d.Phone {
			return duplicate("phone")
		}
	}
	return nil
}

func (r *doctorRepo) Create(_ context.Context, d *models.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&d.ID, &d.CreatedAt)
	d.UpdatedAt = d.CreatedAt
	if _, ok := r.s.doctors[d.ID]; ok {
		return duplicate("_id")
	}
	if err := r.conflict(d); err != nil {
		return err
	}
	r.s.doctors[d.ID] = *d
	return nil
}

func (r *doctorRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	d, ok := r.s.doctors[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &d, nil
}

func (r *doctorRepo) GetByEmail(_ context.Context, email string) (*models.Doctor, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.doctors {
		if d.Email == email {
			return &d, nil
		}
	}
	return nil, store.ErrNotFound
}

func (r *doctorRepo) ExistsByEmail(_ context.Context, email string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.doctors {
		if d.Email == email {
			return true, nil
		}
	}
	return false, nil
}

func (r *doctorRepo) ExistsByPhone(_ context.Context, phone string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, d := range r.s.doctors {
		if d.Phone == phone {
			return true, nil
		}
	}
	return false, nil
}

func (r *doctorRepo) Update(_ context.Context, d *models.Doctor) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.doctors[d.ID]; !ok {
		return store.ErrNotFound
	}
	if err := r.conflict(d); err != nil {
		return err
	}
	d.UpdatedAt = r.s.now()
	r.s.doctors[d.ID] = *d
	return nil
}

func (r *doctorRepo) list(match func(*models.Doctor) bool) []*models.Doctor {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.Doctor, 0, len(r.s.doctors))
	for _, d := range r.s.doctors {
		d := d
		if match(&d) {
			out = append(out, &d)
		}
	}
	return out
}

func (r *doctorRepo) List(_ context.Context, search string, opts models.ListOptions) ([]*models.Doctor, int64, error) {
	matched := r.list(func(d *models.Doctor) bool {
		return search == "" || anyContains(search, d.FirstName, d.LastName)
	})
	if err := sortItems(matched, opts.Sort); err != nil {
		return nil, 0, err
	}
	return page(matched, opts), int64(len(matched)), nil
}

func (r *doctorRepo) ListActive(context.Context) ([]*models.Doctor, error) {
	active := r.list(func(d *models.Doctor) bool { return d.IsActive })
	if err := sortItems(active, "first_name"); err != nil {
		return nil, err
	}
	return active, nil
}

type hospitalRepo struct{ s *Store }

func (r *hospitalRepo) Create(_ context.Context, h *models.Hospital) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&h.ID, &h.CreatedAt)
	for _, other := range r.s.hospitals {
		if other.Email == h.Email {
			return duplicate("email")
		}
		if other.Username == h.Username {
			return duplicate("username")
		}
	}
	r.s.hospitals[h.ID] = *h
	return nil
}

func (r *hospitalRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Hospital, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	h, ok := r.s.hospitals[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &h, nil
}

func (r *hospitalRepo) GetByEmail(_ context.Context, email string) (*models.Hospital, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, h := range r.s.hospitals {
		if h.Email == email {
			return &h, nil
		}
	}
	return nil, store.ErrNotFound
}
