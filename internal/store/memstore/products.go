package memstore

import (
	"context"
	"fmt"
	"sort"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type productRepo struct{ s *Store }

func (r *productRepo) Create(_ context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	r.s.stamp(&p.ID, &p.CreatedAt)
	p.UpdatedAt = p.CreatedAt
	for _, other := range r.s.products {
		if other.Name == p.Name {
			return duplicate("name")
		}
	}
	r.s.products[p.ID] = *p
	return nil
}

func (r *productRepo) GetByID(_ context.Context, id primitive.ObjectID) (*models.Product, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	p, ok := r.s.products[id]
	if !ok {
		return nil, store.ErrNotFound
	}
	return &p, nil
}

func (r *productRepo) ExistsByName(_ context.Context, name string) (bool, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	for _, p := range r.s.products {
		if p.Name == name {
			return true, nil
		}
	}
	return false, nil
}

func (r *productRepo) Update(_ context.Context, p *models.Product) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[p.ID]; !ok {
		return store.ErrNotFound
	}
	for id, other := range r.s.products {
		if id != p.ID && other.Name == p.Name {
			return duplicate("name")
		}
	}
	p.UpdatedAt = r.s.now()
	r.s.products[p.ID] = *p
	return nil
}

func (r *productRepo) Delete(_ context.Context, id primitive.ObjectID) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if _, ok := r.s.products[id]; !ok {
		return store.ErrNotFound
	}
	delete(r.s.products, id)
	return nil
}

func (r *productRepo) AddQuantity(_ context.Context, id primitive.ObjectID, delta int64) error {
	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	p, ok := r.s.products[id]
	if !ok {
		return store.ErrNotFound
	}
	if p.Quantity+delta < 0 {
		return store.ErrStale
	}
	p.Quantity += delta
	p.UpdatedAt = r.s.now()
	r.s.products[id] = p
	return nil
}

func (r *productRepo) List(_ context.Context, f models.ProductFilter, opts models.ListOptions) ([]*models.Product, int64, error) {
	r.s.mu.RLock()
	matched := make([]*models.Product, 0, len(r.s.products))
	for _, p := range r.s.products {
		if f.Search != "" && !anyContains(f.Search, p.Name, p.Manufacturer, p.Category) {
			continue
		}
		if f.Category != "" && p.Category != f.Category {
			continue
		}
		if f.Manufacturer != "" && p.Manufacturer != f.Manufacturer {
			continue
		}
		if f.Stock == models.StockOut && p.Quantity != 0 || f.Stock == models.StockIn && p.Quantity <= 0 {
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

func (r *productRepo) Manufacturers(context.Context) ([]string, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	seen := make(map[string]struct{})
	out := make([]string, 0)
	for _, p := range r.s.products {
		if _, ok := seen[p.Manufacturer]; ok {
			continue
		}
		seen[p.Manufacturer] = struct{}{}
		out = append(out, p.Manufacturer)
	}
	sort.Strings(out)
	return out, nil
}

type activityRepo struct{ s *Store }

func (r *activityRepo) Append(_ context.Context, subject models.ActivitySubject, entry *models.ActivityLog) error {
	switch subject {
	case models.SubjectDoctor, models.SubjectPatient, models.SubjectReservation:
	default:
		return fmt.Errorf("unknown activity subject %q", subject)
	}

	r.s.mu.Lock()
	defer r.s.mu.Unlock()

	if entry.ID.IsZero() {
		entry.ID = primitive.NewObjectID()
	}
	r.s.activity[subject] = append(r.s.activity[subject], *entry)
	return nil
}

func (r *activityRepo) ListBySubject(_ context.Context, subject models.ActivitySubject, subjectID primitive.ObjectID) ([]*models.ActivityLog, error) {
	r.s.mu.RLock()
	defer r.s.mu.RUnlock()

	out := make([]*models.ActivityLog, 0)
	for _, e := range r.s.activity[subject] {
		if e.SubjectID == subjectID {
			e := e
			out = append(out, &e)
		}
	}
	sort.SliceStable(out, func(i, j int) bool { return out[i].Date.Before(out[j].Date) })
	return out, nil
}
