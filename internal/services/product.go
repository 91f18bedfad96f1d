package services

import (
	"context"
	"errors"
	"time"

	"go.mongodb.org/mongo-driver/bson/primitive"

	"github.com/harentsoaR/hospital-api/internal/apperr"
	"github.com/harentsoaR/hospital-api/internal/models"
	"github.com/harentsoaR/hospital-api/internal/store"
)

type ProductService struct {
	store store.Store
}

func NewProductService(s store.Store) *ProductService {
	return &ProductService{store: s}
}

type ProductInput struct {
	Name         string
	Price        float64
	Description  string
	ExpiryDate   time.Time
	Quantity     int64
	Category     string
	Manufacturer string
	Image        string
}

func (in ProductInput) apply(p *models.Product) {
	p.Name = in.Name
	p.Price = in.Price
	p.Description = in.Description
	p.ExpiryDate = in.ExpiryDate
	p.Quantity = in.Quantity
	p.Category = in.Category
	p.Manufacturer = in.Manufacturer
	if in.Image != "" {
		p.Image = in.Image
	}
}

func (s *ProductService) Create(ctx context.Context, in ProductInput) (*models.Product, error) {
	if taken, err := s.store.Products().ExistsByName(ctx, in.Name); err != nil {
		return nil, apperr.Internal(err)
	} else if taken {
		return nil, apperr.ErrProductExists
	}
	p := &models.Product{}
	in.apply(p)
	if err := s.store.Products().Create(ctx, p); err != nil {
		return nil, writeErr(err)
	}
	return p, nil
}

func (s *ProductService) Get(ctx context.Context, id primitive.ObjectID) (*models.Product, error) {
	p, err := s.store.Products().GetByID(ctx, id)
	if err != nil {
		return nil, lookupErr(err, apperr.ErrProductNotFound)
	}
	return p, nil
}

func (s *ProductService) Update(ctx context.Context, id primitive.ObjectID, in ProductInput) (*models.Product, error) {
	p, err := s.Get(ctx, id)
	if err != nil {
		return nil, err
	}
	in.apply(p)
	if err := s.store.Products().Update(ctx, p); err != nil {
		if errors.Is(err, store.ErrNotFound) {
			return nil, apperr.ErrProductNotFound
		}
		return nil, writeErr(err)
	}
	return p, nil
}

func (s *ProductService) Delete(ctx context.Context, id primitive.ObjectID) error {
	if err := s.store.Products().Delete(ctx, id); err != nil {
		return lookupErr(err, apperr.ErrProductNotFound)
	}
	return nil
}

// AddStock adjusts the quantity by count, which may be negative but may not
// take the stock below zero.
func (s *ProductService) AddStock(ctx context.Context, id primitive.ObjectID, count int64) (*models.Product, error) {
	if count == 0 {
		return nil, apperr.Validation("count must not be zero")
	}
	err := s.store.Products().AddQuantity(ctx, id, count)
	switch {
	case errors.Is(err, store.ErrStale):
		return nil, apperr.New(apperr.KindState, "INSUFFICIENT_STOCK", "not enough stock to remove")
	case err != nil:
		return nil, lookupErr(err, apperr.ErrProductNotFound)
	}
	return s.Get(ctx, id)
}

type ProductQuery struct {
	Query
	Category     string
	Manufacturer string
	Stock        string
}

func (s *ProductService) List(ctx context.Context, q ProductQuery) (*Page[*models.Product], error) {
	if q.Stock != "" && q.Stock != models.StockIn && q.Stock != models.StockOut {
		return nil, apperr.Validation("stock must be \"" + models.StockIn + "\" or \"" + models.StockOut + "\"")
	}
	items, total, err := s.store.Products().List(ctx, models.ProductFilter{
		Search:       q.Search,
		Category:     q.Category,
		Manufacturer: q.Manufacturer,
		Stock:        q.Stock,
	}, models.ListOptions{
		Sort:  q.Sort,
		Skip:  q.Page.Skip(),
		Limit: q.Page.Limit,
	})
	if err != nil {
		return nil, apperr.From(err)
	}
	return pageOf(items, q.Page, total)
}

func (s *ProductService) Manufacturers(ctx context.Context) ([]string, error) {
	names, err := s.store.Products().Manufacturers(ctx)
	if err != nil {
		return nil, apperr.Internal(err)
	}
	return names, nil
}
