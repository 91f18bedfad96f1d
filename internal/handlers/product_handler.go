package handlers

import (
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/harentsoaR/hospital-api/internal/response"
	"github.com/harentsoaR/hospital-api/internal/services"
)

type ProductRequest struct {
	Name         string  `json:"name" binding:"required,min=3"`
	Price        float64 `json:"price" binding:"required,gt=50"`
	Quantity     int64   `json:"quantity" binding:"gte=0"`
	Description  string  `json:"description" binding:"required,min=3"`
	ExpiryDate   string  `json:"expiry_date" binding:"required"`
	Manufacturer string  `json:"manufacturer" binding:"required,min=3"`
	Category     string  `json:"category" binding:"required,oneof=Inhaler Tablet Syrup Cream Capsule Soap"`
	Image        string  `json:"image"`
}

func (r ProductRequest) input() (services.ProductInput, error) {
	expiry, err := parseDate("expiry_date", r.ExpiryDate)
	if err != nil {
		return services.ProductInput{}, err
	}
	return services.ProductInput{
		Name:         r.Name,
		Price:        r.Price,
		Description:  r.Description,
		ExpiryDate:   expiry,
		Quantity:     r.Quantity,
		Category:     r.Category,
		Manufacturer: r.Manufacturer,
		Image:        r.Image,
	}, nil
}

type AddStockRequest struct {
	Count *int64 `json:"count" binding:"required"`
}

func (h *Handler) CreateProduct(c *gin.Context) {
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		response.Error(c, err)
		return
	}
	product, err := h.Products.Create(c.Request.Context(), in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusCreated, "Product created successfully", product)
}

func (h *Handler) GetProducts(c *gin.Context) {
	page, err := h.Products.List(c.Request.Context(), services.ProductQuery{
		Query:        query(c),
		Category:     c.Query("category"),
		Manufacturer: c.Query("manufacturer"),
		Stock:        c.Query("stock"),
	})
	if err != nil {
		response.Error(c, err)
		return
	}
	response.Paged(c, "Products retrieved successfully", page.Items, page.Meta)
}

func (h *Handler) GetManufacturers(c *gin.Context) {
	names, err := h.Products.Manufacturers(c.Request.Context())
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Manufacturers retrieved successfully", names)
}

func (h *Handler) GetProduct(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	product, err := h.Products.Get(c.Request.Context(), id)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Product retrieved successfully", product)
}

func (h *Handler) UpdateProduct(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req ProductRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	in, err := req.input()
	if err != nil {
		response.Error(c, err)
		return
	}
	product, err := h.Products.Update(c.Request.Context(), id, in)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Product updated successfully", product)
}

func (h *Handler) AddProductStock(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	var req AddStockRequest
	if err := bind(c, &req); err != nil {
		response.Error(c, err)
		return
	}
	product, err := h.Products.AddStock(c.Request.Context(), id, *req.Count)
	if err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Product count added successfully", product)
}

func (h *Handler) DeleteProduct(c *gin.Context) {
	id, err := idParam(c)
	if err != nil {
		response.Error(c, err)
		return
	}
	if err := h.Products.Delete(c.Request.Context(), id); err != nil {
		response.Error(c, err)
		return
	}
	response.OK(c, http.StatusOK, "Product deleted successfully", nil)
}
