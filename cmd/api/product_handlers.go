package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/httpx"
	"github.com/MikeMC777/ecommerce-api/internal/product"
)

func validateProduct(p *product.Product) error {
	if !p.Price.IsPositive() {
		return apperr.Invalid("price must be positive")
	}
	if p.QuantityInStock < 0 {
		return apperr.Invalid("quantityInStock must not be negative")
	}
	return nil
}

func validatePatch(req product.UpdateProductRequest) error {
	if req.Price != nil && !req.Price.IsPositive() {
		return apperr.Invalid("price must be positive")
	}
	if req.QuantityInStock != nil && *req.QuantityInStock < 0 {
		return apperr.Invalid("quantityInStock must not be negative")
	}
	return nil
}

func createProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req product.CreateProductRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		p := &product.Product{
			ID:              uuid.NewString(),
			Name:            req.Name,
			Description:     req.Description,
			Price:           req.Price,
			QuantityInStock: *req.QuantityInStock,
			CategoryID:      req.CategoryID,
			UserID:          req.UserID,
		}
		if err := validateProduct(p); err != nil {
			httpx.Error(c, err)
			return
		}
		if err := repo.Create(c.Request.Context(), p); err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusCreated, "Create Product Success", p)
	}
}

func queryDecimal(c *gin.Context, key string, def decimal.Decimal) (decimal.Decimal, error) {
	v, ok := c.GetQuery(key)
	if !ok {
		return def, nil
	}
	d, err := decimal.NewFromString(v)
	if err != nil {
		return decimal.Zero, httpx.ErrInvalidQuery
	}
	return d, nil
}

// categoryName matches the product name, as clients of this endpoint expect.
func listProductsHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := httpx.Pagination(c, 10)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		minPrice, err := queryDecimal(c, "priceCheap", product.DefaultPriceMin)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		maxPrice, err := queryDecimal(c, "priceExpensive", product.NoPriceLimit)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		list, total, err := repo.List(c.Request.Context(), product.Query{
			Name:     c.Query("categoryName"),
			PriceMin: minPrice,
			PriceMax: maxPrice,
			Limit:    p.Size,
			Offset:   p.Offset(),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.List(c, "Get Products Success", list, p, total)
	}
}

func getProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "productId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		p, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Get Product By Id Success", p)
	}
}

// Partial update: omitted fields keep their stored value.
func updateProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "productId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var req product.UpdateProductRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		if err := validatePatch(req); err != nil {
			httpx.Error(c, err)
			return
		}
		p, err := repo.Update(c.Request.Context(), id, req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Update Product By Id Success", p)
	}
}

func deleteProductHandler(repo product.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "productId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		ok, err := repo.Delete(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if !ok {
			httpx.Error(c, product.ErrNotFound)
			return
		}
		httpx.JSON(c, http.StatusOK, "Delete Products Success", nil)
	}
}
