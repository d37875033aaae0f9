package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	prod "github.com/MikeMC777/ecommerce-api/internal/product"
)

//
// ===== IN-MEMORY STUB REPO (implements product.Repository) =====
//

type stubRepo struct {
	items     map[string]*prod.Product
	order     []string
	lastQuery prod.Query
	lastPatch prod.UpdateProductRequest
}

func newStubRepo() *stubRepo {
	return &stubRepo{items: make(map[string]*prod.Product)}
}

func (s *stubRepo) List(ctx context.Context, q prod.Query) ([]prod.Product, int, error) {
	s.lastQuery = q
	out := make([]prod.Product, 0, len(s.items))
	for _, id := range s.order {
		v, ok := s.items[id]
		if !ok {
			continue
		}
		if q.Name != "" && !strings.Contains(strings.ToLower(v.Name), strings.ToLower(q.Name)) {
			continue
		}
		if v.Price.LessThan(q.PriceMin) || v.Price.GreaterThan(q.PriceMax) {
			continue
		}
		out = append(out, *v)
	}
	total := len(out)
	start := q.Offset
	if start > len(out) {
		return []prod.Product{}, total, nil
	}
	end := start + q.Limit
	if end > len(out) || q.Limit <= 0 {
		end = len(out)
	}
	return out[start:end], total, nil
}

func (s *stubRepo) GetByID(ctx context.Context, id string) (*prod.Product, error) {
	p, ok := s.items[id]
	if !ok {
		return nil, prod.ErrNotFound
	}
	cp := *p
	return &cp, nil
}

func (s *stubRepo) Create(ctx context.Context, p *prod.Product) error {
	if p.ID == "" {
		p.ID = uuid.NewString()
	}
	cp := *p
	cp.CreatedAt = time.Now().UTC()
	cp.UpdatedAt = cp.CreatedAt
	s.items[p.ID] = &cp
	s.order = append(s.order, p.ID)
	return nil
}

// Update applies the set fields onto the stored row, like the SQL COALESCE.
func (s *stubRepo) Update(ctx context.Context, id string, req prod.UpdateProductRequest) (*prod.Product, error) {
	s.lastPatch = req
	cur, ok := s.items[id]
	if !ok {
		return nil, prod.ErrNotFound
	}
	if req.Name != nil {
		cur.Name = *req.Name
	}
	if req.Description != nil {
		cur.Description = *req.Description
	}
	if req.Price != nil {
		cur.Price = *req.Price
	}
	if req.QuantityInStock != nil {
		cur.QuantityInStock = *req.QuantityInStock
	}
	cur.CategoryID, cur.UserID = req.CategoryID, req.UserID
	cur.UpdatedAt = time.Now().UTC()
	cp := *cur
	return &cp, nil
}

func (s *stubRepo) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func newProductsRouter(repo prod.Repository) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/products", listProductsHandler(repo))
	r.GET("/products/:productId", getProductHandler(repo))
	r.POST("/products", createProductHandler(repo))
	r.PATCH("/products/:productId", updateProductHandler(repo))
	r.DELETE("/products/:productId", deleteProductHandler(repo))
	return r
}

func seedProduct(repo *stubRepo, name string, price int64, stock int) *prod.Product {
	p := &prod.Product{
		ID:              uuid.NewString(),
		Name:            name,
		Description:     "desc",
		Price:           decimal.NewFromInt(price),
		QuantityInStock: stock,
		CategoryID:      uuid.NewString(),
		UserID:          uuid.NewString(),
	}
	_ = repo.Create(context.Background(), p)
	return p
}

//
// ===== TESTS =====
//

func TestListProducts_FiltersAndPagination(t *testing.T) {
	repo := newStubRepo()
	seedProduct(repo, "Mouse", 5, 1)
	for i := 1; i <= 3; i++ {
		seedProduct(repo, fmt.Sprintf("Keyboard %d", i), int64(100*i), 5)
	}
	r := newProductsRouter(repo)

	w := send(r, http.MethodGet, "/products?size=2&page=2", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Data        []prod.Product `json:"data"`
		CurrentPage int            `json:"currentPage"`
		TotalData   int            `json:"totalData"`
		TotalPage   int            `json:"totalPage"`
	}
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	// The 5.00 mouse sits below the default minimum price of 10.
	if got.TotalData != 3 || got.TotalPage != 2 || len(got.Data) != 1 || got.CurrentPage != 2 {
		t.Fatalf("unexpected page %+v", got)
	}
	if !repo.lastQuery.PriceMin.Equal(prod.DefaultPriceMin) || repo.lastQuery.Offset != 2 {
		t.Fatalf("unexpected query %+v", repo.lastQuery)
	}

	w = send(r, http.MethodGet, "/products?categoryName=keyb&priceCheap=150&priceExpensive=250", "")
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if w.Code != http.StatusOK || got.TotalData != 1 || got.Data[0].Name != "Keyboard 2" {
		t.Fatalf("status=%d page=%+v", w.Code, got)
	}

	if w := send(r, http.MethodGet, "/products?priceCheap=cheap", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for a non numeric price, got %d", w.Code)
	}
}

func TestGetProduct_OK_And_NotFound(t *testing.T) {
	repo := newStubRepo()
	p := seedProduct(repo, "Headset", 150, 7)
	r := newProductsRouter(repo)

	if w := send(r, http.MethodGet, "/products/"+p.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodGet, "/products/"+uuid.NewString(), ""); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
	if w := send(r, http.MethodGet, "/products/nope", ""); w.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for a malformed id, got %d", w.Code)
	}
}

func TestCreateProduct_Valid_And_Invalid(t *testing.T) {
	repo := newStubRepo()
	r := newProductsRouter(repo)
	ids := fmt.Sprintf(`"categoryId":%q,"userId":%q`, uuid.NewString(), uuid.NewString())

	cases := []struct {
		name string
		body string
		want int
	}{
		{"valid", `{"name":"Starter Kit","description":"Basic","price":"49.90","quantityInStock":10,` + ids + `}`, http.StatusCreated},
		{"zero stock is allowed", `{"name":"Rare","description":"Sold out","price":1,"quantityInStock":0,` + ids + `}`, http.StatusCreated},
		{"missing name", `{"description":"x","price":1,"quantityInStock":1,` + ids + `}`, http.StatusBadRequest},
		{"missing stock", `{"name":"x","description":"x","price":1,` + ids + `}`, http.StatusBadRequest},
		{"negative stock", `{"name":"Bad","description":"x","price":"1.00","quantityInStock":-1,` + ids + `}`, http.StatusBadRequest},
		{"zero price", `{"name":"Free","description":"x","price":0,"quantityInStock":1,` + ids + `}`, http.StatusBadRequest},
	}
	for _, tc := range cases {
		if w := send(r, http.MethodPost, "/products", tc.body); w.Code != tc.want {
			t.Fatalf("%s: status=%d want %d body=%s", tc.name, w.Code, tc.want, w.Body.String())
		}
	}
	if len(repo.items) != 2 {
		t.Fatalf("stored=%d, want 2", len(repo.items))
	}
}

// PATCH keeps every field the body omits.
func TestUpdateProduct_Partial(t *testing.T) {
	repo := newStubRepo()
	p := seedProduct(repo, "Mouse", 10, 5)
	r := newProductsRouter(repo)
	ids := fmt.Sprintf(`"categoryId":%q,"userId":%q`, p.CategoryID, p.UserID)

	if w := send(r, http.MethodPatch, "/products/"+p.ID, `{"name":"Mouse 2",`+ids+`}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ := repo.GetByID(context.Background(), p.ID)
	if got.Name != "Mouse 2" || !got.Price.Equal(decimal.NewFromInt(10)) || got.QuantityInStock != 5 {
		t.Fatalf("partial update not honoured: %+v", got)
	}

	if w := send(r, http.MethodPatch, "/products/"+p.ID, `{"price":"12.50","quantityInStock":0,`+ids+`}`); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	got, _ = repo.GetByID(context.Background(), p.ID)
	if !got.Price.Equal(decimal.RequireFromString("12.50")) || got.QuantityInStock != 0 {
		t.Fatalf("price/stock update not applied: %+v", got)
	}

	if w := send(r, http.MethodPatch, "/products/"+p.ID, `{"quantityInStock":-3,`+ids+`}`); w.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for negative stock, got %d", w.Code)
	}
	if w := send(r, http.MethodPatch, "/products/"+uuid.NewString(), `{"name":"x",`+ids+`}`); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestDeleteProduct_OK_And_NotFound(t *testing.T) {
	repo := newStubRepo()
	p := seedProduct(repo, "X", 10, 1)
	r := newProductsRouter(repo)

	if w := send(r, http.MethodDelete, "/products/"+p.ID, ""); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if w := send(r, http.MethodDelete, "/products/"+p.ID, ""); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

// A rename must not write stock: an order item committed after the client
// read the product has already moved it.
func TestUpdateProduct_OmittedStockIsNotWritten(t *testing.T) {
	repo := newStubRepo()
	p := seedProduct(repo, "Mouse", 10, 20)
	r := newProductsRouter(repo)

	repo.items[p.ID].QuantityInStock = 10
	body := fmt.Sprintf(`{"name":"Mouse Pro","categoryId":%q,"userId":%q}`, p.CategoryID, p.UserID)
	w := send(r, http.MethodPatch, "/products/"+p.ID, body)
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if repo.lastPatch.QuantityInStock != nil || repo.lastPatch.Price != nil || repo.lastPatch.Description != nil {
		t.Fatalf("omitted fields must reach the repo unset, got %+v", repo.lastPatch)
	}
	var got struct {
		Data prod.Product `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if got.Data.QuantityInStock != 10 || got.Data.Name != "Mouse Pro" {
		t.Fatalf("response must reflect the stored row, got %+v", got.Data)
	}
}
