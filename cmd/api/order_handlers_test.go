package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	ord "github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/orderitem"
)

// stubOrders implements ord.Repository in memory.
type stubOrders struct {
	items   map[string]ord.Order
	lastReq ord.OrderRequest
}

func newStubOrders() *stubOrders { return &stubOrders{items: map[string]ord.Order{}} }

func (s *stubOrders) Create(ctx context.Context, o *ord.Order) error {
	s.items[o.ID] = *o
	return nil
}

func (s *stubOrders) GetByID(ctx context.Context, id string) (*ord.Order, error) {
	o, ok := s.items[id]
	if !ok {
		return nil, ord.ErrNotFound
	}
	return &o, nil
}

func (s *stubOrders) List(ctx context.Context, q ord.Query) ([]ord.Order, int, error) {
	out := []ord.Order{}
	for _, o := range s.items {
		if q.UserID == "" || o.UserID == q.UserID {
			out = append(out, o)
		}
	}
	return out, len(out), nil
}

func (s *stubOrders) Update(ctx context.Context, id string, req ord.OrderRequest) (*ord.Order, error) {
	s.lastReq = req
	o, ok := s.items[id]
	if !ok {
		return nil, ord.ErrNotFound
	}
	o.Date, o.CustomerName, o.CustomerEmail, o.UserID = req.Date, req.CustomerName, req.CustomerEmail, req.UserID
	if req.TotalPrice != nil {
		o.TotalPrice = *req.TotalPrice
	}
	s.items[id] = o
	return &o, nil
}

func (s *stubOrders) Delete(ctx context.Context, id string) (bool, error) {
	if _, ok := s.items[id]; !ok {
		return false, nil
	}
	delete(s.items, id)
	return true, nil
}

func newOrdersRouter(repo ord.Repository, items orderItemService) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.POST("/orders", createOrderHandler(repo))
	r.GET("/orders", listOrdersHandler(repo))
	r.GET("/orders/:orderId", getOrderHandler(repo))
	r.PUT("/orders/:orderId", updateOrderHandler(repo))
	r.DELETE("/orders/:orderId", deleteOrderHandler(repo))
	r.GET("/orders/:orderId/order-items", orderItemsByOrderHandler(repo, items))
	return r
}

func orderBody(total string) string {
	b := fmt.Sprintf(`{"date":"2024-09-11T00:00:00Z","customerName":"Ana","customerEmail":"ana@mail.com","userId":%q`, uuid.NewString())
	if total != "" {
		b += `,"totalPrice":` + total
	}
	return b + "}"
}

type orderEnvelope struct {
	Status int       `json:"status"`
	Data   ord.Order `json:"data"`
}

func TestCreateOrder_DefaultsTotalToZero(t *testing.T) {
	t.Parallel()

	repo := newStubOrders()
	r := newOrdersRouter(repo, newStubItems())

	w := send(r, http.MethodPost, "/orders", orderBody(""))
	if w.Code != http.StatusCreated {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got orderEnvelope
	if err := json.Unmarshal(w.Body.Bytes(), &got); err != nil {
		t.Fatalf("invalid json: %v", err)
	}
	if !got.Data.TotalPrice.IsZero() || len(repo.items) != 1 {
		t.Fatalf("unexpected order %+v", got.Data)
	}

	bad := `{"date":"2024-09-11T00:00:00Z","customerName":"Ana","customerEmail":"not-an-email","userId":"` + uuid.NewString() + `"}`
	if w := send(r, http.MethodPost, "/orders", bad); w.Code != http.StatusBadRequest {
		t.Fatalf("want 400 for a bad email, got %d", w.Code)
	}
}

func TestUpdateOrder_KeepsTotalWhenOmitted(t *testing.T) {
	t.Parallel()

	repo := newStubOrders()
	id := uuid.NewString()
	repo.items[id] = ord.Order{ID: id, TotalPrice: decimal.NewFromInt(15000), CustomerName: "Old"}
	r := newOrdersRouter(repo, newStubItems())

	if w := send(r, http.MethodPut, "/orders/"+id, orderBody("")); w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	if got := repo.items[id]; got.CustomerName != "Ana" || !got.TotalPrice.Equal(decimal.NewFromInt(15000)) {
		t.Fatalf("unexpected order %+v", got)
	}
	if repo.lastReq.TotalPrice != nil {
		t.Fatalf("an omitted totalPrice must reach the repo unset, got %s", repo.lastReq.TotalPrice)
	}

	if w := send(r, http.MethodPut, "/orders/"+id, orderBody("99")); w.Code != http.StatusOK {
		t.Fatalf("status=%d", w.Code)
	}
	if got := repo.items[id]; !got.TotalPrice.Equal(decimal.NewFromInt(99)) {
		t.Fatalf("explicit total not applied: %s", got.TotalPrice)
	}

	if w := send(r, http.MethodPut, "/orders/"+uuid.NewString(), orderBody("")); w.Code != http.StatusNotFound {
		t.Fatalf("want 404, got %d", w.Code)
	}
}

func TestOrderItemsByOrder(t *testing.T) {
	t.Parallel()

	repo := newStubOrders()
	items := newStubItems()
	id := uuid.NewString()
	repo.items[id] = ord.Order{ID: id}
	_, _ = items.Create(context.Background(), orderitem.Input{OrderID: id, ProductID: uuid.NewString(), Quantity: 2, UnitPrice: decimal.NewFromInt(5)})
	_, _ = items.Create(context.Background(), orderitem.Input{OrderID: uuid.NewString(), ProductID: uuid.NewString(), Quantity: 1, UnitPrice: decimal.NewFromInt(5)})
	r := newOrdersRouter(repo, items)

	w := send(r, http.MethodGet, "/orders/"+id+"/order-items", "")
	if w.Code != http.StatusOK {
		t.Fatalf("status=%d body=%s", w.Code, w.Body.String())
	}
	var got struct {
		Data []orderitem.OrderItem `json:"data"`
	}
	_ = json.Unmarshal(w.Body.Bytes(), &got)
	if len(got.Data) != 1 || got.Data[0].OrderID != id {
		t.Fatalf("unexpected items %+v", got.Data)
	}

	if w := send(r, http.MethodGet, "/orders/"+uuid.NewString()+"/order-items", ""); w.Code != http.StatusNotFound {
		t.Fatalf("want 404 for a missing order, got %d", w.Code)
	}
	if w := send(r, http.MethodDelete, "/orders/"+id, ""); w.Code != http.StatusOK {
		t.Fatalf("delete: status=%d", w.Code)
	}
}
