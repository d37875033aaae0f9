package main

import (
	"net/http"

	"github.com/gin-gonic/gin"
	"github.com/google/uuid"
	"github.com/shopspring/decimal"

	"github.com/MikeMC777/ecommerce-api/internal/httpx"
	"github.com/MikeMC777/ecommerce-api/internal/order"
)

func orderFromRequest(id string, req order.OrderRequest) *order.Order {
	o := &order.Order{
		ID:            id,
		Date:          req.Date,
		TotalPrice:    decimal.Zero,
		CustomerName:  req.CustomerName,
		CustomerEmail: req.CustomerEmail,
		UserID:        req.UserID,
	}
	if req.TotalPrice != nil {
		o.TotalPrice = *req.TotalPrice
	}
	return o
}

func createOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		var req order.OrderRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		o := orderFromRequest(uuid.NewString(), req)
		if err := repo.Create(c.Request.Context(), o); err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusCreated, "Create Order Success", o)
	}
}

func listOrdersHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := httpx.Pagination(c, 10)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		list, total, err := repo.List(c.Request.Context(), order.Query{
			CustomerName: c.Query("customerName"),
			Limit:        p.Size,
			Offset:       p.Offset(),
		})
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.List(c, "Get Orders Success", list, p, total)
	}
}

func getOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "orderId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		o, err := repo.GetByID(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Get Order By Id Success", o)
	}
}

// Full update. totalPrice keeps its stored value when omitted.
func updateOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "orderId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var req order.OrderRequest
		if err := httpx.Bind(c, &req); err != nil {
			httpx.Error(c, err)
			return
		}
		o, err := repo.Update(c.Request.Context(), id, req)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Update Order By Id Success", o)
	}
}

func deleteOrderHandler(repo order.Repository) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "orderId")
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
			httpx.Error(c, order.ErrNotFound)
			return
		}
		httpx.JSON(c, http.StatusOK, "Delete Order By Id Success", nil)
	}
}

func orderItemsByOrderHandler(orders order.Repository, items orderItemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "orderId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		if _, err := orders.GetByID(c.Request.Context(), id); err != nil {
			httpx.Error(c, err)
			return
		}
		list, err := items.ListByOrder(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Get Order Item By Order Success", list)
	}
}
