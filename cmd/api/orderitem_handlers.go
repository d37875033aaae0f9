package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"

	"github.com/gin-gonic/gin"

	"github.com/MikeMC777/ecommerce-api/internal/apperr"
	"github.com/MikeMC777/ecommerce-api/internal/httpx"
	"github.com/MikeMC777/ecommerce-api/internal/orderitem"
	"github.com/MikeMC777/ecommerce-api/internal/redisx"
)

const headerIdempotencyKey = "Idempotency-Key"

var errInFlight = apperr.Conflict("a request with this Idempotency-Key is still in progress", nil)

// @Summary Create order item
// @Tags    order-items
// @Param   Idempotency-Key header string false "replays the stored result for a repeated key"
// @Param   body body orderitem.Input true "order item"
// @Success 201 {object} httpx.Envelope
// @Failure 400,404,409,503 {object} httpx.ErrorBody
// @Router  /order-items [post]
func createOrderItemHandler(svc orderItemService, idem idempotencyStore) gin.HandlerFunc {
	return func(c *gin.Context) {
		var in orderitem.Input
		if err := httpx.Bind(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}
		ctx := c.Request.Context()

		key := ""
		if idem != nil {
			key = c.GetHeader(headerIdempotencyKey)
		}
		if key != "" {
			st, stored, err := idem.Begin(ctx, key)
			switch {
			case err != nil:
				log.Printf("[order-items] idempotency begin key=%s: %v", key, err)
				key = ""
			case st == redisx.StateInFlight:
				httpx.Error(c, errInFlight)
				return
			case st == redisx.StateDone:
				c.Header("Idempotent-Replay", "true")
				httpx.JSON(c, http.StatusOK, "Create Order Item Success", json.RawMessage(stored))
				return
			}
		}

		it, err := svc.Create(ctx, in)
		// The key must settle even when the client has gone away.
		settle := context.WithoutCancel(ctx)
		if err != nil {
			if key != "" {
				if rerr := idem.Release(settle, key); rerr != nil {
					log.Printf("[order-items] idempotency release key=%s: %v", key, rerr)
				}
			}
			httpx.Error(c, err)
			return
		}
		if key != "" {
			if b, err := json.Marshal(it); err == nil {
				if err := idem.Complete(settle, key, b); err != nil {
					log.Printf("[order-items] idempotency complete key=%s: %v", key, err)
				}
			}
		}
		httpx.JSON(c, http.StatusCreated, "Create Order Item Success", it)
	}
}

// quantityBound reads the first present key. Present values must be
// positive integers.
func quantityBound(c *gin.Context, keys ...string) (int, error) {
	for _, k := range keys {
		if _, ok := c.GetQuery(k); !ok {
			continue
		}
		n, err := httpx.QueryInt(c, k, 0)
		if err != nil {
			return 0, err
		}
		if n < 1 {
			return 0, httpx.ErrInvalidQuery
		}
		return n, nil
	}
	return 0, nil
}

// @Summary List order items
// @Tags    order-items
// @Param   quantitySmall query int false "minimum quantity (default 1)"
// @Param   quantityLarge query int false "maximum quantity (default unbounded)"
// @Param   page query int false "page (default 1)"
// @Param   size query int false "size (default 10)"
// @Success 200 {object} httpx.ListEnvelope
// @Router  /order-items [get]
func listOrderItemsHandler(svc orderItemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		p, err := httpx.Pagination(c, 10)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var f orderitem.Filter
		if f.QuantityMin, err = quantityBound(c, "quantitySmall", "quantityMin"); err != nil {
			httpx.Error(c, err)
			return
		}
		if f.QuantityMax, err = quantityBound(c, "quantityLarge", "quantityMax"); err != nil {
			httpx.Error(c, err)
			return
		}
		page, err := svc.List(c.Request.Context(), f, p.Page, p.Size)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		c.JSON(http.StatusOK, httpx.ListEnvelope{
			Status:      http.StatusOK,
			Message:     "Get Order Items Success",
			Data:        page.Items,
			CurrentPage: page.CurrentPage,
			TotalData:   page.TotalData,
			TotalPage:   page.TotalPage,
		})
	}
}

func getOrderItemHandler(svc orderItemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "orderItemId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		it, err := svc.Get(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Get Order Item By Id Success", it)
	}
}

func updateOrderItemHandler(svc orderItemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "orderItemId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		var in orderitem.Input
		if err := httpx.Bind(c, &in); err != nil {
			httpx.Error(c, err)
			return
		}
		it, err := svc.Update(c.Request.Context(), id, in)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Update Order Item By Id Success", it)
	}
}

func deleteOrderItemHandler(svc orderItemService) gin.HandlerFunc {
	return func(c *gin.Context) {
		id, err := pathID(c, "orderItemId")
		if err != nil {
			httpx.Error(c, err)
			return
		}
		it, err := svc.Delete(c.Request.Context(), id)
		if err != nil {
			httpx.Error(c, err)
			return
		}
		httpx.JSON(c, http.StatusOK, "Delete Order Item By Id Success", it)
	}
}
