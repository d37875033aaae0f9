package main

import (
	"context"
	"net/http"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	swaggerFiles "github.com/swaggo/files"
	ginSwagger "github.com/swaggo/gin-swagger"

	_ "github.com/MikeMC777/ecommerce-api/docs"
	"github.com/MikeMC777/ecommerce-api/internal/auth"
	"github.com/MikeMC777/ecommerce-api/internal/category"
	"github.com/MikeMC777/ecommerce-api/internal/httpx"
	"github.com/MikeMC777/ecommerce-api/internal/metrics"
	"github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/orderitem"
	"github.com/MikeMC777/ecommerce-api/internal/product"
	"github.com/MikeMC777/ecommerce-api/internal/redisx"
	"github.com/MikeMC777/ecommerce-api/internal/user"
)

type authService interface {
	httpx.Authenticator
	Register(ctx context.Context, req auth.RegisterRequest) (*user.User, auth.Tokens, error)
	Login(ctx context.Context, req auth.LoginRequest) (*user.User, auth.Tokens, error)
	Logout(ctx context.Context, req auth.LogoutRequest) (*user.User, error)
	Refresh(ctx context.Context, req auth.RefreshRequest) (auth.Tokens, error)
}

type orderItemService interface {
	Create(ctx context.Context, in orderitem.Input) (*orderitem.OrderItem, error)
	Get(ctx context.Context, id string) (*orderitem.OrderItem, error)
	Update(ctx context.Context, id string, in orderitem.Input) (*orderitem.OrderItem, error)
	Delete(ctx context.Context, id string) (*orderitem.OrderItem, error)
	List(ctx context.Context, f orderitem.Filter, page, size int) (*orderitem.Page, error)
	ListByOrder(ctx context.Context, orderID string) ([]orderitem.OrderItem, error)
}

type idempotencyStore interface {
	Begin(ctx context.Context, key string) (redisx.State, []byte, error)
	Complete(ctx context.Context, key string, result []byte) error
	Release(ctx context.Context, key string) error
}

type pinger interface {
	Ping(ctx context.Context) error
}

type deps struct {
	Auth       authService
	Users      user.Repository
	Categories category.Repository
	Products   product.Repository
	Orders     order.Repository
	OrderItems orderItemService
	Idem       idempotencyStore // nil disables Idempotency-Key handling
	DB         pinger
	Metrics    *metrics.ServerMetrics
	Gatherer   prometheus.Gatherer
}

func newRouter(d deps) *gin.Engine {
	r := gin.New()
	r.Use(gin.Recovery(), httpx.RequestID(), httpx.Logger())
	if d.Metrics != nil {
		r.Use(httpx.Metrics(d.Metrics))
	}

	r.GET("/healthz", func(c *gin.Context) { c.String(http.StatusOK, "ok") })
	r.GET("/readyz", readyHandler(d.DB))
	if d.Gatherer != nil {
		r.GET("/metrics", gin.WrapH(metrics.Handler(d.Gatherer)))
	}
	r.GET("/swagger/*any", ginSwagger.WrapHandler(swaggerFiles.Handler))

	api := r.Group("/api")
	authed := httpx.Auth(d.Auth)
	admin := []gin.HandlerFunc{authed, httpx.RequireRole(user.RoleAdmin)}

	a := api.Group("/auth")
	a.POST("/register", registerHandler(d.Auth))
	a.POST("/login", loginHandler(d.Auth))
	a.PATCH("/logout", logoutHandler(d.Auth))
	a.POST("/refresh", refreshHandler(d.Auth))

	u := api.Group("/users", admin...)
	u.POST("", createUserHandler(d.Users))
	u.GET("", listUsersHandler(d.Users))
	u.GET("/:userId", getUserHandler(d.Users))
	u.PUT("/:userId", updateUserHandler(d.Users))
	u.DELETE("/:userId", deleteUserHandler(d.Users))
	u.GET("/:userId/products", userProductsHandler(d.Users, d.Products))
	u.GET("/:userId/orders", userOrdersHandler(d.Users, d.Orders))
	u.GET("/email/:email", getUserByEmailHandler(d.Users))

	cg := api.Group("/categories", authed)
	cg.POST("", createCategoryHandler(d.Categories))
	cg.GET("", listCategoriesHandler(d.Categories))
	cg.GET("/:categoryId", getCategoryHandler(d.Categories))
	cg.PATCH("/:categoryId", updateCategoryHandler(d.Categories))
	cg.DELETE("/:categoryId", deleteCategoryHandler(d.Categories))

	p := api.Group("/products", authed)
	p.POST("", createProductHandler(d.Products))
	p.GET("", listProductsHandler(d.Products))
	p.GET("/:productId", getProductHandler(d.Products))
	p.PATCH("/:productId", updateProductHandler(d.Products))
	p.DELETE("/:productId", deleteProductHandler(d.Products))

	o := api.Group("/orders", admin...)
	o.POST("", createOrderHandler(d.Orders))
	o.GET("", listOrdersHandler(d.Orders))
	o.GET("/:orderId", getOrderHandler(d.Orders))
	o.PUT("/:orderId", updateOrderHandler(d.Orders))
	o.DELETE("/:orderId", deleteOrderHandler(d.Orders))
	o.GET("/:orderId/order-items", orderItemsByOrderHandler(d.Orders, d.OrderItems))

	oi := api.Group("/order-items", admin...)
	oi.POST("", createOrderItemHandler(d.OrderItems, d.Idem))
	oi.GET("", listOrderItemsHandler(d.OrderItems))
	oi.GET("/:orderItemId", getOrderItemHandler(d.OrderItems))
	oi.PUT("/:orderItemId", updateOrderItemHandler(d.OrderItems))
	oi.DELETE("/:orderItemId", deleteOrderItemHandler(d.OrderItems))

	return r
}

func readyHandler(db pinger) gin.HandlerFunc {
	return func(c *gin.Context) {
		if db == nil {
			c.String(http.StatusOK, "ok")
			return
		}
		ctx, cancel := context.WithTimeout(c.Request.Context(), 2*time.Second)
		defer cancel()
		if err := db.Ping(ctx); err != nil {
			c.String(http.StatusServiceUnavailable, "db unavailable")
			return
		}
		c.String(http.StatusOK, "ok")
	}
}
