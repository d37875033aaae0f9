package main

import (
	"context"
	"errors"
	"log"
	"net"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"

	"github.com/MikeMC777/ecommerce-api/internal/auth"
	"github.com/MikeMC777/ecommerce-api/internal/category"
	"github.com/MikeMC777/ecommerce-api/internal/config"
	"github.com/MikeMC777/ecommerce-api/internal/events"
	"github.com/MikeMC777/ecommerce-api/internal/grpcx"
	"github.com/MikeMC777/ecommerce-api/internal/metrics"
	"github.com/MikeMC777/ecommerce-api/internal/order"
	"github.com/MikeMC777/ecommerce-api/internal/orderitem"
	"github.com/MikeMC777/ecommerce-api/internal/postgres"
	"github.com/MikeMC777/ecommerce-api/internal/product"
	"github.com/MikeMC777/ecommerce-api/internal/redisx"
	"github.com/MikeMC777/ecommerce-api/internal/user"
)

// @title       E-commerce API
// @version     1.0
// @BasePath    /api
// @securityDefinitions.apikey BearerAuth
// @in header
// @name Authorization
func main() {
	cfg := config.Load()
	if os.Getenv("GIN_MODE") == "" {
		gin.SetMode(gin.ReleaseMode)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	connCtx, connCancel := context.WithTimeout(ctx, 10*time.Second)
	db, err := postgres.Connect(connCtx, cfg.PostgresDSN, postgres.Options{
		MaxConns:         cfg.DBMaxConns,
		StatementTimeout: cfg.StatementTimeout,
	})
	connCancel()
	if err != nil {
		log.Fatalf("[main] postgres: %v", err)
	}
	defer db.Close()

	m := metrics.NewServerMetrics(prometheus.DefaultRegisterer, cfg.ServiceName)

	var pub interface {
		orderitem.Publisher
		Close()
	} = events.Noop{}
	if len(cfg.KafkaBrokers) > 0 {
		pub = events.NewProducer(events.NewKafkaWriter(cfg.KafkaBrokers, cfg.KafkaTopic), cfg.ServiceName, 1024)
		log.Printf("[main] publishing order item events to %v topic=%s", cfg.KafkaBrokers, cfg.KafkaTopic)
	}
	defer pub.Close()

	var idem idempotencyStore
	if cfg.RedisAddr != "" {
		rctx, rcancel := context.WithTimeout(ctx, 5*time.Second)
		rdb, err := redisx.New(rctx, cfg.RedisAddr)
		rcancel()
		if err != nil {
			log.Printf("[main] redis %s unavailable, idempotency disabled: %v", cfg.RedisAddr, err)
		} else {
			defer rdb.Close()
			idem = redisx.NewIdempotency(rdb)
		}
	}

	users := user.NewPGRepo(db)
	authSvc := auth.NewService(users, auth.NewPGTokenStore(db),
		auth.NewIssuer(cfg.JWTSecret, cfg.AccessTokenTTL, cfg.RefreshTokenTTL))
	items := orderitem.NewReconciler(orderitem.NewPGStore(db),
		orderitem.WithPublisher(pub),
		orderitem.WithMaxAttempts(cfg.ReconcileAttempts),
		orderitem.WithLegacyUpdate(cfg.LegacyItemUpdate),
		orderitem.WithRetryObserver(m.ObserveRetry),
	)

	r := newRouter(deps{
		Auth:       authSvc,
		Users:      users,
		Categories: category.NewPGRepo(db),
		Products:   product.NewPGRepo(db),
		Orders:     order.NewPGRepo(db),
		OrderItems: items,
		Idem:       idem,
		DB:         db,
		Metrics:    m,
		Gatherer:   prometheus.DefaultGatherer,
	})

	srv := &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           r,
		ReadHeaderTimeout: 5 * time.Second,
	}
	go func() {
		log.Printf("[main] http listening on %s", cfg.HTTPAddr)
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[main] http: %v", err)
		}
	}()

	var gsrv *grpcx.Server
	if cfg.GRPCAddr != "" {
		lis, err := net.Listen("tcp", cfg.GRPCAddr)
		if err != nil {
			log.Fatalf("[main] grpc listen %s: %v", cfg.GRPCAddr, err)
		}
		gsrv = grpcx.New(cfg.ServiceName)
		go gsrv.Watch(ctx, db, 10*time.Second)
		go func() {
			if err := gsrv.Serve(lis); err != nil {
				log.Printf("[main] grpc: %v", err)
			}
		}()
	}

	<-ctx.Done()
	log.Println("[main] shutting down")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(shutdownCtx); err != nil {
		log.Printf("[main] http shutdown: %v", err)
	}
	if gsrv != nil {
		gsrv.Stop(5 * time.Second)
	}
	log.Println("[main] bye")
}
