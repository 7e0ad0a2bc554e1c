package main

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"github.com/go-redis/redis/v8"
	_ "github.com/go-sql-driver/mysql"
	echojwt "github.com/labstack/echo-jwt/v4"
	"github.com/labstack/echo/v4"
	"github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog/log"
	"github.com/segmentio/kafka-go"
	"golang.org/x/time/rate"

	"github.com/abuind/ASIA-Mart-1/internal/api"
	"github.com/abuind/ASIA-Mart-1/internal/auth"
	"github.com/abuind/ASIA-Mart-1/internal/cart"
	"github.com/abuind/ASIA-Mart-1/internal/catalog"
	"github.com/abuind/ASIA-Mart-1/internal/config"
	"github.com/abuind/ASIA-Mart-1/internal/consumer"
	"github.com/abuind/ASIA-Mart-1/internal/customer"
	"github.com/abuind/ASIA-Mart-1/internal/order"
	"github.com/abuind/ASIA-Mart-1/internal/report"
	"github.com/abuind/ASIA-Mart-1/internal/seed"
	"github.com/abuind/ASIA-Mart-1/internal/session"
	"github.com/abuind/ASIA-Mart-1/internal/storage"
)

func connectDB(dsn string) (*sql.DB, error) {
	var db *sql.DB
	var err error
	for i := 0; i < 10; i++ {
		db, err = sql.Open("mysql", dsn)
		if err == nil {
			err = db.Ping()
			if err == nil {
				log.Info().Msg("connected to database")
				return db, nil
			}
		}
		log.Warn().Err(err).Int("attempt", i+1).Msg("database not ready, retrying")
		time.Sleep(3 * time.Second)
	}
	return nil, fmt.Errorf("failed to connect to database after retries: %w", err)
}

func main() {
	cfg := config.Load()
	ctx := context.Background()

	sqlDB, err := connectDB(cfg.DSN)
	if err != nil {
		log.Fatal().Err(err).Msg("database connection failed")
	}

	db, err := storage.Open(ctx, sqlDB)
	if err != nil {
		log.Fatal().Err(err).Msg("storage open failed")
	}

	rdb := redis.NewClient(&redis.Options{
		Addr: cfg.RedisAddr,
	})
	sessions := session.NewManager(rdb)

	var writer *kafka.Writer
	if cfg.KafkaEnabled {
		writer = config.NewKafkaWriter(cfg.OrderTopic)
		defer writer.Close()
	}

	catalogSvc := catalog.NewService(db)
	cartSvc := cart.NewService(db, catalogSvc)
	orderSvc := order.NewService(db, catalogSvc, cartSvc, writer)
	authSvc := auth.NewService(db, sessions, []byte(cfg.JWTSecret))
	customerSvc := customer.NewService(db)
	reportSvc := report.NewService(db)

	if err := seed.Run(ctx, db); err != nil {
		log.Fatal().Err(err).Msg("seeding failed")
	}

	if cfg.KafkaEnabled {
		reader := config.NewKafkaReader(cfg.OrderTopic, "inventory-sync")
		go consumer.New(catalogSvc, reader).Run(ctx)
	}

	products := api.NewProductHandler(catalogSvc)
	carts := api.NewCartHandler(cartSvc, authSvc, sessions)
	orders := api.NewOrderHandler(orderSvc, authSvc, sessions)
	authn := api.NewAuthHandler(authSvc)
	admin := api.NewAdminHandler(db, catalogSvc, orderSvc, customerSvc, reportSvc)

	e := echo.New()

	limiterConfig := middleware.RateLimiterConfig{
		Skipper: middleware.DefaultSkipper,
		Store: middleware.NewRateLimiterMemoryStoreWithConfig(
			middleware.RateLimiterMemoryStoreConfig{
				Rate:      rate.Limit(20),
				Burst:     50,
				ExpiresIn: 3 * time.Minute,
			}),
		IdentifierExtractor: func(context echo.Context) (string, error) {
			return context.Request().RemoteAddr, nil
		},
		ErrorHandler: func(context echo.Context, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
		DenyHandler: func(context echo.Context, identifier string, err error) error {
			return context.JSON(429, map[string]string{"error": "rate limit exceeded"})
		},
	}

	e.Use(middleware.Logger())
	e.Use(middleware.Recover())
	e.Use(middleware.RateLimiterWithConfig(limiterConfig))

	e.GET("/products", products.List)
	e.GET("/products/:id", products.Get)
	e.GET("/products/:id/stock", products.Stock)

	e.POST("/auth/register", authn.Register)
	e.POST("/auth/login", authn.Login)
	e.POST("/auth/logout", authn.Logout)

	e.GET("/cart", carts.Get)
	e.GET("/cart/count", carts.Count)
	e.POST("/cart/items", carts.AddItem)
	e.PUT("/cart/items/:id", carts.UpdateItem)
	e.DELETE("/cart/items/:id", carts.RemoveItem)
	e.DELETE("/cart", carts.Clear)

	e.POST("/orders", orders.Checkout)
	e.GET("/orders", orders.Mine)
	e.GET("/orders/:id", orders.Get)

	g := e.Group("/admin")
	g.Use(echojwt.JWT([]byte(cfg.JWTSecret)))
	g.Use(api.RequireAdmin)

	g.POST("/products", admin.CreateProduct)
	g.PUT("/products/:id", admin.UpdateProduct)
	g.DELETE("/products/:id", admin.DeleteProduct)
	g.PUT("/products/:id/stock", admin.SetStock)

	g.GET("/orders", admin.ListOrders)
	g.PUT("/orders/:id/status", admin.SetOrderStatus)
	g.PUT("/orders/:id/payment", admin.ConfirmPayment)

	g.GET("/customers", admin.ListCustomers)
	g.GET("/customers/:id", admin.GetCustomer)

	g.GET("/dashboard", admin.Dashboard)
	g.GET("/reports/:name", admin.Report)
	g.GET("/export/:name", admin.Export)

	e.GET("/health", func(c echo.Context) error {
		return c.JSON(200, map[string]interface{}{
			"status":  "ok",
			"service": "asia-mart",
			"time":    time.Now().Format(time.RFC3339),
		})
	})

	e.Logger.Fatal(e.Start(cfg.ListenAddr))
}
