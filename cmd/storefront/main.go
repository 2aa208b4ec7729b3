package main

import (
	"context"
	"errors"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/sarthaksaklani/enakart/internal/address"
	"github.com/sarthaksaklani/enakart/internal/auth"
	"github.com/sarthaksaklani/enakart/internal/cache"
	"github.com/sarthaksaklani/enakart/internal/cart"
	"github.com/sarthaksaklani/enakart/internal/config"
	"github.com/sarthaksaklani/enakart/internal/coupon"
	"github.com/sarthaksaklani/enakart/internal/db"
	"github.com/sarthaksaklani/enakart/internal/events"
	storeHttp "github.com/sarthaksaklani/enakart/internal/handler/http"
	"github.com/sarthaksaklani/enakart/internal/notification"
	"github.com/sarthaksaklani/enakart/internal/order"
	"github.com/sarthaksaklani/enakart/internal/product"
	"github.com/sarthaksaklani/enakart/internal/review"
	"github.com/sarthaksaklani/enakart/internal/seller"
	"github.com/sarthaksaklani/enakart/internal/user"
	"github.com/sarthaksaklani/enakart/internal/wishlist"
)

const idempotencyTTL = 24 * time.Hour

func setupLogger(cfg config.AppConfig) {
	level, err := zerolog.ParseLevel(cfg.LogLevel)
	if err != nil || level == zerolog.NoLevel {
		level = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(level)

	if cfg.Env == "development" {
		log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	}
	log.Logger = log.With().Str("service", cfg.Name).Logger()
}

func main() {
	cfg, err := config.NewConfig()
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to load config")
	}
	setupLogger(cfg.App)

	log.Info().Str("env", cfg.App.Env).Msg("Storefront starting...")

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	pg, err := db.New(ctx, cfg.Postgres)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to database")
	}
	defer pg.Close()

	if cfg.Postgres.Migrate {
		if err := pg.Migrate(); err != nil {
			log.Fatal().Err(err).Msg("Failed to apply migrations")
		}
	}

	rdb, err := cache.New(ctx, cfg.Redis)
	if err != nil {
		log.Fatal().Err(err).Msg("Failed to connect to redis")
	}
	defer func() {
		if err := rdb.Close(); err != nil {
			log.Error().Err(err).Msg("Failed to close redis client")
		}
	}()

	userRepository := user.NewRepository(pg.Pool)
	userSvc := user.NewService(userRepository)
	authSvc := auth.NewService(auth.NewRedisStore(rdb), userSvc, cfg.Auth)

	productRepository := product.NewRepository(pg.Pool)
	productCache := product.NewRedisCache(rdb, cfg.Catalog.ProductCacheTTL)
	productSvc := product.NewService(productRepository, productCache)

	cartRepository := cart.NewRepository(pg.Pool)
	cartSvc := cart.NewService(cartRepository, productRepository)

	addressSvc := address.NewService(address.NewRepository(pg.Pool))
	couponSvc := coupon.NewService(coupon.NewRepository(pg.Pool))
	notificationSvc := notification.NewService(notification.NewRepository(pg.Pool))

	// Without a broker, order events are turned into notifications in process.
	var (
		publisher events.Publisher
		producer  *events.Producer
	)
	producerCtx, stopProducer := context.WithCancel(context.Background())
	defer stopProducer()
	if cfg.Kafka.Enabled() {
		producer = events.NewProducer(cfg.Kafka.Brokers, cfg.Kafka.OrderTopic, 256)
		producer.Start(producerCtx)
		publisher = producer
		log.Info().Strs("brokers", cfg.Kafka.Brokers).Str("topic", cfg.Kafka.OrderTopic).Msg("Publishing order events to Kafka")
	} else {
		publisher = events.NewDispatcher(notificationSvc.HandleOrderEvent)
		log.Info().Msg("Kafka not configured, delivering order events in process")
	}

	orderSvc := order.NewService(order.NewRepository(pg.Pool), order.Dependencies{
		Products:    productRepository,
		Cart:        cartRepository,
		Addresses:   addressSvc,
		Coupons:     couponSvc,
		Publisher:   publisher,
		StockCache:  productCache,
		Idempotency: cache.NewIdempotency(rdb, "orders", idempotencyTTL),
	}, cfg.Order)

	reviewSvc := review.NewService(review.NewRepository(pg.Pool), productRepository)
	wishlistSvc := wishlist.NewService(wishlist.NewRepository(pg.Pool), productRepository)
	sellerSvc := seller.NewService(seller.NewRepository(pg.SQLX), cfg.Seller)

	router := storeHttp.NewRouter(userSvc, pg.Pool,
		storeHttp.NewAuthHandler(authSvc, userSvc),
		storeHttp.NewCatalogHandler(productSvc),
		storeHttp.NewCartHandler(cartSvc),
		storeHttp.NewAddressHandler(addressSvc),
		storeHttp.NewCouponHandler(couponSvc),
		storeHttp.NewOrderHandler(orderSvc),
		storeHttp.NewReviewHandler(reviewSvc),
		storeHttp.NewWishlistHandler(wishlistSvc),
		storeHttp.NewNotificationHandler(notificationSvc),
		storeHttp.NewSellerHandler(productSvc, orderSvc, sellerSvc),
	)

	server := &http.Server{
		Addr:         ":" + cfg.App.Port,
		Handler:      router,
		ReadTimeout:  10 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  120 * time.Second,
	}

	go func() {
		log.Info().Str("port", cfg.App.Port).Msg("Starting HTTP server")
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatal().Err(err).Msg("Server failed")
		}
	}()

	<-ctx.Done()
	log.Info().Msg("Shutting down server...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 15*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Error().Err(err).Msg("Server shutdown failed")
	}

	if producer != nil {
		stopProducer()
		producer.WaitClosed()
		log.Info().Msg("Order event producer drained")
	}

	log.Info().Msg("Storefront stopped gracefully")
}
