package routes

import (
	"context"
	"fmt"
	"log/slog"
	"net/http"
	"time"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/jackc/pgx/v5/pgxpool"
	"github.com/redis/go-redis/v9"
	"go.mongodb.org/mongo-driver/mongo"

	"github.com/freshcart/storefront/internal/auth"
	"github.com/freshcart/storefront/internal/cart"
	"github.com/freshcart/storefront/internal/checkout"
	"github.com/freshcart/storefront/internal/config"
	"github.com/freshcart/storefront/internal/events"
	"github.com/freshcart/storefront/internal/identity"
	"github.com/freshcart/storefront/internal/middleware"
	"github.com/freshcart/storefront/internal/notification"
	"github.com/freshcart/storefront/internal/storage"
	"github.com/freshcart/storefront/internal/wishlist"
)

// Deps aggregates shared dependencies required to wire routes.
type Deps struct {
	Cfg       config.Config
	DB        *pgxpool.Pool
	Mongo     *mongo.Database
	Cache     *redis.Client
	Publisher events.Publisher
	Logger    *slog.Logger
}

// Setup configures middlewares and all application routes.
func Setup(app *fiber.App, d Deps) error {
	if !d.Cfg.IsDev() && d.Cache == nil {
		return fmt.Errorf("redis is required when APP_ENV=%s", d.Cfg.AppEnv)
	}
	users, err := userRepository(d)
	if err != nil {
		return err
	}

	app.Use(recover.New())
	app.Use(middleware.RequestID())
	if d.Cfg.LogFormat == "text" {
		// [HH:MM:SS] 200 -  145ms METHOD /path
		app.Use(logger.New(logger.Config{
			Format:     "[${time}] ${status} -  ${latency} ${method} ${path}\n",
			TimeFormat: "15:04:05",
			TimeZone:   "Local",
		}))
	} else {
		app.Use(middleware.Audit(d.Logger))
	}

	RegisterHealthRoutes(app, d)

	tokens, err := auth.NewTokens(d.Cfg.JWTSecret, d.Cfg.TokenTTL, d.Cfg.AppName)
	if err != nil {
		return err
	}
	identitySvc := identity.NewService(users, auth.NewHasher(d.Cfg.BcryptCost))
	authHandler := auth.NewHandler(auth.NewService(identitySvc, tokens), d.Logger)

	var snapshots, sessions storage.BlobStore
	if d.Cache != nil {
		snapshots = storage.NewRedis(d.Cache, d.Cfg.SnapshotTTL)
		sessions = storage.NewRedis(d.Cache, d.Cfg.CheckoutTTL)
	} else {
		snapshots = storage.NewMemory()
		sessions = storage.NewMemory()
	}
	notifier := notification.NewLoggerNotifier(d.Logger)
	carts := cart.NewRegistry(cart.NewBlobRepository(snapshots), notifier)
	wishlists := wishlist.NewRegistry(wishlist.NewBlobRepository(snapshots), notifier)

	publisher := d.Publisher
	if publisher == nil {
		publisher = events.NewLogPublisher(d.Logger)
	}
	checkoutSvc := checkout.NewService(carts, checkout.NewBlobRepository(sessions), checkout.StaticGateway{},
		publisher, identitySvc, notifier, checkout.Options{
			KeyID:     d.Cfg.PaymentKeyID,
			Currency:  d.Cfg.Currency,
			StoreName: d.Cfg.StoreName,
		}, d.Logger)

	api := app.Group("/api/v1")
	api.Get("/ping", func(c *fiber.Ctx) error {
		return c.Status(http.StatusOK).JSON(fiber.Map{
			"status":     "ok",
			"request_id": middleware.RequestIDFrom(c),
			"timestamp":  time.Now().UTC().Format(time.RFC3339Nano),
		})
	})

	// Public routes
	var replay fiber.Handler
	if d.Cache != nil {
		replay = middleware.Idempotency(d.Cache, d.Cfg.IdempotencyTTL, d.Logger)
	}
	RegisterAuthRoutes(api, authHandler, middleware.LoginRateLimit(d.Cache, d.Cfg.LoginRateLimit), replay)

	// Protected routes
	protected := api.Group("", middleware.JWTAuth(tokens))
	if replay != nil {
		protected.Use(replay)
	}
	RegisterProfileRoute(protected, identitySvc)
	RegisterCartRoutes(protected, cart.NewHandler(carts, d.Logger))
	RegisterWishlistRoutes(protected, wishlist.NewHandler(wishlists, d.Logger))
	RegisterCheckoutRoutes(protected, checkout.NewHandler(checkoutSvc))

	return nil
}

func userRepository(d Deps) (identity.Repository, error) {
	switch d.Cfg.UserStore {
	case config.UserStoreMongo:
		if d.Mongo == nil {
			return nil, fmt.Errorf("mongo is required when USER_STORE=%s", d.Cfg.UserStore)
		}
		repo := identity.NewMongoRepository(d.Mongo)
		ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		if err := repo.EnsureIndexes(ctx); err != nil {
			return nil, err
		}
		return repo, nil
	case config.UserStorePostgres:
		if d.DB == nil {
			return nil, fmt.Errorf("database is required when USER_STORE=%s", d.Cfg.UserStore)
		}
		return identity.NewPostgresRepository(d.DB), nil
	case config.UserStoreMemory:
		return identity.NewMemoryRepository(), nil
	default:
		return nil, fmt.Errorf("unknown user store %q", d.Cfg.UserStore)
	}
}
