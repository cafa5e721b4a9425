// Package server contains HTTP and WebSocket handlers for the application's API endpoints.
package server

import (
	"context"
	"fmt"
	"log/slog"
	"time"

	_ "github.com/YURESSA/foodgram-st/docs" // swagger docs
	"github.com/YURESSA/foodgram-st/internal/bootstrap"
	"github.com/YURESSA/foodgram-st/internal/config"
	"github.com/YURESSA/foodgram-st/internal/middleware"
	"github.com/YURESSA/foodgram-st/internal/models"
	"github.com/YURESSA/foodgram-st/internal/notifications"
	"github.com/YURESSA/foodgram-st/internal/repository"
	"github.com/YURESSA/foodgram-st/internal/service"
	"github.com/YURESSA/foodgram-st/internal/storage"

	"github.com/ansrivas/fiberprometheus/v2"
	"github.com/goccy/go-json"
	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/helmet"
	"github.com/gofiber/fiber/v2/middleware/limiter"
	"github.com/gofiber/fiber/v2/middleware/recover"
	"github.com/gofiber/fiber/v2/middleware/requestid"
	"github.com/gofiber/swagger"
	"github.com/redis/go-redis/v9"
	"gorm.io/gorm"
)

// Server holds all dependencies and provides handlers
type Server struct {
	config         *config.Config
	db             *gorm.DB
	redis          *redis.Client
	app            *fiber.App
	promMiddleware *fiberprometheus.FiberPrometheus
	shutdownCtx    context.Context
	shutdownFn     context.CancelFunc
	runtime        *bootstrap.Runtime

	tokens   *middleware.TokenManager
	store    storage.Store
	notifier *notifications.Notifier
	hub      *notifications.Hub
	events   *notifications.Publisher

	userService         *service.UserService
	subscriptionService *service.SubscriptionService
	ingredientService   *service.IngredientService
	recipeService       *service.RecipeService
	collectionService   *service.CollectionService
}

// NewServer creates a new server instance with all dependencies
func NewServer(cfg *config.Config) (*Server, error) {
	rt, err := bootstrap.InitRuntime(cfg, bootstrap.Options{IngredientsFile: cfg.IngredientsFile})
	if err != nil {
		return nil, err
	}

	store, err := storage.New(context.Background(), cfg)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, fmt.Errorf("storage init failed: %w", err)
	}

	srv, err := NewServerWithDeps(cfg, rt.DB, rt.Redis, store)
	if err != nil {
		_ = rt.Close(context.Background())
		return nil, err
	}
	srv.runtime = rt
	return srv, nil
}

// NewServerWithDeps creates a Server using already-initialized dependencies.
// Use this in tests or when a bootstrap layer establishes DB/Redis and storage.
func NewServerWithDeps(cfg *config.Config, db *gorm.DB, redisClient *redis.Client, store storage.Store) (*Server, error) {
	if store == nil {
		return nil, fmt.Errorf("storage backend is required")
	}

	userRepo := repository.NewUserRepository(db)
	subRepo := repository.NewSubscriptionRepository(db)
	ingredientRepo := repository.NewIngredientRepository(db)
	recipeRepo := repository.NewRecipeRepository(db)
	collectionRepo := repository.NewCollectionRepository(db)

	images := service.NewImageService(store, cfg)

	server := &Server{
		config:              cfg,
		db:                  db,
		redis:               redisClient,
		promMiddleware:      middleware.InitMetrics("foodgram-api"),
		tokens:              middleware.NewTokenManager(cfg),
		store:               store,
		hub:                 notifications.NewHub(),
		userService:         service.NewUserService(userRepo, images),
		subscriptionService: service.NewSubscriptionService(subRepo, userRepo, recipeRepo),
		ingredientService:   service.NewIngredientService(ingredientRepo),
		recipeService:       service.NewRecipeService(recipeRepo, ingredientRepo, userRepo, images),
		collectionService:   service.NewCollectionService(collectionRepo, recipeRepo),
	}

	if redisClient != nil {
		server.notifier = notifications.NewNotifier(redisClient)
	}
	server.events = notifications.NewPublisher(server.hub, server.notifier)

	return server, nil
}

// App builds the fiber application with middleware and routes installed.
func (s *Server) App() *fiber.App {
	if s.app != nil {
		return s.app
	}

	app := fiber.New(fiber.Config{
		AppName:     "Foodgram API",
		JSONEncoder: json.Marshal,
		JSONDecoder: json.Unmarshal,
		BodyLimit:   s.bodyLimit(),
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			if fe, ok := err.(*fiber.Error); ok {
				return c.Status(fe.Code).JSON(models.ErrorResponse{Error: fe.Message})
			}
			middleware.Logger.ErrorContext(c.UserContext(), "unhandled error", slog.String("error", err.Error()))
			return models.RespondWithError(c, fiber.StatusInternalServerError,
				models.NewInternalError(err))
		},
	})
	s.app = app

	s.SetupMiddleware(app)
	s.SetupRoutes(app)
	return app
}

// bodyLimit leaves room for a base64 encoded image plus the JSON around it.
func (s *Server) bodyLimit() int {
	maxImage := s.config.ImageMaxBytes
	if maxImage <= 0 {
		maxImage = service.DefaultImageMaxBytes
	}
	return maxImage*4/3 + 1<<20
}

// SetupMiddleware configures middleware for the Fiber app
func (s *Server) SetupMiddleware(app *fiber.App) {
	app.Use(recover.New())
	app.Use(requestid.New())
	app.Use(middleware.ContextMiddleware())

	if s.promMiddleware != nil {
		app.Use(middleware.MetricsMiddleware(s.promMiddleware))
	}
	if s.config.TracingEnabled {
		app.Use(middleware.TracingMiddleware())
	}

	app.Use(helmet.New(helmet.Config{CrossOriginResourcePolicy: "cross-origin"}))
	app.Use(middleware.StructuredLogger())

	// CORS runs before the limiter so rejected requests still carry CORS headers.
	origins := s.config.AllowedOrigins
	if origins == "" {
		origins = "http://localhost:3000,http://127.0.0.1:3000"
	}
	app.Use(cors.New(cors.Config{
		AllowOrigins:     origins,
		AllowHeaders:     "Origin, Content-Type, Accept, Authorization, Upgrade, Connection, Sec-WebSocket-Key, Sec-WebSocket-Version",
		AllowCredentials: origins != "*",
		MaxAge:           86400,
	}))

	maxRequests := s.config.RateLimitMax
	if maxRequests <= 0 {
		maxRequests = 300
	}
	window := time.Duration(s.config.RateLimitWindowSeconds) * time.Second
	if window <= 0 {
		window = time.Minute
	}
	app.Use(limiter.New(limiter.Config{
		Max:        maxRequests,
		Expiration: window,
		Next: func(c *fiber.Ctx) bool {
			return c.Method() == fiber.MethodOptions
		},
		KeyGenerator: func(c *fiber.Ctx) string {
			return c.IP()
		},
		LimitReached: func(c *fiber.Ctx) error {
			return c.Status(fiber.StatusTooManyRequests).JSON(models.ErrorResponse{
				Error: "Too many requests, please try again later.",
			})
		},
	}))
}

// SetupRoutes configures all routes for the application
func (s *Server) SetupRoutes(app *fiber.App) {
	app.Get("/health/live", s.LivenessCheck)
	app.Get("/health/ready", s.ReadinessCheck)
	app.Get("/s/:id", s.FollowShortLink)

	if s.promMiddleware != nil {
		s.promMiddleware.RegisterAt(app, "/metrics")
	}
	if local, ok := s.store.(*storage.LocalStore); ok {
		mediaURL := s.config.MediaURL
		if mediaURL == "" {
			mediaURL = "/media"
		}
		app.Static(mediaURL, local.Dir())
	}

	api := app.Group("/api")
	api.Get("/swagger/*", swagger.HandlerDefault)

	loginLimit := s.config.LoginRateLimitMax
	if loginLimit <= 0 {
		loginLimit = 10
	}
	auth := api.Group("/auth/token")
	auth.Post("/login", middleware.RateLimit(s.redis, middleware.RateRule{Name: "login", Max: loginLimit, Window: 5 * time.Minute}), s.Login)
	auth.Post("/logout", s.AuthRequired(), s.Logout)

	// Specific /users/* routes are registered before /users/:id.
	users := api.Group("/users")
	users.Get("/", s.OptionalAuth(), s.ListUsers)
	users.Post("/", middleware.RateLimit(s.redis, middleware.RateRule{Name: "signup", Max: 5, Window: 10 * time.Minute}), s.Register)
	users.Get("/me", s.AuthRequired(), s.GetMe)
	users.Post("/set_password", s.AuthRequired(), s.SetPassword)
	users.Put("/me/avatar", s.AuthRequired(), s.SetAvatar)
	users.Delete("/me/avatar", s.AuthRequired(), s.DeleteAvatar)
	users.Get("/subscriptions", s.AuthRequired(), s.ListSubscriptions)
	users.Post("/:id/subscribe", s.AuthRequired(), s.Subscribe)
	users.Delete("/:id/subscribe", s.AuthRequired(), s.Unsubscribe)
	users.Get("/:id", s.OptionalAuth(), s.GetUser)

	ingredients := api.Group("/ingredients")
	ingredients.Get("/", s.SearchIngredients)
	ingredients.Get("/:id", s.GetIngredient)

	recipes := api.Group("/recipes")
	recipes.Get("/", s.OptionalAuth(), s.ListRecipes)
	recipes.Post("/", s.AuthRequired(), s.CreateRecipe)
	recipes.Get("/download_shopping_cart", s.AuthRequired(), s.DownloadShoppingCart)
	recipes.Post("/:id/favorite", s.AuthRequired(), s.AddToCollection(models.CollectionFavorites))
	recipes.Delete("/:id/favorite", s.AuthRequired(), s.RemoveFromCollection(models.CollectionFavorites))
	recipes.Post("/:id/shopping_cart", s.AuthRequired(), s.AddToCollection(models.CollectionShoppingCart))
	recipes.Delete("/:id/shopping_cart", s.AuthRequired(), s.RemoveFromCollection(models.CollectionShoppingCart))
	recipes.Get("/:id/get-link", s.GetShortLink)
	recipes.Get("/:id", s.OptionalAuth(), s.GetRecipe)
	recipes.Put("/:id", s.AuthRequired(), s.UpdateRecipe)
	recipes.Patch("/:id", s.AuthRequired(), s.UpdateRecipe)
	recipes.Delete("/:id", s.AuthRequired(), s.DeleteRecipe)

	api.Get("/ws", s.WebSocketUpgrade(), s.AuthRequired(), s.WebsocketHandler())
}

// LivenessCheck handles liveness probe requests
func (s *Server) LivenessCheck(c *fiber.Ctx) error {
	return c.Status(fiber.StatusOK).JSON(fiber.Map{
		"status": "up",
		"time":   time.Now(),
	})
}

// ReadinessCheck handles readiness probe requests
func (s *Server) ReadinessCheck(c *fiber.Ctx) error {
	ctx, cancel := context.WithTimeout(c.UserContext(), 5*time.Second)
	defer cancel()

	dbStatus := "healthy"
	sqlDB, err := s.db.DB()
	if err != nil {
		dbStatus = "unhealthy"
	} else if err := sqlDB.PingContext(ctx); err != nil {
		dbStatus = "unhealthy"
	}

	// Redis only backs caching and fan-out, so its absence degrades but does not fail readiness.
	redisStatus := "unavailable"
	if s.redis != nil {
		redisStatus = "healthy"
		if err := s.redis.Ping(ctx).Err(); err != nil {
			redisStatus = "unhealthy"
		}
	}

	status := fiber.StatusOK
	overallStatus := "healthy"
	if dbStatus == "unhealthy" {
		status = fiber.StatusServiceUnavailable
		overallStatus = "unhealthy"
	}

	return c.Status(status).JSON(fiber.Map{
		"status": overallStatus,
		"checks": fiber.Map{
			"database": dbStatus,
			"redis":    redisStatus,
			"storage":  s.store.Backend(),
		},
		"time": time.Now(),
	})
}

// Start starts the server
func (s *Server) Start() error {
	ctx, cancel := context.WithCancel(context.Background())
	s.shutdownCtx = ctx
	s.shutdownFn = cancel

	app := s.App()

	if s.notifier.Enabled() {
		go func() {
			if err := s.hub.StartWiring(s.shutdownCtx, s.notifier); err != nil {
				middleware.Logger.Error("failed to start notification wiring", slog.String("error", err.Error()))
			}
		}()
	}

	middleware.Logger.Info("server starting", slog.String("port", s.config.Port))
	return app.Listen(":" + s.config.Port)
}

// Shutdown gracefully shuts down the server
func (s *Server) Shutdown(ctx context.Context) error {
	if s.shutdownFn != nil {
		s.shutdownFn()
	}

	if s.app != nil {
		if err := s.app.ShutdownWithContext(ctx); err != nil {
			middleware.Logger.Error("error shutting down HTTP server", slog.String("error", err.Error()))
		}
	}

	if err := s.hub.Shutdown(ctx); err != nil {
		middleware.Logger.Error("error shutting down notification hub", slog.String("error", err.Error()))
	}

	if sqlDB, err := s.db.DB(); err == nil {
		if cerr := sqlDB.Close(); cerr != nil {
			middleware.Logger.Error("error closing sql DB", slog.String("error", cerr.Error()))
		}
	}

	if s.redis != nil {
		if rerr := s.redis.Close(); rerr != nil {
			middleware.Logger.Error("error closing redis", slog.String("error", rerr.Error()))
		}
	}

	if s.runtime != nil {
		if terr := s.runtime.ShutdownTracing(ctx); terr != nil {
			middleware.Logger.Error("error flushing traces", slog.String("error", terr.Error()))
		}
	}

	middleware.Logger.Info("server shutdown complete")
	return nil
}
