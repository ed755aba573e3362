package main

import (
	"os"
	"os/signal"
	"syscall"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/fiber/v2/middleware/cors"
	"github.com/gofiber/fiber/v2/middleware/logger"
	"github.com/sirupsen/logrus"
	"github.com/spf13/viper"
	"golang.org/x/crypto/bcrypt"

	"storeapp/internal/database"
	"storeapp/internal/handlers"
	"storeapp/internal/middleware"
	"storeapp/internal/repositories"
	"storeapp/internal/retry"
	"storeapp/internal/services"
	"storeapp/pkg/rabbitmq"
)

// NewApp wires repositories, services, and handlers onto a Fiber app.
// The gateway and publisher are injected so tests can supply an
// in-memory database and a mock broker.
func NewApp(gw *database.Gateway, publisher services.EventPublisher, jwtSecret string) (*fiber.App, *services.AuthService) {
	db := gw.DB()
	userRepo := repositories.NewGORMUserRepository(db)
	storeRepo := repositories.NewGORMStoreRepository(db)
	ratingRepo := repositories.NewGORMRatingRepository(db)

	authService := services.NewAuthService(userRepo, jwtSecret)
	ratingService := services.NewRatingService(ratingRepo, storeRepo, publisher)
	storeService := services.NewStoreService(storeRepo, userRepo, ratingRepo, publisher, retry.Default())
	adminService := services.NewAdminService(userRepo, storeRepo, ratingRepo, publisher)

	authHandler := handlers.NewAuthHandler(authService)
	userHandler := handlers.NewUserHandler(authService)
	storeHandler := handlers.NewStoreHandler(storeService)
	ratingHandler := handlers.NewRatingHandler(ratingService)
	adminHandler := handlers.NewAdminHandler(adminService, storeService)
	ownerHandler := handlers.NewOwnerHandler(storeService)

	app := fiber.New()
	app.Use(logger.New())
	app.Use(cors.New())

	api := app.Group("/api")

	// Public routes; store listings decode a token when present so the
	// caller's own ratings can be attached.
	authHandler.RegisterRoutes(api)
	storeHandler.RegisterRoutes(api.Group("", middleware.OptionalAuth(authService)))

	// Authenticated routes.
	authed := api.Group("", middleware.AuthRequired(authService))
	userHandler.RegisterRoutes(authed)
	ratingHandler.RegisterRoutes(authed)

	// Role-gated routes.
	adminHandler.RegisterRoutes(authed.Group("/admin", middleware.RequireAdmin()))
	ownerHandler.RegisterRoutes(authed.Group("/store-owner", middleware.RequireStoreOwner()))

	app.Get("/health", func(c *fiber.Ctx) error {
		return c.Status(fiber.StatusOK).JSON(fiber.Map{
			"status": "healthy",
		})
	})

	return app, authService
}

func main() {
	viper.SetDefault("APP_PORT", ":8080")
	viper.SetDefault("DB_DRIVER", "mysql")
	viper.SetDefault("DATABASE_DSN", "root:@tcp(127.0.0.1:3306)/store_app?charset=utf8mb4&parseTime=True&loc=Local")
	viper.SetDefault("JWT_SECRET", "change-me")
	viper.SetDefault("RABBITMQ_URL", "")
	viper.SetDefault("ADMIN_EMAIL", "admin@admin.com")
	viper.SetDefault("ADMIN_PASSWORD", "Admin@123")
	viper.AutomaticEnv()

	gw, err := database.Open(database.Config{
		Driver: viper.GetString("DB_DRIVER"),
		DSN:    viper.GetString("DATABASE_DSN"),
	})
	if err != nil {
		logrus.Fatalf("Failed to open database: %v", err)
	}
	defer gw.Close()

	if err := gw.Migrate(); err != nil {
		logrus.Fatalf("Failed to migrate database: %v", err)
	}

	adminHash, err := bcrypt.GenerateFromPassword([]byte(viper.GetString("ADMIN_PASSWORD")), bcrypt.DefaultCost)
	if err != nil {
		logrus.Fatalf("Failed to hash admin password: %v", err)
	}
	if err := gw.SeedAdmin("System Administrator", viper.GetString("ADMIN_EMAIL"), string(adminHash)); err != nil {
		logrus.Fatalf("Failed to seed admin: %v", err)
	}

	// RabbitMQ is optional; without it the services simply skip event
	// publication.
	var publisher services.EventPublisher
	var mqClient *rabbitmq.Client
	if mqURL := viper.GetString("RABBITMQ_URL"); mqURL != "" {
		mqClient, err = rabbitmq.NewClient(rabbitmq.Config{URL: mqURL})
		if err != nil {
			logrus.Warnf("Failed to initialize RabbitMQ client, events disabled: %v", err)
		} else {
			publisher = mqClient
			defer mqClient.Close()

			// Audit consumer: every published domain event lands in the
			// application log.
			go func() {
				logrus.Info("Starting domain event audit consumer")
				if err := mqClient.Consume("storeapp.audit", "#", rabbitmq.AuditLogHandler); err != nil {
					logrus.Errorf("Failed to start audit consumer: %v", err)
				}
			}()
		}
	}

	app, _ := NewApp(gw, publisher, viper.GetString("JWT_SECRET"))

	appPort := viper.GetString("APP_PORT")
	logrus.Infof("Starting server on port %s", appPort)

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	go func() {
		if err := app.Listen(appPort); err != nil {
			logrus.Fatalf("Server failed to start: %v", err)
		}
	}()

	<-quit
	logrus.Info("Shutting down server...")
	if err := app.Shutdown(); err != nil {
		logrus.Errorf("Error during Fiber shutdown: %v", err)
	}
	logrus.Info("Server gracefully stopped")
}
