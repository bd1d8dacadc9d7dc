package router

import (
	"github.com/commune-app/backend/internal/handlers"
	"github.com/commune-app/backend/internal/middleware"
	"github.com/commune-app/backend/internal/models"
	"github.com/commune-app/backend/internal/repositories"
	"github.com/commune-app/backend/internal/services"
	"github.com/commune-app/backend/pkg/config"
	"github.com/commune-app/backend/pkg/fcm"
	"github.com/labstack/echo/v4"
	eMiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/rs/zerolog"
	"go.mongodb.org/mongo-driver/mongo"
	"gorm.io/gorm"
)

// SetupMiddleware configures global Echo middleware
func SetupMiddleware(e *echo.Echo) {
	e.Use(eMiddleware.Recover())
	e.Use(eMiddleware.CORS())
}

// SetupRoutes configures all application routes and injects dependencies
func SetupRoutes(e *echo.Echo, cfg *config.Config, pgdb *gorm.DB, mgClient *mongo.Client, push *fcm.Client, log zerolog.Logger) error {
	// AutoMigrate PostgreSQL models
	err := pgdb.AutoMigrate(
		&models.User{},
		&models.Group{},
		&models.GroupMember{},
		&models.Comment{},
		&models.Reaction{},
		&models.Notification{},
		&models.Subscription{},
		&models.NotificationPreference{},
	)
	if err != nil {
		return err
	}
	log.Info().Msg("postgres auto-migrations completed")

	// Health check - always accessible
	e.GET("/health", handlers.HealthCheck)

	// --- Repositories ---
	userRepo := repositories.NewPostgresUserRepository(pgdb)
	postRepo := repositories.NewMongoPostRepository(mgClient.Database("commune"))
	commentRepo := repositories.NewPostgresCommentRepository(pgdb)
	reactionRepo := repositories.NewPostgresReactionRepository(pgdb)
	notificationRepo := repositories.NewPostgresNotificationRepository(pgdb)
	subscriptionRepo := repositories.NewPostgresSubscriptionRepository(pgdb)
	preferenceRepo := repositories.NewPostgresPreferenceRepository(pgdb)
	groupRepo := repositories.NewPostgresGroupRepository(pgdb)

	// --- Services ---
	dispatcher := services.NewDispatcher(notificationRepo, userRepo, push, log)
	reactionService := services.NewReactionService(pgdb, postRepo, log)

	// --- Unprotected routes for authentication ---
	authGroup := e.Group("/api/v1/auth")
	authHandler := handlers.NewAuthHandler(userRepo, cfg.JWTSecret)
	authHandler.RegisterAuthRoutes(authGroup)

	// --- Protected routes (require JWT authentication) ---
	api := e.Group("/api/v1")
	api.Use(middleware.JWTAuthMiddleware(cfg.JWTSecret))

	// User account routes
	userHandler := handlers.NewUserHandler(userRepo)
	userHandler.RegisterUserRoutes(api)

	// Reaction routes
	reactionHandler := handlers.NewReactionHandler(reactionService, reactionRepo, postRepo, commentRepo, dispatcher)
	reactionHandler.RegisterReactionRoutes(api)

	// Notification inbox routes
	notificationHandler := handlers.NewNotificationHandler(notificationRepo)
	notificationHandler.RegisterNotificationRoutes(api)

	// Notification preference routes
	preferenceHandler := handlers.NewPreferenceHandler(preferenceRepo)
	preferenceHandler.RegisterPreferenceRoutes(api)

	// Subscription routes
	subscriptionHandler := handlers.NewSubscriptionHandler(subscriptionRepo)
	subscriptionHandler.RegisterSubscriptionRoutes(api)

	// Post routes
	postHandler := handlers.NewPostHandler(postRepo, userRepo, groupRepo, dispatcher)
	postHandler.RegisterPostRoutes(api)

	// Comment routes
	commentHandler := handlers.NewCommentHandler(commentRepo, postRepo, dispatcher)
	commentHandler.RegisterCommentRoutes(api)

	// Group routes
	groupHandler := handlers.NewGroupHandler(groupRepo, postRepo, dispatcher)
	groupHandler.RegisterGroupRoutes(api)

	// Feed routes - readable without a session, reaction markers need one
	feed := e.Group("/api/v1")
	feed.Use(middleware.OptionalJWTAuthMiddleware(cfg.JWTSecret))
	feedHandler := handlers.NewFeedHandler(postRepo, userRepo, reactionRepo)
	feedHandler.RegisterFeedRoutes(feed)

	log.Info().Msg("all routes configured")
	return nil
}
