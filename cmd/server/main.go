package main

import (
	"context"
	"log"

	"github.com/gin-gonic/gin"
	"github.com/redis/go-redis/v9"

	"github.com/treysonbrown/planner-api/internal/config"
	"github.com/treysonbrown/planner-api/internal/database"
	"github.com/treysonbrown/planner-api/internal/events"
	"github.com/treysonbrown/planner-api/internal/handlers"
	"github.com/treysonbrown/planner-api/internal/logging"
	"github.com/treysonbrown/planner-api/internal/middleware"
	"github.com/treysonbrown/planner-api/internal/repository"
	"github.com/treysonbrown/planner-api/internal/services"
)

func main() {
	// Load configuration
	cfg := config.Load()

	// Initialize structured logging
	logging.Init(cfg.LogFile)

	// Set Gin mode
	gin.SetMode(cfg.GinMode)

	// Connect to database
	if err := database.Connect(cfg); err != nil {
		log.Fatalf("Failed to connect to database: %v", err)
	}

	// Run migrations
	if err := database.Migrate(); err != nil {
		log.Fatalf("Failed to run migrations: %v", err)
	}

	// Token verification against the identity provider's key set
	verifier, err := middleware.NewJWKSVerifier(cfg.JWKSURL, cfg.JWTIssuer, cfg.JWTAudience)
	if err != nil {
		log.Fatalf("Failed to load JWKS: %v", err)
	}

	// Redis carries board change events between instances
	redisClient := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
	publisher := events.NewRedisPublisher(redisClient, cfg.BoardEventsChannel)
	hub := events.NewHub()
	go hub.Run(context.Background(), redisClient, cfg.BoardEventsChannel)

	// Initialize repositories and services
	db := database.GetDB()
	userRepo := repository.NewUserRepository(db)
	projectRepo := repository.NewProjectRepository(db)
	columnRepo := repository.NewColumnRepository(db)
	taskRepo := repository.NewTaskRepository(db)

	userService := services.NewUserService(userRepo)
	projectService := services.NewProjectService(projectRepo, columnRepo, taskRepo, userRepo)
	columnService := services.NewColumnService(columnRepo, projectRepo)
	taskService := services.NewTaskService(taskRepo, columnRepo, projectRepo)

	// Initialize handlers
	userHandler := handlers.NewUserHandler(userService)
	projectHandler := handlers.NewProjectHandler(projectService, userService, publisher)
	columnHandler := handlers.NewColumnHandler(columnService, userService, publisher)
	taskHandler := handlers.NewTaskHandler(taskService, userService, publisher)
	streamHandler := handlers.NewStreamHandler(projectService, userService, hub)

	// Initialize Gin router
	r := gin.Default()

	// Health check endpoint
	r.GET("/health", func(c *gin.Context) {
		c.JSON(200, gin.H{
			"status":  "ok",
			"message": "Planner API is running",
		})
	})

	// API routes
	api := r.Group("/api")
	{
		// User routes
		users := api.Group("/users")
		{
			users.GET("/me", middleware.OptionalAuth(verifier), userHandler.Me)
			users.POST("/me", middleware.RequireAuth(verifier), userHandler.UpsertMe)
			users.PUT("/me/username", middleware.RequireAuth(verifier), userHandler.SetUsername)
		}

		// Project routes
		projects := api.Group("/projects")
		{
			projects.GET("", middleware.OptionalAuth(verifier), projectHandler.ListProjects)
			projects.POST("", middleware.RequireAuth(verifier), projectHandler.CreateProject)
			projects.DELETE("/:id", middleware.RequireAuth(verifier), projectHandler.DeleteProject)
			projects.GET("/:id/board", middleware.OptionalAuth(verifier), projectHandler.GetBoard)
			projects.GET("/:id/stream", middleware.RequireAuth(verifier), streamHandler.StreamBoard)
			projects.POST("/:id/columns", middleware.RequireAuth(verifier), columnHandler.CreateColumn)
			projects.PUT("/:id/columns/order", middleware.RequireAuth(verifier), columnHandler.ReorderColumns)
			projects.POST("/:id/invitations", middleware.RequireAuth(verifier), projectHandler.InviteByUsername)
			projects.POST("/:id/tasks", middleware.RequireAuth(verifier), taskHandler.CreateTask)
		}

		// Task routes
		tasks := api.Group("/tasks")
		tasks.Use(middleware.RequireAuth(verifier))
		{
			tasks.PATCH("/:id", taskHandler.UpdateTask)
			tasks.DELETE("/:id", taskHandler.DeleteTask)
			tasks.POST("/:id/move", taskHandler.MoveTask)
			tasks.PUT("/:id/assignees", taskHandler.SetAssignees)
		}
	}

	// Start server
	logging.Logger.WithField("addr", cfg.ListenAddr).Info("Server starting")
	if err := r.Run(cfg.ListenAddr); err != nil {
		log.Fatalf("Failed to start server: %v", err)
	}
}
