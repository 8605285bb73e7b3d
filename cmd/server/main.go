package main

import (
	"fmt"
	"log"
	"net/http"

	"github.com/gatherly-app/gatherly/internal/config"
	"github.com/gatherly-app/gatherly/internal/database"
	"github.com/gatherly-app/gatherly/internal/handlers"
	"github.com/gatherly-app/gatherly/internal/jobs"
	"github.com/gatherly-app/gatherly/internal/repository"
	scheduler "github.com/gatherly-app/gatherly/internal/scheduler"
	"github.com/gatherly-app/gatherly/internal/services"
	"github.com/gatherly-app/gatherly/pkg/logger"
	"github.com/gatherly-app/gatherly/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Connect to MongoDB
	db, err := database.ConnectDB(cfg)
	if err != nil {
		log.Fatalf("Database connection error: %v", err)
	}

	// --- Repositories ---
	userRepo := repository.NewUserRepository(db)
	eventRepo := repository.NewEventRepository(db)
	friendRepo := repository.NewFriendRepository(db)
	activityRepo := repository.NewActivityRepository(db)
	notificationRepo := repository.NewNotificationRepository(db)

	// --- Services ---
	visibilityService := services.NewVisibilityService()
	notificationService := services.NewNotificationService(notificationRepo)
	reputationService := services.NewReputationService(userRepo, notificationService)
	userService := services.NewUserService(userRepo, visibilityService)
	friendService := services.NewFriendService(friendRepo, userRepo)
	eventService := services.NewEventService(eventRepo, reputationService)
	feedService := services.NewFeedService(userRepo, eventRepo, activityRepo, visibilityService)

	completionJob := jobs.NewEventCompletionJob(eventRepo, reputationService)

	// --- Handlers ---
	userHandler := handlers.NewUserHandler(userService, cfg)
	friendHandler := handlers.NewFriendHandler(friendService)
	eventHandler := handlers.NewEventHandler(eventService)
	feedHandler := handlers.NewFeedHandler(feedService)
	notificationHandler := handlers.NewNotificationHandler(notificationService)
	adminHandler := handlers.NewAdminHandler(completionJob)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// Public user routes
	router.HandleFunc("/users/register", userHandler.RegisterUserHandler).Methods("POST")
	router.HandleFunc("/users/login", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.HandleFunc("/status", userHandler.PostStatusHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/visibility", userHandler.SetVisibilityHandler).Methods("PUT")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.GetUserHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")
	protectedUserRoutes.HandleFunc("/{id}/block", userHandler.BlockUserHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/{id}/block", userHandler.UnblockUserHandler).Methods("DELETE")

	// Friend routes
	protectedFriendRoutes := router.PathPrefix("/friends").Subrouter()
	protectedFriendRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedFriendRoutes.HandleFunc("/{id}/request", friendHandler.SendFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/requests", friendHandler.GetPendingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/{id}/respond", friendHandler.RespondToFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("", friendHandler.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/{id}", friendHandler.RemoveFriendHandler).Methods("DELETE")

	// Event routes
	protectedEventRoutes := router.PathPrefix("/events").Subrouter()
	protectedEventRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedEventRoutes.HandleFunc("", eventHandler.CreateEventHandler).Methods("POST")
	protectedEventRoutes.HandleFunc("/mine", eventHandler.GetMyEventsHandler).Methods("GET")
	protectedEventRoutes.HandleFunc("/{id}", eventHandler.GetEventHandler).Methods("GET")
	protectedEventRoutes.HandleFunc("/{id}/join", eventHandler.JoinEventHandler).Methods("POST")
	protectedEventRoutes.HandleFunc("/{id}/leave", eventHandler.LeaveEventHandler).Methods("POST")
	protectedEventRoutes.HandleFunc("/{id}/cancel", eventHandler.CancelEventHandler).Methods("POST")
	protectedEventRoutes.HandleFunc("/{id}/ban/{userId}", eventHandler.BanAttendeeHandler).Methods("POST")

	// Feed routes
	protectedFeedRoutes := router.PathPrefix("/feed").Subrouter()
	protectedFeedRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedFeedRoutes.HandleFunc("", feedHandler.GetFeedHandler).Methods("GET")
	protectedFeedRoutes.HandleFunc("/refresh", feedHandler.RefreshFeedHandler).Methods("GET")

	// Notification routes
	protectedNotifRoutes := router.PathPrefix("/notifications").Subrouter()
	protectedNotifRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedNotifRoutes.HandleFunc("", notificationHandler.GetUserNotificationsHandler).Methods("GET")
	protectedNotifRoutes.HandleFunc("/{id}/read", notificationHandler.MarkAsReadHandler).Methods("POST")
	protectedNotifRoutes.HandleFunc("/{id}", notificationHandler.DeleteNotificationHandler).Methods("DELETE")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/completion/run", adminHandler.RunCompletionHandler).Methods("POST")

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Start the completion batch cron
	scheduler.StartCompletionCron(cfg.CompletionCronSpec, completionJob, notificationService)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{"http://localhost:3000"}, // adjust to frontend origin
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
