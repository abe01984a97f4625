package main

import (
	"fmt"
	"log"
	"net/http"
	"time"

	"github.com/Dastan2209/Hideout_Messenger/internal/config"
	"github.com/Dastan2209/Hideout_Messenger/internal/handlers"
	"github.com/Dastan2209/Hideout_Messenger/internal/ipinfo"
	"github.com/Dastan2209/Hideout_Messenger/internal/jobs"
	cronjobs "github.com/Dastan2209/Hideout_Messenger/internal/scheduler"
	"github.com/Dastan2209/Hideout_Messenger/internal/services"
	"github.com/Dastan2209/Hideout_Messenger/internal/storage"
	"github.com/Dastan2209/Hideout_Messenger/internal/store"
	"github.com/Dastan2209/Hideout_Messenger/internal/ws"
	"github.com/Dastan2209/Hideout_Messenger/pkg/logger"
	"github.com/Dastan2209/Hideout_Messenger/pkg/middleware"
	"github.com/gorilla/mux"
	"github.com/rs/cors"
)

func main() {
	// Load configuration from .env file
	cfg := config.LoadConfig()

	logger.InitLogger()
	logger.Log.Info("Logger initialized")

	// Open the local state database
	db, err := storage.NewSQLite(cfg.DBPath)
	if err != nil {
		log.Fatalf("Storage error: %v", err)
	}
	defer db.Close()

	// --- State store ---
	appStore, err := store.New(db, ipinfo.NewClient(cfg.IPLookupURL))
	if err != nil {
		log.Fatalf("Failed to load state store: %v", err)
	}

	hub := ws.NewHub()

	// --- Services ---
	userService := services.NewUserService(appStore, hub)
	friendService := services.NewFriendService(appStore, hub)
	chatService := services.NewChatService(appStore, hub)
	callService := services.NewCallService(appStore, hub)

	// --- Handlers ---
	siteHandler := handlers.NewSiteHandler(userService, cfg)
	userHandler := handlers.NewUserHandler(userService, cfg)
	friendHandler := handlers.NewFriendHandler(friendService)
	chatHandler := handlers.NewChatHandler(chatService)
	callHandler := handlers.NewCallHandler(callService)
	adminHandler := handlers.NewAdminHandler(userService)
	wsHandler := handlers.NewWSHandler(hub, cfg.JWTSecret)

	// Initialize Gorilla Mux router
	router := mux.NewRouter()

	// The lock screen is the only thing reachable without any token
	router.HandleFunc("/site/unlock", siteHandler.UnlockSiteHandler).Methods("POST")

	// Login requires the site to be unlocked first
	loginRoutes := router.PathPrefix("/users/login").Subrouter()
	loginRoutes.Use(middleware.SiteLockMiddleware(cfg.JWTSecret))
	loginRoutes.HandleFunc("", userHandler.LoginUserHandler).Methods("POST")

	// Protected user routes (only authenticated users can access)
	protectedUserRoutes := router.PathPrefix("/users").Subrouter()
	protectedUserRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedUserRoutes.Use(middleware.UpdateLastSeenMiddleware(appStore))
	protectedUserRoutes.HandleFunc("/logout", userHandler.LogoutUserHandler).Methods("POST")
	protectedUserRoutes.HandleFunc("/me", userHandler.GetMeHandler).Methods("GET")
	protectedUserRoutes.HandleFunc("/{id}", userHandler.UpdateUserHandler).Methods("PATCH")

	// Friend routes
	protectedFriendRoutes := router.PathPrefix("/friends").Subrouter()
	protectedFriendRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedFriendRoutes.Use(middleware.UpdateLastSeenMiddleware(appStore))
	protectedFriendRoutes.HandleFunc("", friendHandler.GetFriendsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/candidates", friendHandler.GetCandidatesHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests", friendHandler.GetPendingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/outgoing", friendHandler.GetOutgoingRequestsHandler).Methods("GET")
	protectedFriendRoutes.HandleFunc("/requests/{id}/respond", friendHandler.RespondToFriendRequestHandler).Methods("POST")
	protectedFriendRoutes.HandleFunc("/{id}/request", friendHandler.SendFriendRequestHandler).Methods("POST")

	// Chat routes
	protectedChatRoutes := router.PathPrefix("/chat").Subrouter()
	protectedChatRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedChatRoutes.Use(middleware.UpdateLastSeenMiddleware(appStore))
	protectedChatRoutes.HandleFunc("/{friendId}", chatHandler.GetChatHistory).Methods("GET")
	protectedChatRoutes.HandleFunc("/{friendId}", chatHandler.SendMessageHandler).Methods("POST")

	// Call routes
	protectedCallRoutes := router.PathPrefix("/calls").Subrouter()
	protectedCallRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	protectedCallRoutes.Use(middleware.UpdateLastSeenMiddleware(appStore))
	protectedCallRoutes.HandleFunc("/start", callHandler.StartCallHandler).Methods("POST")
	protectedCallRoutes.HandleFunc("/accept", callHandler.AcceptCallHandler).Methods("POST")
	protectedCallRoutes.HandleFunc("/end", callHandler.EndCallHandler).Methods("POST")
	protectedCallRoutes.HandleFunc("/state", callHandler.GetCallStateHandler).Methods("GET")

	// Admin routes
	adminRoutes := router.PathPrefix("/admin").Subrouter()
	adminRoutes.Use(middleware.AuthMiddleware(cfg.JWTSecret))
	adminRoutes.Use(middleware.RequireRole("admin"))
	adminRoutes.HandleFunc("/users", adminHandler.AdminGetAllUsersHandler).Methods("GET")
	adminRoutes.HandleFunc("/users", adminHandler.AdminCreateUserHandler).Methods("POST")
	adminRoutes.HandleFunc("/users/{id}", adminHandler.AdminDeleteUserHandler).Methods("DELETE")
	adminRoutes.HandleFunc("/site-password", adminHandler.AdminGetSitePasswordHandler).Methods("GET")
	adminRoutes.HandleFunc("/site-password", adminHandler.AdminSetSitePasswordHandler).Methods("PUT")

	// Websocket push channel
	router.HandleFunc("/ws", wsHandler.AttachHandler)

	// Apply middleware for logging
	router.Use(middleware.LoggingMiddleware)

	// Background presence sweep
	sweeper := jobs.NewPresenceSweeper(appStore, hub, time.Duration(cfg.PresenceIdleMin)*time.Minute)
	cronjobs.StartPresenceCronJobs(sweeper)

	// Start the HTTP server
	port := cfg.Port
	c := cors.New(cors.Options{
		AllowedOrigins:   []string{cfg.AllowedOrigin},
		AllowedMethods:   []string{"GET", "POST", "PUT", "DELETE", "OPTIONS", "PATCH"},
		AllowedHeaders:   []string{"Authorization", "Content-Type"},
		AllowCredentials: true,
	})

	handler := c.Handler(router)

	fmt.Printf("Server running on port %s\n", port)
	log.Fatal(http.ListenAndServe(":"+port, handler))
}
