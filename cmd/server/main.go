package main

import (
	"context"
	"encoding/json"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/facegate/backend/internal/audit"
	"github.com/facegate/backend/internal/config"
	"github.com/facegate/backend/internal/database"
	"github.com/facegate/backend/internal/handlers"
	mW "github.com/facegate/backend/internal/middleware"
	"github.com/facegate/backend/internal/services"
)

func main() {
	cfg := config.Load()
	if cfg.Session.SecretKey == "" {
		log.Fatal("SESSION_SECRET_KEY must be set")
	}

	ctx := context.Background()
	awsClients, err := database.NewAWSClients(ctx, cfg.AWS)
	if err != nil {
		log.Fatalf("Failed to initialize AWS clients: %v", err)
	}

	redisClient := database.InitRedis(cfg.Redis)
	if redisClient != nil {
		defer redisClient.Close()
	}

	userStore := database.NewUserStore(awsClients.DynamoDB, cfg.Storage.UsersTable)
	logStore := database.NewLoginLogStore(awsClients.DynamoDB, cfg.Storage.LogsTable)
	auditLogger := audit.NewLogger(logStore)

	sessionManager := mW.NewSessionManager(cfg.Session, redisClient)
	ingestor := services.NewImageIngestor(cfg.Upload.TempDir)
	resolver := services.NewRecognitionService(awsClients.Rekognition, cfg.Storage.CollectionID)
	enrollmentService := services.NewEnrollmentService(ingestor, awsClients.Rekognition, awsClients.Rekognition, awsClients.S3, userStore, cfg.Storage.Bucket, cfg.Storage.CollectionID)
	authService := services.NewAuthService(ingestor, resolver, userStore, auditLogger, sessionManager)
	accountService := services.NewAccountService(userStore)
	cleanupService := services.NewCleanupService(cfg.Upload.TempDir, cfg.Upload.MaxAge)
	pageHandler := handlers.NewPageHandler(sessionManager)

	r := chi.NewRouter()

	r.Use(mW.SecurityHeaders)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.RealIP)
	r.Use(middleware.Timeout(60 * time.Second))

	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{"https://*", "http://*"},
		AllowedMethods:   []string{"GET", "POST", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type"},
		AllowCredentials: true,
		MaxAge:           86400,
	}))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		json.NewEncoder(w).Encode(map[string]string{"status": "healthy"})
	})

	// HTML pages
	r.Get("/", pageHandler.Home)
	r.Get("/login", pageHandler.Login)
	r.Get("/admin", pageHandler.Admin)
	r.Get("/dashboard", pageHandler.Dashboard)

	// Static assets
	r.Handle("/static/*", http.StripPrefix("/static/",
		mW.StaticFileServer("./static")))

	// API routes
	r.Route("/api", func(r chi.Router) {
		// Public endpoints (no session required)
		r.Post("/login", authService.Login)
		r.Post("/admin-login", authService.AdminLogin)
		r.Post("/create-first-admin", enrollmentService.CreateFirstAdmin)
		r.Post("/cleanup-temp", cleanupService.CleanupTemp)

		// Any authenticated session
		r.Group(func(r chi.Router) {
			r.Use(sessionManager.RequireUser)
			r.Get("/account-info", accountService.GetAccountInfo)
			r.Post("/logout", authService.Logout)
		})

		// Admin endpoints
		r.Group(func(r chi.Router) {
			r.Use(sessionManager.RequireAdmin)
			r.Post("/add-user", enrollmentService.AddUser)
			r.Get("/users", accountService.ListUsers)
		})
	})

	server := &http.Server{
		Addr:         ":" + cfg.Port,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on :%s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Server shutting down...")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Fatal("Server forced to shutdown:", err)
	}

	log.Println("Server stopped")
}
