package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/campuslib/backend/config"
	"github.com/campuslib/backend/handlers"
	"github.com/campuslib/backend/logger"
	"github.com/campuslib/backend/middleware"
	"github.com/campuslib/backend/realtime"
	"github.com/campuslib/backend/service"
	"github.com/campuslib/backend/store"
	"github.com/go-chi/chi/v5"
	chimw "github.com/go-chi/chi/v5/middleware"
	"github.com/joho/godotenv"
)

func main() {
	_ = godotenv.Load()

	cfg, err := config.Load()
	if err != nil {
		log.Fatal("config:", err)
	}
	if cfg.Env == "prod" || cfg.Env == "production" {
		config.ValidateEnv()
	}

	zl, err := logger.New(cfg.Env)
	if err != nil {
		log.Fatal("logger:", err)
	}
	defer zl.Sync()

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	db, err := store.NewMongoDB(ctx, cfg.MongoURI, cfg.DBName)
	if err != nil {
		zl.Fatal("mongodb connect", "error", err)
	}
	zl.Info("connected to MongoDB", "db", cfg.DBName)
	defer func() {
		if err := db.Disconnect(context.Background()); err != nil {
			zl.Warn("mongodb disconnect", "error", err)
		}
	}()

	var s3Service *service.S3Service
	if cfg.S3Bucket != "" {
		s3Service, err = service.NewS3Service(ctx, cfg.S3Bucket, cfg.S3Region, cfg.S3AccessKeyID, cfg.S3SecretKey)
		if err != nil {
			zl.Fatal("s3", "error", err)
		}
	} else {
		zl.Warn("AWS_S3_BUCKET not set; uploads and downloads will fail")
	}

	var bus realtime.Bus
	if cfg.RedisAddr != "" {
		bus, err = realtime.NewRedisBus(cfg.RedisAddr, cfg.RedisChannel, zl)
		if err != nil {
			zl.Fatal("redis", "error", err)
		}
		defer bus.Close()
	} else {
		zl.Warn("REDIS_ADDR not set; change feeds stay instance-local")
	}
	hub := realtime.NewHub(bus, zl)
	if err := hub.Start(ctx); err != nil {
		zl.Fatal("change-feed forwarder", "error", err)
	}

	roles := &service.RoleResolver{Store: db, Log: zl}
	aiClient := service.NewAIClient(cfg.AIGatewayURL, cfg.AIAPIKey, cfg.AIModel, zl)
	booksAPI := service.NewBooksAPI(cfg.BooksAPIURL)
	notifier := &service.Notifier{
		Host: cfg.SMTPHost,
		Port: cfg.SMTPPort,
		User: cfg.SMTPUser,
		Pass: cfg.SMTPPass,
		From: cfg.MailFrom,
		Log:  zl,
	}

	authHandler := &handlers.AuthHandler{
		DB:         db,
		Roles:      roles,
		JWTSecret:  cfg.JWTSecret,
		AdminEmail: cfg.AdminEmail,
		AdminPass:  cfg.AdminPass,
		Log:        zl,
	}
	booksHandler := &handlers.BooksHandler{
		DB:       db,
		S3:       s3Service,
		Hub:      hub,
		MaxBytes: cfg.MaxUploadMB * 1024 * 1024,
		Log:      zl,
	}
	categoriesHandler := &handlers.CategoriesHandler{DB: db, Hub: hub}
	issuesHandler := &handlers.IssuesHandler{DB: db, Hub: hub, Notifier: notifier, Log: zl}
	membersHandler := &handlers.MembersHandler{DB: db, Log: zl}
	historyHandler := &handlers.HistoryHandler{DB: db, Hub: hub}
	preferencesHandler := &handlers.PreferencesHandler{DB: db}
	searchHandler := &handlers.SearchHandler{API: booksAPI}
	recommendHandler := &handlers.RecommendHandler{
		Store:     db,
		AI:        aiClient,
		JWTSecret: cfg.JWTSecret,
		Log:       zl,
	}
	reportsHandler := &handlers.ReportsHandler{Store: db}
	realtimeHandler := &handlers.RealtimeHandler{Hub: hub}

	r := chi.NewRouter()
	r.Use(middleware.AllowAll())
	r.Use(chimw.Logger)
	r.Use(chimw.Recoverer)
	r.Use(chimw.RealIP)

	r.Get("/", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"message":"welcome to the university library."}`))
	})
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.WriteHeader(http.StatusOK)
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Post("/auth/signup", authHandler.Signup)
		r.Post("/auth/login", authHandler.Login)

		// The recommendation proxy takes an optional bearer; it must stay
		// reachable unauthenticated.
		r.Post("/recommendations", recommendHandler.Recommend)

		r.Get("/search", searchHandler.Search)
		r.Get("/search/isbn/{isbn}", searchHandler.ByISBN)
		r.Get("/search/{id}", searchHandler.ByID)

		// Authenticated routes
		r.Group(func(r chi.Router) {
			r.Use(middleware.Auth(cfg.JWTSecret))

			r.Get("/me", authHandler.Me)
			r.Put("/me/profile", authHandler.UpdateProfile)

			r.Get("/books", booksHandler.List)
			r.Get("/books/{id}", booksHandler.Get)
			r.Get("/books/{id}/related", booksHandler.Related)
			r.Get("/books/{id}/download", booksHandler.Download)
			r.Get("/categories", categoriesHandler.List)

			r.Get("/history", historyHandler.List)
			r.Post("/history", historyHandler.Save)
			r.Delete("/history/{bookId}", historyHandler.Delete)

			r.Get("/preferences", preferencesHandler.Get)
			r.Put("/preferences", preferencesHandler.Put)
			r.Post("/feedback", preferencesHandler.PostFeedback)

			r.Get("/realtime", realtimeHandler.Stream)

			// Staff routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.WithRole(roles))
				r.Use(middleware.RequireStaff)

				r.Get("/issues", issuesHandler.List)
				r.Post("/issues", issuesHandler.Create)
				r.Post("/issues/{id}/return", issuesHandler.Return)
				r.Get("/reports", reportsHandler.Report)
			})

			// Admin routes
			r.Group(func(r chi.Router) {
				r.Use(middleware.WithRole(roles))
				r.Use(middleware.RequireAdmin)

				r.Post("/books", booksHandler.Create)
				r.Put("/books/{id}", booksHandler.Update)
				r.Delete("/books/{id}", booksHandler.Delete)
				r.Post("/books/{id}/upload", booksHandler.Upload)

				r.Post("/categories", categoriesHandler.Create)
				r.Put("/categories/{id}", categoriesHandler.Update)
				r.Delete("/categories/{id}", categoriesHandler.Delete)

				r.Get("/admin/members", membersHandler.List)
				r.Post("/admin/roles", membersHandler.GrantRole)
				r.Delete("/admin/roles", membersHandler.RevokeRole)

				r.Post("/admin/issues/reminders", issuesHandler.SendReminders)
			})
		})
	})

	server := &http.Server{Addr: ":" + cfg.Port, Handler: r}
	go func() {
		zl.Info("server listening", "port", cfg.Port)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			zl.Fatal("server", "error", err)
		}
	}()

	<-ctx.Done()
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		zl.Warn("shutdown", "error", err)
	}
}
