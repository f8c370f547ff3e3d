package main

import (
	"context"
	"fmt"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"noteboard-server/internal/ai"
	"noteboard-server/internal/config"
	"noteboard-server/internal/domain"
	"noteboard-server/internal/handler"
	"noteboard-server/internal/middleware"
	"noteboard-server/internal/repository"
	"noteboard-server/internal/service"
	"noteboard-server/internal/store"
	"noteboard-server/pkg/hash"

	_ "github.com/go-kivik/kivik/v4/couchdb"

	"github.com/go-kivik/kivik/v4"
	"github.com/gorilla/mux"
	"github.com/redis/go-redis/v9"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	userRepo, noteRepo, err := buildRepositories(cfg)
	if err != nil {
		log.Fatalf("Failed to initialize storage: %v", err)
	}

	if cfg.Storage.Driver == config.DriverLocal {
		if err := bootstrapAdmin(userRepo); err != nil {
			log.Fatalf("Failed to bootstrap admin account: %v", err)
		}
	}

	authService := service.NewAuthService(userRepo, cfg.JWT.Secret, cfg.JWT.Expiration)
	userService := service.NewUserService(userRepo)
	noteService := service.NewNoteService(noteRepo)
	assistService := service.NewAssistService(ai.NewClient(cfg.AI.APIKey, cfg.AI.Model))

	authHandler := handler.NewAuthHandler(authService, userService)
	noteHandler := handler.NewNoteHandler(noteService)
	adminHandler := handler.NewAdminHandler(userService)
	assistHandler := handler.NewAssistHandler(assistService)

	r := mux.NewRouter()

	r.Use(middleware.LoggerMiddleware())
	r.Use(middleware.CORSMiddleware(
		cfg.CORS.AllowedOrigins,
		cfg.CORS.AllowedMethods,
		cfg.CORS.AllowedHeaders,
	))

	r.HandleFunc("/auth/register", authHandler.Register).Methods("POST", "OPTIONS")
	r.HandleFunc("/auth/login", authHandler.Login).Methods("POST", "OPTIONS")

	profile := r.PathPrefix("/auth/profile").Subrouter()
	profile.Use(middleware.AuthMiddleware(cfg.JWT.Secret))
	profile.HandleFunc("/{id}", authHandler.UpdateProfile).Methods("PUT", "OPTIONS")

	api := r.PathPrefix("/api").Subrouter()
	api.Use(middleware.AuthMiddleware(cfg.JWT.Secret))

	api.HandleFunc("/notes/my-notes", noteHandler.MyNotes).Methods("GET", "OPTIONS")
	api.HandleFunc("/notes/create/", noteHandler.Create).Methods("POST", "OPTIONS")
	api.HandleFunc("/notes/update/{id}", noteHandler.Update).Methods("PUT", "OPTIONS")
	api.HandleFunc("/notes/delete/{id}", noteHandler.Delete).Methods("DELETE", "OPTIONS")
	api.HandleFunc("/notes/generate", assistHandler.Generate).Methods("POST", "OPTIONS")

	admin := api.PathPrefix("/admin").Subrouter()
	admin.Use(middleware.AdminMiddleware(userService))
	admin.HandleFunc("/users", adminHandler.ListUsers).Methods("GET", "OPTIONS")
	admin.HandleFunc("/users", adminHandler.CreateUser).Methods("POST", "OPTIONS")
	admin.HandleFunc("/users/{id}", adminHandler.UpdateUser).Methods("PUT", "OPTIONS")
	admin.HandleFunc("/users/{id}", adminHandler.DeleteUser).Methods("DELETE", "OPTIONS")

	r.HandleFunc("/health", healthHandler).Methods("GET")

	addr := fmt.Sprintf("%s:%s", cfg.Server.Host, cfg.Server.Port)

	srv := &http.Server{
		Addr:         addr,
		Handler:      r,
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Starting Noteboard API on %s (env: %s, storage: %s)", addr, cfg.Server.Env, cfg.Storage.Driver)
		if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			log.Fatalf("Server failed to start: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Println("Shutting down server...")

	ctx, cancel := context.WithTimeout(context.Background(), 30*time.Second)
	defer cancel()

	if err := srv.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}

	log.Println("Server stopped gracefully")
}

// buildRepositories selects the persistence layer: CouchDB for a real
// deployment, or the local key-value store for self-contained mock mode.
func buildRepositories(cfg *config.Config) (repository.UserRepository, repository.NoteRepository, error) {
	if cfg.Storage.Driver == config.DriverCouch {
		couchURL := fmt.Sprintf("http://%s:%s@%s:%s",
			cfg.Couch.User,
			cfg.Couch.Password,
			cfg.Couch.Host,
			cfg.Couch.Port,
		)

		client, err := kivik.New("couch", couchURL)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to connect to CouchDB: %w", err)
		}

		exists, err := client.DBExists(context.Background(), cfg.Couch.Name)
		if err != nil {
			return nil, nil, fmt.Errorf("failed to check database existence: %w", err)
		}
		if !exists {
			if err := client.CreateDB(context.Background(), cfg.Couch.Name); err != nil {
				return nil, nil, fmt.Errorf("failed to create database: %w", err)
			}
			log.Printf("Created database: %s", cfg.Couch.Name)
		}

		return repository.NewUserRepository(client, cfg.Couch.Name),
			repository.NewNoteRepository(client, cfg.Couch.Name), nil
	}

	backend, err := buildBackend(cfg)
	if err != nil {
		return nil, nil, err
	}

	s := store.New(backend)
	return repository.NewStoreUserRepository(s), repository.NewStoreNoteRepository(s), nil
}

func buildBackend(cfg *config.Config) (store.Backend, error) {
	switch cfg.Storage.Backend {
	case config.BackendMemory:
		return store.NewMemoryBackend(), nil

	case config.BackendFile:
		return store.NewFileBackend(cfg.Storage.DataDir)

	case config.BackendRedis:
		client := redis.NewClient(&redis.Options{
			Addr:     cfg.Redis.Addr,
			Password: cfg.Redis.Password,
			DB:       cfg.Redis.DB,
		})

		ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
		defer cancel()
		if err := client.Ping(ctx).Err(); err != nil {
			return nil, fmt.Errorf("failed to connect to Redis: %w", err)
		}

		return store.NewRedisBackend(client, cfg.Redis.Prefix), nil

	default:
		return nil, fmt.Errorf("unknown storage backend %q", cfg.Storage.Backend)
	}
}

// bootstrapAdmin makes sure the local store starts with one administrator.
// The password is stored hashed; the seed credentials only retain their
// plaintext form inside the mock store's own offline contract.
func bootstrapAdmin(userRepo repository.UserRepository) error {
	exists, err := userRepo.EmailExists(store.SeedAdminEmail)
	if err != nil {
		return err
	}
	if exists {
		return nil
	}

	hashed, err := hash.Hash(store.SeedAdminPassword)
	if err != nil {
		return err
	}

	now := time.Now()
	admin := &domain.User{
		Username:  store.SeedAdminUsername,
		Email:     store.SeedAdminEmail,
		Role:      domain.RoleAdmin,
		Password:  hashed,
		CreatedAt: now,
		UpdatedAt: now,
	}

	if err := userRepo.Create(admin); err != nil {
		return err
	}

	log.Printf("Seeded administrator account %s", store.SeedAdminEmail)
	return nil
}

func healthHandler(w http.ResponseWriter, r *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy","service":"noteboard-server"}`))
}
