package main

import (
	"context"
	"log"
	"net/http"
	"os/signal"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	_ "github.com/lib/pq"
	"golang.org/x/sync/errgroup"

	"github.com/certik/femhub-notebook/adapters/fsstore"
	"github.com/certik/femhub-notebook/adapters/memory"
	"github.com/certik/femhub-notebook/adapters/postgres"
	"github.com/certik/femhub-notebook/internal/config"
	"github.com/certik/femhub-notebook/internal/errors"
	"github.com/certik/femhub-notebook/internal/migration"
	"github.com/certik/femhub-notebook/internal/session"
	"github.com/certik/femhub-notebook/ports"
	"github.com/certik/femhub-notebook/ui"
)

// initDatabase connects to PostgreSQL and runs migrations
func initDatabase(ctx context.Context, cfg *config.Config) (*sqlx.DB, error) {
	db, err := sqlx.Connect("postgres", cfg.Database.URL)
	if err != nil {
		return nil, errors.Wrap(err, "failed to connect to database")
	}
	if err := db.PingContext(ctx); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "failed to ping database")
	}
	migrator := migration.NewRunner()
	if err := migrator.Run(ctx, db); err != nil {
		db.Close()
		return nil, errors.Wrap(err, "database migration failed")
	}
	return db, nil
}

func main() {
	if err := godotenv.Load(); err != nil {
		log.Println("No .env file found, using system environment variables")
	}

	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Failed to load configuration: %v", err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	var users ports.UserRepository
	var sessionRepo ports.SessionRepository
	if cfg.Database.URL != "" {
		db, err := initDatabase(ctx, cfg)
		if err != nil {
			log.Fatalf("Failed to initialize database: %v", err)
		}
		defer db.Close()
		users = postgres.NewUserRepository(db)
		sessionRepo = postgres.NewSessionRepository(db)
		log.Println("Using PostgreSQL for users and sessions")
	} else {
		users = memory.NewUserRepository()
		sessionRepo = memory.NewSessionRepository()
		log.Println("No DATABASE_URL set, using in-memory users and sessions")
	}

	store, err := fsstore.New(cfg.Paths.DataDir)
	if err != nil {
		log.Fatalf("Failed to initialize worksheet store: %v", err)
	}

	sessions := session.NewManager(sessionRepo)
	server, err := ui.NewServer(cfg.Notebook, store, users, sessions)
	if err != nil {
		log.Fatalf("Failed to create server: %v", err)
	}

	httpServer := &http.Server{
		Addr:    cfg.Server.Address,
		Handler: server,
	}

	g, ctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		log.Printf("Starting %s on %s", cfg.Notebook.SiteName, cfg.Server.Address)
		if err := httpServer.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			return err
		}
		return nil
	})
	g.Go(func() error {
		ticker := time.NewTicker(time.Hour)
		defer ticker.Stop()
		for {
			select {
			case <-ctx.Done():
				return nil
			case <-ticker.C:
				if err := sessions.Sweep(context.Background()); err != nil {
					log.Printf("Session sweep failed: %v", err)
				}
			}
		}
	})
	g.Go(func() error {
		<-ctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
		defer cancel()
		return httpServer.Shutdown(shutdownCtx)
	})

	if err := g.Wait(); err != nil {
		log.Fatalf("Server error: %v", err)
	}
}
