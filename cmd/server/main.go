package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/omega-realm/worldserver/internal/account"
	"github.com/omega-realm/worldserver/internal/auth"
	"github.com/omega-realm/worldserver/internal/catalog"
	"github.com/omega-realm/worldserver/internal/character"
	"github.com/omega-realm/worldserver/internal/combat"
	"github.com/omega-realm/worldserver/internal/config"
	"github.com/omega-realm/worldserver/internal/database"
	"github.com/omega-realm/worldserver/internal/dispatch"
	"github.com/omega-realm/worldserver/internal/game"
	"github.com/omega-realm/worldserver/internal/handlers"
	"github.com/omega-realm/worldserver/internal/leaderboard"
	"github.com/omega-realm/worldserver/internal/presence"
	"github.com/omega-realm/worldserver/internal/redis"
	"github.com/omega-realm/worldserver/internal/transport"
	"github.com/omega-realm/worldserver/internal/world"
)

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	// Load configuration from .env and the environment
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("[Server] Failed to load config: %v", err)
	}

	verifier, err := account.NewVerifier(cfg.PasswordScheme)
	if err != nil {
		log.Fatalf("[Server] %v", err)
	}

	var repo account.Repository = account.NewMemoryRepository()
	switch cfg.AccountBackend {
	case config.BackendPostgres, config.BackendSQLite:
		log.Printf("[Server] Initializing %s account storage...", cfg.AccountBackend)
		db, err := database.NewConnection(ctx, cfg.AccountBackend, cfg.Database)
		if err != nil {
			log.Fatalf("[Server] Failed to connect to database: %v", err)
		}
		defer db.Close()
		repo = database.NewAccountRepository(db)
	}

	var sessions account.SessionStore = account.NewMemorySessions()
	var board leaderboard.Board = leaderboard.NewMemory()
	if cfg.SessionBackend == config.BackendRedis {
		rdb, err := redis.NewClient(ctx, cfg.Redis)
		if err != nil {
			log.Fatalf("[Server] Failed to connect to Redis: %v", err)
		}
		defer rdb.Close()
		sessions = redis.NewSessionStore(rdb)
		board = redis.NewLeaderboard(rdb)
	}

	accounts := account.NewDirectory(repo, sessions, verifier, auth.NewIssuer(cfg.Secret(), cfg.SessionTTL))
	characters := character.NewStore(catalog.Default())
	presences := presence.NewTable()
	hub := transport.NewHub(transport.DefaultConfig())

	srv := game.NewServer(game.Deps{
		Accounts:    accounts,
		Characters:  characters,
		Presences:   presences,
		Combat:      combat.NewEngine(cfg.Combat(), presences, hub, board),
		Sender:      hub,
		Leaderboard: board,
	})
	if cfg.SeedTestAccount {
		if err := srv.SeedTestAccount(ctx); err != nil {
			log.Fatalf("[Server] %v", err)
		}
	}

	broadcaster := world.NewBroadcaster(cfg.World(), presences, hub, srv)
	broadcaster.Start(ctx)

	server := &http.Server{
		Addr: cfg.Addr(),
		Handler: handlers.NewRouter(handlers.Deps{
			Accounts:    accounts,
			Characters:  characters,
			Leaderboard: board,
			Reporter:    srv,
			WebSocket:   hub.ServeWS(dispatch.New(srv, hub)),
		}),
		ReadTimeout:  15 * time.Second,
		WriteTimeout: 15 * time.Second,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("[Server] Starting server on %s...", cfg.Addr())
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("[Server] Server failed: %v", err)
		}
	}()

	<-ctx.Done()
	log.Println("[Server] Shutting down...")

	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := server.Shutdown(shutdownCtx); err != nil {
		log.Printf("[Server] Shutdown error: %v", err)
	}
	hub.Close()
	broadcaster.Wait()
	log.Println("[Server] Stopped")
}
