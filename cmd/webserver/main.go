package main

import (
	"context"
	"errors"
	"flag"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/gorilla/securecookie"
	"github.com/gorilla/sessions"

	"quantummeadow"
)

func main() {
	var (
		configPath = flag.String("config", "", "Path to YAML config file (optional)")
		verbose    = flag.Bool("verbose", false, "Enable verbose debugging output")
	)
	flag.Parse()

	quantummeadow.SetVerbose(*verbose)

	cfg, err := loadConfig(*configPath, os.Getenv)
	if err != nil {
		log.Fatalf("Failed to load config: %v", err)
	}
	if cfg.Generator.APIKey == "" {
		log.Printf("GEMINI_API_KEY is not set; every quiz will use the fallback questions")
	}

	srcCfg, err := cfg.sourceConfig()
	if err != nil {
		log.Fatalf("Failed to configure question source: %v", err)
	}
	source := quantummeadow.NewQuestionSource(srcCfg)

	var history HistoryStore
	if cfg.Diagnostics.HistoryDB != "" {
		db, err := quantummeadow.OpenDB(cfg.Diagnostics.HistoryDB)
		if err != nil {
			log.Fatalf("Failed to open database: %v", err)
		}
		defer db.CloseDB()

		if err := db.CreateTables(); err != nil {
			log.Fatalf("Failed to create tables: %v", err)
		}
		source.SetRecorder(db)
		history = db
	}

	idle, _ := cfg.sessionIdle()
	store := newSessionStore(cfg, idle)
	pool := quantummeadow.NewSessionPool(source, cfg.Server.MaxSessions)

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	go sweepSessions(ctx, pool, idle)

	server := NewServer(ctx, pool, store, history, cfg.Server.AllowedOrigins)
	httpServer := &http.Server{
		Addr:    cfg.Server.ListenAddr,
		Handler: server.Routes(),
	}

	errCh := make(chan error, 1)
	go func() {
		log.Printf("Starting server on %s", cfg.Server.ListenAddr)
		errCh <- httpServer.ListenAndServe()
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	case <-ctx.Done():
		log.Printf("Shutting down")
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
		defer cancel()
		if err := httpServer.Shutdown(shutdownCtx); err != nil {
			log.Printf("Shutdown error: %v", err)
		}
		server.Wait()
	}
}

// newSessionStore creates the cookie store that carries session IDs
func newSessionStore(cfg config, idle time.Duration) *sessions.CookieStore {
	secret := []byte(cfg.Server.SessionSecret)
	if len(secret) == 0 {
		log.Printf("SESSION_SECRET is not set; generating a random key, sessions will not survive a restart")
		secret = securecookie.GenerateRandomKey(32)
	}
	store := sessions.NewCookieStore(secret)
	store.Options = &sessions.Options{
		Path:     "/",
		MaxAge:   int(idle.Seconds()),
		HttpOnly: true,
		Secure:   cfg.Server.SecureCookies,
		SameSite: http.SameSiteLaxMode,
	}
	return store
}

// sweepSessions periodically drops idle quiz sessions
func sweepSessions(ctx context.Context, pool *quantummeadow.SessionPool, idle time.Duration) {
	ticker := time.NewTicker(time.Minute)
	defer ticker.Stop()
	for {
		select {
		case <-ctx.Done():
			return
		case <-ticker.C:
			if n := pool.Sweep(idle); n > 0 {
				quantummeadow.VerboseLog("Swept %d idle sessions, %d active", n, pool.Size())
			}
		}
	}
}
