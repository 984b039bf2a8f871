package main

import (
	"context"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"loan-assistant/app"
	"loan-assistant/config"
	httpLayer "loan-assistant/http"
	"loan-assistant/logger"
)

func main() {
	cfg, err := config.Load(os.Getenv(config.PathEnv))
	if err != nil {
		fmt.Fprintf(os.Stderr, "config: %v\n", err)
		os.Exit(1)
	}

	log, err := logger.New(cfg.Log.Mode)
	if err != nil {
		fmt.Fprintf(os.Stderr, "logger: %v\n", err)
		os.Exit(1)
	}

	a, err := app.New(cfg, log)
	if err != nil {
		log.Fatal("Error starting application", "error", err)
	}
	defer a.Close()

	loanHandler := httpLayer.NewLoanHandler(a.Loans, log)
	optionsHandler := httpLayer.NewOptionsHandler(a.Options, a.Underwriting, a.Profiles, log)
	eligibilityHandler := httpLayer.NewEligibilityHandler(a.Underwriting, a.Profiles, log)
	sessionHandler := httpLayer.NewSessionHandler(a.Sessions, a.Extractor, log)

	rateLimiter := httpLayer.NewRateLimiter(cfg.RateLimit.Capacity, cfg.RateLimit.Window)
	defer rateLimiter.Stop()

	limited := func(h http.HandlerFunc) http.Handler {
		return httpLayer.RateLimitMiddleware(rateLimiter, log, h)
	}

	mux := http.NewServeMux()
	mux.Handle("/loan/calculate", limited(loanHandler.CalculateLoan))
	mux.Handle("/loan/options", limited(optionsHandler.GenerateOptions))
	mux.Handle("/loan/eligibility", limited(eligibilityHandler.CheckEligibility))

	mux.Handle("POST /sessions", limited(sessionHandler.CreateSession))
	mux.Handle("GET /sessions/{id}", limited(sessionHandler.GetSession))
	mux.Handle("DELETE /sessions/{id}", limited(sessionHandler.EndSession))
	mux.Handle("POST /sessions/{id}/turns", limited(sessionHandler.PostTurn))

	server := &http.Server{
		Addr:         cfg.Server.Addr,
		Handler:      mux,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  cfg.Server.IdleTimeout,
	}

	serverErr := make(chan error, 1)
	go func() {
		log.Info("API listening", "addr", cfg.Server.Addr)
		if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
			serverErr <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)

	select {
	case err := <-serverErr:
		log.Error("Error starting server", "error", err)
		return
	case <-quit:
		log.Info("Shutting down server...")
	}

	ctx, cancel := context.WithTimeout(context.Background(), cfg.Server.ShutdownTimeout)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Error("Error during server shutdown", "error", err)
	}

	log.Info("Server exited")
}
