// README: Entry point; loads config, wires services, starts the HTTP server.
package main

import (
	"context"
	"log"
	"net/http"
	"os"
	"os/signal"
	"syscall"

	"tailwind/internal/ai"
	"tailwind/internal/config"
	"tailwind/internal/flights"
	httptransport "tailwind/internal/http"
	"tailwind/internal/infra"
	"tailwind/internal/logger"
	"tailwind/internal/modules/booking"
	"tailwind/internal/modules/dialogue"
	"tailwind/internal/modules/offer"
	"tailwind/internal/modules/search"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatal(err)
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	logg := logger.New()

	filler, err := ai.NewGeminiFiller(ctx, cfg.AI.GeminiKey)
	if err != nil {
		log.Fatalf("gemini init: %v", err)
	}
	defer filler.Close()

	flightsClient := flights.NewClient(cfg.Flights.BaseURL, cfg.Flights.APIKey, cfg.Flights.Timeout, logg)

	var cache search.Cache
	if cfg.Redis.Addr != "" {
		cache = search.NewRedisCache(infra.NewRedis(cfg.Redis.Addr), cfg.Search.CacheTTL, logg)
	} else {
		cache = search.NewMemoryCache(cfg.Search.CacheTTL)
	}

	searchSvc := search.NewService(flightsClient, cache, cfg.Search, logg)
	bookingSvc := booking.NewService(flightsClient, cfg.Search.IncludeAirlines, logg)
	ctrl := dialogue.NewController(filler, searchSvc, offer.NewPairer(logg), bookingSvc, logg)
	store := dialogue.NewStore()

	srv := httptransport.NewServer(httptransport.ServerDeps{
		Store:      store,
		Controller: ctrl,
		Log:        logg,
	})

	server := &http.Server{Addr: cfg.HTTP.Addr, Handler: srv.Router()}

	go func() {
		<-ctx.Done()
		_ = server.Shutdown(context.Background())
	}()

	logg.Info("listening", "addr", cfg.HTTP.Addr)
	if err := server.ListenAndServe(); err != nil && err != http.ErrServerClosed {
		log.Fatal(err)
	}
}
