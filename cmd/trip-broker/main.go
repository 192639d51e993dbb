package main

import (
	"log/slog"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"trip_broker/internal/config"
	"trip_broker/internal/conversion"
	organizerapi "trip_broker/internal/http-server/handlers/api/organizer"
	"trip_broker/internal/http-server/handlers/api/ping"
	proposalapi "trip_broker/internal/http-server/handlers/api/proposal"
	requestapi "trip_broker/internal/http-server/handlers/api/request"
	"trip_broker/internal/ledger"
	"trip_broker/internal/quality"
	"trip_broker/internal/routing"
	"trip_broker/internal/storage/postgres"

	"github.com/go-chi/chi/v5"
	"github.com/joho/godotenv"
)

func main() {

	log := slog.New(slog.NewTextHandler(os.Stdout, &slog.HandlerOptions{Level: slog.LevelDebug}))

	err := godotenv.Load()
	if err != nil {
		log.Error("Failed to load .env", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
	}

	cfg, err := config.Load()
	if err != nil {
		log.Error("Failed to load config", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
		os.Exit(1)
	}

	storage, err := postgres.New(cfg.PostgresConn)
	if err != nil {
		log.Error("Failed to connect to postgresql", slog.Attr{Key: "error", Value: slog.StringValue(err.Error())})
	}

	scoring := quality.DefaultConfig()
	scoring.ApprovalThreshold = cfg.ApprovalScoreThreshold

	router := routing.NewEngine(log, storage, cfg.RoutingMinTrustScore, cfg.RoutingTimeout)
	coordinator := conversion.NewCoordinator(log, storage, storage, cfg.ConversionMinTrustScore, scoring)
	service := ledger.New(log, storage, router, coordinator, ledger.Config{
		ProposalValidity: cfg.ProposalValidity,
		DefaultCurrency:  cfg.DefaultCurrency,
	})

	mux := chi.NewRouter()

	mux.Route("/api", func(r chi.Router) {
		r.Get("/ping", ping.New(log))
		r.Get("/organizers/{organizerId}", organizerapi.NewGetOrganizer(log, storage))
		r.Route("/requests", func(r chi.Router) {
			r.Post("/new", requestapi.NewPostRequest(log, service))
			r.Get("/", requestapi.NewGetRequests(log, storage))
			r.Get("/{requestId}", requestapi.NewGetRequest(log, storage))
			r.Put("/{requestId}/status", requestapi.NewPutRequestStatus(log, service))
			r.Post("/{requestId}/proposals/new", proposalapi.NewPostProposal(log, service))
			r.Post("/{requestId}/proposals/{proposalId}/select", proposalapi.NewSelectProposal(log, service))
		})
	})

	done := make(chan os.Signal, 1)
	signal.Notify(done, os.Interrupt, syscall.SIGINT, syscall.SIGTERM)

	srv := &http.Server{
		Addr:    cfg.HTTPAddr,
		Handler: mux,
	}

	go func() {
		if err := srv.ListenAndServe(); err != nil {
			log.Error("failed to start the server")
		}
	}()

	log.Info("starting server", slog.Attr{Key: "addr", Value: slog.StringValue(cfg.HTTPAddr)})
	<-done
	log.Info("server stopped")
}
