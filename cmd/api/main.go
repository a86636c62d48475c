package main

import (
	"context"
	"errors"
	"log"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"

	"github.com/safar/toy-market/internal/auth"
	"github.com/safar/toy-market/internal/commerce"
	"github.com/safar/toy-market/internal/config"
	"github.com/safar/toy-market/internal/database"
	"github.com/safar/toy-market/internal/store"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Load config: %v", err)
	}

	db, err := database.NewConnection(&cfg.Database)
	if err != nil {
		log.Fatalf("Connect to database: %v", err)
	}
	defer db.Close()

	log.Printf("Connected to database successfully")

	catalogStore := store.NewCatalogStore(db)
	orderStore := store.NewOrderStore(db)
	userStore := store.NewUserStore(db)

	api := &api{
		catalog:   commerce.NewCatalogService(catalogStore),
		cart:      commerce.NewCartService(catalogStore, orderStore),
		checkout:  commerce.NewCheckoutService(catalogStore, orderStore),
		requests:  commerce.NewRequestService(catalogStore, orderStore),
		lifecycle: commerce.NewLifecycleService(orderStore),
	}

	authenticator := auth.NewStoreAuthenticator(userStore)

	r := chi.NewRouter()
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(cfg.Server.WriteTimeout))
	r.Use(bearerAuth(authenticator))

	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		respondJSON(w, http.StatusOK, map[string]string{"status": "ok"})
	})

	r.Route("/toys", func(r chi.Router) {
		r.Get("/", api.listToys)
		r.Post("/", api.createToy)
		r.Get("/{id}", api.getToy)
		r.Put("/{id}", api.updateToy)
		r.Delete("/{id}", api.deleteToy)
	})

	r.Route("/cart", func(r chi.Router) {
		r.Get("/", api.getCart)
		r.Post("/", api.addCartItem)
		r.Delete("/{itemID}", api.removeCartItem)
	})

	r.Post("/checkout", api.checkoutCart)

	r.Route("/orders", func(r chi.Router) {
		r.Get("/", api.listOrders)
		r.Put("/{id}/approve", api.approveOrder)
	})

	r.Route("/requests", func(r chi.Router) {
		r.Get("/", api.listMyRequests)
		r.Post("/", api.createRequest)
		r.Get("/grouped", api.listRequestsGrouped)
		r.Put("/batch", api.batchUpdateRequests)
		r.Put("/{id}", api.updateRequestStatus)
	})

	r.Get("/transactions", api.listTransactions)

	server := &http.Server{
		Addr:         ":" + cfg.Server.Port,
		Handler:      r,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		IdleTimeout:  60 * time.Second,
	}

	go func() {
		log.Printf("Server starting on port %s", cfg.Server.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			log.Fatalf("Server error: %v", err)
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	<-quit

	log.Printf("Shutting down server")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	if err := server.Shutdown(ctx); err != nil {
		log.Fatalf("Server forced to shutdown: %v", err)
	}
}

// bearerAuth resolves the Authorization header to an actor when present.
// Anonymous requests pass through with no actor; gated operations reject them
// downstream.
func bearerAuth(authenticator auth.Authenticator) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			token := strings.TrimPrefix(r.Header.Get("Authorization"), "Bearer ")
			if token != "" && token != r.Header.Get("Authorization") {
				actor, err := authenticator.Authenticate(r.Context(), token)
				if err == nil {
					r = r.WithContext(auth.WithActor(r.Context(), actor))
				}
			}
			next.ServeHTTP(w, r)
		})
	}
}
