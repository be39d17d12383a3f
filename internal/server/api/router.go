package api

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"

	"github.com/faktur-app/faktur/internal/models"
)

// New assembles the server's HTTP surface: the per-family CRUD endpoints,
// the websocket push channel and a health probe.
func New(
	customers *Handler[models.Customer],
	items *Handler[models.Item],
	invoices *Handler[models.Invoice],
	ws http.HandlerFunc,
) http.Handler {
	router := chi.NewRouter()

	router.Use(middleware.Recoverer)
	router.Use(cors.Handler(cors.Options{
		AllowedOrigins: []string{"*"},
		AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
		AllowedHeaders: []string{"Content-Type"},
	}))

	router.Route("/api", func(r chi.Router) {
		r.Route("/customers", customers.Routes)
		r.Route("/items", items.Routes)
		r.Route("/invoices", invoices.Routes)
	})

	router.Get("/ws", ws)
	router.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
	})

	return router
}
