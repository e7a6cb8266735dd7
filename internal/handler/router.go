package handler

import (
	"net/http"
	"time"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"
)

// Handlers groups everything the router serves
type Handlers struct {
	Health    *HealthHandler
	Cars      *CarHandler
	Images    *ImageHandler
	Favorites *FavoriteHandler
}

// NewRouter builds the HTTP API
func NewRouter(h Handlers) http.Handler {
	r := chi.NewRouter()

	r.Use(middleware.RequestID)
	r.Use(middleware.RealIP)
	r.Use(middleware.Logger)
	r.Use(middleware.Recoverer)
	r.Use(middleware.Timeout(30 * time.Second))
	r.Use(cors)

	r.Get("/health", h.Health.Check)

	r.Route("/api/v1", func(r chi.Router) {
		r.Post("/search", h.Cars.Search)
		r.Post("/scores", h.Cars.Scores)
		r.Post("/compare", h.Cars.Compare)
		r.Get("/preferences/defaults", h.Cars.PreferenceDefaults)
		r.Get("/brands", h.Cars.Brands)
		r.Get("/images", h.Images.Resolve)

		r.Route("/favorites", func(r chi.Router) {
			r.Get("/", h.Favorites.List)
			r.Post("/", h.Favorites.Add)
			r.Get("/{id}", h.Favorites.Get)
			r.Delete("/{id}", h.Favorites.Remove)
			r.Put("/{id}/color", h.Favorites.UpdateColor)
		})
	})

	return otelhttp.NewHandler(r, "carcompare-api")
}

func cors(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Access-Control-Allow-Origin", "*")
		w.Header().Set("Access-Control-Allow-Methods", "GET, POST, PUT, DELETE, OPTIONS")
		w.Header().Set("Access-Control-Allow-Headers", "Content-Type, Authorization, "+OwnerHeader)

		if r.Method == http.MethodOptions {
			w.WriteHeader(http.StatusOK)
			return
		}

		next.ServeHTTP(w, r)
	})
}
