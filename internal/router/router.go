package router

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"go.opentelemetry.io/contrib/instrumentation/net/http/otelhttp"

	"hoctap-backend/internal/handlers"
	"hoctap-backend/internal/middleware"
)

type Options struct {
	FrontendURL  string
	MaxBodyBytes int64
}

func New(
	tutorHandler *handlers.TutorHandler,
	messageHandler *handlers.MessageHandler,
	wsHandler http.HandlerFunc,
	opts Options,
) http.Handler {
	r := chi.NewRouter()

	// Global middleware
	r.Use(chimiddleware.Logger)
	r.Use(chimiddleware.Recoverer)
	r.Use(chimiddleware.RealIP)
	r.Use(middleware.RequestID)
	r.Use(cors.Handler(cors.Options{
		AllowedOrigins:   []string{opts.FrontendURL},
		AllowedMethods:   []string{"GET", "POST", "DELETE", "OPTIONS"},
		AllowedHeaders:   []string{"Accept", "Content-Type", middleware.RequestIDHeader},
		ExposedHeaders:   []string{middleware.RequestIDHeader},
		AllowCredentials: false,
		MaxAge:           300,
	}))

	// Health check
	r.Get("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		w.Write([]byte(`{"status":"ok"}`))
	})

	r.Route("/api", func(r chi.Router) {
		r.Group(func(r chi.Router) {
			if opts.MaxBodyBytes > 0 {
				r.Use(chimiddleware.RequestSize(opts.MaxBodyBytes))
			}
			r.Post("/chat", tutorHandler.Chat)
			r.Post("/explain", tutorHandler.Explain)
			r.Post("/practice", tutorHandler.Practice)
		})

		r.Get("/messages", messageHandler.List)
		r.Delete("/messages", messageHandler.Clear)

		// ──── WebSocket ────
		r.Get("/ws", wsHandler)
	})

	return otelhttp.NewHandler(r, "hoctap-backend",
		otelhttp.WithSpanNameFormatter(func(_ string, r *http.Request) string {
			return r.Method + " " + r.URL.Path
		}),
	)
}
