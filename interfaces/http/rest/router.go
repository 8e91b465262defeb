package rest

import (
	"net/http"

	"github.com/go-chi/chi/v5"
	chimiddleware "github.com/go-chi/chi/v5/middleware"
	"github.com/go-chi/cors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"go.uber.org/zap"

	"graphexplorer/application/commands/bus"
	querybus "graphexplorer/application/queries/bus"
	"graphexplorer/infrastructure/config"
	"graphexplorer/interfaces/http/rest/handlers"
	"graphexplorer/interfaces/http/rest/middleware"
	"graphexplorer/interfaces/http/ws"
	"graphexplorer/pkg/observability"
)

// Router creates and configures the HTTP router
type Router struct {
	cfg        *config.Config
	commandBus *bus.CommandBus
	queryBus   *querybus.QueryBus
	hub        *ws.Hub
	metrics    *observability.Metrics
	logger     *zap.Logger
}

// NewRouter creates a new router instance
func NewRouter(
	cfg *config.Config,
	commandBus *bus.CommandBus,
	queryBus *querybus.QueryBus,
	hub *ws.Hub,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *Router {
	return &Router{
		cfg:        cfg,
		commandBus: commandBus,
		queryBus:   queryBus,
		hub:        hub,
		metrics:    metrics,
		logger:     logger,
	}
}

// Setup configures all routes and middleware
func (rt *Router) Setup() http.Handler {
	router := chi.NewRouter()

	router.Use(chimiddleware.RequestID)
	router.Use(chimiddleware.RealIP)
	router.Use(chimiddleware.Recoverer)
	router.Use(middleware.Logger(rt.logger))
	if rt.cfg.EnableMetrics {
		router.Use(middleware.Metrics(rt.metrics))
	}

	if rt.cfg.EnableCORS {
		router.Use(cors.Handler(cors.Options{
			AllowedOrigins: []string{"*"},
			AllowedMethods: []string{"GET", "POST", "PUT", "DELETE", "OPTIONS"},
			AllowedHeaders: []string{"Accept", "Content-Type", "X-Request-ID"},
			ExposedHeaders: []string{"X-Request-ID"},
			MaxAge:         300,
		}))
	}

	router.Get("/health", rt.healthCheck)
	router.Get("/ready", rt.readinessCheck)
	if rt.cfg.EnableMetrics {
		router.Method(http.MethodGet, "/metrics", promhttp.HandlerFor(rt.metrics.Registry(), promhttp.HandlerOpts{}))
	}

	// Event push stream
	router.Get("/ws", rt.hub.ServeHTTP)

	router.Route("/api/v1", func(r chi.Router) {
		exploration := handlers.NewExplorationHandler(rt.commandBus, rt.queryBus, rt.logger)

		r.Route("/exploration", func(r chi.Router) {
			r.Get("/snapshot", exploration.GetSnapshot)
			r.Post("/load", exploration.Load)
			r.Post("/ego", exploration.EnterEgo)
			r.Post("/ego/exit", exploration.ExitEgo)
			r.Put("/depth", exploration.SetHopDepth)
			r.Post("/unhide", exploration.UnhideAll)
			r.Put("/filter", exploration.SetTypeFilter)
			r.Post("/focus/node", exploration.FocusNode)
			r.Post("/focus/edge", exploration.FocusEdge)

			r.Route("/nodes/{nodeID}", func(r chi.Router) {
				r.Get("/", exploration.GetNodeDetails)
				r.Post("/expand", exploration.ExpandNode)
				r.Post("/hide", exploration.HideNode)
			})
		})

		r.Route("/interactions", func(r chi.Router) {
			r.Post("/click", exploration.ClickNode)
			r.Post("/click-edge", exploration.ClickEdge)
			r.Post("/hover", exploration.Hover)
			r.Post("/clear-highlight", exploration.ClearHighlight)
		})
	})

	return router
}

// healthCheck handles health check requests
func (rt *Router) healthCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"healthy"}`))
}

// readinessCheck handles readiness check requests
func (rt *Router) readinessCheck(w http.ResponseWriter, req *http.Request) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(http.StatusOK)
	w.Write([]byte(`{"status":"ready"}`))
}
