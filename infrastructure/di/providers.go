package di

import (
	"go.uber.org/zap"

	"graphexplorer/application/commands/bus"
	commandhandlers "graphexplorer/application/commands/handlers"
	"graphexplorer/application/ports"
	querybus "graphexplorer/application/queries/bus"
	queryhandlers "graphexplorer/application/queries/handlers"
	"graphexplorer/application/services"
	"graphexplorer/infrastructure/config"
	"graphexplorer/infrastructure/graphapi"
	"graphexplorer/infrastructure/layout"
	"graphexplorer/interfaces/http/ws"
	"graphexplorer/pkg/observability"
)

// ProvideLogger creates a new logger instance
func ProvideLogger(cfg *config.Config) (*zap.Logger, error) {
	if cfg.IsProduction() {
		return zap.NewProduction()
	}
	return zap.NewDevelopment()
}

// ProvideMetrics creates the metrics collector
func ProvideMetrics() *observability.Metrics {
	return observability.NewMetrics()
}

// ProvideClock provides the wall clock
func ProvideClock() ports.Clock {
	return ports.SystemClock{}
}

// ProvideGraphSource creates the graph service client
func ProvideGraphSource(cfg *config.Config, logger *zap.Logger) ports.GraphSource {
	return graphapi.NewClient(graphapi.ClientConfig{
		BaseURL:        cfg.GraphServiceURL,
		RequestTimeout: cfg.GraphFetchTimeout,
		BreakerTimeout: cfg.GraphBreakerTimeout,
		MaxRetries:     cfg.GraphMaxRetries,
	}, logger)
}

// ProvideLayoutEngine creates the layout oracle
func ProvideLayoutEngine(logger *zap.Logger) ports.LayoutEngine {
	return layout.NewStaticEngine(logger)
}

// ProvideHub creates the event stream hub
func ProvideHub(logger *zap.Logger, metrics *observability.Metrics) *ws.Hub {
	return ws.NewHub(logger, metrics)
}

// ProvideEventPublisher exposes the hub as the engine's publisher
func ProvideEventPublisher(hub *ws.Hub) ports.EventPublisher {
	return hub
}

// ProvideTuningWatcher creates the hot-reload watcher when a tuning
// file is configured; without one the engine runs on defaults.
func ProvideTuningWatcher(cfg *config.Config, logger *zap.Logger) (*config.TuningWatcher, error) {
	if cfg.TuningFile == "" {
		return nil, nil
	}
	return config.NewTuningWatcher(cfg.TuningFile, logger, nil)
}

// ProvideEngine wires the exploration engine from its collaborators
func ProvideEngine(
	cfg *config.Config,
	tuning *config.TuningWatcher,
	source ports.GraphSource,
	layoutEngine ports.LayoutEngine,
	publisher ports.EventPublisher,
	clock ports.Clock,
	metrics *observability.Metrics,
	logger *zap.Logger,
) *services.Engine {
	values := config.DefaultTuning()
	if tuning != nil {
		values = tuning.Current()
	}

	engine := services.NewEngine(source, layoutEngine, publisher, clock, metrics, logger, services.EngineConfig{
		DefaultHopDepth: cfg.DefaultHopDepth,
		FetchTimeout:    cfg.GraphFetchTimeout,
		NodeSpacing:     values.NodeSpacing,
		Timing: services.InteractionTiming{
			DoubleClickWindow: values.DoubleClickWindow(),
			SingleClickDelay:  values.SingleClickDelay(),
			HoverHideDelay:    values.HoverHideDelay(),
		},
	})

	if tuning != nil {
		tuning.OnChange(func(t config.Tuning) {
			engine.ApplyTuning(t.NodeSpacing, services.InteractionTiming{
				DoubleClickWindow: t.DoubleClickWindow(),
				SingleClickDelay:  t.SingleClickDelay(),
				HoverHideDelay:    t.HoverHideDelay(),
			})
		})
	}
	return engine
}

// ProvideCommandBus creates the command bus with every exploration
// command registered
func ProvideCommandBus(engine *services.Engine, logger *zap.Logger) (*bus.CommandBus, error) {
	b := bus.NewCommandBus()
	b.Use(bus.LoggingMiddleware(logger))
	if err := commandhandlers.NewExplorationHandler(engine, logger).Register(b); err != nil {
		return nil, err
	}
	return b, nil
}

// ProvideQueryBus creates the query bus with every exploration query
// registered
func ProvideQueryBus(engine *services.Engine, logger *zap.Logger) (*querybus.QueryBus, error) {
	b := querybus.NewQueryBus()
	b.Use(querybus.LoggingMiddleware(logger))
	if err := queryhandlers.NewExplorationQueryHandler(engine, logger).Register(b); err != nil {
		return nil, err
	}
	return b, nil
}
