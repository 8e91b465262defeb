//go:build wireinject
// +build wireinject

package di

import (
	"github.com/google/wire"
	"go.uber.org/zap"

	"graphexplorer/application/commands/bus"
	querybus "graphexplorer/application/queries/bus"
	"graphexplorer/application/services"
	"graphexplorer/infrastructure/config"
	"graphexplorer/interfaces/http/ws"
	"graphexplorer/pkg/observability"
)

// Container holds all application dependencies
type Container struct {
	Config     *config.Config
	Logger     *zap.Logger
	Metrics    *observability.Metrics
	Tuning     *config.TuningWatcher
	Engine     *services.Engine
	CommandBus *bus.CommandBus
	QueryBus   *querybus.QueryBus
	Hub        *ws.Hub
}

// SuperSet is the main provider set containing all providers
var SuperSet = wire.NewSet(
	ProvideLogger,
	ProvideMetrics,
	ProvideClock,
	ProvideGraphSource,
	ProvideLayoutEngine,
	ProvideHub,
	ProvideEventPublisher,
	ProvideTuningWatcher,
	ProvideEngine,
	ProvideCommandBus,
	ProvideQueryBus,
	wire.Struct(new(Container), "*"),
)

// InitializeContainer creates a fully wired container
func InitializeContainer(cfg *config.Config) (*Container, error) {
	wire.Build(SuperSet)
	return nil, nil // Wire will replace this
}
