//go:build wireinject
// +build wireinject

package di

import (
	wire "github.com/google/wire"
	"wagerd/internal"
	"wagerd/internal/controllers"
	"wagerd/internal/persistence"
	"wagerd/internal/providers"
	"wagerd/internal/services"
	"wagerd/internal/structures"
)

func InitApp(cfg *structures.CliFlags) (*internal.App, error) {

	wire.Build(
		providers.NewConfigProvider,
		providers.NewLogProvider,
		providers.NewMetricsProvider,
		providers.NewInstrumentedCacheProvider,
		wire.Bind(new(services.RangeStore), new(providers.CacheProviderInterface)),
		wire.Bind(new(services.LedgerObserver), new(providers.MetricsProviderInterface)),

		services.NewSystemClock,
		services.NewTrackerService,
		persistence.NewZstdCompressor,
		persistence.NewFileManager,
		persistence.NewScheduler,
		controllers.NewApiController,
		controllers.NewHealthController,
		internal.InitRoutes,
		internal.NewApp,
	)

	return nil, nil
}
