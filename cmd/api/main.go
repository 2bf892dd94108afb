package main

import (
	"fmt"
	"os"

	"karmahub/commons/config"
	"karmahub/commons/server"
	internalConfig "karmahub/internal/config"
	event_init "karmahub/internal/consumer/event_queue/init"

	"go.uber.org/fx"
)

func main() {
	cfg, err := internalConfig.Load()
	if err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}

	fx.New(
		fx.Supply(cfg),
		fx.WithLogger(config.ProvideFxLogger),
		fx.Provide(
			config.ProvideLogger,
			config.ProvideRouteDependencies,
			config.ProvideRouterConfig,
			config.ProvideServerConfig,
			config.ProvideAWSConfig,
			config.ProvideSQSClient,
			config.ProvideDynamoDBClient,
			config.ProvideCache,
			config.ProvideCoordinator,
			config.ProvideNotificationSink,
			internalConfig.ProvideStores,
			internalConfig.ProvideLifecycleEngine,
			internalConfig.ProvideErrorReporter,
			internalConfig.ProvideJobQueries,
			internalConfig.ProvideProfileService,
			internalConfig.ProvideSettlementService,
			internalConfig.ProvideHealthHandler,
			internalConfig.ProvideJobHandler,
			internalConfig.ProvideTicketHandler,
			internalConfig.ProvideProfileHandler,
			internalConfig.ProvideAdminHandler,
			internalConfig.ProvideAPIRouteInitializer,
			config.ProvideRouter,
			server.NewHTTPServer,
		),
		eventModule(cfg),
		reconcilerModule(cfg),
		fx.Invoke(func(*server.HTTPServer) {}),
	).Run()
}

// the in-process queue has to be consumed where it is published
func eventModule(cfg *internalConfig.AppConfig) fx.Option {
	if cfg.Events.Driver == event_init.DriverLocal {
		return event_init.EventQueueModule()
	}
	return event_init.EventPublisherModule()
}

// single node setups run the reconciler next to the API
func reconcilerModule(cfg *internalConfig.AppConfig) fx.Option {
	if !cfg.Reconciler.Enabled {
		return fx.Options()
	}
	return fx.Options(
		fx.Provide(internalConfig.ProvideReconciler),
		fx.Invoke(internalConfig.ManageReconcilerLifecycle),
	)
}
