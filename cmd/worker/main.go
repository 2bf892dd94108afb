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

// The worker consumes lifecycle events and sweeps stalled acceptances.
// It serves only health and metrics over HTTP.
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
			internalConfig.ProvideProfileService,
			internalConfig.ProvideSettlementService,
			internalConfig.ProvideReconciler,
			internalConfig.ProvideHealthHandler,
			internalConfig.ProvideWorkerRouteInitializer,
			config.ProvideRouter,
			server.NewHTTPServer,
		),
		event_init.EventQueueModule(),
		fx.Invoke(internalConfig.ManageReconcilerLifecycle),
		fx.Invoke(func(*server.HTTPServer) {}),
	).Run()
}
