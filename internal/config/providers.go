package config

import (
	"context"

	"karmahub/commons/routes"
	cache "karmahub/internal/cache/iface"
	coordinator "karmahub/internal/coordinator/iface"
	"karmahub/internal/events"
	"karmahub/internal/handler"
	"karmahub/internal/logger"
	"karmahub/internal/notification"
	"karmahub/internal/repository/dynamodb"
	"karmahub/internal/repository/memory"
	internalRoutes "karmahub/internal/routes"
	"karmahub/internal/service"

	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
)

// Repository Providers

// StoreParams holds dependencies for the record store
type StoreParams struct {
	fx.In

	Lifecycle fx.Lifecycle
	Config    *AppConfig
	Client    *awsdynamodb.Client `optional:"true"`
	Logger    logger.Logger
}

// ProvideStores provides the repositories for the configured store driver
func ProvideStores(params StoreParams) service.Stores {
	if params.Config.Store.Driver == "memory" {
		params.Logger.Warn("using the in-memory record store, data is lost on restart")
		return MemoryStores(memory.NewStore())
	}

	tables := params.Config.Store.Tables
	client := params.Client
	log := params.Logger

	if params.Config.Store.CreateTables {
		params.Lifecycle.Append(fx.Hook{
			OnStart: func(ctx context.Context) error {
				log.Info("ensuring dynamodb tables")
				return dynamodb.EnsureTables(ctx, client, tables, log)
			},
		})
	}

	return service.Stores{
		Jobs:         dynamodb.NewJobRepository(client, tables.Jobs, log),
		Applications: dynamodb.NewApplicationRepository(client, tables.Applications, tables.ApplicationKeys, log),
		Tickets:      dynamodb.NewTicketRepository(client, tables.Tickets, log),
		Settlement:   dynamodb.NewSettlementRepository(client, tables.Tickets, tables.Profiles, log),
		Ratings:      dynamodb.NewRatingRepository(client, tables.Ratings, log),
		Profiles:     dynamodb.NewProfileRepository(client, tables.Profiles, log),
		ActivityLog:  dynamodb.NewActivityLogRepository(client, tables.ActivityLog, log),
	}
}

// MemoryStores exposes an in-memory store as service repositories
func MemoryStores(store *memory.Store) service.Stores {
	return service.Stores{
		Jobs:         store.Jobs(),
		Applications: store.Applications(),
		Tickets:      store.Tickets(),
		Settlement:   store.Settlement(),
		Ratings:      store.Ratings(),
		Profiles:     store.Profiles(),
		ActivityLog:  store.ActivityLog(),
	}
}

// Service Providers

func ProvideLifecycleEngine(
	stores service.Stores,
	publisher events.Publisher,
	cfg *AppConfig,
	log logger.Logger,
) service.LifecycleEngine {
	return service.NewLifecycleEngine(stores, publisher, service.EngineConfig{
		DefaultKarmaReward: cfg.Jobs.DefaultKarmaReward,
	}, log)
}

func ProvideErrorReporter(sink notification.Sink, log logger.Logger) service.ErrorReporter {
	return service.NewErrorReporter(sink, log)
}

func ProvideJobQueries(stores service.Stores, reporter service.ErrorReporter, log logger.Logger) service.JobQueries {
	return service.NewJobQueries(stores, reporter, log)
}

func ProvideProfileService(stores service.Stores, c cache.Cache, cfg *AppConfig, log logger.Logger) service.ProfileService {
	return service.NewProfileService(stores, c, cfg.Cache.ProfileTTL, log)
}

func ProvideSettlementService(
	stores service.Stores,
	profiles service.ProfileService,
	cfg *AppConfig,
	log logger.Logger,
) (service.SettlementService, error) {
	return service.NewSettlementService(stores, profiles, cfg.Settlement.AutoRule, log)
}

func ProvideReconciler(
	stores service.Stores,
	engine service.LifecycleEngine,
	coord coordinator.Coordinator,
	cfg *AppConfig,
	log logger.Logger,
) service.Reconciler {
	return service.NewReconciler(stores, engine, coord, service.ReconcilerConfig{
		Schedule:   cfg.Reconciler.Schedule,
		StaleAfter: cfg.Reconciler.StaleAfter,
		NodeID:     cfg.Reconciler.NodeID,
		LeaderPath: cfg.Reconciler.LeaderPath,
	}, log)
}

// HTTP Providers

func ProvideHealthHandler(cfg *AppConfig, log logger.Logger) *handler.HealthHandler {
	return handler.NewHealthHandler(log, cfg.Service.Name, cfg.Service.Version)
}

func ProvideJobHandler(
	log logger.Logger,
	engine service.LifecycleEngine,
	queries service.JobQueries,
	sink notification.Sink,
) *handler.JobHandler {
	return handler.NewJobHandler(log, engine, queries, sink)
}

func ProvideTicketHandler(
	log logger.Logger,
	engine service.LifecycleEngine,
	queries service.JobQueries,
	sink notification.Sink,
) *handler.TicketHandler {
	return handler.NewTicketHandler(log, engine, queries, sink)
}

func ProvideProfileHandler(
	log logger.Logger,
	profiles service.ProfileService,
	stores service.Stores,
	sink notification.Sink,
) *handler.ProfileHandler {
	return handler.NewProfileHandler(log, profiles, stores.ActivityLog, sink)
}

func ProvideAdminHandler(
	log logger.Logger,
	settlement service.SettlementService,
	queries service.JobQueries,
	cfg *AppConfig,
	sink notification.Sink,
) *handler.AdminHandler {
	return handler.NewAdminHandler(log, settlement, queries, cfg.Admin, sink)
}

// ProvideAPIRouteInitializer creates route initializer for the api service
func ProvideAPIRouteInitializer(
	healthHandler *handler.HealthHandler,
	jobHandler *handler.JobHandler,
	ticketHandler *handler.TicketHandler,
	profileHandler *handler.ProfileHandler,
	adminHandler *handler.AdminHandler,
) func(*gin.Engine, routes.RouteDependencies) {
	return func(router *gin.Engine, deps routes.RouteDependencies) {
		internalRoutes.InitHealthRoutes(router, healthHandler, deps.Logger)
		internalRoutes.InitJobRoutes(router, jobHandler, deps.Logger)
		internalRoutes.InitTicketRoutes(router, ticketHandler, deps.Logger)
		internalRoutes.InitProfileRoutes(router, profileHandler, deps.Logger)
		internalRoutes.InitAdminRoutes(router, adminHandler, deps.Logger)
	}
}

// ProvideWorkerRouteInitializer creates route initializer for the worker,
// which only serves health and metrics
func ProvideWorkerRouteInitializer(
	healthHandler *handler.HealthHandler,
) func(*gin.Engine, routes.RouteDependencies) {
	return func(router *gin.Engine, deps routes.RouteDependencies) {
		internalRoutes.InitHealthRoutes(router, healthHandler, deps.Logger)
	}
}

// Lifecycle Management

func ManageReconcilerLifecycle(lc fx.Lifecycle, reconciler service.Reconciler, log logger.Logger) {
	lc.Append(fx.Hook{
		OnStart: func(ctx context.Context) error {
			log.Info("starting acceptance reconciler")
			return reconciler.Start(ctx)
		},
		OnStop: func(ctx context.Context) error {
			log.Info("stopping acceptance reconciler")
			return reconciler.Stop(ctx)
		},
	})
}
