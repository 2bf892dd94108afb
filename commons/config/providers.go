package config

import (
	"context"

	"karmahub/commons/routes"
	"karmahub/commons/server"
	cache "karmahub/internal/cache/iface"
	memoryCache "karmahub/internal/cache/memory"
	redisCache "karmahub/internal/cache/redis"
	internalConfig "karmahub/internal/config"
	coordinator "karmahub/internal/coordinator/iface"
	localCoordinator "karmahub/internal/coordinator/local"
	zkCoordinator "karmahub/internal/coordinator/zk"
	"karmahub/internal/logger"
	"karmahub/internal/notification"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	awsdynamodb "github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/sqs"
	"github.com/gin-gonic/gin"
	"go.uber.org/fx"
	"go.uber.org/fx/fxevent"
)

// ProvideLogger creates and configures the logger for the application
func ProvideLogger(cfg *internalConfig.AppConfig) (logger.Logger, error) {
	if cfg.Log.Development {
		return logger.NewZapLoggerForDev()
	}
	return logger.NewZapLogger()
}

// ProvideFxLogger creates the FX event logger using the application logger
func ProvideFxLogger(log logger.Logger) fxevent.Logger {
	return &fxevent.ZapLogger{
		Logger: log.(*logger.ZapLogger).Logger(),
	}
}

// ProvideRouteDependencies creates route dependencies
func ProvideRouteDependencies(log logger.Logger) routes.RouteDependencies {
	return routes.RouteDependencies{
		Logger: log,
	}
}

// ProvideRouterConfig names the service in router logs
func ProvideRouterConfig(cfg *internalConfig.AppConfig) routes.RouterConfig {
	return routes.RouterConfig{
		ServiceName: cfg.Service.Name,
		Version:     cfg.Service.Version,
	}
}

// ProvideServerConfig creates the HTTP server configuration
func ProvideServerConfig(cfg *internalConfig.AppConfig) server.ServerConfig {
	return server.ServerConfig{
		Port:              cfg.Server.Port,
		ReadHeaderTimeout: cfg.Server.ReadHeaderTimeout,
		ShutdownTimeout:   cfg.Server.ShutdownTimeout,
	}
}

// ProvideRouter creates and configures the Gin router with all routes
func ProvideRouter(
	config routes.RouterConfig,
	deps routes.RouteDependencies,
	routeInitializer func(*gin.Engine, routes.RouteDependencies),
) *gin.Engine {
	router := routes.NewRouter(config, deps)
	routeInitializer(router, deps)
	return router
}

// ProvideAWSConfig loads the shared AWS configuration (LocalStack or AWS)
func ProvideAWSConfig(cfg *internalConfig.AppConfig) (aws.Config, error) {
	endpoint := cfg.AWS.Endpoint

	return awsconfig.LoadDefaultConfig(context.Background(),
		awsconfig.WithRegion(cfg.AWS.Region),
		awsconfig.WithEndpointResolverWithOptions(aws.EndpointResolverWithOptionsFunc(
			func(service, region string, options ...interface{}) (aws.Endpoint, error) {
				if endpoint != "" {
					return aws.Endpoint{
						URL:           endpoint,
						SigningRegion: region,
					}, nil
				}
				return aws.Endpoint{}, &aws.EndpointNotFoundError{}
			})),
	)
}

// ProvideSQSClient provides the SQS client carrying lifecycle events
func ProvideSQSClient(awsCfg aws.Config) *sqs.Client {
	return sqs.NewFromConfig(awsCfg)
}

// ProvideDynamoDBClient provides the DynamoDB client behind the record store
func ProvideDynamoDBClient(awsCfg aws.Config) *awsdynamodb.Client {
	return awsdynamodb.NewFromConfig(awsCfg)
}

// ProvideCache provides the profile cache: Redis, or an in-process map
// for single node runs
func ProvideCache(lc fx.Lifecycle, cfg *internalConfig.AppConfig, log logger.Logger) (cache.Cache, error) {
	var c cache.Cache
	switch cfg.Cache.Driver {
	case "memory":
		c = memoryCache.NewMemoryCache()
	default:
		var err error
		c, err = redisCache.NewRedisCache(redisCache.Options{
			Addr:      cfg.Cache.Addr,
			Password:  cfg.Cache.Password,
			DB:        cfg.Cache.DB,
			KeyPrefix: cfg.Cache.KeyPrefix,
		}, log)
		if err != nil {
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return c.Close()
		},
	})

	return c, nil
}

// ProvideCoordinator provides ZooKeeper coordination when servers are
// configured, otherwise a local coordinator that makes this node the leader
func ProvideCoordinator(lc fx.Lifecycle, cfg *internalConfig.AppConfig, log logger.Logger) (coordinator.Coordinator, error) {
	var coord coordinator.Coordinator
	if len(cfg.ZooKeeper.Servers) == 0 {
		log.Info("no zookeeper servers configured, using local coordinator")
		coord = localCoordinator.NewLocalCoordinator()
	} else {
		var err error
		coord, err = zkCoordinator.NewZKCoordinator(cfg.ZooKeeper.Servers, cfg.ZooKeeper.SessionTimeout, log)
		if err != nil {
			return nil, err
		}
	}

	lc.Append(fx.Hook{
		OnStop: func(ctx context.Context) error {
			return coord.Close()
		},
	})

	return coord, nil
}

// ProvideNotificationSink provides the sink user facing notices go to
func ProvideNotificationSink(log logger.Logger) notification.Sink {
	return notification.NewLogSink(log)
}
