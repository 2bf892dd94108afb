package config

import (
	"fmt"
	"os"
	"strings"
	"time"

	"karmahub/internal/repository/dynamodb"

	"github.com/go-playground/validator/v10"
	"github.com/spf13/viper"
)

// AppConfig holds all configuration for the karmahub binaries.
// Every key can be overridden with a KARMAHUB_ environment variable,
// e.g. KARMAHUB_STORE_DRIVER=memory for store.driver.
type AppConfig struct {
	Service    ServiceConfig    `mapstructure:"service"`
	Server     ServerConfig     `mapstructure:"server"`
	Log        LogConfig        `mapstructure:"log"`
	AWS        AWSConfig        `mapstructure:"aws"`
	Store      StoreConfig      `mapstructure:"store"`
	Events     EventsConfig     `mapstructure:"events"`
	Cache      CacheConfig      `mapstructure:"cache"`
	ZooKeeper  ZooKeeperConfig  `mapstructure:"zookeeper"`
	Reconciler ReconcilerConfig `mapstructure:"reconciler"`
	Jobs       JobsConfig       `mapstructure:"jobs"`
	Settlement SettlementConfig `mapstructure:"settlement"`
	Admin      AdminConfig      `mapstructure:"admin"`
}

type ServiceConfig struct {
	Name    string `mapstructure:"name"`
	Version string `mapstructure:"version"`
}

type ServerConfig struct {
	Port              string        `mapstructure:"port" validate:"required"`
	ReadHeaderTimeout time.Duration `mapstructure:"read_header_timeout" validate:"gt=0"`
	ShutdownTimeout   time.Duration `mapstructure:"shutdown_timeout" validate:"gt=0"`
}

type LogConfig struct {
	Development bool `mapstructure:"development"`
}

type AWSConfig struct {
	Region string `mapstructure:"region" validate:"required"`
	// Endpoint points the SDK at LocalStack / DynamoDB Local when set
	Endpoint string `mapstructure:"endpoint"`
}

type StoreConfig struct {
	Driver       string          `mapstructure:"driver" validate:"oneof=dynamodb memory"`
	CreateTables bool            `mapstructure:"create_tables"`
	Tables       dynamodb.Tables `mapstructure:"tables"`
}

type EventsConfig struct {
	Driver            string `mapstructure:"driver" validate:"oneof=sqs local"`
	QueueURL          string `mapstructure:"queue_url" validate:"required_if=Driver sqs"`
	WorkerCount       int    `mapstructure:"worker_count" validate:"min=1"`
	BufferSize        int    `mapstructure:"buffer_size"`
	MaxAttempts       int    `mapstructure:"max_attempts"`
	MaxMessages       int32  `mapstructure:"max_messages"`
	WaitTimeSeconds   int32  `mapstructure:"wait_time_seconds"`
	VisibilityTimeout int32  `mapstructure:"visibility_timeout"`
}

type CacheConfig struct {
	Driver     string        `mapstructure:"driver" validate:"oneof=redis memory"`
	Addr       string        `mapstructure:"addr" validate:"required_if=Driver redis"`
	Password   string        `mapstructure:"password"`
	DB         int           `mapstructure:"db"`
	KeyPrefix  string        `mapstructure:"key_prefix"`
	ProfileTTL time.Duration `mapstructure:"profile_ttl" validate:"gt=0"`
}

type ZooKeeperConfig struct {
	// no servers means a single node that always leads
	Servers        []string      `mapstructure:"servers"`
	SessionTimeout time.Duration `mapstructure:"session_timeout"`
}

type ReconcilerConfig struct {
	Enabled    bool          `mapstructure:"enabled"`
	Schedule   string        `mapstructure:"schedule"`
	StaleAfter time.Duration `mapstructure:"stale_after"`
	NodeID     string        `mapstructure:"node_id"`
	LeaderPath string        `mapstructure:"leader_path"`
}

type JobsConfig struct {
	DefaultKarmaReward int `mapstructure:"default_karma_reward" validate:"min=1"`
}

type SettlementConfig struct {
	// AutoRule is an expr-lang expression over job and ticket; empty keeps
	// settlement a manual admin action
	AutoRule string `mapstructure:"auto_rule"`
}

type AdminConfig struct {
	UserIDs []string `mapstructure:"user_ids"`
}

// IsAdmin reports whether userID may use the admin endpoints
func (c AdminConfig) IsAdmin(userID string) bool {
	if userID == "" {
		return false
	}
	for _, id := range c.UserIDs {
		if id == userID {
			return true
		}
	}
	return false
}

func setDefaults(v *viper.Viper) {
	hostname, _ := os.Hostname()
	tables := dynamodb.DefaultTables()

	v.SetDefault("service.name", "karmahub")
	v.SetDefault("service.version", "v1")
	v.SetDefault("server.port", "8080")
	v.SetDefault("server.read_header_timeout", 5*time.Second)
	v.SetDefault("server.shutdown_timeout", 10*time.Second)
	v.SetDefault("log.development", false)

	v.SetDefault("aws.region", "us-east-1")
	v.SetDefault("aws.endpoint", "")

	v.SetDefault("store.driver", "dynamodb")
	v.SetDefault("store.create_tables", false)
	v.SetDefault("store.tables.jobs", tables.Jobs)
	v.SetDefault("store.tables.applications", tables.Applications)
	v.SetDefault("store.tables.application_keys", tables.ApplicationKeys)
	v.SetDefault("store.tables.tickets", tables.Tickets)
	v.SetDefault("store.tables.ratings", tables.Ratings)
	v.SetDefault("store.tables.profiles", tables.Profiles)
	v.SetDefault("store.tables.activity_log", tables.ActivityLog)

	v.SetDefault("events.driver", "sqs")
	v.SetDefault("events.queue_url", "")
	v.SetDefault("events.worker_count", 2)
	v.SetDefault("events.buffer_size", 256)
	v.SetDefault("events.max_attempts", 3)
	v.SetDefault("events.max_messages", 10)
	v.SetDefault("events.wait_time_seconds", 20)
	v.SetDefault("events.visibility_timeout", 60)

	v.SetDefault("cache.driver", "redis")
	v.SetDefault("cache.addr", "localhost:6379")
	v.SetDefault("cache.password", "")
	v.SetDefault("cache.db", 0)
	v.SetDefault("cache.key_prefix", "karmahub:")
	v.SetDefault("cache.profile_ttl", "60s")

	v.SetDefault("zookeeper.servers", []string{})
	v.SetDefault("zookeeper.session_timeout", "30s")

	v.SetDefault("reconciler.enabled", false)
	v.SetDefault("reconciler.schedule", "@every 1m")
	v.SetDefault("reconciler.stale_after", "2m")
	v.SetDefault("reconciler.node_id", hostname)
	v.SetDefault("reconciler.leader_path", "/karmahub/reconciler/leader")

	v.SetDefault("jobs.default_karma_reward", 10)
	v.SetDefault("settlement.auto_rule", "")
	v.SetDefault("admin.user_ids", []string{})
}

// Load reads configuration from defaults, an optional config.yaml in
// ./configs or the working directory, and KARMAHUB_ environment variables.
func Load() (*AppConfig, error) {
	v := viper.New()
	setDefaults(v)

	v.SetConfigName("config")
	v.SetConfigType("yaml")
	v.AddConfigPath("./configs")
	v.AddConfigPath(".")

	v.SetEnvPrefix("KARMAHUB")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()

	if err := v.ReadInConfig(); err != nil {
		if _, ok := err.(viper.ConfigFileNotFoundError); !ok {
			return nil, fmt.Errorf("failed to read config file: %w", err)
		}
	}

	return decode(v)
}

func decode(v *viper.Viper) (*AppConfig, error) {
	var cfg AppConfig
	if err := v.Unmarshal(&cfg); err != nil {
		return nil, fmt.Errorf("failed to decode config: %w", err)
	}

	if err := validator.New().Struct(&cfg); err != nil {
		return nil, fmt.Errorf("invalid config: %w", err)
	}

	return &cfg, nil
}
