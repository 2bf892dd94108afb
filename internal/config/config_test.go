package config

import (
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadDefaults(t *testing.T) {
	t.Setenv("KARMAHUB_EVENTS_QUEUE_URL", "http://localhost:4566/000000000000/karmahub-events")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Server.Port)
	assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
	assert.Equal(t, "dynamodb", cfg.Store.Driver)
	assert.Equal(t, "jobs", cfg.Store.Tables.Jobs)
	assert.Equal(t, "job_application_keys", cfg.Store.Tables.ApplicationKeys)
	assert.Equal(t, 60*time.Second, cfg.Cache.ProfileTTL)
	assert.Equal(t, 2*time.Minute, cfg.Reconciler.StaleAfter)
	assert.Equal(t, "@every 1m", cfg.Reconciler.Schedule)
	assert.Equal(t, 10, cfg.Jobs.DefaultKarmaReward)
	assert.Empty(t, cfg.Settlement.AutoRule)
	assert.Empty(t, cfg.ZooKeeper.Servers)
}

func TestLoadEnvOverrides(t *testing.T) {
	t.Setenv("KARMAHUB_STORE_DRIVER", "memory")
	t.Setenv("KARMAHUB_EVENTS_DRIVER", "local")
	t.Setenv("KARMAHUB_CACHE_DRIVER", "memory")
	t.Setenv("KARMAHUB_CACHE_PROFILE_TTL", "5s")
	t.Setenv("KARMAHUB_ZOOKEEPER_SERVERS", "zk1:2181,zk2:2181")
	t.Setenv("KARMAHUB_ADMIN_USER_IDS", "admin-1,admin-2")

	cfg, err := Load()
	require.NoError(t, err)

	assert.Equal(t, "memory", cfg.Store.Driver)
	assert.Equal(t, "local", cfg.Events.Driver)
	assert.Equal(t, 5*time.Second, cfg.Cache.ProfileTTL)
	assert.Equal(t, []string{"zk1:2181", "zk2:2181"}, cfg.ZooKeeper.Servers)
	assert.True(t, cfg.Admin.IsAdmin("admin-2"))
	assert.False(t, cfg.Admin.IsAdmin("user-1"))
	assert.False(t, cfg.Admin.IsAdmin(""))
}

func TestDecodeYAML(t *testing.T) {
	v := viper.New()
	setDefaults(v)
	v.SetConfigType("yaml")
	require.NoError(t, v.ReadConfig(strings.NewReader(`
store:
  driver: memory
  tables:
    jobs: staging_jobs
events:
  driver: local
settlement:
  auto_rule: job.job_type == "good_deeds"
`)))

	cfg, err := decode(v)
	require.NoError(t, err)
	assert.Equal(t, "staging_jobs", cfg.Store.Tables.Jobs)
	assert.Equal(t, "ratings", cfg.Store.Tables.Ratings)
	assert.Equal(t, `job.job_type == "good_deeds"`, cfg.Settlement.AutoRule)
}

func TestDecodeRejectsInvalidConfig(t *testing.T) {
	tests := []struct {
		name string
		key  string
		val  any
	}{
		{name: "unknown store driver", key: "store.driver", val: "postgres"},
		{name: "sqs without queue url", key: "events.driver", val: "sqs"},
		{name: "zero karma reward", key: "jobs.default_karma_reward", val: 0},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			v := viper.New()
			setDefaults(v)
			v.Set("events.driver", "local")
			v.Set(tt.key, tt.val)

			_, err := decode(v)
			assert.Error(t, err)
		})
	}
}
