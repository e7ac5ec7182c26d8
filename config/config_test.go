package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func chdirTemp(t *testing.T) string {
	t.Helper()
	dir := t.TempDir()
	wd, err := os.Getwd()
	require.NoError(t, err)
	require.NoError(t, os.Chdir(dir))
	t.Cleanup(func() { _ = os.Chdir(wd) })
	return dir
}

func TestLoadConfigDefaults(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":8080", cfg.HTTP.Addr)
	assert.Equal(t, StoreDriverPostgres, cfg.Store.Driver)
	assert.Equal(t, 10, cfg.RabbitMQ.PrefetchCount)
	assert.False(t, cfg.RabbitMQ.Enabled)
	assert.NoError(t, cfg.Validate())
}

func TestLoadConfigFileThenEnv(t *testing.T) {
	dir := chdirTemp(t)
	path := filepath.Join(dir, "pier.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
http:
  addr: ":9090"
  shutdown_timeout: 3s
store:
  driver: memory
database:
  url: postgres://file
rabbitmq:
  enabled: true
  order_queue: file.orders
`), 0o600))

	t.Setenv("CONFIG_FILE", path)
	t.Setenv("DATABASE_URL", "postgres://env")
	t.Setenv("RABBITMQ_PREFETCH_COUNT", "3")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, ":9090", cfg.HTTP.Addr)
	assert.Equal(t, 3*time.Second, cfg.HTTP.ShutdownTimeout)
	assert.Equal(t, StoreDriverMemory, cfg.Store.Driver)
	assert.Equal(t, "postgres://env", cfg.Postgres.URL)
	assert.True(t, cfg.RabbitMQ.Enabled)
	assert.Equal(t, "file.orders", cfg.RabbitMQ.OrderQueue)
	assert.Equal(t, "pier.order_items", cfg.RabbitMQ.OrderItemQueue)
	assert.Equal(t, 3, cfg.RabbitMQ.PrefetchCount)
}

func TestLoadConfigExplicitMissingFile(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "nope.yaml")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "nope.yaml")
}

func TestLoadConfigRejectsBadNumbers(t *testing.T) {
	chdirTemp(t)
	t.Setenv("CONFIG_FILE", "")
	t.Setenv("POSTGRES_PORT", "five")

	_, err := LoadConfig()
	assert.ErrorContains(t, err, "POSTGRES_PORT")
}

func TestValidate(t *testing.T) {
	cfg := defaults()
	cfg.Store.Driver = "sqlite"
	cfg.RabbitMQ.Enabled = true
	cfg.RabbitMQ.URL = ""

	err := cfg.Validate()
	require.Error(t, err)
	assert.Contains(t, err.Error(), "STORE_DRIVER")
	assert.Contains(t, err.Error(), "RABBITMQ_URL")

	cfg = defaults()
	cfg.ClickHouse.Host = ""
	assert.ErrorContains(t, cfg.ValidateWorkers(), "CLICKHOUSE_HOST")
}
