package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeConfig(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestLoadFromFile_AppliesDefaults(t *testing.T) {
	path := writeConfig(t, `
app:
  name: activities
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)

	assert.Equal(t, "activities", cfg.App.Name)
	assert.Equal(t, ":8000", cfg.Server.Address)
	assert.Equal(t, 4, cfg.Events.Workers)
	assert.Equal(t, 256, cfg.Events.QueueSize)
	assert.Equal(t, "activity_registration_events", cfg.Database.Postgres.AuditTable)
	assert.Equal(t, "activities:registrations", cfg.Database.Redis.Stream)
	assert.Equal(t, "activity-registrations", cfg.Database.Elasticsearch.Index)
	assert.Equal(t, "activity-registration", cfg.Camunda.ProcessID)
	assert.Equal(t, "info", cfg.Logging.Level)
	assert.False(t, cfg.Registry.EnforceCapacity)
	assert.False(t, cfg.Registry.StrictEmail)
}

func TestLoadFromFile_ExpandsEnvPlaceholders(t *testing.T) {
	t.Setenv("TEST_REDIS_ADDR", "localhost:6390")
	path := writeConfig(t, `
database:
  redis:
    enabled: true
    address: ${TEST_REDIS_ADDR}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "localhost:6390", cfg.Database.Redis.Address)
}

func TestLoadFromFile_UnsetPlaceholderIsEmpty(t *testing.T) {
	os.Unsetenv("TEST_REDIS_SECRET_UNSET")
	t.Setenv("REDIS_PASSWORD", "from-env")
	path := writeConfig(t, `
database:
  redis:
    password: ${TEST_REDIS_SECRET_UNSET}
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.Equal(t, "from-env", cfg.Database.Redis.Password)
}

func TestLoadFromFile_RepositoryConfig(t *testing.T) {
	cfg, err := LoadFromFile(filepath.Join("..", "..", "..", "configs", "config.yaml"))
	require.NoError(t, err)
	assert.Equal(t, "mergington-activities", cfg.App.Name)
	assert.True(t, cfg.Events.Enabled)
	assert.False(t, cfg.Database.Postgres.Enabled)
	assert.False(t, cfg.Registry.StrictEmail)
}

func TestLoadFromFile_EnvOverridesKey(t *testing.T) {
	t.Setenv("REGISTRY_ENFORCE_CAPACITY", "true")
	path := writeConfig(t, `
registry:
  seed_path: ""
`)

	cfg, err := LoadFromFile(path)
	require.NoError(t, err)
	assert.True(t, cfg.Registry.EnforceCapacity)
}

func TestLoadFromFile_ValidationErrors(t *testing.T) {
	tests := []struct {
		name    string
		body    string
		wantErr string
	}{
		{
			name: "postgres enabled without host",
			body: `
database:
  postgres:
    enabled: true
    database: school
    user: app
`,
			wantErr: "database.postgres.host is required",
		},
		{
			name: "redis enabled without address",
			body: `
database:
  redis:
    enabled: true
`,
			wantErr: "database.redis.address is required",
		},
		{
			name: "camunda enabled without broker",
			body: `
camunda:
  enabled: true
`,
			wantErr: "camunda.broker_address is required",
		},
		{
			name: "email enabled without sender",
			body: `
notifications:
  aws:
    region: eu-west-1
  email:
    enabled: true
`,
			wantErr: "notifications.email.from_email is required",
		},
		{
			name: "tracing enabled without endpoint",
			body: `
observability:
  tracing:
    enabled: true
`,
			wantErr: "observability.tracing.jaeger_endpoint is required",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := LoadFromFile(writeConfig(t, tt.body))
			require.Error(t, err)
			assert.Contains(t, err.Error(), tt.wantErr)
		})
	}
}

func TestLoadFromFile_MissingFile(t *testing.T) {
	_, err := LoadFromFile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.Error(t, err)
}

func TestGetDuration(t *testing.T) {
	assert.Equal(t, 1500*time.Millisecond, GetDuration(1500))
	assert.Equal(t, time.Duration(0), GetDuration(0))
}
