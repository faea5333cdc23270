// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App           AppConfig           `mapstructure:"app"`
	Server        ServerConfig        `mapstructure:"server"`
	Registry      RegistryConfig      `mapstructure:"registry"`
	Events        EventsConfig        `mapstructure:"events"`
	Database      DatabaseConfig      `mapstructure:"database"`
	Camunda       CamundaConfig       `mapstructure:"camunda"`
	Messaging     MessagingConfig     `mapstructure:"messaging"`
	Notifications NotificationConfig  `mapstructure:"notifications"`
	Observability ObservabilityConfig `mapstructure:"observability"`
	Logging       LoggingConfig       `mapstructure:"logging"`
}

// --- Core App/Server Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type ServerConfig struct {
	Address         string `mapstructure:"address"`
	ReadTimeout     int    `mapstructure:"read_timeout"`     // milliseconds
	WriteTimeout    int    `mapstructure:"write_timeout"`    // milliseconds
	ShutdownTimeout int    `mapstructure:"shutdown_timeout"` // milliseconds
}

// RegistryConfig controls how the activity registry is seeded and which
// business rules it applies.
type RegistryConfig struct {
	SeedPath        string `mapstructure:"seed_path"`
	EnforceCapacity bool   `mapstructure:"enforce_capacity"`
	// StrictEmail rejects participant emails that do not parse as addresses.
	StrictEmail bool `mapstructure:"strict_email"`
}

// EventsConfig sizes the registration event dispatcher.
type EventsConfig struct {
	Enabled     bool `mapstructure:"enabled"`
	Workers     int  `mapstructure:"workers"`
	QueueSize   int  `mapstructure:"queue_size"`
	SinkTimeout int  `mapstructure:"sink_timeout"` // milliseconds
}

type DatabaseConfig struct {
	Postgres      PostgresConfig      `mapstructure:"postgres"`
	Elasticsearch ElasticsearchConfig `mapstructure:"elasticsearch"`
	Redis         RedisConfig         `mapstructure:"redis"`
}

type PostgresConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
	AuditTable     string `mapstructure:"audit_table"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type ElasticsearchConfig struct {
	Enabled   bool     `mapstructure:"enabled"`
	Addresses []string `mapstructure:"addresses"`
	Username  string   `mapstructure:"username"`
	Password  string   `mapstructure:"password"`
	Index     string   `mapstructure:"index"`
}

type RedisConfig struct {
	Enabled   bool   `mapstructure:"enabled"`
	Address   string `mapstructure:"address"`
	Password  string `mapstructure:"password"`
	DB        int    `mapstructure:"db"`
	Stream    string `mapstructure:"stream"`
	StreamLen int64  `mapstructure:"stream_max_len"`
}

type CamundaConfig struct {
	Enabled        bool   `mapstructure:"enabled"`
	BrokerAddress  string `mapstructure:"broker_address"`
	ProcessID      string `mapstructure:"process_id"`
	RequestTimeout int    `mapstructure:"request_timeout"` // milliseconds
}

// MessagingConfig holds settings for the NATS event sink.
type MessagingConfig struct {
	NATS struct {
		Enabled       bool   `mapstructure:"enabled"`
		URL           string `mapstructure:"url"`
		SubjectPrefix string `mapstructure:"subject_prefix"`
	} `mapstructure:"nats"`
}

// NotificationConfig holds settings for the AWS backed sinks.
type NotificationConfig struct {
	AWS struct {
		Region string `mapstructure:"region"`
	} `mapstructure:"aws"`
	Email struct {
		Enabled   bool   `mapstructure:"enabled"`
		FromEmail string `mapstructure:"from_email"`
	} `mapstructure:"email"`
	Topic struct {
		Enabled  bool   `mapstructure:"enabled"`
		TopicARN string `mapstructure:"topic_arn"`
	} `mapstructure:"topic"`
}

type ObservabilityConfig struct {
	Tracing struct {
		Enabled        bool    `mapstructure:"enabled"`
		JaegerEndpoint string  `mapstructure:"jaeger_endpoint"`
		SampleRatio    float64 `mapstructure:"sample_ratio"`
	} `mapstructure:"tracing"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}
