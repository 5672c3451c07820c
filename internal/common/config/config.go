// internal/common/config/config.go
package config

import "fmt"

// Config is the main application configuration struct.
type Config struct {
	App      AppConfig                `mapstructure:"app"`
	Database DatabaseConfig           `mapstructure:"database"`
	Cache    CacheConfig              `mapstructure:"cache"`
	Engine   EngineConfig             `mapstructure:"engine"`
	Programs map[string]ProgramConfig `mapstructure:"programs"`
	Logging  LoggingConfig            `mapstructure:"logging"`
	Metrics  MetricsConfig            `mapstructure:"metrics"`
}

// --- Core App/Infrastructure Config ---
type AppConfig struct {
	Name        string `mapstructure:"name"`
	Version     string `mapstructure:"version"`
	Environment string `mapstructure:"environment"`
}

type DatabaseConfig struct {
	Postgres PostgresConfig `mapstructure:"postgres"`
	Redis    RedisConfig    `mapstructure:"redis"`
}

type PostgresConfig struct {
	Host           string `mapstructure:"host"`
	Port           int    `mapstructure:"port"`
	Database       string `mapstructure:"database"`
	User           string `mapstructure:"user"`
	Password       string `mapstructure:"password"`
	MaxConnections int    `mapstructure:"max_connections"`
	MaxIdle        int    `mapstructure:"max_idle"`
	SSLMode        string `mapstructure:"sslmode"`
}

// GetDSN returns the PostgreSQL connection string
func (p PostgresConfig) GetDSN() string {
	return fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		p.Host, p.Port, p.User, p.Password, p.Database, p.SSLMode,
	)
}

type RedisConfig struct {
	Address  string `mapstructure:"address"`
	Password string `mapstructure:"password"`
	DB       int    `mapstructure:"db"`
}

// CacheConfig governs the reference-data cache bounds.
type CacheConfig struct {
	TTLHours   int    `mapstructure:"ttl_hours"`
	MaxEntries int    `mapstructure:"max_entries"`
	DataDir    string `mapstructure:"data_dir"` // per-state AMI JSON files
	DataURL    string `mapstructure:"data_url"` // remote AMI endpoint, overrides data_dir when set
}

// EngineConfig holds the evaluation pipeline settings.
type EngineConfig struct {
	ConfidenceThreshold int    `mapstructure:"confidence_threshold"`
	RuleSetDir          string `mapstructure:"ruleset_dir"`
	MaxConcurrency      int    `mapstructure:"max_concurrency"`
}

// ProgramConfig holds the per-program settings: whether the program is
// evaluated at all, plus optional catalog metadata overrides.
type ProgramConfig struct {
	Enabled           bool             `mapstructure:"enabled"`
	Name              string           `mapstructure:"name"`
	Category          string           `mapstructure:"category"`
	Agency            string           `mapstructure:"agency"`
	RequiredDocuments []string         `mapstructure:"required_documents"`
	NextSteps         []string         `mapstructure:"next_steps"`
	EstimatedBenefit  *BenefitEstimate `mapstructure:"estimated_benefit"`
}

type BenefitEstimate struct {
	Amount    float64 `mapstructure:"amount"`
	Frequency string  `mapstructure:"frequency"`
}

// LoggingConfig holds logging settings.
type LoggingConfig struct {
	Level  string `mapstructure:"level"`
	Format string `mapstructure:"format"`
	Output string `mapstructure:"output"`
}

// MetricsConfig holds the Prometheus scrape endpoint settings.
type MetricsConfig struct {
	Enabled bool   `mapstructure:"enabled"`
	Address string `mapstructure:"address"`
}
