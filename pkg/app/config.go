package app

import (
	"time"

	"github.com/spf13/viper"
)

// BaseConfig contains the process configuration for a job.
type BaseConfig struct {
	LogLevel string `mapstructure:"log_level"`

	AppName string `mapstructure:"app_name"`

	// Metrics are only reported when a license key is provided
	NewRelicLicenseKey string `mapstructure:"new_relic_license_key"`

	SolanaEndpoint string `mapstructure:"solana_endpoint"`
	Commitment     string `mapstructure:"commitment"`

	// Airdrop requests per second allowed for each funded account. Zero
	// disables pacing.
	AirdropRateLimit float64 `mapstructure:"airdrop_rate_limit"`

	// Run records are kept in memory when no database host is configured
	DatabaseHost               string `mapstructure:"database_host"`
	DatabasePort               int    `mapstructure:"database_port"`
	DatabaseUser               string `mapstructure:"database_user"`
	DatabasePassword           string `mapstructure:"database_password"`
	DatabaseName               string `mapstructure:"database_name"`
	DatabaseMaxOpenConnections int    `mapstructure:"database_max_open_connections"`
	DatabaseMaxIdleConnections int    `mapstructure:"database_max_idle_connections"`
	DatabaseUseAwsIam          bool   `mapstructure:"database_use_aws_iam"`

	// RunSchedule is a cron expression. When empty, the job runs once and
	// the process exits.
	RunSchedule string `mapstructure:"run_schedule"`

	ShutdownGracePeriod time.Duration `mapstructure:"shutdown_grace_period"`
}

var defaultConfig = BaseConfig{
	LogLevel: "info",

	AppName: "vault-driver",

	SolanaEndpoint: "http://localhost:8899",
	Commitment:     "confirmed",

	DatabasePort: 5432,

	ShutdownGracePeriod: 30 * time.Second,
}

func bindEnvs(v *viper.Viper) {
	_ = v.BindEnv("log_level", "LOG_LEVEL")

	_ = v.BindEnv("app_name", "APP_NAME")

	_ = v.BindEnv("new_relic_license_key", "NEW_RELIC_LICENSE_KEY")

	_ = v.BindEnv("solana_endpoint", "SOLANA_ENDPOINT")
	_ = v.BindEnv("commitment", "COMMITMENT")
	_ = v.BindEnv("airdrop_rate_limit", "AIRDROP_RATE_LIMIT")

	_ = v.BindEnv("database_host", "DATABASE_HOST")
	_ = v.BindEnv("database_port", "DATABASE_PORT")
	_ = v.BindEnv("database_user", "DATABASE_USER")
	_ = v.BindEnv("database_password", "DATABASE_PASSWORD")
	_ = v.BindEnv("database_name", "DATABASE_NAME")
	_ = v.BindEnv("database_max_open_connections", "DATABASE_MAX_OPEN_CONNECTIONS")
	_ = v.BindEnv("database_max_idle_connections", "DATABASE_MAX_IDLE_CONNECTIONS")
	_ = v.BindEnv("database_use_aws_iam", "DATABASE_USE_AWS_IAM")

	_ = v.BindEnv("run_schedule", "RUN_SCHEDULE")

	_ = v.BindEnv("shutdown_grace_period", "SHUTDOWN_GRACE_PERIOD")
}

// LoadConfig reads the config file at path, when it exists, and applies
// environment overrides on top of the defaults.
func LoadConfig(path string) (*BaseConfig, error) {
	v := viper.New()
	bindEnvs(v)

	// viper.ReadInConfig only returns ConfigFileNotFoundError if it has to search
	// for a default config file because one hasn't been explicitly set, so the
	// file is checked for explicitly.
	if fileExists(path) {
		v.SetConfigFile(path)
	}

	err := v.ReadInConfig()
	_, isConfigNotFound := err.(viper.ConfigFileNotFoundError)
	if err != nil && !isConfigNotFound {
		return nil, err
	}

	config := defaultConfig
	if err := v.Unmarshal(&config); err != nil {
		return nil, err
	}
	return &config, nil
}
