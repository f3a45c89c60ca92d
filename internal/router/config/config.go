package config

import "github.com/spf13/viper"

// Config holds the application configuration.
type Config struct {
	ServerAddress  string `mapstructure:"SERVER_ADDRESS"`
	PostgresConn   string `mapstructure:"POSTGRES_CONN"`
	PostgresUser   string `mapstructure:"POSTGRES_USERNAME"`
	PostgresPass   string `mapstructure:"POSTGRES_PASSWORD"`
	PostgresHost   string `mapstructure:"POSTGRES_HOST"`
	PostgresPort   string `mapstructure:"POSTGRES_PORT"`
	PostgresDB     string `mapstructure:"POSTGRES_DATABASE"`
	MigrationURL   string `mapstructure:"MIGRATION_URL"`
	RedisAddr      string `mapstructure:"REDIS_ADDR"` // empty disables the access cache
	PaymentBaseURL string `mapstructure:"PAYMENT_BASE_URL"`
	SweepSpec      string `mapstructure:"SWEEP_SPEC"` // cron spec for the deadline sweep
}

// LoadConfig loads the configuration from an env file.
func LoadConfig(path string) (cfg Config, err error) {
	viper.AddConfigPath(path)
	viper.SetConfigName("app")
	viper.SetConfigType("env")

	err = viper.ReadInConfig()
	if err != nil {
		return
	}
	err = viper.Unmarshal(&cfg)
	if err != nil {
		return
	}
	if cfg.SweepSpec == "" {
		cfg.SweepSpec = "@every 1m"
	}
	return
}
