package config

import (
	"context"
	"fmt"
	"time"
)

// PostgresConfig defines the configuration for connecting to a PostgreSQL database.
type PostgresConfig struct {
	Host     string `mapstructure:"host"`
	Port     int    `mapstructure:"port"`
	User     string `mapstructure:"user"`
	Password string `mapstructure:"password"`
	DBName   string `mapstructure:"dbname"`
	SSLMode  string `mapstructure:"sslmode"`
	TimeZone string `mapstructure:"timezone"`

	// Parameter Store names read instead of Host/User/Password in prod.
	HostParam     string `mapstructure:"host_param"`
	UserParam     string `mapstructure:"user_param"`
	PasswordParam string `mapstructure:"password_param"`

	MaxOpenConns    int           `mapstructure:"max_open_conns"`
	MaxIdleConns    int           `mapstructure:"max_idle_conns"`
	ConnMaxLifetime time.Duration `mapstructure:"conn_max_lifetime"`
}

// DSN builds a libpq connection string from the configured values.
func (cfg *PostgresConfig) DSN() string {
	return cfg.dsn(cfg.Host, cfg.User, cfg.Password, cfg.DBName)
}

// AdminDSN points at the server's default "postgres" database, used to create cfg.DBName.
func (cfg *PostgresConfig) AdminDSN() string {
	return cfg.dsn(cfg.Host, cfg.User, cfg.Password, "postgres")
}

// ResolveDSN returns the DSN for env. In prod, host and credentials come
// from Parameter Store; elsewhere the configured values are used.
func (cfg *PostgresConfig) ResolveDSN(ctx context.Context, env string, params ParameterGetter) (string, error) {
	if env != "prod" {
		return cfg.DSN(), nil
	}

	host, err := params.GetParameter(ctx, cfg.HostParam, true)
	if err != nil {
		return "", fmt.Errorf("resolve db host: %w", err)
	}
	user, err := params.GetParameter(ctx, cfg.UserParam, true)
	if err != nil {
		return "", fmt.Errorf("resolve db user: %w", err)
	}
	password, err := params.GetParameter(ctx, cfg.PasswordParam, true)
	if err != nil {
		return "", fmt.Errorf("resolve db password: %w", err)
	}

	return cfg.dsn(host, user, password, cfg.DBName), nil
}

func (cfg *PostgresConfig) dsn(host, user, password, dbname string) string {
	dsn := fmt.Sprintf(
		"host=%s port=%d user=%s password=%s dbname=%s sslmode=%s",
		host, cfg.Port, user, password, dbname, cfg.SSLMode,
	)

	if cfg.TimeZone != "" {
		dsn += fmt.Sprintf(" TimeZone=%s", cfg.TimeZone)
	}

	return dsn
}
