package sqldb

import (
	"context"
	"fmt"
	"time"

	"cryptopusher/config"

	"gorm.io/driver/mysql"
	"gorm.io/driver/postgres"
	"gorm.io/gorm"
	"gorm.io/gorm/logger"
)

type Client struct {
	DB     *gorm.DB
	driver string
}

// Open connects with the gorm dialector matching driver ("postgres" or "mysql").
func Open(driver, dsn string) (*Client, error) {
	var dialector gorm.Dialector
	switch driver {
	case "postgres", "":
		driver = "postgres"
		dialector = postgres.Open(dsn)
	case "mysql":
		dialector = mysql.Open(dsn)
	default:
		return nil, fmt.Errorf("unsupported sql driver %q", driver)
	}

	db, err := gorm.Open(dialector, &gorm.Config{Logger: logger.Default.LogMode(logger.Warn)})
	if err != nil {
		return nil, fmt.Errorf("failed to connect to %s: %w", driver, err)
	}

	return &Client{DB: db, driver: driver}, nil
}

// Initialize connects using cfg, optionally creates the postgres database
// first, applies pool settings and runs AutoMigrate.
func Initialize(ctx context.Context, cfg config.SQLConfig, dsn string) (*Client, error) {
	if cfg.Driver != "mysql" && cfg.CreateDatabase {
		if err := CreateDatabase(ctx, cfg.Postgres.AdminDSN(), cfg.Postgres.DBName); err != nil {
			return nil, fmt.Errorf("failed to create database: %w", err)
		}
	}

	client, err := Open(cfg.Driver, dsn)
	if err != nil {
		return nil, err
	}

	if err := client.configurePool(cfg.Postgres); err != nil {
		return nil, err
	}

	if err := client.AutoMigrate(); err != nil {
		_ = client.Close()
		return nil, fmt.Errorf("migration failed: %w", err)
	}

	return client, nil
}

func (c *Client) configurePool(cfg config.PostgresConfig) error {
	db, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	if cfg.MaxOpenConns > 0 {
		db.SetMaxOpenConns(cfg.MaxOpenConns)
	}
	if cfg.MaxIdleConns > 0 {
		db.SetMaxIdleConns(cfg.MaxIdleConns)
	}
	if cfg.ConnMaxLifetime > 0 {
		db.SetConnMaxLifetime(cfg.ConnMaxLifetime)
	} else {
		db.SetConnMaxLifetime(time.Hour)
	}
	return nil
}

func (c *Client) Driver() string { return c.driver }

func (c *Client) AutoMigrate() error {
	if err := c.DB.AutoMigrate(&ThresholdRecord{}); err != nil {
		return fmt.Errorf("auto-migrate threshold table: %w", err)
	}
	return nil
}

func (c *Client) IsHealthy(ctx context.Context) bool {
	db, err := c.DB.DB()
	if err != nil {
		return false
	}
	return db.PingContext(ctx) == nil
}

func (c *Client) Close() error {
	db, err := c.DB.DB()
	if err != nil {
		return fmt.Errorf("failed to retrieve raw DB: %w", err)
	}
	return db.Close()
}
