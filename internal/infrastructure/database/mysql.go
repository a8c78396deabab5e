package database

import (
	"context"
	"crypto/tls"
	"database/sql"
	"fmt"
	"sync"
	"time"

	"github.com/go-sql-driver/mysql"
	"github.com/sirupsen/logrus"
)

// Config holds connection settings for MySQL or TiDB
type Config struct {
	Host     string
	Port     int
	User     string
	Password string
	Name     string
	TLS      bool
}

// Connection wraps the shared *sql.DB.
// sql.DB is already safe for concurrent use and pools its own connections.
type Connection struct {
	db *sql.DB
}

var tlsOnce sync.Once

// DSN builds the driver data source name. Timestamps are parsed into time.Time in UTC.
func (c Config) DSN() string {
	cfg := mysql.NewConfig()
	cfg.User = c.User
	cfg.Passwd = c.Password
	cfg.Net = "tcp"
	cfg.Addr = fmt.Sprintf("%s:%d", c.Host, c.Port)
	cfg.DBName = c.Name
	cfg.ParseTime = true
	cfg.Loc = time.UTC
	cfg.Params = map[string]string{"charset": "utf8mb4"}
	if c.TLS {
		cfg.TLSConfig = "atlas"
	}
	return cfg.FormatDSN()
}

// Open connects and pings the database
func Open(ctx context.Context, c Config) (*Connection, error) {
	if c.TLS {
		// remote hosts such as TiDB Cloud need ServerName for verification
		tlsOnce.Do(func() {
			if err := mysql.RegisterTLSConfig("atlas", &tls.Config{
				MinVersion: tls.VersionTLS12,
				ServerName: c.Host,
			}); err != nil {
				logrus.WithError(err).Error("❌ failed to register TLS config")
			}
		})
	}

	db, err := sql.Open("mysql", c.DSN())
	if err != nil {
		return nil, fmt.Errorf("failed to open database: %w", err)
	}

	// MaxIdleConns matches MaxOpenConns so connections are not churned under load
	db.SetMaxOpenConns(50)
	db.SetMaxIdleConns(50)
	db.SetConnMaxLifetime(5 * time.Minute)
	db.SetConnMaxIdleTime(3 * time.Minute)

	pingCtx, cancel := context.WithTimeout(ctx, 10*time.Second)
	defer cancel()
	if err := db.PingContext(pingCtx); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	logrus.WithFields(logrus.Fields{"host": c.Host, "database": c.Name}).Info("✅ database connected")
	return &Connection{db: db}, nil
}

// DB returns the underlying *sql.DB
func (c *Connection) DB() *sql.DB {
	return c.db
}

// Ping checks the connection is alive
func (c *Connection) Ping(ctx context.Context) error {
	return c.db.PingContext(ctx)
}

// Close closes the database connection
func (c *Connection) Close() error {
	return c.db.Close()
}
