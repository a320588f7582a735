package pg

import (
	"time"

	"github.com/jackc/pgx/v5/pgxpool"
)

type PoolOptions struct {
	ConnMaxIdleTime         time.Duration
	ConnMaxLifetime         time.Duration
	ConnMaxLifetimeJitter   time.Duration
	ConnHealthCheckInterval time.Duration
	MinOpenConns            int
	MaxOpenConns            int
}

func defaultPoolOptions() PoolOptions {
	return PoolOptions{
		ConnMaxIdleTime:         30 * time.Minute,
		ConnMaxLifetime:         30 * time.Minute,
		MaxOpenConns:            10,
		MinOpenConns:            10,
		ConnHealthCheckInterval: 30 * time.Second,
	}
}

type Option func(*postgresOptions)

type postgresOptions struct {
	poolOptions PoolOptions
}

func (c *postgresOptions) PgxConfig(url string) (*pgxpool.Config, error) {
	pgxConfig, err := pgxpool.ParseConfig(url)
	if err != nil {
		return nil, err
	}
	pgxConfig.MaxConnIdleTime = c.poolOptions.ConnMaxIdleTime
	pgxConfig.MaxConnLifetime = c.poolOptions.ConnMaxLifetime
	pgxConfig.MaxConnLifetimeJitter = c.poolOptions.ConnMaxLifetimeJitter
	pgxConfig.MaxConns = int32(c.poolOptions.MaxOpenConns)
	pgxConfig.MinConns = int32(c.poolOptions.MinOpenConns)
	pgxConfig.HealthCheckPeriod = c.poolOptions.ConnHealthCheckInterval

	return pgxConfig, nil
}

func newPostgresConfig(options []Option) *postgresOptions {
	pgOptions := &postgresOptions{
		poolOptions: defaultPoolOptions(),
	}

	for _, option := range options {
		option(pgOptions)
	}

	return pgOptions
}

// ConnMaxIdleTime is the duration after which an idle pool connection will
// be automatically closed by the health check.
//
// This value defaults to 30 minutes.
func ConnMaxIdleTime(idle time.Duration) Option {
	return func(po *postgresOptions) { po.poolOptions.ConnMaxIdleTime = idle }
}

// ConnMaxLifetime is the duration since creation after which a pool
// connection will be automatically closed.
//
// This value defaults to 30 minutes.
func ConnMaxLifetime(lifetime time.Duration) Option {
	return func(po *postgresOptions) { po.poolOptions.ConnMaxLifetime = lifetime }
}

func ConnHealthCheckInterval(interval time.Duration) Option {
	return func(po *postgresOptions) { po.poolOptions.ConnHealthCheckInterval = interval }
}

// ConnMaxLifetimeJitter is an interval to wait up to after the max lifetime
// to close the connection.
//
// This value defaults to zero (no jitter).
func ConnMaxLifetimeJitter(jitter time.Duration) Option {
	return func(po *postgresOptions) { po.poolOptions.ConnMaxLifetimeJitter = jitter }
}

// ConnsMinOpen is the minimum size of the connection pool.
//
// The health check will increase the number of connections to this amount if
// it had dropped below.
//
// This value defaults to 10, the same as the default maximum.
func ConnsMinOpen(conns int) Option {
	return func(po *postgresOptions) { po.poolOptions.MinOpenConns = conns }
}

// ConnsMaxOpen is the maximum size of the connection pool.
//
// This value defaults to 10.
func ConnsMaxOpen(conns int) Option {
	return func(po *postgresOptions) { po.poolOptions.MaxOpenConns = conns }
}
