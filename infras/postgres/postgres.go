package postgres

//nolint:revive
import (
	"fmt"
	"keepsake/config"
	"net"
	"time"

	"github.com/jmoiron/sqlx"
	_ "github.com/lib/pq"
	"github.com/rs/zerolog/log"
)

const (
	postgresMaxIdleConnection = 10
	postgresMaxOpenConnection = 10
)

type Connection struct {
	Read  *sqlx.DB
	Write *sqlx.DB
}

type endpoint struct {
	name     string
	username string
	password string
	host     string
	port     string
	dbName   string
	sslMode  string
}

func New(config *config.Config) (*Connection, error) {
	write, err := Connect(writeEndpoint(*config), config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
	if err != nil {
		return nil, err
	}

	read, err := Connect(readEndpoint(*config), config.DB.Postgres.MaxRetry, config.DB.Postgres.RetryWaitTime)
	if err != nil {
		_ = write.Close()

		return nil, err
	}

	return &Connection{
		Read:  read,
		Write: write,
	}, nil
}

// Close closes both pools.
func (c *Connection) Close() error {
	readErr := c.Read.Close()
	writeErr := c.Write.Close()

	if writeErr != nil {
		return fmt.Errorf("failed to close write connection: %w", writeErr)
	}

	if readErr != nil {
		return fmt.Errorf("failed to close read connection: %w", readErr)
	}

	return nil
}

// GetDBName returns the database name with prefix if configured
func GetDBName(config config.Config, baseName string) string {
	if config.DB.Postgres.Prefix != "" {
		return config.DB.Postgres.Prefix + baseName
	}

	return baseName
}

func writeEndpoint(config config.Config) endpoint {
	return endpoint{
		name:     "write",
		username: config.DB.Postgres.Write.Username,
		password: config.DB.Postgres.Write.Password,
		host:     config.DB.Postgres.Write.Host,
		port:     config.DB.Postgres.Write.Port,
		dbName:   GetDBName(config, config.DB.Postgres.Write.Name),
		sslMode:  config.DB.Postgres.Write.SSLMode,
	}
}

func readEndpoint(config config.Config) endpoint {
	return endpoint{
		name:     "read",
		username: config.DB.Postgres.Read.Username,
		password: config.DB.Postgres.Read.Password,
		host:     config.DB.Postgres.Read.Host,
		port:     config.DB.Postgres.Read.Port,
		dbName:   GetDBName(config, config.DB.Postgres.Read.Name),
		sslMode:  config.DB.Postgres.Read.SSLMode,
	}
}

func (e endpoint) descriptor() string {
	return fmt.Sprintf(
		"postgres://%s:%s@%s/%s?sslmode=%s",
		e.username,
		e.password,
		net.JoinHostPort(e.host, e.port),
		e.dbName,
		e.sslMode,
	)
}

// Connect opens a connection pool, retrying up to maxRetry times.
func Connect(e endpoint, maxRetry, waitTime int) (*sqlx.DB, error) {
	var err error

	for retry := range max(maxRetry, 1) {
		var sqlDB *sqlx.DB

		sqlDB, err = sqlx.Connect("postgres", e.descriptor())
		if err == nil {
			log.
				Info().
				Str("name", e.name).
				Str("host", e.host).
				Str("port", e.port).
				Str("dbName", e.dbName).
				Msg("Connected to database")
			sqlDB.SetMaxIdleConns(postgresMaxIdleConnection)
			sqlDB.SetMaxOpenConns(postgresMaxOpenConnection)

			return sqlDB, nil
		}

		log.
			Error().
			Err(err).
			Str("name", e.name).
			Str("host", e.host).
			Str("port", e.port).
			Str("dbName", e.dbName).
			Int("attempt", retry+1).
			Msg("Failed connecting to database, retrying")

		time.Sleep(time.Duration(waitTime) * time.Second)
	}

	return nil, fmt.Errorf("failed to connect to %s database: %w", e.name, err)
}
