package config

import (
	"context"
	"fmt"
	"net/url"
	"time"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"
)

// Config is the process-wide configuration, read once at startup and passed
// by reference to the components that need it.
type Config struct {
	Server  ServerConfig
	DB      DbConfig
	S3      S3Config
	FS      FSConfig
	Auth    AuthConfig
	Storage StorageConfig
}

type ServerConfig struct {
	Port string `env:"PORT" env-default:"8080"`
}

type DbConfig struct {
	Enabled  bool   `env:"NOTES_PG_ENABLED" env-default:"false"`
	Port     uint16 `env:"NOTES_PG_PORT" env-default:"5432"`
	Host     string `env:"NOTES_PG_HOST" env-default:"localhost"`
	Name     string `env:"NOTES_PG_NAME" env-default:"notes_db"`
	User     string `env:"NOTES_PG_USER" env-default:"notes"`
	Password string `env:"NOTES_PG_PASSWORD" env-default:"pwd"`
}

type S3Config struct {
	Endpoint        string `env:"AWS_S3_ENDPOINT" env-default:"http://localhost:9000"`
	AccessKeyID     string `env:"AWS_ACCESS_KEY_ID" env-default:"minioadmin"`
	SecretAccessKey string `env:"AWS_SECRET_ACCESS_KEY" env-default:"minioadmin"`
	BucketName      string `env:"AWS_S3_BUCKET" env-default:"notes-bucket"`
	Region          string `env:"AWS_S3_REGION" env-default:"us-east-1"`
	UsePathStyle    bool   `env:"AWS_S3_USE_PATH_STYLE" env-default:"true"`
	CreateBucket    bool   `env:"AWS_S3_CREATE_BUCKET" env-default:"false"`
	PublicBaseURL   string `env:"AWS_S3_PUBLIC_BASE_URL" env-default:""`
}

type FSConfig struct {
	BaseDir   string `env:"FS_STORAGE_DIR" env-default:"./data/files"`
	URLPrefix string `env:"FS_URL_PREFIX" env-default:"http://localhost:8080/files"`
}

type AuthConfig struct {
	JWTSecret  string        `env:"JWT_SECRET"`
	AccessTTL  time.Duration `env:"ACCESS_TOKEN_TTL" env-default:"24h"`
	RefreshTTL time.Duration `env:"REFRESH_TOKEN_TTL" env-default:"168h"`
}

type StorageConfig struct {
	// Backend selects the object store: memory, fs or s3
	Backend string `env:"STORAGE_BACKEND" env-default:"memory"`
}

// Load reads the configuration from the environment
func Load() (*Config, error) {
	var cfg Config
	if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read configuration: %w", err)
	}
	return &cfg, nil
}

func (c DbConfig) toDatabaseUrl() string {
	u := url.URL{
		Scheme: "postgres",
		User:   url.UserPassword(c.User, c.Password),
		Host:   fmt.Sprintf("%s:%d", c.Host, c.Port),
		Path:   c.Name,
	}
	return u.String()
}

// NewDbPool connects to Postgres and verifies the connection
func NewDbPool(ctx context.Context, dbConfig DbConfig) (*pgxpool.Pool, error) {
	pool, err := pgxpool.New(ctx, dbConfig.toDatabaseUrl())
	if err != nil {
		return nil, fmt.Errorf("failed to create connection pool: %w", err)
	}

	if err := pool.Ping(ctx); err != nil {
		return nil, fmt.Errorf("failed to ping database: %w", err)
	}

	return pool, nil
}
