// Package config wires the album service from process environment state.
// Configuration is read once at startup and passed into constructors; no
// component reads the environment on its own.
package config

import (
	"context"
	"fmt"
	"os"
	"strings"

	"github.com/ilyakaznacheev/cleanenv"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/wedshare/album-backend/pkg/album"
	"github.com/wedshare/album-backend/pkg/album/metadata"
	s3storage "github.com/wedshare/album-backend/pkg/album/storage/s3"
)

// Config is the process-wide server configuration
type Config struct {
	Port                string `env:"PORT" env-default:"3000"`
	Environment         string `env:"ENVIRONMENT" env-default:"development"`
	LogLevel            string `env:"LOG_LEVEL" env-default:""`
	AllowedOrigins      string `env:"ALLOWED_ORIGINS" env-default:"http://localhost:3000"`
	DatabaseURL         string `env:"DATABASE_URL" env-default:""`
	UploadPrefix        string `env:"UPLOAD_PREFIX" env-default:"wedding-uploads/"`
	MetadataDocumentKey string `env:"METADATA_DOCUMENT_KEY" env-default:""`

	S3 S3Config
}

// S3Config holds the object store settings
type S3Config struct {
	Region                 string `env:"AWS_REGION" env-default:"us-east-1"`
	Bucket                 string `env:"S3_BUCKET_NAME"`
	AccessKeyID            string `env:"AWS_ACCESS_KEY_ID"`
	SecretAccessKey        string `env:"AWS_SECRET_ACCESS_KEY"`
	Endpoint               string `env:"S3_ENDPOINT"`
	UsePathStyle           bool   `env:"S3_USE_PATH_STYLE" env-default:"false"`
	PublicBaseURL          string `env:"S3_PUBLIC_BASE_URL"`
	CreateBucketIfNotExist bool   `env:"S3_CREATE_BUCKET_IF_NOT_EXIST" env-default:"false"`
}

// Load reads the configuration once at process start. A .env file in the
// working directory is honored when present.
func Load() (*Config, error) {
	var cfg Config
	if _, err := os.Stat(".env"); err == nil {
		if err := cleanenv.ReadConfig(".env", &cfg); err != nil {
			return nil, fmt.Errorf("failed to read .env: %w", err)
		}
	} else if err := cleanenv.ReadEnv(&cfg); err != nil {
		return nil, fmt.Errorf("failed to read environment: %w", err)
	}

	if err := cfg.Validate(); err != nil {
		return nil, fmt.Errorf("invalid configuration: %w", err)
	}
	return &cfg, nil
}

// Validate checks required settings
func (c *Config) Validate() error {
	if c.S3.Bucket == "" {
		return fmt.Errorf("S3_BUCKET_NAME is required")
	}
	return nil
}

// Origins returns the CORS allow-list parsed from the comma-separated
// ALLOWED_ORIGINS value.
func (c *Config) Origins() []string {
	var origins []string
	for _, origin := range strings.Split(c.AllowedOrigins, ",") {
		if origin = strings.TrimSpace(origin); origin != "" {
			origins = append(origins, origin)
		}
	}
	return origins
}

// BuildService constructs the album service from the configuration. The
// metadata store is Postgres when DATABASE_URL is set and the shared bucket
// document otherwise.
func (c *Config) BuildService(ctx context.Context) (album.Service, error) {
	backend, err := s3storage.New(s3storage.Config{
		Region:                 c.S3.Region,
		Bucket:                 c.S3.Bucket,
		AccessKeyID:            c.S3.AccessKeyID,
		SecretAccessKey:        c.S3.SecretAccessKey,
		Endpoint:               c.S3.Endpoint,
		UsePathStyle:           c.S3.UsePathStyle,
		PublicBaseURL:          c.S3.PublicBaseURL,
		CreateBucketIfNotExist: c.S3.CreateBucketIfNotExist,
	})
	if err != nil {
		return nil, fmt.Errorf("failed to initialize S3 backend: %w", err)
	}

	var metadataStore album.MetadataStore
	if c.DatabaseURL != "" {
		pool, err := pgxpool.New(ctx, c.DatabaseURL)
		if err != nil {
			return nil, fmt.Errorf("failed to create connection pool: %w", err)
		}
		if err := pool.Ping(ctx); err != nil {
			return nil, fmt.Errorf("failed to ping database: %w", err)
		}
		pg := metadata.NewPostgresWithPool(pool)
		if err := pg.CreateSchema(ctx); err != nil {
			return nil, err
		}
		metadataStore = pg
	} else {
		metadataStore = metadata.NewDocument(backend, c.MetadataDocumentKey)
	}

	return album.New(
		album.WithObjectStore(backend),
		album.WithMetadataStore(metadataStore),
		album.WithUploadPrefix(c.UploadPrefix),
	)
}
