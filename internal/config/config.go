package config

import (
	"fmt"
	"os"
	"time"
)

type Config struct {
	DatabaseURL string // FIELDSCRIPT_DATABASE_URL (required)
	HTTPAddr    string // FIELDSCRIPT_HTTP_ADDR (default ":8080")
	NATSURL     string // FIELDSCRIPT_NATS_URL (optional, empty = local-only cache)
	AuthToken   string // FIELDSCRIPT_AUTH_TOKEN (optional, empty = auth disabled)
	CatalogPath string // FIELDSCRIPT_CATALOG_PATH (required)

	CacheTTL time.Duration // FIELDSCRIPT_CACHE_TTL (default 0 = entries never expire)

	// Snapshot export settings
	SyncInterval   time.Duration // FIELDSCRIPT_SYNC_INTERVAL (default 0 = disabled)
	SyncS3Bucket   string        // FIELDSCRIPT_SYNC_S3_BUCKET (enables S3 when set)
	SyncS3Endpoint string        // FIELDSCRIPT_SYNC_S3_ENDPOINT (custom endpoint for MinIO)
	SyncS3Region   string        // FIELDSCRIPT_SYNC_S3_REGION (default "us-east-1")
	SyncS3Key      string        // FIELDSCRIPT_SYNC_S3_KEY (default "fieldscript/backup.jsonl")
}

func Load() (*Config, error) {
	c := &Config{
		DatabaseURL:    os.Getenv("FIELDSCRIPT_DATABASE_URL"),
		HTTPAddr:       envOrDefault("FIELDSCRIPT_HTTP_ADDR", ":8080"),
		NATSURL:        os.Getenv("FIELDSCRIPT_NATS_URL"),
		AuthToken:      os.Getenv("FIELDSCRIPT_AUTH_TOKEN"),
		CatalogPath:    os.Getenv("FIELDSCRIPT_CATALOG_PATH"),
		SyncS3Bucket:   os.Getenv("FIELDSCRIPT_SYNC_S3_BUCKET"),
		SyncS3Endpoint: os.Getenv("FIELDSCRIPT_SYNC_S3_ENDPOINT"),
		SyncS3Region:   envOrDefault("FIELDSCRIPT_SYNC_S3_REGION", "us-east-1"),
		SyncS3Key:      envOrDefault("FIELDSCRIPT_SYNC_S3_KEY", "fieldscript/backup.jsonl"),
	}
	if c.DatabaseURL == "" {
		return nil, fmt.Errorf("FIELDSCRIPT_DATABASE_URL is required")
	}
	if c.CatalogPath == "" {
		return nil, fmt.Errorf("FIELDSCRIPT_CATALOG_PATH is required")
	}

	if ttlStr := os.Getenv("FIELDSCRIPT_CACHE_TTL"); ttlStr != "" {
		d, err := time.ParseDuration(ttlStr)
		if err != nil {
			return nil, fmt.Errorf("FIELDSCRIPT_CACHE_TTL: %w", err)
		}
		c.CacheTTL = d
	}

	if intervalStr := os.Getenv("FIELDSCRIPT_SYNC_INTERVAL"); intervalStr != "" {
		d, err := time.ParseDuration(intervalStr)
		if err != nil {
			return nil, fmt.Errorf("FIELDSCRIPT_SYNC_INTERVAL: %w", err)
		}
		c.SyncInterval = d
	}

	return c, nil
}

func envOrDefault(key, fallback string) string {
	if v := os.Getenv(key); v != "" {
		return v
	}
	return fallback
}
