package config

import (
	"context"
	"testing"
	"time"

	"github.com/sethvargo/go-envconfig"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadFrom_Defaults(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":           "s",
		"SUPABASE_URL":         "https://x.supabase.co",
		"SUPABASE_SERVICE_KEY": "k",
	}))
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, 24*time.Hour, cfg.TokenTTL)
	assert.Equal(t, "marketplace", cfg.Mongo.Database)
	assert.Equal(t, "project-files", cfg.Blob.Bucket)
	assert.Equal(t, 10, cfg.Upload.MaxSizeMB)
	assert.Equal(t, 8, cfg.Feed.Workers)
	assert.NotEmpty(t, cfg.Feed.InstanceID)
	assert.Equal(t, time.Minute, cfg.Workflow.ReconcileGrace)
	assert.True(t, cfg.IsDevelopment())
}

func TestLoadFrom_Overrides(t *testing.T) {
	cfg, err := LoadFrom(context.Background(), envconfig.MapLookuper(map[string]string{
		"JWT_SECRET":                "s",
		"BLOB_BACKEND":              "s3",
		"UPLOAD_MAX_MB":             "25",
		"UPLOAD_ALLOWED_EXTENSIONS": "PDF,.dwg",
		"RECONCILE_INTERVAL":        "5s",
		"FEED_INSTANCE_ID":          "api-7",
	}))
	require.NoError(t, err)

	assert.Equal(t, "s3", cfg.Blob.Backend)
	assert.Equal(t, 25, cfg.Upload.MaxSizeMB)
	assert.Equal(t, []string{".pdf", ".dwg"}, cfg.Upload.AllowedExtensions)
	assert.Equal(t, 5*time.Second, cfg.Workflow.ReconcileInterval)
	assert.Equal(t, "api-7", cfg.Feed.InstanceID)
}

func TestLoadFrom_Invalid(t *testing.T) {
	cases := map[string]map[string]string{
		"missing secret":   {"BLOB_BACKEND": "s3"},
		"unknown backend":  {"JWT_SECRET": "s", "BLOB_BACKEND": "ftp"},
		"supabase no keys": {"JWT_SECRET": "s"},
		"zero upload":      {"JWT_SECRET": "s", "BLOB_BACKEND": "s3", "UPLOAD_MAX_MB": "0"},
	}
	for name, env := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := LoadFrom(context.Background(), envconfig.MapLookuper(env))
			assert.Error(t, err)
		})
	}
}
