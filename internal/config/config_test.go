package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("auth:\n  jwt_secret: s3cret\n"))
	require.NoError(t, err)

	assert.Equal(t, 24*time.Hour, cfg.Stories.TTL)
	assert.Equal(t, 20, cfg.Posts.DefaultLimit)
	assert.Equal(t, 100, cfg.Posts.MaxLimit)
	assert.Equal(t, 60*time.Second, cfg.ImageGen.Timeout)
	assert.Equal(t, ":8080", cfg.Server.Addr)
	assert.Equal(t, "migrations", cfg.Database.MigrationsPath)
	assert.Equal(t, "info", cfg.LogLevel)
	assert.Equal(t, "json", cfg.LogFormat)
	assert.False(t, cfg.RabbitMQ.Enabled)
}

func TestParse_ExpandsEnv(t *testing.T) {
	t.Setenv("SOCIAL_BLOG_TEST_SECRET", "from-env")
	t.Setenv("SOCIAL_BLOG_TEST_KEY", "key-123")

	cfg, err := Parse([]byte(`
auth:
  jwt_secret: ${SOCIAL_BLOG_TEST_SECRET}
image_gen:
  api_key: ${SOCIAL_BLOG_TEST_KEY}
stories:
  ttl: 12h
`))
	require.NoError(t, err)

	assert.Equal(t, "from-env", cfg.Auth.JWTSecret)
	assert.Equal(t, "key-123", cfg.ImageGen.APIKey)
	assert.Equal(t, 12*time.Hour, cfg.Stories.TTL)
}

func TestParse_RequiresJWTSecret(t *testing.T) {
	_, err := Parse([]byte("log_level: debug\n"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "jwt_secret")
}

func TestParse_RejectsDefaultLimitAboveMax(t *testing.T) {
	_, err := Parse([]byte(`
auth:
  jwt_secret: x
posts:
  default_limit: 50
  max_limit: 10
`))
	require.Error(t, err)
}

func TestLoad(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(`
database:
  host: db
  user: blog
  password: pw
  dbname: blog
auth:
  jwt_secret: x
`), 0o600))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, "host=db port=5432 user=blog password=pw dbname=blog sslmode=disable", cfg.Database.DSN())
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "read config file")
}
