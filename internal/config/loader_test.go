package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoad(t *testing.T) {
	t.Run("applies defaults", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, 8000, cfg.Server.Port)
		assert.Equal(t, 10*time.Second, cfg.Server.ShutdownTimeout)
		assert.Equal(t, "info", cfg.Log.Level)
		assert.Equal(t, "json", cfg.Log.Format)
		assert.Equal(t, "energy_app", cfg.Mongo.Database)
		assert.Equal(t, "data", cfg.Data.Dir)
		assert.Equal(t, "energy_consumption_generation.csv", cfg.Data.SourceFile)
		assert.Equal(t, "predictionscreated.csv", cfg.Data.AggregateFile)
		assert.Equal(t, 587, cfg.Mail.Port)
		assert.Equal(t, "gpt-4", cfg.LLM.Model)
	})

	t.Run("fails fast without mongo uri", func(t *testing.T) {
		t.Setenv("MONGO_URI", "")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "mongo.uri is required")
	})

	t.Run("environment overrides", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://db.internal:27017")
		t.Setenv("SERVER_PORT", "9100")
		t.Setenv("MAIL_HOST", "smtp.example.com")
		t.Setenv("MAIL_USERNAME", "alerts@example.com")
		t.Setenv("LLM_API_KEY", "test-key")

		cfg, err := Load("")
		require.NoError(t, err)

		assert.Equal(t, "mongodb://db.internal:27017", cfg.Mongo.URI)
		assert.Equal(t, 9100, cfg.Server.Port)
		assert.Equal(t, "smtp.example.com", cfg.Mail.Host)
		assert.Equal(t, "test-key", cfg.LLM.APIKey)
		// From falls back to the SMTP username.
		assert.Equal(t, "alerts@example.com", cfg.Mail.From)
	})

	t.Run("loads yaml file with env taking precedence", func(t *testing.T) {
		dir := t.TempDir()
		path := filepath.Join(dir, "config.yaml")
		yaml := `
server:
  port: 9200
mongo:
  uri: mongodb://from-file:27017
  database: gridpulse
log:
  format: console
`
		require.NoError(t, os.WriteFile(path, []byte(yaml), 0600))

		t.Setenv("SERVER_PORT", "9300")

		cfg, err := Load(path)
		require.NoError(t, err)

		assert.Equal(t, 9300, cfg.Server.Port) // env wins
		assert.Equal(t, "mongodb://from-file:27017", cfg.Mongo.URI)
		assert.Equal(t, "gridpulse", cfg.Mongo.Database)
		assert.Equal(t, "console", cfg.Log.Format)
	})

	t.Run("rejects invalid log format", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")
		t.Setenv("LOG_FORMAT", "xml")

		_, err := Load("")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "log.format")
	})

	t.Run("missing file path is not an error", func(t *testing.T) {
		t.Setenv("MONGO_URI", "mongodb://localhost:27017")

		cfg, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
		require.NoError(t, err)
		assert.NotNil(t, cfg)
	})
}

func TestValidate(t *testing.T) {
	t.Run("port out of range", func(t *testing.T) {
		cfg := &Config{
			Mongo: MongoConfig{URI: "mongodb://localhost"},
			Log:   LogConfig{Format: "json"},
		}
		cfg.Server.Port = 70000
		err := cfg.Validate()
		require.Error(t, err)
		assert.Contains(t, err.Error(), "server.port")
	})
}
