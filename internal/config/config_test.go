package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigDefaults(t *testing.T) {
	t.Setenv("CLASSIFIER_MODE", "")
	t.Setenv("PORT", "")
	t.Setenv("ENABLE_DB", "")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "8080", cfg.Port)
	assert.Equal(t, ClassifierModeHTTP, cfg.ClassifierMode)
	assert.Equal(t, 10*time.Second, cfg.ClassifierTimeout)
	assert.False(t, cfg.EnableDB)
	assert.Equal(t, []string{"*"}, cfg.CORSOrigins)
	assert.Equal(t, "@daily", cfg.RetentionSchedule)
	assert.Empty(t, cfg.AMQPURL)
	assert.Equal(t, "epif.assessments", cfg.AMQPQueue)
	assert.Equal(t, 2, cfg.EventWorkers)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PORT", "9090")
	t.Setenv("LOG_LEVEL", "debug")
	t.Setenv("CLASSIFIER_MODE", "GRPC")
	t.Setenv("CLASSIFIER_GRPC_ADDRESS", "model:50051")
	t.Setenv("CLASSIFIER_TIMEOUT", "3s")
	t.Setenv("ENABLE_DB", "true")
	t.Setenv("JWT_SECRET_KEY", "secret")
	t.Setenv("DB_HOST", "db")
	t.Setenv("RETENTION_DAYS", "365")
	t.Setenv("CORS_ORIGINS", "https://a.example, https://b.example")

	cfg, err := LoadConfig()
	require.NoError(t, err)

	assert.Equal(t, "9090", cfg.Port)
	assert.Equal(t, "debug", cfg.LogLevel)
	assert.Equal(t, ClassifierModeGRPC, cfg.ClassifierMode)
	assert.Equal(t, "model:50051", cfg.ClassifierGRPCAddress)
	assert.Equal(t, 3*time.Second, cfg.ClassifierTimeout)
	assert.True(t, cfg.EnableDB)
	assert.Equal(t, 365, cfg.RetentionDays)
	assert.Equal(t, []string{"https://a.example", "https://b.example"}, cfg.CORSOrigins)
	assert.Contains(t, cfg.Database.DSN(), "host=db")
}

func TestLoadConfigValidation(t *testing.T) {
	tests := []struct {
		name string
		env  map[string]string
	}{
		{
			name: "unknown classifier mode",
			env:  map[string]string{"CLASSIFIER_MODE": "carrier-pigeon"},
		},
		{
			name: "local mode without model path",
			env:  map[string]string{"CLASSIFIER_MODE": "local", "CLASSIFIER_MODEL_PATH": ""},
		},
		{
			name: "database without jwt secret",
			env:  map[string]string{"ENABLE_DB": "true", "JWT_SECRET_KEY": ""},
		},
		{
			name: "negative retention",
			env:  map[string]string{"RETENTION_DAYS": "-1"},
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Setenv("CLASSIFIER_MODE", "")
			t.Setenv("ENABLE_DB", "")
			for k, v := range tt.env {
				t.Setenv(k, v)
			}

			_, err := LoadConfig()
			assert.Error(t, err)
		})
	}
}
