package config

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestApplyDefaults_EmptyConfig(t *testing.T) {
	cfg := &Config{}
	ApplyDefaults(cfg)

	assert.Equal(t, DefaultServerHost, cfg.Server.Host)
	assert.Equal(t, DefaultServerPort, cfg.Server.Port)
	assert.Equal(t, DefaultMaxNotationLength, cfg.Resolver.MaxNotationLength)
	assert.Equal(t, DefaultMaxRepeat, cfg.Resolver.MaxRepeat)
	assert.Equal(t, DefaultMaxInstances, cfg.Resolver.MaxInstances)
	assert.Equal(t, DefaultMaxAtoms, cfg.Resolver.MaxAtoms)
	assert.Equal(t, DefaultRedisKeyPrefix, cfg.Redis.KeyPrefix)
	assert.Equal(t, DefaultMetricsPath, cfg.Metrics.Path)
	assert.Equal(t, []string{"stdout"}, cfg.Log.OutputPaths)
	assert.False(t, cfg.Resolver.ShareTemplateCache)
}

func TestApplyDefaults_PreserveExistingValues(t *testing.T) {
	cfg := &Config{}
	cfg.Server.Port = 9999
	cfg.Resolver.MaxRepeat = 12
	ApplyDefaults(cfg)

	assert.Equal(t, 9999, cfg.Server.Port)
	assert.Equal(t, 12, cfg.Resolver.MaxRepeat)
}

func TestApplyDefaults_Nil(t *testing.T) {
	assert.NotPanics(t, func() { ApplyDefaults(nil) })
}

func TestNewDefaultConfig_Switches(t *testing.T) {
	cfg := NewDefaultConfig()
	assert.True(t, cfg.Resolver.ShareTemplateCache)
	assert.True(t, cfg.Metrics.Enabled)
	assert.False(t, cfg.Redis.Enabled)
	assert.NoError(t, cfg.Validate())
}
