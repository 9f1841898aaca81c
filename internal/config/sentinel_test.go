package config

import (
	"testing"

	"github.com/alibaba/sentinel-golang/core/circuitbreaker"
	"github.com/alibaba/sentinel-golang/core/flow"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadSentinelConfig(t *testing.T) {
	path := writeConfig(t, `
app_name: gsms-test
circuit_breaker:
  retry_timeout_ms: 3000
resources:
  - name: global_default
    path: "*"
    enabled: true
    flow:
      threshold: 200
  - name: login
    path: /api/users/login
    enabled: true
    flow:
      threshold: 5
      control_behavior: throttle
      max_queueing_time_ms: 500
    circuit_breaker:
      strategy: error_ratio
      threshold: 0.5
  - name: off
    path: /api/off
    enabled: false
    flow:
      threshold: 1
`)
	cfg, err := LoadSentinelConfig(path)
	require.NoError(t, err)
	assert.Equal(t, "gsms-test", cfg.AppName)
	require.Len(t, cfg.Resources, 3)

	global := cfg.Resources[0]
	assert.Equal(t, GlobalResource, global.Path)
	assert.Nil(t, global.BreakerRules(cfg.Breaker))

	login := cfg.Resources[1]
	flows := login.FlowRules()
	require.Len(t, flows, 1)
	assert.Equal(t, flow.Throttling, flows[0].ControlBehavior)
	assert.Equal(t, uint32(500), flows[0].MaxQueueingTimeMs)

	breakers := login.BreakerRules(cfg.Breaker)
	require.Len(t, breakers, 1)
	assert.Equal(t, circuitbreaker.ErrorRatio, breakers[0].Strategy)
	assert.Equal(t, uint32(3000), breakers[0].RetryTimeoutMs)
	assert.Equal(t, uint64(10), breakers[0].MinRequestAmount)
	assert.Equal(t, uint32(5000), breakers[0].StatIntervalMs)

	assert.Nil(t, cfg.Resources[2].FlowRules())
}
