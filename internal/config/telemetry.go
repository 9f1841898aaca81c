package config

import (
	"strings"
	"time"
)

// OpenTelemetryConfig OTLP 链路上报
type OpenTelemetryConfig struct {
	Enable   bool    `yaml:"enable"`
	Service  string  `yaml:"service"`  // 可被 INSTANCE_ID 覆盖
	Endpoint string  `yaml:"endpoint"` // host:port，不带 scheme
	Protocol string  `yaml:"protocol"` // grpc | http/protobuf
	Sampling float64 `yaml:"sampling"`
	Timeout  int     `yaml:"timeout"` // 秒
}

func NewOpenTelemetryConfig() OpenTelemetryConfig {
	return OpenTelemetryConfig{
		Service:  "gsms",
		Endpoint: "localhost:4317",
		Protocol: "grpc",
		Sampling: 0.1,
		Timeout:  3,
	}
}

// UseGRPC 协议为空或 grpc 时使用 gRPC 导出
func (c OpenTelemetryConfig) UseGRPC() bool {
	p := strings.ToLower(strings.TrimSpace(c.Protocol))
	return p == "" || p == "grpc"
}

// ExportTimeout 未配置时 3 秒
func (c OpenTelemetryConfig) ExportTimeout() time.Duration {
	if c.Timeout <= 0 {
		return 3 * time.Second
	}
	return time.Duration(c.Timeout) * time.Second
}

// SampleRatio 限制在 [0, 1]
func (c OpenTelemetryConfig) SampleRatio() float64 {
	switch {
	case c.Sampling < 0:
		return 0
	case c.Sampling > 1:
		return 1
	default:
		return c.Sampling
	}
}
