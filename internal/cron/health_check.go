package cron

import (
	"context"
	"fmt"
	"time"

	"github.com/ayxworxfr/gsms/pkg/httpclient"
	"github.com/ayxworxfr/gsms/pkg/logger"
	"github.com/pkg/errors"
)

const (
	healthTimeout = 5 * time.Second
	healthRetries = 2
	healthBackoff = 200 * time.Millisecond
)

// NewHealthClient 指向本机服务的探活客户端
func NewHealthClient(port int) *httpclient.Client {
	return httpclient.NewClient(
		fmt.Sprintf("http://127.0.0.1:%d", port),
		httpclient.WithTimeout(healthTimeout),
		httpclient.WithRetries(healthRetries),
		httpclient.WithBackoff(healthBackoff),
	)
}

// healthCheck 请求 /health，失败只返回错误由任务管理器记录
func healthCheck(client *httpclient.Client) func(ctx context.Context) error {
	return func(ctx context.Context) error {
		var rsp struct {
			Code int `json:"code"`
		}
		if err := client.GetJSON(ctx, "/health", nil, &rsp); err != nil {
			return errors.Wrap(err, "health check")
		}
		if rsp.Code != 200 {
			return errors.Errorf("health check: unexpected code %d", rsp.Code)
		}
		logger.Debug(ctx, "health check ok")
		return nil
	}
}
