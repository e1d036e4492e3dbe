// Package upstream 封装对上游书店REST API的访问
//
// 设计说明：
// 1. 后台自身不落库，所有资源数据都来自上游API，这里是唯一的出口
// 2. 统一超时控制（每次调用都带Context超时）
// 3. 错误分层转换：网络错误/非2xx响应/响应解析失败/熔断，
//    分别映射到不同的业务错误码，上层据此决定兜底策略
// 4. 熔断器包在传输层外面：上游持续失败时快速失败，给上游恢复时间
package upstream

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"go.opentelemetry.io/otel/attribute"

	"github.com/xiebiao/bookstore-admin/internal/infrastructure/config"
	"github.com/xiebiao/bookstore-admin/pkg/circuitbreaker"
	apperrors "github.com/xiebiao/bookstore-admin/pkg/errors"
	"github.com/xiebiao/bookstore-admin/pkg/metrics"
	"github.com/xiebiao/bookstore-admin/pkg/tracing"
)

// Client 上游API的HTTP客户端
type Client struct {
	baseURL string
	http    *http.Client
	breaker *circuitbreaker.CircuitBreaker
	timeout time.Duration
}

// NewClient 创建上游客户端
//
// 熔断策略来自配置（未配置时给出保守默认值）：
// 连续N次失败后熔断，熔断期间所有请求快速失败，
// 超时后放行少量探测请求，探测成功则闭合。
func NewClient(cfg *config.Config) *Client {
	bc := cfg.Breaker
	if bc.MaxRequests == 0 {
		bc.MaxRequests = 3
	}
	if bc.Interval <= 0 {
		bc.Interval = 10 * time.Second
	}
	if bc.Timeout <= 0 {
		bc.Timeout = 30 * time.Second
	}
	if bc.ConsecutiveFailures == 0 {
		bc.ConsecutiveFailures = 5
	}

	cb := circuitbreaker.NewCircuitBreaker("bookstore-api", circuitbreaker.Config{
		MaxRequests: bc.MaxRequests,
		Interval:    bc.Interval,
		Timeout:     bc.Timeout,
		ReadyToTrip: func(counts circuitbreaker.Counts) bool {
			return counts.ConsecutiveFailures >= bc.ConsecutiveFailures
		},
	})
	cb.SetStateChangeCallback(func(name string, from, to circuitbreaker.State) {
		log.Printf("[upstream] 熔断器 %s 状态变化: %s -> %s", name, from, to)
		metrics.SetGaugeVec(metrics.CircuitBreakerState,
			map[string]string{"name": name}, float64(to))
	})

	return &Client{
		baseURL: cfg.Upstream.BaseURL,
		http: &http.Client{
			// 超时由每次调用的Context控制，这里只兜底
			Timeout: cfg.Upstream.GetTimeout() + time.Second,
		},
		breaker: cb,
		timeout: cfg.Upstream.GetTimeout(),
	}
}

// rejection 上游非2xx响应的错误体
// 上游返回的message直接透传给前端（如"Tên đã tồn tại"），不做改写
type rejection struct {
	Message string `json:"message"`
}

// do 发起一次上游调用并返回响应体
//
// 错误映射：
// - 熔断打开            → ErrUpstreamBreakerOpen
// - 连接失败/超时        → ErrCodeUpstreamUnreachable
// - 404                 → ErrRecordNotFound
// - 其他非2xx           → ErrCodeUpstreamRejected（message原样保留）
func (c *Client) do(ctx context.Context, resourceName, operation, method, path string, query url.Values, body interface{}) ([]byte, error) {
	ctx, span := tracing.StartSpan(ctx, "upstream", fmt.Sprintf("upstream.%s.%s", resourceName, operation))
	defer span.End()
	span.SetAttributes(
		attribute.String("upstream.resource", resourceName),
		attribute.String("upstream.operation", operation),
		attribute.String("http.method", method),
	)

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	start := time.Now()
	var respBody []byte
	var callErr error

	err := c.breaker.Execute(func() error {
		respBody, callErr = c.roundTrip(ctx, method, path, query, body)
		if callErr == nil {
			return nil
		}
		// 业务层拒绝（400/404/409等）说明上游活着，不计入熔断失败；
		// 5xx是上游自身故障，照常计数
		if status := apperrors.StatusOf(callErr); status >= 400 && status < 500 {
			return nil
		}
		return callErr
	})

	metrics.ObserveHistogramVec(metrics.UpstreamRequestDuration,
		map[string]string{"resource": resourceName, "operation": operation},
		time.Since(start).Seconds())

	if err == circuitbreaker.ErrOpenState {
		metrics.IncCounterVec(metrics.UpstreamRequestsTotal,
			map[string]string{"resource": resourceName, "operation": operation, "result": "breaker_open"})
		return nil, apperrors.ErrUpstreamBreakerOpen
	}
	// 被熔断器视为成功的拒绝类错误仍要向上层报告
	if err == nil {
		err = callErr
	}

	result := "success"
	if err != nil {
		status := apperrors.StatusOf(err)
		switch {
		case status >= 400 && status < 500:
			result = "rejected"
		case status >= 500 || apperrors.CodeOf(err) == apperrors.ErrCodeUpstreamBadPayload:
			result = "api_error"
		default:
			result = "network_error"
		}
	}
	metrics.IncCounterVec(metrics.UpstreamRequestsTotal,
		map[string]string{"resource": resourceName, "operation": operation, "result": result})

	return respBody, err
}

// roundTrip 执行单次HTTP往返
func (c *Client) roundTrip(ctx context.Context, method, path string, query url.Values, body interface{}) ([]byte, error) {
	endpoint := c.baseURL + path
	if len(query) > 0 {
		endpoint += "?" + query.Encode()
	}

	var reader io.Reader
	if body != nil {
		payload, err := json.Marshal(body)
		if err != nil {
			return nil, apperrors.Wrap(err, "序列化请求体失败")
		}
		reader = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, endpoint, reader)
	if err != nil {
		return nil, apperrors.Wrap(err, "构造上游请求失败")
	}
	req.Header.Set("Accept", "application/json")
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	resp, err := c.http.Do(req)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamUnreachable, "无法连接到数据服务")
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, apperrors.WrapWithCode(err, apperrors.ErrCodeUpstreamUnreachable, "读取上游响应失败")
	}

	if resp.StatusCode == http.StatusNotFound {
		return nil, apperrors.WrapUpstream(resp.StatusCode,
			apperrors.ErrCodeRecordNotFound, apperrors.ErrRecordNotFound.Message)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		var rej rejection
		message := "数据服务拒绝了请求"
		if json.Unmarshal(data, &rej) == nil && rej.Message != "" {
			message = rej.Message
		}
		return nil, apperrors.WrapUpstream(resp.StatusCode,
			apperrors.ErrCodeUpstreamRejected, message)
	}

	return data, nil
}

// BreakerState 返回熔断器当前状态（健康检查用）
func (c *Client) BreakerState() circuitbreaker.State {
	return c.breaker.State()
}

// formatInt 整数转字符串（查询参数用）
func formatInt(n int) string {
	return strconv.Itoa(n)
}
