package httpx

import (
	"errors"
	"fmt"
	"io"
	"net/http"
	"time"
)

const (
	defaultTimeout  = 10 * time.Second
	defaultRetryMax = 2
)

// Transport 把“固定 UA + 有界重试”固化为统一策略。
//
// 设计目标：update 源只负责“定位 release + 解析响应”，不关心网络策略细节。
type Transport struct {
	Base *http.Transport

	// UserAgent 在请求未自带 UA 时注入（GitHub API 要求非空 UA）。
	UserAgent string

	// RetryMax 表示最大重试次数（不含首次尝试）。例如 2 表示最多 3 次尝试。
	RetryMax int
}

func (t *Transport) RoundTrip(req *http.Request) (*http.Response, error) {
	if req == nil {
		return nil, errors.New("nil request")
	}
	if t.Base == nil {
		return nil, errors.New("nil base transport")
	}

	// 只对“可重放”的请求做重试：GET/HEAD 且无 body。
	canRetry := (req.Method == http.MethodGet || req.Method == http.MethodHead) && req.Body == nil
	max := t.RetryMax
	if max < 0 {
		max = 0
	}
	if !canRetry {
		max = 0
	}

	var lastErr error
	for attempt := 0; attempt <= max; attempt++ {
		r := cloneRequest(req)
		if r.Header.Get("User-Agent") == "" && t.UserAgent != "" {
			r.Header.Set("User-Agent", t.UserAgent)
		}

		resp, err := t.Base.RoundTrip(r)
		if err != nil {
			lastErr = err
			if req.Context().Err() != nil {
				// ctx 已取消：不再重试，直接返回最后错误（更可解释）。
				return nil, lastErr
			}
			continue
		}

		if attempt < max && retryableStatus(resp.StatusCode) {
			// 暂时性失败：读尽并关闭响应体（允许连接复用）后重试。
			drainAndClose(resp.Body)
			lastErr = fmt.Errorf("服务端暂时性错误：HTTP %d", resp.StatusCode)
			continue
		}

		// 最后一次尝试即便是 5xx 也原样返回，由调用方解释状态码。
		return resp, nil
	}
	return nil, lastErr
}

func retryableStatus(code int) bool {
	return code == http.StatusTooManyRequests || code >= 500
}

func drainAndClose(body io.ReadCloser) {
	_, _ = io.Copy(io.Discard, io.LimitReader(body, 4096))
	_ = body.Close()
}

func cloneRequest(req *http.Request) *http.Request {
	// Clone 会复制 Header 等，避免在 RoundTripper 内部“污染”调用方的 request。
	return req.Clone(req.Context())
}

// NewClient 构造带固定 UA 与有界重试的 HTTP client。
//
// 规则：
// - 每个请求注入 ua（除非调用方已自带）
// - 有界重试（网络错误与 5xx/429）+ 总超时
func NewClient(ua string) *http.Client {
	base := &http.Transport{
		TLSHandshakeTimeout:   5 * time.Second,
		ResponseHeaderTimeout: 8 * time.Second,
	}
	return &http.Client{
		Transport: &Transport{
			Base:      base,
			UserAgent: ua,
			RetryMax:  defaultRetryMax,
		},
		Timeout: defaultTimeout,
	}
}
