package httpx

import (
	"net/http"
	"net/http/httptest"
	"sync/atomic"
	"testing"
)

func TestNewClient_Defaults(t *testing.T) {
	c := NewClient("sortify-updater")

	tr, ok := c.Transport.(*Transport)
	if !ok {
		t.Fatalf("期望 *Transport，实际 %T", c.Transport)
	}
	if tr.UserAgent != "sortify-updater" {
		t.Fatalf("期望 UA=sortify-updater，实际=%q", tr.UserAgent)
	}
	if tr.RetryMax != defaultRetryMax {
		t.Fatalf("期望 RetryMax=%d，实际=%d", defaultRetryMax, tr.RetryMax)
	}
	if c.Timeout != defaultTimeout {
		t.Fatalf("期望总超时=%v，实际=%v", defaultTimeout, c.Timeout)
	}
}

func TestTransport_InjectsUserAgent(t *testing.T) {
	var gotUA atomic.Value
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotUA.Store(r.Header.Get("User-Agent"))
	}))
	defer srv.Close()

	c := NewClient("sortify-updater")
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()

	if ua, _ := gotUA.Load().(string); ua != "sortify-updater" {
		t.Fatalf("期望注入 UA=sortify-updater，实际=%q", ua)
	}
}

func TestTransport_RetriesOnServerError(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if calls.Add(1) < 3 {
			w.WriteHeader(http.StatusInternalServerError)
			return
		}
		w.WriteHeader(http.StatusOK)
	}))
	defer srv.Close()

	c := NewClient("sortify-updater")
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		t.Fatalf("期望重试后 200，实际=%d", resp.StatusCode)
	}
	if n := calls.Load(); n != 3 {
		t.Fatalf("期望 3 次尝试，实际=%d", n)
	}
}

func TestTransport_LastAttemptReturnsResponse(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("sortify-updater")
	resp, err := c.Get(srv.URL)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()

	// 重试耗尽后把最终 5xx 原样交给调用方解释。
	if resp.StatusCode != http.StatusInternalServerError {
		t.Fatalf("期望 500，实际=%d", resp.StatusCode)
	}
	if n := calls.Load(); n != int32(defaultRetryMax)+1 {
		t.Fatalf("期望 %d 次尝试，实际=%d", defaultRetryMax+1, n)
	}
}

func TestTransport_NoRetryOnPOST(t *testing.T) {
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		w.WriteHeader(http.StatusInternalServerError)
	}))
	defer srv.Close()

	c := NewClient("sortify-updater")
	resp, err := c.Post(srv.URL, "text/plain", nil)
	if err != nil {
		t.Fatalf("不期望错误：%v", err)
	}
	resp.Body.Close()

	if n := calls.Load(); n != 1 {
		t.Fatalf("POST 不应重试，期望 1 次尝试，实际=%d", n)
	}
}
