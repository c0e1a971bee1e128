package middleware

import (
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
)

func engine(mw ...gin.HandlerFunc) *gin.Engine {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(mw...)
	ok := func(c *gin.Context) { c.String(http.StatusOK, "ok") }
	r.GET("/ping", ok)
	r.POST("/form", func(c *gin.Context) {
		_ = c.Request.ParseForm()
		c.String(http.StatusOK, "ok")
	})
	return r
}

func serve(r http.Handler, req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func TestRequestIDGeneratedAndPropagated(t *testing.T) {
	r := engine(RequestID(zap.NewNop()))

	w := serve(r, httptest.NewRequest(http.MethodGet, "/ping", nil))
	if w.Header().Get(HeaderRequestID) == "" {
		t.Fatal("no request id generated")
	}

	req := httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, "abc-123")
	if got := serve(r, req).Header().Get(HeaderRequestID); got != "abc-123" {
		t.Fatalf("request id = %q, want passthrough", got)
	}

	req = httptest.NewRequest(http.MethodGet, "/ping", nil)
	req.Header.Set(HeaderRequestID, strings.Repeat("x", 65))
	if got := serve(r, req).Header().Get(HeaderRequestID); len(got) > 64 {
		t.Fatal("oversized request id was trusted")
	}
}

func TestRateLimitPerIP(t *testing.T) {
	r := engine(RateLimitPerIP(1, 2, time.Minute))
	from := func(ip string) int {
		req := httptest.NewRequest(http.MethodGet, "/ping", nil)
		req.RemoteAddr = ip + ":1234"
		return serve(r, req).Code
	}
	if from("10.0.0.1") != 200 || from("10.0.0.1") != 200 {
		t.Fatal("burst should pass")
	}
	if code := from("10.0.0.1"); code != http.StatusTooManyRequests {
		t.Fatalf("third request = %d, want 429", code)
	}
	if from("10.0.0.2") != 200 {
		t.Fatal("other clients must not share the bucket")
	}
}

func TestMaxBodyBytes(t *testing.T) {
	r := engine(MaxBodyBytes(8))
	req := httptest.NewRequest(http.MethodPost, "/form", strings.NewReader("title=way-too-long"))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	if w := serve(r, req); w.Code != http.StatusRequestEntityTooLarge {
		t.Fatalf("status = %d, want 413", w.Code)
	}
}

func TestConcurrencyLimitRejectsWhenContextDone(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.Use(ConcurrencyLimit(1))
	release := make(chan struct{})
	entered := make(chan struct{})
	r.GET("/slow", func(c *gin.Context) {
		close(entered)
		<-release
		c.Status(http.StatusOK)
	})

	var wg sync.WaitGroup
	wg.Add(1)
	go func() {
		defer wg.Done()
		serve(r, httptest.NewRequest(http.MethodGet, "/slow", nil))
	}()
	<-entered

	// 第二个请求等不到名额，超时后 503
	req := httptest.NewRequest(http.MethodGet, "/slow", nil)
	ctx, cancel := context.WithTimeout(req.Context(), 20*time.Millisecond)
	defer cancel()
	if w := serve(r, req.WithContext(ctx)); w.Code != http.StatusServiceUnavailable {
		t.Fatalf("status = %d, want 503", w.Code)
	}
	close(release)
	wg.Wait()
}

func TestAccessLogMasksSecrets(t *testing.T) {
	core, logs := observer.New(zap.InfoLevel)
	r := engine(RequestID(zap.New(core)), AccessLog())

	form := url.Values{"email": {"a@b.c"}, "password": {"hunter22"}, "currentPassword": {"x"}}
	req := httptest.NewRequest(http.MethodPost, "/form?token=t0k", strings.NewReader(form.Encode()))
	req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
	serve(r, req)

	entries := logs.FilterMessage("HTTP").All()
	if len(entries) != 1 {
		t.Fatalf("%d access log entries", len(entries))
	}
	ctx := entries[0].ContextMap()
	if ctx["rid"] == "" || ctx["status"] != int64(200) {
		t.Fatalf("fields = %v", ctx)
	}
	dump := entries[0].Message
	for k, v := range ctx {
		dump += k + "=" + fmt.Sprint(v) + " "
	}
	for _, secret := range []string{"hunter22", "t0k"} {
		if strings.Contains(dump, secret) {
			t.Fatalf("secret %q leaked into access log: %s", secret, dump)
		}
	}
	if !strings.Contains(dump, "a@b.c") {
		t.Fatal("non-sensitive form fields should be logged")
	}
}

func TestIsSensitive(t *testing.T) {
	for _, k := range []string{"password", "confirmPassword", "X-Auth-Token", "client_secret"} {
		if !isSensitive(k) {
			t.Errorf("%s should be masked", k)
		}
	}
	if isSensitive("email") {
		t.Error("email is not sensitive")
	}
}

func TestRequireRoleWithoutSessionRedirectsToLogin(t *testing.T) {
	gin.SetMode(gin.TestMode)
	r := gin.New()
	r.GET("/users", RequireRole("admin"), func(c *gin.Context) { c.Status(http.StatusOK) })
	w := serve(r, httptest.NewRequest(http.MethodGet, "/users", nil))
	if w.Code != http.StatusFound || w.Header().Get("Location") != "/auth/login" {
		t.Fatalf("status %d location %q", w.Code, w.Header().Get("Location"))
	}
}

