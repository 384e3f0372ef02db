package middleware

import (
	"context"
	"errors"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	"github.com/haierkeys/personal-notes/pkg/app"
	"github.com/haierkeys/personal-notes/pkg/limiter"
	"github.com/haierkeys/personal-notes/pkg/validator"

	"github.com/bytedance/sonic"
	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"
	"go.uber.org/zap/zapcore"
)

func init() {
	gin.SetMode(gin.TestMode)
}

func serve(r *gin.Engine, method, target string, header http.Header) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, target, nil)
	for k, vs := range header {
		for _, v := range vs {
			req.Header.Add(k, v)
		}
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder) app.Res {
	t.Helper()
	var res app.Res
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &res))
	return res
}

func TestTraceMiddleware(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(true, ""))
	var fromCtx, fromGin string
	r.GET("/", func(c *gin.Context) {
		fromCtx = GetTraceID(c.Request.Context())
		fromGin = GetTraceIDFromGin(c)
	})

	w := serve(r, http.MethodGet, "/", nil)
	id := w.Header().Get(DefaultTraceIDHeader)
	assert.Len(t, id, 36)
	assert.Equal(t, id, fromCtx)
	assert.Equal(t, id, fromGin)

	w = serve(r, http.MethodGet, "/", http.Header{DefaultTraceIDHeader: {"abc"}})
	assert.Equal(t, "abc", w.Header().Get(DefaultTraceIDHeader))
	assert.Equal(t, "abc", fromCtx)
}

func TestTraceMiddlewareDisabled(t *testing.T) {
	r := gin.New()
	r.Use(TraceMiddleware(false, "X-Request-ID"))
	r.GET("/", func(c *gin.Context) {})

	w := serve(r, http.MethodGet, "/", nil)
	assert.Empty(t, w.Header().Get("X-Request-ID"))
	assert.Equal(t, "", GetTraceID(context.Background()))
	assert.Equal(t, "xyz", GetTraceID(WithTraceID(context.Background(), "xyz")))
}

func TestRecoveryWithLogger(t *testing.T) {
	core, logs := observer.New(zapcore.ErrorLevel)
	r := gin.New()
	r.Use(RecoveryWithLogger(zap.New(core)))
	r.GET("/err", func(c *gin.Context) { panic(errors.New("boom")) })
	r.GET("/str", func(c *gin.Context) { panic("oops") })

	w := serve(r, http.MethodGet, "/err", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	res := decode(t, w)
	assert.False(t, res.Status)
	assert.Equal(t, "boom", res.Details)

	w = serve(r, http.MethodGet, "/str", nil)
	assert.Equal(t, "oops", decode(t, w).Details)

	assert.Equal(t, 1, logs.FilterMessage("Recovered from panic").Len())
	assert.Equal(t, 1, logs.FilterMessage("Recovered from unknown panic").Len())
}

func TestRateLimiter(t *testing.T) {
	l := limiter.NewMethodLimiter().AddBuckets(limiter.BucketRule{
		Key: "POST /notes", FillInterval: time.Hour, Capacity: 1, Quantum: 1,
	})
	r := gin.New()
	r.Use(RateLimiter(l))
	r.POST("/notes", func(c *gin.Context) { c.Status(http.StatusCreated) })
	r.GET("/notes", func(c *gin.Context) { c.Status(http.StatusOK) })

	assert.Equal(t, http.StatusCreated, serve(r, http.MethodPost, "/notes", nil).Code)
	w := serve(r, http.MethodPost, "/notes", nil)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, "3600", w.Header().Get("Retry-After"))
	assert.Equal(t, http.StatusOK, serve(r, http.MethodGet, "/notes", nil).Code)
}

func TestContextTimeout(t *testing.T) {
	r := gin.New()
	r.Use(ContextTimeout(time.Second))
	var hasDeadline bool
	r.GET("/", func(c *gin.Context) { _, hasDeadline = c.Request.Context().Deadline() })

	serve(r, http.MethodGet, "/", nil)
	assert.True(t, hasDeadline)
}

func TestLangWithTranslator(t *testing.T) {
	uni, err := validator.Init()
	require.NoError(t, err)

	r := gin.New()
	r.Use(LangWithTranslator(uni))
	var lang string
	var hasTrans bool
	r.GET("/", func(c *gin.Context) {
		lang = c.GetString(app.LangKey)
		_, hasTrans = c.Get(app.TransKey)
	})

	cases := []struct {
		target string
		header http.Header
		want   string
	}{
		{"/?lang=zh-CN", nil, "zh_cn"},
		{"/", http.Header{"Lang": {"zh_cn"}}, "zh_cn"},
		{"/", http.Header{"Accept-Language": {"zh-CN,zh;q=0.9,en;q=0.8"}}, "zh_cn"},
		{"/", http.Header{"Accept-Language": {"fr-FR"}}, "en"},
		{"/", nil, "en"},
	}
	for _, tc := range cases {
		serve(r, http.MethodGet, tc.target, tc.header)
		assert.Equal(t, tc.want, lang, tc.target)
		assert.True(t, hasTrans)
	}
}

func TestAccessLogAndNoFound(t *testing.T) {
	core, logs := observer.New(zapcore.InfoLevel)
	r := gin.New()
	r.Use(TraceMiddleware(true, ""), AccessLogWithLogger(zap.New(core)), AppInfo("Personal Notes", "0.0.0"))
	r.NoRoute(NoFound())

	w := serve(r, http.MethodGet, "/missing?x=1", nil)
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, decode(t, w).Code)

	entries := logs.FilterMessage("/missing").All()
	require.Len(t, entries, 1)
	fields := entries[0].ContextMap()
	assert.Equal(t, "/missing?x=1", fields["url"])
	assert.EqualValues(t, http.StatusNotFound, fields["status"])
	assert.Equal(t, w.Header().Get(DefaultTraceIDHeader), fields["traceId"])
}
