package routers

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"path/filepath"
	"strings"
	"testing"

	"github.com/haierkeys/personal-notes/internal/app"
	pkgapp "github.com/haierkeys/personal-notes/pkg/app"
	"github.com/haierkeys/personal-notes/pkg/storage"
	"github.com/haierkeys/personal-notes/pkg/validator"

	"github.com/bytedance/sonic"
	"github.com/creasty/defaults"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type envelope struct {
	pkgapp.Res
	Data sonicRaw `json:"data"`
}

type sonicRaw []byte

func (r *sonicRaw) UnmarshalJSON(b []byte) error {
	*r = append((*r)[:0], b...)
	return nil
}

type noteJSON struct {
	ID        string `json:"id"`
	Title     string `json:"title"`
	Content   string `json:"content"`
	UpdatedAt string `json:"updated_at"`
}

func newTestRouter(t *testing.T, remote bool) (*gin.Engine, *app.App, *prometheus.Registry) {
	t.Helper()
	gin.SetMode(gin.TestMode)

	cfg := &app.AppConfig{}
	require.NoError(t, defaults.Set(cfg))
	cfg.Local.Type = storage.MEMORY
	cfg.App.WriteRateCapacity = 0
	if remote {
		cfg.Remote.Driver = "sqlite"
		cfg.Remote.URL = filepath.Join(t.TempDir(), "remote.db")
		cfg.Remote.Key = "local-test"
		cfg.Remote.AutoMigrate = true
	}

	reg := prometheus.NewRegistry()
	a, err := app.NewApp(cfg, zap.NewNop(), reg)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	if remote {
		require.True(t, a.NoteService.EnsureSchema(context.Background()))
	}

	uni, err := validator.Init()
	require.NoError(t, err)
	return NewRouter(a, uni), a, reg
}

func do(t *testing.T, r http.Handler, method, target, body string, header ...string) (*httptest.ResponseRecorder, envelope) {
	t.Helper()
	var req *http.Request
	if body != "" {
		req = httptest.NewRequest(method, target, strings.NewReader(body))
		req.Header.Set("Content-Type", "application/json")
	} else {
		req = httptest.NewRequest(method, target, nil)
	}
	for i := 0; i+1 < len(header); i += 2 {
		req.Header.Set(header[i], header[i+1])
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	var env envelope
	require.NoError(t, sonic.Unmarshal(w.Body.Bytes(), &env), w.Body.String())
	return w, env
}

func TestNotesLifecycleLocal(t *testing.T) {
	r, _, _ := newTestRouter(t, false)

	w, env := do(t, r, http.MethodPost, "/api/notes", `{"title":"first","content":"body"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Status)
	var created noteJSON
	require.NoError(t, sonic.Unmarshal(env.Data, &created))
	assert.True(t, strings.HasPrefix(created.ID, "local-"))
	assert.Equal(t, "first", created.Title)
	assert.True(t, strings.HasSuffix(created.UpdatedAt, "Z"))

	_, env = do(t, r, http.MethodPut, "/api/notes/"+created.ID, `{"title":"renamed","content":"body"}`)
	var updated noteJSON
	require.NoError(t, sonic.Unmarshal(env.Data, &updated))
	assert.Equal(t, created.ID, updated.ID)
	assert.Equal(t, "renamed", updated.Title)

	_, env = do(t, r, http.MethodGet, "/api/notes", "")
	var list struct {
		List       []noteJSON `json:"list"`
		Configured bool       `json:"configured"`
	}
	require.NoError(t, sonic.Unmarshal(env.Data, &list))
	assert.False(t, list.Configured)
	require.Len(t, list.List, 1)
	assert.Equal(t, "renamed", list.List[0].Title)

	_, env = do(t, r, http.MethodDelete, "/api/notes/"+created.ID, "")
	assert.True(t, env.Status)

	_, env = do(t, r, http.MethodGet, "/api/notes", "")
	require.NoError(t, sonic.Unmarshal(env.Data, &list))
	assert.Empty(t, list.List)
}

func TestControlCharacterIDKeepsListReadable(t *testing.T) {
	r, _, _ := newTestRouter(t, false)

	w, env := do(t, r, http.MethodPut, "/api/notes/a%01b", `{"title":"t"}`)
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Status)

	w, env = do(t, r, http.MethodGet, "/api/notes", "")
	require.Equal(t, http.StatusOK, w.Code)
	assert.True(t, json.Valid(w.Body.Bytes()), w.Body.String())
	var list struct {
		List []noteJSON `json:"list"`
	}
	require.NoError(t, sonic.Unmarshal(env.Data, &list))
	require.Len(t, list.List, 1)
	assert.Equal(t, "a\x01b", list.List[0].ID)

	_, env = do(t, r, http.MethodDelete, "/api/notes/a%01b", "")
	assert.True(t, env.Status)
	_, env = do(t, r, http.MethodGet, "/api/notes", "")
	require.NoError(t, sonic.Unmarshal(env.Data, &list))
	assert.Empty(t, list.List)
}

func TestDraftUpdateCreates(t *testing.T) {
	r, _, _ := newTestRouter(t, false)

	_, env := do(t, r, http.MethodPut, "/api/notes/draft-1", `{"title":"draft","content":""}`)
	var n noteJSON
	require.NoError(t, sonic.Unmarshal(env.Data, &n))
	assert.True(t, strings.HasPrefix(n.ID, "local-"))

	w, env := do(t, r, http.MethodDelete, "/api/notes/draft-2", "")
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, env.Status)
}

func TestCreateValidation(t *testing.T) {
	r, _, _ := newTestRouter(t, false)

	w, env := do(t, r, http.MethodPost, "/api/notes", `{"title":"   ","content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.False(t, env.Status)
	assert.Contains(t, env.Details, "title")

	w, env = do(t, r, http.MethodPost, "/api/notes?lang=zh", `{"content":"x"}`)
	assert.Equal(t, http.StatusBadRequest, w.Code)
	assert.Equal(t, "参数验证失败", env.Message)
}

func TestNotesRemote(t *testing.T) {
	r, _, reg := newTestRouter(t, true)

	_, env := do(t, r, http.MethodPost, "/api/notes", `{"title":"remote","content":"c"}`)
	var n noteJSON
	require.NoError(t, sonic.Unmarshal(env.Data, &n))
	assert.Len(t, n.ID, 36)

	_, env = do(t, r, http.MethodGet, "/api/status", "")
	var st struct {
		Configured bool   `json:"configured"`
		Driver     string `json:"driver"`
		Connected  bool   `json:"connected"`
	}
	require.NoError(t, sonic.Unmarshal(env.Data, &st))
	assert.True(t, st.Configured)
	assert.Equal(t, "sqlite", st.Driver)
	assert.True(t, st.Connected)

	_, env = do(t, r, http.MethodGet, "/api/health", "")
	var h healthData
	require.NoError(t, sonic.Unmarshal(env.Data, &h))
	assert.Equal(t, "connected", h.Remote)
	assert.Equal(t, "memory", h.Local)

	families, err := reg.Gather()
	require.NoError(t, err)
	assert.NotEmpty(t, families)
}

type healthData struct {
	Status string `json:"status"`
	Local  string `json:"local"`
	Remote string `json:"remote"`
}

func TestNoRoute(t *testing.T) {
	r, _, _ := newTestRouter(t, false)
	w, env := do(t, r, http.MethodGet, "/api/unknown", "")
	assert.Equal(t, http.StatusNotFound, w.Code)
	assert.Equal(t, 404, env.Code)
}

func TestWriteRateLimit(t *testing.T) {
	gin.SetMode(gin.TestMode)
	cfg := &app.AppConfig{}
	require.NoError(t, defaults.Set(cfg))
	cfg.Local.Type = storage.MEMORY
	cfg.App.WriteRateCapacity = 1
	cfg.App.WriteRateQuantum = 1

	a, err := app.NewApp(cfg, zap.NewNop(), nil)
	require.NoError(t, err)
	t.Cleanup(func() { _ = a.Shutdown(context.Background()) })
	uni, err := validator.Init()
	require.NoError(t, err)
	r := NewRouter(a, uni)

	w, _ := do(t, r, http.MethodPost, "/api/notes", `{"title":"a"}`)
	assert.Equal(t, http.StatusOK, w.Code)
	w, env := do(t, r, http.MethodPost, "/api/notes", `{"title":"b"}`)
	assert.Equal(t, http.StatusTooManyRequests, w.Code)
	assert.Equal(t, 507, env.Code)
	w, _ = do(t, r, http.MethodGet, "/api/notes", "")
	assert.Equal(t, http.StatusOK, w.Code)
}

func TestPrivateRouterMetrics(t *testing.T) {
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	c := prometheus.NewCounter(prometheus.CounterOpts{Name: "probe_total"})
	reg.MustRegister(c)
	c.Inc()

	r := NewPrivateRouterWithLogger("release", zap.NewNop(), reg)
	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), "probe_total 1")
}
