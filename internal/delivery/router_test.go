package delivery_test

import (
	"context"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"PushRelay/internal/delivery"
	"PushRelay/internal/delivery/handlers"
	"PushRelay/internal/domain"
	"PushRelay/internal/metrics"
	"PushRelay/internal/service"
	"github.com/gin-gonic/gin"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	"github.com/prometheus/client_golang/prometheus/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/mock"
	"github.com/stretchr/testify/require"
)

type MockSender struct {
	mock.Mock
}

func (m *MockSender) Send(ctx context.Context, msg *domain.PushMessage) (string, error) {
	args := m.Called(ctx, msg)
	return args.String(0), args.Error(1)
}

type panickingService struct{}

func (panickingService) Relay(context.Context, domain.NotificationRequest) (*domain.NotificationResult, error) {
	panic("boom")
}
func (panickingService) Dispatching() bool             { return false }
func (panickingService) Policy() domain.DispatchPolicy { return domain.PolicyLogOnly }

func newRouter(t *testing.T, svc domain.RelayService) *gin.Engine {
	t.Helper()
	r, _ := newRouterWithMetrics(t, svc)
	return r
}

func newRouterWithMetrics(t *testing.T, svc domain.RelayService) (*gin.Engine, *metrics.RelayMetrics) {
	t.Helper()
	gin.SetMode(gin.TestMode)
	reg := prometheus.NewRegistry()
	m, err := metrics.NewRelayMetrics(reg)
	require.NoError(t, err)

	r := gin.New()
	delivery.Setup(r, handlers.NewHandlersSet(svc, m), m, promhttp.HandlerFor(reg, promhttp.HandlerOpts{}))
	return r, m
}

func newRelay(t *testing.T, sender domain.PushSender, policy domain.DispatchPolicy, creds bool) domain.RelayService {
	t.Helper()
	svc, err := service.NewRelayService(sender, policy, creds)
	require.NoError(t, err)
	return svc
}

func serve(r http.Handler, method, path, body string, headers map[string]string) *httptest.ResponseRecorder {
	req := httptest.NewRequest(method, path, strings.NewReader(body))
	if body != "" {
		req.Header.Set("Content-Type", "application/json")
	}
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func assertCORS(t *testing.T, w *httptest.ResponseRecorder) {
	t.Helper()
	assert.Equal(t, "*", w.Header().Get("Access-Control-Allow-Origin"))
	allow := strings.ToLower(w.Header().Get("Access-Control-Allow-Headers"))
	assert.Contains(t, allow, "authorization")
	assert.Contains(t, allow, "content-type")
}

func TestRouter_LogOnlyExample(t *testing.T) {
	sender := new(MockSender)
	r := newRouter(t, newRelay(t, sender, domain.PolicyConditional, false))

	before := time.Now().UTC().Add(-time.Second)
	w := serve(r, http.MethodPost, delivery.SendPath,
		`{ "userId": "u1", "title": "New message", "message": "Alice: hi" }`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assertCORS(t, w)

	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.NotEmpty(t, response["message"])
	assert.NotContains(t, response, "providerMessageId")

	data := response["data"].(map[string]interface{})
	assert.Equal(t, "u1", data["userId"])
	assert.Equal(t, "New message", data["title"])
	assert.Equal(t, "Alice: hi", data["message"])
	assert.Equal(t, "general", data["type"])

	ts, err := time.Parse(time.RFC3339Nano, data["timestamp"].(string))
	require.NoError(t, err)
	assert.False(t, ts.Before(before))
	assert.False(t, ts.After(time.Now().UTC().Add(time.Second)))

	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRouter_ConditionalSendSuccess(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.MatchedBy(func(msg *domain.PushMessage) bool {
		return msg.RecipientID == "u1"
	})).Return("notif-123", nil).Once()
	r := newRouter(t, newRelay(t, sender, domain.PolicyConditional, true))

	w := serve(r, http.MethodPost, "/", `{"userId":"u1","title":"t","message":"b"}`, nil)

	require.Equal(t, http.StatusOK, w.Code)
	assertCORS(t, w)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, true, response["success"])
	assert.Equal(t, "notif-123", response["providerMessageId"])
	sender.AssertNumberOfCalls(t, "Send", 1)
}

func TestRouter_ProviderFailure(t *testing.T) {
	sender := new(MockSender)
	sender.On("Send", mock.Anything, mock.Anything).
		Return("", &domain.ProviderError{StatusCode: 400, Errors: []string{"Invalid app_id"}}).Once()
	r := newRouter(t, newRelay(t, sender, domain.PolicyConditional, true))

	w := serve(r, http.MethodPost, delivery.SendPath, `{"userId":"u1","title":"t","message":"b"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertCORS(t, w)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, false, response["success"])
	assert.Contains(t, response["error"], "Invalid app_id")
}

func TestRouter_ValidationFailureHasCORS(t *testing.T) {
	r := newRouter(t, newRelay(t, nil, domain.PolicyLogOnly, false))

	w := serve(r, http.MethodPost, delivery.SendPath, `{"title":"t"}`, nil)

	assert.Equal(t, http.StatusBadRequest, w.Code)
	assertCORS(t, w)
}

func TestRouter_PreflightWithoutOrigin(t *testing.T) {
	sender := new(MockSender)
	r := newRouter(t, newRelay(t, sender, domain.PolicyAlways, true))

	w := serve(r, http.MethodOptions, delivery.SendPath, "", nil)

	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
	assertCORS(t, w)
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRouter_BrowserPreflight(t *testing.T) {
	sender := new(MockSender)
	r := newRouter(t, newRelay(t, sender, domain.PolicyAlways, true))

	w := serve(r, http.MethodOptions, delivery.SendPath, "", map[string]string{
		"Origin":                         "https://app.example.org",
		"Access-Control-Request-Method":  "POST",
		"Access-Control-Request-Headers": "authorization, content-type",
	})

	assert.Less(t, w.Code, 300)
	assert.NotEmpty(t, w.Header().Get("Access-Control-Allow-Origin"))
	sender.AssertNotCalled(t, "Send", mock.Anything, mock.Anything)
}

func TestRouter_PanicBecomesEnvelope(t *testing.T) {
	r, m := newRouterWithMetrics(t, panickingService{})

	w := serve(r, http.MethodPost, delivery.SendPath, `{"userId":"u1","title":"t","message":"b"}`, nil)

	assert.Equal(t, http.StatusInternalServerError, w.Code)
	assertCORS(t, w)
	var response map[string]interface{}
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &response))
	assert.Equal(t, false, response["success"])
	assert.Equal(t, "internal server error", response["error"])
	assert.Equal(t, "boom", response["diagnosticDetail"])
	assert.InDelta(t, 1, testutil.ToFloat64(m.Requests().WithLabelValues(metrics.OutcomeInternalError)), 0)
}

func TestRouter_NotFoundHasCORS(t *testing.T) {
	r := newRouter(t, newRelay(t, nil, domain.PolicyLogOnly, false))

	w := serve(r, http.MethodGet, "/nowhere", "", nil)

	assert.Equal(t, http.StatusNotFound, w.Code)
	assertCORS(t, w)
}

func TestRouter_HealthAndMetrics(t *testing.T) {
	r := newRouter(t, newRelay(t, nil, domain.PolicyLogOnly, false))

	_ = serve(r, http.MethodPost, delivery.SendPath, `{"userId":"u1","title":"t","message":"b"}`, nil)

	w := serve(r, http.MethodGet, "/health", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `"policy":"log_only"`)

	w = serve(r, http.MethodGet, "/metrics", "", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Contains(t, w.Body.String(), `push_relay_requests_total{outcome="logged"} 1`)
}

func TestRouter_RequestIDPropagated(t *testing.T) {
	r := newRouter(t, newRelay(t, nil, domain.PolicyLogOnly, false))

	w := serve(r, http.MethodGet, "/health", "", map[string]string{"X-Request-ID": "req-1"})
	assert.Equal(t, "req-1", w.Header().Get("X-Request-ID"))

	w = serve(r, http.MethodGet, "/health", "", nil)
	assert.NotEmpty(t, w.Header().Get("X-Request-ID"))
}
