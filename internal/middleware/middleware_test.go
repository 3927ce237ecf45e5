package middleware

import (
	"context"
	"encoding/json"
	"net/http"
	"testing"

	"github.com/cloudwego/hertz/pkg/app"
	"github.com/cloudwego/hertz/pkg/common/config"
	"github.com/cloudwego/hertz/pkg/common/ut"
	"github.com/cloudwego/hertz/pkg/route"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"SevenDay/pkg/response"
	"SevenDay/pkg/token"
)

func newEngine() *route.Engine {
	return route.NewEngine(config.NewOptions([]config.Option{}))
}

func withCaps(uid string, caps ...string) app.HandlerFunc {
	return func(ctx context.Context, c *app.RequestContext) {
		c.Set(IdentityKey, uid)
		c.Set(CapabilityKey, caps)
		c.Next(ctx)
	}
}

func ok(ctx context.Context, c *app.RequestContext) {
	c.String(http.StatusOK, "ok")
}

func TestRequireCapability(t *testing.T) {
	r := newEngine()
	r.GET("/plain", withCaps("1"), RequireCapability(token.CapCheckInReview), ok)
	r.GET("/reviewer", withCaps("2", token.CapCheckInReview), RequireCapability(token.CapCheckInReview), ok)
	r.GET("/other", withCaps("3", token.CapReportAdmin), RequireCapability(token.CapCheckInReview), ok)

	w := ut.PerformRequest(r, http.MethodGet, "/plain", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "FORBIDDEN", body.Error.Code)

	w = ut.PerformRequest(r, http.MethodGet, "/other", nil)
	assert.Equal(t, http.StatusForbidden, w.Code)

	w = ut.PerformRequest(r, http.MethodGet, "/reviewer", nil)
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "ok", w.Body.String())
}

func TestGetUserIDAndCapabilities(t *testing.T) {
	c := app.NewContext(0)
	_, found := GetUserID(context.Background(), c)
	assert.False(t, found)
	assert.Nil(t, GetCapabilities(context.Background(), c))

	c.Set(IdentityKey, "42")
	c.Set(CapabilityKey, []string{token.CapReportAdmin})
	uid, found := GetUserID(context.Background(), c)
	assert.True(t, found)
	assert.Equal(t, "42", uid)
	assert.Equal(t, []string{token.CapReportAdmin}, GetCapabilities(context.Background(), c))
}

func TestRequestIDMiddleware(t *testing.T) {
	r := newEngine()
	r.Use(RequestIDMiddleware())
	r.GET("/id", func(ctx context.Context, c *app.RequestContext) {
		c.String(http.StatusOK, GetRequestID(c))
	})

	w := ut.PerformRequest(r, http.MethodGet, "/id", nil, ut.Header{Key: RequestIDHeader, Value: "req-1"})
	assert.Equal(t, "req-1", w.Body.String())
	assert.Equal(t, "req-1", string(w.Header().Peek(RequestIDHeader)))

	w = ut.PerformRequest(r, http.MethodGet, "/id", nil)
	generated := w.Body.String()
	assert.Len(t, generated, 36)
	assert.Equal(t, generated, string(w.Header().Peek(RequestIDHeader)))
}

func TestCORSPreflight(t *testing.T) {
	r := newEngine()
	r.Use(CORSMiddleware())
	r.OPTIONS("/v1/reports/generate", ok)

	w := ut.PerformRequest(r, http.MethodOptions, "/v1/reports/generate", nil,
		ut.Header{Key: "Origin", Value: "https://sevenday.app"})
	assert.Equal(t, http.StatusNoContent, w.Code)
	assert.Equal(t, "https://sevenday.app", string(w.Header().Peek("Access-Control-Allow-Origin")))
}

func TestRequestOrigin(t *testing.T) {
	c := app.NewContext(0)
	assert.Empty(t, RequestOrigin(c))

	c.Request.Header.Set("Referer", "https://sevenday.app/program")
	assert.Equal(t, "https://sevenday.app/program", RequestOrigin(c))

	c.Request.Header.Set("Origin", "https://sevenday.cn")
	assert.Equal(t, "https://sevenday.cn", RequestOrigin(c))
}

func TestRecoverMiddleware(t *testing.T) {
	r := newEngine()
	r.Use(RecoverMiddlewareWithConfig(RecoverConfig{EnableStackTrace: true}))
	r.GET("/boom", func(ctx context.Context, c *app.RequestContext) {
		panic("boom")
	})

	w := ut.PerformRequest(r, http.MethodGet, "/boom", nil)
	assert.Equal(t, http.StatusInternalServerError, w.Code)
	var body response.ErrorResponse
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &body))
	assert.Equal(t, "INTERNAL_ERROR", body.Error.Code)
	assert.Empty(t, body.Error.Details)
}
