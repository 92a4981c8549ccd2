package http

import (
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
	"go.uber.org/zap/zapcore"
	"go.uber.org/zap/zaptest/observer"
)

func TestRequestLoggerOmitsQueryString(t *testing.T) {
	gin.SetMode(gin.ReleaseMode)
	core, logs := observer.New(zapcore.DebugLevel)

	router := gin.New()
	router.Use(requestLogger(zap.New(core)))
	router.POST("/activities/:name/signup", func(c *gin.Context) { c.Status(http.StatusOK) })

	req := httptest.NewRequest(http.MethodPost, "/activities/Chess%20Club/signup?email=secret@mergington.edu", nil)
	router.ServeHTTP(httptest.NewRecorder(), req)

	entries := logs.FilterMessage("HTTP request").All()
	require.Len(t, entries, 1)

	fields := entries[0].ContextMap()
	assert.Equal(t, "/activities/Chess Club/signup", fields["path"])
	assert.NotContains(t, fields, "query")
	for key, value := range fields {
		if s, ok := value.(string); ok {
			assert.False(t, strings.Contains(s, "secret@mergington.edu"), "field %s leaks the email", key)
		}
	}
}
