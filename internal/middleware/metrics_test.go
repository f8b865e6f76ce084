package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"

	"github.com/degreepath/scheduler/internal/service"
)

func TestMetricsMiddlewareSkipsWithoutService(t *testing.T) {
	gin.SetMode(gin.TestMode)
	rec := httptest.NewRecorder()
	c, _ := gin.CreateTestContext(rec)
	c.Request = httptest.NewRequest(http.MethodGet, "/plans/solve", nil)

	Metrics(nil)(c)

	assert.False(t, c.IsAborted())
}

func TestMetricsMiddlewareObservesRequest(t *testing.T) {
	gin.SetMode(gin.TestMode)
	metricsSvc := service.NewMetricsService()

	router := gin.New()
	router.Use(Metrics(metricsSvc))
	router.GET("/plans/solve", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	rec := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "/plans/solve", nil)
	router.ServeHTTP(rec, req)

	assert.Equal(t, http.StatusOK, rec.Code)
	assert.Equal(t, uint64(1), metricsSvc.Snapshot().RequestsTotal)
}
