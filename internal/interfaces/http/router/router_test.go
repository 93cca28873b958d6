package router

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
)

func TestRouter_SetupRegistersVersionedRoutes(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	group := NewDomainGroup("catalog", "/products")
	group.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})
	group.POST("", func(c *gin.Context) {
		c.Status(http.StatusCreated)
	})

	NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/products", nil))
	assert.Equal(t, http.StatusOK, w.Code)

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodPost, "/api/v1/products", nil))
	assert.Equal(t, http.StatusCreated, w.Code)
}

func TestRouter_WithAPIVersion(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	group := NewDomainGroup("orders", "/orders")
	group.GET("/:id", func(c *gin.Context) {
		c.String(http.StatusOK, c.Param("id"))
	})

	NewRouter(engine, WithAPIVersion("v2")).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v2/orders/42", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, "42", w.Body.String())

	w = httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/orders/42", nil))
	assert.Equal(t, http.StatusNotFound, w.Code)
}

func TestDomainGroup_AppliesMiddleware(t *testing.T) {
	gin.SetMode(gin.TestMode)
	engine := gin.New()

	var sawMiddleware bool
	group := NewDomainGroup("shipments", "/shipments")
	group.Use(func(c *gin.Context) {
		sawMiddleware = true
		c.Next()
	})
	group.GET("", func(c *gin.Context) {
		c.Status(http.StatusOK)
	})

	NewRouter(engine).Register(group).Setup()

	w := httptest.NewRecorder()
	engine.ServeHTTP(w, httptest.NewRequest(http.MethodGet, "/api/v1/shipments", nil))
	assert.Equal(t, http.StatusOK, w.Code)
	assert.True(t, sawMiddleware)
	assert.Equal(t, "shipments", group.Name())
}
