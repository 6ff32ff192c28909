package middleware

import (
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	. "github.com/onsi/gomega"

	"userapp/internal/adapter/logger"
)

func newHTTPSRouter(enabled bool) *gin.Engine {
	gin.SetMode(gin.TestMode)

	router := gin.New()
	router.Use(NewHTTPSEnforcer(enabled, logger.NewNop()).HTTPSMiddleware())
	router.GET("/users", func(c *gin.Context) { c.Status(http.StatusOK) })

	return router
}

func TestHTTPSMiddleware_Redirects(t *testing.T) {
	RegisterTestingT(t)

	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodGet, "http://users.example.com/users?page=1", nil)
	newHTTPSRouter(true).ServeHTTP(w, req)

	Expect(w.Code).To(Equal(http.StatusMovedPermanently))
	Expect(w.Header().Get("Location")).To(Equal("https://users.example.com/users?page=1"))
}

func TestHTTPSMiddleware_Passthrough(t *testing.T) {
	RegisterTestingT(t)

	cases := map[string]struct {
		enabled bool
		target  string
		proto   string
	}{
		"disabled":        {false, "http://users.example.com/users", ""},
		"forwarded https": {true, "http://users.example.com/users", "https"},
		"localhost":       {true, "http://localhost:8080/users", ""},
		"loopback":        {true, "http://127.0.0.1:8080/users", ""},
	}

	for name, tc := range cases {
		w := httptest.NewRecorder()
		req := httptest.NewRequest(http.MethodGet, tc.target, nil)

		if tc.proto != "" {
			req.Header.Set("X-Forwarded-Proto", tc.proto)
		}

		newHTTPSRouter(tc.enabled).ServeHTTP(w, req)

		Expect(w.Code).To(Equal(http.StatusOK), name)
	}
}
