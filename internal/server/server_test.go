package server

import (
	"context"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/require"
)

type recordingNotifier struct {
	mu       sync.Mutex
	messages []string
}

func (n *recordingNotifier) Notify(_ context.Context, message string) {
	n.mu.Lock()
	defer n.mu.Unlock()
	n.messages = append(n.messages, message)
}

func TestHealthHandler_NoDatabase(t *testing.T) {
	s := New(":0", nil, "release", nil)

	req := httptest.NewRequest(http.MethodGet, "/health", nil)
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
	require.Contains(t, resp.Body.String(), "healthy")
}

func TestMetricsEndpoint(t *testing.T) {
	s := New(":0", nil, "release", nil)

	req := httptest.NewRequest(http.MethodGet, "/metrics", nil)
	resp := httptest.NewRecorder()
	s.Engine.ServeHTTP(resp, req)

	require.Equal(t, http.StatusOK, resp.Code)
}

func TestRecoveryMiddleware(t *testing.T) {
	t.Run("release mode hides panic detail", func(t *testing.T) {
		notifier := &recordingNotifier{}
		s := New(":0", nil, "release", notifier)
		s.Engine.GET("/boom", func(c *gin.Context) {
			panic("kaboom")
		})

		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		resp := httptest.NewRecorder()
		s.Engine.ServeHTTP(resp, req)

		require.Equal(t, http.StatusInternalServerError, resp.Code)
		require.Contains(t, resp.Body.String(), "internal server error")
		require.NotContains(t, resp.Body.String(), "kaboom")
		require.Len(t, notifier.messages, 1)
		require.Contains(t, notifier.messages[0], "kaboom")
	})

	t.Run("debug mode includes panic detail", func(t *testing.T) {
		s := New(":0", nil, "debug", &recordingNotifier{})
		s.Engine.GET("/boom", func(c *gin.Context) {
			panic("kaboom")
		})

		req := httptest.NewRequest(http.MethodGet, "/boom", nil)
		resp := httptest.NewRecorder()
		s.Engine.ServeHTTP(resp, req)

		require.Equal(t, http.StatusInternalServerError, resp.Code)
		require.Contains(t, resp.Body.String(), "kaboom")
	})
}
