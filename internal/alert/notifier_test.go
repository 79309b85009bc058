package alert

import (
	"context"
	"errors"
	"io"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func TestWebhookNotifier_Notify(t *testing.T) {
	t.Run("posts text payload", func(t *testing.T) {
		var (
			gotBody        []byte
			gotContentType string
		)
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			gotBody, _ = io.ReadAll(r.Body)
			gotContentType = r.Header.Get("Content-Type")
			w.WriteHeader(http.StatusOK)
		}))
		defer srv.Close()

		n := NewWebhookNotifier(srv.URL)
		n.Notify(context.Background(), "storage write failed")

		require.Equal(t, "application/json", gotContentType)
		require.JSONEq(t, `{"text":"storage write failed"}`, string(gotBody))
	})

	t.Run("unreachable endpoint does not panic", func(t *testing.T) {
		n := NewWebhookNotifier("http://127.0.0.1:1")
		require.NotPanics(t, func() {
			n.Notify(context.Background(), "boom")
		})
	})

	t.Run("rejected delivery does not panic", func(t *testing.T) {
		srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, _ *http.Request) {
			w.WriteHeader(http.StatusForbidden)
		}))
		defer srv.Close()

		n := NewWebhookNotifier(srv.URL)
		require.NotPanics(t, func() {
			n.Notify(context.Background(), "boom")
		})
	})
}

func TestFormatFailure(t *testing.T) {
	msg := FormatFailure("event insert", "portal", errors.New("connection reset"))
	require.Equal(t, `loglens: event insert failed for service "portal": connection reset`, msg)
}
