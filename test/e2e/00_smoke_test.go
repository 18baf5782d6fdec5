package e2e

import (
	"net/http"
	"testing"
)

// 00 - Smoke: health y readiness
func Test_00_Smoke(t *testing.T) {
	e := newEnv(t)

	t.Run("healthz", func(t *testing.T) {
		resp, err := http.Get(e.srv.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Fatalf("GET /healthz status=%d", resp.StatusCode)
		}
	})

	t.Run("readyz", func(t *testing.T) {
		resp, err := http.Get(e.srv.URL + "/readyz")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.StatusCode != 200 {
			t.Fatalf("GET /readyz status=%d", resp.StatusCode)
		}
	})

	t.Run("request id header", func(t *testing.T) {
		resp, err := http.Get(e.srv.URL + "/healthz")
		if err != nil {
			t.Fatal(err)
		}
		defer resp.Body.Close()
		if resp.Header.Get("X-Request-ID") == "" {
			t.Fatal("X-Request-ID missing")
		}
	})
}
