package e2e

import (
	"net/http"
	"testing"

	"github.com/stretchr/testify/require"
)

// 01 - Registro de clusters: TOFU, idempotencia y mismatch
func Test_01_RegisterCluster(t *testing.T) {
	e := newEnv(t)
	c := newCluster(t, testGUID)

	t.Run("created", func(t *testing.T) {
		resp, _ := e.register(t, c)
		require.Equal(t, http.StatusCreated, resp.StatusCode)
	})

	t.Run("idempotent re-register", func(t *testing.T) {
		resp, _ := e.register(t, c)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("different key conflicts", func(t *testing.T) {
		other := newCluster(t, testGUID)
		resp, body := e.register(t, other)
		require.Equal(t, http.StatusConflict, resp.StatusCode)
		require.Equal(t, "public_key_mismatch", errToken(t, body))

		// la clave original sigue vinculada
		resp, _ = e.register(t, c)
		require.Equal(t, http.StatusOK, resp.StatusCode)
	})

	t.Run("invalid guid", func(t *testing.T) {
		resp, body := e.postJSON(t, "/clusters", map[string]string{
			"clusterId": "not-a-guid",
			"publicKey": c.publicKeyB64(),
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "invalid_guid_format", errToken(t, body))
	})

	t.Run("invalid public key", func(t *testing.T) {
		resp, body := e.postJSON(t, "/clusters", map[string]string{
			"clusterId": "a47ac10b-58cc-4372-a567-0e02b2c3d479",
			"publicKey": "bm8ga2V5IGhlcmU=",
		})
		require.Equal(t, http.StatusBadRequest, resp.StatusCode)
		require.Equal(t, "invalid_public_key", errToken(t, body))
	})
}
