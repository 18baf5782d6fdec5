// Suite e2e: levanta el router completo (stores en memoria + worker de
// eviction vivo) detrás de un httptest.Server y lo ejercita por HTTP.
package e2e

import (
	"bytes"
	"context"
	"crypto/ecdsa"
	"crypto/elliptic"
	"crypto/rand"
	"crypto/x509"
	"encoding/base64"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strconv"
	"testing"
	"time"

	"github.com/dropDatabas3/nodereg/internal/eviction"
	"github.com/dropDatabas3/nodereg/internal/http/router"
	"github.com/dropDatabas3/nodereg/internal/replay"
	"github.com/dropDatabas3/nodereg/internal/security/signature"
	"github.com/dropDatabas3/nodereg/internal/store/core"
	"github.com/dropDatabas3/nodereg/internal/store/memory"
	"github.com/google/uuid"
)

const testGUID = "f47ac10b-58cc-4372-a567-0e02b2c3d479"

type env struct {
	srv    *httptest.Server
	stores *core.Stores
	hints  *eviction.Queue
}

func newEnv(t *testing.T) *env {
	t.Helper()

	stores := memory.NewStores()
	hints := eviction.NewQueue()
	worker := eviction.NewWorker(hints, stores.Registrations, 5)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan struct{})
	go func() {
		_ = worker.Run(ctx)
		close(done)
	}()

	h := router.New(router.Deps{
		Stores:      stores,
		Replay:      replay.New(time.Hour),
		Hints:       hints,
		MaxPerGroup: 5,
		Limiter:     nil,
		WithMetrics: false,
	})
	srv := httptest.NewServer(h)

	t.Cleanup(func() {
		srv.Close()
		cancel()
		<-done
	})
	return &env{srv: srv, stores: stores, hints: hints}
}

type cluster struct {
	id   string
	priv *ecdsa.PrivateKey
	spki []byte
}

func newCluster(t *testing.T, id string) *cluster {
	t.Helper()
	priv, err := ecdsa.GenerateKey(elliptic.P256(), rand.Reader)
	if err != nil {
		t.Fatalf("generate: %v", err)
	}
	spki, err := x509.MarshalPKIXPublicKey(&priv.PublicKey)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	return &cluster{id: id, priv: priv, spki: spki}
}

func (c *cluster) publicKeyB64() string {
	return base64.StdEncoding.EncodeToString(c.spki)
}

func (e *env) postJSON(t *testing.T, path string, body any) (*http.Response, []byte) {
	t.Helper()
	b, err := json.Marshal(body)
	if err != nil {
		t.Fatalf("marshal: %v", err)
	}
	resp, err := http.Post(e.srv.URL+path, "application/json", bytes.NewReader(b))
	if err != nil {
		t.Fatalf("POST %s: %v", path, err)
	}
	defer resp.Body.Close()
	out, _ := io.ReadAll(resp.Body)
	return resp, out
}

func (e *env) register(t *testing.T, c *cluster) (*http.Response, []byte) {
	t.Helper()
	return e.postJSON(t, "/clusters", map[string]string{
		"clusterId": c.id,
		"publicKey": c.publicKeyB64(),
	})
}

// discoverBody arma el body firmado; payload y nonce en bytes crudos.
func discoverBody(t *testing.T, c *cluster, versionName string, versionNumber int64, payload, nonce []byte) map[string]any {
	t.Helper()
	payloadB64 := base64.StdEncoding.EncodeToString(payload)
	nonceB64 := base64.StdEncoding.EncodeToString(nonce)

	msg := c.id + versionName + strconv.FormatInt(versionNumber, 10) + payloadB64 + nonceB64
	sig, err := signature.Sign(c.priv, []byte(msg))
	if err != nil {
		t.Fatalf("sign: %v", err)
	}

	return map[string]any{
		"clusterId":     c.id,
		"versionName":   versionName,
		"versionNumber": versionNumber,
		"payload":       payloadB64,
		"nonce":         nonceB64,
		"signature":     base64.StdEncoding.EncodeToString(sig),
	}
}

func errToken(t *testing.T, body []byte) string {
	t.Helper()
	var m struct {
		Error string `json:"error"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("error body not JSON: %s", body)
	}
	return m.Error
}

func nodesOf(t *testing.T, body []byte) []string {
	t.Helper()
	var m struct {
		Nodes []string `json:"nodes"`
	}
	if err := json.Unmarshal(body, &m); err != nil {
		t.Fatalf("discover body not JSON: %s", body)
	}
	return m.Nodes
}

func groupRows(t *testing.T, e *env, id string, versionName string, versionNumber int64) []core.NodeRegistration {
	t.Helper()
	rows, err := e.stores.Registrations.Get(context.Background(), core.Group{
		ClusterID:     uuid.MustParse(id),
		VersionName:   versionName,
		VersionNumber: versionNumber,
	}, 100)
	if err != nil {
		t.Fatalf("rows: %v", err)
	}
	return rows
}

// waitRows espera a que el grupo quiesca en want filas (la cota es eventual).
func waitRows(t *testing.T, e *env, id, versionName string, versionNumber int64, want int) []core.NodeRegistration {
	t.Helper()
	deadline := time.Now().Add(2 * time.Second)
	for {
		rows := groupRows(t, e, id, versionName, versionNumber)
		if len(rows) == want {
			return rows
		}
		if time.Now().After(deadline) {
			t.Fatalf("group did not settle at %d rows (got %d)", want, len(rows))
		}
		time.Sleep(10 * time.Millisecond)
	}
}
