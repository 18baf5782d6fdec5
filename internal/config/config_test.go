package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"
)

func TestParseWindow(t *testing.T) {
	cases := []struct {
		in   string
		want time.Duration
		ok   bool
	}{
		{"24:00:00", 24 * time.Hour, true},
		{"00:30:00", 30 * time.Minute, true},
		{"01:02:03", time.Hour + 2*time.Minute + 3*time.Second, true},
		{"48:00:00", 48 * time.Hour, true},
		{"00:00:00", 0, false},
		{"24:00", 0, false},
		{"aa:bb:cc", 0, false},
		{"00:99:00", 0, false},
		{"", 0, false},
	}
	for _, c := range cases {
		got, err := ParseWindow(c.in)
		if c.ok && (err != nil || got != c.want) {
			t.Fatalf("ParseWindow(%q) = %v, %v; want %v", c.in, got, err, c.want)
		}
		if !c.ok && err == nil {
			t.Fatalf("ParseWindow(%q) debería fallar", c.in)
		}
	}
}

func TestFromEnv_SpecNamesAndDefaults(t *testing.T) {
	t.Setenv("ConnectionStrings__DefaultConnection", "postgres://u:p@localhost/nodereg")
	t.Setenv("NonceValidation__WindowDuration", "01:00:00")
	t.Setenv("NodeEviction__MaxNodesPerClusterVersion", "7")
	t.Setenv("RateLimiting__Disabled", "true")

	c := FromEnv()
	if c.Storage.DSN != "postgres://u:p@localhost/nodereg" {
		t.Fatalf("dsn: %q", c.Storage.DSN)
	}
	// con DSN presente el driver defaultea a postgres
	if c.Storage.Driver != "postgres" {
		t.Fatalf("driver: %q", c.Storage.Driver)
	}
	if w, err := c.Window(); err != nil || w != time.Hour {
		t.Fatalf("window: %v, %v", w, err)
	}
	if c.NodeEviction.MaxNodesPerClusterVersion != 7 {
		t.Fatalf("max per group: %d", c.NodeEviction.MaxNodesPerClusterVersion)
	}
	if !c.Rate.Disabled {
		t.Fatal("rate limiting should be disabled")
	}
	if err := c.Validate(); err != nil {
		t.Fatalf("validate: %v", err)
	}
}

func TestFromEnv_Defaults(t *testing.T) {
	// hermético: ignorar lo que haya en el ambiente real
	t.Setenv("ConnectionStrings__DefaultConnection", "")
	t.Setenv("NonceValidation__WindowDuration", "")
	t.Setenv("NodeEviction__MaxNodesPerClusterVersion", "")
	t.Setenv("Storage__Driver", "")
	t.Setenv("Server__Addr", "")

	c := FromEnv()
	if c.Server.Addr != DefaultAddr {
		t.Fatalf("addr: %q", c.Server.Addr)
	}
	if c.Storage.Driver != "memory" {
		t.Fatalf("driver sin DSN: %q", c.Storage.Driver)
	}
	if c.NonceValidation.WindowDuration != "24:00:00" {
		t.Fatalf("window default: %q", c.NonceValidation.WindowDuration)
	}
	if c.NodeEviction.MaxNodesPerClusterVersion != DefaultMaxPerGroup {
		t.Fatalf("max default: %d", c.NodeEviction.MaxNodesPerClusterVersion)
	}
}

func TestLoad_YAMLWithEnvOverride(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	yaml := `
server:
  addr: ":9090"
storage:
  driver: memory
nonce_validation:
  window_duration: "12:00:00"
node_eviction:
  max_nodes_per_cluster_version: 3
`
	if err := os.WriteFile(path, []byte(yaml), 0o600); err != nil {
		t.Fatal(err)
	}

	// el env pisa al YAML
	t.Setenv("NodeEviction__MaxNodesPerClusterVersion", "9")

	c, err := Load(path)
	if err != nil {
		t.Fatalf("load: %v", err)
	}
	if c.Server.Addr != ":9090" {
		t.Fatalf("addr: %q", c.Server.Addr)
	}
	if w, _ := c.Window(); w != 12*time.Hour {
		t.Fatalf("window: %v", w)
	}
	if c.NodeEviction.MaxNodesPerClusterVersion != 9 {
		t.Fatalf("env override perdido: %d", c.NodeEviction.MaxNodesPerClusterVersion)
	}
}

func TestValidate_Rejects(t *testing.T) {
	c := FromEnv()
	c.NonceValidation.WindowDuration = "nope"
	if err := c.Validate(); err == nil {
		t.Fatal("ventana inválida debería fallar")
	}

	c = FromEnv()
	c.Storage.Driver = "oracle"
	if err := c.Validate(); err == nil {
		t.Fatal("driver desconocido debería fallar")
	}
}
