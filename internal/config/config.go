package config

import (
	"fmt"
	"os"
	"strconv"
	"strings"
	"time"

	"gopkg.in/yaml.v3"
)

type Config struct {
	// Bloque app (opcional en YAML). Si no está, queda vacío.
	App struct {
		// dev | staging | prod
		Env string `yaml:"app_env"`
	} `yaml:"app"`

	Server struct {
		Addr string `yaml:"addr"`
	} `yaml:"server"`

	Storage struct {
		// memory | postgres. Vacío con DSN presente implica postgres.
		Driver   string `yaml:"driver"`
		DSN      string `yaml:"dsn"`
		Postgres struct {
			MaxOpenConns    int    `yaml:"max_open_conns"`
			MaxIdleConns    int    `yaml:"max_idle_conns"`
			ConnMaxLifetime string `yaml:"conn_max_lifetime"`
		} `yaml:"postgres"`
	} `yaml:"storage"`

	NonceValidation struct {
		// WindowDuration en formato HH:MM:SS (wire-compat con el deployment)
		WindowDuration string `yaml:"window_duration"`
	} `yaml:"nonce_validation"`

	NodeEviction struct {
		MaxNodesPerClusterVersion int `yaml:"max_nodes_per_cluster_version"`
	} `yaml:"node_eviction"`

	Rate struct {
		Disabled    bool   `yaml:"disabled"`
		Window      string `yaml:"window"`
		MaxRequests int    `yaml:"max_requests"`
		Redis       struct {
			Addr   string `yaml:"addr"`
			DB     int    `yaml:"db"`
			Prefix string `yaml:"prefix"`
		} `yaml:"redis"`
	} `yaml:"rate"`

	Log struct {
		Env   string `yaml:"env"`
		Level string `yaml:"level"`
	} `yaml:"log"`
}

const (
	DefaultMaxPerGroup = 5
	DefaultAddr        = ":8080"
)

// Load lee un YAML y aplica overrides de entorno encima.
func Load(path string) (*Config, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, err
	}
	var c Config
	if err := yaml.Unmarshal(b, &c); err != nil {
		return nil, fmt.Errorf("config yaml: %w", err)
	}
	c.applyEnv()
	c.applyDefaults()
	return &c, nil
}

// FromEnv arma la config sólo desde variables de entorno.
func FromEnv() *Config {
	var c Config
	c.applyEnv()
	c.applyDefaults()
	return &c
}

// applyEnv: convención de secciones con doble guión bajo
// (ConnectionStrings__DefaultConnection, NonceValidation__WindowDuration, ...).
func (c *Config) applyEnv() {
	if v := getenv("ConnectionStrings__DefaultConnection"); v != "" {
		c.Storage.DSN = v
	}
	if v := getenv("Storage__Driver"); v != "" {
		c.Storage.Driver = v
	}
	if v := getenv("NonceValidation__WindowDuration"); v != "" {
		c.NonceValidation.WindowDuration = v
	}
	if v := getenv("NodeEviction__MaxNodesPerClusterVersion"); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.NodeEviction.MaxNodesPerClusterVersion = n
		}
	}
	if v := getenv("RateLimiting__Disabled"); v != "" {
		c.Rate.Disabled = strings.EqualFold(v, "true")
	}
	if v := getenv("Rate__Redis__Addr"); v != "" {
		c.Rate.Redis.Addr = v
	}
	if v := getenv("Server__Addr"); v != "" {
		c.Server.Addr = v
	}
	if v := getenv("Log__Env"); v != "" {
		c.Log.Env = v
	}
	if v := getenv("Log__Level"); v != "" {
		c.Log.Level = v
	}
	if v := getenv("APP_ENV"); v != "" && c.App.Env == "" {
		c.App.Env = v
	}
}

func (c *Config) applyDefaults() {
	if c.Server.Addr == "" {
		c.Server.Addr = DefaultAddr
	}
	if c.Storage.Driver == "" {
		if c.Storage.DSN != "" {
			c.Storage.Driver = "postgres"
		} else {
			c.Storage.Driver = "memory"
		}
	}
	if c.NonceValidation.WindowDuration == "" {
		c.NonceValidation.WindowDuration = "24:00:00"
	}
	if c.NodeEviction.MaxNodesPerClusterVersion == 0 {
		c.NodeEviction.MaxNodesPerClusterVersion = DefaultMaxPerGroup
	}
	if c.Rate.Window == "" {
		c.Rate.Window = "1m"
	}
	if c.Rate.MaxRequests == 0 {
		c.Rate.MaxRequests = 120
	}
	if c.Log.Env == "" {
		c.Log.Env = c.App.Env
	}
}

// Validate chequea lo que no se puede defaultear.
func (c *Config) Validate() error {
	if c.NodeEviction.MaxNodesPerClusterVersion <= 0 {
		return fmt.Errorf("NodeEviction__MaxNodesPerClusterVersion debe ser positivo")
	}
	if _, err := c.Window(); err != nil {
		return err
	}
	switch strings.ToLower(c.Storage.Driver) {
	case "memory", "postgres", "pg", "postgresql":
	default:
		return fmt.Errorf("storage driver desconocido: %s", c.Storage.Driver)
	}
	return nil
}

// Window parsea NonceValidation.WindowDuration ("HH:MM:SS").
func (c *Config) Window() (time.Duration, error) {
	return ParseWindow(c.NonceValidation.WindowDuration)
}

// ParseWindow convierte "HH:MM:SS" a time.Duration. HH puede exceder 24.
func ParseWindow(s string) (time.Duration, error) {
	parts := strings.Split(strings.TrimSpace(s), ":")
	if len(parts) != 3 {
		return 0, fmt.Errorf("window %q: se espera HH:MM:SS", s)
	}
	h, err1 := strconv.Atoi(parts[0])
	m, err2 := strconv.Atoi(parts[1])
	sec, err3 := strconv.Atoi(parts[2])
	if err1 != nil || err2 != nil || err3 != nil || h < 0 || m < 0 || m > 59 || sec < 0 || sec > 59 {
		return 0, fmt.Errorf("window %q: se espera HH:MM:SS", s)
	}
	d := time.Duration(h)*time.Hour + time.Duration(m)*time.Minute + time.Duration(sec)*time.Second
	if d <= 0 {
		return 0, fmt.Errorf("window %q: debe ser positiva", s)
	}
	return d, nil
}

// RateWindow parsea Rate.Window como time.Duration estándar de Go.
func (c *Config) RateWindow() time.Duration {
	if d, err := time.ParseDuration(c.Rate.Window); err == nil && d > 0 {
		return d
	}
	return time.Minute
}

func getenv(k string) string { return strings.TrimSpace(os.Getenv(k)) }
