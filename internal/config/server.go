package config

import (
	"flag"
	"fmt"
	"os"
	"strconv"
	"strings"

	"gopkg.in/yaml.v3"
)

// ServerConfig holds configuration for the vizbridge server.
type ServerConfig struct {
	Port           int      `yaml:"port"`
	MetricsAddr    string   `yaml:"metrics_addr"`
	WSPath         string   `yaml:"ws_path"`
	SurfaceURL     string   `yaml:"surface_url"`
	SurfaceKey     string   `yaml:"surface_key"`
	Container      string   `yaml:"container"`
	AllowedOrigins []string `yaml:"allowed_origins"`
	RedisAddr      string   `yaml:"redis_addr"`
	LogLevel       string   `yaml:"log_level"`
	ConfigFile     string   `yaml:"-"`
}

// SetDefaults initializes c with built-in defaults.
func (c *ServerConfig) SetDefaults() {
	if c.LogLevel == "" {
		c.LogLevel = "info"
	}
	if c.Port == 0 {
		c.Port = 8080
	}
	if c.MetricsAddr == "" {
		c.MetricsAddr = fmt.Sprintf(":%d", c.Port)
	}
	if c.WSPath == "" {
		c.WSPath = "/api/surfaces/connect"
	}
	if c.Container == "" {
		c.Container = "main"
	}
}

// ApplyEnv overlays environment variables onto the current config values.
func (c *ServerConfig) ApplyEnv() {
	if v := getEnv("CONFIG_FILE", ""); v != "" {
		c.ConfigFile = v
	}
	if v := getEnv("LOG_LEVEL", ""); v != "" {
		c.LogLevel = v
	}
	if v := getEnv("PORT", ""); v != "" {
		if n, err := strconv.Atoi(v); err == nil {
			c.Port = n
		}
	}
	if v := getEnv("METRICS_PORT", ""); v != "" {
		if strings.Contains(v, ":") {
			c.MetricsAddr = v
		} else {
			c.MetricsAddr = ":" + v
		}
	}
	if v := getEnv("WS_PATH", ""); v != "" {
		c.WSPath = v
	}
	if v := getEnv("SURFACE_URL", ""); v != "" {
		c.SurfaceURL = v
	}
	if v := getEnv("SURFACE_KEY", ""); v != "" {
		c.SurfaceKey = v
	}
	if v := getEnv("CONTAINER", ""); v != "" {
		c.Container = v
	}
	if v := getEnv("ALLOWED_ORIGINS", ""); v != "" {
		c.AllowedOrigins = splitComma(v)
	}
	if v := getEnv("REDIS_ADDR", ""); v != "" {
		c.RedisAddr = v
	}
}

// BindFlags binds command line flags using the current config values as
// defaults so main can call flag.Parse().
func (c *ServerConfig) BindFlags() {
	flag.StringVar(&c.ConfigFile, "config", c.ConfigFile, "server config file path")
	flag.StringVar(&c.LogLevel, "log-level", c.LogLevel, "log verbosity (all, debug, info, warn, error, fatal, none)")
	flag.IntVar(&c.Port, "port", c.Port, "HTTP listen port")
	flag.StringVar(&c.MetricsAddr, "metrics-port", c.MetricsAddr, "Prometheus metrics listen address or port; defaults to the value of --port")
	flag.StringVar(&c.WSPath, "ws-path", c.WSPath, "path surfaces use to establish WebSocket connections")
	flag.StringVar(&c.SurfaceURL, "surface-url", c.SurfaceURL, "address of the embedded visualization surface")
	flag.StringVar(&c.SurfaceKey, "surface-key", c.SurfaceKey, "shared key surfaces must present when attaching; leave empty to disable")
	flag.StringVar(&c.Container, "container", c.Container, "mount key the surface container is registered under")
	flag.StringVar(&c.RedisAddr, "redis-addr", c.RedisAddr, "redis connection URL for bridge state")
	flag.Func("allowed-origins", "comma separated list of allowed origins", func(v string) error {
		c.AllowedOrigins = splitComma(v)
		return nil
	})
}

// LoadFile overlays values from a YAML config file onto c.
func (c *ServerConfig) LoadFile(path string) error {
	data, err := os.ReadFile(path)
	if err != nil {
		return err
	}
	return yaml.Unmarshal(data, c)
}

func getEnv(key, def string) string {
	if v, ok := os.LookupEnv(key); ok {
		return v
	}
	return def
}

func splitComma(v string) []string {
	parts := strings.Split(v, ",")
	out := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			out = append(out, p)
		}
	}
	return out
}
