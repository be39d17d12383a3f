package config

import "time"

// Config holds runtime settings for the Faktur CLI.
//
// Fields:
//   - ServerEndpointAddr: base URL of the backend REST endpoint.
//   - RealtimeEndpointAddr: websocket URL of the backend push channel.
//   - DatabaseFile: path to the local SQLite cache.
//   - RedialInterval: pause between websocket reconnection attempts.
//
// Units: RedialInterval is a time.Duration (e.g., 3*time.Second).
type Config struct {
	ServerEndpointAddr   string
	RealtimeEndpointAddr string
	DatabaseFile         string
	RedialInterval       time.Duration
}

// LoadDefaults populates c with sensible defaults.
func (c *Config) LoadDefaults() {
	c.ServerEndpointAddr = "http://127.0.0.1:8080"
	c.RealtimeEndpointAddr = "ws://127.0.0.1:8080/ws"
	c.DatabaseFile = "faktur.db"
	c.RedialInterval = 3 * time.Second
}

// LoadConfig constructs a Config, applies defaults, then overlays values from
// JSON (if present) and command-line flags (if present). Later sources take
// precedence over earlier ones.
func LoadConfig() *Config {
	cfg := &Config{}
	cfg.LoadDefaults()
	parseJson(cfg)
	parseFlags(cfg)
	return cfg
}
