package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/faktur-app/faktur/internal/flagx"
	"github.com/faktur-app/faktur/internal/timex"
)

// JsonConfig is a DTO used exclusively for JSON unmarshalling.
// It relies on timex.Duration so JSON can specify intervals either as
// strings like "3s" or as integer nanoseconds. After parsing, values
// are copied into the runtime Config (which uses time.Duration).
type JsonConfig struct {
	ServerEndpointAddr   string         `json:"server_endpoint_addr"`
	RealtimeEndpointAddr string         `json:"realtime_endpoint_addr"`
	DatabaseFile         string         `json:"database_file"`
	RedialInterval       timex.Duration `json:"redial_interval"`
}

// parseJson overlays Config with values loaded from a JSON file.
//
// The file path comes from the -c or -config flag via flagx.ConfigFileFlag;
// when neither flag is set no JSON is loaded. Read or unmarshal errors panic
// (caller should recover if desired). Intended usage is:
// defaults -> parseJson -> parseFlags, where later stages override earlier
// ones.
func parseJson(cfg *Config) {
	jsonConfigFile := flagx.ConfigFileFlag()
	if jsonConfigFile == "" {
		return
	}

	var jc JsonConfig

	data, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}
	if err := json.Unmarshal(data, &jc); err != nil {
		panic(err)
	}

	cfg.ServerEndpointAddr = jc.ServerEndpointAddr
	cfg.RealtimeEndpointAddr = jc.RealtimeEndpointAddr
	cfg.DatabaseFile = jc.DatabaseFile
	cfg.RedialInterval = time.Duration(jc.RedialInterval.Duration)
}
