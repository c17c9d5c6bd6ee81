package config

import (
	"encoding/json"
	"os"
	"time"

	"github.com/dbocharov/newsletter/internal/flagx"
	"github.com/dbocharov/newsletter/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "10s" and integer nanoseconds.
//
// This struct is an intermediate DTO used only for reading JSON configuration
// files. After unmarshalling, its fields are copied into the runtime Config
// struct which uses time.Duration.
type JsonConfig struct {
	EndpointAddrHTTP   string         `json:"endpoint_addr_http"`
	DatabaseDSN        string         `json:"database_dsn"`
	BaseURL            string         `json:"base_url"`
	EmailEndpoint      string         `json:"email_endpoint"`
	EmailSender        string         `json:"email_sender"`
	EmailAuthToken     string         `json:"email_auth_token"`
	EmailTimeout       timex.Duration `json:"email_timeout"`
	SessionIdleTimeout timex.Duration `json:"session_idle_timeout"`
	SecretKey          string         `json:"secret_key"`
	Argon2Memory       uint32         `json:"argon2_memory"`
	Argon2Time         uint32         `json:"argon2_time"`
	Argon2Threads      uint8          `json:"argon2_threads"`
}

// parseJson loads configuration values from a JSON file into the provided
// Config instance.
//
// The JSON file path is taken from the -c or -config command-line flags.
// If neither is set, no JSON file is loaded. If the file cannot be read or
// contains invalid JSON, the function panics.
func parseJson(config *Config) {

	// try flags
	jsonConfigFile := flagx.JsonConfigFlags()

	// nothing to load
	if jsonConfigFile == "" {
		return
	}

	c := &JsonConfig{}

	file, err := os.ReadFile(jsonConfigFile)
	if err != nil {
		panic(err)
	}

	err = json.Unmarshal(file, c)
	if err != nil {
		panic(err)
	}

	config.EndpointAddrHTTP = c.EndpointAddrHTTP
	config.DatabaseDSN = c.DatabaseDSN
	config.BaseURL = c.BaseURL
	config.EmailEndpoint = c.EmailEndpoint
	config.EmailSender = c.EmailSender
	config.EmailAuthToken = c.EmailAuthToken
	config.EmailTimeout = time.Duration(c.EmailTimeout.Duration)
	config.SessionIdleTimeout = time.Duration(c.SessionIdleTimeout.Duration)
	if c.SecretKey != "" {
		config.SecretKey = c.SecretKey
	}
	if c.Argon2Memory > 0 {
		config.Argon2Memory = c.Argon2Memory
	}
	if c.Argon2Time > 0 {
		config.Argon2Time = c.Argon2Time
	}
	if c.Argon2Threads > 0 {
		config.Argon2Threads = c.Argon2Threads
	}
}
