package config

import (
	"encoding/json"
	"os"

	"github.com/dmitrijs2005/faceauth/internal/flagx"
	"github.com/dmitrijs2005/faceauth/internal/timex"
)

// JsonConfig defines a configuration structure tailored for JSON unmarshalling.
// It uses timex.Duration for interval fields, which allows parsing both
// string values such as "15m" and integer nanoseconds.
//
// Pointer fields distinguish "absent" from a zero value, so a file only
// overrides the settings it names.
type JsonConfig struct {
	EndpointAddrGRPC            *string         `json:"endpoint_addr_grpc"`
	EndpointAddrHTTP            *string         `json:"endpoint_addr_http"`
	StorageBackend              *string         `json:"storage_backend"`
	DatabaseDSN                 *string         `json:"database_dsn"`
	BadgerPath                  *string         `json:"badger_path"`
	EncryptionKey               *string         `json:"encryption_key"`
	Cipher                      *string         `json:"cipher"`
	MatchThreshold              *float64        `json:"match_threshold"`
	DescriptorLength            *int            `json:"descriptor_length"`
	TieBreak                    *string         `json:"tie_break"`
	ScanWorkers                 *int            `json:"scan_workers"`
	SecretKey                   *string         `json:"secret_key"`
	AccessTokenValidityDuration *timex.Duration `json:"access_token_validity_duration"`
	AllowedOrigins              []string        `json:"allowed_origins"`
	ModelsDir                   *string         `json:"models_dir"`
	LogLevel                    *string         `json:"log_level"`
}

// parseJson loads configuration values from the JSON file named by the -c or
// -config flag into the provided Config. Without the flag nothing is loaded.
// If the file cannot be read or contains invalid JSON, the function panics.
func parseJson(config *Config) {

	jsonConfigFile := flagx.JSONConfigPath()

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

	set(&config.EndpointAddrGRPC, c.EndpointAddrGRPC)
	set(&config.EndpointAddrHTTP, c.EndpointAddrHTTP)
	set(&config.StorageBackend, c.StorageBackend)
	set(&config.DatabaseDSN, c.DatabaseDSN)
	set(&config.BadgerPath, c.BadgerPath)
	set(&config.EncryptionKey, c.EncryptionKey)
	set(&config.Cipher, c.Cipher)
	set(&config.MatchThreshold, c.MatchThreshold)
	set(&config.DescriptorLength, c.DescriptorLength)
	set(&config.TieBreak, c.TieBreak)
	set(&config.ScanWorkers, c.ScanWorkers)
	set(&config.SecretKey, c.SecretKey)
	if c.AccessTokenValidityDuration != nil {
		config.AccessTokenValidityDuration = c.AccessTokenValidityDuration.Duration
	}
	if c.AllowedOrigins != nil {
		config.AllowedOrigins = c.AllowedOrigins
	}
	set(&config.ModelsDir, c.ModelsDir)
	set(&config.LogLevel, c.LogLevel)
}

func set[T any](dst *T, v *T) {
	if v != nil {
		*dst = *v
	}
}
