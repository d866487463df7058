package config

import "os"

// Environment variables consulted by parseEnv. Secrets are better kept out
// of the process command line, so they can be given here instead of flags.
const (
	EnvEncryptionKey = "FACEAUTH_ENCRYPTION_KEY"
	EnvDatabaseDSN   = "FACEAUTH_DATABASE_DSN"
	EnvSecretKey     = "FACEAUTH_SECRET_KEY"
)

// parseEnv overlays secret settings from the environment. Unset or empty
// variables leave the current value untouched.
func parseEnv(config *Config) {
	if v, ok := os.LookupEnv(EnvEncryptionKey); ok && v != "" {
		config.EncryptionKey = v
	}
	if v, ok := os.LookupEnv(EnvDatabaseDSN); ok && v != "" {
		config.DatabaseDSN = v
	}
	if v, ok := os.LookupEnv(EnvSecretKey); ok && v != "" {
		config.SecretKey = v
	}
}
