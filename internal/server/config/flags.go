package config

import (
	"flag"
	"os"
	"strings"
	"time"

	"github.com/dmitrijs2005/faceauth/internal/flagx"
)

var ownFlags = []string{
	"-a", "-http", "-st", "-d", "-bp", "-k", "-cipher", "-m", "-n",
	"-tb", "-w", "-s", "-t", "-o", "-models", "-l",
}

// parseFlags populates server Config fields from command-line flags.
//
// Supported flags:
//
//	-a string       gRPC bind address (e.g., ":50051")
//	-http string    HTTP bind address (e.g., ":5000")
//	-st string      storage backend: postgres, badger or memory
//	-d string       PostgreSQL DSN
//	-bp string      badger data directory
//	-k string       hex-encoded 32-byte descriptor encryption key
//	-cipher string  aes-256-gcm or xchacha20-poly1305
//	-m float        match threshold
//	-n int          descriptor length
//	-tb string      tie-break policy: closest or first
//	-w int          login scan workers
//	-s string       JWT HMAC secret key
//	-t int          access token validity, minutes
//	-o string       comma-separated CORS origins
//	-models string  directory served under /models
//	-l string       log level
//
// Only the flags above are parsed (see flagx.FilterArgs); a malformed value
// panics, as the server cannot start with it.
func parseFlags(config *Config) {
	args := flagx.FilterArgs(os.Args[1:], ownFlags)

	fs := flag.NewFlagSet("main", flag.ContinueOnError)

	fs.StringVar(&config.EndpointAddrGRPC, "a", config.EndpointAddrGRPC, "address and port of the gRPC server")
	fs.StringVar(&config.EndpointAddrHTTP, "http", config.EndpointAddrHTTP, "address and port of the HTTP server")
	fs.StringVar(&config.StorageBackend, "st", config.StorageBackend, "storage backend (postgres, badger, memory)")
	fs.StringVar(&config.DatabaseDSN, "d", config.DatabaseDSN, "database DSN")
	fs.StringVar(&config.BadgerPath, "bp", config.BadgerPath, "badger data directory")
	fs.StringVar(&config.EncryptionKey, "k", config.EncryptionKey, "descriptor encryption key (hex, 32 bytes)")
	fs.StringVar(&config.Cipher, "cipher", config.Cipher, "descriptor cipher")
	fs.Float64Var(&config.MatchThreshold, "m", config.MatchThreshold, "match threshold")
	fs.IntVar(&config.DescriptorLength, "n", config.DescriptorLength, "descriptor length")
	fs.StringVar(&config.TieBreak, "tb", config.TieBreak, "tie-break policy (closest, first)")
	fs.IntVar(&config.ScanWorkers, "w", config.ScanWorkers, "login scan workers")
	fs.StringVar(&config.SecretKey, "s", config.SecretKey, "secret key")

	accessTokenValidityDuration := fs.Int("t", int(config.AccessTokenValidityDuration.Minutes()), "access_token_validity_duration (in minutes)")
	origins := fs.String("o", strings.Join(config.AllowedOrigins, ","), "allowed CORS origins (comma-separated)")

	fs.StringVar(&config.ModelsDir, "models", config.ModelsDir, "directory served under /models")
	fs.StringVar(&config.LogLevel, "l", config.LogLevel, "log level")

	if err := fs.Parse(args); err != nil {
		panic(err)
	}

	// -t has minute granularity; keep a finer JSON value unless it was given
	fs.Visit(func(f *flag.Flag) {
		if f.Name == "t" {
			config.AccessTokenValidityDuration = time.Duration(*accessTokenValidityDuration) * time.Minute
		}
	})
	config.AllowedOrigins = splitList(*origins)
}

// splitList splits a comma-separated list, dropping empty items.
func splitList(s string) []string {
	out := []string{}
	for _, item := range strings.Split(s, ",") {
		if item = strings.TrimSpace(item); item != "" {
			out = append(out, item)
		}
	}
	return out
}
