package config

import (
	"flag"
	"time"
)

// ParseFlags parses all configuration flags.
//
// Flags:
//
//	-a server address in format [host]:[port]
//	-d database DSN
//	-driver local database driver (pgx or sqlite3)
//	-c/-config json file path with configs
//	-remote-mode remote gateway mode (http or local)
//	-remote-url base URL of the remote peer for http mode
//	-remote-d simulated remote database DSN for local mode
//	-remote-driver simulated remote database driver
//	-token-sign-key token signing key
//	-token-issuer token issuer name
//	-token-duration token duration (e.g., "1h", "30m")
//	-request-timeout request timeout (e.g., "30s", "1m")
//	-lease-ttl sync in-progress lease expiry (e.g., "5m")
//	-sync-interval background sync period, 0 disables the job
//	-sync-user user id the background sync job runs for
func ParseFlags() *StructuredConfig {
	var serverAddress string
	var databaseDSN string
	var databaseDriver string
	var jsonConfigPath string
	var remoteMode string
	var remoteBaseURL string
	var remoteDSN string
	var remoteDriver string
	var remoteTimeout time.Duration
	var tokenSignKey string
	var tokenIssuer string
	var tokenDuration time.Duration
	var requestTimeout time.Duration
	var leaseTTL time.Duration
	var syncInterval time.Duration
	var syncUserID int64

	flag.StringVar(&serverAddress, "a", "", "Net address host:port")
	flag.StringVar(&databaseDSN, "d", "", "Database DSN")
	flag.StringVar(&databaseDriver, "driver", "", "Database driver (pgx or sqlite3)")
	flag.StringVar(&jsonConfigPath, "c", "", "JSON config file path")
	flag.StringVar(&jsonConfigPath, "config", "", "JSON config file path (alias)")
	flag.StringVar(&remoteMode, "remote-mode", "", "Remote gateway mode (http or local)")
	flag.StringVar(&remoteBaseURL, "remote-url", "", "Remote peer base URL")
	flag.StringVar(&remoteDSN, "remote-d", "", "Simulated remote database DSN")
	flag.StringVar(&remoteDriver, "remote-driver", "", "Simulated remote database driver")
	flag.DurationVar(&remoteTimeout, "remote-timeout", 0, "Remote request timeout (e.g., 15s)")
	flag.StringVar(&tokenSignKey, "token-sign-key", "", "Token signing key")
	flag.StringVar(&tokenIssuer, "token-issuer", "", "Token issuer")
	flag.DurationVar(&tokenDuration, "token-duration", 0, "Token duration (e.g., 1h, 30m)")
	flag.DurationVar(&requestTimeout, "request-timeout", 0, "Request timeout (e.g., 30s, 1m)")
	flag.DurationVar(&leaseTTL, "lease-ttl", 0, "Sync in-progress lease expiry (e.g., 5m)")
	flag.DurationVar(&syncInterval, "sync-interval", 0, "Background sync period, 0 disables")
	flag.Int64Var(&syncUserID, "sync-user", 0, "User id for the background sync job")

	flag.Parse()

	return &StructuredConfig{
		App: App{
			TokenSignKey:  tokenSignKey,
			TokenIssuer:   tokenIssuer,
			TokenDuration: tokenDuration,
		},
		Storage: Storage{
			DB: DB{
				Driver: databaseDriver,
				DSN:    databaseDSN,
			},
		},
		Server: Server{
			HTTPAddress:    serverAddress,
			RequestTimeout: requestTimeout,
		},
		Remote: Remote{
			Mode:           remoteMode,
			BaseURL:        remoteBaseURL,
			RequestTimeout: remoteTimeout,
			DB: DB{
				Driver: remoteDriver,
				DSN:    remoteDSN,
			},
		},
		Sync: Sync{
			LeaseTTL:  leaseTTL,
			Interval:  syncInterval,
			JobUserID: syncUserID,
		},
		JSONFilePath: jsonConfigPath,
	}
}
