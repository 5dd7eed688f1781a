package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestConfigBuilder_MergePriority(t *testing.T) {
	// mergo keeps the first non-zero value, so earlier sources win.
	first := &StructuredConfig{
		Storage: Storage{DB: DB{DSN: "postgres://first"}},
	}
	second := &StructuredConfig{
		Storage: Storage{DB: DB{DSN: "postgres://second"}},
		Server:  Server{HTTPAddress: "localhost:9999"},
		App:     App{TokenSignKey: "key", TokenIssuer: "issuer"},
		Remote:  Remote{Mode: "local", DB: DB{DSN: "remote.db"}},
	}

	b := newConfigBuilder()
	b.configs = append(b.configs, first, second)

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, "postgres://first", cfg.Storage.DB.DSN)
	assert.Equal(t, "localhost:9999", cfg.Server.HTTPAddress)
}

func TestConfigBuilder_AppliesDefaults(t *testing.T) {
	b := newConfigBuilder()
	b.configs = append(b.configs, &StructuredConfig{
		App:     App{TokenSignKey: "key", TokenIssuer: "issuer"},
		Storage: Storage{DB: DB{DSN: "flashdeck.db", Driver: "sqlite3"}},
		Remote:  Remote{Mode: "local", DB: DB{DSN: "remote.db"}},
	})

	cfg, err := b.build()
	require.NoError(t, err)

	assert.Equal(t, defaultHTTPAddress, cfg.Server.HTTPAddress)
	assert.Equal(t, defaultRequestTimeout, cfg.Server.RequestTimeout)
	assert.Equal(t, defaultLeaseTTL, cfg.Sync.LeaseTTL)
	assert.Equal(t, "sqlite3", cfg.Remote.DB.Driver)
	assert.Equal(t, 15*time.Second, cfg.Remote.RequestTimeout)
}

func TestConfigBuilder_ValidationFailures(t *testing.T) {
	tests := []struct {
		name    string
		cfg     *StructuredConfig
		wantErr error
	}{
		{
			name:    "missing storage dsn",
			cfg:     &StructuredConfig{App: App{TokenSignKey: "k", TokenIssuer: "i"}},
			wantErr: ErrInvalidStorageConfigs,
		},
		{
			name: "http mode without base url",
			cfg: &StructuredConfig{
				App:     App{TokenSignKey: "k", TokenIssuer: "i"},
				Storage: Storage{DB: DB{DSN: "x"}},
				Remote:  Remote{Mode: "http"},
			},
			wantErr: ErrInvalidRemoteConfigs,
		},
		{
			name: "local mode without remote dsn",
			cfg: &StructuredConfig{
				App:     App{TokenSignKey: "k", TokenIssuer: "i"},
				Storage: Storage{DB: DB{DSN: "x"}},
				Remote:  Remote{Mode: "local"},
			},
			wantErr: ErrInvalidRemoteConfigs,
		},
		{
			name: "missing token sign key",
			cfg: &StructuredConfig{
				Storage: Storage{DB: DB{DSN: "x"}},
				Remote:  Remote{Mode: "local", DB: DB{DSN: "remote.db"}},
			},
			wantErr: ErrInvalidAppConfigs,
		},
		{
			name: "sync job without user",
			cfg: &StructuredConfig{
				App:     App{TokenSignKey: "k", TokenIssuer: "i"},
				Storage: Storage{DB: DB{DSN: "x"}},
				Remote:  Remote{Mode: "local", DB: DB{DSN: "remote.db"}},
				Sync:    Sync{Interval: time.Minute},
			},
			wantErr: ErrInvalidSyncConfigs,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			b := newConfigBuilder()
			b.configs = append(b.configs, tt.cfg)

			_, err := b.build()
			assert.ErrorIs(t, err, tt.wantErr)
		})
	}
}
