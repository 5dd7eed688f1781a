package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func writeTempJSON(t *testing.T, content string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o600))
	return path
}

func TestParseJSON_AllFields(t *testing.T) {
	path := writeTempJSON(t, `{
		"app": {
			"token_sign_key": "jwt_secret",
			"token_issuer": "flashdeck",
			"token_duration": "1h",
			"version": "1.2.3"
		},
		"storage": {"db": {"driver": "pgx", "dsn": "postgres://localhost/flashdeck"}},
		"server": {"http_address": "0.0.0.0:9000", "request_timeout": "45s"},
		"remote": {
			"mode": "local",
			"request_timeout": "20s",
			"db": {"driver": "sqlite3", "dsn": "remote.db"}
		},
		"sync": {"lease_ttl": "3m", "interval": "10m", "job_user_id": 5}
	}`)

	cfg, err := parseJSON(path)
	require.NoError(t, err)

	assert.Equal(t, "jwt_secret", cfg.App.TokenSignKey)
	assert.Equal(t, "flashdeck", cfg.App.TokenIssuer)
	assert.Equal(t, time.Hour, cfg.App.TokenDuration)
	assert.Equal(t, "1.2.3", cfg.App.Version)

	assert.Equal(t, "pgx", cfg.Storage.DB.Driver)
	assert.Equal(t, "postgres://localhost/flashdeck", cfg.Storage.DB.DSN)

	assert.Equal(t, "0.0.0.0:9000", cfg.Server.HTTPAddress)
	assert.Equal(t, 45*time.Second, cfg.Server.RequestTimeout)

	assert.Equal(t, "local", cfg.Remote.Mode)
	assert.Equal(t, 20*time.Second, cfg.Remote.RequestTimeout)
	assert.Equal(t, "sqlite3", cfg.Remote.DB.Driver)
	assert.Equal(t, "remote.db", cfg.Remote.DB.DSN)

	assert.Equal(t, 3*time.Minute, cfg.Sync.LeaseTTL)
	assert.Equal(t, 10*time.Minute, cfg.Sync.Interval)
	assert.Equal(t, int64(5), cfg.Sync.JobUserID)
}

func TestParseJSON_FileMissing(t *testing.T) {
	_, err := parseJSON("/does/not/exist.json")
	assert.Error(t, err)
}

func TestParseJSON_MalformedJSON(t *testing.T) {
	path := writeTempJSON(t, `{"server": `)

	_, err := parseJSON(path)
	assert.Error(t, err)
}

func TestDuration_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "duration string", input: `"90s"`, want: 90 * time.Second},
		{name: "nanosecond number", input: `1000000000`, want: time.Second},
		{name: "garbage string", input: `"soon"`, wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var d Duration
			err := d.UnmarshalJSON([]byte(tt.input))
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, time.Duration(d))
		})
	}
}
