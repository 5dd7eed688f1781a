package service

import (
	"testing"
	"time"

	"github.com/flashdeck/flashdeck/models"
	"github.com/stretchr/testify/assert"
)

func TestConflictResolver_Resolve(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	resolver := NewConflictResolver()

	tests := []struct {
		name   string
		local  models.RecordMeta
		remote models.RecordMeta
		want   models.Resolution
	}{
		{
			name:   "newer local modification wins",
			local:  models.RecordMeta{USN: 3, ModifiedAt: base.Add(time.Minute)},
			remote: models.RecordMeta{USN: 10, ModifiedAt: base},
			want:   models.LocalWins,
		},
		{
			name:   "newer remote modification wins",
			local:  models.RecordMeta{USN: 10, ModifiedAt: base},
			remote: models.RecordMeta{USN: 3, ModifiedAt: base.Add(time.Second)},
			want:   models.RemoteWins,
		},
		{
			name:   "equal timestamps fall back to higher usn local",
			local:  models.RecordMeta{USN: 12, ModifiedAt: base},
			remote: models.RecordMeta{USN: 7, ModifiedAt: base},
			want:   models.LocalWins,
		},
		{
			name:   "equal timestamps fall back to higher usn remote",
			local:  models.RecordMeta{USN: 7, ModifiedAt: base},
			remote: models.RecordMeta{USN: 12, ModifiedAt: base},
			want:   models.RemoteWins,
		},
		{
			name:   "full tie resolves remote",
			local:  models.RecordMeta{USN: 5, ModifiedAt: base},
			remote: models.RecordMeta{USN: 5, ModifiedAt: base},
			want:   models.RemoteWins,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, resolver.Resolve(tt.local, tt.remote))
		})
	}
}

func TestConflictResolver_Deterministic(t *testing.T) {
	base := time.Date(2026, 8, 1, 12, 0, 0, 0, time.UTC)
	resolver := NewConflictResolver()

	local := models.RecordMeta{USN: 8, ModifiedAt: base.Add(time.Hour)}
	remote := models.RecordMeta{USN: 12, ModifiedAt: base}

	first := resolver.Resolve(local, remote)
	for i := 0; i < 10; i++ {
		assert.Equal(t, first, resolver.Resolve(local, remote))
	}

	// the mirrored view must produce the mirrored outcome
	mirrored := resolver.Resolve(remote, local)
	assert.NotEqual(t, first, mirrored)
}
