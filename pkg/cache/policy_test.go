package cache

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestParsePolicy(t *testing.T) {
	tests := []struct {
		input     string
		want      Policy
		wantError bool
	}{
		{input: "forever", want: Forever},
		{input: "Forever", want: Forever},
		{input: "none", want: NoStore},
		{input: "0", want: NoStore},
		{input: "0s", want: NoStore},
		{input: "90s", want: For(90 * time.Second)},
		{input: "1h", want: For(time.Hour)},
		{input: "-1m", wantError: true},
		{input: "soon", wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.input, func(t *testing.T) {
			got, err := ParsePolicy(tt.input)
			if tt.wantError {
				assert.ErrorIs(t, err, ErrInvalidPolicy)
				return
			}

			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestPolicy_ExpiresAt(t *testing.T) {
	now := time.Date(2024, 1, 1, 0, 0, 0, 0, time.UTC)

	assert.True(t, Forever.ExpiresAt(now).IsZero())
	assert.True(t, Forever.Stores())
	assert.False(t, NoStore.Stores())
	assert.Equal(t, now.Add(time.Hour), For(time.Hour).ExpiresAt(now))
	assert.Equal(t, NoStore, For(0))
	assert.Equal(t, "1h0m0s", For(time.Hour).String())
	assert.Equal(t, "forever", Forever.String())
	assert.Equal(t, "none", NoStore.String())
}

func TestConfig_Validate(t *testing.T) {
	tests := []struct {
		name    string
		config  Config
		wantErr error
	}{
		{
			name:   "memory",
			config: Config{Backend: BackendMemory, TTL: "1h", PressureWindow: "forever", JanitorSchedule: "@every 1m"},
		},
		{
			name:   "redis without janitor",
			config: Config{Backend: BackendRedis, TTL: "1h", PressureWindow: "none"},
		},
		{
			name:    "memory without janitor",
			config:  Config{Backend: BackendMemory, TTL: "1h", PressureWindow: "forever"},
			wantErr: ErrJanitorScheduleRequired,
		},
		{
			name:    "unknown backend",
			config:  Config{Backend: "memcached"},
			wantErr: ErrUnknownBackend,
		},
		{
			name:    "bad ttl",
			config:  Config{Backend: BackendRedis, TTL: "later", PressureWindow: "forever"},
			wantErr: ErrInvalidPolicy,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := tt.config.Validate()
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestConfig_PoliciesReportParseErrors(t *testing.T) {
	cfg := Config{TTL: "30m", PressureWindow: "forever"}

	ttl, err := cfg.TTLPolicy()
	require.NoError(t, err)
	assert.Equal(t, For(30*time.Minute), ttl)

	window, err := cfg.PressureWindowPolicy()
	require.NoError(t, err)
	assert.Equal(t, Forever, window)

	cfg = Config{TTL: "soon", PressureWindow: "-1h"}

	_, err = cfg.TTLPolicy()
	require.ErrorIs(t, err, ErrInvalidPolicy)

	_, err = cfg.PressureWindowPolicy()
	require.ErrorIs(t, err, ErrInvalidPolicy)
}
