package v1alpha1

import (
	"encoding/json"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestTime_MarshalJSON(t *testing.T) {
	tests := []struct {
		name     string
		time     Time
		expected string
	}{
		{
			name:     "zero time returns null",
			time:     Time{},
			expected: "null",
		},
		{
			name:     "valid time returns RFC3339",
			time:     Time{Time: time.Date(2025, 11, 3, 10, 30, 0, 0, time.UTC)},
			expected: `"2025-11-03T10:30:00Z"`,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tt.time.MarshalJSON()
			require.NoError(t, err)
			assert.Equal(t, tt.expected, string(got))
		})
	}
}

func TestTime_UnmarshalJSON(t *testing.T) {
	tests := []struct {
		name      string
		input     string
		wantZero  bool
		wantError bool
	}{
		{name: "null returns zero time", input: "null", wantZero: true},
		{name: "empty string returns zero time", input: `""`, wantZero: true},
		{name: "valid RFC3339 time", input: `"2025-11-03T10:30:00Z"`},
		{name: "invalid format", input: `"yesterday"`, wantError: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var got Time
			err := got.UnmarshalJSON([]byte(tt.input))
			if tt.wantError {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.wantZero, got.IsZero())
		})
	}
}

func TestTime_YAMLRoundTrip(t *testing.T) {
	type wrapper struct {
		At Time `yaml:"at,omitempty"`
	}

	in := wrapper{At: Time{Time: time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)}}
	data, err := yaml.Marshal(in)
	require.NoError(t, err)
	assert.Contains(t, string(data), "2026-01-02T03:04:05Z")

	var out wrapper
	require.NoError(t, yaml.Unmarshal(data, &out))
	assert.True(t, in.At.Equal(out.At.Time))
}

func TestDuration_YAML(t *testing.T) {
	type wrapper struct {
		Delay Duration `yaml:"delay"`
	}

	tests := []struct {
		name    string
		input   string
		want    time.Duration
		wantErr bool
	}{
		{name: "seconds", input: "delay: 80s", want: 80 * time.Second},
		{name: "minutes", input: "delay: 5m", want: 5 * time.Minute},
		{name: "compound", input: "delay: 1m30s", want: 90 * time.Second},
		{name: "empty", input: "delay: \"\"", want: 0},
		{name: "bare number is rejected", input: "delay: 80", wantErr: true},
		{name: "garbage", input: "delay: soon", wantErr: true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var w wrapper
			err := yaml.Unmarshal([]byte(tt.input), &w)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, w.Delay.Duration)
		})
	}
}

func TestDuration_JSON(t *testing.T) {
	d := Duration{Duration: 80 * time.Second}
	data, err := json.Marshal(d)
	require.NoError(t, err)
	assert.Equal(t, `"1m20s"`, string(data))

	var back Duration
	require.NoError(t, json.Unmarshal(data, &back))
	assert.Equal(t, d.Duration, back.Duration)

	assert.Error(t, json.Unmarshal([]byte(`80`), &back))
}
