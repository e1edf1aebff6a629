package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestDurationUnmarshal(t *testing.T) {
	var w WatchConfig
	require.NoError(t, yaml.Unmarshal([]byte("debounce: 500ms\ninterval: 1h\n"), &w))
	assert.Equal(t, 500*time.Millisecond, w.Debounce.Std())
	assert.Equal(t, time.Hour, w.Interval.Std())
}

func TestDurationUnmarshalInvalid(t *testing.T) {
	var w WatchConfig
	require.Error(t, yaml.Unmarshal([]byte("debounce: soon\n"), &w))
}
