package util

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestParseDuration(t *testing.T) {
	tests := []struct {
		in   string
		want time.Duration
	}{
		{"7d", 7 * 24 * time.Hour},
		{"30", 30 * time.Second},
		{"10s", 10 * time.Second},
		{" 1m ", time.Minute},
	}
	for _, tt := range tests {
		got, err := ParseDuration(tt.in)
		assert.NoError(t, err, tt.in)
		assert.Equal(t, tt.want, got, tt.in)
	}

	_, err := ParseDuration("xd")
	assert.Error(t, err)
}

func TestParseDurationOr(t *testing.T) {
	assert.Equal(t, 5*time.Second, ParseDurationOr("", 5*time.Second))
	assert.Equal(t, 5*time.Second, ParseDurationOr("bogus", 5*time.Second))
	assert.Equal(t, 5*time.Second, ParseDurationOr("0", 5*time.Second))
	assert.Equal(t, 2*time.Minute, ParseDurationOr("2m", 5*time.Second))
}
