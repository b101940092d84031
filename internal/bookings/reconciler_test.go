package bookings

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestNewJobProcessor_DefaultsConfig(t *testing.T) {
	jp := NewJobProcessor(nil, nil)

	assert.Equal(t, 5*time.Minute, jp.config.ReconcileInterval)
	assert.Equal(t, 15*time.Minute, jp.config.StuckAfter)
}

func TestGetJobStatus(t *testing.T) {
	jp := NewJobProcessor(nil, &JobConfig{
		ReconcileInterval: time.Minute,
		StuckAfter:        10 * time.Minute,
	})

	status := jp.GetJobStatus()
	assert.Equal(t, "1m0s", status["reconcile_interval"])
	assert.Equal(t, "10m0s", status["stuck_after"])
	assert.Equal(t, "running", status["status"])
}
