package scheduler

import (
	"context"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mamadbah2/stocks/internal/config"
)

type countingRunner struct {
	calls atomic.Int32
}

func (r *countingRunner) Run(context.Context, time.Time) (string, error) {
	r.calls.Add(1)
	return "backup.xlsx", nil
}

func TestNewSchedulerRejectsUnknownTimezone(t *testing.T) {
	t.Parallel()

	_, err := NewScheduler(config.BackupConfig{CronSchedule: "0 20 * * *", Timezone: "Mars/Olympus"}, &countingRunner{}, nil)
	assert.Error(t, err)
}

func TestStartRejectsBadSchedule(t *testing.T) {
	t.Parallel()

	s, err := NewScheduler(config.BackupConfig{CronSchedule: "every day", Timezone: "UTC"}, &countingRunner{}, nil)
	require.NoError(t, err)
	assert.Error(t, s.Start())
}

func TestRunBackupInvokesRunner(t *testing.T) {
	t.Parallel()

	runner := &countingRunner{}
	s, err := NewScheduler(config.BackupConfig{CronSchedule: "@every 1h", Timezone: "UTC"}, runner, nil)
	require.NoError(t, err)
	require.NoError(t, s.Start())
	defer s.Stop()

	s.runBackup()
	assert.Equal(t, int32(1), runner.calls.Load())
}
