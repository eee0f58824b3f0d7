package jobs

import (
	"context"
	"errors"
	"sync/atomic"
	"testing"
	"time"

	"github.com/rs/zerolog"
	"github.com/stretchr/testify/assert"
)

func TestCancelAndWait(t *testing.T) {
	t.Run("finishes fast enough", func(t *testing.T) {
		testJobs := Jobs{
			slowJob("Job A", time.Millisecond*100),
			slowJob("Job B", time.Millisecond*200),
		}

		before := time.Now()
		unfinished := testJobs.CancelAndWait(time.Second * 1)
		after := time.Now()
		assert.WithinDuration(t, after, before, time.Millisecond*500, "jobs did not finish fast enough")
		assert.Len(t, unfinished, 0)
	})
	t.Run("reports unfinished jobs", func(t *testing.T) {
		testJobs := Jobs{
			slowJob("Job A", time.Millisecond*100),
			slowJob("Job B", time.Second*10),
		}

		unfinished := testJobs.CancelAndWait(time.Second * 1)
		assert.Equal(t, []string{"Job B"}, unfinished)
	})
}

func TestEveryKeepsTickingAfterFailures(t *testing.T) {
	var ticks atomic.Int32
	job := Every("flaky", 5*time.Millisecond, func(ctx context.Context, logger *zerolog.Logger) error {
		switch ticks.Add(1) {
		case 1:
			return errors.New("first tick fails")
		case 2:
			panic("second tick panics")
		}
		return nil
	})

	assert.Eventually(t, func() bool { return ticks.Load() >= 3 }, time.Second, time.Millisecond)

	unfinished := Jobs{job}.CancelAndWait(time.Second)
	assert.Empty(t, unfinished)
}

func slowJob(name string, shutdownTime time.Duration) *Job {
	job := New(name)
	go func() {
		<-job.Ctx.Done()
		timer := time.NewTimer(shutdownTime)
		<-timer.C
		job.Finish()
	}()
	return job
}
