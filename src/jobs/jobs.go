// Package jobs runs background work that has to stop cleanly when the server
// shuts down. Each Job owns a cancelable context and a done channel; the
// server cancels every job at shutdown and waits a bounded time for them.
package jobs

import (
	"context"
	"time"

	"git.campusqa.org/campusqa/campusqa/src/logging"
	"git.campusqa.org/campusqa/campusqa/src/utils"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/prometheus/client_golang/prometheus/promauto"
	"github.com/rs/zerolog"
)

var jobFailures = promauto.NewCounterVec(prometheus.CounterOpts{
	Name: "campusqa_job_failures_total",
	Help: "Periodic job ticks that returned an error or panicked",
}, []string{"job"})

type Job struct {
	Name   string
	Ctx    context.Context
	Logger zerolog.Logger
	cancel func()
	done   chan struct{}
}

func New(name string) *Job {
	logger := logging.With().Str("job", name).Logger()
	ctx, cancel := context.WithCancel(context.Background())
	ctx = logging.AttachLoggerToContext(&logger, ctx)
	return &Job{
		Name:   name,
		Ctx:    ctx,
		Logger: logger,
		cancel: cancel,
		done:   make(chan struct{}),
	}
}

// Asks the job to stop. Called from outside the job.
func (j *Job) Cancel() {
	j.cancel()
}

func (j *Job) Canceled() <-chan struct{} {
	return j.Ctx.Done()
}

// Called by the job itself once it has stopped doing work.
func (j *Job) Finish() *Job {
	close(j.done)
	return j
}

func (j *Job) Finished() <-chan struct{} {
	return j.done
}

// Runs tick every interval until the job is canceled. An error or panic from
// one tick is logged and counted; the next tick still runs.
func Every(name string, interval time.Duration, tick func(ctx context.Context, logger *zerolog.Logger) error) *Job {
	job := New(name)
	go func() {
		defer job.Finish()

		t := time.NewTicker(interval)
		defer t.Stop()
		for {
			select {
			case <-t.C:
				err := func() (err error) {
					defer utils.RecoverPanicAsError(&err)
					return tick(job.Ctx, &job.Logger)
				}()
				if err != nil {
					jobFailures.WithLabelValues(name).Inc()
					job.Logger.Error().Err(err).Msg("job tick failed")
				}
			case <-job.Canceled():
				return
			}
		}
	}()
	return job
}

type Jobs []*Job

// Cancels every job and waits for all of them to finish, or for the timeout.
// Returns the names of the jobs still running when it gave up.
func (jobs Jobs) CancelAndWait(timeout time.Duration) []string {
	allDone := make(chan struct{})
	for _, job := range jobs {
		job.Cancel()
	}
	timer := time.NewTimer(timeout)
	defer timer.Stop()

	go func() {
		for _, job := range jobs {
			<-job.Finished()
		}
		close(allDone)
	}()

	select {
	case <-timer.C:
		return jobs.ListUnfinished()
	case <-allDone:
		return nil
	}
}

func (jobs Jobs) ListUnfinished() []string {
	unfinished := []string{}
	for _, job := range jobs {
		select {
		case <-job.Finished():
		default:
			unfinished = append(unfinished, job.Name)
		}
	}
	return unfinished
}
