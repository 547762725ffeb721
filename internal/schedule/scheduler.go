package schedule

import (
	"context"
	"fmt"
	"sync/atomic"
	"time"

	"github.com/robfig/cron/v3"
	"github.com/xxxsen/common/logutil"
	"go.uber.org/zap"
)

// Job is a named unit of background work. Run receives the scheduler's
// lifetime context and should return once that context is cancelled.
type Job interface {
	Name() string
	Run(ctx context.Context) error
}

// CronScheduler runs jobs on standard 5-field cron expressions. A tick that
// fires while the previous run of the same job is still in flight is skipped.
type CronScheduler struct {
	cron  *cron.Cron
	names map[string]struct{}
	ctx   atomic.Pointer[context.Context]
}

func NewCronScheduler() *CronScheduler {
	parser := cron.NewParser(cron.Minute | cron.Hour | cron.Dom | cron.Month | cron.Dow)
	return &CronScheduler{
		cron:  cron.New(cron.WithParser(parser)),
		names: make(map[string]struct{}),
	}
}

func (c *CronScheduler) AddJob(job Job, spec string) error {
	name := job.Name()
	if _, ok := c.names[name]; ok {
		return fmt.Errorf("job already scheduled: %s", name)
	}
	if _, err := c.cron.AddFunc(spec, c.runner(job)); err != nil {
		return fmt.Errorf("schedule %s with %q: %w", name, spec, err)
	}
	c.names[name] = struct{}{}
	logutil.GetLogger(context.Background()).Info("job scheduled",
		zap.String("job", name), zap.String("cron", spec))
	return nil
}

func (c *CronScheduler) Start(ctx context.Context) {
	if ctx == nil {
		ctx = context.Background()
	}
	c.ctx.Store(&ctx)
	c.cron.Start()
}

func (c *CronScheduler) Stop() {
	<-c.cron.Stop().Done()
}

func (c *CronScheduler) runner(job Job) func() {
	var inFlight atomic.Bool
	return func() {
		ctx := context.Background()
		if p := c.ctx.Load(); p != nil {
			ctx = *p
		}
		logger := logutil.GetLogger(ctx).With(zap.String("job", job.Name()))
		if !inFlight.CompareAndSwap(false, true) {
			logger.Warn("previous run still in flight, tick skipped")
			return
		}
		defer inFlight.Store(false)

		start := time.Now()
		logger.Info("job run started")
		if err := job.Run(ctx); err != nil {
			logger.Error("job run failed", zap.Error(err), zap.Duration("cost", time.Since(start)))
			return
		}
		logger.Info("job run done", zap.Duration("cost", time.Since(start)))
	}
}
