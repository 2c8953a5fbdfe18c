package pool

import (
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/panjf2000/ants/v2"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common/logging"
	"github.com/t2bot/transfer-repo/metrics"
	"github.com/t2bot/transfer-repo/util"
)

type Queue struct {
	name string
	pool *ants.Pool
}

func NewQueue(workers int, name string) (*Queue, error) {
	p, err := ants.NewPool(workers, ants.WithOptions(ants.Options{
		ExpiryDuration:   1 * time.Minute, // worker lifespan when unused
		PreAlloc:         false,
		MaxBlockingTasks: 0, // no limit on tasks we can submit
		Nonblocking:      false,
		PanicHandler: func(err interface{}) {
			logrus.Errorf("Panic from internal queue %s", name)
			logrus.Error(err)
			sentry.CaptureException(util.PanicToError(err))
		},
		Logger:       &logging.SendToDebugLogger{},
		DisablePurge: false,
	}))
	if err != nil {
		return nil, err
	}
	q := &Queue{name: name, pool: p}
	metrics.OnBeforeMetricsRequested(func() {
		metrics.QueueWorkersRunning.With(prometheus.Labels{"queue": name}).Set(float64(q.Running()))
	})
	return q, nil
}

func (p *Queue) Schedule(task func()) error {
	return p.pool.Submit(task)
}

func (p *Queue) Running() int {
	return p.pool.Running()
}

// Drain stops accepting work and waits up to timeout for running tasks to finish.
func (p *Queue) Drain(timeout time.Duration) {
	if err := p.pool.ReleaseTimeout(timeout); err != nil {
		logrus.Warnf("Queue %s did not drain within %s: %v", p.name, timeout, err)
	}
}
