package notifier

import (
	"context"
	"sync"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/mailer"
	"github.com/t2bot/transfer-repo/metrics"
	"github.com/t2bot/transfer-repo/pool"
	"github.com/t2bot/transfer-repo/redislib"
	"github.com/t2bot/transfer-repo/templating"
	"github.com/t2bot/transfer-repo/types"
)

type EventKind string

const (
	// EventCreated fires once a transfer has been announced and its upload URL issued.
	EventCreated EventKind = "created"
	// EventConfirmed fires every time receipt of a transfer is confirmed.
	EventConfirmed EventKind = "confirmed"
)

const EventsChannel = "transfers:events"

const failureBufferSize = 64

type Event struct {
	Kind     EventKind
	Transfer *types.Transfer
	ShareUrl string
}

type Failure struct {
	Event Event
	Err   error
}

// Dispatcher sends transfer notifications in the background. A failed notification never
// affects the request that caused it: it is logged, counted and offered on Failures.
type Dispatcher struct {
	queue    *pool.Queue
	mailer   mailer.Mailer
	redis    *redislib.Connection
	email    config.EmailConfig
	timeout  time.Duration
	failures chan Failure
	inflight *sync.WaitGroup
}

func NewDispatcher(queue *pool.Queue, m mailer.Mailer, redis *redislib.Connection, email config.EmailConfig, notifications config.NotificationsConfig) *Dispatcher {
	timeout := time.Duration(notifications.TimeoutSeconds) * time.Second
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &Dispatcher{
		queue:    queue,
		mailer:   m,
		redis:    redis,
		email:    email,
		timeout:  timeout,
		failures: make(chan Failure, failureBufferSize),
		inflight: &sync.WaitGroup{},
	}
}

// Failures reports notifications which could not be delivered. Failures are dropped when
// nobody drains the channel.
func (d *Dispatcher) Failures() <-chan Failure {
	return d.failures
}

// Notify schedules the notification and returns immediately. It reports whether anything was
// scheduled: senders without an email address get no mail.
func (d *Dispatcher) Notify(ctx rcontext.RequestContext, kind EventKind, transfer *types.Transfer, shareUrl string) bool {
	address, hasAddress := transfer.Sender.Email()
	log := ctx.Log.WithFields(logrus.Fields{
		"notification": string(kind),
		"transferId":   transfer.Id,
	})
	event := Event{Kind: kind, Transfer: transfer, ShareUrl: shareUrl}

	d.inflight.Add(1)
	err := d.queue.Schedule(func() {
		defer d.inflight.Done()

		// Detached from the request: the response is long gone by the time this runs
		bgCtx, cancel := context.WithTimeout(context.Background(), d.timeout)
		defer cancel()
		rctx := rcontext.Background(bgCtx, log, ctx.Config)

		if err := d.redis.Publish(rctx, EventsChannel, string(kind)+":"+transfer.Id); err != nil {
			log.Warn("Error publishing transfer event: ", err)
		}
		if hasAddress {
			d.sendMail(rctx, event, address)
		}
	})
	if err != nil {
		d.inflight.Done()
		d.fail(log, event, err)
		return false
	}
	return hasAddress
}

func (d *Dispatcher) sendMail(ctx rcontext.RequestContext, event Event, address string) {
	model := templating.NewTransferAvailableModel(event.Transfer.Filename, event.Transfer.SizeBytes, event.ShareUrl, d.email.LinkExpiryDays)
	html, err := templating.Render("transfer_available", model)
	if err != nil {
		d.fail(ctx.Log, event, err)
		return
	}

	id, err := d.mailer.Send(ctx, &mailer.Message{
		To:      address,
		Subject: d.email.Subject,
		Html:    html,
	})
	if err != nil {
		d.fail(ctx.Log, event, err)
		return
	}
	metrics.NotificationsSent.With(prometheus.Labels{"kind": string(event.Kind), "result": "sent"}).Inc()
	ctx.Log.WithField("messageId", id).Info("Notification sent")
}

func (d *Dispatcher) fail(log *logrus.Entry, event Event, err error) {
	metrics.NotificationsSent.With(prometheus.Labels{"kind": string(event.Kind), "result": "failed"}).Inc()
	log.Error("Error sending notification: ", err)
	sentry.CaptureException(err)

	select {
	case d.failures <- Failure{Event: event, Err: err}:
	default:
		log.Warn("Notification failure channel is full; dropping failure report")
	}
}

// Wait blocks until every scheduled notification has finished.
func (d *Dispatcher) Wait() {
	d.inflight.Wait()
}
