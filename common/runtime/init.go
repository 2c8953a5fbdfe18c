package runtime

import (
	"fmt"
	"net/http"
	"time"

	"github.com/getsentry/sentry-go"
	"github.com/sirupsen/logrus"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/common/version"
	"github.com/t2bot/transfer-repo/controllers/transfer_controller"
	"github.com/t2bot/transfer-repo/datastores"
	"github.com/t2bot/transfer-repo/errcache"
	"github.com/t2bot/transfer-repo/internal_cache"
	"github.com/t2bot/transfer-repo/mailer"
	"github.com/t2bot/transfer-repo/notifier"
	"github.com/t2bot/transfer-repo/pool"
	"github.com/t2bot/transfer-repo/redislib"
	"github.com/t2bot/transfer-repo/storage/metadata"
	"github.com/t2bot/transfer-repo/util"
	"github.com/t2bot/transfer-repo/util/ids"
)

// Services is everything the server needs, built once at startup.
type Services struct {
	Config       *config.TransferRepoConfig
	Datastore    datastores.Datastore
	LocalStorage http.Handler
	Redis        *redislib.Connection
	Cache        internal_cache.DescriptorCache
	Queue        *pool.Queue
	Dispatcher   *notifier.Dispatcher
	Controller   *transfer_controller.Controller
}

type bucketEnsurer interface {
	EnsureBucketExists(ctx rcontext.RequestContext) error
}

func RunStartupSequence(cfg *config.TransferRepoConfig) (*Services, error) {
	version.Print(true)

	s := &Services{Config: cfg}
	if err := s.loadRedis(); err != nil {
		return nil, err
	}
	if err := s.loadDatastore(); err != nil {
		return nil, err
	}
	if err := s.loadNotifications(); err != nil {
		return nil, err
	}

	s.Cache = internal_cache.New(cfg.Cache, s.Redis)
	meta := metadata.NewStore(s.Datastore, s.Cache)
	s.Controller = transfer_controller.New(s.Datastore, meta, ids.NewRandomGenerator(), s.Dispatcher)
	if cfg.Transfers.UploadMissCacheSeconds > 0 {
		s.Controller.WithUploadMissCache(errcache.NewErrCache(util.SecondsDuration(cfg.Transfers.UploadMissCacheSeconds)))
	}
	return s, nil
}

func (s *Services) loadRedis() error {
	s.Redis = redislib.NewConnection(s.Config.Redis)
	if s.Redis == nil {
		return nil
	}
	logrus.Info("Checking redis connection...")
	if err := s.Redis.Ping(rcontext.Initial(s.Config)); err != nil {
		sentry.CaptureException(err)
		logrus.Warn("Redis is not reachable yet, continuing: ", err)
	}
	return nil
}

func (s *Services) loadDatastore() error {
	logrus.Info("Initializing datastore...")
	ds, err := datastores.New(s.Config.Storage, s.Config.General.PublicOrigin)
	if err != nil {
		sentry.CaptureException(err)
		return err
	}
	logrus.Info(fmt.Sprintf("\t%s: %s/%s", ds.Driver(), s.Config.Storage.Endpoint, s.Config.Storage.BucketName))

	if e, ok := ds.(bucketEnsurer); ok {
		if err = e.EnsureBucketExists(rcontext.Initial(s.Config)); err != nil {
			logrus.Warn("\t\tBucket does not exist! ", err)
		}
	}
	if h, ok := ds.(http.Handler); ok {
		s.LocalStorage = h
	}

	if s.Redis != nil {
		ds = datastores.WithPresignCache(ds, s.Redis, time.Duration(s.Config.Redis.PresignCacheSeconds)*time.Second)
	}
	s.Datastore = ds
	return nil
}

func (s *Services) loadNotifications() error {
	logrus.Info("Starting notification workers...")
	queue, err := pool.NewQueue(s.Config.Notifications.NumWorkers, "notifications")
	if err != nil {
		return err
	}
	s.Queue = queue
	s.Dispatcher = notifier.NewDispatcher(queue, mailer.New(s.Config.Email), s.Redis, s.Config.Email, s.Config.Notifications)
	go func() {
		for f := range s.Dispatcher.Failures() {
			logrus.WithField("transferId", f.Event.Transfer.Id).Debug("Notification failure drained: ", f.Err)
		}
	}()
	return nil
}

// Stop waits briefly for queued notifications, then releases every connection.
func (s *Services) Stop() {
	logrus.Info("Stopping notification workers...")
	s.Queue.Drain(10 * time.Second)

	logrus.Info("Stopping caches...")
	s.Cache.Stop()
	s.Redis.Close()
}
