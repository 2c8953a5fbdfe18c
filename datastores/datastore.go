package datastores

import (
	"errors"
	"fmt"
	"io"
	"time"

	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
)

const (
	DriverS3    = "s3"
	DriverAws   = "aws"
	DriverLocal = "local"
)

type ObjectInfo struct {
	Key         string
	SizeBytes   int64
	ContentType string
}

// Datastore is the object storage a transfer lives in. Objects are addressed by key within the
// configured bucket. Missing objects are reported as common.ErrObjectNotFound by every driver.
type Datastore interface {
	Driver() string

	PutObject(ctx rcontext.RequestContext, key string, data io.Reader, size int64, contentType string) error
	GetObject(ctx rcontext.RequestContext, key string) (io.ReadCloser, error)
	StatObject(ctx rcontext.RequestContext, key string) (*ObjectInfo, error)

	// PresignUpload returns a URL which accepts exactly one PUT of the object with the given
	// Content-Type until the ttl elapses.
	PresignUpload(ctx rcontext.RequestContext, key string, contentType string, contentLength int64, ttl time.Duration) (string, error)

	// PresignDownload returns a URL which serves the object as an attachment named downloadFilename.
	PresignDownload(ctx rcontext.RequestContext, key string, ttl time.Duration, downloadFilename string) (string, error)
}

var ErrUnknownDriver = errors.New("unknown datastore driver")

// New builds the datastore described by the storage config. publicOrigin is only used by the
// local driver, which serves its own signed URLs.
func New(conf config.StorageConfig, publicOrigin string) (Datastore, error) {
	switch conf.Driver {
	case DriverS3:
		return newS3Datastore(conf)
	case DriverAws:
		return newAwsDatastore(conf)
	case DriverLocal:
		return newLocalDatastore(conf, publicOrigin)
	default:
		return nil, fmt.Errorf("%w: %s", ErrUnknownDriver, conf.Driver)
	}
}

func storageError(op string, key string, err error) error {
	if err == nil {
		return nil
	}
	if errors.Is(err, common.ErrObjectNotFound) {
		return err
	}
	return common.NewStorageError(op, key, err)
}
