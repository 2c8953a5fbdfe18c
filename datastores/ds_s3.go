package datastores

import (
	"errors"
	"io"
	"net/http"
	"net/url"
	"strconv"
	"time"

	"github.com/minio/minio-go/v7"
	"github.com/minio/minio-go/v7/pkg/credentials"
	pkgerrors "github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/t2bot/transfer-repo/common"
	"github.com/t2bot/transfer-repo/common/config"
	"github.com/t2bot/transfer-repo/common/rcontext"
	"github.com/t2bot/transfer-repo/metrics"
	"github.com/t2bot/transfer-repo/util"
)

type s3 struct {
	client *minio.Client
	bucket string
}

func newS3Datastore(conf config.StorageConfig) (*s3, error) {
	region := conf.Region
	if region == "" {
		region = "auto"
	}
	client, err := minio.New(conf.Endpoint, &minio.Options{
		Region:       region,
		Secure:       conf.UseSsl,
		Creds:        credentials.NewStaticV4(conf.AccessKeyId, conf.AccessSecret, ""),
		BucketLookup: bucketLookup(conf.ForcePathStyle),
	})
	if err != nil {
		return nil, pkgerrors.Wrap(err, "error creating s3 client")
	}
	return &s3{client: client, bucket: conf.BucketName}, nil
}

// NewS3DatastoreFromClient wraps an existing client, used by the container-backed tests.
func NewS3DatastoreFromClient(client *minio.Client, bucket string) Datastore {
	return &s3{client: client, bucket: bucket}
}

func bucketLookup(pathStyle bool) minio.BucketLookupType {
	if pathStyle {
		return minio.BucketLookupPath
	}
	return minio.BucketLookupAuto
}

func (s *s3) Driver() string {
	return DriverS3
}

func (s *s3) countOp(op string) {
	metrics.S3Operations.With(prometheus.Labels{"driver": DriverS3, "operation": op}).Inc()
}

func (s *s3) PutObject(ctx rcontext.RequestContext, key string, data io.Reader, size int64, contentType string) error {
	s.countOp("PutObject")
	_, err := s.client.PutObject(ctx, s.bucket, key, data, size, minio.PutObjectOptions{ContentType: contentType})
	return storageError("put", key, err)
}

func (s *s3) GetObject(ctx rcontext.RequestContext, key string) (io.ReadCloser, error) {
	s.countOp("GetObject")
	obj, err := s.client.GetObject(ctx, s.bucket, key, minio.GetObjectOptions{})
	if err != nil {
		return nil, storageError("get", key, translateMinioError(err))
	}
	// GetObject is lazy: a stat surfaces a missing key before the caller starts reading
	if _, err = obj.Stat(); err != nil {
		_ = obj.Close()
		return nil, storageError("get", key, translateMinioError(err))
	}
	return obj, nil
}

func (s *s3) StatObject(ctx rcontext.RequestContext, key string) (*ObjectInfo, error) {
	s.countOp("StatObject")
	info, err := s.client.StatObject(ctx, s.bucket, key, minio.StatObjectOptions{})
	if err != nil {
		return nil, storageError("stat", key, translateMinioError(err))
	}
	return &ObjectInfo{
		Key:         key,
		SizeBytes:   info.Size,
		ContentType: info.ContentType,
	}, nil
}

func (s *s3) PresignUpload(ctx rcontext.RequestContext, key string, contentType string, contentLength int64, ttl time.Duration) (string, error) {
	s.countOp("PresignPutObject")
	headers := http.Header{}
	headers.Set("Content-Type", contentType)
	headers.Set("Content-Length", strconv.FormatInt(contentLength, 10))
	u, err := s.client.PresignHeader(ctx, http.MethodPut, s.bucket, key, ttl, nil, headers)
	if err != nil {
		return "", storageError("presign_put", key, err)
	}
	return u.String(), nil
}

func (s *s3) PresignDownload(ctx rcontext.RequestContext, key string, ttl time.Duration, downloadFilename string) (string, error) {
	s.countOp("PresignGetObject")
	params := url.Values{}
	params.Set("response-content-disposition", util.AttachmentDisposition(downloadFilename))
	u, err := s.client.PresignedGetObject(ctx, s.bucket, key, ttl, params)
	if err != nil {
		return "", storageError("presign_get", key, err)
	}
	return u.String(), nil
}

// EnsureBucketExists creates the configured bucket when it is missing.
func (s *s3) EnsureBucketExists(ctx rcontext.RequestContext) error {
	exists, err := s.client.BucketExists(ctx, s.bucket)
	if err != nil {
		return storageError("bucket_exists", "", err)
	}
	if exists {
		return nil
	}
	s.countOp("MakeBucket")
	return storageError("make_bucket", "", s.client.MakeBucket(ctx, s.bucket, minio.MakeBucketOptions{}))
}

func translateMinioError(err error) error {
	var merr minio.ErrorResponse
	if errors.As(err, &merr) {
		if merr.Code == "NoSuchKey" || merr.StatusCode == http.StatusNotFound {
			return common.ErrObjectNotFound
		}
	}
	return err
}
